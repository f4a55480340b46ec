package oauthpopup

// Status is the outcome tag delivered to the opener window.
type Status string

const (
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

// Token is what the opener window receives when authorization succeeds.
type Token struct {
	AccessToken string `json:"token"`
	Provider    string `json:"provider"`
}

// failureMessage is what the opener window receives when authorization
// fails, for whatever reason.
type failureMessage struct {
	Message string `json:"message"`
}

// Result is the outcome of a single callback. It only lives long enough to
// be rendered into a relay document.
type Result struct {
	Status  Status
	Payload any
}

// Success returns a Result carrying token.
func Success(token Token) Result {
	return Result{Status: StatusSuccess, Payload: token}
}

// Failure returns a Result carrying the message of err.
func Failure(err error) Result {
	return Result{Status: StatusError, Payload: failureMessage{Message: err.Error()}}
}
