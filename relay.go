package oauthpopup

import (
	"encoding/json"
	"fmt"
	"html/template"
	"io"
)

// relayTmpl is the document the callback answers with. It announces itself
// to the opener, waits for the opener to answer so we know its listener is
// attached, and only then sends the result. Messages posted before the
// opener listens are lost.
var relayTmpl = template.Must(template.New("relay").Parse(`<!DOCTYPE html>
<html lang="en">
  <head>
    <meta charset="utf-8">
    <title>Authorizing ...</title>
  </head>
  <body>
    <p id="message">Authorizing ...</p>
    <script>
      const provider = {{.Provider}};
      const result = {{.Message}};

      // Output a message to the user
      function sendMessage(message) {
        document.getElementById("message").innerText = message;
        document.title = message;
      }

      // Hand the result to the opener, once
      function receiveMessage(event) {
        window.opener.postMessage(result, event.origin);
        window.removeEventListener("message", receiveMessage, false);
        sendMessage("Authorized, closing ...");
      }

      sendMessage("Authorizing ...");
      window.addEventListener("message", receiveMessage, false);
      window.opener.postMessage("authorizing:" + provider, "*");
    </script>
  </body>
</html>
`))

type relayData struct {
	Provider string
	Message  string
}

// ResultMessage returns the string delivered to the opener window for r,
// in the form "authorization:<provider>:<status>:<json payload>".
func ResultMessage(provider string, r Result) (string, error) {
	payload, err := json.Marshal(r.Payload)
	if err != nil {
		return "", fmt.Errorf("encoding %s payload: %w", r.Status, err)
	}
	return "authorization:" + provider + ":" + string(r.Status) + ":" + string(payload), nil
}

// RenderRelay writes the relay document that delivers r to the opener
// window.
func RenderRelay(w io.Writer, provider string, r Result) error {
	msg, err := ResultMessage(provider, r)
	if err != nil {
		return err
	}
	return relayTmpl.Execute(w, relayData{
		Provider: provider,
		Message:  msg,
	})
}
