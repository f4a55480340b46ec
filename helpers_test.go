package oauthpopup

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"regexp"
	"strings"
	"testing"

	"github.com/nsf/jsondiff"
	"golang.org/x/oauth2"
	yall "yall.in"
	testLogger "yall.in/testing"
)

var resultRE = regexp.MustCompile(`const result = ("(?:[^"\\]|\\.)*");`)

func testLog(t *testing.T) *yall.Logger {
	t.Helper()
	logLevel := strings.ToUpper(os.Getenv("LOG_LEVEL"))
	if logLevel == "" {
		logLevel = "ERROR"
	}
	return yall.New(testLogger.New(t, yall.Severity(logLevel)))
}

func testService(t *testing.T, tokenURL string, opts Options) Service {
	t.Helper()
	return NewService(ProviderConfig{
		Name:         "github",
		DisplayName:  "GitHub",
		ClientID:     "testclient",
		ClientSecret: "testsecret",
		Endpoint: oauth2.Endpoint{
			AuthURL:  "https://provider.test/login/oauth/authorize",
			TokenURL: tokenURL,
		},
	}, opts, testLog(t))
}

// serve sends req through the full handler, mounted at /api.
func serve(t *testing.T, s Service, req *http.Request) *http.Response {
	t.Helper()
	w := httptest.NewRecorder()
	s.Server("/api").ServeHTTP(w, req)
	return w.Result()
}

type relayed struct {
	provider string
	status   string
	payload  string
}

// parseRelay pulls the result message out of a relay document and splits it
// into its parts.
func parseRelay(t *testing.T, doc string) relayed {
	t.Helper()
	m := resultRE.FindStringSubmatch(doc)
	if m == nil {
		t.Fatalf("No result message found in document:\n%s", doc)
	}
	var msg string
	err := json.Unmarshal([]byte(m[1]), &msg)
	if err != nil {
		t.Fatalf("Error decoding result literal %s: %v", m[1], err)
	}
	parts := strings.SplitN(msg, ":", 4)
	if len(parts) != 4 || parts[0] != "authorization" {
		t.Fatalf("Unexpected result message format: %q", msg)
	}
	return relayed{provider: parts[1], status: parts[2], payload: parts[3]}
}

func compareJSON(t *testing.T, expected, got string) {
	t.Helper()
	opts := jsondiff.DefaultConsoleOptions()
	match, diff := jsondiff.Compare([]byte(expected), []byte(got), &opts)
	if match != jsondiff.FullMatch {
		t.Errorf("Unexpected JSON: %s", diff)
		t.Logf("first argument: %s", expected)
		t.Logf("second argument: %s", got)
	}
}
