package api

import (
	"encoding/json"
	"io"
	"net/http"
)

// Outcome is the uniform shape of one remote call attempt: either a
// success payload or a failure with an HTTP status and a message buried in
// the error body.
type Outcome struct {
	StatusCode int
	Body       []byte
}

func (o Outcome) OK() bool {
	return o.StatusCode >= 200 && o.StatusCode < 300
}

// Message digs the error message out of the response body, falling back to
// the given generic text when the body has none.
func (o Outcome) Message(fallback string) string {
	var errBody struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(o.Body, &errBody); err == nil && errBody.Message != "" {
		return errBody.Message
	}
	return fallback
}

// ReadOutcome drains and closes the response body.
func ReadOutcome(response *http.Response) Outcome {
	defer response.Body.Close()
	body, err := io.ReadAll(response.Body)
	if err != nil {
		body = nil
	}
	return Outcome{StatusCode: response.StatusCode, Body: body}
}
