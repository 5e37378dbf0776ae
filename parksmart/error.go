package parksmart

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

var ErrSessionNotFound = errors.New("session not found in live listing")

// APIError is returned for any non-2xx response. Body carries the raw
// response text when the backend provided one.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	if e.Body != "" {
		return e.Body
	}
	return fmt.Sprintf("request failed (%d)", e.StatusCode)
}

func newAPIError(res *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(res.Body, 4096))
	return &APIError{
		StatusCode: res.StatusCode,
		Body:       strings.TrimSpace(string(body)),
	}
}
