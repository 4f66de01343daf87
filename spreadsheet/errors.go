package spreadsheet

import (
	"errors"
	"fmt"

	"google.golang.org/api/googleapi"
)

// UpstreamWriteError is returned when the spreadsheet API rejects an append.
type UpstreamWriteError struct {
	StatusCode int
	Body       string
}

func (e *UpstreamWriteError) Error() string {
	return fmt.Sprintf("appending row failed with HTTP %d: %s", e.StatusCode, e.Body)
}

// HTTPStatus returns the status code returned by the spreadsheet API.
func (e *UpstreamWriteError) HTTPStatus() int {
	return e.StatusCode
}

// ResponseBody returns the body returned by the spreadsheet API.
func (e *UpstreamWriteError) ResponseBody() string {
	return e.Body
}

// UpstreamReadError is returned when the spreadsheet API rejects a read.
type UpstreamReadError struct {
	StatusCode int
	Body       string
}

func (e *UpstreamReadError) Error() string {
	return fmt.Sprintf("reading rows failed with HTTP %d: %s", e.StatusCode, e.Body)
}

// HTTPStatus returns the status code returned by the spreadsheet API.
func (e *UpstreamReadError) HTTPStatus() int {
	return e.StatusCode
}

// ResponseBody returns the body returned by the spreadsheet API.
func (e *UpstreamReadError) ResponseBody() string {
	return e.Body
}

// apiError extracts the status and body of a spreadsheet API error response.
func apiError(err error) (status int, body string, ok bool) {
	var gerr *googleapi.Error
	if !errors.As(err, &gerr) {
		return 0, "", false
	}

	body = gerr.Body
	if body == "" {
		body = gerr.Message
	}

	return gerr.Code, body, true
}
