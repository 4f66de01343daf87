package function

import (
	"context"
	"encoding/base64"
	"io"
	"net/http"
	"unicode/utf8"
)

// maxBodySize caps the request body accepted by the HTTP adapter.
const maxBodySize = 1 << 20

// Server exposes the functions over plain HTTP.
type Server struct {
	Functions Functions
}

// AppendLinkHandler serves append-link.
func (s Server) AppendLinkHandler(w http.ResponseWriter, r *http.Request) {
	s.serve(w, r, s.Functions.AppendLink)
}

// CheckTokenHandler serves check-token.
func (s Server) CheckTokenHandler(w http.ResponseWriter, r *http.Request) {
	s.serve(w, r, s.Functions.CheckToken)
}

func (s Server) serve(w http.ResponseWriter, r *http.Request, fn func(ctx context.Context, event Event) Response) {
	event, err := NewEvent(r)
	if err != nil {
		WriteResponse(w, jsonResponse(http.StatusBadRequest, map[string]interface{}{
			"error":   "Invalid request body",
			"details": err.Error(),
		}))

		return
	}

	WriteResponse(w, fn(r.Context(), event))
}

// NewEvent converts an HTTP request into an Event.
//
// Only the first value of repeated headers and query parameters is kept.
func NewEvent(r *http.Request) (Event, error) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize))
	if err != nil {
		return Event{}, err
	}

	event := Event{
		HTTPMethod:            r.Method,
		Headers:               make(map[string]string, len(r.Header)),
		QueryStringParameters: make(map[string]string),
	}

	for k, v := range r.Header {
		if len(v) > 0 {
			event.Headers[k] = v[0]
		}
	}

	for k, v := range r.URL.Query() {
		if len(v) > 0 {
			event.QueryStringParameters[k] = v[0]
		}
	}

	if utf8.Valid(body) {
		event.Body = string(body)
	} else {
		event.Body = base64.StdEncoding.EncodeToString(body)
		event.IsBase64Encoded = true
	}

	return event, nil
}

// WriteResponse writes a function Response to w.
func WriteResponse(w http.ResponseWriter, response Response) {
	body := []byte(response.Body)

	if response.IsBase64Encoded {
		decoded, err := base64.StdEncoding.DecodeString(response.Body)
		if err != nil {
			response = jsonResponse(http.StatusInternalServerError, map[string]interface{}{
				"error": err.Error(),
				"type":  kind(err),
			})
			decoded = []byte(response.Body)
		}

		body = decoded
	}

	for k, v := range response.Headers {
		w.Header().Set(k, v)
	}

	w.WriteHeader(response.StatusCode)
	_, _ = w.Write(body)
}
