package function

import (
	"encoding/base64"
	"net/url"
	"strings"
)

// Event is a single function invocation as delivered by the hosting platform.
type Event struct {
	HTTPMethod            string            `json:"httpMethod"`
	Headers               map[string]string `json:"headers"`
	QueryStringParameters map[string]string `json:"queryStringParameters"`
	Body                  string            `json:"body"`
	IsBase64Encoded       bool              `json:"isBase64Encoded"`
}

// Header returns the value of the named header.
// Header names are matched case-insensitively.
func (e Event) Header(name string) string {
	if v, ok := e.Headers[name]; ok {
		return v
	}

	for k, v := range e.Headers {
		if strings.EqualFold(k, name) {
			return v
		}
	}

	return ""
}

// Query returns the query string parameters of the event.
func (e Event) Query() url.Values {
	values := make(url.Values, len(e.QueryStringParameters))

	for k, v := range e.QueryStringParameters {
		values.Set(k, v)
	}

	return values
}

// RawBody returns the body of the event, decoding it if necessary.
func (e Event) RawBody() ([]byte, error) {
	if !e.IsBase64Encoded {
		return []byte(e.Body), nil
	}

	return base64.StdEncoding.DecodeString(e.Body)
}

// Response is the result of a function invocation.
type Response struct {
	StatusCode      int               `json:"statusCode"`
	Headers         map[string]string `json:"headers"`
	Body            string            `json:"body"`
	IsBase64Encoded bool              `json:"isBase64Encoded"`
}
