package function

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"golang.org/x/exp/maps"

	"github.com/sheetlinks/sheetlinks/auth"
	"github.com/sheetlinks/sheetlinks/links"
)

var jsonHeaders = map[string]string{
	"Content-Type":                "application/json",
	"Access-Control-Allow-Origin": "*",
}

var appendLinkPreflight = map[string]string{
	"Access-Control-Allow-Origin":  "*",
	"Access-Control-Allow-Methods": "POST, OPTIONS",
	"Access-Control-Allow-Headers": "Content-Type, " + APIKeyHeader,
	"Access-Control-Max-Age":       "86400",
}

var checkTokenPreflight = map[string]string{
	"Access-Control-Allow-Origin":  "*",
	"Access-Control-Allow-Methods": "GET, OPTIONS",
	"Access-Control-Allow-Headers": "Content-Type",
	"Access-Control-Max-Age":       "86400",
}

func preflight(headers map[string]string) Response {
	return Response{
		StatusCode: http.StatusOK,
		Headers:    maps.Clone(headers),
	}
}

func jsonResponse(status int, body interface{}) Response {
	b, err := json.Marshal(body)
	if err != nil {
		status = http.StatusInternalServerError
		b = []byte(fmt.Sprintf(`{"error":%q,"type":"json"}`, err.Error()))
	}

	return Response{
		StatusCode: status,
		Headers:    maps.Clone(jsonHeaders),
		Body:       string(b),
	}
}

func methodNotAllowed() Response {
	return jsonResponse(http.StatusMethodNotAllowed, map[string]interface{}{
		"error": "Method not allowed",
	})
}

// upstreamError is implemented by errors carrying a verbatim upstream response.
type upstreamError interface {
	error
	HTTPStatus() int
	ResponseBody() string
}

// errorResponse maps err onto a status code and a JSON error body.
func errorResponse(err error) (int, map[string]interface{}) {
	var (
		configErr     *links.ConfigError
		validationErr *links.ValidationError
		credentialErr *auth.CredentialError
		authErr       *auth.UpstreamAuthError
		upstreamErr   upstreamError
	)

	switch {
	case errors.As(err, &configErr):
		return http.StatusInternalServerError, map[string]interface{}{
			"error":   configErr.Message,
			"details": configErr.Details,
		}

	case errors.As(err, &validationErr):
		return http.StatusBadRequest, map[string]interface{}{
			"error": requiredMessage(validationErr.Field),
		}

	case errors.Is(err, auth.ErrAuthenticationFailed):
		return http.StatusUnauthorized, map[string]interface{}{
			"error": "Unauthorized",
		}

	case errors.As(err, &credentialErr):
		return http.StatusInternalServerError, map[string]interface{}{
			"error":   "Invalid service credential",
			"details": credentialErr.Err.Error(),
		}

	case errors.As(err, &authErr):
		return http.StatusInternalServerError, map[string]interface{}{
			"error":       "Token exchange failed",
			"details":     authErr.ResponseBody(),
			"status_code": authErr.HTTPStatus(),
		}

	case errors.As(err, &upstreamErr):
		return http.StatusInternalServerError, map[string]interface{}{
			"error":       "Google Sheets API error",
			"details":     upstreamErr.ResponseBody(),
			"status_code": upstreamErr.HTTPStatus(),
		}

	default:
		return http.StatusInternalServerError, map[string]interface{}{
			"error": err.Error(),
			"type":  kind(err),
		}
	}
}

// requiredMessage turns a field name into a message such as "Link is required".
func requiredMessage(field string) string {
	if field == "" {
		return "Invalid request"
	}

	return strings.ToUpper(field[:1]) + field[1:] + " is required"
}

// kind names the concrete type of err, e.g. "auth.SigningError".
//
// Wrappers created by fmt.Errorf are skipped so the cause is named.
func kind(err error) string {
	var panicErr *panicError
	if errors.As(err, &panicErr) {
		return "panic"
	}

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, context.Canceled):
		return "canceled"
	}

	name := strings.TrimPrefix(fmt.Sprintf("%T", err), "*")

	for strings.HasPrefix(name, "fmt.") {
		cause := errors.Unwrap(err)
		if cause == nil {
			break
		}

		err = cause
		name = strings.TrimPrefix(fmt.Sprintf("%T", err), "*")
	}

	return name
}

type panicError struct {
	value interface{}
}

func (e *panicError) Error() string {
	return fmt.Sprintf("%v", e.value)
}
