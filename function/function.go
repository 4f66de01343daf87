// Package function implements the append-link and check-token functions.
//
// Both functions are stateless: configuration is loaded, and a fresh access
// token is obtained, on every invocation.
package function

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/gofrs/uuid"
	"github.com/gorilla/schema"
	"go.uber.org/zap"

	"github.com/sheetlinks/sheetlinks/auth"
	"github.com/sheetlinks/sheetlinks/auth/authn"
	"github.com/sheetlinks/sheetlinks/config"
	"github.com/sheetlinks/sheetlinks/links"
	"github.com/sheetlinks/sheetlinks/spreadsheet"
)

// APIKeyHeader carries the caller key when append-link is protected by one.
const APIKeyHeader = "X-Api-Key"

// Set a Decoder instance as a package global, because it caches
// meta-data about structs, and an instance can be shared safely.
var decoder = newDecoder()

func newDecoder() *schema.Decoder {
	d := schema.NewDecoder()
	d.IgnoreUnknownKeys(true)

	return d
}

// LinkStore stores and looks up link rows.
type LinkStore interface {
	Append(ctx context.Context, token auth.BearerToken, target links.Target, row links.Row) (links.AppendResult, error)
	CheckValid(ctx context.Context, token auth.BearerToken, target links.Target, requested string) (bool, error)
}

// AppendLinkRequest is the body of an append-link invocation.
type AppendLinkRequest struct {
	Link   string `json:"link"`
	Status string `json:"status,omitempty"`
}

// CheckTokenRequest holds the query parameters of a check-token invocation.
type CheckTokenRequest struct {
	Token string `schema:"token"`
}

// Functions serves the link functions.
type Functions struct {
	Authenticator auth.Authenticator
	Store         LinkStore
	LoadConfig    config.Loader

	// TokenEndpoint overrides the token endpoint named by the service credential.
	TokenEndpoint string

	Logger *zap.Logger
}

func (f Functions) logger(name string) *zap.Logger {
	logger := f.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	requestID := ""
	if id, err := uuid.NewV4(); err == nil {
		requestID = id.String()
	}

	return logger.With(zap.String("function", name), zap.String("request_id", requestID))
}

// loadConfig loads and validates the configuration of an invocation.
func (f Functions) loadConfig() (config.Config, error) {
	if f.LoadConfig == nil {
		return config.Config{}, &links.ConfigError{Message: "Service Account not configured", Details: "no configuration source"}
	}

	c, err := f.LoadConfig()
	if err != nil {
		return config.Config{}, &links.ConfigError{Message: "Service Account not configured", Details: err.Error()}
	}

	if err := c.Validate(); err != nil {
		return config.Config{}, err
	}

	return c, nil
}

// authenticate obtains a bearer token for the configured service credential.
func (f Functions) authenticate(ctx context.Context, c config.Config, scope string) (auth.BearerToken, error) {
	credential, err := c.Credential()
	if err != nil {
		return auth.BearerToken{}, err
	}

	if f.TokenEndpoint != "" {
		credential.TokenEndpoint = f.TokenEndpoint
	}

	return f.Authenticator.Authenticate(ctx, credential, scope)
}

func recoverPanic(r interface{}) error {
	return &panicError{value: r}
}

// AppendLink appends the link in the request body to the spreadsheet.
func (f Functions) AppendLink(ctx context.Context, event Event) (response Response) {
	logger := f.logger("append-link")

	if event.HTTPMethod == http.MethodOptions {
		return preflight(appendLinkPreflight)
	}

	if event.HTTPMethod != http.MethodPost {
		return methodNotAllowed()
	}

	defer func() {
		if r := recover(); r != nil {
			response = f.appendLinkError(logger, recoverPanic(r))
		}
	}()

	result, err := f.appendLink(ctx, logger, event)
	if err != nil {
		return f.appendLinkError(logger, err)
	}

	return jsonResponse(http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Link added to Google Sheet",
		"result":  result,
	})
}

func (f Functions) appendLink(ctx context.Context, logger *zap.Logger, event Event) (links.AppendResult, error) {
	c, err := f.loadConfig()
	if err != nil {
		return links.AppendResult{}, err
	}

	if c.AppendKeyHash != "" {
		err := authn.NewHashedKeyAuthenticator(c.AppendKeyHash).Authenticate(ctx, event.Header(APIKeyHeader))
		if err != nil {
			return links.AppendResult{}, err
		}
	}

	request, err := decodeAppendLinkRequest(event)
	if err != nil {
		return links.AppendResult{}, err
	}

	if request.Link == "" {
		return links.AppendResult{}, links.NewValidationError("link")
	}

	token, err := f.authenticate(ctx, c, spreadsheet.AppendScope)
	if err != nil {
		return links.AppendResult{}, err
	}

	result, err := f.Store.Append(ctx, token, c.Target(), links.Row{Link: request.Link, Status: request.Status})
	if err != nil {
		return links.AppendResult{}, err
	}

	logger.Info("link appended", zap.String("range", result.Updates.UpdatedRange))

	return result, nil
}

// requestError is returned when the request body cannot be decoded.
type requestError struct {
	err error
}

func (e *requestError) Error() string {
	return fmt.Sprintf("invalid request body: %v", e.err)
}

func (e *requestError) Unwrap() error {
	return e.err
}

func decodeAppendLinkRequest(event Event) (AppendLinkRequest, error) {
	var request AppendLinkRequest

	body, err := event.RawBody()
	if err != nil {
		return request, &requestError{err: err}
	}

	if len(bytes.TrimSpace(body)) == 0 {
		return request, nil
	}

	if err := json.Unmarshal(body, &request); err != nil {
		return request, &requestError{err: err}
	}

	return request, nil
}

func (f Functions) appendLinkError(logger *zap.Logger, err error) Response {
	var reqErr *requestError
	if errors.As(err, &reqErr) {
		logger.Debug("invalid request", zap.Error(err))

		return jsonResponse(http.StatusBadRequest, map[string]interface{}{
			"error":   "Invalid JSON body",
			"details": reqErr.err.Error(),
		})
	}

	status, body := errorResponse(err)
	logError(logger, status, err)

	return jsonResponse(status, body)
}

// CheckToken reports whether the token in the query string belongs to an unredeemed link.
func (f Functions) CheckToken(ctx context.Context, event Event) (response Response) {
	logger := f.logger("check-token")

	if event.HTTPMethod == http.MethodOptions {
		return preflight(checkTokenPreflight)
	}

	if event.HTTPMethod != http.MethodGet {
		return methodNotAllowed()
	}

	defer func() {
		if r := recover(); r != nil {
			response = f.checkTokenError(logger, recoverPanic(r))
		}
	}()

	requested, valid, err := f.checkToken(ctx, event)
	if err != nil {
		return f.checkTokenError(logger, err)
	}

	logger.Info("token checked", zap.Bool("valid", valid))

	return jsonResponse(http.StatusOK, map[string]interface{}{
		"valid": valid,
		"token": requested,
	})
}

func (f Functions) checkToken(ctx context.Context, event Event) (string, bool, error) {
	c, err := f.loadConfig()
	if err != nil {
		return "", false, err
	}

	var request CheckTokenRequest

	if err := decoder.Decode(&request, event.Query()); err != nil {
		return "", false, fmt.Errorf("decoding query: %w", err)
	}

	if request.Token == "" {
		return "", false, links.NewValidationError("token")
	}

	token, err := f.authenticate(ctx, c, spreadsheet.ReadScope)
	if err != nil {
		return "", false, err
	}

	valid, err := f.Store.CheckValid(ctx, token, c.Target(), request.Token)
	if err != nil {
		return "", false, err
	}

	return request.Token, valid, nil
}

func (f Functions) checkTokenError(logger *zap.Logger, err error) Response {
	status, body := errorResponse(err)
	body["valid"] = false

	logError(logger, status, err)

	return jsonResponse(status, body)
}

func logError(logger *zap.Logger, status int, err error) {
	if status < http.StatusInternalServerError {
		logger.Debug("request rejected", zap.Int("status", status), zap.Error(err))

		return
	}

	logger.Error("request failed", zap.Int("status", status), zap.Error(err))
}
