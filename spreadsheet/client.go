// Package spreadsheet stores links in a Google Sheets worksheet.
//
// Every call authenticates with the bearer token it is given; no state is kept between calls.
package spreadsheet

import (
	"context"
	"fmt"
	"net/http"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/sheetlinks/sheetlinks/auth"
	"github.com/sheetlinks/sheetlinks/links"
)

// Scopes requested for spreadsheet access.
const (
	AppendScope = sheets.SpreadsheetsScope
	ReadScope   = sheets.SpreadsheetsReadonlyScope
)

// valueInputRaw stores values as given, without formula or number interpretation.
const valueInputRaw = "RAW"

// Client appends and reads link rows.
type Client struct {
	httpClient *http.Client
	endpoint   string

	logger *zap.Logger
}

// Option configures a Client.
type Option func(c *Client)

// WithHTTPClient sets the HTTP client carrying spreadsheet API requests.
// Its timeout applies to every call.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithEndpoint overrides the spreadsheet API base URL (e.g. "http://localhost:8081/").
func WithEndpoint(endpoint string) Option {
	return func(c *Client) {
		c.endpoint = endpoint
	}
}

// WithLogger sets the logger of the client.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient returns a new Client.
func NewClient(opts ...Option) Client {
	c := Client{}

	for _, opt := range opts {
		opt(&c)
	}

	if c.logger == nil {
		c.logger = zap.NewNop()
	}

	return c
}

func (c Client) service(ctx context.Context, token auth.BearerToken) (*sheets.Service, error) {
	if c.httpClient != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)
	}

	tokenSource := oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: token.AccessToken,
		TokenType:   token.TokenType,
	})

	opts := []option.ClientOption{
		option.WithHTTPClient(oauth2.NewClient(ctx, tokenSource)),
	}

	if c.endpoint != "" {
		opts = append(opts, option.WithEndpoint(c.endpoint))
	}

	google, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("unable to create new Sheets client (%w)", err)
	}

	return google, nil
}

func checkTarget(token auth.BearerToken, target links.Target) error {
	if target.SpreadsheetID == "" {
		return &links.ConfigError{
			Message: "Spreadsheet not configured",
			Details: "spreadsheet id is required",
		}
	}

	if token.IsZero() {
		return &links.ConfigError{
			Message: "Bearer token missing",
			Details: "authenticate before calling the spreadsheet API",
		}
	}

	return nil
}

// Append appends row to the target worksheet.
//
// An empty status defaults to links.StatusNew. Appending is not idempotent:
// the same row appended twice is stored twice.
func (c Client) Append(ctx context.Context, token auth.BearerToken, target links.Target, row links.Row) (links.AppendResult, error) {
	if row.Link == "" {
		return links.AppendResult{}, links.NewValidationError("link")
	}

	if row.Status == "" {
		row.Status = links.StatusNew
	}

	if err := checkTarget(token, target); err != nil {
		return links.AppendResult{}, err
	}

	google, err := c.service(ctx, token)
	if err != nil {
		return links.AppendResult{}, err
	}

	values := sheets.ValueRange{
		Values: [][]interface{}{{row.Link, row.Status}},
	}

	response, err := google.Spreadsheets.Values.Append(target.SpreadsheetID, target.Range(), &values).
		ValueInputOption(valueInputRaw).
		Context(ctx).
		Do()
	if err != nil {
		if status, body, ok := apiError(err); ok {
			return links.AppendResult{}, &UpstreamWriteError{StatusCode: status, Body: body}
		}

		return links.AppendResult{}, fmt.Errorf("unable to append row to sheet (%w)", err)
	}

	result := links.AppendResult{
		SpreadsheetID: response.SpreadsheetId,
		TableRange:    response.TableRange,
	}

	if updates := response.Updates; updates != nil {
		result.Updates = links.UpdatedValues{
			SpreadsheetID:  updates.SpreadsheetId,
			UpdatedRange:   updates.UpdatedRange,
			UpdatedRows:    updates.UpdatedRows,
			UpdatedColumns: updates.UpdatedColumns,
			UpdatedCells:   updates.UpdatedCells,
		}
	}

	c.logger.Info("row appended",
		zap.String("spreadsheet", target.SpreadsheetID),
		zap.String("range", result.Updates.UpdatedRange),
		zap.String("status", row.Status),
	)

	return result, nil
}

// Rows reads every (link, status) row of the target worksheet in storage order.
//
// Rows with fewer than two cells are skipped.
func (c Client) Rows(ctx context.Context, token auth.BearerToken, target links.Target) ([]links.Row, error) {
	if err := checkTarget(token, target); err != nil {
		return nil, err
	}

	google, err := c.service(ctx, token)
	if err != nil {
		return nil, err
	}

	response, err := google.Spreadsheets.Values.Get(target.SpreadsheetID, target.Range()).Context(ctx).Do()
	if err != nil {
		if status, body, ok := apiError(err); ok {
			return nil, &UpstreamReadError{StatusCode: status, Body: body}
		}

		return nil, fmt.Errorf("unable to retrieve data from sheet (%w)", err)
	}

	rows := make([]links.Row, 0, len(response.Values))
	for _, record := range response.Values {
		if len(record) < 2 {
			continue
		}

		rows = append(rows, links.Row{
			Link:   cell(record[0]),
			Status: cell(record[1]),
		})
	}

	return rows, nil
}

// CheckValid reports whether an unredeemed row carries the requested token.
//
// The whole worksheet is read on every call.
func (c Client) CheckValid(ctx context.Context, token auth.BearerToken, target links.Target, requested string) (bool, error) {
	if requested == "" {
		return false, links.NewValidationError("token")
	}

	rows, err := c.Rows(ctx, token, target)
	if err != nil {
		return false, err
	}

	_, valid := links.FindValid(rows, requested)

	c.logger.Debug("token checked",
		zap.String("spreadsheet", target.SpreadsheetID),
		zap.Int("rows", len(rows)),
		zap.Bool("valid", valid),
	)

	return valid, nil
}

func cell(v interface{}) string {
	if s, ok := v.(string); ok {
		return s
	}

	if v == nil {
		return ""
	}

	return fmt.Sprint(v)
}
