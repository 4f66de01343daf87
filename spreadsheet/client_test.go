package spreadsheet

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/sheetlinks/sheetlinks/auth"
	"github.com/sheetlinks/sheetlinks/internal/sheetstest"
	"github.com/sheetlinks/sheetlinks/links"
)

var (
	testToken  = auth.BearerToken{AccessToken: sheetstest.AccessToken, TokenType: "Bearer"}
	testTarget = links.Target{SpreadsheetID: "sheet-id", SheetName: "Links"}
)

func newTestClient(t *testing.T, server *sheetstest.Server) Client {
	return NewClient(
		WithHTTPClient(server.Client()),
		WithEndpoint(server.Endpoint()),
		WithLogger(zaptest.NewLogger(t)),
	)
}

func TestClient_Append(t *testing.T) {
	t.Run("OK", func(t *testing.T) {
		server := sheetstest.NewServer()
		defer server.Close()

		client := newTestClient(t, server)

		result, err := client.Append(context.Background(), testToken, testTarget, links.Row{Link: "http://x/y?token=abc"})
		require.NoError(t, err)

		expected := links.AppendResult{
			SpreadsheetID: "sheet-id",
			Updates: links.UpdatedValues{
				SpreadsheetID:  "sheet-id",
				UpdatedRange:   "Links!A1:B1",
				UpdatedRows:    1,
				UpdatedColumns: 2,
				UpdatedCells:   2,
			},
		}

		assert.Equal(t, expected, result)
		assert.Equal(t, [][]interface{}{{"http://x/y?token=abc", "new"}}, server.Rows())
		assert.Equal(t, []string{"RAW"}, server.ValueInputOptions())
	})

	t.Run("ExplicitStatus", func(t *testing.T) {
		server := sheetstest.NewServer()
		defer server.Close()

		client := newTestClient(t, server)

		_, err := client.Append(context.Background(), testToken, testTarget, links.Row{Link: "http://x?token=a", Status: "used"})
		require.NoError(t, err)

		assert.Equal(t, [][]interface{}{{"http://x?token=a", "used"}}, server.Rows())
	})

	t.Run("NotIdempotent", func(t *testing.T) {
		server := sheetstest.NewServer()
		defer server.Close()

		client := newTestClient(t, server)
		row := links.Row{Link: "http://x?token=same"}

		_, err := client.Append(context.Background(), testToken, testTarget, row)
		require.NoError(t, err)

		_, err = client.Append(context.Background(), testToken, testTarget, row)
		require.NoError(t, err)

		assert.Len(t, server.Rows(), 2)
	})

	t.Run("MissingLink", func(t *testing.T) {
		server := sheetstest.NewServer()
		defer server.Close()

		client := newTestClient(t, server)

		_, err := client.Append(context.Background(), testToken, testTarget, links.Row{})

		var validationErr *links.ValidationError
		require.ErrorAs(t, err, &validationErr)
		assert.Equal(t, "link required", validationErr.Error())
		assert.Equal(t, 0, server.TotalCalls())
	})

	t.Run("MissingConfig", func(t *testing.T) {
		server := sheetstest.NewServer()
		defer server.Close()

		client := newTestClient(t, server)
		row := links.Row{Link: "http://x?token=a"}

		_, err := client.Append(context.Background(), testToken, links.Target{}, row)

		var configErr *links.ConfigError
		require.ErrorAs(t, err, &configErr)

		_, err = client.Append(context.Background(), auth.BearerToken{}, testTarget, row)
		require.ErrorAs(t, err, &configErr)

		assert.Equal(t, 0, server.TotalCalls())
	})

	t.Run("Rejected", func(t *testing.T) {
		server := sheetstest.NewServer()
		defer server.Close()

		const body = `{"error":{"code":403,"message":"The caller does not have permission","status":"PERMISSION_DENIED"}}`
		server.FailSheet(http.StatusForbidden, body)

		client := newTestClient(t, server)

		_, err := client.Append(context.Background(), testToken, testTarget, links.Row{Link: "http://x?token=a"})

		var writeErr *UpstreamWriteError
		require.ErrorAs(t, err, &writeErr)
		assert.Equal(t, http.StatusForbidden, writeErr.StatusCode)
		assert.Equal(t, body, writeErr.Body)
	})
}

func TestClient_CheckValid(t *testing.T) {
	rows := [][]interface{}{
		{"http://x?token=abc123", "new"},
		{"http://x?token=xyz", "used"},
		{"http://x?token=short"},
		{},
		{"http://x?a=1&token=TTT&b=2", "new", "extra"},
	}

	testCases := []struct {
		token string
		valid bool
	}{
		{"abc123", true},
		{"xyz", false},
		{"nope", false},
		{"short", false},
		{"TTT", true},
	}

	server := sheetstest.NewServer(rows...)
	defer server.Close()

	client := newTestClient(t, server)

	for _, testCase := range testCases {
		testCase := testCase

		t.Run(testCase.token, func(t *testing.T) {
			valid, err := client.CheckValid(context.Background(), testToken, testTarget, testCase.token)
			require.NoError(t, err)

			assert.Equal(t, testCase.valid, valid)
		})
	}

	// every check reads the whole worksheet again
	_, reads, _ := server.Calls()
	assert.Equal(t, len(testCases), reads)
}

func TestClient_CheckValid_Error(t *testing.T) {
	t.Run("MissingToken", func(t *testing.T) {
		server := sheetstest.NewServer()
		defer server.Close()

		client := newTestClient(t, server)

		_, err := client.CheckValid(context.Background(), testToken, testTarget, "")

		var validationErr *links.ValidationError
		require.ErrorAs(t, err, &validationErr)
		assert.Equal(t, 0, server.TotalCalls())
	})

	t.Run("EmptySheet", func(t *testing.T) {
		server := sheetstest.NewServer()
		defer server.Close()

		client := newTestClient(t, server)

		valid, err := client.CheckValid(context.Background(), testToken, testTarget, "abc")
		require.NoError(t, err)

		assert.False(t, valid)
	})

	t.Run("Unauthorized", func(t *testing.T) {
		server := sheetstest.NewServer()
		defer server.Close()

		client := newTestClient(t, server)

		_, err := client.CheckValid(context.Background(), auth.BearerToken{AccessToken: "expired"}, testTarget, "abc")

		var readErr *UpstreamReadError
		require.ErrorAs(t, err, &readErr)
		assert.Equal(t, http.StatusUnauthorized, readErr.StatusCode)
		assert.Contains(t, readErr.Body, "invalid authentication credentials")
	})
}

func TestCell(t *testing.T) {
	assert.Equal(t, "new", cell("new"))
	assert.Equal(t, "42", cell(float64(42)))
	assert.Equal(t, "true", cell(true))
	assert.Equal(t, "", cell(nil))
}
