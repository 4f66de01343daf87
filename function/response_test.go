package function

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sheetlinks/sheetlinks/auth"
)

func TestKind(t *testing.T) {
	testCases := map[string]struct {
		err      error
		expected string
	}{
		"Plain": {
			err:      &auth.SigningError{Err: assert.AnError},
			expected: "auth.SigningError",
		},
		"Wrapped": {
			err:      fmt.Errorf("token exchange request: %w", &url.Error{Op: "Post", URL: "http://x", Err: errors.New("connection refused")}),
			expected: "url.Error",
		},
		"WrappedTwice": {
			err:      fmt.Errorf("outer: %w", fmt.Errorf("inner: %w", &auth.SigningError{Err: assert.AnError})),
			expected: "auth.SigningError",
		},
		"UnwrappableFormatted": {
			err:      fmt.Errorf("nothing wrapped"),
			expected: "errors.errorString",
		},
		"Timeout": {
			err:      fmt.Errorf("token exchange request: %w", &url.Error{Op: "Post", URL: "http://x", Err: context.DeadlineExceeded}),
			expected: "timeout",
		},
		"Canceled": {
			err:      fmt.Errorf("reading rows: %w", context.Canceled),
			expected: "canceled",
		},
		"Panic": {
			err:      &panicError{value: "boom"},
			expected: "panic",
		},
	}

	for name, testCase := range testCases {
		testCase := testCase

		t.Run(name, func(t *testing.T) {
			assert.Equal(t, testCase.expected, kind(testCase.err))
		})
	}
}
