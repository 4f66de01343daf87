package links

import (
	"strings"

	"github.com/gofrs/uuid"
)

// Query parameter markers, in matching order.
var tokenMarkers = []string{"?token=", "&token="}

// ExtractToken returns the value of the token query parameter embedded in a link.
//
// The value following the first "?token=" is used; only when the link has no
// "?token=" is the first "&token=" considered. The value runs to the next "&"
// or to the end of the link, fragments included. Because both markers start
// with a separator, parameters merely ending in "token" (e.g. "other_token=")
// never match.
//
// ok is false when the link carries no token or the token is empty.
func ExtractToken(link string) (token string, ok bool) {
	for _, marker := range tokenMarkers {
		i := strings.Index(link, marker)
		if i < 0 {
			continue
		}

		value := link[i+len(marker):]
		if end := strings.IndexByte(value, '&'); end >= 0 {
			value = value[:end]
		}

		return value, value != ""
	}

	return "", false
}

// FindValid scans rows in storage order and returns the first row whose link
// carries exactly the requested token and whose status is StatusNew.
func FindValid(rows []Row, token string) (Row, bool) {
	if token == "" {
		return Row{}, false
	}

	for _, row := range rows {
		candidate, ok := ExtractToken(row.Link)
		if !ok {
			continue
		}

		if candidate == token && row.Status == StatusNew {
			return row, true
		}
	}

	return Row{}, false
}

// NewLink mints a link by attaching a random UUID token to baseURL.
func NewLink(baseURL string) (string, error) {
	id, err := uuid.NewV4()
	if err != nil {
		return "", err
	}

	return WithToken(baseURL, id.String()), nil
}

// WithToken attaches token to baseURL.
//
// Templates already ending in "token=" (e.g. "https://example.com/reg?token=")
// are completed as is, otherwise a token query parameter is added.
func WithToken(baseURL string, token string) string {
	switch {
	case strings.HasSuffix(baseURL, "?token="), strings.HasSuffix(baseURL, "&token="):
		return baseURL + token
	case strings.HasSuffix(baseURL, "?"), strings.HasSuffix(baseURL, "&"):
		return baseURL + "token=" + token
	case strings.Contains(baseURL, "?"):
		return baseURL + "&token=" + token
	default:
		return baseURL + "?token=" + token
	}
}
