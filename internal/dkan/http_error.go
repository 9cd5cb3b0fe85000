package dkan

import (
	"fmt"
	"net/http"
	"strings"
)

// HTTPError summarizes a non-2xx DKAN API response. The body hint is
// truncated so auth failures and server stack traces stay readable in logs.
type HTTPError struct {
	Op         string
	StatusCode int
	Status     string
	Snippet    string
}

func (e *HTTPError) Error() string {
	parts := []string{
		fmt.Sprintf("dkan api error: op=%s status=%s", e.Op, e.Status),
	}
	if e.Snippet != "" {
		parts = append(parts, "body="+e.Snippet)
	}
	return strings.Join(parts, " ")
}

func newHTTPError(op string, resp *http.Response, body []byte) error {
	h := &HTTPError{Op: op}
	if resp != nil {
		h.StatusCode = resp.StatusCode
		h.Status = resp.Status
	}
	h.Snippet = truncateBody(body)
	return h
}

func truncateBody(body []byte) string {
	const max = 256
	s := string(body)
	truncated := false
	if len(s) > max {
		s = s[:max]
		truncated = true
	}
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.ReplaceAll(s, "\r", " ")
	s = strings.TrimSpace(s)
	if truncated && s != "" {
		s += "..."
	}
	return s
}
