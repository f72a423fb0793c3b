package http

import (
	"net/http"
	"net/url"
	"strings"

	"outlay/internal/core"
)

// ViewParams holds the dashboard's filter and sort state as parsed from
// request parameters. The zero values are the defaults: no search, newest
// first.
type ViewParams struct {
	Search  string
	SortKey core.SortKey
	SortDir core.SortDir
}

// ParseViewParams reads search/sort/dir from query or form values. Unknown
// sort keys fall back to date and unknown directions to descending, so a
// tampered URL degrades instead of erroring.
func ParseViewParams(values url.Values) ViewParams {
	p := ViewParams{
		Search:  sanitizeInput(values.Get("search")),
		SortKey: core.SortByDate,
		SortDir: core.SortDesc,
	}

	if key := core.SortKey(strings.TrimSpace(values.Get("sort"))); key.IsValid() {
		p.SortKey = key
	}
	if dir := core.SortDir(strings.TrimSpace(values.Get("dir"))); dir == core.SortAsc || dir == core.SortDesc {
		p.SortDir = dir
	}

	return p
}

// RequireMethod checks if the request method matches the expected method(s).
// Returns an error response builder if the method doesn't match.
func RequireMethod(r *http.Request, methods ...string) *HTMXResponseBuilder {
	for _, m := range methods {
		if r.Method == m {
			return nil
		}
	}
	return MethodNotAllowedError(strings.Join(methods, ", "))
}

// RequirePOST is a convenience function for POST-only handlers.
func RequirePOST(r *http.Request) *HTMXResponseBuilder {
	return RequireMethod(r, http.MethodPost)
}

// ParseFormOrFail parses the request form and returns an error response on
// failure. Returns nil on success.
func ParseFormOrFail(r *http.Request) *HTMXResponseBuilder {
	if err := r.ParseForm(); err != nil {
		return BadRequestError("Invalid request format")
	}
	return nil
}

// FormValue reads a sanitized form value.
func FormValue(r *http.Request, key string) string {
	return sanitizeInput(r.Form.Get(key))
}
