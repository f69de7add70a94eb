package query

import (
	"net/url"
	"strings"
)

// Params maps a parameter name to its values in occurrence order.
// Repeated keys accumulate; the first value is the one commands read.
type Params map[string][]string

// Get returns the first value for key, or "" when the key is absent.
func (p Params) Get(key string) string {
	values := p[key]
	if len(values) == 0 {
		return ""
	}
	return values[0]
}

// Has reports whether key is present with at least one value.
func (p Params) Has(key string) bool {
	return len(p[key]) > 0
}

// Add appends value to the list stored under key.
func (p Params) Add(key, value string) {
	p[key] = append(p[key], value)
}

// Set replaces all values stored under key.
func (p Params) Set(key, value string) {
	p[key] = []string{value}
}

// Merge copies all values from src into p, appending after any existing
// values under the same key.
func (p Params) Merge(src map[string][]string) {
	for key, values := range src {
		p[key] = append(p[key], values...)
	}
}

// Decode parses a raw query string into Params. It never fails: malformed
// tokens degrade to their raw form instead of aborting the request, and any
// input, including the empty string, yields a complete map.
//
// Tokens are separated by '&'; empty tokens are skipped. Only the first '='
// in a token delimits key from value, so "a=b=c" yields key "a" and value
// "b=c", and "=v" yields the empty key. A token without '=' is a key with an
// empty value. Key and value are percent-decoded independently as UTF-8.
func Decode(raw string) Params {
	params := make(Params)
	for _, token := range strings.Split(raw, "&") {
		if token == "" {
			continue
		}
		var key, value string
		if idx := strings.Index(token, "="); idx >= 0 {
			key = token[:idx]
			value = token[idx+1:]
		} else {
			key = token
		}
		params.Add(unescape(key), unescape(value))
	}
	return params
}

// unescape percent-decodes s, falling back to the raw text when the
// encoding is broken. A half-decoded parameter is worse than a raw one.
func unescape(s string) string {
	decoded, err := url.QueryUnescape(s)
	if err != nil {
		return s
	}
	return decoded
}
