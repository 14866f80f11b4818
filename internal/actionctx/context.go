// Package actionctx provides the typed, total read layer over the raw
// payload attached to one action instance. Every getter returns an explicit
// absence flag instead of a sentinel, so a missing date can never be
// confused with a real one.
package actionctx

import (
	"net/url"
	"time"
)

// Source is the strongly-typed record the action was triggered from (the
// underlying card). It contributes values for keys the raw payload omits.
type Source interface {
	// ContextValue returns the value the record carries for key, if any.
	ContextValue(key string) (any, bool)
}

// Context is the per-invocation, read-only view over one action's data.
// Precedence is fixed: the action-specific payload wins over the source
// record for every key. Lifetime is bounded to a single modal presentation.
type Context struct {
	payload map[string]any
	source  Source
}

// New builds a Context from a raw payload and an optional source record.
// The payload map is not copied; callers must not mutate it afterwards.
func New(payload map[string]any, source Source) *Context {
	return &Context{payload: payload, source: source}
}

// lookup applies the payload-over-source precedence rule.
func (c *Context) lookup(key string) (any, bool) {
	if c == nil {
		return nil, false
	}
	if v, ok := c.payload[key]; ok {
		return v, true
	}
	if c.source != nil {
		return c.source.ContextValue(key)
	}
	return nil, false
}

// Has reports whether any value exists under key, regardless of type.
func (c *Context) Has(key string) bool {
	_, ok := c.lookup(key)
	return ok
}

// String returns the string value under key. Non-string values are treated
// as absent rather than coerced.
func (c *Context) String(key string) (string, bool) {
	v, ok := c.lookup(key)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// Number returns the numeric value under key as a float64.
func (c *Context) Number(key string) (float64, bool) {
	v, ok := c.lookup(key)
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}

// Date returns the date value under key. Accepted encodings, in order:
// time.Time values, RFC 3339 strings, and Unix-seconds numbers.
func (c *Context) Date(key string) (time.Time, bool) {
	v, ok := c.lookup(key)
	if !ok {
		return time.Time{}, false
	}
	switch d := v.(type) {
	case time.Time:
		return d, true
	case string:
		if ts, err := time.Parse(time.RFC3339, d); err == nil {
			return ts, true
		}
	case float64:
		return time.Unix(int64(d), 0).UTC(), true
	case int64:
		return time.Unix(d, 0).UTC(), true
	case int:
		return time.Unix(int64(d), 0).UTC(), true
	}
	return time.Time{}, false
}

// URL returns the URL value under key. Strings must parse as absolute URLs;
// a relative or malformed string is absent, never a dead link.
func (c *Context) URL(key string) (*url.URL, bool) {
	v, ok := c.lookup(key)
	if !ok {
		return nil, false
	}
	switch u := v.(type) {
	case *url.URL:
		if u != nil && u.IsAbs() {
			return u, true
		}
	case string:
		parsed, err := url.Parse(u)
		if err == nil && parsed.IsAbs() && parsed.Host != "" {
			return parsed, true
		}
	}
	return nil, false
}
