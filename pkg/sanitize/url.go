package sanitize

import (
	"net/url"
	"strings"
)

// urlAttrs are attributes whose values are fetched or navigated to.
var urlAttrs = map[string]bool{
	"href":       true,
	"src":        true,
	"cite":       true,
	"action":     true,
	"formaction": true,
	"poster":     true,
}

// externalSchemes are schemes that point outside the document set.
var externalSchemes = map[string]bool{
	"http":  true,
	"https": true,
	"ftp":   true,
}

// Scheme extracts the lower-cased scheme of raw. Browsers ignore ASCII
// whitespace and control characters inside a scheme, so they are removed
// before looking for the first ':'. A relative reference yields "" and
// ok=true; a value with a malformed scheme yields ok=false.
func Scheme(raw string) (scheme string, ok bool) {
	s := stripControl(raw)
	i := strings.IndexAny(s, ":/?#")
	if i < 0 || s[i] != ':' {
		return "", true
	}
	scheme = strings.ToLower(s[:i])
	if !schemePattern.MatchString(scheme) {
		return "", false
	}
	return scheme, true
}

func stripControl(s string) string {
	return strings.Map(func(r rune) rune {
		if r <= 0x20 || r == 0x7f {
			return -1
		}
		return r
	}, s)
}

// urlAllowed reports whether raw may be kept under the compiled policy.
func (c *compiled) urlAllowed(raw string) bool {
	scheme, ok := Scheme(raw)
	if !ok {
		return false
	}
	if _, err := url.Parse(strings.TrimSpace(raw)); err != nil {
		return false
	}
	if scheme == "" {
		return true
	}
	return c.schemes[scheme]
}

// IsExternal reports whether href targets an http, https or ftp resource,
// including protocol-relative "//host" references. Browsers read a
// backslash in that prefix as a slash, so "/\host" and "\\host" count too.
func IsExternal(href string) bool {
	s := stripControl(href)
	if len(s) >= 2 && (s[0] == '/' || s[0] == '\\') && (s[1] == '/' || s[1] == '\\') {
		return true
	}
	scheme, ok := Scheme(href)
	return ok && externalSchemes[scheme]
}
