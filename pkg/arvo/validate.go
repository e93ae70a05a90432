package arvo

import (
	"net/url"
	"regexp"
	"strings"
	"unicode/utf8"
)

// eventTypePattern is the lowercase dotted identifier rule shared by contract
// types, emitted event types, orchestrator names inside subjects, and
// initiators: alphanumeric segments separated by single dots, two segments
// minimum.
var eventTypePattern = regexp.MustCompile(`^[a-z0-9]+(\.[a-z0-9]+)+$`)

// ValidateEventType reports whether s is a lowercase dotted identifier
// such as "com.example.order" or "svc.do.thing".
func ValidateEventType(s string) bool {
	return eventTypePattern.MatchString(s)
}

// ValidateURI reports whether s is already a properly percent-encoded URI:
// it must survive a percent-decode then re-encode round trip unchanged.
// Malformed escapes and escapes that decode to invalid UTF-8 fail closed.
func ValidateURI(s string) bool {
	decoded, err := url.PathUnescape(s)
	if err != nil {
		return false
	}
	if !utf8.ValidString(decoded) {
		return false
	}
	return encodeURI(decoded) == s
}

const upperhex = "0123456789ABCDEF"

// encodeURI percent-encodes every byte outside the URI-safe set, leaving a
// well-formed URI untouched. The safe set matches ECMAScript's encodeURI
// (RFC 3986 reserved plus unreserved characters), which defines the
// round-trip validation behavior expected by peers on other runtimes.
func encodeURI(s string) string {
	escapes := 0
	for i := 0; i < len(s); i++ {
		if !uriSafe(s[i]) {
			escapes++
		}
	}
	if escapes == 0 {
		return s
	}

	var b strings.Builder
	b.Grow(len(s) + 2*escapes)
	for i := 0; i < len(s); i++ {
		c := s[i]
		if uriSafe(c) {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(upperhex[c>>4])
		b.WriteByte(upperhex[c&0xf])
	}
	return b.String()
}

func uriSafe(c byte) bool {
	switch {
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		return true
	}
	switch c {
	case ';', ',', '/', '?', ':', '@', '&', '=', '+', '$',
		'-', '_', '.', '!', '~', '*', '\'', '(', ')', '#':
		return true
	}
	return false
}
