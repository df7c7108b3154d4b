// Package handle canonicalizes free-form social-network handles.
//
// Handles arrive from spreadsheets typed by people: with stray spaces, with a
// leading "@", or pasted as a full profile URL. [Normalize] reduces all of
// these to the bare username used as the provider lookup key:
//
//	handle.Normalize("@Gitcoin")                     // "Gitcoin"
//	handle.Normalize("https://twitter.com/Gitcoin")  // "Gitcoin"
//	handle.Normalize(" Git coin ")                   // "Gitcoin"
//
// Malformed input yields an error wrapping [ErrInvalidHandle]; the caller is
// expected to skip that row and keep processing the rest of the batch.
package handle

import (
	"errors"
	"strings"
	"unicode"

	errs "github.com/matzehuels/impactgraph/pkg/errors"
)

// ErrInvalidHandle is returned when a handle is empty or reduces to nothing.
var ErrInvalidHandle = errors.New("invalid handle")

// sigil is the single leading character stripped from handles.
const sigil = '@'

// Normalize converts raw into a lookup key.
//
// It removes all whitespace, keeps only the final path segment when raw
// contains a '/', drops any query string or fragment from that segment, and
// strips one leading '@'. Case is preserved.
func Normalize(raw string) (string, error) {
	s := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, raw)

	if strings.Contains(s, "/") {
		s = lastSegment(s)
	}
	if i := strings.IndexAny(s, "?#"); i >= 0 {
		s = s[:i]
	}
	s = strings.TrimPrefix(s, string(sigil))

	if s == "" {
		return "", errs.Wrap(errs.ErrCodeInvalidHandle, ErrInvalidHandle, "handle %q is empty after normalization", raw)
	}
	return s, nil
}

// ProfileURL returns the public profile link for a normalized handle.
func ProfileURL(h string) string {
	if h == "" {
		return ""
	}
	return "https://twitter.com/" + h
}

// lastSegment returns everything after the final '/'. A trailing slash
// therefore yields an empty segment and the handle is rejected.
func lastSegment(s string) string {
	return s[strings.LastIndex(s, "/")+1:]
}
