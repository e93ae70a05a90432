// Package semver implements the strict MAJOR.MINOR.PATCH version scheme
// used to key contract versions.
//
// The accepted grammar is deliberately narrower than full Semantic
// Versioning: exactly three dot-separated integer segments, no prerelease
// tags, no build metadata, no "v" prefix. Parsed versions are Masterminds
// semver values, so comparison and sorting reuse that engine.
package semver

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"

	sv "github.com/Masterminds/semver/v3"
)

// Wildcard is the reserved version string meaning "not version-specific".
// A contract may never declare it as a real version; version-agnostic
// artifacts such as system error schemas carry it in their dataschema.
const Wildcard = "0.0.0"

// Version is a parsed MAJOR.MINOR.PATCH triple. It aliases the Masterminds
// type so callers get its Compare, String and sorting behavior, but
// construction should always go through Parse, which is stricter than the
// upstream parsers.
type Version = sv.Version

// pattern accepts exactly three dot-separated runs of decimal digits.
var pattern = regexp.MustCompile(`^(\d+)\.(\d+)\.(\d+)$`)

// ParseError indicates a string that does not conform to MAJOR.MINOR.PATCH.
type ParseError struct {
	// Input is the rejected version string.
	Input string
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid semantic version %q: expected MAJOR.MINOR.PATCH with integer segments", e.Input)
}

// Parse parses version as strict MAJOR.MINOR.PATCH. Each segment must be a
// run of decimal digits; anything else (missing segments, signs, prerelease
// or build suffixes, surrounding whitespace) fails with *ParseError.
// Leading zeros are tolerated and compare numerically.
func Parse(version string) (*Version, error) {
	m := pattern.FindStringSubmatch(version)
	if m == nil {
		return nil, &ParseError{Input: version}
	}
	var segs [3]uint64
	for i, raw := range m[1:] {
		n, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return nil, &ParseError{Input: version}
		}
		segs[i] = n
	}
	return sv.New(segs[0], segs[1], segs[2], "", ""), nil
}

// MustParse is like Parse but panics on invalid input.
// Intended for package variables and tests with known-good literals.
func MustParse(version string) *Version {
	v, err := Parse(version)
	if err != nil {
		panic(err)
	}
	return v
}

// IsValid reports whether version parses as strict MAJOR.MINOR.PATCH.
func IsValid(version string) bool {
	_, err := Parse(version)
	return err == nil
}

// IsWildcard reports whether version is a syntactically valid version equal
// to the reserved wildcard 0.0.0.
func IsWildcard(version string) bool {
	v, err := Parse(version)
	return err == nil && v.Major() == 0 && v.Minor() == 0 && v.Patch() == 0
}

// Compare returns a positive value when a is newer than b, negative when
// older, and zero when equal. Precedence is major, then minor, then patch;
// there is no further tie-break.
func Compare(a, b *Version) int {
	return a.Compare(b)
}

// Sort orders versions ascending in place, oldest first.
func Sort(versions []*Version) {
	sort.Sort(sv.Collection(versions))
}

// Latest returns the highest version in versions, or nil when empty.
func Latest(versions []*Version) *Version {
	var best *Version
	for _, v := range versions {
		if best == nil || v.Compare(best) > 0 {
			best = v
		}
	}
	return best
}

// Oldest returns the lowest version in versions, or nil when empty.
func Oldest(versions []*Version) *Version {
	var best *Version
	for _, v := range versions {
		if best == nil || v.Compare(best) < 0 {
			best = v
		}
	}
	return best
}
