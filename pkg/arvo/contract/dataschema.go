package contract

import (
	"fmt"
	"strings"

	"github.com/randalmurphal/arvo/pkg/arvo/semver"
)

// Dataschema formats the dataschema attribute value that binds an event to
// one contract version: "{uri}/{version}".
func Dataschema(uri, version string) string {
	return uri + "/" + version
}

// WildcardDataschema returns the version-agnostic dataschema for uri, used
// by events whose schema is fixed across versions such as system errors.
func WildcardDataschema(uri string) string {
	return Dataschema(uri, semver.Wildcard)
}

// ParseDataschema splits a dataschema value into contract URI and version.
// The version is the segment after the last slash and must parse as
// MAJOR.MINOR.PATCH; everything before it is the URI.
func ParseDataschema(dataschema string) (uri, version string, err error) {
	i := strings.LastIndex(dataschema, "/")
	if i < 0 {
		return "", "", fmt.Errorf("dataschema %q has no version suffix", dataschema)
	}
	uri, version = dataschema[:i], dataschema[i+1:]
	if uri == "" {
		return "", "", fmt.Errorf("dataschema %q has an empty contract uri", dataschema)
	}
	if !semver.IsValid(version) {
		return "", "", fmt.Errorf("dataschema %q version %q is not MAJOR.MINOR.PATCH", dataschema, version)
	}
	return uri, version, nil
}
