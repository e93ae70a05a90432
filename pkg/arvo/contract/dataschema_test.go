package contract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDataschema(t *testing.T) {
	assert.Equal(t, "#/c/1/1.0.0", Dataschema("#/c/1", "1.0.0"))
	assert.Equal(t, "#/c/1/0.0.0", WildcardDataschema("#/c/1"))
}

func TestParseDataschema(t *testing.T) {
	tests := []struct {
		input   string
		uri     string
		version string
	}{
		{"#/c/1/1.0.0", "#/c/1", "1.0.0"},
		{"#/c/nested/deep/2.3.4", "#/c/nested/deep", "2.3.4"},
		{"#/c/1/0.0.0", "#/c/1", "0.0.0"},
		{"urn:example:orders/10.0.0", "urn:example:orders", "10.0.0"},
	}
	for _, tc := range tests {
		t.Run(tc.input, func(t *testing.T) {
			uri, version, err := ParseDataschema(tc.input)
			require.NoError(t, err)
			assert.Equal(t, tc.uri, uri)
			assert.Equal(t, tc.version, version)
		})
	}
}

func TestParseDataschemaFailures(t *testing.T) {
	for _, input := range []string{
		"",
		"no-slash",
		"/1.0.0",
		"#/c/1/latest",
		"#/c/1/1.0",
		"#/c/1/v1.0.0",
		"#/c/1/",
	} {
		t.Run(input, func(t *testing.T) {
			_, _, err := ParseDataschema(input)
			require.Error(t, err)
		})
	}
}

func TestParseDataschemaRoundTrip(t *testing.T) {
	original := Dataschema("#/orc/order/flow", "3.2.1")
	uri, version, err := ParseDataschema(original)
	require.NoError(t, err)
	assert.Equal(t, original, Dataschema(uri, version))
}
