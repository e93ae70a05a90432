package contract

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	schemaA = MustCompileSchema(map[string]any{
		"type": "object",
		"properties": map[string]any{
			"value": map[string]any{"type": "string"},
		},
		"required": []any{"value"},
	})
	schemaB = MustCompileSchema(map[string]any{
		"type": "object",
		"properties": map[string]any{
			"result": map[string]any{"type": "number"},
		},
		"required": []any{"result"},
	})
)

func minimalParams() Params {
	return Params{
		URI:  "#/c/1",
		Type: "svc.do.thing",
		Versions: map[string]VersionSpec{
			"1.0.0": {
				Accepts: schemaA,
				Emits:   map[string]*Schema{"svc.do.result": schemaB},
			},
		},
	}
}

func TestNewMinimalContract(t *testing.T) {
	c, err := New(minimalParams())
	require.NoError(t, err)

	assert.Equal(t, "#/c/1", c.URI())
	assert.Equal(t, "svc.do.thing", c.Type())
	assert.Equal(t, []string{"1.0.0"}, c.VersionNumbers())

	v, err := c.Version("1.0.0")
	require.NoError(t, err)
	assert.Equal(t, "svc.do.thing", v.Accepts().Type)
	assert.Same(t, schemaA, v.Accepts().Schema)

	emit, ok := v.Emit("svc.do.result")
	require.True(t, ok)
	assert.Same(t, schemaB, emit)

	assert.Equal(t, "sys.svc.do.thing.error", c.SystemError().Type)
	assert.Equal(t, "sys.svc.do.thing.error", v.SystemError().Type)
}

func TestNewValidation(t *testing.T) {
	t.Run("empty uri", func(t *testing.T) {
		p := minimalParams()
		p.URI = ""
		_, err := New(p)
		var uriErr *InvalidURIError
		require.ErrorAs(t, err, &uriErr)
	})

	t.Run("malformed uri", func(t *testing.T) {
		p := minimalParams()
		p.URI = "has space"
		_, err := New(p)
		var uriErr *InvalidURIError
		require.ErrorAs(t, err, &uriErr)
		assert.Equal(t, "has space", uriErr.URI)
	})

	t.Run("invalid type", func(t *testing.T) {
		p := minimalParams()
		p.Type = "Not Valid"
		_, err := New(p)
		var typeErr *InvalidEventTypeError
		require.ErrorAs(t, err, &typeErr)
		assert.Equal(t, "Not Valid", typeErr.EventType)
	})

	t.Run("dotless type", func(t *testing.T) {
		p := minimalParams()
		p.Type = "single"
		_, err := New(p)
		var typeErr *InvalidEventTypeError
		require.ErrorAs(t, err, &typeErr)
	})

	t.Run("invalid version key", func(t *testing.T) {
		p := minimalParams()
		p.Versions["1.0"] = p.Versions["1.0.0"]
		delete(p.Versions, "1.0.0")
		_, err := New(p)
		var verErr *InvalidVersionError
		require.ErrorAs(t, err, &verErr)
		assert.Equal(t, "1.0", verErr.Version)
	})

	t.Run("wildcard version is reserved", func(t *testing.T) {
		p := minimalParams()
		p.Versions["0.0.0"] = p.Versions["1.0.0"]
		_, err := New(p)
		var resErr *ReservedVersionError
		require.ErrorAs(t, err, &resErr)
		assert.Equal(t, "#/c/1", resErr.URI)
	})

	t.Run("invalid emitted type", func(t *testing.T) {
		p := minimalParams()
		p.Versions["1.0.0"].Emits["BAD TYPE"] = schemaB
		_, err := New(p)
		var typeErr *InvalidEventTypeError
		require.ErrorAs(t, err, &typeErr)
		assert.Equal(t, "BAD TYPE", typeErr.EventType)
		assert.Equal(t, "1.0.0", typeErr.Version)
	})

	t.Run("nil accepts schema", func(t *testing.T) {
		p := minimalParams()
		p.Versions["1.0.0"] = VersionSpec{Accepts: nil}
		_, err := New(p)
		var schemaErr *InvalidSchemaError
		require.ErrorAs(t, err, &schemaErr)
		assert.Equal(t, "1.0.0", schemaErr.Version)
	})

	t.Run("nil emit schema", func(t *testing.T) {
		p := minimalParams()
		p.Versions["1.0.0"].Emits["svc.do.other"] = nil
		_, err := New(p)
		var schemaErr *InvalidSchemaError
		require.ErrorAs(t, err, &schemaErr)
		assert.Equal(t, "svc.do.other", schemaErr.EventType)
	})

	t.Run("empty version set", func(t *testing.T) {
		p := minimalParams()
		p.Versions = nil
		_, err := New(p)
		require.ErrorIs(t, err, ErrEmptyVersionSet)
	})
}

func multiVersionContract(t *testing.T) *Contract {
	t.Helper()
	c, err := New(Params{
		URI:  "#/c/multi",
		Type: "svc.do.thing",
		Versions: map[string]VersionSpec{
			"1.0.0": {Accepts: schemaA},
			"2.0.0": {Accepts: schemaB},
			"1.5.0": {Accepts: schemaA},
		},
	})
	require.NoError(t, err)
	return c
}

func TestVersionResolution(t *testing.T) {
	c := multiVersionContract(t)

	for _, selector := range []string{VersionLatest, VersionAny} {
		v, err := c.Version(selector)
		require.NoError(t, err)
		assert.Equal(t, "2.0.0", v.Version(), "selector %q", selector)
	}

	oldest, err := c.Version(VersionOldest)
	require.NoError(t, err)
	assert.Equal(t, "1.0.0", oldest.Version())

	exact, err := c.Version("1.5.0")
	require.NoError(t, err)
	assert.Equal(t, "1.5.0", exact.Version())
	assert.Same(t, schemaA, exact.Accepts().Schema)
}

func TestVersionResolutionFailures(t *testing.T) {
	c := multiVersionContract(t)

	for _, selector := range []string{"3.0.0", "not-a-version", "0.0.0", "", "LATEST"} {
		_, err := c.Version(selector)
		var unkErr *UnknownVersionError
		require.ErrorAs(t, err, &unkErr, "selector %q", selector)
		assert.Equal(t, selector, unkErr.Requested)
		assert.Equal(t, "#/c/multi", unkErr.URI)
	}
}

func TestVersionOrderingIsSemantic(t *testing.T) {
	// Lexicographic ordering would put "10.0.0" before "9.0.0"; semantic
	// ordering must not.
	c, err := New(Params{
		URI:  "#/c/order",
		Type: "svc.do.thing",
		Versions: map[string]VersionSpec{
			"9.0.0":  {Accepts: schemaA},
			"10.0.0": {Accepts: schemaA},
			"1.2.3":  {Accepts: schemaA},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"1.2.3", "9.0.0", "10.0.0"}, c.VersionNumbers())
	assert.Equal(t, "10.0.0", c.LatestVersion())
	assert.Equal(t, "1.2.3", c.OldestVersion())
}

func TestSystemErrorRecord(t *testing.T) {
	c, err := New(minimalParams())
	require.NoError(t, err)

	record := c.SystemError()
	assert.Equal(t, "sys.svc.do.thing.error", record.Type)

	assert.NoError(t, record.Schema.Validate(map[string]any{
		"errorName":    "Boom",
		"errorMessage": "it broke",
		"errorStack":   nil,
	}))
	assert.Error(t, record.Schema.Validate(map[string]any{
		"errorName": "Boom",
	}))
}

func TestContractImmutability(t *testing.T) {
	p := Params{
		URI:      "#/c/immutable",
		Type:     "svc.do.thing",
		Metadata: map[string]any{"owner": "payments"},
		Versions: map[string]VersionSpec{
			"1.0.0": {
				Accepts: schemaA,
				Emits:   map[string]*Schema{"svc.do.result": schemaB},
			},
		},
	}
	c, err := New(p)
	require.NoError(t, err)

	// Mutating the params after construction must not reach the contract.
	delete(p.Versions, "1.0.0")
	p.Metadata["owner"] = "hijacked"

	assert.Equal(t, []string{"1.0.0"}, c.VersionNumbers())
	assert.Equal(t, "payments", c.Metadata()["owner"])

	// Mutating accessor results must not reach the contract either.
	c.Metadata()["owner"] = "still hijacked"
	assert.Equal(t, "payments", c.Metadata()["owner"])

	v, err := c.Version("1.0.0")
	require.NoError(t, err)
	emitted := v.EmitMap()
	delete(emitted, "svc.do.result")
	_, ok := v.Emit("svc.do.result")
	assert.True(t, ok)
}

func TestVersionedViewDelegation(t *testing.T) {
	c, err := New(Params{
		URI:         "#/c/view",
		Type:        "svc.do.thing",
		Description: "does the thing",
		Metadata:    map[string]any{"team": "core"},
		Versions: map[string]VersionSpec{
			"1.0.0": {
				Accepts:  schemaA,
				Emits:    map[string]*Schema{"svc.do.result": schemaB, "svc.do.audit": schemaB},
				Metadata: map[string]any{"deprecated": false},
			},
		},
	})
	require.NoError(t, err)

	v, err := c.Version(VersionLatest)
	require.NoError(t, err)

	assert.Same(t, c, v.Contract())
	assert.Equal(t, "#/c/view", v.URI())
	assert.Equal(t, "does the thing", v.Description())
	assert.Equal(t, "core", v.Metadata()["team"])
	assert.Equal(t, false, v.VersionMetadata()["deprecated"])
	assert.Equal(t, "#/c/view/1.0.0", v.Dataschema())

	emits := v.Emits()
	require.Len(t, emits, 2)
	assert.Equal(t, "svc.do.audit", emits[0].Type, "emits are sorted by type")
	assert.Equal(t, "svc.do.result", emits[1].Type)
}

func TestMustNew(t *testing.T) {
	assert.NotPanics(t, func() { MustNew(minimalParams()) })
	assert.Panics(t, func() {
		MustNew(Params{URI: "#/c/1", Type: "bad type"})
	})
}

func TestConcurrentResolution(t *testing.T) {
	c := multiVersionContract(t)

	done := make(chan error, 32)
	for i := 0; i < 32; i++ {
		go func() {
			for j := 0; j < 100; j++ {
				if _, err := c.Version(VersionLatest); err != nil {
					done <- err
					return
				}
				if _, err := c.Version("1.5.0"); err != nil {
					done <- err
					return
				}
			}
			done <- nil
		}()
	}
	for i := 0; i < 32; i++ {
		require.NoError(t, <-done)
	}
}

func TestErrEmptyVersionSetIsSentinel(t *testing.T) {
	p := minimalParams()
	p.Versions = map[string]VersionSpec{}
	_, err := New(p)
	assert.True(t, errors.Is(err, ErrEmptyVersionSet))
	assert.Contains(t, err.Error(), "#/c/1")
}
