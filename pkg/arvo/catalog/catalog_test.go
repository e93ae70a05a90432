package catalog_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/randalmurphal/arvo/pkg/arvo/catalog"
	"github.com/randalmurphal/arvo/pkg/arvo/contract"
)

func catalogContract(t *testing.T) *contract.Contract {
	t.Helper()
	accepts := contract.MustCompileSchema(map[string]any{
		"type":       "object",
		"properties": map[string]any{"orderId": map[string]any{"type": "string"}},
		"required":   []any{"orderId"},
	})
	emitted := contract.MustCompileSchema(map[string]any{
		"type":       "object",
		"properties": map[string]any{"reservationId": map[string]any{"type": "string"}},
	})
	c, err := contract.New(contract.Params{
		URI:  "#/cat/order/reserve",
		Type: "com.example.order.reserve",
		Versions: map[string]contract.VersionSpec{
			"1.0.0": {Accepts: accepts, Emits: map[string]*contract.Schema{"com.example.order.reserved": emitted}},
			"2.0.0": {Accepts: accepts},
		},
	})
	require.NoError(t, err)
	return c
}

// TestEntryForVersion verifies the per-version projection of a contract.
func TestEntryForVersion(t *testing.T) {
	c := catalogContract(t)

	e, err := catalog.EntryForVersion(c, "1.0.0")
	require.NoError(t, err)
	assert.Equal(t, "#/cat/order/reserve", e.URI)
	assert.Equal(t, "1.0.0", e.Version)
	assert.NotEmpty(t, e.Document)
	assert.False(t, e.StoredAt.IsZero())

	fingerprint, err := c.Fingerprint()
	require.NoError(t, err)
	assert.Equal(t, fingerprint, e.Fingerprint)

	doc, err := e.Decode()
	require.NoError(t, err)
	assert.Equal(t, "#/cat/order/reserve", doc.URI)
	assert.Equal(t, "1.0.0", doc.Version)
	assert.Equal(t, "com.example.order.reserve", doc.Accepts.Type)
	assert.Equal(t, "sys.com.example.order.reserve.error", doc.SystemError.Type)
	require.Len(t, doc.Emits, 1)
	assert.Equal(t, "com.example.order.reserved", doc.Emits[0].Type)
}

// TestEntryForVersionSelectors verifies alias selectors resolve before keying.
func TestEntryForVersionSelectors(t *testing.T) {
	c := catalogContract(t)

	latest, err := catalog.EntryForVersion(c, contract.VersionLatest)
	require.NoError(t, err)
	assert.Equal(t, "2.0.0", latest.Version)

	oldest, err := catalog.EntryForVersion(c, contract.VersionOldest)
	require.NoError(t, err)
	assert.Equal(t, "1.0.0", oldest.Version)

	_, err = catalog.EntryForVersion(c, "3.0.0")
	var unknownErr *contract.UnknownVersionError
	assert.ErrorAs(t, err, &unknownErr)
}

// TestEntryFingerprintSharedAcrossVersions verifies all versions of one
// contract carry the same contract-level fingerprint.
func TestEntryFingerprintSharedAcrossVersions(t *testing.T) {
	c := catalogContract(t)

	one, err := catalog.EntryForVersion(c, "1.0.0")
	require.NoError(t, err)
	two, err := catalog.EntryForVersion(c, "2.0.0")
	require.NoError(t, err)

	assert.Equal(t, one.Fingerprint, two.Fingerprint)
	assert.NotEqual(t, one.Document, two.Document)
}

// TestEntryRoundTripThroughStore verifies a projected entry survives storage.
func TestEntryRoundTripThroughStore(t *testing.T) {
	ctx := context.Background()
	c := catalogContract(t)

	store, err := catalog.NewSQLiteStore(":memory:")
	require.NoError(t, err)
	defer store.Close()

	for _, version := range c.VersionNumbers() {
		e, err := catalog.EntryForVersion(c, version)
		require.NoError(t, err)
		require.NoError(t, store.Put(ctx, e))
	}

	versions, err := store.Versions(ctx, c.URI())
	require.NoError(t, err)
	assert.Equal(t, []string{"1.0.0", "2.0.0"}, versions)

	got, err := store.Get(ctx, c.URI(), "1.0.0")
	require.NoError(t, err)
	doc, err := got.Decode()
	require.NoError(t, err)
	assert.Equal(t, "com.example.order.reserve", doc.Accepts.Type)
}

// TestDecodeInvalidDocument verifies corrupted documents fail loudly.
func TestDecodeInvalidDocument(t *testing.T) {
	e := &catalog.Entry{Document: []byte("{not json")}
	_, err := e.Decode()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode version document")
}
