package gazetteer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	assert.Equal(t, "ecole primaire mondoubleau", Normalize("École primaire Mondoubleau"))
	assert.Equal(t, "la ferte bernard", Normalize("La Ferté-Bernard"))
	assert.Equal(t, "epuisay", Normalize("Épuisay"))
	assert.Equal(t, "12 rue de l eglise", Normalize("  12, rue de l'Église "))
	assert.Equal(t, "", Normalize("  ...  "))
}

func TestSimilarity(t *testing.T) {
	assert.Equal(t, 1.0, Similarity("mondoubleau", "mondoubleau"))

	// One-letter typo in a long word stays above the threshold.
	assert.GreaterOrEqual(t, Similarity("mondoubleu", "mondoubleau"), 0.8)

	// Words of very different length are incomparable.
	assert.Zero(t, Similarity("tours", "toulouse"))
	assert.Zero(t, Similarity("", "tours"))

	assert.Less(t, Similarity("vendome", "vendeme"), 1.0)
	assert.GreaterOrEqual(t, Similarity("vendome", "vendeme"), 0.8)
}

func TestLookup_ContainmentStripsNoise(t *testing.T) {
	g, err := Default()
	require.NoError(t, err)

	entry, ok := g.Lookup("École primaire Mondoubleau")
	require.True(t, ok)
	assert.Equal(t, "Mondoubleau", entry.Name)
	assert.InDelta(t, 47.9819, entry.Latitude, 1e-4)
	assert.InDelta(t, 0.8997, entry.Longitude, 1e-4)
	assert.Equal(t, "41170", entry.PostalCode)
}

func TestLookup_DiacriticInsensitive(t *testing.T) {
	g, err := Default()
	require.NoError(t, err)

	entry, ok := g.Lookup("gymnase municipal VENDOME")
	require.True(t, ok)
	assert.Equal(t, "Vendôme", entry.Name)
}

func TestLookup_CompoundNameComponents(t *testing.T) {
	g, err := Default()
	require.NoError(t, err)

	// "Braye" alone matches a compound commune name per-word. The longest
	// key wins the tie deterministically.
	entry, ok := g.Lookup("salle des fêtes braye")
	require.True(t, ok)
	assert.Equal(t, "Savigny-sur-Braye", entry.Name)
}

func TestLookup_FuzzyTypo(t *testing.T) {
	g, err := Default()
	require.NoError(t, err)

	entry, ok := g.Lookup("college de Mondoubleu")
	require.True(t, ok)
	assert.Equal(t, "Mondoubleau", entry.Name)
}

func TestLookup_NoMatch(t *testing.T) {
	g, err := Default()
	require.NoError(t, err)

	_, ok := g.Lookup("zzgh qwrtx")
	assert.False(t, ok)

	_, ok = g.Lookup("")
	assert.False(t, ok)
}

func TestLookup_Deterministic(t *testing.T) {
	g, err := Default()
	require.NoError(t, err)

	first, ok := g.Lookup("mairie de tours")
	require.True(t, ok)
	for i := 0; i < 10; i++ {
		again, ok := g.Lookup("mairie de tours")
		require.True(t, ok)
		assert.Equal(t, first, again)
	}
}

func TestParse_BadData(t *testing.T) {
	_, err := Parse([]byte("{not json"))
	assert.Error(t, err)
}
