package matcher

import (
	"strings"
	"testing"

	"chat-order-service/internal/models"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCatalog() []models.CatalogItem {
	return []models.CatalogItem{
		{ID: 1, Name: "Cheeseburger", Category: models.CategoryMain, Price: 50, IsAvailable: true},
		{ID: 2, Name: "Iced Tea", Category: models.CategoryBeverage, Price: 20, IsAvailable: true},
		{ID: 3, Name: "Chicken Adobo Rice", Category: models.CategoryMain, Price: 85, IsAvailable: true},
		{ID: 4, Name: "Pork Adobo Rice", Category: models.CategoryMain, Price: 80, IsAvailable: true},
		{ID: 5, Name: "Tea", Category: models.CategoryBeverage, Price: 15, IsAvailable: true},
	}
}

func TestMatchExact(t *testing.T) {
	ix := NewIndex(testCatalog())

	matches := ix.Match("  cHeeSeBuRGer ")
	require.Len(t, matches, 1)
	assert.Equal(t, int64(1), matches[0].Item.ID)
	assert.Equal(t, 1.0, matches[0].Confidence)
	assert.Equal(t, MatchExact, matches[0].Type)
}

func TestMatchExactShortWordName(t *testing.T) {
	ix := NewIndex(testCatalog())

	m, ok := ix.Best("tea")
	require.True(t, ok)
	assert.Equal(t, int64(5), m.Item.ID)
	assert.Equal(t, MatchExact, m.Type)
}

func TestMatchShortWordNameNeverPartial(t *testing.T) {
	ix := NewIndex([]models.CatalogItem{{ID: 5, Name: "Tea", Price: 15}})

	assert.Empty(t, ix.Match("a hot tea please"))
}

func TestMatchPartialConfidence(t *testing.T) {
	ix := NewIndex(testCatalog())

	// "iced" is the only anchor word of "Iced Tea", so it counts as a full hit.
	matches := ix.Match("an iced tea")
	require.NotEmpty(t, matches)
	assert.Equal(t, int64(2), matches[0].Item.ID)
	assert.Equal(t, 1.0, matches[0].Confidence)
	assert.Equal(t, MatchExact, matches[0].Type)

	matches = ix.Match("some chicken rice")
	require.Len(t, matches, 2)
	assert.Equal(t, int64(3), matches[0].Item.ID)
	assert.InDelta(t, 2.0/3.0, matches[0].Confidence, 1e-9)
	assert.Equal(t, MatchPartial, matches[0].Type)
	assert.Equal(t, int64(4), matches[1].Item.ID)
	assert.InDelta(t, 1.0/3.0, matches[1].Confidence, 1e-9)
}

func TestMatchAnchorsIgnoreWordPunctuation(t *testing.T) {
	ix := NewIndex([]models.CatalogItem{
		{ID: 1, Name: "Fries (Large)", Price: 60},
		{ID: 2, Name: "Spaghetti, Jolly-Style", Price: 70},
	})

	m, ok := ix.Best("large fries")
	require.True(t, ok)
	assert.Equal(t, int64(1), m.Item.ID)
	assert.Equal(t, 1.0, m.Confidence)

	m, ok = ix.Best("some spaghetti")
	require.True(t, ok)
	assert.Equal(t, int64(2), m.Item.ID)
	assert.InDelta(t, 0.5, m.Confidence, 1e-9)
}

func TestMatchTiesKeepCatalogOrder(t *testing.T) {
	ix := NewIndex(testCatalog())

	matches := ix.Match("adobo")
	require.Len(t, matches, 2)
	assert.Equal(t, int64(3), matches[0].Item.ID)
	assert.Equal(t, int64(4), matches[1].Item.ID)
	assert.Equal(t, matches[0].Confidence, matches[1].Confidence)
}

func TestMatchWholeWordsOnly(t *testing.T) {
	ix := NewIndex(testCatalog())

	assert.Empty(t, ix.Match("cheeseburgers"))
	assert.Empty(t, ix.Match("riced"))
}

func TestMatchNoHit(t *testing.T) {
	ix := NewIndex(testCatalog())

	assert.Empty(t, ix.Match("sandwich"))
	assert.Empty(t, ix.Match("   "))
	_, ok := ix.Best("sandwich")
	assert.False(t, ok)
}

func TestSuggest(t *testing.T) {
	ix := NewIndex(testCatalog())

	assert.Equal(t, []string{"Chicken Adobo Rice", "Pork Adobo Rice"}, ix.Suggest("adobo", 3))
	assert.Equal(t, []string{"Cheeseburger", "Iced Tea", "Chicken Adobo Rice"}, ix.Suggest("sandwich", 3))
	assert.Equal(t, []string{"Iced Tea"}, ix.Suggest("tea", 1))
	assert.Nil(t, ix.Suggest("tea", 0))
}

func TestIndexSkipsBlankNames(t *testing.T) {
	ix := NewIndex([]models.CatalogItem{{ID: 1, Name: "  "}, {ID: 2, Name: "Halo Halo"}})

	assert.Equal(t, 1, ix.Len())
	assert.Equal(t, "Halo Halo", ix.Items()[0].Name)
}

func TestExactMatchProperty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("exact case-insensitive name always matches with confidence 1", prop.ForAll(
		func(words []string, upper bool) bool {
			name := strings.Join(words, " ")
			ix := NewIndex([]models.CatalogItem{
				{ID: 1, Name: "Zzzz Placeholder"},
				{ID: 2, Name: name},
			})

			text := strings.ToLower(name)
			if upper {
				text = strings.ToUpper(name)
			}

			m, ok := ix.Best(text)
			return ok && m.Confidence == 1.0 && m.Type == MatchExact && strings.EqualFold(m.Item.Name, name)
		},
		gen.SliceOfN(3, gen.Identifier()).SuchThat(func(ws []string) bool { return len(ws) > 0 }),
		gen.Bool(),
	))

	properties.TestingRun(t)
}

func TestShortWordsNeverPartialProperty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("names of words up to 3 chars never match partially", prop.ForAll(
		func(name string) bool {
			ix := NewIndex([]models.CatalogItem{{ID: 1, Name: name}})
			return len(ix.Match("i want "+name+" please")) == 0
		},
		gen.RegexMatch(`[a-z]{1,3}( [a-z]{1,3}){0,2}`),
	))

	properties.TestingRun(t)
}
