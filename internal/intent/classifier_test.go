package intent

import (
	"testing"

	"chat-order-service/internal/matcher"
	"chat-order-service/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testIndex() *matcher.Index {
	return matcher.NewIndex([]models.CatalogItem{
		{ID: 1, Name: "Cheeseburger", Category: models.CategoryMain, Price: 50, IsAvailable: true},
		{ID: 2, Name: "Iced Tea", Category: models.CategoryBeverage, Price: 20, IsAvailable: true},
		{ID: 3, Name: "Chocolate Cake", Category: models.CategoryDessert, Price: 45, IsAvailable: true},
		{ID: 4, Name: "Burger Steak", Category: models.CategoryMain, Price: 65, IsAvailable: true},
	})
}

func input(raw string, state models.SessionState) Input {
	return Input{Raw: raw, Text: normalize(raw), State: state, Index: testIndex()}
}

func TestClassifyPrecedence(t *testing.T) {
	c := NewClassifier()
	ix := testIndex()

	tests := []struct {
		name    string
		message string
		state   models.SessionState
		want    Kind
	}{
		{"checkout", "Checkout", models.SessionStateInitial, KindCheckout},
		{"checkout phrase with punctuation", "That's all!", models.SessionStateConfirming, KindCheckout},
		{"proceed to checkout", "proceed to checkout", models.SessionStateConfirming, KindCheckout},
		{"checkout only as whole message", "how do I checkout", models.SessionStateInitial, KindUnknown},
		{"cancel", "cancel my order", models.SessionStateConfirming, KindCancel},
		{"start over", "Start over.", models.SessionStateInitial, KindCancel},
		{"greeting", "hello", models.SessionStateInitial, KindGreeting},
		{"greeting wins over order", "hi, I want a cheeseburger", models.SessionStateInitial, KindGreeting},
		{"good morning", "Good morning!", models.SessionStateInitial, KindGreeting},
		{"hey inside word is not a greeting", "they said thanks", models.SessionStateInitial, KindThanks},
		{"order", "I want a cheeseburger", models.SessionStateInitial, KindOrder},
		{"order not found", "I want a sandwich", models.SessionStateInitial, KindItemNotFound},
		{"menu", "show me the menu", models.SessionStateInitial, KindMenuRequest},
		{"menu what do you have", "What do you have?", models.SessionStateInitial, KindMenuRequest},
		{"menu list drinks", "list your drinks", models.SessionStateInitial, KindMenuRequest},
		{"price", "how much is the iced tea?", models.SessionStateInitial, KindPriceInquiry},
		{"price of", "what is the price of chocolate cake", models.SessionStateInitial, KindPriceInquiry},
		{"thanks", "thank you so much", models.SessionStateInitial, KindThanks},
		{"unknown", "the weather is nice", models.SessionStateInitial, KindUnknown},
		{"blank", "   ", models.SessionStateInitial, KindUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.Classify(tt.message, tt.state, ix)
			assert.Equal(t, tt.want, got.Kind)
		})
	}
}

func TestClassifyOrderResolvesExact(t *testing.T) {
	got := NewClassifier().Classify("I want a cheeseburger", models.SessionStateInitial, testIndex())

	require.Equal(t, KindOrder, got.Kind)
	require.True(t, got.Resolved())
	assert.Equal(t, int64(1), got.Match.Item.ID)
	assert.Equal(t, 1.0, got.Match.Confidence)
	assert.Equal(t, matcher.MatchExact, got.Match.Type)
	assert.Equal(t, 1, got.Quantity)
}

func TestClassifyOrderQuantityAndPlural(t *testing.T) {
	got := NewClassifier().Classify("can I have 3 cheeseburgers", models.SessionStateInitial, testIndex())

	require.Equal(t, KindOrder, got.Kind)
	assert.Equal(t, int64(1), got.Match.Item.ID)
	assert.Equal(t, 3, got.Quantity)
}

func TestClassifyOrderArticleIsNotPartOfSpan(t *testing.T) {
	got := NewClassifier().Classify("add an iced tea", models.SessionStateInitial, testIndex())

	require.Equal(t, KindOrder, got.Kind)
	assert.Equal(t, "iced tea", got.ItemText)
	assert.Equal(t, int64(2), got.Match.Item.ID)
}

func TestClassifyItemNotFoundSuggestions(t *testing.T) {
	got := NewClassifier().Classify("I want a sandwich", models.SessionStateInitial, testIndex())

	require.Equal(t, KindItemNotFound, got.Kind)
	assert.Equal(t, "sandwich", got.ItemText)
	assert.Equal(t, []string{"Cheeseburger", "Iced Tea", "Chocolate Cake"}, got.Suggestions)
	assert.Nil(t, got.Match)
}

func TestClassifyItemNotFoundSubstringSuggestions(t *testing.T) {
	got := NewClassifier().Classify("give me a choco", models.SessionStateInitial, testIndex())

	require.Equal(t, KindItemNotFound, got.Kind)
	assert.Equal(t, []string{"Chocolate Cake"}, got.Suggestions)
}

func TestClassifyPriceUnresolved(t *testing.T) {
	got := NewClassifier().Classify("how much is a pizza", models.SessionStateInitial, testIndex())

	require.Equal(t, KindPriceInquiry, got.Kind)
	assert.Equal(t, "pizza", got.ItemText)
	assert.False(t, got.Resolved())
}

func TestClassifyPriceWithoutItem(t *testing.T) {
	got := NewClassifier().Classify("how much", models.SessionStateInitial, testIndex())

	require.Equal(t, KindPriceInquiry, got.Kind)
	assert.Empty(t, got.ItemText)
}

func TestClassifyUnknownCarriesSuggestions(t *testing.T) {
	got := NewClassifier().Classify("blah", models.SessionStateInitial, testIndex())

	assert.Equal(t, KindUnknown, got.Kind)
	assert.Len(t, got.Suggestions, 3)
}

func TestClassifyNilIndex(t *testing.T) {
	got := NewClassifier().Classify("I want a cheeseburger", models.SessionStateInitial, nil)

	assert.Equal(t, KindItemNotFound, got.Kind)
	assert.Empty(t, got.Suggestions)
}

func TestAdditiveFollowUpOnlyWhileConfirming(t *testing.T) {
	_, ok := matchAdditiveFollowUp(input("and an iced tea", models.SessionStateInitial))
	assert.False(t, ok)

	got, ok := matchAdditiveFollowUp(input("and an iced tea", models.SessionStateConfirming))
	require.True(t, ok)
	assert.Equal(t, KindOrder, got.Kind)
	assert.Equal(t, int64(2), got.Match.Item.ID)
	assert.Equal(t, 1, got.Quantity)
}

func TestAdditiveFollowUpWithQuantity(t *testing.T) {
	got, ok := matchAdditiveFollowUp(input("plus 2 chocolate cakes", models.SessionStateConfirming))

	require.True(t, ok)
	assert.Equal(t, int64(3), got.Match.Item.ID)
	assert.Equal(t, 2, got.Quantity)
}

func TestAdditiveFollowUpUnresolvedFallsThrough(t *testing.T) {
	_, ok := matchAdditiveFollowUp(input("also a sandwich", models.SessionStateConfirming))
	assert.False(t, ok)

	got := NewClassifier().Classify("also a sandwich", models.SessionStateConfirming, testIndex())
	assert.Equal(t, KindUnknown, got.Kind)
}

func TestAdditiveFollowUpLeavesQuestionsAlone(t *testing.T) {
	c := NewClassifier()

	_, ok := matchAdditiveFollowUp(input("how much is the cheeseburger and the iced tea?", models.SessionStateConfirming))
	assert.False(t, ok)

	got := c.Classify("how much is the cheeseburger and the iced tea?", models.SessionStateConfirming, testIndex())
	assert.Equal(t, KindPriceInquiry, got.Kind)

	got = c.Classify("and show me the menu", models.SessionStateConfirming, testIndex())
	assert.Equal(t, KindMenuRequest, got.Kind)
}

func TestClassifyAdditiveFollowUpScenario(t *testing.T) {
	got := NewClassifier().Classify("add an iced tea", models.SessionStateConfirming, testIndex())

	require.Equal(t, KindOrder, got.Kind)
	assert.Equal(t, int64(2), got.Match.Item.ID)
	assert.Equal(t, 1.0, got.Match.Confidence)
}

func TestRulesAreIndependent(t *testing.T) {
	_, ok := matchCheckout(input("checkout", models.SessionStateInitial))
	assert.True(t, ok)

	_, ok = matchGreeting(input("checkout", models.SessionStateInitial))
	assert.False(t, ok)

	_, ok = matchMenu(input("what can I order", models.SessionStateInitial))
	assert.True(t, ok)

	_, ok = matchThanks(input("thanks!", models.SessionStateInitial))
	assert.True(t, ok)

	got, ok := matchPrice(input("cost of burger steak", models.SessionStateInitial))
	require.True(t, ok)
	assert.Equal(t, int64(4), got.Match.Item.ID)
}

func TestExtractQuantity(t *testing.T) {
	tests := []struct {
		message string
		want    int
	}{
		{"I want a cheeseburger", 1},
		{"I want 2 cheeseburgers", 2},
		{"give me 10 iced teas and 3 cakes", 10},
		{"I want 0 cheeseburgers", 1},
		{"I want 99999999999999999999999 cakes", 1},
		{"I want 9223372036854775807 cakes", 1},
		{"I want 100 cakes", 1},
		{"I want 99 cakes", 99},
		{"table 7, one cake", 7},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ExtractQuantity(tt.message), tt.message)
	}
}

func TestCustomRuleTable(t *testing.T) {
	c := NewClassifierWithRules([]Rule{{Name: "thanks", Apply: matchThanks}})

	assert.Equal(t, KindUnknown, c.Classify("hello", models.SessionStateInitial, testIndex()).Kind)
	assert.Equal(t, KindThanks, c.Classify("thanks", models.SessionStateInitial, testIndex()).Kind)
}
