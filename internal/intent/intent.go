package intent

import (
	"chat-order-service/internal/matcher"
)

// Kind tags the variant carried by a Result
type Kind string

const (
	KindGreeting     Kind = "greeting"
	KindThanks       Kind = "thanks"
	KindMenuRequest  Kind = "menu"
	KindPriceInquiry Kind = "price"
	KindOrder        Kind = "order"
	KindCheckout     Kind = "checkout"
	KindCancel       Kind = "cancel"
	KindItemNotFound Kind = "item_not_found"
	KindUnknown      Kind = "unknown"
)

// Kinds lists every variant; dispatch tables are checked against it
var Kinds = []Kind{
	KindGreeting,
	KindThanks,
	KindMenuRequest,
	KindPriceInquiry,
	KindOrder,
	KindCheckout,
	KindCancel,
	KindItemNotFound,
	KindUnknown,
}

// Result is the classified intent of one chat message.
// Only the fields of its Kind are populated:
//   - Order: ItemText, Quantity, Match
//   - PriceInquiry: ItemText, Match when resolved
//   - ItemNotFound: ItemText, Suggestions
//   - Unknown: Suggestions
type Result struct {
	Kind        Kind           `json:"intent"`
	ItemText    string         `json:"item_text,omitempty"`
	Quantity    int            `json:"quantity,omitempty"`
	Match       *matcher.Match `json:"match,omitempty"`
	Suggestions []string       `json:"suggestions,omitempty"`
}

// Resolved reports whether the result carries a catalog match
func (r Result) Resolved() bool {
	return r.Match != nil
}

func greeting() Result { return Result{Kind: KindGreeting} }

func thanks() Result { return Result{Kind: KindThanks} }

func menuRequest() Result { return Result{Kind: KindMenuRequest} }

func checkout() Result { return Result{Kind: KindCheckout} }

func cancel() Result { return Result{Kind: KindCancel} }

func order(text string, m matcher.Match, quantity int) Result {
	return Result{Kind: KindOrder, ItemText: text, Quantity: quantity, Match: &m}
}

func priceInquiry(text string, m *matcher.Match) Result {
	return Result{Kind: KindPriceInquiry, ItemText: text, Match: m}
}

func itemNotFound(text string, suggestions []string) Result {
	return Result{Kind: KindItemNotFound, ItemText: text, Suggestions: suggestions}
}

var unknownSuggestions = []string{
	`Try saying: "I want to order a burger"`,
	`Or: "What's on the menu?"`,
	`Or: "How much is the pizza?"`,
}

func unknown() Result {
	suggestions := make([]string, len(unknownSuggestions))
	copy(suggestions, unknownSuggestions)
	return Result{Kind: KindUnknown, Suggestions: suggestions}
}

// Unknown returns the fallback result used when nothing else applies
func Unknown() Result {
	return unknown()
}
