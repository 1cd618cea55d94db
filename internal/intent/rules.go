package intent

import (
	"regexp"
	"strconv"
	"strings"

	"chat-order-service/internal/matcher"
	"chat-order-service/internal/models"
)

// maxSuggestions caps the catalog names offered for an unresolved item
const maxSuggestions = 3

// Input is what every rule sees: the raw message, its normalized form,
// the session state and the catalog snapshot index.
type Input struct {
	Raw   string
	Text  string
	State models.SessionState
	Index *matcher.Index
}

// Rule maps an input to a result, reporting false when it does not apply
type Rule struct {
	Name  string
	Apply func(in Input) (Result, bool)
}

var (
	checkoutRe = regexp.MustCompile(`^(?:checkout|check out|place (?:my |the )?order|confirm (?:my |the )?order|i'?m done|that'?s all|proceed to checkout)[\s.!?]*$`)
	cancelRe   = regexp.MustCompile(`^(?:cancel(?: (?:my |the )?order)?|start over|never ?mind|clear (?:my |the )?cart)[\s.!?]*$`)
	greetingRe = regexp.MustCompile(`(?:^|\s)(?:hello|hi|hey|greetings?|good (?:morning|afternoon|evening))(?:[\s,.!?]|$)`)
	orderRe    = regexp.MustCompile(`\b(?:i'?d like|i would like|i want|can i have|can i get|give me|get me|add|i'?ll have|i will have|let me get|let me have)\s+(?:to (?:order|get|have)\s+)?(?:\d+\s*(?:x\s+)?)?(?:(?:a|an|the|some)\s+)?([a-z][a-z\s'-]*)`)
	menuRe     = regexp.MustCompile(`\b(?:show|what'?s|what is|list|see|view)\b.*\b(?:menu|items?|food|drinks?|meals?)\b`)
	menuAltRe  = regexp.MustCompile(`\bwhat (?:do you have|can i order|is available)\b|\bmenu\b`)
	priceRe    = regexp.MustCompile(`\b(?:how much(?:\s+(?:is|are|for|does))?|what'?s the price of|what is the price of|price of|cost of)\s*(?:(?:a|an|the)\s+)?([a-z][a-z\s'-]*)?`)
	thanksRe   = regexp.MustCompile(`\b(?:thanks|thank you)\b`)

	connectiveRe = regexp.MustCompile(`\b(?:add|also|and|with|plus)\b|\+`)
	leadingRe    = regexp.MustCompile(`^(?:\d+\s*(?:x\s+)?)?(?:(?:a|an|the|some)\s+)?`)
	quantityRe   = regexp.MustCompile(`\d+`)
	spacesRe     = regexp.MustCompile(`\s+`)
)

// DefaultRules is the classification precedence, first match wins
func DefaultRules() []Rule {
	return []Rule{
		{Name: "additive_follow_up", Apply: matchAdditiveFollowUp},
		{Name: "checkout", Apply: matchCheckout},
		{Name: "cancel", Apply: matchCancel},
		{Name: "greeting", Apply: matchGreeting},
		{Name: "order", Apply: matchOrder},
		{Name: "menu", Apply: matchMenu},
		{Name: "price", Apply: matchPrice},
		{Name: "thanks", Apply: matchThanks},
	}
}

// matchAdditiveFollowUp lets "and a tea" extend a cart that is awaiting
// confirmation. Unresolved follow-ups and price or menu questions fall
// through to the other rules.
func matchAdditiveFollowUp(in Input) (Result, bool) {
	if in.State != models.SessionStateConfirming || !connectiveRe.MatchString(in.Text) {
		return Result{}, false
	}
	if priceRe.MatchString(in.Text) || menuRe.MatchString(in.Text) || menuAltRe.MatchString(in.Text) {
		return Result{}, false
	}

	remainder := normalize(connectiveRe.ReplaceAllString(in.Text, " "))
	span := remainder
	if m := orderRe.FindStringSubmatch(remainder); m != nil {
		span = m[1]
	}
	span = cleanSpan(leadingRe.ReplaceAllString(span, ""))
	if span == "" {
		return Result{}, false
	}

	m, ok := resolve(in.Index, span)
	if !ok {
		return Result{}, false
	}
	return order(span, m, ExtractQuantity(in.Raw)), true
}

func matchCheckout(in Input) (Result, bool) {
	if checkoutRe.MatchString(in.Text) {
		return checkout(), true
	}
	return Result{}, false
}

func matchCancel(in Input) (Result, bool) {
	if cancelRe.MatchString(in.Text) {
		return cancel(), true
	}
	return Result{}, false
}

func matchGreeting(in Input) (Result, bool) {
	if greetingRe.MatchString(in.Text) {
		return greeting(), true
	}
	return Result{}, false
}

func matchOrder(in Input) (Result, bool) {
	m := orderRe.FindStringSubmatch(in.Text)
	if m == nil {
		return Result{}, false
	}
	span := cleanSpan(m[1])
	if span == "" {
		return Result{}, false
	}

	if match, ok := resolve(in.Index, span); ok {
		return order(span, match, ExtractQuantity(in.Raw)), true
	}
	return itemNotFound(span, in.Index.Suggest(span, maxSuggestions)), true
}

func matchMenu(in Input) (Result, bool) {
	if menuRe.MatchString(in.Text) || menuAltRe.MatchString(in.Text) {
		return menuRequest(), true
	}
	return Result{}, false
}

func matchPrice(in Input) (Result, bool) {
	m := priceRe.FindStringSubmatch(in.Text)
	if m == nil {
		return Result{}, false
	}
	span := cleanSpan(m[1])
	if span == "" {
		return priceInquiry("", nil), true
	}
	if match, ok := resolve(in.Index, span); ok {
		return priceInquiry(span, &match), true
	}
	return priceInquiry(span, nil), true
}

func matchThanks(in Input) (Result, bool) {
	if thanksRe.MatchString(in.Text) {
		return thanks(), true
	}
	return Result{}, false
}

// ExtractQuantity returns the first integer literal in the message, or 1
// when there is none or it is not within 1..models.MaxLineQuantity
func ExtractQuantity(message string) int {
	lit := quantityRe.FindString(message)
	if lit == "" {
		return 1
	}
	n, err := strconv.Atoi(lit)
	if err != nil || n < 1 || n > models.MaxLineQuantity {
		return 1
	}
	return n
}

// resolve matches span against the catalog, retrying once with trailing
// plural s dropped ("2 cheeseburgers")
func resolve(ix *matcher.Index, span string) (matcher.Match, bool) {
	if m, ok := ix.Best(span); ok {
		return m, true
	}
	if singular := singularize(span); singular != span {
		return ix.Best(singular)
	}
	return matcher.Match{}, false
}

func singularize(span string) string {
	words := strings.Fields(span)
	for i, w := range words {
		if len(w) > 3 && strings.HasSuffix(w, "s") && !strings.HasSuffix(w, "ss") {
			words[i] = strings.TrimSuffix(w, "s")
		}
	}
	return strings.Join(words, " ")
}

func normalize(s string) string {
	return strings.TrimSpace(spacesRe.ReplaceAllString(strings.ToLower(s), " "))
}

func cleanSpan(s string) string {
	return strings.Trim(normalize(s), " '-")
}
