package service

import (
	crand "crypto/rand"
	"encoding/binary"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"chat-order-service/internal/models"
)

const currency = "₱"

var (
	greetingReplies = []string{
		"Hello! How can I help you today?",
		"Hi there! What would you like to order?",
		"Welcome to the canteen! How may I assist you with your order today?",
	}

	thanksReplies = []string{
		"You're welcome! Is there anything else I can help you with?",
		"Happy to help! Let me know if you need anything else.",
	}

	menuHeaders = []string{
		"Here are our available items:",
		"Our menu includes:",
	}

	orderReplies = []func(quantity int, name string, amount int64) string{
		func(q int, name string, _ int64) string {
			return fmt.Sprintf("Got it! I've added %d %s to your order. Would you like to add anything else?", q, name)
		},
		func(q int, name string, _ int64) string {
			return fmt.Sprintf("Perfect choice! %d %s added to your order. What else would you like?", q, name)
		},
		func(q int, name string, amount int64) string {
			return fmt.Sprintf("Added %d %s (%s%d) to your order. Would you like anything else?", q, name, currency, amount)
		},
	}

	priceReplies = []string{
		"%s costs " + currency + "%d each.",
		"One %s is " + currency + "%d.",
	}

	unknownReplies = []string{
		"I'm not sure I understand. Could you rephrase that?",
		"I didn't catch that. Could you say that again?",
		"I'm still learning. Could you try asking in a different way?",
	}
)

// Replier picks canned reply variants. The random source is injected so a
// seeded replier always produces the same sequence.
type Replier struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

// NewReplier creates a replier seeded with seed, or with a random seed when 0
func NewReplier(seed int64) *Replier {
	if seed == 0 {
		seed = newSeed()
	}
	return NewReplierWithRand(rand.New(rand.NewSource(seed)))
}

// NewReplierWithRand creates a replier drawing from rnd
func NewReplierWithRand(rnd *rand.Rand) *Replier {
	return &Replier{rnd: rnd}
}

func (r *Replier) pick(variants []string) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return variants[r.rnd.Intn(len(variants))]
}

// Greeting returns a greeting variant
func (r *Replier) Greeting() string {
	return r.pick(greetingReplies)
}

// Thanks returns a thanks variant
func (r *Replier) Thanks() string {
	return r.pick(thanksReplies)
}

// Menu lists the snapshot items under a header variant
func (r *Replier) Menu(items []models.CatalogItem) string {
	if len(items) == 0 {
		return "Sorry, there are no items available right now."
	}

	var b strings.Builder
	b.WriteString(r.pick(menuHeaders))
	for _, item := range items {
		fmt.Fprintf(&b, "\n- %s: %s%d (%s)", item.Name, currency, item.Price, item.Category)
	}
	return b.String()
}

// OrderAdded confirms quantity units of line were added
func (r *Replier) OrderAdded(line models.CartLine, quantity int) string {
	name := line.Name
	if quantity > 1 {
		name += "s"
	}
	r.mu.Lock()
	reply := orderReplies[r.rnd.Intn(len(orderReplies))]
	r.mu.Unlock()
	return reply(quantity, name, line.UnitPrice*int64(quantity))
}

func lineLimitReply(line models.CartLine) string {
	return fmt.Sprintf("You already have %d %ss in your order, which is the most we can take for one item.", line.Quantity, line.Name)
}

// Price answers a price inquiry for a resolved item
func (r *Replier) Price(item models.CatalogItem) string {
	return fmt.Sprintf(r.pick(priceReplies), item.Name, item.Price)
}

// Unknown returns a fallback variant
func (r *Replier) Unknown() string {
	return r.pick(unknownReplies)
}

// newSeed draws a seed from crypto/rand, falling back to the clock
func newSeed() int64 {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		return time.Now().UnixNano()
	}
	return int64(binary.LittleEndian.Uint64(b[:]))
}

const (
	cancelReply     = "Your order has been cancelled. How can I help you?"
	priceWhichReply = "Which item would you like to know the price of?"
	degradedReply   = "Sorry, our menu is unavailable right now. Please try again in a moment."
)

func itemNotFoundReply(text string, suggestions []string) string {
	reply := fmt.Sprintf("I couldn't find %q on our menu.", text)
	if len(suggestions) == 0 {
		return reply + " Please check our menu and try again."
	}
	return reply + " Did you mean: " + strings.Join(suggestions, ", ") + "?"
}

func priceNotFoundReply(text string) string {
	return fmt.Sprintf("I couldn't find pricing for %s.", text)
}

func checkoutReply(order *models.PersistedOrder, customer string, lines []models.CartLine) string {
	var b strings.Builder
	b.WriteString("Order Confirmed!\n\n")
	fmt.Fprintf(&b, "Order #%s\n", order.OrderNumber)
	if order.QueueNumber != "" {
		fmt.Fprintf(&b, "Queue number: %s\n", order.QueueNumber)
	}
	if customer != "" {
		fmt.Fprintf(&b, "Customer: %s\n", customer)
	}
	b.WriteString("Items:\n")
	for _, line := range lines {
		fmt.Fprintf(&b, "  - %dx %s - %s%d\n", line.Quantity, line.Name, currency, line.Subtotal())
	}
	fmt.Fprintf(&b, "Total Amount: %s%d\n\n", currency, order.TotalAmount)
	b.WriteString("Please proceed to the counter for payment.")
	return b.String()
}
