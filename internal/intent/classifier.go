package intent

import (
	"chat-order-service/internal/matcher"
	"chat-order-service/internal/models"
)

var emptyIndex = matcher.NewIndex(nil)

// Classifier runs an ordered rule table over a chat message.
// It holds no per-call state and is safe for concurrent use.
type Classifier struct {
	rules []Rule
}

// NewClassifier creates a classifier with the default precedence
func NewClassifier() *Classifier {
	return &Classifier{rules: DefaultRules()}
}

// NewClassifierWithRules creates a classifier with a custom rule table
func NewClassifierWithRules(rules []Rule) *Classifier {
	return &Classifier{rules: rules}
}

// Classify maps a raw message and the session state to an intent.
// The catalog index is only read.
func (c *Classifier) Classify(message string, state models.SessionState, ix *matcher.Index) Result {
	if ix == nil {
		ix = emptyIndex
	}

	in := Input{
		Raw:   message,
		Text:  normalize(message),
		State: state,
		Index: ix,
	}
	if in.Text == "" {
		return unknown()
	}

	for _, rule := range c.rules {
		if result, ok := rule.Apply(in); ok {
			return result
		}
	}
	return unknown()
}
