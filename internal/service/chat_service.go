package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"chat-order-service/internal/intent"
	"chat-order-service/internal/matcher"
	"chat-order-service/internal/models"
	"chat-order-service/internal/util"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// Identity is the authenticated caller of a chat request, if any
type Identity struct {
	UserID string
	Name   string
}

// Authenticated reports whether the request carried a user
func (i Identity) Authenticated() bool {
	return i.UserID != ""
}

// SessionStore holds chat sessions with per-id serialized mutation
type SessionStore interface {
	Get(id string) models.Session
	WithLock(ctx context.Context, id string, fn func(sess *models.Session) error) error
	Len() int
}

// CatalogSnapshots supplies the current catalog index
type CatalogSnapshots interface {
	Snapshot(ctx context.Context) (*matcher.Index, error)
}

// OrderCreator persists a checked out cart
type OrderCreator interface {
	CreateOrder(ctx context.Context, req *models.OrderRequest) (*models.PersistedOrder, error)
}

// Notifier is told about placed orders; failures never fail a checkout
type Notifier interface {
	PublishOrderPlaced(ctx context.Context, event *models.OrderPlacedEvent) error
}

// CheckoutFence guards a checkout key across service instances
type CheckoutFence interface {
	Claim(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, key string) error
}

// ChatConfig tunes the chat orchestrator
type ChatConfig struct {
	CheckoutTimeout time.Duration
	FenceTTL        time.Duration
	NotifyTimeout   time.Duration
}

// ChatDeps are the collaborators of the chat orchestrator.
// Notifier and Fence are optional.
type ChatDeps struct {
	Sessions   SessionStore
	Catalog    CatalogSnapshots
	Classifier *intent.Classifier
	Orders     OrderCreator
	Notifier   Notifier
	Fence      CheckoutFence
	Replies    *Replier
}

// CartSnapshot is the cart as shown to the user
type CartSnapshot struct {
	Items []models.CartLine `json:"items"`
	Total int64             `json:"total"`
}

// Reply is the outcome of one chat message
type Reply struct {
	Status       string                 `json:"status"`
	Code         Code                   `json:"code,omitempty"`
	Message      string                 `json:"message"`
	SessionID    string                 `json:"session_id"`
	State        models.SessionState    `json:"state"`
	Intent       intent.Kind            `json:"intent,omitempty"`
	Suggestions  []string               `json:"suggestions,omitempty"`
	CurrentOrder CartSnapshot           `json:"current_order"`
	Order        *models.PersistedOrder `json:"order"`
}

// Reply statuses
const (
	ReplyStatusSuccess = "success"
	ReplyStatusError   = "error"
)

// turn carries one message through its intent handler
type turn struct {
	ctx      context.Context
	sess     *models.Session
	result   intent.Result
	identity Identity
	index    *matcher.Index
	reply    *Reply
	placed   *models.OrderPlacedEvent
}

type intentHandler func(t *turn) error

// ChatService applies classified chat messages to sessions
type ChatService struct {
	sessions   SessionStore
	catalog    CatalogSnapshots
	classifier *intent.Classifier
	orders     OrderCreator
	notifier   Notifier
	fence      CheckoutFence
	replies    *Replier
	cfg        ChatConfig
	handlers   map[intent.Kind]intentHandler
	instanceID string
	logger     *zap.Logger
}

// NewChatService creates the chat orchestrator
func NewChatService(deps ChatDeps, cfg ChatConfig) (*ChatService, error) {
	if deps.Sessions == nil || deps.Catalog == nil || deps.Orders == nil {
		return nil, errors.New("chat service requires sessions, catalog and orders")
	}
	if deps.Classifier == nil {
		deps.Classifier = intent.NewClassifier()
	}
	if deps.Replies == nil {
		deps.Replies = NewReplier(0)
	}
	if cfg.CheckoutTimeout <= 0 {
		cfg.CheckoutTimeout = 10 * time.Second
	}
	if cfg.FenceTTL <= 0 {
		cfg.FenceTTL = 5 * time.Minute
	}
	if cfg.NotifyTimeout <= 0 {
		cfg.NotifyTimeout = 5 * time.Second
	}

	s := &ChatService{
		sessions:   deps.Sessions,
		catalog:    deps.Catalog,
		classifier: deps.Classifier,
		orders:     deps.Orders,
		notifier:   deps.Notifier,
		fence:      deps.Fence,
		replies:    deps.Replies,
		cfg:        cfg,
		instanceID: uuid.New().String()[:8],
		logger:     util.GetLogger(),
	}

	s.handlers = map[intent.Kind]intentHandler{
		intent.KindGreeting:     s.handleGreeting,
		intent.KindThanks:       s.handleThanks,
		intent.KindMenuRequest:  s.handleMenu,
		intent.KindPriceInquiry: s.handlePrice,
		intent.KindOrder:        s.handleOrder,
		intent.KindCheckout:     s.handleCheckout,
		intent.KindCancel:       s.handleCancel,
		intent.KindItemNotFound: s.handleItemNotFound,
		intent.KindUnknown:      s.handleUnknown,
	}
	for _, kind := range intent.Kinds {
		if _, ok := s.handlers[kind]; !ok {
			return nil, fmt.Errorf("no handler for intent %q", kind)
		}
	}

	return s, nil
}

// HandleMessage classifies message and applies it to the session.
// Recoverable failures return both a reply describing them and a *ChatError.
func (s *ChatService) HandleMessage(ctx context.Context, sessionID, message string, identity Identity) (*Reply, error) {
	if sessionID == "" {
		sessionID = "conv-" + uuid.New().String()
	}

	ctx, span := util.StartSpan(ctx, "ChatService.HandleMessage", attribute.String("chat.session_id", sessionID))
	defer span.End()

	start := time.Now()
	defer func() {
		util.ChatMessageLatency.Observe(time.Since(start).Seconds())
	}()

	logger := util.SessionLogger(sessionID)

	message = strings.TrimSpace(message)
	if message == "" {
		util.ChatErrorsTotal.WithLabelValues(string(CodeInputRequired)).Inc()
		return s.errorReply(sessionID, ErrInputRequired, ""), ErrInputRequired
	}

	index, err := s.catalog.Snapshot(ctx)
	if err != nil {
		util.SpanError(span, err)
		logger.Error("Catalog unavailable, answering degraded", zap.Error(err))
		reply := s.snapshotReply(s.sessions.Get(sessionID))
		reply.Intent = intent.KindUnknown
		reply.Message = degradedReply
		reply.Suggestions = intent.Unknown().Suggestions
		return reply, nil
	}

	var t *turn
	err = s.sessions.WithLock(ctx, sessionID, func(sess *models.Session) error {
		result := s.classifier.Classify(message, sess.State, index)
		t = &turn{
			ctx:      ctx,
			sess:     sess,
			result:   result,
			identity: identity,
			index:    index,
			reply:    &Reply{Status: ReplyStatusSuccess, SessionID: sessionID, Intent: result.Kind},
		}

		if err := s.handlers[result.Kind](t); err != nil {
			return err
		}

		sess.LastMessage = message
		t.reply.State = sess.State
		t.reply.CurrentOrder = cartSnapshot(*sess)
		return nil
	})
	if err != nil {
		var ce *ChatError
		if !errors.As(err, &ce) {
			util.SpanError(span, err)
			return nil, fmt.Errorf("failed to handle message: %w", err)
		}

		util.ChatErrorsTotal.WithLabelValues(string(ce.Code)).Inc()
		logger.Info("Chat message rejected", zap.String("code", string(ce.Code)), zap.Error(err))
		kind := intent.KindUnknown
		if t != nil {
			kind = t.result.Kind
		}
		return s.errorReply(sessionID, ce, kind), err
	}

	util.ChatMessagesTotal.WithLabelValues(string(t.result.Kind)).Inc()
	util.ActiveSessions.Set(float64(s.sessions.Len()))
	logger.Debug("Chat message handled",
		zap.String("intent", string(t.result.Kind)),
		zap.String("state", string(t.reply.State)),
		zap.Int("cart_lines", len(t.reply.CurrentOrder.Items)))

	if t.placed != nil {
		s.notify(t.placed)
	}
	return t.reply, nil
}

// SessionSnapshot returns the current state of a session without mutating it
func (s *ChatService) SessionSnapshot(sessionID string) *Reply {
	return s.snapshotReply(s.sessions.Get(sessionID))
}

// MenuItems returns the items of the current catalog snapshot
func (s *ChatService) MenuItems(ctx context.Context) ([]models.CatalogItem, error) {
	index, err := s.catalog.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return index.Items(), nil
}

func (s *ChatService) handleGreeting(t *turn) error {
	t.reply.Message = s.replies.Greeting()
	return nil
}

func (s *ChatService) handleThanks(t *turn) error {
	t.reply.Message = s.replies.Thanks()
	return nil
}

func (s *ChatService) handleMenu(t *turn) error {
	t.reply.Message = s.replies.Menu(t.index.Items())
	return nil
}

func (s *ChatService) handlePrice(t *turn) error {
	switch {
	case t.result.Match != nil:
		t.reply.Message = s.replies.Price(t.result.Match.Item)
	case t.result.ItemText == "":
		t.reply.Message = priceWhichReply
	default:
		t.reply.Message = priceNotFoundReply(t.result.ItemText)
	}
	return nil
}

func (s *ChatService) handleOrder(t *turn) error {
	if t.result.Match == nil {
		suggestions := t.index.Suggest(t.result.ItemText, 3)
		t.reply.Message = itemNotFoundReply(t.result.ItemText, suggestions)
		t.reply.Suggestions = suggestions
		return nil
	}

	item := t.result.Match.Item
	quantity := t.result.Quantity
	if quantity < 1 {
		quantity = 1
	}

	before := t.sess.Quantity(item.ID)
	line := t.sess.AddLine(models.CartLine{
		CatalogItemID: item.ID,
		Name:          item.Name,
		Quantity:      quantity,
		UnitPrice:     item.Price,
	})
	t.sess.State = models.SessionStateConfirming

	added := line.Quantity - before
	if added == 0 {
		t.reply.Message = lineLimitReply(line)
		return nil
	}

	util.CartLinesAddedTotal.Inc()
	t.reply.Message = s.replies.OrderAdded(line, added)
	return nil
}

func (s *ChatService) handleCancel(t *turn) error {
	t.sess.Reset()
	util.CartsCancelledTotal.Inc()
	t.reply.Message = cancelReply
	return nil
}

func (s *ChatService) handleItemNotFound(t *turn) error {
	t.reply.Message = itemNotFoundReply(t.result.ItemText, t.result.Suggestions)
	t.reply.Suggestions = t.result.Suggestions
	return nil
}

func (s *ChatService) handleUnknown(t *turn) error {
	t.reply.Message = s.replies.Unknown()
	t.reply.Suggestions = t.result.Suggestions
	return nil
}

func (s *ChatService) snapshotReply(sess models.Session) *Reply {
	return &Reply{
		Status:       ReplyStatusSuccess,
		SessionID:    sess.ID,
		State:        sess.State,
		CurrentOrder: cartSnapshot(sess),
	}
}

func (s *ChatService) errorReply(sessionID string, ce *ChatError, kind intent.Kind) *Reply {
	reply := s.snapshotReply(s.sessions.Get(sessionID))
	reply.Status = ReplyStatusError
	reply.Code = ce.Code
	reply.Message = ce.Message
	reply.Intent = kind
	return reply
}

func cartSnapshot(sess models.Session) CartSnapshot {
	items := make([]models.CartLine, len(sess.Cart))
	copy(items, sess.Cart)
	return CartSnapshot{Items: items, Total: sess.Total()}
}
