package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"chat-order-service/internal/models"
	"chat-order-service/internal/service"
	"chat-order-service/internal/store"
	"chat-order-service/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// ChatEngine is the conversational order engine behind the chat routes
type ChatEngine interface {
	HandleMessage(ctx context.Context, sessionID, message string, identity service.Identity) (*service.Reply, error)
	SessionSnapshot(sessionID string) *service.Reply
	MenuItems(ctx context.Context) ([]models.CatalogItem, error)
}

// OrderReader looks up persisted orders
type OrderReader interface {
	GetOrderByNumber(ctx context.Context, orderNumber string) (*models.Order, error)
	GetOrderItemsByOrderID(ctx context.Context, orderID int64) ([]models.OrderItem, error)
}

// ReadinessCheck reports whether a dependency can serve traffic
type ReadinessCheck func(ctx context.Context) error

// Handler contains HTTP handlers
type Handler struct {
	chat    ChatEngine
	orders  OrderReader
	checks  map[string]ReadinessCheck
	limiter *RateLimiter
	secret  []byte
}

// HandlerOption configures a Handler
type HandlerOption func(*Handler)

// WithReadinessCheck adds a named dependency to /ready
func WithReadinessCheck(name string, check ReadinessCheck) HandlerOption {
	return func(h *Handler) { h.checks[name] = check }
}

// WithRateLimiter limits the chat routes per client IP
func WithRateLimiter(rl *RateLimiter) HandlerOption {
	return func(h *Handler) { h.limiter = rl }
}

// NewHandler creates a new HTTP handler. secret verifies bearer tokens.
func NewHandler(chat ChatEngine, orders OrderReader, secret []byte, opts ...HandlerOption) *Handler {
	h := &Handler{
		chat:   chat,
		orders: orders,
		checks: make(map[string]ReadinessCheck),
		secret: secret,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// SetupRoutes sets up HTTP routes
func (h *Handler) SetupRoutes(router *gin.Engine) {
	router.Use(gin.Recovery())
	router.Use(prometheusMiddleware())

	router.GET("/health", h.healthCheck)
	router.GET("/ready", h.readinessCheck)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/api/v1")
	v1.Use(IdentityMiddleware(h.secret))
	if h.limiter != nil {
		v1.Use(h.limiter.Middleware())
	}
	{
		v1.POST("/chat", h.chatMessage)
		v1.GET("/chat/sessions/:id", h.getSession)
		v1.GET("/orders/:orderNumber", h.getOrder)
		v1.GET("/menu", h.getMenu)
	}
}

// healthCheck handles health check requests
func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"time":   time.Now().Unix(),
	})
}

// readinessCheck runs every registered dependency check
func (h *Handler) readinessCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	failed := gin.H{}
	for name, check := range h.checks {
		if err := check(ctx); err != nil {
			failed[name] = err.Error()
		}
	}

	if len(failed) > 0 {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "not_ready",
			"failed": failed,
			"time":   time.Now().Unix(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
		"time":   time.Now().Unix(),
	})
}

type chatRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"session_id"`
	// web clients send the camel-case key
	ClientSessionID string `json:"sessionId"`
}

func (r chatRequest) sessionID() string {
	if r.SessionID != "" {
		return r.SessionID
	}
	return r.ClientSessionID
}

// chatMessage handles one user chat message
func (h *Handler) chatMessage(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"status":  "error",
			"code":    service.CodeInputRequired,
			"message": "Invalid request body",
		})
		return
	}

	sessionID := req.sessionID()
	reply, err := h.chat.HandleMessage(c.Request.Context(), sessionID, req.Message, identityFrom(c))
	if err != nil {
		code, ok := service.ErrorCode(err)
		if !ok || reply == nil {
			util.GetLogger().Error("Chat message failed", zap.String("session_id", sessionID), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{
				"status":  "error",
				"message": "Something went wrong, please try again",
			})
			return
		}
		c.JSON(statusForCode(code), reply)
		return
	}

	c.JSON(http.StatusOK, reply)
}

// getSession returns the session state without changing it
func (h *Handler) getSession(c *gin.Context) {
	c.JSON(http.StatusOK, h.chat.SessionSnapshot(c.Param("id")))
}

// getOrder returns the status and items of one of the caller's orders
func (h *Handler) getOrder(c *gin.Context) {
	identity := identityFrom(c)
	if !identity.Authenticated() {
		abortUnauthorized(c, "Please log in to view your order")
		return
	}

	order, err := h.orders.GetOrderByNumber(c.Request.Context(), c.Param("orderNumber"))
	if errors.Is(err, store.ErrOrderNotFound) || (err == nil && order.UserID != identity.UserID) {
		c.JSON(http.StatusNotFound, gin.H{
			"status":  "error",
			"message": "Order not found",
		})
		return
	}
	if err != nil {
		util.GetLogger().Error("Failed to load order", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"status":  "error",
			"message": "Failed to load order",
		})
		return
	}

	items, err := h.orders.GetOrderItemsByOrderID(c.Request.Context(), order.ID)
	if err != nil {
		util.GetLogger().Error("Failed to load order items", zap.Int64("order_id", order.ID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"status":  "error",
			"message": "Failed to load order",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "success",
		"order":  order,
		"items":  items,
	})
}

// getMenu lists the catalog snapshot the chat is matching against
func (h *Handler) getMenu(c *gin.Context) {
	items, err := h.chat.MenuItems(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":  "error",
			"message": "Menu is unavailable",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "success",
		"count":  len(items),
		"items":  items,
	})
}

func statusForCode(code service.Code) int {
	switch code {
	case service.CodeInputRequired, service.CodeEmptyOrder:
		return http.StatusBadRequest
	case service.CodeAuthenticationRequired:
		return http.StatusUnauthorized
	case service.CodeConcurrencyConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
