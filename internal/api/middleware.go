package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"chat-order-service/internal/service"
	"chat-order-service/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const identityKey = "identity"

// prometheusMiddleware collects HTTP metrics
func prometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Writer.Status())

		util.HTTPRequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Observe(duration)

		util.HTTPRequestsTotal.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Inc()
	}
}

// identityClaims are the bearer token claims the chat needs
type identityClaims struct {
	Name string `json:"name"`
	jwt.RegisteredClaims
}

// IdentityMiddleware resolves an optional HS256 bearer token into a
// service.Identity. Requests without a token continue anonymously; a token
// that does not verify is rejected.
func IdentityMiddleware(secret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.Next()
			return
		}

		tokenStr, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || tokenStr == "" {
			abortUnauthorized(c, "Invalid authorization header")
			return
		}

		identity, err := parseIdentity(tokenStr, secret)
		if err != nil {
			util.GetLogger().Debug("Rejected bearer token", zap.Error(err))
			abortUnauthorized(c, "Invalid or expired token")
			return
		}

		c.Set(identityKey, identity)
		c.Next()
	}
}

func parseIdentity(tokenStr string, secret []byte) (service.Identity, error) {
	if len(secret) == 0 {
		return service.Identity{}, errors.New("token verification is not configured")
	}

	claims := &identityClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return service.Identity{}, err
	}
	if !token.Valid || claims.Subject == "" {
		return service.Identity{}, errors.New("token has no subject")
	}

	return service.Identity{UserID: claims.Subject, Name: claims.Name}, nil
}

func identityFrom(c *gin.Context) service.Identity {
	if v, ok := c.Get(identityKey); ok {
		if identity, ok := v.(service.Identity); ok {
			return identity
		}
	}
	return service.Identity{}
}

func abortUnauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"status":  "error",
		"code":    service.CodeAuthenticationRequired,
		"message": message,
	})
}

// RateLimiter keeps one token bucket per client IP
type RateLimiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	limit    rate.Limit
	burst    int
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewRateLimiter creates a per-IP limiter. Idle visitors are forgotten until
// ctx ends. rps <= 0 disables limiting.
func NewRateLimiter(ctx context.Context, rps float64, burst int) *RateLimiter {
	if burst < 1 {
		burst = 1
	}
	rl := &RateLimiter{
		visitors: make(map[string]*visitor),
		limit:    rate.Limit(rps),
		burst:    burst,
	}
	if rps > 0 {
		go rl.cleanupVisitors(ctx, time.Minute, 3*time.Minute)
	}
	return rl
}

func (rl *RateLimiter) getVisitor(ip string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	v, exists := rl.visitors[ip]
	if !exists {
		limiter := rate.NewLimiter(rl.limit, rl.burst)
		rl.visitors[ip] = &visitor{limiter: limiter, lastSeen: time.Now()}
		return limiter
	}

	v.lastSeen = time.Now()
	return v.limiter
}

func (rl *RateLimiter) cleanupVisitors(ctx context.Context, every, idle time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			rl.mu.Lock()
			for ip, v := range rl.visitors {
				if time.Since(v.lastSeen) > idle {
					delete(rl.visitors, ip)
				}
			}
			rl.mu.Unlock()
		}
	}
}

// Middleware rejects requests over the per-IP budget with 429
func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if rl.limit <= 0 {
			c.Next()
			return
		}

		if !rl.getVisitor(c.ClientIP()).Allow() {
			c.Header("Retry-After", "1")
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"status":  "error",
				"message": "Too many requests, please slow down",
			})
			return
		}
		c.Next()
	}
}
