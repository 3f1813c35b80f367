package server

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/vitalpath/vitalpath/internal/auth"
	"go.uber.org/zap"
)

const (
	visitorCookieName = "vp_visitor"
	visitorCookieAge  = 180 * 24 * 60 * 60

	contextIdentityKey = "identity"
	contextVisitorKey  = "visitor_id"
)

func RequestLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		log.Info("http request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
		)
	}
}

// VisitorCookie assigns each browser a stable anonymous ID. Guest sessions
// key off it, so it is set before any handler runs.
func (s *Server) VisitorCookie() gin.HandlerFunc {
	return func(c *gin.Context) {
		visitorID, err := c.Cookie(visitorCookieName)
		if err != nil || strings.TrimSpace(visitorID) == "" {
			visitorID = uuid.NewString()
			c.SetCookie(visitorCookieName, visitorID, visitorCookieAge, "/", "", s.cfg.IsProduction(), true)
		}
		c.Set(contextVisitorKey, visitorID)
		c.Next()
	}
}

func (s *Server) AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, err := s.identityFromRequest(c)
		if err != nil {
			AbortWithError(c, ErrUnauthorized)
			return
		}
		c.Set(contextIdentityKey, identity)
		c.Next()
	}
}

// AuthOptional attaches an identity when a valid token is presented but lets
// anonymous requests through; checkout serves guests and users alike.
func (s *Server) AuthOptional() gin.HandlerFunc {
	return func(c *gin.Context) {
		if identity, err := s.identityFromRequest(c); err == nil {
			c.Set(contextIdentityKey, identity)
		}
		c.Next()
	}
}

func (s *Server) AdminRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := identityFromContext(c)
		if !ok || !identity.Admin {
			AbortWithError(c, ErrForbidden)
			return
		}
		c.Next()
	}
}

func (s *Server) CheckoutRateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if s.checkoutLimiter == nil || !s.checkoutLimiter.Enabled() {
			c.Next()
			return
		}

		result, err := s.checkoutLimiter.AllowVisitor(c.Request.Context(), visitorFromContext(c))
		if err != nil {
			s.log.Warn("checkout rate limit check failed", zap.Error(err))
			AbortWithError(c, ErrServiceUnavailable)
			return
		}
		if !result.Allowed {
			c.Header("Retry-After", result.RetryAfter.Round(time.Second).String())
			AbortWithError(c, ErrRateLimited)
			return
		}
		c.Next()
	}
}

func (s *Server) identityFromRequest(c *gin.Context) (auth.Identity, error) {
	header := strings.TrimSpace(c.GetHeader("Authorization"))
	token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	return s.verifier.Verify(token)
}

func identityFromContext(c *gin.Context) (auth.Identity, bool) {
	value, exists := c.Get(contextIdentityKey)
	if !exists {
		return auth.Identity{}, false
	}
	identity, ok := value.(auth.Identity)
	return identity, ok
}

func visitorFromContext(c *gin.Context) string {
	return c.GetString(contextVisitorKey)
}
