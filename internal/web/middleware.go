package web

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/thomaskoefod/newsagg/internal/i18n"
	"github.com/thomaskoefod/newsagg/internal/library"
)

const (
	requestIDHeader = "X-Request-ID"
	langCookie      = "lang"

	ctxRequestID = "request_id"
	ctxUser      = "user"
	ctxLang      = "lang"
)

func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(ctxRequestID, id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

func accessLog(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("request_id", c.GetString(ctxRequestID)),
			zap.String("user", c.GetString(ctxUser)))
	}
}

// authenticate trusts the user id set by the fronting auth proxy.
func authenticate(header string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(ctxUser, strings.TrimSpace(c.GetHeader(header)))
		c.Next()
	}
}

func language(fallback string) gin.HandlerFunc {
	return func(c *gin.Context) {
		lang, err := c.Cookie(langCookie)
		if err != nil || lang == "" {
			lang = fallback
		}
		c.Set(ctxLang, lang)
		c.Next()
	}
}

func (s *server) requireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		if userOf(c) == library.Anonymous {
			s.unauthorized(c)
			c.Abort()
			return
		}
		c.Next()
	}
}

func (s *server) unauthorized(c *gin.Context) {
	c.JSON(http.StatusUnauthorized, gin.H{
		"error":     library.ErrUnauthorized.Error(),
		"message":   s.t(c, i18n.MsgMustLogIn),
		"login_url": s.Server.LoginURL,
	})
}

func userOf(c *gin.Context) string {
	return c.GetString(ctxUser)
}

func (s *server) t(c *gin.Context, msg string) string {
	return s.Catalog.T(c.GetString(ctxLang), msg)
}
