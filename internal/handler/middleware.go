package handler

import (
	"strings"
	"time"

	"wallet/internal/infrastructure/lock"
	"wallet/pkg/auth"
	"wallet/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	ctxUserID    = "user_id"
	ctxRequestID = "request_id"
	headerReqID  = "X-Request-ID"
)

// RequestIDMiddleware echoes the caller's X-Request-ID or assigns one.
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(headerReqID)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(ctxRequestID, id)
		c.Header(headerReqID, id)
		c.Next()
	}
}

func LoggerMiddleware(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		if query != "" {
			path = path + "?" + query
		}
		log.Info("http request",
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.String("request_id", c.GetString(ctxRequestID)))
	}
}

// RecoveryMiddleware turns a panic into a 500 so one bad request cannot take the process down.
func RecoveryMiddleware(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				log.Error("panic recovered",
					zap.Any("panic", err),
					zap.String("path", c.Request.URL.Path),
					zap.String("request_id", c.GetString(ctxRequestID)),
					zap.Stack("stack"))
				response.ServerError(c)
			}
		}()
		c.Next()
	}
}

func AuthMiddleware(authn *auth.Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			response.Unauthorized(c, "authorization header required")
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			response.Unauthorized(c, "invalid authorization header format")
			return
		}

		userID, err := authn.Authenticate(parts[1])
		if err != nil {
			response.Unauthorized(c, auth.ErrInvalidToken.Error())
			return
		}

		c.Set(ctxUserID, userID)
		c.Next()
	}
}

// TransferAdmissionMiddleware lets one transfer per caller through per window.
// If Redis cannot answer the request is refused.
func TransferAdmissionMiddleware(rdb *redis.Client, window time.Duration, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetInt64(ctxUserID)
		admission := lock.NewTransferAdmission(rdb, userID, c.GetString(ctxRequestID), window)

		ok, err := admission.TryLock(c.Request.Context())
		if err != nil {
			log.Error("transfer admission check failed", zap.Int64("user_id", userID), zap.Error(err))
			response.ServerError(c)
			return
		}
		if !ok {
			response.TooManyRequests(c, "too many transfer requests, try again shortly")
			return
		}
		c.Next()
	}
}

func currentUserID(c *gin.Context) int64 {
	return c.GetInt64(ctxUserID)
}
