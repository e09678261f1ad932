package httpapi

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/homilybuild/homily/internal/service"
	"go.uber.org/zap"
)

const (
	headerOwnerID   = "X-Owner-ID"
	headerRequestID = "X-Request-ID"
	ctxOwnerKey     = "owner_id"
)

// accessLogger logs one line per request, skipping health and metrics probes.
func accessLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		if path == "/health" || path == "/metrics" {
			c.Next()
			return
		}

		requestID := c.GetHeader(headerRequestID)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Header(headerRequestID, requestID)

		start := time.Now()
		c.Next()

		if raw := c.Request.URL.RawQuery; raw != "" {
			path = path + "?" + raw
		}
		status := c.Writer.Status()
		fields := []zap.Field{
			zap.Int("status", status),
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.String("ip", c.ClientIP()),
			zap.Duration("latency", time.Since(start)),
			zap.String("request_id", requestID),
		}
		if owner := c.GetString(ctxOwnerKey); owner != "" {
			fields = append(fields, zap.String("owner", owner))
		}

		switch {
		case len(c.Errors) > 0:
			for _, ginErr := range c.Errors {
				log.Error("request error", append(fields, zap.Error(ginErr.Err))...)
			}
		case status >= http.StatusInternalServerError:
			log.Error("server error", fields...)
		case status >= http.StatusBadRequest:
			log.Warn("client error", fields...)
		default:
			log.Info("request completed", fields...)
		}
	}
}

// Claims carries the owner id in the standard subject claim.
type Claims struct {
	jwt.RegisteredClaims
}

// authenticate resolves the caller's owner id. With a secret it requires an
// HS256 bearer token; without one it trusts X-Owner-ID, then devOwner.
func authenticate(secret, devOwner string, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var owner string
		if secret == "" {
			owner = strings.TrimSpace(c.GetHeader(headerOwnerID))
			if owner == "" {
				owner = devOwner
			}
		} else {
			var err error
			owner, err = ownerFromToken(c.GetHeader("Authorization"), secret)
			if err != nil {
				log.Warn("token rejected", zap.Error(err))
				abortWithError(c, http.StatusUnauthorized, codeUnauthenticated, service.ErrUnauthenticated.Error())
				return
			}
		}

		if owner == "" {
			abortWithError(c, http.StatusUnauthorized, codeUnauthenticated, service.ErrUnauthenticated.Error())
			return
		}
		c.Set(ctxOwnerKey, owner)
		c.Next()
	}
}

func ownerFromToken(header, secret string) (string, error) {
	if header == "" {
		return "", errors.New("authorization header missing")
	}
	parts := strings.Split(header, " ")
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", errors.New("invalid authorization header format")
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(parts[1], claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return "", err
	}
	if !token.Valid {
		return "", errors.New("token is invalid")
	}
	if strings.TrimSpace(claims.Subject) == "" {
		return "", errors.New("subject claim missing")
	}
	return claims.Subject, nil
}

// SignToken issues an HS256 token for owner, valid for ttl.
func SignToken(owner, secret string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   owner,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        uuid.NewString(),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}
	return signed, nil
}

func ownerID(c *gin.Context) string {
	return c.GetString(ctxOwnerKey)
}
