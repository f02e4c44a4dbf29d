package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt"
	"go.uber.org/zap"

	"github.com/PugTools/divinatory-agenda/pkg/logctx"
	"github.com/PugTools/divinatory-agenda/pkg/response"
)

var errNoOperator = errors.New("token has no subject")

// OperatorAuthMiddleware accepts HS256 bearer tokens signed with secret and
// records the token subject as the operator id.
func OperatorAuthMiddleware(secret string, base *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		lg := logctx.FromGin(c, base)
		if secret == "" {
			lg.Warnw("operator endpoint called but operator.jwt_secret is not configured")
			abortUnauthorized(c, "operator access is disabled")
			return
		}
		scheme, raw, ok := strings.Cut(c.GetHeader("Authorization"), " ")
		if !ok || !strings.EqualFold(scheme, "bearer") || raw == "" {
			abortUnauthorized(c, "missing bearer token")
			return
		}
		operatorID, err := parseOperatorToken(raw, secret)
		if err != nil {
			lg.Infow("rejected operator token", "err", err)
			abortUnauthorized(c, "invalid token")
			return
		}

		c.Set(logctx.OperatorIDKey, operatorID)
		c.Request = c.Request.WithContext(context.WithValue(c.Request.Context(), logctx.OperatorIDKey, operatorID))
		logctx.WithLogger(c, lg.With("operator_id", operatorID))
		c.Next()
	}
}

func parseOperatorToken(raw, secret string) (string, error) {
	token, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return "", err
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return "", errors.New("invalid claims")
	}
	sub, _ := claims["sub"].(string)
	if sub == "" {
		return "", errNoOperator
	}
	return sub, nil
}

// OperatorID returns the operator recorded by OperatorAuthMiddleware.
func OperatorID(c *gin.Context) string {
	return c.GetString(logctx.OperatorIDKey)
}

func abortUnauthorized(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, response.ErrorT[any](response.APIResponseCodeUnauthorized, msg))
}
