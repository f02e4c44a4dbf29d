package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/PugTools/divinatory-agenda/pkg/logctx"
)

func signed(t *testing.T, method jwt.SigningMethod, key interface{}, claims jwt.MapClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return s
}

func TestOperatorAuthMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	secret := "operator-secret"

	newRouter := func(secret string) *gin.Engine {
		r := gin.New()
		r.GET("/admin", OperatorAuthMiddleware(secret, zap.NewNop().Sugar()), func(c *gin.Context) {
			ctxOperator, _ := c.Request.Context().Value(logctx.OperatorIDKey).(string)
			c.String(http.StatusOK, OperatorID(c)+"|"+ctxOperator)
		})
		return r
	}
	call := func(r http.Handler, auth string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/admin", nil)
		if auth != "" {
			req.Header.Set("Authorization", auth)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	valid := signed(t, jwt.SigningMethodHS256, []byte(secret), jwt.MapClaims{"sub": "op-42", "exp": time.Now().Add(time.Hour).Unix()})
	w := call(newRouter(secret), "Bearer "+valid)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "op-42|op-42", w.Body.String())

	rejected := map[string]string{
		"missing header": "",
		"wrong scheme":   "Basic " + valid,
		"wrong secret":   "Bearer " + signed(t, jwt.SigningMethodHS256, []byte("other"), jwt.MapClaims{"sub": "op-42"}),
		"wrong method":   "Bearer " + signed(t, jwt.SigningMethodHS512, []byte(secret), jwt.MapClaims{"sub": "op-42"}),
		"expired":        "Bearer " + signed(t, jwt.SigningMethodHS256, []byte(secret), jwt.MapClaims{"sub": "op-42", "exp": time.Now().Add(-time.Hour).Unix()}),
		"no subject":     "Bearer " + signed(t, jwt.SigningMethodHS256, []byte(secret), jwt.MapClaims{}),
	}
	for name, auth := range rejected {
		t.Run(name, func(t *testing.T) {
			w := call(newRouter(secret), auth)
			require.Equal(t, http.StatusUnauthorized, w.Code)
			require.Contains(t, w.Body.String(), `"code":40100`)
		})
	}

	t.Run("no secret configured", func(t *testing.T) {
		require.Equal(t, http.StatusUnauthorized, call(newRouter(""), "Bearer "+valid).Code)
	})
}
