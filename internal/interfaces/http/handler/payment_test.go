package handler

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/financeiro/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func newPaymentTestContext(t *testing.T, method, path, body string, authenticated bool) (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(method, path, bytes.NewBufferString(body))
	c.Request.Header.Set("Content-Type", "application/json")
	if authenticated {
		c.Set(middleware.JWTUserIDKey, uuid.New().String())
	}
	return c, w
}

func TestPaymentHandler_PayTotal_InputValidation(t *testing.T) {
	h := NewPaymentHandler(nil, nil)

	t.Run("rejects unauthenticated request", func(t *testing.T) {
		c, w := newPaymentTestContext(t, http.MethodPost, "/pay", `{}`, false)
		c.Params = gin.Params{{Key: "id", Value: uuid.New().String()}}

		h.PayTotal(c)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("rejects malformed purchase ID", func(t *testing.T) {
		c, w := newPaymentTestContext(t, http.MethodPost, "/pay", `{}`, true)
		c.Params = gin.Params{{Key: "id", Value: "not-a-uuid"}}

		h.PayTotal(c)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("rejects missing account ID", func(t *testing.T) {
		c, w := newPaymentTestContext(t, http.MethodPost, "/pay", `{}`, true)
		c.Params = gin.Params{{Key: "id", Value: uuid.New().String()}}

		h.PayTotal(c)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestPaymentHandler_PayPartial_InputValidation(t *testing.T) {
	h := NewPaymentHandler(nil, nil)

	t.Run("rejects zero amount", func(t *testing.T) {
		body := `{"account_id":"` + uuid.New().String() + `","amount":0}`
		c, w := newPaymentTestContext(t, http.MethodPost, "/pay-partial", body, true)
		c.Params = gin.Params{{Key: "id", Value: uuid.New().String()}}

		h.PayPartial(c)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("rejects negative amount", func(t *testing.T) {
		body := `{"account_id":"` + uuid.New().String() + `","amount":-50}`
		c, w := newPaymentTestContext(t, http.MethodPost, "/pay-partial", body, true)
		c.Params = gin.Params{{Key: "id", Value: uuid.New().String()}}

		h.PayPartial(c)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("rejects malformed body", func(t *testing.T) {
		c, w := newPaymentTestContext(t, http.MethodPost, "/pay-partial", `{not json`, true)
		c.Params = gin.Params{{Key: "id", Value: uuid.New().String()}}

		h.PayPartial(c)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestPaymentHandler_Reverse_InputValidation(t *testing.T) {
	h := NewPaymentHandler(nil, nil)

	t.Run("rejects unauthenticated request", func(t *testing.T) {
		c, w := newPaymentTestContext(t, http.MethodPost, "/reverse", ``, false)
		c.Params = gin.Params{{Key: "id", Value: uuid.New().String()}}

		h.Reverse(c)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("rejects malformed purchase ID", func(t *testing.T) {
		c, w := newPaymentTestContext(t, http.MethodPost, "/reverse", ``, true)
		c.Params = gin.Params{{Key: "id", Value: "nope"}}

		h.Reverse(c)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
