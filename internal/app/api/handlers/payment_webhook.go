package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	nh "github.com/PugTools/divinatory-agenda/internal/app/service/notification_handler"
	"github.com/PugTools/divinatory-agenda/internal/platform/mercadopago"
	"github.com/PugTools/divinatory-agenda/pkg/logctx"
	"github.com/PugTools/divinatory-agenda/pkg/types"
)

const maxWebhookBody = 1 << 20

type WebhookProcessor interface {
	HandleNotification(ctx context.Context, provider types.PaymentProvider, req *nh.WebhookRequest) (*nh.WebhookResult, error)
}

// WebhookErrorResponse is returned when a notification cannot be processed.
type WebhookErrorResponse struct {
	Received bool   `json:"received"`
	Error    string `json:"error"`
}

// @Summary      MercadoPago Webhook
// @Description  Receives MercadoPago payment notifications and reconciles the matching transaction.
// @Tags         Webhook
// @Accept       json
// @Produce      json
// @Param        x-signature   header  string  false  "ts=<ts>,v1=<hmac>"
// @Param        x-request-id  header  string  false  "Request id used in the signature manifest"
// @Param        data.id       query   string  false  "Payment id when the body carries none"
// @Param        payload       body    object  true   "Notification envelope"
// @Success      200  {object}  notification_handler.WebhookResult
// @Failure      400  {object}  handlers.WebhookErrorResponse
// @Failure      401  {object}  handlers.WebhookErrorResponse
// @Failure      429  {object}  handlers.ErrorResponse
// @Failure      500  {object}  handlers.WebhookErrorResponse
// @Router       /api/v1/webhooks/mercadopago [post]
func ApiMercadoPagoWebhook(h WebhookProcessor, log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		lg := logctx.FromGin(c, log)
		lg.Infow("webhook_mercadopago_received")

		body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
		if err != nil {
			c.JSON(http.StatusBadRequest, WebhookErrorResponse{Error: "failed to read body"})
			return
		}

		res, err := h.HandleNotification(c.Request.Context(), types.PaymentProviderMercadoPago, &nh.WebhookRequest{
			Body:        body,
			Signature:   c.GetHeader("x-signature"),
			RequestID:   c.GetHeader("x-request-id"),
			QueryDataID: c.Query("data.id"),
		})
		if err != nil {
			status := http.StatusInternalServerError
			switch {
			case errors.Is(err, mercadopago.ErrInvalidSignature):
				status = http.StatusUnauthorized
			case errors.Is(err, nh.ErrMalformedNotification):
				status = http.StatusBadRequest
			}
			lg.Errorw("webhook_mercadopago_handle_error", "status", status, "error", err.Error())
			c.JSON(status, WebhookErrorResponse{Error: err.Error()})
			return
		}
		lg.Infow("webhook_mercadopago_handled", "processed", res.Processed, "outcome", res.Outcome, "reason", res.Reason)
		c.JSON(http.StatusOK, res)
	}
}

func RegisterPaymentWebhookRoutes(r gin.IRouter, h WebhookProcessor, log *zap.SugaredLogger) {
	r.POST("/mercadopago", ApiMercadoPagoWebhook(h, log))
}
