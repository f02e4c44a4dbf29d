package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/PugTools/divinatory-agenda/internal/app/service/gateway"
	"github.com/PugTools/divinatory-agenda/pkg/logctx"
	"github.com/PugTools/divinatory-agenda/pkg/types"
)

type CodeIssuer interface {
	IssueCode(ctx context.Context, req gateway.IssueRequest) (*gateway.IssueResult, error)
}

type GeneratePixRequest struct {
	AppointmentID string `json:"appointmentId" binding:"required"`
	PriestID      string `json:"priestId" binding:"required"`
}

type GeneratePixResponse struct {
	Success                bool                 `json:"success"`
	CodePayload            string               `json:"codePayload"`
	TransactionReferenceID string               `json:"transactionReferenceId"`
	TransactionID          string               `json:"transactionId"`
	VendorPaymentID        string               `json:"vendorPaymentId,omitempty"`
	Amount                 json.Number          `json:"amount" swaggertype:"number"`
	Provenance             types.CodeProvenance `json:"provenance"`
}

// ErrorResponse is the body of failed booking-flow calls.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Code    string `json:"code"`
}

type issueFailure struct {
	err    error
	status int
	code   string
}

var issueFailures = []issueFailure{
	{gateway.ErrRecipientNotFound, http.StatusNotFound, "RECIPIENT_NOT_FOUND"},
	{gateway.ErrMissingRecipientKey, http.StatusBadRequest, "MISSING_PIX_KEY"},
	{gateway.ErrInvalidRecipientKey, http.StatusBadRequest, "INVALID_PIX_KEY"},
	{gateway.ErrAppointmentNotFound, http.StatusNotFound, "APPOINTMENT_NOT_FOUND"},
	{gateway.ErrInvalidAmount, http.StatusBadRequest, "INVALID_AMOUNT"},
	{gateway.ErrAppointmentAlreadyPaid, http.StatusConflict, "ALREADY_PAID"},
}

// @Summary      Generate PIX code
// @Description  Issues a PIX BR Code for an appointment. Retries while the payment is pending return the same transaction.
// @Tags         Payment
// @Accept       json
// @Produce      json
// @Param        request body handlers.GeneratePixRequest true "Appointment to charge"
// @Success      200  {object}  handlers.GeneratePixResponse
// @Failure      400  {object}  handlers.ErrorResponse
// @Failure      404  {object}  handlers.ErrorResponse
// @Failure      409  {object}  handlers.ErrorResponse
// @Failure      429  {object}  handlers.ErrorResponse
// @Failure      500  {object}  handlers.ErrorResponse
// @Router       /api/v1/pix/generate [post]
func ApiGeneratePix(issuer CodeIssuer, log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		lg := logctx.FromGin(c, log)

		var req GeneratePixRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "appointmentId and priestId are required", Code: "INVALID_REQUEST"})
			return
		}

		res, err := issuer.IssueCode(c.Request.Context(), gateway.IssueRequest{AppointmentID: req.AppointmentID, PriestID: req.PriestID})
		if err != nil {
			for _, f := range issueFailures {
				if errors.Is(err, f.err) {
					lg.Infow("pix generation rejected", "appointment_id", req.AppointmentID, "code", f.code)
					c.JSON(f.status, ErrorResponse{Error: f.err.Error(), Code: f.code})
					return
				}
			}
			lg.Errorw("pix generation failed", "appointment_id", req.AppointmentID, "err", err)
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to generate payment code", Code: "INTERNAL_ERROR"})
			return
		}

		c.JSON(http.StatusOK, GeneratePixResponse{
			Success:                true,
			CodePayload:            res.CodePayload,
			TransactionReferenceID: res.ReferenceID,
			TransactionID:          res.TransactionID,
			VendorPaymentID:        res.VendorPaymentID,
			Amount:                 json.Number(res.Amount.StringFixed(2)),
			Provenance:             res.Provenance,
		})
	}
}

func RegisterPixRoutes(r gin.IRouter, issuer CodeIssuer, log *zap.SugaredLogger) {
	r.POST("/generate", ApiGeneratePix(issuer, log))
}
