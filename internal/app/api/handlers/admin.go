package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	mw "github.com/PugTools/divinatory-agenda/internal/app/api/middleware"
	"github.com/PugTools/divinatory-agenda/internal/app/service/reconciliation"
	"github.com/PugTools/divinatory-agenda/internal/app/service/transaction"
	models "github.com/PugTools/divinatory-agenda/internal/models"
	"github.com/PugTools/divinatory-agenda/pkg/logctx"
	"github.com/PugTools/divinatory-agenda/pkg/response"
	"github.com/PugTools/divinatory-agenda/pkg/types"
)

type TransactionScanner interface {
	ScanTransactions(ctx context.Context, req *transaction.ScanTransactionsRequest) (*transaction.ScanTransactionsResponse, error)
}

type StatusOverrider interface {
	Override(ctx context.Context, transactionID string, status types.PaymentStatus, operatorID string) (*reconciliation.Result, error)
}

type ListTransactionRequest struct {
	Filters   []*types.CommonFilter `json:"filters"`
	From      int                   `json:"from"`
	Size      int                   `json:"size"`
	SortBy    string                `json:"sort_by"`
	SortOrder string                `json:"sort_order"`
}

type TransactionItem struct {
	ID             string               `json:"id"`
	AppointmentID  string               `json:"appointment_id"`
	PriestID       string               `json:"priest_id"`
	Amount         decimal.Decimal      `json:"amount" swaggertype:"string"`
	Status         types.PaymentStatus  `json:"status"`
	PaymentMethod  string               `json:"payment_method"`
	ExternalID     string               `json:"external_id"`
	ReferenceID    string               `json:"reference_id"`
	CodeProvenance types.CodeProvenance `json:"code_provenance"`
	PaidAt         *time.Time           `json:"paid_at"`
	CreatedAt      time.Time            `json:"created_at"`
	UpdatedAt      time.Time            `json:"updated_at"`
}

func toTransactionItem(m *models.PaymentTransaction) *TransactionItem {
	return &TransactionItem{
		ID:             m.ID,
		AppointmentID:  m.AppointmentID,
		PriestID:       m.PriestID,
		Amount:         m.Amount,
		Status:         m.Status,
		PaymentMethod:  m.PaymentMethod,
		ExternalID:     m.ExternalID,
		ReferenceID:    m.ReferenceID,
		CodeProvenance: m.CodeProvenance,
		PaidAt:         m.PaidAt,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
}

type ListPaymentTransactionsResponse struct {
	Items []*TransactionItem `json:"items"`
	Total int64              `json:"total"`
}

// @Summary      List Payment Transactions (Admin)
// @Description  Retrieves a paginated and filterable list of payment transactions.
// @Tags         Admin
// @Accept       json
// @Produce      json
// @Security     OperatorBearer
// @Param        request body ListTransactionRequest true "List transaction request with filters, pagination, and sorting"
// @Success      200  {object}  handlers.RespListPaymentTransactions
// @Router       /api/v1/admin/transactions/list [post]
func ApiListPaymentTransactions(scanner TransactionScanner, log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req ListTransactionRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
			return
		}
		scanReq := &transaction.ScanTransactionsRequest{Filters: req.Filters, From: req.From, Size: req.Size, SortBy: req.SortBy, SortOrder: req.SortOrder}
		res, err := scanner.ScanTransactions(c.Request.Context(), scanReq)
		if err != nil {
			if errors.Is(err, types.ErrInvalidFilter) {
				c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
				return
			}
			logctx.FromGin(c, log).Errorw("scan transactions failed", "err", err)
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
			return
		}
		items := lo.Map(res.Items, func(it *models.PaymentTransaction, _ int) *TransactionItem { return toTransactionItem(it) })
		c.JSON(http.StatusOK, response.OKT(&ListPaymentTransactionsResponse{Items: items, Total: res.Total}))
	}
}

type OverrideStatusRequest struct {
	TransactionID string              `json:"transaction_id" binding:"required"`
	Status        types.PaymentStatus `json:"status" binding:"required"`
}

type OverrideStatusResponse struct {
	TransactionID string              `json:"transaction_id"`
	Status        types.PaymentStatus `json:"status"`
	Previous      types.PaymentStatus `json:"previous"`
	Outcome       string              `json:"outcome"`
}

// @Summary      Override Transaction Status (Admin)
// @Description  Settles a pending transaction by hand. Paid and cancelled transactions cannot be changed.
// @Tags         Admin
// @Accept       json
// @Produce      json
// @Security     OperatorBearer
// @Param        request body OverrideStatusRequest true "Transaction and target status"
// @Success      200  {object}  handlers.RespOverrideStatus
// @Router       /api/v1/admin/transactions/override [post]
func ApiOverrideTransactionStatus(overrider StatusOverrider, log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req OverrideStatusRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
			return
		}
		operatorID := mw.OperatorID(c)
		res, err := overrider.Override(c.Request.Context(), req.TransactionID, req.Status, operatorID)
		if err != nil {
			code := response.APIResponseCodeError
			switch {
			case errors.Is(err, reconciliation.ErrInvalidStatus):
				code = response.APIResponseCodeBadRequest
			case errors.Is(err, transaction.ErrTransactionNotFound):
				code = response.APIResponseCodeNotFound
			case errors.Is(err, reconciliation.ErrTerminalViolation):
				code = response.APIResponseCodeConflict
			default:
				logctx.FromGin(c, log).Errorw("override failed", "transaction_id", req.TransactionID, "err", err)
			}
			c.JSON(http.StatusOK, response.ErrorT[any](code, err.Error()))
			return
		}
		logctx.FromGin(c, log).Infow("transaction status overridden", "transaction_id", req.TransactionID, "status", res.Status, "outcome", res.Outcome)
		c.JSON(http.StatusOK, response.OKT(&OverrideStatusResponse{
			TransactionID: res.TransactionID,
			Status:        res.Status,
			Previous:      res.Previous,
			Outcome:       string(res.Outcome),
		}))
	}
}

func RegisterAdminPaymentRoutes(r gin.IRouter, scanner TransactionScanner, overrider StatusOverrider, log *zap.SugaredLogger) {
	r.POST("/transactions/list", ApiListPaymentTransactions(scanner, log))
	r.POST("/transactions/override", ApiOverrideTransactionStatus(overrider, log))
}
