package handlers

import (
	"github.com/PugTools/divinatory-agenda/pkg/response"
)

// RespOK is a generic OK envelope for endpoints returning no specific data.
type RespOK struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    interface{}              `json:"data"`
}

// RespListPaymentTransactions wraps ListPaymentTransactionsResponse in the standard envelope.
type RespListPaymentTransactions struct {
	Code    response.APIResponseCode        `json:"code"`
	Message string                          `json:"message"`
	Data    ListPaymentTransactionsResponse `json:"data"`
}

// RespOverrideStatus wraps OverrideStatusResponse in the standard envelope.
type RespOverrideStatus struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    OverrideStatusResponse   `json:"data"`
}
