package reconciliation

import (
	"strings"

	types "github.com/PugTools/divinatory-agenda/pkg/types"
)

// VendorStatus is the closed set of gateway payment statuses the engine
// understands. Anything else parses to VendorStatusUnrecognized.
type VendorStatus string

const (
	VendorStatusApproved     VendorStatus = "approved"
	VendorStatusPending      VendorStatus = "pending"
	VendorStatusInProcess    VendorStatus = "in_process"
	VendorStatusAuthorized   VendorStatus = "authorized"
	VendorStatusCancelled    VendorStatus = "cancelled"
	VendorStatusRefunded     VendorStatus = "refunded"
	VendorStatusChargedBack  VendorStatus = "charged_back"
	VendorStatusUnrecognized VendorStatus = "unrecognized"
)

func ParseVendorStatus(s string) VendorStatus {
	switch v := VendorStatus(strings.ToLower(strings.TrimSpace(s))); v {
	case VendorStatusApproved, VendorStatusPending, VendorStatusInProcess, VendorStatusAuthorized,
		VendorStatusCancelled, VendorStatusRefunded, VendorStatusChargedBack:
		return v
	}
	return VendorStatusUnrecognized
}

// Target maps a vendor status to the internal status it requests.
func (v VendorStatus) Target() types.PaymentStatus {
	switch v {
	case VendorStatusApproved:
		return types.PaymentStatusPaid
	case VendorStatusCancelled, VendorStatusRefunded, VendorStatusChargedBack:
		return types.PaymentStatusCancelled
	default:
		return types.PaymentStatusPending
	}
}

type Outcome string

const (
	OutcomeApplied            Outcome = "applied"
	OutcomeNoop               Outcome = "noop"
	OutcomeUnknownTransaction Outcome = "unknown_transaction"
	OutcomeTerminalViolation  Outcome = "terminal_violation"
	OutcomeIgnored            Outcome = "ignored"
	OutcomeError              Outcome = "error"
)
