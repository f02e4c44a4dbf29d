package types

type PaymentProvider string

const (
	PaymentProviderMercadoPago PaymentProvider = "mercadopago"
	PaymentProviderLocal       PaymentProvider = "local"
)

// PaymentStatus is the internal status of a payment transaction.
// pending is the only non-terminal state.
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusPaid      PaymentStatus = "paid"
	PaymentStatusCancelled PaymentStatus = "cancelled"
)

func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentStatusPending, PaymentStatusPaid, PaymentStatusCancelled:
		return true
	}
	return false
}

func (s PaymentStatus) IsTerminal() bool {
	return s == PaymentStatusPaid || s == PaymentStatusCancelled
}

const PaymentMethodPix = "pix"

// CodeProvenance records who produced a payment code.
type CodeProvenance string

const (
	CodeProvenanceGateway CodeProvenance = "gateway"
	CodeProvenanceLocal   CodeProvenance = "local"
)

// TransitionReason records what caused a status transition.
type TransitionReason string

const (
	TransitionReasonWebhook          TransitionReason = "webhook"
	TransitionReasonOperatorOverride TransitionReason = "operator_override"
)
