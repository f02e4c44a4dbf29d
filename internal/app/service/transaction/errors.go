package transaction

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrTransactionNotFound = errors.New("payment transaction not found")
	ErrDuplicateExternalID = errors.New("payment transaction external id already exists")
	ErrPendingExists       = errors.New("appointment already has a pending payment transaction")
	ErrInvalidTransition   = errors.New("payment transaction status transition not allowed")
)

const (
	pgUniqueViolation       = "23505"
	pendingAppointmentIndex = "uniq_payment_tx_pending_appointment"
)

// mapWriteErr turns unique violations into package sentinels.
func mapWriteErr(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != pgUniqueViolation {
		return err
	}
	if pgErr.ConstraintName == pendingAppointmentIndex {
		return errors.Join(ErrPendingExists, err)
	}
	return errors.Join(ErrDuplicateExternalID, err)
}
