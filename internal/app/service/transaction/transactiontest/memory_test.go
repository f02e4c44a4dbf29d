package transactiontest

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/PugTools/divinatory-agenda/internal/app/service/transaction"
	models "github.com/PugTools/divinatory-agenda/internal/models"
	types "github.com/PugTools/divinatory-agenda/pkg/types"
)

func newPending(t *testing.T, m *Memory, appointmentID, ref string) *models.PaymentTransaction {
	t.Helper()
	item := &models.PaymentTransaction{AppointmentID: appointmentID, PriestID: "p", Amount: decimal.NewFromInt(10), ExternalID: ref, ReferenceID: ref}
	require.NoError(t, m.Create(context.Background(), item))
	return item
}

func TestMemory_SinglePendingPerAppointment(t *testing.T) {
	m := NewMemory()
	first := newPending(t, m, "apt", "R1")

	err := m.Create(context.Background(), &models.PaymentTransaction{AppointmentID: "apt", ExternalID: "R2", ReferenceID: "R2"})
	require.ErrorIs(t, err, transaction.ErrPendingExists)

	applied, err := m.TransitionStatus(context.Background(), first.ID, types.PaymentStatusPending, types.PaymentStatusCancelled, nil, nil)
	require.NoError(t, err)
	require.True(t, applied)
	newPending(t, m, "apt", "R2")
}

func TestMemory_ConcurrentTransitionsApplyOnce(t *testing.T) {
	m := NewMemory()
	item := newPending(t, m, "apt", "R1")

	var wins atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := m.TransitionStatus(context.Background(), item.ID, types.PaymentStatusPending, types.PaymentStatusPaid, nil, &models.PaymentTransactionLog{})
			if err == nil && ok {
				wins.Add(1)
			}
		}()
	}
	wg.Wait()
	require.EqualValues(t, 1, wins.Load())
	require.Len(t, m.Logs(), 1)
}
