// Package transactiontest provides an in-memory transaction.Repository with
// the same conditional-update semantics as the gorm implementation.
package transactiontest

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"gorm.io/datatypes"

	"github.com/PugTools/divinatory-agenda/internal/app/service/transaction"
	models "github.com/PugTools/divinatory-agenda/internal/models"
	"github.com/PugTools/divinatory-agenda/pkg/tool"
	types "github.com/PugTools/divinatory-agenda/pkg/types"
)

type Memory struct {
	mu    sync.Mutex
	rows  map[string]*models.PaymentTransaction
	logs  []*models.PaymentTransactionLog
	clock func() time.Time

	// Fail, when set, is returned by every call before touching state.
	Fail error
	// BeforeTransition runs inside TransitionStatus before the conditional
	// check, outside the lock, letting tests race a concurrent writer.
	BeforeTransition func(id string)
}

var _ transaction.Repository = (*Memory)(nil)

func NewMemory() *Memory {
	return &Memory{rows: map[string]*models.PaymentTransaction{}, clock: time.Now}
}

func clone(t *models.PaymentTransaction) *models.PaymentTransaction {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}

// Put stores item as-is, bypassing uniqueness checks.
func (m *Memory) Put(item *models.PaymentTransaction) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows[item.ID] = clone(item)
}

// Get returns a copy of the stored row.
func (m *Memory) Get(id string) *models.PaymentTransaction {
	m.mu.Lock()
	defer m.mu.Unlock()
	return clone(m.rows[id])
}

func (m *Memory) Logs() []*models.PaymentTransactionLog {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*models.PaymentTransactionLog(nil), m.logs...)
}

func (m *Memory) Create(_ context.Context, item *models.PaymentTransaction) error {
	if m.Fail != nil {
		return m.Fail
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if item.ID == "" {
		item.ID = tool.GenerateUUIDV7()
	}
	if item.Status == "" {
		item.Status = types.PaymentStatusPending
	}
	if item.PaymentMethod == "" {
		item.PaymentMethod = types.PaymentMethodPix
	}
	for _, r := range m.rows {
		if r.ExternalID == item.ExternalID || r.ReferenceID == item.ReferenceID {
			return fmt.Errorf("create: %w", transaction.ErrDuplicateExternalID)
		}
		if r.AppointmentID == item.AppointmentID && r.Status == types.PaymentStatusPending && item.Status == types.PaymentStatusPending {
			return fmt.Errorf("create: %w", transaction.ErrPendingExists)
		}
	}
	now := m.clock()
	item.CreatedAt, item.UpdatedAt = now, now
	m.rows[item.ID] = clone(item)
	return nil
}

func (m *Memory) find(match func(*models.PaymentTransaction) bool) (*models.PaymentTransaction, error) {
	if m.Fail != nil {
		return nil, m.Fail
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var hits []*models.PaymentTransaction
	for _, r := range m.rows {
		if match(r) {
			hits = append(hits, r)
		}
	}
	if len(hits) == 0 {
		return nil, nil
	}
	sort.Slice(hits, func(i, j int) bool {
		if hits[i].CreatedAt.Equal(hits[j].CreatedAt) {
			return hits[i].ID > hits[j].ID
		}
		return hits[i].CreatedAt.After(hits[j].CreatedAt)
	})
	return clone(hits[0]), nil
}

func (m *Memory) FindByID(_ context.Context, id string) (*models.PaymentTransaction, error) {
	return m.find(func(r *models.PaymentTransaction) bool { return r.ID == id })
}

func (m *Memory) FindByAppointment(_ context.Context, appointmentID string) (*models.PaymentTransaction, error) {
	return m.find(func(r *models.PaymentTransaction) bool { return r.AppointmentID == appointmentID })
}

func (m *Memory) FindByExternalID(_ context.Context, externalID string) (*models.PaymentTransaction, error) {
	if externalID == "" {
		return nil, nil
	}
	return m.find(func(r *models.PaymentTransaction) bool { return r.ExternalID == externalID })
}

func (m *Memory) FindByReference(_ context.Context, referenceID string) (*models.PaymentTransaction, error) {
	if referenceID == "" {
		return nil, nil
	}
	return m.find(func(r *models.PaymentTransaction) bool { return r.ReferenceID == referenceID })
}

func (m *Memory) UpdateCode(_ context.Context, id string, code string, provenance types.CodeProvenance, externalID string) error {
	if m.Fail != nil {
		return m.Fail
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rows[id]
	if !ok || r.Status != types.PaymentStatusPending {
		return fmt.Errorf("%w: %s is not pending", transaction.ErrInvalidTransition, id)
	}
	for oid, o := range m.rows {
		if oid != id && o.ExternalID == externalID {
			return fmt.Errorf("update code: %w", transaction.ErrDuplicateExternalID)
		}
	}
	r.CodePayload = &code
	r.CodeProvenance = provenance
	r.ExternalID = externalID
	r.UpdatedAt = m.clock()
	return nil
}

func (m *Memory) TransitionStatus(_ context.Context, id string, from, to types.PaymentStatus, paidAt *time.Time, entry *models.PaymentTransactionLog) (bool, error) {
	if m.Fail != nil {
		return false, m.Fail
	}
	if !to.Valid() || from.IsTerminal() {
		return false, fmt.Errorf("%w: %s -> %s", transaction.ErrInvalidTransition, from, to)
	}
	if m.BeforeTransition != nil {
		m.BeforeTransition(id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rows[id]
	if !ok || r.Status != from {
		return false, nil
	}
	r.Status = to
	if to == types.PaymentStatusPaid && paidAt != nil {
		at := paidAt.UTC()
		r.PaidAt = &at
	}
	r.UpdatedAt = m.clock()
	if entry != nil {
		if entry.ID == "" {
			entry.ID = tool.GenerateUUIDV7()
		}
		entry.TransactionID, entry.FromStatus, entry.ToStatus = id, from, to
		entry.After = datatypes.NewJSONType(clone(r))
		m.logs = append(m.logs, entry)
	}
	return true, nil
}

func (m *Memory) UpdateStatus(ctx context.Context, id string, status types.PaymentStatus, paidAt *time.Time) error {
	current, err := m.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if current == nil {
		return fmt.Errorf("%w: %s", transaction.ErrTransactionNotFound, id)
	}
	if current.Status == status {
		return nil
	}
	applied, err := m.TransitionStatus(ctx, id, current.Status, status, paidAt, nil)
	if err != nil {
		return err
	}
	if !applied {
		return fmt.Errorf("%w: %s changed concurrently", transaction.ErrInvalidTransition, id)
	}
	return nil
}

// ScanTransactions supports eq filters only.
func (m *Memory) ScanTransactions(_ context.Context, req *transaction.ScanTransactionsRequest) (*transaction.ScanTransactionsResponse, error) {
	if m.Fail != nil {
		return nil, m.Fail
	}
	if err := req.Normalize(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var items []*models.PaymentTransaction
	for _, r := range m.rows {
		if matchesEq(r, req.Filters) {
			items = append(items, clone(r))
		}
	}
	sort.Slice(items, func(i, j int) bool {
		if req.SortOrder == "asc" {
			return items[i].CreatedAt.Before(items[j].CreatedAt)
		}
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})
	total := int64(len(items))
	if req.From >= len(items) {
		items = nil
	} else {
		items = items[req.From:]
	}
	if len(items) > req.Size {
		items = items[:req.Size]
	}
	return &transaction.ScanTransactionsResponse{Items: items, Total: total}, nil
}

func matchesEq(r *models.PaymentTransaction, filters []*types.CommonFilter) bool {
	for _, f := range filters {
		if f.Operator != types.CommonFilterOperatorEq {
			continue
		}
		want := fmt.Sprint(f.Values[0])
		var got string
		switch f.Field {
		case "id":
			got = r.ID
		case "appointment_id":
			got = r.AppointmentID
		case "priest_id":
			got = r.PriestID
		case "status":
			got = string(r.Status)
		case "external_id":
			got = r.ExternalID
		case "reference_id":
			got = r.ReferenceID
		default:
			continue
		}
		if got != want {
			return false
		}
	}
	return true
}
