package stubs

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"happylink/internal/errs"
	"happylink/internal/models"
)

// CustomerRecord is one billing client as the mock stores it
type CustomerRecord struct {
	Customer models.Customer
	ChatID   int64
	Lines    []models.BalanceLine
	Payments []models.Payment
}

// MockDB is an in-memory implementation of storage.Storage for testing
type MockDB struct {
	mu        sync.RWMutex
	customers []*CustomerRecord
	tickets   map[int64]*models.Ticket
	truncated []string
	err       error
}

// NewMockDB creates a new mock database
func NewMockDB() *MockDB {
	return &MockDB{
		tickets: make(map[int64]*models.Ticket),
	}
}

// AddCustomer stores a client. Records are matched in insertion order.
func (m *MockDB) AddCustomer(rec CustomerRecord) {
	m.mu.Lock()
	defer m.mu.Unlock()

	r := rec
	m.customers = append(m.customers, &r)
}

// AddTicket stores a ticket
func (m *MockDB) AddTicket(t models.Ticket) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.tickets[t.ID] = &t
}

// Ticket returns a copy of the stored ticket
func (m *MockDB) Ticket(id int64) (models.Ticket, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	t, ok := m.tickets[id]
	if !ok {
		return models.Ticket{}, false
	}
	return *t, true
}

// ChatOf returns the chat linked to a customer ID, or 0
func (m *MockDB) ChatOf(customerID int64) int64 {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, c := range m.customers {
		if c.Customer.ID == customerID {
			return c.ChatID
		}
	}
	return 0
}

// Truncated lists the tables passed to TruncateTable
func (m *MockDB) Truncated() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return append([]string(nil), m.truncated...)
}

// FailWith makes every following call return err. Pass nil to recover.
func (m *MockDB) FailWith(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.err = err
}

// LatestTicketDue returns the most recently created ticket due in the window
func (m *MockDB) LatestTicketDue(ctx context.Context, dayStart, dayEnd time.Time) (*models.Ticket, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.err != nil {
		return nil, m.err
	}

	var latest *models.Ticket
	for _, t := range m.tickets {
		if t.DestTime.Before(dayStart) || !t.DestTime.Before(dayEnd) {
			continue
		}
		if latest == nil || t.Created.After(latest.Created) {
			latest = t
		}
	}
	if latest == nil {
		return nil, errs.ErrNotFound
	}

	result := *latest
	return &result, nil
}

// ClaimTicket flips the sent flag if it was unset
func (m *MockDB) ClaimTicket(ctx context.Context, id int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.err != nil {
		return false, m.err
	}

	t, ok := m.tickets[id]
	if !ok || t.Sent {
		return false, nil
	}
	t.Sent = true
	return true, nil
}

// ReleaseTicket clears the sent flag
func (m *MockDB) ReleaseTicket(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.err != nil {
		return m.err
	}

	if t, ok := m.tickets[id]; ok {
		t.Sent = false
	}
	return nil
}

// LinkChatByPhone links the lowest-id customer whose phone ends with the same
// digits and unlinks the chat from any other customer
func (m *MockDB) LinkChatByPhone(ctx context.Context, phone string, chatID int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.err != nil {
		return false, m.err
	}

	suffix, ok := models.MatchablePhone(phone)
	if !ok {
		return false, nil
	}

	var match *CustomerRecord
	for _, c := range m.customers {
		if !strings.HasSuffix(models.PhoneSuffix(c.Customer.Phone), suffix) {
			continue
		}
		if match == nil || c.Customer.ID < match.Customer.ID {
			match = c
		}
	}
	if match == nil {
		return false, nil
	}

	for _, c := range m.customers {
		if c.ChatID == chatID {
			c.ChatID = 0
		}
	}
	match.ChatID = chatID
	return true, nil
}

// CustomerByChat returns the customer linked to chatID
func (m *MockDB) CustomerByChat(ctx context.Context, chatID int64) (*models.Customer, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.err != nil {
		return nil, m.err
	}

	for _, c := range m.customers {
		if c.ChatID == chatID {
			customer := c.Customer
			return &customer, nil
		}
	}
	return nil, errs.ErrNotFound
}

// BalanceByChat returns the balance lines of every customer linked to chatID
func (m *MockDB) BalanceByChat(ctx context.Context, chatID int64) ([]models.BalanceLine, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.err != nil {
		return nil, m.err
	}

	var lines []models.BalanceLine
	for _, c := range m.customers {
		if c.ChatID == chatID {
			lines = append(lines, c.Lines...)
		}
	}
	return lines, nil
}

// PaymentsByChat returns the latest payments of every customer linked to chatID
func (m *MockDB) PaymentsByChat(ctx context.Context, chatID int64, limit int) ([]models.Payment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.err != nil {
		return nil, m.err
	}

	var payments []models.Payment
	for _, c := range m.customers {
		if c.ChatID == chatID {
			payments = append(payments, c.Payments...)
		}
	}

	// Sort by time descending
	sort.Slice(payments, func(i, j int) bool {
		return payments[i].Time.After(payments[j].Time)
	})

	if limit > 0 && limit < len(payments) {
		payments = payments[:limit]
	}
	return payments, nil
}

// TruncateTable records the table name
func (m *MockDB) TruncateTable(ctx context.Context, table string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.err != nil {
		return m.err
	}

	m.truncated = append(m.truncated, table)
	return nil
}

// Close does nothing for mock DB
func (m *MockDB) Close() error {
	return nil
}
