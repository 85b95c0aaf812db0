package storage

import (
	"context"
	"time"

	"happylink/internal/models"
)

// TicketStore is what the staff notifier needs
type TicketStore interface {
	// LatestTicketDue returns the most recently created ticket whose target
	// time falls in [dayStart, dayEnd), or errs.ErrNotFound
	LatestTicketDue(ctx context.Context, dayStart, dayEnd time.Time) (*models.Ticket, error)

	// ClaimTicket atomically flips the sent flag from unset to set.
	// It returns false when another run already holds the flag.
	ClaimTicket(ctx context.Context, id int64) (bool, error)

	// ReleaseTicket clears the sent flag after a failed delivery
	ReleaseTicket(ctx context.Context, id int64) error
}

// CustomerStore is what the support bot needs
type CustomerStore interface {
	// LinkChatByPhone attaches chatID to the customer whose main phone ends
	// with phone. It returns false when no customer matches.
	LinkChatByPhone(ctx context.Context, phone string, chatID int64) (bool, error)
	CustomerByChat(ctx context.Context, chatID int64) (*models.Customer, error)
	BalanceByChat(ctx context.Context, chatID int64) ([]models.BalanceLine, error)
	PaymentsByChat(ctx context.Context, chatID int64, limit int) ([]models.Payment, error)
}

// AuditStore is what the backup job needs
type AuditStore interface {
	TruncateTable(ctx context.Context, table string) error
}

// Storage defines the full set of billing database operations
type Storage interface {
	TicketStore
	CustomerStore
	AuditStore

	Close() error
}
