package payment

import (
	"context"
	"time"

	"mentorhub/internal/bank"
	"mentorhub/internal/domain"
)

// AppointmentRepository defines the storage operations the payment service
// needs.
type AppointmentRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Appointment, error)
	MarkPaid(ctx context.Context, id int64) error
	ListCompletedUnpaid(ctx context.Context) ([]domain.Appointment, error)
}

// UserReader loads the mentor for rate lookup.
type UserReader interface {
	GetByID(ctx context.Context, id int64) (*domain.User, error)
}

// BankFeed lists inbound transfers for reconciliation.
type BankFeed interface {
	ListTransactions(ctx context.Context, from, to time.Time, amount int64) ([]bank.Transaction, error)
}
