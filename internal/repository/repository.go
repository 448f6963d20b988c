package repository

import (
	"context"
	"errors"

	"partnernet-backend/internal/domain"
)

// ErrNotFound is returned when the target row does not exist. Callers report
// it; nothing in this subsystem retries a not-found automatically.
var ErrNotFound = errors.New("record not found")

type RegistrationRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Registration, error)
	Update(ctx context.Context, reg *domain.Registration) error
	ListByApprovalStatus(ctx context.Context, status domain.ApprovalStatus) ([]domain.Registration, error)
}

type QueueRepository interface {
	Append(ctx context.Context, entry *domain.QueueEntry) error
	ListUnprocessed(ctx context.Context) ([]domain.QueueEntry, error)
	MarkProcessed(ctx context.Context, id int64) error
	CountUnprocessed(ctx context.Context) (int, error)
}

type PartnerAccountRepository interface {
	Create(ctx context.Context, account *domain.PartnerAccount) error
	GetByRegistrationID(ctx context.Context, registrationID string) (*domain.PartnerAccount, error)
}
