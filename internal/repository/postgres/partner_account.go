package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"partnernet-backend/internal/domain"
	"partnernet-backend/internal/repository"
)

type partnerAccountRepository struct {
	db *sql.DB
}

func NewPartnerAccountRepository(db *sql.DB) repository.PartnerAccountRepository {
	return &partnerAccountRepository{db: db}
}

// Create inserts the provisioned credentials. A conflicting registration_id is
// left untouched so replayed approvals never rotate an issued key.
func (r *partnerAccountRepository) Create(ctx context.Context, account *domain.PartnerAccount) error {
	query := `INSERT INTO partner_accounts (registration_id, login_email, api_key, password_hash, created_on)
	          VALUES ($1, $2, $3, $4, $5)
	          ON CONFLICT (registration_id) DO NOTHING`
	if account.CreatedOn.IsZero() {
		account.CreatedOn = time.Now()
	}
	_, err := r.db.ExecContext(ctx, query,
		account.RegistrationID, account.LoginEmail, account.APIKey, account.PasswordHash, account.CreatedOn)
	return err
}

func (r *partnerAccountRepository) GetByRegistrationID(ctx context.Context, registrationID string) (*domain.PartnerAccount, error) {
	account := &domain.PartnerAccount{}
	query := `SELECT id, registration_id, login_email, api_key, password_hash, created_on
	          FROM partner_accounts WHERE registration_id = $1`
	err := r.db.QueryRowContext(ctx, query, registrationID).Scan(
		&account.ID, &account.RegistrationID, &account.LoginEmail,
		&account.APIKey, &account.PasswordHash, &account.CreatedOn)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return account, nil
}
