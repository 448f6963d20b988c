package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"partnernet-backend/internal/domain"
	"partnernet-backend/internal/repository"
)

type registrationRepository struct {
	db *sql.DB
}

func NewRegistrationRepository(db *sql.DB) repository.RegistrationRepository {
	return &registrationRepository{db: db}
}

const registrationColumns = `id, company_name, contact_name, email, phone, region, note,
	status, approval_status, approver_name, rejection_reason, submitted_on, decided_on, updated_on`

func (r *registrationRepository) GetByID(ctx context.Context, id string) (*domain.Registration, error) {
	reg := &domain.Registration{}
	query := `SELECT ` + registrationColumns + ` FROM registrations WHERE id = $1`
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&reg.ID, &reg.CompanyName, &reg.ContactName, &reg.Email, &reg.Phone, &reg.Region, &reg.Note,
		&reg.Status, &reg.ApprovalStatus, &reg.ApproverName, &reg.RejectionReason,
		&reg.SubmittedOn, &reg.DecidedOn, &reg.UpdatedOn,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return reg, nil
}

func (r *registrationRepository) Update(ctx context.Context, reg *domain.Registration) error {
	query := `UPDATE registrations
	          SET status = $1, approval_status = $2, approver_name = $3, rejection_reason = $4,
	              decided_on = $5, updated_on = $6
	          WHERE id = $7`
	reg.UpdatedOn = time.Now()
	res, err := r.db.ExecContext(ctx, query,
		reg.Status, reg.ApprovalStatus, reg.ApproverName, reg.RejectionReason,
		reg.DecidedOn, reg.UpdatedOn, reg.ID)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *registrationRepository) ListByApprovalStatus(ctx context.Context, status domain.ApprovalStatus) ([]domain.Registration, error) {
	query := `SELECT ` + registrationColumns + ` FROM registrations WHERE approval_status = $1 ORDER BY submitted_on`
	rows, err := r.db.QueryContext(ctx, query, status)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var regs []domain.Registration
	for rows.Next() {
		var reg domain.Registration
		if err := rows.Scan(
			&reg.ID, &reg.CompanyName, &reg.ContactName, &reg.Email, &reg.Phone, &reg.Region, &reg.Note,
			&reg.Status, &reg.ApprovalStatus, &reg.ApproverName, &reg.RejectionReason,
			&reg.SubmittedOn, &reg.DecidedOn, &reg.UpdatedOn,
		); err != nil {
			return nil, err
		}
		regs = append(regs, reg)
	}
	return regs, rows.Err()
}
