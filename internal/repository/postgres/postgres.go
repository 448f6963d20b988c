package postgres

import (
	"database/sql"

	"partnernet-backend/internal/repository"

	_ "github.com/lib/pq"
)

type Store struct {
	db *sql.DB
	repository.RegistrationRepository
	repository.QueueRepository
	repository.PartnerAccountRepository
}

func NewStore(db *sql.DB) *Store {
	return &Store{
		db:                       db,
		RegistrationRepository:   NewRegistrationRepository(db),
		QueueRepository:          NewQueueRepository(db),
		PartnerAccountRepository: NewPartnerAccountRepository(db),
	}
}
