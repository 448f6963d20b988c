package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"partnernet-backend/internal/domain"
	"partnernet-backend/internal/logger"
	"partnernet-backend/internal/repository"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// provisionService creates partner portal credentials and asks the CMS to
// generate the public partner page once a registration is approved. Both
// calls are idempotent per registration id.
type provisionService struct {
	accountRepo      repository.PartnerAccountRepository
	pageGeneratorURL string
	httpClient       *http.Client
}

func NewProvisionService(accountRepo repository.PartnerAccountRepository, pageGeneratorURL string) ProvisionService {
	return &provisionService{
		accountRepo:      accountRepo,
		pageGeneratorURL: pageGeneratorURL,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

func (s *provisionService) ProvisionPartner(ctx context.Context, reg *domain.Registration) error {
	existing, err := s.accountRepo.GetByRegistrationID(ctx, reg.ID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("failed to check existing partner account: %w", err)
	}
	if existing != nil {
		// Replayed approval: credentials were already issued, never rotate.
		return nil
	}

	initialSecret := uuid.NewString()
	hash, err := bcrypt.GenerateFromPassword([]byte(initialSecret), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash initial password: %w", err)
	}

	account := &domain.PartnerAccount{
		RegistrationID: reg.ID,
		LoginEmail:     reg.Email,
		APIKey:         uuid.NewString(),
		PasswordHash:   string(hash),
	}
	if err := s.accountRepo.Create(ctx, account); err != nil {
		return fmt.Errorf("failed to create partner account: %w", err)
	}

	logger.Info("Partner account provisioned", "registration_id", reg.ID, "login_email", reg.Email)
	return nil
}

func (s *provisionService) RequestPageGeneration(ctx context.Context, reg *domain.Registration) error {
	logger.ExternalServiceCall("cms", "generate_page", "registration_id", reg.ID)

	body, err := json.Marshal(map[string]string{
		"registration_id": reg.ID,
		"company_name":    reg.CompanyName,
		"region":          reg.Region,
	})
	if err != nil {
		return fmt.Errorf("failed to encode page generation request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.pageGeneratorURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build page generation request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		logger.ExternalServiceResult("cms", "generate_page", err)
		return fmt.Errorf("page generation request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		err := fmt.Errorf("page generator returned status %d", resp.StatusCode)
		logger.ExternalServiceResult("cms", "generate_page", err)
		return err
	}

	logger.ExternalServiceResult("cms", "generate_page", nil)
	return nil
}
