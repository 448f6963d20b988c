package service

import (
	"context"

	"partnernet-backend/internal/domain"

	"github.com/stretchr/testify/mock"
)

// MockRegistrationRepo
type MockRegistrationRepo struct {
	mock.Mock
}

func (m *MockRegistrationRepo) GetByID(ctx context.Context, id string) (*domain.Registration, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Registration), args.Error(1)
}
func (m *MockRegistrationRepo) Update(ctx context.Context, reg *domain.Registration) error {
	args := m.Called(ctx, reg)
	return args.Error(0)
}
func (m *MockRegistrationRepo) ListByApprovalStatus(ctx context.Context, status domain.ApprovalStatus) ([]domain.Registration, error) {
	args := m.Called(ctx, status)
	return args.Get(0).([]domain.Registration), args.Error(1)
}

// MockQueueRepo
type MockQueueRepo struct {
	mock.Mock
}

func (m *MockQueueRepo) Append(ctx context.Context, entry *domain.QueueEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}
func (m *MockQueueRepo) ListUnprocessed(ctx context.Context) ([]domain.QueueEntry, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.QueueEntry), args.Error(1)
}
func (m *MockQueueRepo) MarkProcessed(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
func (m *MockQueueRepo) CountUnprocessed(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

// MockPartnerAccountRepo
type MockPartnerAccountRepo struct {
	mock.Mock
}

func (m *MockPartnerAccountRepo) Create(ctx context.Context, account *domain.PartnerAccount) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}
func (m *MockPartnerAccountRepo) GetByRegistrationID(ctx context.Context, registrationID string) (*domain.PartnerAccount, error) {
	args := m.Called(ctx, registrationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PartnerAccount), args.Error(1)
}

// MockDispatcher
type MockDispatcher struct {
	mock.Mock
}

func (m *MockDispatcher) Send(ctx context.Context, registrationID, templateID string, payload map[string]string) DispatchResult {
	args := m.Called(ctx, registrationID, templateID, payload)
	return args.Get(0).(DispatchResult)
}

// MockProvisionService
type MockProvisionService struct {
	mock.Mock
}

func (m *MockProvisionService) ProvisionPartner(ctx context.Context, reg *domain.Registration) error {
	args := m.Called(ctx, reg)
	return args.Error(0)
}
func (m *MockProvisionService) RequestPageGeneration(ctx context.Context, reg *domain.Registration) error {
	args := m.Called(ctx, reg)
	return args.Error(0)
}

// MockApprovalService
type MockApprovalService struct {
	mock.Mock
}

func (m *MockApprovalService) Approve(ctx context.Context, id, approver string) (*domain.Registration, error) {
	args := m.Called(ctx, id, approver)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Registration), args.Error(1)
}
func (m *MockApprovalService) Reject(ctx context.Context, id, rejector, reason string) (*domain.Registration, error) {
	args := m.Called(ctx, id, rejector, reason)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Registration), args.Error(1)
}
func (m *MockApprovalService) Revert(ctx context.Context, id string) (*domain.Registration, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Registration), args.Error(1)
}

// MockChatMessenger
type MockChatMessenger struct {
	mock.Mock
}

func (m *MockChatMessenger) PostMessage(ctx context.Context, channel, text string) error {
	args := m.Called(ctx, channel, text)
	return args.Error(0)
}
func (m *MockChatMessenger) UpdateMessage(ctx context.Context, channel, ts, text string) error {
	args := m.Called(ctx, channel, ts, text)
	return args.Error(0)
}

// MockEmailService
type MockEmailService struct {
	mock.Mock
}

func (m *MockEmailService) Send(ctx context.Context, to, toName, subject, plainText, htmlContent string) error {
	args := m.Called(ctx, to, toName, subject, plainText, htmlContent)
	return args.Error(0)
}
