package service

import (
	"context"
	"testing"

	"partnernet-backend/internal/domain"
	"partnernet-backend/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestApprovalService_Approve(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		regRepo := new(MockRegistrationRepo)
		dispatcher := new(MockDispatcher)
		provisioner := new(MockProvisionService)
		svc := NewApprovalService(regRepo, dispatcher, provisioner)

		regRepo.On("GetByID", ctx, "R-1").Return(newReview("R-1"), nil).Once()
		regRepo.On("Update", ctx, mock.MatchedBy(func(r *domain.Registration) bool {
			return r.Status == domain.RegistrationStatusApproved &&
				r.ApprovalStatus == domain.ApprovalStatusApproved &&
				r.ApproverName == "alice"
		})).Return(nil).Once()
		provisioner.On("ProvisionPartner", ctx, mock.Anything).Return(nil).Once()
		provisioner.On("RequestPageGeneration", ctx, mock.Anything).Return(nil).Once()
		dispatcher.On("Send", ctx, "R-1", TemplatePartnerWelcome, mock.Anything).
			Return(DispatchResult{Success: true, ChannelsAttempted: []string{"email", "chat"}}).Once()

		reg, err := svc.Approve(ctx, "R-1", "alice")
		assert.NoError(t, err)
		assert.Equal(t, domain.RegistrationStatusApproved, reg.Status)

		regRepo.AssertExpectations(t)
		dispatcher.AssertExpectations(t)
		provisioner.AssertExpectations(t)
	})

	t.Run("DoubleApproveSendsOnce", func(t *testing.T) {
		regRepo := new(MockRegistrationRepo)
		dispatcher := new(MockDispatcher)
		provisioner := new(MockProvisionService)
		svc := NewApprovalService(regRepo, dispatcher, provisioner)

		fresh := newReview("R-1")
		regRepo.On("GetByID", ctx, "R-1").Return(fresh, nil).Once()
		regRepo.On("Update", ctx, mock.Anything).Return(nil).Once()
		provisioner.On("ProvisionPartner", ctx, mock.Anything).Return(nil).Once()
		provisioner.On("RequestPageGeneration", ctx, mock.Anything).Return(nil).Once()
		dispatcher.On("Send", ctx, "R-1", TemplatePartnerWelcome, mock.Anything).
			Return(DispatchResult{Success: true}).Once()

		first, err := svc.Approve(ctx, "R-1", "alice")
		assert.NoError(t, err)

		// Second call sees the already-approved record: no update, no
		// provisioning, no second notification.
		regRepo.On("GetByID", ctx, "R-1").Return(first, nil).Once()

		second, err := svc.Approve(ctx, "R-1", "alice")
		assert.NoError(t, err)
		assert.Equal(t, domain.RegistrationStatusApproved, second.Status)

		regRepo.AssertExpectations(t)
		dispatcher.AssertNumberOfCalls(t, "Send", 1)
		provisioner.AssertNumberOfCalls(t, "ProvisionPartner", 1)
	})

	t.Run("NotFound", func(t *testing.T) {
		regRepo := new(MockRegistrationRepo)
		dispatcher := new(MockDispatcher)
		provisioner := new(MockProvisionService)
		svc := NewApprovalService(regRepo, dispatcher, provisioner)

		regRepo.On("GetByID", ctx, "R-404").Return(nil, repository.ErrNotFound).Once()

		reg, err := svc.Approve(ctx, "R-404", "alice")
		assert.ErrorIs(t, err, repository.ErrNotFound)
		assert.Nil(t, reg)

		// Zero mutations and zero sends.
		regRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
		dispatcher.AssertNotCalled(t, "Send", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("SideEffectFailureDoesNotRollBack", func(t *testing.T) {
		regRepo := new(MockRegistrationRepo)
		dispatcher := new(MockDispatcher)
		provisioner := new(MockProvisionService)
		svc := NewApprovalService(regRepo, dispatcher, provisioner)

		regRepo.On("GetByID", ctx, "R-1").Return(newReview("R-1"), nil).Once()
		regRepo.On("Update", ctx, mock.Anything).Return(nil).Once()
		provisioner.On("ProvisionPartner", ctx, mock.Anything).Return(assert.AnError).Once()
		provisioner.On("RequestPageGeneration", ctx, mock.Anything).Return(nil).Once()
		dispatcher.On("Send", ctx, "R-1", TemplatePartnerWelcome, mock.Anything).
			Return(DispatchResult{Success: false, ChannelsAttempted: []string{"email"}}).Once()

		reg, err := svc.Approve(ctx, "R-1", "alice")
		assert.NoError(t, err)
		assert.Equal(t, domain.RegistrationStatusApproved, reg.Status)
	})
}

func TestApprovalService_Reject(t *testing.T) {
	ctx := context.Background()

	regRepo := new(MockRegistrationRepo)
	dispatcher := new(MockDispatcher)
	provisioner := new(MockProvisionService)
	svc := NewApprovalService(regRepo, dispatcher, provisioner)

	regRepo.On("GetByID", ctx, "R-2").Return(newReview("R-2"), nil).Once()
	regRepo.On("Update", ctx, mock.MatchedBy(func(r *domain.Registration) bool {
		return r.Status == domain.RegistrationStatusRejected &&
			r.RejectionReason == "insufficient documentation"
	})).Return(nil).Once()
	dispatcher.On("Send", ctx, "R-2", TemplateRegistrationRejected, mock.MatchedBy(func(p map[string]string) bool {
		return p["reason"] == "insufficient documentation"
	})).Return(DispatchResult{Success: true}).Once()

	reg, err := svc.Reject(ctx, "R-2", "bob", "insufficient documentation")
	assert.NoError(t, err)
	assert.Equal(t, "insufficient documentation", reg.RejectionReason)

	regRepo.AssertExpectations(t)
	dispatcher.AssertExpectations(t)
	provisioner.AssertNotCalled(t, "ProvisionPartner", mock.Anything, mock.Anything)
}

func TestApprovalService_Revert(t *testing.T) {
	ctx := context.Background()

	regRepo := new(MockRegistrationRepo)
	dispatcher := new(MockDispatcher)
	provisioner := new(MockProvisionService)
	svc := NewApprovalService(regRepo, dispatcher, provisioner)

	approved := newReview("R-3")
	approved.Status = domain.RegistrationStatusApproved
	approved.ApprovalStatus = domain.ApprovalStatusApproved

	regRepo.On("GetByID", ctx, "R-3").Return(approved, nil).Once()
	regRepo.On("Update", ctx, mock.MatchedBy(func(r *domain.Registration) bool {
		return r.Status == domain.RegistrationStatusResubmitRequested &&
			r.ApprovalStatus == domain.ApprovalStatusPending
	})).Return(nil).Once()

	reg, err := svc.Revert(ctx, "R-3")
	assert.NoError(t, err)
	assert.Equal(t, domain.RegistrationStatusResubmitRequested, reg.Status)

	// Revert is silent.
	dispatcher.AssertNotCalled(t, "Send", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	regRepo.AssertExpectations(t)
}
