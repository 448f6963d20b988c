package service

import (
	"context"
	"fmt"
	"time"

	"partnernet-backend/internal/domain"
	"partnernet-backend/internal/logger"
	"partnernet-backend/internal/repository"
)

type approvalService struct {
	regRepo     repository.RegistrationRepository
	dispatcher  NotificationDispatcher
	provisioner ProvisionService
}

func NewApprovalService(
	regRepo repository.RegistrationRepository,
	dispatcher NotificationDispatcher,
	provisioner ProvisionService,
) ApprovalService {
	return &approvalService{
		regRepo:     regRepo,
		dispatcher:  dispatcher,
		provisioner: provisioner,
	}
}

func (s *approvalService) Approve(ctx context.Context, id, approver string) (*domain.Registration, error) {
	return s.apply(ctx, id, domain.OperationApprove, approver, "")
}

func (s *approvalService) Reject(ctx context.Context, id, rejector, reason string) (*domain.Registration, error) {
	return s.apply(ctx, id, domain.OperationReject, rejector, reason)
}

func (s *approvalService) Revert(ctx context.Context, id string) (*domain.Registration, error) {
	return s.apply(ctx, id, domain.OperationRevert, "", "")
}

// apply runs the pure transition, persists it, then executes side effects.
// The persisted state change is the source of truth: a failed side effect is
// logged, never rolled back.
func (s *approvalService) apply(ctx context.Context, id string, op domain.Operation, actor, reason string) (*domain.Registration, error) {
	reg, err := s.regRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get registration %s: %w", id, err)
	}

	result, err := Transition(reg, op, actor, reason, time.Now())
	if err != nil {
		return nil, err
	}
	if !result.Changed {
		// Replayed deferred entry or double click: already in the target
		// state, nothing to persist and no side effects to repeat.
		logger.Info("Registration already in target state", "registration_id", id, "operation", op)
		return result.Registration, nil
	}

	if err := s.regRepo.Update(ctx, result.Registration); err != nil {
		return nil, fmt.Errorf("failed to update registration %s: %w", id, err)
	}

	for _, effect := range result.Effects {
		s.execute(ctx, result.Registration, effect)
	}

	return result.Registration, nil
}

func (s *approvalService) execute(ctx context.Context, reg *domain.Registration, effect Effect) {
	switch effect.Kind {
	case EffectProvisionAccount:
		if err := s.provisioner.ProvisionPartner(ctx, reg); err != nil {
			logger.Error("Partner provisioning failed", "registration_id", reg.ID, "error", err)
		}
	case EffectGeneratePage:
		if err := s.provisioner.RequestPageGeneration(ctx, reg); err != nil {
			logger.Error("Page generation request failed", "registration_id", reg.ID, "error", err)
		}
	case EffectNotify:
		res := s.dispatcher.Send(ctx, reg.ID, effect.TemplateID, effect.Payload)
		if !res.Success {
			logger.Error("Notification dispatch failed", "registration_id", reg.ID,
				"template", effect.TemplateID, "channels", res.ChannelsAttempted)
		}
	default:
		logger.Error("Unknown side effect requested", "registration_id", reg.ID, "kind", effect.Kind)
	}
}
