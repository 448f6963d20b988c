package service

import (
	"errors"
	"fmt"
	"time"

	"partnernet-backend/internal/domain"
)

var ErrInvalidTransition = errors.New("invalid status transition")

type EffectKind string

const (
	EffectProvisionAccount EffectKind = "provision_account"
	EffectGeneratePage     EffectKind = "generate_page"
	EffectNotify           EffectKind = "notify"
)

// Effect is a side-effect request emitted by a transition. The state machine
// only describes effects; the approval service executes them best-effort.
type Effect struct {
	Kind       EffectKind
	TemplateID string // EffectNotify only
	Payload    map[string]string
}

// TransitionResult is the outcome of applying an operation to a registration.
// Changed is false when the record was already in the target terminal status,
// in which case Effects is empty: replayed deferred entries must not repeat
// side effects.
type TransitionResult struct {
	Registration *domain.Registration
	Changed      bool
	Effects      []Effect
}

// Transition applies op to a copy of reg and returns the new field values
// plus the side effects the change requires. It performs no I/O.
func Transition(reg *domain.Registration, op domain.Operation, actor, reason string, now time.Time) (*TransitionResult, error) {
	next := *reg

	switch op {
	case domain.OperationApprove:
		if next.Status == domain.RegistrationStatusApproved {
			return &TransitionResult{Registration: &next}, nil
		}
		if next.Status != domain.RegistrationStatusUnderReview && next.Status != domain.RegistrationStatusResubmitRequested {
			return nil, fmt.Errorf("%w: cannot approve from %s", ErrInvalidTransition, next.Status)
		}
		next.Status = domain.RegistrationStatusApproved
		next.ApprovalStatus = domain.ApprovalStatusApproved
		next.ApproverName = actor
		next.RejectionReason = ""
		next.DecidedOn = &now
		return &TransitionResult{
			Registration: &next,
			Changed:      true,
			Effects: []Effect{
				{Kind: EffectProvisionAccount},
				{Kind: EffectGeneratePage},
				{
					Kind:       EffectNotify,
					TemplateID: TemplatePartnerWelcome,
					Payload: map[string]string{
						"contact_name": next.ContactName,
						"company_name": next.CompanyName,
						"approver":     actor,
					},
				},
			},
		}, nil

	case domain.OperationReject:
		if next.Status == domain.RegistrationStatusRejected {
			return &TransitionResult{Registration: &next}, nil
		}
		if next.Status != domain.RegistrationStatusUnderReview && next.Status != domain.RegistrationStatusResubmitRequested {
			return nil, fmt.Errorf("%w: cannot reject from %s", ErrInvalidTransition, next.Status)
		}
		next.Status = domain.RegistrationStatusRejected
		next.ApprovalStatus = domain.ApprovalStatusRejected
		next.ApproverName = actor
		next.RejectionReason = reason // stored verbatim
		next.DecidedOn = &now
		return &TransitionResult{
			Registration: &next,
			Changed:      true,
			Effects: []Effect{
				{
					Kind:       EffectNotify,
					TemplateID: TemplateRegistrationRejected,
					Payload: map[string]string{
						"contact_name": next.ContactName,
						"company_name": next.CompanyName,
						"reason":       reason,
					},
				},
			},
		}, nil

	case domain.OperationRevert:
		if next.Status != domain.RegistrationStatusApproved && next.Status != domain.RegistrationStatusRejected {
			return nil, fmt.Errorf("%w: cannot revert from %s", ErrInvalidTransition, next.Status)
		}
		// Silent re-queue for human review: no notification effect.
		next.Status = domain.RegistrationStatusResubmitRequested
		next.ApprovalStatus = domain.ApprovalStatusPending
		next.DecidedOn = nil
		return &TransitionResult{Registration: &next, Changed: true}, nil

	default:
		return nil, fmt.Errorf("unknown operation: %q", op)
	}
}

// DecisionText renders the line shown in the origin chat message after a
// registration changes state.
func DecisionText(reg *domain.Registration) string {
	switch reg.Status {
	case domain.RegistrationStatusApproved:
		return fmt.Sprintf("✅ Registration %s (%s) approved by %s", reg.ID, reg.CompanyName, reg.ApproverName)
	case domain.RegistrationStatusRejected:
		return fmt.Sprintf("❌ Registration %s (%s) rejected by %s. Reason: %s", reg.ID, reg.CompanyName, reg.ApproverName, reg.RejectionReason)
	case domain.RegistrationStatusResubmitRequested:
		return fmt.Sprintf("↩️ Registration %s (%s) sent back for review", reg.ID, reg.CompanyName)
	default:
		return fmt.Sprintf("Registration %s (%s) is under review", reg.ID, reg.CompanyName)
	}
}
