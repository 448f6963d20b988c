package service

import (
	"context"

	"partnernet-backend/internal/domain"
)

// Notification template ids understood by the dispatcher.
const (
	TemplatePartnerWelcome       = "partner_welcome"
	TemplateRegistrationRejected = "registration_rejected"
)

type ApprovalService interface {
	Approve(ctx context.Context, id, approver string) (*domain.Registration, error)
	Reject(ctx context.Context, id, rejector, reason string) (*domain.Registration, error)
	Revert(ctx context.Context, id string) (*domain.Registration, error)
}

type QueueProcessor interface {
	Enqueue(ctx context.Context, entry *domain.QueueEntry) error
	// Drain applies all unprocessed queue entries once and returns how many
	// were marked processed and how many remain.
	Drain(ctx context.Context) (processed, remaining int, err error)
}

// DispatchResult reports a notification fan-out. Failures are captured here,
// never raised, so callers log without special-casing errors.
type DispatchResult struct {
	Success           bool
	ChannelsAttempted []string
}

type NotificationDispatcher interface {
	Send(ctx context.Context, registrationID, templateID string, payload map[string]string) DispatchResult
}

type ProvisionService interface {
	ProvisionPartner(ctx context.Context, reg *domain.Registration) error
	RequestPageGeneration(ctx context.Context, reg *domain.Registration) error
}

type EmailService interface {
	Send(ctx context.Context, to, toName, subject, plainText, htmlContent string) error
}

// ChatMessenger is the slice of the chat client the services need.
type ChatMessenger interface {
	PostMessage(ctx context.Context, channel, text string) error
	UpdateMessage(ctx context.Context, channel, ts, text string) error
}
