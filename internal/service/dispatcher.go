package service

import (
	"context"
	"fmt"

	"partnernet-backend/internal/domain"
	"partnernet-backend/internal/logger"
	"partnernet-backend/internal/repository"
)

// notificationDispatcher fans a templated message out to the registrant's
// declared email address and the operations chat channel. At-least-once,
// best-effort: every failure is captured in the DispatchResult and logged,
// never returned as an error.
type notificationDispatcher struct {
	regRepo    repository.RegistrationRepository
	emailSvc   EmailService
	chatSvc    ChatMessenger
	opsChannel string
}

func NewNotificationDispatcher(
	regRepo repository.RegistrationRepository,
	emailSvc EmailService,
	chatSvc ChatMessenger,
	opsChannel string,
) NotificationDispatcher {
	return &notificationDispatcher{
		regRepo:    regRepo,
		emailSvc:   emailSvc,
		chatSvc:    chatSvc,
		opsChannel: opsChannel,
	}
}

func (d *notificationDispatcher) Send(ctx context.Context, registrationID, templateID string, payload map[string]string) DispatchResult {
	reg, err := d.regRepo.GetByID(ctx, registrationID)
	if err != nil {
		logger.Error("Dispatcher could not load registration", "registration_id", registrationID, "error", err)
		return DispatchResult{}
	}

	subject, plain, chatText, ok := renderTemplate(templateID, reg, payload)
	if !ok {
		logger.Error("Unknown notification template", "registration_id", registrationID, "template", templateID)
		return DispatchResult{}
	}

	result := DispatchResult{Success: true}

	result.ChannelsAttempted = append(result.ChannelsAttempted, "email")
	if err := d.emailSvc.Send(ctx, reg.Email, reg.ContactName, subject, plain, ""); err != nil {
		logger.Error("Email notification failed", "registration_id", registrationID, "template", templateID, "error", err)
		result.Success = false
	}

	result.ChannelsAttempted = append(result.ChannelsAttempted, "chat")
	if err := d.chatSvc.PostMessage(ctx, d.opsChannel, chatText); err != nil {
		logger.Error("Chat notification failed", "registration_id", registrationID, "template", templateID, "error", err)
		result.Success = false
	}

	return result
}

// renderTemplate maps a template id to the email subject/body and the ops
// channel line. Reverts are deliberately silent and have no template here.
func renderTemplate(templateID string, reg *domain.Registration, payload map[string]string) (subject, plain, chatText string, ok bool) {
	switch templateID {
	case TemplatePartnerWelcome:
		subject = fmt.Sprintf("Welcome to the partner network, %s!", reg.CompanyName)
		plain = fmt.Sprintf(
			"Hello %s,\n\nYour registration %s has been approved. Your partner portal account is being set up and your partner page will be published shortly.\n\nBest regards,\nThe PartnerNet Team",
			reg.ContactName, reg.ID)
		chatText = fmt.Sprintf("Welcome notification sent for %s (%s), approved by %s",
			reg.ID, reg.CompanyName, payload["approver"])
		return subject, plain, chatText, true

	case TemplateRegistrationRejected:
		reason := payload["reason"]
		subject = fmt.Sprintf("Your registration %s", reg.ID)
		plain = fmt.Sprintf(
			"Hello %s,\n\nWe are sorry to inform you that your partner registration was not approved.\n\nReason: %s\n\nYou are welcome to submit a new application.\n\nBest regards,\nThe PartnerNet Team",
			reg.ContactName, reason)
		chatText = fmt.Sprintf("Rejection notification sent for %s (%s). Reason: %s",
			reg.ID, reg.CompanyName, reason)
		return subject, plain, chatText, true
	}
	return "", "", "", false
}
