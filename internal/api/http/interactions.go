package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"time"

	"partnernet-backend/internal/chat"
	"partnernet-backend/internal/domain"
	"partnernet-backend/internal/logger"
	"partnernet-backend/internal/security"
	"partnernet-backend/internal/service"

	"github.com/gorilla/mux"
)

const maxPayloadBytes = 1 << 20

// ChatGateway is the slice of the chat client the handler needs.
type ChatGateway interface {
	UpdateMessage(ctx context.Context, channel, ts, text string) error
	OpenView(ctx context.Context, triggerID string, view chat.ModalView) error
}

// InteractionHandler terminates interaction requests from the chat platform.
// The platform drops any interaction not acknowledged within its response
// budget, so every path here answers 200 with an empty JSON body, malformed
// and failed requests included: a non-200 would be retried by the platform
// and could duplicate effects.
type InteractionHandler struct {
	approvalSvc         service.ApprovalService
	queue               service.QueueProcessor
	chatSvc             ChatGateway
	tokens              security.StateTokenManager
	signingSecret       string
	defaultRejectReason string
	now                 func() time.Time
}

func NewInteractionHandler(
	approvalSvc service.ApprovalService,
	queue service.QueueProcessor,
	chatSvc ChatGateway,
	tokens security.StateTokenManager,
	signingSecret string,
	defaultRejectReason string,
) *InteractionHandler {
	return &InteractionHandler{
		approvalSvc:         approvalSvc,
		queue:               queue,
		chatSvc:             chatSvc,
		tokens:              tokens,
		signingSecret:       signingSecret,
		defaultRejectReason: defaultRejectReason,
		now:                 time.Now,
	}
}

// HandleInteraction processes a single interaction POST.
func (h *InteractionHandler) HandleInteraction(w http.ResponseWriter, r *http.Request) {
	defer func() {
		if rec := recover(); rec != nil {
			logger.Error("Interaction handler panicked", "panic", rec)
			ack(w)
		}
	}()

	body, err := io.ReadAll(io.LimitReader(r.Body, maxPayloadBytes))
	if err != nil {
		logger.Error("Failed to read interaction body", "error", err)
		ack(w)
		return
	}

	timestamp := r.Header.Get("X-Chat-Request-Timestamp")
	signature := r.Header.Get("X-Chat-Signature")
	if !chat.VerifySignature(h.signingSecret, timestamp, signature, body, h.now()) {
		logger.Warn("Interaction with invalid signature discarded")
		ack(w)
		return
	}

	payload, err := parsePayload(body)
	if err != nil {
		// Nothing actionable can be extracted; acknowledge and discard.
		logger.Warn("Malformed interaction payload discarded", "error", err)
		ack(w)
		return
	}

	switch domain.InteractionType(payload.Type) {
	case domain.InteractionTypeBlockActions:
		h.handleBlockAction(r.Context(), w, payload)
	case domain.InteractionTypeViewSubmission:
		h.handleViewSubmission(r.Context(), w, payload)
	default:
		logger.Warn("Unsupported interaction type discarded", "type", payload.Type)
		ack(w)
	}
}

// parsePayload unwraps the form-encoded "payload" field and decodes the JSON
// interaction inside it.
func parsePayload(body []byte) (*chat.InteractionPayload, error) {
	values, err := url.ParseQuery(string(body))
	if err != nil {
		return nil, err
	}
	raw := values.Get("payload")
	if raw == "" {
		return nil, errors.New("missing payload field")
	}
	var payload chat.InteractionPayload
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

func (h *InteractionHandler) handleBlockAction(ctx context.Context, w http.ResponseWriter, payload *chat.InteractionPayload) {
	if len(payload.Actions) == 0 {
		logger.Warn("Block action payload without actions discarded")
		ack(w)
		return
	}

	action, err := domain.ParseActionID(payload.Actions[0].ActionID)
	if err != nil {
		logger.Warn("Undecodable action discarded", "action_id", payload.Actions[0].ActionID, "error", err)
		ack(w)
		return
	}

	actor := actorName(payload)

	switch action.Kind {
	case domain.ActionApprove:
		h.applyFastAction(ctx, payload, func() (*domain.Registration, error) {
			return h.approvalSvc.Approve(ctx, action.RegistrationID, actor)
		})
	case domain.ActionReject:
		h.applyFastAction(ctx, payload, func() (*domain.Registration, error) {
			return h.approvalSvc.Reject(ctx, action.RegistrationID, actor, h.defaultRejectReason)
		})
	case domain.ActionRevert:
		h.applyFastAction(ctx, payload, func() (*domain.Registration, error) {
			return h.approvalSvc.Revert(ctx, action.RegistrationID)
		})
	case domain.ActionRejectWithReason:
		h.openRejectModal(ctx, payload, action.RegistrationID)
	}

	ack(w)
}

// applyFastAction runs a single-mutation action synchronously and edits the
// origin message with the outcome. One record write plus one message edit
// stays well inside the platform budget. Failures are logged only; the
// operator sees no change and the detail lives in the logs.
func (h *InteractionHandler) applyFastAction(ctx context.Context, payload *chat.InteractionPayload, apply func() (*domain.Registration, error)) {
	reg, err := apply()
	if err != nil {
		logger.Error("Fast action failed", "user", actorName(payload), "error", err)
		return
	}
	if err := h.chatSvc.UpdateMessage(ctx, payload.Channel.ID, payload.Message.TS, service.DecisionText(reg)); err != nil {
		logger.Error("Failed to update origin message", "registration_id", reg.ID, "error", err)
	}
}

// openRejectModal opens the rejection-reason form without touching the
// record. The form carries its context as a signed opaque token so the
// submission can be processed statelessly.
func (h *InteractionHandler) openRejectModal(ctx context.Context, payload *chat.InteractionPayload, registrationID string) {
	token, err := h.tokens.GenerateModalState(security.ModalStateClaims{
		RegistrationID:  registrationID,
		ActorID:         payload.User.ID,
		ActorName:       actorName(payload),
		OriginChannel:   payload.Channel.ID,
		OriginMessageTS: payload.Message.TS,
	})
	if err != nil {
		logger.Error("Failed to sign modal state", "registration_id", registrationID, "error", err)
		return
	}

	view := chat.NewRejectReasonModal(token, h.defaultRejectReason)
	if err := h.chatSvc.OpenView(ctx, payload.TriggerID, view); err != nil {
		logger.Error("Failed to open rejection modal", "registration_id", registrationID, "error", err)
	}
}

// handleViewSubmission persists the deferred entry, acknowledges, and only
// then kicks an opportunistic drain so the operator usually sees the result
// without waiting for the periodic sweep.
func (h *InteractionHandler) handleViewSubmission(ctx context.Context, w http.ResponseWriter, payload *chat.InteractionPayload) {
	if payload.View.CallbackID != chat.RejectReasonCallbackID {
		logger.Warn("Unknown view submission discarded", "callback_id", payload.View.CallbackID)
		ack(w)
		return
	}

	claims, err := h.tokens.ValidateModalState(payload.View.PrivateMetadata)
	if err != nil {
		logger.Warn("View submission with invalid state discarded", "error", err)
		ack(w)
		return
	}

	reason := chat.ViewStateValue(payload.View.State, chat.ReasonBlockID, chat.ReasonActionID)
	if reason == "" {
		reason = h.defaultRejectReason
	}

	entry := &domain.QueueEntry{
		Operation:       domain.OperationReject,
		RegistrationID:  claims.RegistrationID,
		ActingUser:      claims.ActorName,
		Payload:         reason,
		OriginChannel:   claims.OriginChannel,
		OriginMessageTS: claims.OriginMessageTS,
	}
	if err := h.queue.Enqueue(ctx, entry); err != nil {
		logger.Error("Failed to enqueue deferred rejection", "registration_id", claims.RegistrationID, "error", err)
		ack(w)
		return
	}

	ack(w)

	go func() {
		defer func() {
			if rec := recover(); rec != nil {
				logger.Error("Opportunistic drain panicked", "panic", rec)
			}
		}()
		drainCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if _, _, err := h.queue.Drain(drainCtx); err != nil {
			logger.Error("Opportunistic drain failed", "error", err)
		}
	}()
}

func actorName(payload *chat.InteractionPayload) string {
	if payload.User.Name != "" {
		return payload.User.Name
	}
	return payload.User.Username
}

func ack(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("{}"))
}

// RegisterInteractionRoutes registers the chat webhook endpoints.
func RegisterInteractionRoutes(router *mux.Router, handler *InteractionHandler) {
	router.HandleFunc("/api/v1/interactions", handler.HandleInteraction).Methods("POST")
	router.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}).Methods("GET")
}
