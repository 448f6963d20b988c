package http

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"partnernet-backend/internal/chat"
	"partnernet-backend/internal/domain"
	"partnernet-backend/internal/repository"
	"partnernet-backend/internal/security"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

const (
	testSigningSecret = "test-signing-secret"
	testStateSecret   = "0123456789abcdef0123456789abcdef"
	defaultReason     = "Your application did not meet our partner requirements."
)

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

// MockQueueProcessor
type MockQueueProcessor struct {
	mock.Mock
}

func (m *MockQueueProcessor) Enqueue(ctx context.Context, entry *domain.QueueEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}
func (m *MockQueueProcessor) Drain(ctx context.Context) (int, int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Int(1), args.Error(2)
}

// MockChatGateway
type MockChatGateway struct {
	mock.Mock
}

func (m *MockChatGateway) UpdateMessage(ctx context.Context, channel, ts, text string) error {
	args := m.Called(ctx, channel, ts, text)
	return args.Error(0)
}
func (m *MockChatGateway) OpenView(ctx context.Context, triggerID string, view chat.ModalView) error {
	args := m.Called(ctx, triggerID, view)
	return args.Error(0)
}

type handlerFixture struct {
	handler     *InteractionHandler
	approvalSvc *MockApprovalService
	queue       *MockQueueProcessor
	chatSvc     *MockChatGateway
	tokens      security.StateTokenManager
}

func newFixture() *handlerFixture {
	approvalSvc := new(MockApprovalService)
	queue := new(MockQueueProcessor)
	chatSvc := new(MockChatGateway)
	tokens := security.NewStateTokenManager(testStateSecret, 30*time.Minute)
	return &handlerFixture{
		handler:     NewInteractionHandler(approvalSvc, queue, chatSvc, tokens, testSigningSecret, defaultReason),
		approvalSvc: approvalSvc,
		queue:       queue,
		chatSvc:     chatSvc,
		tokens:      tokens,
	}
}

// post builds a correctly signed interaction request and records the response.
func (f *handlerFixture) post(t *testing.T, payloadJSON string) *httptest.ResponseRecorder {
	t.Helper()
	body := url.Values{"payload": {payloadJSON}}.Encode()
	ts := fmt.Sprintf("%d", time.Now().Unix())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/interactions", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("X-Chat-Request-Timestamp", ts)
	req.Header.Set("X-Chat-Signature", chat.Sign(testSigningSecret, ts, []byte(body)))

	rec := httptest.NewRecorder()
	f.handler.HandleInteraction(rec, req)
	return rec
}

func assertEmptyAck(t *testing.T, rec *httptest.ResponseRecorder) {
	t.Helper()
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "{}", rec.Body.String())
}

func blockActionPayload(actionID string) string {
	return fmt.Sprintf(`{
		"type": "block_actions",
		"trigger_id": "T-1",
		"user": {"id": "U-1", "name": "alice"},
		"channel": {"id": "C-OPS"},
		"message": {"ts": "111.222"},
		"actions": [{"action_id": %q, "value": ""}]
	}`, actionID)
}

func approvedReg(id string) *domain.Registration {
	return &domain.Registration{
		ID:             id,
		CompanyName:    "Sakura Partners",
		Status:         domain.RegistrationStatusApproved,
		ApprovalStatus: domain.ApprovalStatusApproved,
		ApproverName:   "alice",
	}
}

func TestHandleInteraction_MalformedPayloadIsAcked(t *testing.T) {
	f := newFixture()

	rec := f.post(t, "this is not json")
	assertEmptyAck(t, rec)

	f.approvalSvc.AssertNotCalled(t, "Approve", mock.Anything, mock.Anything, mock.Anything)
	f.queue.AssertNotCalled(t, "Enqueue", mock.Anything, mock.Anything)
}

func TestHandleInteraction_InvalidSignatureIsAckedAndDiscarded(t *testing.T) {
	f := newFixture()

	body := url.Values{"payload": {blockActionPayload("approve:R-1")}}.Encode()
	ts := fmt.Sprintf("%d", time.Now().Unix())
	req := httptest.NewRequest(http.MethodPost, "/api/v1/interactions", strings.NewReader(body))
	req.Header.Set("X-Chat-Request-Timestamp", ts)
	req.Header.Set("X-Chat-Signature", "v0=deadbeef")

	rec := httptest.NewRecorder()
	f.handler.HandleInteraction(rec, req)

	assertEmptyAck(t, rec)
	f.approvalSvc.AssertNotCalled(t, "Approve", mock.Anything, mock.Anything, mock.Anything)
}

func TestHandleInteraction_ApproveFastPath(t *testing.T) {
	f := newFixture()

	f.approvalSvc.On("Approve", mock.Anything, "R-1", "alice").Return(approvedReg("R-1"), nil).Once()
	f.chatSvc.On("UpdateMessage", mock.Anything, "C-OPS", "111.222", mock.MatchedBy(func(text string) bool {
		return strings.Contains(text, "R-1") && strings.Contains(text, "alice")
	})).Return(nil).Once()

	rec := f.post(t, blockActionPayload("approve:R-1"))
	assertEmptyAck(t, rec)

	f.approvalSvc.AssertExpectations(t)
	f.chatSvc.AssertExpectations(t)
}

func TestHandleInteraction_ApproveNotFoundStillAcks(t *testing.T) {
	f := newFixture()

	f.approvalSvc.On("Approve", mock.Anything, "R-404", "alice").Return(nil, repository.ErrNotFound).Once()

	rec := f.post(t, blockActionPayload("approve:R-404"))
	assertEmptyAck(t, rec)

	f.chatSvc.AssertNotCalled(t, "UpdateMessage", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestHandleInteraction_RejectWithDefaultReason(t *testing.T) {
	f := newFixture()

	rejected := approvedReg("R-2")
	rejected.Status = domain.RegistrationStatusRejected
	rejected.RejectionReason = defaultReason

	f.approvalSvc.On("Reject", mock.Anything, "R-2", "alice", defaultReason).Return(rejected, nil).Once()
	f.chatSvc.On("UpdateMessage", mock.Anything, "C-OPS", "111.222", mock.Anything).Return(nil).Once()

	rec := f.post(t, blockActionPayload("reject:R-2"))
	assertEmptyAck(t, rec)

	f.approvalSvc.AssertExpectations(t)
}

func TestHandleInteraction_RejectWithReasonOpensModal(t *testing.T) {
	f := newFixture()

	f.chatSvc.On("OpenView", mock.Anything, "T-1", mock.MatchedBy(func(view chat.ModalView) bool {
		claims, err := f.tokens.ValidateModalState(view.PrivateMetadata)
		if err != nil {
			return false
		}
		return claims.RegistrationID == "R-2" &&
			claims.ActorName == "alice" &&
			claims.OriginChannel == "C-OPS" &&
			claims.OriginMessageTS == "111.222" &&
			view.Blocks[0].Element.InitialValue == defaultReason
	})).Return(nil).Once()

	rec := f.post(t, blockActionPayload("reject_reason:R-2"))
	assertEmptyAck(t, rec)

	// Opening the form never mutates the record.
	f.approvalSvc.AssertNotCalled(t, "Reject", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	f.chatSvc.AssertExpectations(t)
}

func TestHandleInteraction_ViewSubmissionEnqueuesAndDrains(t *testing.T) {
	f := newFixture()

	token, err := f.tokens.GenerateModalState(security.ModalStateClaims{
		RegistrationID:  "R-2",
		ActorID:         "U-2",
		ActorName:       "bob",
		OriginChannel:   "C-OPS",
		OriginMessageTS: "111.222",
	})
	assert.NoError(t, err)

	state, _ := json.Marshal(map[string]any{
		"values": map[string]any{
			chat.ReasonBlockID: map[string]any{
				chat.ReasonActionID: map[string]string{"value": "insufficient documentation"},
			},
		},
	})
	payload := fmt.Sprintf(`{
		"type": "view_submission",
		"user": {"id": "U-2", "name": "bob"},
		"view": {"callback_id": %q, "private_metadata": %q, "state": %s}
	}`, chat.RejectReasonCallbackID, token, state)

	f.queue.On("Enqueue", mock.Anything, mock.MatchedBy(func(entry *domain.QueueEntry) bool {
		return entry.Operation == domain.OperationReject &&
			entry.RegistrationID == "R-2" &&
			entry.ActingUser == "bob" &&
			entry.Payload == "insufficient documentation" &&
			entry.OriginChannel == "C-OPS" &&
			entry.OriginMessageTS == "111.222"
	})).Return(nil).Once()

	drained := make(chan struct{})
	f.queue.On("Drain", mock.Anything).Run(func(mock.Arguments) {
		close(drained)
	}).Return(1, 0, nil).Once()

	rec := f.post(t, payload)
	assertEmptyAck(t, rec)

	select {
	case <-drained:
	case <-time.After(2 * time.Second):
		t.Fatal("opportunistic drain was not invoked")
	}

	f.queue.AssertExpectations(t)
}

func TestHandleInteraction_ViewSubmissionWithInvalidStateIsDiscarded(t *testing.T) {
	f := newFixture()

	payload := fmt.Sprintf(`{
		"type": "view_submission",
		"user": {"id": "U-2", "name": "bob"},
		"view": {"callback_id": %q, "private_metadata": "forged", "state": {"values": {}}}
	}`, chat.RejectReasonCallbackID)

	rec := f.post(t, payload)
	assertEmptyAck(t, rec)

	f.queue.AssertNotCalled(t, "Enqueue", mock.Anything, mock.Anything)
}
