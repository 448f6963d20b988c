package domain

import (
	"fmt"
	"strings"
)

type InteractionType string

const (
	InteractionTypeBlockActions   InteractionType = "block_actions"
	InteractionTypeViewSubmission InteractionType = "view_submission"
)

// ActionKind is the closed set of operator actions a chat message can carry.
type ActionKind string

const (
	ActionApprove          ActionKind = "approve"
	ActionReject           ActionKind = "reject" // rejects with the default reason
	ActionRejectWithReason ActionKind = "reject_reason"
	ActionRevert           ActionKind = "revert"
)

// actionIDSeparator joins the action kind and the registration id inside a
// single action_id string on the wire, e.g. "approve:R-20260815-041".
const actionIDSeparator = ":"

// Action is an action_id decoded once at the gateway boundary.
type Action struct {
	Kind           ActionKind
	RegistrationID string
}

// ActionID encodes an action for embedding in a chat message button.
func ActionID(kind ActionKind, registrationID string) string {
	return string(kind) + actionIDSeparator + registrationID
}

// ParseActionID splits an action_id into its kind and registration id. The
// registration id may itself contain the separator, so only the first
// occurrence splits.
func ParseActionID(actionID string) (Action, error) {
	kind, id, found := strings.Cut(actionID, actionIDSeparator)
	if !found || id == "" {
		return Action{}, fmt.Errorf("malformed action id: %q", actionID)
	}
	switch ActionKind(kind) {
	case ActionApprove, ActionReject, ActionRejectWithReason, ActionRevert:
		return Action{Kind: ActionKind(kind), RegistrationID: id}, nil
	default:
		return Action{}, fmt.Errorf("unknown action kind: %q", kind)
	}
}

// InteractionEvent is a parsed interaction payload. It lives only for the
// duration of one request; deferred work is persisted as a QueueEntry.
type InteractionEvent struct {
	Type            InteractionType
	Action          Action
	UserID          string
	UserName        string
	Reason          string // view_submission free text
	OriginChannel   string
	OriginMessageTS string
	TriggerID       string // present on block_actions, needed to open a modal
}
