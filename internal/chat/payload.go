package chat

import "encoding/json"

// InteractionPayload is the raw JSON the platform posts (form-encoded under a
// "payload" field) when an operator clicks a button or submits a modal.
type InteractionPayload struct {
	Type      string `json:"type"`
	TriggerID string `json:"trigger_id"`
	User      struct {
		ID       string `json:"id"`
		Username string `json:"username"`
		Name     string `json:"name"`
	} `json:"user"`
	Channel struct {
		ID string `json:"id"`
	} `json:"channel"`
	Message struct {
		TS string `json:"ts"`
	} `json:"message"`
	Actions []struct {
		ActionID string `json:"action_id"`
		Value    string `json:"value"`
	} `json:"actions"`
	View struct {
		CallbackID      string          `json:"callback_id"`
		PrivateMetadata string          `json:"private_metadata"`
		State           json.RawMessage `json:"state"`
	} `json:"view"`
}

// ViewStateValue extracts a submitted input value by block and action id from
// a view's state blob. Returns "" when absent.
func ViewStateValue(state json.RawMessage, blockID, actionID string) string {
	var parsed struct {
		Values map[string]map[string]struct {
			Value string `json:"value"`
		} `json:"values"`
	}
	if err := json.Unmarshal(state, &parsed); err != nil {
		return ""
	}
	if block, ok := parsed.Values[blockID]; ok {
		if input, ok := block[actionID]; ok {
			return input.Value
		}
	}
	return ""
}

// ModalView is a minimal modal definition: a title, one text input, and the
// opaque private metadata echoed back on submission.
type ModalView struct {
	Type            string      `json:"type"`
	CallbackID      string      `json:"callback_id"`
	PrivateMetadata string      `json:"private_metadata"`
	Title           TextObject  `json:"title"`
	Submit          TextObject  `json:"submit"`
	Close           TextObject  `json:"close"`
	Blocks          []ViewBlock `json:"blocks"`
}

type TextObject struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type ViewBlock struct {
	Type    string       `json:"type"`
	BlockID string       `json:"block_id"`
	Label   TextObject   `json:"label"`
	Element InputElement `json:"element"`
}

type InputElement struct {
	Type         string `json:"type"`
	ActionID     string `json:"action_id"`
	InitialValue string `json:"initial_value,omitempty"`
	Multiline    bool   `json:"multiline,omitempty"`
}

const (
	// RejectReasonCallbackID marks the rejection-reason modal on submission.
	RejectReasonCallbackID = "reject_reason_modal"
	// ReasonBlockID / ReasonActionID locate the free-text input in view state.
	ReasonBlockID  = "reason_block"
	ReasonActionID = "reason_input"
)

// NewRejectReasonModal builds the rejection-reason form pre-filled with a
// suggested reason. metadata is the signed state token from the gateway.
func NewRejectReasonModal(metadata, suggestedReason string) ModalView {
	return ModalView{
		Type:            "modal",
		CallbackID:      RejectReasonCallbackID,
		PrivateMetadata: metadata,
		Title:           TextObject{Type: "plain_text", Text: "Reject registration"},
		Submit:          TextObject{Type: "plain_text", Text: "Reject"},
		Close:           TextObject{Type: "plain_text", Text: "Cancel"},
		Blocks: []ViewBlock{
			{
				Type:    "input",
				BlockID: ReasonBlockID,
				Label:   TextObject{Type: "plain_text", Text: "Reason sent to the applicant"},
				Element: InputElement{
					Type:         "plain_text_input",
					ActionID:     ReasonActionID,
					InitialValue: suggestedReason,
					Multiline:    true,
				},
			},
		},
	}
}
