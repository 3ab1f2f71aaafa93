// README: Chat sessions; one conversation context plus display history per session id.
package chat

import (
	"errors"

	"yourhelpa/internal/modules/action"
	"yourhelpa/internal/modules/intent"
)

var ErrBadRequest = errors.New("bad request")

// Session is what survives between turns. Location is caller metadata used
// for distance ranking and is not part of the conversation context, so a flow
// reset leaves it in place.
type Session struct {
	Context  intent.ConversationContext `json:"context"`
	Location string                     `json:"location,omitempty"`
	Name     string                     `json:"name,omitempty"`
}

// Inbound is one user message and what the transport knows about the sender.
type Inbound struct {
	SessionID string
	Message   string
	Channel   string
	Name      string
	Phone     string
	Email     string
}

// Turn is the answer to one inbound message.
type Turn struct {
	SessionID string                     `json:"session_id"`
	Reply     intent.Reply               `json:"reply"`
	Result    *action.Result             `json:"result,omitempty"`
	Context   intent.ConversationContext `json:"context"`
}
