// README: Chat intent types: category table rows, matches, conversation context and replies.
package intent

import (
	"strings"
	"time"
)

// ServiceCategory is one row of the static category table. Keywords feed the
// scored matcher, Triggers are the word stems the dispatcher rules test for.
// Excludes are phrases that belong to a later row even though they contain
// one of this row's triggers.
type ServiceCategory struct {
	Category      string
	Title         string
	Keywords      []string
	Subcategories []string
	Triggers      []string
	Excludes      []string
}

type IntentMatch struct {
	Category      string
	Confidence    float64
	Subcategories []string
}

type Flow string

const (
	FlowIdle                 Flow = ""
	FlowAwaitingConfirmation Flow = "awaiting_confirmation"
	FlowRegistration         Flow = "registration"
)

// ProviderRef is the slice of a provider the conversation needs to remember.
type ProviderRef struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Category string `json:"category,omitempty"`
	Price    string `json:"price,omitempty"`
}

// ConversationContext is owned by a single chat session. The zero value is the
// idle context.
type ConversationContext struct {
	CurrentFlow      Flow              `json:"current_flow,omitempty"`
	SelectedProvider *ProviderRef      `json:"selected_provider,omitempty"`
	BookingData      map[string]string `json:"booking_data,omitempty"`
}

func (c *ConversationContext) Reset() {
	*c = ConversationContext{}
}

// Clone returns a deep copy, so a caller can roll back a flow transition.
func (c *ConversationContext) Clone() ConversationContext {
	out := ConversationContext{CurrentFlow: c.CurrentFlow}
	if c.SelectedProvider != nil {
		p := *c.SelectedProvider
		out.SelectedProvider = &p
	}
	if c.BookingData != nil {
		out.BookingData = make(map[string]string, len(c.BookingData))
		for k, v := range c.BookingData {
			out.BookingData[k] = v
		}
	}
	return out
}

func (c *ConversationContext) IsIdle() bool {
	return c.CurrentFlow == FlowIdle && c.SelectedProvider == nil && len(c.BookingData) == 0
}

// AwaitConfirmation moves the session into the booking confirmation flow.
func (c *ConversationContext) AwaitConfirmation(p ProviderRef) {
	c.CurrentFlow = FlowAwaitingConfirmation
	c.SelectedProvider = &p
	c.BookingData = map[string]string{"provider_id": p.ID}
	if p.Category != "" {
		c.BookingData["service"] = p.Category
	}
}

func (c *ConversationContext) StartRegistration() {
	c.CurrentFlow = FlowRegistration
	c.SelectedProvider = nil
	c.BookingData = nil
}

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is kept for display only; matching never looks at history.
type Message struct {
	Role Role      `json:"role"`
	Text string    `json:"text"`
	At   time.Time `json:"at"`
}

// Reply is what the dispatcher hands back for one utterance. Text is never
// empty; Action is an optional action tag such as SHOW_PROVIDERS:plumbing.
type Reply struct {
	Text   string `json:"text"`
	Action string `json:"action,omitempty"`
	Intent string `json:"intent"`
}

func (r Reply) HasAction() bool {
	return r.Action != ""
}

// Action tag types.
const (
	ActionShowProviders    = "SHOW_PROVIDERS"
	ActionShowAllProviders = "SHOW_ALL_PROVIDERS"
	ActionShowRecipes      = "SHOW_RECIPES"
	ActionSearchRecipe     = "SEARCH_RECIPE"
	ActionRegisterProvider = "REGISTER_PROVIDER"
	ActionHelp             = "HELP"
	ActionCreateBooking    = "CREATE_BOOKING"
)

// Tag formats an action tag. An empty arg yields the bare type.
func Tag(typ, arg string) string {
	if arg == "" {
		return typ
	}
	return typ + ":" + arg
}

// ParseTag splits an action tag on its first colon.
func ParseTag(tag string) (typ, arg string) {
	tag = strings.TrimSpace(tag)
	typ, arg, _ = strings.Cut(tag, ":")
	return strings.ToUpper(strings.TrimSpace(typ)), strings.TrimSpace(arg)
}
