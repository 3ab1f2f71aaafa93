// README: Result of processing one action tag.
package action

import (
	"yourhelpa/internal/modules/provider"
	"yourhelpa/internal/modules/recipe"
)

// MaxProviderCards caps how many providers a chat reply shows.
const MaxProviderCards = 6

const (
	MessageProviderFailure = "😔 Sorry, I couldn't load Helpas right now. Please try again in a moment."
	MessageNoneInCategory  = "I couldn't find Helpas in that category yet, but here are other available Helpas:"
	MessageBookingFailure  = "😔 Sorry, I couldn't record your booking right now. Please try again shortly or pick another Helpa."
	MessageUnknownAction   = "Sorry, I can't do that yet."
	MessageRegister        = "To register, share your full name, phone number, service, location and price range, or use the form at yourhelpa.com.ng/register."
)

type Result struct {
	Type      string              `json:"type"`
	Arg       string              `json:"arg,omitempty"`
	Providers []provider.Provider `json:"providers"`
	Recipes   []recipe.Recipe     `json:"recipes,omitempty"`
	BookingID string              `json:"booking_id,omitempty"`
	Category  string              `json:"category,omitempty"`
	Message   string              `json:"message,omitempty"`
	// Fallback is set when providers come from the "show everyone" path.
	Fallback bool `json:"fallback,omitempty"`
}

// BookingFailed reports whether a CREATE_BOOKING could not be recorded.
func (r Result) BookingFailed() bool {
	return r.Message == MessageBookingFailure
}

// Caller carries what the processor needs to know about the session.
type Caller struct {
	SessionID string
	Phone     string
	Email     string
	Name      string
	Location  string
	Channel   string
}
