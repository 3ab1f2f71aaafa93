package ai

// FallbackResult is the structured answer for a message the rule chain could
// not place.
type FallbackResult struct {
	// Reply is the user facing text.
	Reply string `json:"reply"`

	// Category is one of the known service categories, or empty when the
	// message is not a service request.
	Category string `json:"category,omitempty"`
}

// Turn is one prior message given to the model as conversation history.
type Turn struct {
	Role string
	Text string
}
