package whatsapp

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"yourhelpa/internal/modules/chat"
)

const maxRecipeSteps = 6

// Render turns a chat turn into WhatsApp text: the reply, then any apology,
// numbered provider cards and recipes.
func Render(turn *chat.Turn) string {
	var b strings.Builder
	b.WriteString(turn.Reply.Text)

	res := turn.Result
	if res == nil {
		return b.String()
	}
	if res.Message != "" && res.Message != turn.Reply.Text {
		b.WriteString("\n\n")
		b.WriteString(res.Message)
	}
	if len(res.Providers) > 0 {
		b.WriteString("\n")
		for i, p := range res.Providers {
			fmt.Fprintf(&b, "\n%d. *%s*", i+1, p.Name)
			var details []string
			if p.Category != "" {
				details = append(details, p.Category)
			}
			if p.Location != "" {
				details = append(details, "📍 "+p.Location)
			}
			if p.Rating > 0 {
				details = append(details, fmt.Sprintf("⭐ %.1f", p.Rating))
			}
			details = append(details, p.DisplayPrice())
			fmt.Fprintf(&b, "\n   %s", strings.Join(details, " · "))
			fmt.Fprintf(&b, "\n   Reply BOOK %s to book", p.ID)
		}
	}
	if len(res.Recipes) == 1 {
		r := res.Recipes[0]
		fmt.Fprintf(&b, "\n\n*%s*", r.Name)
		if r.PrepTime != "" {
			fmt.Fprintf(&b, " (%s)", r.PrepTime)
		}
		b.WriteString("\n_Ingredients:_ " + strings.Join(r.Ingredients, ", "))
		for i, step := range r.Steps {
			if i == maxRecipeSteps {
				break
			}
			fmt.Fprintf(&b, "\n%d. %s", i+1, step)
		}
	} else if len(res.Recipes) > 1 {
		b.WriteString("\n")
		for _, r := range res.Recipes {
			fmt.Fprintf(&b, "\n• %s", r.Name)
		}
		b.WriteString("\n\nAsk for any of them by name, e.g. \"" + res.Recipes[0].Name + " recipe\".")
	}
	if res.BookingID != "" {
		fmt.Fprintf(&b, "\n\nBooking reference: *%s*", res.BookingID)
	}
	return b.String()
}

// ParseBookCommand recognises "BOOK <provider id>" replies to a card list.
func ParseBookCommand(body string) (providerID string, ok bool) {
	fields := strings.Fields(body)
	if len(fields) != 2 || !strings.EqualFold(fields[0], "book") {
		return "", false
	}
	return fields[1], true
}

// Split breaks s into chunks of at most limit runes, preferring to cut at a
// blank line, then a newline, then a space.
func Split(s string, limit int) []string {
	if utf8.RuneCountInString(s) <= limit {
		return []string{s}
	}
	var parts []string
	for utf8.RuneCountInString(s) > limit {
		cut := byteOffset(s, limit)
		window := s[:cut]
		at := strings.LastIndex(window, "\n\n")
		if at <= 0 {
			at = strings.LastIndex(window, "\n")
		}
		if at <= 0 {
			at = strings.LastIndex(window, " ")
		}
		if at <= 0 {
			at = cut
		}
		parts = append(parts, strings.TrimRight(s[:at], " \n"))
		s = strings.TrimLeft(s[at:], " \n")
	}
	if s != "" {
		parts = append(parts, s)
	}
	return parts
}

func byteOffset(s string, runes int) int {
	i := 0
	for pos := range s {
		if i == runes {
			return pos
		}
		i++
	}
	return len(s)
}
