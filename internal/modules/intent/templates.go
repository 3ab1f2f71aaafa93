package intent

import (
	"fmt"
	"strings"
)

const WelcomeText = `👋 Hello! Welcome to YourHelpa, your trusted plug for everyday services in Nigeria.

I can help you:
• Find verified Helpas (plumbers, cleaners, electricians, caterers, tutors and more)
• Book a service and pay safely through escrow
• Get Nigerian recipes
• Register as a Helpa and start earning

What do you need today?`

const FarewellText = "👋 Bye for now! Whenever you need a hand, just message YourHelpa. Have a great day!"

const ThanksText = "🙏 You're welcome! Is there anything else I can help you with?"

const HelpText = `ℹ️ Here's what you can ask me:

• "I need a plumber" – find Helpas in a category
• "Show all providers" – browse every available Helpa
• "Jollof rice recipe" – get a recipe
• "How much does cleaning cost?" – pricing info
• "Register as a Helpa" – start offering your service

Pick a provider from the list and I'll help you book and pay securely.`

const PricingText = `💰 Prices are set by each Helpa and shown on their profile card.

Typical ranges:
• Cleaning: ₦5,000 – ₦25,000
• Plumbing: ₦3,000 – ₦20,000
• Electrical: ₦5,000 – ₦30,000
• Catering: from ₦15,000 per event
• Tutoring: ₦3,000 – ₦10,000 per lesson

Your payment is held in escrow and only released when you confirm the job is done.`

const AllProvidersText = "📋 Here are Helpas available right now. Tap one to see details and book:"

const RecipesText = "🍲 Here are some Nigerian recipes you can try at home:"

const RegistrationStartText = `🤝 Great, let's get you registered as a Helpa!

What service do you offer? For example: cleaning, plumbing, electrical, catering, tutoring, beauty, repairs, laundry or moving.`

const RegistrationRetryText = "🤔 I didn't catch the service you offer. Please name it, e.g. \"cleaning\" or \"plumbing\". Say \"cancel\" to stop."

const RegistrationCancelledText = "👍 No problem, registration cancelled. Message me any time you're ready."

const BookingCancelledText = "❌ Booking cancelled. No payment has been taken. Would you like to see other Helpas?"

const FallbackText = `🤔 I'm not sure I understood that. Try one of these:

• "I need a cleaner"
• "Find me an electrician in Lekki"
• "Show all providers"
• "Egusi soup recipe"
• "Register as a Helpa"
• "help"`

func serviceText(c ServiceCategory) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s Helpas coming right up! ", emojiFor(c.Category), c.Title)
	if len(c.Subcategories) > 0 {
		fmt.Fprintf(&b, "We cover %s. ", strings.Join(c.Subcategories, ", "))
	}
	b.WriteString("Here are trusted Helpas you can book:")
	return b.String()
}

func matchedText(c ServiceCategory, m *IntentMatch) string {
	return fmt.Sprintf("%s Sounds like you need %s (%.0f%% sure). Here are Helpas who can help:",
		emojiFor(c.Category), strings.ToLower(c.Title), m.Confidence*100)
}

func recipeSearchText(dish string) string {
	return fmt.Sprintf("🍲 Here's how to make %s:", dish)
}

func registrationDoneText(c ServiceCategory) string {
	return fmt.Sprintf(`✅ Awesome! You'll be listed under %s.

To finish, send your full name, phone number, location and price range, or fill the form on yourhelpa.com.ng/register. Our team verifies every Helpa within 24 hours.`, c.Title)
}

func bookingConfirmedText(p *ProviderRef) string {
	name := "your Helpa"
	if p != nil && p.Name != "" {
		name = p.Name
	}
	return fmt.Sprintf(`✅ Booking confirmed! %s has been notified and will reach out shortly.

You'll get a secure payment link next. Your money stays in escrow until you confirm the job is done.`, name)
}

// ConfirmPrompt asks the user to confirm a provider they picked from a list.
func ConfirmPrompt(p ProviderRef) string {
	var details []string
	if p.Category != "" {
		details = append(details, p.Category)
	}
	if p.Price != "" {
		details = append(details, p.Price)
	}
	suffix := ""
	if len(details) > 0 {
		suffix = " (" + strings.Join(details, ", ") + ")"
	}
	return fmt.Sprintf("You selected %s%s. Reply YES to confirm the booking or NO to cancel.", p.Name, suffix)
}

func emojiFor(category string) string {
	switch category {
	case "plumbing":
		return "🔧"
	case "electrical":
		return "⚡"
	case "laundry":
		return "👕"
	case "cleaning":
		return "🧹"
	case "catering":
		return "🍛"
	case "tutoring":
		return "📚"
	case "beauty":
		return "💇"
	case "repairs":
		return "🛠️"
	case "moving":
		return "🚚"
	default:
		return "✨"
	}
}
