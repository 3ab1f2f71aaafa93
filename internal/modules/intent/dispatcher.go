// README: Rule-based chat dispatcher; ordered predicates, first match wins.
package intent

import (
	"regexp"
	"strings"
)

// Rule is one branch of the dispatcher. Rules are evaluated in order and the
// first whose Match returns true produces the reply.
type Rule struct {
	Name    string
	Match   func(in *Input) bool
	Respond func(in *Input) Reply
}

// Input is a normalized user utterance plus the session context it belongs to.
// Respond funcs may mutate Ctx.
type Input struct {
	Raw string
	Ctx *ConversationContext
	text
}

var (
	greetingRe = regexp.MustCompile(`^(hi|hello|hey|hiya|good (morning|afternoon|evening))\b`)
	farewellRe = regexp.MustCompile(`\b(bye|goodbye|good night|see you|take care)\b`)
	thanksRe   = regexp.MustCompile(`\b(thanks|thank you|thank u|thx|appreciate it)\b`)
)

var recipeTriggers = []string{"recipe", "how to cook", "how do i cook", "ingredients for"}

// "how to make" on its own is too broad ("how to make money online"), so
// these phrases only count when a dish word is present as well.
var (
	howToMake = []string{"how to make", "how do i make", "how to prepare", "how do i prepare"}
	dishWords = []string{
		"rice", "jollof", "soup", "stew", "egusi", "efo", "moi", "akara", "puff",
		"suya", "beans", "yam", "plantain", "dodo", "chicken", "fish", "meat",
		"pepper", "bread", "cake", "chin", "pancake", "noodles", "spaghetti",
		"pasta", "amala", "eba", "fufu", "pounded", "okra", "ogbono", "banga",
		"asun", "chapman", "zobo", "snack", "sauce", "porridge", "salad", "pie",
	}
)

var recipeStopwords = map[string]bool{
	"recipe": true, "recipes": true, "how": true, "to": true, "do": true, "i": true,
	"cook": true, "make": true, "prepare": true, "ingredients": true, "for": true,
	"a": true, "an": true, "the": true, "me": true, "my": true, "give": true, "show": true,
	"send": true, "want": true, "need": true, "please": true, "pls": true, "of": true,
	"can": true, "you": true, "get": true, "some": true,
}

type Dispatcher struct {
	matcher    *Matcher
	categories []ServiceCategory
	rules      []Rule
}

// NewDispatcher builds the production rule chain around m. The service rules
// follow the order of m's category table.
func NewDispatcher(m *Matcher) *Dispatcher {
	d := &Dispatcher{matcher: m, categories: m.Categories()}
	d.rules = d.defaultRules()
	return d
}

// Dispatch maps one utterance to a reply, mutating ctx when a flow starts,
// advances or ends. history is accepted for display parity and not consulted.
func (d *Dispatcher) Dispatch(message string, ctx *ConversationContext, _ []Message) Reply {
	if ctx == nil {
		ctx = &ConversationContext{}
	}
	in := &Input{Raw: message, Ctx: ctx, text: newText(message)}
	for _, r := range d.rules {
		if r.Match(in) {
			reply := r.Respond(in)
			reply.Intent = r.Name
			return reply
		}
	}
	return Reply{Text: FallbackText, Intent: "fallback"}
}

// Categories returns the category table the service rules were built from.
func (d *Dispatcher) Categories() []ServiceCategory {
	return d.categories
}

// RuleNames lists the rule chain in evaluation order.
func (d *Dispatcher) RuleNames() []string {
	names := make([]string, 0, len(d.rules))
	for _, r := range d.rules {
		names = append(names, r.Name)
	}
	return names
}

func (d *Dispatcher) defaultRules() []Rule {
	rules := []Rule{
		{Name: "confirm_booking", Match: d.isConfirm, Respond: d.confirmBooking},
		{Name: "cancel_booking", Match: d.isCancel, Respond: d.cancelBooking},
		{Name: "registration_flow", Match: inFlow(FlowRegistration), Respond: d.continueRegistration},
		{Name: "greeting", Match: d.social(func(in *Input) bool { return greetingRe.MatchString(in.lower) }), Respond: fixed(WelcomeText, "")},
		{Name: "farewell", Match: d.social(func(in *Input) bool { return farewellRe.MatchString(in.lower) }), Respond: fixed(FarewellText, "")},
		{Name: "thanks", Match: d.social(func(in *Input) bool { return thanksRe.MatchString(in.lower) }), Respond: fixed(ThanksText, "")},
		{Name: "help", Match: isHelp, Respond: fixed(HelpText, ActionHelp)},
		{Name: "register", Match: isRegister, Respond: d.startRegistration},
		{Name: "recipe", Match: isRecipe, Respond: recipeReply},
	}
	for _, c := range d.categories {
		rules = append(rules, serviceRule(c))
	}
	rules = append(rules,
		Rule{Name: "pricing", Match: isPricing, Respond: fixed(PricingText, "")},
		Rule{Name: "all_providers", Match: isBrowse, Respond: fixed(AllProvidersText, ActionShowAllProviders)},
		Rule{Name: "keyword_match", Match: d.hasKeywordMatch, Respond: d.keywordReply},
		Rule{Name: "fallback", Match: func(*Input) bool { return true }, Respond: fixed(FallbackText, "")},
	)
	return rules
}

func fixed(text, action string) func(*Input) Reply {
	return func(*Input) Reply {
		return Reply{Text: text, Action: action}
	}
}

func inFlow(f Flow) func(*Input) bool {
	return func(in *Input) bool { return in.Ctx.CurrentFlow == f }
}

// social guards greeting-like rules so "hi, I need a plumber" reaches the
// service rules instead of the welcome template.
func (d *Dispatcher) social(pred func(*Input) bool) func(*Input) bool {
	return func(in *Input) bool {
		return pred(in) && !d.mentionsService(in)
	}
}

func (d *Dispatcher) mentionsService(in *Input) bool {
	if isRecipe(in) {
		return true
	}
	for _, c := range d.categories {
		if in.hasStem(c.Triggers...) {
			return true
		}
	}
	return false
}

func isAffirmative(in *Input) bool {
	return in.hasAnyWord("yes", "yeah", "yep", "yea", "ok", "okay", "sure") || in.contains("confirm")
}

func isNegative(in *Input) bool {
	return in.hasAnyWord("no", "nope", "nah") || in.contains("cancel")
}

func (d *Dispatcher) isConfirm(in *Input) bool {
	return in.Ctx.CurrentFlow == FlowAwaitingConfirmation && isAffirmative(in)
}

func (d *Dispatcher) isCancel(in *Input) bool {
	return in.Ctx.CurrentFlow == FlowAwaitingConfirmation && isNegative(in)
}

func (d *Dispatcher) confirmBooking(in *Input) Reply {
	p := in.Ctx.SelectedProvider
	reply := Reply{Text: bookingConfirmedText(p)}
	if p != nil && p.ID != "" {
		reply.Action = Tag(ActionCreateBooking, p.ID)
	}
	in.Ctx.Reset()
	return reply
}

func (d *Dispatcher) cancelBooking(in *Input) Reply {
	in.Ctx.Reset()
	return Reply{Text: BookingCancelledText}
}

func (d *Dispatcher) continueRegistration(in *Input) Reply {
	if in.contains("cancel") || in.hasAnyWord("stop", "quit") {
		in.Ctx.Reset()
		return Reply{Text: RegistrationCancelledText}
	}
	m := d.matcher.Match(in.lower)
	if m == nil {
		return Reply{Text: RegistrationRetryText}
	}
	return d.completeRegistration(in, m.Category)
}

func (d *Dispatcher) completeRegistration(in *Input, category string) Reply {
	c, _ := Lookup(d.categories, category)
	if c.Title == "" {
		c = ServiceCategory{Category: category, Title: category}
	}
	in.Ctx.Reset()
	return Reply{Text: registrationDoneText(c), Action: Tag(ActionRegisterProvider, category)}
}

func isRegister(in *Input) bool {
	return in.contains("register", "become a helpa", "become a provider", "become a vendor",
		"join as", "sign up as", "list my service", "offer my service", "work with yourhelpa")
}

// startRegistration completes immediately when the utterance already names
// the service, otherwise it opens the registration flow.
func (d *Dispatcher) startRegistration(in *Input) Reply {
	if m := d.matcher.Match(in.lower); m != nil {
		return d.completeRegistration(in, m.Category)
	}
	in.Ctx.StartRegistration()
	return Reply{Text: RegistrationStartText, Action: ActionRegisterProvider}
}

func isHelp(in *Input) bool {
	switch strings.Trim(in.lower, " ?!.") {
	case "help", "menu", "start", "options":
		return true
	}
	return in.contains("what can you do", "how does this work", "how do you work", "how does yourhelpa work")
}

func isRecipe(in *Input) bool {
	if in.contains(recipeTriggers...) {
		return true
	}
	return in.contains(howToMake...) && in.hasStem(dishWords...)
}

func recipeReply(in *Input) Reply {
	dish := extractDish(in.words)
	if dish == "" {
		return Reply{Text: RecipesText, Action: ActionShowRecipes}
	}
	return Reply{Text: recipeSearchText(dish), Action: Tag(ActionSearchRecipe, dish)}
}

func extractDish(words []string) string {
	var kept []string
	for _, w := range words {
		if !recipeStopwords[w] {
			kept = append(kept, w)
		}
	}
	return strings.Join(kept, " ")
}

func serviceRule(c ServiceCategory) Rule {
	return Rule{
		Name: c.Category,
		Match: func(in *Input) bool {
			return in.hasStem(c.Triggers...) && !in.hasStem(c.Excludes...)
		},
		Respond: func(*Input) Reply {
			return Reply{Text: serviceText(c), Action: Tag(ActionShowProviders, c.Category)}
		},
	}
}

// Short pricing words must stand alone: "fee" is not "feel" and "cost" is
// not "costume".
func isPricing(in *Input) bool {
	return in.hasAnyWord("price", "prices", "pricing", "priced", "cost", "costs", "costing",
		"fee", "fees", "charges") || in.contains("how much")
}

func isBrowse(in *Input) bool {
	return in.hasStem("provider", "helpas", "all services", "browse", "available services", "what services", "list of services")
}

func (d *Dispatcher) hasKeywordMatch(in *Input) bool {
	return d.matcher.Match(in.lower) != nil
}

func (d *Dispatcher) keywordReply(in *Input) Reply {
	m := d.matcher.Match(in.lower)
	c, _ := Lookup(d.categories, m.Category)
	return Reply{Text: matchedText(c, m), Action: Tag(ActionShowProviders, m.Category)}
}
