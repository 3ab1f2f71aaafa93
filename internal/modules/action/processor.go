// README: Action processor; turns dispatcher tags into provider, recipe and booking calls.
package action

import (
	"context"
	"sort"

	"go.uber.org/zap"

	"yourhelpa/internal/logger"
	"yourhelpa/internal/metrics"
	"yourhelpa/internal/modules/booking"
	"yourhelpa/internal/modules/intent"
	"yourhelpa/internal/modules/provider"
	"yourhelpa/internal/modules/recipe"
)

type Providers interface {
	Search(ctx context.Context, category string) ([]provider.Provider, error)
	All(ctx context.Context) ([]provider.Provider, error)
}

type Recipes interface {
	All() []recipe.Recipe
	Search(query string) []recipe.Recipe
}

type Bookings interface {
	Create(ctx context.Context, cmd booking.CreateCommand) (*booking.Booking, error)
}

// Distances reports driving distance in metres from origin to each
// destination, -1 when unknown.
type Distances interface {
	Distances(ctx context.Context, origin string, destinations []string) ([]int, error)
}

type Processor struct {
	providers Providers
	recipes   Recipes
	bookings  Bookings
	distances Distances
	log       *zap.Logger
}

type Option func(*Processor)

// WithDistances orders provider lists by distance from the caller's location.
func WithDistances(d Distances) Option {
	return func(p *Processor) { p.distances = d }
}

func NewProcessor(providers Providers, recipes Recipes, bookings Bookings, log *zap.Logger, opts ...Option) *Processor {
	p := &Processor{
		providers: providers,
		recipes:   recipes,
		bookings:  bookings,
		log:       logger.OrNop(log),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Process runs one action tag. It never returns an error: external failures
// become an apology message with empty results.
func (p *Processor) Process(ctx context.Context, tag string, caller Caller) Result {
	typ, arg := intent.ParseTag(tag)
	var res Result
	switch typ {
	case intent.ActionShowProviders:
		res = p.showProviders(ctx, arg, caller)
	case intent.ActionShowAllProviders:
		res = p.showAll(ctx, caller)
	case intent.ActionShowRecipes:
		res = Result{Recipes: p.recipes.All()}
	case intent.ActionSearchRecipe:
		res = Result{Recipes: p.recipes.Search(arg)}
	case intent.ActionRegisterProvider:
		res = Result{Category: arg, Message: MessageRegister}
	case intent.ActionHelp:
		res = Result{Message: intent.HelpText}
	case intent.ActionCreateBooking:
		res = p.createBooking(ctx, arg, caller)
	default:
		res = Result{Message: MessageUnknownAction}
	}
	res.Type = typ
	res.Arg = arg

	outcome := "ok"
	if res.Message == MessageProviderFailure || res.Message == MessageBookingFailure {
		outcome = "error"
	} else if res.Fallback {
		outcome = "fallback"
	}
	metrics.ActionsTotal.WithLabelValues(typ, outcome).Inc()
	return res
}

func (p *Processor) showProviders(ctx context.Context, category string, caller Caller) Result {
	found, err := p.providers.Search(ctx, category)
	if err != nil {
		p.log.Warn("provider search failed", zap.String("category", category), zap.Error(err))
		return Result{Category: category, Providers: []provider.Provider{}, Message: MessageProviderFailure}
	}
	if len(found) > 0 {
		return Result{Category: category, Providers: p.rank(ctx, found, caller)}
	}

	all, err := p.providers.All(ctx)
	if err != nil {
		p.log.Warn("provider fallback failed", zap.String("category", category), zap.Error(err))
		return Result{Category: category, Providers: []provider.Provider{}, Message: MessageProviderFailure}
	}
	return Result{
		Category:  category,
		Providers: firstN(p.rank(ctx, all, caller), MaxProviderCards),
		Message:   MessageNoneInCategory,
		Fallback:  true,
	}
}

func (p *Processor) showAll(ctx context.Context, caller Caller) Result {
	all, err := p.providers.All(ctx)
	if err != nil {
		p.log.Warn("provider list failed", zap.Error(err))
		return Result{Providers: []provider.Provider{}, Message: MessageProviderFailure}
	}
	return Result{Providers: firstN(p.rank(ctx, all, caller), MaxProviderCards)}
}

func (p *Processor) createBooking(ctx context.Context, providerID string, caller Caller) Result {
	if p.bookings == nil {
		return Result{Message: MessageBookingFailure}
	}
	phone := caller.Phone
	if phone == "" && caller.Email == "" {
		phone = caller.SessionID
	}
	b, err := p.bookings.Create(ctx, booking.CreateCommand{
		ProviderID:    providerID,
		CustomerName:  caller.Name,
		CustomerPhone: phone,
		CustomerEmail: caller.Email,
		Channel:       caller.Channel,
	})
	if err != nil {
		p.log.Warn("create booking failed", zap.String("provider_id", providerID), zap.Error(err))
		return Result{Message: MessageBookingFailure}
	}
	return Result{BookingID: b.ID}
}

// rank orders providers nearest first when the caller has a location.
// Ranking failures keep the original order.
func (p *Processor) rank(ctx context.Context, in []provider.Provider, caller Caller) []provider.Provider {
	if p.distances == nil || caller.Location == "" || len(in) < 2 {
		return in
	}
	dests := make([]string, len(in))
	for i, pr := range in {
		dests[i] = pr.Location
	}
	dist, err := p.distances.Distances(ctx, caller.Location, dests)
	if err != nil || len(dist) != len(in) {
		p.log.Debug("distance ranking skipped", zap.Error(err))
		return in
	}

	idx := make([]int, len(in))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		da, db := dist[idx[a]], dist[idx[b]]
		if da < 0 {
			return false
		}
		if db < 0 {
			return true
		}
		return da < db
	})
	out := make([]provider.Provider, len(in))
	for i, j := range idx {
		out[i] = in[j]
	}
	return out
}

func firstN(ps []provider.Provider, n int) []provider.Provider {
	if len(ps) > n {
		return ps[:n]
	}
	return ps
}
