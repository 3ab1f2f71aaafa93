package chat

import (
	"context"
	"hash/fnv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"yourhelpa/internal/ai"
	"yourhelpa/internal/logger"
	"yourhelpa/internal/metrics"
	"yourhelpa/internal/modules/action"
	"yourhelpa/internal/modules/intent"
	"yourhelpa/internal/modules/provider"
)

// Actions runs the action tag attached to a reply.
type Actions interface {
	Process(ctx context.Context, tag string, caller action.Caller) action.Result
}

// ProviderLookup resolves a provider picked from a card list.
type ProviderLookup interface {
	Get(ctx context.Context, id string) (*provider.Provider, error)
}

// Quota limits AI fallback replies per session.
type Quota interface {
	Consume(ctx context.Context, sessionID string) error
}

const lockStripes = 64

type Service struct {
	store      Store
	dispatcher *intent.Dispatcher
	actions    Actions
	providers  ProviderLookup
	responder  ai.Responder
	quota      Quota
	log        *zap.Logger
	now        func() time.Time

	// Turns for one session are serialized so a context read-modify-write is
	// never interleaved. Sessions hash onto a fixed set of stripes.
	locks [lockStripes]sync.Mutex
}

type Option func(*Service)

// WithResponder enables AI replies on the fallback branch. quota may be nil.
func WithResponder(r ai.Responder, quota Quota) Option {
	return func(s *Service) {
		s.responder = r
		s.quota = quota
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(store Store, dispatcher *intent.Dispatcher, actions Actions, providers ProviderLookup, log *zap.Logger, opts ...Option) *Service {
	s := &Service{
		store:      store,
		dispatcher: dispatcher,
		actions:    actions,
		providers:  providers,
		log:        logger.OrNop(log),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) lock(id string) func() {
	h := fnv.New32a()
	h.Write([]byte(id))
	mu := &s.locks[h.Sum32()%lockStripes]
	mu.Lock()
	return mu.Unlock
}

// Handle runs one user message through the dispatcher and, when the reply
// carries an action tag, the action processor. Only session store failures
// are returned as errors.
func (s *Service) Handle(ctx context.Context, in Inbound) (*Turn, error) {
	in.SessionID = strings.TrimSpace(in.SessionID)
	in.Message = strings.TrimSpace(in.Message)
	if in.SessionID == "" {
		return nil, ErrBadRequest
	}
	defer s.lock(in.SessionID)()

	sess, err := s.store.Load(ctx, in.SessionID)
	if err != nil {
		return nil, err
	}
	if in.Name != "" {
		sess.Name = in.Name
	}

	before := sess.Context.Clone()
	reply := s.dispatcher.Dispatch(in.Message, &sess.Context, nil)
	if reply.Intent == "fallback" && in.Message != "" && s.responder != nil {
		reply = s.enrich(ctx, in, reply)
	}
	metrics.IntentsTotal.WithLabelValues(reply.Intent).Inc()

	turn := &Turn{SessionID: in.SessionID, Reply: reply}
	if reply.HasAction() {
		res := s.actions.Process(ctx, reply.Action, action.Caller{
			SessionID: in.SessionID,
			Phone:     in.Phone,
			Email:     in.Email,
			Name:      sess.Name,
			Location:  sess.Location,
			Channel:   in.Channel,
		})
		turn.Result = &res
		// A booking that was not recorded leaves the confirmation open so
		// the next "yes" retries it.
		if res.BookingFailed() {
			sess.Context = before
			reply.Text = res.Message
			turn.Reply = reply
		}
	}

	if err := s.store.Save(ctx, in.SessionID, sess); err != nil {
		return nil, err
	}
	now := s.now()
	if err := s.store.Append(ctx, in.SessionID,
		intent.Message{Role: intent.RoleUser, Text: in.Message, At: now},
		intent.Message{Role: intent.RoleAssistant, Text: reply.Text, At: now},
	); err != nil {
		return nil, err
	}
	turn.Context = sess.Context
	s.log.Debug("chat turn",
		zap.String("session_id", in.SessionID),
		zap.String("intent", reply.Intent),
		zap.String("action", reply.Action))
	return turn, nil
}

// enrich replaces the fixed fallback text with an AI reply. Any failure keeps
// the fixed text.
func (s *Service) enrich(ctx context.Context, in Inbound, reply intent.Reply) intent.Reply {
	if s.quota != nil {
		if err := s.quota.Consume(ctx, in.SessionID); err != nil {
			s.log.Info("ai fallback skipped", zap.String("session_id", in.SessionID), zap.Error(err))
			return reply
		}
	}
	history, err := s.store.History(ctx, in.SessionID)
	if err != nil {
		s.log.Warn("load history for ai fallback", zap.Error(err))
		history = nil
	}
	turns := make([]ai.Turn, 0, len(history))
	for _, m := range history {
		turns = append(turns, ai.Turn{Role: string(m.Role), Text: m.Text})
	}
	cats := s.dispatcher.Categories()
	names := make([]string, 0, len(cats))
	for _, c := range cats {
		names = append(names, c.Category)
	}

	start := time.Now()
	res, err := s.responder.Respond(ctx, in.Message, turns, names)
	metrics.ExternalCallDuration.WithLabelValues("gemini", metrics.Outcome(err)).Observe(time.Since(start).Seconds())
	if err != nil {
		s.log.Warn("ai fallback failed", zap.String("session_id", in.SessionID), zap.Error(err))
		return reply
	}
	out := intent.Reply{Text: res.Reply, Intent: "ai_fallback"}
	if res.Category != "" {
		out.Action = intent.Tag(intent.ActionShowProviders, res.Category)
	}
	return out
}

// SelectProvider records the provider the user picked and asks for booking
// confirmation.
func (s *Service) SelectProvider(ctx context.Context, sessionID, providerID string) (*Turn, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" || strings.TrimSpace(providerID) == "" {
		return nil, ErrBadRequest
	}
	p, err := s.providers.Get(ctx, providerID)
	if err != nil {
		return nil, err
	}
	defer s.lock(sessionID)()

	sess, err := s.store.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	ref := intent.ProviderRef{ID: p.ID.String(), Name: p.Name, Category: p.Category, Price: p.DisplayPrice()}
	sess.Context.AwaitConfirmation(ref)
	if err := s.store.Save(ctx, sessionID, sess); err != nil {
		return nil, err
	}

	reply := intent.Reply{Text: intent.ConfirmPrompt(ref), Intent: "select_provider"}
	if err := s.store.Append(ctx, sessionID, intent.Message{Role: intent.RoleAssistant, Text: reply.Text, At: s.now()}); err != nil {
		return nil, err
	}
	metrics.IntentsTotal.WithLabelValues(reply.Intent).Inc()
	return &Turn{SessionID: sessionID, Reply: reply, Context: sess.Context}, nil
}

// SetLocation stores where the user is so provider lists can be ranked by
// distance.
func (s *Service) SetLocation(ctx context.Context, sessionID, location string) error {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return ErrBadRequest
	}
	defer s.lock(sessionID)()

	sess, err := s.store.Load(ctx, sessionID)
	if err != nil {
		return err
	}
	sess.Location = strings.TrimSpace(location)
	return s.store.Save(ctx, sessionID, sess)
}

func (s *Service) History(ctx context.Context, sessionID string) ([]intent.Message, error) {
	if strings.TrimSpace(sessionID) == "" {
		return nil, ErrBadRequest
	}
	return s.store.History(ctx, sessionID)
}

// Reset drops the session and its history.
func (s *Service) Reset(ctx context.Context, sessionID string) error {
	if strings.TrimSpace(sessionID) == "" {
		return ErrBadRequest
	}
	defer s.lock(sessionID)()
	return s.store.Delete(ctx, sessionID)
}
