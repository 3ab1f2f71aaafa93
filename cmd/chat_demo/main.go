// README: Terminal chat against the real dispatcher and action processor, rendered as WhatsApp text.
package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"yourhelpa/internal/ai"
	"yourhelpa/internal/config"
	"yourhelpa/internal/infra"
	"yourhelpa/internal/logger"
	"yourhelpa/internal/modules/action"
	"yourhelpa/internal/modules/booking"
	"yourhelpa/internal/modules/chat"
	"yourhelpa/internal/modules/intent"
	"yourhelpa/internal/modules/provider"
	"yourhelpa/internal/modules/recipe"
	"yourhelpa/internal/whatsapp"
)

const usage = `Commands: /book <provider id>, /location <place>, /history, /reset, /quit`

// sampleStore serves a fixed directory when no Apps Script URL is configured.
type sampleStore struct{}

var samples = []provider.Provider{
	{ID: "P-1", Name: "Chidi Plumbing Works", Category: "plumbing", Rating: 4.7, Price: "5000", Location: "Yaba, Lagos", Available: true},
	{ID: "P-2", Name: "Sparkle Home Cleaners", Category: "cleaning", Rating: 4.5, Price: "8000", Location: "Lekki, Lagos", Available: true},
	{ID: "P-3", Name: "Mama Nkechi Kitchen", Category: "catering", Rating: 4.9, Price: "25000", Location: "Surulere, Lagos", Available: true},
	{ID: "P-4", Name: "BrightSpark Electricals", Category: "electrical", Rating: 4.2, Price: "7000", Location: "Wuse, Abuja", Available: true},
}

func (sampleStore) All(context.Context) ([]provider.Provider, error) {
	return samples, nil
}

func (sampleStore) Get(_ context.Context, id string) (*provider.Provider, error) {
	for _, p := range samples {
		if strings.EqualFold(p.ID.String(), id) {
			return &p, nil
		}
	}
	return nil, provider.ErrNotFound
}

func (sampleStore) Search(_ context.Context, category string) ([]provider.Provider, error) {
	var out []provider.Provider
	for _, p := range samples {
		if p.Category == category {
			out = append(out, p)
		}
	}
	return out, nil
}

func (sampleStore) Register(context.Context, provider.RegisterCommand) (string, error) {
	return fmt.Sprintf("demo-%d", time.Now().Unix()), nil
}

func (sampleStore) Create(context.Context, *booking.Booking) (string, error) {
	return fmt.Sprintf("BK-%d", time.Now().Unix()), nil
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	log := logger.New("warn", "console")
	ctx := context.Background()

	var (
		providerStore provider.Store = sampleStore{}
		bookingStore  booking.Store  = sampleStore{}
	)
	if cfg.Sheets.URL != "" {
		script := infra.NewAppScript(cfg.Sheets.URL, cfg.Sheets.Timeout, log)
		providerStore = provider.NewScriptStore(script)
		bookingStore = booking.NewScriptStore(script)
	}
	providerSvc := provider.NewService(providerStore)
	processor := action.NewProcessor(providerSvc, recipe.NewCatalog(nil), booking.NewService(bookingStore), log)
	dispatcher := intent.NewDispatcher(intent.NewMatcher(intent.DefaultCategories, intent.DefaultMatcherConfig()))

	rdb, closeRedis := openRedis(ctx, cfg.Redis.Addr)
	defer closeRedis()

	var opts []chat.Option
	if cfg.AI.GeminiKey != "" {
		gemini, err := ai.NewGeminiProvider(ctx, cfg.AI.GeminiKey)
		if err != nil {
			log.Fatal("gemini client", zap.Error(err))
		}
		defer gemini.Close()
		opts = append(opts, chat.WithResponder(gemini, nil))
	}
	svc := chat.NewService(chat.NewRedisStore(rdb, time.Hour, 50), dispatcher, processor, providerSvc, log, opts...)

	session := fmt.Sprintf("demo-%d", time.Now().UnixNano())
	fmt.Println("YourHelpa chat demo. " + usage)
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("\nYou: ")
		if !scanner.Scan() {
			return
		}
		line := strings.TrimSpace(scanner.Text())
		var (
			turn *chat.Turn
			err  error
		)
		switch cmd, arg, _ := strings.Cut(line, " "); cmd {
		case "/quit":
			return
		case "/reset":
			err = svc.Reset(ctx, session)
			fmt.Println("(session cleared)")
		case "/location":
			err = svc.SetLocation(ctx, session, arg)
			fmt.Println("(location set)")
		case "/history":
			msgs, herr := svc.History(ctx, session)
			for _, m := range msgs {
				fmt.Printf("  %s: %s\n", m.Role, m.Text)
			}
			err = herr
		case "/book":
			turn, err = svc.SelectProvider(ctx, session, arg)
		default:
			turn, err = svc.Handle(ctx, chat.Inbound{SessionID: session, Message: line, Channel: "cli"})
		}
		if err != nil {
			fmt.Printf("error: %v\n", err)
			continue
		}
		if turn != nil {
			fmt.Printf("Helpa [%s]:\n%s\n", turn.Reply.Intent, whatsapp.Render(turn))
		}
	}
}

// openRedis uses the configured Redis when it answers, otherwise an
// in-process miniredis so the demo runs with no services at all.
func openRedis(ctx context.Context, addr string) (*redis.Client, func()) {
	rdb := infra.NewRedis(addr)
	pingCtx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err == nil {
		return rdb, func() { _ = rdb.Close() }
	}
	_ = rdb.Close()

	mr, err := miniredis.Run()
	if err != nil {
		fmt.Fprintln(os.Stderr, "start in-process redis:", err)
		os.Exit(1)
	}
	rdb = redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return rdb, func() {
		_ = rdb.Close()
		mr.Close()
	}
}
