// README: Bench cases; environment, HTTP API, concurrency, throughput and the intent corpus.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"yourhelpa/internal/dbtest"
	"yourhelpa/internal/modules/intent"
)

type Runner struct {
	cfg   Config
	httpc *http.Client
	db    *pgxpool.Pool
	redis *redis.Client
}

type Result struct {
	Name    string
	Status  string
	Latency time.Duration
	Note    string
}

type TestCase struct {
	Name  string
	Focus string
	Run   func(ctx context.Context, r *Runner) Result
}

func NewRunner(cfg Config) *Runner {
	return &Runner{
		cfg:   cfg,
		httpc: &http.Client{Timeout: 10 * time.Second},
	}
}

func (r *Runner) RunAll(ctx context.Context) []Result {
	tests := corpusCases()
	if !r.cfg.OfflineOnly {
		if r.cfg.DSN != "" {
			if db, err := pgxpool.New(ctx, r.cfg.DSN); err == nil {
				r.db = db
			}
		}
		if r.cfg.RedisAddr != "" {
			r.redis = redis.NewClient(&redis.Options{Addr: r.cfg.RedisAddr})
		}
		tests = append(r.cases(), tests...)
	}

	results := make([]Result, 0, len(tests))
	for _, tc := range tests {
		res := tc.Run(ctx, r)
		results = append(results, res)
		fmt.Printf("%-7s %s", res.Status, tc.Name)
		if res.Latency > 0 {
			fmt.Printf(" (%s)", res.Latency)
		}
		if res.Note != "" {
			fmt.Printf(" - %s", res.Note)
		}
		fmt.Println()
	}

	if r.db != nil {
		r.db.Close()
	}
	if r.redis != nil {
		_ = r.redis.Close()
	}
	return results
}

func (r *Runner) cases() []TestCase {
	base := r.cfg.BaseURL
	return []TestCase{
		{
			Name:  "Env: Postgres connect",
			Focus: "Supabase database reachable",
			Run: func(ctx context.Context, r *Runner) Result {
				if r.db == nil {
					return Result{Status: "FAIL", Note: "db not configured"}
				}
				ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
				defer cancel()
				if err := r.db.Ping(ctx); err != nil {
					return Result{Status: "FAIL", Note: err.Error()}
				}
				return Result{Status: "PASS"}
			},
		},
		{
			Name:  "Env: Redis connect",
			Focus: "session store reachable",
			Run: func(ctx context.Context, r *Runner) Result {
				if r.redis == nil {
					return Result{Status: "FAIL", Note: "redis not configured"}
				}
				ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
				defer cancel()
				if err := r.redis.Ping(ctx).Err(); err != nil {
					return Result{Status: "FAIL", Note: err.Error()}
				}
				return Result{Status: "PASS"}
			},
		},
		{
			Name:  "Migration: apply (optional)",
			Focus: "apply migration SQL",
			Run: func(ctx context.Context, r *Runner) Result {
				if !r.cfg.ApplyMigration {
					return Result{Status: "SKIP", Note: "apply-migration=false"}
				}
				if r.db == nil {
					return Result{Status: "FAIL", Note: "db not configured"}
				}
				if err := dbtest.ApplyMigrations(ctx, r.db); err != nil {
					return Result{Status: "FAIL", Note: err.Error()}
				}
				return Result{Status: "PASS"}
			},
		},
		{
			Name:  "Migration: tables exist",
			Focus: "tables from the migration file exist",
			Run: func(ctx context.Context, r *Runner) Result {
				if r.db == nil {
					return Result{Status: "FAIL", Note: "db not configured"}
				}
				tables, err := extractTables(r.cfg.MigrationPath)
				if err != nil {
					return Result{Status: "FAIL", Note: err.Error()}
				}
				for _, t := range tables {
					var exists bool
					err := r.db.QueryRow(ctx,
						"SELECT EXISTS (SELECT 1 FROM information_schema.tables WHERE table_name=$1)",
						t,
					).Scan(&exists)
					if err != nil {
						return Result{Status: "FAIL", Note: err.Error()}
					}
					if !exists {
						return Result{Status: "FAIL", Note: "missing table: " + t}
					}
				}
				return Result{Status: "PASS", Note: fmt.Sprintf("%d tables", len(tables))}
			},
		},
		httpCaseMethod("API: health", http.MethodGet, base+"/health", nil, []int{200}, nil),

		httpCase("Chat: greeting", base+"/api/chat", map[string]any{
			"session_id": "bench-greeting",
			"message":    "hello",
		}, []int{200}, []int{404}),
		httpCase("Chat: service request", base+"/api/chat", map[string]any{
			"session_id": "bench-plumber",
			"message":    "my kitchen pipe is leaking, I need a plumber",
		}, []int{200}, []int{404}),
		httpCase("Chat: missing fields -> 400", base+"/api/chat", map[string]any{}, []int{400}, []int{404}),
		httpCaseMethod("Chat: reset session", http.MethodDelete, base+"/api/chat/bench-plumber", nil, []int{204}, []int{404}),

		httpCaseMethod("Providers: list", http.MethodGet, base+"/api/providers", nil, []int{200}, []int{404}),
		httpCaseMethod("Providers: unknown id -> 404", http.MethodGet, base+"/api/providers/does-not-exist", nil, []int{404}, nil),
		httpCaseMethod("Recipes: search", http.MethodGet, base+"/api/recipes?q=jollof", nil, []int{200}, []int{404}),
		httpCase("Bookings: missing contact -> 400", base+"/api/bookings", map[string]any{"provider_id": "P-1"}, []int{400}, []int{404}),

		httpCase("Payments: unauthenticated -> 401", base+"/api/payments", map[string]any{
			"booking_id": "B1", "helpa_id": "H1", "amount": 5000,
		}, []int{401}, []int{404}),
		httpCase("Welcome mail: unauthenticated -> 401", base+"/api/send-welcome", map[string]any{
			"email": "bench@example.com",
		}, []int{401}, []int{404}),
		manualCase("Payments: Monnify sandbox checkout", "needs a signed-in customer and sandbox credentials"),

		{
			Name:  "Concurrency: one session, parallel turns",
			Focus: "turns on a session are serialized",
			Run: func(ctx context.Context, r *Runner) Result {
				return concurrentTurns(ctx, r, base)
			},
		},
		{
			Name:  "Perf: chat throughput",
			Focus: "chat endpoint rps",
			Run: func(ctx context.Context, r *Runner) Result {
				return perfLoad(ctx, r, base+"/api/chat", map[string]any{
					"session_id": "bench-perf",
					"message":    "I need cleaning",
				})
			},
		},
	}
}

// corpusCases replay known messages through the dispatcher without a server.
func corpusCases() []TestCase {
	corpus := []struct {
		in, want string
	}{
		{"hi", ""},
		{"good morning", ""},
		{"my sink needs plumbing", "SHOW_PROVIDERS:plumbing"},
		{"I need cleaning", "SHOW_PROVIDERS:cleaning"},
		{"my generator won't start", "SHOW_PROVIDERS:electrical"},
		{"dry clean my agbada", "SHOW_PROVIDERS:laundry"},
		{"a tutor for jamb", "SHOW_PROVIDERS:tutoring"},
		{"book a barber", "SHOW_PROVIDERS:beauty"},
		{"fix my wardrobe door", "SHOW_PROVIDERS:repairs"},
		{"moving to a new flat", "SHOW_PROVIDERS:moving"},
		{"I need food for my birthday party", "SHOW_PROVIDERS:catering"},
		{"I need someone to clean my kitchen sink", "SHOW_PROVIDERS:cleaning"},
		{"how to make money online", ""},
		{"I feel like eating something nice", ""},
		{"jollof rice recipe", intent.ActionSearchRecipe + ":*"},
		{"show all providers", intent.ActionShowAllProviders},
		{"help", intent.ActionHelp},
		{"how much do you charge?", ""},
		{"", ""},
		{"asdfgh", ""},
	}
	d := intent.NewDispatcher(intent.NewMatcher(intent.DefaultCategories, intent.DefaultMatcherConfig()))

	cases := make([]TestCase, 0, len(corpus))
	for _, c := range corpus {
		cases = append(cases, TestCase{
			Name:  fmt.Sprintf("Intent: %q", c.in),
			Focus: "dispatcher corpus",
			Run: func(context.Context, *Runner) Result {
				start := time.Now()
				reply := d.Dispatch(c.in, &intent.ConversationContext{}, nil)
				latency := time.Since(start)
				if reply.Text == "" {
					return Result{Status: "FAIL", Latency: latency, Note: "empty reply text"}
				}
				ok := reply.Action == c.want
				if prefix, wild := strings.CutSuffix(c.want, "*"); wild {
					ok = strings.HasPrefix(reply.Action, prefix)
				}
				if !ok {
					return Result{Status: "FAIL", Latency: latency, Note: fmt.Sprintf("action=%q want %q", reply.Action, c.want)}
				}
				return Result{Status: "PASS", Latency: latency, Note: "intent=" + reply.Intent}
			},
		})
	}
	return cases
}

func httpCase(name, url string, body any, okStatuses, pendingStatuses []int) TestCase {
	return httpCaseMethod(name, http.MethodPost, url, body, okStatuses, pendingStatuses)
}

func httpCaseMethod(name, method, url string, body any, okStatuses, pendingStatuses []int) TestCase {
	return TestCase{
		Name:  name,
		Focus: "HTTP API",
		Run: func(ctx context.Context, r *Runner) Result {
			var reader io.Reader
			if body != nil {
				b, _ := json.Marshal(body)
				reader = strings.NewReader(string(b))
			}
			req, _ := http.NewRequestWithContext(ctx, method, url, reader)
			req.Header.Set("Content-Type", "application/json")
			start := time.Now()
			resp, err := r.httpc.Do(req)
			if err != nil {
				return Result{Status: "FAIL", Note: err.Error()}
			}
			_, _ = io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			latency := time.Since(start)

			if contains(okStatuses, resp.StatusCode) {
				return Result{Status: "PASS", Latency: latency, Note: fmt.Sprintf("status=%d", resp.StatusCode)}
			}
			if contains(pendingStatuses, resp.StatusCode) {
				return Result{Status: "PENDING", Latency: latency, Note: fmt.Sprintf("status=%d", resp.StatusCode)}
			}
			return Result{Status: "FAIL", Latency: latency, Note: fmt.Sprintf("status=%d", resp.StatusCode)}
		},
	}
}

func manualCase(name, note string) TestCase {
	return TestCase{
		Name:  name,
		Focus: "Manual",
		Run: func(context.Context, *Runner) Result {
			return Result{Status: "SKIP", Note: note}
		},
	}
}

// concurrentTurns fires Concurrency messages at one session and expects the
// history to hold every user and assistant message afterwards.
func concurrentTurns(ctx context.Context, r *Runner, base string) Result {
	session := fmt.Sprintf("bench-conc-%d", time.Now().UnixNano())
	var wg sync.WaitGroup
	var mu sync.Mutex
	ok := 0

	for i := 0; i < r.cfg.Concurrency; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			b, _ := json.Marshal(map[string]any{"session_id": session, "message": fmt.Sprintf("thanks %d", i)})
			req, _ := http.NewRequestWithContext(ctx, http.MethodPost, base+"/api/chat", strings.NewReader(string(b)))
			req.Header.Set("Content-Type", "application/json")
			resp, err := r.httpc.Do(req)
			if err != nil {
				return
			}
			_, _ = io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				mu.Lock()
				ok++
				mu.Unlock()
			}
		}(i)
	}
	wg.Wait()
	if ok == 0 {
		return Result{Status: "PENDING", Note: "no turn succeeded"}
	}

	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, base+"/api/chat/"+session+"/history", nil)
	resp, err := r.httpc.Do(req)
	if err != nil {
		return Result{Status: "FAIL", Note: err.Error()}
	}
	defer resp.Body.Close()
	var out struct {
		Messages []json.RawMessage `json:"messages"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return Result{Status: "FAIL", Note: err.Error()}
	}
	want := 2 * ok
	if len(out.Messages) != want {
		return Result{Status: "FAIL", Note: fmt.Sprintf("history=%d want %d", len(out.Messages), want)}
	}
	return Result{Status: "PASS", Note: fmt.Sprintf("turns=%d", ok)}
}

func perfLoad(ctx context.Context, r *Runner, url string, payload any) Result {
	b, _ := json.Marshal(payload)
	end := time.Now().Add(r.cfg.Duration)
	var count, errCount int64
	var mu sync.Mutex
	var wg sync.WaitGroup

	for i := 0; i < r.cfg.Concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for time.Now().Before(end) && ctx.Err() == nil {
				req, _ := http.NewRequestWithContext(ctx, http.MethodPost, url, strings.NewReader(string(b)))
				req.Header.Set("Content-Type", "application/json")
				resp, err := r.httpc.Do(req)
				if err != nil {
					mu.Lock()
					errCount++
					mu.Unlock()
					continue
				}
				_, _ = io.Copy(io.Discard, resp.Body)
				resp.Body.Close()
				mu.Lock()
				count++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if count == 0 {
		return Result{Status: "FAIL", Note: "no requests completed"}
	}
	rps := float64(count) / r.cfg.Duration.Seconds()
	return Result{Status: "PASS", Note: fmt.Sprintf("rps=%.1f errors=%d", rps, errCount)}
}

func contains(list []int, v int) bool {
	for _, i := range list {
		if i == v {
			return true
		}
	}
	return false
}

func extractTables(path string) ([]string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	re := regexp.MustCompile(`(?i)create\s+table\s+if\s+not\s+exists\s+([a-zA-Z0-9_]+)`)
	matches := re.FindAllStringSubmatch(string(b), -1)
	tables := make([]string, 0, len(matches))
	for _, m := range matches {
		tables = append(tables, m[1])
	}
	return tables, nil
}
