// README: Benchmark test cases for catalog, quoting, booking, payment, storage and performance checks.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"os"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

type Runner struct {
	cfg   Config
	httpc *http.Client
	db    *pgxpool.Pool
	redis *redis.Client

	// bookingID is carried between the booking flow cases.
	bookingID string
	// created counts bookings made under this runner's session.
	created int
}

type Result struct {
	Name    string
	Group   string
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
	jar, _ := cookiejar.New(nil)
	return &Runner{
		cfg:   cfg,
		httpc: &http.Client{Timeout: 10 * time.Second, Jar: jar},
	}
}

func (r *Runner) RunAll(ctx context.Context) []Result {
	if r.cfg.DSN != "" {
		if db, err := pgxpool.New(ctx, r.cfg.DSN); err == nil {
			r.db = db
		}
	}
	if r.cfg.RedisAddr != "" {
		r.redis = redis.NewClient(&redis.Options{Addr: r.cfg.RedisAddr})
	}

	tests := r.cases()
	results := make([]Result, 0, len(tests))

	for _, tc := range tests {
		group := caseGroup(tc.Name)
		if !r.cfg.wants(group) {
			continue
		}
		res := tc.Run(ctx, r)
		res.Name, res.Group = tc.Name, group
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

// caseGroup is the lowercased name prefix, e.g. "Quote: ..." -> "quote".
func caseGroup(name string) string {
	prefix, _, _ := strings.Cut(name, ":")
	return strings.ToLower(strings.TrimSpace(prefix))
}

// SessionID is the rental_sid cookie the API issued to this runner.
func (r *Runner) SessionID() string {
	u, err := url.Parse(r.cfg.BaseURL)
	if err != nil || r.httpc.Jar == nil {
		return ""
	}
	for _, c := range r.httpc.Jar.Cookies(u) {
		if c.Name == "rental_sid" {
			return c.Value
		}
	}
	return ""
}

// rentalWindow starts a month out so confirmed bookings are not settled to
// completed while the bench runs.
func rentalWindow(days int) map[string]string {
	pickup := time.Now().AddDate(0, 1, 0)
	ret := pickup.AddDate(0, 0, days)
	return map[string]string{
		"pickupDate": pickup.Format("2006-01-02"), "pickupTime": "10:00",
		"returnDate": ret.Format("2006-01-02"), "returnTime": "10:00",
	}
}

func (r *Runner) bookingBody(days int) map[string]any {
	return map[string]any{
		"carId":  r.cfg.VehicleID,
		"name":   "Bench Runner",
		"phone":  "0812345678",
		"window": rentalWindow(days),
		"addons": []string{"returnOtherBranch"},
	}
}

var confirmBody = map[string]any{
	"method": "promptpay",
	"name":   "Bench Runner",
	"email":  "bench@example.com",
	"phone":  "0812345678",
}

func (r *Runner) cases() []TestCase {
	base := r.cfg.BaseURL
	car := r.cfg.VehicleID
	return []TestCase{
		{
			Name:  "Env: Postgres connect",
			Focus: "catalog database reachable",
			Run: func(ctx context.Context, r *Runner) Result {
				if r.db == nil {
					return Result{Status: "SKIP", Note: "db not configured"}
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
			Focus: "booking store reachable",
			Run: func(ctx context.Context, r *Runner) Result {
				if r.redis == nil {
					return Result{Status: "SKIP", Note: "redis not configured"}
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
				sql, err := os.ReadFile(r.cfg.MigrationPath)
				if err != nil {
					return Result{Status: "FAIL", Note: err.Error()}
				}
				for _, s := range splitSQL(string(sql)) {
					if _, err := r.db.Exec(ctx, s); err != nil {
						return Result{Status: "FAIL", Note: err.Error()}
					}
				}
				return Result{Status: "PASS"}
			},
		},
		{
			Name:  "Migration: tables exist",
			Focus: "tables from migrations/0001_catalog.sql exist",
			Run: func(ctx context.Context, r *Runner) Result {
				if r.db == nil {
					return Result{Status: "SKIP", Note: "db not configured"}
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
				return Result{Status: "PASS"}
			},
		},
		httpCaseMethod("API: health", http.MethodGet, base+"/health", nil, []int{200}, nil),

		// Catalog
		httpCaseMethod("Catalog: list vehicles", http.MethodGet, base+"/api/vehicles?sort=grade_desc", nil, []int{200}, []int{404}),
		httpCaseMethod("Catalog: unknown sort -> 400", http.MethodGet, base+"/api/vehicles?sort=cheapest", nil, []int{400}, []int{404}),
		httpCaseMethod("Catalog: vehicle detail", http.MethodGet, base+"/api/vehicles/"+url.PathEscape(car), nil, []int{200}, nil),
		httpCaseMethod("Catalog: unknown vehicle -> 404", http.MethodGet, base+"/api/vehicles/c99", nil, []int{404}, nil),
		httpCaseMethod("Catalog: add-ons", http.MethodGet, base+"/api/addons", nil, []int{200}, []int{404}),
		httpCaseMethod("Catalog: locations", http.MethodGet, base+"/api/locations", nil, []int{200}, []int{404}),

		// Quote
		checkedCase("Quote: 3 days + return elsewhere", http.MethodPost, base+"/api/quotes", r.bookingBody(3),
			func(body map[string]any) error {
				return r.expectQuote(body, 3, 4176)
			}),
		checkedCase("Quote: 14 days, chat link when recommended", http.MethodPost, base+"/api/quotes", map[string]any{
			"carId": car, "window": rentalWindow(14),
		}, func(body map[string]any) error {
			if err := r.expectQuote(body, 14, 15351); err != nil {
				return err
			}
			q, _ := body["quote"].(map[string]any)
			recommend, _ := q["recommendAlternateChannel"].(bool)
			if s, _ := body["chatUrl"].(string); recommend && s == "" {
				return errors.New("missing chatUrl")
			}
			return nil
		}),
		checkedCase("Quote: incomplete window", http.MethodPost, base+"/api/quotes", map[string]any{"carId": car},
			func(body map[string]any) error {
				return expectField(body, "status", "incomplete")
			}),
		checkedCase("Quote: unknown vehicle", http.MethodPost, base+"/api/quotes", map[string]any{
			"carId": "zz", "window": rentalWindow(3),
		}, func(body map[string]any) error {
			return expectField(body, "reason", "unknown_vehicle")
		}),

		// Booking flow
		{
			Name:  "Booking: create",
			Focus: "pending booking + payment handoff",
			Run: func(ctx context.Context, r *Runner) Result {
				id, res := r.createBooking(ctx, base)
				r.bookingID = id
				return res
			},
		},
		bookingCase("Booking: get", http.MethodGet, base, "", nil, []int{200}),
		httpCaseMethod("Booking: list session", http.MethodGet, base+"/api/bookings?status=pending", nil, []int{200}, []int{404}),
		bookingCase("Booking: confirm", http.MethodPost, base, "/confirm", confirmBody, []int{200}),
		bookingCase("Booking: confirm twice -> 409", http.MethodPost, base, "/confirm", confirmBody, []int{409}),
		bookingCase("Booking: cancel confirmed", http.MethodPost, base, "/cancel", map[string]any{"reason": "bench"}, []int{200}),
		bookingCase("Booking: confirm cancelled -> 409", http.MethodPost, base, "/confirm", confirmBody, []int{409}),
		httpCase("Booking: reversed window -> 422", base+"/api/bookings", map[string]any{
			"carId": car, "name": "Bench Runner", "phone": "0812345678",
			"window": map[string]string{
				"pickupDate": "2030-03-04", "pickupTime": "10:00",
				"returnDate": "2030-03-01", "returnTime": "10:00",
			},
		}, []int{422}, []int{404}),
		httpCase("Booking: short name -> 400", base+"/api/bookings", map[string]any{
			"carId": car, "name": "A", "phone": "0812345678", "window": rentalWindow(3),
		}, []int{400}, []int{404}),

		// Payment
		httpCaseMethod("Payment: summary", http.MethodGet,
			base+"/api/payment?"+url.Values{
				"carId": {car}, "days": {"3"}, "amount": {"4176"}, "addons": {`["returnOtherBranch"]`},
			}.Encode(), nil, []int{200}, []int{404}),
		httpCaseMethod("Payment: oversized days clamped", http.MethodGet,
			base+"/api/payment?carId="+url.QueryEscape(car)+"&days=9000000000000000000", nil, []int{200}, []int{404}),
		httpCaseMethod("Payment: unknown car -> 404", http.MethodGet, base+"/api/payment?carId=c99", nil, []int{404}, nil),
		httpCaseMethod("Payment: missing car -> 400", http.MethodGet, base+"/api/payment", nil, []int{400}, []int{404}),

		// Storage
		{
			Name:  "Redis: booking persisted",
			Focus: "booking:<id> key carries a TTL",
			Run: func(ctx context.Context, r *Runner) Result {
				if r.redis == nil {
					return Result{Status: "SKIP", Note: "redis not configured"}
				}
				if r.bookingID == "" {
					return Result{Status: "SKIP", Note: "no booking created"}
				}
				ttl, err := r.redis.TTL(ctx, "booking:"+r.bookingID).Result()
				if err != nil {
					return Result{Status: "FAIL", Note: err.Error()}
				}
				if ttl <= 0 {
					return Result{Status: "FAIL", Note: fmt.Sprintf("ttl=%s", ttl)}
				}
				return Result{Status: "PASS", Note: fmt.Sprintf("ttl=%s", ttl)}
			},
		},
		{
			Name:  "Postgres: catalog seeded",
			Focus: "vehicles table holds the catalog",
			Run: func(ctx context.Context, r *Runner) Result {
				if r.db == nil {
					return Result{Status: "SKIP", Note: "db not configured"}
				}
				var n int
				if err := r.db.QueryRow(ctx, "SELECT COUNT(*) FROM vehicles").Scan(&n); err != nil {
					return Result{Status: "FAIL", Note: err.Error()}
				}
				if n == 0 {
					return Result{Status: "FAIL", Note: "no vehicles"}
				}
				return Result{Status: "PASS", Note: fmt.Sprintf("vehicles=%d", n)}
			},
		},

		// Concurrency
		{
			Name:  "Concurrency: confirm same booking",
			Focus: "only one confirmation wins",
			Run: func(ctx context.Context, r *Runner) Result {
				id, res := r.createBooking(ctx, base)
				if id == "" {
					return res
				}
				return concurrentConfirm(ctx, r, base+"/api/bookings/"+id+"/confirm")
			},
		},
		manualCase("Limits: rate limit -> 429", "lower limits.requests_per_minute and replay a burst"),
		manualCase("Sessions: expiry sweep", "set booking.session_ttl short and watch the sweeper log"),

		// Performance
		{
			Name:  "Perf: quote throughput",
			Focus: "quote engine under load",
			Run: func(ctx context.Context, r *Runner) Result {
				return perfLoad(ctx, r, base+"/api/quotes", r.bookingBody(7))
			},
		},
	}
}

func (r *Runner) createBooking(ctx context.Context, base string) (string, Result) {
	start := time.Now()
	status, body, err := r.doJSON(ctx, http.MethodPost, base+"/api/bookings", r.bookingBody(3))
	latency := time.Since(start)
	if err != nil {
		return "", Result{Status: "FAIL", Note: err.Error()}
	}
	if status == http.StatusNotFound {
		return "", Result{Status: "PENDING", Latency: latency, Note: "status=404"}
	}
	if status != http.StatusCreated {
		return "", Result{Status: "FAIL", Latency: latency, Note: fmt.Sprintf("status=%d", status)}
	}
	b, _ := body["booking"].(map[string]any)
	id, _ := b["id"].(string)
	if id == "" {
		return "", Result{Status: "FAIL", Latency: latency, Note: "missing booking id"}
	}
	r.created++
	return id, Result{Status: "PASS", Latency: latency, Note: id}
}

func (r *Runner) doJSON(ctx context.Context, method, url string, payload any) (int, map[string]any, error) {
	var reader io.Reader
	if payload != nil {
		b, _ := json.Marshal(payload)
		reader = strings.NewReader(string(b))
	}
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := r.httpc.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()
	var body map[string]any
	_ = json.NewDecoder(resp.Body).Decode(&body)
	return resp.StatusCode, body, nil
}

// expectQuote checks any vehicle's quote for internal consistency and, for
// the fixture car c1, the reference grand total.
func (r *Runner) expectQuote(body map[string]any, days int, c1Total float64) error {
	if err := expectField(body, "status", "ok"); err != nil {
		return err
	}
	q, _ := body["quote"].(map[string]any)
	num := func(k string) float64 {
		f, _ := q[k].(float64)
		return f
	}
	if num("days") != float64(days) {
		return fmt.Errorf("days=%v want %d", q["days"], days)
	}
	if num("vehicleNet")+num("addonsTotal") != num("grandTotal") {
		return fmt.Errorf("grandTotal=%v != vehicleNet %v + addonsTotal %v", q["grandTotal"], q["vehicleNet"], q["addonsTotal"])
	}
	if num("subTotal")-num("discountAmount") != num("vehicleNet") {
		return fmt.Errorf("vehicleNet=%v != subTotal %v - discount %v", q["vehicleNet"], q["subTotal"], q["discountAmount"])
	}
	if r.cfg.VehicleID == "c1" && num("grandTotal") != c1Total {
		return fmt.Errorf("grandTotal=%v want %v", q["grandTotal"], c1Total)
	}
	return nil
}

func expectField(body map[string]any, key, want string) error {
	if got, _ := body[key].(string); got != want {
		return fmt.Errorf("%s=%v want %s", key, body[key], want)
	}
	return nil
}

func checkedCase(name, method, url string, body any, check func(map[string]any) error) TestCase {
	return TestCase{
		Name:  name,
		Focus: "HTTP API",
		Run: func(ctx context.Context, r *Runner) Result {
			start := time.Now()
			status, resp, err := r.doJSON(ctx, method, url, body)
			latency := time.Since(start)
			if err != nil {
				return Result{Status: "FAIL", Note: err.Error()}
			}
			if status == http.StatusNotFound {
				return Result{Status: "PENDING", Latency: latency, Note: "status=404"}
			}
			if status != http.StatusOK {
				return Result{Status: "FAIL", Latency: latency, Note: fmt.Sprintf("status=%d", status)}
			}
			if err := check(resp); err != nil {
				return Result{Status: "FAIL", Latency: latency, Note: err.Error()}
			}
			return Result{Status: "PASS", Latency: latency}
		},
	}
}

// bookingCase targets the booking created by "Booking: create".
func bookingCase(name, method, base, suffix string, body any, okStatuses []int) TestCase {
	return TestCase{
		Name:  name,
		Focus: "HTTP API",
		Run: func(ctx context.Context, r *Runner) Result {
			if r.bookingID == "" {
				return Result{Status: "SKIP", Note: "no booking created"}
			}
			tc := httpCaseMethod(name, method, base+"/api/bookings/"+r.bookingID+suffix, body, okStatuses, nil)
			return tc.Run(ctx, r)
		},
	}
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
		Run: func(ctx context.Context, r *Runner) Result {
			return Result{Status: "SKIP", Note: note}
		},
	}
}

func concurrentConfirm(ctx context.Context, r *Runner, url string) Result {
	b, _ := json.Marshal(confirmBody)
	wg := sync.WaitGroup{}
	succ, conflict := 0, 0
	mu := sync.Mutex{}

	for i := 0; i < r.cfg.Concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			req, _ := http.NewRequestWithContext(ctx, http.MethodPost, url, strings.NewReader(string(b)))
			req.Header.Set("Content-Type", "application/json")
			resp, err := r.httpc.Do(req)
			if err != nil {
				return
			}
			_, _ = io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			mu.Lock()
			switch {
			case resp.StatusCode >= 200 && resp.StatusCode < 300:
				succ++
			case resp.StatusCode == http.StatusConflict:
				conflict++
			}
			mu.Unlock()
		}()
	}
	wg.Wait()

	if succ == 1 {
		return Result{Status: "PASS", Note: fmt.Sprintf("success=%d conflict=%d", succ, conflict)}
	}
	return Result{Status: "FAIL", Note: fmt.Sprintf("success=%d conflict=%d", succ, conflict)}
}

func perfLoad(ctx context.Context, r *Runner, url string, payload any) Result {
	b, _ := json.Marshal(payload)
	end := time.Now().Add(r.cfg.Duration)
	var count int64
	var errCount int64
	var mu sync.Mutex
	wg := sync.WaitGroup{}

	for i := 0; i < r.cfg.Concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for time.Now().Before(end) {
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
				if resp.StatusCode == http.StatusTooManyRequests {
					errCount++
				}
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

func splitSQL(sql string) []string {
	lines := strings.Split(sql, "\n")
	filtered := make([]string, 0, len(lines))
	for _, line := range lines {
		l := strings.TrimSpace(line)
		if strings.HasPrefix(l, "--") || l == "" {
			continue
		}
		filtered = append(filtered, line)
	}
	cleaned := strings.Join(filtered, "\n")
	parts := strings.Split(cleaned, ";")
	stmts := make([]string, 0, len(parts))
	for _, p := range parts {
		s := strings.TrimSpace(p)
		if s != "" {
			stmts = append(stmts, s)
		}
	}
	return stmts
}
