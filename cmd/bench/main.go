// README: Rental API bench entry point; parses flags, runs the selected case groups and reports per group and session.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// caseGroups lists the groups a case name may start with, in report order.
var caseGroups = []string{
	"env", "migration", "api", "catalog", "quote", "booking", "payment",
	"redis", "postgres", "concurrency", "limits", "sessions", "perf",
}

type Config struct {
	BaseURL        string
	DSN            string
	RedisAddr      string
	MigrationPath  string
	ApplyMigration bool
	Strict         bool
	Timeout        time.Duration
	Concurrency    int
	Duration       time.Duration

	// VehicleID is booked and quoted by every flow case. Reference totals are
	// only asserted for the fixture car c1.
	VehicleID string
	// Only restricts the run to these groups; empty runs everything.
	Only []string
}

func (c Config) wants(group string) bool {
	return len(c.Only) == 0 || slices.Contains(c.Only, group)
}

func main() {
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout)
	defer cancel()

	bench := NewRunner(cfg)
	results := bench.RunAll(ctx)

	tally := report(results)
	fmt.Printf("session=%s bookings=%d vehicle=%s\n", orDash(bench.SessionID()), bench.created, cfg.VehicleID)

	if tally["FAIL"] > 0 || (cfg.Strict && tally["PENDING"] > 0) {
		os.Exit(1)
	}
}

// report prints one line per group and returns the overall status counts.
func report(results []Result) map[string]int {
	byGroup := map[string]map[string]int{}
	total := map[string]int{}
	for _, r := range results {
		g := byGroup[r.Group]
		if g == nil {
			g = map[string]int{}
			byGroup[r.Group] = g
		}
		g[r.Status]++
		total[r.Status]++
	}

	fmt.Println("\n== Summary ==")
	for _, name := range caseGroups {
		g, ok := byGroup[name]
		if !ok {
			continue
		}
		fmt.Printf("%-12s PASS=%d FAIL=%d PENDING=%d SKIP=%d\n", name, g["PASS"], g["FAIL"], g["PENDING"], g["SKIP"])
	}
	fmt.Printf("%-12s PASS=%d FAIL=%d PENDING=%d SKIP=%d\n", "total", total["PASS"], total["FAIL"], total["PENDING"], total["SKIP"])
	return total
}

func loadConfig() (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("RENTAL_BENCH")
	v.AutomaticEnv()
	v.SetDefault("base_url", "http://localhost:8080")
	v.SetDefault("migration", "migrations/0001_catalog.sql")
	v.SetDefault("timeout", 60*time.Second)
	v.SetDefault("concurrency", 20)
	v.SetDefault("duration", 10*time.Second)
	v.SetDefault("vehicle", "c1")
	// shared with the API process
	_ = v.BindEnv("dsn", "RENTAL_DB_DSN")
	_ = v.BindEnv("redis", "RENTAL_REDIS_ADDR")

	var (
		cfg  Config
		only string
	)
	flag.StringVar(&cfg.BaseURL, "base-url", v.GetString("base_url"), "API base URL")
	flag.StringVar(&cfg.DSN, "dsn", v.GetString("dsn"), "Postgres DSN (empty skips DB checks)")
	flag.StringVar(&cfg.RedisAddr, "redis", v.GetString("redis"), "Redis address (empty skips Redis checks)")
	flag.StringVar(&cfg.MigrationPath, "migration", v.GetString("migration"), "Migration SQL path")
	flag.BoolVar(&cfg.ApplyMigration, "apply-migration", v.GetBool("apply_migration"), "Apply migration SQL before tests")
	flag.BoolVar(&cfg.Strict, "strict", v.GetBool("strict"), "Fail on pending tests")
	flag.DurationVar(&cfg.Timeout, "timeout", v.GetDuration("timeout"), "Total timeout")
	flag.IntVar(&cfg.Concurrency, "concurrency", v.GetInt("concurrency"), "Workers for concurrency and perf cases")
	flag.DurationVar(&cfg.Duration, "duration", v.GetDuration("duration"), "Duration for perf cases")
	flag.StringVar(&cfg.VehicleID, "vehicle", v.GetString("vehicle"), "Vehicle id used by quote and booking cases")
	flag.StringVar(&only, "only", v.GetString("only"), "Comma separated groups to run: "+strings.Join(caseGroups, ","))
	flag.Parse()

	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	cfg.VehicleID = strings.TrimSpace(cfg.VehicleID)
	if cfg.VehicleID == "" {
		return Config{}, fmt.Errorf("vehicle must not be empty")
	}
	if cfg.Concurrency <= 0 {
		return Config{}, fmt.Errorf("concurrency must be positive, got %d", cfg.Concurrency)
	}
	for _, g := range strings.Split(only, ",") {
		g = strings.ToLower(strings.TrimSpace(g))
		if g == "" {
			continue
		}
		if !slices.Contains(caseGroups, g) {
			return Config{}, fmt.Errorf("unknown group %q (want one of %s)", g, strings.Join(caseGroups, ","))
		}
		cfg.Only = append(cfg.Only, g)
	}
	return cfg, nil
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
