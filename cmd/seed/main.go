package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/austinw/envelope/internal/seeder"
	"github.com/austinw/envelope/pkg/logger"
)

const (
	defaultCount   = 20
	defaultTimeout = 10 * time.Second
	runTimeout     = 2 * time.Minute
)

func main() {
	var (
		baseURL = flag.String("url", "http://localhost:8080", "Base URL of the contest service")
		count   = flag.Int("count", defaultCount, "Number of demo picks to submit")
		timeout = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		seed    = flag.Int64("seed", time.Now().UnixNano(), "Random seed for name and pick selection")
	)
	flag.Parse()

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
	defer cancel()

	_, err := seeder.Run(ctx, seeder.Config{
		BaseURL: *baseURL,
		Count:   *count,
		Timeout: *timeout,
		Seed:    *seed,
	}, logger.Named("seed"))
	if err != nil {
		logger.Get().Error(ctx, "seeding failed", logger.Error(err))
		os.Exit(1)
	}
}
