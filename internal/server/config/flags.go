package config

import (
	"flag"
	"os"
	"time"

	"github.com/mkuznecov/auctionsite/internal/flagx"
)

// parseFlags populates selected server Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   HTTP bind address (e.g., ":8080")
//	-d string   PostgreSQL DSN
//	-s string   JWT HMAC secret key
//	-t int      session token validity, minutes
//	-w int      session sweep period, minutes
//	-m          use the in-memory store instead of Postgres
//	-l int      login attempts allowed per minute per address
//	-b int      login rate-limit burst
//
// The function first filters os.Args to only the flags it recognizes using
// flagx.FilterArgs, avoiding collisions with other components. Duration
// flags are accepted as integers in minutes and then converted to
// time.Duration values.
func parseFlags(config *Config) {
	// Filter args to include only the flags handled here.
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-d", "-s", "-t", "-w", "-m", "-l", "-b"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrHTTP, "a", config.EndpointAddrHTTP, "address and port to run server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")

	tokenValidity := fs.Int("t", int(config.TokenValidityDuration.Minutes()), "token validity (in minutes)")
	sweepPeriod := fs.Int("w", int(config.SessionSweepPeriod.Minutes()), "session sweep period (in minutes)")

	fs.BoolVar(&config.UseMemoryStore, "m", config.UseMemoryStore, "use in-memory store")
	fs.IntVar(&config.LoginRatePerMinute, "l", config.LoginRatePerMinute, "login attempts per minute per address")
	fs.IntVar(&config.LoginBurst, "b", config.LoginBurst, "login rate-limit burst")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.TokenValidityDuration = time.Duration(*tokenValidity) * time.Minute
	config.SessionSweepPeriod = time.Duration(*sweepPeriod) * time.Minute
}
