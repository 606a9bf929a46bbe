package main

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"os"
	"syscall"
	"time"

	"kitty-services/api"
	"kitty-services/db"
	"kitty-services/kitties"
	"kitty-services/kittylog"
	"kitty-services/seed"

	"github.com/ninja-software/terror/v2"
	"github.com/oklog/run"
	"github.com/shopspring/decimal"
	"github.com/urfave/cli/v2"
)

// Variable passed in at compile time using `-ldflags`
var (
	Version   string // -X main.Version=$(git describe --tags --abbrev=0)
	GitHash   string // -X main.GitHash=$(git rev-parse HEAD)
	GitBranch string // -X main.GitBranch=$(git rev-parse --abbrev-ref HEAD)
	BuildDate string // -X main.BuildDate=$(date -u +%Y%m%d%H%M%S)
)

const envPrefix = "KITTY"

func main() {
	app := &cli.App{
		Compiled: time.Now(),
		Usage:    "Run the kitty platform server",
		Commands: []*cli.Command{
			{
				Name: "version",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "full", Usage: "Prints full version and build info", Value: false},
				},
				Action: func(c *cli.Context) error {
					if c.Bool("full") {
						fmt.Printf("Version=%s\n", Version)
						fmt.Printf("Commit=%s\n", GitHash)
						fmt.Printf("Branch=%s\n", GitBranch)
						fmt.Printf("BuildDate=%s\n", BuildDate)
						return nil
					}
					fmt.Printf("%s\n", Version)
					return nil
				},
			},
			{
				Name: "seed",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "environment", Value: "development", EnvVars: []string{envPrefix + "_ENVIRONMENT", "ENVIRONMENT"}, Usage: "This program environment, seeding is refused outside development"},
					&cli.StringFlag{Name: "log_level", Value: "InfoLevel", EnvVars: []string{envPrefix + "_LOG_LEVEL"}, Usage: "Set the log level for zerolog"},
					&cli.StringFlag{Name: "database_dir", Value: "./kitty-data", EnvVars: []string{envPrefix + "_DATABASE_DIR", "DATABASE_DIR"}, Usage: "Directory for the ledger store"},
					&cli.StringFlag{Name: "randomness_seed", Value: "", EnvVars: []string{envPrefix + "_RANDOMNESS_SEED"}, Usage: "Hex encoded 32 byte seed for the deterministic randomness source"},
				},
				Usage: "seed development fixtures into the ledger store",
				Action: func(c *cli.Context) error {
					environment := c.String("environment")
					if environment != "development" {
						return terror.Error(fmt.Errorf("seeding is only available in development, got %s", environment))
					}
					kittylog.New(environment, c.String("log_level"))

					store, err := db.Open(db.Opts{DataDir: c.String("database_dir")})
					if err != nil {
						return terror.Error(err, "could not open ledger store")
					}
					defer store.Close()

					randSeed, err := randomnessSeed(c.String("randomness_seed"))
					if err != nil {
						return err
					}

					engine := kitties.NewEngine(store, kitties.NewSeededSource(randSeed), kitties.NewLogSink(kittylog.L), kittylog.L)
					return seed.NewSeeder(store, engine, kittylog.L).Run()
				},
			},
			{
				Name:    "serve",
				Aliases: []string{"s"},
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "api_addr", Value: ":8086", EnvVars: []string{envPrefix + "_API_ADDR", "API_ADDR"}, Usage: "host:port to run the API"},
					&cli.StringFlag{Name: "environment", Value: "development", DefaultText: "development", EnvVars: []string{envPrefix + "_ENVIRONMENT", "ENVIRONMENT"}, Usage: "This program environment (development, testing, staging, production), it sets the log levels"},
					&cli.StringFlag{Name: "log_level", Value: "DebugLevel", EnvVars: []string{envPrefix + "_LOG_LEVEL"}, Usage: "Set the log level for zerolog (Options: PanicLevel, FatalLevel, ErrorLevel, WarnLevel, InfoLevel, DebugLevel, TraceLevel)"},

					&cli.StringFlag{Name: "database_dir", Value: "./kitty-data", EnvVars: []string{envPrefix + "_DATABASE_DIR", "DATABASE_DIR"}, Usage: "Directory for the ledger store"},
					&cli.BoolFlag{Name: "database_in_memory", Value: false, EnvVars: []string{envPrefix + "_DATABASE_IN_MEMORY"}, Usage: "Run the ledger store in memory, losing all state on exit"},

					&cli.StringFlag{Name: "randomness_seed", Value: "", EnvVars: []string{envPrefix + "_RANDOMNESS_SEED"}, Usage: "Hex encoded 32 byte seed for the deterministic randomness source; generated when empty"},
					&cli.StringFlag{Name: "existential_deposit", Value: "1", EnvVars: []string{envPrefix + "_EXISTENTIAL_DEPOSIT"}, Usage: "Minimum balance an account must keep through a keep-alive transfer"},
				},
				Usage: "run the kitty platform server",
				Action: func(c *cli.Context) error {
					environment := c.String("environment")
					kittylog.New(environment, c.String("log_level"))

					err := serve(c, environment)
					if err != nil {
						kittylog.L.Err(err).Msg("serve failed")
						return terror.Error(err)
					}
					return nil
				},
			},
		},
	}

	err := app.Run(os.Args)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func serve(c *cli.Context, environment string) error {
	existentialDeposit, err := decimal.NewFromString(c.String("existential_deposit"))
	if err != nil {
		return terror.Error(err, "invalid existential_deposit")
	}

	store, err := db.Open(db.Opts{
		DataDir:            c.String("database_dir"),
		InMemory:           c.Bool("database_in_memory"),
		ExistentialDeposit: existentialDeposit,
	})
	if err != nil {
		return terror.Error(err, "could not open ledger store")
	}
	defer store.Close()

	seed, err := randomnessSeed(c.String("randomness_seed"))
	if err != nil {
		return err
	}

	engine := kitties.NewEngine(store, kitties.NewSeededSource(seed), kitties.NewLogSink(kittylog.L), kittylog.L)
	server := api.NewAPI(kittylog.L, engine, store, &api.Config{
		Addr:        c.String("api_addr"),
		Environment: environment,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	g := &run.Group{}
	g.Add(func() error {
		return server.Run(ctx)
	}, func(err error) {
		cancel()
	})
	g.Add(run.SignalHandler(ctx, os.Interrupt, syscall.SIGTERM))

	err = g.Run()
	var signalErr run.SignalError
	if errors.As(err, &signalErr) || errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func randomnessSeed(raw string) ([32]byte, error) {
	var seed [32]byte
	if raw == "" {
		seed, err := kitties.NewRandomSeed()
		if err != nil {
			return seed, terror.Error(err, "could not generate randomness seed")
		}
		kittylog.L.Warn().Msg("no randomness seed supplied, state transitions will not replay across restarts")
		return seed, nil
	}

	decoded, err := hex.DecodeString(raw)
	if err != nil || len(decoded) != 32 {
		if err == nil {
			err = fmt.Errorf("seed must be 32 bytes, got %d", len(decoded))
		}
		return seed, terror.Error(err, "invalid randomness_seed")
	}
	copy(seed[:], decoded)
	return seed, nil
}
