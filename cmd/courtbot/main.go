package main

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/bwmarrin/discordgo"
	"github.com/joho/godotenv"

	"github.com/hpungsan/courtbot/internal/bot"
	"github.com/hpungsan/courtbot/internal/config"
	"github.com/hpungsan/courtbot/internal/db"
	"github.com/hpungsan/courtbot/internal/mongostore"
	"github.com/hpungsan/courtbot/internal/ops"
	"github.com/hpungsan/courtbot/internal/platform"
	"github.com/hpungsan/courtbot/internal/platform/discord"
)

// Version is set via -ldflags at build time.
var Version = "dev"

// runtime bundles what a command needs once config and the store are ready.
type runtime struct {
	cfg      *config.Config
	logger   *slog.Logger
	store    ops.Store
	platform platform.Platform

	// session is the gateway session behind platform; nil in tests.
	session *discordgo.Session

	close func()
}

func (rt *runtime) service() *ops.Service {
	return ops.New(rt.store, rt.platform, rt.logger)
}

// opener builds a runtime. Commands call it lazily so --help and --version need no store.
type opener func(ctx context.Context) (*runtime, error)

func main() {
	if err := loadDotEnv(".env"); err != nil {
		fmt.Fprintf(os.Stderr, "error: failed to load .env: %v\n", err)
		os.Exit(1)
	}

	app := newCLIApp(openRuntime)
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// loadDotEnv loads path into the environment when it exists. Variables already set win.
func loadDotEnv(path string) error {
	err := godotenv.Load(path)
	if err != nil && stderrors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

// openRuntime loads config from ~/.courtbot and the environment, then opens the configured store.
func openRuntime(ctx context.Context) (*runtime, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("could not determine home directory: %w", err)
	}
	baseDir := filepath.Join(homeDir, ".courtbot")

	cfg, err := config.LoadWithEnv(baseDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	logger, err := newLogger(cfg, os.Stderr)
	if err != nil {
		return nil, err
	}

	rt := &runtime{cfg: cfg, logger: logger}

	switch cfg.StoreBackend {
	case config.BackendMongo:
		store, err := mongostore.Connect(ctx, mongostore.Options{
			URI:      cfg.MongoURI,
			Database: cfg.MongoDatabase,
			Username: cfg.MongoUsername,
			Password: cfg.MongoPassword,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to connect to mongo: %w", err)
		}
		rt.store = store
		rt.close = func() {
			if err := store.Close(context.Background()); err != nil {
				logger.Warn("failed to disconnect from mongo", "error", err)
			}
		}
	default:
		database, err := db.Init(baseDir)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		db.ConfigurePool(database, cfg)
		rt.store = db.NewStore(database)
		rt.close = func() { database.Close() }
	}

	// discordgo.New only builds the client; nothing connects until Open.
	session, err := discordgo.New("Bot " + cfg.DiscordToken)
	if err != nil {
		rt.close()
		return nil, fmt.Errorf("failed to create discord session: %w", err)
	}
	session.Identify.Intents = bot.Intents
	rt.session = session
	rt.platform = discord.New(session, logger)

	logger.Debug("runtime ready", "store", cfg.StoreBackend, "base_dir", baseDir)
	return rt, nil
}

// newLogger builds the process logger from the configured level and format.
func newLogger(cfg *config.Config, w io.Writer) (*slog.Logger, error) {
	level, err := config.ParseLogLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{Level: level}
	if cfg.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	}
	return slog.New(slog.NewTextHandler(w, opts)), nil
}
