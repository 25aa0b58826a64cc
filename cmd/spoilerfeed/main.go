package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"spoilershield/internal/config"
	"spoilershield/internal/detect"
	"spoilershield/internal/model"
	"spoilershield/internal/notify"
	"spoilershield/internal/pipeline"
	"spoilershield/internal/platform"
	"spoilershield/internal/ratelimit"
	"spoilershield/internal/source"
	"spoilershield/internal/storage"
	"spoilershield/internal/watch"
)

func main() {
	topic := flag.String("topic", "", "topic scope (subreddit, board section, search topic)")
	limit := flag.Int("limit", 25, "max items per source")
	hide := flag.Float64("hide", 0, "hide items at or above this confidence (0 disables)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}

	log := newLogger(cfg.LogLevel)

	if dir := filepath.Dir(cfg.DatabasePath); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			log.Error("create data directory", "path", dir, "error", err)
			os.Exit(1)
		}
	}

	store, err := storage.NewSQLite(cfg.DatabasePath)
	if err != nil {
		log.Error("open database", "path", cfg.DatabasePath, "error", err)
		os.Exit(1)
	}
	defer func() { _ = store.Close() }()

	ctx, cancel := context.WithTimeout(context.Background(), cfg.FetchTimeout)
	defer cancel()

	registry := buildRegistry(ctx, cfg, store, log)

	engine := detect.New(detect.Options{})
	pipe := pipeline.New(registry, engine, store, store, pipeline.Options{
		Priority: cfg.SourcePriority,
	}, log)

	if err := run(ctx, cfg, store, registry, pipe, *topic, *limit, *hide, log); err != nil {
		log.Error("command failed", "error", err)
		os.Exit(1)
	}
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}

func buildRegistry(ctx context.Context, cfg *config.Config, store *storage.SQLite, log *slog.Logger) *platform.Registry {
	limiter := ratelimit.New(ratelimit.ScrapeInterval)
	limiter.SetInterval("reddit", cfg.APIInterval)
	limiter.SetInterval("youtube", cfg.APIInterval)
	limiter.SetInterval("rss", cfg.ScrapeInterval)
	limiter.SetInterval("boards", cfg.ScrapeInterval)

	registry := platform.New(store, log)
	client := http.DefaultClient
	registry.Register(source.NewReddit(client, limiter))
	registry.Register(source.NewYouTube(client, limiter, registry.CredentialFunc("youtube")))
	registry.Register(source.NewRSS(client, limiter, registry.CredentialFunc("rss")))
	registry.Register(source.NewBoards(client, limiter, registry.CredentialFunc("boards")))

	configs, err := store.ListPlatforms(ctx)
	if err != nil {
		log.Error("load platforms", "error", err)
		return registry
	}
	for _, pc := range configs {
		creds, _, err := store.Credentials(ctx, pc.ID)
		if err != nil {
			log.Error("load credentials", "source", pc.ID, "error", err)
			continue
		}
		registry.Restore(pc, creds)
	}
	return registry
}

func run(ctx context.Context, cfg *config.Config, store *storage.SQLite, registry *platform.Registry, pipe *pipeline.Pipeline, topic string, limit int, hide float64, log *slog.Logger) error {
	args := flag.Args()
	cmd := "fetch"
	if len(args) > 0 {
		cmd = args[0]
		args = args[1:]
	}

	switch cmd {
	case "fetch":
		result, err := pipe.BuildFeed(ctx, source.Query{Topic: topic, Limit: limit})
		if err != nil {
			return err
		}
		printResult(result, hide)
		return nil
	case "search":
		if len(args) == 0 {
			return fmt.Errorf("usage: search <query>")
		}
		result, err := pipe.Search(ctx, strings.Join(args, " "), source.SearchOptions{Limit: limit})
		if err != nil {
			return err
		}
		printResult(result, hide)
		return nil
	case "watch":
		return runWatch(ctx, store, args)
	case "enable", "disable":
		if len(args) != 1 {
			return fmt.Errorf("usage: %s <source>", cmd)
		}
		return registry.SetEnabled(ctx, args[0], cmd == "enable")
	case "configure":
		return runConfigure(ctx, registry, args)
	case "test":
		if len(args) != 1 {
			return fmt.Errorf("usage: test <source>")
		}
		fmt.Printf("%s: healthy=%v\n", args[0], registry.TestConnection(ctx, args[0]))
		return nil
	case "monitor":
		if !cfg.TelegramEnabled() {
			return fmt.Errorf("monitor needs TELEGRAM_BOT_TOKEN and TELEGRAM_CHAT_ID")
		}
		alerter, err := notify.New(cfg.TelegramBotToken, cfg.TelegramChatID, cfg.AlertThreshold, log)
		if err != nil {
			return err
		}
		w := watch.New(pipe, alerter, source.Query{Topic: topic, Limit: limit}, log)

		runCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		log.Info("monitoring", "topic", topic)
		w.Run(runCtx)
		return nil
	case "stats":
		totals, err := store.Totals(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("scanned: %d\nflagged: %d\n", totals.Scanned, totals.Flagged)
		return nil
	default:
		return fmt.Errorf("unknown command %q (fetch, search, monitor, watch, enable, disable, configure, test, stats)", cmd)
	}
}

func runWatch(ctx context.Context, store *storage.SQLite, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: watch list|add <term>|remove <term>|clear")
	}
	switch args[0] {
	case "list":
		terms, err := store.ListTerms(ctx)
		if err != nil {
			return err
		}
		for _, t := range terms {
			fmt.Println(t)
		}
		return nil
	case "add":
		if len(args) < 2 {
			return fmt.Errorf("usage: watch add <term>")
		}
		added, err := store.AddTerm(ctx, strings.Join(args[1:], " "))
		if err != nil {
			return err
		}
		if !added {
			fmt.Println("already on the watchlist")
		}
		return nil
	case "remove":
		if len(args) < 2 {
			return fmt.Errorf("usage: watch remove <term>")
		}
		removed, err := store.RemoveTerm(ctx, strings.Join(args[1:], " "))
		if err != nil {
			return err
		}
		if !removed {
			fmt.Println("not on the watchlist")
		}
		return nil
	case "clear":
		return store.ClearTerms(ctx)
	default:
		return fmt.Errorf("unknown watch command %q", args[0])
	}
}

func runConfigure(ctx context.Context, registry *platform.Registry, args []string) error {
	usage := fmt.Errorf("usage: configure <source> key <api-key> | app <client-id> <client-secret> | feed <url>")
	if len(args) < 3 {
		return usage
	}
	id := args[0]
	var creds model.Credentials
	switch args[1] {
	case "key":
		creds = model.KeyCredentials{APIKey: args[2]}
	case "app":
		if len(args) < 4 {
			return usage
		}
		creds = model.AppCredentials{ClientID: args[2], ClientSecret: args[3]}
	case "feed":
		creds = model.FeedCredentials{FeedURL: args[2]}
	default:
		return usage
	}
	return registry.Configure(ctx, id, creds)
}

// Telegram alerts are sent only by the monitor command; one-shot runs have
// no cross-run dedup.
func printResult(result model.AggregationResult, hide float64) {
	for id, st := range result.Status {
		if st.Err != nil {
			fmt.Printf("# %s: failed: %v\n", id, st.Err)
		} else {
			fmt.Printf("# %s: %d items\n", id, st.Count)
		}
	}

	items := result.Items
	if hide > 0 {
		items = pipeline.WithoutSpoilers(items, hide)
	}
	for _, item := range items {
		marker := " "
		if item.Detection != nil && item.Detection.HasSpoiler {
			marker = "!"
		}
		fmt.Printf("%s [%s] %s (%s)\n", marker, item.SourceID, item.Title, item.CreatedAt.Format("2006-01-02 15:04"))
		if item.Detection != nil && item.Detection.HasSpoiler {
			fmt.Printf("    confidence %.2f, matched: %s\n",
				item.Detection.Confidence, strings.Join(item.Detection.MatchedTerms, ", "))
		}
	}

}
