// Package main is the Quotable CLI entry point.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/quotable-io/quotable/internal/cli"
	"github.com/quotable-io/quotable/internal/config"
	"github.com/quotable-io/quotable/internal/corpus"
	"github.com/quotable-io/quotable/internal/embedding"
	"github.com/quotable-io/quotable/internal/models"
	"github.com/quotable-io/quotable/internal/quotes"
	"github.com/quotable-io/quotable/internal/server"
	"github.com/quotable-io/quotable/internal/store"
	"github.com/quotable-io/quotable/pkg/utils"
)

var version = "dev"

const defaultConfigPath = "/usr/local/etc/quotable/config.yaml"

// loadConfig loads config from path. When path is the default, it first looks
// for config.yaml in the current directory (for development); if that exists
// it is used. When neither exists, built-in defaults apply, so the server
// runs out of the box. An explicitly given path must exist.
// Returns the config and the path that was actually loaded ("" for defaults).
func loadConfig(path string) (*config.Config, string, error) {
	if path == defaultConfigPath {
		if cwd, cwdErr := os.Getwd(); cwdErr == nil {
			fallback := filepath.Join(cwd, "config.yaml")
			if _, statErr := os.Stat(fallback); statErr == nil {
				cfg, loadErr := config.Load(fallback)
				if loadErr != nil {
					return nil, "", loadErr
				}
				return cfg, fallback, nil
			}
		}
		if _, statErr := os.Stat(path); statErr != nil {
			cfg, defErr := config.Default()
			if defErr != nil {
				return nil, "", defErr
			}
			return cfg, "", nil
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	command := os.Args[1]
	switch command {
	case "server":
		runServer()
	case "search":
		runSearch()
	case "list":
		runList()
	case "random":
		runRandom()
	case "words":
		runWords()
	case "init":
		runInit()
	case "clean":
		runClean()
	case "health":
		runHealth()
	case "version", "--version", "-v":
		fmt.Printf("quotable version %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func runServer() {
	fs := flag.NewFlagSet("server", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging (searches, corpus loads, etc.)")
	_ = fs.Parse(os.Args[2:])

	cfg, resolvedConfigPath, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	if resolvedConfigPath == "" {
		resolvedConfigPath = "(built-in defaults)"
	}
	debugMode := cfg.Debug || *debug
	logger, err := utils.NewLogger(debugMode)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("config loaded",
		zap.String("config_path", resolvedConfigPath),
		zap.String("store_backend", cfg.Store.Backend),
		zap.String("embedding_provider", cfg.Embedding.Provider),
		zap.Bool("debug", debugMode),
	)

	components, err := initializeComponents(context.Background(), cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize components", zap.Error(err))
	}
	defer components.Close()

	if cfg.Corpus.AutoInitOrDefault() {
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
			defer cancel()
			result, initErr := components.Service.Initialize(ctx, false)
			if initErr != nil {
				logger.Warn("corpus auto-load failed", zap.Error(initErr))
				return
			}
			logger.Info("corpus auto-load",
				zap.String("status", result.Status),
				zap.Int("count", result.Count),
				zap.Int("failed", len(result.Failures)),
			)
		}()
	}

	watchCtx, watchCancel := context.WithCancel(context.Background())
	defer watchCancel()
	if cfg.Corpus.Watch && cfg.Corpus.Path != "" {
		watch := corpus.NewWatcher(cfg.Corpus.Path, func() {
			n, reloadErr := components.Source.Reload()
			if reloadErr != nil {
				logger.Warn("corpus reload failed", zap.Error(reloadErr))
				return
			}
			logger.Info("corpus reloaded", zap.Int("quotes", n))
		}, logger)
		if err := watch.Start(watchCtx); err != nil {
			logger.Fatal("Failed to start corpus watcher", zap.Error(err))
		}
		defer watch.Stop()
	}

	srv := server.NewServer(components.Service, &cfg.Server, logger, version)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down...")
	watchCancel()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Stop(ctx)
}

func printSearchUsage(fs *flag.FlagSet) {
	fmt.Fprintf(fs.Output(), "Usage: quotable search [flags] <topic>\n\n")
	fmt.Fprintf(fs.Output(), "Topic is all remaining arguments joined by spaces. Multi-word topics work with or without quotes.\n\n")
	fs.PrintDefaults()
	fmt.Fprintf(fs.Output(), `
Examples:
  quotable search overcoming failure
  quotable search "overcoming failure"        # same as above
  quotable search --k 5 education
  quotable search --threshold 0.3 kindness
  quotable search --output json education     # structured JSON for other apps
`)
}

// buildTopic joins all positional args with spaces so multi-word topics work
// the same with or without shell quoting.
func buildTopic(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}

// searchArgsReorder moves any flags (and their values) that appear after the
// topic to the front of the slice so that flag.Parse() sees them. Go's flag
// package stops at the first non-flag argument, so "quotable search education
// -k 5" would otherwise leave -k unparsed.
func searchArgsReorder(args []string) []string {
	for i, a := range args {
		if len(a) > 0 && a[0] == '-' {
			if i == 0 {
				return args
			}
			reordered := make([]string, 0, len(args))
			reordered = append(reordered, args[i:]...)
			reordered = append(reordered, args[:i]...)
			return reordered
		}
	}
	return args
}

func runSearch() {
	searchArgs := searchArgsReorder(os.Args[2:])

	fs := flag.NewFlagSet("search", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path (for direct mode)")
	serverURL := fs.String("server", "http://localhost:8080", "server URL (empty = use the configured store directly)")
	k := fs.Int("k", 0, "number of results (0 = server default)")
	thresholdStr := fs.String("threshold", "", "minimum similarity to include (default: no filtering)")
	outputFormat := fs.String("output", "text", "output format: text (human-readable) or json (parseable)")
	fs.Usage = func() { printSearchUsage(fs) }
	_ = fs.Parse(searchArgs)

	if fs.NArg() < 1 {
		printSearchUsage(fs)
		os.Exit(1)
	}
	topic := buildTopic(fs.Args())
	if topic == "" {
		printSearchUsage(fs)
		os.Exit(1)
	}
	format := parseFormat(*outputFormat)

	var threshold *float64
	if *thresholdStr != "" {
		v, err := strconv.ParseFloat(*thresholdStr, 64)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Invalid threshold %q\n", *thresholdStr)
			os.Exit(1)
		}
		threshold = &v
	}

	var results []*models.ScoredQuote
	if *serverURL != "" {
		// Use the HTTP API when the server is running so searches share its
		// embedding cache.
		params := url.Values{"topic": {topic}}
		if *k > 0 {
			params.Set("k", strconv.Itoa(*k))
		}
		if threshold != nil {
			params.Set("threshold", strconv.FormatFloat(*threshold, 'f', -1, 64))
		}
		if err := fetchJSON(http.MethodGet, *serverURL+"/quotes?"+params.Encode(), &results); err != nil {
			fmt.Fprintf(os.Stderr, "Search failed: %v\n", err)
			os.Exit(1)
		}
	} else {
		components, logger := mustComponents(*configPath)
		defer components.Close()
		defer logger.Sync()

		var err error
		results, err = components.Service.Search(context.Background(), models.SearchParams{
			Topic:     topic,
			K:         *k,
			Threshold: threshold,
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "Search failed: %v\n", err)
			os.Exit(1)
		}
	}

	if err := cli.WriteScoredQuotes(os.Stdout, topic, results, format); err != nil {
		fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
		os.Exit(1)
	}
}

func runList() {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	serverURL := fs.String("server", "http://localhost:8080", "server URL")
	outputFormat := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(os.Args[2:])
	format := parseFormat(*outputFormat)

	var list []*models.QuoteSummary
	if err := fetchJSON(http.MethodGet, *serverURL+"/quotes", &list); err != nil {
		fmt.Fprintf(os.Stderr, "List failed: %v\n", err)
		os.Exit(1)
	}
	if err := cli.WriteQuoteList(os.Stdout, list, format); err != nil {
		fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
		os.Exit(1)
	}
}

func runRandom() {
	fs := flag.NewFlagSet("random", flag.ExitOnError)
	serverURL := fs.String("server", "http://localhost:8080", "server URL")
	outputFormat := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(os.Args[2:])
	format := parseFormat(*outputFormat)

	var quote models.QuoteSummary
	if err := fetchJSON(http.MethodGet, *serverURL+"/quotes/random", &quote); err != nil {
		fmt.Fprintf(os.Stderr, "Random quote failed: %v\n", err)
		os.Exit(1)
	}
	if err := cli.WriteQuote(os.Stdout, &quote, format); err != nil {
		fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
		os.Exit(1)
	}
}

func runWords() {
	fs := flag.NewFlagSet("words", flag.ExitOnError)
	serverURL := fs.String("server", "http://localhost:8080", "server URL")
	outputFormat := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(os.Args[2:])
	format := parseFormat(*outputFormat)

	switch fs.NArg() {
	case 0:
		var results []models.WordSimilarity
		if err := fetchJSON(http.MethodGet, *serverURL+"/words", &results); err != nil {
			fmt.Fprintf(os.Stderr, "Words failed: %v\n", err)
			os.Exit(1)
		}
		if err := cli.WriteWordSimilarities(os.Stdout, results, format); err != nil {
			fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
			os.Exit(1)
		}
	case 2:
		params := url.Values{"word1": {fs.Arg(0)}, "word2": {fs.Arg(1)}}
		var result models.WordSimilarity
		if err := fetchJSON(http.MethodGet, *serverURL+"/words?"+params.Encode(), &result); err != nil {
			fmt.Fprintf(os.Stderr, "Words failed: %v\n", err)
			os.Exit(1)
		}
		if err := cli.WriteWordSimilarities(os.Stdout, []models.WordSimilarity{result}, format); err != nil {
			fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
			os.Exit(1)
		}
	default:
		fmt.Println("Usage: quotable words [word1 word2]")
		os.Exit(1)
	}
}

func runInit() {
	fs := flag.NewFlagSet("init", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path (for direct mode)")
	serverURL := fs.String("server", "http://localhost:8080", "server URL (empty = load into the configured store directly)")
	force := fs.Bool("force", false, "load even when the store already has quotes")
	outputFormat := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(os.Args[2:])
	format := parseFormat(*outputFormat)

	var result models.InitResult
	if *serverURL != "" {
		target := *serverURL + "/quotes/init"
		if *force {
			target += "?force=true"
		}
		if err := fetchJSON(http.MethodPost, target, &result); err != nil {
			fmt.Fprintf(os.Stderr, "Init failed: %v\n", err)
			os.Exit(1)
		}
	} else {
		components, logger := mustComponents(*configPath)
		defer components.Close()
		defer logger.Sync()

		res, err := components.Service.Initialize(context.Background(), *force)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Init failed: %v\n", err)
			os.Exit(1)
		}
		result = *res
	}

	if err := cli.WriteInitResult(os.Stdout, &result, format); err != nil {
		fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
		os.Exit(1)
	}
}

func runClean() {
	fs := flag.NewFlagSet("clean", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path (for direct mode)")
	serverURL := fs.String("server", "http://localhost:8080", "server URL (empty = clean the configured store directly)")
	outputFormat := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(os.Args[2:])
	format := parseFormat(*outputFormat)

	var result models.CleanResult
	if *serverURL != "" {
		if err := fetchJSON(http.MethodPost, *serverURL+"/quotes/clean", &result); err != nil {
			fmt.Fprintf(os.Stderr, "Clean failed: %v\n", err)
			os.Exit(1)
		}
	} else {
		components, logger := mustComponents(*configPath)
		defer components.Close()
		defer logger.Sync()

		res, err := components.Service.Clean(context.Background())
		if err != nil {
			fmt.Fprintf(os.Stderr, "Clean failed: %v\n", err)
			os.Exit(1)
		}
		result = *res
	}

	if err := cli.WriteCleanResult(os.Stdout, &result, format); err != nil {
		fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
		os.Exit(1)
	}
}

func runHealth() {
	fs := flag.NewFlagSet("health", flag.ExitOnError)
	serverURL := fs.String("server", "http://localhost:8080", "server URL")
	outputFormat := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(os.Args[2:])
	format := parseFormat(*outputFormat)

	report, err := healthViaHTTP(*serverURL)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Health check failed: %v\n", err)
		os.Exit(1)
	}
	if err := cli.WriteHealthReport(os.Stdout, report, format); err != nil {
		fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
		os.Exit(1)
	}
	if report.Status != "healthy" {
		os.Exit(1)
	}
}

// fetchJSON performs an HTTP request against the server and decodes the JSON
// response into out. Non-2xx responses become errors carrying the body.
func fetchJSON(method, rawURL string, out interface{}) error {
	req, err := http.NewRequest(method, rawURL, nil)
	if err != nil {
		return err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("server returned %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// healthViaHTTP fetches the health report. Both 200 and 503 carry a report
// body, so the status code is not treated as an error here.
func healthViaHTTP(serverURL string) (*models.HealthReport, error) {
	resp, err := http.Get(serverURL + "/health")
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	var report models.HealthReport
	if err := json.NewDecoder(resp.Body).Decode(&report); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &report, nil
}

func parseFormat(name string) cli.OutputFormat {
	switch name {
	case "json":
		return cli.OutputJSON
	case "text":
		return cli.OutputText
	default:
		fmt.Fprintf(os.Stderr, "Unknown output format %q; use text or json\n", name)
		os.Exit(1)
		return cli.OutputText
	}
}

// Components holds initialized services for direct (serverless) commands.
type Components struct {
	Store    store.Store
	Embedder embedding.Embedder
	Source   *corpus.Source
	Service  *quotes.Service
}

func (c *Components) Close() {
	if c.Store != nil {
		_ = c.Store.Close()
	}
	if c.Embedder != nil {
		_ = c.Embedder.Close()
	}
}

func initializeComponents(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Components, error) {
	st, err := store.Open(ctx, &cfg.Store, cfg.Embedding.Dimensions)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize store: %w", err)
	}

	embedder, err := newEmbedder(&cfg.Embedding)
	if err != nil {
		_ = st.Close()
		return nil, err
	}

	source, err := newSource(&cfg.Corpus)
	if err != nil {
		_ = st.Close()
		_ = embedder.Close()
		return nil, err
	}

	service := quotes.NewService(st, embedder, source, &cfg.Search, cfg.Corpus.Workers, logger)
	return &Components{Store: st, Embedder: embedder, Source: source, Service: service}, nil
}

// newEmbedder builds the embedder chain for the configured provider: the raw
// client wrapped with retries, then an LRU cache.
func newEmbedder(cfg *config.EmbeddingConfig) (embedding.Embedder, error) {
	switch cfg.Provider {
	case "mock":
		return embedding.NewMockEmbedder(cfg.Dimensions), nil
	case "openai":
		if cfg.BaseURL == "" {
			return nil, fmt.Errorf("openai provider requires a base url")
		}
		client := embedding.NewClient(cfg.BaseURL, cfg.PathPrefix, cfg.APIKey, cfg.Model,
			cfg.Dimensions, time.Duration(cfg.TimeoutSeconds)*time.Second)
		retrying := embedding.NewRetryEmbedder(client, &embedding.RetryConfig{
			MaxRetries: cfg.MaxRetries,
			RetryDelay: time.Duration(cfg.RetryDelayMs) * time.Millisecond,
			MaxDelay:   30 * time.Second,
			Timeout:    time.Duration(cfg.TimeoutSeconds) * time.Second,
		})
		return embedding.NewCachedEmbedder(retrying, cfg.CacheSize), nil
	default:
		return nil, fmt.Errorf("unknown embedding provider: %s (supported: openai, mock)", cfg.Provider)
	}
}

// newSource returns the file-backed corpus when a path is configured, the
// built-in corpus otherwise.
func newSource(cfg *config.CorpusConfig) (*corpus.Source, error) {
	if cfg.Path == "" {
		return corpus.NewSource(), nil
	}
	return corpus.NewFileSource(cfg.Path)
}

// mustComponents loads config and initializes direct-mode components, exiting
// on failure.
func mustComponents(configPath string) (*Components, *zap.Logger) {
	cfg, _, err := loadConfig(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger, err := utils.NewLogger(cfg.Debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	components, err := initializeComponents(context.Background(), cfg, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
		os.Exit(1)
	}
	return components, logger
}

func printUsage() {
	fmt.Println(`quotable - Semantic similarity search over an inspirational quote corpus

Usage:
  quotable server [flags]            Start the HTTP server
  quotable search [flags] <topic>    Find quotes similar to a topic
  quotable list [flags]              List every stored quote
  quotable random [flags]            Show one random quote
  quotable words [flags] [w1 w2]     Compare word embeddings
  quotable init [flags]              Load the quote corpus into the store
  quotable clean [flags]             Remove every stored quote
  quotable health [flags]            Check server health
  quotable version                   Show version
  quotable help                      Show this help

Server Flags:
  --config string    Config file path (default: /usr/local/etc/quotable/config.yaml)
  --debug            Enable debug logging (searches, corpus loads, etc.)

Search Flags:
  --server string     Server URL (default: http://localhost:8080). Use empty (--server "") for direct store access.
  --config string     Config file path (for direct mode)
  --k int             Number of results (default: server default)
  --threshold string  Minimum similarity to include (default: no filtering)
  --output string     Output format: text or json (default: text)

Init Flags:
  --server string    Server URL (default: http://localhost:8080). Use empty (--server "") for direct store access.
  --config string    Config file path (for direct mode)
  --force            Load even when the store already has quotes
  --output string    Output format: text or json

Examples:
  quotable server
  quotable search overcoming failure
  quotable search --k 5 --threshold 0.3 "hard work"
  quotable search --output json education
  quotable words
  quotable words king queen
  quotable init --force
  quotable random
  quotable health`)
}
