// ABOUTME: Entry point for the talk-to-anyone chat server
// ABOUTME: Serves the persona chat web UI backed by a generative provider

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/joho/godotenv"

	"github.com/MostlyKIGuess/Talk-To-Anyone/internal/config"
	"github.com/MostlyKIGuess/Talk-To-Anyone/internal/conversation"
	"github.com/MostlyKIGuess/Talk-To-Anyone/internal/genai"
	"github.com/MostlyKIGuess/Talk-To-Anyone/internal/voice"
	"github.com/MostlyKIGuess/Talk-To-Anyone/internal/web"

	// Provider registration.
	_ "github.com/MostlyKIGuess/Talk-To-Anyone/internal/genai/gemini"
	_ "github.com/MostlyKIGuess/Talk-To-Anyone/internal/genai/openai"
)

// Version is set by goreleaser at build time.
var version = "dev"

const banner = `
 _        _ _      _
| |_ __ _| | | __ | |_ ___     __ _ _ __  _   _  ___  _ __   ___
| __/ _' | | |/ / | __/ _ \   / _' | '_ \| | | |/ _ \| '_ \ / _ \
| || (_| | |   <  | || (_) | | (_| | | | | |_| | (_) | | | |  __/
 \__\__,_|_|_|\_\  \__\___/   \__,_|_| |_|\__, |\___/|_| |_|\___|
                                          |___/
`

// getConfigPath returns the path to the config file.
// Priority: TALK_CONFIG env var > XDG_CONFIG_HOME/talk-to-anyone/config.yaml > ~/.config/talk-to-anyone/config.yaml
func getConfigPath() string {
	if envPath := os.Getenv("TALK_CONFIG"); envPath != "" {
		return envPath
	}

	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "config.yaml" // fallback
		}
		configDir = filepath.Join(homeDir, ".config")
	}

	return filepath.Join(configDir, "talk-to-anyone", "config.yaml")
}

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: talk-to-anyone <command>")
		fmt.Println()
		fmt.Println("Commands:")
		fmt.Println("  serve     Start the chat web server")
		fmt.Println("  health    Check server health")
		fmt.Println("  voices    List the voice catalog")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var err error
	switch os.Args[1] {
	case "serve":
		err = runServe(ctx)
	case "health":
		err = runHealth(ctx)
	case "voices":
		err = runVoices()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", os.Args[1])
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runServe(ctx context.Context) error {
	// A local .env is the easiest way to carry the API key in development.
	_ = godotenv.Load()

	configPath := getConfigPath()

	// Print banner
	cyan := color.New(color.FgCyan)
	cyan.Print(banner)

	gray := color.New(color.FgHiBlack)
	gray.Printf("    version: %s\n\n", version)

	// Load configuration
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// Setup logger
	logger := setupLogger(cfg.Logging)
	slog.SetDefault(logger)

	green := color.New(color.FgGreen)

	green.Print("    ▶ ")
	fmt.Printf("Config:    %s\n", configPath)
	green.Print("    ▶ ")
	fmt.Printf("HTTP:      %s\n", cfg.Server.HTTPAddr)
	green.Print("    ▶ ")
	fmt.Printf("Provider:  ")
	cyan.Println(cfg.Provider.Name)
	fmt.Println()

	logger.Info("starting talk-to-anyone",
		"config", configPath,
		"http_addr", cfg.Server.HTTPAddr,
		"provider", cfg.Provider.Name,
	)

	client, err := genai.New(cfg.Provider.Name, genai.Options{
		APIKey:   cfg.Provider.APIKey,
		Model:    cfg.Provider.Model,
		TTSModel: cfg.Provider.TTSModel,
		BaseURL:  cfg.Provider.BaseURL,
	})
	if err != nil {
		return fmt.Errorf("creating %s provider: %w", cfg.Provider.Name, err)
	}

	state := conversation.New(conversation.VoiceSettings{
		Enabled:           cfg.Voice.Enabled,
		AutoPlay:          cfg.Voice.AutoPlay,
		PreferredLanguage: cfg.Voice.PreferredLanguage,
	}, logger)

	app := web.New(state, client, web.Config{
		DevMode: os.Getenv("TALK_DEV_MODE") == "1",
	})

	mux := http.NewServeMux()
	app.RegisterRoutes(mux)

	srv := &http.Server{
		Addr:              cfg.Server.HTTPAddr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func runHealth(ctx context.Context) error {
	_ = godotenv.Load()

	cfg, err := config.Load(getConfigPath())
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	addr := cfg.Server.HTTPAddr
	if strings.HasPrefix(addr, ":") {
		addr = "localhost" + addr
	}
	url := fmt.Sprintf("http://%s/healthz", addr)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unhealthy: status %d", resp.StatusCode)
	}

	fmt.Println("healthy")
	return nil
}

func runVoices() error {
	bold := color.New(color.Bold)
	gray := color.New(color.FgHiBlack)

	for _, name := range voice.Names() {
		v, _ := voice.Lookup(name)
		bold.Printf("%-12s", name)
		fmt.Printf(" %-8s", v.Gender)
		gray.Println(v.Personality)
	}
	return nil
}

func setupLogger(cfg config.LoggingConfig) *slog.Logger {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = &colorHandler{
			level: level,
		}
	}

	return slog.New(handler)
}

// colorHandler provides colorized log output with thread-safe writes.
type colorHandler struct {
	mu     sync.Mutex
	level  slog.Level
	attrs  []slog.Attr
	groups []string
}

func (h *colorHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level
}

func (h *colorHandler) Handle(_ context.Context, r slog.Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	var buf strings.Builder

	buf.WriteString(color.HiBlackString(r.Time.Format("15:04:05") + " "))

	switch r.Level {
	case slog.LevelDebug:
		buf.WriteString(color.MagentaString("DBG "))
	case slog.LevelInfo:
		buf.WriteString(color.CyanString("INF "))
	case slog.LevelWarn:
		buf.WriteString(color.YellowString("WRN "))
	case slog.LevelError:
		buf.WriteString(color.New(color.FgRed, color.Bold).Sprint("ERR "))
	default:
		buf.WriteString("??? ")
	}

	buf.WriteString(r.Message)

	for _, a := range h.attrs {
		buf.WriteString(color.HiBlackString(" " + a.Key + "="))
		buf.WriteString(a.Value.String())
	}

	r.Attrs(func(a slog.Attr) bool {
		buf.WriteString(color.HiBlackString(" " + a.Key + "="))
		buf.WriteString(a.Value.String())
		return true
	})

	buf.WriteString("\n")
	fmt.Print(buf.String())
	return nil
}

func (h *colorHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	newAttrs := make([]slog.Attr, len(h.attrs), len(h.attrs)+len(attrs))
	copy(newAttrs, h.attrs)
	newAttrs = append(newAttrs, attrs...)
	return &colorHandler{
		level:  h.level,
		attrs:  newAttrs,
		groups: h.groups,
	}
}

func (h *colorHandler) WithGroup(name string) slog.Handler {
	newGroups := make([]string, len(h.groups), len(h.groups)+1)
	copy(newGroups, h.groups)
	newGroups = append(newGroups, name)
	return &colorHandler{
		level:  h.level,
		attrs:  h.attrs,
		groups: newGroups,
	}
}
