// ABOUTME: Terminal chat client for talk-to-anyone
// ABOUTME: Runs the conversation state machine in a readline loop, no browser needed

package main

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"golang.org/x/term"

	"github.com/MostlyKIGuess/Talk-To-Anyone/internal/config"
	"github.com/MostlyKIGuess/Talk-To-Anyone/internal/conversation"
	"github.com/MostlyKIGuess/Talk-To-Anyone/internal/genai"
	"github.com/MostlyKIGuess/Talk-To-Anyone/internal/snapshot"
	"github.com/MostlyKIGuess/Talk-To-Anyone/internal/voice"

	// Provider registration.
	_ "github.com/MostlyKIGuess/Talk-To-Anyone/internal/genai/gemini"
	_ "github.com/MostlyKIGuess/Talk-To-Anyone/internal/genai/openai"
)

func getConfigPath() string {
	if envPath := os.Getenv("TALK_CONFIG"); envPath != "" {
		return envPath
	}
	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "config.yaml"
		}
		configDir = filepath.Join(homeDir, ".config")
	}
	return filepath.Join(configDir, "talk-to-anyone", "config.yaml")
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	_ = godotenv.Load()

	cfg, err := config.Load(getConfigPath())
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// The TUI owns the terminal; keep logs quiet unless asked for.
	level := slog.LevelWarn
	if cfg.Logging.Level == "debug" {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	client, err := genai.New(cfg.Provider.Name, genai.Options{
		APIKey:   cfg.Provider.APIKey,
		Model:    cfg.Provider.Model,
		TTSModel: cfg.Provider.TTSModel,
		BaseURL:  cfg.Provider.BaseURL,
	})
	if err != nil {
		return fmt.Errorf("creating %s provider: %w", cfg.Provider.Name, err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	width := 80
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 && w < 120 {
		width = w
	}
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return fmt.Errorf("creating renderer: %w", err)
	}

	t := &tui{
		state: conversation.New(conversation.VoiceSettings{
			PreferredLanguage: cfg.Voice.PreferredLanguage,
		}, logger),
		client:   client,
		renderer: renderer,
		in:       bufio.NewScanner(os.Stdin),
	}
	return t.run(ctx)
}

type tui struct {
	state    *conversation.State
	client   genai.Client
	renderer *glamour.TermRenderer
	in       *bufio.Scanner
}

func (t *tui) run(ctx context.Context) error {
	cyan := color.New(color.FgCyan, color.Bold)
	cyan.Println("🎭 Talk To Anyone")
	fmt.Println()

	if err := t.setup(ctx); err != nil {
		return err
	}

	gray := color.New(color.FgHiBlack)
	gray.Println("Commands: /sources  /export  /new  /quit")
	fmt.Println()

	prompt := color.New(color.FgGreen, color.Bold)
	for {
		prompt.Print("you> ")
		line, ok := t.readLine(ctx)
		if !ok {
			return nil
		}
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "/") {
			done, err := t.command(ctx, line)
			if err != nil {
				color.Red("%v", err)
			}
			if done {
				return nil
			}
			continue
		}

		res, err := t.state.Send(ctx, line, nil)
		if err != nil {
			color.Red("%v", err)
			continue
		}
		t.printReply(res)
	}
}

// setup asks for a persona name, generates its prompt, and starts the chat.
func (t *tui) setup(ctx context.Context) error {
	prompt := color.New(color.FgGreen, color.Bold)
	for {
		prompt.Print("Who do you want to talk to? ")
		name, ok := t.readLine(ctx)
		if !ok {
			return fmt.Errorf("interrupted")
		}
		if name == "" {
			continue
		}
		if err := t.state.SetPersonaName(0, name); err != nil {
			return err
		}

		sugg := voice.Suggest(name)
		color.New(color.FgHiBlack).Printf("(voice: %s, %s)\n", sugg.Voice, sugg.Reason)
		if err := t.state.SetPersonaVoice(0, sugg.Voice, sugg.Style, ""); err != nil {
			return err
		}

		fmt.Print("Researching persona")
		stop := spinner()
		err := t.state.GeneratePersona(ctx, 0, t.client)
		stop()
		fmt.Println()
		if err != nil {
			color.Red("%v", err)
			continue
		}
		break
	}

	if err := t.state.ConfirmAndStart(ctx, t.client); err != nil {
		return err
	}
	p, _ := t.state.PersonaAt(0)
	color.New(color.FgCyan).Printf("Connected to %s. Say hello!\n\n", p.Name)
	return nil
}

func (t *tui) command(ctx context.Context, line string) (done bool, err error) {
	switch strings.Fields(line)[0] {
	case "/quit", "/exit":
		return true, nil
	case "/sources":
		sources := t.state.Ledger().AllSorted()
		if len(sources) == 0 {
			fmt.Println("No grounded sources yet.")
			return false, nil
		}
		for _, s := range sources {
			fmt.Printf("  • %s\n    %s\n", s.DisplayKey(), s.URI)
		}
		return false, nil
	case "/export":
		data, err := snapshot.Encode(snapshot.Capture(t.state))
		if err != nil {
			return false, err
		}
		name := snapshot.Filename(time.Now())
		if err := os.WriteFile(name, data, 0o644); err != nil {
			return false, err
		}
		fmt.Printf("Saved %s\n", name)
		return false, nil
	case "/new":
		t.state.Reset()
		fmt.Println()
		return false, t.setup(ctx)
	default:
		return false, fmt.Errorf("unknown command %q", line)
	}
}

func (t *tui) printReply(res *conversation.SendResult) {
	for _, w := range res.Warnings {
		color.Yellow("⚠ %s", w)
	}
	if res.Message == nil {
		return
	}

	color.New(color.FgMagenta, color.Bold).Printf("%s>\n", res.Message.Role)
	out, err := t.renderer.Render(res.Message.Text)
	if err != nil {
		fmt.Println(res.Message.Text)
	} else {
		fmt.Print(out)
	}
	if len(res.Message.Sources) > 0 {
		gray := color.New(color.FgHiBlack)
		for _, s := range res.Message.Sources {
			gray.Printf("  [%s] %s\n", s.DisplayKey(), s.URI)
		}
	}
}

func (t *tui) readLine(ctx context.Context) (string, bool) {
	lineCh := make(chan string, 1)
	go func() {
		if t.in.Scan() {
			lineCh <- t.in.Text()
			return
		}
		close(lineCh)
	}()
	select {
	case <-ctx.Done():
		return "", false
	case line, ok := <-lineCh:
		if !ok {
			return "", false
		}
		return strings.TrimSpace(line), true
	}
}

// spinner prints dots until the returned stop function is called.
func spinner() func() {
	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(500 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				fmt.Print(".")
			}
		}
	}()
	return func() { close(done) }
}
