// ABOUTME: HTTP app for persona chat: routes, locking, setup handlers.
// ABOUTME: Every handler serializes on one mutex around the conversation state.

package web

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"sync"

	"github.com/MostlyKIGuess/Talk-To-Anyone/internal/conversation"
	"github.com/MostlyKIGuess/Talk-To-Anyone/internal/genai"
	"github.com/MostlyKIGuess/Talk-To-Anyone/internal/voice"
)

// Config holds web UI configuration.
type Config struct {
	// DevMode enables hand-edited persona descriptions and prompt
	// inspection on the chat page.
	DevMode bool
}

// App handles the persona chat UI routes.
type App struct {
	mu     sync.Mutex
	state  *conversation.State
	client genai.Client
	config Config
	logger *slog.Logger
}

// New creates the web app around an existing conversation state.
func New(state *conversation.State, client genai.Client, cfg Config) *App {
	return &App{
		state:  state,
		client: client,
		config: cfg,
		logger: slog.Default().With("component", "web"),
	}
}

// RegisterRoutes registers all UI routes on the given mux.
func (a *App) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", a.handleIndex)
	mux.HandleFunc("GET /healthz", a.handleHealthz)

	// Setup
	mux.HandleFunc("POST /mode", a.handleSetMode)
	mux.HandleFunc("POST /personas/{slot}/name", a.handlePersonaName)
	mux.HandleFunc("POST /personas/{slot}/voice", a.handlePersonaVoice)
	mux.HandleFunc("POST /personas/{slot}/generate", a.handlePersonaGenerate)
	mux.HandleFunc("GET /personas/{slot}/suggestion", a.handleVoiceSuggestion)
	mux.HandleFunc("POST /confirm", a.handleConfirm)

	// Chat
	mux.HandleFunc("POST /chat/send", a.handleSend)
	mux.HandleFunc("POST /room/send", a.handleRoomSend)
	mux.HandleFunc("POST /room/respond/{slot}", a.handleRoomRespond)
	mux.HandleFunc("GET /chat/messages", a.handleMessagesPartial)
	mux.HandleFunc("GET /chat/sources", a.handleSourcesPartial)
	mux.HandleFunc("GET /audio/{id}", a.handleAudio)

	// Voice
	mux.HandleFunc("POST /voice/settings", a.handleVoiceSettings)
	mux.HandleFunc("POST /voice/preview", a.handleVoicePreview)
	mux.HandleFunc("POST /room/dialogue", a.handleRoomDialogue)

	// Transfer
	mux.HandleFunc("GET /export", a.handleExport)
	mux.HandleFunc("POST /import", a.handleImport)
	mux.HandleFunc("POST /reset", a.handleReset)

	a.logger.Info("web routes registered", "dev_mode", a.config.DevMode)
}

// handleIndex renders setup or chat depending on whether the
// conversation has started.
func (a *App) handleIndex(w http.ResponseWriter, r *http.Request) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.state.Started() {
		a.renderChatPage(w, nil)
		return
	}
	a.renderSetupPage(w, "", nil)
}

func (a *App) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprintln(w, "ok")
}

// slotFromPath parses the {slot} path value against the current mode.
func (a *App) slotFromPath(r *http.Request) (int, error) {
	slot, err := strconv.Atoi(r.PathValue("slot"))
	if err != nil {
		return 0, fmt.Errorf("bad persona slot %q", r.PathValue("slot"))
	}
	if slot < 0 || slot >= a.state.Mode().Slots() {
		return 0, conversation.ErrBadSlot
	}
	return slot, nil
}

func (a *App) handleSetMode(w http.ResponseWriter, r *http.Request) {
	a.mu.Lock()
	defer a.mu.Unlock()

	mode, err := conversation.ParseMode(r.FormValue("mode"))
	if err != nil {
		a.renderSetupPage(w, err.Error(), nil)
		return
	}
	a.state.SetMode(mode)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (a *App) handlePersonaName(w http.ResponseWriter, r *http.Request) {
	a.mu.Lock()
	defer a.mu.Unlock()

	slot, err := a.slotFromPath(r)
	if err != nil {
		a.renderSetupPage(w, err.Error(), nil)
		return
	}
	if err := a.state.SetPersonaName(slot, r.FormValue("name")); err != nil {
		a.renderSetupPage(w, err.Error(), nil)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (a *App) handlePersonaVoice(w http.ResponseWriter, r *http.Request) {
	a.mu.Lock()
	defer a.mu.Unlock()

	slot, err := a.slotFromPath(r)
	if err != nil {
		a.renderSetupPage(w, err.Error(), nil)
		return
	}
	err = a.state.SetPersonaVoice(slot,
		r.FormValue("voice"),
		r.FormValue("style"),
		r.FormValue("language"))
	if err != nil {
		a.renderSetupPage(w, err.Error(), nil)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// handlePersonaGenerate asks the provider for a system prompt. In dev
// mode a non-empty "description" form field bypasses generation.
func (a *App) handlePersonaGenerate(w http.ResponseWriter, r *http.Request) {
	a.mu.Lock()
	defer a.mu.Unlock()

	slot, err := a.slotFromPath(r)
	if err != nil {
		a.renderSetupPage(w, err.Error(), nil)
		return
	}

	if a.config.DevMode {
		if desc := r.FormValue("description"); desc != "" {
			if err := a.state.SetPersonaDescription(slot, desc); err != nil {
				a.renderSetupPage(w, err.Error(), nil)
				return
			}
			http.Redirect(w, r, "/", http.StatusSeeOther)
			return
		}
	}

	if err := a.state.GeneratePersona(r.Context(), slot, a.client); err != nil {
		a.renderSetupPage(w, err.Error(), nil)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// handleVoiceSuggestion returns the smart voice suggestion partial for
// the persona's current description.
func (a *App) handleVoiceSuggestion(w http.ResponseWriter, r *http.Request) {
	a.mu.Lock()
	defer a.mu.Unlock()

	slot, err := a.slotFromPath(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	p, err := a.state.PersonaAt(slot)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	sugg := voice.Suggest(p.Name + " " + p.Description)
	a.renderSuggestionPartial(w, slot, sugg)
}

func (a *App) handleConfirm(w http.ResponseWriter, r *http.Request) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.state.ConfirmAndStart(r.Context(), a.client); err != nil {
		a.renderSetupPage(w, err.Error(), nil)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (a *App) handleVoiceSettings(w http.ResponseWriter, r *http.Request) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.state.SetVoice(conversation.VoiceSettings{
		Enabled:           r.FormValue("voice_enabled") == "on",
		AutoPlay:          r.FormValue("auto_play_voice") == "on",
		PreferredLanguage: r.FormValue("language"),
	})
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (a *App) handleReset(w http.ResponseWriter, r *http.Request) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.state.Reset()
	a.logger.Info("conversation reset")
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
