// ABOUTME: ConversationState aggregate: personas, message log, ledger, turn pointer.
// ABOUTME: All mutation flows through the methods here, one UI event at a time.

package conversation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/MostlyKIGuess/Talk-To-Anyone/internal/genai"
	"github.com/MostlyKIGuess/Talk-To-Anyone/internal/source"
	"github.com/MostlyKIGuess/Talk-To-Anyone/internal/voice"
)

// Sentinel errors for illegal state transitions.
var (
	ErrStarted       = errors.New("chat already started")
	ErrNotStarted    = errors.New("chat not started")
	ErrBadSlot       = errors.New("invalid persona slot")
	ErrNoName        = errors.New("persona has no name")
	ErrNoDescription = errors.New("persona has no description")
	ErrWrongMode     = errors.New("operation not valid in this chat mode")
	ErrNotEligible   = errors.New("persona is not eligible to respond")
)

// RoleUser is the role string for messages the human typed.
const RoleUser = "User"

// Mode selects between the two conversation shapes.
type Mode int

const (
	ModeSingle Mode = iota // one persona
	ModeRoom               // two personas, human-mediated turns
)

// Wire names for the modes, used in snapshots and the UI.
const (
	modeSingleName = "Single Persona Chat"
	modeRoomName   = "Persona Room"
)

func (m Mode) String() string {
	if m == ModeRoom {
		return modeRoomName
	}
	return modeSingleName
}

// Slots returns how many persona slots the mode uses.
func (m Mode) Slots() int {
	if m == ModeRoom {
		return 2
	}
	return 1
}

// ParseMode resolves a wire name back to a Mode.
func ParseMode(s string) (Mode, error) {
	switch s {
	case modeSingleName:
		return ModeSingle, nil
	case modeRoomName:
		return ModeRoom, nil
	default:
		return ModeSingle, fmt.Errorf("unknown chat mode %q", s)
	}
}

// Persona is a named character definition. The description is the system
// prompt produced by the persona generator; it is immutable once the chat
// has started.
type Persona struct {
	Name        string
	Description string // "" until generated
	Voice       string // catalog voice identifier
	VoiceStyle  string // free-text speaking style prompt
	Language    string // language display name, or voice.AutoLanguage
}

// Message is one entry in the append-only conversation log.
type Message struct {
	ID      string
	Role    string // RoleUser or a persona name
	Text    string
	Sources []source.Source
	Audio   []byte // WAV, nil when absent
}

// Turn is the room-mode turn-taking pointer.
type Turn struct {
	LastActor       string // RoleUser, a persona name, or "" for none
	LastMessageText string
	ActionsVisible  bool
}

// VoiceSettings controls speech synthesis for persona replies.
type VoiceSettings struct {
	Enabled           bool
	AutoPlay          bool
	PreferredLanguage string // language display name
}

// Narrow collaborator interfaces, defined on the consumer side.
// genai.Client satisfies all of them.

// PersonaGenerator produces a system prompt from a persona name.
type PersonaGenerator interface {
	GeneratePersona(ctx context.Context, personaName string) (string, error)
}

// SessionFactory creates chat sessions from a system prompt.
type SessionFactory interface {
	NewSession(ctx context.Context, systemPrompt string) (genai.ChatSession, error)
}

// Synthesizer renders text to WAV speech.
type Synthesizer interface {
	Synthesize(ctx context.Context, req genai.SpeechRequest) ([]byte, error)
}

// State is the conversation aggregate root. Create one per UI process via
// New and keep it until reset or replaced by an import. Not safe for
// concurrent use; callers serialize access.
type State struct {
	logger *slog.Logger

	mode     Mode
	personas [2]Persona
	sessions [2]genai.ChatSession
	messages []Message
	ledger   *source.Ledger
	started  bool
	turn     Turn
	voice    VoiceSettings

	// voiceDefaults survive Reset so "New Chat" keeps the configured
	// voice behavior.
	voiceDefaults VoiceSettings
}

// New creates an empty conversation state in single-persona mode.
func New(defaults VoiceSettings, logger *slog.Logger) *State {
	if logger == nil {
		logger = slog.Default()
	}
	s := &State{
		logger:        logger.With("component", "conversation"),
		ledger:        source.NewLedger(),
		voice:         defaults,
		voiceDefaults: defaults,
	}
	s.initPersonas()
	return s
}

func (s *State) initPersonas() {
	for i := range s.personas {
		s.personas[i] = Persona{
			Voice:    voice.DefaultVoice,
			Language: voice.AutoLanguage,
		}
	}
}

// Mode returns the current conversation mode.
func (s *State) Mode() Mode { return s.mode }

// Started reports whether sessions are confirmed and chat is live.
func (s *State) Started() bool { return s.started }

// Turn returns the room-mode turn pointer.
func (s *State) Turn() Turn { return s.turn }

// Voice returns the current voice settings.
func (s *State) Voice() VoiceSettings { return s.voice }

// SetVoice updates the voice settings. Allowed at any time; it only
// affects future synthesis.
func (s *State) SetVoice(v VoiceSettings) {
	if v.PreferredLanguage == "" {
		v.PreferredLanguage = s.voiceDefaults.PreferredLanguage
	}
	s.voice = v
}

// Messages returns a copy of the message log in chronological order.
func (s *State) Messages() []Message {
	out := make([]Message, len(s.messages))
	copy(out, s.messages)
	return out
}

// Ledger exposes the source ledger for rendering and export.
func (s *State) Ledger() *source.Ledger { return s.ledger }

// PersonaAt returns the persona in the given slot (0-based).
func (s *State) PersonaAt(slot int) (Persona, error) {
	if slot < 0 || slot >= s.mode.Slots() {
		return Persona{}, ErrBadSlot
	}
	return s.personas[slot], nil
}

// ActivePersonas returns the personas for every active slot.
func (s *State) ActivePersonas() []Persona {
	return append([]Persona(nil), s.personas[:s.mode.Slots()]...)
}

// SetMode switches the conversation mode. Changing mode invalidates the
// whole state: personas, sessions, messages, turn, and ledger are cleared.
func (s *State) SetMode(m Mode) {
	if m == s.mode {
		return
	}
	s.mode = m
	s.Reset()
	s.logger.Info("chat mode changed", "mode", m.String())
}

// Reset clears everything except the mode and the voice defaults.
// Sessions are discarded, never pooled.
func (s *State) Reset() {
	s.started = false
	s.messages = nil
	s.ledger = source.NewLedger()
	s.turn = Turn{}
	s.sessions = [2]genai.ChatSession{}
	s.initPersonas()
	s.voice = s.voiceDefaults
}

// SetPersonaName stores the name for a persona slot. Only allowed before
// the chat starts. Renaming clears any previously generated description.
func (s *State) SetPersonaName(slot int, name string) error {
	if s.started {
		return ErrStarted
	}
	if slot < 0 || slot >= s.mode.Slots() {
		return ErrBadSlot
	}
	if s.personas[slot].Name != name {
		s.personas[slot].Name = name
		s.personas[slot].Description = ""
	}
	return nil
}

// SetPersonaVoice configures the voice, speaking style, and language
// override for a persona slot. Only allowed before the chat starts.
func (s *State) SetPersonaVoice(slot int, voiceName, style, language string) error {
	if s.started {
		return ErrStarted
	}
	if slot < 0 || slot >= s.mode.Slots() {
		return ErrBadSlot
	}
	if voiceName != "" {
		if _, ok := voice.Lookup(voiceName); !ok {
			return fmt.Errorf("unknown voice %q", voiceName)
		}
		s.personas[slot].Voice = voiceName
	}
	s.personas[slot].VoiceStyle = style
	if language != "" {
		s.personas[slot].Language = language
	}
	return nil
}

// SetPersonaDescription stores a hand-written system prompt, bypassing
// generation. Used by developer mode. Only allowed before the chat
// starts.
func (s *State) SetPersonaDescription(slot int, desc string) error {
	if s.started {
		return ErrStarted
	}
	if slot < 0 || slot >= s.mode.Slots() {
		return ErrBadSlot
	}
	if desc == "" {
		return ErrNoDescription
	}
	s.personas[slot].Description = desc
	return nil
}

// GeneratePersona asks the external generator for a system prompt for the
// named persona. A failure leaves the description absent and is returned
// to the caller; it never aborts the whole state.
func (s *State) GeneratePersona(ctx context.Context, slot int, gen PersonaGenerator) error {
	if s.started {
		return ErrStarted
	}
	if slot < 0 || slot >= s.mode.Slots() {
		return ErrBadSlot
	}
	if s.personas[slot].Name == "" {
		return ErrNoName
	}

	desc, err := gen.GeneratePersona(ctx, s.personas[slot].Name)
	if err != nil {
		s.logger.Warn("persona generation failed",
			"persona", s.personas[slot].Name,
			"error", err)
		return fmt.Errorf("generating persona %q: %w", s.personas[slot].Name, err)
	}

	s.personas[slot].Description = desc
	s.logger.Info("persona generated", "persona", s.personas[slot].Name, "slot", slot)
	return nil
}

// ConfirmAndStart creates a chat session for every active persona and
// marks the conversation live. All-or-nothing: if any session creation
// fails, every session created so far is discarded and started stays
// false.
func (s *State) ConfirmAndStart(ctx context.Context, factory SessionFactory) error {
	if s.started {
		return ErrStarted
	}

	slots := s.mode.Slots()
	for i := 0; i < slots; i++ {
		if s.personas[i].Description == "" {
			return fmt.Errorf("slot %d: %w", i, ErrNoDescription)
		}
	}

	created := [2]genai.ChatSession{}
	for i := 0; i < slots; i++ {
		sess, err := factory.NewSession(ctx, s.personas[i].Description)
		if err != nil {
			// Discard partially created sessions rather than leaking them.
			created = [2]genai.ChatSession{}
			s.logger.Error("session creation failed",
				"persona", s.personas[i].Name,
				"error", err)
			return fmt.Errorf("creating session for %q: %w", s.personas[i].Name, err)
		}
		created[i] = sess
	}

	s.sessions = created
	s.started = true
	s.messages = nil
	s.ledger = source.NewLedger()
	s.turn = Turn{}

	s.logger.Info("chat started", "mode", s.mode.String(), "personas", slots)
	return nil
}

// appendMessage adds a message to the log with a fresh ID.
func (s *State) appendMessage(role, text string, sources []source.Source, audio []byte) *Message {
	msg := Message{
		ID:      uuid.New().String(),
		Role:    role,
		Text:    text,
		Sources: sources,
		Audio:   audio,
	}
	s.messages = append(s.messages, msg)
	return &s.messages[len(s.messages)-1]
}

// languageHint resolves the synthesis language for a persona: the
// per-persona override wins, then the global preferred language. The
// default language returns no hint at all.
func (s *State) languageHint(p Persona) string {
	lang := p.Language
	if lang == "" || lang == voice.AutoLanguage {
		lang = s.voice.PreferredLanguage
	}
	if lang == "English (US)" {
		return ""
	}
	return lang
}
