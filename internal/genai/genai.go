// ABOUTME: Contracts for the external generative collaborators.
// ABOUTME: Persona generation, chat sessions, and speech synthesis are opaque API calls.

package genai

import (
	"context"
	"errors"

	"github.com/MostlyKIGuess/Talk-To-Anyone/internal/source"
)

// ErrUnknownProvider is returned when no provider is registered under a name.
var ErrUnknownProvider = errors.New("unknown provider")

// Reply is a chat session response: the text plus any citations the
// provider grounded it on.
type Reply struct {
	Text    string
	Sources []source.Source
}

// ChatSession is a stateful conversation handle conditioned on one
// persona's system prompt. A session is exclusively owned by the persona
// slot that created it and is discarded, never pooled, on reset.
type ChatSession interface {
	Send(ctx context.Context, text string) (*Reply, error)
}

// SpeechRequest carries everything a synthesis call needs.
type SpeechRequest struct {
	Text         string
	Voice        string // prebuilt voice identifier from the catalog
	StylePrompt  string // optional speaking-style instruction
	LanguageHint string // optional language display name, "" for auto
}

// Speaker assigns a voice to a named speaker in a dialogue synthesis call.
type Speaker struct {
	Name  string
	Voice string
}

// Client is a full generative provider: persona generation, chat session
// creation, and single-voice speech synthesis.
type Client interface {
	Name() string

	// GeneratePersona returns a system prompt for the named persona.
	GeneratePersona(ctx context.Context, personaName string) (string, error)

	// NewSession creates a fresh chat session conditioned on the prompt.
	NewSession(ctx context.Context, systemPrompt string) (ChatSession, error)

	// Synthesize returns WAV audio (PCM, mono, 24 kHz, 16-bit) for text.
	Synthesize(ctx context.Context, req SpeechRequest) ([]byte, error)
}

// DialogueSynthesizer is implemented by providers that can voice a whole
// multi-speaker transcript in one call.
type DialogueSynthesizer interface {
	SynthesizeDialogue(ctx context.Context, transcript string, speakers []Speaker) ([]byte, error)
}

// Options configures a provider at construction time.
type Options struct {
	APIKey   string
	Model    string // chat + persona generation model
	TTSModel string
	BaseURL  string // override for testing / proxies; "" for the provider default
}

// Factory builds a provider client from options.
type Factory func(Options) (Client, error)

var providers = make(map[string]Factory)

// Register installs a provider factory under a name. Called from provider
// package init functions.
func Register(name string, factory Factory) {
	providers[name] = factory
}

// New creates the named provider with the given options.
func New(name string, opts Options) (Client, error) {
	factory, ok := providers[name]
	if !ok {
		return nil, ErrUnknownProvider
	}
	return factory(opts)
}

// Providers returns the registered provider names.
func Providers() []string {
	names := make([]string, 0, len(providers))
	for name := range providers {
		names = append(names, name)
	}
	return names
}
