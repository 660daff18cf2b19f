// ABOUTME: Hand-written fakes for the conversation package's collaborators.
// ABOUTME: Scripted replies and call recording, no mocking framework.

package conversation

import (
	"context"
	"fmt"

	"github.com/MostlyKIGuess/Talk-To-Anyone/internal/genai"
)

type mockGenerator struct {
	prompt string
	err    error
	calls  []string
}

func (m *mockGenerator) GeneratePersona(_ context.Context, name string) (string, error) {
	m.calls = append(m.calls, name)
	if m.err != nil {
		return "", m.err
	}
	if m.prompt != "" {
		return m.prompt, nil
	}
	return "You are " + name + ".", nil
}

// mockSession replays scripted replies in order. When the script runs
// out it echoes the input.
type mockSession struct {
	replies  []*genai.Reply
	errs     []error
	received []string
}

func (m *mockSession) Send(_ context.Context, text string) (*genai.Reply, error) {
	i := len(m.received)
	m.received = append(m.received, text)
	if i < len(m.errs) && m.errs[i] != nil {
		return nil, m.errs[i]
	}
	if i < len(m.replies) {
		return m.replies[i], nil
	}
	return &genai.Reply{Text: "echo: " + text}, nil
}

type mockFactory struct {
	sessions []*mockSession
	failAt   int // 1-based call number that fails, 0 for never
	calls    int
	prompts  []string
}

func (m *mockFactory) NewSession(_ context.Context, systemPrompt string) (genai.ChatSession, error) {
	m.calls++
	m.prompts = append(m.prompts, systemPrompt)
	if m.failAt != 0 && m.calls == m.failAt {
		return nil, fmt.Errorf("session backend down")
	}
	if len(m.sessions) >= m.calls {
		return m.sessions[m.calls-1], nil
	}
	return &mockSession{}, nil
}

type mockSynth struct {
	wav   []byte
	err   error
	reqs  []genai.SpeechRequest
}

func (m *mockSynth) Synthesize(_ context.Context, req genai.SpeechRequest) ([]byte, error) {
	m.reqs = append(m.reqs, req)
	if m.err != nil {
		return nil, m.err
	}
	if m.wav != nil {
		return m.wav, nil
	}
	return []byte("RIFFfake"), nil
}

// startSingle builds a started single-persona state backed by the given
// session.
func startSingle(sess *mockSession) *State {
	s := New(VoiceSettings{PreferredLanguage: "English (US)"}, nil)
	_ = s.SetPersonaName(0, "Ada Lovelace")
	s.personas[0].Description = "You are Ada Lovelace."
	factory := &mockFactory{sessions: []*mockSession{sess}}
	if err := s.ConfirmAndStart(context.Background(), factory); err != nil {
		panic(err)
	}
	return s
}

// startRoom builds a started two-persona room backed by the given
// sessions.
func startRoom(a, b *mockSession) *State {
	s := New(VoiceSettings{PreferredLanguage: "English (US)"}, nil)
	s.SetMode(ModeRoom)
	_ = s.SetPersonaName(0, "Persona A")
	_ = s.SetPersonaName(1, "Persona B")
	s.personas[0].Description = "You are Persona A."
	s.personas[1].Description = "You are Persona B."
	factory := &mockFactory{sessions: []*mockSession{a, b}}
	if err := s.ConfirmAndStart(context.Background(), factory); err != nil {
		panic(err)
	}
	return s
}
