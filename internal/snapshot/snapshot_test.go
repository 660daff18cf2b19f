// ABOUTME: Tests for the export/import codec.
// ABOUTME: Wire shape, round-trip, and tolerant audio decoding.

package snapshot

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MostlyKIGuess/Talk-To-Anyone/internal/conversation"
	"github.com/MostlyKIGuess/Talk-To-Anyone/internal/genai"
	"github.com/MostlyKIGuess/Talk-To-Anyone/internal/source"
)

type stubSession struct{ replies []*genai.Reply }

func (s *stubSession) Send(_ context.Context, text string) (*genai.Reply, error) {
	if len(s.replies) == 0 {
		return &genai.Reply{Text: "echo: " + text}, nil
	}
	r := s.replies[0]
	s.replies = s.replies[1:]
	return r, nil
}

type stubFactory struct {
	fail    bool
	prompts []string
}

func (f *stubFactory) NewSession(_ context.Context, prompt string) (genai.ChatSession, error) {
	f.prompts = append(f.prompts, prompt)
	if f.fail {
		return nil, fmt.Errorf("backend down")
	}
	return &stubSession{}, nil
}

func startedState(t *testing.T) *conversation.State {
	t.Helper()
	s := conversation.New(conversation.VoiceSettings{PreferredLanguage: "English (US)"}, nil)
	require.NoError(t, s.SetPersonaName(0, "Ada Lovelace"))
	gen := &stubGenerator{}
	require.NoError(t, s.GeneratePersona(context.Background(), 0, gen))
	sess := &stubSession{replies: []*genai.Reply{{
		Text:    "Delighted.",
		Sources: []source.Source{{URI: "https://example.com/a", Title: "Article A"}},
	}}}
	require.NoError(t, s.ConfirmAndStart(context.Background(), &sessionFactory{sess: sess}))
	_, err := s.Send(context.Background(), "Hello!", nil)
	require.NoError(t, err)
	return s
}

type stubGenerator struct{}

func (stubGenerator) GeneratePersona(_ context.Context, name string) (string, error) {
	return "You are " + name + ".", nil
}

type sessionFactory struct{ sess genai.ChatSession }

func (f *sessionFactory) NewSession(context.Context, string) (genai.ChatSession, error) {
	return f.sess, nil
}

func TestCaptureWireShape(t *testing.T) {
	s := startedState(t)
	s.SetVoice(conversation.VoiceSettings{Enabled: true, AutoPlay: true, PreferredLanguage: "English (US)"})

	data, err := Encode(Capture(s))
	require.NoError(t, err)

	var raw map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &raw))
	for _, key := range []string{"timestamp", "chat_mode", "messages", "sources", "voice_settings", "persona_data"} {
		assert.Contains(t, raw, key)
	}

	var mode string
	require.NoError(t, json.Unmarshal(raw["chat_mode"], &mode))
	assert.Equal(t, "Single Persona Chat", mode)

	var ts float64
	require.NoError(t, json.Unmarshal(raw["timestamp"], &ts))
	assert.Greater(t, ts, 1.7e9)

	var vs map[string]bool
	require.NoError(t, json.Unmarshal(raw["voice_settings"], &vs))
	assert.Equal(t, map[string]bool{"voice_enabled": true, "auto_play_voice": true}, vs)

	var pd map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(raw["persona_data"], &pd))
	assert.Contains(t, pd, "persona_1")
	assert.NotContains(t, pd, "persona_2", "persona_2 only present in room mode")
}

func TestCaptureMessageAudioBase64(t *testing.T) {
	s := startedState(t)

	snap := Capture(s)
	require.Len(t, snap.Messages, 2)
	assert.Nil(t, snap.Messages[0].AudioData)
	assert.Equal(t, "Hello!", snap.Messages[0].Text)
	assert.Equal(t, "User", snap.Messages[0].Role)
	require.Len(t, snap.Messages[1].Sources, 1)
	assert.Equal(t, "https://example.com/a", snap.Messages[1].Sources[0].URI)
}

func TestRoundTrip(t *testing.T) {
	s := startedState(t)
	snap := Capture(s)
	data, err := Encode(snap)
	require.NoError(t, err)

	decoded, err := Decode(data)
	require.NoError(t, err)

	fresh := conversation.New(conversation.VoiceSettings{PreferredLanguage: "English (US)"}, nil)
	res, err := Apply(context.Background(), fresh, decoded, &stubFactory{})
	require.NoError(t, err)
	assert.Empty(t, res.Warnings)

	assert.True(t, fresh.Started())
	assert.Equal(t, s.Mode(), fresh.Mode())

	want, got := s.Messages(), fresh.Messages()
	require.Equal(t, len(want), len(got))
	for i := range want {
		assert.Equal(t, want[i].Role, got[i].Role)
		assert.Equal(t, want[i].Text, got[i].Text)
		assert.Equal(t, want[i].Sources, got[i].Sources)
	}
	assert.Equal(t, s.Ledger().All(), fresh.Ledger().All())

	p, err := fresh.PersonaAt(0)
	require.NoError(t, err)
	assert.Equal(t, "Ada Lovelace", p.Name)
	assert.Equal(t, "You are Ada Lovelace.", p.Description)
}

func TestApplyBadAudioBecomesWarning(t *testing.T) {
	good := base64.StdEncoding.EncodeToString([]byte("RIFFwav"))
	bad := "%%%not-base64%%%"
	snap := &Snapshot{
		ChatMode: "Single Persona Chat",
		Messages: []MessageRecord{
			{Role: "User", Text: "Hello!"},
			{Role: "Ada Lovelace", Text: "Good day.", AudioData: &bad},
			{Role: "User", Text: "Again?"},
			{Role: "Ada Lovelace", Text: "Certainly.", AudioData: &good},
		},
		PersonaData: PersonaData{Persona1: personaRecordFixture()},
	}

	fresh := conversation.New(conversation.VoiceSettings{}, nil)
	res, err := Apply(context.Background(), fresh, snap, &stubFactory{})
	require.NoError(t, err, "bad audio never fails the import")

	require.Len(t, res.Warnings, 1)
	assert.Contains(t, res.Warnings[0], "message 2")

	msgs := fresh.Messages()
	require.Len(t, msgs, 4)
	assert.Nil(t, msgs[1].Audio)
	assert.Equal(t, []byte("RIFFwav"), msgs[3].Audio)
	assert.True(t, fresh.Started())
}

func TestApplyRoomRequiresPersona2(t *testing.T) {
	snap := &Snapshot{
		ChatMode:    "Persona Room",
		PersonaData: PersonaData{Persona1: personaRecordFixture()},
	}
	fresh := conversation.New(conversation.VoiceSettings{}, nil)
	_, err := Apply(context.Background(), fresh, snap, &stubFactory{})
	assert.ErrorContains(t, err, "persona_2")
}

func TestApplySessionFailureReturnsError(t *testing.T) {
	snap := &Snapshot{
		ChatMode:    "Single Persona Chat",
		PersonaData: PersonaData{Persona1: personaRecordFixture()},
	}
	fresh := conversation.New(conversation.VoiceSettings{}, nil)
	_, err := Apply(context.Background(), fresh, snap, &stubFactory{fail: true})
	require.Error(t, err)
	assert.False(t, fresh.Started())
}

func TestApplyPersonaWithoutDescription(t *testing.T) {
	rec := personaRecordFixture()
	rec.Description = nil
	snap := &Snapshot{
		ChatMode:    "Single Persona Chat",
		PersonaData: PersonaData{Persona1: rec},
	}

	fresh := conversation.New(conversation.VoiceSettings{}, nil)
	factory := &stubFactory{}
	res, err := Apply(context.Background(), fresh, snap, factory)
	require.NoError(t, err)
	require.Len(t, res.Warnings, 1)
	assert.False(t, fresh.Started())
	assert.Empty(t, factory.prompts)
}

func TestDecodeRejectsUnknownMode(t *testing.T) {
	_, err := Decode([]byte(`{"chat_mode": "Group Chat"}`))
	assert.Error(t, err)
}

func TestDecodeRejectsMalformedJSON(t *testing.T) {
	_, err := Decode([]byte(`{not json`))
	assert.Error(t, err)
}

func TestFilename(t *testing.T) {
	at := time.Date(2026, 8, 28, 10, 30, 0, 0, time.UTC)
	assert.Equal(t, "chat_export_20260828_103000.json", Filename(at))
}

func personaRecordFixture() PersonaRecord {
	desc := "You are Ada Lovelace."
	return PersonaRecord{
		Name:        "Ada Lovelace",
		Description: &desc,
		Voice:       "Zephyr",
	}
}
