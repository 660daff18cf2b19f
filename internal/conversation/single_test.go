// ABOUTME: Tests for the single-persona send path.
// ABOUTME: Rollback on failure, fallback text, voice synthesis behavior.

package conversation

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MostlyKIGuess/Talk-To-Anyone/internal/genai"
	"github.com/MostlyKIGuess/Talk-To-Anyone/internal/source"
)

func TestSendAppendsUserAndReply(t *testing.T) {
	sess := &mockSession{replies: []*genai.Reply{{Text: "Delighted to make your acquaintance."}}}
	s := startSingle(sess)

	res, err := s.Send(context.Background(), "Hello!", nil)
	require.NoError(t, err)
	require.NotNil(t, res.Message)

	msgs := s.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, RoleUser, msgs[0].Role)
	assert.Equal(t, "Hello!", msgs[0].Text)
	assert.Equal(t, "Ada Lovelace", msgs[1].Role)
	assert.Equal(t, "Delighted to make your acquaintance.", msgs[1].Text)
	assert.NotEqual(t, msgs[0].ID, msgs[1].ID)
	assert.Equal(t, []string{"Hello!"}, sess.received)
}

func TestSendErrorRollsBackUserMessage(t *testing.T) {
	sess := &mockSession{errs: []error{fmt.Errorf("network down")}}
	s := startSingle(sess)

	_, err := s.Send(context.Background(), "Hello!", nil)
	require.Error(t, err)
	assert.ErrorContains(t, err, "Ada Lovelace")

	assert.Empty(t, s.Messages(), "failed exchange leaves no orphaned user turn")
	assert.True(t, s.Started(), "failure does not end the chat")
}

func TestSendRetryAfterFailure(t *testing.T) {
	sess := &mockSession{
		errs:    []error{fmt.Errorf("transient")},
		replies: []*genai.Reply{nil, {Text: "Second time lucky."}},
	}
	s := startSingle(sess)

	_, err := s.Send(context.Background(), "Hello!", nil)
	require.Error(t, err)

	res, err := s.Send(context.Background(), "Hello!", nil)
	require.NoError(t, err)
	assert.Equal(t, "Second time lucky.", res.Message.Text)
	assert.Len(t, s.Messages(), 2)
}

func TestSendNilReplyRollsBack(t *testing.T) {
	sess := &mockSession{replies: []*genai.Reply{nil}}
	s := startSingle(sess)

	_, err := s.Send(context.Background(), "Hello!", nil)
	require.Error(t, err)
	assert.Empty(t, s.Messages())
}

func TestSendEmptyReplyGetsFallbackText(t *testing.T) {
	sess := &mockSession{replies: []*genai.Reply{{Text: ""}}}
	s := startSingle(sess)

	res, err := s.Send(context.Background(), "Hello!", nil)
	require.NoError(t, err)

	msgs := s.Messages()
	require.Len(t, msgs, 2, "user message is kept, not rolled back")
	assert.Equal(t, "No text in response.", msgs[1].Text)
	assert.Equal(t, "No text in response.", res.Message.Text)
}

func TestSendFallbackTextNeverSynthesized(t *testing.T) {
	sess := &mockSession{replies: []*genai.Reply{{Text: ""}}}
	s := startSingle(sess)
	s.SetVoice(VoiceSettings{Enabled: true, PreferredLanguage: "English (US)"})

	synth := &mockSynth{}
	res, err := s.Send(context.Background(), "Hello!", synth)
	require.NoError(t, err)

	assert.Empty(t, synth.reqs, "fallback text must not be voiced")
	assert.Nil(t, res.Message.Audio)
}

func TestSendEmptyTextRejected(t *testing.T) {
	s := startSingle(&mockSession{})
	_, err := s.Send(context.Background(), "", nil)
	assert.Error(t, err)
	assert.Empty(t, s.Messages())
}

func TestSendWrongMode(t *testing.T) {
	s := startRoom(&mockSession{}, &mockSession{})
	_, err := s.Send(context.Background(), "Hello!", nil)
	assert.ErrorIs(t, err, ErrWrongMode)
}

func TestSendMergesSourcesIntoLedger(t *testing.T) {
	sess := &mockSession{replies: []*genai.Reply{
		{Text: "First.", Sources: []source.Source{
			{URI: "https://example.com/a", Title: "Article A"},
			{URI: "https://example.com/b", Title: "Article B"},
		}},
		{Text: "Second.", Sources: []source.Source{
			{URI: "https://example.com/a", Title: "Different Title"},
			{URI: "https://example.com/c", Title: "Article C"},
		}},
	}}
	s := startSingle(sess)

	_, err := s.Send(context.Background(), "one", nil)
	require.NoError(t, err)
	_, err = s.Send(context.Background(), "two", nil)
	require.NoError(t, err)

	all := s.Ledger().All()
	require.Len(t, all, 3)
	assert.True(t, s.Ledger().Contains("https://example.com/a"))
	// First title recorded for a URI wins.
	for _, src := range all {
		if src.URI == "https://example.com/a" {
			assert.Equal(t, "Article A", src.Title)
		}
	}
}

func TestSendSynthesizesWhenVoiceEnabled(t *testing.T) {
	sess := &mockSession{replies: []*genai.Reply{{Text: "Good day."}}}
	s := New(VoiceSettings{PreferredLanguage: "English (US)"}, nil)
	require.NoError(t, s.SetPersonaName(0, "Ada Lovelace"))
	require.NoError(t, s.SetPersonaVoice(0, "Kore", "Speak with authority", ""))
	s.personas[0].Description = "You are Ada Lovelace."
	require.NoError(t, s.ConfirmAndStart(context.Background(), &mockFactory{sessions: []*mockSession{sess}}))
	// Voice settings can change after start.
	s.SetVoice(VoiceSettings{Enabled: true, AutoPlay: true, PreferredLanguage: "English (US)"})

	synth := &mockSynth{wav: []byte("RIFFwav")}
	res, err := s.Send(context.Background(), "Hello!", synth)
	require.NoError(t, err)

	require.Len(t, synth.reqs, 1)
	assert.Equal(t, "Good day.", synth.reqs[0].Text)
	assert.Equal(t, "Kore", synth.reqs[0].Voice)
	assert.Equal(t, "Speak with authority", synth.reqs[0].StylePrompt)
	assert.Empty(t, synth.reqs[0].LanguageHint, "default language sends no hint")
	assert.Equal(t, []byte("RIFFwav"), res.Message.Audio)
}

func TestSendSynthesisFailureIsWarningOnly(t *testing.T) {
	sess := &mockSession{replies: []*genai.Reply{{Text: "Good day."}}}
	s := startSingle(sess)
	s.SetVoice(VoiceSettings{Enabled: true, PreferredLanguage: "English (US)"})

	synth := &mockSynth{err: fmt.Errorf("tts quota exceeded")}
	res, err := s.Send(context.Background(), "Hello!", synth)
	require.NoError(t, err, "reply stands even when voice fails")

	assert.Equal(t, "Good day.", res.Message.Text)
	assert.Nil(t, res.Message.Audio)
	require.Len(t, res.Warnings, 1)
	assert.Contains(t, res.Warnings[0], "voice generation failed")
}

func TestSendVoiceDisabledSkipsSynth(t *testing.T) {
	sess := &mockSession{replies: []*genai.Reply{{Text: "Good day."}}}
	s := startSingle(sess)

	synth := &mockSynth{}
	_, err := s.Send(context.Background(), "Hello!", synth)
	require.NoError(t, err)
	assert.Empty(t, synth.reqs)
}

func TestLanguageHintPersonaOverrideWins(t *testing.T) {
	sess := &mockSession{replies: []*genai.Reply{{Text: "Bonjour."}}}
	s := New(VoiceSettings{PreferredLanguage: "English (US)"}, nil)
	require.NoError(t, s.SetPersonaName(0, "Ada Lovelace"))
	require.NoError(t, s.SetPersonaVoice(0, "", "", "French"))
	s.personas[0].Description = "You are Ada Lovelace."
	require.NoError(t, s.ConfirmAndStart(context.Background(), &mockFactory{sessions: []*mockSession{sess}}))
	s.SetVoice(VoiceSettings{Enabled: true, PreferredLanguage: "Hindi"})

	synth := &mockSynth{}
	_, err := s.Send(context.Background(), "Salut!", synth)
	require.NoError(t, err)
	require.Len(t, synth.reqs, 1)
	assert.Equal(t, "French", synth.reqs[0].LanguageHint)
}
