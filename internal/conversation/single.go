// ABOUTME: Single-persona chat: optimistic user append with rollback on failure.
// ABOUTME: The log never keeps an orphaned user turn with no reply.

package conversation

import (
	"context"
	"fmt"

	"github.com/MostlyKIGuess/Talk-To-Anyone/internal/genai"
)

// fallbackReplyText is appended when the provider responded but carried
// no text. It is a valid message, not an error, and is never voiced.
const fallbackReplyText = "No text in response."

// SendResult is the outcome of a successful persona reply.
type SendResult struct {
	Message  *Message
	Warnings []string
}

// Send handles one single-persona exchange: the user message is appended
// optimistically, the session is called, and on any failure the dangling
// user entry is rolled back (at most once, and only while it is still the
// last entry). On success the persona reply is appended with its sources
// merged into the ledger and, when voice is enabled, synthesized audio.
func (s *State) Send(ctx context.Context, text string, synth Synthesizer) (*SendResult, error) {
	if !s.started {
		return nil, ErrNotStarted
	}
	if s.mode != ModeSingle {
		return nil, ErrWrongMode
	}
	if text == "" {
		return nil, fmt.Errorf("empty message")
	}

	persona := s.personas[0]
	userMsg := s.appendMessage(RoleUser, text, nil, nil)

	reply, err := s.sessions[0].Send(ctx, text)
	if err != nil {
		s.rollbackUserMessage(userMsg.ID)
		s.logger.Warn("send failed", "persona", persona.Name, "error", err)
		return nil, fmt.Errorf("getting response from %s: %w", persona.Name, err)
	}
	if reply == nil {
		s.rollbackUserMessage(userMsg.ID)
		return nil, fmt.Errorf("received no response from %s", persona.Name)
	}

	replyText := reply.Text
	if replyText == "" {
		replyText = fallbackReplyText
	}

	s.ledger.Merge(reply.Sources)

	var warnings []string
	var wav []byte
	if s.voice.Enabled && replyText != fallbackReplyText && synth != nil {
		wav, err = synth.Synthesize(ctx, genai.SpeechRequest{
			Text:         replyText,
			Voice:        persona.Voice,
			StylePrompt:  persona.VoiceStyle,
			LanguageHint: s.languageHint(persona),
		})
		if err != nil {
			// Voice is best-effort; the reply itself stands.
			warnings = append(warnings, fmt.Sprintf("voice generation failed: %v", err))
			s.logger.Warn("voice synthesis failed", "persona", persona.Name, "error", err)
			wav = nil
		}
	}

	msg := s.appendMessage(persona.Name, replyText, reply.Sources, wav)
	return &SendResult{Message: msg, Warnings: warnings}, nil
}

// rollbackUserMessage removes the optimistically appended user message,
// but only if it is still the last entry in the log.
func (s *State) rollbackUserMessage(id string) {
	if len(s.messages) == 0 {
		return
	}
	last := s.messages[len(s.messages)-1]
	if last.ID == id && last.Role == RoleUser {
		s.messages = s.messages[:len(s.messages)-1]
	}
}
