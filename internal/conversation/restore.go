// ABOUTME: Wholesale state replacement used by snapshot import.
// ABOUTME: Applies restored data, then re-creates live sessions per persona.

package conversation

import (
	"context"
	"fmt"

	"github.com/MostlyKIGuess/Talk-To-Anyone/internal/genai"
	"github.com/MostlyKIGuess/Talk-To-Anyone/internal/source"
	"github.com/MostlyKIGuess/Talk-To-Anyone/internal/voice"
)

// RestoreData is everything a snapshot carries that the state machine
// needs. Session handles are never restored; they are created fresh.
type RestoreData struct {
	Mode     Mode
	Personas []Persona // one per active slot
	Messages []Message
	Sources  []source.Source
	Voice    VoiceSettings
}

// RestoreResult reports non-fatal findings from a restore.
type RestoreResult struct {
	Warnings []string
}

// Restore replaces the whole conversation state with the given data and
// creates a chat session for every persona that has a description.
//
// Session creation is the only step that can fail. When it does, the
// state applied so far stays in place (the log and personas are already
// restored) but started remains false and any session created for an
// earlier slot is discarded rather than leaked.
func (s *State) Restore(ctx context.Context, data RestoreData, factory SessionFactory) (*RestoreResult, error) {
	res := &RestoreResult{}

	s.mode = data.Mode
	s.Reset()

	slots := s.mode.Slots()
	if len(data.Personas) < slots {
		return nil, fmt.Errorf("snapshot has %d personas, mode %q needs %d",
			len(data.Personas), s.mode.String(), slots)
	}

	for i := 0; i < slots; i++ {
		p := data.Personas[i]
		if p.Voice == "" {
			p.Voice = voice.DefaultVoice
		}
		if p.Language == "" {
			p.Language = voice.AutoLanguage
		}
		s.personas[i] = p
	}

	// Messages get fresh IDs; identity is not part of the snapshot.
	for _, msg := range data.Messages {
		s.appendMessage(msg.Role, msg.Text, msg.Sources, msg.Audio)
	}
	s.ledger.Merge(data.Sources)

	v := data.Voice
	if v.PreferredLanguage == "" {
		v.PreferredLanguage = s.voiceDefaults.PreferredLanguage
	}
	s.voice = v

	// Reconstruct the turn pointer from the tail of the log.
	if s.mode == ModeRoom && len(s.messages) > 0 {
		last := s.messages[len(s.messages)-1]
		s.turn = Turn{
			LastActor:       last.Role,
			LastMessageText: last.Text,
			ActionsVisible:  true,
		}
	}

	// Re-create sessions. A persona without a description cannot get one,
	// so the chat cannot start; that is a warning, not a failure.
	missing := false
	created := [2]genai.ChatSession{}
	for i := 0; i < slots; i++ {
		if s.personas[i].Description == "" {
			missing = true
			res.Warnings = append(res.Warnings,
				fmt.Sprintf("persona %q has no description; chat not started", s.personas[i].Name))
			continue
		}
		sess, err := factory.NewSession(ctx, s.personas[i].Description)
		if err != nil {
			created = [2]genai.ChatSession{}
			return nil, fmt.Errorf("creating session for %q: %w", s.personas[i].Name, err)
		}
		created[i] = sess
	}

	if missing {
		return res, nil
	}

	s.sessions = created
	s.started = true
	s.logger.Info("conversation restored",
		"mode", s.mode.String(),
		"messages", len(s.messages),
		"sources", s.ledger.Len())
	return res, nil
}
