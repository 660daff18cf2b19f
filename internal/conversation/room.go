// ABOUTME: Persona room protocol: the human mediates which persona speaks next.
// ABOUTME: The turn arbiter's only rule: a persona never responds to itself.

package conversation

import (
	"context"
	"fmt"
	"strings"
)

// RoomSubmit appends a user message to the room and points the turn at
// it. The user may inject a message at any time, regardless of whose turn
// it conceptually is.
func (s *State) RoomSubmit(text string) (*Message, error) {
	if !s.started {
		return nil, ErrNotStarted
	}
	if s.mode != ModeRoom {
		return nil, ErrWrongMode
	}
	if text == "" {
		return nil, fmt.Errorf("empty message")
	}

	msg := s.appendMessage(RoleUser, text, nil, nil)
	s.turn = Turn{
		LastActor:       RoleUser,
		LastMessageText: text,
		ActionsVisible:  true,
	}
	return msg, nil
}

// EligibleResponders computes which persona slots may legally respond
// next. It is a pure read over the state: before any message exists
// nobody responds; after the user spoke both personas are eligible; after
// a persona spoke only the other one is.
func (s *State) EligibleResponders() []int {
	if !s.started || s.mode != ModeRoom || s.turn.LastActor == "" {
		return nil
	}
	if s.turn.LastActor == RoleUser {
		return []int{0, 1}
	}
	for i := 0; i < s.mode.Slots(); i++ {
		if s.personas[i].Name == s.turn.LastActor {
			return []int{1 - i}
		}
	}
	// Last actor unknown (renamed persona?); fall back to both.
	return []int{0, 1}
}

// RoomRespond lets the chosen persona answer the last message in the
// room. The persona receives only the last utterance; its own session
// keeps its private history. On failure or on an empty reply the turn
// pointer stays unchanged, so the previous actor remains the target.
func (s *State) RoomRespond(ctx context.Context, slot int) (*SendResult, error) {
	if !s.started {
		return nil, ErrNotStarted
	}
	if s.mode != ModeRoom {
		return nil, ErrWrongMode
	}
	if slot < 0 || slot >= s.mode.Slots() {
		return nil, ErrBadSlot
	}
	if !containsSlot(s.EligibleResponders(), slot) {
		return nil, fmt.Errorf("%w: %s just spoke", ErrNotEligible, s.personas[slot].Name)
	}
	if s.turn.LastMessageText == "" {
		return nil, fmt.Errorf("nothing to respond to")
	}

	persona := s.personas[slot]
	reply, err := s.sessions[slot].Send(ctx, s.turn.LastMessageText)
	if err != nil {
		s.logger.Warn("room response failed", "persona", persona.Name, "error", err)
		return nil, fmt.Errorf("error from %s: %w", persona.Name, err)
	}

	var replyText string
	if reply != nil {
		replyText = reply.Text
		s.ledger.Merge(reply.Sources)
	}

	if replyText == "" || replyText == fallbackReplyText {
		// Not an error: surface a warning and leave the turn unchanged so
		// the same message can be offered to the other persona.
		return &SendResult{
			Warnings: []string{fmt.Sprintf("%s did not provide a text response.", persona.Name)},
		}, nil
	}

	msg := s.appendMessage(persona.Name, replyText, reply.Sources, nil)
	s.turn = Turn{
		LastActor:       persona.Name,
		LastMessageText: replyText,
		ActionsVisible:  true,
	}
	return &SendResult{Message: msg}, nil
}

// Transcript renders the room log as "Name: text" lines for multi-speaker
// speech synthesis.
func (s *State) Transcript() string {
	var sb strings.Builder
	for _, msg := range s.messages {
		sb.WriteString(msg.Role)
		sb.WriteString(": ")
		sb.WriteString(msg.Text)
		sb.WriteString("\n")
	}
	return sb.String()
}

func containsSlot(slots []int, slot int) bool {
	for _, s := range slots {
		if s == slot {
			return true
		}
	}
	return false
}
