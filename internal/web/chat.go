// ABOUTME: Chat-phase handlers: send, room turns, partials, audio delivery.
// ABOUTME: Warnings from the state machine surface as banner text, not errors.

package web

import (
	"net/http"

	"github.com/MostlyKIGuess/Talk-To-Anyone/internal/conversation"
	"github.com/MostlyKIGuess/Talk-To-Anyone/internal/genai"
)

func (a *App) handleSend(w http.ResponseWriter, r *http.Request) {
	a.mu.Lock()
	defer a.mu.Unlock()

	res, err := a.state.Send(r.Context(), r.FormValue("message"), a.client)
	if err != nil {
		a.renderChatPage(w, []string{err.Error()})
		return
	}
	a.renderChatPage(w, res.Warnings)
}

func (a *App) handleRoomSend(w http.ResponseWriter, r *http.Request) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if _, err := a.state.RoomSubmit(r.FormValue("message")); err != nil {
		a.renderChatPage(w, []string{err.Error()})
		return
	}
	a.renderChatPage(w, nil)
}

func (a *App) handleRoomRespond(w http.ResponseWriter, r *http.Request) {
	a.mu.Lock()
	defer a.mu.Unlock()

	slot, err := a.slotFromPath(r)
	if err != nil {
		a.renderChatPage(w, []string{err.Error()})
		return
	}
	res, err := a.state.RoomRespond(r.Context(), slot)
	if err != nil {
		a.renderChatPage(w, []string{err.Error()})
		return
	}
	a.renderChatPage(w, res.Warnings)
}

func (a *App) handleMessagesPartial(w http.ResponseWriter, _ *http.Request) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.renderMessagesPartial(w)
}

func (a *App) handleSourcesPartial(w http.ResponseWriter, _ *http.Request) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.renderSourcesPartial(w)
}

// handleAudio streams the synthesized WAV for one message.
func (a *App) handleAudio(w http.ResponseWriter, r *http.Request) {
	a.mu.Lock()
	defer a.mu.Unlock()

	id := r.PathValue("id")
	for _, msg := range a.state.Messages() {
		if msg.ID == id {
			if len(msg.Audio) == 0 {
				http.Error(w, "message has no audio", http.StatusNotFound)
				return
			}
			w.Header().Set("Content-Type", "audio/wav")
			w.Write(msg.Audio)
			return
		}
	}
	http.NotFound(w, r)
}

// handleVoicePreview synthesizes a short sample so a voice can be
// auditioned before the chat starts.
func (a *App) handleVoicePreview(w http.ResponseWriter, r *http.Request) {
	a.mu.Lock()
	defer a.mu.Unlock()

	req := genai.SpeechRequest{
		Text:        r.FormValue("text"),
		Voice:       r.FormValue("voice"),
		StylePrompt: r.FormValue("style"),
	}
	if req.Text == "" {
		req.Text = "Hello! This is how I sound."
	}

	wav, err := a.client.Synthesize(r.Context(), req)
	if err != nil {
		a.logger.Warn("voice preview failed", "voice", req.Voice, "error", err)
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}
	w.Header().Set("Content-Type", "audio/wav")
	w.Write(wav)
}

// handleRoomDialogue renders the whole room transcript as one
// multi-speaker audio clip. Requires a provider that supports dialogue
// synthesis.
func (a *App) handleRoomDialogue(w http.ResponseWriter, r *http.Request) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if !a.state.Started() || a.state.Mode() != conversation.ModeRoom {
		http.Error(w, "no room conversation to narrate", http.StatusBadRequest)
		return
	}

	ds, ok := a.client.(genai.DialogueSynthesizer)
	if !ok {
		http.Error(w, "provider does not support dialogue synthesis", http.StatusNotImplemented)
		return
	}

	personas := a.state.ActivePersonas()
	speakers := []genai.Speaker{
		{Name: conversation.RoleUser, Voice: "Charon"},
		{Name: personas[0].Name, Voice: personas[0].Voice},
		{Name: personas[1].Name, Voice: personas[1].Voice},
	}

	wav, err := ds.SynthesizeDialogue(r.Context(), a.state.Transcript(), speakers)
	if err != nil {
		a.logger.Warn("dialogue synthesis failed", "error", err)
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}
	w.Header().Set("Content-Type", "audio/wav")
	w.Write(wav)
}
