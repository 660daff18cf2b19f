// ABOUTME: Snapshot codec: conversation state to/from the JSON export format.
// ABOUTME: Capture builds the wire form, Apply restores it through Restore.

// Package snapshot implements the chat export/import file format.
//
// The wire format is a single JSON object with a float unix timestamp,
// the chat mode name, the message log (audio as base64), the source
// ledger, voice settings, and the persona records keyed persona_1 and
// persona_2. Timestamps are advisory metadata; live session handles are
// never serialized and are re-created on import.
package snapshot

import (
	"context"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/bytedance/sonic"

	"github.com/MostlyKIGuess/Talk-To-Anyone/internal/conversation"
	"github.com/MostlyKIGuess/Talk-To-Anyone/internal/source"
)

// Snapshot is the top-level export object.
type Snapshot struct {
	Timestamp     float64             `json:"timestamp"`
	ChatMode      string              `json:"chat_mode"`
	Messages      []MessageRecord     `json:"messages"`
	Sources       []SourceRecord      `json:"sources"`
	VoiceSettings VoiceSettingsRecord `json:"voice_settings"`
	PersonaData   PersonaData         `json:"persona_data"`
}

// MessageRecord is one log entry on the wire. AudioData is base64 WAV
// or null.
type MessageRecord struct {
	Role      string         `json:"role"`
	Text      string         `json:"text"`
	Sources   []SourceRecord `json:"sources"`
	AudioData *string        `json:"audio_data"`
}

// SourceRecord is a grounding citation on the wire.
type SourceRecord struct {
	URI   string `json:"uri"`
	Title string `json:"title"`
}

// VoiceSettingsRecord carries the voice toggles.
type VoiceSettingsRecord struct {
	VoiceEnabled  bool `json:"voice_enabled"`
	AutoPlayVoice bool `json:"auto_play_voice"`
}

// PersonaData holds the persona records. Persona2 is present only in
// room mode.
type PersonaData struct {
	Persona1 PersonaRecord  `json:"persona_1"`
	Persona2 *PersonaRecord `json:"persona_2,omitempty"`
}

// PersonaRecord is one persona on the wire. Description is null until
// generated.
type PersonaRecord struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
	Voice       string  `json:"voice"`
	VoiceStyle  string  `json:"voice_style"`
}

// Capture serializes the conversation state into a snapshot stamped
// with the current time.
func Capture(state *conversation.State) *Snapshot {
	snap := &Snapshot{
		Timestamp: float64(time.Now().UnixNano()) / 1e9,
		ChatMode:  state.Mode().String(),
		Messages:  []MessageRecord{},
		Sources:   []SourceRecord{},
	}

	for _, msg := range state.Messages() {
		rec := MessageRecord{
			Role:    msg.Role,
			Text:    msg.Text,
			Sources: toSourceRecords(msg.Sources),
		}
		if len(msg.Audio) > 0 {
			enc := base64.StdEncoding.EncodeToString(msg.Audio)
			rec.AudioData = &enc
		}
		snap.Messages = append(snap.Messages, rec)
	}

	snap.Sources = toSourceRecords(state.Ledger().All())

	v := state.Voice()
	snap.VoiceSettings = VoiceSettingsRecord{
		VoiceEnabled:  v.Enabled,
		AutoPlayVoice: v.AutoPlay,
	}

	personas := state.ActivePersonas()
	snap.PersonaData.Persona1 = toPersonaRecord(personas[0])
	if len(personas) > 1 {
		p2 := toPersonaRecord(personas[1])
		snap.PersonaData.Persona2 = &p2
	}
	return snap
}

// Encode renders the snapshot as indented JSON for download.
func Encode(snap *Snapshot) ([]byte, error) {
	return sonic.ConfigDefault.MarshalIndent(snap, "", "  ")
}

// Decode parses snapshot JSON. Structural errors (malformed JSON, an
// unknown chat mode) fail here; per-message problems are deferred to
// Apply.
func Decode(data []byte) (*Snapshot, error) {
	var snap Snapshot
	if err := sonic.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("parsing snapshot: %w", err)
	}
	if _, err := conversation.ParseMode(snap.ChatMode); err != nil {
		return nil, err
	}
	return &snap, nil
}

// ApplyResult reports non-fatal findings from an import.
type ApplyResult struct {
	Warnings []string
}

// Apply restores the snapshot into the conversation state and
// re-creates chat sessions through the factory. A message whose
// audio_data fails base64 decoding loses its audio with a warning; the
// rest of the import continues.
func Apply(ctx context.Context, state *conversation.State, snap *Snapshot, factory conversation.SessionFactory) (*ApplyResult, error) {
	mode, err := conversation.ParseMode(snap.ChatMode)
	if err != nil {
		return nil, err
	}

	res := &ApplyResult{}

	data := conversation.RestoreData{
		Mode:    mode,
		Sources: fromSourceRecords(snap.Sources),
		Voice: conversation.VoiceSettings{
			Enabled:  snap.VoiceSettings.VoiceEnabled,
			AutoPlay: snap.VoiceSettings.AutoPlayVoice,
		},
	}

	for i, rec := range snap.Messages {
		msg := conversation.Message{
			Role:    rec.Role,
			Text:    rec.Text,
			Sources: fromSourceRecords(rec.Sources),
		}
		if rec.AudioData != nil && *rec.AudioData != "" {
			wav, err := base64.StdEncoding.DecodeString(*rec.AudioData)
			if err != nil {
				res.Warnings = append(res.Warnings,
					fmt.Sprintf("message %d: discarding undecodable audio: %v", i+1, err))
			} else {
				msg.Audio = wav
			}
		}
		data.Messages = append(data.Messages, msg)
	}

	data.Personas = append(data.Personas, fromPersonaRecord(snap.PersonaData.Persona1))
	if mode == conversation.ModeRoom {
		if snap.PersonaData.Persona2 == nil {
			return nil, fmt.Errorf("snapshot mode is %q but persona_2 is missing", snap.ChatMode)
		}
		data.Personas = append(data.Personas, fromPersonaRecord(*snap.PersonaData.Persona2))
	}

	restored, err := state.Restore(ctx, data, factory)
	if err != nil {
		return nil, err
	}
	res.Warnings = append(res.Warnings, restored.Warnings...)
	return res, nil
}

func toSourceRecords(in []source.Source) []SourceRecord {
	out := make([]SourceRecord, 0, len(in))
	for _, s := range in {
		out = append(out, SourceRecord{URI: s.URI, Title: s.Title})
	}
	return out
}

func fromSourceRecords(in []SourceRecord) []source.Source {
	if len(in) == 0 {
		return nil
	}
	out := make([]source.Source, 0, len(in))
	for _, s := range in {
		out = append(out, source.Source{URI: s.URI, Title: s.Title})
	}
	return out
}

func toPersonaRecord(p conversation.Persona) PersonaRecord {
	rec := PersonaRecord{
		Name:       p.Name,
		Voice:      p.Voice,
		VoiceStyle: p.VoiceStyle,
	}
	if p.Description != "" {
		desc := p.Description
		rec.Description = &desc
	}
	return rec
}

func fromPersonaRecord(rec PersonaRecord) conversation.Persona {
	p := conversation.Persona{
		Name:       rec.Name,
		Voice:      rec.Voice,
		VoiceStyle: rec.VoiceStyle,
	}
	if rec.Description != nil {
		p.Description = *rec.Description
	}
	return p
}

// Filename returns the suggested download name for an export taken at t.
func Filename(t time.Time) string {
	return "chat_export_" + t.Format("20060102_150405") + ".json"
}
