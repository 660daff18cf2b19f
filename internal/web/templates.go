// ABOUTME: Template rendering functions for the chat UI
// ABOUTME: Loads templates from embedded filesystem and renders them

package web

import (
	"bytes"
	"html/template"
	"net/http"

	"github.com/yuin/goldmark"

	"github.com/MostlyKIGuess/Talk-To-Anyone/internal/conversation"
	"github.com/MostlyKIGuess/Talk-To-Anyone/internal/voice"
)

// Template data types

type personaView struct {
	Slot           int
	Label          string
	Name           string
	Description    string
	HasDescription bool
	Voice          string
	VoiceStyle     string
	Language       string
	Eligible       bool
}

type sourceView struct {
	URI   string
	Title string
}

type messageView struct {
	Role    string
	IsUser  bool
	HTML    template.HTML
	AudioID string
	Sources []sourceView
}

type setupData struct {
	Title     string
	Error     string
	Warnings  []string
	ModeName  string
	IsRoom    bool
	Personas  []personaView
	Voices    []string
	Languages []string
	Voice     conversation.VoiceSettings
	DevMode   bool
}

type chatData struct {
	Title    string
	Warnings []string
	ModeName string
	IsRoom   bool
	Personas []personaView
	Messages []messageView
	Sources  []sourceView
	Voice    conversation.VoiceSettings
	DevMode  bool
}

type suggestionData struct {
	Slot       int
	Voice      string
	Style      string
	Reason     string
	Candidates []string
}

// renderMarkdown converts message text to HTML. On conversion failure
// the text is shown escaped rather than dropped.
func renderMarkdown(text string) template.HTML {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(text), &buf); err != nil {
		return template.HTML("<p>" + template.HTMLEscapeString(text) + "</p>")
	}
	return template.HTML(buf.String())
}

func (a *App) personaViews() []personaView {
	labels := []string{"Persona 1", "Persona 2"}
	eligible := map[int]bool{}
	for _, slot := range a.state.EligibleResponders() {
		eligible[slot] = true
	}

	var views []personaView
	for i, p := range a.state.ActivePersonas() {
		views = append(views, personaView{
			Slot:           i,
			Label:          labels[i],
			Name:           p.Name,
			Description:    p.Description,
			HasDescription: p.Description != "",
			Voice:          p.Voice,
			VoiceStyle:     p.VoiceStyle,
			Language:       p.Language,
			Eligible:       eligible[i],
		})
	}
	return views
}

func (a *App) messageViews() []messageView {
	var views []messageView
	for _, msg := range a.state.Messages() {
		view := messageView{
			Role:   msg.Role,
			IsUser: msg.Role == conversation.RoleUser,
			HTML:   renderMarkdown(msg.Text),
		}
		if len(msg.Audio) > 0 {
			view.AudioID = msg.ID
		}
		for _, s := range msg.Sources {
			view.Sources = append(view.Sources, sourceView{URI: s.URI, Title: s.DisplayKey()})
		}
		views = append(views, view)
	}
	return views
}

func (a *App) sourceViews() []sourceView {
	var views []sourceView
	for _, s := range a.state.Ledger().AllSorted() {
		views = append(views, sourceView{URI: s.URI, Title: s.DisplayKey()})
	}
	return views
}

// renderSetupPage renders the persona setup page
func (a *App) renderSetupPage(w http.ResponseWriter, errorMsg string, warnings []string) {
	tmpl := template.Must(template.ParseFS(templateFS, "templates/base.html", "templates/setup.html"))

	data := setupData{
		Title:     "Talk To Anyone",
		Error:     errorMsg,
		Warnings:  warnings,
		ModeName:  a.state.Mode().String(),
		IsRoom:    a.state.Mode() == conversation.ModeRoom,
		Personas:  a.personaViews(),
		Voices:    voice.Names(),
		Languages: voice.LanguageNames(),
		Voice:     a.state.Voice(),
		DevMode:   a.config.DevMode,
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := tmpl.Execute(w, data); err != nil {
		a.logger.Error("failed to render setup page", "error", err)
	}
}

// renderChatPage renders the live conversation page
func (a *App) renderChatPage(w http.ResponseWriter, warnings []string) {
	tmpl := template.Must(template.ParseFS(templateFS,
		"templates/base.html", "templates/chat.html",
		"templates/partials/messages.html", "templates/partials/sources.html"))

	data := chatData{
		Title:    "Talk To Anyone",
		Warnings: warnings,
		ModeName: a.state.Mode().String(),
		IsRoom:   a.state.Mode() == conversation.ModeRoom,
		Personas: a.personaViews(),
		Messages: a.messageViews(),
		Sources:  a.sourceViews(),
		Voice:    a.state.Voice(),
		DevMode:  a.config.DevMode,
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := tmpl.Execute(w, data); err != nil {
		a.logger.Error("failed to render chat page", "error", err)
	}
}

// renderMessagesPartial renders just the message log fragment
func (a *App) renderMessagesPartial(w http.ResponseWriter) {
	tmpl := template.Must(template.ParseFS(templateFS, "templates/partials/messages.html"))

	data := chatData{Messages: a.messageViews(), Voice: a.state.Voice()}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := tmpl.ExecuteTemplate(w, "messages", data); err != nil {
		a.logger.Error("failed to render messages partial", "error", err)
	}
}

// renderSourcesPartial renders just the source list fragment
func (a *App) renderSourcesPartial(w http.ResponseWriter) {
	tmpl := template.Must(template.ParseFS(templateFS, "templates/partials/sources.html"))

	data := chatData{Sources: a.sourceViews()}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := tmpl.ExecuteTemplate(w, "sources", data); err != nil {
		a.logger.Error("failed to render sources partial", "error", err)
	}
}

// renderSuggestionPartial renders the smart voice suggestion fragment
func (a *App) renderSuggestionPartial(w http.ResponseWriter, slot int, sugg voice.Suggestion) {
	tmpl := template.Must(template.ParseFS(templateFS, "templates/partials/suggestion.html"))

	var candidates []string
	for _, alt := range sugg.Alternatives {
		candidates = append(candidates, alt.Voice)
	}
	data := suggestionData{
		Slot:       slot,
		Voice:      sugg.Voice,
		Style:      sugg.Style,
		Reason:     sugg.Reason,
		Candidates: candidates,
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := tmpl.ExecuteTemplate(w, "suggestion", data); err != nil {
		a.logger.Error("failed to render suggestion partial", "error", err)
	}
}
