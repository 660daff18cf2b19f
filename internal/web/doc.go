// Package web serves the browser UI for persona chat.
//
// # Overview
//
// The web package is the presentation layer. It owns an http.ServeMux
// worth of routes, renders embedded HTML templates, and translates form
// posts into calls on the conversation state machine. Partial routes
// return HTML fragments so the page can refresh individual regions
// (the message log, the source list) without a full reload.
//
// # State and locking
//
// One App serves one conversation. The conversation state is not safe
// for concurrent use, so every handler takes the App mutex for the
// duration of the command, including provider round-trips. This mirrors
// the single-user session model of the UI: two browser tabs share one
// conversation and their commands serialize.
//
// # Developer mode
//
// When enabled, the setup page accepts a hand-written persona
// description instead of requiring generation, and the chat page shows
// the raw system prompts.
package web
