// Package conversation holds the conversation state machine.
//
// # Overview
//
// The conversation package is the aggregate root of the application. It
// owns the persona records, the append-only message log, the deduplicated
// source ledger, the voice settings, and (in room mode) the turn-taking
// pointer. The presentation layer calls mutators on State and renders the
// explicit results they return; nothing in here touches HTTP or HTML.
//
// # Modes
//
// Two modes exist:
//
//   - Single persona chat: one persona, one chat session, a plain
//     request/response loop with optimistic user-message append and
//     rollback on failure.
//   - Persona room: two personas sharing one log. The human mediates who
//     speaks next; the arbiter only rules out the persona that just spoke.
//
// Switching modes invalidates the entire state.
//
// # External collaborators
//
// Persona generation, chat sessions, and speech synthesis are opaque
// calls behind the narrow interfaces PersonaGenerator, SessionFactory,
// and Synthesizer. All of them are satisfied by a genai.Client.
//
// # Concurrency
//
// State is not safe for concurrent use. All mutation is serialized by the
// single UI event loop; the web layer holds one mutex across each command.
package conversation
