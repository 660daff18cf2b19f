// ABOUTME: Snapshot download and upload handlers.
// ABOUTME: Export is a JSON attachment; import replaces the whole conversation.

package web

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/MostlyKIGuess/Talk-To-Anyone/internal/snapshot"
)

// maxImportBytes bounds snapshot uploads. Audio-heavy exports are big
// but a chat log should never approach this.
const maxImportBytes = 64 << 20

func (a *App) handleExport(w http.ResponseWriter, _ *http.Request) {
	a.mu.Lock()
	defer a.mu.Unlock()

	data, err := snapshot.Encode(snapshot.Capture(a.state))
	if err != nil {
		a.logger.Error("export failed", "error", err)
		http.Error(w, "export failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", snapshot.Filename(time.Now())))
	w.Write(data)
}

func (a *App) handleImport(w http.ResponseWriter, r *http.Request) {
	a.mu.Lock()
	defer a.mu.Unlock()

	file, _, err := r.FormFile("snapshot")
	if err != nil {
		a.renderSetupPage(w, "no snapshot file uploaded", nil)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxImportBytes))
	if err != nil {
		a.renderSetupPage(w, "reading snapshot: "+err.Error(), nil)
		return
	}

	snap, err := snapshot.Decode(data)
	if err != nil {
		a.renderSetupPage(w, err.Error(), nil)
		return
	}

	res, err := snapshot.Apply(r.Context(), a.state, snap, a.client)
	if err != nil {
		a.logger.Warn("import failed", "error", err)
		a.renderSetupPage(w, err.Error(), nil)
		return
	}

	a.logger.Info("conversation imported",
		"mode", a.state.Mode().String(),
		"messages", len(a.state.Messages()),
		"warnings", len(res.Warnings))

	if a.state.Started() {
		a.renderChatPage(w, res.Warnings)
		return
	}
	a.renderSetupPage(w, "", res.Warnings)
}
