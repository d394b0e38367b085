package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"path"
	"strings"

	"github.com/go-chi/chi/v5"

	"waii/internal/domain"
	"waii/internal/pipeline"
	"waii/pkg/zip"
)

// ArtifactDownload serves a previously generated artifact as a file save with
// the fixed download filename.
func (a *App) ArtifactDownload(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "artifact id required")
		return
	}

	key, err := a.findArtifactKey(r, id)
	if err != nil {
		a.error(w, http.StatusNotFound, "not_found", "artifact not found")
		return
	}
	data, err := a.Store.Read(r.Context(), key)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			a.error(w, http.StatusNotFound, "not_found", "artifact not found")
			return
		}
		a.error(w, http.StatusInternalServerError, "internal", "failed to load artifact")
		return
	}

	ext := strings.TrimPrefix(path.Ext(key), ".")
	mime := "image/png"
	if ext == "jpg" {
		mime = "image/jpeg"
	}
	w.Header().Set("Content-Type", mime)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "waii-generated-image."+ext))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// ArtifactState exposes the orchestrator's current phase and last error so
// clients can poll while a generation is in flight.
func (a *App) ArtifactState(w http.ResponseWriter, r *http.Request) {
	state := a.Pipeline.State()
	body := map[string]any{"state": state}
	if err := a.Pipeline.Err(); err != nil {
		body["error"] = pipeline.UserMessage(err)
	}
	if artifact := a.Pipeline.Artifact(); artifact != nil {
		body["artifact_id"] = artifact.ID
		body["filename"] = artifact.Filename
	}
	a.json(w, http.StatusOK, body)
}

// ArtifactsArchive bundles every stored artifact into a single zip download.
func (a *App) ArtifactsArchive(w http.ResponseWriter, r *http.Request) {
	keys, err := a.Store.List(r.Context(), "artifacts")
	if err != nil {
		a.error(w, http.StatusInternalServerError, "internal", "failed to list artifacts")
		return
	}
	if len(keys) == 0 {
		a.error(w, http.StatusNotFound, "not_found", "no artifacts stored yet")
		return
	}

	var items []zip.Artifact
	for _, key := range keys {
		data, err := a.Store.Read(r.Context(), key)
		if err != nil {
			continue
		}
		items = append(items, zip.Artifact{Filename: path.Base(key), Data: data})
	}

	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", `attachment; filename="waii-artifacts.zip"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(zip.Archive(items))
}

func (a *App) findArtifactKey(r *http.Request, id string) (string, error) {
	for _, ext := range []string{"png", "jpg"} {
		key := fmt.Sprintf("artifacts/%s.%s", id, ext)
		if _, err := a.Store.Read(r.Context(), key); err == nil {
			return key, nil
		}
	}
	return "", domain.ErrNotFound
}
