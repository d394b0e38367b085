package handlers

import (
	"encoding/json"
	"net/http"

	"waii/internal/infra"
	"waii/internal/pipeline"
	"waii/internal/prompts"
	"waii/internal/storage"
)

// App bundles the handler dependencies.
type App struct {
	Pipeline  *pipeline.Orchestrator
	Store     *storage.FileStore
	Suggester prompts.Suggester
	Logger    infra.Logger
}

func NewApp(p *pipeline.Orchestrator, store *storage.FileStore, suggester prompts.Suggester, logger infra.Logger) *App {
	return &App{Pipeline: p, Store: store, Suggester: suggester, Logger: logger}
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (a *App) error(w http.ResponseWriter, status int, code, message string) {
	a.json(w, status, map[string]errorBody{"error": {Code: code, Message: message}})
}
