package handlers

import (
	"net/http"

	"waii/internal/catalog"
)

func (a *App) Styles(w http.ResponseWriter, r *http.Request) {
	a.json(w, http.StatusOK, map[string]any{"styles": catalog.StylePresets()})
}

func (a *App) AspectRatios(w http.ResponseWriter, r *http.Request) {
	a.json(w, http.StatusOK, map[string]any{"aspect_ratios": catalog.AspectRatios()})
}

func (a *App) StockModels(w http.ResponseWriter, r *http.Request) {
	a.json(w, http.StatusOK, map[string]any{"stock_models": catalog.StockModels()})
}

func (a *App) PromptExamples(w http.ResponseWriter, r *http.Request) {
	mode := r.URL.Query().Get("mode")
	a.json(w, http.StatusOK, map[string]any{"examples": a.Suggester.Examples(mode)})
}
