package handlers

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	"waii/internal/genai"
	"waii/internal/imaging"
	"waii/internal/pipeline"
	"waii/internal/watermark"
)

// maxUploadBytes bounds the multipart form; inline images are a few MB each.
const maxUploadBytes = 24 << 20

type generateResponse struct {
	ID          string `json:"id"`
	DataURI     string `json:"data_uri"`
	Filename    string `json:"filename"`
	MIMEType    string `json:"mime_type"`
	DownloadURL string `json:"download_url"`
}

// Generate runs the full pipeline for one multipart request and returns the
// watermarked artifact inline, persisting a copy for later download.
func (a *App) Generate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid multipart payload")
		return
	}

	mode, err := pipeline.ParseMode(r.FormValue("mode"))
	if err != nil {
		a.error(w, http.StatusUnprocessableEntity, "invalid_input", pipeline.UserMessage(err))
		return
	}
	format, err := watermark.ParseFormat(r.FormValue("output_format"))
	if err != nil {
		a.error(w, http.StatusUnprocessableEntity, "invalid_input", "output_format must be png or jpeg")
		return
	}

	quality := 0.0
	if raw := r.FormValue("jpeg_quality"); raw != "" {
		quality, err = strconv.ParseFloat(raw, 64)
		if err != nil || quality < 0 || quality > 1 {
			a.error(w, http.StatusUnprocessableEntity, "invalid_input", "jpeg_quality must be between 0.0 and 1.0")
			return
		}
	}

	req := pipeline.Request{
		Mode:        mode,
		Prompt:      r.FormValue("prompt"),
		StyleID:     r.FormValue("style"),
		AspectRatio: r.FormValue("aspect_ratio"),
		Format:      format,
		JPEGQuality: quality,
	}

	modelData, modelMIME, err := formFile(r, "model_image")
	if err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "could not read model image upload")
		return
	}
	switch {
	case modelData != nil:
		req.Model = pipeline.LocalFile(modelData, modelMIME)
	case r.FormValue("model_url") != "":
		req.Model = pipeline.StockURL(r.FormValue("model_url"))
	}

	productData, productMIME, err := formFile(r, "product_image")
	if err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "could not read product image upload")
		return
	}
	req.Product = productData
	req.ProductMIME = productMIME

	result, err := a.Pipeline.Submit(r.Context(), req)
	if err != nil {
		a.pipelineError(w, err)
		return
	}

	downloadURL := ""
	if key, err := a.storeArtifact(r, result); err != nil {
		// The inline artifact is still usable; persistence is best-effort.
		a.Logger.Warn().Err(err).Str("artifact_id", result.ID).Msg("handlers: failed to persist artifact")
	} else {
		a.Logger.Debug().Str("key", key).Msg("handlers: artifact persisted")
		downloadURL = "/v1/artifacts/" + result.ID + "/download"
	}

	a.json(w, http.StatusOK, generateResponse{
		ID:          result.ID,
		DataURI:     result.DataURI,
		Filename:    result.Filename,
		MIMEType:    result.MIMEType,
		DownloadURL: downloadURL,
	})
}

func (a *App) storeArtifact(r *http.Request, result *pipeline.Result) (string, error) {
	payload, err := imaging.ParseDataURI(result.DataURI)
	if err != nil {
		return "", err
	}
	data, err := payload.Bytes()
	if err != nil {
		return "", err
	}
	ext := "png"
	if payload.MIMEType == "image/jpeg" {
		ext = "jpg"
	}
	return a.Store.Write(r.Context(), fmt.Sprintf("artifacts/%s.%s", result.ID, ext), data)
}

func (a *App) pipelineError(w http.ResponseWriter, err error) {
	message := pipeline.UserMessage(err)

	var validation *pipeline.ValidationError
	if errors.As(err, &validation) {
		a.error(w, http.StatusUnprocessableEntity, "invalid_input", message)
		return
	}
	if errors.Is(err, pipeline.ErrSuperseded) {
		a.error(w, http.StatusConflict, "superseded", message)
		return
	}

	var encodeNet *imaging.NetworkError
	var encodeFetch *imaging.FetchError
	var encodeDecode *imaging.DecodeError
	if errors.As(err, &encodeNet) || errors.As(err, &encodeFetch) {
		a.error(w, http.StatusBadGateway, "source_unreachable", message)
		return
	}
	if errors.As(err, &encodeDecode) {
		a.error(w, http.StatusUnprocessableEntity, "invalid_image", message)
		return
	}

	var genErr *genai.GenerationError
	if errors.As(err, &genErr) {
		switch genErr.Kind {
		case genai.KindContentPolicyBlocked:
			a.error(w, http.StatusUnprocessableEntity, "content_blocked", message)
		case genai.KindInvalidCredentials, genai.KindNetworkFailure, genai.KindNoImageReturned, genai.KindMalformedRequest:
			a.error(w, http.StatusBadGateway, "provider_failure", message)
		default:
			a.error(w, http.StatusInternalServerError, "internal", message)
		}
		return
	}

	a.error(w, http.StatusInternalServerError, "internal", message)
}

func formFile(r *http.Request, field string) ([]byte, string, error) {
	file, header, err := r.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, "", nil
		}
		return nil, "", err
	}
	defer func(f multipart.File) { _ = f.Close() }(file)

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, "", err
	}
	return data, header.Header.Get("Content-Type"), nil
}
