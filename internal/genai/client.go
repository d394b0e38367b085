// Package genai wraps the two remote generation operations (image-to-image
// composite and text-to-image) behind a uniform contract and normalizes
// provider failures into a small taxonomy.
package genai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"waii/internal/imaging"
	"waii/internal/infra"
)

// Options controls how the generation client is configured.
type Options struct {
	APIKey     string
	BaseURL    string
	ImageModel string
	TextModel  string
	HTTPClient *http.Client
	Logger     *infra.Logger
}

// Client issues generateContent and predict calls against the generative
// language API. Each operation makes exactly one outbound call; retries and
// progress reporting are the caller's concern.
type Client struct {
	apiKey     string
	baseURL    string
	imageModel string
	textModel  string
	httpClient *http.Client
	logger     *infra.Logger
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts,omitempty"`
}

type geminiPart struct {
	Text       string            `json:"text,omitempty"`
	InlineData *geminiInlineData `json:"inlineData,omitempty"`
}

type geminiInlineData struct {
	MimeType string `json:"mimeType,omitempty"`
	Data     string `json:"data,omitempty"`
}

type geminiGenerationConfig struct {
	ResponseModalities []string `json:"responseModalities,omitempty"`
}

type geminiGenerateContentRequest struct {
	Contents         []geminiContent         `json:"contents"`
	GenerationConfig *geminiGenerationConfig `json:"generationConfig,omitempty"`
}

type geminiCandidate struct {
	Content      geminiContent `json:"content"`
	FinishReason string        `json:"finishReason,omitempty"`
}

type geminiGenerateContentResponse struct {
	Candidates []geminiCandidate `json:"candidates"`
}

type imagenPredictRequest struct {
	Instances  []imagenInstance `json:"instances"`
	Parameters imagenParameters `json:"parameters"`
}

type imagenInstance struct {
	Prompt string `json:"prompt"`
}

type imagenParameters struct {
	SampleCount    int    `json:"sampleCount"`
	AspectRatio    string `json:"aspectRatio,omitempty"`
	OutputMimeType string `json:"outputMimeType,omitempty"`
}

type imagenPredictResponse struct {
	Predictions []imagenPrediction `json:"predictions"`
}

type imagenPrediction struct {
	BytesBase64Encoded string `json:"bytesBase64Encoded"`
	MimeType           string `json:"mimeType,omitempty"`
}

type apiErrorResponse struct {
	Error struct {
		Code    int    `json:"code,omitempty"`
		Status  string `json:"status,omitempty"`
		Message string `json:"message,omitempty"`
	} `json:"error"`
}

// NewClient constructs a generation client with sane defaults. Callers may
// provide a nil HTTP client; a reusable one with a generous timeout will be
// created, since image generation routinely runs for tens of seconds.
func NewClient(opts Options) *Client {
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 120 * time.Second}
	}

	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://generativelanguage.googleapis.com/v1beta"
	}

	imageModel := opts.ImageModel
	if imageModel == "" {
		imageModel = "gemini-2.5-flash-image-preview"
	}
	textModel := opts.TextModel
	if textModel == "" {
		textModel = "imagen-3.0-generate-002"
	}

	var logger *infra.Logger
	if opts.Logger != nil {
		logger = opts.Logger
	} else {
		discard := zerolog.New(io.Discard)
		l := infra.Logger(discard)
		logger = &l
	}

	return &Client{
		apiKey:     strings.TrimSpace(opts.APIKey),
		baseURL:    baseURL,
		imageModel: imageModel,
		textModel:  textModel,
		httpClient: client,
		logger:     logger,
	}
}

// Composite sends the model image, the optional product image and a
// synthesized instruction to the image-editing model and returns the first
// image-bearing part of the response.
func (c *Client) Composite(ctx context.Context, model imaging.ImagePayload, product *imaging.ImagePayload, instruction string) (imaging.ImagePayload, error) {
	parts := []geminiPart{{
		InlineData: &geminiInlineData{MimeType: model.MIMEType, Data: model.Data},
	}}
	if product != nil {
		parts = append(parts, geminiPart{
			InlineData: &geminiInlineData{MimeType: product.MIMEType, Data: product.Data},
		})
	}
	parts = append(parts, geminiPart{Text: instruction})

	payload := geminiGenerateContentRequest{
		Contents: []geminiContent{{Role: "user", Parts: parts}},
		GenerationConfig: &geminiGenerationConfig{
			ResponseModalities: []string{"IMAGE", "TEXT"},
		},
	}

	var response geminiGenerateContentResponse
	if err := c.invoke(ctx, fmt.Sprintf("/models/%s:generateContent", url.PathEscape(c.imageModel)), payload, &response); err != nil {
		return imaging.ImagePayload{}, classify(err)
	}

	for _, candidate := range response.Candidates {
		for _, part := range candidate.Content.Parts {
			if part.InlineData != nil && part.InlineData.Data != "" {
				mime := part.InlineData.MimeType
				if mime == "" {
					mime = "image/png"
				}
				c.logger.Debug().
					Str("model", c.imageModel).
					Str("mime", mime).
					Msg("genai: composite image returned")
				return imaging.ImagePayload{Data: part.InlineData.Data, MIMEType: mime}, nil
			}
		}
	}
	return imaging.ImagePayload{}, &GenerationError{Kind: KindNoImageReturned, Err: fmt.Errorf("no image part in %s response", c.imageModel)}
}

// TextToImage requests a single image at the given aspect ratio from the
// text-to-image model.
func (c *Client) TextToImage(ctx context.Context, prompt, aspectRatio string) (imaging.ImagePayload, error) {
	payload := imagenPredictRequest{
		Instances: []imagenInstance{{Prompt: prompt}},
		Parameters: imagenParameters{
			SampleCount:    1,
			AspectRatio:    aspectRatio,
			OutputMimeType: "image/png",
		},
	}

	var response imagenPredictResponse
	if err := c.invoke(ctx, fmt.Sprintf("/models/%s:predict", url.PathEscape(c.textModel)), payload, &response); err != nil {
		return imaging.ImagePayload{}, classify(err)
	}

	for _, prediction := range response.Predictions {
		if prediction.BytesBase64Encoded != "" {
			mime := prediction.MimeType
			if mime == "" {
				mime = "image/png"
			}
			c.logger.Debug().
				Str("model", c.textModel).
				Str("aspect_ratio", aspectRatio).
				Msg("genai: text-to-image returned")
			return imaging.ImagePayload{Data: prediction.BytesBase64Encoded, MIMEType: mime}, nil
		}
	}
	return imaging.ImagePayload{}, &GenerationError{Kind: KindNoImageReturned, Err: fmt.Errorf("no image in %s response", c.textModel)}
}

func (c *Client) invoke(ctx context.Context, path string, payload any, out any) error {
	endpoint := c.baseURL + path
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if c.apiKey != "" {
		q := req.URL.Query()
		q.Set("key", c.apiKey)
		req.URL.RawQuery = q.Encode()
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		var apiErr apiErrorResponse
		if err := json.NewDecoder(resp.Body).Decode(&apiErr); err == nil && apiErr.Error.Message != "" {
			return fmt.Errorf("status %d: %s", resp.StatusCode, apiErr.Error.Message)
		}
		data, _ := io.ReadAll(resp.Body)
		if len(data) > 0 {
			return fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
		}
		return fmt.Errorf("status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
