// Package pipeline sequences validation, encoding, generation and
// watermarking for a single request, and owns the loading/error/result state
// exposed to callers.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"waii/internal/catalog"
	"waii/internal/genai"
	"waii/internal/imaging"
	"waii/internal/infra"
	"waii/internal/watermark"
)

// Mode selects which generation operation a request drives. Exactly one mode
// is active per request.
type Mode string

const (
	ModeComposite Mode = "composite"
	ModeText      Mode = "text"
)

// ParseMode normalizes a user-supplied mode string.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", string(ModeComposite):
		return ModeComposite, nil
	case string(ModeText), "text-to-image", "text_to_image":
		return ModeText, nil
	default:
		return "", &ValidationError{Reason: fmt.Sprintf("unknown generation mode %q", s)}
	}
}

// ModelSource is a tagged union over the two ways a model image can be
// supplied: an uploaded file or a stock catalog URL. The unexported fields
// make the mutual exclusivity an invariant of the type.
type ModelSource struct {
	data []byte
	mime string
	url  string
}

// LocalFile wraps uploaded model image bytes.
func LocalFile(data []byte, mimeType string) ModelSource {
	return ModelSource{data: data, mime: mimeType}
}

// StockURL wraps a selected stock model URL.
func StockURL(url string) ModelSource {
	return ModelSource{url: strings.TrimSpace(url)}
}

// IsZero reports whether no model source was provided.
func (m ModelSource) IsZero() bool {
	return len(m.data) == 0 && m.url == ""
}

// Request is the ephemeral per-invocation bundle assembled by the caller
// immediately before Submit. It is not retained across requests.
type Request struct {
	Mode        Mode
	Model       ModelSource
	Product     []byte
	ProductMIME string
	Prompt      string
	StyleID     string
	AspectRatio string
	Format      watermark.OutputFormat
	JPEGQuality float64
}

// Result is the finished, watermarked artifact.
type Result struct {
	ID       string `json:"id"`
	DataURI  string `json:"data_uri"`
	Filename string `json:"filename"`
	MIMEType string `json:"mime_type"`
}

// State is the observable phase of the orchestrator.
type State string

const (
	StateIdle         State = "idle"
	StateValidating   State = "validating"
	StateRequesting   State = "requesting"
	StateWatermarking State = "watermarking"
	StateReady        State = "ready"
	StateFailed       State = "failed"
)

// ValidationError reports missing or unusable input, caught before any
// network call is made.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "pipeline: " + e.Reason
}

// ErrSuperseded is returned to a submitter whose result was discarded because
// a newer request was submitted while it was in flight.
var ErrSuperseded = errors.New("pipeline: superseded by a newer request")

// Encoder is the slice of the image encoder the pipeline depends on.
type Encoder interface {
	EncodeBytes(data []byte, declaredMIME string) (imaging.ImagePayload, error)
	EncodeRemote(ctx context.Context, url string) (imaging.ImagePayload, error)
}

// Generator is the slice of the generation client the pipeline depends on.
type Generator interface {
	Composite(ctx context.Context, model imaging.ImagePayload, product *imaging.ImagePayload, instruction string) (imaging.ImagePayload, error)
	TextToImage(ctx context.Context, prompt, aspectRatio string) (imaging.ImagePayload, error)
}

// Marker is the slice of the watermark processor the pipeline depends on.
type Marker interface {
	Apply(src imaging.ImagePayload, format watermark.OutputFormat, quality float64) (string, error)
}

// Orchestrator runs the request pipeline. At most one submission wins at a
// time: every Submit takes a fresh token and a result only commits while its
// token is still the latest, so the exposed artifact can never come from a
// stale request.
type Orchestrator struct {
	encoder   Encoder
	generator Generator
	marker    Marker
	logger    infra.Logger

	mu       sync.Mutex
	state    State
	token    uint64
	artifact *Result
	lastErr  error
}

// New wires an orchestrator from its three collaborators.
func New(encoder Encoder, generator Generator, marker Marker, logger infra.Logger) *Orchestrator {
	return &Orchestrator{
		encoder:   encoder,
		generator: generator,
		marker:    marker,
		logger:    logger,
		state:     StateIdle,
	}
}

// State returns the current phase.
func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// Artifact returns the latest committed result, or nil.
func (o *Orchestrator) Artifact() *Result {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.artifact
}

// Err returns the failure of the latest completed submission, or nil.
func (o *Orchestrator) Err() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.lastErr
}

// Submit runs one full pipeline pass and returns the watermarked artifact.
// A submission while another is in flight is allowed: the newer one wins and
// the older result is discarded with ErrSuperseded.
func (o *Orchestrator) Submit(ctx context.Context, req Request) (*Result, error) {
	token := o.begin()

	result, err := o.run(ctx, token, req)
	if err != nil {
		o.fail(token, err)
		return nil, err
	}
	if !o.commit(token, result) {
		return nil, ErrSuperseded
	}
	return result, nil
}

func (o *Orchestrator) run(ctx context.Context, token uint64, req Request) (*Result, error) {
	style, aspect, err := o.validate(req)
	if err != nil {
		return nil, err
	}

	if !o.advance(token, StateRequesting) {
		return nil, ErrSuperseded
	}

	fullPrompt := fmt.Sprintf("%s. %s.", strings.TrimSpace(req.Prompt), style.PromptSuffix)

	var generated imaging.ImagePayload
	switch req.Mode {
	case ModeComposite:
		generated, err = o.runComposite(ctx, req, fullPrompt)
	default:
		generated, err = o.generator.TextToImage(ctx, fullPrompt, aspect)
	}
	if err != nil {
		return nil, err
	}

	if !o.advance(token, StateWatermarking) {
		return nil, ErrSuperseded
	}

	format := req.Format
	if format == "" {
		format = watermark.FormatPNG
	}
	uri, err := o.marker.Apply(generated, format, req.JPEGQuality)
	if err != nil {
		return nil, err
	}

	return &Result{
		ID:       uuid.NewString(),
		DataURI:  uri,
		Filename: "waii-generated-image." + format.Ext(),
		MIMEType: format.MIME(),
	}, nil
}

func (o *Orchestrator) validate(req Request) (catalog.StylePreset, string, error) {
	style := catalog.DefaultStyle()
	if req.StyleID != "" {
		var ok bool
		if style, ok = catalog.StyleByID(req.StyleID); !ok {
			return style, "", &ValidationError{Reason: fmt.Sprintf("unknown style preset %q", req.StyleID)}
		}
	}

	aspect := req.AspectRatio
	if aspect == "" {
		aspect = catalog.DefaultAspectRatio
	}

	switch req.Mode {
	case ModeComposite:
		if req.Model.IsZero() {
			return style, "", &ValidationError{Reason: "a model image must be uploaded or selected"}
		}
	case ModeText:
		if strings.TrimSpace(req.Prompt) == "" {
			return style, "", &ValidationError{Reason: "a prompt is required to generate an image"}
		}
		if !catalog.ValidAspectRatio(aspect) {
			return style, "", &ValidationError{Reason: fmt.Sprintf("unsupported aspect ratio %q", aspect)}
		}
	default:
		return style, "", &ValidationError{Reason: fmt.Sprintf("unknown generation mode %q", req.Mode)}
	}
	return style, aspect, nil
}

// runComposite encodes the model and product inputs, then issues the
// composite call. The two encodes are independent and run concurrently.
func (o *Orchestrator) runComposite(ctx context.Context, req Request, fullPrompt string) (imaging.ImagePayload, error) {
	var (
		model   imaging.ImagePayload
		product *imaging.ImagePayload
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		if req.Model.url != "" {
			model, err = o.encoder.EncodeRemote(gctx, req.Model.url)
		} else {
			model, err = o.encoder.EncodeBytes(req.Model.data, req.Model.mime)
		}
		return err
	})
	if len(req.Product) > 0 {
		g.Go(func() error {
			payload, err := o.encoder.EncodeBytes(req.Product, req.ProductMIME)
			if err != nil {
				return err
			}
			product = &payload
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return imaging.ImagePayload{}, err
	}

	instruction := genai.CompositeInstruction(fullPrompt, product != nil)
	return o.generator.Composite(ctx, model, product, instruction)
}

func (o *Orchestrator) begin() uint64 {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.token++
	o.state = StateValidating
	o.artifact = nil
	o.lastErr = nil
	return o.token
}

// advance moves to the next phase if the token is still current.
func (o *Orchestrator) advance(token uint64, state State) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	if token != o.token {
		return false
	}
	o.state = state
	return true
}

func (o *Orchestrator) commit(token uint64, result *Result) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	if token != o.token {
		o.logger.Debug().Str("artifact_id", result.ID).Msg("pipeline: discarding stale result")
		return false
	}
	o.state = StateReady
	o.artifact = result
	o.lastErr = nil
	return true
}

func (o *Orchestrator) fail(token uint64, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if token != o.token {
		return
	}
	o.state = StateFailed
	o.lastErr = err
	o.logger.Warn().Err(err).Msg("pipeline: request failed")
}

// UserMessage collapses any pipeline failure into a single message suitable
// for direct display. No error escapes to callers without a mapping here.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}

	var validation *ValidationError
	if errors.As(err, &validation) {
		return validation.Reason
	}

	var netErr *imaging.NetworkError
	if errors.As(err, &netErr) {
		return "Could not reach the image source. Check your connection and the URL, then try again."
	}
	var fetchErr *imaging.FetchError
	if errors.As(err, &fetchErr) {
		return "The image source responded with an error. Try a different image."
	}
	var decodeErr *imaging.DecodeError
	if errors.As(err, &decodeErr) {
		return "Unsupported image format. Please use JPG, PNG, or WebP."
	}
	var rasterErr *watermark.RasterizeError
	if errors.As(err, &rasterErr) {
		return "The generated image could not be processed. Please try again."
	}

	var genErr *genai.GenerationError
	if errors.As(err, &genErr) {
		switch genErr.Kind {
		case genai.KindInvalidCredentials:
			return "The configured API key was rejected. Check the service credentials."
		case genai.KindContentPolicyBlocked:
			return "The request was blocked by the content policy. Adjust the prompt or images."
		case genai.KindNetworkFailure:
			return "Could not reach the generation service. Check your connection and try again."
		case genai.KindMalformedRequest:
			return "The generation request was malformed. Adjust the inputs and try again."
		case genai.KindNoImageReturned:
			return "The model did not return an image. Try rephrasing the prompt."
		}
	}

	if errors.Is(err, ErrSuperseded) {
		return "This request was replaced by a newer one."
	}
	return "An unknown error occurred. Please try again."
}
