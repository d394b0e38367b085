package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/rs/zerolog"

	"waii/internal/genai"
	"waii/internal/http/handlers"
	"waii/internal/http/httpapi"
	"waii/internal/imaging"
	"waii/internal/infra"
	"waii/internal/pipeline"
	"waii/internal/prompts"
	"waii/internal/storage"
	"waii/internal/watermark"
)

type stubGenerator struct {
	mu         sync.Mutex
	calls      int
	hadProduct bool
	err        error
	payload    imaging.ImagePayload
}

func (s *stubGenerator) Composite(ctx context.Context, model imaging.ImagePayload, product *imaging.ImagePayload, instruction string) (imaging.ImagePayload, error) {
	s.mu.Lock()
	s.calls++
	s.hadProduct = product != nil
	s.mu.Unlock()
	if s.err != nil {
		return imaging.ImagePayload{}, s.err
	}
	return s.payload, nil
}

func (s *stubGenerator) TextToImage(ctx context.Context, prompt, aspectRatio string) (imaging.ImagePayload, error) {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
	if s.err != nil {
		return imaging.ImagePayload{}, s.err
	}
	return s.payload, nil
}

func generatedPNG(t *testing.T) imaging.ImagePayload {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 320, 240))
	for y := 0; y < 240; y++ {
		for x := 0; x < 320; x++ {
			img.Set(x, y, color.RGBA{R: 30, G: 30, B: 60, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode fixture: %v", err)
	}
	return imaging.FromBytes(buf.Bytes(), "image/png")
}

func newTestServer(t *testing.T, gen *stubGenerator) *httptest.Server {
	t.Helper()
	store, err := storage.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	logger := zerolog.Nop()
	orchestrator := pipeline.New(imaging.NewEncoder(nil), gen, watermark.NewProcessor(nil), logger)
	app := handlers.NewApp(orchestrator, store, prompts.NewStaticSuggester(), logger)
	cfg := &infra.Config{RateLimitPerMin: 100}
	srv := httptest.NewServer(httpapi.NewRouter(app, cfg))
	t.Cleanup(srv.Close)
	return srv
}

type form struct {
	fields map[string]string
	files  map[string][]byte
}

func (f form) encode(t *testing.T) (string, io.Reader) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for key, value := range f.fields {
		if err := w.WriteField(key, value); err != nil {
			t.Fatalf("write field %s: %v", key, err)
		}
	}
	for key, data := range f.files {
		fw, err := w.CreateFormFile(key, key+".png")
		if err != nil {
			t.Fatalf("create file %s: %v", key, err)
		}
		if _, err := fw.Write(data); err != nil {
			t.Fatalf("write file %s: %v", key, err)
		}
	}
	_ = w.Close()
	return w.FormDataContentType(), &buf
}

func postGenerate(t *testing.T, srv *httptest.Server, f form) *http.Response {
	t.Helper()
	contentType, body := f.encode(t)
	resp, err := http.Post(srv.URL+"/v1/generate", contentType, body)
	if err != nil {
		t.Fatalf("POST /v1/generate: %v", err)
	}
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func decodeJSON(t *testing.T, resp *http.Response, out any) {
	t.Helper()
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

func TestGenerateTextMode(t *testing.T) {
	gen := &stubGenerator{payload: generatedPNG(t)}
	srv := newTestServer(t, gen)

	resp := postGenerate(t, srv, form{fields: map[string]string{
		"mode":   "text",
		"prompt": "a robot holding a red skateboard",
		"style":  "studio",
	}})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}

	var body struct {
		ID          string `json:"id"`
		DataURI     string `json:"data_uri"`
		Filename    string `json:"filename"`
		DownloadURL string `json:"download_url"`
	}
	decodeJSON(t, resp, &body)

	if !strings.HasPrefix(body.DataURI, "data:image/png;base64,") {
		t.Fatalf("data_uri prefix = %.40q", body.DataURI)
	}
	if body.Filename != "waii-generated-image.png" {
		t.Fatalf("filename = %q", body.Filename)
	}
	if body.DownloadURL == "" {
		t.Fatal("download_url missing")
	}

	// the persisted copy must be downloadable under the fixed filename
	dl, err := http.Get(srv.URL + body.DownloadURL)
	if err != nil {
		t.Fatalf("GET download: %v", err)
	}
	defer dl.Body.Close()
	if dl.StatusCode != http.StatusOK {
		t.Fatalf("download status = %d", dl.StatusCode)
	}
	if cd := dl.Header.Get("Content-Disposition"); !strings.Contains(cd, "waii-generated-image.png") {
		t.Fatalf("Content-Disposition = %q", cd)
	}
}

func TestGenerateTextModeEmptyPrompt(t *testing.T) {
	gen := &stubGenerator{payload: generatedPNG(t)}
	srv := newTestServer(t, gen)

	resp := postGenerate(t, srv, form{fields: map[string]string{
		"mode":   "text",
		"prompt": "   ",
	}})
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", resp.StatusCode)
	}
	if gen.calls != 0 {
		t.Fatalf("generator calls = %d, want 0", gen.calls)
	}
}

func TestGenerateCompositeWithoutModel(t *testing.T) {
	gen := &stubGenerator{payload: generatedPNG(t)}
	srv := newTestServer(t, gen)

	resp := postGenerate(t, srv, form{fields: map[string]string{
		"mode":   "composite",
		"prompt": "add a hat",
	}})
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", resp.StatusCode)
	}
	if gen.calls != 0 {
		t.Fatalf("generator calls = %d, want 0", gen.calls)
	}
}

func TestGenerateCompositeWithUploads(t *testing.T) {
	gen := &stubGenerator{payload: generatedPNG(t)}
	srv := newTestServer(t, gen)

	src, err := generatedPNG(t).Bytes()
	if err != nil {
		t.Fatalf("fixture: %v", err)
	}
	resp := postGenerate(t, srv, form{
		fields: map[string]string{
			"mode":   "composite",
			"prompt": "place the watch on the wrist",
		},
		files: map[string][]byte{
			"model_image":   src,
			"product_image": src,
		},
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if !gen.hadProduct {
		t.Fatal("product image was not forwarded to the generator")
	}
}

func TestGenerateRejectsBadQualityAndFormat(t *testing.T) {
	gen := &stubGenerator{payload: generatedPNG(t)}
	srv := newTestServer(t, gen)

	resp := postGenerate(t, srv, form{fields: map[string]string{
		"mode": "text", "prompt": "x", "jpeg_quality": "1.7",
	}})
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("quality status = %d, want 422", resp.StatusCode)
	}

	resp = postGenerate(t, srv, form{fields: map[string]string{
		"mode": "text", "prompt": "x", "output_format": "gif",
	}})
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("format status = %d, want 422", resp.StatusCode)
	}
}

func TestGenerateProviderFailureMapsToBadGateway(t *testing.T) {
	gen := &stubGenerator{err: &genai.GenerationError{Kind: genai.KindInvalidCredentials}}
	srv := newTestServer(t, gen)

	resp := postGenerate(t, srv, form{fields: map[string]string{
		"mode": "text", "prompt": "a robot",
	}})
	if resp.StatusCode != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", resp.StatusCode)
	}

	var body struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	decodeJSON(t, resp, &body)
	if body.Error.Code != "provider_failure" || body.Error.Message == "" {
		t.Fatalf("error body = %+v", body.Error)
	}
}

func TestCatalogEndpoints(t *testing.T) {
	srv := newTestServer(t, &stubGenerator{payload: generatedPNG(t)})

	for _, path := range []string{"/v1/healthz", "/v1/styles", "/v1/aspect-ratios", "/v1/stock-models", "/v1/prompts/examples?mode=text", "/v1/state"} {
		resp, err := http.Get(srv.URL + path)
		if err != nil {
			t.Fatalf("GET %s: %v", path, err)
		}
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("GET %s: status = %d", path, resp.StatusCode)
		}
		_ = resp.Body.Close()
	}
}

func TestArtifactsArchive(t *testing.T) {
	gen := &stubGenerator{payload: generatedPNG(t)}
	srv := newTestServer(t, gen)

	resp, err := http.Get(srv.URL + "/v1/artifacts/archive")
	if err != nil {
		t.Fatalf("GET archive: %v", err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("empty archive status = %d, want 404", resp.StatusCode)
	}

	_ = postGenerate(t, srv, form{fields: map[string]string{"mode": "text", "prompt": "a robot"}})

	resp, err = http.Get(srv.URL + "/v1/artifacts/archive")
	if err != nil {
		t.Fatalf("GET archive: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("archive status = %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/zip" {
		t.Fatalf("content type = %q", ct)
	}
}
