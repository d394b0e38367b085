// Command waii generates a single image from the terminal, running the same
// pipeline the API serves: validate, encode, generate, watermark, save.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"waii/internal/genai"
	"waii/internal/imaging"
	"waii/internal/infra"
	"waii/internal/pipeline"
	"waii/internal/watermark"
)

var (
	flagStyle   string
	flagFormat  string
	flagQuality float64
	flagOut     string

	flagModel    string
	flagModelURL string
	flagProduct  string
	flagPrompt   string
	flagAspect   string
)

func main() {
	root := &cobra.Command{
		Use:           "waii",
		Short:         "Generate product photoshoot images via the WAII pipeline",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&flagStyle, "style", "", "style preset id (studio, outdoor, social, ecommerce)")
	root.PersistentFlags().StringVar(&flagFormat, "format", "png", "output format: png or jpeg")
	root.PersistentFlags().Float64Var(&flagQuality, "jpeg-quality", 0, "jpeg quality factor, 0.0-1.0")
	root.PersistentFlags().StringVarP(&flagOut, "out", "o", "", "output file (defaults to waii-generated-image.<ext>)")

	composite := &cobra.Command{
		Use:   "composite",
		Short: "Composite a product photo onto a model photo",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), pipeline.ModeComposite)
		},
	}
	composite.Flags().StringVar(&flagModel, "model", "", "path to the model/background image")
	composite.Flags().StringVar(&flagModelURL, "model-url", "", "stock model image URL")
	composite.Flags().StringVar(&flagProduct, "product", "", "path to the product image (optional)")
	composite.Flags().StringVar(&flagPrompt, "prompt", "", "compositing instructions")

	text := &cobra.Command{
		Use:   "text",
		Short: "Generate an image from a text prompt",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), pipeline.ModeText)
		},
	}
	text.Flags().StringVar(&flagPrompt, "prompt", "", "image description")
	text.Flags().StringVar(&flagAspect, "aspect", "", "aspect ratio (1:1, 16:9, 9:16, 4:3, 3:4)")

	root.AddCommand(composite, text)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", cliMessage(err))
		os.Exit(1)
	}
}

// cliMessage prefers the user-facing pipeline wording where one exists;
// config and filesystem errors keep their own text.
func cliMessage(err error) string {
	var validation *pipeline.ValidationError
	var generation *genai.GenerationError
	if errors.As(err, &validation) || errors.As(err, &generation) || errors.Is(err, pipeline.ErrSuperseded) {
		return pipeline.UserMessage(err)
	}
	return err.Error()
}

func run(ctx context.Context, mode pipeline.Mode) error {
	_ = godotenv.Load()
	cfg, err := infra.LoadConfig()
	if err != nil {
		return err
	}
	logger := infra.NewLogger(cfg.AppEnv)

	format, err := watermark.ParseFormat(flagFormat)
	if err != nil {
		return err
	}

	req := pipeline.Request{
		Mode:        mode,
		Prompt:      flagPrompt,
		StyleID:     flagStyle,
		AspectRatio: flagAspect,
		Format:      format,
		JPEGQuality: flagQuality,
	}

	if flagModel != "" {
		data, err := os.ReadFile(flagModel)
		if err != nil {
			return fmt.Errorf("read model image: %w", err)
		}
		req.Model = pipeline.LocalFile(data, "")
	} else if flagModelURL != "" {
		req.Model = pipeline.StockURL(flagModelURL)
	}
	if flagProduct != "" {
		data, err := os.ReadFile(flagProduct)
		if err != nil {
			return fmt.Errorf("read product image: %w", err)
		}
		req.Product = data
	}

	client := genai.NewClient(genai.Options{
		APIKey:     cfg.GeminiAPIKey,
		BaseURL:    cfg.GeminiBaseURL,
		ImageModel: cfg.GeminiImageModel,
		TextModel:  cfg.ImagenModel,
		Logger:     &logger,
	})
	orchestrator := pipeline.New(imaging.NewEncoder(nil), client, watermark.NewProcessor(nil), logger)

	result, err := orchestrator.Submit(ctx, req)
	if err != nil {
		return err
	}

	payload, err := imaging.ParseDataURI(result.DataURI)
	if err != nil {
		return err
	}
	data, err := payload.Bytes()
	if err != nil {
		return err
	}

	out := flagOut
	if out == "" {
		out = result.Filename
	}
	if err := os.WriteFile(out, data, 0o644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	logger.Info().Str("file", out).Msg("image saved")
	return nil
}
