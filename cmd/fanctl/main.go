// Command fanctl runs the document pipeline offline and maintains sessions.
//
// Usage:
//
//	fanctl ocr --image id.jpg
//	fanctl validate --image id.jpg --name "Jane Doe" --cpf 123.456.789-01
//	fanctl sessions sweep
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/albapepper/scoracle-fans/internal/config"
	"github.com/albapepper/scoracle-fans/internal/maintenance"
	"github.com/albapepper/scoracle-fans/internal/ocr"
	"github.com/albapepper/scoracle-fans/internal/ocr/tesseract"
	"github.com/albapepper/scoracle-fans/internal/profile"
	"github.com/albapepper/scoracle-fans/internal/session"
	"github.com/albapepper/scoracle-fans/internal/verify"
)

var logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

func main() {
	// Load .env if present
	_ = godotenv.Load(".env")

	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "fanctl",
		Short: "Scoracle fan profile tooling",
	}
	root.AddCommand(ocrCmd())
	root.AddCommand(validateCmd())
	root.AddCommand(sessionsCmd())
	return root
}

// --------------------------------------------------------------------------
// ocr / validate commands
// --------------------------------------------------------------------------

func newExtractor(langs []string) *ocr.Extractor {
	return ocr.NewExtractor(tesseract.New(), logger, ocr.WithLanguages(langs...))
}

func ocrCmd() *cobra.Command {
	var image string
	var langs []string
	cmd := &cobra.Command{
		Use:   "ocr",
		Short: "Print the text extracted from a document image",
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(image)
			if err != nil {
				return fmt.Errorf("read image: %w", err)
			}
			text := newExtractor(langs).Extract(cmd.Context(), data)
			if text == "" {
				return fmt.Errorf("no text extracted from %s", image)
			}
			fmt.Fprintln(cmd.OutOrStdout(), text)
			return nil
		},
	}
	cmd.Flags().StringVar(&image, "image", "", "Path to a JPEG or PNG document image")
	cmd.Flags().StringSliceVar(&langs, "lang", ocr.DefaultLanguages, "Tesseract languages")
	cmd.MarkFlagRequired("image")
	return cmd
}

type validateOutput struct {
	verify.Verdict
	DocumentType verify.DocumentType `json:"document_type"`
	CPFsFound    []string            `json:"cpfs_found"`
}

func validateCmd() *cobra.Command {
	var image, name, cpf string
	var langs []string
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Match a document image against a name and CPF",
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(image)
			if err != nil {
				return fmt.Errorf("read image: %w", err)
			}
			text := newExtractor(langs).Extract(cmd.Context(), data)
			return writeValidation(cmd, text, profile.Personal{
				Name: profile.Ptr(name),
				CPF:  profile.Ptr(cpf),
			})
		},
	}
	cmd.Flags().StringVar(&image, "image", "", "Path to a JPEG or PNG document image")
	cmd.Flags().StringVar(&name, "name", "", "Declared full name")
	cmd.Flags().StringVar(&cpf, "cpf", "", "Declared CPF (optional)")
	cmd.Flags().StringSliceVar(&langs, "lang", ocr.DefaultLanguages, "Tesseract languages")
	cmd.MarkFlagRequired("image")
	cmd.MarkFlagRequired("name")
	return cmd
}

func writeValidation(cmd *cobra.Command, text string, p profile.Personal) error {
	out := validateOutput{
		Verdict:      verify.Validate(text, p),
		DocumentType: verify.DetectDocumentType(text),
		CPFsFound:    verify.FindCPFs(text),
	}
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

// --------------------------------------------------------------------------
// sessions command
// --------------------------------------------------------------------------

func sessionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "Session store maintenance",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "sweep",
		Short: "Delete expired sessions from the configured store",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithStore(func(ctx context.Context, store session.Store) error {
				sweeper, ok := store.(session.Sweeper)
				if !ok {
					logger.Info("Store expires sessions on its own; nothing to sweep", "backend", store.Backend())
					return nil
				}
				n, err := maintenance.Sweep(ctx, sweeper, logger)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "removed %d expired session(s)\n", n)
				return nil
			})
		},
	})
	return cmd
}

func runWithStore(fn func(ctx context.Context, store session.Store) error) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	store, closeStore, err := session.Open(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("open session store: %w", err)
	}
	defer closeStore()

	return fn(ctx, store)
}
