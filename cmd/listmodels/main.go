package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"resume-checker/internal/llm/gemini"
	"resume-checker/internal/shared/config"
)

type modelLister interface {
	ListGenerationModels(ctx context.Context) ([]string, error)
}

func main() {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		exitErr(err.Error())
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client, err := gemini.NewClient(ctx, cfg.GoogleAPIKey, cfg.GeminiModel)
	if err != nil {
		exitErr(err.Error())
	}
	if err := run(ctx, os.Stdout, client); err != nil {
		exitErr(err.Error())
	}
}

func run(ctx context.Context, w io.Writer, lister modelLister) error {
	names, err := lister.ListGenerationModels(ctx)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintln(w, "Available Models for your API Key:"); err != nil {
		return err
	}
	for _, name := range names {
		if _, err := fmt.Fprintf(w, "- %s\n", name); err != nil {
			return err
		}
	}
	return nil
}

func exitErr(msg string) {
	_, _ = fmt.Fprintln(os.Stderr, msg)
	os.Exit(1)
}
