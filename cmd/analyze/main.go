package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"resume-checker/internal/analyses"
	"resume-checker/internal/extract"
	"resume-checker/internal/llm/gemini"
	"resume-checker/internal/shared/config"
)

func main() {
	cfg := config.Load()

	resumePath := flag.String("resume", "", "Path to resume PDF")
	jdPath := flag.String("jd", "", "Path to job description file (optional)")
	actionKey := flag.String("action", analyses.KeyResumeReview, "Action: resume_review, improvement_tips, missing_keywords, match_percentage, ats_score")
	model := flag.String("model", cfg.GeminiModel, "Gemini model")
	outPath := flag.String("out", "", "Path to write the result text (optional)")
	flag.Parse()

	cfg.GeminiModel = *model
	if err := cfg.Validate(); err != nil {
		exitErr(err.Error())
	}
	action, err := analyses.ParseAction(*actionKey)
	if err != nil {
		exitErr(fmt.Sprintf("%v: %s", err, *actionKey))
	}

	var resume []byte
	if strings.TrimSpace(*resumePath) != "" {
		resume, err = os.ReadFile(*resumePath)
		if err != nil {
			exitErr(fmt.Sprintf("read resume: %v", err))
		}
	}
	jobDescription := ""
	if strings.TrimSpace(*jdPath) != "" {
		jdBytes, err := os.ReadFile(*jdPath)
		if err != nil {
			exitErr(fmt.Sprintf("read job description: %v", err))
		}
		jobDescription = string(jdBytes)
	}

	ctx := context.Background()
	client, err := gemini.NewClient(ctx, cfg.GoogleAPIKey, cfg.GeminiModel)
	if err != nil {
		exitErr(err.Error())
	}
	svc := &analyses.Service{
		Extractor: extract.New(extract.NewPdftoppm(cfg.PdftoppmPath, cfg.RasterDPI)),
		LLM:       client,
		Timeout:   cfg.AnalysisTimeout,
	}

	out, closeOut, err := openOutput(*outPath, os.Stdout)
	if err != nil {
		exitErr(err.Error())
	}
	runErr := run(ctx, svc, action, jobDescription, resume, out, os.Stderr)
	if err := closeOut(); err != nil {
		exitErr(fmt.Sprintf("close output: %v", err))
	}
	if runErr != nil {
		os.Exit(1)
	}
}

// openOutput returns the writer for the result text. The close func must run
// before the process exits.
func openOutput(path string, stdout io.Writer) (io.Writer, func() error, error) {
	if path == "" {
		return stdout, func() error { return nil }, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("create output: %w", err)
	}
	return f, f.Close, nil
}

// lastResult is the CLI's result state: one run, one result.
type lastResult struct {
	text  string
	label string
}

func (r *lastResult) SetResult(text, label string) { r.text, r.label = text, label }
func (r *lastResult) ClearResult() { r.text, r.label = "", "" }

type runner interface {
	Run(ctx context.Context, state analyses.ResultState, req analyses.Request) analyses.Outcome
}

func run(ctx context.Context, svc runner, action analyses.Action, jobDescription string, resume []byte, stdout, stderr io.Writer) error {
	var state lastResult
	outcome := svc.Run(ctx, &state, analyses.Request{
		Action:         action,
		JobDescription: jobDescription,
		Resume:         resume,
	})
	for _, step := range outcome.Steps {
		_, _ = fmt.Fprintln(stderr, step)
	}
	if outcome.StatusLabel != "" {
		_, _ = fmt.Fprintln(stderr, outcome.StatusLabel)
	}
	if outcome.Notice != "" {
		_, _ = fmt.Fprintln(stderr, outcome.Notice)
	}
	if outcome.Failed() {
		_, _ = fmt.Fprintln(stderr, outcome.Message)
		return outcome.Err
	}
	_, err := fmt.Fprintf(stdout, "Results for: %s\n\n%s\n", state.label, state.text)
	return err
}

func exitErr(msg string) {
	_, _ = fmt.Fprintln(os.Stderr, msg)
	os.Exit(1)
}
