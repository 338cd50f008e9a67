package analyses

import (
	"context"
	"errors"
	"fmt"
	"time"

	"resume-checker/internal/extract"
	"resume-checker/internal/llm"
	"resume-checker/internal/shared/metrics"
	"resume-checker/internal/shared/telemetry"
)

// State is a step of the per-action state machine.
type State string

const (
	StateIdle       State = "idle"
	StateValidating State = "validating"
	StateExtracting State = "extracting"
	StateCalling    State = "calling"
	StateSucceeded  State = "succeeded"
	StateFailed     State = "failed"
)

// Extractor turns resume bytes into the payload sent to the model.
type Extractor interface {
	FirstPage(ctx context.Context, data []byte) (extract.Payload, error)
}

// ResultState is the slice of session state the controller writes.
type ResultState interface {
	SetResult(text, label string)
	ClearResult()
}

// Request is one button press.
type Request struct {
	Action         Action
	JobDescription string
	Resume         []byte
}

// Outcome describes how a run ended.
type Outcome struct {
	Action      Action
	Status      State
	StatusLabel string
	Steps       []string
	Transitions []State
	Text        string
	Message     string
	Notice      string
	PageCount   int
	Err         error
}

// Failed reports whether the run ended in StateFailed.
func (o Outcome) Failed() bool { return o.Status == StateFailed }

// ErrorCode classifies Err for API responses.
func (o Outcome) ErrorCode() string { return errorCode(o.Err) }

// Service runs analyses. Timeout bounds extraction plus the model call; zero
// disables it.
type Service struct {
	Extractor Extractor
	LLM       llm.Client
	Timeout   time.Duration
}

// Run drives one action to a terminal state. It never returns an error; all
// failures are folded into the Outcome and the result state is cleared.
func (s *Service) Run(ctx context.Context, state ResultState, req Request) (out Outcome) {
	action := req.Action
	run := &runner{
		out:       Outcome{Action: action, Status: StateIdle, Transitions: []State{StateIdle}},
		requestID: requestIDFromContext(ctx),
	}
	start := time.Now()
	metrics.IncAnalysisStarted(action.Key)

	defer func() {
		if rec := recover(); rec != nil {
			run.fail(action, fmt.Errorf("analysis panicked: %v", rec))
		}
		if run.out.Failed() {
			state.ClearResult()
			metrics.IncAnalysisFailed(action.Key, run.out.ErrorCode())
		} else {
			metrics.IncAnalysisCompleted(action.Key)
		}
		metrics.ObserveAnalysisDurationMs(float64(time.Since(start).Microseconds()) / 1000.0)
		out = run.out
	}()

	run.enter(StateValidating)
	if len(req.Resume) == 0 {
		run.out.Err = ErrMissingInput
		run.out.Message = MessageMissingPDF
		run.enter(StateFailed)
		return run.out
	}

	run.out.StatusLabel = action.RunningLabel
	if s.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.Timeout)
		defer cancel()
	}

	run.enter(StateExtracting)
	run.step("Processing PDF file...")
	payload, err := s.extract(ctx, req.Resume)
	if err != nil {
		run.fail(action, err)
		return run.out
	}
	run.out.PageCount = payload.PageCount
	if payload.PageCount > 1 {
		run.out.Notice = fmt.Sprintf("Only the first page of %d was analyzed.", payload.PageCount)
	}

	run.enter(StateCalling)
	run.step(action.CallingStep)
	text, err := s.analyze(ctx, llm.AnalyzeInput{
		Prompt:         action.Prompt(),
		Document:       payload,
		JobDescription: req.JobDescription,
	})
	if err != nil {
		run.fail(action, err)
		return run.out
	}

	state.SetResult(text, action.Label)
	run.out.Text = text
	run.out.StatusLabel = action.DoneLabel
	run.enter(StateSucceeded)
	return run.out
}

func (s *Service) extract(ctx context.Context, data []byte) (extract.Payload, error) {
	if s.Extractor == nil {
		return extract.Payload{}, &extract.ProcessingError{Cause: errors.New("extractor not configured")}
	}
	payload, err := s.Extractor.FirstPage(ctx, data)
	if err == nil {
		return payload, nil
	}
	var procErr *extract.ProcessingError
	if errors.Is(err, ErrMissingInput) || errors.As(err, &procErr) {
		return extract.Payload{}, err
	}
	return extract.Payload{}, &extract.ProcessingError{Cause: err}
}

func (s *Service) analyze(ctx context.Context, input llm.AnalyzeInput) (string, error) {
	client := s.LLM
	if client == nil {
		client = llm.PlaceholderClient{}
	}
	text, err := client.Analyze(ctx, input)
	if err == nil {
		return text, nil
	}
	var analysisErr *llm.AnalysisError
	if errors.As(err, &analysisErr) {
		return "", err
	}
	return "", &llm.AnalysisError{Cause: err}
}

type runner struct {
	out       Outcome
	requestID string
}

func (r *runner) enter(next State) {
	prev := r.out.Status
	r.out.Status = next
	r.out.Transitions = append(r.out.Transitions, next)
	fields := map[string]any{
		"request_id":        r.requestID,
		"action":            r.out.Action.Key,
		"status_transition": string(prev) + "->" + string(next),
	}
	if next == StateFailed {
		fields["error_code"] = r.out.ErrorCode()
		if r.out.Err != nil {
			fields["error"] = r.out.Err.Error()
		}
		telemetry.Error("analysis.status", fields)
		return
	}
	telemetry.Info("analysis.status", fields)
}

func (r *runner) step(msg string) {
	r.out.Steps = append(r.out.Steps, msg)
}

func (r *runner) fail(action Action, err error) {
	if r.out.Status == StateFailed {
		return
	}
	r.out.Err = err
	if errors.Is(err, ErrMissingInput) {
		r.out.Message = MessageMissingPDF
	} else {
		r.out.Message = fmt.Sprintf("An error occurred: %v.%s", err, action.ErrorHint)
	}
	r.out.StatusLabel = action.FailedLabel
	r.out.Text = ""
	r.enter(StateFailed)
}
