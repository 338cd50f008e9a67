package analyses

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"resume-checker/internal/extract"
	"resume-checker/internal/extract/extracttest"
	"resume-checker/internal/llm"
	"resume-checker/internal/sessions"
)

type fakeExtractor struct {
	mu      sync.Mutex
	payload extract.Payload
	err     error
	calls   int
}

func (f *fakeExtractor) FirstPage(ctx context.Context, data []byte) (extract.Payload, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return extract.Payload{}, f.err
	}
	return f.payload, nil
}

func (f *fakeExtractor) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeLLM struct {
	mu        sync.Mutex
	text      string
	err       error
	panicWith any
	block     bool
	inputs    []llm.AnalyzeInput
}

func (f *fakeLLM) Analyze(ctx context.Context, input llm.AnalyzeInput) (string, error) {
	f.mu.Lock()
	f.inputs = append(f.inputs, input)
	text, err, panicWith, block := f.text, f.err, f.panicWith, f.block
	f.mu.Unlock()

	if panicWith != nil {
		panic(panicWith)
	}
	if block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	return text, err
}

func (f *fakeLLM) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.inputs)
}

func testPayload() extract.Payload {
	data := extracttest.JPEG()
	return extract.Payload{MIMEType: extract.MIMEJPEG, Data: data, Base64: "ZmFrZQ==", PageCount: 1}
}

func newSession(t *testing.T) *sessions.Session {
	t.Helper()
	sess, _ := sessions.NewStore(time.Minute).GetOrCreate("")
	return sess
}

func TestRunWithoutResumeNeverCallsCollaborators(t *testing.T) {
	for _, action := range Actions {
		t.Run(action.Key, func(t *testing.T) {
			ex := &fakeExtractor{payload: testPayload()}
			client := &fakeLLM{text: "unused"}
			svc := &Service{Extractor: ex, LLM: client}
			sess := newSession(t)
			sess.SetResult("stale", "Resume Review")

			out := svc.Run(context.Background(), sess, Request{Action: action, JobDescription: "Go engineer"})

			if !out.Failed() {
				t.Fatalf("expected failure, got %s", out.Status)
			}
			if out.Message != "Please upload a PDF file." {
				t.Fatalf("unexpected message %q", out.Message)
			}
			if !errors.Is(out.Err, ErrMissingInput) || out.ErrorCode() != ErrorCodeMissingInput {
				t.Fatalf("expected missing input error, got %v", out.Err)
			}
			if got := sess.Result(); got != (sessions.Result{}) {
				t.Fatalf("expected cleared result, got %+v", got)
			}
			if ex.callCount() != 0 || client.callCount() != 0 {
				t.Fatalf("expected no extractor or client calls, got %d/%d", ex.callCount(), client.callCount())
			}
			assertTransitions(t, out, StateIdle, StateValidating, StateFailed)
		})
	}
}

func TestRunExtractorFailure(t *testing.T) {
	causes := []struct {
		name string
		err  error
	}{
		{name: "processing error", err: &extract.ProcessingError{Cause: errors.New("malformed xref table")}},
		{name: "plain error is wrapped", err: errors.New("malformed xref table")},
	}
	for _, action := range Actions {
		for _, tc := range causes {
			t.Run(action.Key+"/"+tc.name, func(t *testing.T) {
				ex := &fakeExtractor{err: tc.err}
				client := &fakeLLM{text: "unused"}
				svc := &Service{Extractor: ex, LLM: client}
				sess := newSession(t)
				sess.SetResult("stale", "ATS Score")

				out := svc.Run(context.Background(), sess, Request{Action: action, Resume: []byte("%PDF")})

				if !out.Failed() || out.ErrorCode() != ErrorCodeDocumentProcessing {
					t.Fatalf("expected document processing failure, got %s / %q", out.Status, out.ErrorCode())
				}
				if !strings.Contains(out.Message, "malformed xref table") {
					t.Fatalf("expected cause in message, got %q", out.Message)
				}
				if !strings.HasPrefix(out.Message, "An error occurred: ") {
					t.Fatalf("unexpected message shape %q", out.Message)
				}
				if out.StatusLabel != action.FailedLabel {
					t.Fatalf("expected %q, got %q", action.FailedLabel, out.StatusLabel)
				}
				if got := sess.Result(); got != (sessions.Result{}) {
					t.Fatalf("expected cleared result, got %+v", got)
				}
				if client.callCount() != 0 {
					t.Fatalf("expected no client calls, got %d", client.callCount())
				}
				assertTransitions(t, out, StateIdle, StateValidating, StateExtracting, StateFailed)
			})
		}
	}
}

func TestRunClientFailure(t *testing.T) {
	for _, action := range Actions {
		t.Run(action.Key, func(t *testing.T) {
			ex := &fakeExtractor{payload: testPayload()}
			client := &fakeLLM{err: errors.New("quota exceeded")}
			svc := &Service{Extractor: ex, LLM: client}
			sess := newSession(t)
			sess.SetResult("stale", "Match Percentage")

			out := svc.Run(context.Background(), sess, Request{Action: action, Resume: []byte("%PDF")})

			if !out.Failed() || out.ErrorCode() != ErrorCodeAnalysis {
				t.Fatalf("expected analysis failure, got %s / %q", out.Status, out.ErrorCode())
			}
			var analysisErr *llm.AnalysisError
			if !errors.As(out.Err, &analysisErr) {
				t.Fatalf("expected AnalysisError, got %T", out.Err)
			}
			if !strings.Contains(out.Message, "quota exceeded") {
				t.Fatalf("expected cause in message, got %q", out.Message)
			}
			if !strings.HasSuffix(out.Message, "."+action.ErrorHint) {
				t.Fatalf("expected message to end with hint %q, got %q", action.ErrorHint, out.Message)
			}
			if got := sess.Result(); got != (sessions.Result{}) {
				t.Fatalf("expected cleared result, got %+v", got)
			}
			assertTransitions(t, out, StateIdle, StateValidating, StateExtracting, StateCalling, StateFailed)
		})
	}
}

func TestRunSuccessStoresTextAndLabel(t *testing.T) {
	for _, action := range Actions {
		t.Run(action.Key, func(t *testing.T) {
			payload := testPayload()
			ex := &fakeExtractor{payload: payload}
			reply := "  **" + action.Label + "**\n- keep   spacing  \n"
			client := &fakeLLM{text: reply}
			svc := &Service{Extractor: ex, LLM: client}
			sess := newSession(t)

			out := svc.Run(context.Background(), sess, Request{
				Action:         action,
				JobDescription: "Platform engineer",
				Resume:         []byte("%PDF"),
			})

			if out.Status != StateSucceeded {
				t.Fatalf("expected success, got %s (%v)", out.Status, out.Err)
			}
			if got := sess.Result(); got.Text != reply || got.Label != action.Label {
				t.Fatalf("unexpected result %+v", got)
			}
			if out.StatusLabel != action.DoneLabel {
				t.Fatalf("expected %q, got %q", action.DoneLabel, out.StatusLabel)
			}
			wantSteps := []string{"Processing PDF file...", action.CallingStep}
			if strings.Join(out.Steps, "|") != strings.Join(wantSteps, "|") {
				t.Fatalf("unexpected steps %v", out.Steps)
			}
			if client.callCount() != 1 {
				t.Fatalf("expected one client call, got %d", client.callCount())
			}
			in := client.inputs[0]
			if in.Prompt != action.Prompt() || in.Prompt == "" {
				t.Fatalf("expected the %s prompt", action.Key)
			}
			if in.JobDescription != "Platform engineer" {
				t.Fatalf("unexpected job description %q", in.JobDescription)
			}
			if in.Document.MIMEType != extract.MIMEJPEG || in.Document.Base64 != payload.Base64 {
				t.Fatalf("unexpected document %+v", in.Document)
			}
			assertTransitions(t, out, StateIdle, StateValidating, StateExtracting, StateCalling, StateSucceeded)
		})
	}
}

func TestRunATSScoreScenario(t *testing.T) {
	raster := &extracttest.Rasterizer{}
	client := &fakeLLM{text: "Score: 82\n..."}
	svc := &Service{Extractor: extract.New(raster), LLM: client}
	sess := newSession(t)
	action, err := ParseAction("ats_score")
	if err != nil {
		t.Fatalf("parse action: %v", err)
	}

	out := svc.Run(context.Background(), sess, Request{
		Action:         action,
		JobDescription: "Senior backend engineer, Go, distributed systems",
		Resume:         extracttest.MinimalPDF(1),
	})

	if out.Status != StateSucceeded {
		t.Fatalf("expected success, got %s (%v)", out.Status, out.Err)
	}
	if raster.CallCount() != 1 {
		t.Fatalf("expected one rasterization, got %d", raster.CallCount())
	}
	in := client.inputs[0]
	want, _ := llm.PromptTemplate("ats_score")
	if in.Prompt != want {
		t.Fatalf("expected ATS prompt")
	}
	if in.Document.MIMEType != "image/jpeg" || in.Document.Base64 == "" {
		t.Fatalf("expected a JPEG payload, got %+v", in.Document.MIMEType)
	}
	if in.JobDescription != "Senior backend engineer, Go, distributed systems" {
		t.Fatalf("unexpected job description %q", in.JobDescription)
	}
	if got := sess.Result(); got.Text != "Score: 82\n..." || got.Label != "ATS Score" {
		t.Fatalf("unexpected result %+v", got)
	}
	if out.Notice != "" {
		t.Fatalf("did not expect a notice for a one-page resume, got %q", out.Notice)
	}
}

func TestRunMultiPageNotice(t *testing.T) {
	svc := &Service{Extractor: extract.New(&extracttest.Rasterizer{}), LLM: &fakeLLM{text: "ok"}}
	sess := newSession(t)

	out := svc.Run(context.Background(), sess, Request{Action: Actions[0], Resume: extracttest.MinimalPDF(3)})

	if out.Status != StateSucceeded {
		t.Fatalf("expected success, got %s (%v)", out.Status, out.Err)
	}
	if out.PageCount != 3 {
		t.Fatalf("expected page count 3, got %d", out.PageCount)
	}
	if !strings.Contains(out.Notice, "first page") {
		t.Fatalf("expected first-page notice, got %q", out.Notice)
	}
}

func TestRunTimeout(t *testing.T) {
	svc := &Service{
		Extractor: &fakeExtractor{payload: testPayload()},
		LLM:       &fakeLLM{block: true},
		Timeout:   20 * time.Millisecond,
	}
	sess := newSession(t)
	sess.SetResult("stale", "Resume Review")

	out := svc.Run(context.Background(), sess, Request{Action: Actions[1], Resume: []byte("%PDF")})

	if out.ErrorCode() != ErrorCodeAnalysis {
		t.Fatalf("expected analysis error, got %q", out.ErrorCode())
	}
	if !errors.Is(out.Err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", out.Err)
	}
	if !sess.Result().Empty() {
		t.Fatalf("expected cleared result")
	}
}

func TestRunRecoversPanics(t *testing.T) {
	svc := &Service{
		Extractor: &fakeExtractor{payload: testPayload()},
		LLM:       &fakeLLM{panicWith: "nil map write"},
	}
	sess := newSession(t)
	sess.SetResult("stale", "Resume Review")

	out := svc.Run(context.Background(), sess, Request{Action: Actions[2], Resume: []byte("%PDF")})

	if !out.Failed() {
		t.Fatalf("expected failure, got %s", out.Status)
	}
	if !strings.Contains(out.Message, "nil map write") {
		t.Fatalf("expected panic value in message, got %q", out.Message)
	}
	if !sess.Result().Empty() {
		t.Fatalf("expected cleared result")
	}
}

func TestRunWithoutClientFailsAsAnalysisError(t *testing.T) {
	svc := &Service{Extractor: &fakeExtractor{payload: testPayload()}}
	out := svc.Run(context.Background(), newSession(t), Request{Action: Actions[3], Resume: []byte("%PDF")})
	if out.ErrorCode() != ErrorCodeAnalysis {
		t.Fatalf("expected analysis error, got %q", out.ErrorCode())
	}
	if !errors.Is(out.Err, llm.ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", out.Err)
	}
}

func TestParseAction(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "resume_review", want: "Resume Review"},
		{in: " ATS_SCORE ", want: "ATS Score"},
		{in: "Missing Keywords", want: "Missing Keywords"},
		{in: "match_percentage", want: "Match Percentage"},
		{in: "improvement_tips", want: "Improvement Tips"},
		{in: "", wantErr: true},
		{in: "summarize", wantErr: true},
	}
	for _, tc := range tests {
		got, err := ParseAction(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Fatalf("%q: expected error", tc.in)
			}
			continue
		}
		if err != nil {
			t.Fatalf("%q: unexpected error %v", tc.in, err)
		}
		if got.Label != tc.want {
			t.Fatalf("%q: expected %q, got %q", tc.in, tc.want, got.Label)
		}
	}
}

func TestEveryActionHasAPrompt(t *testing.T) {
	seen := map[string]bool{}
	for _, a := range Actions {
		if a.Prompt() == "" {
			t.Fatalf("%s has no prompt", a.Key)
		}
		if seen[a.Prompt()] {
			t.Fatalf("%s shares a prompt with another action", a.Key)
		}
		seen[a.Prompt()] = true
	}
	if len(Actions) != 5 {
		t.Fatalf("expected five actions, got %d", len(Actions))
	}
}

func assertTransitions(t *testing.T, out Outcome, want ...State) {
	t.Helper()
	if len(out.Transitions) != len(want) {
		t.Fatalf("expected transitions %v, got %v", want, out.Transitions)
	}
	for i := range want {
		if out.Transitions[i] != want[i] {
			t.Fatalf("expected transitions %v, got %v", want, out.Transitions)
		}
	}
}
