package sessions

import (
	"sync"
	"time"
)

// Upload is the PDF currently held by the session's file picker.
type Upload struct {
	FileName string
	Data     []byte
}

// Result is the last analysis shown to the user.
type Result struct {
	Text  string
	Label string
}

// Empty reports whether there is nothing to display.
func (r Result) Empty() bool { return r.Text == "" }

// Status is what the status region shows after an action finishes.
type Status struct {
	Label   string
	Steps   []string
	Failed  bool
	Message string
	Notice  string
}

// Session is per-browser state. It lives in memory only.
type Session struct {
	ID string

	// action serializes analysis runs within one session.
	action sync.Mutex

	mu             sync.Mutex
	jobDescription string
	upload         *Upload
	result         Result
	status         *Status
	lastSeen       time.Time
}

func newSession(id string, now time.Time) *Session {
	return &Session{ID: id, lastSeen: now}
}

// LockAction blocks until no other action is running in this session.
func (s *Session) LockAction() { s.action.Lock() }

// UnlockAction releases the action lock.
func (s *Session) UnlockAction() { s.action.Unlock() }

// SetResult stores a successful analysis.
func (s *Session) SetResult(text, label string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.result = Result{Text: text, Label: label}
}

// ClearResult resets both the result text and its label.
func (s *Session) ClearResult() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.result = Result{}
}

// Result returns the stored analysis.
func (s *Session) Result() Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.result
}

// SetJobDescription remembers the text area contents.
func (s *Session) SetJobDescription(jd string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobDescription = jd
}

// JobDescription returns the remembered text area contents.
func (s *Session) JobDescription() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.jobDescription
}

// SetUpload replaces the held PDF. A nil upload clears it.
func (s *Session) SetUpload(u *Upload) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.upload = u
}

// Upload returns the held PDF, or nil.
func (s *Session) Upload() *Upload {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.upload
}

// SetStatus records the status of the last action.
func (s *Session) SetStatus(st *Status) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = st
}

// TakeStatus returns the last status and clears it; it is shown once.
func (s *Session) TakeStatus() *Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.status
	s.status = nil
	return st
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastSeen = now
}

func (s *Session) idleSince(now time.Time) time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return now.Sub(s.lastSeen)
}
