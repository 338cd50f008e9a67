package sessions

import (
	"testing"
	"time"
)

func TestGetOrCreateIssuesAndReuses(t *testing.T) {
	store := NewStore(time.Minute)

	sess, created := store.GetOrCreate("")
	if !created || sess.ID == "" {
		t.Fatalf("expected a new session with an id")
	}

	again, created := store.GetOrCreate(sess.ID)
	if created {
		t.Fatalf("expected existing session to be reused")
	}
	if again != sess {
		t.Fatalf("expected same session pointer")
	}

	other, created := store.GetOrCreate("unknown-id")
	if !created || other.ID == "unknown-id" {
		t.Fatalf("unknown ids must not be adopted, got %q", other.ID)
	}
}

func TestSessionsExpire(t *testing.T) {
	store := NewStore(time.Minute)
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	sess, _ := store.GetOrCreate("")
	now = now.Add(30 * time.Second)
	if _, ok := store.Get(sess.ID); !ok {
		t.Fatalf("expected session to be live")
	}

	now = now.Add(2 * time.Minute)
	if _, ok := store.Get(sess.ID); ok {
		t.Fatalf("expected session to be expired")
	}
	if store.Len() != 0 {
		t.Fatalf("expected expired session to be evicted, have %d", store.Len())
	}
}

func TestEvictionOnCreate(t *testing.T) {
	store := NewStore(time.Minute)
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	store.GetOrCreate("")
	store.GetOrCreate("")
	now = now.Add(5 * time.Minute)
	store.GetOrCreate("")

	if store.Len() != 1 {
		t.Fatalf("expected stale sessions to be evicted, have %d", store.Len())
	}
}

func TestSessionsAreIsolated(t *testing.T) {
	store := NewStore(time.Minute)
	a, _ := store.GetOrCreate("")
	b, _ := store.GetOrCreate("")

	a.SetResult("text", "ATS Score")
	if !b.Result().Empty() {
		t.Fatalf("result leaked across sessions")
	}
}

func TestResultSetAndClear(t *testing.T) {
	sess := newSession("s", time.Now())
	if !sess.Result().Empty() {
		t.Fatalf("expected empty initial result")
	}

	sess.SetResult("Score: 82", "ATS Score")
	if got := sess.Result(); got.Text != "Score: 82" || got.Label != "ATS Score" {
		t.Fatalf("unexpected result %+v", got)
	}

	sess.ClearResult()
	if got := sess.Result(); got != (Result{}) {
		t.Fatalf("expected cleared result, got %+v", got)
	}
}

func TestTakeStatusIsOneShot(t *testing.T) {
	sess := newSession("s", time.Now())
	sess.SetStatus(&Status{Label: "done"})

	if st := sess.TakeStatus(); st == nil || st.Label != "done" {
		t.Fatalf("unexpected status %+v", st)
	}
	if st := sess.TakeStatus(); st != nil {
		t.Fatalf("expected status to be consumed")
	}
}
