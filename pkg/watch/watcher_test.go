package watch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

type recorder struct {
	events []Event
}

func (r *recorder) handle(_ context.Context, ev Event) {
	r.events = append(r.events, ev)
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
}

func TestNewDefaults(t *testing.T) {
	w, err := New("doc.txt", Config{})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if !filepath.IsAbs(w.Path()) {
		t.Errorf("Path() = %q, want absolute", w.Path())
	}
	if w.debounce != DefaultDebounce {
		t.Errorf("debounce = %v, want %v", w.debounce, DefaultDebounce)
	}
}

func TestCheckReportsChangesOnly(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.txt")
	writeFile(t, path, "4.\n(1) foo")

	w, err := New(path, Config{})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	rec := &recorder{}
	ctx := context.Background()

	if err := w.check(ctx, rec.handle); err != nil {
		t.Fatalf("check() error = %v", err)
	}
	if err := w.check(ctx, rec.handle); err != nil {
		t.Fatalf("check() error = %v", err)
	}
	if len(rec.events) != 1 {
		t.Fatalf("got %d events for unchanged content, want 1", len(rec.events))
	}
	if string(rec.events[0].Data) != "4.\n(1) foo" || rec.events[0].Hash == "" {
		t.Errorf("event = %+v", rec.events[0])
	}

	writeFile(t, path, "5.\n(a) bar")
	if err := w.check(ctx, rec.handle); err != nil {
		t.Fatalf("check() error = %v", err)
	}
	if len(rec.events) != 2 || string(rec.events[1].Data) != "5.\n(a) bar" {
		t.Fatalf("events = %+v", rec.events)
	}
}

func TestCheckReportsRemovalOnce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.txt")
	writeFile(t, path, "4.")

	w, _ := New(path, Config{})
	rec := &recorder{}
	ctx := context.Background()

	_ = w.check(ctx, rec.handle)
	if err := os.Remove(path); err != nil {
		t.Fatal(err)
	}
	_ = w.check(ctx, rec.handle)
	_ = w.check(ctx, rec.handle)

	if len(rec.events) != 2 || !rec.events[1].Removed {
		t.Fatalf("events = %+v, want one removal", rec.events)
	}

	// Recreating the file with the old content is reported again.
	writeFile(t, path, "4.")
	_ = w.check(ctx, rec.handle)
	if len(rec.events) != 3 || rec.events[2].Removed {
		t.Fatalf("events = %+v, want content after recreation", rec.events)
	}
}

func TestRun(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "doc.txt")
	writeFile(t, path, "first")

	w, err := New(path, Config{Debounce: 20 * time.Millisecond})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	events := make(chan Event, 8)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- w.Run(ctx, func(_ context.Context, ev Event) {
			events <- ev
		})
	}()

	expect := func(want string) {
		t.Helper()
		select {
		case ev := <-events:
			if string(ev.Data) != want {
				t.Fatalf("event data = %q, want %q", ev.Data, want)
			}
		case <-time.After(5 * time.Second):
			t.Fatalf("timed out waiting for %q", want)
		}
	}

	expect("first")

	// Writes to other files in the directory are ignored.
	writeFile(t, filepath.Join(dir, "other.txt"), "noise")
	writeFile(t, path, "second")
	expect("second")

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run() error = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run() did not return after cancel")
	}
}

func TestRunMissingDirectory(t *testing.T) {
	w, _ := New(filepath.Join(t.TempDir(), "missing", "doc.txt"), Config{})
	if err := w.Run(context.Background(), func(context.Context, Event) {}); err == nil {
		t.Error("Run() error = nil for missing directory")
	}
}
