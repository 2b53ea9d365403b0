package store

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"github.com/tracelayer/gridroute/pkg/errors"
	"github.com/tracelayer/gridroute/pkg/problem"
)

func testRun(name string) *Run {
	run := NewRun(name, "hash123", Options{Straps: true, Formats: []string{"svg", "json"}})
	run.CreatedAt = time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC)
	run.Elapsed = 42 * time.Millisecond

	res := problem.NewResult(name)
	res.AddRouted("a")
	res.AddRouted("b")
	run.Result = res
	run.Artifacts["svg"] = []byte("<svg/>")
	return run
}

func TestNewRun(t *testing.T) {
	run := NewRun("adder", "hash123", Options{Straps: true})

	if err := errors.ValidateRunID(run.ID); err != nil {
		t.Errorf("NewRun should produce a valid run id: %v", err)
	}
	if run.CreatedAt.IsZero() {
		t.Error("NewRun should set the creation time")
	}
	if !run.Options.Straps {
		t.Error("NewRun should keep the options")
	}
	if run.Artifacts == nil {
		t.Error("NewRun should initialize the artifact map")
	}

	if other := NewRun("adder", "hash123", Options{}); other.ID == run.ID {
		t.Error("runs should get distinct ids")
	}
}

func TestFileStorePutGet(t *testing.T) {
	ctx := context.Background()
	st, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore error: %v", err)
	}
	defer st.Close()

	run := testRun("adder")
	if err := st.Put(ctx, run); err != nil {
		t.Fatalf("Put error: %v", err)
	}

	got, err := st.Get(ctx, run.ID)
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if got.ID != run.ID || got.Name != "adder" || got.ProblemHash != "hash123" {
		t.Errorf("Get = %+v, want the stored run", got)
	}
	if !got.CreatedAt.Equal(run.CreatedAt) {
		t.Errorf("CreatedAt = %v, want %v", got.CreatedAt, run.CreatedAt)
	}
	if got.Elapsed != run.Elapsed {
		t.Errorf("Elapsed = %v, want %v", got.Elapsed, run.Elapsed)
	}
	if !got.Options.Straps || len(got.Options.Formats) != 2 {
		t.Errorf("Options = %+v, want the stored options", got.Options)
	}
	if got.Result == nil || got.Result.Routed != 2 {
		t.Errorf("Result = %+v, want 2 routed", got.Result)
	}
	if string(got.Artifacts["svg"]) != "<svg/>" {
		t.Errorf("Artifacts[svg] = %q, want the stored bytes", got.Artifacts["svg"])
	}
}

func TestFileStoreGetMissing(t *testing.T) {
	ctx := context.Background()
	st, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore error: %v", err)
	}

	_, err = st.Get(ctx, "0d4cdd6c-9d96-4b2f-a1f2-5c0b9a3f8e21")
	if !stderrors.Is(err, ErrNotFound) {
		t.Errorf("Get on a missing run = %v, want ErrNotFound", err)
	}

	// Malformed ids never touch the filesystem
	_, err = st.Get(ctx, "../../etc/passwd")
	if !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("Get with a malformed id = %v, want %s", err, errors.ErrCodeInvalidInput)
	}
}

func TestFileStoreList(t *testing.T) {
	ctx := context.Background()
	st, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore error: %v", err)
	}

	base := time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC)
	for i, name := range []string{"first", "second", "third"} {
		run := testRun(name)
		run.CreatedAt = base.Add(time.Duration(i) * time.Minute)
		if err := st.Put(ctx, run); err != nil {
			t.Fatalf("Put error: %v", err)
		}
	}

	runs, err := st.List(ctx, 0)
	if err != nil {
		t.Fatalf("List error: %v", err)
	}
	if len(runs) != 3 {
		t.Fatalf("List returned %d runs, want 3", len(runs))
	}
	if runs[0].Name != "third" || runs[2].Name != "first" {
		t.Errorf("List order = [%s %s %s], want newest first", runs[0].Name, runs[1].Name, runs[2].Name)
	}

	runs, err = st.List(ctx, 2)
	if err != nil {
		t.Fatalf("List error: %v", err)
	}
	if len(runs) != 2 || runs[0].Name != "third" {
		t.Errorf("List with limit 2 returned %d runs starting at %s", len(runs), runs[0].Name)
	}
}

func TestFileStoreDelete(t *testing.T) {
	ctx := context.Background()
	st, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore error: %v", err)
	}

	run := testRun("adder")
	if err := st.Put(ctx, run); err != nil {
		t.Fatalf("Put error: %v", err)
	}

	if err := st.Delete(ctx, run.ID); err != nil {
		t.Fatalf("Delete error: %v", err)
	}
	if _, err := st.Get(ctx, run.ID); !stderrors.Is(err, ErrNotFound) {
		t.Errorf("Get after Delete = %v, want ErrNotFound", err)
	}
	if err := st.Delete(ctx, run.ID); !stderrors.Is(err, ErrNotFound) {
		t.Errorf("Delete of a missing run = %v, want ErrNotFound", err)
	}
}

func TestFileStoreOverwrite(t *testing.T) {
	ctx := context.Background()
	st, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore error: %v", err)
	}

	run := testRun("adder")
	if err := st.Put(ctx, run); err != nil {
		t.Fatalf("Put error: %v", err)
	}
	run.Name = "renamed"
	if err := st.Put(ctx, run); err != nil {
		t.Fatalf("Put error: %v", err)
	}

	got, err := st.Get(ctx, run.ID)
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if got.Name != "renamed" {
		t.Errorf("Name = %q, Put should replace the stored run", got.Name)
	}

	runs, err := st.List(ctx, 0)
	if err != nil {
		t.Fatalf("List error: %v", err)
	}
	if len(runs) != 1 {
		t.Errorf("List returned %d runs after overwrite, want 1", len(runs))
	}
}
