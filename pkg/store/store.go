// Package store persists routing runs.
//
// A run records one routing invocation: the problem hash, the options it ran
// with, the per-net outcome, and the rendered artifacts. The RunStore
// interface has two implementations:
//   - file: JSON files in a config directory, the CLI default
//   - mongo: MongoDB collection for server deployments
//
// # Usage
//
// Create a store:
//
//	// CLI
//	st, err := store.NewFileStore("") // uses ~/.config/gridroute/runs/
//
//	// Server
//	st, err := store.NewMongoStore(ctx, "mongodb://localhost:27017", "gridroute")
//
// Persist and retrieve runs:
//
//	run := store.NewRun("adder", problemHash, store.Options{Straps: true})
//	run.Result = result
//	if err := st.Put(ctx, run); err != nil {
//	    return err
//	}
//
//	run, err := st.Get(ctx, id)
//	if errors.Is(err, store.ErrNotFound) {
//	    // No such run
//	}
package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/tracelayer/gridroute/pkg/problem"
)

// ErrNotFound is returned when a run does not exist.
var ErrNotFound = errors.New("run not found")

// Options captures the routing options a run was produced with.
type Options struct {
	Straps  bool     `json:"straps,omitempty" bson:"straps,omitempty"`
	Formats []string `json:"formats,omitempty" bson:"formats,omitempty"`
}

// Run records one routing invocation together with its outputs.
type Run struct {
	ID          string            `json:"id" bson:"_id"`
	Name        string            `json:"name,omitempty" bson:"name,omitempty"`
	CreatedAt   time.Time         `json:"created_at" bson:"created_at"`
	Elapsed     time.Duration     `json:"elapsed,omitempty" bson:"elapsed,omitempty"`
	ProblemHash string            `json:"problem_hash" bson:"problem_hash"`
	Options     Options           `json:"options" bson:"options"`
	Result      *problem.Result   `json:"result,omitempty" bson:"result,omitempty"`
	Artifacts   map[string][]byte `json:"artifacts,omitempty" bson:"artifacts,omitempty"`
}

// NewRun creates a run with a fresh ID and creation timestamp.
func NewRun(name, problemHash string, opts Options) *Run {
	return &Run{
		ID:          uuid.NewString(),
		Name:        name,
		CreatedAt:   time.Now().UTC(),
		ProblemHash: problemHash,
		Options:     opts,
		Artifacts:   make(map[string][]byte),
	}
}

// RunStore is the interface for run storage backends.
type RunStore interface {
	// Put stores a run, replacing any run with the same ID.
	Put(ctx context.Context, run *Run) error

	// Get retrieves a run by ID.
	// Returns ErrNotFound if the run does not exist.
	Get(ctx context.Context, id string) (*Run, error)

	// List returns runs sorted newest first.
	// A limit <= 0 returns all runs.
	List(ctx context.Context, limit int) ([]*Run, error)

	// Delete removes a run.
	// Returns ErrNotFound if the run does not exist.
	Delete(ctx context.Context, id string) error

	// Close releases backend resources.
	Close() error
}
