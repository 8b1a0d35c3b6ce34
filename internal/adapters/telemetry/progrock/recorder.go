// Package progrock provides the Progrock implementation of the telemetry adapter.
package progrock

import (
	"context"
	"io"
	"sync"

	"github.com/opencontainers/go-digest"
	"github.com/vito/progrock"
	"go.trai.ch/assembly/internal/core/ports"
)

var _ ports.Telemetry = (*Recorder)(nil)

// Recorder implements ports.Telemetry using the progrock library.
// Every build and run becomes one vertex.
type Recorder struct {
	w   progrock.Writer
	rec *progrock.Recorder

	closeOnce sync.Once
	closeErr  error
}

// New creates a new Recorder rendering to a Console that stays silent until
// SetOutput is called.
func New() ports.Telemetry {
	return NewRecorder(NewConsole(nil))
}

// NewRecorder creates a new Recorder with the given writer.
func NewRecorder(w progrock.Writer) *Recorder {
	return &Recorder{
		w:   w,
		rec: progrock.NewRecorder(w),
	}
}

// Record starts recording a new vertex keyed by the digest of name.
func (r *Recorder) Record(ctx context.Context, name string) (context.Context, ports.Vertex) {
	v := r.rec.Vertex(digest.FromString(name), name)
	vertex := &Vertex{vertex: v}
	return ports.ContextWithVertex(ctx, vertex), vertex
}

// SetOutput directs progress to w when the writer is a Console.
func (r *Recorder) SetOutput(w io.Writer) {
	if c, ok := r.w.(*Console); ok {
		c.SetOutput(w)
	}
}

// Close flushes and closes the recording session. Later calls return the
// result of the first.
func (r *Recorder) Close() error {
	r.closeOnce.Do(func() {
		r.closeErr = r.rec.Close()
	})
	return r.closeErr
}
