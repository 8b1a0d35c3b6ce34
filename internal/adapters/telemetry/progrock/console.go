package progrock

import (
	"bytes"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/vito/progrock"
)

var _ progrock.Writer = (*Console)(nil)

// Console renders the progrock stream as plain lines: one line when a vertex
// starts, its output indented, and one line when it completes. Nothing is
// written until an output is set.
type Console struct {
	mu  sync.Mutex
	out io.Writer

	names   map[string]string
	done    map[string]bool
	partial map[string][]byte
	order   []string
}

// NewConsole creates a Console writing to out, which may be nil.
func NewConsole(out io.Writer) *Console {
	return &Console{
		out:     out,
		names:   make(map[string]string),
		done:    make(map[string]bool),
		partial: make(map[string][]byte),
	}
}

// SetOutput starts or redirects rendering.
func (c *Console) SetOutput(w io.Writer) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.out = w
}

// WriteStatus renders one update.
func (c *Console) WriteStatus(update *progrock.StatusUpdate) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.out == nil {
		return nil
	}
	for _, v := range update.Vertexes {
		c.vertex(v)
	}
	for _, l := range update.Logs {
		c.log(l)
	}
	return nil
}

func (c *Console) vertex(v *progrock.Vertex) {
	_, seen := c.names[v.Id]
	if !seen || (c.done[v.Id] && v.Completed == nil) {
		if !seen {
			c.order = append(c.order, v.Id)
		}
		c.names[v.Id] = v.Name
		c.done[v.Id] = false
		_, _ = fmt.Fprintf(c.out, "=> %s\n", v.Name)
	}

	if v.Completed == nil || c.done[v.Id] {
		return
	}
	c.done[v.Id] = true
	c.flush(v.Id)

	var took time.Duration
	if v.Started != nil {
		took = v.Completed.AsTime().Sub(v.Started.AsTime()).Round(time.Millisecond)
	}
	if v.Error != nil {
		_, _ = fmt.Fprintf(c.out, "✗ %s: %s [%s]\n", v.Name, *v.Error, took)
		return
	}
	_, _ = fmt.Fprintf(c.out, "✓ %s [%s]\n", v.Name, took)
}

func (c *Console) log(l *progrock.VertexLog) {
	buf := append(c.partial[l.Vertex], l.Data...)
	for {
		i := bytes.IndexByte(buf, '\n')
		if i < 0 {
			break
		}
		_, _ = fmt.Fprintf(c.out, "  %s\n", buf[:i])
		buf = buf[i+1:]
	}
	if len(buf) == 0 {
		delete(c.partial, l.Vertex)
		return
	}
	c.partial[l.Vertex] = bytes.Clone(buf)
}

// flush writes a vertex's unterminated output line.
func (c *Console) flush(id string) {
	if rest, ok := c.partial[id]; ok {
		_, _ = fmt.Fprintf(c.out, "  %s\n", rest)
		delete(c.partial, id)
	}
}

// Close writes any pending output.
func (c *Console) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.out == nil {
		return nil
	}
	for _, id := range c.order {
		c.flush(id)
	}
	return nil
}
