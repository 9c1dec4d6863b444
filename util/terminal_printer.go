package util

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/gosuri/uilive"
)

// TerminalPrinter redraws a set of frames in place every frequency.
type TerminalPrinter struct {
	frames    []*Frame
	frequency time.Duration
	doneCh    chan struct{}
	stoppedCh chan struct{}

	writer  *uilive.Writer
	writers []io.Writer
}

func NewTerminalPrinter(out io.Writer, frequency time.Duration) *TerminalPrinter {
	writer := uilive.New()
	writer.Out = out
	return &TerminalPrinter{
		frames:    make([]*Frame, 0),
		frequency: frequency,
		doneCh:    make(chan struct{}),
		stoppedCh: make(chan struct{}),

		writer:  writer,
		writers: make([]io.Writer, 0),
	}
}

// NewFrame adds a region to the output. The first frame is drawn on the
// printer's own line, later ones below it.
func (p *TerminalPrinter) NewFrame() *Frame {
	frame := NewFrame()
	if len(p.frames) == 0 {
		p.writers = append(p.writers, p.writer)
	} else {
		p.writers = append(p.writers, p.writer.Newline())
	}
	p.frames = append(p.frames, frame)
	return frame
}

func (p *TerminalPrinter) Start(ctx context.Context) {
	p.writer.Start()
	go func() {
		defer close(p.stoppedCh)
		for {
			select {
			case <-p.doneCh:
				p.print()
				p.writer.Stop()
				return
			case <-ctx.Done():
				p.writer.Stop()
				return
			case <-time.After(p.frequency):
				p.print()
			}
		}
	}()
}

// Stop draws the frames one last time and waits for the printer to exit.
func (p *TerminalPrinter) Stop() {
	close(p.doneCh)
	<-p.stoppedCh
}

func (p *TerminalPrinter) print() {
	for i, frame := range p.frames {
		fmt.Fprint(p.writers[i], frame.Get())
	}
	p.writer.Flush()
}

// Frame holds the latest text of one printer region.
type Frame struct {
	mu        *sync.Mutex
	printable string
}

func NewFrame() *Frame {
	return &Frame{
		mu:        new(sync.Mutex),
		printable: "",
	}
}

// Set the output string (blocking)
func (f *Frame) Set(s string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.printable = s
}

// Get the output string (blocking)
func (f *Frame) Get() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.printable
}
