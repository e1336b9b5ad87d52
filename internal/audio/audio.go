package audio

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"
)

var (
	ErrAlreadyStarted = errors.New("audio source already started")
	ErrNotStarted     = errors.New("audio source not started")
)

// Source captures PCM between Start and Stop. Stop returns everything
// captured, which may be empty.
type Source interface {
	Start(ctx context.Context) error
	Stop(ctx context.Context) ([]byte, error)
}

// Sink plays PCM and blocks until playback is done or ctx is cancelled.
type Sink interface {
	Play(ctx context.Context, pcm []byte) error
}

// ReaderSource captures from an io.Reader, such as a device pipe or stdin.
// Bytes are accumulated on a background goroutine until Stop, EOF, or the
// Start context ends. Stop closes the reader if it is an io.Closer, so a
// blocked Read returns.
//
// Some readers, such as a terminal stdin, stay blocked after Close. With
// StopGrace set, Stop waits at most that long for the pending Read and then
// returns what was captured so far; bytes that Read delivers later are
// dropped.
type ReaderSource struct {
	r io.Reader

	StopGrace time.Duration

	mu  sync.Mutex
	cur *readerRun
}

// readerRun is the state of one Start..Stop cycle, so a goroutine left
// behind by StopGrace cannot write into a later capture.
type readerRun struct {
	mu   sync.Mutex
	buf  []byte
	err  error
	done chan struct{}
}

func NewReaderSource(r io.Reader) *ReaderSource {
	return &ReaderSource{r: r}
}

func (s *ReaderSource) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cur != nil {
		return ErrAlreadyStarted
	}
	run := &readerRun{done: make(chan struct{})}
	s.cur = run

	go s.capture(ctx, run)
	return nil
}

func (s *ReaderSource) capture(ctx context.Context, run *readerRun) {
	defer close(run.done)
	chunk := make([]byte, 4096)
	for {
		if ctx.Err() != nil {
			return
		}
		n, err := s.r.Read(chunk)
		if n > 0 {
			run.mu.Lock()
			run.buf = append(run.buf, chunk[:n]...)
			run.mu.Unlock()
		}
		if err != nil {
			if !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrClosedPipe) {
				run.mu.Lock()
				run.err = err
				run.mu.Unlock()
			}
			return
		}
	}
}

// Done is closed when the running capture ends on its own, for example at
// EOF. It is nil while no capture runs.
func (s *ReaderSource) Done() <-chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cur == nil {
		return nil
	}
	return s.cur.done
}

func (s *ReaderSource) Stop(ctx context.Context) ([]byte, error) {
	s.mu.Lock()
	run := s.cur
	s.mu.Unlock()
	if run == nil {
		return nil, ErrNotStarted
	}

	if c, ok := s.r.(io.Closer); ok {
		_ = c.Close()
	}

	var grace <-chan time.Time
	if s.StopGrace > 0 {
		t := time.NewTimer(s.StopGrace)
		defer t.Stop()
		grace = t.C
	}

	select {
	case <-run.done:
	case <-grace:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	s.mu.Lock()
	s.cur = nil
	s.mu.Unlock()

	run.mu.Lock()
	defer run.mu.Unlock()
	pcm := run.buf
	// a goroutine still blocked in Read must not touch the returned slice
	run.buf = nil
	if len(pcm) == 0 {
		pcm = []byte{}
	}
	return pcm, run.err
}

// WriterSink plays by writing raw PCM to w in chunks, checking ctx between
// chunks.
type WriterSink struct {
	w         io.Writer
	chunkSize int
}

func NewWriterSink(w io.Writer) *WriterSink {
	return &WriterSink{w: w, chunkSize: BytesPerSec / 10}
}

func (s *WriterSink) Play(ctx context.Context, pcm []byte) error {
	for off := 0; off < len(pcm); off += s.chunkSize {
		if err := ctx.Err(); err != nil {
			return err
		}
		end := min(off+s.chunkSize, len(pcm))
		if _, err := s.w.Write(pcm[off:end]); err != nil {
			return err
		}
	}
	return ctx.Err()
}
