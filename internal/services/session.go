package services

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/voicevault/internal/audio"
	"github.com/dmitrijs2005/voicevault/internal/common"
	"github.com/dmitrijs2005/voicevault/internal/logging"
	"github.com/dmitrijs2005/voicevault/internal/models"
)

// State is the capture state of a Session.
type State int

const (
	StateIdle State = iota
	StateCapturing
	StateStopped
	StateEncrypting
	StatePersisted
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateCapturing:
		return "capturing"
	case StateStopped:
		return "stopped"
	case StateEncrypting:
		return "encrypting"
	case StatePersisted:
		return "persisted"
	default:
		return "unknown"
	}
}

// busy reports whether a capture is between Start and the end of Persist.
func (s State) busy() bool {
	return s == StateCapturing || s == StateStopped || s == StateEncrypting
}

// CaptureResult is delivered by StopCaptureAsync.
type CaptureResult struct {
	Recording *models.Recording
	Err       error
}

// Session drives capture and playback for one user. At most one capture and
// one playback run at a time. A capture is never interrupted by playback; a
// new playback cancels the one already running.
type Session struct {
	userID    int64
	lifecycle *Lifecycle
	source    audio.Source
	sink      audio.Sink
	log       logging.Logger

	mu          sync.Mutex
	state       State
	captureName string
	playCancel  context.CancelFunc
	playDone    chan struct{}
}

func NewSession(userID int64, lifecycle *Lifecycle, source audio.Source, sink audio.Sink, log logging.Logger) *Session {
	return &Session{
		userID:    userID,
		lifecycle: lifecycle,
		source:    source,
		sink:      sink,
		log:       log.With("user_id", userID),
		state:     StateIdle,
	}
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) setState(st State) {
	s.mu.Lock()
	s.state = st
	s.mu.Unlock()
}

// StartCapture begins recording under name. Any running playback is stopped
// first.
func (s *Session) StartCapture(ctx context.Context, name string) error {
	s.mu.Lock()
	if s.state.busy() {
		s.mu.Unlock()
		return common.NewOpError("start capture", common.ErrCaptureInProgress, 0, s.userID, nil)
	}
	// claim the session before releasing the lock so no playback can start
	s.state = StateCapturing
	s.captureName = name
	cancel, done := s.playCancel, s.playDone
	s.mu.Unlock()

	if cancel != nil {
		cancel()
		<-done
	}

	if err := s.source.Start(ctx); err != nil {
		s.setState(StateIdle)
		return common.NewOpError("start capture", common.ErrCaptureFailed, 0, s.userID, err)
	}
	s.log.Debug(ctx, "capture started")
	return nil
}

// StopCapture ends the capture and persists it. An empty capture is
// discarded: the session returns to idle and StopCapture returns nil, nil.
func (s *Session) StopCapture(ctx context.Context) (*models.Recording, error) {
	s.mu.Lock()
	if s.state != StateCapturing {
		s.mu.Unlock()
		return nil, common.NewOpError("stop capture", common.ErrNoActiveCapture, 0, s.userID, nil)
	}
	s.state = StateStopped
	name := s.captureName
	s.mu.Unlock()

	pcm, err := s.source.Stop(ctx)
	if err != nil {
		s.setState(StateIdle)
		return nil, common.NewOpError("stop capture", common.ErrCaptureFailed, 0, s.userID, err)
	}
	if len(pcm) == 0 {
		s.setState(StateIdle)
		s.log.Info(ctx, "empty capture discarded")
		return nil, nil
	}

	s.setState(StateEncrypting)
	rec, err := s.lifecycle.Persist(ctx, s.userID, name, pcm)
	if err != nil {
		s.setState(StateIdle)
		return nil, err
	}
	s.setState(StatePersisted)
	return rec, nil
}

// StopCaptureAsync runs StopCapture in the background. The channel receives
// exactly one result.
func (s *Session) StopCaptureAsync(ctx context.Context) <-chan CaptureResult {
	ch := make(chan CaptureResult, 1)
	go func() {
		rec, err := s.StopCapture(ctx)
		ch <- CaptureResult{Recording: rec, Err: err}
	}()
	return ch
}

// Abort stops an active capture and drops its audio.
func (s *Session) Abort(ctx context.Context) error {
	s.mu.Lock()
	if s.state != StateCapturing {
		s.mu.Unlock()
		return common.NewOpError("abort capture", common.ErrNoActiveCapture, 0, s.userID, nil)
	}
	s.state = StateStopped
	s.mu.Unlock()

	_, err := s.source.Stop(ctx)
	s.setState(StateIdle)
	s.log.Info(ctx, "capture aborted")
	if err != nil {
		return common.NewOpError("abort capture", common.ErrCaptureFailed, 0, s.userID, err)
	}
	return nil
}

// Play decrypts a recording and plays it to the sink, blocking until it ends.
// It fails with ErrCaptureInProgress while a capture runs and pre-empts any
// playback already in progress, which then returns context.Canceled.
func (s *Session) Play(ctx context.Context, recordingID int64) (*Playback, error) {
	s.mu.Lock()
	if s.state.busy() {
		s.mu.Unlock()
		return nil, common.NewOpError("play", common.ErrCaptureInProgress, recordingID, s.userID, nil)
	}
	prevCancel, prevDone := s.playCancel, s.playDone

	playCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	s.playCancel, s.playDone = cancel, done
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		if s.playDone == done {
			s.playCancel, s.playDone = nil, nil
		}
		s.mu.Unlock()
		cancel()
		close(done)
	}()

	if prevCancel != nil {
		prevCancel()
		<-prevDone
	}

	pb, err := s.lifecycle.Play(playCtx, recordingID, s.userID)
	if err != nil {
		return nil, err
	}
	if err := s.sink.Play(playCtx, pb.PCM); err != nil {
		return pb, err
	}
	return pb, nil
}

// StopPlayback cancels the running playback, if any.
func (s *Session) StopPlayback() {
	s.mu.Lock()
	cancel := s.playCancel
	s.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}
