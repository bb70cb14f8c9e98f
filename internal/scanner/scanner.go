// Package scanner drives a QR decode source with a start/stop lifecycle and
// delivers at most one payload per scanning session.
package scanner

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

// ErrNoCode signals a frame with no decodable QR code. The scan loop skips
// it silently and keeps polling.
var ErrNoCode = errors.New("no qr code in frame")

// ErrNotRunning is returned when output is submitted to a stopped scanner.
var ErrNotRunning = errors.New("scanner is not running")

// DecodeSource produces decoded QR payloads frame by frame. Decode blocks
// until a frame has been examined and returns ErrNoCode when the frame held
// no code.
type DecodeSource interface {
	Decode(ctx context.Context) (string, error)
}

// Camera describes a selectable video input.
type Camera struct {
	ID    string
	Label string
}

// PickCamera chooses the camera to scan with. Rear-facing cameras are
// preferred; device stacks label them "back" or "environment". When no label
// matches, the first enumerated device wins.
func PickCamera(cameras []Camera) (Camera, bool) {
	if len(cameras) == 0 {
		return Camera{}, false
	}
	for _, cam := range cameras {
		label := strings.ToLower(cam.Label)
		if strings.Contains(label, "back") || strings.Contains(label, "environment") {
			return cam, true
		}
	}
	return cameras[0], true
}

// Scanner polls a DecodeSource until a payload arrives, then stops itself
// before invoking the callback. A second code can never fire the callback
// within the same session.
type Scanner struct {
	source   DecodeSource
	onDecode func(payload string)
	interval time.Duration
	logger   *zap.Logger

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	done    chan struct{}
	fired   bool
}

// New constructs a Scanner. interval spaces out decode attempts; zero means
// poll as fast as the source allows.
func New(source DecodeSource, onDecode func(payload string), interval time.Duration, logger *zap.Logger) *Scanner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scanner{source: source, onDecode: onDecode, interval: interval, logger: logger}
}

// Start begins the scan loop. Calling Start on a running scanner is a no-op.
func (s *Scanner) Start(ctx context.Context) {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	loopCtx, cancel := context.WithCancel(ctx)
	s.running = true
	s.fired = false
	s.cancel = cancel
	s.done = make(chan struct{})
	done := s.done
	s.mu.Unlock()

	go func() {
		defer close(done)
		s.loop(loopCtx)
	}()
}

func (s *Scanner) loop(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}
		payload, err := s.source.Decode(ctx)
		switch {
		case err == nil && payload != "":
			s.deliver(payload)
			return
		case errors.Is(err, ErrNoCode) || (err == nil && payload == ""):
			// keep polling
		case errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded):
			return
		default:
			s.logger.Debug("decode attempt failed", zap.Error(err))
		}
		if s.interval > 0 {
			select {
			case <-ctx.Done():
				return
			case <-time.After(s.interval):
			}
		}
	}
}

// deliver stops the scanner first so the session is already closed when the
// callback observes the payload, then fires at most once.
func (s *Scanner) deliver(payload string) {
	s.mu.Lock()
	if s.fired {
		s.mu.Unlock()
		return
	}
	s.fired = true
	s.running = false
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	callback := s.onDecode
	s.mu.Unlock()

	if callback != nil {
		callback(payload)
	}
}

// SubmitManual routes a hand-typed code through the same single-fire path as
// a decoded frame. The scanner must be running.
func (s *Scanner) SubmitManual(payload string) error {
	s.mu.Lock()
	running := s.running
	s.mu.Unlock()
	if !running {
		return ErrNotRunning
	}
	s.deliver(payload)
	return nil
}

// Stop halts the scan loop without firing the callback. Safe to call
// repeatedly and after a payload has already been delivered.
func (s *Scanner) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	done := s.done
	s.mu.Unlock()

	if done != nil {
		<-done
	}
}

// Running reports whether a scan session is active.
func (s *Scanner) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}
