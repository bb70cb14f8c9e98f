package scanner

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedSource replays a fixed sequence of decode results, then blocks
// until the context is cancelled.
type scriptedSource struct {
	mu      sync.Mutex
	results []scriptedResult
}

type scriptedResult struct {
	payload string
	err     error
}

func (s *scriptedSource) Decode(ctx context.Context) (string, error) {
	s.mu.Lock()
	if len(s.results) > 0 {
		next := s.results[0]
		s.results = s.results[1:]
		s.mu.Unlock()
		return next.payload, next.err
	}
	s.mu.Unlock()
	<-ctx.Done()
	return "", ctx.Err()
}

type recorder struct {
	mu       sync.Mutex
	payloads []string
}

func (r *recorder) record(payload string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.payloads = append(r.payloads, payload)
}

func (r *recorder) all() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.payloads...)
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met in time")
}

func TestScannerDeliversFirstPayloadAndStops(t *testing.T) {
	source := &scriptedSource{results: []scriptedResult{
		{err: ErrNoCode},
		{err: ErrNoCode},
		{payload: "tok-1"},
		{payload: "tok-2"},
	}}
	rec := &recorder{}

	var s *Scanner
	s = New(source, func(payload string) {
		// The session must already be closed when the callback runs.
		assert.False(t, s.Running())
		rec.record(payload)
	}, 0, nil)

	s.Start(context.Background())
	waitFor(t, func() bool { return len(rec.all()) == 1 })

	assert.Equal(t, []string{"tok-1"}, rec.all())
	assert.False(t, s.Running())
}

func TestScannerSkipsEmptyFrames(t *testing.T) {
	source := &scriptedSource{results: []scriptedResult{
		{err: ErrNoCode},
		{payload: ""},
		{payload: "tok-1"},
	}}
	rec := &recorder{}
	s := New(source, rec.record, 0, nil)

	s.Start(context.Background())
	waitFor(t, func() bool { return len(rec.all()) == 1 })
	assert.Equal(t, []string{"tok-1"}, rec.all())
}

func TestScannerStopWithoutPayload(t *testing.T) {
	source := &scriptedSource{}
	rec := &recorder{}
	s := New(source, rec.record, 0, nil)

	s.Start(context.Background())
	require.True(t, s.Running())

	s.Stop()
	assert.False(t, s.Running())
	assert.Empty(t, rec.all())

	// Stop is idempotent.
	s.Stop()
	assert.False(t, s.Running())
}

func TestScannerManualEntry(t *testing.T) {
	source := &scriptedSource{}
	rec := &recorder{}
	s := New(source, rec.record, 0, nil)

	s.Start(context.Background())
	require.NoError(t, s.SubmitManual("typed-token"))

	waitFor(t, func() bool { return len(rec.all()) == 1 })
	assert.Equal(t, []string{"typed-token"}, rec.all())
	assert.False(t, s.Running())

	// A second manual submit after the session closed is refused.
	assert.ErrorIs(t, s.SubmitManual("again"), ErrNotRunning)
	assert.Equal(t, []string{"typed-token"}, rec.all())
}

func TestScannerStartWhileRunningIsNoop(t *testing.T) {
	source := &scriptedSource{}
	s := New(source, func(string) {}, 0, nil)

	s.Start(context.Background())
	s.Start(context.Background())
	assert.True(t, s.Running())
	s.Stop()
}

func TestPickCamera(t *testing.T) {
	back := Camera{ID: "2", Label: "Back Camera"}
	env := Camera{ID: "3", Label: "camera2 0, facing environment"}
	front := Camera{ID: "1", Label: "Front Camera"}

	cam, ok := PickCamera([]Camera{front, back})
	require.True(t, ok)
	assert.Equal(t, back, cam)

	cam, ok = PickCamera([]Camera{front, env})
	require.True(t, ok)
	assert.Equal(t, env, cam)

	// No labelled rear camera: first enumerated device wins.
	webcam := Camera{ID: "1", Label: "Integrated Webcam"}
	usb := Camera{ID: "2", Label: "USB Video Device"}
	cam, ok = PickCamera([]Camera{webcam, usb})
	require.True(t, ok)
	assert.Equal(t, webcam, cam)

	_, ok = PickCamera(nil)
	assert.False(t, ok)
}
