package location

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SouravGRoy/pcl-portal-api/pkg/config"
	appErrors "github.com/SouravGRoy/pcl-portal-api/pkg/errors"
	"github.com/SouravGRoy/pcl-portal-api/pkg/geo"
)

type stubSource struct {
	pos   geo.Coordinate
	err   error
	block bool
	opts  Options
}

func (s *stubSource) Current(ctx context.Context, opts Options) (geo.Coordinate, error) {
	s.opts = opts
	if s.block {
		<-ctx.Done()
		return geo.Coordinate{}, ctx.Err()
	}
	if s.err != nil {
		return geo.Coordinate{}, s.err
	}
	return s.pos, nil
}

func TestCurrentPositionSuccess(t *testing.T) {
	source := &stubSource{pos: geo.Coordinate{Latitude: 12.9716, Longitude: 77.5946, AccuracyMeters: 8}}
	p := NewProvider(source, config.GeolocationConfig{Timeout: time.Second, EnableHighAccuracy: true}, nil)

	pos, err := p.CurrentPosition(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 12.9716, pos.Latitude)
	assert.Equal(t, 77.5946, pos.Longitude)
	assert.True(t, source.opts.EnableHighAccuracy)
}

func TestCurrentPositionErrorCodes(t *testing.T) {
	cases := []struct {
		name string
		code int
		want *appErrors.Error
	}{
		{"permission denied", CodePermissionDenied, appErrors.ErrLocationPermissionDenied},
		{"position unavailable", CodePositionUnavailable, appErrors.ErrLocationUnavailable},
		{"timeout", CodeTimeout, appErrors.ErrLocationTimeout},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			source := &stubSource{err: &PositionError{Code: tc.code}}
			p := NewProvider(source, config.GeolocationConfig{Timeout: time.Second}, nil)

			_, err := p.CurrentPosition(context.Background())
			require.Error(t, err)
			appErr := appErrors.FromError(err)
			assert.Equal(t, tc.want.Code, appErr.Code)
		})
	}
}

func TestCurrentPositionUnknownFailure(t *testing.T) {
	source := &stubSource{err: errors.New("gps chipset fault")}
	p := NewProvider(source, config.GeolocationConfig{Timeout: time.Second}, nil)

	_, err := p.CurrentPosition(context.Background())
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrLocationUnknown.Code, appErr.Code)
}

func TestCurrentPositionDeadline(t *testing.T) {
	source := &stubSource{block: true}
	p := NewProvider(source, config.GeolocationConfig{Timeout: 20 * time.Millisecond}, nil)

	start := time.Now()
	_, err := p.CurrentPosition(context.Background())
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrLocationTimeout.Code, appErr.Code)
	assert.Less(t, time.Since(start), time.Second)
}

func TestNewProviderDefaultsTimeout(t *testing.T) {
	p := NewProvider(&stubSource{}, config.GeolocationConfig{}, nil)
	assert.Equal(t, 10*time.Second, p.opts.Timeout)
}
