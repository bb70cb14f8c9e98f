// Package location adapts device position sources into a single provider
// with a bounded acquisition timeout and a normalised error taxonomy.
package location

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/SouravGRoy/pcl-portal-api/pkg/config"
	appErrors "github.com/SouravGRoy/pcl-portal-api/pkg/errors"
	"github.com/SouravGRoy/pcl-portal-api/pkg/geo"
)

// W3C Geolocation API error codes. Sources that wrap a browser or mobile
// positioning stack report failures with these codes.
const (
	CodePermissionDenied    = 1
	CodePositionUnavailable = 2
	CodeTimeout             = 3
)

// PositionError is a failure reported by a position source.
type PositionError struct {
	Code    int
	Message string
}

func (e *PositionError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("position error code %d", e.Code)
}

// Options mirror the acquisition knobs a position source understands.
type Options struct {
	EnableHighAccuracy bool
	Timeout            time.Duration
	MaxAge             time.Duration
}

// PositionSource produces the device's current coordinates. Implementations
// must honour ctx cancellation.
type PositionSource interface {
	Current(ctx context.Context, opts Options) (geo.Coordinate, error)
}

// Provider wraps a PositionSource with a hard timeout and maps every failure
// onto a stable error kind so callers can branch without inspecting source
// internals.
type Provider struct {
	source PositionSource
	opts   Options
	logger *zap.Logger
}

// NewProvider constructs a Provider from config.
func NewProvider(source PositionSource, cfg config.GeolocationConfig, logger *zap.Logger) *Provider {
	if logger == nil {
		logger = zap.NewNop()
	}
	opts := Options{
		EnableHighAccuracy: cfg.EnableHighAccuracy,
		Timeout:            cfg.Timeout,
		MaxAge:             cfg.MaxAge,
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	return &Provider{source: source, opts: opts, logger: logger}
}

// CurrentPosition acquires the device position, bounded by the configured
// timeout. Every error it returns is one of the location sentinels.
func (p *Provider) CurrentPosition(ctx context.Context) (geo.Coordinate, error) {
	ctx, cancel := context.WithTimeout(ctx, p.opts.Timeout)
	defer cancel()

	pos, err := p.source.Current(ctx, p.opts)
	if err == nil {
		return pos, nil
	}

	mapped := classify(err)
	p.logger.Debug("position acquisition failed",
		zap.String("kind", mapped.Code),
		zap.Error(err),
	)
	return geo.Coordinate{}, mapped
}

func classify(err error) *appErrors.Error {
	var posErr *PositionError
	if errors.As(err, &posErr) {
		switch posErr.Code {
		case CodePermissionDenied:
			return appErrors.Wrap(err, appErrors.ErrLocationPermissionDenied.Code, appErrors.ErrLocationPermissionDenied.Status, appErrors.ErrLocationPermissionDenied.Message)
		case CodePositionUnavailable:
			return appErrors.Wrap(err, appErrors.ErrLocationUnavailable.Code, appErrors.ErrLocationUnavailable.Status, appErrors.ErrLocationUnavailable.Message)
		case CodeTimeout:
			return appErrors.Wrap(err, appErrors.ErrLocationTimeout.Code, appErrors.ErrLocationTimeout.Status, appErrors.ErrLocationTimeout.Message)
		}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return appErrors.Wrap(err, appErrors.ErrLocationTimeout.Code, appErrors.ErrLocationTimeout.Status, appErrors.ErrLocationTimeout.Message)
	}
	return appErrors.Wrap(err, appErrors.ErrLocationUnknown.Code, appErrors.ErrLocationUnknown.Status, appErrors.ErrLocationUnknown.Message)
}
