package geolocate

import (
	"context"
	"errors"
	"time"

	"kampalabites/internal/structs"
	"kampalabites/pkg/logger"

	"go.uber.org/zap"
)

// Category buckets every geolocation failure into a user-facing class.
// Unlike geocoder outages these are never swallowed: each carries an
// actionable message.
type Category string

const (
	PermissionDenied    Category = "permission-denied"
	PositionUnavailable Category = "position-unavailable"
	Timeout             Category = "timeout"
	Unknown             Category = "unknown"
)

// Provider sentinel errors, wrapped by transport implementations.
var (
	ErrPermissionDenied    = errors.New("geolocation permission denied")
	ErrPositionUnavailable = errors.New("geolocation position unavailable")
	ErrTimeout             = errors.New("geolocation timed out")
)

type Error struct {
	Category Category `json:"category"`
	Message  string   `json:"message"`
}

func (e *Error) Error() string { return e.Message }

var messages = map[Category]string{
	PermissionDenied:    "Location access is blocked. Allow location for this site or type your area instead.",
	PositionUnavailable: "We couldn't read your location. Check that GPS is on, or type your area instead.",
	Timeout:             "Finding your location took too long. Try again or type your area instead.",
	Unknown:             "Something went wrong while locating you. Try again or type your area instead.",
}

// Classify maps a provider error onto its user-facing category.
func Classify(err error) *Error {
	var cat Category
	switch {
	case errors.Is(err, ErrPermissionDenied):
		cat = PermissionDenied
	case errors.Is(err, ErrPositionUnavailable):
		cat = PositionUnavailable
	case errors.Is(err, ErrTimeout), errors.Is(err, context.DeadlineExceeded):
		cat = Timeout
	default:
		cat = Unknown
	}
	return &Error{Category: cat, Message: messages[cat]}
}

// CategoryError builds the user-facing error for a raw platform error code.
func CategoryError(code string) *Error {
	cat := Category(code)
	msg, ok := messages[cat]
	if !ok {
		cat = Unknown
		msg = messages[Unknown]
	}
	return &Error{Category: cat, Message: msg}
}

type Position struct {
	Point    structs.GeoPoint `json:"point"`
	Accuracy float64          `json:"accuracy"` // meters
}

// Options mirror the platform position API inputs. MaximumAge is always zero:
// a cached position is useless for delivery.
type Options struct {
	HighAccuracy bool
	Timeout      time.Duration
}

// Provider is the platform position port. A request in flight cannot be
// aborted; callers guard against concurrent attempts instead.
type Provider interface {
	Current(ctx context.Context, opts Options) (Position, error)
}

// Locator runs the two-state detection machine: a high-accuracy attempt with a
// short timeout, then on any failure except permission-denied a single
// low-accuracy attempt with a longer one.
type Locator struct {
	provider    Provider
	logger      logger.Logger
	highTimeout time.Duration
	lowTimeout  time.Duration
}

func NewLocator(provider Provider, lg logger.Logger, highTimeout, lowTimeout time.Duration) *Locator {
	if highTimeout <= 0 {
		highTimeout = 10 * time.Second
	}
	if lowTimeout <= 0 {
		lowTimeout = 15 * time.Second
	}
	return &Locator{
		provider:    provider,
		logger:      lg,
		highTimeout: highTimeout,
		lowTimeout:  lowTimeout,
	}
}

func (l *Locator) Locate(ctx context.Context) (Position, *Error) {
	pos, err := l.attempt(ctx, Options{HighAccuracy: true, Timeout: l.highTimeout})
	if err == nil {
		return pos, nil
	}

	cerr := Classify(err)
	if cerr.Category == PermissionDenied {
		return Position{}, cerr
	}

	l.logger.Warn(ctx, "high-accuracy attempt failed, retrying with reduced accuracy",
		zap.String("category", string(cerr.Category)))

	pos, err = l.attempt(ctx, Options{HighAccuracy: false, Timeout: l.lowTimeout})
	if err == nil {
		return pos, nil
	}
	return Position{}, Classify(err)
}

func (l *Locator) attempt(ctx context.Context, opts Options) (Position, error) {
	ctx, cancel := context.WithTimeout(ctx, opts.Timeout)
	defer cancel()
	return l.provider.Current(ctx, opts)
}
