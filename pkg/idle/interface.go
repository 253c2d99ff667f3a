package idle

import (
	"context"
	"fmt"
	"time"
)

// Source reports how long the desktop user has been inactive.
type Source interface {
	// IdleTime returns the time since the last keyboard or pointer input
	IdleTime(ctx context.Context) (time.Duration, error)

	// Name returns the backend identifier ("mutter" or "x11")
	Name() string

	// Close releases the backend connection
	Close() error
}

// QueryError is returned when the idle backend is unreachable or rejects the query.
type QueryError struct {
	Source string
	Err    error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("idle query via %s failed: %v", e.Source, e.Err)
}

func (e *QueryError) Unwrap() error {
	return e.Err
}

// Info is a point-in-time idle sample, used by status output
type Info struct {
	Source   string        `json:"source"`
	IdleTime time.Duration `json:"idle_time"`
}

// Sample queries src once and wraps the result as Info.
func Sample(ctx context.Context, src Source) (*Info, error) {
	d, err := src.IdleTime(ctx)
	if err != nil {
		return nil, err
	}
	return &Info{Source: src.Name(), IdleTime: d}, nil
}
