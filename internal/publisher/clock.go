package publisher

import "time"

// Clock provides an abstraction over time.Now so tests can publish
// deterministic timestamps.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }
