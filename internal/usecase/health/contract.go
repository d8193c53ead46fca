package health

import "context"

// Pinger checks availability of the summary sink.
type Pinger interface {
	Ping(ctx context.Context) error
}

// ModelCounter reports how many predictors are loaded.
type ModelCounter interface {
	Len() int
}
