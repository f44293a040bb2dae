package health

import "context"

// Pinger checks reachability of a backing store.
type Pinger interface {
	Ping(ctx context.Context) error
}

// ClassifierStatus reports whether a trained model is loaded.
type ClassifierStatus interface {
	Available() bool
}
