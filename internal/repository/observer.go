package repository

import "time"

// QueryObserver receives database query timings. A nil observer disables
// instrumentation.
type QueryObserver interface {
	ObserveDBQuery(label string, duration time.Duration)
}

// observeQuery is meant to be deferred at the top of an instrumented
// repository method: defer observeQuery(obs, label, time.Now()).
func observeQuery(obs QueryObserver, label string, start time.Time) {
	if obs != nil {
		obs.ObserveDBQuery(label, time.Since(start))
	}
}
