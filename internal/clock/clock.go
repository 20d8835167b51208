package clock

//go:generate mockgen -destination=mock/mock_time_provider.go -package=mockclock -source=clock.go

import "time"

// TimeProvider abstracts the current time so expiry logic can be tested
type TimeProvider interface {
	Now() time.Time
}

// RealTimeProvider returns the wall clock
type RealTimeProvider struct{}

// Now returns the current time
func (r *RealTimeProvider) Now() time.Time {
	return time.Now()
}

// NewRealTimeProvider creates a new RealTimeProvider
func NewRealTimeProvider() *RealTimeProvider {
	return &RealTimeProvider{}
}
