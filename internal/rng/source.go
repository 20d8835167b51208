package rng

//go:generate mockgen -destination=mock/mock_source.go -package=mockrng -source=source.go

// Source provides the random draws used by the roll engine.
// This allows us to inject deterministic implementations for testing.
type Source interface {
	// Int64N returns a uniform random value in [0, n)
	Int64N(n int64) int64
}
