package doublearray

// DefaultDensityFactor is the density factor DefaultConfig sets. Build
// never substitutes it for a zero factor; it rejects zero instead.
const DefaultDensityFactor = 1000

// BuildingObserverSet is a pair of callbacks passed by value, mirroring
// the teacher's plain-struct-of-closures style (RandStreamParams,
// building_observer_set_type) rather than a hidden global or a
// single-method interface: no state is implied beyond what the caller
// closes over.
type BuildingObserverSet struct {
	// OnAdding is called once per input key, with the key and the value
	// index assigned to it, right before that key's leaf is finalized.
	OnAdding func(key []byte, valueIndex int32)
	// OnDone is called exactly once, after every input key has been
	// placed.
	OnDone func()
}

func (o BuildingObserverSet) adding(key []byte, valueIndex int32) {
	if o.OnAdding != nil {
		o.OnAdding(key, valueIndex)
	}
}

func (o BuildingObserverSet) done() {
	if o.OnDone != nil {
		o.OnDone()
	}
}

// Config holds the build-time options from spec.md §6.3. Unlike OpenMmap's
// cacheCapacity parameter, DensityFactor has no implicit zero-means-default
// behavior: spec.md §7/§8 requires Build to reject a density factor of
// exactly 0 as invalid, so a bare Config{} is not itself a usable config.
// Call DefaultConfig for the ordinary case.
type Config struct {
	// DensityFactor controls packing tightness during build: higher values
	// search more exhaustively for a tight fit (slower build, smaller
	// array); lower values accept the first loose fit found (faster
	// build, larger array). Must be >= 1.
	DensityFactor int

	// BuildingObserverSet receives per-key and end-of-build notifications.
	// The zero value is a no-op observer.
	BuildingObserverSet BuildingObserverSet
}

// DefaultConfig returns a Config with DensityFactor set to
// DefaultDensityFactor and a no-op observer set.
func DefaultConfig() Config {
	return Config{DensityFactor: DefaultDensityFactor}
}
