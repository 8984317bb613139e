package pcache

import (
	"time"

	"github.com/dgraph-io/ristretto"
)

type PCacheArgs struct {
	OptionsCacheMaxCost int64         `arg:"--options-cache-max-cost,env:OPTIONS_CACHE_MAX_COST" default:"16777216" json:"options_cache_max_cost,omitempty"`
	OptionsCacheAvgCost int64         `arg:"--options-cache-avg-cost,env:OPTIONS_CACHE_AVG_COST" default:"4096" json:"options_cache_avg_cost,omitempty"`
	OptionsCacheTTL     time.Duration `arg:"--options-cache-ttl,env:OPTIONS_CACHE_TTL" default:"10m" json:"options_cache_ttl,omitempty"`
}

// PCache is a process-local cache keyed by 64 bit fingerprints.
type PCache struct {
	name  string
	cache *ristretto.Cache
}

// NewPCache creates a new instance of PCache
// https://pkg.go.dev/github.com/dgraph-io/ristretto#Config
func NewPCache(name string, maxCost int64, averageItemCost int64) (PCache, error) {
	expectedMaxItems := maxCost / averageItemCost
	if expectedMaxItems < 1 {
		expectedMaxItems = 1
	}
	cache, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: 10 * expectedMaxItems,
		MaxCost:     maxCost,
		BufferItems: 64,
		Metrics:     true,
	})
	if err != nil {
		return PCache{}, err
	}
	return PCache{name: name, cache: cache}, nil
}

func (pc PCache) Name() string {
	return pc.name
}

// Set may drop the write under contention; a false return means the value was
// not admitted.
func (pc PCache) Set(key uint64, value interface{}, cost int64) bool {
	return pc.cache.Set(key, value, cost)
}

func (pc PCache) SetWithTTL(key uint64, value interface{}, cost int64, ttl time.Duration) bool {
	return pc.cache.SetWithTTL(key, value, cost, ttl)
}

func (pc PCache) Get(key uint64) (interface{}, bool) {
	return pc.cache.Get(key)
}

func (pc PCache) GetTTL(key uint64) (time.Duration, bool) {
	return pc.cache.GetTTL(key)
}

// Wait blocks until buffered writes have been applied.
func (pc PCache) Wait() {
	pc.cache.Wait()
}

func (pc PCache) Close() {
	pc.cache.Close()
}
