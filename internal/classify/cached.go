package classify

import (
	"encoding/json"
	"time"

	"github.com/ppiankov/dii/internal/cache"
	"github.com/ppiankov/dii/internal/model"
)

// Cached memoizes classifications by the content of the profile.
type Cached struct {
	inner *Classifier
	cache cache.Cache
	ttl   time.Duration
}

// NewCached wraps a classifier with a cache. A zero ttl uses the cache default.
func NewCached(inner *Classifier, c cache.Cache, ttl time.Duration) *Cached {
	return &Cached{inner: inner, cache: c, ttl: ttl}
}

// Classify returns a cached result when the same profile was seen before.
// Cache failures fall through to a fresh classification.
func (c *Cached) Classify(p model.CompanyProfile) model.Classification {
	key, ok := profileKey(p)
	if ok {
		var hit model.Classification
		if cache.GetJSON(c.cache, key, &hit) {
			return hit
		}
	}

	res := c.inner.Classify(p)
	if ok {
		_ = cache.SetJSON(c.cache, key, res, c.ttl)
	}
	return res
}

func profileKey(p model.CompanyProfile) (string, bool) {
	data, err := json.Marshal(p)
	if err != nil {
		return "", false
	}
	return cache.Key("classify", string(data)), true
}

// Assign passes through to the wrapped classifier; explicit choices are not cached.
func (c *Cached) Assign(p model.CompanyProfile, id model.ArchetypeID) (model.Classification, error) {
	return c.inner.Assign(p, id)
}
