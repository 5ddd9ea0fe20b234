package voice

import (
	"context"
	"time"

	"github.com/jellydator/ttlcache/v3"

	"chordear/audio"
)

// Cached remembers narrations by text. Progressions repeat often enough
// within a run that most announcements are decoded once.
type Cached struct {
	next  Narrator
	cache *ttlcache.Cache[string, *audio.Buffer]
}

func NewCached(next Narrator, ttl time.Duration) *Cached {
	cache := ttlcache.New[string, *audio.Buffer](
		ttlcache.WithTTL[string, *audio.Buffer](ttl),
	)
	go cache.Start()

	return &Cached{next: next, cache: cache}
}

func (c *Cached) Narrate(ctx context.Context, text string) (*audio.Buffer, error) {
	if item := c.cache.Get(text); item != nil {
		return item.Value(), nil
	}
	buf, err := c.next.Narrate(ctx, text)
	if err != nil {
		return nil, err // failures are not cached
	}
	c.cache.Set(text, buf, ttlcache.DefaultTTL)
	return buf, nil
}

// Close stops the expiry loop.
func (c *Cached) Close() {
	c.cache.Stop()
}
