package synthesis

import (
	"context"
	"log/slog"
	"strings"

	"dubmix/internal/logging"
)

// Provider turns one line of text into an encoded audio buffer. Name must
// be stable and specific enough (service, model, voice) to key cached clips.
type Provider interface {
	Name() string
	Synthesize(ctx context.Context, text string) ([]byte, error)
}

// Chain tries providers in priority order with independent failure
// isolation. A failed attempt is logged and the next candidate is tried;
// when every candidate fails the chain yields an empty buffer so one bad
// segment cannot abort the run.
type Chain struct {
	providers []Provider
	cache     *Cache
	logger    *slog.Logger
}

// NewChain builds a chain over the given providers in priority order.
func NewChain(logger *slog.Logger, providers ...Provider) *Chain {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Chain{providers: providers, logger: logger}
}

// WithCache attaches an advisory clip cache. Cache errors degrade to live
// synthesis calls.
func (c *Chain) WithCache(cache *Cache) *Chain {
	c.cache = cache
	return c
}

// Synthesize produces audio for the text, or an explicit zero-length
// silence buffer: immediately for blank text, or after every provider has
// failed. It never returns an error.
func (c *Chain) Synthesize(ctx context.Context, text string) []byte {
	if strings.TrimSpace(text) == "" {
		return []byte{}
	}

	for _, provider := range c.providers {
		if c.cache != nil {
			if clip, ok := c.cache.Get(ctx, Key(provider.Name(), text)); ok {
				c.logger.Debug("clip cache hit",
					logging.String(logging.FieldProvider, provider.Name()))
				return clip
			}
		}

		clip, err := provider.Synthesize(ctx, text)
		if err != nil {
			c.logger.Warn("synthesis attempt failed",
				logging.String(logging.FieldProvider, provider.Name()),
				logging.Error(err))
			continue
		}
		if len(clip) == 0 {
			c.logger.Warn("synthesis returned empty clip",
				logging.String(logging.FieldProvider, provider.Name()))
			continue
		}
		if c.cache != nil {
			c.cache.Put(ctx, Key(provider.Name(), text), provider.Name(), clip)
		}
		return clip
	}

	c.logger.Warn("all synthesis providers failed, inserting silence",
		logging.Int("providers", len(c.providers)))
	return []byte{}
}
