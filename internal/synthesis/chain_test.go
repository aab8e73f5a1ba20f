package synthesis

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
)

type fakeProvider struct {
	name  string
	clip  []byte
	err   error
	calls int
}

func (f *fakeProvider) Name() string { return f.name }

func (f *fakeProvider) Synthesize(ctx context.Context, text string) ([]byte, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.clip, nil
}

func TestChainFallsThroughToWorkingProvider(t *testing.T) {
	failing := &fakeProvider{name: "a", err: errors.New("boom")}
	working := &fakeProvider{name: "b", clip: []byte("audio")}
	chain := NewChain(nil, failing, working)

	got := chain.Synthesize(context.Background(), "hello")
	if string(got) != "audio" {
		t.Fatalf("expected provider b's clip, got %q", got)
	}
	if failing.calls != 1 || working.calls != 1 {
		t.Fatalf("call counts a=%d b=%d", failing.calls, working.calls)
	}
}

func TestChainAllFailReturnsSilence(t *testing.T) {
	a := &fakeProvider{name: "a", err: errors.New("fail a")}
	b := &fakeProvider{name: "b", err: errors.New("fail b")}
	chain := NewChain(nil, a, b)

	got := chain.Synthesize(context.Background(), "hello")
	if got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil buffer, got %v", got)
	}
}

func TestChainBlankTextSkipsProviders(t *testing.T) {
	p := &fakeProvider{name: "a", clip: []byte("audio")}
	chain := NewChain(nil, p)

	got := chain.Synthesize(context.Background(), "   \t ")
	if len(got) != 0 {
		t.Fatalf("expected silence for blank text, got %q", got)
	}
	if p.calls != 0 {
		t.Fatal("blank text must not reach any provider")
	}
}

func TestChainTreatsEmptyClipAsFailure(t *testing.T) {
	empty := &fakeProvider{name: "a", clip: []byte{}}
	working := &fakeProvider{name: "b", clip: []byte("audio")}
	chain := NewChain(nil, empty, working)

	if got := chain.Synthesize(context.Background(), "x"); string(got) != "audio" {
		t.Fatalf("empty clip should advance the chain, got %q", got)
	}
}

func TestChainUsesCache(t *testing.T) {
	cache, err := OpenCache(filepath.Join(t.TempDir(), "clips.db"))
	if err != nil {
		t.Fatalf("OpenCache: %v", err)
	}
	defer cache.Close()

	provider := &fakeProvider{name: "a", clip: []byte("audio")}
	chain := NewChain(nil, provider).WithCache(cache)

	ctx := context.Background()
	if got := chain.Synthesize(ctx, "hello"); string(got) != "audio" {
		t.Fatalf("first call: %q", got)
	}
	if got := chain.Synthesize(ctx, "hello"); string(got) != "audio" {
		t.Fatalf("second call: %q", got)
	}
	if provider.calls != 1 {
		t.Fatalf("second call should hit the cache, provider called %d times", provider.calls)
	}

	// Different text is a different key.
	chain.Synthesize(ctx, "other")
	if provider.calls != 2 {
		t.Fatalf("different text must miss, provider called %d times", provider.calls)
	}
}

func TestCacheKeyVariesByProviderAndText(t *testing.T) {
	if Key("a", "x") == Key("b", "x") {
		t.Fatal("keys must differ per provider")
	}
	if Key("a", "x") == Key("a", "y") {
		t.Fatal("keys must differ per text")
	}
	if Key("a", "x") != Key("a", "x") {
		t.Fatal("keys must be deterministic")
	}
}
