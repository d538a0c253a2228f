package character

import (
	"testing"

	"github.com/agg-go/vecatlas/internal/obs"
)

func TestCacheFirstDefinitionWins(t *testing.T) {
	c := NewCache(obs.Logger())
	first := &ShapeDefinition{CharacterID: 1}
	second := &ShapeDefinition{CharacterID: 1}
	c.Define(first)
	c.Define(second)

	got, ok := c.Resolve(1)
	if !ok {
		t.Fatal("expected character 1 to resolve")
	}
	if got != Drawable(first) {
		t.Fatal("expected first definition to win")
	}
}

func TestCacheMissingResolveIsNotFatal(t *testing.T) {
	c := NewCache(obs.Logger())
	_, ok := c.Resolve(99)
	if ok {
		t.Fatal("expected resolve of undefined id to fail gracefully")
	}
}

func TestCacheCycleDetection(t *testing.T) {
	c := NewCache(obs.Logger())
	if !c.EnterSprite(5) {
		t.Fatal("first entry should succeed")
	}
	if c.EnterSprite(5) {
		t.Fatal("re-entrant compilation should be detected as a cycle")
	}
	c.ExitSprite(5)
	if !c.EnterSprite(5) {
		t.Fatal("after exit, re-entry should succeed again")
	}
}
