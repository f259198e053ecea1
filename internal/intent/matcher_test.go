package intent

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vaspx-assistant/internal/logger"
	"vaspx-assistant/internal/metrics"
	"vaspx-assistant/internal/store"
)

func newTestMatcher(t *testing.T, cats []store.Category) *Matcher {
	t.Helper()
	return NewMatcher(store.NewMemoryStore(cats), rand.New(rand.NewSource(1)), logger.NewTestLogger(t))
}

func responsesOf(t *testing.T, name string) []string {
	t.Helper()
	for _, c := range DefaultKnowledgeBase() {
		if c.Name == name {
			return c.Responses
		}
	}
	t.Fatalf("category %q not in default knowledge base", name)
	return nil
}

func TestMatcher_DefaultKnowledgeBaseOrder(t *testing.T) {
	var names []string
	for _, c := range DefaultKnowledgeBase() {
		names = append(names, c.Name)
	}
	// Fixture for precedence tests below.
	assert.Equal(t, []string{"greetings", "thanks", "services", "contact", "pricing", "support", "about", "goodbye"}, names)
}

func TestMatcher_PricingExample(t *testing.T) {
	m := newTestMatcher(t, DefaultKnowledgeBase())

	for i := 0; i < 20; i++ {
		got := m.Match("What are your prices?")
		require.True(t, got.Matched)
		assert.Equal(t, "pricing", got.Category)
		assert.Contains(t, responsesOf(t, "pricing"), got.Response)
	}
}

func TestMatcher_FirstRegisteredCategoryWins(t *testing.T) {
	m := newTestMatcher(t, DefaultKnowledgeBase())

	got := m.Match("hey there, thanks!")
	assert.Equal(t, "greetings", got.Category)
	assert.Contains(t, responsesOf(t, "greetings"), got.Response)
}

func TestMatcher_LongerLaterTriggerDoesNotOverrideEarlierCategory(t *testing.T) {
	m := newTestMatcher(t, []store.Category{
		{Name: "short", Patterns: []string{"plan"}, Responses: []string{"short"}},
		{Name: "specific", Patterns: []string{"pricing plan"}, Responses: []string{"specific"}},
	})

	got := m.Match("Tell me about the pricing plan")
	assert.Equal(t, "short", got.Category)
	assert.Equal(t, "short", got.Response)
}

func TestMatcher_SubstringHazardIsPreserved(t *testing.T) {
	m := newTestMatcher(t, DefaultKnowledgeBase())

	// "this" contains the greetings trigger "hi".
	got := m.Match("How much does this cost?")
	assert.Equal(t, "greetings", got.Category)
}

func TestMatcher_CaseInsensitive(t *testing.T) {
	m := newTestMatcher(t, []store.Category{
		{Name: "contact", Patterns: []string{"email"}, Responses: []string{"support@example.com"}},
	})

	assert.Equal(t, "support@example.com", m.Reply("WHAT IS YOUR EMAIL"))
}

func TestMatcher_Fallback(t *testing.T) {
	m := newTestMatcher(t, DefaultKnowledgeBase())

	got := m.Match("zzz qqq")
	assert.False(t, got.Matched)
	assert.Empty(t, got.Category)
	assert.Equal(t, FallbackMessage, got.Response)
	assert.Contains(t, got.Response, "services")
	assert.Contains(t, got.Response, "contact")
	assert.Contains(t, got.Response, "pricing")

	assert.Equal(t, FallbackMessage, m.Reply(""))
}

func TestMatcher_DeterministicWithSeededSource(t *testing.T) {
	cats := []store.Category{{Name: "c", Patterns: []string{"x"}, Responses: []string{"a", "b", "c", "d"}}}

	m1 := NewMatcher(store.NewMemoryStore(cats), rand.New(rand.NewSource(42)), logger.NewNoOpLogger())
	m2 := NewMatcher(store.NewMemoryStore(cats), rand.New(rand.NewSource(42)), logger.NewNoOpLogger())

	for i := 0; i < 10; i++ {
		assert.Equal(t, m1.Reply("x"), m2.Reply("x"))
	}
}

func TestMatcher_SeesLiveUpdates(t *testing.T) {
	kb := store.NewMemoryStore(nil)
	m := NewMatcher(kb, rand.New(rand.NewSource(1)), logger.NewNoOpLogger())

	assert.Equal(t, FallbackMessage, m.Reply("refund please"))

	kb.Put(store.Category{Name: "refunds", Patterns: []string{"refund"}, Responses: []string{"Refunds take 5 days."}})
	assert.Equal(t, "Refunds take 5 days.", m.Reply("refund please"))
}

func TestMatcher_MetricSeriesDoNotGrowWithCategories(t *testing.T) {
	cats := make([]store.Category, 0, 20)
	for i := 0; i < 20; i++ {
		cats = append(cats, store.Category{
			Name:      fmt.Sprintf("trained-%d", i),
			Patterns:  []string{fmt.Sprintf("trigger%02d", i)},
			Responses: []string{"ok"},
		})
	}
	m := newTestMatcher(t, cats)
	for i := 0; i < 20; i++ {
		require.True(t, m.Match(fmt.Sprintf("say trigger%02d", i)).Matched)
	}
	m.Match("nothing relevant")

	ch := make(chan prometheus.Metric, 64)
	metrics.IntentMatches.Collect(ch)
	close(ch)
	assert.LessOrEqual(t, len(ch), 2)
}
