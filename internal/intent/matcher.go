package intent

import (
	"math/rand"
	"strings"
	"sync"

	"vaspx-assistant/internal/logger"
	"vaspx-assistant/internal/metrics"
	"vaspx-assistant/internal/store"
)

// FallbackMessage is returned when no category matches the input.
const FallbackMessage = "I'm not sure I understand. Could you please be more specific? " +
	"You can ask me about our services, contact information, or pricing."

// Metric results. Category names come from /train and are not used as labels.
const (
	resultMatched  = "matched"
	resultFallback = "fallback"
)

// Source is the ordered category table a Matcher scans.
type Source interface {
	Categories() []store.Category
}

// Match is the outcome of a single lookup.
type Match struct {
	Category string
	Response string
	Matched  bool
}

// Matcher resolves free text to a canned reply by substring matching.
//
// Matching is plain substring containment on the lowercased input, so short
// triggers match inside longer words ("hi" matches "this"). The first
// category in registration order wins.
type Matcher struct {
	source Source
	log    logger.Logger

	mu  sync.Mutex
	rnd *rand.Rand
}

// NewMatcher creates a matcher over source. rnd picks among candidate responses.
func NewMatcher(source Source, rnd *rand.Rand, log logger.Logger) *Matcher {
	return &Matcher{source: source, rnd: rnd, log: log}
}

// Match returns the first category whose trigger occurs in text, or the fallback.
func (m *Matcher) Match(text string) Match {
	normalized := strings.ToLower(text)
	for _, c := range m.source.Categories() {
		if !containsAny(normalized, c.Patterns) || len(c.Responses) == 0 {
			continue
		}
		metrics.IntentMatches.WithLabelValues(resultMatched).Inc()
		m.log.Debug("intent matched", map[string]interface{}{"category": c.Name})
		return Match{Category: c.Name, Response: m.pick(c.Responses), Matched: true}
	}
	metrics.IntentMatches.WithLabelValues(resultFallback).Inc()
	return Match{Response: FallbackMessage}
}

// Reply returns only the chosen response text.
func (m *Matcher) Reply(text string) string {
	return m.Match(text).Response
}

func (m *Matcher) pick(responses []string) string {
	if len(responses) == 1 {
		return responses[0]
	}
	m.mu.Lock()
	i := m.rnd.Intn(len(responses))
	m.mu.Unlock()
	return responses[i]
}

func containsAny(s string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}
