package intent

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vaspx-assistant/internal/logger"
	"vaspx-assistant/internal/store"
	"vaspx-assistant/internal/types"
)

type fakePersister struct {
	saved   []store.Category
	stored  []store.Category
	saveErr error
	loadErr error
}

func (f *fakePersister) SaveCategory(_ context.Context, c store.Category) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.saved = append(f.saved, c)
	return nil
}

func (f *fakePersister) LoadCategories(context.Context) ([]store.Category, error) {
	return f.stored, f.loadErr
}

// slowPersister blocks its first save until release is closed.
type slowPersister struct {
	mu      sync.Mutex
	calls   int
	latest  map[string]store.Category
	entered chan struct{}
	release chan struct{}
}

func newSlowPersister() *slowPersister {
	return &slowPersister{
		latest:  map[string]store.Category{},
		entered: make(chan struct{}),
		release: make(chan struct{}),
	}
}

func (p *slowPersister) SaveCategory(_ context.Context, c store.Category) error {
	p.mu.Lock()
	p.calls++
	first := p.calls == 1
	p.mu.Unlock()
	if first {
		close(p.entered)
		<-p.release
	}
	p.mu.Lock()
	p.latest[c.Name] = c
	p.mu.Unlock()
	return nil
}

func (p *slowPersister) LoadCategories(context.Context) ([]store.Category, error) {
	return nil, nil
}

func TestRegistrar_Train_ConcurrentSameCategoryKeepsStoreInStep(t *testing.T) {
	kb := store.NewMemoryStore(nil)
	p := newSlowPersister()
	r := NewRegistrar(kb, p, logger.NewNoOpLogger())

	train := func(resp string) <-chan error {
		done := make(chan error, 1)
		go func() {
			_, err := r.Train(context.Background(), types.TrainRequest{Category: "c", Patterns: []string{"x"}, Responses: []string{resp}})
			done <- err
		}()
		return done
	}

	first := train("v1")
	<-p.entered
	second := train("v2")

	select {
	case <-second:
		t.Fatal("second training finished while the first was still persisting")
	case <-time.After(50 * time.Millisecond):
	}

	close(p.release)
	require.NoError(t, <-first)
	require.NoError(t, <-second)

	live, ok := kb.Get("c")
	require.True(t, ok)
	assert.Equal(t, []string{"v2"}, live.Responses)

	p.mu.Lock()
	defer p.mu.Unlock()
	assert.Equal(t, live.Responses, p.latest["c"].Responses)
}

func TestRegistrar_Train_RejectsInvalidPayloads(t *testing.T) {
	tests := []struct {
		name string
		req  types.TrainRequest
	}{
		{"missing category", types.TrainRequest{Patterns: []string{"a"}, Responses: []string{"b"}}},
		{"blank category", types.TrainRequest{Category: "   ", Patterns: []string{"a"}, Responses: []string{"b"}}},
		{"nil patterns", types.TrainRequest{Category: "c", Responses: []string{"b"}}},
		{"empty patterns", types.TrainRequest{Category: "c", Patterns: []string{}, Responses: []string{"b"}}},
		{"empty responses", types.TrainRequest{Category: "c", Patterns: []string{"a"}, Responses: []string{}}},
		{"blank patterns only", types.TrainRequest{Category: "c", Patterns: []string{" ", ""}, Responses: []string{"b"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kb := store.NewMemoryStore(DefaultKnowledgeBase())
			before := kb.Categories()
			p := &fakePersister{}
			r := NewRegistrar(kb, p, logger.NewTestLogger(t))

			_, err := r.Train(context.Background(), tt.req)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidTraining))
			assert.Equal(t, before, kb.Categories())
			assert.Empty(t, p.saved)
		})
	}
}

func TestRegistrar_Train_NormalizesAndPersists(t *testing.T) {
	kb := store.NewMemoryStore(nil)
	p := &fakePersister{}
	r := NewRegistrar(kb, p, logger.NewTestLogger(t))

	c, err := r.Train(context.Background(), types.TrainRequest{
		Category:  " refunds ",
		Patterns:  []string{"Refund", "MONEY BACK"},
		Responses: []string{"Refunds take 5 days."},
	})
	require.NoError(t, err)
	assert.Equal(t, "refunds", c.Name)
	assert.Equal(t, []string{"refund", "money back"}, c.Patterns)

	got, ok := kb.Get("refunds")
	require.True(t, ok)
	assert.Equal(t, c, got)
	require.Len(t, p.saved, 1)
	assert.Equal(t, c, p.saved[0])
}

func TestRegistrar_Train_OverwriteReplacesNotMerges(t *testing.T) {
	kb := store.NewMemoryStore(DefaultKnowledgeBase())
	r := NewRegistrar(kb, nil, logger.NewNoOpLogger())

	_, err := r.Train(context.Background(), types.TrainRequest{
		Category:  "pricing",
		Patterns:  []string{"tariff"},
		Responses: []string{"See our tariff sheet."},
	})
	require.NoError(t, err)

	got, _ := kb.Get("pricing")
	assert.Equal(t, []string{"tariff"}, got.Patterns)
	assert.Equal(t, []string{"See our tariff sheet."}, got.Responses)
	assert.Equal(t, len(DefaultKnowledgeBase()), kb.Len())
}

func TestRegistrar_Train_PersistFailureKeepsLiveUpdate(t *testing.T) {
	kb := store.NewMemoryStore(nil)
	r := NewRegistrar(kb, &fakePersister{saveErr: errors.New("disk full")}, logger.NewNoOpLogger())

	_, err := r.Train(context.Background(), types.TrainRequest{Category: "a", Patterns: []string{"x"}, Responses: []string{"y"}})
	require.NoError(t, err)
	_, ok := kb.Get("a")
	assert.True(t, ok)
}

func TestRegistrar_Restore(t *testing.T) {
	kb := store.NewMemoryStore(DefaultKnowledgeBase())
	p := &fakePersister{stored: []store.Category{
		{Name: "refunds", Patterns: []string{"Refund"}, Responses: []string{"Refunds take 5 days."}},
		{Name: "pricing", Patterns: []string{"tariff"}, Responses: []string{"See our tariff sheet."}},
		{Name: "broken"},
	}}
	r := NewRegistrar(kb, p, logger.NewNoOpLogger())

	n, err := r.Restore(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	snap := r.Snapshot()
	assert.Equal(t, "refunds", snap[len(snap)-1].Name)
	assert.Equal(t, []string{"refund"}, snap[len(snap)-1].Patterns)
	pricing, _ := kb.Get("pricing")
	assert.Equal(t, []string{"tariff"}, pricing.Patterns)
}

func TestRegistrar_RestoreError(t *testing.T) {
	r := NewRegistrar(store.NewMemoryStore(nil), &fakePersister{loadErr: errors.New("db down")}, logger.NewNoOpLogger())
	_, err := r.Restore(context.Background())
	assert.Error(t, err)

	n, err := NewRegistrar(store.NewMemoryStore(nil), nil, logger.NewNoOpLogger()).Restore(context.Background())
	assert.NoError(t, err)
	assert.Zero(t, n)
}

func TestLoadKnowledgeFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "knowledge.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
categories:
  - name: hours
    patterns: ["Open", "hours"]
    responses: ["We are open 9 to 5."]
  - name: greetings
    patterns: ["hello"]
    responses: ["Hi!", "Hello!"]
`), 0o644))

	cats, err := LoadKnowledgeFile(path)
	require.NoError(t, err)
	require.Len(t, cats, 2)
	assert.Equal(t, "hours", cats[0].Name)
	assert.Equal(t, []string{"open", "hours"}, cats[0].Patterns)
	assert.Equal(t, "greetings", cats[1].Name)
}

func TestLoadKnowledgeFile_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "knowledge.yaml")
	require.NoError(t, os.WriteFile(path, []byte("categories:\n  - name: empty\n"), 0o644))

	_, err := LoadKnowledgeFile(path)
	assert.Error(t, err)

	_, err = LoadKnowledgeFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
