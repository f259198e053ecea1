package intent

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"

	"vaspx-assistant/internal/logger"
	"vaspx-assistant/internal/metrics"
	"vaspx-assistant/internal/store"
	"vaspx-assistant/internal/types"
)

// ErrInvalidTraining is returned for training payloads that fail validation.
var ErrInvalidTraining = errors.New("invalid training data")

// Persister keeps trained categories across restarts.
type Persister interface {
	SaveCategory(ctx context.Context, c store.Category) error
	LoadCategories(ctx context.Context) ([]store.Category, error)
}

var trainingSchema = mustCompileSchema(map[string]interface{}{
	"type":     "object",
	"required": []string{"category", "patterns", "responses"},
	"properties": map[string]interface{}{
		"category": map[string]interface{}{
			"type":    "string",
			"pattern": `\S`,
		},
		"patterns": map[string]interface{}{
			"type":     "array",
			"minItems": 1,
			"items":    map[string]interface{}{"type": "string"},
		},
		"responses": map[string]interface{}{
			"type":     "array",
			"minItems": 1,
			"items":    map[string]interface{}{"type": "string"},
		},
	},
})

func mustCompileSchema(schema map[string]interface{}) *gojsonschema.Schema {
	s, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(schema))
	if err != nil {
		panic(fmt.Sprintf("compile training schema: %v", err))
	}
	return s
}

// Registrar is the only writer of the live knowledge base.
//
// writeMu orders the live update and the persisted write of each training
// so the stored copy never ends up older than the live table.
type Registrar struct {
	kb        *store.MemoryStore
	persister Persister
	log       logger.Logger

	writeMu sync.Mutex
}

// NewRegistrar wires the registrar. persister may be nil.
func NewRegistrar(kb *store.MemoryStore, persister Persister, log logger.Logger) *Registrar {
	return &Registrar{kb: kb, persister: persister, log: log}
}

// Restore applies persisted categories on top of the current table.
func (r *Registrar) Restore(ctx context.Context) (int, error) {
	if r.persister == nil {
		return 0, nil
	}
	r.writeMu.Lock()
	defer r.writeMu.Unlock()

	cats, err := r.persister.LoadCategories(ctx)
	if err != nil {
		return 0, fmt.Errorf("restore knowledge base: %w", err)
	}
	n := 0
	for _, c := range cats {
		c = normalizeCategory(c)
		if c.Name == "" || len(c.Patterns) == 0 || len(c.Responses) == 0 {
			r.log.Warn("skipping invalid persisted category", map[string]interface{}{"category": c.Name})
			continue
		}
		r.kb.Put(c)
		n++
	}
	return n, nil
}

// Train validates req and inserts or fully replaces the category. The live
// table is updated before persistence; a persistence failure is logged and
// does not undo the update. Trainings are applied one at a time.
func (r *Registrar) Train(ctx context.Context, req types.TrainRequest) (store.Category, error) {
	if err := validateTraining(req); err != nil {
		metrics.KnowledgeTraining.WithLabelValues("error").Inc()
		r.log.Warn("training rejected", map[string]interface{}{"category": req.Category, "error": err})
		return store.Category{}, err
	}

	c := normalizeCategory(store.Category{
		Name:      req.Category,
		Patterns:  req.Patterns,
		Responses: req.Responses,
	})
	if len(c.Patterns) == 0 || len(c.Responses) == 0 {
		metrics.KnowledgeTraining.WithLabelValues("error").Inc()
		return store.Category{}, fmt.Errorf("%w: patterns and responses must contain non-blank entries", ErrInvalidTraining)
	}

	r.writeMu.Lock()
	defer r.writeMu.Unlock()

	r.kb.Put(c)
	metrics.KnowledgeTraining.WithLabelValues("success").Inc()
	r.log.Info("category trained", map[string]interface{}{
		"category":  c.Name,
		"patterns":  len(c.Patterns),
		"responses": len(c.Responses),
	})

	if r.persister != nil {
		if err := r.persister.SaveCategory(ctx, c); err != nil {
			r.log.Error("failed to persist trained category", map[string]interface{}{"category": c.Name, "error": err})
		}
	}
	return c, nil
}

// Snapshot returns the whole table in registration order.
func (r *Registrar) Snapshot() []store.Category {
	return r.kb.Categories()
}

func validateTraining(req types.TrainRequest) error {
	result, err := trainingSchema.Validate(gojsonschema.NewGoLoader(req))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidTraining, err)
	}
	if result.Valid() {
		return nil
	}
	msgs := make([]string, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		msgs = append(msgs, fmt.Sprintf("%s: %s", e.Field(), e.Description()))
	}
	return fmt.Errorf("%w: %s", ErrInvalidTraining, strings.Join(msgs, "; "))
}
