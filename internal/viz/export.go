// This file implements the visualization export job: read current beliefs
// with embeddings, project to 3D, write a JSON document with per-belief
// coordinates and distance from origin.
package viz

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/keelworks/keel/internal/sqlite"
)

// Document is the exported JSON payload.
type Document struct {
	GeneratedAt       time.Time     `json:"generated_at"`
	BeliefCount       int           `json:"belief_count"`
	VarianceExplained []float64     `json:"variance_explained"`
	Beliefs           []BeliefPoint `json:"beliefs"`
}

// BeliefPoint is one belief placed in the projected 3D space.
type BeliefPoint struct {
	ID         string   `json:"id"`
	Statement  string   `json:"statement"`
	Type       string   `json:"type"`
	Conviction int      `json:"conviction"`
	Norm       float64  `json:"norm"`
	Position   Position `json:"position"`
	Distance   float64  `json:"distance"`
}

// Position is a 3D coordinate.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Exporter reads the store and writes visualization documents. It is a
// one-shot reporting consumer: the store has no dependency on it.
type Exporter struct {
	backend *sqlite.Backend
	log     *zap.Logger
}

// NewExporter creates an Exporter over an attached backend. A nil logger
// disables logging.
func NewExporter(backend *sqlite.Backend, log *zap.Logger) *Exporter {
	if log == nil {
		log = zap.NewNop()
	}
	return &Exporter{backend: backend, log: log}
}

// Build computes the export document from current store contents.
func (e *Exporter) Build() (*Document, error) {
	embedded, err := e.backend.CurrentBeliefsWithEmbeddings()
	if err != nil {
		return nil, fmt.Errorf("reading embedded beliefs: %w", err)
	}

	doc := &Document{
		GeneratedAt: time.Now().UTC(),
		BeliefCount: len(embedded),
		Beliefs:     []BeliefPoint{},
	}
	if len(embedded) == 0 {
		return doc, nil
	}

	vectors := make([][]float32, len(embedded))
	for i, eb := range embedded {
		vectors[i] = eb.Vector
	}

	coords, variance, err := Project(vectors)
	if err != nil {
		return nil, fmt.Errorf("projecting embeddings: %w", err)
	}
	doc.VarianceExplained = variance

	for i, eb := range embedded {
		pos := Position{X: coords[i][0], Y: coords[i][1], Z: coords[i][2]}
		doc.Beliefs = append(doc.Beliefs, BeliefPoint{
			ID:         eb.Belief.BeliefID,
			Statement:  eb.Belief.Statement,
			Type:       eb.Belief.BeliefType,
			Conviction: eb.Belief.ConvictionScore,
			Norm:       eb.Norm,
			Position:   pos,
			Distance:   math.Sqrt(pos.X*pos.X + pos.Y*pos.Y + pos.Z*pos.Z),
		})
	}

	captured := 0.0
	for _, v := range variance {
		captured += v
	}
	e.log.Info("built belief space document",
		zap.Int("beliefs", len(embedded)),
		zap.Float64("variance_captured", captured))

	return doc, nil
}

// Export builds the document and writes it to path as indented JSON.
func (e *Exporter) Export(path string) error {
	doc, err := e.Build()
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding export document: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing export document: %w", err)
	}

	e.log.Info("wrote belief space export", zap.String("path", path))
	return nil
}
