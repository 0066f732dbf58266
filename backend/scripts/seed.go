package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"

	"knowledge-store/backend/internal/graph"
	"knowledge-store/backend/internal/knowledge"
	"knowledge-store/backend/internal/schema"
	"knowledge-store/backend/pkg/config"
	"knowledge-store/backend/pkg/logger"
)

// Seeds a small starter graph of academic knowledge so the query operations
// have something to answer against. Safe to re-run with --reset.

type seedEntity struct {
	id       string
	typeName string
	props    map[string]any
}

type seedRelationship struct {
	typeName string
	fromID   string
	toID     string
	props    map[string]any
}

func main() {
	reset := flag.Bool("reset", false, "Delete all seeded entities before seeding")
	flag.Parse()

	if err := logger.Init("development"); err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer logger.Sync()

	log := logger.Get()
	log.Info("Starting knowledge graph seeding...")

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration", zap.Error(err))
	}

	driver, err := neo4j.NewDriverWithContext(
		cfg.Neo4jURI,
		neo4j.BasicAuth(cfg.Neo4jUser, cfg.Neo4jPassword, ""),
	)
	if err != nil {
		log.Fatal("Failed to create Neo4j driver", zap.Error(err))
	}
	defer driver.Close(context.Background())

	ctx := context.Background()
	if err := driver.VerifyConnectivity(ctx); err != nil {
		log.Fatal("Failed to verify Neo4j connectivity", zap.Error(err))
	}

	registry, err := schema.LoadCatalogs(cfg.SchemaDir)
	if err != nil {
		log.Fatal("Failed to load schema catalogs", zap.Error(err))
	}

	store := graph.NewStore(driver, graph.DeletePolicy(cfg.OnDelete))
	if err := store.ApplyConstraints(ctx); err != nil {
		log.Fatal("Failed to apply constraints", zap.Error(err))
	}

	if *reset {
		log.Info("Resetting seeded entities...")
		session := driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
		_, err := session.Run(ctx, "MATCH (e:Entity) WHERE e.id STARTS WITH 'seed-' DETACH DELETE e", nil)
		session.Close(ctx)
		if err != nil {
			log.Fatal("Failed to reset seeded entities", zap.Error(err))
		}
	}

	svc := knowledge.NewService(schema.NewHolder(registry), store, schema.Mode(cfg.ValidationMode))

	entities := []seedEntity{
		{"seed-entropy", "Concept", map[string]any{
			"name": "Entropy", "domain": "information-theory", "tier": "L3",
			"summary_l1": "A measure of uncertainty in a random variable.",
			"summary_l2": "The expected information content of a random variable, maximized by the uniform distribution.",
			"summary_l3": "H(X) = -sum p(x) log p(x); the unique (up to scale) functional satisfying continuity, monotonicity, and the grouping axiom.",
		}},
		{"seed-std-dev", "Concept", map[string]any{
			"name": "Standard Deviation", "domain": "statistics", "tier": "L2",
			"summary_l1": "How spread out values are around the mean.",
			"summary_l2": "The square root of the variance of a distribution or sample.",
		}},
		{"seed-stress", "Concept", map[string]any{
			"name": "Stress", "domain": "mechanics", "tier": "L2",
			"summary_l1": "Internal force per unit area in a material.",
		}},
		{"seed-gradient-descent", "Algorithm", map[string]any{
			"name": "Gradient Descent", "domain": "optimization", "tier": "L2",
			"complexity": "O(k) iterations for convergence tolerance epsilon",
		}},
		{"seed-sigma", "Symbol", map[string]any{
			"name": "sigma", "notation": "σ", "latex": "\\sigma", "context": "overloaded across statistics and mechanics",
		}},
		{"seed-h", "Symbol", map[string]any{
			"name": "H", "notation": "H", "latex": "H", "context": "information theory",
		}},
		{"seed-shannon-1948", "Document", map[string]any{
			"name":    "A Mathematical Theory of Communication",
			"title":   "A Mathematical Theory of Communication",
			"authors": []any{"Claude E. Shannon"},
			"year":    1948,
		}},
	}

	relationships := []seedRelationship{
		{"REPRESENTS", "seed-sigma", "seed-std-dev", map[string]any{"context": "statistics", "confidence": 0.95}},
		{"REPRESENTS", "seed-sigma", "seed-stress", map[string]any{"context": "mechanics", "confidence": 0.85}},
		{"REPRESENTS", "seed-h", "seed-entropy", map[string]any{"context": "information theory", "confidence": 0.98}},
		{"APPEARS_IN", "seed-entropy", "seed-shannon-1948", map[string]any{"context": "introduced in section 6"}},
		{"APPEARS_IN", "seed-h", "seed-shannon-1948", nil},
		{"RELATES_TO", "seed-entropy", "seed-std-dev", map[string]any{"relationship_type": "both quantify dispersion"}},
		{"HAS_INTERPRETATION_IN", "seed-entropy", "seed-stress", map[string]any{
			"domain": "mechanics", "interpretation": "disorder of microstates underlying macroscopic stress response",
		}},
	}

	seeded := 0
	for _, e := range entities {
		props := make(map[string]any, len(e.props)+1)
		for k, v := range e.props {
			props[k] = v
		}
		props["id"] = e.id

		if _, err := svc.CreateEntity(ctx, e.typeName, props); err != nil {
			log.Warn("Skipping entity (may already exist)",
				zap.String("id", e.id), zap.Error(err))
			continue
		}
		seeded++
	}

	linked := 0
	for _, r := range relationships {
		props := r.props
		if props == nil {
			props = map[string]any{}
		}
		if _, err := svc.CreateRelationship(ctx, r.typeName, r.fromID, r.toID, props); err != nil {
			log.Warn("Skipping relationship (may already exist)",
				zap.String("type", r.typeName), zap.String("from", r.fromID), zap.String("to", r.toID), zap.Error(err))
			continue
		}
		linked++
	}

	log.Info("Seeding complete",
		zap.Int("entities", seeded),
		zap.Int("relationships", linked),
	)
}
