// Package main provides the kgctl binary entry point.
// Kgctl is the operator tool for the knowledge store: it validates
// schema catalogs offline and applies database constraints.
package main

import (
	"context"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/spf13/cobra"

	"knowledge-store/backend/internal/graph"
	"knowledge-store/backend/internal/schema"
	"knowledge-store/backend/pkg/config"
)

const (
	Version = "0.1.0"
	appName = "kgctl"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "kgctl",
		Short: "Knowledge store operator tool",
		Long: `Kgctl manages the knowledge store's schema and database setup.

It provides:
- Offline validation of entity and relationship type catalogs
- One-shot application of uniqueness constraints and indexes

Connection settings come from the same environment variables the
server reads (NEO4J_URI, NEO4J_USERNAME, NEO4J_PASSWORD).`,
	}

	cmd.AddCommand(schemaCmd())

	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("%s version %s\n", appName, Version)
		},
	})

	return cmd
}

func schemaCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Schema catalog operations",
	}

	var dir string

	validate := &cobra.Command{
		Use:   "validate",
		Short: "Validate schema catalogs without touching the database",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(dir)
		},
	}
	validate.Flags().StringVar(&dir, "dir", "schemas", "Directory containing the catalog files")

	apply := &cobra.Command{
		Use:   "apply",
		Short: "Apply uniqueness constraints and indexes to the database",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runApply()
		},
	}

	cmd.AddCommand(validate, apply)
	return cmd
}

func runValidate(dir string) error {
	reg, err := schema.LoadCatalogs(dir)
	if err != nil {
		return fmt.Errorf("load catalogs: %w", err)
	}

	entities := reg.EntityTypes()
	relationships := reg.RelationshipTypes()

	fmt.Printf("Catalogs in %s are valid.\n\n", dir)

	fmt.Printf("Entity types (%d):\n", len(entities))
	for _, et := range entities {
		chain, _ := reg.LabelChain(et.Name)
		resolved, _ := reg.Resolve(et.Name)
		names := make([]string, 0, len(resolved))
		for name := range resolved {
			names = append(names, name)
		}
		sort.Strings(names)
		fmt.Printf("  %-12s labels=%v properties=%v\n", et.Name, chain, names)
	}

	fmt.Printf("\nRelationship types (%d):\n", len(relationships))
	for _, rt := range relationships {
		fmt.Printf("  %-24s %v -> %v\n", rt.Name, rt.SourceTypes, rt.TargetTypes)
	}

	return nil
}

func runApply() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	driver, err := neo4j.NewDriverWithContext(
		cfg.Neo4jURI,
		neo4j.BasicAuth(cfg.Neo4jUser, cfg.Neo4jPassword, ""),
	)
	if err != nil {
		return fmt.Errorf("create driver: %w", err)
	}
	defer driver.Close(context.Background())

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := driver.VerifyConnectivity(ctx); err != nil {
		return fmt.Errorf("verify connectivity: %w", err)
	}

	store := graph.NewStore(driver, graph.DeletePolicy(cfg.OnDelete))
	if err := store.ApplyConstraints(ctx); err != nil {
		return fmt.Errorf("apply constraints: %w", err)
	}

	fmt.Println("Constraints and indexes applied.")
	return nil
}
