package graph

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// ============================================================================
// List and Search Operations
// ============================================================================

// ListNodes returns one page of entities, optionally filtered by type label
// and exact property values. Results are ordered by name then id; the id is
// immutable, so already-returned pages do not shift when entities are
// inserted concurrently.
func (s *Store) ListNodes(ctx context.Context, typeFilter string, propFilters map[string]any, page Page) (*NodeList, error) {
	page = page.clamp()

	match := "MATCH (e:Entity"
	if typeFilter != "" {
		match += ":" + typeFilter
	}
	match += ")"

	params := map[string]any{}
	var where []string
	keys := make([]string, 0, len(propFilters))
	for key := range propFilters {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		param := "prop_" + key
		where = append(where, fmt.Sprintf("e.%s = $%s", key, param))
		params[param] = propFilters[key]
	}

	clause := match
	if len(where) > 0 {
		clause += " WHERE " + strings.Join(where, " AND ")
	}

	countQuery := clause + " RETURN count(e) AS total"
	listQuery := clause + fmt.Sprintf(
		" RETURN e ORDER BY e.name ASC, e.id ASC SKIP %d LIMIT %d", page.skip(), page.Size)

	session := s.readSession(ctx)
	defer session.Close(ctx)

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, countQuery, params)
		if err != nil {
			return nil, err
		}
		record, err := res.Single(ctx)
		if err != nil {
			return nil, err
		}
		total := getIntFromRecord(record, "total")

		res, err = tx.Run(ctx, listQuery, params)
		if err != nil {
			return nil, err
		}
		nodes := []Node{}
		for res.Next(ctx) {
			if node, ok := nodeFromRecord(res.Record(), "e"); ok {
				nodes = append(nodes, node)
			}
		}
		if err := res.Err(); err != nil {
			return nil, err
		}
		return &NodeList{Nodes: nodes, Pagination: pageInfoFor(page, total)}, nil
	})
	if err != nil {
		return nil, mapStoreError("list nodes", err)
	}

	return result.(*NodeList), nil
}

// SearchNodes performs a term-based substring search over the common text
// properties (name, description, notation, domain). Every term must match at
// least one property. Results are capped by limit and ordered by name, id.
func (s *Store) SearchNodes(ctx context.Context, query string, entityTypes []string, limit int) ([]Node, error) {
	if limit <= 0 || limit > MaxPageSize {
		limit = DefaultPageSize
	}
	if len(entityTypes) == 0 {
		entityTypes = []string{"Concept", "Symbol"}
	}

	terms := strings.Fields(query)
	if len(terms) == 0 {
		return []Node{}, nil
	}

	params := map[string]any{}
	var where []string
	for i, term := range terms {
		param := fmt.Sprintf("term%d", i)
		params[param] = term
		where = append(where, fmt.Sprintf(
			"(toLower(e.name) CONTAINS toLower($%[1]s)"+
				" OR toLower(coalesce(e.description, '')) CONTAINS toLower($%[1]s)"+
				" OR toLower(coalesce(e.notation, '')) CONTAINS toLower($%[1]s)"+
				" OR toLower(coalesce(e.domain, '')) CONTAINS toLower($%[1]s))", param))
	}

	labelPreds := make([]string, 0, len(entityTypes))
	for _, t := range entityTypes {
		labelPreds = append(labelPreds, "e:"+t)
	}

	searchQuery := fmt.Sprintf(`
		MATCH (e:Entity)
		WHERE (%s)
		  AND %s
		RETURN e
		ORDER BY e.name ASC, e.id ASC
		LIMIT %d
	`, strings.Join(labelPreds, " OR "), strings.Join(where, " AND "), limit)

	session := s.readSession(ctx)
	defer session.Close(ctx)

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, searchQuery, params)
		if err != nil {
			return nil, err
		}
		nodes := []Node{}
		for res.Next(ctx) {
			if node, ok := nodeFromRecord(res.Record(), "e"); ok {
				nodes = append(nodes, node)
			}
		}
		if err := res.Err(); err != nil {
			return nil, err
		}
		return nodes, nil
	})
	if err != nil {
		return nil, mapStoreError("search nodes", err)
	}

	return result.([]Node), nil
}
