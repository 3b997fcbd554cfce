package service

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/albertus-andito/fake-news-detection/internal/core/model"
	"github.com/albertus-andito/fake-news-detection/internal/driver"
)

// BoltGraph updates a Memgraph/Neo4j knowledge graph directly instead of
// going through the knowledge-graph updater service.
type BoltGraph struct {
	Driver driver.GraphDriver
	Logger *log.Logger
}

var _ GraphUpdater = (*BoltGraph)(nil)

func NewBoltGraph(d driver.GraphDriver, logger *log.Logger) *BoltGraph {
	return &BoltGraph{Driver: d, Logger: logger}
}

// Insert adds every triple that is already present or does not contradict
// the graph. A triple whose subject already carries the relation with other
// objects is reported as a conflict and left out.
func (g *BoltGraph) Insert(ctx context.Context, triples []model.Triple) (*model.ConflictReport, error) {
	var conflicts []model.Conflict
	for _, t := range triples {
		present, err := g.contains(ctx, t)
		if err != nil {
			return nil, err
		}
		if present {
			continue
		}

		existing, err := g.objects(ctx, t.Subject, t.Relation)
		if err != nil {
			return nil, err
		}
		if len(existing) > 0 {
			toInsert := t.Clone()
			c := model.Conflict{ToBeInserted: &toInsert}
			for _, o := range existing {
				c.InKnowledgeGraph = append(c.InKnowledgeGraph, model.Triple{
					Subject:  t.Subject,
					Relation: t.Relation,
					Objects:  []string{o},
				})
			}
			conflicts = append(conflicts, c)
			continue
		}

		if err := g.insert(ctx, t); err != nil {
			return nil, err
		}
	}

	if len(conflicts) == 0 {
		return nil, nil
	}
	return &model.ConflictReport{Message: "conflicts found", Conflicts: conflicts}, nil
}

func (g *BoltGraph) ForceInsert(ctx context.Context, triples []model.Triple) error {
	for _, t := range triples {
		if err := g.insert(ctx, t); err != nil {
			return err
		}
	}
	return nil
}

func (g *BoltGraph) Delete(ctx context.Context, triple model.Triple) error {
	for _, o := range triple.Objects {
		params := map[string]interface{}{
			"subject":  triple.Subject,
			"relation": triple.Relation,
			"object":   o,
		}
		if _, err := g.Driver.ExecuteQuery(ctx, driver.DeleteStatementQuery, params); err != nil {
			return fmt.Errorf("delete %s: %w", triple, err)
		}
	}
	g.Logger.Debug("deleted triple", "triple", triple.String())
	return nil
}

func (g *BoltGraph) Equate(ctx context.Context, entityA, entityB string) error {
	params := map[string]interface{}{"entity_a": entityA, "entity_b": entityB}
	if _, err := g.Driver.ExecuteQuery(ctx, driver.SameAsQuery, params); err != nil {
		return fmt.Errorf("equate %s and %s: %w", entityA, entityB, err)
	}
	return nil
}

// Entity returns one triple per outgoing statement of subject.
func (g *BoltGraph) Entity(ctx context.Context, subject string) ([]model.Triple, error) {
	res, err := g.Driver.ExecuteQuery(ctx, driver.GetEntityQuery, map[string]interface{}{"subject": subject})
	if err != nil {
		return nil, fmt.Errorf("get entity %s: %w", subject, err)
	}

	triples := make([]model.Triple, 0, len(res.Records))
	for _, rec := range res.Records {
		relation, err := recordString(rec, "relation")
		if err != nil {
			return nil, err
		}
		object, err := recordString(rec, "object")
		if err != nil {
			return nil, err
		}
		triples = append(triples, model.Triple{Subject: subject, Relation: relation, Objects: []string{object}})
	}
	return triples, nil
}

func (g *BoltGraph) insert(ctx context.Context, t model.Triple) error {
	for _, o := range t.Objects {
		params := map[string]interface{}{
			"subject":  t.Subject,
			"relation": t.Relation,
			"object":   o,
		}
		if _, err := g.Driver.ExecuteQuery(ctx, driver.InsertStatementQuery, params); err != nil {
			return fmt.Errorf("insert %s: %w", t, err)
		}
	}
	g.Logger.Debug("inserted triple", "triple", t.String())
	return nil
}

func (g *BoltGraph) contains(ctx context.Context, t model.Triple) (bool, error) {
	objects := make([]interface{}, len(t.Objects))
	for i, o := range t.Objects {
		objects[i] = o
	}
	params := map[string]interface{}{
		"subject":  t.Subject,
		"relation": t.Relation,
		"objects":  objects,
	}
	res, err := g.Driver.ExecuteQuery(ctx, driver.CountObjectsQuery, params)
	if err != nil {
		return false, fmt.Errorf("lookup %s: %w", t, err)
	}
	if len(res.Records) == 0 {
		return false, nil
	}
	v, ok := res.Records[0].Get("matched")
	if !ok {
		return false, fmt.Errorf("lookup %s: missing matched column", t)
	}
	matched, ok := v.(int64)
	if !ok {
		return false, fmt.Errorf("lookup %s: unexpected matched type %T", t, v)
	}
	return int(matched) >= len(distinct(t.Objects)), nil
}

func (g *BoltGraph) objects(ctx context.Context, subject, relation string) ([]string, error) {
	params := map[string]interface{}{"subject": subject, "relation": relation}
	res, err := g.Driver.ExecuteQuery(ctx, driver.GetObjectsQuery, params)
	if err != nil {
		return nil, fmt.Errorf("get objects of %s %s: %w", subject, relation, err)
	}
	out := make([]string, 0, len(res.Records))
	for _, rec := range res.Records {
		o, err := recordString(rec, "object")
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, nil
}

func recordString(rec *neo4j.Record, key string) (string, error) {
	v, ok := rec.Get(key)
	if !ok {
		return "", fmt.Errorf("record has no %q column", key)
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("column %q is %T, not string", key, v)
	}
	return s, nil
}

func distinct(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := values[:0:0]
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
