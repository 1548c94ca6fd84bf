package sinks

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/agentstation/linkage/pkg/bucketizer"
	"github.com/agentstation/linkage/pkg/constants"
	"github.com/agentstation/linkage/pkg/errors"
	"github.com/agentstation/linkage/pkg/logging"
	"github.com/agentstation/linkage/pkg/records"
)

// GraphDriver executes Cypher queries.
type GraphDriver interface {
	ExecuteQuery(ctx context.Context, query string, params map[string]any) (neo4j.EagerResult, error)
	Close(ctx context.Context) error
}

// Driver is a GraphDriver backed by the Neo4j Bolt driver.
type Driver struct {
	driver   neo4j.DriverWithContext
	database string
}

// NewDriver connects to uri and verifies connectivity.
func NewDriver(ctx context.Context, uri, username, password, database string) (*Driver, error) {
	driver, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(username, password, ""))
	if err != nil {
		return nil, errors.WrapResource("open", "neo4j", uri, err)
	}

	vctx, cancel := context.WithTimeout(ctx, constants.SinkConnectTimeout)
	defer cancel()
	if err := driver.VerifyConnectivity(vctx); err != nil {
		_ = driver.Close(ctx)
		return nil, errors.WrapResource("connect", "neo4j", uri, err)
	}

	logging.FromContext(ctx).Info().Str("uri", uri).Msg("Connected to Neo4j")
	return &Driver{driver: driver, database: database}, nil
}

// ExecuteQuery implements GraphDriver.
func (d *Driver) ExecuteQuery(ctx context.Context, query string, params map[string]any) (neo4j.EagerResult, error) {
	opts := []neo4j.ExecuteQueryConfigurationOption{}
	if d.database != "" {
		opts = append(opts, neo4j.ExecuteQueryWithDatabase(d.database))
	}
	result, err := neo4j.ExecuteQuery(ctx, d.driver, query, params, neo4j.EagerResultTransformer, opts...)
	if err != nil {
		return neo4j.EagerResult{}, fmt.Errorf("failed to execute query: %w", err)
	}
	return *result, nil
}

// Close implements GraphDriver.
func (d *Driver) Close(ctx context.Context) error {
	return d.driver.Close(ctx)
}

const (
	mergeMembersQuery = `
UNWIND $members AS m
MERGE (r:Record {key: m.key})
SET r.provider = m.provider, r.id = m.id,
    r.run_id = $run_id, r.bucket = $bucket, r.cardinality = $cardinality`

	mergeLinksQuery = `
UNWIND $links AS l
MATCH (a:Record {key: l.a}), (b:Record {key: l.b})
MERGE (a)-[m:MATCHES]-(b)
SET m.evidence = l.evidence, m.run_id = $run_id, m.bucket = $bucket`
)

// Neo4j writes each bucket as Record nodes joined by MATCHES
// relationships that carry the evidence.
type Neo4j struct {
	driver GraphDriver
}

// NewNeo4j creates a sink writing through driver.
func NewNeo4j(driver GraphDriver) *Neo4j {
	return &Neo4j{driver: driver}
}

// EnsureIndexes creates the Record key constraint. Failures are logged and
// ignored since the constraint may already exist under another name.
func (n *Neo4j) EnsureIndexes(ctx context.Context) {
	queries := []string{
		"CREATE CONSTRAINT record_key IF NOT EXISTS FOR (r:Record) REQUIRE r.key IS UNIQUE",
		"CREATE INDEX record_bucket IF NOT EXISTS FOR (r:Record) ON (r.run_id, r.bucket)",
	}
	for _, q := range queries {
		if _, err := n.driver.ExecuteQuery(ctx, q, nil); err != nil {
			logging.FromContext(ctx).Warn().Err(err).Str("query", q).Msg("Failed to create index")
		}
	}
}

// Handle implements bucketizer.Handler.
func (n *Neo4j) Handle(ctx context.Context, b *bucketizer.Bucket) error {
	members := make([]map[string]any, 0, b.Size())
	for _, m := range b.Members() {
		members = append(members, map[string]any{
			"key":      string(records.KeyOf(m)),
			"provider": m.Provider(),
			"id":       m.ID(),
		})
	}
	params := map[string]any{
		"run_id":      b.RunID(),
		"bucket":      b.ID(),
		"cardinality": b.Cardinality().String(),
		"members":     members,
	}
	if _, err := n.driver.ExecuteQuery(ctx, mergeMembersQuery, params); err != nil {
		return errors.WrapResource("write", "bucket", fmt.Sprint(b.ID()), err)
	}

	assocs := b.Associations()
	if len(assocs) == 0 {
		return nil
	}
	links := make([]map[string]any, 0, len(assocs))
	for _, a := range assocs {
		links = append(links, map[string]any{
			"a":        string(records.KeyOf(a.A)),
			"b":        string(records.KeyOf(a.B)),
			"evidence": a.Label,
		})
	}
	if _, err := n.driver.ExecuteQuery(ctx, mergeLinksQuery, map[string]any{
		"run_id": b.RunID(),
		"bucket": b.ID(),
		"links":  links,
	}); err != nil {
		return errors.WrapResource("write", "links", fmt.Sprint(b.ID()), err)
	}
	return nil
}

// Close closes the underlying driver.
func (n *Neo4j) Close(ctx context.Context) error {
	return n.driver.Close(ctx)
}
