package sinks_test

import (
	"context"
	stderrors "errors"
	"path/filepath"
	"sync"
	"testing"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/linkage/pkg/bucketizer"
	"github.com/agentstation/linkage/pkg/errors"
	"github.com/agentstation/linkage/pkg/logging"
	"github.com/agentstation/linkage/pkg/records"
	"github.com/agentstation/linkage/pkg/sinks"
)

func rec(provider, id string, kv ...string) records.Matchable {
	set := records.NewAttributeSet("ssn", "code")
	for i := 0; i+1 < len(kv); i += 2 {
		set.Add(kv[i], kv[i+1])
	}
	return records.New(provider, id, set)
}

// link runs the engine over a small population: one ONE_TO_MANY bucket
// {A1,B1,B2}, one ONE_TO_ONE bucket {A2,B3} and one ZERO_TO_ONE singleton.
func link(t *testing.T, ctx context.Context, opts ...bucketizer.Option) *bucketizer.Result {
	t.Helper()
	e, err := bucketizer.New("hr", "crm", []string{"ssn", "code"}, opts...)
	require.NoError(t, err)
	res, err := e.Run(ctx,
		records.Seq(rec("hr", "A1", "ssn", "1", "code", "X"), rec("hr", "A2", "ssn", "2")),
		records.Seq(rec("crm", "B1", "ssn", "1"), rec("crm", "B2", "code", "X"), rec("crm", "B3", "ssn", "2"), rec("crm", "B4")),
	)
	require.NoError(t, err)
	return res
}

func TestCollector(t *testing.T) {
	c := sinks.NewCollector(0)
	res := link(t, context.Background(), bucketizer.WithDefaultHandler(c), bucketizer.WithParallelism(4))

	buckets := c.Buckets()
	require.Len(t, buckets, 3)
	for i, b := range buckets {
		assert.Equal(t, i+1, b.ID)
		assert.Equal(t, res.RunID, b.RunID)
	}

	oneToMany := c.Filter(bucketizer.OneToMany)
	require.Len(t, oneToMany, 1)
	assert.Equal(t, []sinks.Member{
		{Provider: "hr", ID: "A1"},
		{Provider: "crm", ID: "B1"},
		{Provider: "crm", ID: "B2"},
	}, oneToMany[0].Members)
	assert.Len(t, oneToMany[0].Links, 2)

	c.Reset()
	assert.Equal(t, 0, c.Len())

	limited := sinks.NewCollector(1)
	link(t, context.Background(), bucketizer.WithDefaultHandler(limited))
	assert.Equal(t, 1, limited.Len())

	t.Run("limit keeps lowest ids", func(t *testing.T) {
		c := sinks.NewCollector(2)
		for _, id := range []int{3, 1, 2} {
			seeded := link(t, context.Background(), bucketizer.WithDefaultHandler(bucketizer.HandlerFunc(
				func(ctx context.Context, b *bucketizer.Bucket) error {
					if b.ID() != id {
						return nil
					}
					return c.Handle(ctx, b)
				})))
			require.NotNil(t, seeded)
		}
		buckets := c.Buckets()
		require.Len(t, buckets, 2)
		assert.Equal(t, 1, buckets[0].ID)
		assert.Equal(t, 2, buckets[1].ID)
	})
}

func TestLog(t *testing.T) {
	tl := logging.NewTestLogger(t)
	ctx := logging.WithLogger(context.Background(), tl.Logger)

	link(t, ctx, bucketizer.WithHandler(bucketizer.OneToOne, sinks.NewLog(zerolog.InfoLevel)))

	tl.AssertContains(t, `"members":["hr/A2","crm/B3"]`)
	tl.AssertContains(t, `"cardinality":"ONE_TO_ONE"`)
}

func TestSQLite(t *testing.T) {
	ctx := context.Background()
	db, err := sinks.OpenSQLite(ctx, filepath.Join(t.TempDir(), "out", "links.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	res := link(t, ctx,
		bucketizer.WithDefaultHandler(db),
		bucketizer.WithPostProcess(db.Finish),
		bucketizer.WithParallelism(3),
	)

	counts, err := db.Counts(ctx, res.RunID)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"ONE_TO_MANY": 1, "ONE_TO_ONE": 1, "ZERO_TO_ONE": 1}, counts)

	var members, links, buckets int
	var provider1 string
	require.NoError(t, db.Conn().QueryRowContext(ctx, `SELECT COUNT(*) FROM bucket_members WHERE run_id = ?`, res.RunID).Scan(&members))
	require.NoError(t, db.Conn().QueryRowContext(ctx, `SELECT COUNT(*) FROM bucket_links WHERE run_id = ?`, res.RunID).Scan(&links))
	require.NoError(t, db.Conn().QueryRowContext(ctx, `SELECT provider1, buckets FROM runs WHERE id = ?`, res.RunID).Scan(&provider1, &buckets))
	assert.Equal(t, 6, members)
	assert.Equal(t, 3, links)
	assert.Equal(t, "hr", provider1)
	assert.Equal(t, 3, buckets)

	// A second run with the same id collides on the bucket primary key.
	e, err := bucketizer.New("hr", "crm", []string{"ssn"}, bucketizer.WithRunID(res.RunID), bucketizer.WithDefaultHandler(db))
	require.NoError(t, err)
	_, err = e.Run(ctx, records.Seq(rec("hr", "Z1")), nil)
	require.Error(t, err)
	assert.True(t, errors.IsHandlerError(err))
	var re *errors.ResourceError
	assert.ErrorAs(t, err, &re)
}

type mockDriver struct {
	mu      sync.Mutex
	queries []string
	params  []map[string]any
	err     error
}

func (m *mockDriver) ExecuteQuery(_ context.Context, query string, params map[string]any) (neo4j.EagerResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queries = append(m.queries, query)
	m.params = append(m.params, params)
	if m.err != nil {
		return neo4j.EagerResult{}, m.err
	}
	return neo4j.EagerResult{}, nil
}

func (m *mockDriver) Close(context.Context) error { return nil }

func TestNeo4j(t *testing.T) {
	driver := &mockDriver{}
	sink := sinks.NewNeo4j(driver)
	sink.EnsureIndexes(context.Background())
	require.Len(t, driver.queries, 2)

	link(t, context.Background(), bucketizer.WithHandler(bucketizer.OneToMany, sink))

	// Two index statements, then members and links for the one bucket.
	require.Len(t, driver.queries, 4)
	assert.Contains(t, driver.queries[2], "MERGE (r:Record")
	assert.Contains(t, driver.queries[3], "MATCHES")

	members := driver.params[2]["members"].([]map[string]any)
	assert.Len(t, members, 3)
	assert.Equal(t, "ONE_TO_MANY", driver.params[2]["cardinality"])
	links := driver.params[3]["links"].([]map[string]any)
	assert.Len(t, links, 2)
	assert.NoError(t, sink.Close(context.Background()))
}

func TestNeo4jSkipsLinksForSingletons(t *testing.T) {
	driver := &mockDriver{}
	link(t, context.Background(), bucketizer.WithHandler(bucketizer.ZeroToOne, sinks.NewNeo4j(driver)))
	assert.Len(t, driver.queries, 1)
}

func TestNeo4jError(t *testing.T) {
	boom := stderrors.New("connection reset")
	sink := sinks.NewNeo4j(&mockDriver{err: boom})

	e, err := bucketizer.New("hr", "crm", []string{"ssn"}, bucketizer.WithDefaultHandler(sink))
	require.NoError(t, err)
	_, err = e.Run(context.Background(), records.Seq(rec("hr", "A1")), nil)
	assert.ErrorIs(t, err, boom)
	assert.True(t, errors.IsHandlerError(err))
}
