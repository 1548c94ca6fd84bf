package sources_test

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/agentstation/linkage/pkg/errors"
	"github.com/agentstation/linkage/pkg/records"
	"github.com/agentstation/linkage/pkg/sources"
)

const employees = "emp_id,ssn,mail,name\n" +
	"E1,123, A@X.ORG |b@x.org,Ann\n" +
	"E2,456,,Bob\n"

func collect(t *testing.T, src sources.Source) []records.Matchable {
	t.Helper()
	got, err := records.Collect(src.Records(context.Background()))
	require.NoError(t, err)
	return got
}

func values(t *testing.T, r records.Matchable, name string) []string {
	t.Helper()
	v, ok := r.Attributes().Values(name)
	require.True(t, ok, "attribute %s not declared", name)
	return v
}

func writeFile(t *testing.T, name string, write func(f *os.File)) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	f, err := os.Create(path)
	require.NoError(t, err)
	write(f)
	require.NoError(t, f.Close())
	return path
}

func TestMemory(t *testing.T) {
	m := sources.NewMemory("hr", records.New("hr", "A1", nil))
	m.Add(records.New("hr", "A2", nil))

	assert.Equal(t, "hr", m.Provider())
	assert.Equal(t, sources.MemoryType, m.Type())
	assert.Equal(t, 2, m.Len())
	assert.Len(t, collect(t, m), 2)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := records.Collect(m.Records(ctx))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDelimitedCSV(t *testing.T) {
	path := writeFile(t, "hr.csv", func(f *os.File) {
		_, err := f.WriteString(employees)
		require.NoError(t, err)
	})

	src := sources.NewDelimited("hr", path, "emp_id",
		map[string]string{"ssn": "ssn", "mail": "email"},
		sources.WithNormalizer(sources.Chain(sources.Trim, sources.Fold)))
	assert.Equal(t, sources.CSVType, src.Type())

	got := collect(t, src)
	require.Len(t, got, 2)
	assert.Equal(t, "E1", got[0].ID())
	assert.Equal(t, "hr", got[0].Provider())
	assert.Equal(t, []string{"a@x.org", "b@x.org"}, values(t, got[0], "email"))
	assert.Equal(t, []string{"123"}, values(t, got[0], "ssn"))
	assert.Empty(t, values(t, got[1], "email"))
	assert.Equal(t, []string{"email", "ssn"}, got[1].Attributes().Names())
}

func TestDelimitedCompressed(t *testing.T) {
	tsv := "id\tssn\nB1\t123\nB2\t789\n"

	gz := writeFile(t, "crm.tsv.gz", func(f *os.File) {
		w := gzip.NewWriter(f)
		_, err := w.Write([]byte(tsv))
		require.NoError(t, err)
		require.NoError(t, w.Close())
	})
	zst := writeFile(t, "crm.tsv.zst", func(f *os.File) {
		w, err := zstd.NewWriter(f)
		require.NoError(t, err)
		_, err = w.Write([]byte(tsv))
		require.NoError(t, err)
		require.NoError(t, w.Close())
	})

	for _, path := range []string{gz, zst} {
		t.Run(filepath.Base(path), func(t *testing.T) {
			src := sources.NewDelimited("crm", path, "id", map[string]string{"ssn": "ssn"})
			assert.Equal(t, sources.TSVType, src.Type())
			got := collect(t, src)
			require.Len(t, got, 2)
			assert.Equal(t, []string{"789"}, values(t, got[1], "ssn"))
		})
	}
}

func TestDelimitedErrors(t *testing.T) {
	path := writeFile(t, "bad.csv", func(f *os.File) {
		_, err := f.WriteString("id,ssn\n,1\n")
		require.NoError(t, err)
	})

	_, err := records.Collect(sources.NewDelimited("hr", path, "emp_id", nil).Records(context.Background()))
	var pe *errors.ParseError
	require.ErrorAs(t, err, &pe)
	assert.Contains(t, pe.Message, "emp_id")

	_, err = records.Collect(sources.NewDelimited("hr", path, "id", map[string]string{"phone": "phone"}).Records(context.Background()))
	require.ErrorAs(t, err, &pe)

	_, err = records.Collect(sources.NewDelimited("hr", path, "id", map[string]string{"ssn": "ssn"}).Records(context.Background()))
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, 2, pe.Line)

	_, err = records.Collect(sources.NewDelimited("hr", filepath.Join(t.TempDir(), "missing.csv"), "id", nil).Records(context.Background()))
	var ioe *errors.IOError
	require.ErrorAs(t, err, &ioe)
}

func TestDelimitedOptions(t *testing.T) {
	path := writeFile(t, "hr.txt", func(f *os.File) {
		_, err := f.WriteString("id;ssn\nA1;1|2\n")
		require.NoError(t, err)
	})

	src := sources.NewDelimited("hr", path, "id", map[string]string{"ssn": "ssn"},
		sources.WithDelimiter(';'),
		sources.WithSeparator(""),
		sources.WithAttributes("ssn", "email"))
	got := collect(t, src)
	require.Len(t, got, 1)
	assert.Equal(t, []string{"1|2"}, values(t, got[0], "ssn"))
	assert.Equal(t, []string{"email", "ssn"}, got[0].Attributes().Names())
}

func TestSQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "crm.db")
	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	for _, stmt := range []string{
		`CREATE TABLE attrs (id TEXT, name TEXT, value TEXT)`,
		`INSERT INTO attrs VALUES ('B1','ssn','123'), ('B1','email',' X@Y '), ('B2','ssn',NULL), ('B2','phone','555'), ('B3','ssn','9')`,
	} {
		_, err := db.Exec(stmt)
		require.NoError(t, err)
	}
	require.NoError(t, db.Close())

	src := sources.NewSQLite("crm", path,
		`SELECT id, name, value FROM attrs WHERE id <> ? ORDER BY id`,
		[]string{"ssn", "email"},
		sources.WithQueryArgs("B3"),
		sources.WithNormalizer(sources.Trim))
	assert.Equal(t, sources.SQLiteType, src.Type())

	got := collect(t, src)
	require.Len(t, got, 2)
	assert.Equal(t, "B1", got[0].ID())
	assert.Equal(t, []string{"X@Y"}, values(t, got[0], "email"))
	assert.Equal(t, "B2", got[1].ID())
	assert.Equal(t, 0, got[1].Attributes().Len(), "NULL values and undeclared names are dropped")

	bad := sources.NewSQLite("crm", path, `SELECT nope FROM missing`, []string{"ssn"})
	_, err = records.Collect(bad.Records(context.Background()))
	var re *errors.ResourceError
	require.ErrorAs(t, err, &re)
}

func TestNormalizers(t *testing.T) {
	assert.Equal(t, "strasse", sources.Fold("STRASSE"))
	assert.Equal(t, "ÉCOLE", strings.ToUpper(sources.Fold("École")))
	assert.Equal(t, "a b", sources.Collapse("  a \t b "))

	n, err := sources.ParseNormalizers("trim", "FOLD")
	require.NoError(t, err)
	assert.Equal(t, "abc", n("  ABC "))

	n, err = sources.ParseNormalizers()
	require.NoError(t, err)
	assert.Equal(t, " x ", n(" x "))

	_, err = sources.ParseNormalizers("soundex")
	assert.Error(t, err)
}

func TestRegistry(t *testing.T) {
	reg := sources.NewSources(sources.NewMemory("hr"))
	reg.Set(sources.NewMemory("crm"))

	assert.Equal(t, 2, reg.Len())
	assert.Equal(t, []string{"crm", "hr"}, reg.Providers())
	src, ok := reg.Get("hr")
	require.True(t, ok)
	assert.Equal(t, "hr", src.Provider())

	reg.Delete("hr")
	_, ok = reg.Get("hr")
	assert.False(t, ok)
	assert.True(t, sources.CSVType.IsValid())
	assert.False(t, sources.Type("xml").IsValid())
}
