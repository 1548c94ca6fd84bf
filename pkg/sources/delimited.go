package sources

import (
	"context"
	"encoding/csv"
	"io"
	"iter"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"

	"github.com/agentstation/linkage/pkg/errors"
	"github.com/agentstation/linkage/pkg/records"
)

// Delimited reads records from a CSV or TSV file with a header row. Files
// ending in .gz or .zst are decompressed transparently.
type Delimited struct {
	provider string
	path     string
	idColumn string
	columns  map[string]string
	opts     *options
}

// NewDelimited creates a source reading path. idColumn names the column
// holding record ids; columns maps a header column to the attribute name
// its values are stored under.
func NewDelimited(provider, path, idColumn string, columns map[string]string, opts ...Option) *Delimited {
	return &Delimited{
		provider: provider,
		path:     path,
		idColumn: idColumn,
		columns:  maps.Clone(columns),
		opts:     defaultOptions().apply(opts...),
	}
}

// Provider implements Source.
func (d *Delimited) Provider() string { return d.provider }

// Type implements Source.
func (d *Delimited) Type() Type {
	if d.delimiter() == '\t' {
		return TSVType
	}
	return CSVType
}

// Path returns the file path.
func (d *Delimited) Path() string { return d.path }

// Records implements Source.
func (d *Delimited) Records(ctx context.Context) iter.Seq2[records.Matchable, error] {
	return func(yield func(records.Matchable, error) bool) {
		f, err := os.Open(d.path)
		if err != nil {
			yield(nil, errors.WrapIO("open", d.path, err))
			return
		}
		defer func() { _ = f.Close() }()

		r, closer, err := decompress(d.path, f)
		if err != nil {
			yield(nil, errors.WrapIO("decompress", d.path, err))
			return
		}
		defer closer()

		cr := csv.NewReader(r)
		cr.Comma = d.delimiter()
		cr.FieldsPerRecord = -1
		cr.ReuseRecord = true

		header, err := cr.Read()
		if err != nil {
			yield(nil, errors.WrapParse(d.format(), d.path, err))
			return
		}
		layout, err := d.layout(header)
		if err != nil {
			yield(nil, err)
			return
		}

		for {
			if err := ctx.Err(); err != nil {
				yield(nil, err)
				return
			}
			row, err := cr.Read()
			if err == io.EOF {
				return
			}
			if err != nil {
				yield(nil, errors.WrapParse(d.format(), d.path, err))
				return
			}
			rec, err := d.record(layout, row, cr)
			if err != nil {
				yield(nil, err)
				return
			}
			if !yield(rec, nil) {
				return
			}
		}
	}
}

// layout locates the id column and attribute columns in a header row.
type layout struct {
	id    int
	attrs map[int]string
	names []string
}

func (d *Delimited) layout(header []string) (*layout, error) {
	l := &layout{id: -1, attrs: make(map[int]string)}
	index := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		index[h] = i
	}

	var ok bool
	if l.id, ok = index[d.idColumn]; !ok {
		return nil, &errors.ParseError{Format: d.format(), File: d.path, Line: 1, Message: "missing id column " + d.idColumn}
	}
	for _, col := range slices.Sorted(maps.Keys(d.columns)) {
		i, ok := index[col]
		if !ok {
			return nil, &errors.ParseError{Format: d.format(), File: d.path, Line: 1, Message: "missing column " + col}
		}
		l.attrs[i] = d.columns[col]
	}

	l.names = d.opts.attributes
	if len(l.names) == 0 {
		l.names = slices.Compact(slices.Sorted(maps.Values(d.columns)))
	}
	return l, nil
}

func (d *Delimited) record(l *layout, row []string, cr *csv.Reader) (records.Matchable, error) {
	line, _ := cr.FieldPos(0)
	if l.id >= len(row) || strings.TrimSpace(row[l.id]) == "" {
		return nil, &errors.ParseError{Format: d.format(), File: d.path, Line: line, Message: "empty id"}
	}

	set := records.NewAttributeSet(l.names...)
	for i, name := range l.attrs {
		if i >= len(row) {
			continue
		}
		for _, v := range d.split(row[i]) {
			if v = d.opts.normalizer(v); v != "" {
				set.Add(name, v)
			}
		}
	}
	return records.New(d.provider, strings.TrimSpace(row[l.id]), set), nil
}

func (d *Delimited) split(cell string) []string {
	if d.opts.separator == "" {
		return []string{cell}
	}
	return strings.Split(cell, d.opts.separator)
}

func (d *Delimited) delimiter() rune {
	if d.opts.delimiter != 0 {
		return d.opts.delimiter
	}
	switch filepath.Ext(strings.TrimSuffix(strings.TrimSuffix(d.path, ".gz"), ".zst")) {
	case ".tsv", ".tab":
		return '\t'
	}
	return ','
}

func (d *Delimited) format() string {
	return string(d.Type())
}

// decompress wraps r according to the file extension.
func decompress(path string, r io.Reader) (io.Reader, func(), error) {
	switch {
	case strings.HasSuffix(path, ".gz"):
		zr, err := gzip.NewReader(r)
		if err != nil {
			return nil, nil, err
		}
		return zr, func() { _ = zr.Close() }, nil
	case strings.HasSuffix(path, ".zst"):
		zr, err := zstd.NewReader(r)
		if err != nil {
			return nil, nil, err
		}
		return zr, zr.Close, nil
	}
	return r, func() {}, nil
}
