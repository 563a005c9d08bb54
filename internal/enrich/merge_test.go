package enrich_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rshade/kwvolume/internal/enrich"
	"github.com/rshade/kwvolume/internal/table"
)

func vol(n int64) *int64 {
	return &n
}

func load(t *testing.T, csv string) *table.Table {
	t.Helper()
	tbl, err := table.Load(strings.NewReader(csv))
	require.NoError(t, err)
	return tbl
}

func TestMerge_NewColumn(t *testing.T) {
	tbl := load(t, "Keyword,Intent\nfoo,info\nbar,buy\nbaz,info\n")

	stats := enrich.Merge(tbl, map[string]*int64{"foo": vol(10), "bar": nil})

	assert.Equal(t, []string{"Keyword", "Intent", "Search Volume"}, tbl.Header)
	assert.Equal(t, [][]string{
		{"foo", "info", "10"},
		{"bar", "buy", ""},
		{"baz", "info", ""},
	}, tbl.Rows)
	assert.Equal(t, enrich.MergeStats{
		RowsTotal:     3,
		RowsUpdated:   1,
		RowsUnmatched: 1,
		NullVolumes:   1,
		ColumnAdded:   true,
	}, stats)
}

func TestMerge_ExistingColumn(t *testing.T) {
	tbl := load(t, "Search Volume,Keyword\n5,foo\n7,bar\n,baz\n3,qux\n")

	stats := enrich.Merge(tbl, map[string]*int64{
		"foo": nil,
		"bar": vol(70),
		"baz": vol(0),
	})

	assert.Equal(t, []string{"Search Volume", "Keyword"}, tbl.Header)
	assert.Equal(t, [][]string{
		{"5", "foo"},
		{"70", "bar"},
		{"0", "baz"},
		{"3", "qux"},
	}, tbl.Rows)
	assert.False(t, stats.ColumnAdded)
	assert.Equal(t, 2, stats.RowsUpdated)
	assert.Equal(t, 1, stats.NullVolumes)
	assert.Equal(t, 1, stats.RowsUnmatched)
}

func TestMerge_EmptyMappingKeepsRows(t *testing.T) {
	input := "Keyword,Search Volume,Notes\nfoo,5,a\nbar,,b\n"
	tbl := load(t, input)
	want := load(t, input)

	stats := enrich.Merge(tbl, map[string]*int64{})

	assert.Equal(t, want.Header, tbl.Header)
	assert.Equal(t, want.Rows, tbl.Rows)
	assert.Zero(t, stats.RowsUpdated)
	assert.Equal(t, 2, stats.RowsUnmatched)
}

func TestMerge_DuplicateKeywords(t *testing.T) {
	tbl := load(t, "Keyword\nfoo\nbar\nfoo\n")

	stats := enrich.Merge(tbl, map[string]*int64{"foo": vol(42)})

	assert.Equal(t, [][]string{{"foo", "42"}, {"bar", ""}, {"foo", "42"}}, tbl.Rows)
	assert.Equal(t, 2, stats.RowsUpdated)
}

func TestMerge_ExactKeywordMatch(t *testing.T) {
	tbl := load(t, "Keyword\nFoo\n\" foo\"\nfoo\n")

	enrich.Merge(tbl, map[string]*int64{"foo": vol(1)})

	assert.Equal(t, [][]string{{"Foo", ""}, {" foo", ""}, {"foo", "1"}}, tbl.Rows)
}

func TestMerge_HeaderOnly(t *testing.T) {
	tbl := load(t, "Keyword\n")

	stats := enrich.Merge(tbl, nil)

	assert.Equal(t, []string{"Keyword", "Search Volume"}, tbl.Header)
	assert.Empty(t, tbl.Rows)
	assert.True(t, stats.ColumnAdded)
}
