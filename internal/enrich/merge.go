// Package enrich fetches search volumes for a keyword table and merges them
// into its Search Volume column.
package enrich

import (
	"strconv"

	"github.com/rshade/kwvolume/internal/table"
)

// MergeStats summarizes one Merge.
type MergeStats struct {
	// RowsTotal is the number of data rows in the table.
	RowsTotal int

	// RowsUpdated counts rows that received a volume.
	RowsUpdated int

	// RowsUnmatched counts rows whose keyword is not in the mapping.
	RowsUnmatched int

	// NullVolumes counts rows whose keyword is mapped to a nil volume.
	NullVolumes int

	// ColumnAdded reports whether the Search Volume column was appended.
	ColumnAdded bool
}

// Merge writes volumes into t's Search Volume column, matching rows by exact
// keyword. Only that column is touched and row order is kept.
//
// When the column already exists, a row keeps its current value unless its
// keyword maps to a non-nil volume. When the column is new, unmatched rows
// and nil volumes get an empty value.
func Merge(t *table.Table, volumes map[string]*int64) MergeStats {
	stats := MergeStats{RowsTotal: len(t.Rows)}

	resolve := func(keyword string) (string, bool) {
		vol, ok := volumes[keyword]
		switch {
		case !ok:
			stats.RowsUnmatched++
			return "", false
		case vol == nil:
			stats.NullVolumes++
			return "", false
		default:
			stats.RowsUpdated++
			return strconv.FormatInt(*vol, 10), true
		}
	}

	if t.HasVolumeColumn() {
		for _, row := range t.Rows {
			if value, ok := resolve(row[t.KeywordIndex]); ok {
				row[t.VolumeIndex] = value
			}
		}
		return stats
	}

	values := make([]string, len(t.Rows))
	for i, row := range t.Rows {
		values[i], _ = resolve(row[t.KeywordIndex])
	}
	// values always matches the row count, so this cannot fail.
	added, _ := t.AppendVolumeColumn(values)
	stats.ColumnAdded = added
	return stats
}
