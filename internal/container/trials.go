package container

import (
	"database/sql"
	"fmt"
	"math"

	"github.com/sgtlab/sessqc/internal/session"
)

// Trial tables the exporter writes. trials_raw absent means the session has
// no trial structure at all.
const (
	trialsRawTable         = "trials_raw"
	trialsDownsampledTable = "trials_downsampled"
)

// ReadTrials reads the trial table, selecting the downsampled or raw
// variant. Returns nil when the bundle has no trial structure. A bundle
// with trial structure but no downsampled table fails a downsampled load.
func (b *Bundle) ReadTrials(downsampled bool) (*session.Table, error) {
	ok, err := b.tableExists(trialsRawTable)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}

	name := trialsRawTable
	if downsampled {
		ok, err := b.tableExists(trialsDownsampledTable)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, &NotFoundError{Path: b.path, Product: trialsDownsampledTable}
		}
		name = trialsDownsampledTable
	}

	rows, err := b.db.Query("SELECT * FROM " + name)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("read %s columns: %w", name, err)
	}

	values := make([][]float64, len(cols))
	fields := make([]sql.NullFloat64, len(cols))
	scan := make([]any, len(cols))
	for i := range fields {
		scan[i] = &fields[i]
	}

	for rows.Next() {
		if err := rows.Scan(scan...); err != nil {
			return nil, fmt.Errorf("scan %s row: %w", name, err)
		}
		for i, f := range fields {
			v := math.NaN()
			if f.Valid {
				v = f.Float64
			}
			values[i] = append(values[i], v)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}

	tab := session.NewTable()
	for i, col := range cols {
		if err := tab.AddFloat(col, values[i]); err != nil {
			return nil, fmt.Errorf("add trial column %s: %w", col, err)
		}
	}
	return tab, nil
}
