package container

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/sgtlab/sessqc/internal/session"
)

// ReadROIs reads the dF/F fluorescence matrix into a wide table, one column
// per ROI in exporter order, plus the ROI name to description mapping. The
// matrix and the parallel name array are required in every bundle.
func (b *Bundle) ReadROIs() (*session.Table, map[string]string, error) {
	for _, table := range []string{"dff", "roi"} {
		ok, err := b.tableExists(table)
		if err != nil {
			return nil, nil, err
		}
		if !ok {
			return nil, nil, &NotFoundError{Path: b.path, Product: table}
		}
	}

	var nSamples, nROIs int
	var blob []byte
	err := b.db.QueryRow("SELECT n_samples, n_rois, data FROM dff").Scan(&nSamples, &nROIs, &blob)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil, &NotFoundError{Path: b.path, Product: "dff"}
	}
	if err != nil {
		return nil, nil, fmt.Errorf("read dff: %w", err)
	}

	data, err := decodeFloats(blob)
	if err != nil {
		return nil, nil, fmt.Errorf("decode dff: %w", err)
	}
	if len(data) != nSamples*nROIs {
		return nil, nil, fmt.Errorf("dff has %d values, want %d samples x %d rois", len(data), nSamples, nROIs)
	}

	names, descriptions, err := b.roiNames()
	if err != nil {
		return nil, nil, err
	}
	if len(names) != nROIs {
		return nil, nil, fmt.Errorf("roi table has %d names, dff has %d columns", len(names), nROIs)
	}

	tab := session.NewTable()
	for j, name := range names {
		col := make([]float64, nSamples)
		for i := 0; i < nSamples; i++ {
			col[i] = data[i*nROIs+j]
		}
		if err := tab.AddFloat(name, col); err != nil {
			return nil, nil, fmt.Errorf("add roi column %s: %w", name, err)
		}
	}
	return tab, descriptions, nil
}

// roiNames reads the parallel ROI name and description arrays in index
// order.
func (b *Bundle) roiNames() ([]string, map[string]string, error) {
	rows, err := b.db.Query("SELECT name, description FROM roi ORDER BY idx")
	if err != nil {
		return nil, nil, fmt.Errorf("read roi table: %w", err)
	}
	defer rows.Close()

	var names []string
	descriptions := make(map[string]string)
	for rows.Next() {
		var name string
		var desc sql.NullString
		if err := rows.Scan(&name, &desc); err != nil {
			return nil, nil, fmt.Errorf("scan roi row: %w", err)
		}
		names = append(names, name)
		descriptions[name] = desc.String
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("read roi table: %w", err)
	}
	return names, descriptions, nil
}
