package container

import (
	"fmt"

	"github.com/sgtlab/sessqc/internal/session"
)

// Views accepted by ReadTracking.
const (
	ViewBody  = "body"
	ViewFace  = "face"
	ViewEye   = "eye"
	ViewPupil = "pupil"
)

// ReadTracking reads one view's tracking table. Views body/face/eye resolve
// to that camera's keypoint product; view pupil combines the pupil diameter
// product with the eye-position center. A view outside this set is an
// argument error; an absent product yields a nil table.
func (b *Bundle) ReadTracking(view string, downsampled bool) (*session.Table, error) {
	switch view {
	case ViewBody, ViewFace, ViewEye:
		return b.readKeypoints(view, downsampled)
	case ViewPupil:
		return b.readPupil(downsampled)
	default:
		return nil, fmt.Errorf("unknown view: %s", view)
	}
}

// poseRow is one tracked keypoint of a pose product. likelihood is nil in
// downsampled exports.
type poseRow struct {
	keypoint   string
	x          []float64
	y          []float64
	likelihood []float64
}

// poseRows reads a pose product's keypoints in exporter order. A product
// with no rows is simply absent.
func (b *Bundle) poseRows(module, product string) ([]poseRow, error) {
	rows, err := b.db.Query(
		"SELECT keypoint, x, y, likelihood FROM pose WHERE module = ? AND product = ? ORDER BY rowid",
		module, product,
	)
	if err != nil {
		return nil, fmt.Errorf("read pose %s/%s: %w", module, product, err)
	}
	defer rows.Close()

	var out []poseRow
	for rows.Next() {
		var kp string
		var xb, yb, lb []byte
		if err := rows.Scan(&kp, &xb, &yb, &lb); err != nil {
			return nil, fmt.Errorf("scan pose row: %w", err)
		}
		r := poseRow{keypoint: kp}
		if r.x, err = decodeFloats(xb); err != nil {
			return nil, fmt.Errorf("decode keypoint %s x: %w", kp, err)
		}
		if r.y, err = decodeFloats(yb); err != nil {
			return nil, fmt.Errorf("decode keypoint %s y: %w", kp, err)
		}
		if lb != nil {
			if r.likelihood, err = decodeFloats(lb); err != nil {
				return nil, fmt.Errorf("decode keypoint %s likelihood: %w", kp, err)
			}
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read pose %s/%s: %w", module, product, err)
	}
	return out, nil
}

// readKeypoints flattens a camera view's pose product into per-axis columns
// named <keypoint>_x / <keypoint>_y, plus <keypoint>_likelihood for raw
// loads. Returns nil when the view was not tracked.
func (b *Bundle) readKeypoints(view string, downsampled bool) (*session.Table, error) {
	module := moduleBehavior
	if downsampled {
		module = moduleDownsampled
	}
	product := view + "_video_keypoints"

	rows, err := b.poseRows(module, product)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}

	tab := session.NewTable()
	for _, r := range rows {
		if err := tab.AddFloat(r.keypoint+"_x", r.x); err != nil {
			return nil, fmt.Errorf("add keypoint column: %w", err)
		}
		if err := tab.AddFloat(r.keypoint+"_y", r.y); err != nil {
			return nil, fmt.Errorf("add keypoint column: %w", err)
		}
		if !downsampled && r.likelihood != nil {
			if err := tab.AddFloat(r.keypoint+"_likelihood", r.likelihood); err != nil {
				return nil, fmt.Errorf("add keypoint column: %w", err)
			}
		}
	}
	return tab, nil
}

// readPupil builds the diameter/center_x/center_y table. The diameter
// product is optional; once present, the eye-position center is required.
func (b *Bundle) readPupil(downsampled bool) (*session.Table, error) {
	module := moduleBehavior
	if downsampled {
		module = moduleDownsampled
	}

	ok, err := b.hasSeries(module, "pupil_tracking")
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}

	diameter, err := b.series(module, "pupil_tracking")
	if err != nil {
		return nil, err
	}
	if diameter.data == nil {
		return nil, &NotFoundError{Path: b.path, Product: module + "/pupil_tracking data"}
	}

	centers, err := b.poseRows(module, "eye_position")
	if err != nil {
		return nil, err
	}
	if len(centers) == 0 {
		return nil, &NotFoundError{Path: b.path, Product: module + "/eye_position"}
	}
	center := centers[0]

	tab := session.NewTable()
	if err := tab.AddFloat("diameter", diameter.data); err != nil {
		return nil, fmt.Errorf("add pupil column: %w", err)
	}
	if err := tab.AddFloat("center_x", center.x); err != nil {
		return nil, fmt.Errorf("add pupil column: %w", err)
	}
	if err := tab.AddFloat("center_y", center.y); err != nil {
		return nil, fmt.Errorf("add pupil column: %w", err)
	}
	return tab, nil
}
