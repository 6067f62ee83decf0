package report

import (
	"fmt"
	"image/color"
	"math"
	"os"
	"path/filepath"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/sgtlab/sessqc/internal/container"
	"github.com/sgtlab/sessqc/internal/fileutil"
	"github.com/sgtlab/sessqc/internal/session"
)

// PlotOptions configure comparison figure rendering. Zero values fall back
// to the tool defaults.
type PlotOptions struct {
	// OutDir receives the figure pages. PlotWithinAnimal defaults it to a
	// summary directory inside the animal folder.
	OutDir string
	// DPI is the raster resolution of saved pages.
	DPI int
	// RowsPerPage is the number of feature rows tiled on one page.
	RowsPerPage int
	// WidthIn and HeightIn are the page size in inches.
	WidthIn  float64
	HeightIn float64
}

// withDefaults fills unset options with the tool defaults.
func (o PlotOptions) withDefaults() PlotOptions {
	if o.DPI <= 0 {
		o.DPI = 300
	}
	if o.RowsPerPage <= 0 {
		o.RowsPerPage = 10
	}
	if o.WidthIn <= 0 {
		o.WidthIn = 12
	}
	if o.HeightIn <= 0 {
		o.HeightIn = 15
	}
	return o
}

// plotFields orders the comparison figures a batch run produces.
var plotFields = []string{
	session.FieldDAQ,
	session.FieldBodyTracking,
	session.FieldFaceTracking,
	session.FieldEyeTracking,
	session.FieldPupil,
	session.FieldROIs,
}

// Series colors follow the lab's convention: left hemisphere red, right
// hemisphere blue; single-series features red.
var (
	seriesRed  = color.RGBA{R: 0xff, A: 0xff}
	seriesBlue = color.RGBA{B: 0xff, A: 0xff}
)

// LoadAnimalSessions discovers every session bundle under folder, orders
// them by the naming convention, classifies each from its file name, and
// loads them all downsampled. The returned names are the bundle base names
// in load order. One failed load fails the whole batch.
func LoadAnimalSessions(folder string, log Logger) ([]string, []*session.Session, error) {
	if log == nil {
		log = noopLogger{}
	}

	result, err := fileutil.ScanBundles(folder, true)
	if err != nil {
		return nil, nil, err
	}
	for _, scanErr := range result.Errors {
		log.LogWarn(scanErr.Error())
	}
	if len(result.Files) == 0 {
		return nil, nil, fmt.Errorf("no %s files under %s", fileutil.BundleExt, folder)
	}

	files := result.Files
	if err := SortSessionFiles(files); err != nil {
		return nil, nil, err
	}

	names := make([]string, len(files))
	sessions := make([]*session.Session, len(files))
	for i, path := range files {
		names[i] = filepath.Base(path)
		log.LogInfo(fmt.Sprintf("loading %s", path))
		sess, err := container.Load(path, container.Options{
			Downsampled: true,
			Resting:     strings.Contains(names[i], "resting"),
			Sensory:     strings.Contains(names[i], "sensory"),
		}, log)
		if err != nil {
			return nil, nil, fmt.Errorf("load %s: %w", path, err)
		}
		sessions[i] = sess
		log.LogProgress(i+1, len(files))
	}
	return names, sessions, nil
}

// PlotWithinAnimal loads every session bundle under folder and renders the
// per-field comparison figures. The animal name is the folder's base name.
// It returns the figure page paths it wrote.
func PlotWithinAnimal(folder string, opts PlotOptions, log Logger) ([]string, error) {
	if log == nil {
		log = noopLogger{}
	}

	animal := filepath.Base(filepath.Clean(folder))
	if opts.OutDir == "" {
		opts.OutDir = filepath.Join(folder, "summary")
	}

	names, sessions, err := LoadAnimalSessions(folder, log)
	if err != nil {
		return nil, err
	}
	return PlotSessions(animal, names, sessions, opts, log)
}

// PlotSessions renders the comparison figures for already loaded sessions
// and returns every page path written. Sensory sessions appear only in the
// ROI figure.
func PlotSessions(animal string, fileNames []string, sessions []*session.Session, opts PlotOptions, log Logger) ([]string, error) {
	if log == nil {
		log = noopLogger{}
	}
	opts = opts.withDefaults()

	var written []string
	for _, field := range plotFields {
		base := filepath.Join(opts.OutDir, fmt.Sprintf("%s_%s", animal, field))

		names, group := fileNames, sessions
		if field != session.FieldROIs {
			names, group = dropSensory(fileNames, sessions)
		}

		pages, err := PlotAcrossSessions(names, group, field, base, opts, log)
		if err != nil {
			return written, err
		}
		written = append(written, pages...)
	}
	return written, nil
}

// dropSensory filters out sensory-stim sessions, keeping names and sessions
// aligned.
func dropSensory(names []string, sessions []*session.Session) ([]string, []*session.Session) {
	keptNames := make([]string, 0, len(names))
	kept := make([]*session.Session, 0, len(sessions))
	for i, sess := range sessions {
		if sess.Kind == session.Sensory {
			continue
		}
		keptNames = append(keptNames, names[i])
		kept = append(kept, sess)
	}
	return keptNames, kept
}

// PlotAcrossSessions renders the multi-page comparison figure for one field
// over the given sessions and returns the page paths it wrote, named
// <pathBase>_<NN>.png. Each page tiles up to RowsPerPage feature rows by the
// five statistic panels and closes with a legend mapping x positions to file
// names. Sessions missing the field are warned about and contribute no
// points; their x positions stay reserved so every series lines up with the
// legend.
func PlotAcrossSessions(fileNames []string, sessions []*session.Session, field, pathBase string, opts PlotOptions, log Logger) ([]string, error) {
	if log == nil {
		log = noopLogger{}
	}
	opts = opts.withDefaults()

	summaries := make([]*Summary, len(sessions))
	var first *Summary
	for i, sess := range sessions {
		summaries[i] = StatSummary(sess, field, log)
		if first == nil {
			first = summaries[i]
		}
	}
	if first == nil {
		log.LogWarn(fmt.Sprintf("no %s in any session, skipping figure", field))
		return nil, nil
	}

	rows := featureRows(field, first)

	var written []string
	page := newStatPage(opts)
	for i, row := range rows {
		if err := page.addRow(row.label, row.series, summaries); err != nil {
			return written, err
		}
		if page.full() || i == len(rows)-1 {
			path := fmt.Sprintf("%s_%02d.png", pathBase, i/opts.RowsPerPage+1)
			if err := page.render(fileNames, path); err != nil {
				return written, err
			}
			written = append(written, path)
			log.LogInfo(fmt.Sprintf("saved %s", path))
			page = newStatPage(opts)
		}
	}
	return written, nil
}

// seriesSpec names one summary row to draw and the color of its series.
type seriesSpec struct {
	row   string
	color color.Color
}

// featureRow is one row of comparison panels: an axis label and the line
// series drawn in each panel.
type featureRow struct {
	label  string
	series []seriesSpec
}

// featureRows maps a summary's rows to panel rows. ROI columns pair into one
// row per region with overlaid left/right series; every other field gets one
// series per column.
func featureRows(field string, s *Summary) []featureRow {
	if field != session.FieldROIs {
		rows := make([]featureRow, 0, len(s.Rows()))
		for _, r := range s.Rows() {
			rows = append(rows, featureRow{
				label:  r.Name,
				series: []seriesSpec{{row: r.Name, color: seriesRed}},
			})
		}
		return rows
	}

	var rows []featureRow
	seen := make(map[string]bool)
	for _, r := range s.Rows() {
		base, ok := roiBase(r.Name)
		if !ok {
			rows = append(rows, featureRow{
				label:  r.Name,
				series: []seriesSpec{{row: r.Name, color: seriesRed}},
			})
			continue
		}
		if seen[base] {
			continue
		}
		seen[base] = true
		rows = append(rows, featureRow{
			label: base,
			series: []seriesSpec{
				{row: base + "_l", color: seriesRed},
				{row: base + "_r", color: seriesBlue},
			},
		})
	}
	return rows
}

// roiBase strips the hemisphere suffix from an ROI name.
func roiBase(name string) (string, bool) {
	if strings.HasSuffix(name, "_l") || strings.HasSuffix(name, "_r") {
		return name[:len(name)-2], true
	}
	return "", false
}

// statSeries collects one statistic of one summary row across sessions. The
// x position is the session's index among the plotted files; sessions
// without the field, the row, or a finite value contribute no point.
func statSeries(summaries []*Summary, rowName, statName string) plotter.XYs {
	var xys plotter.XYs
	for k, s := range summaries {
		if s == nil {
			continue
		}
		row, ok := s.Row(rowName)
		if !ok {
			continue
		}
		v := row.Stat(statName)
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		xys = append(xys, plotter.XY{X: float64(k), Y: v})
	}
	return xys
}

// statPage accumulates feature rows of panels until the page is full.
type statPage struct {
	opts  PlotOptions
	plots [][]*plot.Plot
	next  int
}

func newStatPage(opts PlotOptions) *statPage {
	grid := make([][]*plot.Plot, opts.RowsPerPage)
	for i := range grid {
		grid[i] = make([]*plot.Plot, len(plotStats))
	}
	return &statPage{opts: opts, plots: grid}
}

func (p *statPage) full() bool {
	return p.next >= p.opts.RowsPerPage
}

// addRow fills the next panel row: one panel per statistic, with a line
// series for each requested summary row. Panels on the page's first row
// carry the statistic title; the leftmost panel carries the feature label.
func (p *statPage) addRow(label string, specs []seriesSpec, summaries []*Summary) error {
	for j, statName := range plotStats {
		panel := plot.New()
		if p.next == 0 {
			panel.Title.Text = statName
		}
		if j == 0 {
			panel.Y.Label.Text = label
		}

		for _, spec := range specs {
			xys := statSeries(summaries, spec.row, statName)
			if len(xys) == 0 {
				continue
			}
			line, points, err := plotter.NewLinePoints(xys)
			if err != nil {
				return fmt.Errorf("plot %s %s: %w", label, statName, err)
			}
			line.Color = spec.color
			points.Color = spec.color
			points.Shape = draw.CircleGlyph{}
			panel.Add(line, points)
		}

		p.plots[p.next][j] = panel
	}
	p.next++
	return nil
}

// render draws the accumulated panels plus the file-name legend and writes
// the page to path, creating the directory if needed.
func (p *statPage) render(fileNames []string, path string) error {
	width := vg.Length(p.opts.WidthIn) * vg.Inch
	height := vg.Length(p.opts.HeightIn) * vg.Inch
	img := vgimg.NewWith(vgimg.UseWH(width, height), vgimg.UseDPI(p.opts.DPI))
	dc := draw.New(img)

	// The legend occupies the bottom two grid units of the page, matching
	// the RowsPerPage+2 row layout of the figure.
	total := dc.Max.Y - dc.Min.Y
	legendHeight := 2 * total / vg.Length(p.opts.RowsPerPage+2)

	tiles := draw.Tiles{
		Rows:      p.opts.RowsPerPage,
		Cols:      len(plotStats),
		PadX:      vg.Millimeter * 2,
		PadY:      vg.Millimeter * 2,
		PadTop:    vg.Millimeter * 2,
		PadBottom: vg.Millimeter,
		PadLeft:   vg.Millimeter * 2,
		PadRight:  vg.Millimeter * 2,
	}
	canvases := plot.Align(p.plots, tiles, draw.Crop(dc, 0, 0, legendHeight, 0))
	for r := range p.plots {
		for c := range p.plots[r] {
			if p.plots[r][c] != nil {
				p.plots[r][c].Draw(canvases[r][c])
			}
		}
	}

	drawFileLegend(draw.Crop(dc, 0, 0, 0, legendHeight-total), fileNames)

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create figure directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create figure %s: %w", path, err)
	}
	png := vgimg.PngCanvas{Canvas: img}
	if _, err := png.WriteTo(f); err != nil {
		f.Close()
		return fmt.Errorf("write figure %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close figure %s: %w", path, err)
	}
	return nil
}

// drawFileLegend writes the x-position to file-name mapping into the legend
// region as two text columns.
func drawFileLegend(c draw.Canvas, fileNames []string) {
	if len(fileNames) == 0 {
		return
	}

	fnt := plot.DefaultFont
	fnt.Size = vg.Points(11)
	sty := draw.TextStyle{
		Color:   color.Black,
		Font:    fnt,
		XAlign:  draw.XLeft,
		YAlign:  draw.YTop,
		Handler: plot.DefaultTextHandler,
	}

	lines := make([]string, len(fileNames))
	for i, name := range fileNames {
		lines[i] = fmt.Sprintf("%d : %s", i, name)
	}

	perColumn := len(lines)/2 + 1
	width := c.Max.X - c.Min.X
	lineHeight := fnt.Size * 1.3

	for col := 0; col < 2; col++ {
		start := col * perColumn
		if start >= len(lines) {
			break
		}
		end := start + perColumn
		if end > len(lines) {
			end = len(lines)
		}

		x := c.Min.X + vg.Length(0.02+0.5*float64(col))*width
		y := c.Max.Y - lineHeight
		for _, line := range lines[start:end] {
			c.FillText(sty, vg.Point{X: x, Y: y}, line)
			y -= lineHeight
		}
	}
}
