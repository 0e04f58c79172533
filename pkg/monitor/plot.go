package monitor

import (
	"time"

	pkgerrors "github.com/pkg/errors"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

// Plot writes a chart of the charge percentage over time to path. The
// image format follows the file extension. Records without a known
// percentage are skipped.
func Plot(records []Record, path string) error {
	points := makePoints(records)
	if len(points) == 0 {
		return pkgerrors.New("no samples with a known percentage to plot")
	}

	p := plot.New()
	p.Title.Text = "Battery Charge"
	p.X.Label.Text = "Time (s)"
	p.Y.Label.Text = "Battery Percentage"
	p.Y.Min = 0
	p.Y.Max = 100

	if err := plotutil.AddLinePoints(p, "Charge over time", points); err != nil {
		return pkgerrors.Wrap(err, "failed to add points")
	}

	if err := p.Save(10*vg.Inch, 6*vg.Inch, path); err != nil {
		return pkgerrors.Wrapf(err, "failed to save plot to %s", path)
	}

	return nil
}

// makePoints converts records to points, X being seconds since the first
// plotted record.
func makePoints(records []Record) plotter.XYs {
	points := make(plotter.XYs, 0, len(records))
	var start time.Time
	for _, r := range records {
		if r.Status == nil || !r.Status.HasPercentage() {
			continue
		}
		if len(points) == 0 {
			start = r.Time
		}
		points = append(points, plotter.XY{
			X: r.Time.Sub(start).Seconds(),
			Y: float64(r.Status.Percentage),
		})
	}
	return points
}
