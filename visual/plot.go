package visual

import (
	"bufio"
	"fmt"
	"image/color"
	"os"
	"path/filepath"

	"github.com/paulmach/orb"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

type Options struct {
	File     string
	WidthIn  float64
	HeightIn float64
	DPI      int
	// Overlays are outlined on top of the value function, e.g. the target.
	Overlays []orb.Bound
}

type solid []color.Color

func (s solid) Colors() []color.Color { return s }

// SaveSlice renders the slice as a heat map with its zero level set traced
// on top and writes a PNG to opts.File.
func SaveSlice(s *Slice, opts Options) error {
	if opts.WidthIn <= 0 {
		opts.WidthIn = 6
	}
	if opts.HeightIn <= 0 {
		opts.HeightIn = 6
	}
	if opts.DPI <= 0 {
		opts.DPI = 150
	}

	p := plot.New()
	p.Title.Text = s.Title()
	p.X.Label.Text = axisName(s.xAxis)
	p.Y.Label.Text = axisName(s.yAxis)

	heat := plotter.NewHeatMap(s, palette.Heat(32, 1))
	p.Add(heat)

	lo, hi := heat.Min, heat.Max
	if lo == hi {
		heat.Min, heat.Max = lo-1, hi+1
	}
	if lo < 0 && hi > 0 {
		zero := plotter.NewContour(s, []float64{0}, solid{color.Black})
		zero.LineStyles[0].Width = vg.Points(2)
		p.Add(zero)
	}

	for _, b := range opts.Overlays {
		ring := plotter.XYs{
			{X: b.Min.X(), Y: b.Min.Y()},
			{X: b.Max.X(), Y: b.Min.Y()},
			{X: b.Max.X(), Y: b.Max.Y()},
			{X: b.Min.X(), Y: b.Max.Y()},
			{X: b.Min.X(), Y: b.Min.Y()},
		}
		line, err := plotter.NewLine(ring)
		if err != nil {
			return fmt.Errorf("failed to outline overlay: %w", err)
		}
		line.LineStyle.Color = color.RGBA{B: 255, A: 255}
		line.LineStyle.Width = vg.Points(1.5)
		p.Add(line)
	}

	return savePlotPNG(p, opts.WidthIn, opts.HeightIn, opts.DPI, opts.File)
}

func savePlotPNG(p *plot.Plot, widthIn, heightIn float64, dpi int, filename string) error {
	if err := os.MkdirAll(filepath.Dir(filename), 0o755); err != nil {
		return fmt.Errorf("cannot create directory: %w", err)
	}
	w := vg.Length(widthIn) * vg.Inch
	h := vg.Length(heightIn) * vg.Inch

	c := vgimg.NewWith(
		vgimg.UseWH(w, h),
		vgimg.UseDPI(dpi),
	)
	dc := draw.New(c)
	p.Draw(dc)

	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("cannot create png: %w", err)
	}
	defer f.Close()

	bw := bufio.NewWriter(f)
	defer bw.Flush()

	pngc := vgimg.PngCanvas{Canvas: c}
	if _, err := pngc.WriteTo(bw); err != nil {
		return fmt.Errorf("cannot write png: %w", err)
	}
	return nil
}
