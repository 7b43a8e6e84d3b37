package chart

import (
	"errors"
	"fmt"

	"github.com/flopp/go-findfont"
	"github.com/fogleman/gg"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"

	"github.com/idelchi/venvstat/internal/venvstat"
)

var (
	// ErrUnavailable is returned by a disabled Renderer.
	ErrUnavailable = errors.New("chart rendering unavailable")
	// ErrNoData is returned when a report has nothing to chart.
	ErrNoData = errors.New("no data to chart")
)

// Renderer is the chart capability.
type Renderer interface {
	// Available reports whether Render can produce charts.
	Available() bool
	// Render writes the chart for report to path.
	Render(report *venvstat.Report, path string) error
}

// Disabled is a Renderer that never renders.
type Disabled struct {
	// Reason explains why charts are unavailable.
	Reason string
}

// Available always returns false.
func (Disabled) Available() bool { return false }

// Render always returns ErrUnavailable.
func (d Disabled) Render(*venvstat.Report, string) error {
	return fmt.Errorf("%w: %s", ErrUnavailable, d.Reason)
}

const (
	// dpi scales figure inches to pixels.
	dpi = 100
	// figureWidth is the chart width in pixels.
	figureWidth = 10 * dpi
	// fontPoints is the text size for TrueType faces.
	fontPoints = 12
	// ticks is the number of x-axis intervals.
	ticks = 5
	// barColor is matplotlib's "skyblue".
	barColor = "#87CEEB"
)

// fontCandidates are looked up with findfont, first match wins.
//
//nolint:gochecknoglobals // Config constant
var fontCandidates = []string{"DejaVuSans.ttf", "Arial.ttf", "LiberationSans-Regular.ttf", "Helvetica.ttc"}

// Option configures a PNG renderer.
type Option func(*PNG)

// WithFace sets the font face used for all text.
func WithFace(face font.Face) Option {
	return func(p *PNG) { p.face = face }
}

// PNG renders horizontal bar charts as PNG images.
type PNG struct {
	topN int
	face font.Face
}

// NewPNG creates a PNG renderer charting the topN largest packages. Without
// WithFace it uses the first system font it can find, falling back to a
// built-in bitmap face.
func NewPNG(topN int, opts ...Option) *PNG {
	if topN <= 0 {
		topN = DefaultTopN
	}

	p := &PNG{topN: topN}
	for _, opt := range opts {
		opt(p)
	}

	if p.face == nil {
		p.face = systemFace()
	}

	return p
}

// systemFace returns a TrueType face from the system or the basic bitmap face.
func systemFace() font.Face {
	for _, name := range fontCandidates {
		path, err := findfont.Find(name)
		if err != nil {
			continue
		}

		face, err := gg.LoadFontFace(path, fontPoints)
		if err == nil {
			return face
		}
	}

	return basicfont.Face7x13
}

// Available always returns true.
func (p *PNG) Available() bool { return true }

// TopN returns the number of bars charted before the Others bucket.
func (p *PNG) TopN() int { return p.topN }

// Render draws the report as a horizontal bar chart, largest package at the top.
func (p *PNG) Render(report *venvstat.Report, path string) error {
	bars := Prepare(report.Entries, report.TotalBytes, p.topN)
	if len(bars) == 0 {
		return ErrNoData
	}

	height := int((0.5*float64(len(bars)) + 2) * dpi)

	dc := gg.NewContext(figureWidth, height)
	dc.SetFontFace(p.face)
	dc.SetRGB(1, 1, 1)
	dc.Clear()

	var labelWidth float64
	for _, b := range bars {
		w, _ := dc.MeasureString(b.Label)
		labelWidth = max(labelWidth, w)
	}

	const (
		top    = 50.0
		bottom = 60.0
		right  = 30.0
	)

	left := min(labelWidth+20, figureWidth/2)
	plotW := float64(figureWidth) - left - right
	plotH := float64(height) - top - bottom
	rowH := plotH / float64(len(bars))

	var maxMB float64
	for _, b := range bars {
		maxMB = max(maxMB, b.MB)
	}

	axisMax := maxMB * 1.05
	if axisMax <= 0 {
		axisMax = 1
	}

	dc.SetHexColor(barColor)

	for i, b := range bars {
		y := top + rowH*float64(i) + rowH*0.1
		dc.DrawRectangle(left, y, plotW*b.MB/axisMax, rowH*0.8)
		dc.Fill()
	}

	dc.SetRGB(0, 0, 0)
	dc.SetLineWidth(1)
	dc.DrawRectangle(left, top, plotW, plotH)
	dc.Stroke()

	for i := 0; i <= ticks; i++ {
		v := axisMax * float64(i) / ticks
		x := left + plotW*float64(i)/ticks
		dc.DrawLine(x, top+plotH, x, top+plotH+5)
		dc.Stroke()
		dc.DrawStringAnchored(fmt.Sprintf("%.2f", v), x, top+plotH+8, 0.5, 1)
	}

	for i, b := range bars {
		dc.DrawStringAnchored(b.Label, left-8, top+rowH*(float64(i)+0.5), 1, 0.5)
	}

	dc.DrawStringAnchored("Size (MB)", left+plotW/2, float64(height)-12, 0.5, 0)
	dc.DrawStringAnchored(Title(report.Label, p.topN), float64(figureWidth)/2, top/2, 0.5, 0.5)

	if err := dc.SavePNG(path); err != nil {
		return fmt.Errorf("saving chart %q: %w", path, err)
	}

	return nil
}
