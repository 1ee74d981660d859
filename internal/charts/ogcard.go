package charts

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"
	"sync"
	"time"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"github.com/lox/weatherdash/internal/models"
)

// OGWidth and OGHeight are the standard Open Graph image dimensions.
const (
	OGWidth  = 1200
	OGHeight = 630
)

var (
	fontTitle   font.Face
	fontLarge   font.Face
	fontRegular font.Face
	fontOnce    sync.Once
	fontErr     error
)

func loadFonts() {
	fontOnce.Do(func() {
		bold, err := opentype.Parse(gobold.TTF)
		if err != nil {
			fontErr = fmt.Errorf("parse Go Bold: %w", err)
			return
		}
		regular, err := opentype.Parse(goregular.TTF)
		if err != nil {
			fontErr = fmt.Errorf("parse Go Regular: %w", err)
			return
		}

		faces := []struct {
			dst  *font.Face
			src  *opentype.Font
			size float64
		}{
			{&fontTitle, bold, 56},
			{&fontLarge, regular, 120},
			{&fontRegular, regular, 36},
		}
		for _, f := range faces {
			face, err := opentype.NewFace(f.src, &opentype.FaceOptions{
				Size:    f.size,
				DPI:     72,
				Hinting: font.HintingFull,
			})
			if err != nil {
				fontErr = fmt.Errorf("create %.0fpt face: %w", f.size, err)
				return
			}
			*f.dst = face
		}
	})
}

// OGCardData contains the dataset headline for the share card.
type OGCardData struct {
	Title    string
	Rows     int
	Start    time.Time
	End      time.Time
	MeanTemp float64
	MeanRain float64
}

// OGCard renders a summary card for link previews. A zero Rows value renders
// the upload prompt instead of statistics.
func OGCard(data OGCardData, pal Palette) ([]byte, error) {
	loadFonts()
	if fontErr != nil {
		return nil, fmt.Errorf("load fonts: %w", fontErr)
	}

	bg, err := RGBA(pal.Background)
	if err != nil {
		return nil, err
	}
	text, err := RGBA(pal.Text)
	if err != nil {
		return nil, err
	}
	muted, err := RGBA(pal.TextMuted)
	if err != nil {
		return nil, err
	}
	accent, err := RGBA(pal.Accent)
	if err != nil {
		return nil, err
	}

	img := image.NewRGBA(image.Rect(0, 0, OGWidth, OGHeight))
	drawGradient(img, bg)

	title := data.Title
	if title == "" {
		title = "Weather Data Analysis"
	}
	drawText(img, title, 60, 110, text, fontTitle)

	if data.Rows == 0 {
		drawText(img, "Upload a weather CSV to explore it", 60, OGHeight-80, muted, fontRegular)
	} else {
		drawText(img, formatTemp(data.MeanTemp), 60, 330, accent, fontLarge)
		drawText(img, fmt.Sprintf("mean temperature · %s mean rainfall", formatRain(data.MeanRain)), 60, 400, text, fontRegular)
		span := fmt.Sprintf("%d days · %s to %s", data.Rows, data.Start.Format(models.DateLayout), data.End.Format(models.DateLayout))
		drawText(img, span, 60, OGHeight-80, muted, fontRegular)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode OG image: %w", err)
	}
	return buf.Bytes(), nil
}

func formatTemp(v float64) string {
	if math.IsNaN(v) {
		return "n/a"
	}
	return fmt.Sprintf("%.1f°C", v)
}

func formatRain(v float64) string {
	if math.IsNaN(v) {
		return "n/a"
	}
	return fmt.Sprintf("%.1f mm", v)
}

// drawGradient fills img with base, darkening towards the bottom edge.
func drawGradient(img *image.RGBA, base color.RGBA) {
	bounds := img.Bounds()
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		progress := float64(y) / float64(bounds.Dy())
		shade := 1 - progress*0.4
		c := color.RGBA{
			R: uint8(float64(base.R) * shade),
			G: uint8(float64(base.G) * shade),
			B: uint8(float64(base.B) * shade),
			A: 255,
		}
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			img.SetRGBA(x, y, c)
		}
	}
}

func drawText(img *image.RGBA, text string, x, y int, col color.Color, face font.Face) {
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(col),
		Face: face,
		Dot:  fixed.Point26_6{X: fixed.I(x), Y: fixed.I(y)},
	}
	d.DrawString(text)
}
