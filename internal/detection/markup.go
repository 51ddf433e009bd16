package detection

import (
	"image"
	"image/color"
	"image/draw"
)

var (
	predictionColor  = color.RGBA{G: 255, A: 255}
	groundTruthColor = color.RGBA{R: 255, A: 255}
)

// DefaultMarkupThreshold is the confidence a prediction needs to be drawn.
const DefaultMarkupThreshold = 0.5

// Markup renders the last colour channel of img (blue, or the gray level of
// a grayscale image) as min-max normalised grayscale RGB and draws the
// predictions scoring above threshold in green and the ground truth in
// red, with 2 px outlines.
func Markup(img image.Image, preds []Prediction, gt []Box, threshold float64) *image.RGBA {
	bounds := img.Bounds()
	out := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))

	gray := make([]uint8, bounds.Dx()*bounds.Dy())
	lo, hi := uint8(255), uint8(0)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			_, _, b, _ := img.At(x, y).RGBA()
			v := uint8(b >> 8)
			gray[(y-bounds.Min.Y)*bounds.Dx()+(x-bounds.Min.X)] = v
			lo, hi = min(lo, v), max(hi, v)
		}
	}

	for i, v := range gray {
		var n uint8
		if hi > lo {
			n = uint8(255 * int(v-lo) / int(hi-lo))
		}
		out.Pix[4*i], out.Pix[4*i+1], out.Pix[4*i+2], out.Pix[4*i+3] = n, n, n, 255
	}

	for _, p := range preds {
		if p.Confidence > threshold {
			drawBox(out, p.Box, predictionColor)
		}
	}
	for _, b := range gt {
		drawBox(out, b, groundTruthColor)
	}
	return out
}

// drawBox outlines b with a 2 px line centred on the box edges.
func drawBox(dst *image.RGBA, b Box, c color.RGBA) {
	w, h := float64(dst.Bounds().Dx()), float64(dst.Bounds().Dy())
	x1, y1 := int(w*b.XMin), int(h*b.YMin)
	x2, y2 := int(w*b.XMax), int(h*b.YMax)
	if x1 > x2 {
		x1, x2 = x2, x1
	}
	if y1 > y2 {
		y1, y2 = y2, y1
	}

	src := image.NewUniform(c)
	for _, r := range []image.Rectangle{
		image.Rect(x1-1, y1-1, x2+1, y1+1),
		image.Rect(x1-1, y2-1, x2+1, y2+1),
		image.Rect(x1-1, y1-1, x1+1, y2+1),
		image.Rect(x2-1, y1-1, x2+1, y2+1),
	} {
		draw.Draw(dst, r, src, image.Point{}, draw.Src)
	}
}
