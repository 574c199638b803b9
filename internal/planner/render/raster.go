package render

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"math"

	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
	"golang.org/x/image/draw"
)

// ============================================================
// PNG Rasterizer
// ============================================================

const (
	FallbackWidth  = 1200
	FallbackHeight = 800
	maxRasterSide  = 4096
)

// Rasterize переводит SVG в PNG на белом фоне. Размер берётся из viewBox,
// умноженного на scale; без viewBox используется 1200x800. Большие чертежи
// уменьшаются так, чтобы длинная сторона не превышала maxRasterSide.
func Rasterize(svg []byte, w io.Writer, scale float64) error {
	width, height := RasterSize(svg, scale)
	if width < 1 || height < 1 {
		return fmt.Errorf("raster size %dx%d is empty", width, height)
	}

	icon, err := oksvg.ReadIconStream(bytes.NewReader(svg), oksvg.IgnoreErrorMode)
	if err != nil {
		return fmt.Errorf("parse svg: %w", err)
	}
	icon.SetTarget(0, 0, float64(width), float64(height))

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: color.White}, image.Point{}, draw.Src)

	scanner := rasterx.NewScannerGV(width, height, img, img.Bounds())
	raster := rasterx.NewDasher(width, height, scanner)
	icon.Draw(raster, 1.0)

	return png.Encode(w, img)
}

// RasterSize считает размер PNG для SVG с учётом ограничения maxRasterSide.
func RasterSize(svg []byte, scale float64) (int, int) {
	if scale <= 0 {
		scale = 1
	}
	vb, ok := ParseViewBox(svg)
	if !ok {
		return FallbackWidth, FallbackHeight
	}
	if longest := math.Max(vb.Width, vb.Height); longest*scale > maxRasterSide {
		scale = maxRasterSide / longest
	}
	width := int(math.Min(math.Ceil(vb.Width*scale-1e-6), maxRasterSide))
	height := int(math.Min(math.Ceil(vb.Height*scale-1e-6), maxRasterSide))
	return width, height
}

// RasterizeBytes возвращает PNG целиком.
func RasterizeBytes(svg []byte, scale float64) ([]byte, error) {
	var buf bytes.Buffer
	if err := Rasterize(svg, &buf, scale); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
