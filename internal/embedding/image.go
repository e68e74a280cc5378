package embedding

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

// CLIP image normalisation constants.
var (
	clipMean = [3]float32{0.48145466, 0.4578275, 0.40821073}
	clipStd  = [3]float32{0.26862954, 0.26130258, 0.27577711}
)

// DecodeImageFile decodes a jpeg, png, gif, bmp or webp file.
func DecodeImageFile(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image %s: %w", path, err)
	}
	return img, nil
}

// CenterSquare returns the largest centred square inside r.
func CenterSquare(r image.Rectangle) image.Rectangle {
	w, h := r.Dx(), r.Dy()
	side := w
	if h < side {
		side = h
	}
	x0 := r.Min.X + (w-side)/2
	y0 := r.Min.Y + (h-side)/2
	return image.Rect(x0, y0, x0+side, y0+side)
}

// ResizeSquare scales the centred square crop of img to size×size with bicubic
// (Catmull-Rom) interpolation. This matches resizing the shortest side to size
// followed by a centre crop.
func ResizeSquare(img image.Image, size int) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, CenterSquare(img.Bounds()), draw.Src, nil)
	return dst
}

// PreprocessCLIP converts img into a normalised CHW float tensor of shape [3, size, size].
func PreprocessCLIP(img image.Image, size int) []float32 {
	rgba := ResizeSquare(img, size)
	plane := size * size
	out := make([]float32, 3*plane)
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			off := rgba.PixOffset(x, y)
			px := rgba.Pix[off : off+3]
			for c := 0; c < 3; c++ {
				v := float32(px[c]) / 255
				out[c*plane+y*size+x] = (v - clipMean[c]) / clipStd[c]
			}
		}
	}
	return out
}
