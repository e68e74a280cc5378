package embedding

import (
	"image"
	"image/color"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/image/bmp"
)

func solidImage(w, h int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func TestCenterSquare(t *testing.T) {
	tests := []struct {
		in   image.Rectangle
		want image.Rectangle
	}{
		{image.Rect(0, 0, 10, 20), image.Rect(0, 5, 10, 15)},
		{image.Rect(0, 0, 30, 10), image.Rect(10, 0, 20, 10)},
		{image.Rect(5, 5, 15, 15), image.Rect(5, 5, 15, 15)},
	}
	for _, tt := range tests {
		if got := CenterSquare(tt.in); got != tt.want {
			t.Errorf("CenterSquare(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestPreprocessCLIP_solidColor(t *testing.T) {
	img := solidImage(10, 20, color.RGBA{R: 255, G: 0, B: 128, A: 255})
	out := PreprocessCLIP(img, 4)
	if len(out) != 3*4*4 {
		t.Fatalf("len = %d, want 48", len(out))
	}
	want := [3]float32{
		(1 - clipMean[0]) / clipStd[0],
		(0 - clipMean[1]) / clipStd[1],
		(128.0/255 - clipMean[2]) / clipStd[2],
	}
	for c := 0; c < 3; c++ {
		for i := 0; i < 16; i++ {
			got := out[c*16+i]
			if math.Abs(float64(got-want[c])) > 2e-2 {
				t.Fatalf("channel %d pixel %d = %f, want %f", c, i, got, want[c])
			}
		}
	}
}

func TestDecodeImageFile(t *testing.T) {
	dir := t.TempDir()
	img := solidImage(3, 2, color.RGBA{R: 10, G: 20, B: 30, A: 255})

	pngPath := filepath.Join(dir, "a.png")
	f, err := os.Create(pngPath)
	if err != nil {
		t.Fatal(err)
	}
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
	f.Close()

	bmpPath := filepath.Join(dir, "b.bmp")
	f, err = os.Create(bmpPath)
	if err != nil {
		t.Fatal(err)
	}
	if err := bmp.Encode(f, img); err != nil {
		t.Fatal(err)
	}
	f.Close()

	for _, p := range []string{pngPath, bmpPath} {
		got, err := DecodeImageFile(p)
		if err != nil {
			t.Fatalf("DecodeImageFile(%s): %v", p, err)
		}
		if b := got.Bounds(); b.Dx() != 3 || b.Dy() != 2 {
			t.Errorf("%s: bounds = %v", p, b)
		}
	}

	bad := filepath.Join(dir, "bad.jpg")
	if err := os.WriteFile(bad, []byte("not an image"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := DecodeImageFile(bad); err == nil {
		t.Error("expected error for undecodable file")
	}
	if _, err := DecodeImageFile(filepath.Join(dir, "missing.png")); err == nil {
		t.Error("expected error for missing file")
	}
}
