package testutils

import (
	"image"
	"image/color"
)

// GrayFrame returns a uniform mid-gray frame of the given size, standing in
// for a camera capture.
func GrayFrame(w, h int) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = 128
	}
	return img
}

// CheckerFrame returns a small checkerboard frame, handy when a test needs to
// verify that pixels actually moved through a rasterizer.
func CheckerFrame(w, h, cell int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	dark := color.RGBA{R: 40, G: 40, B: 40, A: 255}
	light := color.RGBA{R: 200, G: 200, B: 200, A: 255}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if (x/cell+y/cell)%2 == 0 {
				img.SetRGBA(x, y, dark)
			} else {
				img.SetRGBA(x, y, light)
			}
		}
	}
	return img
}
