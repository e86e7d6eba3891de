// Package gocv adapts OpenCV capture and drawing to the wizard's frame,
// rasterizer and snapshot ports.
package gocv

import (
	"context"
	"errors"
	"fmt"
	"image"
	"strconv"

	backend "gocv.io/x/gocv"
)

// Source grabs frames from a camera device, a video file or a still image.
type Source struct {
	cap   *backend.VideoCapture
	still *backend.Mat
}

// Open resolves src against the capture backends in order: a short all-digits
// string opens that camera index, otherwise src is tried as a video file,
// then as a still image. Every capture attempt must yield a non-empty probe
// frame before it is accepted. An unreadable source is a start-up error.
func Open(src string) (*Source, error) {
	// Camera ids are at most two digits; anything longer is a path.
	if len(src) > 0 && len(src) <= 2 {
		if id, err := strconv.Atoi(src); err == nil {
			if cap, err := backend.OpenVideoCapture(id); err == nil {
				if probe(cap) {
					return &Source{cap: cap}, nil
				}
				cap.Close()
			}
		}
	}

	if cap, err := backend.VideoCaptureFile(src); err == nil {
		if probe(cap) {
			return &Source{cap: cap}, nil
		}
		cap.Close()
	}

	still := backend.IMRead(src, backend.IMReadGrayScale)
	if !still.Empty() {
		return &Source{still: &still}, nil
	}
	still.Close()

	return nil, fmt.Errorf("could not interpret source %q as a camera id, video or image", src)
}

// probe consumes one frame to verify the capture actually delivers.
func probe(cap *backend.VideoCapture) bool {
	test := backend.NewMat()
	defer test.Close()
	return cap.Read(&test) && !test.Empty()
}

// Grab returns one grayscale frame.
func (s *Source) Grab(ctx context.Context) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.still != nil {
		return grayImage(*s.still)
	}

	mat := backend.NewMat()
	defer mat.Close()
	if !s.cap.Read(&mat) || mat.Empty() {
		return nil, errors.New("failed to grab frame from capture source")
	}
	return grayImage(mat)
}

// Close releases the underlying capture or image buffer.
func (s *Source) Close() error {
	if s.still != nil {
		return s.still.Close()
	}
	if s.cap != nil {
		return s.cap.Close()
	}
	return nil
}

// grayImage converts a capture mat of any channel count to *image.Gray.
func grayImage(mat backend.Mat) (image.Image, error) {
	if mat.Channels() == 1 {
		return mat.ToImage()
	}
	gray := backend.NewMat()
	defer gray.Close()
	backend.CvtColor(mat, &gray, backend.ColorBGRToGray)
	return gray.ToImage()
}
