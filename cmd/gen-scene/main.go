package main

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"
	"os"
	"path/filepath"

	"github.com/aretw0/spherecal/pkg/adapters/file"
	"github.com/aretw0/spherecal/pkg/domain"
)

const (
	sceneWidth  = 640
	sceneHeight = 480
)

func main() {
	targetDir := "examples/sample-scene"
	if len(os.Args) > 1 {
		targetDir = os.Args[1]
	}

	// Ensure dir exists
	if err := os.MkdirAll(targetDir, 0755); err != nil {
		panic(err)
	}

	fmt.Printf("Generating sample scene in: %s\n", targetDir)

	if err := writeScene(filepath.Join(targetDir, "scene.png")); err != nil {
		panic(err)
	}

	// Seed a config pointing at the scene, so the wizard starts with a
	// usable source and optics but no calibrated artifacts.
	store := file.New(filepath.Join(targetDir, "spherecal.yaml"))
	store.Add(domain.KeySourceFn, "scene.png")
	store.Add(domain.KeyVFOV, 45)
	if err := store.Write(context.Background()); err != nil {
		panic(err)
	}

	fmt.Println("Done. Try: spherecal run", filepath.Join(targetDir, "spherecal.yaml"))
}

// writeScene draws a lit sphere with surface speckle on a dark background,
// roughly what a rig camera sees looking at a trackball.
func writeScene(path string) error {
	img := image.NewGray(image.Rect(0, 0, sceneWidth, sceneHeight))

	cx, cy := float64(sceneWidth)/2, float64(sceneHeight)*0.58
	radius := float64(sceneHeight) * 0.34

	for y := 0; y < sceneHeight; y++ {
		for x := 0; x < sceneWidth; x++ {
			dx, dy := float64(x)-cx, float64(y)-cy
			d := math.Hypot(dx, dy)
			if d > radius {
				img.SetGray(x, y, color.Gray{Y: 18})
				continue
			}
			// Lambert-ish shading off the sphere normal.
			nz := math.Sqrt(1 - (d/radius)*(d/radius))
			shade := 60 + 150*nz
			if speckle(x, y) {
				shade *= 0.55
			}
			img.SetGray(x, y, color.Gray{Y: uint8(shade)})
		}
	}

	// Support arm occluding the top of the ball, the part an operator masks
	// out with an ignore region.
	for y := 0; y < int(cy)-int(radius*0.3); y++ {
		for x := int(cx) - 14; x <= int(cx)+14; x++ {
			if x >= 0 && x < sceneWidth {
				img.SetGray(x, y, color.Gray{Y: 35})
			}
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return png.Encode(f, img)
}

// speckle deterministically marks a scatter of dark surface features so the
// scene has texture to click against.
func speckle(x, y int) bool {
	h := uint32(x*73856093) ^ uint32(y*19349663)
	h ^= h >> 13
	h *= 0x5bd1e995
	h ^= h >> 15
	return h%100 < 15
}
