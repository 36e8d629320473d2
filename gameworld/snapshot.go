package gameworld

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/image/draw"
)

// snapshotMaxDim caps the longest side of saved snapshots. Full captures
// are wasteful on disk; the history view only needs a thumbnail.
const snapshotMaxDim = 480

// SaveSnapshot writes a downscaled PNG of img into dir with a
// timestamped name and returns the file path.
func SaveSnapshot(dir, name string, img image.Image) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create snapshot dir: %w", err)
	}

	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w == 0 || h == 0 {
		return "", fmt.Errorf("empty capture")
	}
	scale := 1.0
	if w > h && w > snapshotMaxDim {
		scale = float64(snapshotMaxDim) / float64(w)
	} else if h >= w && h > snapshotMaxDim {
		scale = float64(snapshotMaxDim) / float64(h)
	}

	out := img
	if scale < 1.0 {
		dst := image.NewRGBA(image.Rect(0, 0, int(float64(w)*scale), int(float64(h)*scale)))
		draw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
		out = dst
	}

	path := filepath.Join(dir, fmt.Sprintf("%s_%d.png", name, time.Now().UnixMilli()))
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create snapshot: %w", err)
	}
	defer f.Close()
	if err := png.Encode(f, out); err != nil {
		return "", fmt.Errorf("encode snapshot: %w", err)
	}
	return path, nil
}
