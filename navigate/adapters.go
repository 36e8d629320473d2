package navigate

import (
	"context"
	"errors"
	"fmt"
	"image"
	"time"

	"github.com/MaaXYZ/maa-framework-go/v4"
	"github.com/bytedance/sonic"

	"github.com/scoutkit/scout/agent/go-service/gameworld"
)

// Pipeline node names the adapters depend on. The nodes live in the
// host resource bundle; coordOCRNode is an OCR node over the coordinate
// readout ROI, templateMatchNode a TemplateMatch node whose template
// list gets overridden per search.
const (
	coordOCRNode      = "ScoutCoordOCR"
	templateMatchNode = "ScoutTemplateMatch"
)

var errNoReadout = errors.New("coordinate readout not recognized")

// stopping checks whether the task is stopping or already stopped.
func stopping(ctx *maa.Context) bool {
	if ctx == nil {
		return true
	}
	t := ctx.GetTasker()
	if t == nil {
		return true
	}
	return t.Stopping() || !t.Running()
}

// stoppingContext bridges the GUI stop button into a context. A
// background poller cancels the returned context once the tasker starts
// stopping; callers must call the CancelFunc when the action ends.
func stoppingContext(mctx *maa.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		ticker := time.NewTicker(100 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if stopping(mctx) {
					cancel()
					return
				}
			}
		}
	}()
	return ctx, cancel
}

// maaReader reads the world position via a fresh screencap plus the
// coordinate OCR node. A nonzero roi narrows the node to the configured
// readout region instead of the one baked into the resource bundle.
type maaReader struct {
	mctx *maa.Context
	roi  [4]int
}

// roiOverride builds the pipeline override that pins node to roi, or
// nil when the region is unset.
func roiOverride(node string, roi [4]int) map[string]any {
	if roi[2] <= 0 || roi[3] <= 0 {
		return nil
	}
	return map[string]any{
		node: map[string]any{
			"roi": maa.Rect{roi[0], roi[1], roi[2], roi[3]},
		},
	}
}

func (r *maaReader) ReadPosition(ctx context.Context) (gameworld.Position, error) {
	if err := ctx.Err(); err != nil {
		return gameworld.InvalidPosition, err
	}
	ctrl := r.mctx.GetTasker().GetController()
	ctrl.PostScreencap().Wait()
	img, err := ctrl.CacheImage()
	if err != nil {
		return gameworld.InvalidPosition, fmt.Errorf("screencap failed: %w", err)
	}
	if img == nil {
		return gameworld.InvalidPosition, errors.New("screencap returned no image")
	}

	detail, err := r.mctx.RunRecognition(coordOCRNode, img, roiOverride(coordOCRNode, r.roi))
	if err != nil {
		return gameworld.InvalidPosition, fmt.Errorf("coordinate OCR failed: %w", err)
	}
	if detail == nil || detail.Results == nil {
		return gameworld.InvalidPosition, errNoReadout
	}

	for _, results := range [][]*maa.RecognitionResult{detail.Results.Filtered, {detail.Results.Best}, detail.Results.All} {
		for _, res := range results {
			if res == nil {
				continue
			}
			ocr, ok := res.AsOCR()
			if !ok {
				continue
			}
			if pos, parsed := gameworld.ParsePositionText(ocr.Text); parsed {
				return pos, nil
			}
		}
	}
	return gameworld.InvalidPosition, errNoReadout
}

// maaDrag performs a drag as a touch-down, timed move, touch-up
// sequence through the controller.
type maaDrag struct {
	mctx *maa.Context
}

func (d *maaDrag) Drag(ctx context.Context, from, to image.Point, duration time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	ctrl := d.mctx.GetTasker().GetController()

	if !ctrl.PostTouchDown(0, int32(from.X), int32(from.Y), 1).Wait().Done() {
		return fmt.Errorf("touch down at %v failed", from)
	}
	time.Sleep(50 * time.Millisecond)

	// Several intermediate moves so the game registers a drag rather
	// than a jump.
	const steps = 10
	stepDelay := duration / steps
	for i := 1; i <= steps; i++ {
		x := from.X + (to.X-from.X)*i/steps
		y := from.Y + (to.Y-from.Y)*i/steps
		if !ctrl.PostTouchMove(0, int32(x), int32(y), 1).Wait().Done() {
			ctrl.PostTouchUp(0).Wait()
			return fmt.Errorf("touch move toward %v failed", to)
		}
		time.Sleep(stepDelay)
	}

	if !ctrl.PostTouchUp(0).Wait().Done() {
		return errors.New("touch up failed")
	}
	return nil
}

// maaScreen captures the game window through the controller and caches
// the bounds of the last capture.
type maaScreen struct {
	mctx   *maa.Context
	bounds image.Rectangle
}

func (s *maaScreen) Capture(ctx context.Context) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	ctrl := s.mctx.GetTasker().GetController()
	ctrl.PostScreencap().Wait()
	img, err := ctrl.CacheImage()
	if err != nil {
		return nil, fmt.Errorf("screencap failed: %w", err)
	}
	if img == nil {
		return nil, errors.New("screencap returned no image")
	}
	s.bounds = img.Bounds()
	return img, nil
}

func (s *maaScreen) Bounds() (image.Rectangle, error) {
	if s.bounds.Empty() {
		if _, err := s.Capture(context.Background()); err != nil {
			return image.Rectangle{}, err
		}
	}
	return s.bounds, nil
}

// maaMatcher runs the shared TemplateMatch node once per template with
// the template path overridden, collecting every filtered box.
type maaMatcher struct {
	mctx *maa.Context
}

func (m *maaMatcher) FindMatches(ctx context.Context, templates []string, img image.Image) ([]gameworld.Match, error) {
	var matches []gameworld.Match
	for _, tpl := range templates {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		override := map[string]any{
			templateMatchNode: map[string]any{
				"template": []string{tpl},
			},
		}
		detail, err := m.mctx.RunRecognition(templateMatchNode, img, override)
		if err != nil {
			return nil, fmt.Errorf("template match for %q failed: %w", tpl, err)
		}
		if detail == nil || !detail.Hit || detail.DetailJson == "" {
			continue
		}
		for _, box := range filteredBoxes(detail.DetailJson) {
			matches = append(matches, gameworld.Match{
				Template:   tpl,
				Center:     image.Pt(box.rect[0]+box.rect[2]/2, box.rect[1]+box.rect[3]/2),
				Confidence: box.score,
			})
		}
	}
	return matches, nil
}

type matchBox struct {
	rect  [4]int
	score float64
}

// filteredBoxes pulls the filtered hit boxes out of a TemplateMatch
// detail payload.
func filteredBoxes(detailJSON string) []matchBox {
	var tm struct {
		Filtered []struct {
			Box   [4]int  `json:"box"`
			Score float64 `json:"score"`
		} `json:"filtered"`
	}
	if err := sonic.UnmarshalString(detailJSON, &tm); err != nil {
		navLog().Warn().Err(err).Msg("failed to parse match detail")
		return nil
	}
	boxes := make([]matchBox, 0, len(tm.Filtered))
	for _, item := range tm.Filtered {
		boxes = append(boxes, matchBox{rect: item.Box, score: item.Score})
	}
	return boxes
}
