package navigate

import (
	"github.com/MaaXYZ/maa-framework-go/v4"
	"github.com/bytedance/sonic"
)

// ScoutWhereAmIRecognition reads the current world coordinate and
// reports it through the recognition detail, so pipelines can branch on
// where the view currently is.
type ScoutWhereAmIRecognition struct{}

func (r *ScoutWhereAmIRecognition) Run(mctx *maa.Context, arg *maa.CustomRecognitionArg) (*maa.CustomRecognitionResult, bool) {
	if stopping(mctx) {
		return &maa.CustomRecognitionResult{Box: arg.Roi, Detail: `{}`}, false
	}

	ctx, cancel := stoppingContext(mctx)
	defer cancel()

	reader := &maaReader{mctx: mctx, roi: current.ocrRegion()}
	pos, err := reader.ReadPosition(ctx)
	if err != nil || !pos.Valid() {
		navLog().Warn().Err(err).Msg("coordinate readout not recognized")
		return &maa.CustomRecognitionResult{Box: arg.Roi, Detail: `{}`}, false
	}

	detail, err := sonic.MarshalString(struct {
		K int     `json:"k"`
		X float64 `json:"x"`
		Y float64 `json:"y"`
	}{pos.K, pos.X, pos.Y})
	if err != nil {
		return &maa.CustomRecognitionResult{Box: arg.Roi, Detail: `{}`}, false
	}

	navLog().Info().Str("position", pos.String()).Msg("position recognized")
	return &maa.CustomRecognitionResult{Box: arg.Roi, Detail: detail}, true
}
