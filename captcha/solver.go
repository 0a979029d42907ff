package captcha

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"strings"

	// Captcha images arrive as whatever format the site happens to
	// serve; register the usual suspects for image.Decode.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/rs/zerolog"
)

// Solver predicts the text of captcha images using a loaded model.
type Solver struct {
	model  *Model
	logger zerolog.Logger
}

// NewSolver creates a solver around a validated model.
func NewSolver(model *Model, logger zerolog.Logger) *Solver {
	return &Solver{
		model:  model,
		logger: logger.With().Str("component", "captcha").Logger(),
	}
}

// Solve decodes raw image bytes and predicts the captcha text.
func (s *Solver) Solve(data []byte) (string, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnusableImage, err)
	}
	s.logger.Trace().Str("format", format).Int("bytes", len(data)).Msg("Decoded captcha image")
	return s.SolveImage(img)
}

// SolveImage predicts the captcha text of a decoded image. The result
// has exactly Geometry.CharCount characters, or an error is returned
// when the image does not match the model's geometry.
func (s *Solver) SolveImage(img image.Image) (string, error) {
	g := s.model.Geometry
	bounds := img.Bounds()
	if bounds.Dx() != g.ImageWidth || bounds.Dy() != g.ImageHeight {
		return "", fmt.Errorf("%w: image is %dx%d, model expects %dx%d",
			ErrUnusableImage, bounds.Dx(), bounds.Dy(), g.ImageWidth, g.ImageHeight)
	}

	var sb strings.Builder
	for i := 0; i < g.CharCount; i++ {
		x, y := g.cellOrigin(i)
		features := cellFeatures(img, bounds.Min.X+x, bounds.Min.Y+y, g.CellWidth, g.CellHeight, s.model.Threshold)
		sb.WriteString(s.model.Classify(features))
	}

	text := sb.String()
	s.logger.Debug().Str("prediction", text).Msg("Solved captcha")
	return text, nil
}

// cellFeatures flattens one character cell into a binary feature vector,
// row-major. Pixels darker than the threshold count as ink (1), the rest
// as background (0).
func cellFeatures(img image.Image, x0, y0, w, h int, threshold uint8) []float32 {
	features := make([]float32, 0, w*h)
	for y := y0; y < y0+h; y++ {
		for x := x0; x < x0+w; x++ {
			gray := color.GrayModel.Convert(img.At(x, y)).(color.Gray).Y
			if gray < threshold {
				features = append(features, 1)
			} else {
				features = append(features, 0)
			}
		}
	}
	return features
}
