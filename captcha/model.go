package captcha

import (
	"encoding/gob"
	"fmt"
	"os"
	"unicode/utf8"
)

// Geometry describes the pixel layout of the captcha format a model was
// trained on. All offsets are relative to the top-left corner of the
// decoded image.
type Geometry struct {
	// ImageWidth and ImageHeight are the exact dimensions of a valid
	// captcha image.
	ImageWidth  int
	ImageHeight int
	// CharCount is the number of characters in every captcha.
	CharCount int
	// CellWidth and CellHeight are the dimensions of one character cell.
	CellWidth  int
	CellHeight int
	// OffsetX and OffsetY locate the top-left corner of the first cell.
	OffsetX int
	OffsetY int
	// CellStride is the horizontal distance between the left edges of
	// adjacent cells. It may exceed CellWidth when the format leaves
	// spacing between characters.
	CellStride int
}

// cellOrigin returns the top-left corner of cell i.
func (g Geometry) cellOrigin(i int) (x, y int) {
	return g.OffsetX + i*g.CellStride, g.OffsetY
}

// featureLen returns the length of a cell's flattened feature vector.
func (g Geometry) featureLen() int {
	return g.CellWidth * g.CellHeight
}

func (g Geometry) validate() error {
	if g.ImageWidth < 1 || g.ImageHeight < 1 {
		return fmt.Errorf("image dimensions %dx%d out of range", g.ImageWidth, g.ImageHeight)
	}
	if g.CharCount < 1 {
		return fmt.Errorf("character count %d out of range", g.CharCount)
	}
	if g.CellWidth < 1 || g.CellHeight < 1 {
		return fmt.Errorf("cell dimensions %dx%d out of range", g.CellWidth, g.CellHeight)
	}
	if g.CellStride < 1 {
		return fmt.Errorf("cell stride %d out of range", g.CellStride)
	}
	if g.OffsetX < 0 || g.OffsetY < 0 {
		return fmt.Errorf("cell offset %d,%d out of range", g.OffsetX, g.OffsetY)
	}
	lastX, _ := g.cellOrigin(g.CharCount - 1)
	if lastX+g.CellWidth > g.ImageWidth {
		return fmt.Errorf("cells extend to x=%d beyond image width %d", lastX+g.CellWidth, g.ImageWidth)
	}
	if g.OffsetY+g.CellHeight > g.ImageHeight {
		return fmt.Errorf("cells extend to y=%d beyond image height %d", g.OffsetY+g.CellHeight, g.ImageHeight)
	}
	return nil
}

// Prototype is one labeled reference vector of the classifier. A cell is
// recognized as the label of its nearest prototype.
type Prototype struct {
	// Label is the single character this prototype stands for.
	Label string
	// Features is the flattened binarized cell, row-major, length
	// CellWidth*CellHeight.
	Features []float32
}

// Model is a pre-trained captcha classifier artifact. It is immutable
// after loading and safe for concurrent readers.
type Model struct {
	Geometry Geometry
	// Threshold separates ink from background: a pixel whose gray value
	// is below the threshold counts as ink.
	Threshold uint8
	// Prototypes are matched in order; on a distance tie the earliest
	// prototype wins, which keeps classification deterministic.
	Prototypes []Prototype
}

// LoadModel reads and validates a classifier artifact from disk.
func LoadModel(path string) (*Model, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidModel, err)
	}
	defer f.Close()

	var m Model
	if err := gob.NewDecoder(f).Decode(&m); err != nil {
		return nil, fmt.Errorf("%w: decoding %s: %v", ErrInvalidModel, path, err)
	}
	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidModel, path, err)
	}
	return &m, nil
}

// Save writes the artifact to disk. The bot never trains models; this
// exists for the external training tool and for tests.
func (m *Model) Save(path string) error {
	if err := m.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidModel, err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := gob.NewEncoder(f).Encode(m); err != nil {
		f.Close()
		return fmt.Errorf("encoding %s: %w", path, err)
	}
	return f.Close()
}

// Validate checks the artifact for internal consistency.
func (m *Model) Validate() error {
	if err := m.Geometry.validate(); err != nil {
		return err
	}
	if len(m.Prototypes) == 0 {
		return fmt.Errorf("model has no prototypes")
	}
	want := m.Geometry.featureLen()
	for i, p := range m.Prototypes {
		if utf8.RuneCountInString(p.Label) != 1 {
			return fmt.Errorf("prototype %d: label %q is not a single character", i, p.Label)
		}
		if len(p.Features) != want {
			return fmt.Errorf("prototype %d (%q): feature length %d, want %d", i, p.Label, len(p.Features), want)
		}
	}
	return nil
}

// Classify returns the label of the prototype nearest to the feature
// vector. The caller guarantees the vector has the model's feature
// length.
func (m *Model) Classify(features []float32) string {
	best := m.Prototypes[0].Label
	bestDist := squaredDistance(features, m.Prototypes[0].Features)
	for _, p := range m.Prototypes[1:] {
		if d := squaredDistance(features, p.Features); d < bestDist {
			bestDist = d
			best = p.Label
		}
	}
	return best
}

func squaredDistance(a, b []float32) float64 {
	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return sum
}
