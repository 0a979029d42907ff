package captcha

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testGeometry() Geometry {
	return Geometry{
		ImageWidth:  12,
		ImageHeight: 5,
		CharCount:   3,
		CellWidth:   3,
		CellHeight:  3,
		OffsetX:     1,
		OffsetY:     1,
		CellStride:  4,
	}
}

func testModel() *Model {
	return &Model{
		Geometry:  testGeometry(),
		Threshold: 128,
		Prototypes: []Prototype{
			{Label: "a", Features: []float32{0, 1, 0, 0, 1, 0, 0, 1, 0}},
			{Label: "b", Features: []float32{1, 1, 1, 1, 1, 1, 1, 1, 1}},
			{Label: "c", Features: []float32{1, 1, 1, 0, 0, 0, 0, 0, 0}},
		},
	}
}

func TestModelValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Model)
		wantErr bool
	}{
		{
			name:    "Valid model",
			mutate:  func(m *Model) {},
			wantErr: false,
		},
		{
			name:    "No prototypes",
			mutate:  func(m *Model) { m.Prototypes = nil },
			wantErr: true,
		},
		{
			name:    "Zero character count",
			mutate:  func(m *Model) { m.Geometry.CharCount = 0 },
			wantErr: true,
		},
		{
			name:    "Zero cell stride",
			mutate:  func(m *Model) { m.Geometry.CellStride = 0 },
			wantErr: true,
		},
		{
			name:    "Cells wider than image",
			mutate:  func(m *Model) { m.Geometry.ImageWidth = 10 },
			wantErr: true,
		},
		{
			name:    "Cells taller than image",
			mutate:  func(m *Model) { m.Geometry.ImageHeight = 3 },
			wantErr: true,
		},
		{
			name:    "Negative offset",
			mutate:  func(m *Model) { m.Geometry.OffsetX = -1 },
			wantErr: true,
		},
		{
			name:    "Feature length mismatch",
			mutate:  func(m *Model) { m.Prototypes[1].Features = []float32{1, 0} },
			wantErr: true,
		},
		{
			name:    "Empty label",
			mutate:  func(m *Model) { m.Prototypes[0].Label = "" },
			wantErr: true,
		},
		{
			name:    "Multi-character label",
			mutate:  func(m *Model) { m.Prototypes[0].Label = "ab" },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := testModel()
			tt.mutate(m)

			err := m.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestModelSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.gob")

	want := testModel()
	require.NoError(t, want.Save(path))

	got, err := LoadModel(path)
	require.NoError(t, err)

	assert.Equal(t, want.Geometry, got.Geometry)
	assert.Equal(t, want.Threshold, got.Threshold)
	assert.Equal(t, want.Prototypes, got.Prototypes)
}

func TestLoadModelMissingFile(t *testing.T) {
	_, err := LoadModel(filepath.Join(t.TempDir(), "nope.gob"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidModel))
}

func TestLoadModelCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.gob")
	require.NoError(t, os.WriteFile(path, []byte("not a gob stream"), 0o644))

	_, err := LoadModel(path)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidModel))
}

func TestClassifyNearestPrototype(t *testing.T) {
	m := testModel()

	// Exact match on each prototype
	for _, p := range m.Prototypes {
		assert.Equal(t, p.Label, m.Classify(p.Features))
	}

	// One flipped pixel still lands on the nearest prototype
	noisy := []float32{0, 1, 0, 0, 1, 0, 0, 1, 1}
	assert.Equal(t, "a", m.Classify(noisy))
}

func TestClassifyTieBreaksOnFirstPrototype(t *testing.T) {
	m := &Model{
		Prototypes: []Prototype{
			{Label: "x", Features: []float32{0}},
			{Label: "y", Features: []float32{1}},
		},
	}

	// Equidistant from both prototypes; the earlier one must win every
	// time so predictions stay deterministic.
	for i := 0; i < 10; i++ {
		assert.Equal(t, "x", m.Classify([]float32{0.5}))
	}
}
