package extraction

import (
	"Fideliza-Backend/domain"
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeEngine struct {
	text       string
	confidence float64
	err        error
	seenPath   string
}

func (f *fakeEngine) Recognize(_ context.Context, imagePath string, _ []string) (string, float64, error) {
	f.seenPath = imagePath
	return f.text, f.confidence, f.err
}

type fakePDF struct {
	text string
	err  error
}

func (f *fakePDF) ExtractText(string) (string, error) {
	return f.text, f.err
}

func writeTestImage(t *testing.T, dir, name string) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for x := 0; x < 4; x++ {
		for y := 0; y < 4; y++ {
			img.Set(x, y, color.RGBA{R: 200, G: 100, B: 50, A: 255})
		}
	}
	path := filepath.Join(dir, name)
	out, err := os.Create(path)
	require.NoError(t, err)
	defer out.Close()
	require.NoError(t, png.Encode(out, img))
	return path
}

func TestValidateFile_UnsupportedFormat(t *testing.T) {
	svc := NewExtractionService(DefaultConfig(), &fakeEngine{}, &fakePDF{})

	path := filepath.Join(t.TempDir(), "receipt.gif")
	require.NoError(t, os.WriteFile(path, []byte("gif"), 0o644))

	err := svc.ValidateFile(path)
	assert.ErrorIs(t, err, domain.ErrFileValidation)
}

func TestValidateFile_Oversize(t *testing.T) {
	config := DefaultConfig()
	config.MaxFileSize = 10

	svc := NewExtractionService(config, &fakeEngine{}, &fakePDF{})

	path := filepath.Join(t.TempDir(), "receipt.jpg")
	require.NoError(t, os.WriteFile(path, make([]byte, 64), 0o644))

	err := svc.ValidateFile(path)
	assert.ErrorIs(t, err, domain.ErrFileValidation)
}

func TestExtractText_NormalizesConfidenceAndCleansUp(t *testing.T) {
	engine := &fakeEngine{text: "POSTO SAO JORGE\nTOTAL R$ 240,00", confidence: 87.5}
	svc := NewExtractionService(DefaultConfig(), engine, &fakePDF{})

	path := writeTestImage(t, t.TempDir(), "receipt.png")

	result, err := svc.ExtractText(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, "POSTO SAO JORGE\nTOTAL R$ 240,00", result.Text)
	assert.InDelta(t, 0.875, result.Confidence, 1e-9)
	assert.GreaterOrEqual(t, result.Confidence, 0.0)
	assert.LessOrEqual(t, result.Confidence, 1.0)

	// The grayscale intermediate must be gone regardless of outcome.
	require.NotEmpty(t, engine.seenPath)
	_, statErr := os.Stat(engine.seenPath)
	assert.True(t, os.IsNotExist(statErr))
}

func TestExtractText_EngineFailureCleansUp(t *testing.T) {
	engine := &fakeEngine{err: assert.AnError}
	svc := NewExtractionService(DefaultConfig(), engine, &fakePDF{})

	path := writeTestImage(t, t.TempDir(), "receipt.png")

	_, err := svc.ExtractText(context.Background(), path)
	assert.ErrorIs(t, err, domain.ErrExtraction)

	require.NotEmpty(t, engine.seenPath)
	_, statErr := os.Stat(engine.seenPath)
	assert.True(t, os.IsNotExist(statErr))
}

func TestExtractText_PDFUsesFixedConfidence(t *testing.T) {
	svc := NewExtractionService(DefaultConfig(), &fakeEngine{}, &fakePDF{text: "NFC-e 123456 TOTAL 99,90"})

	path := filepath.Join(t.TempDir(), "receipt.pdf")
	require.NoError(t, os.WriteFile(path, []byte("%PDF-1.4"), 0o644))

	result, err := svc.ExtractText(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "NFC-e 123456 TOTAL 99,90", result.Text)
	assert.InDelta(t, 0.95, result.Confidence, 1e-9)
}
