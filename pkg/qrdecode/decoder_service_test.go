package qrdecode

import (
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
	text string
	err  error
}

func (f *fakeEngine) Recognize(context.Context, string, []string) (string, float64, error) {
	return f.text, 80, f.err
}

type fakePDF struct {
	text string
	err  error
}

func (f *fakePDF) ExtractText(string) (string, error) {
	return f.text, f.err
}

func writeTestImage(t *testing.T, dir string) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for x := 0; x < 8; x++ {
		for y := 0; y < 8; y++ {
			img.Set(x, y, color.White)
		}
	}
	path := filepath.Join(dir, "receipt.png")
	out, err := os.Create(path)
	require.NoError(t, err)
	defer out.Close()
	require.NoError(t, png.Encode(out, img))
	return path
}

func TestNormalizePayload_JSONAliases(t *testing.T) {
	raw := `{"invoice_id":"987654","loja":"042","valor":"240.00","cliente":"Maria da Silva","txid":"TX-1"}`
	payload := normalizePayload(raw, true)

	assert.True(t, payload.Success)
	assert.Equal(t, "987654", payload.ReceiptID)
	assert.Equal(t, "042", payload.StoreNumber)
	assert.InDelta(t, 240.0, payload.Amount, 1e-9)
	assert.Equal(t, "Maria da Silva", payload.CustomerName)
	assert.Equal(t, "TX-1", payload.TransactionID)
	assert.InDelta(t, confidenceDirectStructured, payload.Confidence, 1e-9)
}

func TestNormalizePayload_FirstMatchingAliasWins(t *testing.T) {
	raw := `{"invoiceid":"111","id":"222"}`
	payload := normalizePayload(raw, true)
	// "id" sits earlier in the alias list than "invoiceid".
	assert.Equal(t, "222", payload.ReceiptID)
}

func TestNormalizePayload_KeyValuePairs(t *testing.T) {
	raw := "nf=123456|posto=017|total=89,90|data=17/09/2025"
	payload := normalizePayload(raw, false)

	assert.True(t, payload.Success)
	assert.Equal(t, "123456", payload.ReceiptID)
	assert.Equal(t, "017", payload.StoreNumber)
	assert.InDelta(t, 89.90, payload.Amount, 1e-9)
	assert.Equal(t, "17/09/2025", payload.Date)
	assert.InDelta(t, confidenceFallbackStructured, payload.Confidence, 1e-9)
}

func TestNormalizePayload_LooseBucketing(t *testing.T) {
	raw := "35250911222333000181 17/09/2025 240,00 A1B2C3D4E5"
	payload := normalizePayload(raw, true)

	assert.True(t, payload.Success)
	assert.Equal(t, "17/09/2025", payload.Date)
	assert.InDelta(t, 240.0, payload.Amount, 1e-9)
	assert.NotEmpty(t, payload.ReceiptID)
	assert.InDelta(t, confidenceDirectLoose, payload.Confidence, 1e-9)
}

func TestDecode_FallbackFindsPayloadInRecognizedText(t *testing.T) {
	engine := &fakeEngine{text: "POSTO SAO JORGE\nnf=123456|posto=017|total=89,90\nTOTAL"}
	decoder := NewPayloadDecoder(engine, &fakePDF{}, []string{"por"})

	path := writeTestImage(t, t.TempDir())
	payload := decoder.Decode(context.Background(), path)

	require.True(t, payload.Success)
	assert.Equal(t, "123456", payload.ReceiptID)
	assert.Equal(t, "017", payload.StoreNumber)
}

func TestDecode_NothingDecodableIsNotAnError(t *testing.T) {
	engine := &fakeEngine{text: "just a plain receipt with no embedded code"}
	decoder := NewPayloadDecoder(engine, &fakePDF{}, []string{"por"})

	path := writeTestImage(t, t.TempDir())
	payload := decoder.Decode(context.Background(), path)

	assert.False(t, payload.Success)
	assert.Empty(t, payload.ReceiptID)
	assert.Zero(t, payload.Amount)
}

func TestDecode_PDFUsesTextLayerFallback(t *testing.T) {
	pdf := &fakePDF{text: "DANFE\nnf=555666|posto=003|valor=10,00"}
	decoder := NewPayloadDecoder(&fakeEngine{}, pdf, []string{"por"})

	path := filepath.Join(t.TempDir(), "receipt.pdf")
	require.NoError(t, os.WriteFile(path, []byte("%PDF-1.4"), 0o644))

	payload := decoder.Decode(context.Background(), path)
	require.True(t, payload.Success)
	assert.Equal(t, "555666", payload.ReceiptID)
	assert.Equal(t, "003", payload.StoreNumber)
}
