package qrdecode

import (
	"Fideliza-Backend/domain"
	"Fideliza-Backend/pkg/extraction"
	"context"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/gofiber/fiber/v2/log"
	"github.com/makiuchi-d/gozxing"
	"github.com/makiuchi-d/gozxing/qrcode"
)

// Confidence levels assigned to the possible decode outcomes.
const (
	confidenceDirectStructured   = 0.95
	confidenceDirectLoose        = 0.6
	confidenceFallbackStructured = 0.7
	confidenceFallbackLoose      = 0.4
)

type (
	// PayloadDecoder extracts the embedded machine-readable code from a
	// receipt document. It never fails the pipeline: when nothing decodable
	// is found it returns empty fields with Success=false.
	PayloadDecoder interface {
		Decode(ctx context.Context, path string) domain.CodePayload
	}

	payloadDecoder struct {
		engine    extraction.OCREngine
		pdf       extraction.PDFExtractor
		languages []string
	}
)

func NewPayloadDecoder(engine extraction.OCREngine, pdf extraction.PDFExtractor, languages []string) PayloadDecoder {
	return &payloadDecoder{
		engine:    engine,
		pdf:       pdf,
		languages: languages,
	}
}

func (d *payloadDecoder) Decode(ctx context.Context, path string) domain.CodePayload {
	isPDF := strings.ToLower(filepath.Ext(path)) == ".pdf"

	if !isPDF {
		if raw, ok := d.scanImage(path); ok {
			return normalizePayload(raw, true)
		}
	}

	raw, ok := d.recognizePayloadText(ctx, path, isPDF)
	if !ok {
		return domain.CodePayload{Success: false}
	}
	return normalizePayload(raw, false)
}

// scanImage runs the direct scan-line decode over the image.
func (d *payloadDecoder) scanImage(path string) (string, bool) {
	img, err := imaging.Open(path)
	if err != nil {
		log.Debugf("payload decode: cannot open image %s: %v", path, err)
		return "", false
	}

	bitmap, err := gozxing.NewBinaryBitmapFromImage(img)
	if err != nil {
		return "", false
	}

	result, err := qrcode.NewQRCodeReader().Decode(bitmap, nil)
	if err != nil {
		return "", false
	}
	return result.GetText(), true
}

// payloadShapedPattern finds substrings that look like a structured payload:
// a JSON object, a URL query string, or a run of key=value pairs.
var payloadShapedPattern = regexp.MustCompile(`(?s)\{.*?\}|[\w.]+\?[\w%=&.\-]{10,}|(?:[A-Za-z_]+\s*[=:]\s*[^\s|;]+[|;&\s]*){2,}`)

// recognizePayloadText is the constrained recognition fallback: run OCR and
// search the text for a payload-shaped substring.
func (d *payloadDecoder) recognizePayloadText(ctx context.Context, path string, isPDF bool) (string, bool) {
	var (
		text string
		err  error
	)
	if isPDF {
		text, err = d.pdf.ExtractText(path)
	} else {
		text, _, err = d.engine.Recognize(ctx, path, d.languages)
	}
	if err != nil {
		log.Debugf("payload decode: fallback recognition failed for %s: %v", path, err)
		return "", false
	}

	match := payloadShapedPattern.FindString(text)
	if match == "" {
		return "", false
	}
	return match, true
}
