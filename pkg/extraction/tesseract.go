package extraction

import (
	"context"
	"strings"

	"github.com/otiai10/gosseract/v2"
)

type tesseractEngine struct{}

func NewTesseractEngine() OCREngine {
	return &tesseractEngine{}
}

func (e *tesseractEngine) Recognize(ctx context.Context, imagePath string, languages []string) (string, float64, error) {
	type result struct {
		text       string
		confidence float64
		err        error
	}

	done := make(chan result, 1)
	go func() {
		client := gosseract.NewClient()
		defer client.Close()

		if len(languages) > 0 {
			if err := client.SetLanguage(languages...); err != nil {
				done <- result{err: err}
				return
			}
		}
		if err := client.SetImage(imagePath); err != nil {
			done <- result{err: err}
			return
		}

		text, err := client.Text()
		if err != nil {
			done <- result{err: err}
			return
		}

		done <- result{
			text:       strings.TrimSpace(text),
			confidence: meanConfidence(client),
		}
	}()

	select {
	case <-ctx.Done():
		return "", 0, ctx.Err()
	case res := <-done:
		return res.text, res.confidence, res.err
	}
}

// meanConfidence averages word-level confidences on Tesseract's 0-100 scale.
func meanConfidence(client *gosseract.Client) float64 {
	boxes, err := client.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil || len(boxes) == 0 {
		return 0
	}

	var sum float64
	for _, box := range boxes {
		sum += box.Confidence
	}
	return sum / float64(len(boxes))
}
