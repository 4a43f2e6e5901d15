package extraction

import (
	"Fideliza-Backend/domain"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"github.com/gofiber/fiber/v2/log"
)

// Config is built once at startup and injected; components hold no scattered
// default literals.
type Config struct {
	Languages     []string
	MaxFileSize   int64
	PDFConfidence float64
	Timeout       time.Duration
}

func DefaultConfig() Config {
	return Config{
		Languages:     []string{"por", "eng"},
		MaxFileSize:   10 * 1024 * 1024,
		PDFConfidence: 0.95,
		Timeout:       60 * time.Second,
	}
}

var supportedExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".tiff": true,
	".bmp":  true,
	".pdf":  true,
}

type (
	// OCREngine recognizes text in an image file. Confidence is reported on
	// the engine's native 0-100 scale.
	OCREngine interface {
		Recognize(ctx context.Context, imagePath string, languages []string) (text string, confidence float64, err error)
	}

	// PDFExtractor reads the embedded text layer of a PDF document.
	PDFExtractor interface {
		ExtractText(path string) (string, error)
	}

	ExtractionService interface {
		ValidateFile(path string) error
		ExtractText(ctx context.Context, path string) (domain.ExtractedText, error)
	}

	extractionService struct {
		config Config
		engine OCREngine
		pdf    PDFExtractor
	}
)

func NewExtractionService(config Config, engine OCREngine, pdf PDFExtractor) ExtractionService {
	return &extractionService{
		config: config,
		engine: engine,
		pdf:    pdf,
	}
}

func (s *extractionService) ValidateFile(path string) error {
	ext := strings.ToLower(filepath.Ext(path))
	if !supportedExtensions[ext] {
		return fmt.Errorf("%w: unsupported format %q", domain.ErrFileValidation, ext)
	}

	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrFileValidation, err)
	}
	if info.Size() > s.config.MaxFileSize {
		return fmt.Errorf("%w: file size %d exceeds limit %d", domain.ErrFileValidation, info.Size(), s.config.MaxFileSize)
	}

	return nil
}

func (s *extractionService) ExtractText(ctx context.Context, path string) (domain.ExtractedText, error) {
	if err := s.ValidateFile(path); err != nil {
		return domain.ExtractedText{}, err
	}

	start := time.Now()

	if strings.ToLower(filepath.Ext(path)) == ".pdf" {
		text, err := s.pdf.ExtractText(path)
		if err != nil {
			return domain.ExtractedText{}, fmt.Errorf("%w: %v", domain.ErrExtraction, err)
		}
		return domain.ExtractedText{
			Text:       text,
			Confidence: s.config.PDFConfidence,
			Duration:   time.Since(start),
		}, nil
	}

	ctx, cancel := context.WithTimeout(ctx, s.config.Timeout)
	defer cancel()

	normalized, err := s.normalizeImage(path)
	if err != nil {
		return domain.ExtractedText{}, fmt.Errorf("%w: %v", domain.ErrExtraction, err)
	}
	defer func() {
		if removeErr := os.Remove(normalized); removeErr != nil {
			log.Warnf("failed to remove normalized image %s: %v", normalized, removeErr)
		}
	}()

	text, confidence, err := s.engine.Recognize(ctx, normalized, s.config.Languages)
	if err != nil {
		return domain.ExtractedText{}, fmt.Errorf("%w: %v", domain.ErrExtraction, err)
	}

	return domain.ExtractedText{
		Text:       text,
		Confidence: confidence / 100.0,
		Duration:   time.Since(start),
	}, nil
}

// normalizeImage writes a grayscale copy next to the temp dir; the caller owns
// its removal.
func (s *extractionService) normalizeImage(path string) (string, error) {
	img, err := imaging.Open(path)
	if err != nil {
		return "", err
	}

	gray := imaging.Grayscale(img)

	out, err := os.CreateTemp("", "receipt-gray-*.png")
	if err != nil {
		return "", err
	}
	outPath := out.Name()
	if err := out.Close(); err != nil {
		return "", err
	}

	if err := imaging.Save(gray, outPath); err != nil {
		os.Remove(outPath)
		return "", err
	}

	return outPath, nil
}
