package extraction

import (
	"bytes"

	"github.com/ledongthuc/pdf"
)

type pdfExtractor struct{}

func NewPDFExtractor() PDFExtractor {
	return &pdfExtractor{}
}

func (p *pdfExtractor) ExtractText(path string) (string, error) {
	file, reader, err := pdf.Open(path)
	if err != nil {
		return "", err
	}
	defer file.Close()

	textReader, err := reader.GetPlainText()
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(textReader); err != nil {
		return "", err
	}

	return buf.String(), nil
}
