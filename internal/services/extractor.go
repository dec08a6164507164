package services

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/ledongthuc/pdf"
	"go.uber.org/zap"

	"github.com/datAIsolvcom/super-cv-ai/internal/metrics"
	"github.com/datAIsolvcom/super-cv-ai/internal/models"
)

const (
	wordNamespace         = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"
	markupCompatNamespace = "http://schemas.openxmlformats.org/markup-compatibility/2006"
)

type TextExtractor interface {
	Extract(doc *models.RawDocument) (string, error)
}

type textExtractor struct {
	logger *zap.Logger
}

func NewTextExtractor(logger *zap.Logger) TextExtractor {
	return &textExtractor{logger: logger}
}

// Extract implements TextExtractor. The returned text is trimmed but its
// length is not checked here.
func (e *textExtractor) Extract(doc *models.RawDocument) (string, error) {
	var (
		format string
		text   string
		err    error
	)

	switch doc.MediaType() {
	case models.MimePDF:
		format = "pdf"
		text, err = extractPDF(doc.Data)
	case models.MimeDOCX:
		format = "docx"
		text, err = extractDOCX(doc.Data)
	default:
		metrics.DocumentExtractions.WithLabelValues("unsupported", "rejected").Inc()
		return "", newClientError(ErrCodeUnsupportedFormat,
			fmt.Sprintf("unsupported file format %q. Use PDF or DOCX", doc.MediaType()), nil)
	}

	if err != nil {
		metrics.DocumentExtractions.WithLabelValues(format, "failed").Inc()
		e.logger.Warn("text extraction failed",
			zap.String("format", format),
			zap.String("filename", doc.Filename),
			zap.Error(err),
		)
		return "", newClientError(ErrCodeExtractionFailed, "failed to extract text", err)
	}

	metrics.DocumentExtractions.WithLabelValues(format, "ok").Inc()
	return strings.TrimSpace(text), nil
}

func extractPDF(data []byte) (text string, err error) {
	// The pdf package panics on some malformed inputs.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("malformed PDF: %v", r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to open PDF: %w", err)
	}

	var textBuilder strings.Builder
	totalPage := r.NumPage()

	for pageIndex := 1; pageIndex <= totalPage; pageIndex++ {
		page := r.Page(pageIndex)
		if page.V.IsNull() {
			continue
		}

		pageText, err := page.GetPlainText(nil)
		if err != nil || strings.TrimSpace(pageText) == "" {
			continue
		}

		textBuilder.WriteString(pageText)
		textBuilder.WriteString("\n")
	}

	return textBuilder.String(), nil
}

func extractDOCX(data []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to open DOCX archive: %w", err)
	}

	for _, f := range zr.File {
		if f.Name != "word/document.xml" {
			continue
		}

		rc, err := f.Open()
		if err != nil {
			return "", fmt.Errorf("failed to open document.xml: %w", err)
		}
		defer rc.Close()

		return docxParagraphs(rc)
	}

	return "", errors.New("no word/document.xml found in DOCX")
}

// docxParagraphs joins the text of every w:p element with newlines. A
// paragraph nested inside another (text boxes) is emitted on its own, before
// the paragraph that contains it. mc:Fallback content is skipped since it
// repeats the mc:Choice branch.
func docxParagraphs(r io.Reader) (string, error) {
	decoder := xml.NewDecoder(r)

	var (
		paragraphs []string
		open       []*strings.Builder
		inText     bool
	)

	for {
		tok, err := decoder.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", fmt.Errorf("failed to parse document.xml: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Space == markupCompatNamespace && t.Name.Local == "Fallback" {
				if err := decoder.Skip(); err != nil {
					return "", fmt.Errorf("failed to parse document.xml: %w", err)
				}
				continue
			}
			if t.Name.Space != wordNamespace {
				continue
			}
			if t.Name.Local == "p" {
				open = append(open, &strings.Builder{})
				continue
			}
			if len(open) == 0 {
				continue
			}
			current := open[len(open)-1]
			switch t.Name.Local {
			case "t":
				inText = true
			case "tab":
				current.WriteString("\t")
			case "br", "cr":
				current.WriteString("\n")
			}
		case xml.EndElement:
			if t.Name.Space != wordNamespace {
				continue
			}
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				if len(open) > 0 {
					paragraphs = append(paragraphs, open[len(open)-1].String())
					open = open[:len(open)-1]
				}
			}
		case xml.CharData:
			if inText && len(open) > 0 {
				open[len(open)-1].Write(t)
			}
		}
	}

	return strings.Join(paragraphs, "\n"), nil
}
