package services

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

// buildPDF writes a minimal PDF with one Helvetica text line per page. An
// empty string yields a page with an empty content stream.
func buildPDF(t *testing.T, pages ...string) []byte {
	t.Helper()

	var (
		buf     bytes.Buffer
		offsets []int
	)
	writeObject := func(body string) {
		offsets = append(offsets, buf.Len())
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", len(offsets), body)
	}

	buf.WriteString("%PDF-1.4\n")

	kids := make([]string, 0, len(pages))
	for i := range pages {
		kids = append(kids, fmt.Sprintf("%d 0 R", 4+2*i))
	}

	writeObject("<< /Type /Catalog /Pages 2 0 R >>")
	writeObject(fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(kids, " "), len(pages)))
	writeObject("<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding >>")

	for i, text := range pages {
		stream := ""
		if text != "" {
			stream = fmt.Sprintf("BT /F1 12 Tf 72 720 Td (%s) Tj ET", text)
		}
		writeObject(fmt.Sprintf(
			"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << /Font << /F1 3 0 R >> >> /Contents %d 0 R >>",
			5+2*i))
		writeObject(fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(stream), stream))
	}

	xrefOffset := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n0000000000 65535 f \n", len(offsets)+1)
	for _, offset := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", offset)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(offsets)+1, xrefOffset)

	return buf.Bytes()
}

// buildDOCX writes a minimal word document, one w:p per paragraph. Tabs in a
// paragraph become w:tab elements.
func buildDOCX(t *testing.T, paragraphs ...string) []byte {
	t.Helper()

	var body strings.Builder
	for _, p := range paragraphs {
		body.WriteString("<w:p>")
		for i, part := range strings.Split(p, "\t") {
			if i > 0 {
				body.WriteString("<w:r><w:tab/></w:r>")
			}
			fmt.Fprintf(&body, `<w:r><w:t xml:space="preserve">%s</w:t></w:r>`, part)
		}
		body.WriteString("</w:p>")
	}

	document := `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
		`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>` +
		body.String() +
		`</w:body></w:document>`

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	files := []struct{ name, content string }{
		{"[Content_Types].xml", `<?xml version="1.0" encoding="UTF-8"?><Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types"></Types>`},
		{"word/document.xml", document},
	}
	for _, f := range files {
		w, err := zw.Create(f.name)
		require.NoError(t, err)
		_, err = w.Write([]byte(f.content))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())

	return buf.Bytes()
}

type geminiCall struct {
	prompt      string
	schema      *genai.Schema
	temperature float32
}

// stubGemini answers every request through respond and records the calls.
type stubGemini struct {
	mu      sync.Mutex
	calls   []geminiCall
	respond func(prompt string, schema *genai.Schema) (string, error)
}

func (s *stubGemini) GenerateStructured(_ context.Context, prompt string, schema *genai.Schema, temperature float32) (string, error) {
	s.mu.Lock()
	s.calls = append(s.calls, geminiCall{prompt: prompt, schema: schema, temperature: temperature})
	s.mu.Unlock()

	if s.respond == nil {
		return "", fmt.Errorf("no response configured")
	}
	return s.respond(prompt, schema)
}

func (s *stubGemini) Model() string {
	return "stub-model"
}

func (s *stubGemini) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

func (s *stubGemini) callsFor(task string) []geminiCall {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []geminiCall
	for _, c := range s.calls {
		if schemaTask(c.schema, c.temperature) == task {
			out = append(out, c)
		}
	}
	return out
}

// schemaTask tells the tasks apart: assessment has its own schema, and the
// rewrite shares the CV schema but runs hotter.
func schemaTask(schema *genai.Schema, temperature float32) string {
	if _, ok := schema.Properties["overall_score"]; ok {
		return TaskAssessment
	}
	if temperature > 0.15 {
		return TaskRewrite
	}
	return TaskExtraction
}

func isAssessment(schema *genai.Schema) bool {
	_, ok := schema.Properties["overall_score"]
	return ok
}
