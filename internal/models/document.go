package models

import "strings"

// Supported upload content types.
const (
	MimePDF  = "application/pdf"
	MimeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
)

// RawDocument is an uploaded file held in memory for the duration of one request.
type RawDocument struct {
	Filename    string
	ContentType string
	Data        []byte
	SHA256      string
}

// MediaType returns the declared content type without parameters, lower-cased.
func (d RawDocument) MediaType() string {
	return NormalizeMediaType(d.ContentType)
}

func NormalizeMediaType(contentType string) string {
	mediaType, _, _ := strings.Cut(contentType, ";")
	return strings.ToLower(strings.TrimSpace(mediaType))
}

func IsSupportedMediaType(mediaType string) bool {
	switch NormalizeMediaType(mediaType) {
	case MimePDF, MimeDOCX:
		return true
	default:
		return false
	}
}
