package services

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"mime/multipart"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/datAIsolvcom/super-cv-ai/internal/models"
)

const maxFilenameLength = 100

var (
	magicNumbers = map[string][]byte{
		models.MimePDF:  []byte("%PDF"),
		models.MimeDOCX: {0x50, 0x4b, 0x03, 0x04},
	}

	dangerousFilenameChars = regexp.MustCompile(`[<>:"/\\|?*\x00-\x1f]`)
)

type UploadService interface {
	ReadFile(file *multipart.FileHeader) (*models.RawDocument, error)
	ReadBytes(filename, contentType string, data []byte) (*models.RawDocument, error)
}

type uploadService struct {
	maxFileSize int64
}

func NewUploadService(maxFileSize int64) UploadService {
	return &uploadService{
		maxFileSize: maxFileSize,
	}
}

func (s *uploadService) ReadFile(file *multipart.FileHeader) (*models.RawDocument, error) {
	if file == nil {
		return nil, newClientError(ErrCodeMissingFile, "file is required", nil)
	}

	if file.Size > s.maxFileSize {
		return nil, newClientError(ErrCodeFileTooLarge,
			fmt.Sprintf("file too large. Max size: %d bytes", s.maxFileSize), nil)
	}

	src, err := file.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer src.Close()

	data, err := io.ReadAll(io.LimitReader(src, s.maxFileSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read uploaded file: %w", err)
	}

	return s.ReadBytes(file.Filename, file.Header.Get("Content-Type"), data)
}

// ReadBytes validates an in-memory document: size, declared type, and that
// the leading bytes match the declared type.
func (s *uploadService) ReadBytes(filename, contentType string, data []byte) (*models.RawDocument, error) {
	if len(data) == 0 {
		return nil, newClientError(ErrCodeMissingFile, "uploaded file is empty", nil)
	}

	if int64(len(data)) > s.maxFileSize {
		return nil, newClientError(ErrCodeFileTooLarge,
			fmt.Sprintf("file too large. Max size: %d bytes", s.maxFileSize), nil)
	}

	mediaType := models.NormalizeMediaType(contentType)
	if !models.IsSupportedMediaType(mediaType) {
		return nil, newClientError(ErrCodeUnsupportedFormat,
			fmt.Sprintf("unsupported file format %q. Use PDF or DOCX", mediaType), nil)
	}

	if !bytes.HasPrefix(data, magicNumbers[mediaType]) {
		return nil, newClientError(ErrCodeContentTypeMismatch,
			"file content does not match declared type", nil)
	}

	sum := sha256.Sum256(data)

	return &models.RawDocument{
		Filename:    SanitizeFilename(filename, mediaType),
		ContentType: mediaType,
		Data:        data,
		SHA256:      hex.EncodeToString(sum[:]),
	}, nil
}

// SanitizeFilename strips path components and unsafe characters; the
// extension always reflects the declared type.
func SanitizeFilename(name, mediaType string) string {
	ext := ".pdf"
	if mediaType == models.MimeDOCX {
		ext = ".docx"
	}

	base := filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	base = strings.TrimSuffix(base, filepath.Ext(base))
	base = dangerousFilenameChars.ReplaceAllString(base, "_")
	base = strings.Trim(base, " .")

	if runes := []rune(base); len(runes) > maxFilenameLength-20 {
		base = string(runes[:maxFilenameLength-20])
	}
	if base == "" {
		base = "cv_file"
	}

	return base + ext
}
