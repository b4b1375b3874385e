package service

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"sort"
	"strings"
)

// Sentinel errors for media uploads.
var (
	ErrUnsupportedFileType = errors.New("unsupported file type")
	ErrFileTooLarge        = errors.New("file too large")
	ErrNoImage             = errors.New("event has no image")
)

// Allowed image MIME types.
var allowedMIMETypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

// MediaService validates event images and converts them to and from the
// base64 text stored on the event row.
type MediaService struct {
	maxBytes int64
}

// NewMediaService creates a new MediaService.
func NewMediaService(maxBytes int64) *MediaService {
	return &MediaService{maxBytes: maxBytes}
}

// EncodeUpload validates an uploaded image and returns it base64-encoded.
// The type is sniffed from the content, not trusted from the part header.
func (s *MediaService) EncodeUpload(file multipart.File, header *multipart.FileHeader) (string, error) {
	if header.Size > s.maxBytes {
		return "", fmt.Errorf("%w: %d bytes (max: %d)", ErrFileTooLarge, header.Size, s.maxBytes)
	}

	data, err := io.ReadAll(io.LimitReader(file, s.maxBytes+1))
	if err != nil {
		return "", fmt.Errorf("read upload: %w", err)
	}
	return s.Encode(data)
}

// Encode validates raw image bytes and returns them base64-encoded.
func (s *MediaService) Encode(data []byte) (string, error) {
	if int64(len(data)) > s.maxBytes {
		return "", fmt.Errorf("%w: more than %d bytes", ErrFileTooLarge, s.maxBytes)
	}

	contentType := http.DetectContentType(data)
	if !allowedMIMETypes[contentType] {
		return "", fmt.Errorf("%w: %s (allowed: %s)",
			ErrUnsupportedFileType, contentType, strings.Join(allowedTypes(), ", "))
	}
	return base64.StdEncoding.EncodeToString(data), nil
}

// Decode returns the stored image bytes and their sniffed content type.
func (s *MediaService) Decode(encoded string) ([]byte, string, error) {
	if encoded == "" {
		return nil, "", ErrNoImage
	}
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, "", fmt.Errorf("decode image: %w", err)
	}
	return data, http.DetectContentType(data), nil
}

func allowedTypes() []string {
	types := make([]string, 0, len(allowedMIMETypes))
	for t := range allowedMIMETypes {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}
