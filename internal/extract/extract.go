package extract

import (
	"context"
	"fmt"
	"io"
	"strings"

	"resume-matcher/internal/shared/storage/object"
)

const extractedSuffix = ".extracted.txt"

// ExtractedKey is where the text of fileKey is persisted.
func ExtractedKey(fileKey string) string {
	return fileKey + extractedSuffix
}

// ExtractText reads a stored upload, extracts its text and persists the text
// next to it under ExtractedKey.
func ExtractText(ctx context.Context, store object.ObjectStore, fileKey string, mimeType string, fileName string) (string, error) {
	raw, err := readAll(ctx, store, fileKey)
	if err != nil {
		return "", fmt.Errorf("extract text key=%s: %w", fileKey, err)
	}

	text, err := ExtractTextFromBytes(ctx, raw, mimeType, fileName)
	if err != nil {
		return "", fmt.Errorf("extract text key=%s: %w", fileKey, err)
	}

	if _, err := store.SaveWithKey(ctx, ExtractedKey(fileKey), mimeText+"; charset=utf-8", strings.NewReader(text)); err != nil {
		return "", fmt.Errorf("persist extracted text key=%s: %w", fileKey, err)
	}
	return text, nil
}

// ReadStored returns text previously persisted by ExtractText.
func ReadStored(ctx context.Context, store object.ObjectStore, extractedKey string) (string, error) {
	raw, err := readAll(ctx, store, extractedKey)
	if err != nil {
		return "", fmt.Errorf("read extracted text key=%s: %w", extractedKey, err)
	}
	return string(raw), nil
}

// ExtractTextFromBytes extracts text from an in-memory payload. The file name
// decides the reader; the declared MIME type and then the content are used
// only when the name says nothing. Unreadable types fail with
// ErrUnsupportedType.
func ExtractTextFromBytes(ctx context.Context, data []byte, mimeType string, fileName string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	t, err := resolveType(data, mimeType, fileName)
	if err != nil {
		return "", err
	}

	var text string
	switch t {
	case TypePDF:
		text, err = readPDF(data)
	case TypeDOCX:
		text, err = readDOCX(data)
	default:
		text = string(data)
	}
	if err != nil {
		return "", fmt.Errorf("read %s: %w", t, err)
	}
	return cleanText(text), nil
}

func readAll(ctx context.Context, store object.ObjectStore, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	body, err := store.Open(ctx, key)
	if err != nil {
		return nil, err
	}
	defer body.Close()
	return io.ReadAll(body)
}

// cleanText makes extracted text valid UTF-8 with \n line endings.
func cleanText(s string) string {
	s = strings.ToValidUTF8(s, "")
	s = strings.ReplaceAll(s, "\x00", "")
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	return strings.TrimSpace(s)
}
