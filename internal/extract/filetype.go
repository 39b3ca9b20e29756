package extract

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// ErrUnsupportedType is returned for files the text source cannot read.
var ErrUnsupportedType = errors.New("unsupported file type")

const (
	mimePDF  = "application/pdf"
	mimeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	mimeText = "text/plain"
)

// FileType is derived from a file's extension.
type FileType string

const (
	TypePDF     FileType = "pdf"
	TypeDOCX    FileType = "docx"
	TypeText    FileType = "txt"
	TypeJPG     FileType = "jpg"
	TypeJPEG    FileType = "jpeg"
	TypePNG     FileType = "png"
	TypeBMP     FileType = "bmp"
	TypeTIFF    FileType = "tiff"
	TypeGIF     FileType = "gif"
	TypeWEBP    FileType = "webp"
	TypeUnknown FileType = "unknown"
)

var fileTypeMIME = map[FileType]string{
	TypePDF:  mimePDF,
	TypeDOCX: mimeDOCX,
	TypeText: mimeText,
	TypeJPG:  "image/jpeg",
	TypeJPEG: "image/jpeg",
	TypePNG:  "image/png",
	TypeBMP:  "image/bmp",
	TypeTIFF: "image/tiff",
	TypeGIF:  "image/gif",
	TypeWEBP: "image/webp",
}

// FileTypeFromName maps an extension to a FileType, case-insensitively.
func FileTypeFromName(fileName string) FileType {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(fileName)), ".")
	if ext == "tif" {
		ext = "tiff"
	}
	t := FileType(ext)
	if _, ok := fileTypeMIME[t]; ok {
		return t
	}
	return TypeUnknown
}

func (t FileType) IsImage() bool {
	return strings.HasPrefix(fileTypeMIME[t], "image/")
}

// MimeType is the canonical MIME type, empty for unknown files.
func (t FileType) MimeType() string {
	return fileTypeMIME[t]
}

// Readable reports whether text can be extracted. Images need OCR, which
// is not available.
func (t FileType) Readable() bool {
	switch t {
	case TypePDF, TypeDOCX, TypeText:
		return true
	}
	return false
}

// CheckReadable returns ErrUnsupportedType naming t when it cannot be read.
func CheckReadable(t FileType) error {
	if t.Readable() {
		return nil
	}
	if t.IsImage() {
		return fmt.Errorf("%w: %s (image text recognition is not available)", ErrUnsupportedType, t)
	}
	return fmt.Errorf("%w: %s", ErrUnsupportedType, t)
}
