package extract

import (
	"fmt"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

var mimeFileType = map[string]FileType{
	mimePDF:      TypePDF,
	mimeDOCX:     TypeDOCX,
	mimeText:     TypeText,
	"image/jpeg": TypeJPEG,
	"image/png":  TypePNG,
	"image/bmp":  TypeBMP,
	"image/tiff": TypeTIFF,
	"image/gif":  TypeGIF,
	"image/webp": TypeWEBP,
}

// resolveType picks the reader for a payload: by extension, then by a
// readable declared MIME type, then by sniffing the content.
func resolveType(data []byte, declared, fileName string) (FileType, error) {
	if t := FileTypeFromName(fileName); t != TypeUnknown {
		return t, CheckReadable(t)
	}
	if t := fileTypeForMIME(declared); t.Readable() {
		return t, nil
	}

	detected := mimetype.Detect(data).String()
	if t := fileTypeForMIME(detected); t != TypeUnknown {
		return t, CheckReadable(t)
	}
	return TypeUnknown, fmt.Errorf("%w: %s", ErrUnsupportedType, baseMIME(detected))
}

func fileTypeForMIME(m string) FileType {
	if t, ok := mimeFileType[baseMIME(m)]; ok {
		return t
	}
	return TypeUnknown
}

// baseMIME drops parameters such as charset.
func baseMIME(m string) string {
	base, _, _ := strings.Cut(m, ";")
	return strings.ToLower(strings.TrimSpace(base))
}
