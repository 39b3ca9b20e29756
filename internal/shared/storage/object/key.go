package object

import (
	"bytes"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"path"
	"strconv"
	"time"

	"github.com/gabriel-vasile/mimetype"

	"resume-matcher/internal/shared/util"
)

// SniffLen is how much of an upload is inspected for its MIME type. OOXML
// documents need more than the first few hundred bytes.
const SniffLen = 3072

// NewKey builds a slash-separated key "<namespace>/<random>_<name>" from
// sanitized parts.
func NewKey(namespace, fileName string) (string, error) {
	name, err := util.SanitizeFileName(fileName)
	if err != nil {
		return "", fmt.Errorf("sanitize file name: %w", err)
	}
	dir, err := util.SanitizeFileName(namespace)
	if err != nil {
		return "", fmt.Errorf("sanitize namespace: %w", err)
	}
	return path.Join(dir, randomID()+"_"+name), nil
}

// Sniff detects the MIME type of r's leading bytes. The returned reader
// yields the full original stream.
func Sniff(r io.Reader) (string, io.Reader, error) {
	head := make([]byte, SniffLen)
	n, err := io.ReadFull(r, head)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return "", nil, fmt.Errorf("read sniff: %w", err)
	}
	head = head[:n]
	return mimetype.Detect(head).String(), io.MultiReader(bytes.NewReader(head), r), nil
}

// CountingReader counts the bytes read through it.
type CountingReader struct {
	R io.Reader
	N int64
}

func (c *CountingReader) Read(p []byte) (int, error) {
	n, err := c.R.Read(p)
	c.N += int64(n)
	return n, err
}

func randomID() string {
	var b [16]byte
	if _, err := rand.Read(b[:]); err != nil {
		return strconv.FormatInt(time.Now().UnixNano(), 16)
	}
	return hex.EncodeToString(b[:])
}
