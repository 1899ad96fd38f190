package gutenberg

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/gogs/chardet"
	"golang.org/x/net/html/charset"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/encoding/unicode/utf32"
	"golang.org/x/text/transform"
)

// DefaultMaxBodySize caps both response bodies and decompressed archive entries.
const DefaultMaxBodySize int64 = 64 * 1024 * 1024

const byteOrderMark = "\ufeff"

// isArchive reports whether a Content-Type header declares a zip payload.
func isArchive(contentType string) bool {
	return strings.Contains(strings.ToLower(contentType), "application/zip")
}

// singleEntry returns the only file in a zip archive. Archives with zero or
// several entries are ambiguous and rejected before any entry is read.
func singleEntry(body []byte) (*zip.File, error) {
	zr, err := zip.NewReader(bytes.NewReader(body), int64(len(body)))
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}
	if len(zr.File) != 1 {
		return nil, fmt.Errorf("archive has %d entries, want exactly 1", len(zr.File))
	}
	return zr.File[0], nil
}

// readEntry reads a zip entry, refusing entries that decompress past limit.
func readEntry(f *zip.File, limit int64) ([]byte, error) {
	if f.UncompressedSize64 > uint64(limit) {
		return nil, fmt.Errorf("archive entry %s too large: %d bytes (max %d)", f.Name, f.UncompressedSize64, limit)
	}

	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("open archive entry %s: %w", f.Name, err)
	}
	defer func() { _ = rc.Close() }()

	// The declared size may be forged; read one byte past the limit to notice.
	data, err := io.ReadAll(io.LimitReader(rc, limit+1))
	if err != nil {
		return nil, fmt.Errorf("read archive entry %s: %w", f.Name, err)
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("archive entry %s exceeds %d bytes", f.Name, limit)
	}
	return data, nil
}

// DetectEncoding guesses the character set of raw text bytes.
// It returns an empty string when nothing could be detected.
func DetectEncoding(data []byte) string {
	result, err := chardet.NewTextDetector().DetectBest(data)
	if err != nil || result == nil {
		return ""
	}
	return result.Charset
}

// DecodeDetected converts raw bytes of unknown encoding to a string.
// Charsets the detector names but the decoder does not know fall back to
// UTF-8 when the bytes are valid UTF-8.
func DecodeDetected(data []byte) (string, string, error) {
	name := DetectEncoding(data)
	text, err := decodeAs(data, name)
	if err != nil {
		return "", name, err
	}
	return text, name, nil
}

// detectorAliases maps chardet names that the charset registry spells differently.
var detectorAliases = map[string]string{
	"gb-18030": "gb18030",
}

// encodingFor resolves a detector charset name. UTF-32 is not part of the
// HTML charset registry and is served from x/text directly.
func encodingFor(name string) encoding.Encoding {
	key := strings.ToLower(strings.TrimSpace(name))
	switch key {
	case "utf-32be":
		return utf32.UTF32(utf32.BigEndian, utf32.UseBOM)
	case "utf-32le":
		return utf32.UTF32(utf32.LittleEndian, utf32.UseBOM)
	}
	if alias, ok := detectorAliases[key]; ok {
		key = alias
	}
	enc, _ := charset.Lookup(key)
	return enc
}

// decodeAs decodes data with the named charset, dropping a byte order mark.
func decodeAs(data []byte, name string) (string, error) {
	enc := encodingFor(name)
	if enc == nil {
		if utf8.Valid(data) {
			return strings.TrimPrefix(string(data), byteOrderMark), nil
		}
		return "", fmt.Errorf("unsupported encoding %q", name)
	}

	// BOMOverride would read a UTF-32LE mark as UTF-16LE; utf32 handles its own.
	decoder := enc.NewDecoder()
	var t transform.Transformer = decoder
	if !strings.HasPrefix(strings.ToLower(name), "utf-32") {
		t = unicode.BOMOverride(decoder)
	}
	decoded, _, err := transform.Bytes(t, data)
	if err != nil {
		return "", fmt.Errorf("decode %s: %w", name, err)
	}
	return strings.TrimPrefix(string(decoded), byteOrderMark), nil
}

// decodeTransport decodes a text response the way the HTTP layer negotiates it:
// the Content-Type charset wins, then byte order marks, then a UTF-8 check,
// then windows-1252.
func decodeTransport(body []byte, contentType string) (string, error) {
	reader, err := charset.NewReader(bytes.NewReader(body), contentType)
	if err != nil {
		return "", fmt.Errorf("charset reader: %w", err)
	}
	decoded, err := io.ReadAll(reader)
	if err != nil {
		return "", fmt.Errorf("decode body: %w", err)
	}
	return strings.TrimPrefix(string(decoded), byteOrderMark), nil
}
