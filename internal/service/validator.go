package service

import (
	"bytes"
	"fmt"
	"strings"
	"unicode/utf8"

	"docdrive/internal/domain"

	"github.com/gabriel-vasile/mimetype"
	"golang.org/x/text/unicode/norm"
)

const (
	// DefaultMaxNameBytes is the filename byte budget, matching the limit
	// of most filesystems.
	DefaultMaxNameBytes = 255
	// DefaultMaxFileSize caps uploads at 100 MiB.
	DefaultMaxFileSize = 100 * 1024 * 1024

	pdfMimeType = "application/pdf"
)

var pdfMagic = []byte("%PDF-")

// Windows reserved device names, matched against the name without its
// extension, case-insensitively.
var reservedDeviceNames = map[string]struct{}{
	"con": {}, "prn": {}, "aux": {}, "nul": {},
	"com1": {}, "com2": {}, "com3": {}, "com4": {}, "com5": {},
	"com6": {}, "com7": {}, "com8": {}, "com9": {},
	"lpt1": {}, "lpt2": {}, "lpt3": {}, "lpt4": {}, "lpt5": {},
	"lpt6": {}, "lpt7": {}, "lpt8": {}, "lpt9": {},
}

// PDFParser is the optional structural-validation capability of the
// validator. The PDF extractor satisfies it.
type PDFParser interface {
	PageCount(data []byte) (int, error)
}

// Validator validates uploaded file content and filenames. The magic-header
// check always runs; MIME sniffing and structural parsing are capabilities
// that can be absent in minimal builds.
type Validator struct {
	maxNameBytes int
	maxFileSize  int64
	sniffMIME    bool
	parser       PDFParser
}

// NewValidator creates a validator with all capabilities enabled. A nil
// parser disables the structural check.
func NewValidator(maxFileSize int64, parser PDFParser) *Validator {
	if maxFileSize <= 0 {
		maxFileSize = DefaultMaxFileSize
	}
	return &Validator{
		maxNameBytes: DefaultMaxNameBytes,
		maxFileSize:  maxFileSize,
		sniffMIME:    true,
		parser:       parser,
	}
}

// SanitizeFilename rewrites a raw filename so it is safe for filesystem use
// across platforms. The result is never empty, never starts or ends with a
// dot, never exceeds the byte budget and is never a bare reserved device
// name.
func (v *Validator) SanitizeFilename(raw string) string {
	if raw == "" {
		return "unnamed_file"
	}

	normalized := norm.NFKD.String(raw)
	cleaned := stripUnsafeChars(normalized)

	name := collapseWhitespace(cleaned)
	name = strings.Trim(name, ". ")

	// Reserved-name check runs on the final trimmed form so padding like
	// " con" cannot slip a bare device name through.
	stem, _ := splitExt(name)
	if isReservedDeviceName(stem) {
		name = "_" + name
	}

	if name == "" {
		return "unnamed_file"
	}

	if len(name) > v.maxNameBytes {
		name = truncateFilename(name, v.maxNameBytes)
	}
	return name
}

// ValidateFilename checks a raw filename without rewriting it. Callers that
// want auto-fixing use SanitizeFilename instead.
func (v *Validator) ValidateFilename(raw string) error {
	if strings.TrimSpace(raw) == "" {
		return &domain.ValidationError{Field: "filename", Message: "Filename cannot be empty"}
	}
	if len(raw) > v.maxNameBytes {
		return &domain.ValidationError{
			Field:   "filename",
			Message: fmt.Sprintf("Filename too long (max %d bytes)", v.maxNameBytes),
		}
	}
	if strings.Contains(raw, "..") {
		return &domain.ValidationError{Field: "filename", Message: "Filename cannot contain directory traversal sequences"}
	}
	if hasUnsafeChars(raw) {
		return &domain.ValidationError{Field: "filename", Message: "Filename contains invalid characters"}
	}
	stem, _ := splitExt(raw)
	if isReservedDeviceName(stem) {
		return &domain.ValidationError{Field: "filename", Message: "Filename uses a reserved system name"}
	}
	if strings.HasPrefix(raw, ".") || strings.HasSuffix(raw, ".") || strings.HasPrefix(raw, " ") {
		return &domain.ValidationError{Field: "filename", Message: "Filename cannot start or end with '.' or start with ' '"}
	}
	return nil
}

// ValidatePDF runs up to three checks, short-circuiting on the first
// failure: the mandatory magic-header check, a MIME sniff, and a structural
// parse requiring at least one page. Garbage behind a valid header fails as
// long as the parser capability is present.
func (v *Validator) ValidatePDF(data []byte) error {
	if !bytes.HasPrefix(data, pdfMagic) {
		return &domain.ValidationError{Field: "file", Message: "File is not a valid PDF (invalid header)"}
	}

	if v.sniffMIME {
		mt := mimetype.Detect(data)
		if !mt.Is(pdfMimeType) {
			return &domain.ValidationError{
				Field:   "file",
				Message: fmt.Sprintf("File MIME type is %s, expected %s", mt.String(), pdfMimeType),
			}
		}
	}

	if v.parser != nil {
		pages, err := v.parser.PageCount(data)
		if err != nil {
			return &domain.ValidationError{
				Field:   "file",
				Message: fmt.Sprintf("PDF validation failed: %v", err),
			}
		}
		if pages == 0 {
			return &domain.ValidationError{Field: "file", Message: "PDF file appears to be empty or corrupted"}
		}
	}
	return nil
}

// ValidateSize rejects payloads beyond the configured maximum.
func (v *Validator) ValidateSize(data []byte) error {
	size := int64(len(data))
	if size > v.maxFileSize {
		return &domain.ValidationError{
			Field: "file",
			Message: fmt.Sprintf("File too large: %.1fMB (max %.0fMB)",
				float64(size)/(1024*1024), float64(v.maxFileSize)/(1024*1024)),
		}
	}
	return nil
}

func isUnsafeChar(r rune) bool {
	switch r {
	case '<', '>', ':', '"', '/', '\\', '|', '?', '*':
		return true
	}
	return r < 0x20
}

func hasUnsafeChars(s string) bool {
	return strings.ContainsFunc(s, isUnsafeChar)
}

func stripUnsafeChars(s string) string {
	var sb strings.Builder
	sb.Grow(len(s))
	for _, r := range s {
		switch {
		case r == '\t' || r == '\n' || r == '\r' || r == '\v' || r == '\f':
			// Control whitespace becomes a space so word boundaries survive
			// for the later collapse into underscores.
			sb.WriteRune(' ')
		case isUnsafeChar(r):
		default:
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), "_")
}

// splitExt splits a filename into stem and extension. A leading dot is part
// of the stem, not an extension, so hidden-file style names stay intact.
func splitExt(name string) (string, string) {
	idx := strings.LastIndex(name, ".")
	if idx <= 0 {
		return name, ""
	}
	return name[:idx], name[idx:]
}

func isReservedDeviceName(stem string) bool {
	_, ok := reservedDeviceNames[strings.ToLower(stem)]
	return ok
}

// truncateFilename shortens a name to maxBytes, preserving the extension
// and marking the truncated stem with an ellipsis.
func truncateFilename(name string, maxBytes int) string {
	if len(name) <= maxBytes {
		return name
	}

	stem, ext := splitExt(name)
	available := maxBytes - len(ext) - 3 // reserve 3 bytes for "..."
	if available <= 0 {
		// Extension alone blows the budget.
		return trimToBytes("file"+ext, maxBytes)
	}

	truncated := stem
	for len(truncated) > available && truncated != "" {
		_, size := utf8.DecodeLastRuneInString(truncated)
		truncated = truncated[:len(truncated)-size]
	}
	if len(truncated) < len(stem) {
		truncated += "..."
	}

	return trimToBytes(truncated+ext, maxBytes)
}

// trimToBytes cuts a string to at most maxBytes without splitting a rune.
func trimToBytes(s string, maxBytes int) string {
	for len(s) > maxBytes {
		_, size := utf8.DecodeLastRuneInString(s)
		s = s[:len(s)-size]
	}
	return s
}
