package service

import (
	"errors"
	"strings"
	"testing"
)

func TestSanitizeFilename(t *testing.T) {
	v := NewValidator(0, nil)

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain name passes through", "report.pdf", "report.pdf"},
		{"empty name gets fallback", "", "unnamed_file"},
		{"unsafe chars stripped", `re<po>rt:"2024".pdf`, "report2024.pdf"},
		{"path separators stripped", "../../etc/passwd", "etcpasswd"},
		{"whitespace collapsed to underscores", "annual  report\t2024.pdf", "annual_report_2024.pdf"},
		{"reserved device name prefixed", "con.pdf", "_con.pdf"},
		{"reserved name case-insensitive", "CON.pdf", "_CON.pdf"},
		{"lpt device prefixed", "lpt1.txt", "_lpt1.txt"},
		{"reserved name with leading space", " con", "_con"},
		{"reserved name with trailing space", "con ", "_con"},
		{"reserved name padded both sides", " CON ", "_CON"},
		{"padded lpt device", " lpt1", "_lpt1"},
		{"trailing dots trimmed", "report....", "report"},
		{"leading dot trimmed", ".hidden", "hidden"},
		{"dots only gets fallback", "..", "unnamed_file"},
		{"only unsafe chars gets fallback", "???///", "unnamed_file"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := v.SanitizeFilename(tt.input)
			if got != tt.want {
				t.Errorf("SanitizeFilename(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestSanitizeFilenameTruncation(t *testing.T) {
	v := NewValidator(0, nil)

	long := strings.Repeat("a", 300) + ".pdf"
	got := v.SanitizeFilename(long)

	if len(got) > DefaultMaxNameBytes {
		t.Fatalf("sanitized name is %d bytes, want <= %d", len(got), DefaultMaxNameBytes)
	}
	if !strings.HasSuffix(got, ".pdf") {
		t.Errorf("truncation dropped the extension: %q", got)
	}
	if !strings.Contains(got, "...") {
		t.Errorf("truncated name missing ellipsis marker: %q", got)
	}
}

func TestSanitizeFilenameUnicode(t *testing.T) {
	v := NewValidator(0, nil)

	// NFKD decomposes the accented rune; the base letter survives.
	got := v.SanitizeFilename("résumé.pdf")
	if !strings.HasSuffix(got, ".pdf") {
		t.Errorf("unicode name lost its extension: %q", got)
	}
	if strings.ContainsAny(got, `<>:"/\|?*`) {
		t.Errorf("unsafe characters survived sanitization: %q", got)
	}
}

func TestValidateFilename(t *testing.T) {
	v := NewValidator(0, nil)

	tests := []struct {
		name    string
		input   string
		wantErr string
	}{
		{"valid", "report.pdf", ""},
		{"empty", "   ", "Filename cannot be empty"},
		{"traversal", "../../etc/passwd", "Filename cannot contain directory traversal sequences"},
		{"unsafe chars", "a<b.pdf", "Filename contains invalid characters"},
		{"reserved name", "con.pdf", "Filename uses a reserved system name"},
		{"trailing dot", "report.", "Filename cannot start or end with '.' or start with ' '"},
		{"too long", strings.Repeat("a", 300), "Filename too long (max 255 bytes)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateFilename(tt.input)
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("ValidateFilename(%q) = %v, want nil", tt.input, err)
				}
				return
			}
			if err == nil {
				t.Fatalf("ValidateFilename(%q) = nil, want error %q", tt.input, tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("ValidateFilename(%q) = %q, want substring %q", tt.input, err.Error(), tt.wantErr)
			}
		})
	}
}

func TestValidatePDFRejectsMissingMagic(t *testing.T) {
	v := NewValidator(0, nil)

	err := v.ValidatePDF([]byte("this is plain text, not a pdf"))
	if err == nil {
		t.Fatal("expected error for non-PDF content")
	}
	if !strings.Contains(err.Error(), "invalid header") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestValidatePDFStructuralFailure(t *testing.T) {
	parser := &mockExtractor{pagesErr: errors.New("broken xref table")}
	v := NewValidator(0, parser)

	// Valid header, garbage body. The sniffer still identifies it as PDF
	// from the header, so the structural parse is the check that fires.
	err := v.ValidatePDF([]byte("%PDF-1.7\ngarbage"))
	if err == nil {
		t.Fatal("expected structural validation error")
	}
	if !strings.Contains(err.Error(), "PDF validation failed") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestValidatePDFZeroPages(t *testing.T) {
	parser := &mockExtractor{pages: 0}
	v := NewValidator(0, parser)

	err := v.ValidatePDF([]byte("%PDF-1.7\n%%EOF"))
	if err == nil {
		t.Fatal("expected error for zero-page PDF")
	}
	if !strings.Contains(err.Error(), "empty or corrupted") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestValidatePDFAccepts(t *testing.T) {
	parser := &mockExtractor{pages: 3}
	v := NewValidator(0, parser)

	if err := v.ValidatePDF([]byte("%PDF-1.4\n%%EOF")); err != nil {
		t.Fatalf("ValidatePDF returned %v, want nil", err)
	}
}

func TestValidateSize(t *testing.T) {
	v := NewValidator(10, nil)

	if err := v.ValidateSize(make([]byte, 10)); err != nil {
		t.Fatalf("payload at the limit rejected: %v", err)
	}

	err := v.ValidateSize(make([]byte, 11))
	if err == nil {
		t.Fatal("expected error for oversized payload")
	}
	if !strings.Contains(err.Error(), "File too large") {
		t.Errorf("unexpected error: %v", err)
	}
}
