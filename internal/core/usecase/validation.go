package usecase

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/kirillkom/certextract/internal/core/domain"
)

// DefaultMaxFileSize is the per-file upload limit when none is configured.
const DefaultMaxFileSize int64 = 5 << 20

// ValidateSourceName accepts files with a .pdf extension or a PDF MIME type.
func ValidateSourceName(name, mimeType string) error {
	if strings.TrimSpace(name) == "" {
		return domain.WrapError(domain.ErrInvalidInput, "validate file", errors.New("file name is required"))
	}
	isPDF := strings.EqualFold(filepath.Ext(name), ".pdf") ||
		strings.HasPrefix(strings.ToLower(mimeType), "application/pdf")
	if !isPDF {
		return domain.WrapError(domain.ErrInvalidInput, "validate file", fmt.Errorf("%s is not a PDF", name))
	}
	return nil
}

// ValidateSourceFile also enforces the size limit; maxBytes <= 0 uses
// DefaultMaxFileSize.
func ValidateSourceFile(file domain.SourceFile, maxBytes int64) error {
	if err := ValidateSourceName(file.Name, file.MimeType); err != nil {
		return err
	}
	if maxBytes <= 0 {
		maxBytes = DefaultMaxFileSize
	}
	if int64(len(file.Data)) > maxBytes {
		return domain.WrapError(
			domain.ErrInvalidInput,
			"validate file",
			fmt.Errorf("%s exceeds the %d byte limit", file.Name, maxBytes),
		)
	}
	return nil
}
