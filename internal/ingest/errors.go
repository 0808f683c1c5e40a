package ingest

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel markers for ingestion failures. Callers classify with errors.Is;
// the detailed cause travels alongside via wrapping.
var (
	ErrParse              = errors.New("parse failure")
	ErrDetection          = errors.New("detection failure")
	ErrExtensionAmbiguous = errors.New("ambiguous extension choice")
	ErrDuplicate          = errors.New("duplicate ingestion")
	ErrTransport          = errors.New("transport failure")
)

// Wrap tags an error with a sentinel marker and file/operation context. The
// marker should be one of the exported sentinels above.
func Wrap(marker error, filename, operation, message string, err error) error {
	detail := buildDetail(filename, operation, message)
	if marker == nil {
		marker = ErrParse
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

func buildDetail(filename, operation, message string) string {
	parts := make([]string, 0, 3)
	if filename = strings.TrimSpace(filename); filename != "" {
		parts = append(parts, filename)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "ingestion failure"
	}
	return strings.Join(parts, ": ")
}
