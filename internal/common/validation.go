package common

import (
	"fmt"
	"slices"
	"strings"

	"keyplan/internal/errors"
)

// NormalizeOutputFormat lowercases and trims the requested format and checks
// it against the configured formats. An empty supported list accepts any
// format; an empty format is always rejected.
func NormalizeOutputFormat(format string, supported []string) (string, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	if format == "" {
		return "", errors.NewValidationError(errors.ErrCodeInvalidFormat, "output format is empty", nil)
	}
	if len(supported) == 0 || slices.Contains(supported, format) {
		return format, nil
	}
	return "", errors.NewValidationError(errors.ErrCodeInvalidFormat,
		fmt.Sprintf("unsupported output format %q (choose one of: %s)", format, strings.Join(supported, ", ")), nil)
}
