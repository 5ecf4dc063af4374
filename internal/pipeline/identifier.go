package pipeline

import (
	"regexp"
	"strings"

	"github.com/marktron/app-gaps/internal/apperr"
)

var (
	bareIDPattern = regexp.MustCompile(`^\d{7,12}$`)
	urlIDPattern  = regexp.MustCompile(`/id(\d{7,12})`)
)

// ExtractAppID normalizes caller input into a canonical App Store
// identifier. It accepts either a bare 7-12 digit id or any string
// containing a storefront "/id<digits>" path segment.
func ExtractAppID(input string) (string, error) {
	trimmed := strings.TrimSpace(input)

	if bareIDPattern.MatchString(trimmed) {
		return trimmed, nil
	}

	if m := urlIDPattern.FindStringSubmatch(trimmed); m != nil {
		return m[1], nil
	}

	return "", apperr.Validation("enter an App Store app ID or app URL")
}
