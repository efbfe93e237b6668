// Package validation turns untrusted submissions into normalized ones and
// canonicalizes their binary URLs. Nothing here has side effects.
package validation

import (
	"net/url"
	"strings"

	"github.com/dmitrijs2005/rdb/internal/common"
	"github.com/dmitrijs2005/rdb/internal/server/models"
	"github.com/dmitrijs2005/rdb/internal/server/version"
)

// Field bounds, in bytes.
const (
	MaxIdentityLen = 39
	MaxSecretLen   = 500
	MaxVersionLen  = 50
	MaxTextLen     = 500
)

// Normalize trims every string of s, strips a leading "v"/"V" from the
// version and checks the result. The first violated rule, in a fixed order,
// is returned as a validation error. s is left untouched.
func Normalize(s models.Submission) (models.Submission, error) {
	n := models.Submission{
		Name:        strings.TrimSpace(s.Name),
		Owner:       strings.TrimSpace(s.Owner),
		Secret:      strings.TrimSpace(s.Secret),
		Description: strings.TrimSpace(s.Description),
		Homepage:    strings.TrimSpace(s.Homepage),
		Version:     version.Normalize(s.Version),
		Icon:        strings.TrimSpace(s.Icon),
		Binaries:    make([]string, len(s.Binaries)),
	}
	for i, b := range s.Binaries {
		n.Binaries[i] = strings.TrimSpace(b)
	}

	if msg := violation(&n); msg != "" {
		return models.Submission{}, common.Validation(msg)
	}
	return n, nil
}

func violation(s *models.Submission) string {
	switch {
	case s.Name == "" || len(s.Name) > MaxIdentityLen:
		return "Name must be 1-39 bytes."
	case s.Owner == "" || len(s.Owner) > MaxIdentityLen:
		return "Owner must be 1-39 bytes."
	case s.Secret == "" || len(s.Secret) > MaxSecretLen:
		return "Secret must be 1-500 bytes."
	case s.Version == "" || len(s.Version) > MaxVersionLen:
		return "Version must be 1-50 bytes."
	case len(s.Description) > MaxTextLen:
		return "Description must be 500 bytes or less."
	case len(s.Homepage) > MaxTextLen:
		return "Homepage URL must be 500 bytes or less."
	case len(s.Icon) > MaxTextLen:
		return "Icon URL must be 500 bytes or less."
	case len(s.Binaries) == 0:
		return "At least one binary URL is required."
	}

	for _, b := range s.Binaries {
		if len(b) > MaxTextLen {
			return "Binary URL must be 500 bytes or less."
		}
	}

	switch {
	case !validIdentity(s.Name):
		return "Name must match [a-zA-Z0-9_-.]."
	case !validIdentity(s.Owner):
		return "Owner must match [a-zA-Z0-9_-.]."
	case version.Parse(s.Version) != nil:
		return "Version must comply with https://semver.org."
	case s.Homepage != "" && !isHTTPS(s.Homepage):
		return "Homepage must be a URL using the HTTPS scheme."
	case !isHTTPS(s.Icon):
		return "Icon must be a URL using the HTTPS scheme."
	}
	return ""
}

func validIdentity(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		case c == '.', c == '-', c == '_':
		default:
			return false
		}
	}
	return true
}

func isHTTPS(raw string) bool {
	u, err := url.Parse(raw)
	return err == nil && u.Scheme == "https" && u.Host != ""
}
