package validation

import (
	"regexp"
	"strings"

	"github.com/dmitrijs2005/rdb/internal/common"
)

// MessageBinaryHost is returned for a binary URL that matches no allowed host.
const MessageBinaryHost = "binary URL must be a Google Drive file, GitHub release asset, or Discord attachment"

type rule struct {
	pattern *regexp.Regexp
	// rewrite maps the submatches of pattern to the stored URL. Nil keeps the
	// whole match.
	rewrite func(m []string) string
}

// Resolver canonicalizes binary URLs against a fixed allow-list. It is
// immutable once built and safe for concurrent use.
type Resolver struct {
	rules []rule
}

// NewResolver builds the allow-list. GitHub release assets are accepted only
// for repositories owned by one of githubOwners.
func NewResolver(githubOwners []string) *Resolver {
	quoted := make([]string, 0, len(githubOwners))
	for _, o := range githubOwners {
		quoted = append(quoted, regexp.QuoteMeta(o))
	}

	return &Resolver{rules: []rule{
		{
			pattern: regexp.MustCompile(`^https://drive\.google\.com/file/d/([\w-]+)`),
			rewrite: func(m []string) string {
				return "https://drive.google.com/uc?export=download&id=" + m[1]
			},
		},
		{
			pattern: regexp.MustCompile(`^https://drive\.google\.com/uc\?export=download&id=[\w-]+`),
		},
		{
			pattern: regexp.MustCompile(`^https://github\.com/(?:` + strings.Join(quoted, "|") + `)/[^/?#]+/releases/download/[^/?#]+/[^/?#]+`),
		},
		{
			pattern: regexp.MustCompile(`^https://cdn\.discordapp\.com/attachments/\d+/\d+/[^/?#]+`),
		},
	}}
}

// Resolve returns the stored form of raw. Rules are tried in order and the
// first match wins.
func (r *Resolver) Resolve(raw string) (string, error) {
	for _, rl := range r.rules {
		m := rl.pattern.FindStringSubmatch(raw)
		if m == nil {
			continue
		}
		if rl.rewrite != nil {
			return rl.rewrite(m), nil
		}
		return m[0], nil
	}
	return "", common.Validation(MessageBinaryHost)
}

// ResolveAll resolves every URL of binaries. One failure rejects them all.
func (r *Resolver) ResolveAll(binaries []string) ([]string, error) {
	out := make([]string, 0, len(binaries))
	for _, b := range binaries {
		resolved, err := r.Resolve(b)
		if err != nil {
			return nil, err
		}
		out = append(out, resolved)
	}
	return out, nil
}
