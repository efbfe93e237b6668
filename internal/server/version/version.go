// Package version parses and orders the semantic versions attached to mods
// and decides whether a submission may replace a stored entry.
package version

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/mod/semver"
)

// maxNumberDigits bounds numeric fields so Key can encode their length in two
// digits.
const maxNumberDigits = 99

var ErrInvalid = errors.New("invalid semantic version")

// Normalize trims v and strips a single leading "v" or "V".
func Normalize(v string) string {
	v = strings.TrimSpace(v)
	if len(v) > 0 && (v[0] == 'v' || v[0] == 'V') {
		v = v[1:]
	}
	return v
}

// Parse checks that v is a complete MAJOR.MINOR.PATCH[-pre][+build] version
// without a "v" prefix. Shorthands such as "1.2" are rejected.
func Parse(v string) error {
	sv := "v" + v
	if !semver.IsValid(sv) {
		return fmt.Errorf("%w: %q", ErrInvalid, v)
	}

	withoutBuild, _, _ := strings.Cut(sv, "+")
	if semver.Canonical(sv) != withoutBuild {
		return fmt.Errorf("%w: %q is not MAJOR.MINOR.PATCH", ErrInvalid, v)
	}

	core, _, _ := strings.Cut(withoutBuild[1:], "-")
	for _, part := range strings.Split(core, ".") {
		if len(part) > maxNumberDigits {
			return fmt.Errorf("%w: %q has a field longer than %d digits", ErrInvalid, v, maxNumberDigits)
		}
	}
	for _, ident := range prerelease(v) {
		if isNumeric(ident) && len(ident) > maxNumberDigits {
			return fmt.Errorf("%w: %q has a field longer than %d digits", ErrInvalid, v, maxNumberDigits)
		}
	}
	return nil
}

// Compare returns -1, 0 or +1 by semantic version precedence. Build metadata
// is ignored.
func Compare(a, b string) (int, error) {
	if err := Parse(a); err != nil {
		return 0, err
	}
	if err := Parse(b); err != nil {
		return 0, err
	}
	return semver.Compare("v"+a, "v"+b), nil
}

// Newer reports whether candidate has strictly higher precedence than stored.
// Unparseable input is never newer.
func Newer(candidate, stored string) bool {
	c, err := Compare(candidate, stored)
	return err == nil && c > 0
}

// Key encodes v so that comparing keys bytewise orders them like Compare.
// Versions of equal precedence share a key.
//
// Numbers become a two digit length followed by the digits. A release ends in
// "~", which sorts after the "-" that introduces a prerelease. Prerelease
// identifiers are separated by "!", numeric ones are prefixed with "0" and
// alphanumeric ones with "1".
func Key(v string) (string, error) {
	if err := Parse(v); err != nil {
		return "", err
	}

	withoutBuild, _, _ := strings.Cut(v, "+")
	core, _, _ := strings.Cut(withoutBuild, "-")

	var b strings.Builder
	for i, part := range strings.Split(core, ".") {
		if i > 0 {
			b.WriteByte('.')
		}
		writeNumber(&b, part)
	}

	pre := prerelease(v)
	if len(pre) == 0 {
		b.WriteByte('~')
		return b.String(), nil
	}

	b.WriteByte('-')
	for i, ident := range pre {
		if i > 0 {
			b.WriteByte('!')
		}
		if isNumeric(ident) {
			b.WriteByte('0')
			writeNumber(&b, ident)
		} else {
			b.WriteByte('1')
			b.WriteString(ident)
		}
	}
	return b.String(), nil
}

func writeNumber(b *strings.Builder, digits string) {
	fmt.Fprintf(b, "%02d%s", len(digits), digits)
}

func prerelease(v string) []string {
	pre := semver.Prerelease("v" + v)
	if pre == "" {
		return nil
	}
	return strings.Split(pre[1:], ".")
}

func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
