package version

import "crypto/subtle"

// Verification is the decision taken for a submission against the stored
// entry with the same identity.
type Verification int

const (
	// NotFound: nothing is stored yet; the write creates the entry.
	NotFound Verification = iota
	// Failure: the secret does not match the stored one.
	Failure
	// Old: the secret matches but the version is not strictly newer.
	Old
	// Success: the write replaces the stored entry.
	Success
)

func (v Verification) String() string {
	switch v {
	case NotFound:
		return "not_found"
	case Failure:
		return "failure"
	case Old:
		return "old"
	case Success:
		return "success"
	default:
		return "unknown"
	}
}

// Record is the part of a stored entry that guards writes.
type Record struct {
	Secret  string
	Version string
}

// Verify decides whether a submission carrying secret and candidate may
// replace existing. A nil existing means nothing is stored.
func Verify(existing *Record, secret, candidate string) Verification {
	if existing == nil {
		return NotFound
	}
	if subtle.ConstantTimeCompare([]byte(existing.Secret), []byte(secret)) != 1 {
		return Failure
	}
	if !Newer(candidate, existing.Version) {
		return Old
	}
	return Success
}
