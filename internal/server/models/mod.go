// Package models defines the registry records persisted by the server and the
// values exchanged between its layers.
package models

import "strings"

// ModInfo is the mutable payload of a mod; it is replaced wholesale on every
// accepted submission.
type ModInfo struct {
	Binaries    []string `json:"binaries"`
	Version     string   `json:"version"`
	Description string   `json:"description"`
	Homepage    string   `json:"homepage"`
	Icon        string   `json:"icon"`
}

// ModEntry is one persisted registry record keyed by "owner/name".
type ModEntry struct {
	// ID is the "owner/name" identity. Immutable.
	ID string `json:"_id"`
	// Secret authorizes future writes. Set on creation only.
	Secret string `json:"secret"`
	// Search holds the space separated search tokens for ID.
	Search string `json:"search"`
	// Published and Updated are Unix seconds.
	Published int64 `json:"published"`
	Updated   int64 `json:"updated"`
	// Downloads is maintained by an external counter; nil until first counted.
	Downloads *int64  `json:"downloads,omitempty"`
	Info      ModInfo `json:"info"`
}

// Identity joins owner and name into the registry key.
func Identity(owner, name string) string {
	return owner + "/" + name
}

// SplitIdentity is the inverse of Identity.
func SplitIdentity(id string) (owner, name string, ok bool) {
	owner, name, ok = strings.Cut(id, "/")
	if !ok || owner == "" || name == "" || strings.Contains(name, "/") {
		return "", "", false
	}
	return owner, name, true
}

// PublicMod is the read-side view of a ModEntry. It never carries the secret.
type PublicMod struct {
	Name        string   `json:"name"`
	Owner       string   `json:"owner"`
	Published   int64    `json:"published"`
	Updated     int64    `json:"updated"`
	Downloads   int64    `json:"downloads"`
	Description string   `json:"description"`
	Homepage    string   `json:"homepage"`
	Version     string   `json:"version"`
	Icon        string   `json:"icon"`
	Binaries    []string `json:"binaries"`
}

// Public converts the entry to its public view.
func (m *ModEntry) Public() PublicMod {
	owner, name, _ := SplitIdentity(m.ID)

	var downloads int64
	if m.Downloads != nil {
		downloads = *m.Downloads
	}

	binaries := m.Info.Binaries
	if binaries == nil {
		binaries = []string{}
	}

	return PublicMod{
		Name:        name,
		Owner:       owner,
		Published:   m.Published,
		Updated:     m.Updated,
		Downloads:   downloads,
		Description: m.Info.Description,
		Homepage:    m.Info.Homepage,
		Version:     m.Info.Version,
		Icon:        m.Info.Icon,
		Binaries:    binaries,
	}
}
