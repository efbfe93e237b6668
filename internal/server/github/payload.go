// Package github converts GitHub webhook deliveries into registry
// submissions.
package github

import (
	"fmt"
	"strings"

	"github.com/dmitrijs2005/rdb/internal/common"
	"github.com/dmitrijs2005/rdb/internal/server/models"
)

// Values of the X-GitHub-Event header the registry understands.
const (
	EventHeader  = "X-GitHub-Event"
	EventPing    = "ping"
	EventRelease = "release"
)

const (
	MessageDeleted = "Deleted releases are ignored by rdb.\n" +
		"To overwrite release information, submit a new release.\n" +
		"To delete your mod from rdb, contact the registry maintainer."
	MessageBadFormat = "Bad format. Did you have a release asset?"
)

type Repository struct {
	FullName    string  `json:"full_name"`
	Description *string `json:"description"`
	Homepage    *string `json:"homepage"`
}

type Asset struct {
	BrowserDownloadURL string `json:"browser_download_url"`
}

type Release struct {
	TagName string  `json:"tag_name"`
	Assets  []Asset `json:"assets"`
}

// PingPayload is sent once when the webhook is created.
type PingPayload struct {
	Repository Repository `json:"repository"`
}

// ReleasePayload is sent for every release action.
type ReleasePayload struct {
	Action     string     `json:"action"`
	Repository Repository `json:"repository"`
	Release    Release    `json:"release"`
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func (r Repository) split() (owner, name string, ok bool) {
	return models.SplitIdentity(r.FullName)
}

func (r Repository) homepage() string {
	if h := strings.TrimSpace(deref(r.Homepage)); h != "" {
		return h
	}
	return fmt.Sprintf("https://github.com/%s#readme", r.FullName)
}

// Submission maps the release onto a submission authorized by secret.
// Deleted releases and releases without assets are rejected here and never
// reach the pipeline.
func (p *ReleasePayload) Submission(secret string) (models.Submission, error) {
	if p.Action == "deleted" {
		return models.Submission{}, common.Validation(MessageDeleted)
	}

	owner, name, ok := p.Repository.split()
	if !ok || len(p.Release.Assets) == 0 {
		return models.Submission{}, common.Validation(MessageBadFormat)
	}

	binaries := make([]string, 0, len(p.Release.Assets))
	for _, a := range p.Release.Assets {
		binaries = append(binaries, a.BrowserDownloadURL)
	}

	return models.Submission{
		Name:        name,
		Owner:       owner,
		Secret:      secret,
		Description: deref(p.Repository.Description),
		Homepage:    p.Repository.homepage(),
		Version:     p.Release.TagName,
		Icon:        fmt.Sprintf("https://raw.githubusercontent.com/%s/%s/icon.png", p.Repository.FullName, p.Release.TagName),
		Binaries:    binaries,
	}, nil
}

// Preview renders what the next release of the repository will publish.
func (p *PingPayload) Preview() (string, error) {
	owner, name, ok := p.Repository.split()
	if !ok {
		return "", common.Validation(MessageBadFormat)
	}

	var b strings.Builder
	b.WriteString("Successfully connected to rdb! The next release you create or edit will be synced to rdb.\n\n")
	b.WriteString("Current (unpublished) information:\n")
	fmt.Fprintf(&b, "    name            %s\n", name)
	fmt.Fprintf(&b, "    owner           %s\n", owner)
	fmt.Fprintf(&b, "    description     %s\n", deref(p.Repository.Description))
	fmt.Fprintf(&b, "    icon            https://raw.githubusercontent.com/%s/{tag name}/icon.png\n", p.Repository.FullName)
	fmt.Fprintf(&b, "    homepage        %s\n", p.Repository.homepage())
	b.WriteString("    version         --\n")
	b.WriteString("    binaries        --\n")
	return b.String(), nil
}
