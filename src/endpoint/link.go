package endpoint

import (
	"fmt"
	"strings"

	"github.com/go-git/go-git/v5/plumbing/transport"
)

const (
	shieldsEndpoint = "https://img.shields.io/endpoint"
	rawGitHub       = "https://raw.githubusercontent.com"
)

// OwnerRepo extracts "owner/repo" from a git remote URL. SSH (scp-like and
// ssh://) and HTTP(S) forms are accepted; a trailing ".git" is dropped.
func OwnerRepo(remoteURL string) (string, error) {
	ep, err := transport.NewEndpoint(remoteURL)
	if err != nil {
		return "", fmt.Errorf("parsing remote url %q: %w", remoteURL, err)
	}

	p := strings.Trim(ep.Path, "/")
	p = strings.TrimSuffix(p, ".git")
	parts := strings.Split(p, "/")
	if len(parts) < 2 || parts[len(parts)-2] == "" || parts[len(parts)-1] == "" {
		return "", fmt.Errorf("remote url %q has no owner/repo path", remoteURL)
	}
	return parts[len(parts)-2] + "/" + parts[len(parts)-1], nil
}

// RawURL returns the raw.githubusercontent.com URL of the badge file on branch.
func RawURL(ownerRepo, branch, name string) string {
	return fmt.Sprintf("%s/%s/refs/heads/%s/%s", rawGitHub, ownerRepo, branch, Path(name))
}

// ImageURL returns the shields.io endpoint URL that renders the badge.
func ImageURL(ownerRepo, branch, name string) string {
	return shieldsEndpoint + "?url=" + RawURL(ownerRepo, branch, name)
}

// MarkdownLink formats the markdown image that embeds the badge.
func MarkdownLink(name, imageURL string) string {
	return fmt.Sprintf("![%s](%s)", name, imageURL)
}
