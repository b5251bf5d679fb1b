package service

import (
	"strings"
)

// NormalizedRepo is the canonical form of a repository reference: SSH and
// HTTPS spellings of the same repository collapse to one URL.
type NormalizedRepo struct {
	URL   string
	Owner string
	Repo  string
}

// NormalizeRepoURL lower-cases the input, rewrites the SSH form
// (git@host:owner/repo) to HTTPS, strips a trailing ".git" and slash, and
// requires at least owner and repo path segments. It returns false for
// anything it cannot canonicalize.
func NormalizeRepoURL(raw string) (NormalizedRepo, bool) {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "" {
		return NormalizedRepo{}, false
	}

	// SSH form: git@host:owner/repo
	if strings.HasPrefix(s, "git@") {
		rest := strings.TrimPrefix(s, "git@")
		host, path, ok := strings.Cut(rest, ":")
		if !ok || host == "" {
			return NormalizedRepo{}, false
		}
		s = host + "/" + path
	} else {
		s = strings.TrimPrefix(s, "https://")
		s = strings.TrimPrefix(s, "http://")
		s = strings.TrimPrefix(s, "ssh://git@")
	}

	s = strings.TrimSuffix(s, "/")
	s = strings.TrimSuffix(s, ".git")

	segments := strings.Split(s, "/")
	// host + at least two path segments
	if len(segments) < 3 {
		return NormalizedRepo{}, false
	}

	host := segments[0]
	owner := segments[1]
	repo := segments[2]
	if host == "" || owner == "" || repo == "" {
		return NormalizedRepo{}, false
	}

	return NormalizedRepo{
		URL:   "https://" + host + "/" + owner + "/" + repo,
		Owner: owner,
		Repo:  repo,
	}, true
}
