package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeRepoURL(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
		ok   bool
	}{
		{
			name: "https",
			in:   "https://github.com/acme/widgets",
			want: "https://github.com/acme/widgets",
			ok:   true,
		},
		{
			name: "https with git suffix",
			in:   "https://github.com/acme/widgets.git",
			want: "https://github.com/acme/widgets",
			ok:   true,
		},
		{
			name: "ssh scp form",
			in:   "git@github.com:acme/widgets.git",
			want: "https://github.com/acme/widgets",
			ok:   true,
		},
		{
			name: "ssh url form",
			in:   "ssh://git@github.com/acme/widgets",
			want: "https://github.com/acme/widgets",
			ok:   true,
		},
		{
			name: "mixed case and whitespace",
			in:   "  HTTPS://GitHub.com/Acme/Widgets  ",
			want: "https://github.com/acme/widgets",
			ok:   true,
		},
		{
			name: "trailing slash",
			in:   "https://github.com/acme/widgets/",
			want: "https://github.com/acme/widgets",
			ok:   true,
		},
		{
			name: "bare host and path",
			in:   "github.com/acme/widgets",
			want: "https://github.com/acme/widgets",
			ok:   true,
		},
		{
			name: "self hosted",
			in:   "git@git.internal.example:platform/tools.git",
			want: "https://git.internal.example/platform/tools",
			ok:   true,
		},
		{name: "empty", in: "", ok: false},
		{name: "whitespace only", in: "   ", ok: false},
		{name: "missing repo segment", in: "https://github.com/acme", ok: false},
		{name: "ssh without path", in: "git@github.com", ok: false},
		{name: "host only", in: "github.com", ok: false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := NormalizeRepoURL(tc.in)
			assert.Equal(t, tc.ok, ok)
			if tc.ok {
				assert.Equal(t, tc.want, got.URL)
			}
		})
	}
}

// All spellings of the same repository must collapse to one canonical URL so
// the organization lookup hits a single row.
func TestNormalizeRepoURLEquivalence(t *testing.T) {
	spellings := []string{
		"https://github.com/acme/widgets",
		"https://github.com/acme/widgets.git",
		"http://github.com/acme/widgets",
		"git@github.com:acme/widgets.git",
		"git@github.com:acme/widgets",
		"ssh://git@github.com/acme/widgets.git",
		"HTTPS://GITHUB.COM/ACME/WIDGETS",
	}

	first, ok := NormalizeRepoURL(spellings[0])
	assert.True(t, ok)
	for _, s := range spellings[1:] {
		got, ok := NormalizeRepoURL(s)
		assert.True(t, ok, s)
		assert.Equal(t, first.URL, got.URL, s)
		assert.Equal(t, "acme", got.Owner, s)
		assert.Equal(t, "widgets", got.Repo, s)
	}
}
