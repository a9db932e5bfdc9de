package resolve

import (
	"strings"
)

// MarkupType is a README markup with its file extensions, most common first.
type MarkupType struct {
	Name       string
	Extensions []string
}

// ReadmeTypes lists README markups in probing order, following
// https://github.com/github/markup#markups. The final entry matches a bare
// README without extension.
var ReadmeTypes = []MarkupType{
	{Name: "Markdown", Extensions: []string{"md", "markdown", "mdown", "mkdn"}},
	{Name: "reStructuredText", Extensions: []string{"rst"}},
	{Name: "AsciiDoc", Extensions: []string{"asciidoc", "adoc", "asc"}},
	{Name: "Textile", Extensions: []string{"textile"}},
	{Name: "RDoc", Extensions: []string{"rdoc"}},
	{Name: "Org", Extensions: []string{"org"}},
	{Name: "Creole", Extensions: []string{"creole"}},
	{Name: "MediaWiki", Extensions: []string{"mediawiki", "wiki"}},
	{Name: "Pod", Extensions: []string{"pod"}},
	{Name: "Unknown", Extensions: []string{""}},
}

// ReadmeCandidates returns one candidate per README markup and extension for
// project/repo under base, in ReadmeTypes order. Labels are markup names.
func ReadmeCandidates(base, project, repo, branch string) []Candidate {
	base = strings.TrimSuffix(base, "/")
	var out []Candidate
	for _, markup := range ReadmeTypes {
		for _, ext := range markup.Extensions {
			name := "README"
			if ext != "" {
				name += "." + ext
			}
			out = append(out, Candidate{
				Label:   markup.Name,
				Address: base + "/" + project + "/" + repo + "/" + branch + "/" + name,
			})
		}
	}
	return out
}

// PrefixCandidates returns the prescription locations of name under base.
// Prescriptions are sharded by a short name prefix whose length varies, so
// the two-character shard is tried first, then one and three characters.
// Duplicate shards (short names) are dropped.
func PrefixCandidates(base, name, file string) []Candidate {
	base = strings.TrimSuffix(base, "/")
	seen := make(map[string]bool, 3)
	var out []Candidate
	for _, n := range []int{2, 1, 3} {
		shard := firstRunes(name, n) + "_"
		if seen[shard] {
			continue
		}
		seen[shard] = true
		out = append(out, Candidate{
			Label:   shard,
			Address: base + "/" + shard + "/" + name + "/" + file,
		})
	}
	return out
}

func firstRunes(s string, n int) string {
	r := []rune(s)
	if len(r) < n {
		return s
	}
	return string(r[:n])
}
