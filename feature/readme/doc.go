// Package readme mirrors project READMEs from GitHub.
//
// The repository of a project comes from its stored PyPI info (home page or
// project URLs) or, failing that, from its gh_link prescription. The README
// itself is located with an ordered fallback over every markup GitHub
// renders, Markdown first, and stored as {type, content, package_name, url}.
package readme
