// Package github resolves the GitHub repository of packages through their
// gh_link prescriptions and mirrors repository topics.
package github
