package flow

// Config holds configuration for the local runner and the flows it drives.
type Config struct {
	// Concurrency bounds how many siblings of a fan-out run at once.
	Concurrency int `mapstructure:"concurrency" default:"8"`
	// Persist stores sibling outputs in the object store instead of memory.
	Persist bool `mapstructure:"persist" default:"true"`
	// Limit caps the number of projects a flow fans out over. Zero means all.
	Limit int `mapstructure:"limit" default:"0"`
	// KeywordSources are the keyword tables combined into the vocabulary.
	KeywordSources []string `mapstructure:"keyword_sources" default:"pypi,github,stackoverflow"`
	// TravisOrganization owns the repositories whose build logs are collected.
	TravisOrganization string `mapstructure:"travis_organization" default:"thoth-station"`
	// MaxBuilds caps the builds collected per repository. Zero means all.
	MaxBuilds int `mapstructure:"max_builds" default:"0"`
}
