package source

// Config holds configuration for the upstream data sources.
type Config struct {
	// PyPIURL is the base URL of the package index (simple and JSON APIs).
	PyPIURL string `mapstructure:"pypi_url" default:"https://pypi.org"`
	// GitHubRawURL serves raw repository files.
	GitHubRawURL string `mapstructure:"github_raw_url" default:"https://raw.githubusercontent.com"`
	// GitHubAPIURL is the GitHub REST API base URL.
	GitHubAPIURL string `mapstructure:"github_api_url" default:"https://api.github.com"`
	// GitHubToken authenticates GitHub requests. Unauthenticated requests are throttled.
	GitHubToken string `mapstructure:"github_token" default:""`
	// ReadmeBranch is the branch README files are read from.
	ReadmeBranch string `mapstructure:"readme_branch" default:"master"`
	// PrescriptionsURL is the root of the prescriptions tree holding gh_link.yaml files.
	PrescriptionsURL string `mapstructure:"prescriptions_url" default:"https://raw.githubusercontent.com/thoth-station/prescriptions/master/prescriptions"`
	// TravisURL is the Travis CI API v3 base URL.
	TravisURL string `mapstructure:"travis_url" default:"https://api.travis-ci.org"`
	// TravisToken authenticates Travis CI requests.
	TravisToken string `mapstructure:"travis_token" default:""`
	// StackOverflowTagsURL serves the uncompressed Tags.xml dump of the
	// StackOverflow data archive. Empty disables the tags source.
	StackOverflowTagsURL string `mapstructure:"stackoverflow_tags_url" default:""`
	// TimeoutSeconds bounds every upstream request.
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"30"`
	// CacheSize is the number of resolved repository links kept in memory.
	CacheSize int `mapstructure:"cache_size" default:"1024"`
}
