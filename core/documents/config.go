package documents

// Config holds the key layout of every document kind.
type Config struct {
	// InfoPrefix is prepended to project info keys.
	InfoPrefix string `mapstructure:"info_prefix" default:""`
	// InfoNamespaced stores project info under {flow}/{task-category}/{name}
	// instead of {prefix}{name}.
	InfoNamespaced bool `mapstructure:"info_namespaced" default:"true"`
	// InfoFlow is the flow that owns project info documents.
	InfoFlow string `mapstructure:"info_flow" default:"pypiProjectInfo"`
	// InfoTask is the task that produces project info documents.
	InfoTask string `mapstructure:"info_task" default:"ProjectInfoTask"`
	// ReadmePrefix is the namespace of README documents.
	ReadmePrefix string `mapstructure:"readme_prefix" default:"readme/"`
	// TopicsPrefix is the namespace of GitHub topic documents.
	TopicsPrefix string `mapstructure:"topics_prefix" default:"github/topics/"`
	// LogsPrefix is the namespace of cleaned CI build logs.
	LogsPrefix string `mapstructure:"logs_prefix" default:"travis/logs/"`
	// SolverPrefix is the namespace of solver result documents.
	SolverPrefix string `mapstructure:"solver_prefix" default:"solver/"`
	// AnalysisPrefix is the namespace of analysis result documents.
	AnalysisPrefix string `mapstructure:"analysis_prefix" default:"analysis/"`
	// KeywordsKey is the key of the aggregated keyword table.
	KeywordsKey string `mapstructure:"keywords_key" default:"aggregates/keywords.json"`
	// VectorMetadataKey is the key of the vector space metadata table.
	VectorMetadataKey string `mapstructure:"vector_metadata_key" default:"aggregates/project2vec/metadata.tsv"`
	// VectorMatrixKey is the key of the vector space matrix.
	VectorMatrixKey string `mapstructure:"vector_matrix_key" default:"aggregates/project2vec/matrix.tsv"`
	// ResultsPrefix is the namespace of persisted sibling results.
	ResultsPrefix string `mapstructure:"results_prefix" default:"results/"`
}

// Stores groups the typed stores built from one configuration.
type Stores struct {
	ProjectInfo *ProjectInfoStore
	Readme      *ReadmeStore
	Topics      *TopicsStore
	Keywords    *KeywordsStore
	VectorSpace *VectorSpaceStore
}

// NewStores builds every typed store over backend.
func NewStores(cfg Config, backend Backend) *Stores {
	return &Stores{
		ProjectInfo: NewProjectInfoStore(backend, cfg),
		Readme:      NewReadmeStore(backend, cfg.ReadmePrefix),
		Topics:      NewTopicsStore(backend, cfg.TopicsPrefix),
		Keywords:    NewKeywordsStore(backend, cfg.KeywordsKey),
		VectorSpace: NewVectorSpaceStore(backend, cfg.VectorMetadataKey, cfg.VectorMatrixKey),
	}
}
