package project2vec

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode"

	"project-aggregator/core/documents"
	"project-aggregator/core/fanin"
	"project-aggregator/core/flow"
	"project-aggregator/core/storage"

	"go.uber.org/zap"
)

// Group is the fan-out group of per-project vector siblings.
const Group = "project2vec"

func isTokenRune(r rune) bool {
	if unicode.IsLetter(r) || unicode.IsDigit(r) {
		return true
	}
	switch r {
	case '-', '_', '.', '+', '#':
		return true
	}
	return false
}

// Tokenize returns the set of lower-cased word tokens of doc. Tokens keep
// inner punctuation common in technical terms ("c++", "asp.net",
// "machine-learning"); sentence dots are dropped.
func Tokenize(doc string) map[string]struct{} {
	tokens := make(map[string]struct{})
	for _, field := range strings.FieldsFunc(doc, func(r rune) bool { return !isTokenRune(r) }) {
		token := fanin.NormalizeKey(strings.Trim(field, "."))
		if token == "" {
			continue
		}
		tokens[token] = struct{}{}
	}
	return tokens
}

// Vectorize returns the binary hit vector of docs over vocabulary:
// component i is 1 when vocabulary[i] is a token of any document.
func Vectorize(vocabulary []string, docs ...string) []int {
	vector := make([]int, len(vocabulary))
	for _, doc := range docs {
		if doc == "" {
			continue
		}
		tokens := Tokenize(doc)
		for i, keyword := range vocabulary {
			if _, ok := tokens[keyword]; ok {
				vector[i] = 1
			}
		}
	}
	return vector
}

// Service builds the project2vec vector space.
type Service struct {
	info     *documents.ProjectInfoStore
	readmes  *documents.ReadmeStore
	keywords *documents.KeywordsStore
	vectors  *documents.VectorSpaceStore
	logger   *zap.Logger
}

// NewService creates a new project2vec service.
func NewService(stores *documents.Stores, logger *zap.Logger) *Service {
	return &Service{
		info:     stores.ProjectInfo,
		readmes:  stores.Readme,
		keywords: stores.Keywords,
		vectors:  stores.VectorSpace,
		logger:   logger,
	}
}

// Vocabulary returns the sorted keys of the aggregated keyword table.
func (s *Service) Vocabulary(ctx context.Context) ([]string, error) {
	counts, err := s.keywords.RetrieveKeywords(ctx)
	if err != nil {
		return nil, fmt.Errorf("vocabulary: %w", err)
	}
	return counts.Keys(), nil
}

// Documents returns the texts describing project: its PyPI description and
// its README. Either may be absent.
func (s *Service) Documents(ctx context.Context, project string) ([]string, error) {
	var docs []string

	info, err := s.info.RetrieveProjectInfo(ctx, project)
	switch {
	case err == nil:
		docs = append(docs, info.Info.Description)
	case !errors.Is(err, storage.ErrNotFound):
		return nil, err
	}

	readme, err := s.readmes.RetrieveReadme(ctx, project)
	switch {
	case err == nil:
		docs = append(docs, readme.Content)
	case !errors.Is(err, storage.ErrNotFound):
		return nil, err
	}
	return docs, nil
}

// ProjectVector computes the vector of project over vocabulary.
func (s *Service) ProjectVector(ctx context.Context, project string, vocabulary []string) (fanin.VectorEntry, error) {
	docs, err := s.Documents(ctx, project)
	if err != nil {
		return fanin.VectorEntry{}, err
	}
	if len(docs) == 0 {
		s.logger.Debug("No documents for project", zap.String("entity", project))
	}
	return fanin.VectorEntry{Name: project, Vector: Vectorize(vocabulary, docs...)}, nil
}

// Job is the per-project vector sibling job over a fixed vocabulary.
func (s *Service) Job(vocabulary []string) flow.Job {
	return flow.JobFunc(func(ctx context.Context, args documents.Args) (any, error) {
		return s.ProjectVector(ctx, args.Entity, vocabulary)
	})
}

// Reduce assembles a completed vector group into a vector space of the
// given width.
func (s *Service) Reduce(ctx context.Context, results fanin.Results, width int) (fanin.VectorSpace, error) {
	return fanin.AssembleVectorSpace(ctx, fanin.NewIterator[fanin.VectorEntry](results, Group, nil), width)
}

// Store persists the vector space and returns the metadata and matrix keys.
func (s *Service) Store(ctx context.Context, space fanin.VectorSpace) ([]string, error) {
	keys, err := s.vectors.StoreVectorSpace(ctx, space)
	if err != nil {
		return nil, fmt.Errorf("store vector space: %w", err)
	}
	s.logger.Info("Stored vector space",
		zap.Strings("keys", keys),
		zap.Int("projects", space.Len()),
		zap.Int("width", space.Width()))
	return keys, nil
}

// Build computes one vector per project as a fan-out group, reduces the
// group and stores the resulting space.
func (s *Service) Build(ctx context.Context, runner *flow.Runner, projects []string) (fanin.VectorSpace, []string, error) {
	vocabulary, err := s.Vocabulary(ctx)
	if err != nil {
		return fanin.VectorSpace{}, nil, err
	}

	results, err := runner.FanOut(ctx, Group, flow.Entities(documents.Args{}, projects), s.Job(vocabulary))
	if err != nil {
		return fanin.VectorSpace{}, nil, err
	}
	space, err := s.Reduce(ctx, results, len(vocabulary))
	if err != nil {
		return fanin.VectorSpace{}, nil, err
	}
	keys, err := s.Store(ctx, space)
	if err != nil {
		return fanin.VectorSpace{}, nil, err
	}
	return space, keys, nil
}
