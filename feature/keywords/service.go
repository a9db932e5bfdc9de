package keywords

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"

	"project-aggregator/core/documents"
	"project-aggregator/core/fanin"
	"project-aggregator/core/flow"

	"go.uber.org/zap"
)

// Group is the fan-out group of per-project keyword siblings.
const Group = "keywords"

// Keyword sources combined by Aggregate.
const (
	SourcePyPI          = "pypi"
	SourceGitHub        = "github"
	SourceStackOverflow = "stackoverflow"
)

var separators = regexp.MustCompile(`[\s+,;]`)

// Extract counts the keywords of a PyPI keyword string. Keywords are
// separated by whitespace, '+', ',' or ';' and counted lower-cased.
func Extract(keywords string) fanin.Counts {
	counts := fanin.Counts{}
	for _, keyword := range separators.Split(keywords, -1) {
		keyword = fanin.NormalizeKey(keyword)
		if keyword == "" {
			continue
		}
		counts[keyword]++
	}
	return counts
}

// TagSource provides externally counted tags.
type TagSource interface {
	Tags(ctx context.Context) (map[string]int, error)
}

// Service builds the aggregated keyword table.
type Service struct {
	info     *documents.ProjectInfoStore
	topics   *documents.TopicsStore
	keywords *documents.KeywordsStore
	tags     TagSource
	logger   *zap.Logger
}

// NewService creates a new keywords service. tags may be nil.
func NewService(stores *documents.Stores, tags TagSource, logger *zap.Logger) *Service {
	return &Service{
		info:     stores.ProjectInfo,
		topics:   stores.Topics,
		keywords: stores.Keywords,
		tags:     tags,
		logger:   logger,
	}
}

// ProjectKeywords counts the keywords of the stored info of project.
func (s *Service) ProjectKeywords(ctx context.Context, project string) (fanin.Counts, error) {
	info, err := s.info.RetrieveProjectInfo(ctx, project)
	if err != nil {
		return nil, err
	}
	return Extract(info.Info.Keywords), nil
}

// Job is the per-project keyword sibling job.
func (s *Service) Job() flow.Job {
	return flow.JobFunc(func(ctx context.Context, args documents.Args) (any, error) {
		return s.ProjectKeywords(ctx, args.Entity)
	})
}

// Reduce merges the tables of a completed keywords group.
func (s *Service) Reduce(ctx context.Context, results fanin.Results) (fanin.Counts, error) {
	return fanin.MergeCounts(ctx, fanin.NewIterator[fanin.Counts](results, Group, nil))
}

func infoKeywords(raw []byte) (fanin.Counts, error) {
	var info documents.ProjectInfo
	if err := json.Unmarshal(raw, &info); err != nil {
		return nil, err
	}
	return Extract(info.Info.Keywords), nil
}

func topicKeywords(raw []byte) (fanin.Counts, error) {
	var doc documents.Topics
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	counts := fanin.Counts{}
	for _, topic := range doc.Topics {
		counts[topic]++
	}
	return counts, nil
}

// FromProjectInfo counts the keywords of every stored project info document.
func (s *Service) FromProjectInfo(ctx context.Context) (fanin.Counts, error) {
	group, err := s.info.Group(s.info.Args(""))
	if err != nil {
		return nil, err
	}
	return fanin.MergeCounts(ctx, fanin.NewIterator[fanin.Counts](group, SourcePyPI, infoKeywords))
}

// FromTopics counts the topics of every stored topics document.
func (s *Service) FromTopics(ctx context.Context) (fanin.Counts, error) {
	group, err := s.topics.Group(documents.Args{})
	if err != nil {
		return nil, err
	}
	return fanin.MergeCounts(ctx, fanin.NewIterator[fanin.Counts](group, SourceGitHub, topicKeywords))
}

// FromStackOverflow returns the StackOverflow tag counts, or an empty table
// when no tag source is configured.
func (s *Service) FromStackOverflow(ctx context.Context) (fanin.Counts, error) {
	if s.tags == nil {
		return fanin.Counts{}, nil
	}
	tags, err := s.tags.Tags(ctx)
	if err != nil {
		return nil, err
	}
	return fanin.Counts(tags), nil
}

// Combine sums keyword tables coming from several sources.
func Combine(tables ...fanin.Counts) (fanin.Counts, error) {
	total := fanin.Counts{}
	for i, table := range tables {
		if err := total.Add(table); err != nil {
			return nil, fmt.Errorf("keyword source %d: %w", i, err)
		}
	}
	return total, nil
}

// Collect counts the named sources and combines them.
func (s *Service) Collect(ctx context.Context, sources []string) (fanin.Counts, error) {
	tables := make([]fanin.Counts, 0, len(sources))
	for _, name := range sources {
		var (
			table fanin.Counts
			err   error
		)
		switch name {
		case SourcePyPI:
			table, err = s.FromProjectInfo(ctx)
		case SourceGitHub:
			table, err = s.FromTopics(ctx)
		case SourceStackOverflow:
			table, err = s.FromStackOverflow(ctx)
		default:
			return nil, fmt.Errorf("unknown keyword source %q", name)
		}
		if err != nil {
			return nil, fmt.Errorf("keyword source %s: %w", name, err)
		}
		s.logger.Info("Counted keyword source", zap.String("source", name), zap.Int("keywords", len(table)))
		tables = append(tables, table)
	}
	return Combine(tables...)
}

// Store replaces the aggregated keyword table. It returns the key written.
func (s *Service) Store(ctx context.Context, counts fanin.Counts) (string, error) {
	key, err := s.keywords.StoreKeywords(ctx, counts)
	if err != nil {
		return "", fmt.Errorf("store keywords: %w", err)
	}
	s.logger.Info("Stored keyword table", zap.String("key", key), zap.Int("keywords", len(counts)))
	return key, nil
}
