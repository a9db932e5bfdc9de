package travis

import (
	"context"
	"fmt"
	"strconv"

	"project-aggregator/core/documents"
	"project-aggregator/core/fanin"
	"project-aggregator/core/flow"
	"project-aggregator/core/source"

	"go.uber.org/zap"
)

// Fan-out groups of a log collection, in execution order.
const (
	CountsGroup = "travis-builds-count"
	BuildsGroup = "travis-builds"
	LogsGroup   = "travis-logs"
)

const (
	orgArg    = "organization"
	offsetArg = "offset"
)

// BuildRef addresses one finished build of a repository.
type BuildRef struct {
	Organization string  `json:"organization"`
	Repo         string  `json:"repo"`
	Build        int64   `json:"build"`
	Jobs         []int64 `json:"jobs"`
}

// JobLog is the cleaned log of one build job.
type JobLog struct {
	Organization string `json:"organization"`
	Repo         string `json:"repo"`
	Build        int64  `json:"build"`
	Job          int64  `json:"job"`
	Log          string `json:"log"`
}

// LogsResult summarizes the logs stored for one build.
type LogsResult struct {
	Key  string `json:"key"`
	Jobs int    `json:"jobs"`
}

// Service collects CI build logs.
type Service struct {
	travis *source.Travis
	logs   *documents.Store
	logger *zap.Logger
}

// NewService creates a new Travis service storing build logs under
// logsPrefix, one document per build.
func NewService(travis *source.Travis, backend documents.Backend, logsPrefix string, logger *zap.Logger) *Service {
	return &Service{
		travis: travis,
		logs:   documents.NewStore("TravisLogsStore", backend, documents.EntityKeyed(logsPrefix, false)),
		logger: logger,
	}
}

// Repositories returns one Args per active repository of org.
func (s *Service) Repositories(ctx context.Context, org string) ([]documents.Args, error) {
	repos, err := s.travis.ActiveRepos(ctx, org)
	if err != nil {
		return nil, fmt.Errorf("active repositories of %q: %w", org, err)
	}
	s.logger.Info("Listed active repositories", zap.String("organization", org), zap.Int("count", len(repos)))
	return flow.Entities(documents.Args{}.With(orgArg, org), repos), nil
}

// CountJob returns the number of builds of the repository in args.
func (s *Service) CountJob() flow.Job {
	return flow.JobFunc(func(ctx context.Context, args documents.Args) (any, error) {
		return s.travis.BuildsCount(ctx, args.Get(orgArg), args.Entity)
	})
}

// Offsets expands each repository into one Args per build offset, keeping at
// most maxBuilds offsets per repository when maxBuilds is positive. counts[i]
// is the build count of repos[i].
func Offsets(repos []documents.Args, counts []int, maxBuilds int) ([]documents.Args, error) {
	if len(repos) != len(counts) {
		return nil, fmt.Errorf("%d repositories but %d build counts", len(repos), len(counts))
	}
	var items []documents.Args
	for i, repo := range repos {
		n := counts[i]
		if maxBuilds > 0 && n > maxBuilds {
			n = maxBuilds
		}
		for offset := 0; offset < n; offset++ {
			items = append(items, repo.With(offsetArg, strconv.Itoa(offset)))
		}
	}
	return items, nil
}

// BuildsJob returns the finished builds at the offset in args.
func (s *Service) BuildsJob() flow.Job {
	return flow.JobFunc(func(ctx context.Context, args documents.Args) (any, error) {
		offset, err := strconv.Atoi(args.Get(offsetArg))
		if err != nil {
			return nil, fmt.Errorf("invalid build offset %q: %w", args.Get(offsetArg), err)
		}
		org := args.Get(orgArg)
		builds, err := s.travis.Builds(ctx, org, args.Entity, offset)
		if err != nil {
			return nil, err
		}
		refs := make([]BuildRef, 0, len(builds))
		for _, b := range builds {
			refs = append(refs, BuildRef{Organization: org, Repo: args.Entity, Build: b.ID, Jobs: b.Jobs})
		}
		return refs, nil
	})
}

// DownloadLogs fetches and cleans the log of every job of ref.
func (s *Service) DownloadLogs(ctx context.Context, ref BuildRef) ([]JobLog, error) {
	logs := make([]JobLog, 0, len(ref.Jobs))
	for _, job := range ref.Jobs {
		raw, err := s.travis.JobLog(ctx, job)
		if err != nil {
			return nil, err
		}
		logs = append(logs, JobLog{
			Organization: ref.Organization,
			Repo:         ref.Repo,
			Build:        ref.Build,
			Job:          job,
			Log:          source.CleanLog(raw),
		})
	}
	return logs, nil
}

// StoreLogs downloads the logs of ref and stores them under the build id.
func (s *Service) StoreLogs(ctx context.Context, ref BuildRef) (LogsResult, error) {
	logs, err := s.DownloadLogs(ctx, ref)
	if err != nil {
		return LogsResult{}, err
	}
	key, err := s.logs.Store(ctx, documents.Args{Entity: strconv.FormatInt(ref.Build, 10)}, logs)
	if err != nil {
		return LogsResult{}, fmt.Errorf("store logs of build %d: %w", ref.Build, err)
	}
	s.logger.Debug("Stored build logs", zap.Int64("build", ref.Build), zap.Int("jobs", len(logs)), zap.String("key", key))
	return LogsResult{Key: key, Jobs: len(logs)}, nil
}

// RetrieveLogs reads the stored logs of build.
func (s *Service) RetrieveLogs(ctx context.Context, build int64) ([]JobLog, error) {
	var logs []JobLog
	err := s.logs.Retrieve(ctx, documents.Args{Entity: strconv.FormatInt(build, 10)}, &logs)
	return logs, err
}

// LogsJob downloads and stores the logs of the build in args.
func (s *Service) LogsJob() flow.Job {
	return flow.JobFunc(func(ctx context.Context, args documents.Args) (any, error) {
		ref, err := decodeRef(args)
		if err != nil {
			return nil, err
		}
		return s.StoreLogs(ctx, ref)
	})
}

func buildArgs(ref BuildRef) documents.Args {
	args := documents.Args{Entity: strconv.FormatInt(ref.Build, 10)}.
		With(orgArg, ref.Organization).
		With("repo", ref.Repo)
	for i, job := range ref.Jobs {
		args = args.With("job."+strconv.Itoa(i), strconv.FormatInt(job, 10))
	}
	return args
}

func decodeRef(args documents.Args) (BuildRef, error) {
	build, err := strconv.ParseInt(args.Entity, 10, 64)
	if err != nil {
		return BuildRef{}, fmt.Errorf("invalid build id %q: %w", args.Entity, err)
	}
	ref := BuildRef{Organization: args.Get(orgArg), Repo: args.Get("repo"), Build: build}
	for i := 0; ; i++ {
		raw, ok := args.Extra["job."+strconv.Itoa(i)]
		if !ok {
			break
		}
		job, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return BuildRef{}, fmt.Errorf("invalid job id %q: %w", raw, err)
		}
		ref.Jobs = append(ref.Jobs, job)
	}
	return ref, nil
}

// Summary reports a log collection.
type Summary struct {
	Repositories int `json:"repositories"`
	Builds       int `json:"builds"`
	Jobs         int `json:"jobs"`
}

// Collect runs the whole log collection of org: build counts per
// repository, finished builds per offset, then logs per build. Each stage is
// a fan-out group expanded from the results of the previous one.
func (s *Service) Collect(ctx context.Context, runner *flow.Runner, org string, maxBuilds int) (Summary, error) {
	repos, err := s.Repositories(ctx, org)
	if err != nil {
		return Summary{}, err
	}

	countResults, err := runner.FanOut(ctx, CountsGroup, repos, s.CountJob())
	if err != nil {
		return Summary{}, err
	}
	counts, err := fanin.NewIterator[int](countResults, CountsGroup, nil).Collect(ctx)
	if err != nil {
		return Summary{}, err
	}
	offsets, err := Offsets(repos, counts, maxBuilds)
	if err != nil {
		return Summary{}, err
	}

	buildResults, err := runner.FanOut(ctx, BuildsGroup, offsets, s.BuildsJob())
	if err != nil {
		return Summary{}, err
	}
	pages, err := fanin.NewIterator[[]BuildRef](buildResults, BuildsGroup, nil).Collect(ctx)
	if err != nil {
		return Summary{}, err
	}
	var builds []documents.Args
	for _, page := range pages {
		for _, ref := range page {
			builds = append(builds, buildArgs(ref))
		}
	}

	logResults, err := runner.FanOut(ctx, LogsGroup, builds, s.LogsJob())
	if err != nil {
		return Summary{}, err
	}
	stored, err := fanin.NewIterator[LogsResult](logResults, LogsGroup, nil).Collect(ctx)
	if err != nil {
		return Summary{}, err
	}

	summary := Summary{Repositories: len(repos), Builds: len(stored)}
	for _, r := range stored {
		summary.Jobs += r.Jobs
	}
	s.logger.Info("Collected build logs",
		zap.String("organization", org),
		zap.Int("repositories", summary.Repositories),
		zap.Int("builds", summary.Builds),
		zap.Int("jobs", summary.Jobs))
	return summary, nil
}
