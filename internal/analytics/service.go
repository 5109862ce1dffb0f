package analytics

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"pulsemetrics/internal/pkg/async"
	"pulsemetrics/internal/projects"
	"pulsemetrics/internal/timerange"
)

// EventStore is the aggregation surface the service queries. *Store is the
// production implementation.
type EventStore interface {
	DimensionBreakdown(ctx context.Context, cond Condition, spec DimensionSpec) ([]BreakdownRow, error)
	EventSummary(ctx context.Context, cond Condition) ([]EventSummaryEntry, error)
	CountTotals(ctx context.Context, cond Condition) (Totals, error)
	Series(ctx context.Context, cond Condition, loc *time.Location) ([]SeriesRow, error)
	OnlineVisitors(ctx context.Context, projectID string, now time.Time) (int64, error)
}

// ProjectFinder resolves a project by its public UUID.
type ProjectFinder interface {
	FindByUUID(ctx context.Context, projectUUID string) (*projects.Project, error)
}

// MembershipChecker reports whether a user belongs to a project's team.
type MembershipChecker interface {
	IsMember(ctx context.Context, projectUUID, userUUID string) (bool, error)
}

// GetAnalyticsParams identifies one analytics request.
type GetAnalyticsParams struct {
	ProjectID   string
	Filter      string
	EventName   *string
	RequesterID string
}

// Service answers analytics queries. All aggregation for a request fans out
// through the worker pool and joins before assembly; any store failure fails
// the whole request rather than returning partial data.
type Service struct {
	store    EventStore
	projects ProjectFinder
	members  MembershipChecker
	pool     *async.Pool
	logger   *slog.Logger
	location *time.Location
	now      func() time.Time
}

func NewService(store EventStore, finder ProjectFinder, members MembershipChecker, pool *async.Pool, logger *slog.Logger, location *time.Location) *Service {
	if location == nil {
		location = time.UTC
	}
	return &Service{
		store:    store,
		projects: finder,
		members:  members,
		pool:     pool,
		logger:   logger,
		location: location,
		now:      time.Now,
	}
}

// WithClock overrides the service clock; intended for tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

const (
	taskEventSummary   = "eventSummary"
	taskCurrentTotals  = "currentTotals"
	taskPreviousTotals = "previousTotals"
	taskFrequency      = "frequency"
)

// GetAnalytics validates the request, checks access, then aggregates the
// project's events for the filter window. Membership is checked before any
// aggregation query runs, and a bad filter never reaches the store.
func (s *Service) GetAnalytics(ctx context.Context, params GetAnalyticsParams) (*Result, error) {
	if _, err := uuid.Parse(params.ProjectID); err != nil {
		return nil, NewInvalidProjectIDError(params.ProjectID)
	}

	project, err := s.projects.FindByUUID(ctx, params.ProjectID)
	if err != nil {
		var notFound *projects.ProjectNotFoundError
		if errors.As(err, &notFound) {
			return nil, NewNotFoundError(params.ProjectID)
		}
		s.logger.Error("project lookup failed",
			slog.String("project_id", params.ProjectID),
			slog.Any("error", err))
		return nil, NewStoreUnavailableError(err)
	}

	member, err := s.members.IsMember(ctx, params.ProjectID, params.RequesterID)
	if err != nil {
		s.logger.Error("membership lookup failed",
			slog.String("project_id", params.ProjectID),
			slog.Any("error", err))
		return nil, NewStoreUnavailableError(err)
	}
	if !member {
		return nil, NewForbiddenError()
	}

	filter := strings.ToLower(strings.TrimSpace(params.Filter))
	if filter == "" {
		filter = timerange.FilterToday
	}
	if !timerange.ValidToken(filter) {
		return nil, NewInvalidFilterError(filter)
	}

	now := s.now().In(s.location)
	current, previous, err := timerange.Resolve(filter, now)
	if err != nil {
		return nil, NewInvalidFilterError(filter)
	}

	currentCond := Condition{ProjectID: params.ProjectID, Range: current, EventName: params.EventName}
	previousCond := Condition{ProjectID: params.ProjectID, Range: previous, EventName: params.EventName}

	tasks := make([]async.Task, 0, len(Dimensions)+4)
	for _, spec := range Dimensions {
		spec := spec
		tasks = append(tasks, async.Task{
			Name: spec.Name,
			Execute: func(ctx context.Context) (interface{}, error) {
				return s.store.DimensionBreakdown(ctx, currentCond, spec)
			},
		})
	}
	tasks = append(tasks,
		async.Task{
			Name: taskEventSummary,
			Execute: func(ctx context.Context) (interface{}, error) {
				return s.store.EventSummary(ctx, currentCond)
			},
		},
		async.Task{
			Name: taskCurrentTotals,
			Execute: func(ctx context.Context) (interface{}, error) {
				return s.store.CountTotals(ctx, currentCond)
			},
		},
		async.Task{
			Name: taskPreviousTotals,
			Execute: func(ctx context.Context) (interface{}, error) {
				return s.store.CountTotals(ctx, previousCond)
			},
		},
		async.Task{
			Name: taskFrequency,
			Execute: func(ctx context.Context) (interface{}, error) {
				return s.store.Series(ctx, currentCond, s.location)
			},
		},
	)

	results := s.pool.Execute(ctx, tasks)
	if err := results.FirstError(); err != nil {
		s.logger.Error("analytics aggregation failed",
			slog.String("project_id", params.ProjectID),
			slog.String("filter", filter),
			slog.Any("error", err))
		return nil, NewStoreUnavailableError(err)
	}
	if len(results) != len(tasks) {
		return nil, NewStoreUnavailableError(ctx.Err())
	}

	online, err := s.store.OnlineVisitors(ctx, params.ProjectID, now)
	if err != nil {
		s.logger.Error("online visitor count failed",
			slog.String("project_id", params.ProjectID),
			slog.Any("error", err))
		return nil, NewStoreUnavailableError(err)
	}

	return s.assemble(project, filter, params.EventName, online, current, results), nil
}

func (s *Service) assemble(project *projects.Project, filter string, eventName *string, online int64, current timerange.Range, results async.Results) *Result {
	labeler := newLabeler()

	res := &Result{
		URL:            project.URL,
		Name:           project.Name,
		OnlineVisitors: online,
		Filter:         filter,
		EventName:      eventName,
	}

	for _, spec := range Dimensions {
		rows, _ := results[spec.Name].Data.([]BreakdownRow)
		entries := labeler.present(spec, rows)

		switch spec.Name {
		case "osSummary":
			res.OSSummary = entries
		case "deviceSummary":
			res.DeviceSummary = entries
		case "browserSummary":
			res.BrowserSummary = entries
		case "topPaths":
			res.TopPaths = entries
		case "topReferrers":
			res.TopReferrers = entries
		case "topHostnames":
			res.TopHostnames = entries
		case "topUtmSources":
			res.TopUtmSources = entries
		case "topCountries":
			res.TopCountries = entries
		case "topCities":
			res.TopCities = entries
		}
	}

	summary, _ := results[taskEventSummary].Data.([]EventSummaryEntry)
	if summary == nil {
		summary = []EventSummaryEntry{}
	}
	res.EventSummary = summary

	currentTotals, _ := results[taskCurrentTotals].Data.(Totals)
	previousTotals, _ := results[taskPreviousTotals].Data.(Totals)

	res.TotalVisits = currentTotals.TotalVisits
	res.UniqueVisitors = currentTotals.UniqueVisitors
	res.TotalVisitsChange = FormatChange(PercentChange(currentTotals.TotalVisits, previousTotals.TotalVisits))
	res.UniqueVisitorsChange = FormatChange(PercentChange(currentTotals.UniqueVisitors, previousTotals.UniqueVisitors))

	seriesRows, _ := results[taskFrequency].Data.([]SeriesRow)
	frequency := make([]FrequencyPoint, len(seriesRows))
	for i, row := range seriesRows {
		frequency[i] = FrequencyPoint{
			Time:           current.Bucket.FormatLabel(row.Bucket, s.location),
			TotalVisits:    row.TotalVisits,
			UniqueVisitors: row.UniqueVisitors,
		}
	}
	res.Frequency = frequency

	return res
}
