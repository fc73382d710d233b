package courtcase

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/JakeFAU/court-case-tracker/internal/metrics"
)

// Collaborator failure tags applied by RequestCrawl. The underlying error stays
// in the chain.
var (
	ErrPersistence = errors.New("persistence failure")
	ErrDispatch    = errors.New("dispatch failure")
)

// Service coordinates case persistence, status views and crawl dispatch.
type Service struct {
	repo       Repository
	dispatcher CrawlDispatcher
	logger     *zap.Logger
}

// NewService wires a Service to its collaborators.
func NewService(repo Repository, dispatcher CrawlDispatcher, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		repo:       repo,
		dispatcher: dispatcher,
		logger:     logger,
	}
}

// UpsertMany forwards the records verbatim. Empty input is a no-op.
func (s *Service) UpsertMany(ctx context.Context, cases []CourtCase) error {
	if len(cases) == 0 {
		return nil
	}
	return s.repo.UpsertMany(ctx, cases)
}

// ScheduleMany persists the records with their status forced to pending.
// Empty input is a no-op.
func (s *Service) ScheduleMany(ctx context.Context, cases []CourtCase) error {
	if len(cases) == 0 {
		return nil
	}
	pending := make([]CourtCase, len(cases))
	for i, c := range cases {
		c.CrawlStatus = StatusPending
		pending[i] = c
	}
	if err := s.repo.UpsertMany(ctx, pending); err != nil {
		return err
	}
	metrics.ObserveScheduled(len(pending))
	return nil
}

// FindByCaseNumbers returns whatever subset of records the repository holds.
func (s *Service) FindByCaseNumbers(ctx context.Context, caseNumbers []string) ([]CourtCase, error) {
	return s.repo.FindManyByCaseNumbers(ctx, caseNumbers)
}

// ComputeStatus merges known records with requested case numbers. Known
// records come first in their given order, followed by every requested case
// number without a known record, reported as scheduling.
func (s *Service) ComputeStatus(caseNumbers []string, known []CourtCase) []CaseStatus {
	out := make([]CaseStatus, 0, len(known)+len(caseNumbers))
	seen := make(map[string]struct{}, len(known))
	for _, c := range known {
		out = append(out, CaseStatus{CaseNumber: c.CaseNumber, CrawlStatus: c.CrawlStatus})
		seen[c.CaseNumber] = struct{}{}
	}
	for _, n := range caseNumbers {
		if _, ok := seen[n]; ok {
			continue
		}
		out = append(out, CaseStatus{CaseNumber: n, CrawlStatus: StatusScheduling})
	}
	return out
}

// BuildCrawlRequests parses every case number. A single malformed case number
// fails the whole batch.
func (s *Service) BuildCrawlRequests(caseNumbers []string) ([]CrawlRequest, error) {
	requests := make([]CrawlRequest, 0, len(caseNumbers))
	for _, n := range caseNumbers {
		req, err := ParseCrawlRequest(n)
		if err != nil {
			metrics.ObserveParseFailure(parseFailureReason(err))
			s.logger.Debug("case number rejected", zap.String("case_number", n), zap.Error(err))
			return nil, err
		}
		requests = append(requests, req)
	}
	return requests, nil
}

// DispatchCrawlRequests hands the requests to the crawl service.
func (s *Service) DispatchCrawlRequests(ctx context.Context, requests []CrawlRequest) error {
	return s.dispatcher.Dispatch(ctx, requests)
}

// Status looks up the case numbers and returns the merged status view.
func (s *Service) Status(ctx context.Context, caseNumbers []string) ([]CaseStatus, error) {
	known, err := s.FindByCaseNumbers(ctx, caseNumbers)
	if err != nil {
		return nil, err
	}
	return s.ComputeStatus(caseNumbers, known), nil
}

// RequestCrawl looks up the case numbers, dispatches crawl requests for the
// ones with no record and persists those as pending. The returned view is
// computed before scheduling, so new case numbers read as scheduling.
func (s *Service) RequestCrawl(ctx context.Context, caseNumbers []string) ([]CaseStatus, error) {
	known, err := s.FindByCaseNumbers(ctx, caseNumbers)
	if err != nil {
		return nil, fmt.Errorf("%w: find court cases: %w", ErrPersistence, err)
	}
	statuses := s.ComputeStatus(caseNumbers, known)

	unknown := unknownCaseNumbers(statuses[len(known):])
	if len(unknown) == 0 {
		return statuses, nil
	}

	requests, err := s.BuildCrawlRequests(unknown)
	if err != nil {
		return nil, err
	}
	if err := s.DispatchCrawlRequests(ctx, requests); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDispatch, err)
	}

	records := make([]CourtCase, len(requests))
	for i, r := range requests {
		records[i] = CourtCase{
			CaseNumber:    r.CaseNumber,
			ProcessNumber: r.ProcessNumber,
			OriginNumber:  r.OriginNumber,
			Court:         r.Court,
		}
	}
	if err := s.ScheduleMany(ctx, records); err != nil {
		return nil, fmt.Errorf("%w: schedule court cases: %w", ErrPersistence, err)
	}
	s.logger.Info("crawl requested",
		zap.Int("requested", len(caseNumbers)),
		zap.Int("known", len(known)),
		zap.Int("dispatched", len(requests)),
	)
	return statuses, nil
}

func unknownCaseNumbers(statuses []CaseStatus) []string {
	seen := make(map[string]struct{}, len(statuses))
	out := make([]string, 0, len(statuses))
	for _, st := range statuses {
		if _, ok := seen[st.CaseNumber]; ok {
			continue
		}
		seen[st.CaseNumber] = struct{}{}
		out = append(out, st.CaseNumber)
	}
	return out
}

func parseFailureReason(err error) string {
	switch {
	case errors.Is(err, ErrCourtNotRecognized):
		return "court"
	case errors.Is(err, ErrProcessNotRecognized):
		return "process"
	case errors.Is(err, ErrOriginUnitNotRecognized):
		return "origin_unit"
	default:
		return "unknown"
	}
}
