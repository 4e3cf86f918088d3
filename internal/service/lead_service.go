package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/lead-service/internal/cache"
	"github.com/spec-kit/lead-service/internal/domain"
	"github.com/spec-kit/lead-service/internal/events"
	"github.com/spec-kit/lead-service/internal/query"
	"github.com/spec-kit/lead-service/internal/repository"
	"github.com/spec-kit/lead-service/internal/validation"
	apperrors "github.com/spec-kit/lead-service/pkg/util"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// LeadInput is the full lead payload used by both create and update;
// update deliberately has no partial form.
type LeadInput struct {
	FirstName      string
	LastName       string
	Email          string
	Phone          string
	Company        string
	City           string
	State          string
	Source         domain.LeadSource
	Status         domain.LeadStatus
	Score          int
	LeadValue      float64
	IsQualified    bool
	LastActivityAt *time.Time
}

// ListInput describes one list retrieval.
type ListInput struct {
	Page      int
	Limit     int
	Search    string
	Filters   map[string]any
	SortBy    string
	SortOrder string
}

// Pagination summarizes a page window over the total match count.
type Pagination struct {
	Page        int   `json:"page"`
	Limit       int   `json:"limit"`
	Total       int64 `json:"total"`
	TotalPages  int   `json:"totalPages"`
	HasNextPage bool  `json:"hasNextPage"`
	HasPrevPage bool  `json:"hasPrevPage"`
}

// LeadService composes retrieval and mutation of lead records.
type LeadService struct {
	leads      repository.LeadRepository
	statsCache *cache.StatsCache
	dispatcher events.Dispatcher
}

// NewLeadService constructs the service. statsCache and dispatcher may
// be nil.
func NewLeadService(leads repository.LeadRepository, statsCache *cache.StatsCache, dispatcher events.Dispatcher) *LeadService {
	return &LeadService{leads: leads, statsCache: statsCache, dispatcher: dispatcher}
}

// List returns one page of leads matching search and filters, with
// creator references expanded.
func (s *LeadService) List(ctx context.Context, input ListInput) ([]domain.Lead, Pagination, error) {
	page := input.Page
	if page < 1 {
		page = 1
	}
	limit := input.Limit
	if limit < 1 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}

	leadQuery := repository.LeadQuery{
		Search:     input.Search,
		Predicates: query.Compile(input.Filters),
		SortBy:     input.SortBy,
		SortOrder:  input.SortOrder,
		Limit:      limit,
		Offset:     (page - 1) * limit,
	}

	leads, total, err := s.leads.List(ctx, leadQuery)
	if err != nil {
		return nil, Pagination{}, err
	}
	if leads == nil {
		leads = []domain.Lead{}
	}

	totalPages := int((total + int64(limit) - 1) / int64(limit))
	pagination := Pagination{
		Page:        page,
		Limit:       limit,
		Total:       total,
		TotalPages:  totalPages,
		HasNextPage: int64(page)*int64(limit) < total,
		HasPrevPage: page > 1,
	}
	return leads, pagination, nil
}

// Get fetches a single lead by id.
func (s *LeadService) Get(ctx context.Context, id string) (*domain.Lead, error) {
	lead, err := s.leads.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("lead")
		}
		return nil, err
	}
	return lead, nil
}

// Stats returns collection-wide aggregates, serving from the cache when
// a fresh snapshot exists.
func (s *LeadService) Stats(ctx context.Context) (*domain.LeadStats, error) {
	if stats, ok := s.statsCache.Get(ctx); ok {
		return stats, nil
	}
	stats, err := s.leads.Stats(ctx)
	if err != nil {
		return nil, err
	}
	s.statsCache.Set(ctx, stats)
	return stats, nil
}

// Create validates the payload and persists a new lead stamped with the
// creating user.
func (s *LeadService) Create(ctx context.Context, userID string, input LeadInput) (*domain.Lead, error) {
	input = normalizeLeadInput(input)
	if v := validateLead(input); !v.Empty() {
		return nil, apperrors.NewValidationError("lead payload invalid", v)
	}

	lead := leadFromInput(input)
	lead.CreatedBy = userID
	if err := s.leads.Create(ctx, lead); err != nil {
		return nil, err
	}

	s.statsCache.Invalidate(ctx)
	s.publish(ctx, events.Event{
		Type:    events.EventLeadCreated,
		LeadID:  lead.ID,
		ActorID: userID,
		Payload: events.LeadCreatedPayload{Email: lead.Email, Source: lead.Source, Status: lead.Status},
	})
	return s.Get(ctx, lead.ID)
}

// Update re-validates the full payload and rewrites every mutable
// field. createdAt and createdBy are immutable.
func (s *LeadService) Update(ctx context.Context, userID, id string, input LeadInput) (*domain.Lead, error) {
	input = normalizeLeadInput(input)
	if v := validateLead(input); !v.Empty() {
		return nil, apperrors.NewValidationError("lead payload invalid", v)
	}

	existing, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	lead := leadFromInput(input)
	lead.ID = id
	if err := s.leads.Update(ctx, lead); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("lead")
		}
		return nil, err
	}

	s.statsCache.Invalidate(ctx)
	s.publish(ctx, events.Event{
		Type:    events.EventLeadUpdated,
		LeadID:  id,
		ActorID: userID,
		Payload: events.LeadUpdatedPayload{OldStatus: existing.Status, NewStatus: lead.Status},
	})
	return s.Get(ctx, id)
}

// Delete hard-deletes a lead.
func (s *LeadService) Delete(ctx context.Context, userID, id string) error {
	existing, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.leads.Delete(ctx, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("lead")
		}
		return err
	}

	s.statsCache.Invalidate(ctx)
	s.publish(ctx, events.Event{
		Type:    events.EventLeadDeleted,
		LeadID:  id,
		ActorID: userID,
		Payload: events.LeadDeletedPayload{Email: existing.Email},
	})
	return nil
}

func normalizeLeadInput(input LeadInput) LeadInput {
	input.FirstName = strings.TrimSpace(input.FirstName)
	input.LastName = strings.TrimSpace(input.LastName)
	input.Email = strings.TrimSpace(input.Email)
	input.Phone = strings.TrimSpace(input.Phone)
	input.Company = strings.TrimSpace(input.Company)
	input.City = strings.TrimSpace(input.City)
	input.State = strings.TrimSpace(input.State)
	if input.Status == "" {
		input.Status = domain.LeadStatusNew
	}
	return input
}

// validateLead collects every violated rule, shared by create and
// update.
func validateLead(input LeadInput) validation.Violations {
	var v validation.Violations
	v.Required("firstName", input.FirstName)
	v.MaxLen("firstName", input.FirstName, 50)
	v.Required("lastName", input.LastName)
	v.MaxLen("lastName", input.LastName, 50)
	v.Required("email", input.Email)
	v.MaxLen("email", input.Email, 100)
	v.Email("email", input.Email)
	v.Required("phone", input.Phone)
	v.Phone("phone", input.Phone)
	v.Required("company", input.Company)
	v.MaxLen("company", input.Company, 100)
	v.Required("city", input.City)
	v.MaxLen("city", input.City, 100)
	v.Required("state", input.State)
	v.MaxLen("state", input.State, 50)
	v.OneOf("source", string(input.Source), sourceNames())
	v.OneOf("status", string(input.Status), statusNames())
	v.IntRange("score", input.Score, 0, 100)
	v.NonNegative("leadValue", input.LeadValue)
	return v
}

func leadFromInput(input LeadInput) *domain.Lead {
	return &domain.Lead{
		FirstName:      input.FirstName,
		LastName:       input.LastName,
		Email:          input.Email,
		Phone:          input.Phone,
		Company:        input.Company,
		City:           input.City,
		State:          input.State,
		Source:         input.Source,
		Status:         input.Status,
		Score:          input.Score,
		LeadValue:      input.LeadValue,
		IsQualified:    input.IsQualified,
		LastActivityAt: input.LastActivityAt,
	}
}

func sourceNames() []string {
	names := make([]string, len(domain.LeadSources))
	for i, s := range domain.LeadSources {
		names[i] = string(s)
	}
	return names
}

func statusNames() []string {
	names := make([]string, len(domain.LeadStatuses))
	for i, s := range domain.LeadStatuses {
		names[i] = string(s)
	}
	return names
}

func (s *LeadService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}
