package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/lead-service/internal/domain"
	"github.com/spec-kit/lead-service/internal/repository"
	apperrors "github.com/spec-kit/lead-service/pkg/util"
)

// fakeLeadRepo keeps leads in memory and records the last list query so
// tests can assert on what the service asked for.
type fakeLeadRepo struct {
	leads      map[string]*domain.Lead
	nextID     int
	lastQuery  repository.LeadQuery
	listResult []domain.Lead
	listTotal  int64
	stats      *domain.LeadStats
}

func newFakeLeadRepo() *fakeLeadRepo {
	return &fakeLeadRepo{leads: map[string]*domain.Lead{}}
}

var creatorRef = domain.CreatorRef{FirstName: "Jane", LastName: "Doe", Email: "jane@acme.com"}

func (f *fakeLeadRepo) Create(_ context.Context, lead *domain.Lead) error {
	f.nextID++
	lead.ID = fmt.Sprintf("lead-%d", f.nextID)
	lead.CreatedAt = time.Now()
	lead.UpdatedAt = lead.CreatedAt
	stored := *lead
	f.leads[lead.ID] = &stored
	return nil
}

func (f *fakeLeadRepo) Update(_ context.Context, lead *domain.Lead) error {
	existing, ok := f.leads[lead.ID]
	if !ok {
		return pgx.ErrNoRows
	}
	lead.CreatedBy = existing.CreatedBy
	lead.CreatedAt = existing.CreatedAt
	lead.UpdatedAt = time.Now()
	stored := *lead
	f.leads[lead.ID] = &stored
	return nil
}

func (f *fakeLeadRepo) GetByID(_ context.Context, id string) (*domain.Lead, error) {
	lead, ok := f.leads[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *lead
	ref := creatorRef
	copied.Creator = &ref
	return &copied, nil
}

func (f *fakeLeadRepo) Delete(_ context.Context, id string) error {
	if _, ok := f.leads[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(f.leads, id)
	return nil
}

func (f *fakeLeadRepo) List(_ context.Context, q repository.LeadQuery) ([]domain.Lead, int64, error) {
	f.lastQuery = q
	return f.listResult, f.listTotal, nil
}

func (f *fakeLeadRepo) Stats(_ context.Context) (*domain.LeadStats, error) {
	if f.stats != nil {
		return f.stats, nil
	}
	return &domain.LeadStats{
		StatusStats: map[domain.LeadStatus]int64{},
		SourceStats: map[domain.LeadSource]int64{},
	}, nil
}

func validLeadInput() LeadInput {
	return LeadInput{
		FirstName: "Ada",
		LastName:  "Lovelace",
		Email:     "ada@analytical.io",
		Phone:     "+1 555 0100",
		Company:   "Analytical Engines",
		City:      "London",
		State:     "LDN",
		Source:    domain.LeadSourceReferral,
		Score:     72,
		LeadValue: 1500,
	}
}

func validationErrors(t *testing.T, err error) []string {
	t.Helper()
	var de *apperrors.DomainError
	require.ErrorAs(t, err, &de)
	require.Equal(t, "VALIDATION_FAILED", de.Code)
	raw, ok := de.Details["errors"].([]string)
	require.True(t, ok)
	return raw
}

func TestLeadService_ListPagination(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		total       int64
		page        int
		limit       int
		wantPages   int
		wantHasNext bool
		wantHasPrev bool
	}{
		{name: "first of several", total: 45, page: 1, limit: 20, wantPages: 3, wantHasNext: true, wantHasPrev: false},
		{name: "middle page", total: 45, page: 2, limit: 20, wantPages: 3, wantHasNext: true, wantHasPrev: true},
		{name: "last partial page", total: 45, page: 3, limit: 20, wantPages: 3, wantHasNext: false, wantHasPrev: true},
		{name: "exact multiple", total: 40, page: 2, limit: 20, wantPages: 2, wantHasNext: false, wantHasPrev: true},
		{name: "empty collection", total: 0, page: 1, limit: 20, wantPages: 0, wantHasNext: false, wantHasPrev: false},
		{name: "single item", total: 1, page: 1, limit: 20, wantPages: 1, wantHasNext: false, wantHasPrev: false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			repo := newFakeLeadRepo()
			repo.listTotal = tt.total
			svc := NewLeadService(repo, nil, nil)

			leads, pagination, err := svc.List(context.Background(), ListInput{Page: tt.page, Limit: tt.limit})
			require.NoError(t, err)
			assert.NotNil(t, leads)
			assert.Equal(t, tt.page, pagination.Page)
			assert.Equal(t, tt.total, pagination.Total)
			assert.Equal(t, tt.wantPages, pagination.TotalPages)
			assert.Equal(t, tt.wantHasNext, pagination.HasNextPage)
			assert.Equal(t, tt.wantHasPrev, pagination.HasPrevPage)
		})
	}
}

func TestLeadService_ListClampsWindow(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		page       int
		limit      int
		wantLimit  int
		wantOffset int
	}{
		{name: "defaults", page: 0, limit: 0, wantLimit: 20, wantOffset: 0},
		{name: "negative page", page: -3, limit: 10, wantLimit: 10, wantOffset: 0},
		{name: "limit capped at 100", page: 2, limit: 500, wantLimit: 100, wantOffset: 100},
		{name: "offset follows page", page: 4, limit: 25, wantLimit: 25, wantOffset: 75},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			repo := newFakeLeadRepo()
			svc := NewLeadService(repo, nil, nil)

			_, _, err := svc.List(context.Background(), ListInput{Page: tt.page, Limit: tt.limit})
			require.NoError(t, err)
			assert.Equal(t, tt.wantLimit, repo.lastQuery.Limit)
			assert.Equal(t, tt.wantOffset, repo.lastQuery.Offset)
		})
	}
}

func TestLeadService_ListCompilesFilters(t *testing.T) {
	t.Parallel()

	repo := newFakeLeadRepo()
	svc := NewLeadService(repo, nil, nil)

	_, _, err := svc.List(context.Background(), ListInput{
		Search: "acme",
		Filters: map[string]any{
			"status":  map[string]any{"operator": "in", "value": []any{"won", "lost"}},
			"bogus":   map[string]any{"operator": "equals", "value": "x"},
			"score":   map[string]any{"operator": "gt", "value": float64(50)},
			"company": "not-an-object",
		},
		SortBy:    "score",
		SortOrder: "asc",
	})
	require.NoError(t, err)

	assert.Equal(t, "acme", repo.lastQuery.Search)
	assert.Equal(t, "score", repo.lastQuery.SortBy)
	assert.Equal(t, "asc", repo.lastQuery.SortOrder)
	assert.Len(t, repo.lastQuery.Predicates, 2)
}

func TestLeadService_CreateThenGetRoundTrip(t *testing.T) {
	t.Parallel()

	repo := newFakeLeadRepo()
	svc := NewLeadService(repo, nil, nil)
	input := validLeadInput()

	created, err := svc.Create(context.Background(), "user-1", input)
	require.NoError(t, err)
	assert.Equal(t, "user-1", created.CreatedBy)
	assert.Equal(t, domain.LeadStatusNew, created.Status, "status defaults to new")
	assert.False(t, created.CreatedAt.IsZero())
	require.NotNil(t, created.Creator, "creator reference is expanded on read")

	fetched, err := svc.Get(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.FirstName, fetched.FirstName)
	assert.Equal(t, created.Email, fetched.Email)
	assert.Equal(t, created.Score, fetched.Score)
	assert.Equal(t, created.LeadValue, fetched.LeadValue)
	assert.Equal(t, created.CreatedBy, fetched.CreatedBy)
}

func TestLeadService_CreateValidation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(*LeadInput)
		wantMsg string
	}{
		{
			name:    "score above range",
			mutate:  func(in *LeadInput) { in.Score = 150 },
			wantMsg: "score must be between 0 and 100",
		},
		{
			name:    "negative lead value",
			mutate:  func(in *LeadInput) { in.LeadValue = -10 },
			wantMsg: "leadValue must be a non-negative number",
		},
		{
			name:    "unknown source",
			mutate:  func(in *LeadInput) { in.Source = "carrier_pigeon" },
			wantMsg: "source must be one of",
		},
		{
			name:    "unknown status",
			mutate:  func(in *LeadInput) { in.Status = "open" },
			wantMsg: "status must be one of",
		},
		{
			name:    "missing phone",
			mutate:  func(in *LeadInput) { in.Phone = "" },
			wantMsg: "phone is required",
		},
		{
			name:    "bad email",
			mutate:  func(in *LeadInput) { in.Email = "nope" },
			wantMsg: "email must be a valid email address",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			repo := newFakeLeadRepo()
			svc := NewLeadService(repo, nil, nil)
			input := validLeadInput()
			tt.mutate(&input)

			_, err := svc.Create(context.Background(), "user-1", input)
			violations := validationErrors(t, err)
			found := false
			for _, v := range violations {
				if strings.Contains(v, tt.wantMsg) {
					found = true
				}
			}
			assert.True(t, found, "violations %v should contain %q", violations, tt.wantMsg)
			assert.Empty(t, repo.leads, "nothing is persisted on validation failure")
		})
	}
}

func TestLeadService_CreateCollectsEveryViolation(t *testing.T) {
	t.Parallel()

	repo := newFakeLeadRepo()
	svc := NewLeadService(repo, nil, nil)

	_, err := svc.Create(context.Background(), "user-1", LeadInput{Score: -5, LeadValue: -1})
	violations := validationErrors(t, err)
	assert.GreaterOrEqual(t, len(violations), 8, "every violated rule is reported, got %v", violations)
}

func TestLeadService_UpdatePreservesImmutableFields(t *testing.T) {
	t.Parallel()

	repo := newFakeLeadRepo()
	svc := NewLeadService(repo, nil, nil)

	created, err := svc.Create(context.Background(), "user-1", validLeadInput())
	require.NoError(t, err)

	changed := validLeadInput()
	changed.Status = domain.LeadStatusWon
	changed.Score = 99

	updated, err := svc.Update(context.Background(), "user-2", created.ID, changed)
	require.NoError(t, err)
	assert.Equal(t, domain.LeadStatusWon, updated.Status)
	assert.Equal(t, 99, updated.Score)
	assert.Equal(t, "user-1", updated.CreatedBy, "createdBy never changes")
	assert.Equal(t, created.CreatedAt, updated.CreatedAt, "createdAt never changes")
	assert.False(t, updated.UpdatedAt.Before(created.UpdatedAt), "updatedAt is refreshed")
}

func TestLeadService_UpdateValidationDoesNotMutate(t *testing.T) {
	t.Parallel()

	repo := newFakeLeadRepo()
	svc := NewLeadService(repo, nil, nil)

	created, err := svc.Create(context.Background(), "user-1", validLeadInput())
	require.NoError(t, err)

	bad := validLeadInput()
	bad.Score = 150
	_, err = svc.Update(context.Background(), "user-1", created.ID, bad)
	validationErrors(t, err)

	unchanged, err := svc.Get(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.Score, unchanged.Score)
}

func TestLeadService_NotFound(t *testing.T) {
	t.Parallel()

	repo := newFakeLeadRepo()
	svc := NewLeadService(repo, nil, nil)

	_, err := svc.Get(context.Background(), "missing")
	assertDomainCode(t, err, "NOT_FOUND")

	_, err = svc.Update(context.Background(), "user-1", "missing", validLeadInput())
	assertDomainCode(t, err, "NOT_FOUND")

	err = svc.Delete(context.Background(), "user-1", "missing")
	assertDomainCode(t, err, "NOT_FOUND")
}

func TestLeadService_Delete(t *testing.T) {
	t.Parallel()

	repo := newFakeLeadRepo()
	svc := NewLeadService(repo, nil, nil)

	created, err := svc.Create(context.Background(), "user-1", validLeadInput())
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), "user-1", created.ID))

	_, err = svc.Get(context.Background(), created.ID)
	assertDomainCode(t, err, "NOT_FOUND")
}

func TestLeadService_StatsEmptyCollection(t *testing.T) {
	t.Parallel()

	repo := newFakeLeadRepo()
	svc := NewLeadService(repo, nil, nil)

	stats, err := svc.Stats(context.Background())
	require.NoError(t, err)
	assert.Zero(t, stats.TotalLeads)
	assert.Zero(t, stats.AvgScore, "average score is 0 with no leads, never null")
	assert.Empty(t, stats.StatusStats)
	assert.Empty(t, stats.SourceStats)
}

func TestLeadService_StatsPassesThroughAggregates(t *testing.T) {
	t.Parallel()

	repo := newFakeLeadRepo()
	repo.stats = &domain.LeadStats{
		TotalLeads: 10,
		StatusStats: map[domain.LeadStatus]int64{
			domain.LeadStatusWon:  4,
			domain.LeadStatusLost: 3,
			domain.LeadStatusNew:  3,
		},
		SourceStats: map[domain.LeadSource]int64{domain.LeadSourceWebsite: 10},
		AvgScore:    61.5,
	}
	svc := NewLeadService(repo, nil, nil)

	stats, err := svc.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(10), stats.TotalLeads)
	assert.Equal(t, int64(4), stats.StatusStats[domain.LeadStatusWon])
	assert.Equal(t, 61.5, stats.AvgScore)
}

func assertDomainCode(t *testing.T, err error, code string) {
	t.Helper()
	var de *apperrors.DomainError
	require.True(t, errors.As(err, &de), "expected DomainError, got %v", err)
	assert.Equal(t, code, de.Code)
}
