package dto

import (
	"time"

	"github.com/spec-kit/lead-service/internal/domain"
	"github.com/spec-kit/lead-service/internal/service"
)

// LeadRequest is the full lead payload; both create and update require
// every field. createdAt/createdBy supplied by callers are ignored.
type LeadRequest struct {
	FirstName      string            `json:"firstName"`
	LastName       string            `json:"lastName"`
	Email          string            `json:"email"`
	Phone          string            `json:"phone"`
	Company        string            `json:"company"`
	City           string            `json:"city"`
	State          string            `json:"state"`
	Source         domain.LeadSource `json:"source"`
	Status         domain.LeadStatus `json:"status"`
	Score          int               `json:"score"`
	LeadValue      float64           `json:"leadValue"`
	IsQualified    bool              `json:"isQualified"`
	LastActivityAt *time.Time        `json:"lastActivityAt"`
}

// ToInput converts the request to the service payload.
func (r LeadRequest) ToInput() service.LeadInput {
	return service.LeadInput{
		FirstName:      r.FirstName,
		LastName:       r.LastName,
		Email:          r.Email,
		Phone:          r.Phone,
		Company:        r.Company,
		City:           r.City,
		State:          r.State,
		Source:         r.Source,
		Status:         r.Status,
		Score:          r.Score,
		LeadValue:      r.LeadValue,
		IsQualified:    r.IsQualified,
		LastActivityAt: r.LastActivityAt,
	}
}

// LeadResponse serializes a lead with its creator reference expanded.
type LeadResponse struct {
	ID             string             `json:"id"`
	FirstName      string             `json:"firstName"`
	LastName       string             `json:"lastName"`
	Email          string             `json:"email"`
	Phone          string             `json:"phone"`
	Company        string             `json:"company"`
	City           string             `json:"city"`
	State          string             `json:"state"`
	Source         domain.LeadSource  `json:"source"`
	Status         domain.LeadStatus  `json:"status"`
	Score          int                `json:"score"`
	LeadValue      float64            `json:"leadValue"`
	IsQualified    bool               `json:"isQualified"`
	CreatedBy      *domain.CreatorRef `json:"createdBy"`
	LastActivityAt *time.Time         `json:"lastActivityAt"`
	CreatedAt      time.Time          `json:"createdAt"`
	UpdatedAt      time.Time          `json:"updatedAt"`
}

// NewLeadResponse maps a domain lead.
func NewLeadResponse(lead *domain.Lead) LeadResponse {
	return LeadResponse{
		ID:             lead.ID,
		FirstName:      lead.FirstName,
		LastName:       lead.LastName,
		Email:          lead.Email,
		Phone:          lead.Phone,
		Company:        lead.Company,
		City:           lead.City,
		State:          lead.State,
		Source:         lead.Source,
		Status:         lead.Status,
		Score:          lead.Score,
		LeadValue:      lead.LeadValue,
		IsQualified:    lead.IsQualified,
		CreatedBy:      lead.Creator,
		LastActivityAt: lead.LastActivityAt,
		CreatedAt:      lead.CreatedAt,
		UpdatedAt:      lead.UpdatedAt,
	}
}

// NewLeadResponses maps a page of leads.
func NewLeadResponses(leads []domain.Lead) []LeadResponse {
	responses := make([]LeadResponse, len(leads))
	for i := range leads {
		responses[i] = NewLeadResponse(&leads[i])
	}
	return responses
}
