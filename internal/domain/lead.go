package domain

import "time"

// LeadSource enumerates acquisition channels.
type LeadSource string

const (
	LeadSourceWebsite     LeadSource = "website"
	LeadSourceFacebookAds LeadSource = "facebook_ads"
	LeadSourceGoogleAds   LeadSource = "google_ads"
	LeadSourceReferral    LeadSource = "referral"
	LeadSourceEvents      LeadSource = "events"
	LeadSourceOther       LeadSource = "other"
)

// LeadStatus enumerates funnel states.
type LeadStatus string

const (
	LeadStatusNew       LeadStatus = "new"
	LeadStatusContacted LeadStatus = "contacted"
	LeadStatusQualified LeadStatus = "qualified"
	LeadStatusLost      LeadStatus = "lost"
	LeadStatusWon       LeadStatus = "won"
)

// LeadSources lists every legal source value.
var LeadSources = []LeadSource{
	LeadSourceWebsite,
	LeadSourceFacebookAds,
	LeadSourceGoogleAds,
	LeadSourceReferral,
	LeadSourceEvents,
	LeadSourceOther,
}

// LeadStatuses lists every legal status value.
var LeadStatuses = []LeadStatus{
	LeadStatusNew,
	LeadStatusContacted,
	LeadStatusQualified,
	LeadStatusLost,
	LeadStatusWon,
}

// ValidSource reports whether s is one of the enumerated sources.
func ValidSource(s LeadSource) bool {
	for _, candidate := range LeadSources {
		if candidate == s {
			return true
		}
	}
	return false
}

// ValidStatus reports whether s is one of the enumerated statuses.
func ValidStatus(s LeadStatus) bool {
	for _, candidate := range LeadStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// Lead is the aggregate for sales prospects.
// CreatedAt and CreatedBy are set once at creation and never change.
type Lead struct {
	ID             string
	FirstName      string
	LastName       string
	Email          string
	Phone          string
	Company        string
	City           string
	State          string
	Source         LeadSource
	Status         LeadStatus
	Score          int
	LeadValue      float64
	IsQualified    bool
	CreatedBy      string
	Creator        *CreatorRef
	LastActivityAt *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// LeadStats aggregates the whole collection, ignoring any active filters.
type LeadStats struct {
	TotalLeads  int64                `json:"totalLeads"`
	StatusStats map[LeadStatus]int64 `json:"statusStats"`
	SourceStats map[LeadSource]int64 `json:"sourceStats"`
	AvgScore    float64              `json:"avgScore"`
}
