package models

import "time"

// JobRef is a skill reference as it appears inside a listing payload.
type JobRef struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Listing is the wire shape of one project as returned by the upstream API.
// SubmitDate is an epoch value in either seconds or milliseconds.
type Listing struct {
	ProjectID        int64    `json:"project_id"`
	SubmitDate       int64    `json:"submit_date"`
	Title            string   `json:"title"`
	Description      string   `json:"description"`
	IsHourly         bool     `json:"is_hourly"`
	BudgetMinimum    *float64 `json:"budget_minimum"`
	BudgetMaximum    *float64 `json:"budget_maximum"`
	CurrencyCode     string   `json:"currency_code"`
	HasAttachment    bool     `json:"has_attachment"`
	PaymentVerified  bool     `json:"payment_verified"`
	OwnerCountry     string   `json:"owner_country"`
	OwnerCountryCode string   `json:"owner_country_code"`
	OwnerCity        string   `json:"owner_city"`
	FreelancerURL    string   `json:"freelancer_url"`
	Jobs             []JobRef `json:"jobs"`
}

// Job is a persisted skill row.
type Job struct {
	ExternalID int    `json:"external_id"`
	Name       string `json:"name"`
}

// ListingRecord is the normalized form written to the store. SubmitDate is a
// real UTC timestamp; budget bounds stay independently nullable (nil means
// unbounded on that side).
type ListingRecord struct {
	ProjectID        int64     `json:"project_id"`
	SubmitDate       time.Time `json:"submit_date"`
	Title            string    `json:"title"`
	Description      string    `json:"description"`
	IsHourly         bool      `json:"is_hourly"`
	BudgetMinimum    *float64  `json:"budget_minimum"`
	BudgetMaximum    *float64  `json:"budget_maximum"`
	CurrencyCode     string    `json:"currency_code"`
	HasAttachment    bool      `json:"has_attachment"`
	PaymentVerified  bool      `json:"payment_verified"`
	OwnerCountry     string    `json:"owner_country"`
	OwnerCountryCode string    `json:"owner_country_code"`
	OwnerCity        string    `json:"owner_city"`
	FreelancerURL    string    `json:"freelancer_url"`
	Jobs             []Job     `json:"jobs"`
	IngestedAt       time.Time `json:"ingested_at"`
}

// Settings is one polling configuration snapshot, re-read at the top of every
// cycle.
type Settings struct {
	IntervalMinutes int
	SkillIDs        []int
}
