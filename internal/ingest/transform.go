package ingest

import (
	"time"

	"github.com/A-Ariannejad/KayaScraper/internal/models"
)

// epochCutoff separates epoch seconds from epoch milliseconds: anything below
// it is treated as seconds and rescaled.
const epochCutoff = 10_000_000_000

func epochToTime(v int64) time.Time {
	if v == 0 {
		return time.Time{}
	}
	if v < epochCutoff {
		v *= 1000
	}
	return time.UnixMilli(v).UTC()
}

// Normalize maps a wire listing to its stored form.
func Normalize(l models.Listing, now func() time.Time) models.ListingRecord {
	jobs := make([]models.Job, 0, len(l.Jobs))
	for _, j := range l.Jobs {
		if j.ID == 0 {
			continue
		}
		jobs = append(jobs, models.Job{ExternalID: j.ID, Name: j.Name})
	}
	return models.ListingRecord{
		ProjectID:        l.ProjectID,
		SubmitDate:       epochToTime(l.SubmitDate),
		Title:            l.Title,
		Description:      l.Description,
		IsHourly:         l.IsHourly,
		BudgetMinimum:    l.BudgetMinimum,
		BudgetMaximum:    l.BudgetMaximum,
		CurrencyCode:     l.CurrencyCode,
		HasAttachment:    l.HasAttachment,
		PaymentVerified:  l.PaymentVerified,
		OwnerCountry:     l.OwnerCountry,
		OwnerCountryCode: l.OwnerCountryCode,
		OwnerCity:        l.OwnerCity,
		FreelancerURL:    l.FreelancerURL,
		Jobs:             jobs,
		IngestedAt:       now().UTC(),
	}
}
