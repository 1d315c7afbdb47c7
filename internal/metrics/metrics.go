package metrics

import (
	"math"
	"time"

	"apptrack-engine/internal/domain"
)

// MonthCount is one bucket of the monthly histogram. Buckets are kept in
// first-occurrence order so chart output stays stable across reloads.
type MonthCount struct {
	Month string `json:"month"` // "Jan 2006"
	Count int    `json:"count"`
}

// Summary holds everything the dashboard renders. It is recomputed from
// the full record snapshot on every change and never persisted.
type Summary struct {
	TotalCount   int                   `json:"totalCount"`
	StatusCounts map[domain.Status]int `json:"statusCounts"` // always all five keys
	Monthly      []MonthCount          `json:"monthly"`

	SuccessRate                int `json:"successRate"`
	ApplicationToInterviewRate int `json:"applicationToInterviewRate"`
	InterviewToOfferRate       int `json:"interviewToOfferRate"`
	OfferToAcceptanceRate      int `json:"offerToAcceptanceRate"`
}

const monthLabel = "Jan 2006"

// Compute derives a Summary from the current application snapshot.
// Pure and total: no input is rejected. Records whose dateApplied does
// not parse still count toward the status histogram and total; they are
// only left out of the monthly histogram.
func Compute(apps []domain.Application) Summary {
	s := Summary{
		TotalCount:   len(apps),
		StatusCounts: make(map[domain.Status]int, len(domain.StatusOrder)),
	}
	for _, st := range domain.StatusOrder {
		s.StatusCounts[st] = 0
	}

	monthIdx := make(map[string]int)
	for _, a := range apps {
		s.StatusCounts[a.Status]++

		d, err := time.Parse(domain.DateLayout, a.DateApplied)
		if err != nil {
			continue
		}
		label := d.Format(monthLabel)
		if i, ok := monthIdx[label]; ok {
			s.Monthly[i].Count++
		} else {
			monthIdx[label] = len(s.Monthly)
			s.Monthly = append(s.Monthly, MonthCount{Month: label, Count: 1})
		}
	}

	accepted := s.StatusCounts[domain.StatusAccepted]
	applied := s.StatusCounts[domain.StatusApplied]
	interviews := s.StatusCounts[domain.StatusInterview]
	offers := s.StatusCounts[domain.StatusOffer]

	s.SuccessRate = pct(accepted, s.TotalCount)
	s.ApplicationToInterviewRate = pct(interviews, applied)
	s.InterviewToOfferRate = pct(offers, interviews)
	s.OfferToAcceptanceRate = pct(accepted, offers)

	return s
}

// pct returns round(100*num/den) with half rounded away from zero
// (math.Round semantics), or 0 when den is 0.
func pct(num, den int) int {
	if den == 0 {
		return 0
	}
	return int(math.Round(100 * float64(num) / float64(den)))
}
