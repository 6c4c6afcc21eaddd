// Package assistant maps a free-text message to a canned clinical-operations
// reply.  Rules are checked in a fixed order and the first rule with a
// keyword contained in the message wins.
package assistant

import "strings"

// Category identifies which canned reply a message selected.
type Category int

const (
	CategoryGeneralHelp Category = iota
	CategoryImaging
	CategoryChartSummary
	CategoryCapacityForecast
	CategoryScheduling
)

func (c Category) String() string {
	switch c {
	case CategoryImaging:
		return "imaging"
	case CategoryChartSummary:
		return "chart-summary"
	case CategoryCapacityForecast:
		return "capacity-forecast"
	case CategoryScheduling:
		return "scheduling"
	default:
		return "general-help"
	}
}

type rule struct {
	category Category
	keywords []string
}

// rules is evaluated top to bottom; order is the tie-break.
var rules = []rule{
	{CategoryImaging, []string{"mri", "scan", "imaging"}},
	{CategoryChartSummary, []string{"summarize", "summary", "chart", "visit"}},
	{CategoryCapacityForecast, []string{"bed", "icu", "occupancy", "forecast"}},
	{CategoryScheduling, []string{"schedule", "appointment", "book", "slot"}},
}

var replies = map[Category]string{
	CategoryImaging: "Next MRI availability: Today 3:30 PM, 5:10 PM; Tomorrow 9:20 AM, 10:40 AM. " +
		"Technician on duty: Patel. Prep: remove metal, NPO 4h if contrast. " +
		"Would you like me to book a 30-minute slot and notify radiology?",
	CategoryChartSummary: "Here's a concise chart summary: 3 recent visits, HTN well-controlled, HbA1c 6.7%, " +
		"last creatinine 1.0 mg/dL, no med allergies. Current meds: lisinopril 10 mg QD, metformin 500 mg BID. " +
		"Flagged: follow-up A1c in 6 weeks. Need a discharge note template?",
	CategoryCapacityForecast: "ICU occupancy forecast (next 24h): 78% +/-6%. 2 step-downs free by 18:00. " +
		"Recommend deferring elective post-op ICU holds until tomorrow AM. Want a resource plan?",
	CategoryScheduling: "I can propose optimal slots based on clinician load and patient preferences. " +
		"Please share patient ID, preferred day, and department.",
	CategoryGeneralHelp: "I can help with scheduling, bed forecasts, and quick chart summaries. " +
		"Ask me things like: 'Find next MRI slot for Jane Doe' or 'Summarize patient ABC123 last 3 visits.'",
}

// Classify returns the category of the first rule whose keyword occurs in
// the trimmed, lower-cased message.  Matching is by substring, so "rebook"
// matches "book".
func Classify(message string) Category {
	msg := strings.ToLower(strings.TrimSpace(message))
	if msg == "" {
		return CategoryGeneralHelp
	}
	for _, r := range rules {
		for _, k := range r.keywords {
			if strings.Contains(msg, k) {
				return r.category
			}
		}
	}
	return CategoryGeneralHelp
}

// ReplyFor returns the fixed reply text of c.  Unknown categories get the
// general help text.
func ReplyFor(c Category) string {
	if s, ok := replies[c]; ok {
		return s
	}
	return replies[CategoryGeneralHelp]
}

// Reply classifies message and returns the matching reply.  It never
// returns an empty string.
func Reply(message string) string {
	return ReplyFor(Classify(message))
}
