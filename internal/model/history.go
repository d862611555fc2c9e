package model

import "time"

// VisitID identifies one row of the visit graph.
// It is only used to join follow-up visits and is never interpreted.
type VisitID int64

// NoVisit is the FromVisit value of a visit without a referrer.
const NoVisit VisitID = 0

// FormHistoryEntry is one remembered search submission.
type FormHistoryEntry struct {
	// Value is the text that was typed into the field.
	Value string `json:"value"`

	// FieldName is the name of the form field the value was submitted from.
	// The browser search bar uses "searchbar-history".
	FieldName string `json:"field_name"`

	// LastUsed is when the value was last submitted.
	LastUsed time.Time `json:"last_used"`
}

// VisitRecord is one page visit.
type VisitRecord struct {
	// ID is the visit's own identifier.
	ID VisitID `json:"id"`

	// URL is the address of the visited page.
	URL string `json:"url"`

	// Title is the page title. A nil Title marks a redirect hop:
	// an automatic navigation the user never saw as a page.
	Title *string `json:"title,omitempty"`

	// VisitDate is when the visit happened.
	VisitDate time.Time `json:"visit_date"`

	// FromVisit is the visit this one was navigated from, or NoVisit.
	FromVisit VisitID `json:"from_visit"`
}

// IsRedirect reports whether the visit is a redirect hop.
func (v VisitRecord) IsRedirect() bool {
	return v.Title == nil
}

// DisplayTitle returns the page title, or an empty string for redirect hops.
func (v VisitRecord) DisplayTitle() string {
	if v.Title == nil {
		return ""
	}
	return *v.Title
}
