package model

import "strings"

// Category is one of the nine trade categories an opportunity is filed under.
type Category string

// Trade categories, in display order.
const (
	CategoryCivilWork    Category = "Civil Work"
	CategoryEngineering  Category = "Engineering"
	CategoryCarpentry    Category = "Carpentry"
	CategoryArchitecture Category = "Architecture"
	CategoryLegal        Category = "Legal"
	CategoryMaterials    Category = "Materials"
	CategoryElectrical   Category = "Electrical"
	CategoryPlumbing     Category = "Plumbing"
	CategoryHVAC         Category = "HVAC"
)

// Categories lists every category in display order.
func Categories() []Category {
	return []Category{
		CategoryCivilWork,
		CategoryEngineering,
		CategoryCarpentry,
		CategoryArchitecture,
		CategoryLegal,
		CategoryMaterials,
		CategoryElectrical,
		CategoryPlumbing,
		CategoryHVAC,
	}
}

// DefaultCategory preselects the opportunity form.
const DefaultCategory = CategoryCivilWork

// ParseCategory matches s case-insensitively against the known categories.
func ParseCategory(s string) (Category, bool) {
	for _, c := range Categories() {
		if strings.EqualFold(string(c), strings.TrimSpace(s)) {
			return c, true
		}
	}
	return "", false
}

// Opportunity is a work listing posted by a developer.
type Opportunity struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Category    Category   `json:"category"`
	Description string     `json:"description"`
	Deadline    *Timestamp `json:"deadline,omitempty"`
	Budget      *Money     `json:"budget,omitempty"`
	Location    string     `json:"location,omitempty"`
	CreatedAt   *Timestamp `json:"created_at,omitempty"`
	DeveloperID string     `json:"developer_id,omitempty"`
}

// NewOpportunity is the body of POST /opportunities. Deadline is an ISO-8601
// timestamp string so the wire format stays exactly what the form produced.
type NewOpportunity struct {
	Title       string   `json:"title"`
	Category    Category `json:"category"`
	Description string   `json:"description"`
	Deadline    string   `json:"deadline,omitempty"`
	Budget      *Money   `json:"budget,omitempty"`
	Location    string   `json:"location,omitempty"`
}

// OpportunityFilter narrows GET /opportunities. Empty fields are not sent.
type OpportunityFilter struct {
	Category Category
	Location string
}
