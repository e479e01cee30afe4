package changetracker

import "time"

// Category classifies what kind of field changed (spec.md §4.4 step 5).
type Category string

const (
	CategoryFee          Category = "fee"
	CategoryDeadline     Category = "deadline"
	CategoryRequirement  Category = "requirement"
	CategoryDocument     Category = "document"
	CategoryContact      Category = "contact"
	CategoryAppointment  Category = "appointment"
	CategoryEligibility  Category = "eligibility"
	CategoryOfficeHours  Category = "office_hours"
	CategoryLocation     Category = "location"
	CategoryLink         Category = "link"
	CategoryOther        Category = "other"
)

// Severity classifies how much a change matters (spec.md §4.4 step 6).
type Severity string

const (
	SeverityBreaking Severity = "breaking"
	SeverityMajor    Severity = "major"
	SeverityMinor    Severity = "minor"
	SeverityInfo     Severity = "info"
)

// ChangeType classifies the direction/nature of a field's change
// (spec.md §3.1 FieldChange).
type ChangeType string

const (
	ChangeAdded     ChangeType = "added"
	ChangeRemoved   ChangeType = "removed"
	ChangeModified  ChangeType = "modified"
	ChangeIncreased ChangeType = "increased"
	ChangeDecreased ChangeType = "decreased"
)

// FieldChange is one detected difference between two JSON documents
// (spec.md §3.1).
type FieldChange struct {
	FieldPath         string     `json:"field_path"`
	FieldName         string     `json:"field_name"`
	Category          Category   `json:"category"`
	Severity          Severity   `json:"severity"`
	ChangeType        ChangeType `json:"change_type"`
	OldValue          interface{} `json:"old_value,omitempty"`
	NewValue          interface{} `json:"new_value,omitempty"`
	OldValueFormatted string     `json:"old_value_formatted"`
	NewValueFormatted string     `json:"new_value_formatted"`
	PercentageChange  *float64   `json:"percentage_change,omitempty"`
	Description       string     `json:"description"`
	Impact            string     `json:"impact,omitempty"`
}

// ChangeReport is the full result of trackChanges for one comparison
// (spec.md §3.1 FieldChangeRecord).
type ChangeReport struct {
	URL             string                 `json:"url,omitempty"`
	Timestamp       time.Time              `json:"timestamp"`
	Changes         []FieldChange          `json:"changes"`
	TotalChanges    int                    `json:"total_changes"`
	ChangesBySeverity map[Severity]int     `json:"changes_by_severity"`
}

// HasChanges reports whether the comparison found any differences.
func (r ChangeReport) HasChanges() bool { return r.TotalChanges > 0 }

// Options configures a trackChanges call (spec.md §4.4 contract).
type Options struct {
	URL                 string
	Language            string
	CustomFieldMappings map[string]Category
	IgnoreFields        []string
	OnlyFields          []string
}
