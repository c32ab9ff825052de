package schema

// ============================================================================
// SCHEMA — Describes the shape of a loaded dashboard table
// ============================================================================
// Profiles are computed from the tidy table after load. They tell a host which
// columns group, which aggregate, and which widget suits each filterable
// column, without re-reading the sources.
// ============================================================================

import "github.com/spektr-org/vizdash/dashboard"

// Role is how a column participates in charts.
type Role string

const (
	RoleDimension  Role = "dimension"
	RoleMeasure    Role = "measure"
	RoleIdentifier Role = "identifier"
	RoleEmpty      Role = "empty"
)

// Profile describes every column of one table.
type Profile struct {
	Dashboard string          `json:"dashboard"`
	Rows      int             `json:"rows"`
	Columns   []ColumnProfile `json:"columns"`
}

// ColumnProfile describes one column.
type ColumnProfile struct {
	Name        string   `json:"name"`
	DisplayName string   `json:"displayName"`
	Kind        string   `json:"kind"`
	Role        Role     `json:"role"`
	Distinct    int      `json:"distinct"`
	Nulls       int      `json:"nulls"`
	Samples     []string `json:"samples,omitempty"`

	Min float64 `json:"min,omitempty"`
	Max float64 `json:"max,omitempty"`

	IsTemporal      bool   `json:"isTemporal,omitempty"`
	CardinalityHint string `json:"cardinalityHint,omitempty"` // "low", "medium", "high"

	// Widget is the control a host would offer for this column, empty for
	// columns that are not filterable.
	Widget dashboard.WidgetKind `json:"widget,omitempty"`
}

// Column returns the named column's profile.
func (p *Profile) Column(name string) (ColumnProfile, bool) {
	for _, c := range p.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return ColumnProfile{}, false
}

// Dimensions lists the grouping columns in table order.
func (p *Profile) Dimensions() []string { return p.keys(RoleDimension) }

// Measures lists the aggregatable columns in table order.
func (p *Profile) Measures() []string { return p.keys(RoleMeasure) }

func (p *Profile) keys(role Role) []string {
	var out []string
	for _, c := range p.Columns {
		if c.Role == role {
			out = append(out, c.Name)
		}
	}
	return out
}
