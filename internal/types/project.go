//nolint:revive // types is a standard Go package name pattern
package types

import "time"

// Project groups the keywords a seller is working on for one product listing.
type Project struct {
	ID         string                  `json:"id"`
	Name       string                  `json:"name" validate:"notblank,max=200"`
	KeywordIDs []string                `json:"keyword_ids"`
	Components *ProductTitleComponents `json:"components,omitempty"`
	CreatedAt  time.Time               `json:"created_at,omitzero"`
	UpdatedAt  time.Time               `json:"updated_at,omitzero"`
}

// Validate reports every violation in the project.
func (p *Project) Validate() error {
	return validateStruct("project", p)
}
