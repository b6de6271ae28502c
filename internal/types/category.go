//nolint:revive // types is a standard Go package name pattern
package types

// CategoryAttributeType is the input kind of a marketplace-mandated product field.
type CategoryAttributeType string

// Supported attribute types.
const (
	AttributeText    CategoryAttributeType = "text"
	AttributeNumber  CategoryAttributeType = "number"
	AttributeSelect  CategoryAttributeType = "select"
	AttributeBoolean CategoryAttributeType = "boolean"
)

// CategoryAttribute describes a product field a marketplace category requires. It is purely descriptive.
type CategoryAttribute struct {
	Name        string                `json:"name" yaml:"name" validate:"notblank"`
	Type        CategoryAttributeType `json:"type" yaml:"type" validate:"oneof=text number select boolean"`
	Required    bool                  `json:"required" yaml:"required"`
	Options     []string              `json:"options,omitempty" yaml:"options,omitempty" validate:"required_if=Type select"`
	Placeholder string                `json:"placeholder,omitempty" yaml:"placeholder,omitempty"`
}

// CategoryRule maps keyword and pattern evidence to a marketplace category.
// CategoryName is unique within a rule table.
type CategoryRule struct {
	CategoryName string              `json:"category_name" yaml:"category_name" validate:"notblank"`
	Keywords     []string            `json:"keywords" yaml:"keywords" validate:"dive,notblank"`
	Patterns     []string            `json:"patterns" yaml:"patterns" validate:"dive,notblank"`
	Weight       float64             `json:"weight" yaml:"weight" validate:"gte=0,lte=1"`
	Confidence   float64             `json:"confidence" yaml:"confidence" validate:"gte=0,lte=100"`
	Reason       string              `json:"reason" yaml:"reason"`
	Attributes   []CategoryAttribute `json:"attributes" yaml:"attributes" validate:"dive"`
}

// Validate reports every violation in the rule, including its attributes.
func (r *CategoryRule) Validate() error {
	return validateStruct("category rule", r)
}

// CategorySuggestion is a recommended category for a product, rebuilt on every call.
type CategorySuggestion struct {
	ID         string              `json:"id"`
	Name       string              `json:"name"`
	Reasons    []string            `json:"reasons"`
	Attributes []CategoryAttribute `json:"attributes"`
	Confidence int                 `json:"confidence"`
}
