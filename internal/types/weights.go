//nolint:revive // types is a standard Go package name pattern
package types

// AlgorithmWeights are the caller-supplied coefficients of the opportunity score.
// CTR is optional; when nil the click-through bonus is never applied.
type AlgorithmWeights struct {
	Volume      float64  `json:"volume" yaml:"volume" validate:"gte=0"`
	Competition float64  `json:"competition" yaml:"competition" validate:"gte=0"`
	Tag         float64  `json:"tag" yaml:"tag" validate:"gte=0"`
	CTR         *float64 `json:"ctr,omitempty" yaml:"ctr,omitempty" validate:"omitempty,gte=0"`
}

// DefaultAlgorithmWeights returns the weights used when none are configured.
func DefaultAlgorithmWeights() AlgorithmWeights {
	return AlgorithmWeights{
		Volume:      0.6,
		Competition: 0.4,
		Tag:         0.2,
	}
}

// Validate reports every out-of-range weight.
func (w *AlgorithmWeights) Validate() error {
	return validateStruct("weights", w)
}
