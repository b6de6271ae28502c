//nolint:revive // types is a standard Go package name pattern
package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCategoryRule_Validate(t *testing.T) {
	valid := CategoryRule{
		CategoryName: "남성의류",
		Keywords:     []string{"셔츠", "바지"},
		Weight:       0.9,
		Confidence:   85,
		Reason:       "의류 관련 키워드",
		Attributes: []CategoryAttribute{
			{Name: "사이즈", Type: AttributeSelect, Required: true, Options: []string{"S", "M", "L"}},
			{Name: "소재", Type: AttributeText},
		},
	}
	assert.NoError(t, valid.Validate())

	invalid := CategoryRule{
		CategoryName: "",
		Weight:       1.2,
		Confidence:   120,
		Attributes: []CategoryAttribute{
			{Name: "사이즈", Type: AttributeSelect},
			{Name: "", Type: "color"},
		},
	}
	err := invalid.Validate()
	require.Error(t, err)

	ve, ok := AsValidationError(err)
	require.True(t, ok)
	fields := make([]string, 0, len(ve.Violations))
	for _, v := range ve.Violations {
		fields = append(fields, v.Field)
	}
	assert.ElementsMatch(t, []string{
		"category_name",
		"weight",
		"confidence",
		"attributes[0].options",
		"attributes[1].name",
		"attributes[1].type",
	}, fields)
}

func TestAlgorithmWeights_Validate(t *testing.T) {
	w := DefaultAlgorithmWeights()
	assert.NoError(t, w.Validate())

	bad := AlgorithmWeights{Volume: -0.1, Competition: 0.3, Tag: 0.1, CTR: Float64Ptr(-1)}
	err := bad.Validate()
	require.Error(t, err)
	ve, ok := AsValidationError(err)
	require.True(t, ok)
	assert.Len(t, ve.Violations, 2)
}

func TestProductTitleComponents_Text(t *testing.T) {
	c := &ProductTitleComponents{
		Category:    "휴대폰 케이스",
		Demographic: "남성",
		Keywords:    []string{"ignored"},
		Features:    []string{"방수", "", "충격흡수"},
		Usage:       "출퇴근",
	}
	assert.Equal(t, "휴대폰 케이스 남성 출퇴근 방수 충격흡수", c.Text())

	var nilComponents *ProductTitleComponents
	assert.Equal(t, "", nilComponents.Text())
}

func TestProject_Validate(t *testing.T) {
	p := Project{Name: "summer launch"}
	assert.NoError(t, p.Validate())

	p.Name = " "
	assert.Error(t, p.Validate())
}
