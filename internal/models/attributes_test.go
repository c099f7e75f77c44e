package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAttributeSetNormalize(t *testing.T) {
	attrs := AttributeSet{TechSkills: []string{"Go"}}
	attrs.Normalize()

	assert.NotNil(t, attrs.Education)
	assert.Empty(t, attrs.Education)
	assert.NotNil(t, attrs.Experiences)
	assert.NotNil(t, attrs.Responsibilities)
	assert.NotNil(t, attrs.SoftSkills)
	assert.Equal(t, []string{"Go"}, attrs.TechSkills)
}

func TestAttributeSetField(t *testing.T) {
	attrs := &AttributeSet{
		Education:        []string{"MSc"},
		Experiences:      []string{"2 years"},
		Responsibilities: []string{"on-call"},
		TechSkills:       []string{"Go"},
		SoftSkills:       []string{"mentoring"},
	}

	assert.Equal(t, []string{"MSc"}, attrs.Field(DimensionEducation))
	assert.Equal(t, []string{"2 years"}, attrs.Field(DimensionExperience))
	assert.Equal(t, []string{"Go"}, attrs.Field(DimensionTechSkills))
	assert.Equal(t, []string{"mentoring"}, attrs.Field(DimensionSoftSkills))

	var missing *AttributeSet
	assert.Nil(t, missing.Field(DimensionEducation))
}

func TestAttributeSetScanNormalizesMissingFields(t *testing.T) {
	var attrs AttributeSet
	require.NoError(t, attrs.Scan([]byte(`{"tech_skills":["Python"]}`)))

	assert.Equal(t, []string{"Python"}, attrs.TechSkills)
	assert.NotNil(t, attrs.Education, "absent fields scan to empty slices")
	assert.NotNil(t, attrs.SoftSkills)
}

func TestSubscoresSetGet(t *testing.T) {
	var s Subscores
	s.Set(DimensionTechSkills, DimensionResult{Score: 0.5, Justification: "partial overlap"})

	got := s.Get(DimensionTechSkills)
	assert.Equal(t, 0.5, got.Score)
	assert.Equal(t, "partial overlap", got.Justification)
	assert.Zero(t, s.Get(DimensionEducation).Score)
}
