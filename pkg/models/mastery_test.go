package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMasteryLevelSteps(t *testing.T) {
	assert.Equal(t, MasteryDeveloping, MasteryIntroduced.Promote())
	assert.Equal(t, MasteryFamiliar, MasteryDeveloping.Promote())
	assert.Equal(t, MasteryMastered, MasteryFamiliar.Promote())
	assert.Equal(t, MasteryMastered, MasteryMastered.Promote())

	assert.Equal(t, MasteryFamiliar, MasteryMastered.Demote())
	assert.Equal(t, MasteryIntroduced, MasteryDeveloping.Demote())
	assert.Equal(t, MasteryIntroduced, MasteryIntroduced.Demote())
}

func TestMasteryLevelValue(t *testing.T) {
	assert.Equal(t, 25.0, MasteryIntroduced.Value())
	assert.Equal(t, 50.0, MasteryDeveloping.Value())
	assert.Equal(t, 75.0, MasteryFamiliar.Value())
	assert.Equal(t, 100.0, MasteryMastered.Value())
	assert.Equal(t, 25.0, MasteryLevel("").Value())
}

func TestParseMasteryLevel(t *testing.T) {
	level, err := ParseMasteryLevel(" familiar ")
	require.NoError(t, err)
	assert.Equal(t, MasteryFamiliar, level)

	_, err = ParseMasteryLevel("EXPERT")
	assert.Error(t, err)
}
