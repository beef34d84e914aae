package models

import (
	"fmt"
	"strings"
)

// MasteryLevel is the ordered classification of how well a topic is learned
type MasteryLevel string

const (
	MasteryIntroduced MasteryLevel = "INTRODUCED"
	MasteryDeveloping MasteryLevel = "DEVELOPING"
	MasteryFamiliar   MasteryLevel = "FAMILIAR"
	MasteryMastered   MasteryLevel = "MASTERED"
)

// masteryOrder lists the levels from lowest to highest
var masteryOrder = []MasteryLevel{
	MasteryIntroduced,
	MasteryDeveloping,
	MasteryFamiliar,
	MasteryMastered,
}

// masteryWeights is the single numeric mapping used for prioritization
var masteryWeights = map[MasteryLevel]float64{
	MasteryIntroduced: 25,
	MasteryDeveloping: 50,
	MasteryFamiliar:   75,
	MasteryMastered:   100,
}

// ParseMasteryLevel converts a stored value into a MasteryLevel
func ParseMasteryLevel(s string) (MasteryLevel, error) {
	level := MasteryLevel(strings.ToUpper(strings.TrimSpace(s)))
	if _, ok := masteryWeights[level]; !ok {
		return "", fmt.Errorf("unknown mastery level %q", s)
	}
	return level, nil
}

// Rank returns the position of the level in the ordering, or -1 if unknown
func (m MasteryLevel) Rank() int {
	for i, level := range masteryOrder {
		if level == m {
			return i
		}
	}
	return -1
}

// Value returns the numeric weight of the level (INTRODUCED=25 .. MASTERED=100).
// Unknown levels weigh as INTRODUCED.
func (m MasteryLevel) Value() float64 {
	if v, ok := masteryWeights[m]; ok {
		return v
	}
	return masteryWeights[MasteryIntroduced]
}

// Promote moves one level up, stopping at MASTERED
func (m MasteryLevel) Promote() MasteryLevel {
	rank := m.Rank()
	if rank < 0 {
		return MasteryDeveloping
	}
	if rank == len(masteryOrder)-1 {
		return m
	}
	return masteryOrder[rank+1]
}

// Demote moves one level down, stopping at INTRODUCED
func (m MasteryLevel) Demote() MasteryLevel {
	rank := m.Rank()
	if rank <= 0 {
		return MasteryIntroduced
	}
	return masteryOrder[rank-1]
}
