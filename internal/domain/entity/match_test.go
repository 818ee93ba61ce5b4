package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestItemMatches(t *testing.T) {
	it := &Item{Name: "Feijão Preto", Category: "Grãos", UnitOfMeasure: "kg"}
	tests := []struct {
		q    string
		want bool
	}{
		{"", true},
		{"  ", true},
		{"feijão", true},
		{"PRETO", true},
		{"grãos", true},
		{"KG", true},
		{"arroz", false},
		{"litro", false},
	}
	for _, tt := range tests {
		t.Run(tt.q, func(t *testing.T) {
			assert.Equal(t, tt.want, it.Matches(tt.q))
		})
	}
}

func TestContainsFold_Unicode(t *testing.T) {
	assert.True(t, ContainsFold("AÇÚCAR", "açúcar"))
	assert.True(t, ContainsFold("Straße", "STRASSE"))
	assert.False(t, ContainsFold("Arroz", "feijão"))
}
