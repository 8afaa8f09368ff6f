package entities

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAverageRating(t *testing.T) {
	tests := []struct {
		name    string
		ratings []int
		want    float64
	}{
		{name: "no reviews", ratings: nil, want: 0},
		{name: "single review", ratings: []int{4}, want: 4},
		{name: "exact mean", ratings: []int{4, 5}, want: 4.5},
		{name: "rounds to one decimal", ratings: []int{5, 5, 4}, want: 4.7},
		{name: "rounds down", ratings: []int{1, 1, 2}, want: 1.3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reviews := make([]Review, len(tt.ratings))
			for i, r := range tt.ratings {
				reviews[i] = Review{Rating: r}
			}
			assert.Equal(t, tt.want, AverageRating(reviews))
		})
	}
}

func TestBookIsFree(t *testing.T) {
	assert.True(t, (&Book{PriceCents: 0}).IsFree())
	assert.False(t, (&Book{PriceCents: 100000}).IsFree())
}
