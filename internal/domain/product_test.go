package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAverageRating(t *testing.T) {
	testCases := []struct {
		Name     string
		Sum      int64
		Count    int64
		Expected float64
	}{
		{Name: "no reviews", Sum: 0, Count: 0, Expected: 0},
		{Name: "four and five", Sum: 9, Count: 2, Expected: 4.5},
		{Name: "repeating decimal", Sum: 10, Count: 3, Expected: 3.33},
		{Name: "rounds up", Sum: 5, Count: 3, Expected: 1.67},
		{Name: "tie rounds to even", Sum: 33, Count: 8, Expected: 4.12},
		{Name: "single review", Sum: 1, Count: 1, Expected: 1},
		{Name: "binary value just below the tie", Sum: 43, Count: 40, Expected: 1.07},
		{Name: "another value just below the tie", Sum: 107, Count: 40, Expected: 2.67},
		{Name: "exact tie on an eighth", Sum: 1, Count: 8, Expected: 0.12},
		{Name: "five reviews", Sum: 23, Count: 5, Expected: 4.6},
	}

	for _, tc := range testCases {
		t.Run(tc.Name, func(t *testing.T) {
			assert.Equal(t, tc.Expected, AverageRating(tc.Sum, tc.Count))
		})
	}
}

func TestProduct_HasUntrackedRating(t *testing.T) {
	avg := 4.0

	assert.False(t, Product{}.HasUntrackedRating())
	assert.True(t, Product{AverageRating: &avg}.HasUntrackedRating())
	assert.False(t, Product{AverageRating: &avg, RatingSum: 4, RatingCount: 1}.HasUntrackedRating())
}
