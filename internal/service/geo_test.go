package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/foodshare/backend/internal/models"
)

func f64(v float64) *float64 { return &v }

func TestHaversineMiles(t *testing.T) {
	// San Francisco to Oakland, roughly 10.4 miles
	d := HaversineMiles(37.7749, -122.4194, 37.8044, -122.2711)
	assert.InDelta(t, 10.4, d, 0.5)

	// Same point
	assert.Equal(t, 0.0, HaversineMiles(37.7749, -122.4194, 37.7749, -122.4194))
}

func TestFilterByRadius(t *testing.T) {
	meals := []models.Meal{
		{Title: "Nearby", Lat: f64(37.7749), Lng: f64(-122.4194)},
		{Title: "Across the bay", Lat: f64(37.8044), Lng: f64(-122.2711)},
		{Title: "No coordinates"},
	}

	// 5-mile radius from SF keeps the SF meal and the coordless one
	filtered, active := FilterByRadius(meals, f64(37.7749), f64(-122.4194), 5)
	assert.True(t, active)
	assert.Len(t, filtered, 2)
	assert.Equal(t, "Nearby", filtered[0].Title)
	assert.Equal(t, "No coordinates", filtered[1].Title)

	// Widening the radius pulls the Oakland meal back in
	filtered, _ = FilterByRadius(meals, f64(37.7749), f64(-122.4194), 15)
	assert.Len(t, filtered, 3)
}

func TestFilterByRadiusBoundary(t *testing.T) {
	// A meal roughly 12 miles out is excluded at 10 and included at 15 or 0
	origin := models.Meal{Title: "twelve-out", Lat: f64(37.7749), Lng: f64(-122.2080)}
	dist := HaversineMiles(37.7749, -122.4194, *origin.Lat, *origin.Lng)
	assert.InDelta(t, 12, dist, 1)

	meals := []models.Meal{origin}

	filtered, _ := FilterByRadius(meals, f64(37.7749), f64(-122.4194), 10)
	assert.Empty(t, filtered)

	filtered, _ = FilterByRadius(meals, f64(37.7749), f64(-122.4194), 15)
	assert.Len(t, filtered, 1)

	// Radius 0 means no limit
	filtered, active := FilterByRadius(meals, f64(37.7749), f64(-122.4194), 0)
	assert.True(t, active)
	assert.Len(t, filtered, 1)
}

func TestFilterByRadiusNoRequesterCoords(t *testing.T) {
	meals := []models.Meal{
		{Title: "far away", Lat: f64(51.5), Lng: f64(-0.12)},
	}

	filtered, active := FilterByRadius(meals, nil, nil, 15)
	assert.False(t, active)
	assert.Len(t, filtered, 1)
}
