package service

import (
	"math"

	"github.com/foodshare/backend/internal/models"
)

// earthRadiusMiles is the mean Earth radius used for great-circle distances.
const earthRadiusMiles = 3958.8

// DefaultRadiusMiles is applied when a caller supplies coordinates without a
// radius. A radius of 0 means "no limit".
const DefaultRadiusMiles = 15.0

// HaversineMiles returns the great-circle distance in miles between two
// latitude/longitude points.
func HaversineMiles(lat1, lng1, lat2, lng2 float64) float64 {
	toRad := func(deg float64) float64 { return deg * math.Pi / 180 }

	dLat := toRad(lat2 - lat1)
	dLng := toRad(lng2 - lng1)
	sinDLat := math.Sin(dLat / 2)
	sinDLng := math.Sin(dLng / 2)

	a := sinDLat*sinDLat + math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*sinDLng*sinDLng
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusMiles * c
}

// FilterByRadius retains meals within radiusMiles of the requester.
// Meals without coordinates are always retained: they cannot be excluded on
// geography they don't have. A nil requester position disables filtering
// entirely and the second return value reports false so callers can surface
// the degraded state.
func FilterByRadius(meals []models.Meal, lat, lng *float64, radiusMiles float64) ([]models.Meal, bool) {
	if lat == nil || lng == nil {
		return meals, false
	}
	if radiusMiles <= 0 {
		return meals, true
	}

	filtered := make([]models.Meal, 0, len(meals))
	for _, meal := range meals {
		if meal.Lat == nil || meal.Lng == nil {
			filtered = append(filtered, meal)
			continue
		}
		if HaversineMiles(*lat, *lng, *meal.Lat, *meal.Lng) <= radiusMiles {
			filtered = append(filtered, meal)
		}
	}
	return filtered, true
}
