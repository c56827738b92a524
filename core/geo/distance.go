// Package geo estimates distances and travel times between service
// locations. Distances are great-circle kilometres; travel times assume an
// urban average speed plus a flat traffic and parking allowance.
package geo

import (
	"math"

	"github.com/Cooliber/Fulmark20CRM-sub003/core/model"
)

const (
	earthRadiusKm = 6371.0

	// averageSpeedKmh is the assumed door-to-door driving speed.
	averageSpeedKmh = 40.0

	// travelBufferMinutes covers traffic and parking on every leg.
	travelBufferMinutes = 10
)

// Distance returns the Haversine distance in kilometres between two points.
// It is symmetric and zero for identical coordinates.
func Distance(a, b model.Coordinates) float64 {
	dLat := radians(b.Lat - a.Lat)
	dLon := radians(b.Lon - a.Lon)

	latA := radians(a.Lat)
	latB := radians(b.Lat)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Sin(dLon/2)*math.Sin(dLon/2)*math.Cos(latA)*math.Cos(latB)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
	return earthRadiusKm * c
}

// TravelTime estimates the driving time in whole minutes from a to b,
// including the flat traffic buffer. Never negative.
func TravelTime(a, b model.Coordinates) int {
	minutes := Distance(a, b) / averageSpeedKmh * 60
	t := int(math.Round(minutes)) + travelBufferMinutes
	if t < 0 {
		return 0
	}
	return t
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}
