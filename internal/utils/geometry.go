// Package utils holds small geometry helpers shared by the map views.
package utils

import "math"

const (
	// RadiusOfEarthInMeters is RADIUS_OF_EARTH_IN_KM * 1000
	RadiusOfEarthInMeters = 6371010.0
)

// Distance calculates the distance in meters between two points on the
// Earth. For short distances (under ~22km) it uses an Equirectangular
// approximation to save CPU cycles; bus trails stay well inside that
// range. Longer distances fall back to the exact formula.
func Distance(lat1, lon1, lat2, lon2 float64) float64 {
	if math.Abs(lat2-lat1) < 0.2 && math.Abs(lon2-lon1) < 0.2 {
		lat1Rad := lat1 * (math.Pi / 180)
		lat2Rad := lat2 * (math.Pi / 180)
		dLatRad := (lat2 - lat1) * (math.Pi / 180)
		dLonRad := (lon2 - lon1) * (math.Pi / 180)

		x := dLonRad * math.Cos((lat1Rad+lat2Rad)/2)
		y := dLatRad
		return RadiusOfEarthInMeters * math.Sqrt(x*x+y*y)
	}

	lat1Rad := lat1 * (math.Pi / 180)
	lon1Rad := lon1 * (math.Pi / 180)
	lat2Rad := lat2 * (math.Pi / 180)
	lon2Rad := lon2 * (math.Pi / 180)

	deltaLon := lon2Rad - lon1Rad

	y := math.Sqrt(math.Pow(math.Cos(lat2Rad)*math.Sin(deltaLon), 2) +
		math.Pow(math.Cos(lat1Rad)*math.Sin(lat2Rad)-math.Sin(lat1Rad)*math.Cos(lat2Rad)*math.Cos(deltaLon), 2))
	x := math.Sin(lat1Rad)*math.Sin(lat2Rad) + math.Cos(lat1Rad)*math.Cos(lat2Rad)*math.Cos(deltaLon)

	return RadiusOfEarthInMeters * math.Atan2(y, x)
}

// PathMeters sums the leg distances along an ordered sequence of
// lat/lng pairs.
func PathMeters(points [][2]float64) float64 {
	var total float64
	for i := 1; i < len(points); i++ {
		total += Distance(points[i-1][0], points[i-1][1], points[i][0], points[i][1])
	}
	return total
}
