package geo

import "math"

// GREAT-CIRCLE NAVIGATION
// All functions are pure and deterministic. Positions are WGS84 degrees;
// distances use the spherical earth model so recorded playback reproduces
// live results exactly.

const (
	// EarthRadiusKm is the mean earth radius used by the haversine formula.
	EarthRadiusKm = 6371.0

	// KmPerNauticalMile converts nautical miles to kilometers.
	KmPerNauticalMile = 1.852

	// minTransitSeconds floors time-to-destination so a near-zero speed
	// cannot produce an infinite or NaN transit time.
	minTransitSeconds = 1e-4
)

// Bearing returns the initial great-circle bearing in degrees [0, 360)
// from point 1 to point 2.
func Bearing(lat1, lon1, lat2, lon2 float64) float64 {
	phi1 := toRadians(lat1)
	phi2 := toRadians(lat2)
	deltaLambda := toRadians(lon2 - lon1)

	y := math.Sin(deltaLambda) * math.Cos(phi2)
	x := math.Cos(phi1)*math.Sin(phi2) - math.Sin(phi1)*math.Cos(phi2)*math.Cos(deltaLambda)
	theta := math.Atan2(y, x)

	return math.Mod(toDegrees(theta)+360, 360)
}

// Distance returns the haversine great-circle distance in kilometers
// between two points.
func Distance(lat1, lon1, lat2, lon2 float64) float64 {
	phi1 := toRadians(lat1)
	phi2 := toRadians(lat2)
	deltaPhi := toRadians(lat2 - lat1)
	deltaLambda := toRadians(lon2 - lon1)

	a := math.Sin(deltaPhi/2)*math.Sin(deltaPhi/2) +
		math.Cos(phi1)*math.Cos(phi2)*math.Sin(deltaLambda/2)*math.Sin(deltaLambda/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return EarthRadiusKm * c
}

// Destination projects a point the given distance along the given bearing
// using the spherical direct formula.
func Destination(lat, lon, distanceKm, bearingDeg float64) (float64, float64) {
	phi1 := toRadians(lat)
	lambda1 := toRadians(lon)
	theta := toRadians(bearingDeg)
	delta := distanceKm / EarthRadiusKm

	phi2 := math.Asin(math.Sin(phi1)*math.Cos(delta) +
		math.Cos(phi1)*math.Sin(delta)*math.Cos(theta))
	lambda2 := lambda1 + math.Atan2(
		math.Sin(theta)*math.Sin(delta)*math.Cos(phi1),
		math.Cos(delta)-math.Sin(phi1)*math.Sin(phi2))

	return toDegrees(phi2), toDegrees(lambda2)
}

// NextPosition returns the position reached after moving for tickSeconds
// along the great circle from origin toward destination at speedKnots.
// A leg never overshoots: once the remaining distance fits within the
// tick the destination itself is returned.
func NextPosition(originLat, originLon, destLat, destLon, speedKnots, tickSeconds float64) (float64, float64) {
	totalKm := Distance(originLat, originLon, destLat, destLon)
	if totalKm == 0 {
		return destLat, destLon
	}

	kmPerSecond := speedKnots * KmPerNauticalMile / 3600
	transitSeconds := math.Max(totalKm/math.Max(kmPerSecond, 1e-12), minTransitSeconds)
	if transitSeconds <= tickSeconds {
		return destLat, destLon
	}

	legKm := kmPerSecond * tickSeconds
	bearing := Bearing(originLat, originLon, destLat, destLon)
	return Destination(originLat, originLon, legKm, bearing)
}

// NmToKm converts nautical miles to kilometers.
func NmToKm(nm float64) float64 {
	return nm * KmPerNauticalMile
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}

func toDegrees(rad float64) float64 {
	return rad * 180 / math.Pi
}
