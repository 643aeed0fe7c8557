package solar

import (
	"math"
	"time"
)

// Calculation constants.
const (
	// zenithDegrees is the solar zenith angle for official sunrise/sunset.
	// 90.833° accounts for atmospheric refraction and the sun's apparent radius.
	zenithDegrees = 90.833

	// minutesPerDay is the number of minutes in a civil day.
	minutesPerDay = 1440

	// solarNoonMinutes is solar noon expressed in minutes (12:00 UTC baseline).
	solarNoonMinutes = 720

	// minutesPerDegree converts longitude/hour-angle degrees to clock minutes.
	minutesPerDegree = 4
)

// EventTimes computes local sunrise and sunset for the given date, latitude,
// and longitude, expressed as minutes since local midnight in [0, 1440).
//
// The calculation uses the standard simplified solar-position equations:
// fractional-year angle from day-of-year, equation-of-time correction,
// solar declination, and the hour angle for a zenith of 90.833°. The
// hour-angle cosine is clamped to [-1, 1], so extreme latitudes degrade
// to "always day" or "always night" approximations instead of failing.
//
// The date's own UTC offset is used for the local conversion, so callers
// should pass a time in the zone they want results for. Accuracy is within
// a few minutes of true solar events.
//
// Parameters:
//   - date: The calendar date (and zone) to compute events for
//   - latitude: Degrees north, signed
//   - longitude: Degrees east, signed
//
// Returns:
//   - sunrise: Minutes since local midnight
//   - sunset: Minutes since local midnight
func EventTimes(date time.Time, latitude, longitude float64) (sunrise, sunset int) {
	gamma := fractionalYear(date)
	eqTime := equationOfTime(gamma)
	decl := declination(gamma)

	ha := hourAngle(latitude, decl)

	// UTC minute offsets for the events.
	riseUTC := solarNoonMinutes - minutesPerDegree*(longitude+ha) - eqTime
	setUTC := solarNoonMinutes - minutesPerDegree*(longitude-ha) - eqTime

	// Convert to local clock minutes using the date's UTC offset.
	_, offsetSeconds := date.Zone()
	offsetMinutes := float64(offsetSeconds) / 60

	sunrise = normalizeMinutes(riseUTC + offsetMinutes)
	sunset = normalizeMinutes(setUTC + offsetMinutes)
	return sunrise, sunset
}

// fractionalYear returns the fractional-year angle gamma in radians for the
// given date, evaluated at solar noon.
func fractionalYear(date time.Time) float64 {
	const noonHour = 12.0
	day := float64(date.YearDay())
	return 2 * math.Pi / 365 * (day - 1 + (noonHour-12)/24)
}

// equationOfTime returns the equation-of-time correction in minutes for the
// fractional-year angle gamma.
func equationOfTime(gamma float64) float64 {
	return 229.18 * (0.000075 +
		0.001868*math.Cos(gamma) -
		0.032077*math.Sin(gamma) -
		0.014615*math.Cos(2*gamma) -
		0.040849*math.Sin(2*gamma))
}

// declination returns the solar declination in radians for the
// fractional-year angle gamma.
func declination(gamma float64) float64 {
	return 0.006918 -
		0.399912*math.Cos(gamma) +
		0.070257*math.Sin(gamma) -
		0.006758*math.Cos(2*gamma) +
		0.000907*math.Sin(2*gamma) -
		0.002697*math.Cos(3*gamma) +
		0.00148*math.Sin(3*gamma)
}

// hourAngle returns the sunrise/sunset hour angle in degrees for the given
// latitude (degrees) and declination (radians). The cosine is clamped to
// [-1, 1] so polar day and polar night collapse to 180° and 0° respectively.
func hourAngle(latitude, decl float64) float64 {
	latRad := latitude * math.Pi / 180
	zenithRad := zenithDegrees * math.Pi / 180

	cosHA := math.Cos(zenithRad)/(math.Cos(latRad)*math.Cos(decl)) -
		math.Tan(latRad)*math.Tan(decl)

	if cosHA > 1 {
		cosHA = 1
	}
	if cosHA < -1 {
		cosHA = -1
	}

	return math.Acos(cosHA) * 180 / math.Pi
}

// normalizeMinutes rounds and wraps a minute offset into [0, 1440).
func normalizeMinutes(minutes float64) int {
	m := int(math.Round(minutes))
	m %= minutesPerDay
	if m < 0 {
		m += minutesPerDay
	}
	return m
}
