// Package solar computes local sunrise and sunset times.
//
// The implementation follows the standard simplified solar-position
// equations (fractional-year angle, equation of time, declination, hour
// angle at a zenith of 90.833°). It is pure and has no failure modes:
// at extreme latitudes the hour-angle cosine is clamped, producing
// "always day" or "always night" approximations rather than errors.
//
// Results are accurate to within a few minutes of true solar events
// and vary continuously with latitude, longitude, and date, which is
// what the schedule evaluator needs for synthetic sunrise/sunset rules.
package solar
