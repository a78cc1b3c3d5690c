package models

import (
	"encoding/json"
	"time"
)

// ForecastView is a read-only accessor over one snapshot. Every accessor
// reports ok == false when the field was not sent for this snapshot, e.g.
// SunriseTime on an hourly entry.
type ForecastView struct {
	point     DataPoint
	formatter Formatter
}

// NewForecastView copies p, so later changes to p do not leak into the view.
// A nil formatter falls back to StrftimeFormatter in UTC.
func NewForecastView(p DataPoint, f Formatter) ForecastView {
	if f == nil {
		f = StrftimeFormatter{}
	}
	return ForecastView{
		point:     p.clone(),
		formatter: f,
	}
}

// NewForecastViews wraps every point in order.
func NewForecastViews(points []DataPoint, f Formatter) []ForecastView {
	views := make([]ForecastView, 0, len(points))
	for _, p := range points {
		views = append(views, NewForecastView(p, f))
	}
	return views
}

// Time returns the raw epoch seconds of the snapshot.
func (v ForecastView) Time() (int64, bool) { return valueOf(v.point.Time) }

// Timestamp is Time as a UTC time.Time.
func (v ForecastView) Timestamp() (time.Time, bool) {
	sec, ok := v.Time()
	if !ok {
		return time.Time{}, false
	}
	return time.Unix(sec, 0).UTC(), true
}

// FormatTime renders the snapshot time with the view's formatter. It returns
// ErrFieldAbsent when the snapshot carries no time.
func (v ForecastView) FormatTime(format string) (string, error) {
	t, ok := v.Timestamp()
	if !ok {
		return "", ErrFieldAbsent
	}
	return v.formatter.Format(t, format)
}

func (v ForecastView) Temperature() (float64, bool) { return valueOf(v.point.Temperature) }

func (v ForecastView) ApparentTemperature() (float64, bool) {
	return valueOf(v.point.ApparentTemperature)
}

func (v ForecastView) Summary() (string, bool)      { return valueOf(v.point.Summary) }
func (v ForecastView) Icon() (string, bool)         { return valueOf(v.point.Icon) }
func (v ForecastView) Pressure() (float64, bool)    { return valueOf(v.point.Pressure) }
func (v ForecastView) Humidity() (float64, bool)    { return valueOf(v.point.Humidity) }
func (v ForecastView) WindSpeed() (float64, bool)   { return valueOf(v.point.WindSpeed) }
func (v ForecastView) WindBearing() (float64, bool) { return valueOf(v.point.WindBearing) }
func (v ForecastView) CloudCover() (float64, bool)  { return valueOf(v.point.CloudCover) }
func (v ForecastView) DewPoint() (float64, bool)    { return valueOf(v.point.DewPoint) }
func (v ForecastView) Ozone() (float64, bool)       { return valueOf(v.point.Ozone) }
func (v ForecastView) Visibility() (float64, bool)  { return valueOf(v.point.Visibility) }

func (v ForecastView) PrecipitationType() (string, bool) { return valueOf(v.point.PrecipType) }

// PrecipitationProbability is in the range 0..1.
func (v ForecastView) PrecipitationProbability() (float64, bool) {
	return valueOf(v.point.PrecipProbability)
}

func (v ForecastView) PrecipitationIntensity() (float64, bool) {
	return valueOf(v.point.PrecipIntensity)
}

// The following are only sent on daily snapshots.

func (v ForecastView) PrecipitationIntensityMax() (float64, bool) {
	return valueOf(v.point.PrecipIntensityMax)
}

func (v ForecastView) PrecipitationIntensityMaxTime() (int64, bool) {
	return valueOf(v.point.PrecipIntensityMaxTime)
}

func (v ForecastView) PrecipitationAccumulation() (float64, bool) {
	return valueOf(v.point.PrecipAccumulation)
}

func (v ForecastView) MinTemperature() (float64, bool) { return valueOf(v.point.TemperatureMin) }

func (v ForecastView) MinTemperatureTime() (int64, bool) {
	return valueOf(v.point.TemperatureMinTime)
}

func (v ForecastView) MaxTemperature() (float64, bool) { return valueOf(v.point.TemperatureMax) }

func (v ForecastView) MaxTemperatureTime() (int64, bool) {
	return valueOf(v.point.TemperatureMaxTime)
}

func (v ForecastView) SunriseTime() (int64, bool) { return valueOf(v.point.SunriseTime) }
func (v ForecastView) SunsetTime() (int64, bool)  { return valueOf(v.point.SunsetTime) }

// MarshalJSON renders the wrapped snapshot unchanged.
func (v ForecastView) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.point)
}

// OnDate reports whether the snapshot time falls on the UTC calendar day of
// day. Snapshots without a time never match.
func (v ForecastView) OnDate(day time.Time) bool {
	t, ok := v.Timestamp()
	if !ok {
		return false
	}
	y1, m1, d1 := t.Date()
	y2, m2, d2 := day.UTC().Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}
