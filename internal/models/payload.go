package models

// Section names used when a payload is missing data an operation needs.
const (
	SectionCurrently = "currently"
	SectionHourly    = "hourly.data"
	SectionDaily     = "daily.data"
)

// Payload is the provider response body. Every section is optional.
type Payload struct {
	Latitude  float64    `json:"latitude"`
	Longitude float64    `json:"longitude"`
	Timezone  string     `json:"timezone,omitempty"`
	Offset    float64    `json:"offset,omitempty"`
	Currently *DataPoint `json:"currently,omitempty"`
	Hourly    *Block     `json:"hourly,omitempty"`
	Daily     *Block     `json:"daily,omitempty"`
}

type Block struct {
	Summary string      `json:"summary,omitempty"`
	Icon    string      `json:"icon,omitempty"`
	Data    []DataPoint `json:"data"`
}

// HourlyData returns hourly.data and false when the section is missing. An
// empty but present array is reported as present.
func (p Payload) HourlyData() ([]DataPoint, bool) {
	return p.Hourly.points()
}

func (p Payload) DailyData() ([]DataPoint, bool) {
	return p.Daily.points()
}

func (b *Block) points() ([]DataPoint, bool) {
	if b == nil || b.Data == nil {
		return nil, false
	}
	return b.Data, true
}

// DataPoint is one snapshot. Pointer fields are nil when the provider did not
// send them for this kind of snapshot.
type DataPoint struct {
	Time                   *int64   `json:"time,omitempty"`
	Summary                *string  `json:"summary,omitempty"`
	Icon                   *string  `json:"icon,omitempty"`
	SunriseTime            *int64   `json:"sunriseTime,omitempty"`
	SunsetTime             *int64   `json:"sunsetTime,omitempty"`
	PrecipIntensity        *float64 `json:"precipIntensity,omitempty"`
	PrecipIntensityMax     *float64 `json:"precipIntensityMax,omitempty"`
	PrecipIntensityMaxTime *int64   `json:"precipIntensityMaxTime,omitempty"`
	PrecipProbability      *float64 `json:"precipProbability,omitempty"`
	PrecipType             *string  `json:"precipType,omitempty"`
	PrecipAccumulation     *float64 `json:"precipAccumulation,omitempty"`
	Temperature            *float64 `json:"temperature,omitempty"`
	ApparentTemperature    *float64 `json:"apparentTemperature,omitempty"`
	TemperatureMin         *float64 `json:"temperatureMin,omitempty"`
	TemperatureMinTime     *int64   `json:"temperatureMinTime,omitempty"`
	TemperatureMax         *float64 `json:"temperatureMax,omitempty"`
	TemperatureMaxTime     *int64   `json:"temperatureMaxTime,omitempty"`
	DewPoint               *float64 `json:"dewPoint,omitempty"`
	WindSpeed              *float64 `json:"windSpeed,omitempty"`
	WindBearing            *float64 `json:"windBearing,omitempty"`
	CloudCover             *float64 `json:"cloudCover,omitempty"`
	Humidity               *float64 `json:"humidity,omitempty"`
	Pressure               *float64 `json:"pressure,omitempty"`
	Visibility             *float64 `json:"visibility,omitempty"`
	Ozone                  *float64 `json:"ozone,omitempty"`
}

// clone copies every set field so the result shares no memory with d.
func (d DataPoint) clone() DataPoint {
	return DataPoint{
		Time:                   cloneOf(d.Time),
		Summary:                cloneOf(d.Summary),
		Icon:                   cloneOf(d.Icon),
		SunriseTime:            cloneOf(d.SunriseTime),
		SunsetTime:             cloneOf(d.SunsetTime),
		PrecipIntensity:        cloneOf(d.PrecipIntensity),
		PrecipIntensityMax:     cloneOf(d.PrecipIntensityMax),
		PrecipIntensityMaxTime: cloneOf(d.PrecipIntensityMaxTime),
		PrecipProbability:      cloneOf(d.PrecipProbability),
		PrecipType:             cloneOf(d.PrecipType),
		PrecipAccumulation:     cloneOf(d.PrecipAccumulation),
		Temperature:            cloneOf(d.Temperature),
		ApparentTemperature:    cloneOf(d.ApparentTemperature),
		TemperatureMin:         cloneOf(d.TemperatureMin),
		TemperatureMinTime:     cloneOf(d.TemperatureMinTime),
		TemperatureMax:         cloneOf(d.TemperatureMax),
		TemperatureMaxTime:     cloneOf(d.TemperatureMaxTime),
		DewPoint:               cloneOf(d.DewPoint),
		WindSpeed:              cloneOf(d.WindSpeed),
		WindBearing:            cloneOf(d.WindBearing),
		CloudCover:             cloneOf(d.CloudCover),
		Humidity:               cloneOf(d.Humidity),
		Pressure:               cloneOf(d.Pressure),
		Visibility:             cloneOf(d.Visibility),
		Ozone:                  cloneOf(d.Ozone),
	}
}

func cloneOf[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func valueOf[T any](p *T) (T, bool) {
	if p == nil {
		var zero T
		return zero, false
	}
	return *p, true
}
