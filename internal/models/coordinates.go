package models

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Coordinates identifies a forecast query location. A non-zero Time turns the
// query into a time-machine request for that instant.
type Coordinates struct {
	Latitude  float64   `json:"latitude" validate:"gte=-90,lte=90"`
	Longitude float64   `json:"longitude" validate:"gte=-180,lte=180"`
	Time      time.Time `json:"time,omitempty"`
}

func NewCoordinates(lat, lon float64) Coordinates {
	return Coordinates{Latitude: lat, Longitude: lon}
}

// At returns a copy of c pinned to t.
func (c Coordinates) At(t time.Time) Coordinates {
	c.Time = t
	return c
}

func (c Coordinates) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w (%s): %v", ErrInvalidCoordinates, c, err)
	}
	return nil
}

// String renders the provider path segment: "lat,lon" or "lat,lon,unix".
func (c Coordinates) String() string {
	s := formatFloat(c.Latitude) + "," + formatFloat(c.Longitude)
	if !c.Time.IsZero() {
		s += "," + strconv.FormatInt(c.Time.Unix(), 10)
	}
	return s
}

// ParseCoordinates is the inverse of Coordinates.String.
func ParseCoordinates(s string) (Coordinates, error) {
	parts := strings.Split(strings.TrimSpace(s), ",")
	if len(parts) != 2 && len(parts) != 3 {
		return Coordinates{}, fmt.Errorf("%w: expected \"lat,lon[,time]\", got %q", ErrInvalidCoordinates, s)
	}

	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return Coordinates{}, fmt.Errorf("%w: invalid latitude %q", ErrInvalidCoordinates, parts[0])
	}
	lon, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return Coordinates{}, fmt.Errorf("%w: invalid longitude %q", ErrInvalidCoordinates, parts[1])
	}

	c := NewCoordinates(lat, lon)
	if len(parts) == 3 {
		unix, err := strconv.ParseInt(strings.TrimSpace(parts[2]), 10, 64)
		if err != nil {
			return Coordinates{}, fmt.Errorf("%w: invalid time %q", ErrInvalidCoordinates, parts[2])
		}
		c = c.At(time.Unix(unix, 0).UTC())
	}

	if err := c.Validate(); err != nil {
		return Coordinates{}, err
	}

	return c, nil
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
