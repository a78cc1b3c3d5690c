package models

import (
	"time"

	"github.com/lestrrat-go/strftime"
)

// Formatter turns a snapshot time into a calendar string.
type Formatter interface {
	Format(t time.Time, format string) (string, error)
}

// StrftimeFormatter understands strftime specifiers such as "%Y-%m-%d %H:%M".
// A nil Location means UTC.
type StrftimeFormatter struct {
	Location *time.Location
}

func (f StrftimeFormatter) Format(t time.Time, format string) (string, error) {
	return strftime.Format(format, t.In(locationOrUTC(f.Location)))
}

// LayoutFormatter uses Go reference layouts such as time.RFC3339.
type LayoutFormatter struct {
	Location *time.Location
}

func (f LayoutFormatter) Format(t time.Time, format string) (string, error) {
	return t.In(locationOrUTC(f.Location)).Format(format), nil
}

func locationOrUTC(loc *time.Location) *time.Location {
	if loc == nil {
		return time.UTC
	}
	return loc
}
