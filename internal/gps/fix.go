package gps

import (
	"fmt"
	"strings"
	"time"

	nmea "github.com/adrianmo/go-nmea"
)

// Snapshot is an immutable view of the latest fix knowledge, safe to hand to
// concurrent readers.
type Snapshot struct {
	Connected bool `json:"connected"`
	Busy      bool `json:"busy"`

	HasLocation bool    `json:"has_location"`
	Latitude    float64 `json:"lat_deg,omitempty"`
	// Longitude is normalized to [0, 360).
	Longitude  float64 `json:"lon_deg,omitempty"`
	ElevationM float64 `json:"elevation_m,omitempty"`

	HasTime bool `json:"has_time"`
	// TimeUTC is ISO-8601 without zone suffix, e.g. "1994-03-23T12:35:19".
	TimeUTC string `json:"time_utc,omitempty"`
	// UTCOffset is the local zone offset in hours, e.g. "1.00" or "-7.50".
	UTCOffset string `json:"utc_offset_hours,omitempty"`

	FixLabel string `json:"fix,omitempty"`

	LastUpdateUTC string `json:"last_update_utc,omitempty"`
}

// fixState is the acquisition worker's private accumulator; only snapshots
// leave the worker.
type fixState struct {
	hasLocation bool
	lat         float64
	lon         float64
	elev        float64

	hasTime   bool
	utc       time.Time
	timeUTC   string
	utcOffset string

	label string
}

// applyResult reports which data a sentence supplied.
type applyResult struct {
	location bool
	time     bool
	label    bool
	when     time.Time
}

func (s *fixState) apply(sent Sentence, now time.Time) applyResult {
	switch sent.Kind {
	case KindRMC:
		return s.applyRMC(sent.RMC)
	case KindGGA:
		return s.applyGGA(sent.GGA, now)
	case KindGSA:
		return s.applyGSA(sent.GSA)
	case KindZDA:
		return s.applyZDA(sent.ZDA)
	default:
		return applyResult{}
	}
}

// applyRMC takes location and full date/time, but only from sentences the
// receiver itself marks valid.
func (s *fixState) applyRMC(frame nmea.RMC) applyResult {
	if frame.Validity != "A" {
		return applyResult{}
	}
	when, err := timeFromDate(frame.Date, frame.Time)
	if err != nil {
		return applyResult{}
	}
	s.setLocation(frame.Latitude, frame.Longitude)
	s.setTime(when)
	return applyResult{location: true, time: true, when: when}
}

// applyGGA takes location and elevation when a fix is held (quality field
// nonzero; richer GNSS quality codes all count as "has fix"). GGA carries
// time-of-day only, so the date comes from the current UTC calendar date.
func (s *fixState) applyGGA(frame nmea.GGA, now time.Time) applyResult {
	q := strings.TrimSpace(frame.FixQuality)
	if q == "" || q == "0" {
		return applyResult{}
	}
	when, err := timeFromClockDate(now, frame.Time)
	if err != nil {
		return applyResult{}
	}
	s.setLocation(frame.Latitude, frame.Longitude)
	s.elev = frame.Altitude
	s.setTime(when)
	return applyResult{location: true, time: true, when: when}
}

// applyGSA updates only the textual fix-quality label. It is a status
// side-channel, independent of location/time and the pending protocol.
func (s *fixState) applyGSA(frame nmea.GSA) applyResult {
	switch strings.TrimSpace(frame.FixType) {
	case "1":
		s.label = "NO FIX"
	case "2":
		s.label = "2D FIX"
	case "3":
		s.label = "3D FIX"
	default:
		return applyResult{}
	}
	return applyResult{label: true}
}

// applyZDA takes full date/time but no location.
func (s *fixState) applyZDA(frame nmea.ZDA) applyResult {
	when, err := zdaTime(frame)
	if err != nil {
		return applyResult{}
	}
	s.setTime(when)
	return applyResult{time: true, when: when}
}

func (s *fixState) setLocation(lat, lon float64) {
	if lon < 0 {
		lon += 360
	}
	s.lat = lat
	s.lon = lon
	s.hasLocation = true
}

func (s *fixState) setTime(when time.Time) {
	s.utc = when.UTC()
	s.timeUTC = s.utc.Format("2006-01-02T15:04:05")
	_, offsetSec := when.In(time.Local).Zone()
	s.utcOffset = fmt.Sprintf("%4.2f", float64(offsetSec)/3600.0)
	s.hasTime = true
}

func (s *fixState) snapshot(nowUTC time.Time, connected, busy bool) Snapshot {
	return Snapshot{
		Connected:     connected,
		Busy:          busy,
		HasLocation:   s.hasLocation,
		Latitude:      s.lat,
		Longitude:     s.lon,
		ElevationM:    s.elev,
		HasTime:       s.hasTime,
		TimeUTC:       s.timeUTC,
		UTCOffset:     s.utcOffset,
		FixLabel:      s.label,
		LastUpdateUTC: nowUTC.UTC().Format(time.RFC3339Nano),
	}
}

// timeFromDate combines an RMC embedded date and time. Two-digit years are
// windowed: 80..99 map to 19xx, 00..79 to 20xx.
func timeFromDate(d nmea.Date, t nmea.Time) (time.Time, error) {
	if !d.Valid || !t.Valid {
		return time.Time{}, fmt.Errorf("gps: incomplete date/time")
	}
	year := d.YY
	if year >= 80 {
		year += 1900
	} else {
		year += 2000
	}
	return buildUTC(year, d.MM, d.DD, t)
}

// timeFromClockDate combines a date-less time-of-day (GGA) with the current
// UTC calendar date.
func timeFromClockDate(now time.Time, t nmea.Time) (time.Time, error) {
	if !t.Valid {
		return time.Time{}, fmt.Errorf("gps: incomplete time")
	}
	y, m, d := now.UTC().Date()
	return buildUTC(y, int(m), d, t)
}

func zdaTime(z nmea.ZDA) (time.Time, error) {
	if !z.Time.Valid {
		return time.Time{}, fmt.Errorf("gps: incomplete time")
	}
	return buildUTC(int(z.Year), int(z.Month), int(z.Day), z.Time)
}

func buildUTC(year, month, day int, t nmea.Time) (time.Time, error) {
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return time.Time{}, fmt.Errorf("gps: invalid date %04d-%02d-%02d", year, month, day)
	}
	// Second 60 allowed for leap seconds.
	if t.Hour < 0 || t.Hour > 23 || t.Minute < 0 || t.Minute > 59 || t.Second < 0 || t.Second > 60 {
		return time.Time{}, fmt.Errorf("gps: invalid time %02d:%02d:%02d", t.Hour, t.Minute, t.Second)
	}
	return time.Date(year, time.Month(month), day, t.Hour, t.Minute, t.Second, t.Millisecond*int(time.Millisecond), time.UTC), nil
}
