package crs

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"

	"github.com/jobrunner/sphaera/internal/domain"
)

// SexagesimalFromDeg formats a right ascension and declination in degrees as
// "HHh MMm SS.SSs" and "±DD° MM' SS.SS\"". A negative right ascension is
// taken modulo 360 first.
func SexagesimalFromDeg(ra, dec float64) [2]string {
	if ra < 0 {
		ra += 360
	}
	return [2]string{DegreesToHMS(ra), DegreesToDMS(dec)}
}

// DegreesToHMS formats degrees as hours, minutes and seconds of time.
func DegreesToHMS(degree float64) string {
	hours, mins, sec := split60(degree / 15)
	return pad2(hours) + "h " + pad2(mins) + "m " + pad2(roundTo(sec, 2)) + "s"
}

// DegreesToDMS formats degrees as signed degrees, arc minutes and arc seconds.
func DegreesToDMS(degree float64) string {
	sign := "+"
	if degree < 0 {
		sign = "-"
	}
	deg, mins, sec := split60(degree)
	return sign + pad2(deg) + "° " + pad2(mins) + "' " + pad2(roundTo(sec, 2)) + "\""
}

// DecimalDegFromSexagesimal parses the output of SexagesimalFromDeg back into
// degrees. Each string holds three space-separated numbers; trailing unit
// characters are ignored. The declination sign is read from the string so
// that "-00° 30' 00\"" stays negative.
func DecimalDegFromSexagesimal(ra, dec string) (float64, float64, error) {
	h, m, s, err := parseTriplet(ra)
	if err != nil {
		return 0, 0, fmt.Errorf("right ascension %q: %w", ra, err)
	}
	lon := (h + m/60 + s/3600) * 15

	d, m, s, err := parseTriplet(dec)
	if err != nil {
		return 0, 0, fmt.Errorf("declination %q: %w", dec, err)
	}
	sign := 1.0
	if strings.HasPrefix(strings.TrimSpace(dec), "-") {
		sign = -1
	}
	lat := sign * (math.Abs(d) + m/60 + s/3600)

	return lon, lat, nil
}

func parseTriplet(s string) (float64, float64, float64, error) {
	fields := strings.Fields(s)
	if len(fields) != 3 {
		return 0, 0, 0, fmt.Errorf("expected 3 fields, got %d: %w", len(fields), domain.ErrMalformedInput)
	}

	var v [3]float64
	for i, f := range fields {
		num := strings.TrimRightFunc(f, func(r rune) bool {
			return !unicode.IsDigit(r) && r != '.'
		})
		parsed, err := strconv.ParseFloat(num, 64)
		if err != nil {
			return 0, 0, 0, fmt.Errorf("field %q: %w", f, domain.ErrMalformedInput)
		}
		v[i] = parsed
	}
	return v[0], v[1], v[2], nil
}

// split60 splits |v| into its integer part, integer sixtieths and the
// remaining fractional sixtieths of sixtieths.
func split60(v float64) (whole, mins, sec float64) {
	abs := math.Abs(v)
	whole = math.Floor(abs)
	decimal := (abs - whole) * 60
	mins = math.Floor(decimal)
	sec = (decimal - mins) * 60
	return whole, mins, sec
}

func pad2(v float64) string {
	s := formatNumber(v)
	if v < 10 {
		return "0" + s
	}
	return s
}

func roundTo(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}

// formatNumber prints v in its shortest form, without a trailing ".0".
func formatNumber(v float64) string {
	if v == 0 {
		v = 0 // drops the sign of -0
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatDecimal(v float64, places int) string {
	return formatNumber(roundTo(v, places))
}
