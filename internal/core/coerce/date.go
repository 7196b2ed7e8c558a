package coerce

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

var months = map[string]time.Month{
	"JAN": time.January, "FEB": time.February, "MAR": time.March, "APR": time.April,
	"MAY": time.May, "JUN": time.June, "JUL": time.July, "AUG": time.August,
	"SEP": time.September, "OCT": time.October, "NOV": time.November, "DEC": time.December,

	"ENE": time.January, "ABR": time.April, "AGO": time.August, "SET": time.September, "DIC": time.December,

	"ENERO": time.January, "FEBRERO": time.February, "MARZO": time.March, "ABRIL": time.April,
	"MAYO": time.May, "JUNIO": time.June, "JULIO": time.July, "AGOSTO": time.August,
	"SEPTIEMBRE": time.September, "SETIEMBRE": time.September, "OCTUBRE": time.October,
	"NOVIEMBRE": time.November, "DICIEMBRE": time.December,
}

var (
	dayMonYear  = regexp.MustCompile(`^(\d{1,2})/([A-Z]{3})/(\d{4})$`)
	monYear     = regexp.MustCompile(`^([A-Z]{3})/(\d{4})$`)
	compact     = regexp.MustCompile(`^(\d{4})(\d{2})(\d{2})$`)
	numeric     = regexp.MustCompile(`^(\d{1,2})[/-](\d{1,2})[/-](\d{4})$`)
	wordYear    = regexp.MustCompile(`^(\p{L}+)\s+(\d{4})$`)
	dayWordYear = regexp.MustCompile(`^(\d{1,2})\s+(\p{L}+)\s+(\d{4})$`)
)

// ParseDate understands dd/MON/yyyy, MON/yyyy (day 1), yyyyMMdd,
// dd/mm/yyyy, dd-mm-yyyy, "MONTH yyyy" and "dd MONTH yyyy". Month names may be
// English or Spanish. ok is false for anything else, including impossible
// calendar dates.
func ParseDate(raw string) (time.Time, bool) {
	s := strings.ToUpper(strings.TrimSpace(raw))
	if s == "" {
		return time.Time{}, false
	}

	if m := dayMonYear.FindStringSubmatch(s); m != nil {
		return build(m[3], monthNumber(m[2]), m[1])
	}
	if m := monYear.FindStringSubmatch(s); m != nil {
		return build(m[2], monthNumber(m[1]), "1")
	}
	if m := compact.FindStringSubmatch(s); m != nil {
		return build(m[1], m[2], m[3])
	}
	if m := numeric.FindStringSubmatch(s); m != nil {
		return build(m[3], m[2], m[1])
	}
	if m := wordYear.FindStringSubmatch(s); m != nil {
		return build(m[2], monthNumber(m[1]), "1")
	}
	if m := dayWordYear.FindStringSubmatch(s); m != nil {
		return build(m[3], monthNumber(m[2]), m[1])
	}
	return time.Time{}, false
}

func monthNumber(name string) string {
	if m, ok := months[name]; ok {
		return strconv.Itoa(int(m))
	}
	return ""
}

func build(year, month, day string) (time.Time, bool) {
	y, errY := strconv.Atoi(year)
	mo, errM := strconv.Atoi(month)
	d, errD := strconv.Atoi(day)
	if errY != nil || errM != nil || errD != nil || mo < 1 || mo > 12 || d < 1 {
		return time.Time{}, false
	}
	t := time.Date(y, time.Month(mo), d, 0, 0, 0, 0, time.UTC)
	if t.Day() != d || t.Month() != time.Month(mo) {
		return time.Time{}, false
	}
	return t, true
}
