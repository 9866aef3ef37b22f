package catalog

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

var countSuffixes = strings.NewReplacer(
	",", "",
	"K", "k",
	// the site uses B for billions, SI calls it giga
	"B", "G",
)

// ParseCount parses decorated counts like "12.3M", "1.2K" or "3B".
func ParseCount(text string) (float64, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return 0, false
	}
	fields := strings.Fields(text)
	if len(fields) > 1 && strings.EqualFold(fields[len(fields)-1], "pulls") {
		text = strings.Join(fields[:len(fields)-1], "")
	}
	value, rest, err := humanize.ParseSI(countSuffixes.Replace(text))
	if err != nil || strings.TrimSpace(rest) != "" {
		return 0, false
	}
	return value, true
}

var paramsRegex = regexp.MustCompile(`(?i)^e?(?:(\d+)x)?(\d+(?:\.\d+)?)([kmbt])$`)

var paramsScale = map[string]float64{
	"k": 1e3,
	"m": 1e6,
	"b": 1e9,
	"t": 1e12,
}

// ParseParams parses parameter size tags like "8b", "270m" or "8x7b".
func ParseParams(tag string) (float64, bool) {
	match := paramsRegex.FindStringSubmatch(strings.TrimSpace(tag))
	if match == nil {
		return 0, false
	}
	experts := 1.0
	if match[1] != "" {
		n, err := strconv.ParseFloat(match[1], 64)
		if err != nil {
			return 0, false
		}
		experts = n
	}
	value, err := strconv.ParseFloat(match[2], 64)
	if err != nil {
		return 0, false
	}
	return experts * value * paramsScale[strings.ToLower(match[3])], true
}

// LargestParams is the largest parsable size tag, zero if none parse.
func LargestParams(tags []string) float64 {
	var largest float64
	for _, tag := range tags {
		value, ok := ParseParams(tag)
		if ok && value > largest {
			largest = value
		}
	}
	return largest
}

var ageRegex = regexp.MustCompile(`(?i)^(\d+|an?|one)\s+(second|minute|hour|day|week|month|year)s?\s+ago$`)

var ageUnits = map[string]time.Duration{
	"second": time.Second,
	"minute": time.Minute,
	"hour":   time.Hour,
	"day":    24 * time.Hour,
	"week":   7 * 24 * time.Hour,
	"month":  30 * 24 * time.Hour,
	"year":   365 * 24 * time.Hour,
}

// ParseAge parses relative ages like "3 months ago" or "yesterday".
func ParseAge(text string) (time.Duration, bool) {
	text = strings.ToLower(strings.TrimSpace(text))
	switch text {
	case "just now", "now":
		return 0, true
	case "yesterday":
		return ageUnits["day"], true
	}

	match := ageRegex.FindStringSubmatch(text)
	if match == nil {
		return 0, false
	}
	n := 1
	switch match[1] {
	case "a", "an", "one":
	default:
		parsed, err := strconv.Atoi(match[1])
		if err != nil {
			return 0, false
		}
		n = parsed
	}
	return time.Duration(n) * ageUnits[match[2]], true
}

// IsAge reports whether the text reads as a relative age.
func IsAge(text string) bool {
	_, ok := ParseAge(text)
	return ok
}

// ParseBytes parses decorated sizes like "5.2GB".
func ParseBytes(text string) (uint64, bool) {
	text = strings.TrimSpace(text)
	if text == "" || text == "-" {
		return 0, false
	}
	value, err := humanize.ParseBytes(text)
	if err != nil {
		return 0, false
	}
	return value, true
}
