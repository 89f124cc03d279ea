package profile

import "regexp"

// Pattern tags for recognized string shapes.
const (
	PatternIPAddress    = "ip_address"
	PatternEmail        = "email"
	PatternURL          = "url"
	PatternUUID         = "uuid"
	PatternISOTimestamp = "iso_timestamp"

	// PatternNone is reported for fields without any recognized string.
	// It is never stored in a histogram.
	PatternNone = "none"
)

type pattern struct {
	tag string
	re  *regexp.Regexp
}

// patterns is evaluated in order; the first match wins. Fully anchored
// patterns accept one trailing newline before the end of the string.
var patterns = []pattern{
	{PatternIPAddress, regexp.MustCompile(`^\d{1,3}\.\d{1,3}\.\d{1,3}\.\d{1,3}\n?$`)},
	{PatternEmail, regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}\n?$`)},
	{PatternURL, regexp.MustCompile(`^https?://`)},
	{PatternUUID, regexp.MustCompile(`(?i)^[a-f0-9]{8}-[a-f0-9]{4}-[a-f0-9]{4}-[a-f0-9]{4}-[a-f0-9]{12}\n?$`)},
	{PatternISOTimestamp, regexp.MustCompile(`^\d{4}-\d{2}-\d{2}[T\s]\d{2}:\d{2}:\d{2}`)},
}

// DetectPattern returns the first pattern tag s matches, or PatternNone.
func DetectPattern(s string) string {
	for _, p := range patterns {
		if p.re.MatchString(s) {
			return p.tag
		}
	}
	return PatternNone
}
