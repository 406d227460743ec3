package marker

import (
	"regexp"
	"strconv"
	"strings"
)

const (
	// MinValue is the smallest accepted limit.
	MinValue = 1
	// MaxValue is the largest accepted limit.
	MaxValue = 100000

	// Tag is the marker keyword as it appears in configuration text.
	Tag = "soft-limit"
)

// Mode selects the counting unit for a limit.
type Mode string

const (
	ModeCharacters Mode = "characters"
	ModeWords      Mode = "words"
)

// ParseMode maps a mode tag (as written into placeholder data) to a Mode.
// Empty or unknown values fall back to characters.
func ParseMode(raw string) Mode {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "w", "word", "words":
		return ModeWords
	default:
		return ModeCharacters
	}
}

// Suffix returns the grammar suffix for the mode. Characters is the default
// and has no suffix in normalized form.
func (m Mode) Suffix() string {
	if m == ModeWords {
		return "w"
	}
	return ""
}

// Valid reports whether m is one of the declared modes.
func (m Mode) Valid() bool {
	return m == ModeCharacters || m == ModeWords
}

// LimitSpec is the parsed representation of one marker. Values are only ever
// produced by the parsing functions in this package.
type LimitSpec struct {
	max  int
	mode Mode
}

// Max returns the limit value.
func (s LimitSpec) Max() int {
	return s.max
}

// Mode returns the counting unit.
func (s LimitSpec) Mode() Mode {
	if s.mode == "" {
		return ModeCharacters
	}
	return s.mode
}

// IsZero reports whether s was never produced by a parser.
func (s LimitSpec) IsZero() bool {
	return s.max == 0
}

// String renders the normalized inner text, e.g. "150" or "3w".
func (s LimitSpec) String() string {
	return strconv.Itoa(s.max) + s.Mode().Suffix()
}

// Marker renders the full normalized marker, e.g. "[soft-limit:3w]".
func (s LimitSpec) Marker() string {
	return "[" + Tag + ":" + s.String() + "]"
}

// Occurrence is a single marker found in configuration text.
type Occurrence struct {
	Full  string
	Inner string
	Start int
	End   int
}

var (
	markerPattern = regexp.MustCompile(`(?i)\[soft-limit:([^\]]*)\]`)
	innerPattern  = regexp.MustCompile(`(?i)^\s*(\d+)\s*([cw])?\s*$`)
	spacePattern  = regexp.MustCompile(`\s+`)
)

// ScanAll returns every marker occurrence in left-to-right order, regardless
// of whether the inner text is valid.
func ScanAll(text string) []Occurrence {
	matches := markerPattern.FindAllStringSubmatchIndex(text, -1)
	if len(matches) == 0 {
		return nil
	}
	out := make([]Occurrence, 0, len(matches))
	for _, m := range matches {
		out = append(out, Occurrence{
			Full:  text[m[0]:m[1]],
			Inner: text[m[2]:m[3]],
			Start: m[0],
			End:   m[1],
		})
	}
	return out
}

// ParseInner applies the marker grammar to inner text. It fails on grammar
// mismatch and on values outside [MinValue, MaxValue].
func ParseInner(inner string) (LimitSpec, bool) {
	raw, ok := parseRaw(inner)
	if !ok || !raw.inRange() {
		return LimitSpec{}, false
	}
	return LimitSpec{max: int(raw.value), mode: raw.mode}, true
}

// ParseFirst parses the first marker in text with the strict range policy.
// Text without markers, or whose first marker fails, yields false.
func ParseFirst(text string) (LimitSpec, bool) {
	occ, ok := first(text)
	if !ok {
		return LimitSpec{}, false
	}
	return ParseInner(occ.Inner)
}

// Rehydrate rebuilds a LimitSpec from placeholder data. The inputs are
// formatted back into the inner grammar and parsed, so the result obeys the
// same rules as a marker read from configuration text.
func Rehydrate(max int, mode Mode) (LimitSpec, bool) {
	if max < 0 {
		return LimitSpec{}, false
	}
	inner := strconv.Itoa(max)
	if mode == ModeWords {
		inner += "w"
	}
	return ParseInner(inner)
}

// NormalizeInner returns the canonical spelling of a grammatical inner text:
// whitespace removed, suffix lower-cased, the default "c" suffix dropped and
// leading zeros trimmed. It fails for text outside the grammar.
func NormalizeInner(inner string) (string, bool) {
	m := innerPattern.FindStringSubmatch(inner)
	if m == nil {
		return "", false
	}
	digits := strings.TrimLeft(m[1], "0")
	if digits == "" {
		digits = "0"
	}
	if strings.EqualFold(m[2], "w") {
		return digits + "w", true
	}
	return digits, true
}

// Strip removes every marker from text, collapses whitespace runs to a single
// space and trims the ends.
func Strip(text string) string {
	stripped := markerPattern.ReplaceAllString(text, " ")
	stripped = spacePattern.ReplaceAllString(stripped, " ")
	return strings.TrimSpace(stripped)
}

// Contains reports whether text carries at least one marker.
func Contains(text string) bool {
	return markerPattern.MatchString(text)
}

func first(text string) (Occurrence, bool) {
	m := markerPattern.FindStringSubmatchIndex(text)
	if m == nil {
		return Occurrence{}, false
	}
	return Occurrence{
		Full:  text[m[0]:m[1]],
		Inner: text[m[2]:m[3]],
		Start: m[0],
		End:   m[1],
	}, true
}

type rawLimit struct {
	value    int64
	overflow bool
	mode     Mode
}

func (r rawLimit) inRange() bool {
	return !r.overflow && r.value >= MinValue && r.value <= MaxValue
}

func (r rawLimit) clamped() int {
	switch {
	case r.overflow || r.value > MaxValue:
		return MaxValue
	case r.value < MinValue:
		return MinValue
	default:
		return int(r.value)
	}
}

func parseRaw(inner string) (rawLimit, bool) {
	m := innerPattern.FindStringSubmatch(inner)
	if m == nil {
		return rawLimit{}, false
	}
	out := rawLimit{mode: ModeCharacters}
	if strings.EqualFold(m[2], "w") {
		out.mode = ModeWords
	}
	value, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil {
		// digits only, so the sole failure is overflow
		out.overflow = true
		return out, true
	}
	out.value = value
	return out, true
}
