// Package placeholder defines the data contract between rendered counter
// placeholders and the counting engine.
package placeholder

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/goliatone/go-softlimit/pkg/dom"
	"github.com/goliatone/go-softlimit/pkg/marker"
)

// Attribute names carried by a placeholder element.
const (
	AttrMarker = "data-soft-limit"
	AttrTarget = "data-soft-limit-target"
	AttrMax    = "data-soft-limit-max"
	AttrMode   = "data-soft-limit-mode"
	AttrKind   = "data-soft-limit-kind"
	// AttrPoll carries the polling interval in whole milliseconds.
	AttrPoll = "data-soft-limit-poll"

	// AttrBound is written by the engine once a placeholder has been claimed.
	AttrBound = "data-soft-limit-bound"
	// AttrState carries the display state (normal, warning, exceeded).
	AttrState = "data-soft-limit-state"
)

// Bound attribute values.
const (
	BoundResolving = "resolving"
	BoundActive    = "bound"
	BoundAbandoned = "abandoned"
	BoundReleased  = "released"
)

// CSS classes toggled for the non-normal display states.
const (
	ClassBase     = "softlimit"
	ClassWarning  = "softlimit--warning"
	ClassExceeded = "softlimit--exceeded"
)

// Placeholder is the decoded data of one counter placeholder.
type Placeholder struct {
	Target string
	Spec   marker.LimitSpec
	Kind   string
	// Poll enables the polling fallback; zero leaves the engine default.
	Poll time.Duration
}

// ErrMissingTarget is returned when a placeholder names no input.
var ErrMissingTarget = errors.New("placeholder: target identifier is required")

// Attributes encodes p as placeholder attributes.
func (p Placeholder) Attributes() map[string]string {
	attrs := map[string]string{
		AttrMarker: "",
		AttrTarget: p.Target,
		AttrMax:    strconv.Itoa(p.Spec.Max()),
		AttrMode:   string(p.Spec.Mode()),
		AttrKind:   p.Kind,
	}
	if p.Poll > 0 {
		attrs[AttrPoll] = FormatPoll(p.Poll)
	}
	return attrs
}

// FormatPoll encodes a polling interval as whole milliseconds, rounding
// sub-millisecond intervals up to one.
func FormatPoll(d time.Duration) string {
	ms := d.Milliseconds()
	if ms < 1 {
		ms = 1
	}
	return strconv.FormatInt(ms, 10)
}

// ParsePoll reads a polling interval in milliseconds. Go duration text such
// as "750ms" is accepted for hand-written markup.
func ParsePoll(raw string) (time.Duration, error) {
	raw = strings.TrimSpace(raw)
	if ms, err := strconv.ParseInt(raw, 10, 64); err == nil {
		if ms <= 0 {
			return 0, fmt.Errorf("poll interval must be positive, got %d", ms)
		}
		return time.Duration(ms) * time.Millisecond, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, err
	}
	if d <= 0 {
		return 0, fmt.Errorf("poll interval must be positive, got %s", d)
	}
	return d, nil
}

// InitialText is the counter text rendered before the engine attaches.
func (p Placeholder) InitialText() string {
	return "0/" + strconv.Itoa(p.Spec.Max())
}

// Decode reads placeholder data from el. The limit is rehydrated from the
// numeric attributes rather than reparsed from marker text.
func Decode(el dom.Element) (Placeholder, error) {
	if el == nil {
		return Placeholder{}, errors.New("placeholder: element is nil")
	}
	target := strings.TrimSpace(attr(el, AttrTarget))
	if target == "" {
		return Placeholder{}, ErrMissingTarget
	}

	rawMax := strings.TrimSpace(attr(el, AttrMax))
	max, err := strconv.Atoi(rawMax)
	if err != nil {
		return Placeholder{}, fmt.Errorf("placeholder %q: invalid max %q: %w", target, rawMax, err)
	}
	spec, ok := marker.Rehydrate(max, marker.ParseMode(attr(el, AttrMode)))
	if !ok {
		return Placeholder{}, fmt.Errorf("placeholder %q: max %d outside [%d, %d]", target, max, marker.MinValue, marker.MaxValue)
	}

	p := Placeholder{
		Target: target,
		Spec:   spec,
		Kind:   strings.ToLower(strings.TrimSpace(attr(el, AttrKind))),
	}
	if raw := strings.TrimSpace(attr(el, AttrPoll)); raw != "" {
		interval, err := ParsePoll(raw)
		if err != nil {
			return Placeholder{}, fmt.Errorf("placeholder %q: invalid poll interval %q: %w", target, raw, err)
		}
		p.Poll = interval
	}
	return p, nil
}

func attr(el dom.Element, name string) string {
	value, _ := el.Attr(name)
	return value
}
