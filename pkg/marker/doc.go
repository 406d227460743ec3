// Package marker parses, strips, and validates soft-limit markers embedded in
// field instructions.
//
// A marker has the form [soft-limit:N], [soft-limit:Nc] or [soft-limit:Nw]
// where N is the limit and the optional suffix selects character (default) or
// word counting. The tag and suffix are case-insensitive and whitespace around
// the number and suffix is ignored.
//
// Two policies coexist on purpose:
//
//   - ValidateForSave is strict. Every marker in the text is checked and each
//     problem is reported so the configuration author can fix it before the
//     field is persisted.
//   - ValidateForRender is lenient. Only the first marker is used, grammar
//     failures mean "no counter", and out-of-range values are clamped with a
//     warning so already-saved configuration keeps rendering.
package marker
