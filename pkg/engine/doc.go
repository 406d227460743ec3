// Package engine keeps rendered soft-limit counters in sync with the inputs
// they describe.
//
// An Engine discovers placeholders in a dom.Document, resolves each one to
// its input (retrying on a bounded schedule while rich editors are still
// mounting), binds a surface adapter chosen by the placeholder's declared
// kind and rewrites the counter text and state after every debounced edit.
//
// The engine is single-threaded. Every method must be called from the
// scheduler's loop; with eventloop.Loop use Loop.Do or Loop.Post.
package engine
