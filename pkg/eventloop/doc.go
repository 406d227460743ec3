// Package eventloop provides the single-threaded scheduling model the counting
// engine runs on.
//
// Every callback handed to a Scheduler runs on one logical thread: Loop runs
// them serially on a dedicated goroutine and Manual runs them synchronously
// while virtual time is advanced. Nothing scheduled through this package ever
// blocks; waiting is always expressed as a timer.
package eventloop
