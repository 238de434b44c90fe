// Package session coordinates comparisons between two registered videos.
//
// A Session owns the A and B slots, their offsets, and at most one active
// operation: a stepwise walk through the overlap, a full auto comparison with
// an identity verdict, or offset discovery. Operations never block the
// caller. Each one is split into bounded steps handed to a Scheduler; a step
// does its work, emits progress, and schedules its successor.
//
// Cancel returns the session to Idle at once rather than at the next step
// boundary, and reports any partial results. A step already running when
// Cancel is called finishes its frame work, sees that the session generation
// has moved on, and discards its result without emitting events or scheduling
// a successor.
//
// Hooks fire on the goroutine that runs the scheduled steps (or the caller of
// Cancel) and never while the session lock is held, so hook bodies may call
// back into the Session.
package session
