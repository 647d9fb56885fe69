// Package poller repeats a cluster query on a fixed interval and writes each
// result to a timestamped file.
//
// Iteration i starts at roughly start+i*interval: after each query the poller
// sleeps for the remainder of the interval, but never less than one second,
// and it does not sleep after the last iteration. Files are named
//
//	<UTC time, second precision>-ephem<ext>    e.g. 2026-10-19T12:00:00+00:00-ephem.json
//
// where the time is the start of the query and ext follows the output format.
//
// A failed query ends polling unless ContinueOnError is set, in which case
// the iteration is logged and skipped.
package poller
