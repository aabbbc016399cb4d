// Package watch is the refresh-and-view engine behind ratch.
//
// A Session re-runs a command on a fixed interval and keeps the output of the
// newest finished run on screen while the user scrolls and searches it. All
// session state is owned by a single goroutine, the main loop. Runs execute on
// worker goroutines started by the Executor and report back with immutable
// Result values over a channel; the Resolver admits only results whose
// generation is at least the highest one admitted so far, so a slow older run
// can never replace the output of a newer one.
//
// The engine talks to the screen through the Terminal interface and is
// agnostic of the backend drawing it.
package watch
