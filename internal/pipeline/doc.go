// Package pipeline runs the watch loop: list the input directory, start a
// worker for every file that does not already have one, sleep, repeat.
// On cancellation it stops dispatching, waits for every running worker and
// logs a summary.
package pipeline
