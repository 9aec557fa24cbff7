// Package probe runs ffprobe against one input file and turns its JSON
// output into an [Inventory] of video, audio and subtitle streams.
//
// The call is read-only and bounded by [DefaultTimeout]; a timeout,
// non-zero exit, malformed JSON or an empty stream list is an error and is
// not retried. Choosing among the listed streams is the planner's job.
package probe
