// Package planner chooses which input streams a conversion keeps.
//
// Video: the default-flagged stream, else the first. Audio and subtitles:
// the first preferred language that has any match, then default-or-first
// within those matches; without a match, default-or-first over every
// stream of that type.
package planner
