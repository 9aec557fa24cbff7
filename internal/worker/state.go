package worker

import (
	"errors"
	"fmt"
)

// State is a worker's position in its per-file state machine:
//
//	Probing -> BuildingArgs -> Encoding -> Finalizing -> Done
//
// Any stage may end in Failed instead.
type State int

const (
	Probing State = iota
	BuildingArgs
	Encoding
	Finalizing
	Done
	Failed
)

var stateNames = [...]string{
	Probing:      "Probing",
	BuildingArgs: "BuildingArgs",
	Encoding:     "Encoding",
	Finalizing:   "Finalizing",
	Done:         "Done",
	Failed:       "Failed",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return fmt.Sprintf("State(%d)", int(s))
	}
	return stateNames[s]
}

// --- Per-file error taxonomy ---

// ErrOutputBusy is returned when another input currently owns the same
// output path. The file is retried on a later poll cycle.
var ErrOutputBusy = errors.New("output path is in use by another input")

// ProbeError means ffprobe failed, timed out, or found nothing to convert.
// The input is left untouched.
type ProbeError struct{ Err error }

func (e *ProbeError) Error() string { return "probe: " + e.Err.Error() }
func (e *ProbeError) Unwrap() error { return e.Err }

// EncodeError means ffmpeg could not run, exited non-zero, or was
// canceled. The temporary output has been removed.
type EncodeError struct {
	ExitCode int
	Reason   string // From ffmpeg.Classify; may be empty.
	Err      error  // Start, wait or cancellation error; nil for a plain non-zero exit.
}

func (e *EncodeError) Error() string {
	msg := fmt.Sprintf("encode: ffmpeg exited with code %d", e.ExitCode)
	if e.Err != nil {
		msg = "encode: " + e.Err.Error()
	}
	if e.Reason != "" {
		msg += " (" + e.Reason + ")"
	}
	return msg
}

func (e *EncodeError) Unwrap() error { return e.Err }

// FinalizeError means the encode succeeded but moving the output into place
// or applying the completion action failed.
type FinalizeError struct{ Err error }

func (e *FinalizeError) Error() string { return "finalize: " + e.Err.Error() }
func (e *FinalizeError) Unwrap() error { return e.Err }
