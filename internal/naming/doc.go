// Package naming derives the paths a conversion touches: the final output,
// its temporary in-progress twin, and the "done" name for a kept input.
// It also arbitrates output paths shared by several inputs.
package naming
