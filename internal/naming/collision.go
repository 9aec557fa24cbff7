package naming

import "sync"

// OutputClaims tracks which input currently owns each output path. Two
// inputs that differ only by extension ("movie.mkv", "movie.avi") map to
// the same output, and only one of them may write it at a time.
// All methods are goroutine-safe.
type OutputClaims struct {
	mu     sync.Mutex
	owners map[string]string // output path -> input path that owns it
}

// NewOutputClaims creates a ready-to-use claim set.
func NewOutputClaims() *OutputClaims {
	return &OutputClaims{owners: make(map[string]string)}
}

// Claim records input as the owner of output. It returns false, and the
// current owner, when a different input already holds it.
func (c *OutputClaims) Claim(input, output string) (bool, string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	owner, exists := c.owners[output]
	if exists && owner != input {
		return false, owner
	}
	c.owners[output] = input
	return true, ""
}

// Release drops the claim on output if input holds it.
func (c *OutputClaims) Release(input, output string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.owners[output] == input {
		delete(c.owners, output)
	}
}
