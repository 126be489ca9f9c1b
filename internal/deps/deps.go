// Package deps locates the external binaries voicetag shells out to.
package deps

// Status reports whether a required binary can be executed.
type Status struct {
	Name        string
	Command     string
	Description string
	Available   bool
	Detail      string
}
