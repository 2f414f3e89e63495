package errz

import (
	"fmt"
	"strings"
)

// Frame identifies one activation an error propagated through.
type Frame struct {
	// Template is the index of the template in the VM's template pool, or -1
	// if the closure's template is not part of the pool.
	Template int `json:"template"`
	// Name is the template's name, if it has one.
	Name string `json:"name,omitempty"`
	// Offset is the index of the instruction that was executing.
	Offset int `json:"offset"`
}

// String returns a formatted string representation of the frame.
func (f Frame) String() string {
	if f.Name != "" {
		return fmt.Sprintf("at %s (template %d, instruction %d)", f.Name, f.Template, f.Offset)
	}
	return fmt.Sprintf("at template %d, instruction %d", f.Template, f.Offset)
}

// FormatTrace formats a slice of frames as a human-readable string.
func FormatTrace(frames []Frame) string {
	if len(frames) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("Activation trace:\n")
	for _, frame := range frames {
		b.WriteString("  ")
		b.WriteString(frame.String())
		b.WriteString("\n")
	}
	return b.String()
}
