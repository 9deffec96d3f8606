package classfile

import (
	"errors"
	"fmt"

	"jdeob/internal/byteio"
	"jdeob/internal/bytecode"
)

// DiagKind classifies a diagnostic message.
type DiagKind string

const (
	DiagTruncated  DiagKind = "truncated"
	DiagInvalid    DiagKind = "invalid"
	DiagUnresolved DiagKind = "unresolved"
	DiagTrailing   DiagKind = "trailing"
)

// Diag records a non-fatal issue encountered during parsing. Offset is the
// absolute position in the class file of the structure that failed.
type Diag struct {
	Offset int      `json:"offset"`
	Kind   DiagKind `json:"kind"`
	Method string   `json:"method,omitempty"`
	Msg    string   `json:"msg"`
}

func (d Diag) String() string {
	if d.Method != "" {
		return fmt.Sprintf("[%s] 0x%x %s: %s", d.Kind, d.Offset, d.Method, d.Msg)
	}
	return fmt.Sprintf("[%s] 0x%x: %s", d.Kind, d.Offset, d.Msg)
}

// Diags accumulates diagnostics.
type Diags struct {
	items []Diag
}

func (d *Diags) Add(diag Diag) {
	d.items = append(d.items, diag)
}

func (d *Diags) Addf(offset int, kind DiagKind, method, format string, args ...any) {
	d.items = append(d.items, Diag{Offset: offset, Kind: kind, Method: method, Msg: fmt.Sprintf(format, args...)})
}

func (d *Diags) Items() []Diag { return d.items }
func (d *Diags) Len() int      { return len(d.items) }

// Mode controls error handling behavior.
type Mode int

const (
	ModeStrict     Mode = iota // first structural error returns error
	ModeBestEffort             // keep undecodable attributes raw, accumulate diags
)

func (m Mode) String() string {
	if m == ModeBestEffort {
		return "best-effort"
	}
	return "strict"
}

// ParseMode maps "strict" and "best-effort" to a Mode.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "", "strict":
		return ModeStrict, nil
	case "best-effort", "besteffort", "lenient":
		return ModeBestEffort, nil
	}
	return ModeStrict, fmt.Errorf("classfile: unknown mode %q", s)
}

// Options controls parsing behavior.
type Options struct {
	Mode Mode
}

func diagKind(err error) DiagKind {
	switch {
	case errors.Is(err, bytecode.ErrTruncated),
		errors.Is(err, byteio.ErrEOF),
		errors.Is(err, byteio.ErrOverrun):
		return DiagTruncated
	case errors.Is(err, bytecode.ErrUnresolvedTarget):
		return DiagUnresolved
	}
	return DiagInvalid
}
