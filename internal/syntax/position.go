package syntax

import "fmt"

// Position is a location in a source file. Line and Column are 0-based;
// front ends normalize 1-based grammars at the boundary. Offset is the byte
// offset from the start of the file and is set whenever the producing front
// end can supply it.
type Position struct {
	Line   int
	Column int
	Offset int
}

// Before reports whether p precedes q in document order.
func (p Position) Before(q Position) bool {
	if p.Line != q.Line {
		return p.Line < q.Line
	}
	return p.Column < q.Column
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Range is a span between two positions. Start <= End in document order.
type Range struct {
	Start Position
	End   Position
}

// Contains reports whether p falls within the range, inclusive of both ends.
func (r Range) Contains(p Position) bool {
	return !p.Before(r.Start) && !r.End.Before(p)
}

// ContainsRange reports whether o lies entirely within r.
func (r Range) ContainsRange(o Range) bool {
	return r.Contains(o.Start) && r.Contains(o.End)
}

func (r Range) String() string {
	return fmt.Sprintf("%s-%s", r.Start, r.End)
}

// Location is a range within a named file.
type Location struct {
	FilePath string
	Range    Range
}

func (l Location) String() string {
	return fmt.Sprintf("%s:%s", l.FilePath, l.Range.Start)
}
