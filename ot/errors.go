package ot

import "fmt"

// FontError is a problem which keeps a font from being parsed. Parse returns
// it as a *FontError.
type FontError struct {
	Table   Tag    // 0 for problems with the table directory
	Section string // part of the table, e.g. "MathVariants"
	Issue   string
	Offset  uint32 // byte offset in the font, 0 if unknown
}

func fontError(table Tag, section, issue string, offset uint32) error {
	return &FontError{Table: table, Section: section, Issue: issue, Offset: offset}
}

func (e *FontError) Error() string {
	where := e.Section
	if e.Table != 0 {
		where = e.Table.String() + "/" + where
	}
	if e.Offset > 0 {
		where += fmt.Sprintf(" at offset %d", e.Offset)
	}
	return fmt.Sprintf("OpenType font format: %s: %s", where, e.Issue)
}

// FontIssue is a problem which does not keep a font from being used, e.g. a
// table checksum mismatch.
type FontIssue struct {
	Table  Tag
	Issue  string
	Offset uint32
}

func (i FontIssue) String() string {
	if i.Offset > 0 {
		return fmt.Sprintf("%s at offset %d: %s", i.Table, i.Offset, i.Issue)
	}
	return fmt.Sprintf("%s: %s", i.Table, i.Issue)
}
