package ot

import (
	"encoding/binary"
	"errors"
	"testing"
)

func TestFontErrorFormat(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{
			name:     "with offset",
			err:      fontError(T("MATH"), "MathVariants", "construction offsets out of bounds", 1234),
			expected: "OpenType font format: MATH/MathVariants at offset 1234: construction offsets out of bounds",
		},
		{
			name:     "table directory",
			err:      fontError(0, "TableRecords", "table records not sorted by tag", 0),
			expected: "OpenType font format: TableRecords: table records not sorted by tag",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if result := tt.err.Error(); result != tt.expected {
				t.Errorf("FontError.Error() = %q; want %q", result, tt.expected)
			}
		})
	}
}

func TestFontIssueFormat(t *testing.T) {
	i := FontIssue{Table: T("CFF "), Issue: "table checksum mismatch", Offset: 512}
	if s := i.String(); s != "CFF  at offset 512: table checksum mismatch" {
		t.Errorf("unexpected issue format: %q", s)
	}
	i.Offset = 0
	if s := i.String(); s != "CFF : table checksum mismatch" {
		t.Errorf("unexpected issue format: %q", s)
	}
}

func TestParseReportsProblems(t *testing.T) {
	raw := makeTestFont(t, 3, TableData{Tag: T("zzzz"), Data: []byte{1, 2, 3, 4}})
	// corrupt the checksum of the last table record
	rec := 12 + 16*2
	binary.BigEndian.PutUint32(raw[rec+4:], 0xdeadbeef)
	otf, err := Parse(raw)
	if err != nil {
		t.Fatalf("expected font to parse, have %v", err)
	}
	var checksums, missing int
	for _, issue := range otf.Issues() {
		switch issue.Issue {
		case "table checksum mismatch":
			checksums++
		case "missing required table":
			missing++
		}
	}
	if checksums != 1 || missing != len(RequiredTables)-2 {
		t.Errorf("expected 1 checksum issue and %d missing tables, have %v", len(RequiredTables)-2, otf.Issues())
	}
	//
	maxp := make([]byte, 4)
	raw, err = Assemble(FontTypeCFF, []TableData{{Tag: T("head"), Data: testHead()}, {Tag: T("maxp"), Data: maxp}})
	if err != nil {
		t.Fatal(err)
	}
	_, err = Parse(raw, IsTestfont)
	var fe *FontError
	if !errors.As(err, &fe) || fe.Table != T("maxp") || fe.Section != "Size" {
		t.Errorf("expected maxp size error, have %v", err)
	}
}
