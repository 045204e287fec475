package ot

import (
	"encoding/binary"
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
)

func TestTags(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.opentype")
	defer teardown()
	//
	tag := Tag(0x4d415448)
	if tag.String() != "MATH" {
		t.Errorf("expected tag 0x4d415448 to be 'MATH', is %s", tag.String())
	}
	tag = MakeTag([]byte("MATH"))
	if tag.String() != "MATH" {
		t.Errorf("expected tag MakeTag(MATH) to be 'MATH', is %s", tag.String())
	}
	tag = T("CFF")
	if tag.String() != "CFF " {
		t.Errorf("expected tag T(CFF) to be padded to 'CFF ', is %q", tag.String())
	}
}

func TestTableName(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.opentype")
	defer teardown()
	//
	tb := tableBase{}
	tb.name = 0x6d617870
	s := tb.Self().NameTag().String()
	if s != "maxp" {
		t.Errorf("expected table name to be maxp, is %v", s)
	}
}

func TestAssembleAndParse(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.opentype")
	defer teardown()
	//
	raw := makeTestFont(t, 12, TableData{Tag: T("name"), Data: []byte{0, 0, 0, 0, 0, 6, 1}})
	otf, err := Parse(raw, IsTestfont)
	if err != nil {
		t.Fatalf("cannot parse assembled font: %v", err)
	}
	tags := otf.TableTags()
	if len(tags) != 3 || tags[0] != T("head") || tags[1] != T("maxp") || tags[2] != T("name") {
		t.Errorf("expected tables [head maxp name], have %v", tags)
	}
	if n := otf.NumGlyphs(); n != 12 {
		t.Errorf("expected 12 glyphs, have %d", n)
	}
	if len(otf.Issues()) != 0 {
		t.Errorf("expected no issues, have %v", otf.Issues())
	}
	head := otf.Table(T("head")).Self().AsHead()
	if head == nil || head.UnitsPerEm != 1000 {
		t.Fatalf("expected head table with 1000 units per em")
	}
	if sum := TableChecksum(raw); sum != checksumMagic {
		t.Errorf("expected font checksum %x, have %x", uint32(checksumMagic), sum)
	}
	for i := range int(otf.Header.TableCount) {
		off := binary.BigEndian.Uint32(raw[12+16*i+8:])
		if off%4 != 0 {
			t.Errorf("table %d not aligned: offset %d", i, off)
		}
	}
}

func TestReplaceTable(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.opentype")
	defer teardown()
	//
	otf, err := Parse(makeTestFont(t, 4), IsTestfont)
	if err != nil {
		t.Fatal(err)
	}
	patched, err := otf.ReplaceTable(T("zzzz"), []byte{1, 2, 3})
	if err != nil {
		t.Fatal(err)
	}
	if patched, err = mustParse(t, patched).ReplaceTable(T("zzzz"), []byte{9}); err != nil {
		t.Fatal(err)
	}
	again := mustParse(t, patched)
	if tables := again.TableTags(); len(tables) != 3 {
		t.Errorf("expected 3 tables after replacing twice, have %v", tables)
	}
	if b := again.Table(T("zzzz")).Binary(); len(b) != 1 || b[0] != 9 {
		t.Errorf("expected replaced table data [9], have %v", b)
	}
	if sum := TableChecksum(patched); sum != checksumMagic {
		t.Errorf("expected font checksum %x, have %x", uint32(checksumMagic), sum)
	}
}

func TestParseRejectsMissingMaxP(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.opentype")
	defer teardown()
	//
	raw, err := Assemble(FontTypeCFF, []TableData{{Tag: T("head"), Data: testHead()}})
	if err != nil {
		t.Fatal(err)
	}
	if _, err = Parse(raw, IsTestfont); err == nil {
		t.Error("expected font without maxp to be rejected")
	}
}

// ---------------------------------------------------------------------------

func testHead() []byte {
	head := make([]byte, 54)
	binary.BigEndian.PutUint16(head[0:], 1)
	binary.BigEndian.PutUint32(head[12:], 0x5F0F3CF5)
	binary.BigEndian.PutUint16(head[18:], 1000)
	return head
}

func makeTestFont(t *testing.T, numGlyphs uint16, more ...TableData) []byte {
	maxp := make([]byte, 6)
	binary.BigEndian.PutUint32(maxp[0:], 0x00005000)
	binary.BigEndian.PutUint16(maxp[4:], numGlyphs)
	tables := append([]TableData{
		{Tag: T("maxp"), Data: maxp},
		{Tag: T("head"), Data: testHead()},
	}, more...)
	raw, err := Assemble(FontTypeCFF, tables)
	if err != nil {
		t.Fatalf("cannot assemble test font: %v", err)
	}
	return raw
}

func mustParse(t *testing.T, raw []byte) *Font {
	otf, err := Parse(raw, IsTestfont)
	if err != nil {
		t.Fatalf("cannot parse font: %v", err)
	}
	return otf
}
