package ot

import (
	"encoding/binary"
	"fmt"
	"math/bits"
	"slices"
	"sort"
)

// --- Writing fonts ---------------------------------------------------------

// From the OpenType 'head' table documentation: “To calculate the checkSumAdjustment, set it to 0, sum the entire
// font as uint32, then store 0xB1B0AFBA - sum.”
const checksumMagic = 0xB1B0AFBA

// TableData is a table to be written to a font file.
type TableData struct {
	Tag  Tag
	Data []byte
}

// TableChecksum computes the checksum of a table, i.e. the uint32 sum of its
// data, zero-padded to a multiple of four bytes.
func TableChecksum(b []byte) uint32 {
	var sum uint32
	n := len(b) &^ 3
	for i := 0; i < n; i += 4 {
		sum += binary.BigEndian.Uint32(b[i:])
	}
	if rest := len(b) - n; rest > 0 {
		var last [4]byte
		copy(last[:], b[n:])
		sum += binary.BigEndian.Uint32(last[:])
	}
	return sum
}

// Assemble writes an SFNT font from a set of tables. Tables are sorted by tag,
// each table starts on a 4-byte boundary, and table checksums as well as the
// checkSumAdjustment of table 'head' are re-computed.
func Assemble(fontType uint32, tables []TableData) ([]byte, error) {
	tables = append([]TableData(nil), tables...)
	sort.Slice(tables, func(i, j int) bool { return tables[i].Tag < tables[j].Tag })
	for i := 1; i < len(tables); i++ {
		if tables[i].Tag == tables[i-1].Tag {
			return nil, fmt.Errorf("duplicate table %s", tables[i].Tag)
		}
	}
	n := len(tables)
	if n == 0 || n > 0xffff {
		return nil, fmt.Errorf("cannot assemble font with %d tables", n)
	}
	// offset table: sfntVersion, numTables, searchRange, entrySelector, rangeShift
	entrySelector := bits.Len(uint(n)) - 1
	searchRange := (1 << entrySelector) * 16
	size := 12 + 16*n
	for _, t := range tables {
		size += pad4(len(t.Data))
	}
	out := make([]byte, size)
	binary.BigEndian.PutUint32(out[0:], fontType)
	binary.BigEndian.PutUint16(out[4:], uint16(n))
	binary.BigEndian.PutUint16(out[6:], uint16(searchRange))
	binary.BigEndian.PutUint16(out[8:], uint16(entrySelector))
	binary.BigEndian.PutUint16(out[10:], uint16(n*16-searchRange))
	headAt := -1
	offset := 12 + 16*n
	for i, t := range tables {
		if uint64(offset)+uint64(len(t.Data)) > 0xffffffff {
			return nil, fmt.Errorf("font too large at table %s", t.Tag)
		}
		copy(out[offset:], t.Data)
		data := out[offset : offset+len(t.Data)]
		if t.Tag == T("head") {
			if len(data) < 12 {
				return nil, errFontFormat("size of head table")
			}
			binary.BigEndian.PutUint32(data[8:], 0)
			headAt = offset
		}
		rec := out[12+16*i:]
		binary.BigEndian.PutUint32(rec[0:], uint32(t.Tag))
		binary.BigEndian.PutUint32(rec[4:], TableChecksum(data))
		binary.BigEndian.PutUint32(rec[8:], uint32(offset))
		binary.BigEndian.PutUint32(rec[12:], uint32(len(t.Data)))
		tracer().Debugf("table %s at offset %d, length %d", t.Tag, offset, len(t.Data))
		offset += pad4(len(t.Data))
	}
	if headAt >= 0 {
		adjustment := uint32(checksumMagic) - TableChecksum(out)
		binary.BigEndian.PutUint32(out[headAt+8:], adjustment)
	}
	return out, nil
}

// ReplaceTable returns the binary of a copy of otf, where table tag has been
// replaced by data. If otf does not contain a table tag, it is added.
func (otf *Font) ReplaceTable(tag Tag, data []byte) ([]byte, error) {
	return otf.ReplaceTables(TableData{Tag: tag, Data: data})
}

// ReplaceTables is like ReplaceTable for more than one table.
func (otf *Font) ReplaceTables(replacements ...TableData) ([]byte, error) {
	tables := make([]TableData, 0, len(otf.tables)+len(replacements))
	for _, t := range otf.TableTags() {
		if slices.ContainsFunc(replacements, func(r TableData) bool { return r.Tag == t }) {
			continue
		}
		tables = append(tables, TableData{Tag: t, Data: otf.tables[t].Binary()})
	}
	tables = append(tables, replacements...)
	return Assemble(otf.Header.FontType, tables)
}

func pad4(n int) int {
	return (n + 3) &^ 3
}
