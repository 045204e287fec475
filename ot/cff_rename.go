package ot

import (
	"encoding/binary"
	"fmt"
	"slices"
)

// --- Renaming CFF glyphs ---------------------------------------------------

// Glyph names of a CFF font live in its String INDEX. Replacing them changes
// the size of the String INDEX, which moves every structure following it; the
// offsets in the top DICT are re-written accordingly.

const (
	cffOpEncoding = 16
	cffOpPrivate  = 18
	cffOpFDArray  = 12<<8 | 36
	cffOpFDSelect = 12<<8 | 37
)

// RenameCFFGlyphs returns a copy of table 'CFF ' of otf, with glyphs renamed
// as given by names, a map from current glyph names to new ones. Only strings
// referenced by the charset are changed, and a glyph keeps its name if the new
// one is already in use. If no glyph is renamed, or if otf has no CFF table
// or is CID-keyed, RenameCFFGlyphs returns nil.
func (otf *Font) RenameCFFGlyphs(names map[string]string) ([]byte, error) {
	t := otf.Table(T("CFF "))
	if t == nil {
		return nil, nil
	}
	return renameCFFGlyphs(binarySegm(t.Binary()), names)
}

func renameCFFGlyphs(b binarySegm, names map[string]string) ([]byte, error) {
	if len(b) < 4 {
		return nil, errFontFormat("CFF header truncated")
	}
	_, topAt, err := cffIndex(b, int(b[2]))
	if err != nil {
		return nil, err
	}
	topDicts, strAt, err := cffIndex(b, topAt)
	if err != nil {
		return nil, err
	}
	stringIndex, strEnd, err := cffIndex(b, strAt)
	if err != nil {
		return nil, err
	}
	if len(topDicts) != 1 {
		return nil, errFontFormat(fmt.Sprintf("CFF table has %d fonts", len(topDicts)))
	}
	entries, err := cffDictEntries(topDicts[0])
	if err != nil {
		return nil, err
	}
	dict := make(map[int]int, len(entries))
	for _, e := range entries {
		dict[e.op] = e.operand(len(e.operands) - 1)
	}
	if _, isCID := dict[cffOpROS]; isCID {
		return nil, nil
	}
	charStrings, _, err := cffIndex(b, dict[cffOpCharStrings])
	if err != nil {
		return nil, err
	}
	sids, err := cffCharset(b, dict[cffOpCharset], len(charStrings))
	if err != nil {
		return nil, err
	}
	taken := make(map[string]bool, len(sids))
	for _, sid := range sids {
		name, err := cffString(sid, stringIndex)
		if err != nil {
			return nil, err
		}
		taken[name] = true
	}
	renamed := slices.Clone(stringIndex)
	count := 0
	for _, sid := range sids {
		i := sid - len(cffStandardStrings)
		if i < 0 {
			continue // standard strings are fixed
		}
		name := string(stringIndex[i])
		to, ok := names[name]
		if !ok || to == "" || to == name || string(renamed[i]) != name {
			continue
		}
		if taken[to] {
			tracer().Infof("CFF glyph %s keeps its name, %s is in use", name, to)
			continue
		}
		renamed[i] = []byte(to)
		taken[to] = true
		count++
	}
	if count == 0 {
		return nil, nil
	}
	tracer().Debugf("renaming %d CFF glyphs", count)
	stringData := cffIndexBytes(renamed)
	// offset operands are written with 5 bytes, so the size of the top DICT
	// does not depend on the shift
	top, err := encodeCFFTopDict(entries, 0, strEnd)
	if err != nil {
		return nil, err
	}
	shift := len(cffIndexBytes([][]byte{top})) - (strAt - topAt) + len(stringData) - (strEnd - strAt)
	if top, err = encodeCFFTopDict(entries, shift, strEnd); err != nil {
		return nil, err
	}
	out := make([]byte, 0, len(b)+shift)
	out = append(out, b[:topAt]...)
	out = append(out, cffIndexBytes([][]byte{top})...)
	out = append(out, stringData...)
	out = append(out, b[strEnd:]...)
	return out, nil
}

// isOffset is true if operand i of a top DICT entry is an offset into the
// CFF table. Small values of charset and Encoding denote predefined tables.
func (e cffDictEntry) isOffset(i int) bool {
	last := i == len(e.operands)-1
	switch e.op {
	case cffOpCharset:
		return last && e.operand(i) > 2
	case cffOpEncoding:
		return last && e.operand(i) > 1
	case cffOpCharStrings, cffOpFDArray, cffOpFDSelect:
		return last
	case cffOpPrivate:
		return i == 1
	}
	return false
}

// encodeCFFTopDict writes a top DICT, with offsets moved by shift. Offsets
// must point behind the String INDEX, which ends at strEnd.
func encodeCFFTopDict(entries []cffDictEntry, shift, strEnd int) ([]byte, error) {
	var b []byte
	for _, e := range entries {
		for i, raw := range e.operands {
			if !e.isOffset(i) {
				b = append(b, raw...)
				continue
			}
			v := cffOperand(raw)
			if v < strEnd {
				return nil, errFontFormat(fmt.Sprintf("CFF offset %d before end of String INDEX", v))
			}
			b = append(b, 29)
			b = binary.BigEndian.AppendUint32(b, uint32(v+shift))
		}
		if e.op > 0xff {
			b = append(b, 12, byte(e.op))
		} else {
			b = append(b, byte(e.op))
		}
	}
	return b, nil
}

// cffIndexBytes encodes an INDEX with the smallest offset size possible.
func cffIndexBytes(objects [][]byte) []byte {
	if len(objects) == 0 {
		return []byte{0, 0}
	}
	size := 1
	for _, o := range objects {
		size += len(o)
	}
	offSize := 1
	for size >= 1<<(8*offSize) {
		offSize++
	}
	b := binary.BigEndian.AppendUint16(nil, uint16(len(objects)))
	b = append(b, byte(offSize))
	putOffset := func(v int) {
		for k := offSize - 1; k >= 0; k-- {
			b = append(b, byte(v>>(8*k)))
		}
	}
	off := 1
	putOffset(off)
	for _, o := range objects {
		off += len(o)
		putOffset(off)
	}
	for _, o := range objects {
		b = append(b, o...)
	}
	return b
}
