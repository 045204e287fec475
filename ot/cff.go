package ot

import "fmt"

// --- CFF glyph names -------------------------------------------------------

// Fonts with CFF outlines usually come with a version 3.0 'post' table, which
// carries no glyph names. The names are part of table 'CFF ' instead: its
// charset maps glyph IDs to string IDs (SIDs).

const (
	cffOpCharset     = 15
	cffOpCharStrings = 17
	cffOpROS         = 12<<8 | 30
)

// CFFGlyphNames returns the glyph names of a font's 'CFF ' table, indexed by
// glyph ID. CID-keyed fonts have no glyph names; for them, and for fonts
// without a CFF table, CFFGlyphNames returns nil.
func (otf *Font) CFFGlyphNames() ([]string, error) {
	t := otf.Table(T("CFF "))
	if t == nil {
		return nil, nil
	}
	return cffGlyphNames(binarySegm(t.Binary()))
}

func cffGlyphNames(b binarySegm) ([]string, error) {
	if len(b) < 4 {
		return nil, errFontFormat("CFF header truncated")
	}
	hdrSize := int(b[2])
	_, end, err := cffIndex(b, hdrSize) // Name INDEX
	if err != nil {
		return nil, err
	}
	topDicts, end, err := cffIndex(b, end)
	if err != nil {
		return nil, err
	}
	stringIndex, _, err := cffIndex(b, end)
	if err != nil {
		return nil, err
	}
	if len(topDicts) == 0 {
		return nil, errFontFormat("CFF has no top DICT")
	}
	dict, err := cffDict(topDicts[0])
	if err != nil {
		return nil, err
	}
	if _, isCID := dict[cffOpROS]; isCID {
		tracer().Debugf("CFF font is CID-keyed, no glyph names")
		return nil, nil
	}
	csOffset, ok := dict[cffOpCharStrings]
	if !ok {
		return nil, errFontFormat("CFF top DICT has no CharStrings")
	}
	charStrings, _, err := cffIndex(b, csOffset)
	if err != nil {
		return nil, err
	}
	sids, err := cffCharset(b, dict[cffOpCharset], len(charStrings))
	if err != nil {
		return nil, err
	}
	names := make([]string, len(sids))
	for gid, sid := range sids {
		if names[gid], err = cffString(sid, stringIndex); err != nil {
			return nil, err
		}
	}
	return names, nil
}

// cffString returns the string for a SID.
func cffString(sid int, stringIndex [][]byte) (string, error) {
	switch {
	case sid < len(cffStandardStrings):
		return cffStandardStrings[sid], nil
	case sid-len(cffStandardStrings) < len(stringIndex):
		return string(stringIndex[sid-len(cffStandardStrings)]), nil
	}
	return "", errFontFormat(fmt.Sprintf("CFF charset has invalid SID %d", sid))
}

// cffIndex reads an INDEX structure at offset at. It returns the objects of
// the INDEX and the offset following it.
func cffIndex(b binarySegm, at int) ([][]byte, int, error) {
	count, err := b.u16(at)
	if err != nil {
		return nil, 0, errFontFormat("CFF INDEX truncated")
	}
	if count == 0 {
		return nil, at + 2, nil
	}
	if at+3 > len(b) {
		return nil, 0, errFontFormat("CFF INDEX truncated")
	}
	offSize := int(b[at+2])
	if offSize < 1 || offSize > 4 {
		return nil, 0, errFontFormat("CFF INDEX has invalid offset size")
	}
	offsets, err := b.view(at+3, (int(count)+1)*offSize)
	if err != nil {
		return nil, 0, errFontFormat("CFF INDEX offsets truncated")
	}
	offset := func(i int) int {
		v := 0
		for _, x := range offsets[i*offSize : (i+1)*offSize] {
			v = v<<8 | int(x)
		}
		return v
	}
	data := at + 3 + len(offsets) - 1 // offsets are 1-based
	objects := make([][]byte, count)
	for i := range objects {
		from, to := offset(i), offset(i+1)
		if from < 1 || to < from || data+to > len(b) {
			return nil, 0, errFontFormat("CFF INDEX has invalid offsets")
		}
		objects[i] = b[data+from : data+to]
	}
	return objects, data + offset(int(count)), nil
}

// cffDictEntry is an operator of a DICT, together with the raw encodings of
// its operands.
type cffDictEntry struct {
	op       int // two-byte operators are 12<<8 | op
	operands [][]byte
}

func (e cffDictEntry) operand(i int) int {
	if i < 0 || i >= len(e.operands) {
		return 0
	}
	return cffOperand(e.operands[i])
}

func cffDictEntries(b []byte) ([]cffDictEntry, error) {
	var entries []cffDictEntry
	var operands [][]byte
	for i := 0; i < len(b); {
		b0 := int(b[i])
		n := 1
		switch {
		case b0 <= 21:
			op := b0
			if b0 == 12 {
				if i+1 >= len(b) {
					return nil, errFontFormat("CFF DICT operator truncated")
				}
				op, n = 12<<8|int(b[i+1]), 2
			}
			entries = append(entries, cffDictEntry{op: op, operands: operands})
			operands = nil
			i += n
			continue
		case b0 == 28:
			n = 3
		case b0 == 29:
			n = 5
		case b0 == 30: // real number, nibbles up to 0xf
			for i+n < len(b) {
				x := b[i+n]
				n++
				if x&0x0f == 0x0f || x>>4 == 0x0f {
					break
				}
			}
		case b0 >= 32 && b0 <= 246:
		case b0 >= 247 && b0 <= 254:
			n = 2
		default:
			return nil, errFontFormat(fmt.Sprintf("CFF DICT has invalid byte %d", b0))
		}
		if i+n > len(b) {
			return nil, errFontFormat("CFF DICT operand truncated")
		}
		operands = append(operands, b[i:i+n])
		i += n
	}
	return entries, nil
}

// cffOperand decodes an integer operand. Real numbers count as zero.
func cffOperand(raw []byte) int {
	b0 := int(raw[0])
	switch {
	case b0 == 28:
		return int(int16(uint16(raw[1])<<8 | uint16(raw[2])))
	case b0 == 29:
		return int(int32(uint32(raw[1])<<24 | uint32(raw[2])<<16 | uint32(raw[3])<<8 | uint32(raw[4])))
	case b0 == 30:
		return 0
	case b0 <= 246:
		return b0 - 139
	case b0 <= 250:
		return (b0-247)*256 + int(raw[1]) + 108
	default:
		return -(b0-251)*256 - int(raw[1]) - 108
	}
}

// cffDict decodes the integer operands of a DICT, keyed by operator. Only the
// last operand of each entry is kept.
func cffDict(b []byte) (map[int]int, error) {
	entries, err := cffDictEntries(b)
	if err != nil {
		return nil, err
	}
	dict := make(map[int]int, len(entries))
	for _, e := range entries {
		dict[e.op] = e.operand(len(e.operands) - 1)
	}
	return dict, nil
}

// cffCharset returns the SIDs of n glyphs. Offset 0 denotes the predefined
// ISOAdobe charset.
func cffCharset(b binarySegm, at, n int) ([]int, error) {
	sids := make([]int, n)
	if at == 0 {
		if n > 229 {
			return nil, errFontFormat("CFF ISOAdobe charset too short")
		}
		for gid := range sids {
			sids[gid] = gid
		}
		return sids, nil
	}
	if at < 3 || at >= len(b) {
		return nil, errFontFormat("CFF charset offset out of bounds")
	}
	format := b[at]
	pos := at + 1
	truncated := errFontFormat("CFF charset truncated")
	for gid := 1; gid < n; {
		first, err := b.u16(pos)
		if err != nil {
			return nil, truncated
		}
		switch format {
		case 0:
			sids[gid] = int(first)
			gid++
			pos += 2
			continue
		case 1:
			if pos+2 >= len(b) {
				return nil, truncated
			}
			left := int(b[pos+2])
			pos += 3
			for k := 0; k <= left && gid < n; k++ {
				sids[gid] = int(first) + k
				gid++
			}
		case 2:
			left, err := b.u16(pos + 2)
			if err != nil {
				return nil, truncated
			}
			pos += 4
			for k := 0; k <= int(left) && gid < n; k++ {
				sids[gid] = int(first) + k
				gid++
			}
		default:
			return nil, errFontFormat(fmt.Sprintf("unknown CFF charset format %d", format))
		}
	}
	return sids, nil
}
