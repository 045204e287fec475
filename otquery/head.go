package otquery

import (
	"encoding/binary"
	"time"

	"github.com/npillmayer/otmath/ot"
)

// HeadTableInfo is a typed query view over OpenType table 'head'.
// Values are decoded directly from the raw table bytes.
type HeadTableInfo struct {
	MajorVersion       uint16
	MinorVersion       uint16
	FontRevision       uint32 // Fixed 16.16
	CheckSumAdjustment uint32
	MagicNumber        uint32
	Flags              uint16
	UnitsPerEm         uint16
	Created            int64 // seconds since 1904-01-01
	Modified           int64 // seconds since 1904-01-01
	XMin, YMin         int16
	XMax, YMax         int16
	MacStyle           uint16
	IndexToLocFormat   int16
}

const headTableSize = 54

// fontChecksumMagic is the checksum of a complete font file with a correct
// head.checkSumAdjustment.
const fontChecksumMagic = 0xB1B0AFBA

// epoch1904 is the start of LONGDATETIME values.
var epoch1904 = time.Date(1904, time.January, 1, 0, 0, 0, 0, time.UTC)

// HeadInfo decodes table 'head' from raw bytes.
// Returns (info, true) on success, or (zero, false) if table is missing/too short.
func HeadInfo(otf *ot.Font) (HeadTableInfo, bool) {
	var info HeadTableInfo
	if otf == nil {
		return info, false
	}
	table := otf.Table(ot.T("head"))
	if table == nil {
		return info, false
	}
	b := table.Binary()
	if len(b) < headTableSize {
		tracer().Debugf("head table too short: %d", len(b))
		return info, false
	}
	info.MajorVersion = binary.BigEndian.Uint16(b[0:2])
	info.MinorVersion = binary.BigEndian.Uint16(b[2:4])
	info.FontRevision = binary.BigEndian.Uint32(b[4:8])
	info.CheckSumAdjustment = binary.BigEndian.Uint32(b[8:12])
	info.MagicNumber = binary.BigEndian.Uint32(b[12:16])
	info.Flags = binary.BigEndian.Uint16(b[16:18])
	info.UnitsPerEm = binary.BigEndian.Uint16(b[18:20])
	info.Created = int64(binary.BigEndian.Uint64(b[20:28]))
	info.Modified = int64(binary.BigEndian.Uint64(b[28:36]))
	info.XMin = int16(binary.BigEndian.Uint16(b[36:38]))
	info.YMin = int16(binary.BigEndian.Uint16(b[38:40]))
	info.XMax = int16(binary.BigEndian.Uint16(b[40:42]))
	info.YMax = int16(binary.BigEndian.Uint16(b[42:44]))
	info.MacStyle = binary.BigEndian.Uint16(b[44:46])
	info.IndexToLocFormat = int16(binary.BigEndian.Uint16(b[50:52]))
	return info, true
}

// Revision returns the font revision as a decimal number.
func (h HeadTableInfo) Revision() float64 {
	return float64(h.FontRevision) / 65536
}

// ModifiedTime returns the modification timestamp of the font.
func (h HeadTableInfo) ModifiedTime() time.Time {
	return epoch1904.Add(time.Duration(h.Modified) * time.Second)
}

// ChecksumOK reports whether the whole-font checksum of otf matches
// head.checkSumAdjustment, i.e. the font has been assembled correctly after
// its last modification.
func ChecksumOK(otf *ot.Font) bool {
	if otf == nil || otf.Table(ot.T("head")) == nil {
		return false
	}
	return ot.TableChecksum(otf.Binary()) == fontChecksumMagic
}
