package otquery

import (
	"encoding/binary"

	"github.com/npillmayer/otmath/ot"
)

// MaxPTableInfo is a typed query view over OpenType table 'maxp'.
// Fonts with CFF outlines carry a version 0.5 table with the glyph count only;
// for version 1.0 tables, the composite glyph limits are decoded as well.
type MaxPTableInfo struct {
	VersionFixed uint32
	NumGlyphs    uint16

	// TrueType profile fields (version 1.0 only)
	HasExtendedProfile   bool
	MaxPoints            uint16
	MaxContours          uint16
	MaxComponentElements uint16
	MaxComponentDepth    uint16
}

const maxpMinSize = 6
const maxpV10Size = 32

// MaxPInfo decodes table 'maxp' directly from raw bytes.
// Returns (info, true) on success, or (zero, false) if table is missing/too short.
func MaxPInfo(otf *ot.Font) (MaxPTableInfo, bool) {
	var info MaxPTableInfo
	if otf == nil {
		return info, false
	}
	table := otf.Table(ot.T("maxp"))
	if table == nil {
		return info, false
	}
	b := table.Binary()
	if len(b) < maxpMinSize {
		return info, false
	}
	info.VersionFixed = binary.BigEndian.Uint32(b[0:4])
	info.NumGlyphs = binary.BigEndian.Uint16(b[4:6])
	if info.VersionFixed != 0x00010000 || len(b) < maxpV10Size {
		return info, true
	}
	info.HasExtendedProfile = true
	info.MaxPoints = binary.BigEndian.Uint16(b[6:8])
	info.MaxContours = binary.BigEndian.Uint16(b[8:10])
	info.MaxComponentElements = binary.BigEndian.Uint16(b[28:30])
	info.MaxComponentDepth = binary.BigEndian.Uint16(b[30:32])
	return info, true
}

// IsCFF reports whether the glyph count comes from a version 0.5 table, as
// used by fonts with CFF outlines.
func (m MaxPTableInfo) IsCFF() bool {
	return m.VersionFixed == 0x00005000
}
