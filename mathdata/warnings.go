package mathdata

import (
	"errors"
	"fmt"
)

// ErrDocument is returned for malformed master data documents.
var ErrDocument = errors.New("malformed master data")

// WarningKind classifies problems with master data which do not stop a build.
type WarningKind int

const (
	Incomplete WarningKind = iota // per-master values have been repaired
	Mismatch                      // an entry references an unknown glyph and has been dropped
)

func (k WarningKind) String() string {
	if k == Mismatch {
		return "cross-reference mismatch"
	}
	return "incomplete data"
}

// Warning is a problem with master data.
type Warning struct {
	Kind  WarningKind
	Glyph string
	Issue string
}

func (w Warning) String() string {
	if w.Glyph == "" {
		return fmt.Sprintf("[%s] %s", w.Kind, w.Issue)
	}
	return fmt.Sprintf("[%s] glyph %q: %s", w.Kind, w.Glyph, w.Issue)
}

type warningCollector struct {
	warnings []Warning
}

func (wc *warningCollector) add(kind WarningKind, glyph, issue string) {
	w := Warning{Kind: kind, Glyph: glyph, Issue: issue}
	tracer().Infof("master data: %s", w)
	wc.warnings = append(wc.warnings, w)
}

func (wc *warningCollector) list() []Warning {
	return append([]Warning(nil), wc.warnings...)
}
