/*
Package interp interpolates per-master quantities to font instances.

Masters are put into an order by ascending weight; the position of a master
in this order is its master index, which keys per-master values throughout
this module. An instance is described by an Interpolation, a sparse list of
(master index, coefficient) terms. The instance value of a quantity with
per-master values v is

	round(Σ v[i]·c)

where round is applied exactly once, rounding halves to even.

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © Norbert Pillmayer <norbert@pillmayer.com>
*/
package interp

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/npillmayer/otmath/glyphs"
	"github.com/npillmayer/schuko/tracing"
)

// tracer writes to trace with key 'font.math'
func tracer() tracing.Trace {
	return tracing.Select("font.math")
}

// ErrUnknownMaster is returned if an interpolation references a master which
// is not part of a master set.
var ErrUnknownMaster = errors.New("unknown master")

// MasterSet is an ordered set of font masters.
type MasterSet struct {
	masters []glyphs.Master
	index   map[string]int
}

// NewMasterSet creates a master set, sorted ascending by weight. Masters with
// equal weights keep their relative order.
func NewMasterSet(masters []glyphs.Master) *MasterSet {
	ms := &MasterSet{
		masters: append([]glyphs.Master(nil), masters...),
		index:   make(map[string]int, len(masters)),
	}
	sort.SliceStable(ms.masters, func(i, j int) bool {
		return ms.masters[i].Weight < ms.masters[j].Weight
	})
	for i, m := range ms.masters {
		ms.index[m.ID] = i
	}
	return ms
}

// Len returns the number of masters.
func (ms *MasterSet) Len() int {
	return len(ms.masters)
}

// Index returns the master index of a master ID.
func (ms *MasterSet) Index(id string) (int, bool) {
	i, ok := ms.index[id]
	return i, ok
}

// At returns the master at master index i.
func (ms *MasterSet) At(i int) glyphs.Master {
	return ms.masters[i]
}

// Masters returns the masters in master index order.
func (ms *MasterSet) Masters() []glyphs.Master {
	return append([]glyphs.Master(nil), ms.masters...)
}

func (ms *MasterSet) String() string {
	var b strings.Builder
	for i, m := range ms.masters {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%d:%s(%g)", i, m.Name, m.Weight)
	}
	return b.String()
}

// --- Interpolations --------------------------------------------------------

// Term is a master index paired with an interpolation coefficient.
type Term struct {
	Master int
	Coeff  float64
}

// Interpolation describes an instance as a weighted sum of masters.
// Coefficients are not required to sum up to 1.
type Interpolation []Term

// Identity returns the interpolation selecting master i.
func Identity(i int) Interpolation {
	return Interpolation{{Master: i, Coeff: 1}}
}

// Sum returns Σ values[t.Master]·t.Coeff, without rounding. Terms referencing
// a master index outside of values are skipped; see Validate.
func (ip Interpolation) Sum(values []int) float64 {
	var sum float64
	for _, t := range ip {
		if t.Master >= 0 && t.Master < len(values) {
			sum += float64(values[t.Master]) * t.Coeff
		}
	}
	return sum
}

// Round returns the instance value of a quantity with per-master values.
func (ip Interpolation) Round(values []int) int {
	return int(math.RoundToEven(ip.Sum(values)))
}

// Plus returns the term-wise sum of two interpolations, sorted by master index.
func (ip Interpolation) Plus(other Interpolation) Interpolation {
	coeffs := make(map[int]float64, len(ip)+len(other))
	for _, t := range ip {
		coeffs[t.Master] += t.Coeff
	}
	for _, t := range other {
		coeffs[t.Master] += t.Coeff
	}
	return fromMap(coeffs)
}

// Validate checks that all master indices are valid for n masters.
func (ip Interpolation) Validate(n int) error {
	for _, t := range ip {
		if t.Master < 0 || t.Master >= n {
			return fmt.Errorf("%w: master index %d of %d masters", ErrUnknownMaster, t.Master, n)
		}
	}
	return nil
}

func (ip Interpolation) String() string {
	var b strings.Builder
	b.WriteByte('[')
	for i, t := range ip {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "(%d, %g)", t.Master, t.Coeff)
	}
	b.WriteByte(']')
	return b.String()
}

func fromMap(coeffs map[int]float64) Interpolation {
	ip := make(Interpolation, 0, len(coeffs))
	for m, c := range coeffs {
		ip = append(ip, Term{Master: m, Coeff: c})
	}
	sort.Slice(ip, func(i, j int) bool { return ip[i].Master < ip[j].Master })
	return ip
}

// FromInstance creates the interpolation of a font instance. Stored
// master-ID coefficients are used if present. Otherwise coefficients are
// derived piecewise linearly from the instance's weight position between the
// two nearest masters, clamped at the outermost masters.
func FromInstance(ms *MasterSet, inst glyphs.Instance) (Interpolation, error) {
	if ms.Len() == 0 {
		return nil, fmt.Errorf("%w: empty master set", ErrUnknownMaster)
	}
	if len(inst.Interpolations) > 0 {
		coeffs := make(map[int]float64, len(inst.Interpolations))
		for id, c := range inst.Interpolations {
			i, ok := ms.Index(id)
			if !ok {
				return nil, fmt.Errorf("%w: instance %s references master %q",
					ErrUnknownMaster, inst.Name, id)
			}
			coeffs[i] += c
		}
		ip := fromMap(coeffs)
		tracer().Debugf("instance %s: stored interpolation %v", inst.Name, ip)
		return ip, nil
	}
	ip := FromWeight(ms, inst.Weight)
	tracer().Debugf("instance %s: interpolation %v derived from weight %g", inst.Name, ip, inst.Weight)
	return ip, nil
}

// FromWeight creates an interpolation for a position on the weight axis.
func FromWeight(ms *MasterSet, w float64) Interpolation {
	last := ms.Len() - 1
	if w <= ms.masters[0].Weight {
		return Identity(0)
	}
	if w >= ms.masters[last].Weight {
		return Identity(last)
	}
	for i := 0; i < last; i++ {
		lo, hi := ms.masters[i].Weight, ms.masters[i+1].Weight
		if w == lo {
			return Identity(i)
		}
		if w > lo && w < hi {
			c := (w - lo) / (hi - lo)
			return Interpolation{{Master: i, Coeff: 1 - c}, {Master: i + 1, Coeff: c}}
		}
	}
	return Identity(last)
}
