package mathtable

import (
	"errors"
	"fmt"

	"github.com/npillmayer/otmath/ot"
)

// Constants are the fields of OpenType table MathConstants. The first four
// fields and RadicalDegreeBottomRaisePercent are plain integers, all others
// are written as MathValueRecords.
type Constants struct {
	ScriptPercentScaleDown                   int
	ScriptScriptPercentScaleDown             int
	DelimitedSubFormulaMinHeight             int
	DisplayOperatorMinHeight                 int
	MathLeading                              int
	AxisHeight                               int
	AccentBaseHeight                         int
	FlattenedAccentBaseHeight                int
	SubscriptShiftDown                       int
	SubscriptTopMax                          int
	SubscriptBaselineDropMin                 int
	SuperscriptShiftUp                       int
	SuperscriptShiftUpCramped                int
	SuperscriptBottomMin                     int
	SuperscriptBaselineDropMax               int
	SubSuperscriptGapMin                     int
	SuperscriptBottomMaxWithSubscript        int
	SpaceAfterScript                         int
	UpperLimitGapMin                         int
	UpperLimitBaselineRiseMin                int
	LowerLimitGapMin                         int
	LowerLimitBaselineDropMin                int
	StackTopShiftUp                          int
	StackTopDisplayStyleShiftUp              int
	StackBottomShiftDown                     int
	StackBottomDisplayStyleShiftDown         int
	StackGapMin                              int
	StackDisplayStyleGapMin                  int
	StretchStackTopShiftUp                   int
	StretchStackBottomShiftDown              int
	StretchStackGapAboveMin                  int
	StretchStackGapBelowMin                  int
	FractionNumeratorShiftUp                 int
	FractionNumeratorDisplayStyleShiftUp     int
	FractionDenominatorShiftDown             int
	FractionDenominatorDisplayStyleShiftDown int
	FractionNumeratorGapMin                  int
	FractionNumDisplayStyleGapMin            int
	FractionRuleThickness                    int
	FractionDenominatorGapMin                int
	FractionDenomDisplayStyleGapMin          int
	SkewedFractionHorizontalGap              int
	SkewedFractionVerticalGap                int
	OverbarVerticalGap                       int
	OverbarRuleThickness                     int
	OverbarExtraAscender                     int
	UnderbarVerticalGap                      int
	UnderbarRuleThickness                    int
	UnderbarExtraDescender                   int
	RadicalVerticalGap                       int
	RadicalDisplayStyleVerticalGap           int
	RadicalRuleThickness                     int
	RadicalExtraAscender                     int
	RadicalKernBeforeDegree                  int
	RadicalKernAfterDegree                   int
	RadicalDegreeBottomRaisePercent          int
}

// constantFields dispatches constant names to fields of Constants.
var constantFields = map[string]func(*Constants) *int{
	"ScriptPercentScaleDown":                   func(c *Constants) *int { return &c.ScriptPercentScaleDown },
	"ScriptScriptPercentScaleDown":             func(c *Constants) *int { return &c.ScriptScriptPercentScaleDown },
	"DelimitedSubFormulaMinHeight":             func(c *Constants) *int { return &c.DelimitedSubFormulaMinHeight },
	"DisplayOperatorMinHeight":                 func(c *Constants) *int { return &c.DisplayOperatorMinHeight },
	"MathLeading":                              func(c *Constants) *int { return &c.MathLeading },
	"AxisHeight":                               func(c *Constants) *int { return &c.AxisHeight },
	"AccentBaseHeight":                         func(c *Constants) *int { return &c.AccentBaseHeight },
	"FlattenedAccentBaseHeight":                func(c *Constants) *int { return &c.FlattenedAccentBaseHeight },
	"SubscriptShiftDown":                       func(c *Constants) *int { return &c.SubscriptShiftDown },
	"SubscriptTopMax":                          func(c *Constants) *int { return &c.SubscriptTopMax },
	"SubscriptBaselineDropMin":                 func(c *Constants) *int { return &c.SubscriptBaselineDropMin },
	"SuperscriptShiftUp":                       func(c *Constants) *int { return &c.SuperscriptShiftUp },
	"SuperscriptShiftUpCramped":                func(c *Constants) *int { return &c.SuperscriptShiftUpCramped },
	"SuperscriptBottomMin":                     func(c *Constants) *int { return &c.SuperscriptBottomMin },
	"SuperscriptBaselineDropMax":               func(c *Constants) *int { return &c.SuperscriptBaselineDropMax },
	"SubSuperscriptGapMin":                     func(c *Constants) *int { return &c.SubSuperscriptGapMin },
	"SuperscriptBottomMaxWithSubscript":        func(c *Constants) *int { return &c.SuperscriptBottomMaxWithSubscript },
	"SpaceAfterScript":                         func(c *Constants) *int { return &c.SpaceAfterScript },
	"UpperLimitGapMin":                         func(c *Constants) *int { return &c.UpperLimitGapMin },
	"UpperLimitBaselineRiseMin":                func(c *Constants) *int { return &c.UpperLimitBaselineRiseMin },
	"LowerLimitGapMin":                         func(c *Constants) *int { return &c.LowerLimitGapMin },
	"LowerLimitBaselineDropMin":                func(c *Constants) *int { return &c.LowerLimitBaselineDropMin },
	"StackTopShiftUp":                          func(c *Constants) *int { return &c.StackTopShiftUp },
	"StackTopDisplayStyleShiftUp":              func(c *Constants) *int { return &c.StackTopDisplayStyleShiftUp },
	"StackBottomShiftDown":                     func(c *Constants) *int { return &c.StackBottomShiftDown },
	"StackBottomDisplayStyleShiftDown":         func(c *Constants) *int { return &c.StackBottomDisplayStyleShiftDown },
	"StackGapMin":                              func(c *Constants) *int { return &c.StackGapMin },
	"StackDisplayStyleGapMin":                  func(c *Constants) *int { return &c.StackDisplayStyleGapMin },
	"StretchStackTopShiftUp":                   func(c *Constants) *int { return &c.StretchStackTopShiftUp },
	"StretchStackBottomShiftDown":              func(c *Constants) *int { return &c.StretchStackBottomShiftDown },
	"StretchStackGapAboveMin":                  func(c *Constants) *int { return &c.StretchStackGapAboveMin },
	"StretchStackGapBelowMin":                  func(c *Constants) *int { return &c.StretchStackGapBelowMin },
	"FractionNumeratorShiftUp":                 func(c *Constants) *int { return &c.FractionNumeratorShiftUp },
	"FractionNumeratorDisplayStyleShiftUp":     func(c *Constants) *int { return &c.FractionNumeratorDisplayStyleShiftUp },
	"FractionDenominatorShiftDown":             func(c *Constants) *int { return &c.FractionDenominatorShiftDown },
	"FractionDenominatorDisplayStyleShiftDown": func(c *Constants) *int { return &c.FractionDenominatorDisplayStyleShiftDown },
	"FractionNumeratorGapMin":                  func(c *Constants) *int { return &c.FractionNumeratorGapMin },
	"FractionNumDisplayStyleGapMin":            func(c *Constants) *int { return &c.FractionNumDisplayStyleGapMin },
	"FractionRuleThickness":                    func(c *Constants) *int { return &c.FractionRuleThickness },
	"FractionDenominatorGapMin":                func(c *Constants) *int { return &c.FractionDenominatorGapMin },
	"FractionDenomDisplayStyleGapMin":          func(c *Constants) *int { return &c.FractionDenomDisplayStyleGapMin },
	"SkewedFractionHorizontalGap":              func(c *Constants) *int { return &c.SkewedFractionHorizontalGap },
	"SkewedFractionVerticalGap":                func(c *Constants) *int { return &c.SkewedFractionVerticalGap },
	"OverbarVerticalGap":                       func(c *Constants) *int { return &c.OverbarVerticalGap },
	"OverbarRuleThickness":                     func(c *Constants) *int { return &c.OverbarRuleThickness },
	"OverbarExtraAscender":                     func(c *Constants) *int { return &c.OverbarExtraAscender },
	"UnderbarVerticalGap":                      func(c *Constants) *int { return &c.UnderbarVerticalGap },
	"UnderbarRuleThickness":                    func(c *Constants) *int { return &c.UnderbarRuleThickness },
	"UnderbarExtraDescender":                   func(c *Constants) *int { return &c.UnderbarExtraDescender },
	"RadicalVerticalGap":                       func(c *Constants) *int { return &c.RadicalVerticalGap },
	"RadicalDisplayStyleVerticalGap":           func(c *Constants) *int { return &c.RadicalDisplayStyleVerticalGap },
	"RadicalRuleThickness":                     func(c *Constants) *int { return &c.RadicalRuleThickness },
	"RadicalExtraAscender":                     func(c *Constants) *int { return &c.RadicalExtraAscender },
	"RadicalKernBeforeDegree":                  func(c *Constants) *int { return &c.RadicalKernBeforeDegree },
	"RadicalKernAfterDegree":                   func(c *Constants) *int { return &c.RadicalKernAfterDegree },
	"RadicalDegreeBottomRaisePercent":          func(c *Constants) *int { return &c.RadicalDegreeBottomRaisePercent },
}

// ErrUnknownConstant is returned for names which are not MathConstants fields.
var ErrUnknownConstant = errors.New("unknown math constant")

// Set sets a constant by name.
func (c *Constants) Set(name string, v int) error {
	field, ok := constantFields[name]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownConstant, name)
	}
	*field(c) = v
	return nil
}

// Get returns a constant by name.
func (c *Constants) Get(name string) (int, bool) {
	field, ok := constantFields[name]
	if !ok {
		return 0, false
	}
	return *field(c), true
}

// encode writes the constants in table order.
func (c *Constants) encode(w *writer) error {
	for i, name := range ot.MathConstantNames {
		v := *constantFields[name](c)
		switch {
		case i < 2 || i == ot.MathConstantsCount-1:
			if err := w.int16(name, v); err != nil {
				return err
			}
		case i < 4:
			if err := w.uint16(name, v); err != nil {
				return err
			}
		default:
			if err := w.valueRecord(name, v); err != nil {
				return err
			}
		}
	}
	return nil
}
