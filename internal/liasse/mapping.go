package liasse

import (
	"math"

	"github.com/lmnp-erp/lmnp-erp/internal/amount"
	"github.com/lmnp-erp/lmnp-erp/internal/declarations"
)

// Overrides holds user supplied case values keyed by form then code. A nil pointer
// or a missing key means no override; an explicit zero is a real override.
type Overrides map[FormType]map[string]*float64

// Lookup returns the finite override set for (form, code).
func (o Overrides) Lookup(form FormType, code string) (float64, bool) {
	if o == nil {
		return 0, false
	}
	v := o[form][code]
	if v == nil || math.IsNaN(*v) || math.IsInf(*v, 0) {
		return 0, false
	}
	return *v, true
}

// Set records an override.
func (o Overrides) Set(form FormType, code string, value float64) {
	if o[form] == nil {
		o[form] = make(map[string]*float64)
	}
	o[form][code] = &value
}

// Clear removes an override, restoring the automatic value.
func (o Overrides) Clear(form FormType, code string) {
	delete(o[form], code)
}

// Effective flattens the finite overrides into "form/code" keys.
func (o Overrides) Effective() map[string]float64 {
	out := make(map[string]float64)
	for form, codes := range o {
		for code := range codes {
			if v, ok := o.Lookup(form, code); ok {
				out[string(form)+"/"+code] = v
			}
		}
	}
	return out
}

// CaseValue is an evaluated case of a form.
type CaseValue struct {
	Code       string   `json:"code"`
	Label      string   `json:"label"`
	Category   Category `json:"category"`
	AutoValue  float64  `json:"auto_value"`
	Value      float64  `json:"value"`
	Overridden bool     `json:"overridden"`
}

// FormMapping groups the evaluated cases of one form.
type FormMapping struct {
	Form  FormType    `json:"form"`
	Label string      `json:"label"`
	Cases []CaseValue `json:"cases"`
}

// Case returns the case with the given code.
func (m FormMapping) Case(code string) (CaseValue, bool) {
	for _, c := range m.Cases {
		if c.Code == code {
			return c, true
		}
	}
	return CaseValue{}, false
}

// BuildFormMappings evaluates every catalog case against the context and applies overrides.
func BuildFormMappings(ctx declarations.Context, overrides Overrides) []FormMapping {
	byForm := make(map[FormType]*FormMapping, len(Forms))
	for _, form := range Forms {
		byForm[form] = &FormMapping{Form: form, Label: form.Label()}
	}
	for _, def := range catalog {
		auto := amount.Round2(def.Compute(ctx))
		cv := CaseValue{
			Code:      def.Code,
			Label:     def.Label,
			Category:  def.Category,
			AutoValue: auto,
			Value:     auto,
		}
		if v, ok := overrides.Lookup(def.Form, def.Code); ok {
			cv.Value = v
			cv.Overridden = true
		}
		m := byForm[def.Form]
		m.Cases = append(m.Cases, cv)
	}
	out := make([]FormMapping, 0, len(Forms))
	for _, form := range Forms {
		out = append(out, *byForm[form])
	}
	return out
}
