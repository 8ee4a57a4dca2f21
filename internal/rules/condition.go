package rules

import "rechtsdoc/internal/profile"

// ConditionKind discriminates the predicate variants a conditional
// section can carry.
type ConditionKind string

const (
	// FieldTruthy holds when the field at Path is non-empty / true.
	FieldTruthy ConditionKind = "field_truthy"
	// FieldEquals holds when the field at Path equals Value.
	FieldEquals ConditionKind = "field_equals"
	// FieldIn holds when the field at Path equals one of Values.
	FieldIn ConditionKind = "field_in"
	// AnyTruthy holds when at least one of Paths is truthy.
	AnyTruthy ConditionKind = "any_truthy"
	// AllTruthy holds when every path in Paths is truthy.
	AllTruthy ConditionKind = "all_truthy"
	// MapAnyTrue holds when any entry of the flag map at Path is enabled.
	MapAnyTrue ConditionKind = "map_any_true"
)

// Condition is a side-effect-free, serializable predicate over a site
// profile. It is stored on the section it gates and re-evaluated against
// whatever profile snapshot the caller supplies, so the same plan can be
// filtered against different profiles.
type Condition struct {
	Kind   ConditionKind `json:"kind"`
	Path   string        `json:"path,omitempty"`
	Value  string        `json:"value,omitempty"`
	Values []string      `json:"values,omitempty"`
	Paths  []string      `json:"paths,omitempty"`
}

// Eval applies the predicate to the given profile.
func (c *Condition) Eval(p *profile.SiteProfile) bool {
	if p == nil {
		return false
	}
	if c == nil {
		return true
	}
	switch c.Kind {
	case FieldTruthy:
		return p.Truthy(c.Path)
	case FieldEquals:
		v, ok := p.StringValue(c.Path)
		return ok && v == c.Value
	case FieldIn:
		v, ok := p.StringValue(c.Path)
		if !ok {
			return false
		}
		for _, candidate := range c.Values {
			if v == candidate {
				return true
			}
		}
		return false
	case AnyTruthy:
		for _, path := range c.Paths {
			if p.Truthy(path) {
				return true
			}
		}
		return false
	case AllTruthy:
		for _, path := range c.Paths {
			if !p.Truthy(path) {
				return false
			}
		}
		return len(c.Paths) > 0
	case MapAnyTrue:
		return p.MapAnyTrue(c.Path)
	}
	return false
}

func fieldTruthy(path string) *Condition {
	return &Condition{Kind: FieldTruthy, Path: path}
}

func fieldIn(path string, values ...string) *Condition {
	return &Condition{Kind: FieldIn, Path: path, Values: values}
}

func anyTruthy(paths ...string) *Condition {
	return &Condition{Kind: AnyTruthy, Paths: paths}
}

func allTruthy(paths ...string) *Condition {
	return &Condition{Kind: AllTruthy, Paths: paths}
}

func mapAnyTrue(name string) *Condition {
	return &Condition{Kind: MapAnyTrue, Path: name}
}
