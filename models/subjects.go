package models

import (
	"fmt"
	"math"
)

// SubjectDimensions is the size of the shared subject space. The axes are
// Physics, Chemistry, Mathematics, Life Sciences, English, History,
// Political Science and Hindi.
const SubjectDimensions = 8

// SubjectVector is a subject's position in the subject space.
type SubjectVector []float64

// rawSubjectVectors holds hand-authored memberships before normalization.
// Pure subjects sit on a single axis; auxiliary subjects blend several.
var rawSubjectVectors = map[string]SubjectVector{
	"Physics":          {1, 0, 0, 0, 0, 0, 0, 0},
	"Chemistry":        {0, 1, 0, 0, 0, 0, 0, 0},
	"Mathematics":      {0, 0, 1, 0, 0, 0, 0, 0},
	"English":          {0, 0, 0, 0, 0, 1, 0, 0},
	"History":          {0, 0, 0, 0, 0, 0, 1, 0},
	"Hindi":            {0, 0, 0, 0, 0, 0, 0, 1},
	"SST":              {0, 0, 0, 0, 1, 1, 1, 0},
	"Geography":        {0, 0, 0, 0.3, 0.3, 0, 0.7, 0},
	"Electrochemistry": {0.7, 1, 0, 0, 0, 0, 0, 0},
	"Biology":          {0.3, 0.8, 0, 0, 1, 0, 0, 0},
	"Astrophysics":     {1, 0, 1, 0, 0, 0, 0, 0},
	"Civics":           {0, 0, 0, 0, 0.6, 1, 0.3, 0},
	"Macroeconomics":   {0, 0, 0, 0, 0.3, 0.6, 1, 0},
	"Biochemistry":     {0.2, 1, 0, 1, 0, 0, 0, 0},
}

var subjectCatalog = buildCatalog()

func buildCatalog() map[string]SubjectVector {
	catalog := make(map[string]SubjectVector, len(rawSubjectVectors))
	for name, vec := range rawSubjectVectors {
		catalog[name] = Normalize(vec)
	}
	return catalog
}

// Normalize returns v scaled to unit length. A zero vector is returned unchanged.
func Normalize(v SubjectVector) SubjectVector {
	var sum float64
	for _, x := range v {
		sum += x * x
	}
	norm := math.Sqrt(sum)
	if norm == 0 {
		return v
	}
	out := make(SubjectVector, len(v))
	for i, x := range v {
		out[i] = x / norm
	}
	return out
}

// Norm returns the L2 norm of v.
func (v SubjectVector) Norm() float64 {
	var sum float64
	for _, x := range v {
		sum += x * x
	}
	return math.Sqrt(sum)
}

// Dot returns the dot product of v and w, or false when their dimensions differ.
func (v SubjectVector) Dot(w SubjectVector) (float64, bool) {
	if len(v) != len(w) {
		return 0, false
	}
	var sum float64
	for i := range v {
		sum += v[i] * w[i]
	}
	return sum, true
}

// Equal reports whether v and w hold the same components.
func (v SubjectVector) Equal(w SubjectVector) bool {
	if len(v) != len(w) {
		return false
	}
	for i := range v {
		if v[i] != w[i] {
			return false
		}
	}
	return true
}

// LookupSubject returns a copy of the unit vector for name.
func LookupSubject(name string) (SubjectVector, error) {
	vec, ok := subjectCatalog[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownSubject, name)
	}
	out := make(SubjectVector, len(vec))
	copy(out, vec)
	return out, nil
}

// IsKnownSubject reports whether name is in the catalog.
func IsKnownSubject(name string) bool {
	_, ok := subjectCatalog[name]
	return ok
}

// SubjectNameForVector finds the catalog subject whose unit vector equals vec.
func SubjectNameForVector(vec SubjectVector) (string, bool) {
	for name, unit := range subjectCatalog {
		if unit.Equal(vec) {
			return name, true
		}
	}
	return "", false
}

// SubjectNames lists every catalog subject.
func SubjectNames() []string {
	names := make([]string, 0, len(subjectCatalog))
	for name := range subjectCatalog {
		names = append(names, name)
	}
	return names
}
