package models

import (
	"errors"
	"math"
	"testing"
)

func TestNormalizeUnitLength(t *testing.T) {
	tests := []SubjectVector{
		{1, 0, 0, 0, 0, 0, 0, 0},
		{3, 4, 0, 0, 0, 0, 0, 0},
		{0.2, 1, 0, 1, 0, 0, 0, 0},
		{-1, 2, -3, 4, -5, 6, -7, 8},
	}

	for _, raw := range tests {
		got := Normalize(raw)
		if math.Abs(got.Norm()-1) > 1e-9 {
			t.Errorf("Normalize(%v) norm = %v, want 1", raw, got.Norm())
		}
	}
}

func TestNormalizeZeroVector(t *testing.T) {
	zero := SubjectVector{0, 0, 0, 0, 0, 0, 0, 0}
	got := Normalize(zero)
	if !got.Equal(zero) {
		t.Errorf("Normalize(zero) = %v, want unchanged", got)
	}
}

func TestNormalizeDoesNotMutateInput(t *testing.T) {
	raw := SubjectVector{3, 4, 0, 0, 0, 0, 0, 0}
	Normalize(raw)
	if raw[0] != 3 || raw[1] != 4 {
		t.Errorf("input mutated: %v", raw)
	}
}

func TestCatalogVectorsAreUnit(t *testing.T) {
	names := SubjectNames()
	if len(names) != 14 {
		t.Fatalf("catalog has %d subjects, want 14", len(names))
	}
	for _, name := range names {
		vec, err := LookupSubject(name)
		if err != nil {
			t.Fatalf("LookupSubject(%q): %v", name, err)
		}
		if len(vec) != SubjectDimensions {
			t.Errorf("%s has %d dimensions, want %d", name, len(vec), SubjectDimensions)
		}
		if math.Abs(vec.Norm()-1) > 1e-9 {
			t.Errorf("%s norm = %v, want 1", name, vec.Norm())
		}
	}
}

func TestLookupSubjectReturnsCopy(t *testing.T) {
	vec, err := LookupSubject("Physics")
	if err != nil {
		t.Fatal(err)
	}
	vec[0] = 42

	again, _ := LookupSubject("Physics")
	if again[0] != 1 {
		t.Errorf("catalog mutated through lookup result: %v", again)
	}
}

func TestLookupUnknownSubject(t *testing.T) {
	_, err := LookupSubject("Alchemy")
	if !errors.Is(err, ErrUnknownSubject) {
		t.Errorf("err = %v, want ErrUnknownSubject", err)
	}
	if IsKnownSubject("Alchemy") {
		t.Error("IsKnownSubject(Alchemy) = true")
	}
}

func TestSubjectNameForVector(t *testing.T) {
	vec, _ := LookupSubject("Biochemistry")
	name, ok := SubjectNameForVector(vec)
	if !ok || name != "Biochemistry" {
		t.Errorf("SubjectNameForVector = %q, %v; want Biochemistry", name, ok)
	}

	if _, ok := SubjectNameForVector(SubjectVector{0.5, 0.5}); ok {
		t.Error("matched a vector that is not in the catalog")
	}
}

func TestDotDimensionMismatch(t *testing.T) {
	a := SubjectVector{1, 0}
	b := SubjectVector{1, 0, 0}
	if _, ok := a.Dot(b); ok {
		t.Error("Dot accepted mismatched dimensions")
	}
	if d, ok := a.Dot(SubjectVector{0.5, 2}); !ok || d != 0.5 {
		t.Errorf("Dot = %v, %v; want 0.5, true", d, ok)
	}
}

func TestTeachingSubjectAverageRating(t *testing.T) {
	if got := (TeachingSubject{}).AverageRating(); got != 0 {
		t.Errorf("unrated average = %v, want 0", got)
	}
	s := TeachingSubject{NoOfRatings: 4, TotalReceivedRatings: 30}
	if got := s.AverageRating(); got != 7.5 {
		t.Errorf("average = %v, want 7.5", got)
	}
}
