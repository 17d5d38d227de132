package services

import (
	"context"
	"fmt"

	"subjectswap_server/logger"
	"subjectswap_server/models"
)

// SubjectDeclaration is one teaching subject on a profile edit.
type SubjectDeclaration struct {
	SubjectName string  `json:"subjectName" validate:"required"`
	SelfRating  float64 `json:"selfRating" validate:"gte=0,lte=10"`
}

// ProfileService edits the subject sections of user profiles.
type ProfileService struct {
	Users  UserDirectory
	Logger *logger.Logger
}

// NewProfileService creates a profile service over users.
func NewProfileService(users UserDirectory, log *logger.Logger) *ProfileService {
	return &ProfileService{Users: users, Logger: logger.OrGlobal(log)}
}

// UpdateSubjects replaces the user's declared teaching and learning subjects.
// Teaching subjects left out are deactivated and keep their rating history;
// re-declared ones are reactivated. Every name must be in the catalog.
func (ps *ProfileService) UpdateSubjects(ctx context.Context, userID string, teaching []SubjectDeclaration, learning []string) (*models.UserProfile, error) {
	for _, d := range teaching {
		if !models.IsKnownSubject(d.SubjectName) {
			return nil, fmt.Errorf("%w: %q", models.ErrUnknownSubject, d.SubjectName)
		}
	}
	for _, name := range learning {
		if !models.IsKnownSubject(name) {
			return nil, fmt.Errorf("%w: %q", models.ErrUnknownSubject, name)
		}
	}

	user, err := ps.Users.FindActiveByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	declared := make(map[string]SubjectDeclaration, len(teaching))
	for _, d := range teaching {
		declared[d.SubjectName] = d
	}

	for i := range user.TeachingSubjects {
		s := &user.TeachingSubjects[i]
		d, ok := declared[s.SubjectName]
		s.Active = ok
		if ok {
			s.SelfRating = d.SelfRating
			delete(declared, s.SubjectName)
		}
	}

	for _, d := range teaching {
		if _, pending := declared[d.SubjectName]; !pending {
			continue
		}
		vec, err := models.LookupSubject(d.SubjectName)
		if err != nil {
			return nil, err
		}
		user.TeachingSubjects = append(user.TeachingSubjects, models.TeachingSubject{
			SubjectName:   d.SubjectName,
			SubjectVector: vec,
			SelfRating:    d.SelfRating,
			Active:        true,
		})
		delete(declared, d.SubjectName)
	}

	user.LearningSubjects = dedupe(learning)

	if err := ps.Users.Save(ctx, *user); err != nil {
		return nil, fmt.Errorf("failed to save profile %s: %w", userID, err)
	}
	return user, nil
}

func dedupe(names []string) []string {
	out := make([]string, 0, len(names))
	seen := make(map[string]struct{}, len(names))
	for _, n := range names {
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}
