package services

import (
	"context"
	"fmt"
	"math"
	"sort"

	"go.uber.org/zap"

	"subjectswap_server/logger"
	"subjectswap_server/metrics"
	"subjectswap_server/models"
)

// Scoring constants for teaching subjects.
const (
	establishedRatingCount = 100
	establishedPoorSum     = 4
	establishedGoodSum     = 7
	establishedPoorPenalty = -4
	establishedGoodBonus   = 3
	selfRatingGap          = 5
	selfRatingGapPenalty   = -4
	reciprocityWeight      = 3
)

// MatchService ranks tutors for a wanted subject.
type MatchService struct {
	Users  UserDirectory
	Logger *logger.Logger
}

// NewMatchService creates a match service reading from users.
func NewMatchService(users UserDirectory, log *logger.Logger) *MatchService {
	return &MatchService{Users: users, Logger: logger.OrGlobal(log)}
}

// Match scores every active user except the requester against wantedSubject
// and returns those with a positive score, best first.
func (ms *MatchService) Match(ctx context.Context, requesterID, wantedSubject string, knownSubjects []string) ([]models.MatchCandidate, error) {
	wantVector, err := models.LookupSubject(wantedSubject)
	if err != nil {
		metrics.MatchRequestsTotal.WithLabelValues("unknown_subject").Inc()
		return nil, err
	}

	users, err := ms.Users.ListActive(ctx)
	if err != nil {
		metrics.MatchRequestsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	known := make(map[string]struct{}, len(knownSubjects))
	for _, name := range knownSubjects {
		known[name] = struct{}{}
	}

	candidates := make([]models.MatchCandidate, 0, len(users))
	for _, user := range users {
		if !user.Active || user.ID == requesterID {
			continue
		}
		total := ScoreCandidate(user, wantVector, known)
		if total > 0 {
			candidates = append(candidates, models.MatchCandidate{User: user, TotalScore: total})
		}
	}

	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].TotalScore > candidates[j].TotalScore
	})

	metrics.MatchRequestsTotal.WithLabelValues("ok").Inc()
	metrics.MatchCandidates.Observe(float64(len(candidates)))
	ms.Logger.Debug("match ranked",
		zap.String("requester", requesterID),
		zap.String("subject", wantedSubject),
		zap.Int("scanned", len(users)),
		zap.Int("candidates", len(candidates)))
	return candidates, nil
}

// ScoreCandidate is the teaching score of user for wantVector plus the
// reciprocity bonus for subjects the user wants to learn from known.
func ScoreCandidate(user models.UserProfile, wantVector models.SubjectVector, known map[string]struct{}) float64 {
	var teaching float64
	for _, subject := range user.TeachingSubjects {
		if contribution, ok := SubjectScore(subject, wantVector); ok {
			teaching += contribution
		}
	}

	overlap := 0
	seen := make(map[string]struct{}, len(user.LearningSubjects))
	for _, name := range user.LearningSubjects {
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		if _, ok := known[name]; ok {
			overlap++
		}
	}

	return teaching + float64(reciprocityWeight*overlap)
}

// SubjectScore is one teaching subject's contribution. It reports false for
// inactive subjects and vectors of the wrong dimension.
func SubjectScore(subject models.TeachingSubject, wantVector models.SubjectVector) (float64, bool) {
	if !subject.Active {
		return 0, false
	}
	dot, ok := subject.SubjectVector.Dot(wantVector)
	if !ok {
		return 0, false
	}

	avg := subject.AverageRating()
	base := dot * (subject.SelfRating/2 + avg)

	// Thresholds compare the raw rating sum, not the average.
	var penalty float64
	if subject.NoOfRatings > establishedRatingCount {
		switch {
		case subject.TotalReceivedRatings < establishedPoorSum:
			penalty = establishedPoorPenalty
		case subject.TotalReceivedRatings > establishedGoodSum:
			penalty = establishedGoodBonus
		}
	}

	var diffPenalty float64
	if subject.NoOfRatings > 0 && math.Abs(subject.SelfRating-avg) > selfRatingGap {
		diffPenalty = selfRatingGapPenalty
	}

	return base + penalty + diffPenalty, true
}

// ResolveKnownSubjects turns mySubjects entries into catalog names. Entries
// given as vectors are mapped back through the catalog; unmatched ones are skipped.
func ResolveKnownSubjects(subjects []models.KnownSubject) []string {
	names := make([]string, 0, len(subjects))
	for _, s := range subjects {
		switch {
		case s.SubjectName != "":
			names = append(names, s.SubjectName)
		case len(s.SubjectVector) > 0:
			if name, ok := models.SubjectNameForVector(s.SubjectVector); ok {
				names = append(names, name)
			}
		}
	}
	return names
}
