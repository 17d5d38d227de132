package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"subjectswap_server/logger"
	"subjectswap_server/models"
)

// RatingService applies peer ratings to user records. Each rater holds at
// most one rating per target (and per subject for subject ratings); rating
// again replaces the previous value.
type RatingService struct {
	Users  UserDirectory
	Logger *logger.Logger
}

// NewRatingService creates a rating service over users.
func NewRatingService(users UserDirectory, log *logger.Logger) *RatingService {
	return &RatingService{Users: users, Logger: logger.OrGlobal(log)}
}

// RateSubject records raterID's rating of targetID teaching subjectName.
func (rs *RatingService) RateSubject(ctx context.Context, raterID, targetID, subjectName string, rating float64) error {
	rater, target, err := rs.loadPair(ctx, raterID, targetID)
	if err != nil {
		return err
	}

	subject := target.TeachingSubject(subjectName)
	if subject == nil {
		return fmt.Errorf("%w: %s does not teach %q", models.ErrUnknownSubject, targetID, subjectName)
	}

	if prev := findGiven(rater, models.RatingTypeSubject, targetID, subjectName); prev != nil {
		subject.TotalReceivedRatings += rating - prev.Rating
		prev.Rating = rating
	} else {
		subject.TotalReceivedRatings += rating
		subject.NoOfRatings++
		rater.PeopleIRated = append(rater.PeopleIRated, models.GivenRating{
			Type:        models.RatingTypeSubject,
			To:          targetID,
			SubjectName: subjectName,
			Rating:      rating,
		})
	}

	return rs.savePair(ctx, rater, target)
}

// RatePersonality records raterID's personality rating of targetID.
func (rs *RatingService) RatePersonality(ctx context.Context, raterID, targetID string, rating float64) error {
	rater, target, err := rs.loadPair(ctx, raterID, targetID)
	if err != nil {
		return err
	}

	if prev := findGiven(rater, models.RatingTypePersonality, targetID, ""); prev != nil {
		target.PersonalityRating.Average += rating - prev.Rating
		prev.Rating = rating
	} else {
		target.PersonalityRating.Average += rating
		target.PersonalityRating.TotalRatings++
		rater.PeopleIRated = append(rater.PeopleIRated, models.GivenRating{
			Type:   models.RatingTypePersonality,
			To:     targetID,
			Rating: rating,
		})
	}

	return rs.savePair(ctx, rater, target)
}

// TakeBackSubject withdraws raterID's rating of targetID teaching subjectName.
func (rs *RatingService) TakeBackSubject(ctx context.Context, raterID, targetID, subjectName string) error {
	rater, target, err := rs.loadPair(ctx, raterID, targetID)
	if err != nil {
		return err
	}

	idx := indexGiven(rater, models.RatingTypeSubject, targetID, subjectName)
	if idx < 0 {
		return models.ErrRatingNotFound
	}

	if subject := target.TeachingSubject(subjectName); subject != nil && subject.NoOfRatings > 0 {
		subject.TotalReceivedRatings -= rater.PeopleIRated[idx].Rating
		subject.NoOfRatings--
	}
	rater.PeopleIRated = append(rater.PeopleIRated[:idx], rater.PeopleIRated[idx+1:]...)

	return rs.savePair(ctx, rater, target)
}

// TakeBackPersonality withdraws raterID's personality rating of targetID.
func (rs *RatingService) TakeBackPersonality(ctx context.Context, raterID, targetID string) error {
	rater, target, err := rs.loadPair(ctx, raterID, targetID)
	if err != nil {
		return err
	}

	idx := indexGiven(rater, models.RatingTypePersonality, targetID, "")
	if idx < 0 {
		return models.ErrRatingNotFound
	}

	if target.PersonalityRating.TotalRatings > 0 {
		target.PersonalityRating.Average -= rater.PeopleIRated[idx].Rating
		target.PersonalityRating.TotalRatings--
	}
	rater.PeopleIRated = append(rater.PeopleIRated[:idx], rater.PeopleIRated[idx+1:]...)

	return rs.savePair(ctx, rater, target)
}

func (rs *RatingService) loadPair(ctx context.Context, raterID, targetID string) (*models.UserProfile, *models.UserProfile, error) {
	if raterID == targetID {
		return nil, nil, models.ErrSelfRating
	}
	rater, err := rs.Users.FindActiveByID(ctx, raterID)
	if err != nil {
		return nil, nil, fmt.Errorf("rater %s: %w", raterID, err)
	}
	target, err := rs.Users.FindActiveByID(ctx, targetID)
	if err != nil {
		return nil, nil, fmt.Errorf("target %s: %w", targetID, err)
	}
	return rater, target, nil
}

func (rs *RatingService) savePair(ctx context.Context, rater, target *models.UserProfile) error {
	if err := rs.Users.Save(ctx, *target); err != nil {
		return fmt.Errorf("failed to save rated user %s: %w", target.ID, err)
	}
	if err := rs.Users.Save(ctx, *rater); err != nil {
		return fmt.Errorf("failed to save rater %s: %w", rater.ID, err)
	}
	rs.Logger.Debug("rating saved", zap.String("rater", rater.ID), zap.String("target", target.ID))
	return nil
}

func indexGiven(rater *models.UserProfile, kind, to, subjectName string) int {
	for i, g := range rater.PeopleIRated {
		if g.Type == kind && g.To == to && g.SubjectName == subjectName {
			return i
		}
	}
	return -1
}

func findGiven(rater *models.UserProfile, kind, to, subjectName string) *models.GivenRating {
	if i := indexGiven(rater, kind, to, subjectName); i >= 0 {
		return &rater.PeopleIRated[i]
	}
	return nil
}
