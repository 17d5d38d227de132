package services

import (
	"context"
	"errors"
	"testing"

	"subjectswap_server/logger"
	"subjectswap_server/models"
)

func newRatingFixture() (*RatingService, *MemoryUserDirectory) {
	tutor := physicsTutor("tutor", 7, 0, 0)
	rater := models.UserProfile{ID: "rater", Active: true}
	dir := NewMemoryUserDirectory(tutor, rater)
	return NewRatingService(dir, logger.NewNop()), dir
}

func loadUser(t *testing.T, dir UserDirectory, id string) *models.UserProfile {
	t.Helper()
	u, err := dir.FindActiveByID(context.Background(), id)
	if err != nil {
		t.Fatal(err)
	}
	return u
}

func TestRateSubjectAndReplace(t *testing.T) {
	svc, dir := newRatingFixture()
	ctx := context.Background()

	if err := svc.RateSubject(ctx, "rater", "tutor", "Physics", 6); err != nil {
		t.Fatal(err)
	}
	physics := loadUser(t, dir, "tutor").TeachingSubject("Physics")
	if physics.NoOfRatings != 1 || physics.TotalReceivedRatings != 6 {
		t.Fatalf("after first rating: %+v", physics)
	}

	if err := svc.RateSubject(ctx, "rater", "tutor", "Physics", 9); err != nil {
		t.Fatal(err)
	}
	physics = loadUser(t, dir, "tutor").TeachingSubject("Physics")
	if physics.NoOfRatings != 1 || physics.TotalReceivedRatings != 9 {
		t.Errorf("after replacement: %+v", physics)
	}

	rater := loadUser(t, dir, "rater")
	if len(rater.PeopleIRated) != 1 || rater.PeopleIRated[0].Rating != 9 {
		t.Errorf("ledger = %+v", rater.PeopleIRated)
	}
}

func TestTakeBackSubject(t *testing.T) {
	svc, dir := newRatingFixture()
	ctx := context.Background()

	if err := svc.RateSubject(ctx, "rater", "tutor", "Physics", 8); err != nil {
		t.Fatal(err)
	}
	if err := svc.TakeBackSubject(ctx, "rater", "tutor", "Physics"); err != nil {
		t.Fatal(err)
	}

	physics := loadUser(t, dir, "tutor").TeachingSubject("Physics")
	if physics.NoOfRatings != 0 || physics.TotalReceivedRatings != 0 {
		t.Errorf("after take back: %+v", physics)
	}
	if err := svc.TakeBackSubject(ctx, "rater", "tutor", "Physics"); !errors.Is(err, models.ErrRatingNotFound) {
		t.Errorf("second take back err = %v, want ErrRatingNotFound", err)
	}
}

func TestRatePersonality(t *testing.T) {
	svc, dir := newRatingFixture()
	ctx := context.Background()

	if err := svc.RatePersonality(ctx, "rater", "tutor", 4); err != nil {
		t.Fatal(err)
	}
	if err := svc.RatePersonality(ctx, "rater", "tutor", 5); err != nil {
		t.Fatal(err)
	}
	pr := loadUser(t, dir, "tutor").PersonalityRating
	if pr.TotalRatings != 1 || pr.Average != 5 {
		t.Errorf("personality = %+v", pr)
	}

	if err := svc.TakeBackPersonality(ctx, "rater", "tutor"); err != nil {
		t.Fatal(err)
	}
	pr = loadUser(t, dir, "tutor").PersonalityRating
	if pr.TotalRatings != 0 || pr.Average != 0 {
		t.Errorf("after take back: %+v", pr)
	}
}

func TestRatingErrors(t *testing.T) {
	svc, _ := newRatingFixture()
	ctx := context.Background()

	if err := svc.RateSubject(ctx, "tutor", "tutor", "Physics", 5); !errors.Is(err, models.ErrSelfRating) {
		t.Errorf("self rating err = %v", err)
	}
	if err := svc.RateSubject(ctx, "rater", "tutor", "Hindi", 5); !errors.Is(err, models.ErrUnknownSubject) {
		t.Errorf("untaught subject err = %v", err)
	}
	if err := svc.RatePersonality(ctx, "rater", "ghost", 5); !errors.Is(err, models.ErrUserNotFound) {
		t.Errorf("missing target err = %v", err)
	}
}
