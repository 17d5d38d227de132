package services

import (
	"context"
	"fmt"
	"testing"

	"subjectswap_server/logger"
	"subjectswap_server/models"
)

func teacher(id, name string, ratings ...int) models.UserProfile {
	u := models.UserProfile{ID: id, Username: name, Active: true}
	for i, n := range ratings {
		u.TeachingSubjects = append(u.TeachingSubjects, models.TeachingSubject{
			SubjectName: fmt.Sprintf("s%d", i),
			NoOfRatings: n,
			Active:      true,
		})
	}
	return u
}

func TestSearchPeopleRanking(t *testing.T) {
	quiet := teacher("1", "sam", 1)
	popular := teacher("2", "samira", 40, 2)
	inactiveSubject := teacher("3", "samuel", 5)
	inactiveSubject.TeachingSubjects = append(inactiveSubject.TeachingSubjects, models.TeachingSubject{
		SubjectName: "old", NoOfRatings: 500, Active: false,
	})
	laterWord := teacher("4", "big_sam", 900)
	noMatch := teacher("5", "tom", 1000)
	gone := teacher("6", "samantha", 50)
	gone.Active = false

	svc := NewSearchService(NewMemoryUserDirectory(quiet, popular, inactiveSubject, laterWord, noMatch, gone), logger.NewNop())

	got, err := svc.SearchPeople(context.Background(), "SAM")
	if err != nil {
		t.Fatal(err)
	}

	want := []string{"2", "3", "1", "4"}
	if len(got) != len(want) {
		t.Fatalf("results = %+v, want ids %v", got, want)
	}
	for i, id := range want {
		if got[i].ID != id {
			t.Errorf("result %d = %s, want %s", i, got[i].ID, id)
		}
	}
}

func TestSearchPeopleCapsResults(t *testing.T) {
	var users []models.UserProfile
	for i := 0; i < models.MaxSearchResults+20; i++ {
		users = append(users, teacher(fmt.Sprintf("u%d", i), fmt.Sprintf("alex%03d", i), i))
	}
	svc := NewSearchService(NewMemoryUserDirectory(users...), logger.NewNop())

	got, err := svc.SearchPeople(context.Background(), "alex")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != models.MaxSearchResults {
		t.Fatalf("results = %d, want %d", len(got), models.MaxSearchResults)
	}
	if got[0].Username != "alex119" {
		t.Errorf("top result = %s, want the most rated", got[0].Username)
	}
}

func TestSearchPeopleEmptyQuery(t *testing.T) {
	svc := NewSearchService(NewMemoryUserDirectory(teacher("1", "sam")), logger.NewNop())

	got, err := svc.SearchPeople(context.Background(), "   ")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 {
		t.Errorf("results = %+v, want none", got)
	}
}
