package services

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"subjectswap_server/logger"
	"subjectswap_server/models"
)

// SearchService looks people up by username.
type SearchService struct {
	Users  UserDirectory
	Logger *logger.Logger
}

// NewSearchService creates a search service over users.
func NewSearchService(users UserDirectory, log *logger.Logger) *SearchService {
	return &SearchService{Users: users, Logger: logger.OrGlobal(log)}
}

type searchHit struct {
	user    models.UserProfile
	rank    int
	ratings int
}

// SearchPeople autocompletes query against active usernames. Usernames that
// start with the query rank above those where only a later word does; ties go
// to the user with more ratings on active teaching subjects. At most
// MaxSearchResults are returned.
func (s *SearchService) SearchPeople(ctx context.Context, query string) ([]models.SearchResult, error) {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return []models.SearchResult{}, nil
	}

	users, err := s.Users.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load users: %w", err)
	}

	hits := make([]searchHit, 0)
	for _, u := range users {
		rank, ok := usernameRank(u.Username, query)
		if !ok {
			continue
		}
		hits = append(hits, searchHit{user: u, rank: rank, ratings: TeachingRatingCount(u)})
	}

	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].rank != hits[j].rank {
			return hits[i].rank < hits[j].rank
		}
		if hits[i].ratings != hits[j].ratings {
			return hits[i].ratings > hits[j].ratings
		}
		return hits[i].user.Username < hits[j].user.Username
	})
	if len(hits) > models.MaxSearchResults {
		hits = hits[:models.MaxSearchResults]
	}

	results := make([]models.SearchResult, 0, len(hits))
	for _, h := range hits {
		results = append(results, models.SearchResult{
			ID:            h.user.ID,
			Username:      h.user.Username,
			ProfilePicURL: h.user.ProfilePicURL,
		})
	}

	s.Logger.Debug("person search", zap.String("query", query), zap.Int("results", len(results)))
	return results, nil
}

// TeachingRatingCount sums noOfRatings over the user's active teaching subjects.
func TeachingRatingCount(u models.UserProfile) int {
	total := 0
	for _, subj := range u.TeachingSubjects {
		if subj.Active {
			total += subj.NoOfRatings
		}
	}
	return total
}

// usernameRank is 0 when username starts with query, 1 when a later word does.
func usernameRank(username, query string) (int, bool) {
	name := strings.ToLower(username)
	if strings.HasPrefix(name, query) {
		return 0, true
	}
	words := strings.FieldsFunc(name, func(r rune) bool {
		return r == ' ' || r == '_' || r == '-' || r == '.'
	})
	for _, w := range words {
		if strings.HasPrefix(w, query) {
			return 1, true
		}
	}
	return 0, false
}
