package models

// MatchCandidate is a ranked user for one match request. Never persisted.
type MatchCandidate struct {
	User       UserProfile
	TotalScore float64
}

// MatchedUser is the wire projection of a MatchCandidate.
type MatchedUser struct {
	ID                string            `json:"_id"`
	Username          string            `json:"username"`
	ProfilePic        string            `json:"profilePic"`
	Languages         []string          `json:"languages"`
	TeachingSubjects  []TeachingSubject `json:"teachingSubjects"`
	LearningSubjects  []string          `json:"learningSubjects"`
	PersonalityRating PersonalityRating `json:"personalityRating"`
	TotalScore        float64           `json:"totalScore"`
}

// ToMatchedUser projects the candidate for the match response.
func (c MatchCandidate) ToMatchedUser() MatchedUser {
	return MatchedUser{
		ID:                c.User.ID,
		Username:          c.User.Username,
		ProfilePic:        c.User.ProfilePicURL,
		Languages:         c.User.Languages,
		TeachingSubjects:  c.User.TeachingSubjects,
		LearningSubjects:  c.User.LearningSubjects,
		PersonalityRating: c.User.PersonalityRating,
		TotalScore:        c.TotalScore,
	}
}

// KnownSubject is one entry of the requester's mySubjects list. Clients send
// either the name or the catalog vector.
type KnownSubject struct {
	SubjectName   string        `json:"subjectName,omitempty"`
	SubjectVector SubjectVector `json:"subjectVector,omitempty"`
}

// MaxSearchResults caps a person search.
const MaxSearchResults = 100

// SearchResult is one hit of a person search.
type SearchResult struct {
	ID            string `json:"_id"`
	Username      string `json:"username"`
	ProfilePicURL string `json:"profilePicUrl"`
}
