package models

// TeachingSubject is a subject a user offers to teach, with the rating history it collected.
type TeachingSubject struct {
	SubjectName          string        `dynamodbav:"subjectName" json:"subjectName"`
	SubjectVector        SubjectVector `dynamodbav:"subjectVector" json:"subjectVector"`
	SelfRating           float64       `dynamodbav:"selfRating" json:"selfRating"`
	NoOfRatings          int           `dynamodbav:"noOfRatings" json:"noOfRatings"`
	TotalReceivedRatings float64       `dynamodbav:"totalReceivedRatings" json:"totalReceivedRatings"`
	Active               bool          `dynamodbav:"active" json:"active"`
}

// AverageRating is the received-rating mean, or 0 before the first rating.
func (s TeachingSubject) AverageRating() float64 {
	if s.NoOfRatings <= 0 {
		return 0
	}
	return s.TotalReceivedRatings / float64(s.NoOfRatings)
}

// PersonalityRating accumulates personality ratings. Average holds the running
// sum of received ratings, as the rating workflow has always stored it.
type PersonalityRating struct {
	Average      float64 `dynamodbav:"average" json:"average"`
	TotalRatings int     `dynamodbav:"totalRatings" json:"totalRatings"`
}

// Rating kinds kept on the rater's ledger.
const (
	RatingTypePersonality = "personality"
	RatingTypeSubject     = "subject"
)

// GivenRating is one entry of the rater's ledger.
type GivenRating struct {
	Type        string  `dynamodbav:"type" json:"type"`
	To          string  `dynamodbav:"to" json:"to"`
	SubjectName string  `dynamodbav:"subjectName,omitempty" json:"subjectName,omitempty"`
	Rating      float64 `dynamodbav:"rating" json:"rating"`
}

// UserProfile is the user directory record.
type UserProfile struct {
	ID                string            `dynamodbav:"id" json:"id"` // Partition key
	Username          string            `dynamodbav:"username" json:"username"`
	Email             string            `dynamodbav:"email,omitempty" json:"email,omitempty"`
	ProfilePicURL     string            `dynamodbav:"profilePicUrl,omitempty" json:"profilePic,omitempty"`
	Description       string            `dynamodbav:"description,omitempty" json:"description,omitempty"`
	Languages         []string          `dynamodbav:"languages,omitempty" json:"languages,omitempty"`
	TeachingSubjects  []TeachingSubject `dynamodbav:"teachingSubjects" json:"teachingSubjects"`
	LearningSubjects  []string          `dynamodbav:"learningSubjects" json:"learningSubjects"`
	PersonalityRating PersonalityRating `dynamodbav:"personalityRating" json:"personalityRating"`
	PeopleIRated      []GivenRating     `dynamodbav:"peopleIRated,omitempty" json:"-"`
	Active            bool              `dynamodbav:"active" json:"active"`
}

// TeachingSubject returns a pointer to the user's record for name, or nil.
func (u *UserProfile) TeachingSubject(name string) *TeachingSubject {
	for i := range u.TeachingSubjects {
		if u.TeachingSubjects[i].SubjectName == name {
			return &u.TeachingSubjects[i]
		}
	}
	return nil
}

// Clone returns a deep copy so cached or stored records are never shared.
func (u UserProfile) Clone() UserProfile {
	out := u
	out.Languages = append([]string(nil), u.Languages...)
	out.LearningSubjects = append([]string(nil), u.LearningSubjects...)
	out.PeopleIRated = append([]GivenRating(nil), u.PeopleIRated...)
	out.TeachingSubjects = make([]TeachingSubject, len(u.TeachingSubjects))
	for i, s := range u.TeachingSubjects {
		s.SubjectVector = append(SubjectVector(nil), s.SubjectVector...)
		out.TeachingSubjects[i] = s
	}
	return out
}

// UserSummary is the short profile shown in conversation lists.
type UserSummary struct {
	ConvoID    string `json:"convo_id"`
	Name       string `json:"name"`
	ProfilePic string `json:"profilePic"`
}
