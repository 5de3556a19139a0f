package domain

import "time"

// IdentityKind discriminates the two account variants
type IdentityKind string

const (
	KindUser  IdentityKind = "user"
	KindTutor IdentityKind = "tutor"
)

// AuthProvider records how a user account was created
type AuthProvider string

const (
	ProviderLocal  AuthProvider = "local"
	ProviderGoogle AuthProvider = "google"
	ProviderGitHub AuthProvider = "github"
)

// User is a learner account. Only users carry AI usage quota.
type User struct {
	ID                string       `json:"id"`
	Username          string       `json:"username"`
	Email             string       `json:"email"`
	PasswordHash      string       `json:"-"`
	Provider          AuthProvider `json:"provider"`
	GoogleID          *string      `json:"-"`
	GitHubID          *string      `json:"-"`
	ProfilePictureURL *string      `json:"profilePictureUrl,omitempty"`
	ProfilePictureKey *string      `json:"-"`
	AIUsageCount      int          `json:"aiUsageCount"`
	Quota             QuotaState   `json:"quota"`
	CreatedAt         time.Time    `json:"createdAt"`
	UpdatedAt         time.Time    `json:"updatedAt"`
}

// NewUser creates a user on the free plan with a full quota window
// starting at now.
func NewUser(username, email string, provider AuthProvider, now time.Time) *User {
	return &User{
		Username:  username,
		Email:     email,
		Provider:  provider,
		Quota:     NewQuotaState(PlanFree, now),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Tutor is a teaching account
type Tutor struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	Subject         string    `json:"subject"`
	Expertise       []string  `json:"expertise"`
	YearsExperience int       `json:"yearsExperience"`
	Rating          float64   `json:"rating"`
	Description     string    `json:"description"`
	ImageURL        string    `json:"imageUrl,omitempty"`
	Email           string    `json:"email"`
	PasswordHash    string    `json:"-"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// Identity is an authenticated account: exactly one of User or Tutor is
// set, according to Kind.
type Identity struct {
	Kind  IdentityKind
	User  *User
	Tutor *Tutor
}

// UserIdentity wraps a user
func UserIdentity(u *User) *Identity {
	return &Identity{Kind: KindUser, User: u}
}

// TutorIdentity wraps a tutor
func TutorIdentity(t *Tutor) *Identity {
	return &Identity{Kind: KindTutor, Tutor: t}
}

// ID returns the account id
func (i *Identity) ID() string {
	switch i.Kind {
	case KindUser:
		return i.User.ID
	case KindTutor:
		return i.Tutor.ID
	}
	return ""
}

// Email returns the account email
func (i *Identity) Email() string {
	switch i.Kind {
	case KindUser:
		return i.User.Email
	case KindTutor:
		return i.Tutor.Email
	}
	return ""
}

// StripCredentials removes the password hash before the identity leaves
// the authentication layer.
func (i *Identity) StripCredentials() *Identity {
	switch i.Kind {
	case KindUser:
		u := *i.User
		u.PasswordHash = ""
		return UserIdentity(&u)
	case KindTutor:
		t := *i.Tutor
		t.PasswordHash = ""
		return TutorIdentity(&t)
	}
	return i
}
