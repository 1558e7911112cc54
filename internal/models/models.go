package models

import "time"

// Role is the account kind a user registered as.
type Role string

const (
	RoleSeeker   Role = "seeker"
	RoleProvider Role = "provider"
)

// Valid reports whether r is one of the two known roles.
func (r Role) Valid() bool {
	return r == RoleSeeker || r == RoleProvider
}

// Session is the portal-side view of a signed-in user. A role without a
// token is meaningless and must be treated as logged out.
type Session struct {
	Token string `json:"token"`
	Role  Role   `json:"role"`
}

// LoggedIn reports whether the session carries a bearer token.
func (s Session) LoggedIn() bool {
	return s.Token != ""
}

// Opportunity status values as the backend reports them.
const (
	StatusOpen   = "open"
	StatusClosed = "closed"
)

// OpportunityTypes lists the selectable categories, in display order.
var OpportunityTypes = []string{"job", "internship", "hackathon", "project", "collaboration", "other"}

type Opportunity struct {
	ID          int64     `json:"id"`
	ProviderID  int64     `json:"provider_id,omitempty"`
	Title       string    `json:"title"`
	Type        string    `json:"type"`
	Description string    `json:"description"`
	Location    string    `json:"location"`
	Tags        []string  `json:"tags"`
	PostedBy    string    `json:"posted_by,omitempty"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}

type Application struct {
	ID            int64        `json:"id"`
	SeekerID      int64        `json:"seeker_id,omitempty"`
	OpportunityID int64        `json:"opportunity_id"`
	Status        string       `json:"status"`
	CoverLetter   string       `json:"cover_letter,omitempty"`
	SubmittedAt   time.Time    `json:"submitted_at"`
	Opportunity   *Opportunity `json:"opportunity,omitempty"`
}

type User struct {
	ID       int64  `json:"id"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	Role     Role   `json:"role"`
}

type Profile struct {
	UserID         int64    `json:"user_id,omitempty"`
	Bio            string   `json:"bio,omitempty"`
	Skills         []string `json:"skills,omitempty"`
	Interests      []string `json:"interests,omitempty"`
	CompanyName    string   `json:"company_name,omitempty"`
	CompanyWebsite string   `json:"company_website,omitempty"`
	Country        string   `json:"country,omitempty"`
	City           string   `json:"city,omitempty"`
}

// VerificationResult is the mocked trust assessment the backend returns
// for a provider verification request.
type VerificationResult struct {
	TrustScore float64 `json:"trust_score"`
	Reason     string  `json:"reason"`
}
