package models

import "time"

// MaxVotes is the largest vote count a candidate can hold (signed 32-bit column).
const MaxVotes int64 = 2147483647

// PositionCandidate is the only position value the candidates table carries.
const PositionCandidate = "candidate"

// Category labels. A candidate with no category groups under CategoryOther.
const (
	CategoryBOD      = "Board of Director (BOD)"
	CategoryAudit    = "Audit Committee"
	CategoryElection = "Election Committee"
	CategoryOther    = "Other"
)

// Categories lists the allowed category labels in display order.
var Categories = []string{CategoryBOD, CategoryAudit, CategoryElection}

// ValidCategory reports whether label is one of the fixed categories.
func ValidCategory(label string) bool {
	for _, c := range Categories {
		if c == label {
			return true
		}
	}
	return false
}

// ChangeType tags an audit entry.
type ChangeType string

const (
	ChangeIncrement ChangeType = "increment"
	ChangeDecrement ChangeType = "decrement"
	ChangeCustom    ChangeType = "custom"
)

// ChangeTypeFor classifies a requested delta
func ChangeTypeFor(delta int64) ChangeType {
	switch delta {
	case 1:
		return ChangeIncrement
	case -1:
		return ChangeDecrement
	default:
		return ChangeCustom
	}
}

// Custom vote entry modes
const (
	ModeAdd      = "add"
	ModeSubtract = "subtract"
)

// Domain types

type Candidate struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Category    *string   `json:"party"`
	Position    string    `json:"position"`
	Votes       int64     `json:"votes"`
	Description *string   `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// CategoryLabel returns the grouping label, CategoryOther when uncategorized.
func (c Candidate) CategoryLabel() string {
	if c.Category == nil || *c.Category == "" {
		return CategoryOther
	}
	return *c.Category
}

type VoteChangeEvent struct {
	ID            int64      `json:"id"`
	CandidateID   int64      `json:"candidate_id"`
	PreviousVotes int64      `json:"previous_votes"`
	NewVotes      int64      `json:"new_votes"`
	ChangeAmount  int64      `json:"change_amount"`
	ChangeType    ChangeType `json:"change_type"`
	CreatedAt     time.Time  `json:"created_at"`
}

// Request types

type VoteDeltaRequest struct {
	Delta int64 `json:"delta"`
}

type CustomVoteRequest struct {
	Amount string `json:"amount"`
	Mode   string `json:"mode"`
}

type AddCandidateRequest struct {
	Name        string `json:"name"`
	Category    string `json:"category"`
	Description string `json:"description"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Response types

type VoteResponse struct {
	Candidate *Candidate `json:"candidate,omitempty"`
	Debounced bool       `json:"debounced"`
	Warning   string     `json:"warning,omitempty"`
}

type AddCandidateResponse struct {
	Candidate Candidate `json:"candidate"`
	Warning   string    `json:"warning,omitempty"`
}

type RemoveCandidateResponse struct {
	Removed    int64       `json:"removed"`
	Candidates []Candidate `json:"candidates"`
	Warning    string      `json:"warning,omitempty"`
}

type CandidatesResponse struct {
	Candidates []Candidate `json:"candidates"`
	FetchedAt  time.Time   `json:"fetched_at"`
}

type LoginResponse struct {
	Authenticated bool `json:"authenticated"`
}

// Results types

type RankedCandidate struct {
	Candidate  Candidate `json:"candidate"`
	Rank       int       `json:"rank"`
	RankLabel  string    `json:"rank_label"`
	Share      string    `json:"share"`
	VotesLabel string    `json:"votes_label"`
}

type ResultGroup struct {
	Category    string            `json:"category"`
	Total       int64             `json:"total"`
	Count       int               `json:"count"`
	Candidates  []RankedCandidate `json:"candidates"`
	Hidden      int               `json:"hidden"`
	HiddenLabel string            `json:"hidden_label,omitempty"`
}

type ResultsResponse struct {
	Groups    []ResultGroup `json:"groups"`
	FetchedAt time.Time     `json:"fetched_at"`
}

// Error response

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
