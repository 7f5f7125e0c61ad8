// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines request, response, and domain types for the API.

# Domain Types

  - Candidate: a row of the candidates table (id, name, party, position, votes, description, created_at)
  - VoteChangeEvent: a row of the append-only vote_changes audit table

# Request Types

  - VoteDeltaRequest: delta
  - CustomVoteRequest: amount (free text), mode ("add" or "subtract")
  - AddCandidateRequest: name, category, description
  - LoginRequest: username, password

# Response Types

  - VoteResponse: candidate, debounced, warning
  - AddCandidateResponse: candidate, warning
  - RemoveCandidateResponse: removed, candidates
  - CandidatesResponse / ResultsResponse: fetched lists and grouped rankings
  - ErrorResponse: error, message

# Constants

Categories, in display order:

	CategoryBOD      = "Board of Director (BOD)"
	CategoryAudit    = "Audit Committee"
	CategoryElection = "Election Committee"

Candidates without a category group under CategoryOther.

Audit change types:

	ChangeIncrement = "increment" // delta == +1
	ChangeDecrement = "decrement" // delta == -1
	ChangeCustom    = "custom"

Vote counts never exceed MaxVotes.
*/
package models
