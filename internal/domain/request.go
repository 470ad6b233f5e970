package domain

import "time"

type RequestStatus string

const (
	StatusDraft     RequestStatus = "draft"
	StatusSent      RequestStatus = "sent"
	StatusCompleted RequestStatus = "completed"
)

func (s RequestStatus) Valid() bool {
	switch s {
	case StatusDraft, StatusSent, StatusCompleted:
		return true
	}
	return false
}

// rank orders statuses along the draft -> sent -> completed lifecycle.
func (s RequestStatus) rank() int {
	switch s {
	case StatusDraft:
		return 0
	case StatusSent:
		return 1
	case StatusCompleted:
		return 2
	}
	return -1
}

// CanTransition reports whether a request may move from s to next.
// Status only ever advances forward, one step at a time.
func (s RequestStatus) CanTransition(next RequestStatus) bool {
	return s.rank() >= 0 && next.rank() == s.rank()+1
}

// SignatureRequest is one document awaiting signatures. SourcePDFRef and
// SignedPDFRef are opaque object-store references; SignedPDFRef points at the
// most recently composed artifact and is empty until the first field is filled.
type SignatureRequest struct {
	ID           string
	Title        string
	SourcePDFRef string
	SignedPDFRef string
	Status       RequestStatus
	PublicToken  string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Locked reports whether signer-side field mutation is rejected.
func (r SignatureRequest) Locked() bool {
	return r.Status != StatusSent
}
