package domain

import "time"

// FieldSignatureImage is the captured artifact for one field: a transparent
// PNG plus signer provenance. It is created or overwritten on every (re)fill
// while the owning request is sent, and becomes read-only on completion.
type FieldSignatureImage struct {
	FieldID     string
	RequestID   string
	PNG         []byte
	SignerName  string
	SignerEmail string
	SignerIP    string
	CapturedAt  time.Time
}
