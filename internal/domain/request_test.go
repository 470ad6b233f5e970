package domain

import "testing"

func TestStatusTransitionsForwardOnly(t *testing.T) {
	cases := []struct {
		from, to RequestStatus
		want     bool
	}{
		{StatusDraft, StatusSent, true},
		{StatusSent, StatusCompleted, true},
		{StatusDraft, StatusCompleted, false},
		{StatusSent, StatusDraft, false},
		{StatusCompleted, StatusSent, false},
		{StatusCompleted, StatusDraft, false},
		{StatusDraft, StatusDraft, false},
		{StatusSent, StatusSent, false},
		{StatusCompleted, StatusCompleted, false},
		{RequestStatus("bogus"), StatusSent, false},
	}
	for _, tc := range cases {
		if got := tc.from.CanTransition(tc.to); got != tc.want {
			t.Errorf("CanTransition(%s -> %s) = %v, want %v", tc.from, tc.to, got, tc.want)
		}
	}
}

func TestStatusValid(t *testing.T) {
	for _, s := range []RequestStatus{StatusDraft, StatusSent, StatusCompleted} {
		if !s.Valid() {
			t.Errorf("%s should be valid", s)
		}
	}
	if RequestStatus("archived").Valid() {
		t.Error("unknown status should be invalid")
	}
}

func TestLocked(t *testing.T) {
	if (SignatureRequest{Status: StatusSent}).Locked() {
		t.Error("sent request should accept signer edits")
	}
	if !(SignatureRequest{Status: StatusDraft}).Locked() {
		t.Error("draft request should be locked")
	}
	if !(SignatureRequest{Status: StatusCompleted}).Locked() {
		t.Error("completed request should be locked")
	}
}
