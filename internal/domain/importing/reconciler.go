package importing

import (
	"context"
	"fmt"
	"time"
)

// ExistingLookup reports which of the given values are already stored.
// Implementations are responsible for batching large inputs.
type ExistingLookup interface {
	ExistingEmails(ctx context.Context, emails []string) ([]string, error)
	ExistingPhones(ctx context.Context, phones []string) ([]string, error)
}

// MembershipSet tracks email and phone values known to exist. It belongs to a
// single import and is not safe for concurrent use.
type MembershipSet struct {
	emails map[string]struct{}
	phones map[string]struct{}
}

func NewMembershipSet() *MembershipSet {
	return &MembershipSet{
		emails: map[string]struct{}{},
		phones: map[string]struct{}{},
	}
}

func (s *MembershipSet) AddEmails(values ...string) {
	for _, v := range values {
		if v != "" {
			s.emails[v] = struct{}{}
		}
	}
}

func (s *MembershipSet) AddPhones(values ...string) {
	for _, v := range values {
		if v != "" {
			s.phones[v] = struct{}{}
		}
	}
}

// Contains reports whether a non-empty email or a non-empty phone is known.
func (s *MembershipSet) Contains(email, phone string) bool {
	if email != "" {
		if _, ok := s.emails[email]; ok {
			return true
		}
	}
	if phone != "" {
		if _, ok := s.phones[phone]; ok {
			return true
		}
	}
	return false
}

// Add records the candidate's values so later rows with either value are skipped.
func (s *MembershipSet) Add(c Candidate) {
	s.AddEmails(c.Email)
	s.AddPhones(c.Phone)
}

type Reconciliation struct {
	Accepted []Candidate
	Skipped  int
}

// Reconcile splits candidates into accepted and skipped. A candidate is
// skipped when its email or phone already exists in storage or belongs to an
// earlier accepted candidate; the first occurrence in row order wins.
func Reconcile(ctx context.Context, cands []Candidate, lookup ExistingLookup) (Reconciliation, error) {
	set := NewMembershipSet()

	emails, phones := distinctValues(cands)
	if lookup != nil {
		if len(emails) > 0 {
			found, err := lookup.ExistingEmails(ctx, emails)
			if err != nil {
				return Reconciliation{}, fmt.Errorf("lookup existing emails: %w", err)
			}
			set.AddEmails(found...)
		}
		if len(phones) > 0 {
			found, err := lookup.ExistingPhones(ctx, phones)
			if err != nil {
				return Reconciliation{}, fmt.Errorf("lookup existing phones: %w", err)
			}
			set.AddPhones(found...)
		}
	}

	return ReconcileWith(set, cands), nil
}

// ReconcileWith partitions candidates against a prepared set, updating it as
// candidates are accepted.
func ReconcileWith(set *MembershipSet, cands []Candidate) Reconciliation {
	res := Reconciliation{Accepted: make([]Candidate, 0, len(cands))}
	for _, c := range cands {
		if set.Contains(c.Email, c.Phone) {
			res.Skipped++
			continue
		}
		res.Accepted = append(res.Accepted, c)
		set.Add(c)
	}
	return res
}

func distinctValues(cands []Candidate) (emails, phones []string) {
	seenE := map[string]struct{}{}
	seenP := map[string]struct{}{}
	for _, c := range cands {
		if c.Email != "" {
			if _, ok := seenE[c.Email]; !ok {
				seenE[c.Email] = struct{}{}
				emails = append(emails, c.Email)
			}
		}
		if c.Phone != "" {
			if _, ok := seenP[c.Phone]; !ok {
				seenP[c.Phone] = struct{}{}
				phones = append(phones, c.Phone)
			}
		}
	}
	return emails, phones
}

// Manifest describes the upload being written.
type Manifest struct {
	ID         string
	Filename   string
	ImportedAt time.Time
	ImportedBy string
}

// ReconcileFunc runs reconciliation against the writer's view of storage.
type ReconcileFunc func(ctx context.Context, lookup ExistingLookup) (Reconciliation, error)

type RowError struct {
	Row int
	Err error
}

type Outcome struct {
	Added     int
	Skipped   int
	RowErrors []RowError
}

// Writer persists one import atomically. Reconciliation runs inside the
// writer's transaction so no other import can insert between lookup and write.
type Writer interface {
	Write(ctx context.Context, m Manifest, reconcile ReconcileFunc) (Outcome, error)
}
