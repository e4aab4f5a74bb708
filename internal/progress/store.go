package progress

import (
	"context"
	"fmt"
	"slices"

	"github.com/abhisek/nibble/internal/lessons"
	"github.com/abhisek/nibble/internal/store"
)

// Store is the single place learner profiles are read and changed.
type Store struct {
	repo store.ProgressRepo
}

// NewStore wraps a ProgressRepo.
func NewStore(repo store.ProgressRepo) *Store {
	return &Store{repo: repo}
}

// Get returns the profile for userID. A user with no record gets an empty
// profile, which is not persisted.
func (s *Store) Get(ctx context.Context, userID string) (*Profile, error) {
	if userID == "" {
		return nil, ErrMissingUser
	}
	rec, err := s.repo.GetProfile(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load profile %s: %w", userID, err)
	}
	if rec == nil {
		return normalize(&Profile{UserID: userID}), nil
	}
	return fromRecord(rec), nil
}

// Update loads the profile, applies fn and persists the result in one
// transaction. The completed set and counters are normalized after fn runs.
func (s *Store) Update(ctx context.Context, userID string, fn func(*Profile) error) (*Profile, error) {
	if userID == "" {
		return nil, ErrMissingUser
	}
	rec, err := s.repo.UpdateProfile(ctx, userID, func(r *store.ProfileRecord) error {
		p := fromRecord(r)
		if err := fn(p); err != nil {
			return err
		}
		normalize(p)
		r.Name = p.Name
		r.CompletedLessons = p.CompletedLessons
		r.TotalLessons = p.TotalLessons
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("update profile %s: %w", userID, err)
	}
	return fromRecord(rec), nil
}

func fromRecord(r *store.ProfileRecord) *Profile {
	return normalize(&Profile{
		UserID:           r.UserID,
		Name:             r.Name,
		CompletedLessons: slices.Clone(r.CompletedLessons),
		TotalLessons:     r.TotalLessons,
		CreatedAt:        r.CreatedAt,
		LastUpdated:      r.UpdatedAt,
	})
}

// normalize enforces set semantics on CompletedLessons and keeps the
// counters in step with it.
func normalize(p *Profile) *Profile {
	set := make([]string, 0, len(p.CompletedLessons))
	for _, id := range p.CompletedLessons {
		if id != "" {
			set = append(set, id)
		}
	}
	slices.Sort(set)
	p.CompletedLessons = slices.Compact(set)
	p.LessonsCompleted = len(p.CompletedLessons)
	if p.TotalLessons <= 0 {
		p.TotalLessons = len(lessons.Catalog())
	}
	return p
}
