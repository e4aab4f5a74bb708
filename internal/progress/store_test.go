package progress

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreUpdate_NormalizesSet(t *testing.T) {
	svc := newTestService(t, nil)
	ctx := context.Background()

	p, err := svc.store.Update(ctx, "u1", func(p *Profile) error {
		p.CompletedLessons = []string{"3", "1", "3", "", "1"}
		p.LessonsCompleted = 99
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "3"}, p.CompletedLessons)
	assert.Equal(t, 2, p.LessonsCompleted)
}

func TestStoreUpdate_ErrorWritesNothing(t *testing.T) {
	svc := newTestService(t, nil)
	ctx := context.Background()

	boom := errors.New("boom")
	_, err := svc.store.Update(ctx, "u1", func(p *Profile) error {
		p.CompletedLessons = append(p.CompletedLessons, "1")
		return boom
	})
	require.ErrorIs(t, err, boom)

	p, err := svc.store.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, p.CompletedLessons)
}
