package chatstate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omniwire/chat-sync/internal/models"
)

func msg(id, text string, ts int64) models.Message {
	return models.Message{
		ID:        id,
		Text:      text,
		Timestamp: time.UnixMilli(ts).UTC(),
		Direction: models.DirectionIncoming,
	}
}

func ids(msgs []models.Message) []string {
	out := make([]string, len(msgs))
	for i, m := range msgs {
		out[i] = m.ID
	}
	return out
}

func TestMergeTimelineDedup(t *testing.T) {
	t.Parallel()

	history := []models.Message{msg("1", "a", 10), msg("2", "b", 20), msg("3", "c", 30)}
	live := []models.Message{msg("2", "b", 20), msg("4", "d", 40)}

	merged := MergeTimeline(history, live)
	assert.Equal(t, []string{"1", "2", "3", "4"}, ids(merged))
}

func TestMergeTimelineAppendsLiveBlock(t *testing.T) {
	t.Parallel()

	// The live block stays after history even when its timestamp falls
	// between historical entries: append, not re-sort.
	history := []models.Message{msg("h1", "a", 10), msg("h2", "b", 20)}
	live := []models.Message{msg("l1", "c", 15)}

	merged := MergeTimeline(history, live)
	require.Len(t, merged, 3)
	assert.Equal(t, []int64{10, 20, 15}, []int64{
		merged[0].Timestamp.UnixMilli(),
		merged[1].Timestamp.UnixMilli(),
		merged[2].Timestamp.UnixMilli(),
	})
}

func TestMergeTimelineEmptyHistory(t *testing.T) {
	t.Parallel()

	live := []models.Message{msg("l1", "a", 10), msg("l2", "b", 20)}
	merged := MergeTimeline(nil, live)
	assert.Equal(t, []string{"l1", "l2"}, ids(merged))
}

func TestMergeTimelineLiveDuplicates(t *testing.T) {
	t.Parallel()

	t.Run("same id delivered twice", func(t *testing.T) {
		live := []models.Message{msg("l1", "a", 10), msg("l1", "a", 10)}
		merged := MergeTimeline(nil, live)
		assert.Len(t, merged, 1)
	})

	t.Run("duplicate event with fresh synthesized id", func(t *testing.T) {
		// At-least-once delivery: the same logical message arrives twice and
		// gets a different local ID each time. The tuple fallback collapses it.
		live := []models.Message{msg("l1", "a", 10), msg("l2", "a", 10)}
		merged := MergeTimeline(nil, live)
		assert.Len(t, merged, 1)
	})

	t.Run("same text at different times is kept", func(t *testing.T) {
		live := []models.Message{msg("l1", "ok", 10), msg("l2", "ok", 11)}
		merged := MergeTimeline(nil, live)
		assert.Len(t, merged, 2)
	})
}

func TestMergeTimelineDoesNotMutateInputs(t *testing.T) {
	t.Parallel()

	history := []models.Message{msg("1", "a", 10)}
	live := []models.Message{msg("2", "b", 20)}
	_ = MergeTimeline(history, live)

	assert.Equal(t, "1", history[0].ID)
	assert.Equal(t, "2", live[0].ID)
}
