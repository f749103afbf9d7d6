package events

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// Sequencer hands out a monotonically increasing number per partition key.
type Sequencer interface {
	NextSequence(ctx context.Context, partitionKey string) (int64, error)
}

type SequenceStore interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type SequenceRepository struct {
	store SequenceStore
}

func NewSequenceRepository(store SequenceStore) *SequenceRepository {
	return &SequenceRepository{store: store}
}

// NextSequence atomically increments and returns the next sequence for a partition.
func (r *SequenceRepository) NextSequence(ctx context.Context, partitionKey string) (int64, error) {
	if partitionKey == "" {
		return 0, fmt.Errorf("partition key is required")
	}

	var seq int64
	err := r.store.QueryRow(ctx, `
		INSERT INTO event_sequences (partition_key, last_sequence)
		VALUES ($1, 1)
		ON CONFLICT (partition_key)
		DO UPDATE SET last_sequence = event_sequences.last_sequence + 1, updated_at = now()
		RETURNING last_sequence
	`, partitionKey).Scan(&seq)
	if err != nil {
		return 0, fmt.Errorf("next sequence: %w", err)
	}
	return seq, nil
}
