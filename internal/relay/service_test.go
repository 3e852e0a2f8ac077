package relay_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tuanvumaihuynh/stockbook/internal/config"
	"github.com/tuanvumaihuynh/stockbook/internal/relay"
	"github.com/tuanvumaihuynh/stockbook/internal/repository"
	"github.com/tuanvumaihuynh/stockbook/internal/storage/db"
	"github.com/tuanvumaihuynh/stockbook/internal/storage/mq"
)

type fakeDB struct {
	db.DB
}

func (f fakeDB) WithTx(_ context.Context, txFunc func(db.DB) error) error {
	return txFunc(f)
}

type fakeOutboxMsgRepo struct {
	pending []repository.ListUnprocessedOutboxMsgsResult
	batch   int32
	updated []repository.BulkUpdateOutboxMsgsItem
	purged  time.Time
}

func (r *fakeOutboxMsgRepo) WithDB(db.DB) repository.OutboxMsgRepository { return r }

func (r *fakeOutboxMsgRepo) CreateOutboxMsg(context.Context, repository.CreateOutboxMsgParams) error {
	return nil
}

func (r *fakeOutboxMsgRepo) ListUnprocessedOutboxMsgs(_ context.Context, params repository.ListUnprocessedOutboxMsgsParams) ([]repository.ListUnprocessedOutboxMsgsResult, error) {
	r.batch = params.BatchSize
	return r.pending, nil
}

func (r *fakeOutboxMsgRepo) BulkUpdateOutboxMsgs(_ context.Context, params repository.BulkUpdateOutboxMsgsParams) error {
	r.updated = append(r.updated, params.Items...)
	return nil
}

func (r *fakeOutboxMsgRepo) DeleteProcessedOutboxMsgs(_ context.Context, before time.Time) (int64, error) {
	r.purged = before
	return 3, nil
}

type fakeProducer struct {
	mu       sync.Mutex
	produced []mq.ProduceMsg
	failOn   string
}

func (p *fakeProducer) Produce(_ context.Context, msg mq.ProduceMsg) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if msg.Topic == p.failOn {
		return errors.New("broker down")
	}
	p.produced = append(p.produced, msg)
	return nil
}

func TestRelayBatch(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("Should produce pending messages and record failures", func(t *testing.T) {
		okID, failID := uuid.New(), uuid.New()
		repo := &fakeOutboxMsgRepo{pending: []repository.ListUnprocessedOutboxMsgsResult{
			{ID: okID, Topic: "sale.created", Payload: []byte(`{}`), Headers: map[string]string{"X-Correlation-ID": "c-1"}},
			{ID: failID, Topic: "stock.low", Payload: []byte(`{}`)},
		}}
		producer := &fakeProducer{failOn: "stock.low"}

		svc := relay.NewService(config.Relay{BatchSize: 50}, logger, fakeDB{}, repo, producer)
		n, err := svc.RelayBatch(context.Background())
		require.NoError(t, err)

		assert.Equal(t, 2, n)
		assert.Equal(t, int32(50), repo.batch)
		require.Len(t, producer.produced, 1)
		assert.Equal(t, "c-1", producer.produced[0].Headers["X-Correlation-ID"])

		require.Len(t, repo.updated, 2)
		for _, item := range repo.updated {
			switch item.ID {
			case okID:
				assert.Nil(t, item.Error)
			case failID:
				require.NotNil(t, item.Error)
				assert.Contains(t, *item.Error, "broker down")
			default:
				t.Fatalf("unexpected item %s", item.ID)
			}
		}
	})

	t.Run("Should do nothing without pending messages", func(t *testing.T) {
		repo := &fakeOutboxMsgRepo{}
		svc := relay.NewService(config.Relay{BatchSize: 10}, logger, fakeDB{}, repo, &fakeProducer{})

		n, err := svc.RelayBatch(context.Background())
		require.NoError(t, err)
		assert.Zero(t, n)
		assert.Empty(t, repo.updated)
	})
}

func TestPurge(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	repo := &fakeOutboxMsgRepo{}
	svc := relay.NewService(config.Relay{Retention: 24 * time.Hour}, logger, fakeDB{}, repo, &fakeProducer{})

	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	n, err := svc.Purge(context.Background(), now)

	require.NoError(t, err)
	assert.EqualValues(t, 3, n)
	assert.Equal(t, now.Add(-24*time.Hour), repo.purged)
}
