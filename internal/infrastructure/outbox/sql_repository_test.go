package outbox_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/rcarvalho-pb/chatterpay_business-go/internal/domain/event"
	"github.com/rcarvalho-pb/chatterpay_business-go/internal/infrastructure/outbox"
)

func setupTestDB(t *testing.T) *sql.DB {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatal(err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	schema := `
	CREATE TABLE outbox_events (
		id TEXT PRIMARY KEY,
		event_type TEXT NOT NULL,
		payload BLOB NOT NULL,
		published INTEGER NOT NULL DEFAULT 0,
		published_at DATETIME,
		created_at DATETIME NOT NULL
	);
	`

	if _, err := db.Exec(schema); err != nil {
		t.Fatal(err)
	}

	return db
}

func TestOutbox_ShouldPersistEvent_BeforePublish(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	repo := outbox.NewSQLiteRepository(db)

	evt := outbox.OutboxEvent{
		ID:        "evt-1",
		Type:      event.OrderSettled,
		Payload:   []byte(`{"order_id":"o-1"}`),
		CreatedAt: time.Now(),
	}

	require.NoError(t, repo.Save(ctx, evt))

	events, err := repo.FindUnpublished(ctx, 10)
	require.NoError(t, err)
	require.Len(t, events, 1)
	require.False(t, events[0].Published)
	require.Equal(t, event.OrderSettled, events[0].Type)
}

func TestRecorder_StoresJSONPayload(t *testing.T) {
	ctx := context.Background()
	repo := outbox.NewSQLiteRepository(setupTestDB(t))
	recorder := &outbox.Recorder{Repo: repo}

	err := recorder.Record(ctx, event.Event{
		Type:    event.OrderCreated,
		Payload: event.OrderCreatedPayload{OrderID: "o-9", CashierID: "c1", Amount: "100"},
	})
	require.NoError(t, err)

	events, err := repo.FindUnpublished(ctx, 10)
	require.NoError(t, err)
	require.Len(t, events, 1)
	require.JSONEq(t, `{"order_id":"o-9","cashier_id":"c1","amount":"100"}`, string(events[0].Payload))
}

func TestOutbox_MarkPublished(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	repo := outbox.NewSQLiteRepository(db)

	require.NoError(t, repo.Save(ctx, outbox.OutboxEvent{
		ID:        "evt-1",
		Type:      event.OrderCreated,
		Payload:   []byte(`{}`),
		CreatedAt: time.Now(),
	}))
	require.NoError(t, repo.MarkPublished(ctx, "evt-1"))

	events, err := repo.FindUnpublished(ctx, 10)
	require.NoError(t, err)
	require.Empty(t, events)

	var publishedAt sql.NullString
	require.NoError(t, db.QueryRow(`SELECT published_at FROM outbox_events WHERE id = ?`, "evt-1").Scan(&publishedAt))
	require.True(t, publishedAt.Valid)

	require.ErrorIs(t, repo.MarkPublished(ctx, "ghost"), outbox.ErrEventNotFound)
}
