// Package sqlitespool provides a durable local spool transport. Batches are
// written to a single SQLite file so messages survive restarts and network
// outages, and a relay drains them into a real broker transport later.
// Delivery through Drain is at least once: a crash between forwarding a
// batch and deleting it replays that batch on the next drain.
package sqlitespool

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/JailtonJunior94/pubsub-go/pkg/pubsub"

	"github.com/XSAM/otelsql"
	_ "github.com/mattn/go-sqlite3"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

const (
	createSpoolSchema = `
		CREATE TABLE IF NOT EXISTS pubsub_spool (
			id           INTEGER PRIMARY KEY AUTOINCREMENT,
			topic        TEXT NOT NULL,
			ordering_key TEXT NOT NULL DEFAULT '',
			payload      BLOB NOT NULL,
			attributes   TEXT,
			created_at   TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_pubsub_spool_topic ON pubsub_spool (topic, id);`

	insertSpoolQuery = `
		INSERT INTO pubsub_spool (topic, ordering_key, payload, attributes)
		VALUES (?, ?, ?, ?)`

	selectSpoolQuery = `
		SELECT id, ordering_key, payload, attributes
		FROM pubsub_spool
		WHERE topic = ?
		ORDER BY id
		LIMIT ?`

	countSpoolQuery = `SELECT COUNT(*) FROM pubsub_spool`
)

// Transport spools batches into a local SQLite file.
type Transport struct {
	cfg    *config
	db     *sql.DB
	path   string
	closed atomic.Bool
}

// New opens or creates the spool file at path and prepares its schema. The
// file is opened in WAL mode with a busy timeout, following the usual SQLite
// concurrency setup.
func New(ctx context.Context, path string, opts ...Option) (*Transport, error) {
	if path == "" {
		return nil, ErrEmptyPath
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	driverName, err := otelsql.Register("sqlite3", otelsql.WithAttributes(semconv.DBSystemSqlite))
	if err != nil {
		return nil, fmt.Errorf("failed to register otelsql driver: %w", err)
	}

	dsn := fmt.Sprintf("file:%s?cache=shared&mode=rwc&_journal_mode=WAL&_busy_timeout=%d",
		path, cfg.busyTimeout.Milliseconds())

	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open spool database: %w", err)
	}

	// One writer keeps the spool file free of lock errors.
	db.SetMaxOpenConns(1)

	setupCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := db.PingContext(setupCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to open spool file: %w", err)
	}

	if _, err := db.ExecContext(setupCtx, createSpoolSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create spool schema: %w", err)
	}

	return &Transport{cfg: cfg, db: db, path: path}, nil
}

// PublishBatch inserts every message into the spool inside one transaction
// and returns the rowids in message order.
func (t *Transport) PublishBatch(ctx context.Context, topic string, messages []*pubsub.Message) ([]string, error) {
	if t.closed.Load() {
		return nil, ErrTransportClosed
	}
	if len(messages) == 0 {
		return nil, nil
	}

	tx, err := t.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	ids := make([]string, 0, len(messages))
	for _, msg := range messages {
		payload := msg.Data
		if payload == nil {
			payload = []byte{}
		}

		attrs, err := encodeAttributes(msg.Attributes)
		if err != nil {
			return nil, fmt.Errorf("failed to encode attributes: %w", err)
		}

		res, err := tx.ExecContext(ctx, insertSpoolQuery, topic, msg.OrderingKey, payload, attrs)
		if err != nil {
			return nil, fmt.Errorf("failed to insert spool row: %w", err)
		}

		id, err := res.LastInsertId()
		if err != nil {
			return nil, fmt.Errorf("failed to read spool rowid: %w", err)
		}
		ids = append(ids, strconv.FormatInt(id, 10))
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	t.cfg.logger.Debug(ctx, "batch spooled",
		pubsub.String("topic", topic),
		pubsub.Int("messages", len(messages)),
		pubsub.String("first_id", ids[0]),
	)

	return ids, nil
}

// Pending returns how many messages are waiting in the spool across all
// topics.
func (t *Transport) Pending(ctx context.Context) (int64, error) {
	if t.closed.Load() {
		return 0, ErrTransportClosed
	}

	var count int64
	if err := t.db.QueryRowContext(ctx, countSpoolQuery).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count spooled rows: %w", err)
	}
	return count, nil
}

// Drain forwards spooled messages for a topic in insertion order, batchSize
// rows at a time, deleting each batch only after forward returns nil. It
// stops at the first forward error and reports how many messages were
// drained. A batchSize of zero or less uses a default.
func (t *Transport) Drain(ctx context.Context, topic string, batchSize int, forward func(context.Context, []*pubsub.Message) error) (int, error) {
	if t.closed.Load() {
		return 0, ErrTransportClosed
	}
	if forward == nil {
		return 0, ErrNilDrainFunc
	}
	if batchSize <= 0 {
		batchSize = defaultDrainBatch
	}

	drained := 0
	for {
		messages, rowIDs, err := t.nextBatch(ctx, topic, batchSize)
		if err != nil {
			return drained, err
		}
		if len(messages) == 0 {
			return drained, nil
		}

		if err := forward(ctx, messages); err != nil {
			return drained, fmt.Errorf("failed to forward spooled batch: %w", err)
		}

		if err := t.deleteRows(ctx, rowIDs); err != nil {
			return drained, err
		}
		drained += len(messages)

		t.cfg.logger.Debug(ctx, "spooled batch drained",
			pubsub.String("topic", topic),
			pubsub.Int("messages", len(messages)),
		)
	}
}

// Close releases the spool file. It is idempotent.
func (t *Transport) Close() error {
	if !t.closed.CompareAndSwap(false, true) {
		return nil
	}
	return t.db.Close()
}

func (t *Transport) nextBatch(ctx context.Context, topic string, limit int) ([]*pubsub.Message, []int64, error) {
	rows, err := t.db.QueryContext(ctx, selectSpoolQuery, topic, limit)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to query spooled rows: %w", err)
	}
	defer rows.Close()

	var (
		messages []*pubsub.Message
		rowIDs   []int64
	)
	for rows.Next() {
		var (
			id      int64
			key     string
			payload []byte
			rawAttr sql.NullString
		)
		if err := rows.Scan(&id, &key, &payload, &rawAttr); err != nil {
			return nil, nil, fmt.Errorf("failed to scan spool row: %w", err)
		}

		attrs, err := decodeAttributes(rawAttr)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to decode attributes: %w", err)
		}

		messages = append(messages, &pubsub.Message{Data: payload, OrderingKey: key, Attributes: attrs})
		rowIDs = append(rowIDs, id)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("failed to read spooled rows: %w", err)
	}

	return messages, rowIDs, nil
}

func (t *Transport) deleteRows(ctx context.Context, rowIDs []int64) error {
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(rowIDs)), ",")
	args := make([]any, len(rowIDs))
	for i, id := range rowIDs {
		args[i] = id
	}

	query := fmt.Sprintf("DELETE FROM pubsub_spool WHERE id IN (%s)", placeholders)
	if _, err := t.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to delete drained rows: %w", err)
	}
	return nil
}

func encodeAttributes(attrs map[string]string) (any, error) {
	if len(attrs) == 0 {
		return nil, nil
	}
	raw, err := json.Marshal(attrs)
	if err != nil {
		return nil, err
	}
	return string(raw), nil
}

func decodeAttributes(raw sql.NullString) (map[string]string, error) {
	if !raw.Valid {
		return nil, nil
	}
	var attrs map[string]string
	if err := json.Unmarshal([]byte(raw.String), &attrs); err != nil {
		return nil, err
	}
	return attrs, nil
}
