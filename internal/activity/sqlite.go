package activity

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/nao1215/activities/pkg/event"
	"github.com/nao1215/activities/pkg/migration"
	_ "modernc.org/sqlite"
)

// SQLiteStore は名簿と監査イベントをSQLiteに保存するStore。
type SQLiteStore struct {
	// db はSQLiteデータベース接続。
	db *sql.DB
}

var (
	_ Store         = (*SQLiteStore)(nil)
	_ EventRecorder = (*SQLiteStore)(nil)
	_ EventLister   = (*SQLiteStore)(nil)
)

// OpenSQLite はSQLiteデータベースを開き、マイグレーションを適用する。
// activitiesテーブルが空の場合のみseedで初期化するため、再起動後も名簿が保たれる。
func OpenSQLite(ctx context.Context, path string, seed Catalog) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("データベース接続に失敗: %w", err)
	}
	// :memory: は接続ごとに別DBになるため、接続は1本に固定する
	db.SetMaxOpenConns(1)

	pragmas := []string{"PRAGMA foreign_keys = ON", "PRAGMA busy_timeout = 5000"}
	if path != ":memory:" {
		pragmas = append(pragmas, "PRAGMA journal_mode = WAL")
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			db.Close()
			return nil, fmt.Errorf("PRAGMAの設定に失敗 (%s): %w", p, err)
		}
	}

	if _, err := migration.Run(ctx, db, migrationsFS, "migrations"); err != nil {
		db.Close()
		return nil, fmt.Errorf("マイグレーションに失敗: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.seed(ctx, seed); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close はデータベース接続を閉じる。
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// seed はactivitiesテーブルが空の場合に初期カタログを書き込む。
func (s *SQLiteStore) seed(ctx context.Context, catalog Catalog) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("トランザクション開始に失敗: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	var count int
	if err := tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM activities").Scan(&count); err != nil {
		return fmt.Errorf("課外活動件数の取得に失敗: %w", err)
	}
	if count > 0 {
		return nil
	}

	for name, a := range catalog {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO activities (name, description, schedule, max_participants) VALUES (?, ?, ?, ?)",
			name, a.Description, a.Schedule, a.MaxParticipants,
		); err != nil {
			return fmt.Errorf("課外活動 %q の登録に失敗: %w", name, err)
		}
		if err := insertParticipants(ctx, tx, name, a.Participants); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// Load は保存されているカタログを返す。
func (s *SQLiteStore) Load(ctx context.Context) (Catalog, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT name, description, schedule, max_participants FROM activities")
	if err != nil {
		return nil, fmt.Errorf("課外活動の取得に失敗: %w", err)
	}
	defer func() { _ = rows.Close() }()

	catalog := make(Catalog)
	for rows.Next() {
		var name string
		a := &Activity{Participants: []string{}}
		if err := rows.Scan(&name, &a.Description, &a.Schedule, &a.MaxParticipants); err != nil {
			return nil, fmt.Errorf("課外活動の読み取りに失敗: %w", err)
		}
		catalog[name] = a
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("課外活動の読み取りに失敗: %w", err)
	}

	prows, err := s.db.QueryContext(ctx, "SELECT activity_name, email FROM participants ORDER BY activity_name, position")
	if err != nil {
		return nil, fmt.Errorf("参加者の取得に失敗: %w", err)
	}
	defer func() { _ = prows.Close() }()

	for prows.Next() {
		var name, email string
		if err := prows.Scan(&name, &email); err != nil {
			return nil, fmt.Errorf("参加者の読み取りに失敗: %w", err)
		}
		if a, ok := catalog[name]; ok {
			a.Participants = append(a.Participants, email)
		}
	}
	if err := prows.Err(); err != nil {
		return nil, fmt.Errorf("参加者の読み取りに失敗: %w", err)
	}
	return catalog, nil
}

// SaveParticipants は課外活動の名簿を置き換える。
func (s *SQLiteStore) SaveParticipants(ctx context.Context, name string, participants []string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("トランザクション開始に失敗: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, "DELETE FROM participants WHERE activity_name = ?", name); err != nil {
		return fmt.Errorf("名簿の削除に失敗: %w", err)
	}
	if err := insertParticipants(ctx, tx, name, participants); err != nil {
		return err
	}
	return tx.Commit()
}

func insertParticipants(ctx context.Context, tx *sql.Tx, name string, participants []string) error {
	for i, email := range participants {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO participants (activity_name, email, position) VALUES (?, ?, ?)",
			name, email, i,
		); err != nil {
			return fmt.Errorf("参加者 %q の登録に失敗: %w", email, err)
		}
	}
	return nil
}

// Append は監査イベントを追記する。
func (s *SQLiteStore) Append(ctx context.Context, e *event.Event) error {
	if _, err := s.db.ExecContext(ctx,
		"INSERT INTO events (id, aggregate_id, aggregate_type, event_type, data, created_at) VALUES (?, ?, ?, ?, ?, ?)",
		e.ID, e.AggregateID, string(e.AggregateType), string(e.EventType), string(e.Data), e.CreatedAt.UTC().Format(time.RFC3339Nano),
	); err != nil {
		return fmt.Errorf("イベントの保存に失敗: %w", err)
	}
	return nil
}

// ListEvents は指定されたAggregateIDのイベントを追記順に返す。
func (s *SQLiteStore) ListEvents(ctx context.Context, aggregateID string) ([]*event.Event, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, aggregate_id, aggregate_type, event_type, data, created_at FROM events WHERE aggregate_id = ? ORDER BY rowid",
		aggregateID,
	)
	if err != nil {
		return nil, fmt.Errorf("イベントの取得に失敗: %w", err)
	}
	defer func() { _ = rows.Close() }()

	events := make([]*event.Event, 0)
	for rows.Next() {
		var (
			e                        event.Event
			aggregateType, eventType string
			data, createdAt          string
		)
		if err := rows.Scan(&e.ID, &e.AggregateID, &aggregateType, &eventType, &data, &createdAt); err != nil {
			return nil, fmt.Errorf("イベントの読み取りに失敗: %w", err)
		}
		t, err := time.Parse(time.RFC3339Nano, createdAt)
		if err != nil {
			return nil, fmt.Errorf("イベント日時の解析に失敗: %w", err)
		}
		e.AggregateType = event.AggregateType(aggregateType)
		e.EventType = event.Type(eventType)
		e.Data = []byte(data)
		e.CreatedAt = t
		events = append(events, &e)
	}
	return events, rows.Err()
}
