package activity

import (
	"context"
	"sync"

	"github.com/nao1215/activities/pkg/event"
)

// Store はカタログの読み込みと名簿の保存を行う永続化の境界。
// Serviceはこのインターフェースだけに依存し、保存先を意識しない。
type Store interface {
	// Load は起動時のカタログを返す。
	Load(ctx context.Context) (Catalog, error)
	// SaveParticipants は指定された課外活動の名簿全体を順序どおりに保存する。
	SaveParticipants(ctx context.Context, name string, participants []string) error
}

// EventRecorder は監査イベントを追記する。
type EventRecorder interface {
	Append(ctx context.Context, e *event.Event) error
}

// EventLister は追記済みの監査イベントを読み出す。
type EventLister interface {
	// ListEvents は指定されたAggregateIDのイベントを追記順に返す。
	ListEvents(ctx context.Context, aggregateID string) ([]*event.Event, error)
}

// MemoryStore はプロセス内にのみ状態を保持するStore。
// 保存は何もしないため、再起動すると定義ファイルの状態に戻る。
type MemoryStore struct {
	seed Catalog
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore は初期カタログを持つMemoryStoreを生成する。
func NewMemoryStore(seed Catalog) *MemoryStore {
	return &MemoryStore{seed: seed}
}

// Load は初期カタログのコピーを返す。
func (m *MemoryStore) Load(_ context.Context) (Catalog, error) {
	return m.seed.Clone(), nil
}

// SaveParticipants は何もしない。
func (m *MemoryStore) SaveParticipants(_ context.Context, _ string, _ []string) error {
	return nil
}

// MemoryEventLog はプロセス内にのみ監査イベントを保持する。
type MemoryEventLog struct {
	mu     sync.Mutex
	events []*event.Event
}

var (
	_ EventRecorder = (*MemoryEventLog)(nil)
	_ EventLister   = (*MemoryEventLog)(nil)
)

// NewMemoryEventLog は空のMemoryEventLogを生成する。
func NewMemoryEventLog() *MemoryEventLog {
	return &MemoryEventLog{}
}

// Append はイベントを末尾に追加する。
func (l *MemoryEventLog) Append(_ context.Context, e *event.Event) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, e)
	return nil
}

// ListEvents は指定されたAggregateIDのイベントを追記順に返す。
func (l *MemoryEventLog) ListEvents(_ context.Context, aggregateID string) ([]*event.Event, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	events := make([]*event.Event, 0)
	for _, e := range l.events {
		if e.AggregateID == aggregateID {
			events = append(events, e)
		}
	}
	return events, nil
}
