package activity

import (
	"context"
	"fmt"
	"log"
	"maps"
	"slices"
	"sync"

	"github.com/nao1215/activities/pkg/event"
)

// tokenPrefix は発行するトークンの接頭辞。
const tokenPrefix = "token-"

// DefaultCredentials は既定の教員認証情報（ユーザー名 → 平文パスワード）を返す。
func DefaultCredentials() map[string]string {
	return map[string]string{
		"teacher1": "password1",
		"teacher2": "password2",
	}
}

// Service は課外活動カタログと有効トークン集合を所有する。
// 1つのミューテックスで両方を保護し、操作は常に1つずつ実行される。
type Service struct {
	mu sync.Mutex
	// catalog は課外活動名から活動へのマップ。
	catalog Catalog
	// tokens は発行済みで有効なトークンの集合。増えるだけで減らない。
	tokens map[string]struct{}
	// credentials は教員のユーザー名から平文パスワードへのマップ。起動後は変更しない。
	credentials map[string]string
	// store は名簿の保存先。
	store Store
	// recorder は監査イベントの追記先。nilの場合は記録しない。
	recorder EventRecorder
}

// Option はServiceの生成オプション。
type Option func(*Service)

// WithCredentials は教員の認証情報テーブルを差し替える。
func WithCredentials(credentials map[string]string) Option {
	return func(s *Service) {
		s.credentials = maps.Clone(credentials)
	}
}

// WithEventRecorder は監査イベントの追記先を設定する。
func WithEventRecorder(r EventRecorder) Option {
	return func(s *Service) {
		s.recorder = r
	}
}

// NewService はStoreからカタログを読み込んでServiceを生成する。
func NewService(ctx context.Context, store Store, opts ...Option) (*Service, error) {
	catalog, err := store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("カタログの読み込みに失敗: %w", err)
	}

	s := &Service{
		catalog:     catalog,
		tokens:      make(map[string]struct{}),
		credentials: DefaultCredentials(),
		store:       store,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// ListActivities はカタログ全体のスナップショットを返す。
func (s *Service) ListActivities() Catalog {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.catalog.Clone()
}

// Login は認証情報テーブルと完全一致した場合にトークンを発行し、有効トークン集合に加える。
func (s *Service) Login(ctx context.Context, username, password string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	want, ok := s.credentials[username]
	if !ok || want != password {
		return "", ErrInvalidCredentials
	}

	token := tokenPrefix + username
	s.tokens[token] = struct{}{}

	s.record(ctx)(event.TeacherLoggedIn(username))
	return token, nil
}

// TokenActive はトークンが有効トークン集合に含まれるかを返す。
func (s *Service) TokenActive(token string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.tokens[token]
	return ok
}

// Register は課外活動の名簿末尾にメールアドレスを追加する。
// 検査はトークン、課外活動の存在、重複の順に行う。
func (s *Service) Register(ctx context.Context, name, email, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, err := s.lookup(name, token)
	if err != nil {
		return err
	}
	if slices.Contains(a.Participants, email) {
		return ErrAlreadyRegistered
	}

	next := append(slices.Clone(a.Participants), email)
	if err := s.store.SaveParticipants(ctx, name, next); err != nil {
		return fmt.Errorf("名簿の保存に失敗: %w", err)
	}
	a.Participants = next

	s.record(ctx)(event.ParticipantRegistered(name, email))
	return nil
}

// Unregister は課外活動の名簿からメールアドレスを取り除く。残りの順序は保たれる。
func (s *Service) Unregister(ctx context.Context, name, email, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, err := s.lookup(name, token)
	if err != nil {
		return err
	}
	idx := slices.Index(a.Participants, email)
	if idx < 0 {
		return ErrNotRegistered
	}

	next := slices.Delete(slices.Clone(a.Participants), idx, idx+1)
	if err := s.store.SaveParticipants(ctx, name, next); err != nil {
		return fmt.Errorf("名簿の保存に失敗: %w", err)
	}
	a.Participants = next

	s.record(ctx)(event.ParticipantUnregistered(name, email))
	return nil
}

// ActivityEvents は課外活動の監査イベントを追記順に返す。
// 記録先がイベントの読み出しに対応していない場合は空のスライスを返す。
func (s *Service) ActivityEvents(ctx context.Context, name, token string) ([]*event.Event, error) {
	s.mu.Lock()
	_, err := s.lookup(name, token)
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}

	lister, ok := s.recorder.(EventLister)
	if !ok {
		return []*event.Event{}, nil
	}
	events, err := lister.ListEvents(ctx, event.ActivityAggregateID(name))
	if err != nil {
		return nil, fmt.Errorf("監査イベントの取得に失敗: %w", err)
	}
	return events, nil
}

// lookup はトークンを検証してから課外活動を取得する。s.muを保持して呼ぶこと。
func (s *Service) lookup(name, token string) (*Activity, error) {
	if _, ok := s.tokens[token]; !ok {
		return nil, ErrUnauthorized
	}
	a, ok := s.catalog[name]
	if !ok {
		return nil, ErrNotFound
	}
	return a, nil
}

// record は生成したイベントを追記する関数を返す。
// 生成や追記に失敗した場合はログに記録するが、呼び出し元にはエラーを返さない。
func (s *Service) record(ctx context.Context) func(*event.Event, error) {
	return func(ev *event.Event, err error) {
		if s.recorder == nil {
			return
		}
		if err != nil {
			log.Printf("イベントの生成に失敗: %v", err)
			return
		}
		if err := s.recorder.Append(ctx, ev); err != nil {
			log.Printf("イベントの追記に失敗: type=%s, aggregate_id=%s, error=%v", ev.EventType, ev.AggregateID, err)
		}
	}
}
