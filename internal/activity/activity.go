package activity

import (
	"encoding/json"
	"fmt"
	"io"
	"slices"
)

// Activity は1つの課外活動を表す。
type Activity struct {
	// Description は活動の説明。
	Description string `json:"description"`
	// Schedule は活動日時の説明。
	Schedule string `json:"schedule"`
	// MaxParticipants は定員。表示用であり登録時には検査しない。
	MaxParticipants int `json:"max_participants"`
	// Participants は登録済みの生徒メールアドレス。登録順に並ぶ。
	Participants []string `json:"participants"`
}

// Clone はActivityの深いコピーを返す。
func (a *Activity) Clone() *Activity {
	c := *a
	c.Participants = append(make([]string, 0, len(a.Participants)), a.Participants...)
	return &c
}

// Catalog は課外活動名をキーとするカタログ。
type Catalog map[string]*Activity

// Clone はカタログの深いコピーを返す。
func (c Catalog) Clone() Catalog {
	out := make(Catalog, len(c))
	for name, a := range c {
		out[name] = a.Clone()
	}
	return out
}

// definitionsFile は課外活動定義JSONのトップレベル構造。
type definitionsFile struct {
	Activities Catalog `json:"activities"`
}

// LoadDefinitions は課外活動定義JSONを読み込んでカタログを返す。
// 形式: {"activities": {"<name>": {"description": ..., "participants": [...]}}}
func LoadDefinitions(r io.Reader) (Catalog, error) {
	var def definitionsFile
	if err := json.NewDecoder(r).Decode(&def); err != nil {
		return nil, fmt.Errorf("課外活動定義のデコードに失敗: %w", err)
	}
	if def.Activities == nil {
		return nil, fmt.Errorf("課外活動定義に activities がありません")
	}

	for name, a := range def.Activities {
		if name == "" {
			return nil, fmt.Errorf("課外活動名が空です")
		}
		if a == nil {
			return nil, fmt.Errorf("課外活動 %q の定義が null です", name)
		}
		if a.Participants == nil {
			a.Participants = []string{}
		}
		sorted := slices.Clone(a.Participants)
		slices.Sort(sorted)
		if len(slices.Compact(sorted)) != len(a.Participants) {
			return nil, fmt.Errorf("課外活動 %q の参加者が重複しています", name)
		}
	}
	return def.Activities, nil
}
