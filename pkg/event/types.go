package event

import (
	"encoding/json"
	"time"
)

// AggregateType はイベントの対象となるエンティティの種類を表す。
type AggregateType string

const (
	// AggregateTypeActivity は課外活動エンティティを表す。
	AggregateTypeActivity AggregateType = "Activity"
	// AggregateTypeTeacher は教員エンティティを表す。
	AggregateTypeTeacher AggregateType = "Teacher"
)

// Type はイベントの種類を表す。
type Type string

const (
	// TypeParticipantRegistered は参加者が課外活動に登録されたことを表す。
	TypeParticipantRegistered Type = "ParticipantRegistered"
	// TypeParticipantUnregistered は参加者の登録が解除されたことを表す。
	TypeParticipantUnregistered Type = "ParticipantUnregistered"
	// TypeTeacherLoggedIn は教員がログインしてトークンを取得したことを表す。
	TypeTeacherLoggedIn Type = "TeacherLoggedIn"
)

// Event は参加者名簿の変更を記録する不変の監査レコードを表す。
type Event struct {
	// ID はイベントの一意識別子（UUID）。
	ID string `json:"id"`
	// AggregateID は対象エンティティの識別子（例: "activity-Chess Club"）。
	AggregateID string `json:"aggregate_id"`
	// AggregateType は対象エンティティの種類。
	AggregateType AggregateType `json:"aggregate_type"`
	// EventType はイベントの種類。
	EventType Type `json:"event_type"`
	// Data はイベント固有のデータ（JSON形式）。
	Data json.RawMessage `json:"data"`
	// CreatedAt はイベントが作成された日時。
	CreatedAt time.Time `json:"created_at"`
}

// ParticipantRegisteredData はParticipantRegisteredイベントのデータ。
type ParticipantRegisteredData struct {
	// Activity は課外活動名。
	Activity string `json:"activity"`
	// Email は登録された生徒のメールアドレス。
	Email string `json:"email"`
}

// ParticipantUnregisteredData はParticipantUnregisteredイベントのデータ。
type ParticipantUnregisteredData struct {
	// Activity は課外活動名。
	Activity string `json:"activity"`
	// Email は登録解除された生徒のメールアドレス。
	Email string `json:"email"`
}

// TeacherLoggedInData はTeacherLoggedInイベントのデータ。
type TeacherLoggedInData struct {
	// Username はログインした教員のユーザー名。
	Username string `json:"username"`
}

// ActivityAggregateID は課外活動名からAggregateIDを組み立てる。
func ActivityAggregateID(name string) string {
	return "activity-" + name
}

// TeacherAggregateID は教員のユーザー名からAggregateIDを組み立てる。
func TeacherAggregateID(username string) string {
	return "teacher-" + username
}
