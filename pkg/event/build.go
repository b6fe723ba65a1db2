package event

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ParticipantRegistered は生徒が課外活動に登録されたイベントを生成する。
func ParticipantRegistered(activity, email string) (*Event, error) {
	return build(ActivityAggregateID(activity), AggregateTypeActivity, TypeParticipantRegistered,
		ParticipantRegisteredData{Activity: activity, Email: email})
}

// ParticipantUnregistered は生徒の登録が解除されたイベントを生成する。
func ParticipantUnregistered(activity, email string) (*Event, error) {
	return build(ActivityAggregateID(activity), AggregateTypeActivity, TypeParticipantUnregistered,
		ParticipantUnregisteredData{Activity: activity, Email: email})
}

// TeacherLoggedIn は教員がトークンを取得したイベントを生成する。
func TeacherLoggedIn(username string) (*Event, error) {
	return build(TeacherAggregateID(username), AggregateTypeTeacher, TypeTeacherLoggedIn,
		TeacherLoggedInData{Username: username})
}

func build(aggregateID string, aggregateType AggregateType, eventType Type, data any) (*Event, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("%sイベントのデータ変換に失敗: %w", eventType, err)
	}
	return &Event{
		ID:            uuid.NewString(),
		AggregateID:   aggregateID,
		AggregateType: aggregateType,
		EventType:     eventType,
		Data:          raw,
		CreatedAt:     time.Now().UTC(),
	}, nil
}

// Payload はイベントのDataを型Tとして取り出す。
func Payload[T any](e *Event) (T, error) {
	var v T
	if err := json.Unmarshal(e.Data, &v); err != nil {
		return v, fmt.Errorf("%sイベントのデータ解析に失敗: %w", e.EventType, err)
	}
	return v, nil
}
