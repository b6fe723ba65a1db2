package event

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

// TestConstructors はイベント種別ごとのコンストラクタを検証する。
func TestConstructors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name              string
		build             func() (*Event, error)
		wantAggregateID   string
		wantAggregateType AggregateType
		wantType          Type
	}{
		{
			name:              "登録イベント",
			build:             func() (*Event, error) { return ParticipantRegistered("Chess Club", "alice@mergington.edu") },
			wantAggregateID:   "activity-Chess Club",
			wantAggregateType: AggregateTypeActivity,
			wantType:          TypeParticipantRegistered,
		},
		{
			name:              "登録解除イベント",
			build:             func() (*Event, error) { return ParticipantUnregistered("Chess Club", "alice@mergington.edu") },
			wantAggregateID:   "activity-Chess Club",
			wantAggregateType: AggregateTypeActivity,
			wantType:          TypeParticipantUnregistered,
		},
		{
			name:              "ログインイベント",
			build:             func() (*Event, error) { return TeacherLoggedIn("teacher2") },
			wantAggregateID:   "teacher-teacher2",
			wantAggregateType: AggregateTypeTeacher,
			wantType:          TypeTeacherLoggedIn,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			before := time.Now().UTC()
			ev, err := tt.build()
			after := time.Now().UTC()
			if err != nil {
				t.Fatalf("イベント生成でエラーが発生: %v", err)
			}

			if _, err := uuid.Parse(ev.ID); err != nil {
				t.Errorf("IDがUUID形式ではない: %q", ev.ID)
			}
			if ev.AggregateID != tt.wantAggregateID {
				t.Errorf("AggregateID = %q, want %q", ev.AggregateID, tt.wantAggregateID)
			}
			if ev.AggregateType != tt.wantAggregateType {
				t.Errorf("AggregateType = %q, want %q", ev.AggregateType, tt.wantAggregateType)
			}
			if ev.EventType != tt.wantType {
				t.Errorf("EventType = %q, want %q", ev.EventType, tt.wantType)
			}
			if ev.CreatedAt.Before(before) || ev.CreatedAt.After(after) {
				t.Errorf("CreatedAt = %v, 期待する範囲: [%v, %v]", ev.CreatedAt, before, after)
			}
		})
	}

	t.Run("イベントごとに異なるIDが生成されること", func(t *testing.T) {
		t.Parallel()

		ev1, err := TeacherLoggedIn("teacher1")
		if err != nil {
			t.Fatalf("TeacherLoggedIn()でエラーが発生: %v", err)
		}
		ev2, err := TeacherLoggedIn("teacher1")
		if err != nil {
			t.Fatalf("TeacherLoggedIn()でエラーが発生: %v", err)
		}
		if ev1.ID == ev2.ID {
			t.Errorf("IDが重複している: %q", ev1.ID)
		}
	})

	t.Run("変換できないデータの場合エラーを返すこと", func(t *testing.T) {
		t.Parallel()

		if _, err := build("activity-x", AggregateTypeActivity, TypeParticipantRegistered, make(chan int)); err == nil {
			t.Fatal("エラーが返されることを期待したがnilだった")
		}
	})
}

// TestPayload はDataの取り出しを検証する。
func TestPayload(t *testing.T) {
	t.Parallel()

	t.Run("生成時のデータが取り出せること", func(t *testing.T) {
		t.Parallel()

		ev, err := ParticipantUnregistered("Art Club", "bob@mergington.edu")
		if err != nil {
			t.Fatalf("ParticipantUnregistered()でエラーが発生: %v", err)
		}
		got, err := Payload[ParticipantUnregisteredData](ev)
		if err != nil {
			t.Fatalf("Payload()でエラーが発生: %v", err)
		}
		want := ParticipantUnregisteredData{Activity: "Art Club", Email: "bob@mergington.edu"}
		if got != want {
			t.Errorf("Payload() = %+v, want %+v", got, want)
		}
	})

	t.Run("不正なJSONの場合エラーを返すこと", func(t *testing.T) {
		t.Parallel()

		ev := &Event{EventType: TypeParticipantRegistered, Data: []byte(`{"activity":`)}
		if _, err := Payload[ParticipantRegisteredData](ev); err == nil {
			t.Fatal("エラーが返されることを期待したがnilだった")
		}
	})
}

// TestAggregateID はAggregateIDの組み立てを検証する。
func TestAggregateID(t *testing.T) {
	t.Parallel()

	if got := ActivityAggregateID("Programming Class"); got != "activity-Programming Class" {
		t.Errorf("ActivityAggregateID() = %q", got)
	}
	if got := TeacherAggregateID("teacher2"); got != "teacher-teacher2" {
		t.Errorf("TeacherAggregateID() = %q", got)
	}
}
