package ctl

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"slices"
	"strings"
	"testing"

	"github.com/nao1215/activities/internal/activity"
	"github.com/nao1215/activities/internal/config"
)

// newTestAPI は組み込みの課外活動定義で起動したサービスを返す。
// NewServerがgin.SetModeを呼ぶため、このパッケージのテストは並列実行しない。
func newTestAPI(t *testing.T) *httptest.Server {
	t.Helper()

	srv, err := activity.NewServer(context.Background(), config.Config{Port: "0", GinMode: "test"})
	if err != nil {
		t.Fatalf("NewServer()でエラーが発生: %v", err)
	}
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(func() {
		ts.Close()
		srv.Close()
	})
	return ts
}

// run はactivityctlを引数付きで実行し、出力を返す。
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	err := App(&out).RunContext(context.Background(), append([]string{"activityctl"}, args...))
	return out.String(), err
}

// loginAs はloginコマンドでトークンを取得する。
func loginAs(t *testing.T, server, username, password string) string {
	t.Helper()

	out, err := run(t, "--server", server, "login", username, password)
	if err != nil {
		t.Fatalf("loginでエラーが発生: %v", err)
	}
	return strings.TrimSpace(out)
}

// TestApp はコマンドとグローバルフラグの定義を検証する。
func TestApp(t *testing.T) {
	app := App(&bytes.Buffer{})
	if app.Name != "activityctl" {
		t.Errorf("Name = %q, want %q", app.Name, "activityctl")
	}

	var commands []string
	for _, cmd := range app.Commands {
		commands = append(commands, cmd.Name)
	}
	for _, name := range []string{"login", "list", "register", "unregister", "events"} {
		if !slices.Contains(commands, name) {
			t.Errorf("コマンド %q が定義されていない", name)
		}
	}

	var flags []string
	for _, f := range app.Flags {
		flags = append(flags, f.Names()[0])
	}
	for _, name := range []string{"server", "token", "output"} {
		if !slices.Contains(flags, name) {
			t.Errorf("フラグ %q が定義されていない", name)
		}
	}
}

// TestLogin はloginコマンドを検証する。
func TestLogin(t *testing.T) {
	ts := newTestAPI(t)

	t.Run("正しい資格情報でトークンが表示されること", func(t *testing.T) {
		if got := loginAs(t, ts.URL, "teacher1", "password1"); got != "token-teacher1" {
			t.Errorf("token = %q, want %q", got, "token-teacher1")
		}
	})

	t.Run("JSON出力ではtoken_typeも含まれること", func(t *testing.T) {
		out, err := run(t, "--server", ts.URL, "--output", "json", "login", "teacher2", "password2")
		if err != nil {
			t.Fatalf("loginでエラーが発生: %v", err)
		}
		var resp tokenResponse
		if err := json.Unmarshal([]byte(out), &resp); err != nil {
			t.Fatalf("出力のパースに失敗: %v\n%s", err, out)
		}
		if resp.AccessToken != "token-teacher2" || resp.TokenType != "bearer" {
			t.Errorf("resp = %+v", resp)
		}
	})

	t.Run("誤ったパスワードではエラーになること", func(t *testing.T) {
		_, err := run(t, "--server", ts.URL, "login", "teacher1", "wrong")
		if err == nil {
			t.Fatal("エラーが返されることを期待したがnilだった")
		}
		if !strings.Contains(err.Error(), "HTTP 401") || !strings.Contains(err.Error(), "Invalid credentials") {
			t.Errorf("err = %v", err)
		}
	})

	t.Run("引数が足りない場合はエラーになること", func(t *testing.T) {
		if _, err := run(t, "--server", ts.URL, "login", "teacher1"); err == nil {
			t.Fatal("エラーが返されることを期待したがnilだった")
		}
	})
}

// TestList はlistコマンドを検証する。
func TestList(t *testing.T) {
	ts := newTestAPI(t)

	t.Run("テキスト出力で名前順に表示されること", func(t *testing.T) {
		out, err := run(t, "--server", ts.URL, "list")
		if err != nil {
			t.Fatalf("listでエラーが発生: %v", err)
		}
		if !strings.Contains(out, "Chess Club\n  Learn strategies and compete in chess tournaments\n") {
			t.Errorf("Chess Club の説明が出力されていない:\n%s", out)
		}
		if !strings.Contains(out, "  Participants (2/12): michael@mergington.edu, daniel@mergington.edu\n") {
			t.Errorf("Chess Club の名簿が出力されていない:\n%s", out)
		}
		if strings.Index(out, "Chess Club") > strings.Index(out, "Programming Class") {
			t.Errorf("名前順になっていない:\n%s", out)
		}
	})

	t.Run("JSON出力がカタログとしてパースできること", func(t *testing.T) {
		out, err := run(t, "--server", ts.URL, "-o", "json", "list")
		if err != nil {
			t.Fatalf("listでエラーが発生: %v", err)
		}
		var catalog activity.Catalog
		if err := json.Unmarshal([]byte(out), &catalog); err != nil {
			t.Fatalf("出力のパースに失敗: %v", err)
		}
		if len(catalog) != 9 {
			t.Errorf("課外活動数 = %d, want 9", len(catalog))
		}
	})

	t.Run("不正な出力形式はエラーになること", func(t *testing.T) {
		if _, err := run(t, "--server", ts.URL, "--output", "yaml", "list"); err == nil {
			t.Fatal("エラーが返されることを期待したがnilだった")
		}
	})

	t.Run("接続できない場合はエラーになること", func(t *testing.T) {
		if _, err := run(t, "--server", "http://127.0.0.1:1", "list"); err == nil {
			t.Fatal("エラーが返されることを期待したがnilだった")
		}
	})
}

// TestRegisterAndUnregister はregisterとunregisterコマンドを検証する。
func TestRegisterAndUnregister(t *testing.T) {
	ts := newTestAPI(t)
	token := loginAs(t, ts.URL, "teacher1", "password1")
	const email = "newstudent@mergington.edu"

	out, err := run(t, "--server", ts.URL, "--token", token, "register", "Chess Club", email)
	if err != nil {
		t.Fatalf("registerでエラーが発生: %v", err)
	}
	if want := "Registered " + email + " for Chess Club\n"; out != want {
		t.Errorf("出力 = %q, want %q", out, want)
	}

	_, err = run(t, "--server", ts.URL, "--token", token, "register", "Chess Club", email)
	if err == nil || !strings.Contains(err.Error(), "Student is already registered") {
		t.Errorf("重複登録のerr = %v", err)
	}

	listed, err := run(t, "--server", ts.URL, "list")
	if err != nil {
		t.Fatalf("listでエラーが発生: %v", err)
	}
	if !strings.Contains(listed, "Participants (3/12): michael@mergington.edu, daniel@mergington.edu, "+email) {
		t.Errorf("登録した生徒が一覧にない:\n%s", listed)
	}

	out, err = run(t, "--server", ts.URL, "--token", token, "unregister", "Chess Club", email)
	if err != nil {
		t.Fatalf("unregisterでエラーが発生: %v", err)
	}
	if want := "Unregistered " + email + " from Chess Club\n"; out != want {
		t.Errorf("出力 = %q, want %q", out, want)
	}

	_, err = run(t, "--server", ts.URL, "--token", token, "unregister", "Chess Club", email)
	if err == nil || !strings.Contains(err.Error(), "Student is not registered") {
		t.Errorf("未登録の解除のerr = %v", err)
	}
}

// TestRegisterErrors はregisterコマンドの失敗ケースを検証する。
func TestRegisterErrors(t *testing.T) {
	ts := newTestAPI(t)
	token := loginAs(t, ts.URL, "teacher2", "password2")

	tests := []struct {
		name       string
		args       []string
		wantDetail string
	}{
		{
			name:       "トークンが無い場合はNot authenticatedになること",
			args:       []string{"register", "Chess Club", "a@mergington.edu"},
			wantDetail: "Not authenticated",
		},
		{
			name:       "発行されていないトークンはUnauthorizedになること",
			args:       []string{"--token", "token-nobody", "register", "Chess Club", "a@mergington.edu"},
			wantDetail: "Unauthorized",
		},
		{
			name:       "存在しない課外活動はActivity not foundになること",
			args:       []string{"--token", token, "register", "Robotics", "a@mergington.edu"},
			wantDetail: "Activity not found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, append([]string{"--server", ts.URL}, tt.args...)...)
			if err == nil {
				t.Fatal("エラーが返されることを期待したがnilだった")
			}
			if !strings.Contains(err.Error(), tt.wantDetail) {
				t.Errorf("err = %v, want detail %q", err, tt.wantDetail)
			}
		})
	}
}

// TestEvents はeventsコマンドを検証する。
func TestEvents(t *testing.T) {
	ts := newTestAPI(t)
	token := loginAs(t, ts.URL, "teacher1", "password1")

	if _, err := run(t, "--server", ts.URL, "--token", token, "register", "Gym Class", "gym@mergington.edu"); err != nil {
		t.Fatalf("registerでエラーが発生: %v", err)
	}
	if _, err := run(t, "--server", ts.URL, "--token", token, "unregister", "Gym Class", "gym@mergington.edu"); err != nil {
		t.Fatalf("unregisterでエラーが発生: %v", err)
	}

	out, err := run(t, "--server", ts.URL, "--token", token, "events", "Gym Class")
	if err != nil {
		t.Fatalf("eventsでエラーが発生: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 2 {
		t.Fatalf("行数 = %d, want 2:\n%s", len(lines), out)
	}
	if !strings.HasSuffix(lines[0], "\tParticipantRegistered\tgym@mergington.edu") {
		t.Errorf("lines[0] = %q", lines[0])
	}
	if !strings.HasSuffix(lines[1], "\tParticipantUnregistered\tgym@mergington.edu") {
		t.Errorf("lines[1] = %q", lines[1])
	}

	if _, err := run(t, "--server", ts.URL, "events", "Gym Class"); err == nil || !strings.Contains(err.Error(), "Not authenticated") {
		t.Errorf("トークン無しのerr = %v", err)
	}
}

// TestTokenFromEnv は環境変数ACTIVITIES_TOKENとACTIVITIES_URLが使われることを検証する。
func TestTokenFromEnv(t *testing.T) {
	ts := newTestAPI(t)
	token := loginAs(t, ts.URL, "teacher1", "password1")

	t.Setenv("ACTIVITIES_URL", ts.URL)
	t.Setenv("ACTIVITIES_TOKEN", token)

	out, err := run(t, "register", "Art Club", "env@mergington.edu")
	if err != nil {
		t.Fatalf("registerでエラーが発生: %v", err)
	}
	if !strings.HasPrefix(out, "Registered env@mergington.edu") {
		t.Errorf("出力 = %q", out)
	}
}

// TestAPIErrorWithoutDetail はdetailを含まないエラーレスポンスの表示を検証する。
func TestAPIErrorWithoutDetail(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "upstream unavailable", http.StatusBadGateway)
	}))
	defer ts.Close()

	_, err := run(t, "--server", ts.URL, "list")
	if err == nil {
		t.Fatal("エラーが返されることを期待したがnilだった")
	}
	if got, want := err.Error(), "一覧の取得に失敗しました (HTTP 502): upstream unavailable"; got != want {
		t.Errorf("err = %q, want %q", got, want)
	}
}
