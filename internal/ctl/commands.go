package ctl

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/nao1215/activities/internal/activity"
	"github.com/nao1215/activities/pkg/event"
	"github.com/nao1215/activities/pkg/httpclient"
	"github.com/urfave/cli/v2"
)

// tokenResponse はPOST /tokenのレスポンス。
type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// messageResponse は名簿変更APIのレスポンス。
type messageResponse struct {
	Message string `json:"message"`
}

// loginCommand はトークンを発行するコマンドを返す。
func loginCommand() *cli.Command {
	return &cli.Command{
		Name:      "login",
		Usage:     "教師の資格情報でアクセストークンを取得する",
		ArgsUsage: "USERNAME PASSWORD",
		Action: func(c *cli.Context) error {
			opts, err := parseGlobalOptions(c)
			if err != nil {
				return err
			}
			if err := requireArgs(c, 2); err != nil {
				return err
			}

			form := url.Values{
				"username": {c.Args().Get(0)},
				"password": {c.Args().Get(1)},
			}
			var resp tokenResponse
			if err := newClient(opts).PostForm(c.Context, "/token", form, &resp); err != nil {
				return apiError("ログイン", err)
			}

			if opts.output == outputJSON {
				return writeJSON(c.App.Writer, resp)
			}
			fmt.Fprintln(c.App.Writer, resp.AccessToken)
			return nil
		},
	}
}

// listCommand は課外活動の一覧を表示するコマンドを返す。
func listCommand() *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "課外活動と参加者の一覧を表示する",
		Action: func(c *cli.Context) error {
			opts, err := parseGlobalOptions(c)
			if err != nil {
				return err
			}
			if err := requireArgs(c, 0); err != nil {
				return err
			}

			var catalog activity.Catalog
			if err := newClient(opts).GetJSON(c.Context, "/activities", &catalog); err != nil {
				return apiError("一覧の取得", err)
			}

			if opts.output == outputJSON {
				return writeJSON(c.App.Writer, catalog)
			}
			writeCatalog(c.App.Writer, catalog)
			return nil
		},
	}
}

// registerCommand は生徒を登録するコマンドを返す。
func registerCommand() *cli.Command {
	return &cli.Command{
		Name:      "register",
		Usage:     "生徒のメールアドレスを課外活動に登録する",
		ArgsUsage: "ACTIVITY EMAIL",
		Action: func(c *cli.Context) error {
			return changeParticipants(c, "register", "登録")
		},
	}
}

// unregisterCommand は生徒の登録を解除するコマンドを返す。
func unregisterCommand() *cli.Command {
	return &cli.Command{
		Name:      "unregister",
		Usage:     "生徒のメールアドレスを課外活動から外す",
		ArgsUsage: "ACTIVITY EMAIL",
		Action: func(c *cli.Context) error {
			return changeParticipants(c, "unregister", "登録解除")
		},
	}
}

// eventsCommand は課外活動の監査イベントを表示するコマンドを返す。
func eventsCommand() *cli.Command {
	return &cli.Command{
		Name:      "events",
		Usage:     "課外活動の名簿変更履歴を表示する",
		ArgsUsage: "ACTIVITY",
		Action: func(c *cli.Context) error {
			opts, err := parseGlobalOptions(c)
			if err != nil {
				return err
			}
			if err := requireArgs(c, 1); err != nil {
				return err
			}

			path := fmt.Sprintf("/activities/%s/events", url.PathEscape(c.Args().Get(0)))
			var events []*event.Event
			if err := newClient(opts).GetJSON(httpclient.WithToken(c.Context, opts.token), path, &events); err != nil {
				return apiError("履歴の取得", err)
			}

			if opts.output == outputJSON {
				return writeJSON(c.App.Writer, events)
			}
			for _, e := range events {
				// 登録と登録解除のデータは同じ形
				data, err := event.Payload[event.ParticipantRegisteredData](e)
				if err != nil {
					return err
				}
				fmt.Fprintf(c.App.Writer, "%s\t%s\t%s\n", e.CreatedAt.Format(time.RFC3339), e.EventType, data.Email)
			}
			return nil
		},
	}
}

// changeParticipants はregister/unregisterの共通処理。
func changeParticipants(c *cli.Context, action, label string) error {
	opts, err := parseGlobalOptions(c)
	if err != nil {
		return err
	}
	if err := requireArgs(c, 2); err != nil {
		return err
	}

	name, email := c.Args().Get(0), c.Args().Get(1)
	path := fmt.Sprintf("/activities/%s/%s?%s", url.PathEscape(name), action, url.Values{"email": {email}}.Encode())

	ctx := httpclient.WithToken(c.Context, opts.token)
	client := newClient(opts)
	var resp messageResponse
	if action == "register" {
		err = client.PostJSON(ctx, path, nil, &resp)
	} else {
		err = client.DeleteJSON(ctx, path, &resp)
	}
	if err != nil {
		return apiError(label, err)
	}

	if opts.output == outputJSON {
		return writeJSON(c.App.Writer, resp)
	}
	fmt.Fprintln(c.App.Writer, resp.Message)
	return nil
}

// apiError はAPI呼び出しのエラーを利用者向けの文言に変換する。
func apiError(label string, err error) error {
	var se *httpclient.StatusError
	if errors.As(err, &se) {
		return fmt.Errorf("%sに失敗しました (HTTP %d): %s", label, se.StatusCode, se.Detail)
	}
	return fmt.Errorf("%sに失敗しました: %w", label, err)
}

// writeJSON はvをインデント付きJSONで書き出す。
func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// writeCatalog はカタログを名前順のテキストで書き出す。
func writeCatalog(w io.Writer, catalog activity.Catalog) {
	names := make([]string, 0, len(catalog))
	for name := range catalog {
		names = append(names, name)
	}
	slices.Sort(names)

	for i, name := range names {
		a := catalog[name]
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintln(w, name)
		fmt.Fprintf(w, "  %s\n", a.Description)
		fmt.Fprintf(w, "  Schedule: %s\n", a.Schedule)
		fmt.Fprintf(w, "  Participants (%d/%d): %s\n", len(a.Participants), a.MaxParticipants, participantList(a.Participants))
	}
}

func participantList(participants []string) string {
	if len(participants) == 0 {
		return "-"
	}
	return strings.Join(participants, ", ")
}
