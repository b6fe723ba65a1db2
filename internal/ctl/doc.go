// Package ctl は課外活動登録サービスのコマンドラインクライアント activityctl を提供する。
//
// urfave/cli/v2 でコマンドを定義し、pkg/httpclient でHTTP APIを呼び出す。
// 接続先とトークンはフラグまたは環境変数 ACTIVITIES_URL / ACTIVITIES_TOKEN で指定する。
package ctl
