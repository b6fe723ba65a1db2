// Package httpclient は課外活動登録サービスのAPIを呼び出すHTTPクライアントを提供する。
//
// activityctl から一覧取得、トークン発行、名簿の変更を行う際に使用する。
// Bearerトークンはコンテキスト経由で伝播する。
package httpclient
