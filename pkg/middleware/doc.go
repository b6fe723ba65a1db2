// Package middleware はGinベースのHTTP APIで使用する共通ミドルウェアを提供する。
//
// Bearerトークンの抽出、リクエストIDの付与、Prometheusメトリクスの計測、
// パニックリカバリ、CORS設定を含む。
package middleware
