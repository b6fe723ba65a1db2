// Package activity は課外活動登録サービスの内部実装を提供する。
//
// 課外活動カタログの一覧、教員のログインとBearerトークンの発行、
// 生徒メールアドレスの登録・登録解除を扱う。カタログと有効トークン集合は
// Serviceが単一のミューテックスで保護して所有する。
//
// 既知の制約:
//   - トークンは "token-" + ユーザー名 で決定的に生成され、失効しない。
//   - 教員の認証情報は平文の固定テーブルで保持する。
//   - 有効なトークンであれば、どの課外活動の名簿でも変更できる。
//
// 永続化はStoreインターフェースの背後に隠されており、既定はメモリのみ、
// DB_PATHを指定した場合はSQLiteに名簿と監査イベントを保存する。
package activity
