// Package event は参加者名簿の変更を記録する監査イベントを定義する。
//
// 登録・登録解除・ログインをEventとして生成する。
// 追記先はSQLiteのeventsテーブルまたはプロセス内のログで、追記後に更新はしない。
package event
