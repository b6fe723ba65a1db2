package activity

import "errors"

var (
	// ErrInvalidCredentials はユーザー名とパスワードの組が認証情報テーブルと一致しないことを表す。
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUnauthorized はトークンが有効トークン集合に含まれないことを表す。
	ErrUnauthorized = errors.New("unauthorized")
	// ErrNotFound は指定された課外活動がカタログに存在しないことを表す。
	ErrNotFound = errors.New("activity not found")
	// ErrAlreadyRegistered はメールアドレスがすでに名簿に含まれていることを表す。
	ErrAlreadyRegistered = errors.New("student is already registered")
	// ErrNotRegistered はメールアドレスが名簿に含まれていないことを表す。
	ErrNotRegistered = errors.New("student is not registered")
)
