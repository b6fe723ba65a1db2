// Package config は環境変数からサーバー設定を読み込む。
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Config は活動登録サーバーの設定。
type Config struct {
	// Port はサーバーのリッスンポート。
	Port string `env:"PORT" envDefault:"8000"`
	// ActivitiesFile は課外活動定義JSONのパス。空の場合は埋め込みの定義を使う。
	ActivitiesFile string `env:"ACTIVITIES_FILE"`
	// StaticDir はフロントエンドの静的ファイルディレクトリ。空の場合は埋め込みのファイルを使う。
	StaticDir string `env:"STATIC_DIR"`
	// DBPath はSQLiteデータベースのパス。空の場合は永続化せずメモリ上だけで保持する。
	DBPath string `env:"DB_PATH"`
	// AllowedOrigins はCORSで許可するオリジン。
	AllowedOrigins []string `env:"ALLOWED_ORIGINS" envSeparator:","`
	// GinMode はGinの動作モード（debug / release / test）。
	GinMode string `env:"GIN_MODE" envDefault:"release"`
}

// Load は環境変数から設定を読み込む。
func Load() (Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return Config{}, fmt.Errorf("環境変数の解析に失敗: %w", err)
	}
	switch cfg.GinMode {
	case "debug", "release", "test":
	default:
		return Config{}, fmt.Errorf("GIN_MODEが不正です: %q", cfg.GinMode)
	}
	return cfg, nil
}
