package activity

import (
	"bytes"
	"embed"
	"fmt"
	"io/fs"
	"os"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

//go:embed data/activities.json
var defaultDefinitions []byte

//go:embed static
var staticFS embed.FS

// LoadCatalog は課外活動定義を読み込む。pathが空の場合は埋め込みの定義を使う。
func LoadCatalog(path string) (Catalog, error) {
	if path == "" {
		return LoadDefinitions(bytes.NewReader(defaultDefinitions))
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("課外活動定義ファイルのオープンに失敗: %w", err)
	}
	defer f.Close()

	return LoadDefinitions(f)
}

// StaticFiles はフロントエンドの静的ファイルを返す。dirが空の場合は埋め込みのファイルを使う。
func StaticFiles(dir string) (fs.FS, error) {
	if dir != "" {
		return os.DirFS(dir), nil
	}
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		return nil, fmt.Errorf("埋め込み静的ファイルの取得に失敗: %w", err)
	}
	return sub, nil
}
