// 課外活動登録サービスのエントリポイント。
// 課外活動の一覧、教員ログイン、生徒の登録・登録解除をHTTPで提供する。
package main

import (
	"context"
	"log"

	"github.com/joho/godotenv"
	"github.com/nao1215/activities/internal/activity"
	"github.com/nao1215/activities/internal/config"
)

func main() {
	// .env があれば読み込む。既に設定済みの環境変数は上書きしない
	if err := godotenv.Load(); err == nil {
		log.Printf(".envを読み込みました")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("設定の読み込みに失敗: %v", err)
	}

	server, err := activity.NewServer(context.Background(), cfg)
	if err != nil {
		log.Fatalf("課外活動サーバーの初期化に失敗: %v", err)
	}

	log.Printf("課外活動サービスを起動します: :%s", cfg.Port)
	runErr := server.Run()
	if err := server.Close(); err != nil {
		log.Printf("ストアのクローズに失敗: %v", err)
	}
	if runErr != nil {
		log.Fatalf("課外活動サービスの起動に失敗: %v", runErr)
	}
}
