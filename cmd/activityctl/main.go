// 課外活動登録サービスのコマンドラインクライアント。
// 一覧の表示、ログイン、生徒の登録・登録解除をHTTP API経由で行う。
package main

import (
	"fmt"
	"os"

	"github.com/nao1215/activities/internal/ctl"
)

func main() {
	if err := ctl.App(os.Stdout).Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
