package ctl

import (
	"fmt"
	"io"

	"github.com/nao1215/activities/pkg/httpclient"
	"github.com/urfave/cli/v2"
)

// Version はビルド時に -ldflags で上書きする。
var Version = "dev"

// App はactivityctlのCLIアプリケーションを生成する。
// 出力はoutに書き込む。
func App(out io.Writer) *cli.App {
	return &cli.App{
		Name:      "activityctl",
		Usage:     "課外活動登録サービスのコマンドラインクライアント",
		Version:   Version,
		Writer:    out,
		ErrWriter: out,
		Flags:     globalFlags(),
		Commands: []*cli.Command{
			loginCommand(),
			listCommand(),
			registerCommand(),
			unregisterCommand(),
			eventsCommand(),
		},
	}
}

// globalFlags は全コマンド共通のフラグを返す。
func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "server",
			Aliases: []string{"s"},
			Usage:   "サービスのベースURL",
			EnvVars: []string{"ACTIVITIES_URL"},
			Value:   "http://localhost:8000",
		},
		&cli.StringFlag{
			Name:    "token",
			Aliases: []string{"t"},
			Usage:   "login で取得したアクセストークン",
			EnvVars: []string{"ACTIVITIES_TOKEN"},
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "出力形式: text, json",
			Value:   outputText,
		},
	}
}

const (
	outputText = "text"
	outputJSON = "json"
)

// globalOptions はグローバルフラグの値。
type globalOptions struct {
	server string
	token  string
	output string
}

// parseGlobalOptions はコンテキストからグローバルフラグを取り出す。
func parseGlobalOptions(c *cli.Context) (globalOptions, error) {
	opts := globalOptions{
		server: c.String("server"),
		token:  c.String("token"),
		output: c.String("output"),
	}
	if opts.output != outputText && opts.output != outputJSON {
		return opts, fmt.Errorf("不正な出力形式です: %q (text または json)", opts.output)
	}
	return opts, nil
}

// newClient はグローバルフラグの接続先でHTTPクライアントを生成する。
func newClient(opts globalOptions) *httpclient.Client {
	return httpclient.New(opts.server)
}

// requireArgs は位置引数の数を検証する。
func requireArgs(c *cli.Context, n int) error {
	if c.Args().Len() != n {
		return fmt.Errorf("%s には引数が%d個必要です: %s %s", c.Command.Name, n, c.Command.Name, c.Command.ArgsUsage)
	}
	return nil
}
