// Command kubex-web は送金Webアプリケーションのフロントエンドサーバーを起動する。
//
// サブコマンド:
//
//	serve        Webサーバーを起動する（デフォルト）
//	worker       期限切れセッションを定期削除する
//	migrate      セッションテーブルのマイグレーションを適用する
//	healthcheck  /health を確認する（Dockerヘルスチェック用）
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/hitoshi/kubex/internal/app"
)

func main() {
	// ローカル開発用の.envを読み込む。ファイルがなければ環境変数のみを使う。
	_ = godotenv.Load()

	if err := app.Run(os.Stdout, os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "kubex-web: %v\n", err)
		os.Exit(1)
	}
}
