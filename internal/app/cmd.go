package app

import (
	"fmt"
	"strings"
)

// Command はtrackerバイナリのサブコマンド。
type Command string

const (
	CommandServe       Command = "serve"       // APIサーバー（デフォルト）
	CommandWorker      Command = "worker"      // 孤立リフレッシュトークンの定期削除
	CommandMigrate     Command = "migrate"     // 未適用マイグレーションの適用
	CommandHealthcheck Command = "healthcheck" // distrolessイメージ用のHTTPヘルスチェック
)

var commands = []Command{CommandServe, CommandWorker, CommandMigrate, CommandHealthcheck}

// Usage はサブコマンドの一覧を返す。
func Usage() string {
	names := make([]string, len(commands))
	for i, c := range commands {
		names[i] = string(c)
	}
	return "usage: tracker [" + strings.Join(names, "|") + "]"
}

// ParseCommand は先頭の引数からサブコマンドを決定する。
// 引数がなければserveとし、2番目以降の引数は無視する。
// 未知のサブコマンドはUsageを含むエラーを返す。
func ParseCommand(args []string) (Command, error) {
	if len(args) == 0 || args[0] == "" {
		return CommandServe, nil
	}
	for _, c := range commands {
		if Command(args[0]) == c {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown command %q\n%s", args[0], Usage())
}
