// Package tracker はプロジェクト、ボード、ステータス、タスクの管理ロジックを提供する。
// 更新はすべて部分更新で、nilのフィールドは変更しない。
package tracker

import (
	"errors"
	"fmt"
	"time"

	"github.com/VladVes/2022-winter-practice/internal/model"
	"github.com/VladVes/2022-winter-practice/internal/repository"
	"github.com/VladVes/2022-winter-practice/internal/security"
	"github.com/VladVes/2022-winter-practice/internal/validation"
)

// texts は名前・説明文の検証とサニタイズをまとめる。
type texts struct {
	sanitizer security.TextSanitizer
}

// name は生の入力の長さを検査した後、タグを除去した名前を返す。
// 除去後に空になった場合は必須エラーとする。
func (t texts) name(raw string) (string, error) {
	if err := validation.MaxLength("name", raw, validation.MaxNameLength); err != nil {
		return "", err
	}
	name := t.sanitizer.SanitizeName(raw)
	if err := validation.Required("name", name); err != nil {
		return "", err
	}
	return name, nil
}

// description は生の入力の長さを検査した後、許可タグのみ残した説明文を返す。
func (t texts) description(raw string) (string, error) {
	if err := validation.MaxLength("description", raw, validation.MaxDescriptionLength); err != nil {
		return "", err
	}
	return t.sanitizer.SanitizeDescription(raw), nil
}

// translate はリポジトリのエラーをAPIErrorに変換する。
// 変換できないエラーはopでラップしてそのまま返す。
func translate(op, resource string, err error) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return model.NewNotFoundError(resource + " not found")
	case errors.Is(err, repository.ErrInvalidReference):
		return model.NewValidationError("referenced record does not exist")
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}

func notFound(resource string) error {
	return model.NewNotFoundError(resource + " not found")
}

type clock func() time.Time
