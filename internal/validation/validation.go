// Package validation は入力値の長さ・必須チェックを提供する。
// 違反時はmodel.APIError（VALIDATION_ERROR）を返す。
package validation

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"golang.org/x/net/idna"

	"github.com/VladVes/2022-winter-practice/internal/model"
)

// 各フィールドの上限文字数。
const (
	MaxEmailLength       = 128
	MaxNameLength        = 128
	MaxDescriptionLength = 1024
	MaxColorLength       = 32
	MinPasswordLength    = 8
	MaxPasswordLength    = 128
)

// Required はvalueが空の場合にエラーを返す。
func Required(field, value string) error {
	if value == "" {
		return model.NewValidationError(fmt.Sprintf("%s is required", field))
	}
	return nil
}

// MaxLength はvalueの文字数がmaxを超える場合にエラーを返す。
func MaxLength(field, value string, max int) error {
	if utf8.RuneCountInString(value) > max {
		return model.NewValidationError(fmt.Sprintf("%s must be at most %d characters", field, max))
	}
	return nil
}

// Password はパスワード長が[MinPasswordLength, MaxPasswordLength]の範囲にあるか検査する。
func Password(value string) error {
	n := utf8.RuneCountInString(value)
	if n < MinPasswordLength || n > MaxPasswordLength {
		return model.NewValidationError(fmt.Sprintf(
			"password must be between %d and %d characters", MinPasswordLength, MaxPasswordLength))
	}
	return nil
}

// ID はvalueがUUID形式か検査する。空文字列はエラーにしない。
func ID(field, value string) error {
	if value == "" {
		return nil
	}
	if _, err := uuid.Parse(value); err != nil {
		return model.NewValidationError(fmt.Sprintf("%s must be a valid id", field))
	}
	return nil
}

// IDs はvaluesの全要素がUUID形式か検査する。
func IDs(field string, values []string) error {
	for _, v := range values {
		if v == "" {
			return model.NewValidationError(fmt.Sprintf("%s must not contain empty ids", field))
		}
		if err := ID(field, v); err != nil {
			return err
		}
	}
	return nil
}

// NormalizeEmail はメールアドレスのドメイン部をIDNAのASCII形式（小文字）に正規化する。
// ローカル部は変更しない。"@"を含まない、またはドメインが不正な場合はエラーを返す。
func NormalizeEmail(value string) (string, error) {
	value = strings.TrimSpace(value)
	at := strings.LastIndex(value, "@")
	if at <= 0 || at == len(value)-1 {
		return "", model.NewValidationError("email must be a valid address")
	}
	domain, err := idna.Lookup.ToASCII(value[at+1:])
	if err != nil {
		return "", model.NewValidationError("email must be a valid address")
	}
	normalized := value[:at] + "@" + strings.ToLower(domain)
	if utf8.RuneCountInString(normalized) > MaxEmailLength {
		return "", model.NewValidationError(fmt.Sprintf("email must be at most %d characters", MaxEmailLength))
	}
	return normalized, nil
}

// First は最初に見つかったエラーを返す。
func First(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
