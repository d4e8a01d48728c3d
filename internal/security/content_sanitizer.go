// Package security はパスワードハッシュ、入力テキストのサニタイズ、
// 外部URLへのSSRF対策を提供する。
package security

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// TextSanitizer はユーザー入力の自由記述フィールドを保存前に無害化する。
type TextSanitizer interface {
	// SanitizeName は名前系フィールドから全てのHTMLを除去したプレーンテキストを返す。
	// 前後の空白は取り除く。
	SanitizeName(raw string) string

	// SanitizeDescription は説明文の簡単な書式タグ
	// （p, br, a, ul, ol, li, blockquote, pre, code, strong, em）のみを残す。
	// aタグにはtarget="_blank"とrel="nofollow noreferrer noopener"が付与される。
	SanitizeDescription(raw string) string
}

// textSanitizer はTextSanitizerの実装。bluemondayのポリシーはスレッドセーフ。
type textSanitizer struct {
	strict      *bluemonday.Policy
	description *bluemonday.Policy
}

// NewTextSanitizer はTextSanitizerを生成する。
func NewTextSanitizer() *textSanitizer {
	p := bluemonday.NewPolicy()
	p.AllowElements(
		"p", "br", "ul", "ol", "li",
		"blockquote", "pre", "code",
		"strong", "em",
	)
	p.AllowAttrs("href").OnElements("a")
	p.AllowStandardURLs()
	p.AllowRelativeURLs(false)
	p.RequireNoFollowOnLinks(true)
	p.RequireNoReferrerOnLinks(true)
	p.AddTargetBlankToFullyQualifiedLinks(true)

	return &textSanitizer{
		strict:      bluemonday.StrictPolicy(),
		description: p,
	}
}

// SanitizeName はタグを取り除いたテキストを返す。
// StrictPolicyはテキストをHTMLエスケープするため、保存用に元の文字へ戻す。
func (s *textSanitizer) SanitizeName(raw string) string {
	return strings.TrimSpace(html.UnescapeString(s.strict.Sanitize(raw)))
}

// SanitizeDescription は許可された書式タグのみを残したHTMLを返す。
func (s *textSanitizer) SanitizeDescription(raw string) string {
	return s.description.Sanitize(raw)
}
