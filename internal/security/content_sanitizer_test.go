package security

import (
	"strings"
	"testing"
)

func TestSanitizeName_StripsAllMarkup(t *testing.T) {
	s := NewTextSanitizer()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"プレーンテキストはそのまま", "Sprint backlog", "Sprint backlog"},
		{"日本語", "バックログ", "バックログ"},
		{"タグは除去される", "<b>Board</b>", "Board"},
		{"scriptは中身ごと除去される", "Board<script>alert(1)</script>", "Board"},
		{"アンパサンドは元の文字で保存される", "Tom & Jerry", "Tom & Jerry"},
		{"前後の空白を除去する", "  Todo  ", "Todo"},
		{"空文字列", "", ""},
		{"イベント属性付きimg", `<img src=x onerror=alert(1)>Name`, "Name"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := s.SanitizeName(tt.input); got != tt.want {
				t.Errorf("SanitizeName(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestSanitizeName_NeverLonger(t *testing.T) {
	s := NewTextSanitizer()
	inputs := []string{
		strings.Repeat("&", 128),
		strings.Repeat("<", 128),
		strings.Repeat("\"'", 64),
	}
	for _, in := range inputs {
		if got := s.SanitizeName(in); len(got) > len(in) {
			t.Errorf("SanitizeName grew input from %d to %d bytes", len(in), len(got))
		}
	}
}

func TestSanitizeDescription_AllowedTags(t *testing.T) {
	s := NewTextSanitizer()

	tests := []struct {
		name         string
		input        string
		wantContains []string
	}{
		{"pタグ", "<p>段落</p>", []string{"<p>段落</p>"}},
		{"リスト", "<ul><li>a</li><li>b</li></ul>", []string{"<ul>", "<li>a</li>", "</ul>"}},
		{"強調", "<strong>太字</strong><em>斜体</em>", []string{"<strong>太字</strong>", "<em>斜体</em>"}},
		{"コード", "<pre><code>go test</code></pre>", []string{"<pre><code>go test</code></pre>"}},
		{
			"リンクに属性が付与される",
			`<a href="https://example.com">link</a>`,
			[]string{`href="https://example.com"`, "nofollow", "noreferrer", `target="_blank"`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := s.SanitizeDescription(tt.input)
			for _, want := range tt.wantContains {
				if !strings.Contains(got, want) {
					t.Errorf("SanitizeDescription(%q) = %q, expected to contain %q", tt.input, got, want)
				}
			}
		})
	}
}

func TestSanitizeDescription_RemovesDangerousContent(t *testing.T) {
	s := NewTextSanitizer()

	tests := []struct {
		name       string
		input      string
		notContain []string
	}{
		{"script", "<p>ok</p><script>alert(1)</script>", []string{"<script", "alert(1)"}},
		{"iframe", `<iframe src="https://evil.example.com"></iframe>`, []string{"<iframe"}},
		{"style", "<style>body{}</style>", []string{"<style"}},
		{"onclick", `<p onclick="alert(1)">x</p>`, []string{"onclick"}},
		{"javascriptスキーム", `<a href="javascript:alert(1)">x</a>`, []string{"javascript:"}},
		{"相対URL", `<a href="/admin">x</a>`, []string{`href="/admin"`}},
		{"img", `<img src="https://example.com/a.png">`, []string{"<img"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := s.SanitizeDescription(tt.input)
			for _, bad := range tt.notContain {
				if strings.Contains(got, bad) {
					t.Errorf("SanitizeDescription(%q) = %q, should not contain %q", tt.input, got, bad)
				}
			}
		})
	}
}

func TestSanitizeDescription_Idempotent(t *testing.T) {
	s := NewTextSanitizer()
	input := `<p>Release <strong>v1</strong> <a href="https://example.com">notes</a></p>`

	first := s.SanitizeDescription(input)
	second := s.SanitizeDescription(first)
	if first != second {
		t.Errorf("not idempotent:\nfirst:  %q\nsecond: %q", first, second)
	}
}

func TestTextSanitizerInterface(t *testing.T) {
	var _ TextSanitizer = NewTextSanitizer()
}
