// Package security はアプリケーションのセキュリティ機能を提供する。
//
// InputSanitizer はフォームから受け取った自由入力テキストからHTMLマークアップを除去する。
// 値はバックエンドAPIへそのまま転送され、他の画面や帳票で表示されうるため、
// 送信前にタグを取り除いたプレーンテキストに正規化する。
package security

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// InputSanitizer はフォーム入力の正規化機能のインターフェース。
type InputSanitizer interface {
	// Text はHTMLタグを除去し、前後の空白を取り除いたプレーンテキストを返す。
	Text(raw string) string
	// Code はISOコード（国・通貨）用に、Textの結果を大文字化して返す。
	Code(raw string) string
}

// inputSanitizer はInputSanitizerの実装。
// bluemondayのStrictPolicyは全タグを除去する。ポリシーはスレッドセーフ。
type inputSanitizer struct {
	policy *bluemonday.Policy
}

// NewInputSanitizer はInputSanitizerの新しいインスタンスを生成する。
func NewInputSanitizer() *inputSanitizer {
	return &inputSanitizer{
		policy: bluemonday.StrictPolicy(),
	}
}

// Text はHTMLタグを除去したプレーンテキストを返す。
// StrictPolicyはエンティティをエスケープして返すため、プレーンテキストに戻す。
func (s *inputSanitizer) Text(raw string) string {
	if raw == "" {
		return ""
	}
	return strings.TrimSpace(html.UnescapeString(s.policy.Sanitize(raw)))
}

// Code はISOコード用に大文字化したプレーンテキストを返す。
func (s *inputSanitizer) Code(raw string) string {
	return strings.ToUpper(s.Text(raw))
}
