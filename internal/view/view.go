// Package view はHTMLテンプレートによる画面描画を提供する。
package view

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"

	"github.com/hitoshi/kubex/internal/model"
	"github.com/hitoshi/kubex/internal/wizard"
)

//go:embed templates/*.html
var templateFS embed.FS

// 画面名
const (
	PageLogin     = "login"
	PageRegister  = "register"
	PageSend      = "send"
	PageTransfers = "transfers"
)

// Layout は全画面で共通のレイアウト情報。
// ログイン・登録画面ではナビゲーションを表示しない。
type Layout struct {
	Title     string
	ShowNav   bool
	CSRFToken string
}

// AuthPage はログイン・登録画面のデータ。
type AuthPage struct {
	Layout
	Email  string
	Notice string
	Error  *model.APIError
}

// StepItem はステッパーの1項目。
type StepItem struct {
	Number  int
	Label   string
	Reached bool
	Active  bool
}

// SendPage は送金ウィザード画面のデータ。
type SendPage struct {
	Layout
	State          wizard.State
	Step           int
	Steps          []StepItem
	CanSend        bool
	Beneficiary    model.Beneficiary
	HasBeneficiary bool
	Error          *model.APIError
}

// NewSendPage はウィザード状態から画面データを組み立てる。
func NewSendPage(layout Layout, st wizard.State, apiErr *model.APIError) SendPage {
	steps := make([]StepItem, 0, len(wizard.Steps()))
	for _, s := range wizard.Steps() {
		steps = append(steps, StepItem{
			Number:  int(s),
			Label:   s.Label(),
			Reached: s <= st.Reached,
			Active:  s == st.Step,
		})
	}

	b, ok := st.SelectedBeneficiary()
	return SendPage{
		Layout:         layout,
		State:          st,
		Step:           int(st.Step),
		Steps:          steps,
		CanSend:        st.CanSend(),
		Beneficiary:    b,
		HasBeneficiary: ok,
		Error:          apiErr,
	}
}

// TransfersPage は送金履歴画面のデータ。
type TransfersPage struct {
	Layout
	Transfers []model.Transfer
	Error     *model.APIError
}

// Renderer は埋め込みテンプレートから画面を描画する。
type Renderer struct {
	pages map[string]*template.Template
}

// NewRenderer は全画面のテンプレートを解析したRendererを生成する。
func NewRenderer() (*Renderer, error) {
	r := &Renderer{pages: make(map[string]*template.Template)}
	for _, page := range []string{PageLogin, PageRegister, PageSend, PageTransfers} {
		tmpl, err := template.New(page).ParseFS(templateFS, "templates/layout.html", "templates/"+page+".html")
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s template: %w", page, err)
		}
		r.pages[page] = tmpl
	}
	return r, nil
}

// Render は指定の画面を描画してレスポンスに書き込む。
// 描画に失敗した場合は何も書き込まずにエラーを返す。
func (r *Renderer) Render(w http.ResponseWriter, status int, page string, data any) error {
	tmpl, ok := r.pages[page]
	if !ok {
		return fmt.Errorf("unknown page: %s", page)
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout", data); err != nil {
		return fmt.Errorf("failed to render %s: %w", page, err)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err := buf.WriteTo(w)
	return err
}
