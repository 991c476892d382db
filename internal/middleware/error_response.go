package middleware

import (
	"fmt"
	"net/http"

	"github.com/hitoshi/kubex/internal/model"
)

// WriteErrorResponse はミドルウェアで処理を打ち切る場合のエラーレスポンスを書き込む。
// 画面を描画できない段階で使うため、メッセージと対処方法のみをテキストで返す。
func WriteErrorResponse(w http.ResponseWriter, statusCode int, apiErr *model.APIError) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("X-Error-Code", apiErr.Code)
	w.WriteHeader(statusCode)
	fmt.Fprintf(w, "%s\n%s\n", apiErr.Message, apiErr.Action)
}

// WriteInternalServerError は内部サーバーエラーの統一レスポンスを書き込む。
// 詳細はログのみに記録し、ユーザーには一般的なメッセージを返す。
func WriteInternalServerError(w http.ResponseWriter) {
	WriteErrorResponse(w, http.StatusInternalServerError, model.NewInternalError())
}
