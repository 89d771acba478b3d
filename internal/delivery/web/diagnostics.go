package web

import (
	"errors"

	"github.com/yourusername/pantry-bot/internal/domain/entity"
	"github.com/yourusername/pantry-bot/internal/usecase"
)

const (
	levelWarning = "warning"
	levelError   = "error"
)

// Diagnostics the inline panel shown instead of crashing the page.
type Diagnostics struct {
	Level   string
	Kind    string
	Title   string
	Message string
	Hint    string
}

// diagnose maps a boundary error onto what the user sees.
func diagnose(err error) Diagnostics {
	d := Diagnostics{Level: levelError, Message: err.Error()}
	switch kind := entity.ErrorKind(err); {
	case kind == entity.ErrAuth:
		d.Kind = "auth"
		d.Title = "認証エラー"
		d.Hint = "サービスアカウントの認証情報 (GOOGLE_CREDENTIALS_FILE / GOOGLE_CREDENTIALS_JSON) を確認してください。"
	case kind == entity.ErrNotFound:
		d.Kind = "not_found"
		d.Title = "シートが見つかりません"
		d.Hint = "SPREADSHEET_ID とワークシート名、サービスアカウントへの共有設定を確認してください。"
	case kind == entity.ErrConnect:
		d.Kind = "connect"
		d.Title = "接続エラー"
		d.Hint = "ネットワーク接続を確認して、もう一度お試しください。"
	case kind == entity.ErrRead:
		d.Level = levelWarning
		d.Kind = "read"
		d.Title = "データを読み込めませんでした"
		d.Hint = "シートの1行目に name 列があるか確認してください。在庫は空として表示しています。"
	case kind == entity.ErrWrite:
		d.Kind = "write"
		d.Title = "保存に失敗しました"
		d.Hint = "変更は保存されていません。もう一度ボタンを押してください。"
	case kind == entity.ErrOCR:
		d.Level = levelWarning
		d.Kind = "ocr"
		d.Title = "レシートを読み取れませんでした"
		d.Hint = "明るい場所で、レシート全体が写るように撮影してください。"
	case errors.Is(err, usecase.ErrItemNotFound):
		d.Level = levelWarning
		d.Kind = "item"
		d.Title = "項目が見つかりません"
		d.Hint = "他の端末で変更された可能性があります。ページを再読み込みしてください。"
	default:
		d.Kind = "unknown"
		d.Title = "予期しないエラー"
	}
	return d
}
