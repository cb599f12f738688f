package i18n

// Message keys.
const (
	Welcome       = "welcome"
	StartTracking = "start_tracking"
	ViewHistory   = "view_history"
	Settings      = "settings"
	Timer         = "timer"
	Start         = "start"
	Pause         = "pause"
	Resume        = "resume"
	Stop          = "stop"
	History       = "history"
	Language      = "language"
	Categories    = "categories"
	Reports       = "reports"
	NoCategory    = "no_category"
	Total         = "total"
	Upsell        = "upsell"
	NoEntries     = "no_entries"
)

var messages = map[string]map[string]string{
	"en": {
		Welcome:       "Welcome to TimeTag",
		StartTracking: "Start tracking",
		ViewHistory:   "View history",
		Settings:      "Settings",
		Timer:         "%02d:%02d",
		Start:         "Start",
		Pause:         "Pause",
		Resume:        "Resume",
		Stop:          "Stop",
		History:       "History",
		Language:      "Language",
		Categories:    "Categories",
		Reports:       "Reports",
		NoCategory:    "No Category",
		Total:         "Total",
		Upsell:        "Upgrade to Pro to see your full history and trends",
		NoEntries:     "No entries yet",
	},
	"ja": {
		Welcome:       "TimeTagへようこそ",
		StartTracking: "記録を開始",
		ViewHistory:   "履歴を見る",
		Settings:      "設定",
		Timer:         "%02d:%02d",
		Start:         "開始",
		Pause:         "一時停止",
		Resume:        "再開",
		Stop:          "停止",
		History:       "履歴",
		Language:      "言語",
		Categories:    "カテゴリー",
		Reports:       "レポート",
		NoCategory:    "カテゴリーなし",
		Total:         "合計",
		Upsell:        "Proにアップグレードすると全履歴と推移を表示できます",
		NoEntries:     "まだ記録がありません",
	},
	"es": {
		Welcome:       "Bienvenido a TimeTag",
		StartTracking: "Empezar a registrar",
		ViewHistory:   "Ver historial",
		Settings:      "Ajustes",
		Timer:         "%02d:%02d",
		Start:         "Iniciar",
		Pause:         "Pausar",
		Resume:        "Reanudar",
		Stop:          "Detener",
		History:       "Historial",
		Language:      "Idioma",
		Categories:    "Categorías",
		Reports:       "Informes",
		NoCategory:    "Sin categoría",
		Total:         "Total",
		Upsell:        "Actualiza a Pro para ver todo tu historial y tendencias",
		NoEntries:     "Aún no hay registros",
	},
}
