// Package i18n looks up translated UI labels.
package i18n

// Messages shown to readers. Catalog keys are these English strings.
const (
	MsgMustLogIn         = "You must log in to use the reading list."
	MsgArticleNotFound   = "Article not found."
	MsgArticleAdded      = "Article added to reading list!"
	MsgAlreadyInList     = "Article already in reading list."
	MsgArticleRemoved    = "Article removed from reading list."
	MsgMissingURL        = "Article URL is required."
	MsgInvalidArticleID  = "Invalid article id."
	MsgTranslationFailed = "Translation is unavailable, showing the original."
	MsgUnsupportedLang   = "Unsupported language."
	MsgInternalError     = "Something went wrong."
	MsgAvailable         = "Available"
	MsgError             = "Error"
	MsgUnavailable       = "Unavailable"
)

var builtin = map[string]map[string]string{
	"uk": {
		MsgMustLogIn:         "Увійдіть, щоб користуватися списком для читання.",
		MsgArticleNotFound:   "Статтю не знайдено.",
		MsgArticleAdded:      "Статтю додано до списку для читання!",
		MsgAlreadyInList:     "Стаття вже є у списку для читання.",
		MsgArticleRemoved:    "Статтю видалено зі списку для читання.",
		MsgMissingURL:        "Потрібна адреса статті.",
		MsgInvalidArticleID:  "Недійсний ідентифікатор статті.",
		MsgTranslationFailed: "Переклад недоступний, показано оригінал.",
		MsgUnsupportedLang:   "Мова не підтримується.",
		MsgInternalError:     "Щось пішло не так.",
		MsgAvailable:         "Доступно",
		MsgError:             "Помилка",
		MsgUnavailable:       "Недоступно",
	},
}

// Catalog maps language -> message -> label. It is read-only after New.
type Catalog struct {
	labels map[string]map[string]string
}

// New merges overrides on top of the built-in labels.
func New(overrides map[string]map[string]string) *Catalog {
	labels := make(map[string]map[string]string, len(builtin)+len(overrides))
	for _, src := range []map[string]map[string]string{builtin, overrides} {
		for lang, msgs := range src {
			if labels[lang] == nil {
				labels[lang] = make(map[string]string, len(msgs))
			}
			for k, v := range msgs {
				labels[lang][k] = v
			}
		}
	}
	return &Catalog{labels: labels}
}

// T returns the label for msg in lang, or msg itself.
func (c *Catalog) T(lang, msg string) string {
	if c == nil {
		return msg
	}
	if label, ok := c.labels[lang][msg]; ok && label != "" {
		return label
	}
	return msg
}
