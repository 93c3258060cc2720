// Package i18n holds the active locale and the localized generic
// messages used when the backend returns an error without a message of
// its own. Content catalogs for the UI proper live elsewhere; only the
// strings the state layer surfaces are here.
package i18n

import (
	"os"
	"strings"

	"comuna-reader/internal/signal"
)

const DefaultLocale = "ru"

// Locale is the active locale. Settings changes propagate into it.
var Locale = signal.New(DefaultLocale)

// SystemLocale infers a locale from the runtime environment's language
// preference, falling back to the default when nothing usable is set.
func SystemLocale() string {
	for _, key := range []string{"LC_ALL", "LC_MESSAGES", "LANG"} {
		value := os.Getenv(key)
		if value == "" || value == "C" || value == "POSIX" {
			continue
		}
		// "ru_RU.UTF-8" -> "ru"
		value = strings.SplitN(value, ".", 2)[0]
		value = strings.SplitN(value, "_", 2)[0]
		if value != "" {
			return strings.ToLower(value)
		}
	}
	return DefaultLocale
}

var messages = map[string]map[string]string{
	"ru": {
		"login_failed":        "Не удалось войти",
		"register_failed":     "Не удалось зарегистрироваться",
		"telegram_failed":     "Не удалось войти через Telegram",
		"vk_failed":           "Не удалось войти через VK",
		"auth_required":       "Нужна авторизация",
		"code_failed":         "Не удалось получить код",
		"posts_load_failed":   "Не удалось загрузить посты",
		"post_update_failed":  "Не удалось обновить пост",
		"post_create_failed":  "Не удалось создать пост",
		"image_upload_failed": "Не удалось загрузить изображение",
	},
	"en": {
		"login_failed":        "Failed to log in",
		"register_failed":     "Failed to register",
		"telegram_failed":     "Failed to log in via Telegram",
		"vk_failed":           "Failed to log in via VK",
		"auth_required":       "Authorization required",
		"code_failed":         "Failed to fetch the code",
		"posts_load_failed":   "Failed to load posts",
		"post_update_failed":  "Failed to update the post",
		"post_create_failed":  "Failed to create the post",
		"image_upload_failed": "Failed to upload the image",
	},
}

// T resolves key in the active locale, falling back to the default
// locale and finally to the key itself.
func T(key string) string {
	locale := Locale.Get()
	if table, ok := messages[locale]; ok {
		if msg, ok := table[key]; ok {
			return msg
		}
	}
	if msg, ok := messages[DefaultLocale][key]; ok {
		return msg
	}
	return key
}
