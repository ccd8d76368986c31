package i18n

import (
	"embed"
	"encoding/json"
	"fmt"
	"sync"

	goi18n "github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"
)

//go:embed locales/*.json
var localesFS embed.FS

var (
	mu     sync.RWMutex
	bundle *goi18n.Bundle
)

// Init loads the embedded message catalogs. It is safe to call more than once.
func Init() error {
	b := goi18n.NewBundle(language.English)
	b.RegisterUnmarshalFunc("json", json.Unmarshal)
	for _, name := range []string{"locales/active.en.json", "locales/active.ru.json"} {
		if _, err := b.LoadMessageFileFS(localesFS, name); err != nil {
			return fmt.Errorf("load %s: %w", name, err)
		}
	}
	mu.Lock()
	bundle = b
	mu.Unlock()
	return nil
}

// Load adds an external message file on top of the embedded catalogs.
func Load(path string) error {
	mu.Lock()
	defer mu.Unlock()
	if bundle == nil {
		return fmt.Errorf("i18n not initialised")
	}
	if _, err := bundle.LoadMessageFile(path); err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// T localizes messageID for the given Accept-Language values. Unknown ids
// and an uninitialised bundle fall back to the id itself.
func T(messageID string, data map[string]any, langs ...string) string {
	mu.RLock()
	b := bundle
	mu.RUnlock()
	if b == nil {
		return messageID
	}

	msg, err := goi18n.NewLocalizer(b, langs...).Localize(&goi18n.LocalizeConfig{
		MessageID:    messageID,
		TemplateData: data,
	})
	if err != nil || msg == "" {
		return messageID
	}
	return msg
}
