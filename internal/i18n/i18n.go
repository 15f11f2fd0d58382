package i18n

import (
	"strings"
	"sync"

	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v2"

	"github.com/Dillesh56/PrincessDainaBot-1/resources"
)

const translationsPath = "i18n/translations.yml"

// English keys are their own translation.
var supportedLanguages = []string{"en", "hi", "ru"}

var state = struct {
	sync.RWMutex
	once            sync.Once
	translations    map[string]map[string]string
	defaultLanguage string
}{
	defaultLanguage: "en",
}

func load() {
	content, err := resources.FS.ReadFile(translationsPath)
	if err != nil {
		log.WithError(err).Errorln("cant load i18n")
		return
	}
	dict := map[string]map[string]string{}
	if err := yaml.Unmarshal(content, &dict); err != nil {
		log.WithError(err).Errorln("cant unmarshal i18n")
		return
	}
	state.Lock()
	state.translations = dict
	state.Unlock()
}

func SetDefaultLanguage(lang string) {
	lang = strings.ToLower(strings.TrimSpace(lang))
	if !IsSupported(lang) {
		log.WithField("language", lang).Warn("unsupported language, keeping default")
		return
	}
	state.Lock()
	state.defaultLanguage = lang
	state.Unlock()
}

func DefaultLanguage() string {
	state.RLock()
	defer state.RUnlock()
	return state.defaultLanguage
}

func IsSupported(lang string) bool {
	for _, l := range supportedLanguages {
		if l == lang {
			return true
		}
	}
	return false
}

// Get translates key into lang, falling back to the default language and then to the key itself.
func Get(key, lang string) string {
	state.once.Do(load)
	if lang == "" {
		lang = DefaultLanguage()
	}
	lang = strings.ToLower(lang)
	if lang == "en" {
		return key
	}

	state.RLock()
	defer state.RUnlock()
	if res, ok := state.translations[key][strings.ToUpper(lang)]; ok && res != "" {
		return res
	}
	log.WithField("language", lang).Tracef(`no translation for key "%s"`, key)
	return key
}
