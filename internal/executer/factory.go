package executer

import (
	apperr "github.com/sudankdk/cee/internal/errors"
	"github.com/sudankdk/cee/internal/languages"
)

// Factory holds one strategy per supported language.
type Factory struct {
	strategies map[languages.Language]Strategy
}

func NewFactory(images ImageResolver) *Factory {
	f := &Factory{strategies: make(map[languages.Language]Strategy, len(languages.All))}
	for lang, cfg := range configs {
		f.strategies[lang] = &tableStrategy{lang: lang, cfg: cfg, images: images}
	}
	f.strategies[languages.Java] = &javaStrategy{images: images}
	return f
}

func (f *Factory) Strategy(lang languages.Language) (Strategy, error) {
	s, ok := f.strategies[lang]
	if !ok {
		return nil, apperr.UnsupportedLanguageError(string(lang))
	}
	return s, nil
}
