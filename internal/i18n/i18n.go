package i18n

import (
	"embed"
	"io/fs"
	"os"
	"path"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/nicksnyder/go-i18n/v2/i18n"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github/chapool/go-signer/internal/config"
	"golang.org/x/text/language"
)

const messagesDir = "messages"

//go:embed messages/*.toml
var bundledMessages embed.FS

// Service translates message ids into the language a client asked for
type Service struct {
	bundle          *i18n.Bundle
	matcher         language.Matcher
	defaultLanguage language.Tag
}

// Data is handed to message templates
type Data map[string]string

// New loads the bundled message files and, when configured, every file of
// config.BundleDirAbs on top of them
func New(config config.I18n) (*Service, error) {
	bundle := i18n.NewBundle(config.DefaultLanguage)
	bundle.RegisterUnmarshalFunc("toml", toml.Unmarshal)

	entries, err := fs.ReadDir(bundledMessages, messagesDir)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read bundled messages")
	}

	for _, entry := range entries {
		if _, err := bundle.LoadMessageFileFS(bundledMessages, path.Join(messagesDir, entry.Name())); err != nil {
			return nil, errors.Wrapf(err, "failed to load bundled message file %s", entry.Name())
		}
	}

	if config.BundleDirAbs != "" {
		files, err := os.ReadDir(config.BundleDirAbs)
		if err != nil {
			return nil, errors.Wrap(err, "failed to read i18n bundle directory")
		}

		for _, file := range files {
			if file.IsDir() {
				continue
			}

			if _, err := bundle.LoadMessageFile(filepath.Join(config.BundleDirAbs, file.Name())); err != nil {
				return nil, errors.Wrapf(err, "failed to load message file %s", file.Name())
			}
		}
	}

	return &Service{
		bundle:          bundle,
		matcher:         language.NewMatcher(bundle.LanguageTags()),
		defaultLanguage: config.DefaultLanguage,
	}, nil
}

// Translate returns the message key in lang. Unknown keys are returned as is.
func (s *Service) Translate(key string, lang language.Tag, data ...Data) string {
	localizer := i18n.NewLocalizer(s.bundle, lang.String())

	var templateData Data
	if len(data) > 0 {
		templateData = data[0]
	}

	msg, err := localizer.Localize(&i18n.LocalizeConfig{
		MessageID:    key,
		TemplateData: templateData,
	})
	if err != nil {
		log.Debug().Err(err).Str("key", key).Str("lang", lang.String()).Msg("Failed to translate message, returning key")
		return key
	}

	return msg
}

// ParseAcceptLanguage picks the best supported language for an
// Accept-Language header, the default language otherwise
func (s *Service) ParseAcceptLanguage(header string) language.Tag {
	tags, _, err := language.ParseAcceptLanguage(header)
	if err != nil || len(tags) == 0 {
		return s.defaultLanguage
	}

	matched, _, _ := s.matcher.Match(tags...)
	base, _ := matched.Base()

	return language.Make(base.String())
}

// Tags lists the languages with at least one message file
func (s *Service) Tags() []language.Tag {
	return s.bundle.LanguageTags()
}
