/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

// Package i18n translates the text shown by the web and terminal front ends.
package i18n

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"path"
	"strings"
	"sync"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"
)

//go:embed locales/*.json
var localeFS embed.FS

type ctxKey struct{}

var (
	mu       sync.RWMutex
	bundle   *i18n.Bundle
	fallback = language.English
)

// Init loads every embedded locale file. lang becomes the language used
// when a request asks for nothing the bundle can serve. A regional tag
// such as en-US settles on the closest loaded locale.
func Init(lang string) error {
	tag, err := language.Parse(lang)
	if err != nil {
		return fmt.Errorf("parse language %q: %w", lang, err)
	}

	b, loaded, err := newBundle(tag)
	if err != nil {
		return err
	}

	_, idx, conf := language.NewMatcher(loaded).Match(tag)
	if conf == language.No {
		return fmt.Errorf("no translations for language %q", lang)
	}

	if loaded[idx] != tag {
		tag = loaded[idx]

		b, _, err = newBundle(tag)
		if err != nil {
			return err
		}
	}

	if !supported(b, tag) {
		return fmt.Errorf("no translations for language %q", lang)
	}

	mu.Lock()
	bundle = b
	fallback = tag
	mu.Unlock()

	return nil
}

func newBundle(tag language.Tag) (*i18n.Bundle, []language.Tag, error) {
	b := i18n.NewBundle(tag)
	b.RegisterUnmarshalFunc("json", json.Unmarshal)

	entries, err := localeFS.ReadDir("locales")
	if err != nil {
		return nil, nil, fmt.Errorf("read locales dir: %w", err)
	}

	var loaded []language.Tag
	for _, e := range entries {
		if e.IsDir() {
			continue
		}

		data, err := localeFS.ReadFile(path.Join("locales", e.Name()))
		if err != nil {
			return nil, nil, fmt.Errorf("read locale file %s: %w", e.Name(), err)
		}

		mf, err := b.ParseMessageFileBytes(data, e.Name())
		if err != nil {
			return nil, nil, fmt.Errorf("parse locale file %s: %w", e.Name(), err)
		}

		if len(mf.Messages) > 0 {
			loaded = append(loaded, mf.Tag)
		}
	}

	if len(loaded) == 0 {
		return nil, nil, fmt.Errorf("no locale files found")
	}

	return b, loaded, nil
}

// supported reports whether tag localizes a known message. The bundle
// lists its default language even when no file provides it.
func supported(b *i18n.Bundle, tag language.Tag) bool {
	_, err := i18n.NewLocalizer(b, tag.String()).Localize(&i18n.LocalizeConfig{MessageID: "AppTitle"})

	return err == nil
}

// Languages lists the loaded languages, default first.
func Languages() []string {
	mu.RLock()
	defer mu.RUnlock()

	if bundle == nil {
		return nil
	}

	langs := []string{fallback.String()}
	for _, t := range bundle.LanguageTags() {
		if t != fallback {
			langs = append(langs, t.String())
		}
	}

	return langs
}

// NewLocalizer creates a localizer preferring langs in order. Each entry may
// be a tag or a full Accept-Language header value.
func NewLocalizer(langs ...string) *i18n.Localizer {
	mu.RLock()
	defer mu.RUnlock()

	b := bundle
	if b == nil {
		b = i18n.NewBundle(fallback)
	}

	prefs := append(append([]string(nil), langs...), fallback.String())

	return i18n.NewLocalizer(b, prefs...)
}

// Negotiate picks the loaded language that best fits an Accept-Language
// header, or the default one.
func Negotiate(accept string) string {
	mu.RLock()
	defer mu.RUnlock()

	if bundle == nil || strings.TrimSpace(accept) == "" {
		return fallback.String()
	}

	prefs, _, err := language.ParseAcceptLanguage(accept)
	if err != nil || len(prefs) == 0 {
		return fallback.String()
	}

	tags := append([]language.Tag{fallback}, bundle.LanguageTags()...)
	_, idx, conf := language.NewMatcher(tags).Match(prefs...)
	if conf == language.No {
		return fallback.String()
	}

	base, _ := tags[idx].Base()

	return base.String()
}

// WithLocalizer stores a localizer in the context.
func WithLocalizer(ctx context.Context, loc *i18n.Localizer) context.Context {
	return context.WithValue(ctx, ctxKey{}, loc)
}

func localizerFromCtx(ctx context.Context) *i18n.Localizer {
	if loc, ok := ctx.Value(ctxKey{}).(*i18n.Localizer); ok {
		return loc
	}

	return NewLocalizer()
}

// T translates a message by ID. Unknown IDs come back unchanged.
func T(ctx context.Context, msgID string) string {
	return Td(ctx, msgID, nil)
}

// Td translates a message by ID with template data.
func Td(ctx context.Context, msgID string, data map[string]any) string {
	s, err := localizerFromCtx(ctx).Localize(&i18n.LocalizeConfig{
		MessageID:    msgID,
		TemplateData: data,
	})
	if err != nil {
		return msgID
	}

	return s
}

// Tp translates a pluralized message by ID. Count is added to data.
func Tp(ctx context.Context, msgID string, count int, data map[string]any) string {
	td := map[string]any{"Count": count}
	for k, v := range data {
		td[k] = v
	}

	s, err := localizerFromCtx(ctx).Localize(&i18n.LocalizeConfig{
		MessageID:    msgID,
		PluralCount:  count,
		TemplateData: td,
	})
	if err != nil {
		return msgID
	}

	return s
}
