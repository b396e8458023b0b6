/*
Copyright © 2025 Seednode <seednode@seedno.de>
*/

package main

import (
	"embed"
	"html"
	"net/http"
	"net/url"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/julienschmidt/httprouter"
	"golang.org/x/text/language"
	"golang.org/x/text/language/display"

	"github.com/Seednode/chronomatch/games/content"
	"github.com/Seednode/chronomatch/i18n"
)

//go:embed assets/*
var assets embed.FS

// pageLang is the language a page is rendered in, preferring ?lang over
// Accept-Language.
func pageLang(r *http.Request) string {
	if q := r.URL.Query().Get("lang"); q != "" {
		if tag, err := language.Parse(q); err == nil {
			return tag.String()
		}
	}

	return i18n.Negotiate(r.Header.Get("Accept-Language"))
}

// homePage lists every period, each linking to a fresh game.
func homePage(cfg *Config, catalog *content.Catalog, r *http.Request) string {
	ctx := r.Context()
	lang := pageLang(r)

	var b strings.Builder

	b.WriteString(`<!DOCTYPE html><html lang="` + html.EscapeString(lang) + `"><head>`)
	b.WriteString(`<meta charset="utf-8"><meta name="viewport" content="width=device-width, initial-scale=1">`)
	b.WriteString(getFavicon(cfg.prefix))
	b.WriteString(`<link rel="stylesheet" href="` + cfg.prefix + `/assets/matching/app.css">`)
	b.WriteString(`<title>` + html.EscapeString(i18n.T(ctx, "AppTitle")) + `</title></head><body><main class="home">`)
	b.WriteString(`<h1>` + html.EscapeString(i18n.T(ctx, "AppTitle")) + `</h1>`)
	b.WriteString(`<p class="subtitle">` + html.EscapeString(i18n.T(ctx, "AppSubtitle")) + `</p>`)
	b.WriteString(languageLinks(cfg, lang))

	if catalog == nil {
		b.WriteString(`<div class="error-message">` + html.EscapeString(i18n.T(ctx, "ContentError")) + `</div>`)
		b.WriteString(`</main></body></html>`)

		return b.String()
	}

	b.WriteString(`<h2>` + html.EscapeString(i18n.T(ctx, "SelectPeriod")) + `</h2><ul class="periods">`)
	for _, p := range catalog.Periods() {
		q := url.Values{"period": {p.ID}}
		if l := r.URL.Query().Get("lang"); l != "" {
			q.Set("lang", l)
		}

		b.WriteString(`<li><a href="` + cfg.prefix + `/play?` + html.EscapeString(q.Encode()) + `">`)
		b.WriteString(`<strong>` + html.EscapeString(p.Title) + `</strong>`)
		if p.Subtitle != "" {
			b.WriteString(` <span>` + html.EscapeString(p.Subtitle) + `</span>`)
		}
		b.WriteString(`</a></li>`)
	}
	b.WriteString(`</ul></main></body></html>`)

	return b.String()
}

// languageLinks offers every loaded language, each named in itself.
func languageLinks(cfg *Config, current string) string {
	langs := i18n.Languages()
	if len(langs) < 2 {
		return ""
	}

	var b strings.Builder

	b.WriteString(`<nav class="languages">`)
	for _, l := range langs {
		name := l
		if tag, err := language.Parse(l); err == nil {
			if n := display.Self.Name(tag); n != "" {
				name = n
			}
		}

		if l == current {
			b.WriteString(`<span lang="` + html.EscapeString(l) + `">` + html.EscapeString(name) + `</span> `)
			continue
		}

		q := url.Values{"lang": {l}}
		b.WriteString(`<a lang="` + html.EscapeString(l) + `" href="` + cfg.prefix + `/?` + html.EscapeString(q.Encode()) + `">`)
		b.WriteString(html.EscapeString(name) + `</a> `)
	}
	b.WriteString(`</nav>`)

	return b.String()
}

func serveHomePage(cfg *Config, catalog *content.Catalog, errs chan<- error) httprouter.Handle {
	h := i18n.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		startTime := time.Now()

		body := homePage(cfg, catalog, r)

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Header().Set("Content-Length", strconv.Itoa(len(body)))
		securityHeaders(cfg, w)

		written, err := w.Write([]byte(body))
		if err != nil {
			errs <- err

			return
		}

		logf(cfg, "SERVE: Home page (%s) to %s in %s",
			humanReadableSize(int64(written)),
			realIP(r),
			time.Since(startTime).Round(time.Microsecond),
		)
	}))

	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		h.ServeHTTP(w, r)
	}
}

func serveHealthCheck(cfg *Config, errs chan<- error) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		securityHeaders(cfg, w)

		_, err := w.Write([]byte("Ok\n"))
		if err != nil {
			errs <- err

			return
		}
	}
}

func serveAssets(cfg *Config, errs chan<- error) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
		fname := path.Join("assets", path.Clean("/"+p.ByName("asset")))

		data, err := assets.ReadFile(fname)
		if err != nil {
			http.NotFound(w, r)

			return
		}

		w.Header().Set("Cache-Control", "public, max-age=3600")
		w.Header().Set("Expires", time.Now().Add(time.Hour).UTC().Format(http.TimeFormat))
		w.Header().Set("Content-Length", strconv.Itoa(len(data)))
		securityHeaders(cfg, w)

		switch strings.ToLower(path.Ext(fname)) {
		case ".css":
			w.Header().Set("Content-Type", "text/css; charset=utf-8")
		case ".js":
			w.Header().Set("Content-Type", "text/javascript; charset=utf-8")
		case ".html":
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
		case ".svg":
			w.Header().Set("Content-Type", "image/svg+xml")
		}

		_, err = w.Write(data)
		if err != nil {
			errs <- err

			return
		}
	}
}

func serveRobots(cfg *Config, errs chan<- error) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
		data := `User-agent: Amazonbot
Disallow: /

User-agent: Applebot-Extended
Disallow: /

User-agent: Bytespider
Disallow: /

User-agent: CCBot
Disallow: /

User-agent: ClaudeBot
Disallow: /

User-agent: Google-Extended
Disallow: /

User-agent: GPTBot
Disallow: /

User-agent: meta-externalagent
Disallow: /`

		w.Header().Set("Cache-Control", "public, max-age=3600")
		w.Header().Set("Expires", time.Now().Add(time.Hour).UTC().Format(http.TimeFormat))
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Header().Set("Content-Length", strconv.Itoa(len(data)))
		securityHeaders(cfg, w)

		_, err := w.Write([]byte(data))
		if err != nil {
			errs <- err

			return
		}
	}
}
