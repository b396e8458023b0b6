/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"embed"
	"net/http"
	"path"
	"strings"

	"github.com/julienschmidt/httprouter"
)

//go:embed favicons/*
var favicons embed.FS

func getFavicon(prefix string) string {
	return `<link rel="icon" type="image/svg+xml" href="` + prefix + `/favicons/favicon.svg">
	<link rel="manifest" href="` + prefix + `/favicons/site.webmanifest" crossorigin="use-credentials">
	<meta name="theme-color" content="#166534">`
}

func serveFavicons(cfg *Config, errs chan<- error) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
		fname := path.Join("favicons", path.Clean("/"+p.ByName("favicon")))

		data, err := favicons.ReadFile(fname)
		if err != nil {
			http.NotFound(w, r)

			return
		}

		switch {
		case strings.HasSuffix(fname, ".svg"):
			w.Header().Set("Content-Type", "image/svg+xml")
		case strings.HasSuffix(fname, ".webmanifest"):
			w.Header().Set("Content-Type", "application/manifest+json")
		}
		w.Header().Set("Cache-Control", "public, max-age=86400")
		securityHeaders(cfg, w)

		_, err = w.Write(data)
		if err != nil {
			errs <- err

			return
		}
	}
}
