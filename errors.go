/*
Copyright © 2025 Seednode <seednode@seedno.de>
*/

package main

import (
	"errors"
	"fmt"
	"html"
	"log"
	"strings"
	"time"
)

var (
	ErrNoContent     = errors.New("no period catalog is loaded")
	ErrMissingGameID = errors.New("missing game id")
)

func logf(cfg *Config, format string, args ...any) {
	if !cfg.verbose {
		return
	}

	log.Printf("%s | "+format, append([]any{time.Now().Format(logDate)}, args...)...)
}

// errorf is logf for failures that are reported even without --verbose.
func errorf(format string, args ...any) {
	log.Printf("%s | ERROR: "+format, append([]any{time.Now().Format(logDate)}, args...)...)
}

func newPage(prefix, title, body string) string {
	var htmlBody strings.Builder

	htmlBody.WriteString(`<!DOCTYPE html><html lang="en"><head>`)
	htmlBody.WriteString(getFavicon(prefix))
	htmlBody.WriteString(`<style>`)
	htmlBody.WriteString(`html,body,a{display:block;height:100%;width:100%;text-decoration:none;color:inherit;cursor:auto;}</style>`)
	htmlBody.WriteString(fmt.Sprintf("<title>%s</title></head>", html.EscapeString(title)))
	htmlBody.WriteString(fmt.Sprintf("<body><a href=\"%s/\">%s</a></body></html>", prefix, html.EscapeString(body)))

	return htmlBody.String()
}

// humanReadableSize formats a byte count for log lines.
func humanReadableSize(bytes int64) string {
	const unit int64 = 1000
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := unit, 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB",
		float64(bytes)/float64(div),
		"kMGTPE"[exp])
}
