/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"fmt"
	"html"
	"log"
	"strings"
	"time"
)

func logf(cfg *Config, format string, args ...any) {
	if !cfg.verbose {
		return
	}

	log.Printf("%s | "+format, append([]any{time.Now().Format(logDate)}, args...)...)
}

func errorf(format string, args ...any) {
	log.Printf("%s | ERROR: "+format, append([]any{time.Now().Format(logDate)}, args...)...)
}

func newPage(cfg *Config, title, body string) string {
	var htmlBody strings.Builder

	htmlBody.WriteString(`<!DOCTYPE html><html lang="en"><head>`)
	htmlBody.WriteString(`<meta name="viewport" content="width=device-width, initial-scale=1">`)
	htmlBody.WriteString(getFavicon(cfg))
	htmlBody.WriteString(fmt.Sprintf(`<link rel="stylesheet" href="%s/assets/play/app.css">`, cfg.prefix))
	htmlBody.WriteString(fmt.Sprintf("<title>%s</title></head>", html.EscapeString(title)))
	htmlBody.WriteString(fmt.Sprintf(`<body class="page">%s</body></html>`, body))

	return htmlBody.String()
}
