// Package web embeds the page templates and the static assets served under
// /static/.
package web

import "embed"

//go:embed templates/*.html
var TemplatesFS embed.FS

// StaticFS holds style.css and app.js.
//
//go:embed static/*
var StaticFS embed.FS
