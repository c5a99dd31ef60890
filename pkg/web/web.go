// Package web embeds the static pages served at the server root.
package web

import "embed"

//go:embed index.html 404.html
var Content embed.FS
