package web

import "embed"

// StaticFiles embeds the stylesheet and map script served under /static/.
//
//go:embed static/*
var StaticFiles embed.FS
