package visualization

import "embed"

// templates contains the embedded HTML chart templates.
//
//go:embed templates/*
var templates embed.FS
