// Package web embeds the browser UI shell served by the portal.
package web

import (
	"embed"
	"io/fs"
)

//go:embed static
var static embed.FS

// StaticFS returns the static asset tree rooted at the directory containing
// index.html.
func StaticFS() fs.FS {
	sub, err := fs.Sub(static, "static")
	if err != nil {
		// The embedded tree is fixed at compile time.
		panic(err)
	}
	return sub
}
