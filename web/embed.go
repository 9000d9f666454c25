// Package web holds the page templates and static assets compiled into the
// binaries.
package web

import (
	"embed"
	"io/fs"
)

//go:embed templates static
var files embed.FS

// Templates returns the template tree: layouts/, components/ and pages/.
func Templates() fs.FS {
	return sub("templates")
}

// Static returns the assets served under /static/.
func Static() fs.FS {
	return sub("static")
}

func sub(dir string) fs.FS {
	fsys, err := fs.Sub(files, dir)
	if err != nil {
		panic(err)
	}
	return fsys
}
