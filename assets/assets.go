// Package assets embeds the live-plot web page.
package assets

import "embed"

//go:embed index.html graphs.js
var FS embed.FS
