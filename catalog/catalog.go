// Package catalog embeds the default Mikdash content: shop items,
// offerings, step templates, achievements, the courtyard layout and the
// Levites' daily psalms. Load it with loader.LoadFS(catalog.FS, ".").
package catalog

import "embed"

//go:embed *.lua
var FS embed.FS
