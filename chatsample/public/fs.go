// Package public carries the embedded web assets of the chat sample.
package public

import "embed"

//go:embed *.html *.js *.css
var FS embed.FS
