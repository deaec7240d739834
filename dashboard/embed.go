// Package dashboard embeds the status page templates, script and stylesheet.
//
// The templates are rendered by internal/view; the static files are served
// by internal/server under /assets/.
package dashboard

import "embed"

// Assets is the embedded filesystem:
//
//	assets/
//	  templates/index.html.tmpl   - full page
//	  templates/status.html.tmpl  - status fragment, also pushed over SSE
//	  static/app.js               - copy button and live updates
//	  static/app.css              - page styles
//
//go:embed assets
var Assets embed.FS
