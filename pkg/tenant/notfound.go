package tenant

import (
	"context"
	"io"
	"net/http"
	"strings"

	"github.com/a-h/templ"
)

// NotFoundMessage is the fixed body returned for unknown tenant hosts.
// It never contains tenant-specific content.
const NotFoundMessage = "Business not found. Please check the URL and try again."

// NotFoundPage renders the static business-not-found HTML page.
func NotFoundPage() templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := io.WriteString(w, `<!DOCTYPE html><html lang="en"><head><meta charset="utf-8">`+
			`<meta name="viewport" content="width=device-width, initial-scale=1">`+
			`<title>Business not found</title></head><body><main><h1>Business not found</h1><p>`+
			templ.EscapeString(NotFoundMessage)+`</p></main></body></html>`)
		return err
	})
}

// NotFoundHandler writes a 404 with NotFoundMessage, as HTML for browsers and
// plain text otherwise.
func NotFoundHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Cache-Control", "no-store")
	if strings.Contains(r.Header.Get("Accept"), "text/html") {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusNotFound)
		_ = NotFoundPage().Render(r.Context(), w)
		return
	}
	http.Error(w, NotFoundMessage, http.StatusNotFound)
}
