// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 GradeMe Contributors

package web

import (
	"html/template"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/dumindu-Test/GradeMe/internal/guard"
)

// Page bodies are placeholders; the dashboards themselves live in the
// front-end bundle.
var pageTemplate = template.Must(template.New("page").Parse(`<!doctype html>
<html lang="en">
<head><meta charset="utf-8"><title>GradeMe{{if .Title}} | {{.Title}}{{end}}</title></head>
<body>
<h1>GradeMe</h1>
{{- if .Email}}
<p>Signed in as {{.Email}} ({{.Role}})</p>
<p>{{.Title}}</p>
{{- else}}
<p>Sign in to continue.</p>
{{- end}}
</body>
</html>
`))

type pageData struct {
	Title string
	Email string
	Role  string
}

func entryPage(w http.ResponseWriter, _ *http.Request) {
	renderPage(w, pageData{})
}

// rolePage renders a page admitted by guard.Middleware.
func rolePage(w http.ResponseWriter, r *http.Request) {
	user, ok := guard.UserFromContext(r.Context())
	if !ok {
		http.Redirect(w, r, guard.EntryPath, http.StatusSeeOther)
		return
	}
	renderPage(w, pageData{
		Title: mux.Vars(r)["page"],
		Email: user.Email,
		Role:  user.Role.String(),
	})
}

func renderPage(w http.ResponseWriter, data pageData) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	//nolint:errcheck // client may have gone away
	pageTemplate.Execute(w, data)
}
