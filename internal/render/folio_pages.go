package render

import (
	"context"
	"net/url"
	"strconv"

	"folio_server/core/domain"

	"github.com/a-h/templ"
)

const shellCSS = `body{background:#fafafa;color:#18181b}main{max-width:640px;margin:0 auto;padding:72px 24px}h1{font-size:2rem}.btn{display:inline-block;background:#18181b;color:#fff;padding:10px 18px;border-radius:8px;text-decoration:none;border:0;font:inherit;cursor:pointer}.muted{color:#71717a}code{background:#f4f4f5;padding:2px 6px;border-radius:4px}`

// Landing is the marketing page at the application root.
func Landing() templ.Component {
	return document(head{Title: "Folio - Build and share your portfolio", Description: "Pick a template, add your projects and publish a page you can share.", Style: shellCSS},
		component(func(ctx context.Context, h *html) {
			h.raw(`<main><h1>Your work, one link.</h1>`)
			h.raw(`<p class="muted">Pick a template, add your projects and publish a page you can share.</p>`)
			h.raw(`<p><a class="btn" href="/login">Get started</a></p>`)
			h.raw(`<p class="muted">Templates: `)
			for i, t := range domain.Templates {
				if i > 0 {
					h.raw(`, `)
				}
				h.text(string(t))
			}
			h.raw(`</p></main>`)
		}))
}

// Login offers the provider sign-in and carries callbackURL through it.
func Login(callbackURL string, providerEnabled bool) templ.Component {
	return document(head{Title: "Sign in - Folio", Style: shellCSS, Robots: "noindex"},
		component(func(ctx context.Context, h *html) {
			h.raw(`<main><h1>Sign in</h1>`)
			if !providerEnabled {
				h.raw(`<p class="muted">Sign-in is not configured on this server.</p></main>`)
				return
			}
			h.raw(`<p><a class="btn" href="`)
			h.url("/api/auth/signin/google?callbackUrl=" + url.QueryEscape(callbackURL))
			h.raw(`">Continue with Google</a></p></main>`)
		}))
}

// DashboardView is what the signed-in shell shows.
type DashboardView struct {
	Session   *domain.Session
	Portfolio *domain.Portfolio
	ShareURL  string
}

func Dashboard(v DashboardView) templ.Component {
	return document(head{Title: "Dashboard - Folio", Style: shellCSS, Robots: "noindex"},
		component(func(ctx context.Context, h *html) {
			h.raw(`<main><h1>Hi, `)
			h.text(v.Session.Name)
			h.raw(`</h1><p class="muted">Signed in as `)
			h.text(v.Session.Email)
			h.raw(`</p>`)

			if p := v.Portfolio; p != nil {
				h.raw(`<p>Template: <code>`)
				h.text(string(p.Template.OrDefault()))
				h.raw(`</code> · Projects: `)
				h.text(strconv.Itoa(len(p.Data.Projects)))
				h.raw(`</p>`)
				if p.Published && v.ShareURL != "" {
					h.raw(`<p>Live at <a href="`)
					h.url(v.ShareURL)
					h.raw(`">`)
					h.text(v.ShareURL)
					h.raw(`</a></p>`)
				} else {
					h.raw(`<p class="muted">Not published yet.</p>`)
				}
			}

			h.raw(`<form method="post" action="/api/auth/signout"><button class="btn" type="submit">Sign out</button></form></main>`)
		}))
}

// NotFound is the standard page for unknown or unpublished slugs.
func NotFound() templ.Component {
	return ErrorPage(404, "This page could not be found.")
}

func ErrorPage(status int, message string) templ.Component {
	return document(head{Title: strconv.Itoa(status) + " - Folio", Style: shellCSS, Robots: "noindex"},
		component(func(ctx context.Context, h *html) {
			h.raw(`<main><h1>`)
			h.text(strconv.Itoa(status))
			h.raw(`</h1><p class="muted">`)
			h.text(message)
			h.raw(`</p><p><a class="btn" href="/">Home</a></p></main>`)
		}))
}
