package render

import (
	"context"

	"folio_server/core/domain"

	"github.com/a-h/templ"
)

// Portfolio renders a published portfolio with the layout named by p.Template.
// Unknown layouts fall back to minimal. Callers gate on Published.
func Portfolio(p *domain.Portfolio) templ.Component {
	var (
		body  templ.Component
		style string
	)
	switch p.Template.OrDefault() {
	case domain.TemplateModern:
		body, style = modernLayout(p), modernCSS
	case domain.TemplateCreative:
		body, style = creativeLayout(p), creativeCSS
	default:
		body, style = minimalLayout(p), minimalCSS
	}
	return document(head{
		Title:       p.PageTitle(),
		Description: p.Data.Bio,
		Style:       style,
	}, body)
}

const minimalCSS = `body{background:#fff;color:#111}main{max-width:720px;margin:0 auto;padding:64px 24px}h1{font-size:2.25rem;margin:0}.role{color:#555;margin:4px 0 24px}.skills{color:#555}.project{border-top:1px solid #eee;padding:24px 0}.project h3{margin:0 0 8px}.tech{font-size:.85rem;color:#777}.social a{margin-right:16px}.asset{margin:12px 0}`

func minimalLayout(p *domain.Portfolio) templ.Component {
	d := p.Data
	return component(func(ctx context.Context, h *html) {
		h.raw(`<main class="tpl-minimal"><header><h1>`)
		h.text(d.Name)
		h.raw(`</h1>`)
		if d.Title != "" {
			h.raw(`<p class="role">`)
			h.text(d.Title)
			h.raw(`</p>`)
		}
		h.raw(`</header>`)
		bio(h, d.Bio)
		if len(d.Skills) > 0 {
			h.raw(`<p class="skills">`)
			for i, s := range d.Skills {
				if i > 0 {
					h.raw(` · `)
				}
				h.text(s)
			}
			h.raw(`</p>`)
		}
		h.raw(`<section class="projects">`)
		for _, proj := range d.Projects {
			h.raw(`<article class="project"><h3>`)
			h.text(proj.Title)
			h.raw(`</h3>`)
			projectBody(h, proj)
			h.raw(`</article>`)
		}
		h.raw(`</section>`)
		socialLinks(h, d.Social)
		h.raw(`</main>`)
	})
}

const modernCSS = `body{background:#f5f7fb;color:#1c2333}.hero{background:linear-gradient(135deg,#4f46e5,#06b6d4);color:#fff;padding:80px 24px;text-align:center}.hero h1{font-size:3rem;margin:0}.hero .role{opacity:.9;font-size:1.25rem}.wrap{max-width:1040px;margin:0 auto;padding:48px 24px}.pills span{display:inline-block;background:#e0e7ff;color:#3730a3;border-radius:999px;padding:4px 12px;margin:4px}.grid{display:grid;grid-template-columns:repeat(auto-fill,minmax(300px,1fr));gap:24px}.card{background:#fff;border-radius:16px;box-shadow:0 4px 24px rgba(0,0,0,.06);padding:20px}.card h3{margin-top:0}.tech{font-size:.8rem;color:#64748b}.social{text-align:center;padding:32px}.social a{margin:0 12px}.asset{margin:12px 0;border-radius:12px;overflow:hidden}`

func modernLayout(p *domain.Portfolio) templ.Component {
	d := p.Data
	return component(func(ctx context.Context, h *html) {
		h.raw(`<div class="tpl-modern"><header class="hero"><h1>`)
		h.text(d.Name)
		h.raw(`</h1>`)
		if d.Title != "" {
			h.raw(`<p class="role">`)
			h.text(d.Title)
			h.raw(`</p>`)
		}
		h.raw(`</header><div class="wrap">`)
		bio(h, d.Bio)
		if len(d.Skills) > 0 {
			h.raw(`<div class="pills">`)
			for _, s := range d.Skills {
				h.raw(`<span>`)
				h.text(s)
				h.raw(`</span>`)
			}
			h.raw(`</div>`)
		}
		if len(d.Projects) > 0 {
			h.raw(`<h2>Projects</h2><div class="grid">`)
			for _, proj := range d.Projects {
				h.raw(`<article class="card"><h3>`)
				h.text(proj.Title)
				h.raw(`</h3>`)
				projectBody(h, proj)
				h.raw(`</article>`)
			}
			h.raw(`</div>`)
		}
		h.raw(`</div>`)
		socialLinks(h, d.Social)
		h.raw(`</div>`)
	})
}

const creativeCSS = `body{background:#111;color:#f5f5f5}.intro{padding:96px 6vw 48px}.intro h1{font-size:clamp(3rem,9vw,7rem);line-height:1;margin:0;color:#facc15}.intro .role{font-size:1.5rem;color:#f472b6}.skills{padding:0 6vw;display:flex;flex-wrap:wrap;gap:8px}.skills span{border:2px solid #f5f5f5;padding:6px 14px;transform:rotate(-2deg)}.showcase{padding:48px 6vw}.piece{display:grid;grid-template-columns:1fr 1fr;gap:32px;margin-bottom:72px;align-items:center}.piece:nth-child(even) .media{order:2}.piece h3{font-size:2rem;margin:0;color:#38bdf8}.tech{color:#a3a3a3}.social{padding:48px 6vw}.social a{margin-right:24px;color:#facc15}@media(max-width:720px){.piece{grid-template-columns:1fr}}`

func creativeLayout(p *domain.Portfolio) templ.Component {
	d := p.Data
	return component(func(ctx context.Context, h *html) {
		h.raw(`<div class="tpl-creative"><header class="intro"><h1>`)
		h.text(d.Name)
		h.raw(`</h1>`)
		if d.Title != "" {
			h.raw(`<p class="role">`)
			h.text(d.Title)
			h.raw(`</p>`)
		}
		bio(h, d.Bio)
		h.raw(`</header>`)
		if len(d.Skills) > 0 {
			h.raw(`<div class="skills">`)
			for _, s := range d.Skills {
				h.raw(`<span>`)
				h.text(s)
				h.raw(`</span>`)
			}
			h.raw(`</div>`)
		}
		h.raw(`<section class="showcase">`)
		for _, proj := range d.Projects {
			h.raw(`<article class="piece"><div class="media">`)
			assets(h, proj.Assets)
			h.raw(`</div><div class="info"><h3>`)
			h.text(proj.Title)
			h.raw(`</h3>`)
			projectText(h, proj)
			h.raw(`</div></article>`)
		}
		h.raw(`</section>`)
		socialLinks(h, d.Social)
		h.raw(`</div>`)
	})
}

func bio(h *html, s string) {
	if s == "" {
		return
	}
	h.raw(`<p class="bio">`)
	h.text(s)
	h.raw(`</p>`)
}

func projectBody(h *html, proj domain.Project) {
	assets(h, proj.Assets)
	projectText(h, proj)
}

func projectText(h *html, proj domain.Project) {
	if proj.Description != "" {
		h.raw(`<p>`)
		h.text(proj.Description)
		h.raw(`</p>`)
	}
	if len(proj.Technologies) > 0 {
		h.raw(`<p class="tech">`)
		for i, t := range proj.Technologies {
			if i > 0 {
				h.raw(`, `)
			}
			h.text(t)
		}
		h.raw(`</p>`)
	}
	if proj.ProjectURL != "" {
		h.raw(`<a class="project-link" rel="noopener" target="_blank" href="`)
		h.url(proj.ProjectURL)
		h.raw(`">View project</a>`)
	}
}

func assets(h *html, list []domain.Asset) {
	for _, a := range list {
		switch a.Type {
		case domain.AssetVideo:
			h.raw(`<video class="asset" controls preload="metadata" src="`)
			h.url(a.URL)
			h.raw(`"></video>`)
		default:
			h.raw(`<img class="asset" loading="lazy" alt="" src="`)
			h.url(a.URL)
			h.raw(`">`)
		}
	}
}

func socialLinks(h *html, s domain.Social) {
	if s.IsEmpty() {
		return
	}
	h.raw(`<nav class="social">`)
	for _, l := range []struct{ label, href string }{
		{"GitHub", s.GitHub},
		{"LinkedIn", s.LinkedIn},
		{"Twitter", s.Twitter},
		{"Website", s.Website},
	} {
		if l.href == "" {
			continue
		}
		h.raw(`<a rel="noopener me" target="_blank" href="`)
		h.url(l.href)
		h.raw(`">`)
		h.text(l.label)
		h.raw(`</a>`)
	}
	h.raw(`</nav>`)
}
