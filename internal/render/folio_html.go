// Package render builds the server-rendered pages as templ components.
package render

import (
	"context"
	"io"

	"github.com/a-h/templ"
)

// html is a small sticky-error writer for building markup by hand.
type html struct {
	w   io.Writer
	err error
}

func (h *html) raw(s string) {
	if h.err != nil {
		return
	}
	_, h.err = io.WriteString(h.w, s)
}

// text writes s escaped for element content or a quoted attribute.
func (h *html) text(s string) {
	h.raw(templ.EscapeString(s))
}

// url writes a sanitized, escaped URL for href/src attributes.
func (h *html) url(u string) {
	h.raw(templ.EscapeString(string(templ.URL(u))))
}

func (h *html) component(ctx context.Context, c templ.Component) {
	if h.err != nil || c == nil {
		return
	}
	h.err = c.Render(ctx, h.w)
}

func component(fn func(ctx context.Context, h *html)) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &html{w: w}
		fn(ctx, h)
		return h.err
	})
}

type head struct {
	Title       string
	Description string
	Style       string
	Robots      string
}

// document wraps body in the shared page shell.
func document(meta head, body templ.Component) templ.Component {
	return component(func(ctx context.Context, h *html) {
		h.raw(`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8">`)
		h.raw(`<meta name="viewport" content="width=device-width, initial-scale=1">`)
		h.raw(`<title>`)
		h.text(meta.Title)
		h.raw(`</title>`)
		if meta.Description != "" {
			h.raw(`<meta name="description" content="`)
			h.text(meta.Description)
			h.raw(`">`)
			h.raw(`<meta property="og:description" content="`)
			h.text(meta.Description)
			h.raw(`">`)
		}
		h.raw(`<meta property="og:title" content="`)
		h.text(meta.Title)
		h.raw(`">`)
		if meta.Robots != "" {
			h.raw(`<meta name="robots" content="`)
			h.text(meta.Robots)
			h.raw(`">`)
		}
		h.raw(`<style>`)
		h.raw(baseCSS)
		h.raw(meta.Style)
		h.raw(`</style></head><body>`)
		h.component(ctx, body)
		h.raw(`</body></html>`)
	})
}

const baseCSS = `*{box-sizing:border-box}body{margin:0;font-family:system-ui,-apple-system,"Segoe UI",sans-serif;line-height:1.6}img,video{max-width:100%;display:block}a{color:inherit}`
