package cards

import (
	"fmt"
	"html"
	"strings"
)

// defaultCSP denies all network-origin loads while allowing inline script and
// style execution and data:/blob: images. Self-contained chart code keeps
// working; exfiltration to arbitrary origins and remote script/style/image
// loads are blocked.
const defaultCSP = "default-src 'none'; script-src 'unsafe-inline'; style-src 'unsafe-inline'; img-src data: blob:"

// sandboxFlags restricts the frame to inline script execution only: no
// same-origin access, no top navigation, no form submission, no popups.
const sandboxFlags = "allow-scripts"

const placeholderHTML = `<div class="card-placeholder">No content</div>`

// ErrorFragment renders a small inline error message meant to be passed
// through the sandbox path in place of card output. The message is escaped;
// callers should keep it fixed and non-sensitive.
func ErrorFragment(message string) string {
	return fmt.Sprintf(`<div style="color:#c0392b;font:13px sans-serif;padding:8px">%s</div>`, html.EscapeString(message))
}

// SandboxRenderer wraps untrusted card HTML into an isolated, inline frame so
// card script cannot reach the host page's cookies, storage, DOM, or script
// globals, and cannot navigate the page or open popups. Data flows one way,
// host to sandbox; nothing is read back.
type SandboxRenderer struct {
	csp         string
	scriptHosts []string
}

// SandboxOption customizes renderer behavior.
type SandboxOption func(*SandboxRenderer)

// WithScriptHost allows scripts from an explicit origin in addition to inline
// script. Used by the local preview path, whose chart runtime loads from a
// pinned assets host; backend card content keeps the default inline-only CSP.
func WithScriptHost(origin string) SandboxOption {
	return func(r *SandboxRenderer) {
		origin = strings.TrimSpace(origin)
		if origin != "" {
			r.scriptHosts = append(r.scriptHosts, origin)
		}
	}
}

// NewSandboxRenderer builds a renderer with the fixed default policy.
func NewSandboxRenderer(opts ...SandboxOption) *SandboxRenderer {
	r := &SandboxRenderer{csp: defaultCSP}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Policy returns the Content-Security-Policy string embedded in sandbox
// documents.
func (r *SandboxRenderer) Policy() string {
	if len(r.scriptHosts) == 0 {
		return r.csp
	}
	hosts := strings.Join(r.scriptHosts, " ")
	return strings.Replace(r.csp, "script-src 'unsafe-inline'", "script-src 'unsafe-inline' "+hosts, 1)
}

// BuildDocument wraps a card HTML fragment into a complete standalone
// document carrying the sandbox CSP. The fragment is embedded as-is; the
// surrounding frame is what isolates it.
func (r *SandboxRenderer) BuildDocument(fragment string) string {
	var b strings.Builder
	b.WriteString("<!DOCTYPE html><html><head>")
	b.WriteString(`<meta charset="utf-8">`)
	b.WriteString(`<meta http-equiv="Content-Security-Policy" content="`)
	b.WriteString(html.EscapeString(r.Policy()))
	b.WriteString(`">`)
	b.WriteString(`<style>html,body{margin:0;padding:0;width:100%;height:100%}</style>`)
	b.WriteString("</head><body>")
	b.WriteString(fragment)
	b.WriteString("</body></html>")
	return b.String()
}

// ContainerID returns the host-side identifier for a card's sandbox frame.
func ContainerID(cardID string) string {
	return "card-" + cardID
}

// RenderFrame emits the host-side markup for one card: a sandboxed inline
// frame filling its grid cell, identified by the card id. Empty html renders
// a neutral placeholder instead of an empty sandbox.
func (r *SandboxRenderer) RenderFrame(cardID, fragment string) string {
	return r.renderFrame(cardID, fragment, false)
}

// RenderFilteredFrame behaves like RenderFrame but overlays a small
// non-interactive badge indicating the card's query was filtered.
func (r *SandboxRenderer) RenderFilteredFrame(cardID, fragment string) string {
	return r.renderFrame(cardID, fragment, true)
}

func (r *SandboxRenderer) renderFrame(cardID, fragment string, filtered bool) string {
	if strings.TrimSpace(fragment) == "" {
		fragment = placeholderHTML
	}
	doc := r.BuildDocument(fragment)
	var b strings.Builder
	b.WriteString(`<div id="` + html.EscapeString(ContainerID(cardID)) + `" style="position:relative;width:100%;height:100%">`)
	b.WriteString(`<iframe sandbox="` + sandboxFlags + `" title="` + html.EscapeString(cardID) + `"`)
	b.WriteString(` style="width:100%;height:100%;border:0" srcdoc="` + html.EscapeString(doc) + `"></iframe>`)
	if filtered {
		b.WriteString(`<span class="card-filtered-badge" style="position:absolute;top:4px;right:4px;pointer-events:none">filtered</span>`)
	}
	b.WriteString("</div>")
	return b.String()
}
