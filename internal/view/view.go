// Package view turns the site config and the current status into the
// status page.
//
// [NewPage] is a pure function of (site, status, copied). The page has
// three states: no site (nothing is rendered), no status yet (checking) and
// a resolved status (online or offline).
package view

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
	"io/fs"

	"github.com/jpalmerr/mcstatus/config"
	"github.com/jpalmerr/mcstatus/internal/store"
)

// State is the page's status state.
type State string

const (
	StateChecking State = "checking"
	StateOnline   State = "online"
	StateOffline  State = "offline"
)

// Page copy.
const (
	TitleChecking = "..."
	TitleOffline  = "服务器离线"
	BadgeChecking = "检测中..."
	BadgeOffline  = "离线"
	CopiedMessage = "已复制到剪贴板!"
	LabelPlayers  = "当前玩家"
	LabelAddress  = "服务器地址"
)

// Page is everything the templates need.
type Page struct {
	State       State
	Title       string
	Badge       string
	Version     string
	PlayerNames []string
	Address     string
	GitHub      string
	Downloads   []config.Download
	Copied      bool
}

// NewPage builds the page model. It returns nil when site is nil.
func NewPage(site *config.Site, status *store.Status, copied bool) *Page {
	if site == nil {
		return nil
	}

	p := &Page{
		Address:   site.ServerAddress,
		GitHub:    site.GitHub,
		Downloads: site.Downloads,
		Copied:    copied,
	}

	switch {
	case status == nil:
		p.State = StateChecking
		p.Title = TitleChecking
		p.Badge = BadgeChecking
	case status.Online:
		p.State = StateOnline
		p.Title = status.ServerName
		p.Badge = OnlineBadge(status.Players)
		p.Version = status.Version
		p.PlayerNames = status.PlayerNames
	default:
		p.State = StateOffline
		p.Title = TitleOffline
		p.Badge = BadgeOffline
	}
	return p
}

// OnlineBadge formats the online badge. Missing counts read as zero.
func OnlineBadge(players *store.Players) string {
	var online, capacity int
	if players != nil {
		online, capacity = players.Online, players.Max
	}
	return fmt.Sprintf("在线 %d/%d", online, capacity)
}

// Renderer executes the page templates.
type Renderer struct {
	tmpl *template.Template
}

// New parses the templates under assets/templates in assets.
func New(assets fs.FS) (*Renderer, error) {
	tmpl, err := template.New("page").ParseFS(assets, "assets/templates/*.tmpl")
	if err != nil {
		return nil, fmt.Errorf("parse page templates: %w", err)
	}
	for _, name := range []string{"index", "status"} {
		if tmpl.Lookup(name) == nil {
			return nil, fmt.Errorf("template %q not defined", name)
		}
	}
	return &Renderer{tmpl: tmpl}, nil
}

// Render writes the full page. A nil page renders nothing.
func (r *Renderer) Render(w io.Writer, p *Page) error {
	if p == nil {
		return nil
	}
	return r.execute(w, "index", p)
}

// RenderStatus writes only the status fragment. A nil page renders nothing.
func (r *Renderer) RenderStatus(w io.Writer, p *Page) error {
	if p == nil {
		return nil
	}
	return r.execute(w, "status", p)
}

// StatusHTML is RenderStatus into a string.
func (r *Renderer) StatusHTML(p *Page) (string, error) {
	var buf bytes.Buffer
	if err := r.RenderStatus(&buf, p); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// execute renders into a buffer first so a template error never leaves a
// half-written page.
func (r *Renderer) execute(w io.Writer, name string, p *Page) error {
	var buf bytes.Buffer
	if err := r.tmpl.ExecuteTemplate(&buf, name, p); err != nil {
		return fmt.Errorf("render %s: %w", name, err)
	}
	_, err := buf.WriteTo(w)
	return err
}
