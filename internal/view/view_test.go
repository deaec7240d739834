package view

import (
	"bytes"
	"reflect"
	"regexp"
	"strings"
	"testing"

	"github.com/jpalmerr/mcstatus/config"
	"github.com/jpalmerr/mcstatus/dashboard"
	"github.com/jpalmerr/mcstatus/internal/store"
)

func testSite() *config.Site {
	return &config.Site{
		ServerAddress: "mc.example.com",
		ServerPort:    25565,
		GitHub:        "https://github.com/example/server",
		Downloads: []config.Download{
			{Name: "Modpack", File: "/downloads/modpack.zip"},
			{Name: "Launcher", File: "/downloads/launcher.exe"},
		},
	}
}

func onlineStatus() *store.Status {
	return &store.Status{
		Online:      true,
		ServerName:  "Test Server",
		Version:     "1.21.1",
		Players:     &store.Players{Online: 3, Max: 20},
		PlayerNames: []string{"Steve", "Alex", "Notch"},
	}
}

func testRenderer(t *testing.T) *Renderer {
	t.Helper()
	r, err := New(dashboard.Assets)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return r
}

func render(t *testing.T, p *Page) string {
	t.Helper()
	var buf bytes.Buffer
	if err := testRenderer(t).Render(&buf, p); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	return buf.String()
}

func TestNewPage_NoSite(t *testing.T) {
	if p := NewPage(nil, onlineStatus(), false); p != nil {
		t.Errorf("NewPage(nil, ...) = %+v, want nil", p)
	}
}

func TestNewPage_States(t *testing.T) {
	tests := []struct {
		name        string
		status      *store.Status
		wantState   State
		wantTitle   string
		wantBadge   string
		wantVersion string
		wantPlayers []string
	}{
		{
			name:      "checking",
			status:    nil,
			wantState: StateChecking,
			wantTitle: "...",
			wantBadge: "检测中...",
		},
		{
			name:        "online",
			status:      onlineStatus(),
			wantState:   StateOnline,
			wantTitle:   "Test Server",
			wantBadge:   "在线 3/20",
			wantVersion: "1.21.1",
			wantPlayers: []string{"Steve", "Alex", "Notch"},
		},
		{
			name:      "online without counts",
			status:    &store.Status{Online: true, ServerName: "Bare"},
			wantState: StateOnline,
			wantTitle: "Bare",
			wantBadge: "在线 0/0",
		},
		{
			name: "offline hides version and players",
			status: &store.Status{
				Online:      false,
				Version:     "1.21.1",
				PlayerNames: []string{"ghost"},
			},
			wantState: StateOffline,
			wantTitle: "服务器离线",
			wantBadge: "离线",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewPage(testSite(), tt.status, false)
			if p.State != tt.wantState {
				t.Errorf("State = %q, want %q", p.State, tt.wantState)
			}
			if p.Title != tt.wantTitle {
				t.Errorf("Title = %q, want %q", p.Title, tt.wantTitle)
			}
			if p.Badge != tt.wantBadge {
				t.Errorf("Badge = %q, want %q", p.Badge, tt.wantBadge)
			}
			if p.Version != tt.wantVersion {
				t.Errorf("Version = %q, want %q", p.Version, tt.wantVersion)
			}
			if !reflect.DeepEqual(p.PlayerNames, tt.wantPlayers) {
				t.Errorf("PlayerNames = %v, want %v", p.PlayerNames, tt.wantPlayers)
			}
			if p.Address != "mc.example.com" {
				t.Errorf("Address = %q, want mc.example.com", p.Address)
			}
		})
	}
}

func TestOnlineBadge(t *testing.T) {
	if got := OnlineBadge(&store.Players{Online: 3, Max: 20}); got != "在线 3/20" {
		t.Errorf("OnlineBadge() = %q, want %q", got, "在线 3/20")
	}
	if got := OnlineBadge(nil); got != "在线 0/0" {
		t.Errorf("OnlineBadge(nil) = %q, want %q", got, "在线 0/0")
	}
}

func TestRender_NilPageWritesNothing(t *testing.T) {
	r := testRenderer(t)
	var buf bytes.Buffer
	if err := r.Render(&buf, nil); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if err := r.RenderStatus(&buf, nil); err != nil {
		t.Fatalf("RenderStatus() error = %v", err)
	}
	if buf.Len() != 0 {
		t.Errorf("rendered %d bytes for nil page, want 0", buf.Len())
	}
}

func TestRender_AddressText(t *testing.T) {
	html := render(t, NewPage(testSite(), nil, false))

	m := regexp.MustCompile(`<code id="address">([^<]*)</code>`).FindStringSubmatch(html)
	if m == nil {
		t.Fatalf("address element not found in:\n%s", html)
	}
	if m[1] != "mc.example.com" {
		t.Errorf("address text = %q, want %q", m[1], "mc.example.com")
	}
	if !strings.Contains(html, "服务器地址") {
		t.Error("address label missing")
	}
}

func TestRender_Online(t *testing.T) {
	html := render(t, NewPage(testSite(), onlineStatus(), false))

	for _, want := range []string{
		`<h1 class="title">Test Server</h1>`,
		"Minecraft 1.21.1",
		"badge-online",
		"在线 3/20",
		"当前玩家",
	} {
		if !strings.Contains(html, want) {
			t.Errorf("page missing %q", want)
		}
	}

	players := regexp.MustCompile(`<span class="player">([^<]*)</span>`).FindAllStringSubmatch(html, -1)
	var got []string
	for _, m := range players {
		got = append(got, m[1])
	}
	if want := []string{"Steve", "Alex", "Notch"}; !reflect.DeepEqual(got, want) {
		t.Errorf("player badges = %v, want %v", got, want)
	}
}

func TestRender_Offline(t *testing.T) {
	html := render(t, NewPage(testSite(), &store.Status{Online: false}, false))

	for _, want := range []string{"服务器离线", "badge-offline", ">离线<"} {
		if !strings.Contains(html, want) {
			t.Errorf("page missing %q", want)
		}
	}
	for _, unwanted := range []string{`class="player"`, "当前玩家", "Minecraft "} {
		if strings.Contains(html, unwanted) {
			t.Errorf("offline page should not contain %q", unwanted)
		}
	}
}

func TestRender_Checking(t *testing.T) {
	html := render(t, NewPage(testSite(), nil, false))
	if !strings.Contains(html, "检测中...") {
		t.Error("checking badge missing")
	}
	if strings.Contains(html, `class="dot"`) {
		t.Error("checking badge should have no status dot")
	}
}

func TestRender_CopiedFlag(t *testing.T) {
	notCopied := render(t, NewPage(testSite(), nil, false))
	if !strings.Contains(notCopied, `<p id="copied" class="copied" hidden>`) {
		t.Error("confirmation should be hidden when not copied")
	}

	copied := render(t, NewPage(testSite(), nil, true))
	if !strings.Contains(copied, `<p id="copied" class="copied">已复制到剪贴板!</p>`) {
		t.Error("confirmation should be visible when copied")
	}
	if !strings.Contains(copied, "btn-copy copied") {
		t.Error("copy button should show the copied state")
	}
}

func TestRender_DownloadsAndGitHub(t *testing.T) {
	html := render(t, NewPage(testSite(), nil, false))

	for _, want := range []string{
		`<a class="btn" href="/downloads/modpack.zip" download>`,
		`<span>Modpack</span>`,
		`<a class="btn" href="/downloads/launcher.exe" download>`,
		`href="https://github.com/example/server"`,
	} {
		if !strings.Contains(html, want) {
			t.Errorf("page missing %q", want)
		}
	}
}

func TestRender_EscapesServerText(t *testing.T) {
	st := &store.Status{Online: true, ServerName: "<script>alert(1)</script>", PlayerNames: []string{"<b>x</b>"}}
	site := testSite()
	site.Downloads = []config.Download{{Name: "bad", File: "javascript:alert(1)"}}

	html := render(t, NewPage(site, st, false))
	if strings.Contains(html, "<script>alert(1)</script>") || strings.Contains(html, "<b>x</b>") {
		t.Error("server supplied text must be escaped")
	}
	if strings.Contains(html, `href="javascript:`) {
		t.Error("unsafe download URL must be neutralized")
	}
}

func TestStatusHTML_FragmentOnly(t *testing.T) {
	r := testRenderer(t)
	frag, err := r.StatusHTML(NewPage(testSite(), onlineStatus(), false))
	if err != nil {
		t.Fatalf("StatusHTML() error = %v", err)
	}
	if !strings.Contains(frag, "在线 3/20") {
		t.Error("fragment missing badge")
	}
	if strings.Contains(frag, "<html") || strings.Contains(frag, "服务器地址") {
		t.Error("fragment should contain only the status section")
	}
}
