// Package tui provides the interactive Bubble Tea dashboard for ConstructERP.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"constructerp/internal/config"
	"constructerp/internal/model"
	"constructerp/internal/pipeline"
	"constructerp/internal/service"
	"constructerp/internal/tui/components"
	"constructerp/internal/tui/theme"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/sync/errgroup"
)

// Backend is the data service the dashboard drives.
type Backend interface {
	pipeline.DashboardSource
	Login(ctx context.Context, username string) (model.User, error)
	LookupUser(ctx context.Context, username string) (model.User, error)
	Logout(ctx context.Context, username string)
	Projects(ctx context.Context) ([]model.Project, error)
	Invoices(ctx context.Context) ([]model.Invoice, error)
	Accounts(ctx context.Context) ([]model.Account, error)
	Users(ctx context.Context) ([]model.User, error)
	AuditLog(ctx context.Context, limit int) ([]model.AuditEntry, error)
	CreateInvoice(ctx context.Context, actor string, req service.NewInvoice) (model.Invoice, error)
}

// SessionMsg reports the user restored from the saved session, if any.
type SessionMsg struct {
	User *model.User
}

// LoginResultMsg is sent when a login attempt finishes.
type LoginResultMsg struct {
	User model.User
	Err  error
	// SaveErr is set when the session could not be persisted.
	SaveErr error
}

// DashboardLoadedMsg carries the joined dashboard fetches.
type DashboardLoadedMsg struct {
	Gen       int // refresh generation the fetch belongs to
	Dashboard *pipeline.Dashboard
	LoadTime  time.Duration
	Err       error
}

// LedgerLoadedMsg carries the finance tab data.
type LedgerLoadedMsg struct {
	Gen      int
	Projects []model.Project
	Invoices []model.Invoice
	Accounts []model.Account
	Err      error
}

// AdminLoadedMsg carries the admin tab data.
type AdminLoadedMsg struct {
	Gen   int
	Users []model.User
	Audit []model.AuditEntry
	Err   error
}

// InvoiceCreatedMsg is sent when the new-invoice form has been submitted.
type InvoiceCreatedMsg struct {
	Invoice model.Invoice
	Err     error
}

type loggedOutMsg struct{}

type tickMsg time.Time

type phase int

const (
	phaseRestoring phase = iota // checking the saved session
	phaseLogin
	phaseLoading // logged in, first dashboard load in flight
	phaseReady
)

const (
	tabDashboard = iota
	tabFinance
	tabAdmin
	tabSettings
)

const (
	minTerminalWidth = 80
	compactWidth     = 120
	maxContentWidth  = 180
	minContentHeight = 5

	auditLimit   = 50
	fetchTimeout = 30 * time.Second
	flashTTL     = 4 * time.Second
)

// App is the root Bubble Tea model.
type App struct {
	svc Backend
	cfg config.Config

	phase phase
	user  *model.User
	login loginState

	// Data
	dash     *pipeline.Dashboard
	projects []model.Project
	invoices []model.Invoice
	accounts []model.Account
	users    []model.User
	audit    []model.AuditEntry
	loadTime time.Duration
	loadedAt time.Time
	loadErr  error

	refreshing bool
	pending    int // outstanding fetches in the current refresh
	gen        int // bumped per refresh and on logout; older loads are dropped

	// UI state
	width     int
	height    int
	activeTab int
	showHelp  bool
	spinner   spinner.Model

	flash    string
	flashErr bool
	flashAt  time.Time

	// Per-tab state
	finance  financeState
	admin    adminState
	settings settingsState
}

// NewApp creates the dashboard model over svc.
func NewApp(svc Backend, cfg config.Config) App {
	theme.SetActive(cfg.Appearance.Theme)

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.Active.Accent).Background(theme.Active.Surface)

	return App{
		svc:     svc,
		cfg:     cfg,
		spinner: sp,
	}
}

// Init implements tea.Model.
func (a App) Init() tea.Cmd {
	return tea.Batch(
		tea.EnableMouseCellMotion,
		restoreSessionCmd(a.svc),
		a.spinner.Tick,
		tickCmd(),
	)
}

// Update implements tea.Model.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		if a.login.form != nil {
			a.login.form = a.login.form.WithWidth(loginFormWidth(msg.Width))
		}
		if a.finance.form != nil {
			a.finance.form = a.finance.form.WithWidth(invoiceFormWidth(msg.Width))
		}
		return a, nil

	case tea.MouseMsg:
		if a.phase != phaseReady || a.showHelp || a.modal() {
			return a, nil
		}
		return a.updateMouse(msg)

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}
		switch a.phase {
		case phaseLogin:
			return a.updateLoginForm(msg)
		case phaseReady:
			return a.updateKeys(msg)
		}
		return a, nil

	case SessionMsg:
		if msg.User == nil {
			return a.startLogin("")
		}
		a.user = msg.User
		return a.startLoading()

	case LoginResultMsg:
		a.login.busy = false
		if msg.Err != nil {
			text := "Login failed"
			if errors.Is(msg.Err, service.ErrInvalidCredentials) {
				text = "Invalid username"
			}
			return a.startLogin(text)
		}
		u := msg.User
		a.user = &u
		if msg.SaveErr != nil {
			a.setFlash("Session not saved: "+msg.SaveErr.Error(), true)
		}
		return a.startLoading()

	case loggedOutMsg:
		return a, nil

	case DashboardLoadedMsg:
		if msg.Gen != a.gen {
			return a, nil
		}
		a.finishFetch()
		if msg.Err != nil {
			a.loadErr = msg.Err
			a.setFlash("Dashboard load failed: "+msg.Err.Error(), true)
		} else {
			a.dash = msg.Dashboard
			a.loadTime = msg.LoadTime
			a.loadedAt = time.Now()
			a.loadErr = nil
		}
		if a.phase == phaseLoading {
			a.phase = phaseReady
		}
		return a, nil

	case LedgerLoadedMsg:
		if msg.Gen != a.gen {
			return a, nil
		}
		a.finishFetch()
		if msg.Err != nil {
			a.setFlash("Ledger load failed: "+msg.Err.Error(), true)
			return a, nil
		}
		a.projects = msg.Projects
		a.invoices = msg.Invoices
		a.accounts = msg.Accounts
		a.finance.clampCursor(a.financeRowCount())
		return a, nil

	case AdminLoadedMsg:
		if msg.Gen != a.gen {
			return a, nil
		}
		a.finishFetch()
		if msg.Err != nil {
			a.setFlash("Admin load failed: "+msg.Err.Error(), true)
			return a, nil
		}
		a.users = msg.Users
		a.audit = msg.Audit
		return a, nil

	case InvoiceCreatedMsg:
		a.finance.submitting = false
		if msg.Err != nil {
			a.setFlash(msg.Err.Error(), true)
			return a, nil
		}
		a.setFlash("Created invoice "+msg.Invoice.InvoiceNumber, false)
		return a.refresh()

	case spinner.TickMsg:
		if a.phase == phaseReady && !a.refreshing && !a.finance.submitting {
			return a, nil
		}
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd

	case tickMsg:
		if a.flash != "" && time.Since(a.flashAt) > flashTTL {
			a.flash = ""
		}
		return a, tickCmd()
	}

	// Forward everything else (cursor blinks etc.) to an open form.
	switch {
	case a.phase == phaseLogin:
		return a.updateLoginForm(msg)
	case a.finance.form != nil:
		return a.updateInvoiceForm(msg)
	case a.settings.editing:
		var cmd tea.Cmd
		a.settings.input, cmd = a.settings.input.Update(msg)
		return a, cmd
	}
	return a, nil
}

// modal reports whether a form or input currently owns the keyboard.
func (a App) modal() bool {
	return a.finance.form != nil || a.settings.editing
}

func (a App) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	if a.finance.form != nil {
		return a.updateInvoiceForm(msg)
	}
	if a.activeTab == tabSettings && a.settings.editing {
		return a.updateSettingsInput(msg)
	}

	if key == "?" {
		a.showHelp = !a.showHelp
		return a, nil
	}
	if a.showHelp {
		a.showHelp = false
		return a, nil
	}

	switch a.activeTab {
	case tabFinance:
		if m, cmd, ok := a.updateFinanceKeys(key); ok {
			return m, cmd
		}
	case tabAdmin:
		if m, cmd, ok := a.updateAdminKeys(key); ok {
			return m, cmd
		}
	case tabSettings:
		if m, cmd, ok := a.updateSettingsKeys(key); ok {
			return m, cmd
		}
	}

	switch key {
	case "q":
		return a, tea.Quit
	case "r":
		if a.refreshing {
			return a, nil
		}
		return a.refresh()
	case "L":
		return a.logout()
	case "left":
		a.activeTab = (a.activeTab - 1 + len(components.Tabs)) % len(components.Tabs)
		return a, nil
	case "right":
		a.activeTab = (a.activeTab + 1) % len(components.Tabs)
		return a, nil
	}

	if len(msg.Runes) == 1 {
		if idx := components.TabIdxByKey(msg.Runes[0]); idx >= 0 {
			a.activeTab = idx
		}
	}
	return a, nil
}

func (a App) updateMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	switch msg.Button {
	case tea.MouseButtonWheelUp:
		a.moveCursor(-1)
	case tea.MouseButtonWheelDown:
		a.moveCursor(1)
	case tea.MouseButtonLeft:
		if msg.Action != tea.MouseActionPress {
			return a, nil
		}
		// Tab bar is the first line.
		if msg.Y == 0 {
			if tab := a.tabAtX(msg.X); tab >= 0 {
				a.activeTab = tab
			}
		}
	}
	return a, nil
}

func (a *App) moveCursor(delta int) {
	switch a.activeTab {
	case tabFinance:
		a.finance.move(delta, a.financeRowCount())
	case tabAdmin:
		a.admin.move(delta, len(a.audit))
	case tabSettings:
		a.settings.move(delta)
	}
}

// tabAtX maps a click column on the tab bar to a tab index, or -1.
func (a App) tabAtX(x int) int {
	return components.TabAtX(x, a.activeTab)
}

func (a App) startLoading() (tea.Model, tea.Cmd) {
	a.phase = phaseLoading
	a.activeTab = tabDashboard
	return a.refresh()
}

// refresh starts a new generation of the three fetches. Results still in
// flight from an earlier generation are ignored when they arrive.
func (a App) refresh() (tea.Model, tea.Cmd) {
	a.gen++
	a.pending = 3
	a.refreshing = true
	return a, tea.Batch(
		a.spinner.Tick,
		loadDashboardCmd(a.svc, a.gen),
		loadLedgerCmd(a.svc, a.gen),
		loadAdminCmd(a.svc, a.gen),
	)
}

func (a *App) finishFetch() {
	if a.pending > 0 {
		a.pending--
	}
	if a.pending == 0 {
		a.refreshing = false
	}
}

func (a App) logout() (tea.Model, tea.Cmd) {
	username := ""
	if a.user != nil {
		username = a.user.Username
	}

	a.user = nil
	a.gen++
	a.pending = 0
	a.refreshing = false
	a.dash = nil
	a.loadedAt, a.loadErr = time.Time{}, nil
	a.projects, a.invoices, a.accounts = nil, nil, nil
	a.users, a.audit = nil, nil
	a.finance = financeState{}
	a.admin = adminState{}
	a.showHelp = false
	a.flash = ""

	m, cmd := a.startLogin("")
	return m, tea.Batch(cmd, logoutCmd(a.svc, username))
}

func (a *App) setFlash(text string, isErr bool) {
	a.flash = text
	a.flashErr = isErr
	a.flashAt = time.Now()
}

func (a App) contentWidth() int {
	cw := a.width
	if cw > maxContentWidth {
		cw = maxContentWidth
	}
	return cw
}

func (a App) isCompactLayout() bool {
	return a.contentWidth() < compactWidth
}

// View implements tea.Model.
func (a App) View() string {
	if a.width == 0 {
		return ""
	}
	if a.width < minTerminalWidth {
		return a.viewTooNarrow()
	}

	switch a.phase {
	case phaseRestoring:
		return a.viewLoading("Restoring session...")
	case phaseLogin:
		return a.viewLogin()
	case phaseLoading:
		return a.viewLoading("Loading dashboard...")
	}

	if a.showHelp {
		return a.viewHelp()
	}
	if a.finance.form != nil {
		return a.viewInvoiceForm()
	}
	return a.viewMain()
}

func (a App) viewTooNarrow() string {
	h := a.height
	if h < 5 {
		h = 5
	}

	msg := fmt.Sprintf(
		"\n  Terminal too narrow (%d cols)\n\n  The dashboard needs at least %d columns.\n",
		a.width,
		minTerminalWidth,
	)
	return padHeight(truncateHeight(msg, h), h)
}

func (a App) viewLoading(status string) string {
	t := theme.Active

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Background(t.Surface).
		Padding(2, 4)

	logoStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface).Bold(true)
	subtitleStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	spinnerStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface)

	var b strings.Builder
	b.WriteString(logoStyle.Render("▦ ConstructERP"))
	b.WriteString(subtitleStyle.Render(" · Finance"))
	b.WriteString("\n\n")
	b.WriteString(spinnerStyle.Render(a.spinner.View()))
	b.WriteString(subtitleStyle.Render(" " + status))
	if a.user != nil {
		b.WriteString("\n")
		b.WriteString(subtitleStyle.Render("Signed in as " + a.user.Username))
	}

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, cardStyle.Render(b.String()),
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) viewHelp() string {
	t := theme.Active

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Background(t.Surface).
		Padding(1, 3)

	titleStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface).Bold(true)
	sectionStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	keyStyle := lipgloss.NewStyle().Foreground(t.Cyan).Background(t.Surface).Bold(true)
	descStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	dimStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)

	sections := []struct {
		title    string
		bindings []struct{ key, desc string }
	}{
		{"Navigation", []struct{ key, desc string }{
			{"d f a x", "Jump to tab"},
			{"← →", "Previous / Next tab"},
			{"j k", "Move selection"},
		}},
		{"Finance", []struct{ key, desc string }{
			{"v", "Invoices / Chart of accounts"},
			{"s", "Cycle status filter"},
			{"n", "New invoice"},
		}},
		{"Session", []struct{ key, desc string }{
			{"r", "Refresh data"},
			{"L", "Log out"},
			{"?", "Toggle help"},
			{"q", "Quit"},
		}},
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("▦ Keyboard Shortcuts"))
	b.WriteString("\n")
	for _, sec := range sections {
		b.WriteString("\n")
		b.WriteString(sectionStyle.Render(sec.title))
		b.WriteString("\n")
		for _, bind := range sec.bindings {
			fmt.Fprintf(&b, "  %s  %s\n",
				keyStyle.Render(fmt.Sprintf("%-8s", bind.key)),
				descStyle.Render(bind.desc))
		}
	}
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("Press any key to close"))

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, cardStyle.Render(b.String()),
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) viewMain() string {
	t := theme.Active
	w := a.width
	cw := a.contentWidth()
	h := a.height

	header := components.RenderTabBar(a.activeTab, w)

	st := components.Status{
		Refreshing: a.refreshing,
		Flash:      a.flash,
		FlashErr:   a.flashErr,
	}
	if a.user != nil {
		st.User = a.user.Username
		st.Role = string(a.user.Role)
	}
	if !a.loadedAt.IsZero() {
		st.DataAge = formatAge(time.Since(a.loadedAt))
	}
	statusBar := components.RenderStatusBar(w, st)

	contentH := h - lipgloss.Height(header) - lipgloss.Height(statusBar)
	if contentH < minContentHeight {
		contentH = minContentHeight
	}

	var content string
	switch a.activeTab {
	case tabDashboard:
		content = a.renderDashboardTab(cw)
	case tabFinance:
		content = a.renderFinanceTab(cw, contentH)
	case tabAdmin:
		content = a.renderAdminTab(cw, contentH)
	case tabSettings:
		content = a.renderSettingsTab(cw)
	}

	content = padHeight(truncateHeight(content, contentH), contentH)
	content = fillLinesWithBackground(content, cw, t.Background)
	content = lipgloss.Place(w, contentH, lipgloss.Center, lipgloss.Top, content,
		lipgloss.WithWhitespaceBackground(t.Background))

	output := lipgloss.JoinVertical(lipgloss.Left, header, content, statusBar)
	return lipgloss.Place(w, h, lipgloss.Left, lipgloss.Top, output,
		lipgloss.WithWhitespaceBackground(t.Background))
}

// ─── Commands ───────────────────────────────────────────────────

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// restoreSessionCmd resolves the saved session, if any, to a known user.
func restoreSessionCmd(svc Backend) tea.Cmd {
	return func() tea.Msg {
		sess, err := config.LoadSession()
		if err != nil {
			return SessionMsg{}
		}
		ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
		defer cancel()
		u, err := svc.LookupUser(ctx, sess.Username)
		if err != nil {
			return SessionMsg{}
		}
		return SessionMsg{User: &u}
	}
}

func loginCmd(svc Backend, username string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
		defer cancel()
		u, err := svc.Login(ctx, username)
		if err != nil {
			return LoginResultMsg{Err: err}
		}
		saveErr := config.SaveSession(config.Session{
			Username:   u.Username,
			Role:       string(u.Role),
			LoggedInAt: time.Now(),
		})
		return LoginResultMsg{User: u, SaveErr: saveErr}
	}
}

func logoutCmd(svc Backend, username string) tea.Cmd {
	return func() tea.Msg {
		if username != "" {
			svc.Logout(context.Background(), username)
		}
		_ = config.ClearSession()
		return loggedOutMsg{}
	}
}

func loadDashboardCmd(svc Backend, gen int) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
		defer cancel()
		start := time.Now()
		d, err := pipeline.LoadDashboard(ctx, svc)
		return DashboardLoadedMsg{Gen: gen, Dashboard: d, LoadTime: time.Since(start), Err: err}
	}
}

func loadLedgerCmd(svc Backend, gen int) tea.Cmd {
	return func() tea.Msg {
		g, ctx := errgroup.WithContext(context.Background())
		ctx, cancel := context.WithTimeout(ctx, fetchTimeout)
		defer cancel()

		msg := LedgerLoadedMsg{Gen: gen}
		g.Go(func() (err error) {
			msg.Projects, err = svc.Projects(ctx)
			return err
		})
		g.Go(func() (err error) {
			msg.Invoices, err = svc.Invoices(ctx)
			return err
		})
		g.Go(func() (err error) {
			msg.Accounts, err = svc.Accounts(ctx)
			return err
		})
		if err := g.Wait(); err != nil {
			return LedgerLoadedMsg{Gen: gen, Err: err}
		}
		return msg
	}
}

func loadAdminCmd(svc Backend, gen int) tea.Cmd {
	return func() tea.Msg {
		g, ctx := errgroup.WithContext(context.Background())
		ctx, cancel := context.WithTimeout(ctx, fetchTimeout)
		defer cancel()

		msg := AdminLoadedMsg{Gen: gen}
		g.Go(func() (err error) {
			msg.Users, err = svc.Users(ctx)
			return err
		})
		g.Go(func() (err error) {
			msg.Audit, err = svc.AuditLog(ctx, auditLimit)
			return err
		})
		if err := g.Wait(); err != nil {
			return AdminLoadedMsg{Gen: gen, Err: err}
		}
		return msg
	}
}

func createInvoiceCmd(svc Backend, actor string, req service.NewInvoice) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
		defer cancel()
		inv, err := svc.CreateInvoice(ctx, actor, req)
		return InvoiceCreatedMsg{Invoice: inv, Err: err}
	}
}

// ─── Helpers ────────────────────────────────────────────────────

// formTheme styles huh forms with the active palette.
func formTheme() *huh.Theme {
	t := theme.Active
	th := huh.ThemeBase()
	th.Focused.Title = th.Focused.Title.Foreground(t.Accent).Bold(true)
	th.Focused.Description = th.Focused.Description.Foreground(t.TextMuted)
	th.Focused.ErrorMessage = th.Focused.ErrorMessage.Foreground(t.Red)
	th.Focused.ErrorIndicator = th.Focused.ErrorIndicator.Foreground(t.Red)
	th.Focused.SelectSelector = th.Focused.SelectSelector.Foreground(t.AccentBright)
	th.Focused.SelectedOption = th.Focused.SelectedOption.Foreground(t.GreenBright)
	th.Focused.FocusedButton = th.Focused.FocusedButton.Background(t.Accent).Foreground(t.Background)
	th.Blurred.Title = th.Blurred.Title.Foreground(t.TextMuted)
	return th
}

func formatAge(d time.Duration) string {
	switch {
	case d < time.Minute:
		return fmt.Sprintf("%ds ago", int(d.Seconds()))
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	default:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	}
}

func truncStr(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	if limit == 1 {
		return "…"
	}
	return string(runes[:limit-1]) + "…"
}

func truncateHeight(s string, limit int) string {
	lines := strings.Split(s, "\n")
	if len(lines) <= limit {
		return s
	}
	return strings.Join(lines[:limit], "\n")
}

func padHeight(s string, h int) string {
	lines := strings.Split(s, "\n")
	if len(lines) >= h {
		return s
	}
	return s + strings.Repeat("\n", h-len(lines))
}

// fillLinesWithBackground pads each line to width w with the background color.
func fillLinesWithBackground(s string, w int, bg lipgloss.Color) string {
	lines := strings.Split(s, "\n")

	var result strings.Builder
	for i, line := range lines {
		result.WriteString(lipgloss.PlaceHorizontal(w, lipgloss.Left, line,
			lipgloss.WithWhitespaceBackground(bg)))
		if i < len(lines)-1 {
			result.WriteString("\n")
		}
	}
	return result.String()
}
