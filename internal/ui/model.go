// Package ui is the terminal front end of the merchant dashboard.
package ui

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"tokodash/internal/dashboard"
	"tokodash/internal/form"
	"tokodash/internal/models"
	"tokodash/internal/storefront"
	"tokodash/internal/validation"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"
)

const cardWidth = 28

// form inputs, in focus order
var fieldOrder = []string{
	validation.FieldName,
	validation.FieldDescription,
	validation.FieldQuantity,
	validation.FieldPrice,
	fieldImage,
}

const fieldImage = "image"

var fieldLabels = map[string]string{
	validation.FieldName:        "Name",
	validation.FieldDescription: "Description",
	validation.FieldQuantity:    "Quantity",
	validation.FieldPrice:       "Price",
	fieldImage:                  "Image file",
}

type panelSelectedMsg struct {
	panel dashboard.Panel
	err   error
}

type submitDoneMsg struct {
	outcome form.Outcome
	err     error
}

type deleteDoneMsg struct{ err error }

type refreshedMsg struct{}

// Options configures a Model.
type Options struct {
	Shell     *dashboard.Shell
	Favorites *storefront.Favorites
	Logger    *zap.Logger
	// ReadFile reads the image chosen in the form. Defaults to os.ReadFile.
	ReadFile func(name string) ([]byte, error)
}

// Model is the bubbletea model of the dashboard.
type Model struct {
	ctx       context.Context
	shell     *dashboard.Shell
	favorites *storefront.Favorites
	logger    *zap.Logger
	readFile  func(string) ([]byte, error)

	width, height int
	cursor        int
	inputs        []textinput.Model
	focus         int
	orders        viewport.Model
	busy          bool
	status        string
	styles        Styles
}

// New creates the dashboard model. Remote calls run with ctx.
func New(ctx context.Context, opts Options) Model {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	favorites := opts.Favorites
	if favorites == nil {
		favorites = storefront.NewFavorites()
	}
	readFile := opts.ReadFile
	if readFile == nil {
		readFile = os.ReadFile
	}

	inputs := make([]textinput.Model, len(fieldOrder))
	for i, key := range fieldOrder {
		in := textinput.New()
		in.Prompt = ""
		in.Placeholder = strings.ToLower(fieldLabels[key])
		in.CharLimit = 500
		inputs[i] = in
	}

	return Model{
		ctx:       ctx,
		shell:     opts.Shell,
		favorites: favorites,
		logger:    logger,
		readFile:  readFile,
		inputs:    inputs,
		orders:    viewport.New(80, 10),
		styles:    DefaultStyles(),
	}
}

// Run starts the dashboard on the terminal and blocks until the user quits.
func Run(ctx context.Context, opts Options) error {
	p := tea.NewProgram(New(ctx, opts), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}

// Init loads the overview.
func (m Model) Init() tea.Cmd {
	return m.selectPanel(dashboard.PanelOverview)
}

func (m Model) selectPanel(p dashboard.Panel) tea.Cmd {
	return func() tea.Msg {
		return panelSelectedMsg{panel: p, err: m.shell.Select(m.ctx, p)}
	}
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.orders.Width = msg.Width
		m.orders.Height = max(3, msg.Height-6)
		return m, nil

	case panelSelectedMsg:
		if msg.err != nil {
			m.status = msg.err.Error()
		}
		m.clampCursor()
		m.orders.SetContent(m.ordersTable())
		return m, nil

	case submitDoneMsg:
		m.busy = false
		if msg.err != nil {
			m.status = msg.err.Error()
		}
		m.clampCursor()
		return m, nil

	case deleteDoneMsg:
		m.busy = false
		if msg.err != nil {
			m.status = msg.err.Error()
		}
		m.clampCursor()
		return m, nil

	case refreshedMsg:
		m.busy = false
		m.clampCursor()
		m.orders.SetContent(m.ordersTable())
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		if m.shell.Form.View().State != form.StateClosed {
			return m.updateForm(msg)
		}
		if m.shell.Items.View().PendingDelete != nil {
			return m.updateConfirm(msg)
		}
		return m.updateMain(msg)
	}

	if m.shell.Panel() == dashboard.PanelOrders {
		var cmd tea.Cmd
		m.orders, cmd = m.orders.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) updateMain(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.status = ""
	panel := m.shell.Panel()

	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "1":
		return m, m.selectPanel(dashboard.PanelOverview)
	case "2":
		return m, m.selectPanel(dashboard.PanelItems)
	case "3":
		return m, m.selectPanel(dashboard.PanelOrders)
	case "tab":
		return m, m.selectPanel(nextPanel(panel))
	case "x":
		m.shell.DismissNotices()
		m.shell.Items.ClearMessages()
		return m, nil
	}

	switch panel {
	case dashboard.PanelItems:
		return m.updateItems(msg)
	case dashboard.PanelOrders:
		if msg.String() == "r" {
			m.busy = true
			return m, func() tea.Msg {
				m.shell.RefreshOrders(m.ctx)
				return refreshedMsg{}
			}
		}
		var cmd tea.Cmd
		m.orders, cmd = m.orders.Update(msg)
		return m, cmd
	}
	return m, nil
}

func nextPanel(p dashboard.Panel) dashboard.Panel {
	for i, known := range dashboard.Panels {
		if known == p {
			return dashboard.Panels[(i+1)%len(dashboard.Panels)]
		}
	}
	return dashboard.PanelOverview
}

func (m Model) updateItems(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	items := m.shell.Items.View().Items
	selected, ok := m.selectedItem(items)

	switch msg.String() {
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(items)-1 {
			m.cursor++
		}
	case "n":
		m.shell.Form.OpenCreate()
		m.fillInputs(m.shell.Form.View().Draft)
	case "e":
		if ok {
			m.shell.Form.OpenEdit(selected)
			m.fillInputs(m.shell.Form.View().Draft)
		}
	case "d":
		if ok {
			m.shell.Items.RequestDelete(selected)
		}
	case "f":
		if ok {
			m.favorites.Toggle(selected.ID)
		}
	case "r":
		m.busy = true
		return m, func() tea.Msg {
			m.shell.Items.Load(m.ctx)
			return refreshedMsg{}
		}
	}
	return m, nil
}

func (m Model) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "enter":
		if m.busy {
			return m, nil
		}
		m.busy = true
		return m, func() tea.Msg {
			return deleteDoneMsg{err: m.shell.Items.ConfirmDelete(m.ctx)}
		}
	case "n", "esc":
		m.shell.Items.CancelDelete()
	}
	return m, nil
}

func (m Model) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.shell.Form.Close()
		m.status = ""
		return m, nil
	case "tab", "down":
		m.focusInput((m.focus + 1) % len(m.inputs))
		return m, nil
	case "shift+tab", "up":
		m.focusInput((m.focus + len(m.inputs) - 1) % len(m.inputs))
		return m, nil
	case "enter":
		if m.busy || m.shell.Form.View().State != form.StateOpen {
			return m, nil
		}
		m.busy = true
		m.status = ""
		return m, m.submit(strings.TrimSpace(m.inputs[len(m.inputs)-1].Value()))
	}

	key := fieldOrder[m.focus]
	before := m.inputs[m.focus].Value()
	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	after := m.inputs[m.focus].Value()
	if after != before && key != fieldImage {
		if err := m.shell.Form.SetField(key, after); err != nil {
			m.status = err.Error()
		} else {
			m.status = ""
		}
	}
	return m, cmd
}

func (m Model) submit(imagePath string) tea.Cmd {
	return func() tea.Msg {
		var file *models.ImageFile
		if imagePath != "" {
			data, err := m.readFile(imagePath)
			if err != nil {
				return submitDoneMsg{err: fmt.Errorf("failed to read image: %w", err)}
			}
			file = &models.ImageFile{Name: filepath.Base(imagePath), Data: data}
		}
		if err := m.shell.Form.SetImageFile(file); err != nil {
			return submitDoneMsg{err: err}
		}
		outcome, err := m.shell.Form.Submit(m.ctx)
		m.logger.Debug("item form submitted", zap.Int("outcome", int(outcome)), zap.Error(err))
		return submitDoneMsg{outcome: outcome, err: err}
	}
}

func (m *Model) fillInputs(d models.Draft) {
	values := map[string]string{
		validation.FieldName:        d.Name,
		validation.FieldDescription: d.Description,
		validation.FieldQuantity:    strconv.Itoa(d.Quantity),
		validation.FieldPrice:       "",
		fieldImage:                  "",
	}
	if d.Price != nil {
		values[validation.FieldPrice] = strconv.FormatFloat(*d.Price, 'f', -1, 64)
	}
	for i, key := range fieldOrder {
		m.inputs[i].SetValue(values[key])
	}
	m.status = ""
	m.focusInput(0)
}

func (m *Model) focusInput(i int) {
	for j := range m.inputs {
		if j == i {
			m.inputs[j].Focus()
		} else {
			m.inputs[j].Blur()
		}
	}
	m.focus = i
}

func (m Model) selectedItem(items []models.Item) (models.Item, bool) {
	if m.cursor < 0 || m.cursor >= len(items) {
		return models.Item{}, false
	}
	return items[m.cursor], true
}

func (m *Model) clampCursor() {
	n := len(m.shell.Items.View().Items)
	m.cursor = max(0, min(m.cursor, n-1))
}

// View renders the dashboard.
func (m Model) View() string {
	var b strings.Builder
	b.WriteString(m.header())
	b.WriteString("\n\n")

	for _, n := range m.shell.Notices() {
		b.WriteString(m.styles.Notice.Render("! "+n) + "\n")
	}

	switch m.shell.Panel() {
	case dashboard.PanelItems:
		b.WriteString(m.itemsView())
	case dashboard.PanelOrders:
		b.WriteString(m.orders.View())
	default:
		b.WriteString(m.overviewView())
	}

	if m.status != "" {
		b.WriteString("\n" + m.styles.Error.Render(m.status))
	}
	b.WriteString("\n" + m.styles.Help.Render(m.help()))
	return b.String()
}

func (m Model) header() string {
	tabs := []string{m.styles.Title.Render("tokodash")}
	for i, p := range dashboard.Panels {
		label := fmt.Sprintf("%d %s", i+1, p)
		if p == m.shell.Panel() {
			tabs = append(tabs, m.styles.ActiveTab.Render(label))
		} else {
			tabs = append(tabs, m.styles.Tab.Render(label))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (m Model) overviewView() string {
	sum := m.shell.Summary()
	if sum.Username == "" {
		return "Not logged in. Run `tokodash login` to manage your store."
	}
	rows := [][2]string{
		{"Merchant", sum.Username},
		{"Store", sum.StoreName},
		{"Items", strconv.Itoa(sum.ItemCount)},
		{"Units", strconv.Itoa(sum.StockUnits)},
		{"Stock value", storefront.FormatPrice(sum.StockValue)},
		{"Orders", strconv.Itoa(sum.OrderCount)},
	}
	var b strings.Builder
	for _, r := range rows {
		b.WriteString(m.styles.Label.Render(r[0]) + r[1] + "\n")
	}
	return b.String()
}

func (m Model) itemsView() string {
	view := m.shell.Items.View()
	var b strings.Builder

	if view.Notice != "" {
		b.WriteString(m.styles.Notice.Render(view.Notice) + "\n")
	}
	if view.Error != "" {
		b.WriteString(m.styles.Error.Render(view.Error) + "\n")
	}
	if view.Success != "" {
		b.WriteString(m.styles.Success.Render(view.Success) + "\n")
	}
	if fv := m.shell.Form.View(); fv.Success != "" {
		b.WriteString(m.styles.Success.Render(fv.Success) + "\n")
	}
	if view.Loading {
		b.WriteString(m.styles.Help.Render("Loading items…") + "\n")
	}

	if m.shell.Form.View().State != form.StateClosed {
		b.WriteString(m.formView())
		return b.String()
	}
	if view.PendingDelete != nil {
		prompt := fmt.Sprintf("Delete %q? (y/n)", view.PendingDelete.Name)
		if view.Deleting {
			prompt = "Deleting…"
		}
		b.WriteString(m.styles.Dialog.Render(prompt) + "\n")
	}

	if len(view.Items) == 0 {
		b.WriteString("No items yet. Press n to add one.\n")
		return b.String()
	}

	storeName := m.shell.Summary().StoreName
	perRow := max(1, m.width/(cardWidth+4))
	cardStyles := storefront.DefaultCardStyles()
	var row []string
	for i, it := range view.Items {
		card := storefront.CardFromItem(it, storeName, 0)
		card.Favorite = m.favorites.Has(it.ID)
		row = append(row, storefront.RenderCard(card, cardWidth, i == m.cursor, cardStyles))
		if len(row) == perRow || i == len(view.Items)-1 {
			b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, row...) + "\n")
			row = nil
		}
	}
	return b.String()
}

func (m Model) formView() string {
	fv := m.shell.Form.View()
	title := "New item"
	if fv.Draft.Mode == models.DraftEdit {
		title = fmt.Sprintf("Edit item #%d", fv.Draft.EditingID)
	}

	var b strings.Builder
	b.WriteString(m.styles.Title.Render(title) + "\n")
	if msg := fv.Errors[validation.FieldGeneral]; msg != "" {
		b.WriteString(m.styles.Error.Render(msg) + "\n")
	}
	for i, key := range fieldOrder {
		b.WriteString(m.styles.Label.Render(fieldLabels[key]) + m.inputs[i].View() + "\n")
		if msg := fv.Errors[key]; msg != "" {
			b.WriteString(m.styles.Label.Render("") + m.styles.Error.Render(msg) + "\n")
		}
	}
	if fv.Draft.ImageURL != nil && m.inputs[len(m.inputs)-1].Value() == "" {
		b.WriteString(m.styles.Label.Render("") + m.styles.Help.Render("current: "+*fv.Draft.ImageURL) + "\n")
	}
	if fv.State == form.StateSubmitting {
		b.WriteString(m.styles.Help.Render("Saving…") + "\n")
	}
	return m.styles.Dialog.Render(strings.TrimRight(b.String(), "\n")) + "\n"
}

func (m Model) ordersTable() string {
	orders, errMsg := m.shell.Orders()
	var b strings.Builder
	if errMsg != "" {
		b.WriteString(m.styles.Error.Render(errMsg) + "\n")
	}
	if len(orders) == 0 {
		b.WriteString("No orders.\n")
		return b.String()
	}
	b.WriteString(m.styles.Label.Render("Order") + m.styles.Label.Render("Status") + m.styles.Label.Render("Lines") + "Total\n")
	for _, o := range orders {
		b.WriteString(m.styles.Label.Render("#"+shortID(o.ID)) +
			m.styles.Label.Render(o.Status) +
			m.styles.Label.Render(strconv.Itoa(len(o.Items))) +
			storefront.FormatPrice(o.TotalAmount) + "\n")
	}
	return b.String()
}

func (m Model) help() string {
	switch {
	case m.shell.Form.View().State != form.StateClosed:
		return "tab next field • enter save • esc cancel"
	case m.shell.Items.View().PendingDelete != nil:
		return "y confirm • n cancel"
	case m.shell.Panel() == dashboard.PanelItems:
		return "↑/↓ select • n new • e edit • d delete • f favorite • r reload • x dismiss • 1-3 panels • q quit"
	case m.shell.Panel() == dashboard.PanelOrders:
		return "↑/↓ scroll • r reload • 1-3 panels • q quit"
	default:
		return "1-3 panels • tab next panel • q quit"
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
