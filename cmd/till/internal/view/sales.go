package view

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"github.com/tillworks/till/internal/receipt"
	"github.com/tillworks/till/internal/sale"
)

type salesState int

const (
	salesStateBrowse salesState = iota
	salesStateReceipt
	salesStateCancel
)

// SalesModel lists the tenant's sales and lets the cashier reprint a
// receipt or cancel a recent sale with a reason.
type SalesModel struct {
	CommonModel
	saleService *sale.Service
	receiptCfg  receipt.Config
	tenantID    uuid.UUID

	state       salesState
	table       table.Model
	sales       []*sale.Sale
	form        *huh.Form
	receiptText string
	loading     bool
	err         error
	status      string

	formReason string
}

func NewSalesModel(saleSvc *sale.Service, receiptCfg receipt.Config, tenantID uuid.UUID) SalesModel {
	columns := []table.Column{
		{Title: "Number", Width: 14},
		{Title: "Date", Width: 17},
		{Title: "Status", Width: 10},
		{Title: "Total", Width: 12},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(15),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(false)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)

	return SalesModel{
		saleService: saleSvc,
		receiptCfg:  receiptCfg,
		tenantID:    tenantID,
		table:       t,
	}
}

func (m SalesModel) Title() string { return "Sales" }

func (m SalesModel) ShortHelp() string {
	switch m.state {
	case salesStateReceipt:
		return "Esc: back to list"
	case salesStateCancel:
		return "Navigate form | Esc: keep the sale"
	default:
		return "Esc: back | Enter: receipt | x: cancel sale | r: refresh"
	}
}

type loadSalesMsg struct {
	sales []*sale.Sale
	err   error
}

type receiptMsg struct {
	text string
	err  error
}

type cancelDoneMsg struct {
	err error
}

func (m SalesModel) Init() tea.Cmd {
	m.loading = true
	return m.loadSalesCmd()
}

func (m SalesModel) loadSalesCmd() tea.Cmd {
	return func() tea.Msg {
		sales, err := m.saleService.ListSales(context.Background(), m.tenantID, sale.ListFilter{})
		return loadSalesMsg{sales: sales, err: err}
	}
}

func (m SalesModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadSalesMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}

		m.sales = msg.sales
		m.refreshTable()

		return m, nil

	case receiptMsg:
		if msg.err != nil {
			m.status = errStyle.Render(fmt.Sprintf("Error: %v", msg.err))
			return m, nil
		}

		m.receiptText = msg.text
		m.state = salesStateReceipt

		return m, nil

	case cancelDoneMsg:
		m.state = salesStateBrowse
		m.form = nil
		m.table.Focus()

		if msg.err != nil {
			m.status = errStyle.Render(fmt.Sprintf("Cancel failed: %v", msg.err))
			return m, nil
		}

		m.status = "Sale cancelled"

		return m, m.loadSalesCmd()

	case tea.WindowSizeMsg:
		m.table.SetHeight(msg.Height - 10)
		return m, nil
	}

	switch m.state {
	case salesStateBrowse:
		return m.updateBrowse(msg)
	case salesStateReceipt:
		if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
			m.state = salesStateBrowse
			m.receiptText = ""
		}

		return m, nil
	case salesStateCancel:
		return m.updateCancel(msg)
	}

	return m, nil
}

func (m SalesModel) updateBrowse(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if ok {
		switch keyMsg.String() {
		case "esc":
			return m, Back
		case "r":
			m.loading = true
			return m, m.loadSalesCmd()
		case "enter":
			if sl := m.selected(); sl != nil {
				return m, m.receiptCmd(sl.ID)
			}

			return m, nil
		case "x":
			if sl := m.selected(); sl != nil {
				return m.enterCancelMode()
			}

			return m, nil
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func (m SalesModel) selected() *sale.Sale {
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.sales) {
		return nil
	}

	return m.sales[idx]
}

func (m SalesModel) receiptCmd(saleID uuid.UUID) tea.Cmd {
	return func() tea.Msg {
		sl, err := m.saleService.GetSale(context.Background(), m.tenantID, saleID)
		if err != nil {
			return receiptMsg{err: err}
		}

		return receiptMsg{text: receipt.Render(sl, m.receiptCfg)}
	}
}

func (m SalesModel) enterCancelMode() (tea.Model, tea.Cmd) {
	m.formReason = ""

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("reason").
				Title("Cancellation reason").
				Value(&m.formReason).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("reason cannot be empty")
					}
					return nil
				}),
		),
	).WithWidth(45).WithShowHelp(false)

	m.state = salesStateCancel
	m.table.Blur()

	return m, m.form.Init()
}

func (m SalesModel) updateCancel(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		if keyMsg.Type == tea.KeyEsc {
			m.state = salesStateBrowse
			m.form = nil
			m.table.Focus()

			return m, nil
		}
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	sl := m.selected()
	if sl == nil {
		m.state = salesStateBrowse
		m.form = nil
		m.table.Focus()

		return m, nil
	}

	reason := m.formReason

	return m, func() tea.Msg {
		_, err := m.saleService.CancelSale(context.Background(), m.tenantID, sl.ID, reason)
		return cancelDoneMsg{err: err}
	}
}

func (m *SalesModel) refreshTable() {
	rows := make([]table.Row, len(m.sales))
	for i, sl := range m.sales {
		rows[i] = table.Row{
			sl.Number,
			sl.CreatedAt.Format("2006-01-02 15:04"),
			string(sl.Status),
			money(sl.GrandTotal),
		}
	}

	m.table.SetRows(rows)
}

func (m SalesModel) View() string {
	if m.loading {
		return paddedStyle.Render("Loading sales...")
	}

	if m.err != nil {
		return paddedStyle.Render(errStyle.Render(fmt.Sprintf("Error: %v", m.err)))
	}

	if m.state == salesStateReceipt {
		return paddedStyle.Render(m.receiptText + "\n" + faintStyle.Render("Esc: back"))
	}

	var b strings.Builder

	b.WriteString(m.table.View())

	if m.status != "" {
		b.WriteString("\n\n" + m.status)
	}

	if m.state == salesStateCancel && m.form != nil {
		b.WriteString("\n\n" + m.form.View())
	}

	return paddedStyle.Render(b.String())
}
