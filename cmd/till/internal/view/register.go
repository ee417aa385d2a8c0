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
	"github.com/shopspring/decimal"

	"github.com/tillworks/till/internal/catalog"
	"github.com/tillworks/till/internal/receipt"
	"github.com/tillworks/till/internal/sale"
)

type registerState int

const (
	registerStateBrowse registerState = iota
	registerStatePay
	registerStateDone
)

type cartLine struct {
	product *catalog.Product
	qty     int64
}

// RegisterModel is the checkout screen: browse products, build a cart,
// capture payments and submit the sale.
type RegisterModel struct {
	CommonModel
	saleService    *sale.Service
	catalogService *catalog.Service
	receiptCfg     receipt.Config
	tenantID       uuid.UUID
	userID         uuid.UUID

	state    registerState
	table    table.Model
	products []*catalog.Product
	cart     []cartLine
	payments []sale.PaymentParams

	form        *huh.Form
	loading     bool
	err         error
	status      string
	receiptText string

	// Form bindings
	formMethod    string
	formAmount    string
	formReceived  string
	formChange    string
	formCardType  string
	formBank      string
	formReference string
	formMore      bool
}

func NewRegisterModel(
	saleSvc *sale.Service,
	catalogSvc *catalog.Service,
	receiptCfg receipt.Config,
	tenantID, userID uuid.UUID,
) RegisterModel {
	columns := []table.Column{
		{Title: "SKU", Width: 12},
		{Title: "Product", Width: 32},
		{Title: "Price", Width: 10},
		{Title: "Tax %", Width: 6},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(12),
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

	return RegisterModel{
		saleService:    saleSvc,
		catalogService: catalogSvc,
		receiptCfg:     receiptCfg,
		tenantID:       tenantID,
		userID:         userID,
		table:          t,
	}
}

func (m RegisterModel) Title() string { return "Register" }

func (m RegisterModel) ShortHelp() string {
	switch m.state {
	case registerStatePay:
		return "Navigate form | Esc: cancel payment"
	case registerStateDone:
		return "Any key: next customer"
	default:
		return "Esc: back | Enter: add to cart | -: remove | c: checkout | r: refresh"
	}
}

type loadProductsMsg struct {
	products []*catalog.Product
	err      error
}

type saleCreatedMsg struct {
	sale *sale.Sale
	err  error
}

func (m RegisterModel) Init() tea.Cmd {
	m.loading = true
	return m.loadProductsCmd()
}

func (m RegisterModel) loadProductsCmd() tea.Cmd {
	return func() tea.Msg {
		products, err := m.catalogService.ListActiveProducts(context.Background(), m.tenantID)
		return loadProductsMsg{products: products, err: err}
	}
}

func (m RegisterModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadProductsMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}

		m.products = msg.products
		m.refreshTable()

		return m, nil

	case saleCreatedMsg:
		if msg.err != nil {
			m.status = errStyle.Render(fmt.Sprintf("Sale rejected: %v", msg.err))
			m.state = registerStateBrowse
			m.payments = nil
			m.form = nil
			m.table.Focus()

			return m, nil
		}

		m.receiptText = receipt.Render(msg.sale, m.receiptCfg)
		m.state = registerStateDone
		m.cart = nil
		m.payments = nil
		m.form = nil

		return m, nil

	case tea.WindowSizeMsg:
		m.table.SetHeight(msg.Height - 14)
		return m, nil
	}

	switch m.state {
	case registerStateBrowse:
		return m.updateBrowse(msg)
	case registerStatePay:
		return m.updatePay(msg)
	case registerStateDone:
		if _, ok := msg.(tea.KeyMsg); ok {
			m.state = registerStateBrowse
			m.receiptText = ""
			m.status = ""
			m.table.Focus()
		}

		return m, nil
	}

	return m, nil
}

func (m RegisterModel) updateBrowse(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if ok {
		switch keyMsg.String() {
		case "esc":
			return m, Back
		case "r":
			m.loading = true
			return m, m.loadProductsCmd()
		case "enter":
			m.addSelected(1)
			return m, nil
		case "-":
			m.addSelected(-1)
			return m, nil
		case "c":
			if len(m.cart) == 0 {
				m.status = "Cart is empty"
				return m, nil
			}

			return m.enterPayMode()
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func (m *RegisterModel) addSelected(delta int64) {
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.products) {
		return
	}

	product := m.products[idx]

	for i := range m.cart {
		if m.cart[i].product.ID == product.ID {
			m.cart[i].qty += delta
			if m.cart[i].qty <= 0 {
				m.cart = append(m.cart[:i], m.cart[i+1:]...)
			}

			return
		}
	}

	if delta > 0 {
		m.cart = append(m.cart, cartLine{product: product, qty: delta})
	}
}

func (m RegisterModel) cartDue() decimal.Decimal {
	due := decimal.Zero
	for _, line := range m.cart {
		gross := line.product.UnitPrice.Mul(decimal.NewFromInt(line.qty))
		due = due.Add(gross).Add(gross.Mul(line.product.TaxRate).Div(decimal.NewFromInt(100)))
	}

	return due.Round(2)
}

func (m RegisterModel) enterPayMode() (tea.Model, tea.Cmd) {
	remaining := m.cartDue()
	for _, p := range m.payments {
		remaining = remaining.Sub(p.Amount)
	}

	m.formMethod = string(sale.MethodCash)
	m.formAmount = money(remaining)
	m.formReceived = ""
	m.formChange = "0"
	m.formCardType = ""
	m.formBank = ""
	m.formReference = ""
	m.formMore = false

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Key("method").
				Title("Payment method").
				Options(
					huh.NewOption("Cash", string(sale.MethodCash)),
					huh.NewOption("Card", string(sale.MethodCard)),
					huh.NewOption("Transfer", string(sale.MethodTransfer)),
					huh.NewOption("Store credit", string(sale.MethodCredit)),
				).
				Value(&m.formMethod),

			huh.NewInput().
				Key("amount").
				Title("Amount").
				Value(&m.formAmount).
				Validate(validAmount),

			huh.NewInput().
				Key("received").
				Title("Cash received (cash only)").
				Value(&m.formReceived),

			huh.NewInput().
				Key("change").
				Title("Change returned (cash only)").
				Value(&m.formChange),

			huh.NewInput().
				Key("card_type").
				Title("Card type (card only)").
				Value(&m.formCardType),

			huh.NewInput().
				Key("bank").
				Title("Bank (transfer only)").
				Value(&m.formBank),

			huh.NewInput().
				Key("reference").
				Title("Reference").
				Value(&m.formReference),

			huh.NewConfirm().
				Key("more").
				Title("Add another payment?").
				Value(&m.formMore),
		),
	).WithWidth(48).WithShowHelp(false)

	m.state = registerStatePay
	m.table.Blur()

	return m, m.form.Init()
}

func validAmount(s string) error {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return fmt.Errorf("not a number")
	}

	if d.IsNegative() {
		return fmt.Errorf("must not be negative")
	}

	return nil
}

func (m RegisterModel) updatePay(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		if keyMsg.Type == tea.KeyEsc {
			m.state = registerStateBrowse
			m.form = nil
			m.payments = nil
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

	m.payments = append(m.payments, m.paymentFromForm())

	if m.formMore {
		return m.enterPayMode()
	}

	return m, m.createSaleCmd()
}

func (m RegisterModel) paymentFromForm() sale.PaymentParams {
	amount, _ := decimal.NewFromString(strings.TrimSpace(m.formAmount))

	params := sale.PaymentParams{
		Method:    sale.Method(m.formMethod),
		Amount:    amount,
		Reference: strings.TrimSpace(m.formReference),
	}

	switch params.Method {
	case sale.MethodCash:
		if received, err := decimal.NewFromString(strings.TrimSpace(m.formReceived)); err == nil {
			params.AmountReceived = received
		} else {
			params.AmountReceived = amount
		}

		if change, err := decimal.NewFromString(strings.TrimSpace(m.formChange)); err == nil {
			params.ChangeReturned = change
		}
	case sale.MethodCard:
		params.CardType = strings.TrimSpace(m.formCardType)
	case sale.MethodTransfer:
		params.Bank = strings.TrimSpace(m.formBank)
	case sale.MethodCredit:
		params.CreditReference = strings.TrimSpace(m.formReference)
	}

	return params
}

func (m RegisterModel) createSaleCmd() tea.Cmd {
	params := sale.CreateParams{Payments: m.payments}

	for _, line := range m.cart {
		params.Items = append(params.Items, sale.ItemParams{
			ProductID: line.product.ID,
			Quantity:  line.qty,
			UnitPrice: line.product.UnitPrice,
		})
	}

	return func() tea.Msg {
		sl, err := m.saleService.CreateSale(context.Background(), m.tenantID, m.userID, params)
		return saleCreatedMsg{sale: sl, err: err}
	}
}

func (m *RegisterModel) refreshTable() {
	rows := make([]table.Row, len(m.products))
	for i, p := range m.products {
		rows[i] = table.Row{p.SKU, p.Name, money(p.UnitPrice), p.TaxRate.String()}
	}

	m.table.SetRows(rows)
}

func (m RegisterModel) View() string {
	if m.loading {
		return paddedStyle.Render("Loading products...")
	}

	if m.err != nil {
		return paddedStyle.Render(errStyle.Render(fmt.Sprintf("Error: %v", m.err)))
	}

	if m.state == registerStateDone {
		return paddedStyle.Render(m.receiptText + "\n" + faintStyle.Render("Press any key for the next customer"))
	}

	var b strings.Builder

	b.WriteString(m.table.View())
	b.WriteString("\n\n")

	if len(m.cart) == 0 {
		b.WriteString(faintStyle.Render("Cart is empty"))
	} else {
		for _, line := range m.cart {
			b.WriteString(fmt.Sprintf("%3d x %-32s %10s\n",
				line.qty, line.product.Name, money(line.product.UnitPrice.Mul(decimal.NewFromInt(line.qty)))))
		}

		b.WriteString(totalStyle.Render(fmt.Sprintf("Due: %s", money(m.cartDue()))))
	}

	if m.status != "" {
		b.WriteString("\n" + m.status)
	}

	if m.state == registerStatePay && m.form != nil {
		b.WriteString("\n\n" + m.form.View())
	}

	return paddedStyle.Render(b.String())
}
