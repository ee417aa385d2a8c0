package main

import (
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"

	"github.com/tillworks/till/cmd/till/internal/view"
	"github.com/tillworks/till/internal/catalog"
	catalogStore "github.com/tillworks/till/internal/catalog/store"
	"github.com/tillworks/till/internal/config"
	customerStore "github.com/tillworks/till/internal/customer/store"
	"github.com/tillworks/till/internal/database"
	"github.com/tillworks/till/internal/receipt"
	"github.com/tillworks/till/internal/sale"
	saleStore "github.com/tillworks/till/internal/sale/store"
	sequenceStore "github.com/tillworks/till/internal/sequence/store"
)

type model struct {
	currentView View

	registerView view.RegisterModel
	salesView    view.SalesModel
}

type View int

const (
	ViewMenu     View = 0
	ViewRegister View = 1
	ViewSales    View = 2
)

func initialModel() model {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	tenantID, err := uuid.Parse(cfg.Till.TenantID)
	if err != nil {
		slog.Error("TILL_TENANT_ID is not a valid uuid", "error", err)
		os.Exit(1)
	}

	userID, err := uuid.Parse(cfg.Till.UserID)
	if err != nil {
		slog.Error("TILL_USER_ID is not a valid uuid", "error", err)
		os.Exit(1)
	}

	db, err := database.New(cfg.ConnectionString())
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}

	enabledMethods := make(map[sale.Method]bool, len(cfg.POS.EnabledMethods))
	for _, method := range cfg.POS.EnabledMethods {
		enabledMethods[sale.Method(method)] = true
	}

	policy := sale.Policy{
		CurrencyPrecision:  cfg.POS.CurrencyPrecision,
		ReceiptPrefix:      cfg.POS.ReceiptPrefix,
		NumberWidth:        cfg.POS.NumberWidth,
		MaxDiscountPercent: decimal.NewFromFloat(cfg.POS.MaxDiscountPercent),
		CancelWindow:       cfg.POS.CancelWindow,
		EnabledMethods:     enabledMethods,
	}

	catalogSt := catalogStore.New(db)
	catalogSvc := catalog.NewService(catalogSt)
	saleSvc := sale.NewService(
		saleStore.New(db),
		catalogSt,
		customerStore.New(db),
		sequenceStore.New(db),
		policy,
	)

	receiptCfg := receipt.Config{
		StoreName:    cfg.App.Name,
		CurrencyCode: cfg.POS.CurrencyCode,
		Precision:    cfg.POS.CurrencyPrecision,
	}

	return model{
		currentView:  ViewMenu,
		registerView: view.NewRegisterModel(saleSvc, catalogSvc, receiptCfg, tenantID, userID),
		salesView:    view.NewSalesModel(saleSvc, receiptCfg, tenantID),
	}
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.currentView == ViewMenu {
			switch msg.String() {
			case "ctrl+c", "q":
				return m, tea.Quit
			case "1":
				m.currentView = ViewRegister
				return m, m.registerView.Init()
			case "2":
				m.currentView = ViewSales
				return m, m.salesView.Init()
			}
		}
	case view.BackMsg:
		m.currentView = ViewMenu
		return m, nil
	}

	switch m.currentView {
	case ViewRegister:
		var newModel tea.Model
		newModel, cmd = m.registerView.Update(msg)
		m.registerView = newModel.(view.RegisterModel)
	case ViewSales:
		var newModel tea.Model
		newModel, cmd = m.salesView.Update(msg)
		m.salesView = newModel.(view.SalesModel)
	}

	return m, cmd
}

func (m model) View() string {
	switch m.currentView {
	case ViewMenu:
		return lipgloss.NewStyle().Padding(2).Render(
			"Till\n\n" +
				"1. Register (new sale)\n" +
				"2. Sales history\n\n" +
				"q. Quit",
		)
	case ViewRegister:
		return m.registerView.View()
	case ViewSales:
		return m.salesView.View()
	}

	return "Unknown View"
}

func main() {
	p := tea.NewProgram(initialModel())
	if _, err := p.Run(); err != nil {
		slog.Error("failed to run TUI", "error", err)
		os.Exit(1)
	}
}
