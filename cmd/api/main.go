package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"

	"github.com/tillworks/till/internal/catalog"
	catalogStore "github.com/tillworks/till/internal/catalog/store"
	"github.com/tillworks/till/internal/config"
	customerStore "github.com/tillworks/till/internal/customer/store"
	"github.com/tillworks/till/internal/database"
	tillHTTP "github.com/tillworks/till/internal/http"
	catalogHandler "github.com/tillworks/till/internal/http/catalog"
	saleHandler "github.com/tillworks/till/internal/http/sale"
	"github.com/tillworks/till/internal/receipt"
	"github.com/tillworks/till/internal/sale"
	saleStore "github.com/tillworks/till/internal/sale/store"
	sequenceStore "github.com/tillworks/till/internal/sequence/store"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	db, err := database.New(cfg.ConnectionString())
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	policy := sale.Policy{
		CurrencyPrecision:  cfg.POS.CurrencyPrecision,
		ReceiptPrefix:      cfg.POS.ReceiptPrefix,
		NumberWidth:        cfg.POS.NumberWidth,
		MaxDiscountPercent: decimal.NewFromFloat(cfg.POS.MaxDiscountPercent),
		CancelWindow:       cfg.POS.CancelWindow,
		EnabledMethods:     enabledMethods(cfg),
	}

	var (
		catalogSt   = catalogStore.New(db)
		saleService = sale.NewService(
			saleStore.New(db),
			catalogSt,
			customerStore.New(db),
			sequenceStore.New(db),
			policy,
		)
		catalogService = catalog.NewService(catalogSt)
	)

	receiptCfg := receipt.Config{
		StoreName:    cfg.App.Name,
		CurrencyCode: cfg.POS.CurrencyCode,
		Precision:    cfg.POS.CurrencyPrecision,
	}

	var (
		salesH    = saleHandler.NewHandler(saleService, receiptCfg)
		productsH = catalogHandler.NewHandler(catalogService)
	)

	router := tillHTTP.New(salesH, productsH, cfg.Auth.Secret)

	port := fmt.Sprintf(":%d", cfg.App.Port)
	slog.Info("starting server", "port", port)

	if err := http.ListenAndServe(port, router); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func enabledMethods(cfg *config.Config) map[sale.Method]bool {
	methods := make(map[sale.Method]bool, len(cfg.POS.EnabledMethods))
	for _, m := range cfg.POS.EnabledMethods {
		methods[sale.Method(m)] = true
	}

	return methods
}
