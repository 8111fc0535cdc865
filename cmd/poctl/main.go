package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/erp/poctl/internal/application/purchasing"
	"github.com/erp/poctl/internal/domain/order"
	"github.com/erp/poctl/internal/infrastructure/api"
	"github.com/erp/poctl/internal/infrastructure/auth"
	"github.com/erp/poctl/internal/infrastructure/config"
	"github.com/erp/poctl/internal/infrastructure/logger"
	"github.com/erp/poctl/internal/infrastructure/telemetry"
)

func main() {
	var (
		token    string
		logLevel string
	)

	flag.StringVar(&token, "token", "", "Bearer token (default: POCTL_AUTH_TOKEN / config.toml)")
	flag.StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(1)
	}
	command := args[0]

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	if token == "" {
		token = cfg.Auth.Token
	}

	log, err := logger.FromConfig(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = log.Sync()
	}()

	ctx := context.Background()

	tp, err := telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize telemetry", zap.Error(err))
	}
	defer func() {
		_ = tp.Shutdown(ctx)
	}()

	if token == "" {
		log.Fatal("No token. Set POCTL_AUTH_TOKEN or pass -token.")
	}
	session, err := auth.NewSession(token)
	if err != nil {
		log.Fatal("Invalid session token", zap.Error(err))
	}

	client, err := api.NewClient(api.Config{
		BaseURL: cfg.API.BaseURL,
		Timeout: cfg.API.Timeout,
	}, session, log)
	if err != nil {
		log.Fatal("Failed to create API client", zap.Error(err))
	}

	store := purchasing.NewPurchaseOrderStore(client, session, log)
	reference := purchasing.NewReferenceService(client, session, log)

	switch command {
	case "list":
		runList(ctx, store, args[1:])

	case "view":
		id := requireID(log, args, "view <order-id>")
		po, err := store.Load(ctx, id)
		if err != nil {
			log.Fatal("Failed to load order", zap.Int64("order_id", id), zap.Error(err))
		}
		printOrder(po)

	case "create":
		runCreate(ctx, store, reference, log, args[1:])

	case "delete":
		id := requireID(log, args, "delete <order-id>")
		if err := store.DeleteOrder(ctx, id); err != nil {
			log.Fatal("Failed to delete order", zap.Int64("order_id", id), zap.Error(err))
		}
		fmt.Printf("Deleted order %d\n", id)

	case "add-item":
		runAddItem(ctx, store, reference, log, args[1:])

	case "update-item":
		if len(args) < 4 {
			log.Fatal("Usage: update-item <item-id> <quantity> <unit-price>")
		}
		itemID := parseID(log, args[1])
		qty := parseInt(log, args[2])
		price := parsePrice(log, args[3])
		item, err := store.EditItem(ctx, itemID, qty, price)
		if err != nil {
			log.Fatal("Failed to update item", zap.Int64("item_id", itemID), zap.Error(err))
		}
		fmt.Printf("Item %d: quantity %d, subtotal %s\n", item.ID, item.Quantity, item.Subtotal)

	case "delete-item":
		itemID := requireID(log, args, "delete-item <item-id>")
		if err := store.DeleteItem(ctx, itemID); err != nil {
			log.Fatal("Failed to delete item", zap.Int64("item_id", itemID), zap.Error(err))
		}
		fmt.Printf("Deleted item %d\n", itemID)

	case "receive":
		runReceive(ctx, store, log, args[1:])

	case "products":
		products, err := reference.Products(ctx)
		if err != nil {
			log.Fatal("Failed to list products", zap.Error(err))
		}
		for _, p := range products {
			owner := "-"
			if p.Company != nil {
				owner = p.Company.Name
			}
			fmt.Printf("%6d  %-30s %s\n", p.ID, p.Name, owner)
		}

	case "companies":
		companies, err := reference.UserCompanies(ctx)
		if err != nil {
			log.Fatal("Failed to list companies", zap.Error(err))
		}
		for _, c := range companies {
			fmt.Printf("%6d  %s\n", c.ID, c.Name)
		}

	default:
		log.Error("Unknown command", zap.String("command", command))
		printUsage()
		os.Exit(1)
	}
}

func runList(ctx context.Context, store *purchasing.PurchaseOrderStore, args []string) {
	filter := order.ListFilter{}
	if len(args) > 0 {
		filter.Status = order.Status(strings.ToUpper(args[0]))
	}

	orders, err := store.List(ctx, filter)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to list orders: %v\n", err)
		os.Exit(1)
	}

	partition := purchasing.PartitionOrders(orders)
	fmt.Printf("%d orders (%d pending, %d received)\n\n",
		len(partition.All), len(partition.Pending), len(partition.Received))
	for _, po := range orders {
		summary := purchasing.ToOrderSummary(&po)
		fmt.Printf("%6d  %-16s %-10s %3d items  %12s  %s\n",
			summary.ID, summary.PONumber, summary.Status, summary.ItemCount,
			summary.TotalAmount, summary.Supplier)
	}
}

func runCreate(ctx context.Context, store *purchasing.PurchaseOrderStore, reference *purchasing.ReferenceService, log *zap.Logger, args []string) {
	fs := flag.NewFlagSet("create", flag.ExitOnError)
	var (
		poNumber  = fs.String("po-number", "", "PO number (required)")
		supplier  = fs.String("supplier", "", "Supplier name (required)")
		companyID = fs.Int64("company", 0, "Company ID (default: session company)")
		notes     = fs.String("notes", "", "Free-form notes")
		delivery  = fs.String("expected-delivery", "", "Expected delivery date (YYYY-MM-DD)")
		items     = fs.String("items", "", "Comma-separated productID:qty:price triples")
	)
	_ = fs.Parse(args)

	req := purchasing.CreateOrderRequest{
		PONumber:  *poNumber,
		CompanyID: *companyID,
		Supplier:  *supplier,
		OrderDate: time.Now(),
		Notes:     *notes,
	}
	if *delivery != "" {
		d, err := time.Parse("2006-01-02", *delivery)
		if err != nil {
			log.Fatal("Invalid expected delivery date", zap.String("value", *delivery))
		}
		req.ExpectedDeliveryDate = &d
	}

	if _, err := store.BeginDraft(req); err != nil {
		log.Fatal("Failed to start draft", zap.Error(err))
	}

	for _, spec := range splitItemSpecs(*items) {
		productID, qty, price, err := parseItemSpec(spec)
		if err != nil {
			log.Fatal("Invalid item spec", zap.String("spec", spec), zap.Error(err))
		}
		product, err := reference.FindProduct(ctx, productID)
		if err != nil {
			log.Fatal("Unknown product", zap.Int64("product_id", productID), zap.Error(err))
		}
		if _, err := store.StageItem(*product, qty, price); err != nil {
			log.Fatal("Failed to stage item", zap.Int64("product_id", productID), zap.Error(err))
		}
	}

	po, err := store.Submit(ctx)
	if err != nil {
		log.Fatal("Failed to submit order", zap.Error(err))
	}
	fmt.Printf("Created order %d (%s), total %s\n", po.ID, po.PONumber, po.TotalAmount)
}

func runAddItem(ctx context.Context, store *purchasing.PurchaseOrderStore, reference *purchasing.ReferenceService, log *zap.Logger, args []string) {
	if len(args) < 4 {
		log.Fatal("Usage: add-item <order-id> <product-id> <quantity> <unit-price>")
	}
	orderID := parseID(log, args[0])
	productID := parseID(log, args[1])
	qty := parseInt(log, args[2])
	price := parsePrice(log, args[3])

	if _, err := store.Load(ctx, orderID); err != nil {
		log.Fatal("Failed to load order", zap.Int64("order_id", orderID), zap.Error(err))
	}
	product, err := reference.FindProduct(ctx, productID)
	if err != nil {
		log.Fatal("Unknown product", zap.Int64("product_id", productID), zap.Error(err))
	}

	item, err := store.AddItemToExisting(ctx, orderID, *product, qty, price)
	if err != nil {
		log.Fatal("Failed to add item", zap.Error(err))
	}
	fmt.Printf("Added item %d (%s x%d)\n", item.ID, product.Name, qty)
}

// runReceive records received quantities. Each argument after the order ID is
// an itemID=quantity pair; omitted items receive nothing.
func runReceive(ctx context.Context, store *purchasing.PurchaseOrderStore, log *zap.Logger, args []string) {
	if len(args) < 2 {
		log.Fatal("Usage: receive <order-id> <item-id>=<quantity> ...")
	}
	orderID := parseID(log, args[0])

	po, err := store.Load(ctx, orderID)
	if err != nil {
		log.Fatal("Failed to load order", zap.Int64("order_id", orderID), zap.Error(err))
	}

	workflow := purchasing.NewReceivingWorkflow(store, log)
	if err := workflow.Begin(po); err != nil {
		log.Fatal("Cannot receive against this order", zap.Error(err))
	}

	for _, pair := range args[1:] {
		parts := strings.SplitN(pair, "=", 2)
		if len(parts) != 2 {
			log.Fatal("Invalid receive pair, want item-id=quantity", zap.String("value", pair))
		}
		itemID := parseID(log, parts[0])
		qty := parseInt(log, parts[1])
		if err := workflow.SetQuantity(itemID, qty); err != nil {
			log.Fatal("Invalid quantity", zap.Int64("item_id", itemID), zap.Error(err))
		}
	}

	updated, err := workflow.Submit(ctx)
	if err != nil {
		log.Fatal("Failed to submit receipt", zap.Error(err))
	}
	fmt.Printf("Order %d is now %s, %d remaining\n", updated.ID, updated.Status, updated.TotalRemaining())
}

func printOrder(po *order.PurchaseOrder) {
	fmt.Printf("Order %d  %s\n", po.ID, po.PONumber)
	fmt.Printf("Status:   %s\n", po.Status)
	fmt.Printf("Supplier: %s\n", po.Supplier)
	if po.Company != nil {
		fmt.Printf("Company:  %s\n", po.Company.Name)
	}
	fmt.Printf("Total:    %s\n", po.TotalAmount)
	if po.Status == order.StatusPending {
		fmt.Printf("Progress: %s%% received\n", po.ReceiveProgress())
	}
	fmt.Println("Items:")
	for _, item := range po.Items {
		fmt.Printf("  %6d  %-30s x%-4d @ %-10s = %-10s received %d\n",
			item.ID, item.Product.Name, item.Quantity, item.UnitPrice, item.Subtotal, item.ReceivedQuantity)
	}
}

func requireID(log *zap.Logger, args []string, usage string) int64 {
	if len(args) < 2 {
		log.Fatal("Missing argument", zap.String("usage", usage))
	}
	return parseID(log, args[1])
}

func parseID(log *zap.Logger, value string) int64 {
	id, err := strconv.ParseInt(value, 10, 64)
	if err != nil || id <= 0 {
		log.Fatal("Invalid numeric ID", zap.String("value", value))
	}
	return id
}

func parseInt(log *zap.Logger, value string) int {
	n, err := strconv.Atoi(value)
	if err != nil {
		log.Fatal("Invalid number", zap.String("value", value))
	}
	return n
}

func parsePrice(log *zap.Logger, value string) decimal.Decimal {
	price, err := decimal.NewFromString(value)
	if err != nil {
		log.Fatal("Invalid price", zap.String("value", value))
	}
	return price
}

func splitItemSpecs(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, ",")
}

// parseItemSpec parses a productID:qty:price triple
func parseItemSpec(spec string) (int64, int, decimal.Decimal, error) {
	parts := strings.Split(spec, ":")
	if len(parts) != 3 {
		return 0, 0, decimal.Zero, fmt.Errorf("want productID:qty:price, got %q", spec)
	}
	productID, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return 0, 0, decimal.Zero, fmt.Errorf("invalid product ID %q", parts[0])
	}
	qty, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, decimal.Zero, fmt.Errorf("invalid quantity %q", parts[1])
	}
	price, err := decimal.NewFromString(parts[2])
	if err != nil {
		return 0, 0, decimal.Zero, fmt.Errorf("invalid price %q", parts[2])
	}
	return productID, qty, price, nil
}

func printUsage() {
	fmt.Println(`Purchase Order CLI

Usage:
  poctl [flags] <command> [arguments]

Commands:
  list [status]                              List orders, optionally filtered by status
  view <order-id>                            Show one order with its items
  create -po-number ... -supplier ...        Create an order (see create -h)
  delete <order-id>                          Delete an order (server rejects received orders)
  add-item <order-id> <product> <qty> <price>   Add a line item
  update-item <item-id> <qty> <price>        Update a line item
  delete-item <item-id>                      Remove a line item
  receive <order-id> <item-id>=<qty> ...     Record received quantities
  products                                   List products
  companies                                  List your companies

Flags:
  -token string       Bearer token (default: POCTL_AUTH_TOKEN / config.toml)
  -log-level string   Log level: debug, info, warn, error

Examples:
  # List pending orders
  poctl list pending

  # Create an order with two items
  poctl create -po-number PO-2026-014 -supplier "Acme" -items 7:10:2.50,8:5:12

  # Receive part of an order
  poctl receive 14 11=4 12=5`)
}
