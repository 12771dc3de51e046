package main

import (
	"database/sql"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	jwtware "github.com/gofiber/jwt/v2"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"

	"github.com/westmarin/yacht-store-backend/internal/account"
	"github.com/westmarin/yacht-store-backend/internal/cart"
	"github.com/westmarin/yacht-store-backend/internal/catalog"
	"github.com/westmarin/yacht-store-backend/internal/config"
	"github.com/westmarin/yacht-store-backend/internal/coupon"
	"github.com/westmarin/yacht-store-backend/internal/identity"
	"github.com/westmarin/yacht-store-backend/internal/logging"
	"github.com/westmarin/yacht-store-backend/internal/order"
	"github.com/westmarin/yacht-store-backend/internal/payment"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	log := logging.New()

	db := mustOpenDB(cfg.DatabaseURL)
	defer db.Close()
	if err := ensureSchema(db); err != nil {
		log.Fatal().Err(err).Msg("schema migration failed")
	}
	seedShippingMethods(db)

	app := fiber.New()
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,HEAD,PUT,DELETE,PATCH",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, " + identity.SessionHeader,
	}))

	catalogService := catalog.NewService(catalog.NewPostgresRepository(db))
	cartService := cart.NewService(cart.NewPostgresRepository(db), catalogService)
	couponRepo := coupon.NewPostgresRepository(db)
	orderService := order.NewService(order.NewPostgresRepository(db), cartService, catalogService, couponRepo)
	accountService := account.NewService(account.NewPostgresRepository(db))

	provider := payment.NewStripeProvider(cfg.StripeSecretKey)
	paymentService := payment.NewService(provider, orderService)
	reconciler := payment.NewReconciler(orderService, log)
	paymentHandler := payment.NewHandler(paymentService, reconciler,
		payment.NewPostgresEventStore(db), cfg.StripeWebhookSecret, log)

	// public routes go in before the JWT middleware
	account.NewHandler(accountService, cfg.JWTSecret).RegisterPublicRoutes(app)
	catalog.NewHandler(catalogService).RegisterPublicRoutes(app)
	paymentHandler.RegisterWebhookRoute(app)

	app.Use(jwtware.New(jwtware.Config{
		SigningKey: []byte(cfg.JWTSecret),
		// guests shop with a session token instead of a JWT; identity
		// resolution downstream decides what they may do
		Filter: func(c *fiber.Ctx) bool {
			return c.Get("Authorization") == "" && c.Get(identity.SessionHeader) != ""
		},
	}))

	cart.NewHandler(cartService).RegisterRoutes(app)
	orderHandler := order.NewHandler(orderService)
	orderHandler.RegisterRoutes(app)
	orderHandler.RegisterAdminRoutes(app)
	paymentHandler.RegisterRoutes(app)

	log.Info().Str("addr", cfg.Addr).Msg("starting server")
	if err := app.Listen(cfg.Addr); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}

func mustOpenDB(dbURL string) *sql.DB {
	if dbURL == "" {
		panic("DATABASE_URL is not set")
	}

	db, err := sql.Open("pgx", dbURL)
	if err != nil {
		panic(err)
	}
	if err := db.Ping(); err != nil {
		panic(err)
	}
	return db
}

// ensureSchema runs the idempotent startup DDL.
func ensureSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS accounts (
            id SERIAL PRIMARY KEY,
            email TEXT NOT NULL UNIQUE,
            password_hash TEXT NOT NULL,
            first_name TEXT NOT NULL DEFAULT '',
            last_name TEXT NOT NULL DEFAULT '',
            role TEXT NOT NULL DEFAULT 'customer',
            created_at TEXT NOT NULL DEFAULT '',
            updated_at TEXT NOT NULL DEFAULT ''
        )`,
		`CREATE TABLE IF NOT EXISTS products (
            id SERIAL PRIMARY KEY,
            name TEXT NOT NULL,
            description TEXT NOT NULL DEFAULT '',
            price_cents BIGINT NOT NULL DEFAULT 0,
            stock INT NOT NULL DEFAULT 0,
            active BOOLEAN NOT NULL DEFAULT TRUE,
            image_url TEXT NOT NULL DEFAULT '',
            image_urls TEXT[] NOT NULL DEFAULT '{}'
        )`,
		`CREATE TABLE IF NOT EXISTS shipping_methods (
            id SERIAL PRIMARY KEY,
            name TEXT NOT NULL,
            price_cents BIGINT NOT NULL DEFAULT 0,
            active BOOLEAN NOT NULL DEFAULT TRUE
        )`,
		`CREATE TABLE IF NOT EXISTS cart_lines (
            id SERIAL PRIMARY KEY,
            owner_key TEXT NOT NULL,
            product_id INT NOT NULL,
            quantity INT NOT NULL,
            UNIQUE (owner_key, product_id)
        )`,
		`CREATE TABLE IF NOT EXISTS coupons (
            id SERIAL PRIMARY KEY,
            code TEXT NOT NULL UNIQUE,
            type TEXT NOT NULL,
            value BIGINT NOT NULL DEFAULT 0,
            min_order_cents BIGINT NOT NULL DEFAULT 0,
            max_discount_cents BIGINT NOT NULL DEFAULT 0,
            usage_limit INT NOT NULL DEFAULT 0,
            usage_count INT NOT NULL DEFAULT 0,
            expires_at TIMESTAMPTZ,
            active BOOLEAN NOT NULL DEFAULT TRUE
        )`,
		`CREATE TABLE IF NOT EXISTS orders (
            id SERIAL PRIMARY KEY,
            order_number TEXT NOT NULL UNIQUE,
            owner_key TEXT NOT NULL,
            account_id INT,
            guest_email TEXT,
            status TEXT NOT NULL,
            subtotal_cents BIGINT NOT NULL,
            shipping_cents BIGINT NOT NULL,
            discount_cents BIGINT NOT NULL DEFAULT 0,
            total_cents BIGINT NOT NULL,
            coupon_id INT,
            shipping_method_id INT NOT NULL,
            ship_name TEXT NOT NULL DEFAULT '',
            ship_street TEXT NOT NULL DEFAULT '',
            ship_city TEXT NOT NULL DEFAULT '',
            ship_state TEXT NOT NULL DEFAULT '',
            ship_zip TEXT NOT NULL DEFAULT '',
            ship_country TEXT NOT NULL DEFAULT '',
            ship_phone TEXT NOT NULL DEFAULT '',
            notes TEXT NOT NULL DEFAULT '',
            provider_payment_ref TEXT NOT NULL DEFAULT '',
            tracking_number TEXT NOT NULL DEFAULT '',
            created_at TEXT NOT NULL DEFAULT '',
            updated_at TEXT NOT NULL DEFAULT ''
        )`,
		`CREATE INDEX IF NOT EXISTS idx_orders_owner_key ON orders (owner_key)`,
		`CREATE INDEX IF NOT EXISTS idx_orders_provider_payment_ref ON orders (provider_payment_ref)`,
		`CREATE TABLE IF NOT EXISTS order_lines (
            id SERIAL PRIMARY KEY,
            order_id INT NOT NULL REFERENCES orders(id),
            product_id INT NOT NULL,
            product_name TEXT NOT NULL,
            product_image TEXT NOT NULL DEFAULT '',
            quantity INT NOT NULL,
            price_cents BIGINT NOT NULL
        )`,
		`CREATE INDEX IF NOT EXISTS idx_order_lines_order_id ON order_lines (order_id)`,
		`CREATE TABLE IF NOT EXISTS webhook_events (
            event_id TEXT PRIMARY KEY,
            event_type TEXT NOT NULL DEFAULT '',
            received_at TEXT NOT NULL DEFAULT ''
        )`,
	}

	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// seedShippingMethods inserts the default delivery options when the table is
// empty, so a fresh install can check out immediately.
func seedShippingMethods(db *sql.DB) {
	var count int
	if err := db.QueryRow(`SELECT COUNT(*) FROM shipping_methods`).Scan(&count); err != nil || count > 0 {
		return
	}

	seed := []struct {
		name  string
		price int64
	}{
		{"Marina pickup", 0},
		{"Standard dockside delivery", 1000},
		{"Express courier", 2500},
	}
	for _, s := range seed {
		if _, err := db.Exec(`INSERT INTO shipping_methods (name, price_cents, active) VALUES ($1,$2,TRUE)`, s.name, s.price); err != nil {
			continue
		}
	}
}
