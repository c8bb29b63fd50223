package main

import (
	"log"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	v1 "shopgate/api/v1"
	"shopgate/internal/auth"
	"shopgate/internal/cache"
	"shopgate/internal/config"
	"shopgate/internal/db"
	"shopgate/internal/domain"
	"shopgate/internal/events"
	"shopgate/internal/order"
	"shopgate/internal/payment"
	"shopgate/internal/payu"
	"shopgate/internal/tenant"
	"shopgate/internal/ws"
)

func main() {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	log.Println("✓ Configuration loaded")

	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if cfg.IsProduction() {
		logger.SetLevel(logrus.InfoLevel)
	} else {
		logger.SetLevel(logrus.DebugLevel)
	}
	rootLog := logrus.NewEntry(logger)

	// 2. Initialize MySQL
	if err := db.InitMySQL(cfg.MySQL.DSN); err != nil {
		log.Fatalf("Failed to initialize MySQL: %v", err)
	}
	defer db.Close()
	gdb := db.GetDB()

	if cfg.Migrate {
		if err := db.Migrate(gdb); err != nil {
			log.Fatalf("Failed to run migrations: %v", err)
		}
		log.Println("✓ Migrations applied")
	}

	// 3. Initialize Redis and the two request-path caches
	redisClient, err := cache.NewRedisClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		log.Fatalf("Failed to initialize Redis: %v", err)
	}
	defer redisClient.Close()

	brandCache := cache.NewRedisStore(redisClient, "brand", time.Duration(cfg.Cache.BrandTTLSec)*time.Second)
	corsCache := cache.NewRedisStore(redisClient, "cors", time.Duration(cfg.Cache.CORSTTLSec)*time.Second)

	// 4. Admin auth
	auth.InitJWT(cfg.JWT.Secret)

	// 5. Event publisher: RabbitMQ when configured, otherwise a no-op
	var publisher events.Publisher = events.NoopPublisher{}
	if cfg.AMQP.URL != "" {
		rabbit, err := events.NewRabbitPublisher(cfg.AMQP.URL, cfg.AMQP.Exchange)
		if err != nil {
			log.Fatalf("Failed to connect to AMQP broker: %v", err)
		}
		defer rabbit.Close()
		publisher = rabbit
		log.Println("✓ AMQP publisher connected")
	}

	// 6. Realtime order status channel
	var notifier payment.Notifier = payment.NoopNotifier{}
	if err := ws.InitServer(); err != nil {
		log.Printf("WebSocket server unavailable, storefronts fall back to polling: %v", err)
	} else {
		notifier = ws.NewOrderNotifier()
	}

	// 7. Tenant services
	production := cfg.IsProduction()
	readers := domain.NewReaders(gdb)
	resolver := tenant.NewResolver(production)
	brandService := tenant.NewBrandService(readers, readers, brandCache, production)
	gate := tenant.NewGate(readers, corsCache, production)

	registry := domain.NewRegistry(gdb, net.DefaultResolver, brandService, gate,
		cfg.Domains.Denylist, cfg.Domains.DNSCheckEnabled)
	brandAdmin := domain.NewBrandAdmin(gdb, brandService)
	allowlist := domain.NewAllowlist(gdb, gate)

	// 8. Payment services
	gateway := payu.NewClient(cfg.PayU.Key, cfg.PayU.Salt, cfg.PayU.PaymentURL,
		cfg.PayU.CallbackURL+"/api/v1/payments/callback",
		cfg.PayU.CallbackURL+"/api/v1/payments/callback")
	orderStore := order.NewStore(gdb)
	paymentSvc := payment.NewService(orderStore, gateway, rootLog)
	processor := payment.NewProcessor(orderStore, gateway, publisher, notifier, rootLog, cfg.PayU.FrontendURL)

	reaper := payment.NewReaper(orderStore, publisher, payment.ReaperConfig{
		Enabled:       cfg.Reaper.Enabled,
		IntervalSec:   cfg.Reaper.IntervalSec,
		StaleAfterMin: cfg.Reaper.StaleAfterMin,
	}, rootLog)
	reaper.Start()
	defer reaper.Stop()

	// 9. HTTP server
	if production {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.Default()

	v1.SetupRouter(r, gdb, cfg, v1.Deps{
		Resolver:     resolver,
		Gate:         gate,
		BrandService: brandService,
		Registry:     registry,
		BrandAdmin:   brandAdmin,
		Allowlist:    allowlist,
		PaymentSvc:   paymentSvc,
		Processor:    processor,
	})

	go func() {
		log.Printf("✓ Server starting on %s", cfg.HTTPAddr)
		if err := r.Run(cfg.HTTPAddr); err != nil {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down")
}
