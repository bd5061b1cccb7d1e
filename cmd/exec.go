package cmd

import (
	"context"
	"log"
	"log/slog"

	"whitelotus/config"
	"whitelotus/handlers"
	"whitelotus/internal/gateway"
	"whitelotus/security"
	"whitelotus/services"
	"whitelotus/utils"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"
	"github.com/pocketbase/pocketbase/plugins/migratecmd"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	pubnub "github.com/pubnub/go/v7"
)

func Start() error {
	app := pocketbase.New()

	cfg := config.LoadConfig()

	redisClient := utils.NewRedisClient(cfg.RedisURL, cfg.RedisPassword, cfg.RedisDB)
	defer redisClient.Close()

	pnConfig := pubnub.NewConfigWithUserId(pubnub.UserId(cfg.PubNubUUID))
	pnConfig.PublishKey = cfg.PubNubPublishKey
	pnConfig.SubscribeKey = cfg.PubNubSubscribeKey
	pnConfig.SecretKey = cfg.PubNubSecretKey
	pn := pubnub.NewPubNub(pnConfig)

	gw := gateway.New(gateway.Config{
		BaseURL:       cfg.GatewayBaseURL,
		MerchantID:    cfg.MerchantID,
		GatewayID:     cfg.GatewayID,
		SecretKey:     cfg.GatewaySecret,
		Currency:      cfg.GatewayCurrency,
		Language:      cfg.GatewayLanguage,
		PublicBaseURL: cfg.PublicBaseURL,
	})

	notifier := services.NewNotifier(app, pn, cfg)
	capacityService := services.NewCapacityService(app, redisClient)
	ticketService := services.NewTicketService(app, gw, capacityService, notifier, cfg.TicketMaxQuantity)
	cardService := services.NewCardService(app, gw, notifier)
	mealService := services.NewMealService(app, gw, notifier, cfg.MealPrice, cfg.MealRedeemMax, cfg.MealCardValidity, cfg.StaffPINHash)
	creditService := services.NewCreditService(app)
	bookingService := services.NewBookingService(app, notifier)

	ticketHandler := handlers.NewTicketHandler(app, ticketService, capacityService)
	cardHandler := handlers.NewCardHandler(cardService)
	mealHandler := handlers.NewMealHandler(mealService)
	creditHandler := handlers.NewCreditHandler(creditService)
	bookingHandler := handlers.NewBookingHandler(bookingService)
	paymentHandler := handlers.NewPaymentHandler(ticketService, cardService, mealService, cfg.SuccessRedirect, cfg.FailureRedirect)

	limiter := security.NewRateLimiter(redisClient, cfg.CheckoutRateLimit, cfg.CheckoutRateWindow)

	migratecmd.MustRegister(app, app.RootCmd, migratecmd.Config{
		Automigrate: cfg.Environment == "development",
	})

	// Monthly cycle policies also run from a daily job, so dormant cards
	// refresh without waiting for a lookup.
	app.Cron().MustAdd("cardCyclePass", "0 4 * * *", func() {
		cardService.RunCyclePass(context.Background())
	})

	app.OnServe().BindFunc(func(se *core.ServeEvent) error {
		handlers.Register(se, limiter, ticketHandler, cardHandler, mealHandler, creditHandler, bookingHandler, paymentHandler)

		if cfg.EnableMetrics {
			se.Router.GET("/metrics", func(e *core.RequestEvent) error {
				promhttp.Handler().ServeHTTP(e.Response, e.Request)
				return nil
			})
		}

		se.Router.GET("/health", func(e *core.RequestEvent) error {
			if err := utils.RedisHealthCheck(redisClient); err != nil {
				return e.JSON(503, map[string]string{"status": "degraded", "error": err.Error()})
			}
			return e.JSON(200, map[string]string{"status": "healthy"})
		})

		slog.Info("routes registered", "env", cfg.Environment)
		return se.Next()
	})

	if err := app.Start(); err != nil {
		log.Fatal(err)
	}
	return nil
}
