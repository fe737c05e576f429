package main

import (
	"log"

	"github.com/eventrift/payment-service/config"
	"github.com/eventrift/payment-service/internal/consumer"
	"github.com/eventrift/payment-service/internal/handler"
	"github.com/eventrift/payment-service/internal/middleware"
	"github.com/eventrift/payment-service/internal/repository"
	"github.com/eventrift/payment-service/internal/service"
	"github.com/eventrift/payment-service/pkg/daraja"
	"github.com/eventrift/payment-service/pkg/database"
	"github.com/eventrift/payment-service/pkg/rabbitmq"
	"github.com/labstack/echo/v4"
	echoMw "github.com/labstack/echo/v4/middleware"
)

func main() {
	cfg := config.Load()

	db := database.NewPostgresDB(cfg.DSN())

	// RabbitMQ consumer: sync events from Event Service
	mqConsumer, err := rabbitmq.NewConsumer(cfg.RabbitURL)
	if err != nil {
		log.Fatalf("failed to connect to RabbitMQ: %v", err)
	}
	defer mqConsumer.Close()

	msgs, err := mqConsumer.Consume()
	if err != nil {
		log.Fatalf("failed to start consuming: %v", err)
	}

	eventConsumer := consumer.NewEventConsumer(db)
	eventConsumer.Start(msgs)

	// RabbitMQ publisher: settlement outcomes for the notification service
	publisher, err := rabbitmq.NewPublisher(cfg.RabbitURL)
	if err != nil {
		log.Fatalf("failed to create RabbitMQ publisher: %v", err)
	}
	defer publisher.Close()

	// Repositories
	eventRepo := repository.NewEventRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	orderRepo := repository.NewTicketOrderRepository(db)
	stallRepo := repository.NewStallBookingRepository(db)
	typeRepo := repository.NewStallTypeRepository(db)
	ticketRepo := repository.NewTicketRepository(db)

	// Settlement flows: ticket purchases and stall bookings are two
	// configurations of the same state machine.
	fulfillment := service.NewFulfillmentEngine(orderRepo, stallRepo, ticketRepo)
	ticketFlow := fulfillment.TicketFlow()
	stallFlow := fulfillment.StallFlow()

	gateway := daraja.NewClient(daraja.Config{
		BaseURL:         cfg.Daraja.BaseURL,
		ConsumerKey:     cfg.Daraja.ConsumerKey,
		ConsumerSecret:  cfg.Daraja.ConsumerSecret,
		ShortCode:       cfg.Daraja.ShortCode,
		Passkey:         cfg.Daraja.Passkey,
		CallbackBaseURL: cfg.Daraja.CallbackBaseURL,
		TransactionType: cfg.Daraja.TransactionType,
	})

	// Services
	checkoutSvc := service.NewCheckoutService(paymentRepo, orderRepo, stallRepo, typeRepo, eventRepo, gateway, ticketFlow, stallFlow)
	reconcileSvc := service.NewReconcileService(paymentRepo, publisher, ticketFlow, stallFlow)
	ticketSvc := service.NewTicketService(ticketRepo)

	// Echo
	e := echo.New()
	e.HTTPErrorHandler = middleware.ErrorHandler
	e.Use(echoMw.RequestLoggerWithConfig(echoMw.RequestLoggerConfig{
		LogStatus: true,
		LogURI:    true,
		LogMethod: true,
		LogValuesFunc: func(c echo.Context, v echoMw.RequestLoggerValues) error {
			log.Printf("%s %s %d", v.Method, v.URI, v.Status)
			return nil
		},
	}))
	e.Use(echoMw.Recover())

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(200, map[string]string{"status": "ok", "service": "payment-service"})
	})

	handler.NewCheckoutHandler(checkoutSvc, orderRepo, stallRepo, typeRepo).RegisterRoutes(e)
	handler.NewCallbackHandler(reconcileSvc).RegisterRoutes(e, ticketFlow, stallFlow)
	handler.NewTicketHandler(ticketSvc).RegisterRoutes(e)

	log.Printf("Payment Service starting on :%s", cfg.ServerPort)
	e.Logger.Fatal(e.Start(":" + cfg.ServerPort))
}
