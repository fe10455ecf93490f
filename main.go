package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/sirupsen/logrus"

	"tourism_marketplace/config"
	"tourism_marketplace/database"
	"tourism_marketplace/gateway"
	"tourism_marketplace/handler"
	"tourism_marketplace/helper"
	"tourism_marketplace/model"
	"tourism_marketplace/router"
	"tourism_marketplace/service"
	"tourism_marketplace/utils"
)

func main() {
	cfg := config.Load()
	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		logrus.SetLevel(level)
	}
	logrus.SetFormatter(&logrus.JSONFormatter{})
	if err := cfg.Validate(); err != nil {
		logrus.WithError(err).Fatal("invalid configuration")
	}
	loc := cfg.Location()

	db, err := database.ConnectDB(cfg)
	if err != nil {
		logrus.WithError(err).Fatal("database unavailable")
	}

	tokens := helper.NewTokenIssuer(cfg.JWTSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
	realtime := helper.NewRealtime(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	defer realtime.Close()

	images, err := helper.NewImageStore(cfg)
	if err != nil {
		logrus.WithError(err).Fatal("image store unavailable")
	}

	sectors := service.NewSectorService(db)
	transactions := service.NewTransactionService(db, gateway.NewClient(gateway.ConfigFrom(cfg)), sectors, cfg.Currency, loc)
	tickets := service.NewTicketService(db, transactions, service.NewPayloadSigner(cfg.TicketSecret), loc)
	if realtime != nil {
		tickets.SetNotifier(realtime)
	}
	users := service.NewUserService(db, tokens)
	if mailer := utils.NewMailer(cfg); mailer != nil {
		tickets.SetMailer(mailer)
		users.SetWelcomeMailer(mailer)
	} else {
		logrus.Info("SMTP not configured, mails disabled")
	}

	h := &handler.Handler{
		Catalog:      service.NewCatalogService(db),
		Sectors:      sectors,
		Transactions: transactions,
		Tickets:      tickets,
		Favorites:    service.NewFavoriteService(db),
		Users:        users,
		Images:       images,
		Realtime:     realtime,
		Reports:      db,
		DeepLink:     cfg.AppDeepLink,
		Location:     loc,
	}

	schedulers, err := helper.StartSchedulers(loc,
		func(ctx context.Context) error {
			_, err := tickets.ExpireOverdue(ctx)
			return err
		},
		cfg.ReconcileCron,
		func(ctx context.Context) error {
			settled, err := transactions.ReconcilePending(ctx, cfg.ReconcileMinAge)
			if err != nil {
				return err
			}
			for _, trx := range settled {
				if trx.Status != model.TransactionAuthorized {
					continue
				}
				if _, err := tickets.IssueForTransaction(ctx, trx.GatewayTransactionID); err != nil {
					logrus.WithError(err).WithField("transaction_id", trx.GatewayTransactionID).Error("ticket issuance after reconcile failed")
				}
			}
			return nil
		},
	)
	if err != nil {
		logrus.WithError(err).Fatal("schedulers failed to start")
	}
	defer schedulers.Stop()

	app := fiber.New(fiber.Config{
		BodyLimit: 10 * 1024 * 1024,
	})
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:  "*",
		AllowMethods:  "GET,POST,PUT,DELETE,PATCH,OPTIONS",
		AllowHeaders:  "Origin, Content-Type, Authorization, Accept",
		ExposeHeaders: "Set-Cookie",
		MaxAge:        600,
	}))

	router.SetupRoutes(app, h, tokens, cfg)

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit
		logrus.Info("shutting down")
		if err := app.Shutdown(); err != nil {
			logrus.WithError(err).Error("server shutdown")
		}
	}()

	if err := app.Listen(":" + cfg.Port); err != nil {
		logrus.WithError(err).Error("server stopped")
	}
}
