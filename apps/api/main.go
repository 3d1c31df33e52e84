package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/campusvoice/backend/apps/api/echo"
	"github.com/campusvoice/backend/core"
	"github.com/campusvoice/backend/core/auth"
	"github.com/campusvoice/backend/core/feedback"
	"github.com/campusvoice/backend/core/user"
	"github.com/campusvoice/backend/services/email"
	"github.com/campusvoice/backend/services/logger"
	"github.com/campusvoice/backend/storage/database"
	"github.com/campusvoice/backend/storage/database/mongo"
)

func main() {
	conf := core.NewConfig()
	std := log.New(os.Stdout, conf.AppName+" ", log.LstdFlags|log.Lshortfile)

	var logger core.Logger
	if conf.Debug {
		logger = logsvc.NewConsoleLogger(std)
	} else {
		logger = logsvc.NewRollbarLogger(std, conf)
	}

	validate, translator := core.NewValidator()

	// set up DB & repos
	client, db, err := database.Open(conf)
	if err != nil {
		logger.Fatal("opening database", err)
	}
	defer func() { _ = client.Disconnect(context.Background()) }()

	usrRepo := mongodb.NewUserRepository(db)
	fbRepo := mongodb.NewFeedbackRepository(db)

	// set up services
	var mailSvc core.EmailService
	if conf.Debug {
		mailSvc = emailsvc.NewConsoleService(conf)
	} else {
		mailSvc = emailsvc.NewSendgridService(conf, logger)
	}
	usrSvc := user.NewService(usrRepo)
	fbSvc := feedback.NewService(fbRepo, usrRepo, mailSvc, logger)
	tokenSvc := auth.NewTokenService(conf)

	// start API server
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	app := echoapi.NewServer(&echoapi.Options{
		Addr:           conf.Server.Addr,
		Conf:           conf,
		Logger:         logger,
		UserSvc:        usrSvc,
		FeedbackSvc:    fbSvc,
		TokenSvc:       tokenSvc,
		Validate:       validate,
		Translator:     translator,
		SignalShutdown: func() { shutdown <- syscall.SIGTERM },
	})

	serverErrors := make(chan error, 1)
	go func() { serverErrors <- app.Start() }()

	select {
	case err := <-serverErrors:
		logger.Fatal("server error", err)
	case sig := <-shutdown:
		logger.Info("shutdown started", map[string]interface{}{"signal": sig.String()})
		ctx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
		defer cancel()
		if err := app.Stop(ctx); err != nil {
			logger.Error("graceful shutdown failed", err)
		}
	}
}
