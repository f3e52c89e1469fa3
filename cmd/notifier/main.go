package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/authmify/config"
	"github.com/oksasatya/authmify/internal/infrastructure/search"
	"github.com/oksasatya/authmify/internal/notify"
	"github.com/oksasatya/authmify/pkg/helpers"
	"github.com/oksasatya/authmify/pkg/mailer"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName+"-notifier", cfg.Env)

	if cfg.RabbitMQURL == "" || cfg.RabbitMQEventsQueue == "" {
		log.Fatal("RabbitMQ not configured")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	proc := &notify.Processor{AppName: cfg.AppName, Logger: logger}

	if addrs := cfg.ESAddrs(); len(addrs) > 0 {
		es, err := helpers.NewESClient(addrs, cfg.ElasticsearchUser, cfg.ElasticsearchPass)
		if err != nil {
			logger.WithError(err).Fatal("elasticsearch client")
		}
		idx := search.NewEventIndex(es, cfg.ESEventsIndex)
		if err := idx.EnsureIndex(ctx); err != nil {
			logger.WithError(err).Fatal("ensure events index")
		}
		proc.Indexer = idx
	}

	if cfg.MailSendEnabled {
		if cfg.MailgunDomain == "" || cfg.MailgunAPIKey == "" || cfg.MailgunSender == "" {
			log.Fatal("Mailgun not configured")
		}
		mg := mailer.NewMailgun(cfg.MailgunDomain, cfg.MailgunAPIKey, cfg.MailgunSender)
		proc.Sender = mg
	} else {
		logger.Info("MAIL_SEND_ENABLED=false; notifications are indexed but not emailed")
	}

	consumer, err := helpers.NewRabbitConsumer(cfg.RabbitMQURL, cfg.RabbitMQEventsQueue, 16)
	if err != nil {
		logger.WithError(err).Fatal("rabbitmq consumer")
	}
	defer consumer.Close()

	msgs, err := consumer.Deliveries(cfg.AppName + "-notifier")
	if err != nil {
		logger.WithError(err).Fatal("consume")
	}

	helpers.LogInfo(logger, "notifier listening", logrus.Fields{"queue": cfg.RabbitMQEventsQueue})
	if err := proc.Run(ctx, msgs); err != nil && ctx.Err() == nil {
		logger.WithError(err).Error("notifier stopped")
	}
	logger.Info("notifier exited")
}
