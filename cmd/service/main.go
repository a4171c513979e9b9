package main

import (
	"os"
	"os/signal"
	"syscall"

	flag "github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/tokenarena/arena-backend/api"
	"github.com/tokenarena/arena-backend/db"
	"github.com/tokenarena/arena-backend/notifications"
	"github.com/tokenarena/arena-backend/notifications/smtp"
	"github.com/tokenarena/arena-backend/notifications/twilio"
	"github.com/tokenarena/arena-backend/stripe"
	"go.vocdoni.io/dvote/log"
)

func main() {
	log.Init("debug", "stdout", nil)
	// define flags
	flag.StringP("host", "h", "0.0.0.0", "listen address")
	flag.IntP("port", "p", 8080, "listen port")
	flag.StringP("secret", "s", "", "API secret")
	flag.String("mongo-url", "", "The URL of the MongoDB server")
	flag.String("mongo-db", "arena-backend", "The name of the MongoDB database")
	flag.String("stripe-api-secret", "", "Stripe API secret key")
	flag.String("stripe-webhook-secret", "", "Stripe webhook signing secret")
	flag.String("stripe-vip-price-id", "", "Stripe recurring price ID for the VIP membership")
	flag.String("smtp-server", "", "SMTP server")
	flag.Int("smtp-port", 587, "SMTP port")
	flag.String("smtp-username", "", "SMTP username")
	flag.String("smtp-password", "", "SMTP password")
	flag.String("email-from-address", "", "Email service from address")
	flag.String("email-from-name", "Token Arena", "Email service from name")
	flag.String("twilio-account-sid", "", "Twilio account SID")
	flag.String("twilio-auth-token", "", "Twilio auth token")
	flag.String("twilio-from-number", "", "Twilio sender number")
	// parse flags
	flag.Parse()
	// initialize Viper
	viper.SetEnvPrefix("ARENA")
	if err := viper.BindPFlags(flag.CommandLine); err != nil {
		panic(err)
	}
	viper.AutomaticEnv()
	// read the configuration
	host := viper.GetString("host")
	port := viper.GetInt("port")
	secret := viper.GetString("secret")
	if secret == "" {
		log.Fatal("secret is required")
	}
	mongoURL := viper.GetString("mongo-url")
	mongoDB := viper.GetString("mongo-db")
	stripeAPISecret := viper.GetString("stripe-api-secret")
	stripeWebhookSecret := viper.GetString("stripe-webhook-secret")
	stripeVIPPriceID := viper.GetString("stripe-vip-price-id")
	// initialize the MongoDB database
	database, err := db.New(mongoURL, mongoDB)
	if err != nil {
		log.Fatalf("could not create the MongoDB database: %v", err)
	}
	defer database.Close()
	// create email service if the configuration is provided
	var mailService notifications.NotificationService
	if smtpServer := viper.GetString("smtp-server"); smtpServer != "" {
		mailService = new(smtp.Email)
		if err := mailService.Init(&smtp.Config{
			FromName:     viper.GetString("email-from-name"),
			FromAddress:  viper.GetString("email-from-address"),
			SMTPServer:   smtpServer,
			SMTPPort:     viper.GetInt("smtp-port"),
			SMTPUsername: viper.GetString("smtp-username"),
			SMTPPassword: viper.GetString("smtp-password"),
		}); err != nil {
			log.Fatalf("could not create the email service: %v", err)
		}
		log.Infow("email service created", "server", smtpServer)
	}
	// create SMS service if the configuration is provided
	var smsService notifications.NotificationService
	if twilioSid := viper.GetString("twilio-account-sid"); twilioSid != "" {
		smsService = new(twilio.TwilioSMS)
		if err := smsService.Init(&twilio.TwilioConfig{
			AccountSid: twilioSid,
			AuthToken:  viper.GetString("twilio-auth-token"),
			FromNumber: viper.GetString("twilio-from-number"),
		}); err != nil {
			log.Fatalf("could not create the SMS service: %v", err)
		}
		log.Infow("SMS service created")
	}
	// create the Stripe service
	stripeConfig, err := stripe.NewConfig(stripeAPISecret, stripeWebhookSecret, stripeVIPPriceID)
	if err != nil {
		log.Fatalf("invalid stripe configuration: %v", err)
	}
	stripeService, err := stripe.NewService(stripeConfig, database, mailService)
	if err != nil {
		log.Fatalf("could not create the stripe service: %v", err)
	}
	// create the local API server
	api.New(&api.Config{
		Host:        host,
		Port:        port,
		Secret:      secret,
		DB:          database,
		Stripe:      stripeService,
		MailService: mailService,
		SMSService:  smsService,
	}).Start()
	// wait forever, as the server is running in a goroutine
	log.Infow("server started", "host", host, "port", port)
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	<-c
}
