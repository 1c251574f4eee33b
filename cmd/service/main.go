package main

import (
	"errors"
	"io/fs"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	flag "github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/vocdoni/checkout-backend/api"
	"github.com/vocdoni/checkout-backend/notifications/smtp"
	"github.com/vocdoni/checkout-backend/notifications/twilio"
	"github.com/vocdoni/checkout-backend/stripe"
	"go.vocdoni.io/dvote/log"
)

func main() {
	// a local .env file is optional, the environment always wins over it
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		panic(err)
	}

	defaults := stripe.DefaultConfig()
	// define flags
	flag.StringP("host", "h", "0.0.0.0", "listen address")
	flag.IntP("port", "p", 3000, "listen port")
	flag.StringP("logLevel", "l", "info", "log level (debug, info, warn, error)")
	flag.StringP("baseURL", "u", "", "public URL of the shop, used for the default success and cancel URLs")
	flag.String("stripeApiSecret", "", "Stripe secret API key")
	flag.String("stripeWebhookSecret", "", "Stripe webhook signing secrets, comma separated (current first)")
	flag.Duration("stripeWebhookTolerance", stripe.DefaultWebhookTolerance, "maximum age of a webhook signature")
	flag.StringSlice("shippingCountries", defaults.AllowedShippingCountries, "countries the shop ships to")
	flag.String("shippingName", defaults.ShippingDisplayName, "display name of the paid shipping rate")
	flag.String("freeShippingName", defaults.FreeShippingDisplayName, "display name of the free shipping rate")
	flag.String("metadataSource", defaults.MetadataSource, "source tag stored in the session and customer metadata")
	// order notifications to the shop staff
	flag.String("smtpServer", "", "SMTP server")
	flag.Int("smtpPort", 587, "SMTP port")
	flag.String("smtpUsername", "", "SMTP username")
	flag.String("smtpPassword", "", "SMTP password")
	flag.String("emailFromAddress", "", "SMTP from address")
	flag.String("emailFromName", "Shop", "SMTP from name")
	flag.String("notifyEmail", "", "email address notified of paid and failed orders")
	flag.String("twilioAccountSid", "", "Twilio account SID")
	flag.String("twilioAuthToken", "", "Twilio auth token")
	flag.String("twilioFromNumber", "", "Twilio sender phone number")
	flag.String("notifyPhone", "", "phone number notified by SMS of paid and failed orders")
	// parse flags
	flag.Parse()
	// initialize Viper
	viper.SetEnvPrefix("CHECKOUT")
	if err := viper.BindPFlags(flag.CommandLine); err != nil {
		panic(err)
	}
	viper.AutomaticEnv()
	// the names used by the previous deployments are still honoured
	for key, legacy := range map[string]string{
		"stripeApiSecret":     "STRIPE_SECRET_KEY",
		"stripeWebhookSecret": "STRIPE_WEBHOOK_SECRET",
		"baseURL":             "BASE_URL",
	} {
		if err := viper.BindEnv(key, "CHECKOUT_"+strings.ToUpper(key), legacy); err != nil {
			panic(err)
		}
	}

	// read the configuration
	log.Init(viper.GetString("logLevel"), "stdout", nil)
	host := viper.GetString("host")
	port := viper.GetInt("port")
	baseURL := viper.GetString("baseURL")
	stripeConf := &stripe.Config{
		APIKey:                   viper.GetString("stripeApiSecret"),
		WebhookSecrets:           stripe.ParseSecrets(viper.GetString("stripeWebhookSecret")),
		WebhookTolerance:         viper.GetDuration("stripeWebhookTolerance"),
		AllowedShippingCountries: viper.GetStringSlice("shippingCountries"),
		ShippingDisplayName:      viper.GetString("shippingName"),
		FreeShippingDisplayName:  viper.GetString("freeShippingName"),
		ShippingMinDays:          defaults.ShippingMinDays,
		ShippingMaxDays:          defaults.ShippingMaxDays,
		MetadataSource:           viper.GetString("metadataSource"),
	}

	// create the Stripe client, only when there is a key to use
	var provider stripe.Provider
	if stripeConf.APIKey != "" {
		provider = stripe.NewClient(stripeConf)
	} else {
		log.Warn("stripe API secret not set, checkout sessions cannot be created")
	}
	if len(stripeConf.WebhookSecrets) == 0 {
		log.Warn("stripe webhook secret not set, webhook events will be rejected")
	}
	stripeService, err := stripe.NewService(stripeConf, provider)
	if err != nil {
		log.Fatalf("invalid stripe configuration: %v", err)
	}

	// create the order notification services, each one only when it is
	// fully configured
	notifier := &stripe.OrderNotifier{
		ToAddress: viper.GetString("notifyEmail"),
		ToNumber:  viper.GetString("notifyPhone"),
	}
	if smtpServer := viper.GetString("smtpServer"); smtpServer != "" && notifier.ToAddress != "" {
		mailService, err := smtp.New(&smtp.Config{
			FromName:     viper.GetString("emailFromName"),
			FromAddress:  viper.GetString("emailFromAddress"),
			SMTPUsername: viper.GetString("smtpUsername"),
			SMTPPassword: viper.GetString("smtpPassword"),
			SMTPServer:   smtpServer,
			SMTPPort:     viper.GetInt("smtpPort"),
		})
		if err != nil {
			log.Fatalf("could not create the email service: %v", err)
		}
		notifier.MailService = mailService
	}
	if sid := viper.GetString("twilioAccountSid"); sid != "" && notifier.ToNumber != "" {
		smsService, err := twilio.New(&twilio.Config{
			AccountSid: sid,
			AuthToken:  viper.GetString("twilioAuthToken"),
			FromNumber: viper.GetString("twilioFromNumber"),
		})
		if err != nil {
			log.Fatalf("could not create the SMS service: %v", err)
		}
		notifier.SMSService = smsService
	}
	if notifier.Enabled() {
		stripeService.SetNotifier(notifier)
		log.Infow("order notifications enabled", "email", notifier.ToAddress, "phone", notifier.ToNumber)
	} else {
		log.Infow("order notifications disabled, orders are only logged")
	}

	// create the local API server
	api.New(&api.Config{
		Host:    host,
		Port:    port,
		BaseURL: baseURL,
		Stripe:  stripeService,
	}).Start()
	// wait forever, as the server is running in a goroutine
	log.Infow("server started", "host", host, "port", port,
		"baseURL", baseURL, "webhookSecrets", len(stripeConf.WebhookSecrets))
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	<-c
}
