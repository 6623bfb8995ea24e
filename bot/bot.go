package bot

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"unicode"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	sweepy "github.com/alandotcom/sweepy"
	"github.com/alandotcom/sweepy/route"
)

const helpText = "🧹 *LA Street Sweeping Bot*\n\n" +
	"Send me an address and I'll tell you the street sweeping schedule.\n\n" +
	"*Look up:*\n" +
	"• `/sweep 1234 Main St, Los Angeles`\n" +
	"• Just type an address\n" +
	"• Or share your 📍 location!\n\n" +
	"Data from City of LA StreetsLA via ArcGIS."

// Bot is the Telegram transport: long polling, one goroutine per
// update.
type Bot struct {
	Service *sweepy.Service

	api *tgbotapi.BotAPI
}

func New(token string, service *sweepy.Service) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("creating bot api: %w", err)
	}

	return &Bot{
		Service: service,
		api:     api,
	}, nil
}

// Consumes updates until ctx is canceled.
func (b *Bot) Run(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := b.api.GetUpdatesChan(u)

	log.Printf("bot @%s polling for updates", b.api.Self.UserName)

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return ctx.Err()
		case update := <-updates:
			if update.Message == nil {
				continue
			}
			go b.handle(ctx, update.Message)
		}
	}
}

func (b *Bot) handle(ctx context.Context, msg *tgbotapi.Message) {
	b.Service.Metrics.CountTelegramUpdate()

	switch {
	case msg.IsCommand():
		b.handleCommand(ctx, msg)
	case msg.Location != nil:
		b.lookupPoint(ctx, msg, msg.Location.Longitude, msg.Location.Latitude, "")
	default:
		b.handleText(ctx, msg)
	}
}

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	switch msg.Command() {
	case "start", "help":
		b.reply(msg, helpText)
	case "sweep":
		address := strings.TrimSpace(msg.CommandArguments())
		if address == "" {
			b.reply(msg, "Please provide an address.\nExample: `/sweep 1234 Main St, Los Angeles`")
			return
		}
		b.lookupAddress(ctx, msg, address)
	}
}

func (b *Bot) handleText(ctx context.Context, msg *tgbotapi.Message) {
	text := strings.TrimSpace(msg.Text)
	if text == "" {
		return
	}

	// If it looks like an address (has a number), look it up.
	if strings.IndexFunc(text, unicode.IsDigit) < 0 {
		b.reply(msg, "Send me a street address to look up sweeping.\nExample: `1234 Main St, Los Angeles`")
		return
	}

	b.lookupAddress(ctx, msg, text)
}

func (b *Bot) lookupAddress(ctx context.Context, msg *tgbotapi.Message, address string) {
	b.reply(msg, "🔍 Looking up your address...")

	place, err := b.Service.Geocode(ctx, address)
	if errors.Is(err, sweepy.ErrAddressNotFound) {
		b.reply(msg, "❌ "+sweepy.MsgAddressNotFound)
		return
	}
	if err != nil {
		log.Printf("geocoding '%s': %v", address, err)
		b.reply(msg, "Something went wrong looking that up. Try again in a bit.")
		return
	}

	b.lookupPoint(ctx, msg, place.X, place.Y, place.Label)
}

func (b *Bot) lookupPoint(ctx context.Context, msg *tgbotapi.Message, x, y float64, label string) {
	report, err := b.Service.LookupPoint(ctx, x, y)
	if errors.Is(err, route.ErrNoPostedRoutes) {
		if label == "" {
			label = fmt.Sprintf("%.5f, %.5f", y, x)
		}
		b.reply(msg, fmt.Sprintf(
			"📍 *%s*\n\n%s\n\n[Check the map](%s)",
			label, sweepy.MsgNoRoutes, sweepy.DashboardURL,
		))
		return
	}
	if err != nil {
		log.Printf("looking up (%f, %f): %v", x, y, err)
		b.reply(msg, "Something went wrong looking that up. Try again in a bit.")
		return
	}

	if label != "" {
		report.Label = label
	}

	b.reply(msg, fmt.Sprintf(
		"📍 *%s*\n%s\n\n[View on LA Map](%s)",
		report.Label, report.Text(), sweepy.DashboardURL,
	))
}

func (b *Bot) reply(msg *tgbotapi.Message, text string) {
	reply := tgbotapi.NewMessage(msg.Chat.ID, text)
	reply.ParseMode = tgbotapi.ModeMarkdown
	reply.DisableWebPagePreview = true

	if _, err := b.api.Send(reply); err != nil {
		log.Printf("sending reply: %v", err)
	}
}
