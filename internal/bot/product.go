package bot

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog/log"
	"github.com/yourchoicemarket/llm-shop/internal/catalog"
	"github.com/yourchoicemarket/llm-shop/internal/shop"
	"github.com/yourchoicemarket/llm-shop/internal/storage"
)

// latestLimit is how many products /uusimmat lists.
const latestLimit = 5

func (b *Bot) handleProduct(ctx context.Context, c *chat, prompt string) {
	c.reply(MsgGeneratingProduct)
	stop := c.keepTyping()
	p, err := b.shop.GenerateProduct(ctx, shop.GenerateRequest{
		Prompt: prompt,
		UserID: fmt.Sprintf("tg:%d", c.userID),
	})
	stop()

	switch {
	case errors.Is(err, shop.ErrNoCategory):
		c.reply(MsgNoCategory)
		return
	case errors.Is(err, shop.ErrNoProducts):
		c.reply(MsgNoProducts)
		return
	case err != nil:
		c.replyWithError(err)
		return
	}

	caption := formatReplyText(MsgProductCaption,
		escapeMarkdown(p.Name),
		escapeMarkdown(p.Description),
		formatPrice(p.PriceCents, p.Currency),
		escapeMarkdown(b.catalog.Tree().PathString(p.CategoryID)),
	)

	photo, ok := b.productPhoto(c.id, p)
	if !ok {
		c.reply("%s", caption)
		return
	}
	photo.Caption = caption
	photo.ParseMode = tgbotapi.ModeMarkdown
	c.send(photo)
}

// productPhoto prefers the Printful mockup, which Telegram can fetch itself.
// The artwork is uploaded from disk when there is no mockup.
func (b *Bot) productPhoto(chatID int64, p *storage.Product) (tgbotapi.PhotoConfig, bool) {
	if p.MockupURL != "" {
		return tgbotapi.NewPhoto(chatID, tgbotapi.FileURL(p.MockupURL)), true
	}
	if b.images == nil || p.ImageURL == "" {
		return tgbotapi.PhotoConfig{}, false
	}
	name := path.Base(p.ImageURL)
	data, err := b.images.Load(name)
	if err != nil {
		log.Warn().Err(err).Str("image", name).Msg("failed to load product image")
		return tgbotapi.PhotoConfig{}, false
	}
	return tgbotapi.NewPhoto(chatID, tgbotapi.FileBytes{Name: name, Bytes: data}), true
}

func (b *Bot) handleCategory(c *chat, text string) {
	if text == "" {
		c.reply(MsgCategoryUsage)
		return
	}

	res := b.catalog.Match(text, b.opts.MinMatchScore)
	if !res.OK {
		c.reply(MsgCategoryNoMatch)
		return
	}

	title := b.catalog.Tree().PathString(res.CategoryID)
	if title == "" {
		title = "?"
	}
	var sb strings.Builder
	sb.WriteString(formatReplyText(MsgCategoryMatch, escapeMarkdown(title), res.CategoryID, res.Score, res.Source))
	if res.Source == catalog.SourceOverride {
		sb.WriteString("\n")
		sb.WriteString(formatReplyText(MsgCategoryOverride, res.Token))
	}
	c.reply("%s", sb.String())
}

func (b *Bot) handleLatest(c *chat) {
	products, err := b.shop.ListProducts(latestLimit, 0)
	if err != nil {
		c.replyWithError(err)
		return
	}
	if len(products) == 0 {
		c.reply(MsgNoLatest)
		return
	}

	var sb strings.Builder
	sb.WriteString(MsgLatestHead)
	for _, p := range products {
		sb.WriteString(fmt.Sprintf("• %s, %s\n", escapeMarkdown(p.Name), formatPrice(p.PriceCents, p.Currency)))
	}
	c.reply("%s", sb.String())
}
