package bot

import (
	"context"
	"strings"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog/log"
	"github.com/yourchoicemarket/llm-shop/internal/catalog"
	"github.com/yourchoicemarket/llm-shop/internal/shop"
	"github.com/yourchoicemarket/llm-shop/internal/storage"
)

// BotAPI defines the Telegram bot API operations the bot uses.
type BotAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// Shop generates and lists products.
type Shop interface {
	GenerateProduct(ctx context.Context, req shop.GenerateRequest) (*storage.Product, error)
	ListProducts(limit, categoryID int) ([]storage.Product, error)
}

// UserStore is the persistent allowlist managed with /admin.
type UserStore interface {
	IsUserAllowed(telegramID int64) (bool, error)
	AddAllowedUser(telegramID, addedBy int64) error
	RemoveAllowedUser(telegramID int64) error
	GetAllowedUsers() ([]storage.AllowedUser, error)
}

// ImageLoader reads a generated image by file name. Used when the image URL
// is not reachable by Telegram, e.g. in local development.
type ImageLoader interface {
	Load(name string) ([]byte, error)
}

type Options struct {
	AdminID int64
	// AllowedIDs are allowed in addition to the admin and the stored allowlist.
	AllowedIDs    []int64
	MinMatchScore int
}

// Bot is the Telegram frontend of the shop.
type Bot struct {
	tg      BotAPI
	shop    Shop
	catalog *catalog.Store
	users   UserStore
	images  ImageLoader
	opts    Options

	allowed map[int64]bool

	mu    sync.Mutex
	locks map[int64]*sync.Mutex
}

// NewBot creates a new Bot. images may be nil.
func NewBot(tg BotAPI, shop Shop, cat *catalog.Store, users UserStore, images ImageLoader, opts Options) *Bot {
	allowed := make(map[int64]bool, len(opts.AllowedIDs))
	for _, id := range opts.AllowedIDs {
		allowed[id] = true
	}
	return &Bot{
		tg:      tg,
		shop:    shop,
		catalog: cat,
		users:   users,
		images:  images,
		opts:    opts,
		allowed: allowed,
		locks:   make(map[int64]*sync.Mutex),
	}
}

// Run handles updates until ctx is cancelled or the channel closes, then
// waits for in-flight handlers.
func (b *Bot) Run(ctx context.Context, updates tgbotapi.UpdatesChannel) error {
	var wg sync.WaitGroup
	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("waiting for active handlers to finish")
			wg.Wait()
			return nil
		case update, ok := <-updates:
			if !ok {
				log.Warn().Msg("updates channel closed")
				wg.Wait()
				return nil
			}
			wg.Add(1)
			go func(u tgbotapi.Update) {
				defer wg.Done()
				b.HandleUpdate(ctx, u)
			}(update)
		}
	}
}

// HandleUpdate processes one update. Messages from the same user are handled
// one at a time.
func (b *Bot) HandleUpdate(ctx context.Context, update tgbotapi.Update) {
	message := update.Message
	if message == nil || message.From == nil || message.Chat == nil {
		return
	}
	userID := message.From.ID

	if !b.isAllowed(userID) {
		log.Debug().Int64("userId", userID).Msg("dropping message from unknown user")
		return
	}

	lock := b.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	log.Info().Int64("userId", userID).Str("text", message.Text).Msg("got message")
	b.handleMessage(ctx, &chat{tg: b.tg, id: message.Chat.ID, userID: userID}, message.Text)
}

// isAllowed checks the admin, the configured ids and the stored allowlist.
// Storage errors deny access.
func (b *Bot) isAllowed(userID int64) bool {
	if userID == b.opts.AdminID || b.allowed[userID] {
		return true
	}
	if b.users == nil {
		return false
	}
	allowed, err := b.users.IsUserAllowed(userID)
	if err != nil {
		log.Error().Err(err).Int64("userId", userID).Msg("allowlist check failed")
		return false
	}
	return allowed
}

func (b *Bot) userLock(userID int64) *sync.Mutex {
	b.mu.Lock()
	defer b.mu.Unlock()
	lock, ok := b.locks[userID]
	if !ok {
		lock = &sync.Mutex{}
		b.locks[userID] = lock
	}
	return lock
}

func (b *Bot) handleMessage(ctx context.Context, c *chat, text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		c.reply(MsgStartPrompt)
		return
	}
	if !strings.HasPrefix(text, "/") {
		b.handleProduct(ctx, c, text)
		return
	}

	command, args := parseCommand(text)
	switch command {
	case "/start", "/apua":
		c.reply(MsgWelcome)
	case "/tuote":
		if args == "" {
			c.reply(MsgProductUsage)
			return
		}
		b.handleProduct(ctx, c, args)
	case "/kategoria":
		b.handleCategory(c, args)
	case "/uusimmat":
		b.handleLatest(c)
	case "/admin":
		b.handleAdminCommand(c, args)
	default:
		c.reply(MsgUnknownCommand)
	}
}
