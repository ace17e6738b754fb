package bot

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/yourchoicemarket/llm-shop/internal/catalog"
	"github.com/yourchoicemarket/llm-shop/internal/shop"
	"github.com/yourchoicemarket/llm-shop/internal/storage"
)

const (
	adminID int64 = 1
	userID  int64 = 2
)

type botApiMock struct {
	mock.Mock

	mu   sync.Mutex
	sent []tgbotapi.Chattable
}

func (m *botApiMock) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	m.mu.Lock()
	m.sent = append(m.sent, c)
	m.mu.Unlock()
	args := m.Called(c)
	return args.Get(0).(tgbotapi.Message), args.Error(1)
}

func (m *botApiMock) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	args := m.Called(c)
	return args.Get(0).(*tgbotapi.APIResponse), args.Error(1)
}

func (m *botApiMock) messages() []tgbotapi.Chattable {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]tgbotapi.Chattable(nil), m.sent...)
}

// texts returns the text of sent messages and the captions of sent photos.
func (m *botApiMock) texts() []string {
	var out []string
	for _, c := range m.messages() {
		switch msg := c.(type) {
		case tgbotapi.MessageConfig:
			out = append(out, msg.Text)
		case tgbotapi.PhotoConfig:
			out = append(out, msg.Caption)
		}
	}
	return out
}

func newBotApiMock() *botApiMock {
	m := &botApiMock{}
	m.On("Send", mock.Anything).Return(tgbotapi.Message{}, nil)
	m.On("Request", mock.Anything).Return(&tgbotapi.APIResponse{Ok: true}, nil).Maybe()
	return m
}

type shopMock struct {
	mock.Mock
}

func (m *shopMock) GenerateProduct(ctx context.Context, req shop.GenerateRequest) (*storage.Product, error) {
	args := m.Called(ctx, req)
	p, _ := args.Get(0).(*storage.Product)
	return p, args.Error(1)
}

func (m *shopMock) ListProducts(limit, categoryID int) ([]storage.Product, error) {
	args := m.Called(limit, categoryID)
	products, _ := args.Get(0).([]storage.Product)
	return products, args.Error(1)
}

type memUsers struct {
	mu    sync.Mutex
	users map[int64]storage.AllowedUser
	err   error
}

func (u *memUsers) IsUserAllowed(id int64) (bool, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.err != nil {
		return false, u.err
	}
	_, ok := u.users[id]
	return ok, nil
}

func (u *memUsers) AddAllowedUser(id, addedBy int64) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.users[id] = storage.AllowedUser{TelegramID: id, AddedBy: addedBy, AddedAt: time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)}
	return nil
}

func (u *memUsers) RemoveAllowedUser(id int64) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	delete(u.users, id)
	return nil
}

func (u *memUsers) GetAllowedUsers() ([]storage.AllowedUser, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	var out []storage.AllowedUser
	for _, au := range u.users {
		out = append(out, au)
	}
	return out, nil
}

type fakeImages map[string][]byte

func (f fakeImages) Load(name string) ([]byte, error) {
	data, ok := f[name]
	if !ok {
		return nil, errors.New("not found")
	}
	return data, nil
}

func setupBot(t *testing.T) (*Bot, *botApiMock, *shopMock, *memUsers) {
	t.Helper()
	tg := newBotApiMock()
	sh := &shopMock{}
	users := &memUsers{users: map[int64]storage.AllowedUser{}}
	idx := catalog.BuildIndex(catalog.DefaultCategories(), catalog.DefaultOverrides())
	b := NewBot(tg, sh, catalog.NewStore(idx), users, fakeImages{"art.png": []byte("png")}, Options{
		AdminID:       adminID,
		MinMatchScore: catalog.DefaultMinScore,
	})
	return b, tg, sh, users
}

func makeUpdate(from int64, text string) tgbotapi.Update {
	return tgbotapi.Update{
		Message: &tgbotapi.Message{
			From: &tgbotapi.User{ID: from},
			Chat: &tgbotapi.Chat{ID: from},
			Text: text,
		},
	}
}

func TestHandleUpdate_UnknownUserDropped(t *testing.T) {
	b, tg, _, _ := setupBot(t)

	b.HandleUpdate(context.Background(), makeUpdate(99, "/start"))

	assert.Empty(t, tg.messages())
}

func TestHandleUpdate_AllowlistErrorDenies(t *testing.T) {
	b, tg, _, users := setupBot(t)
	users.users[userID] = storage.AllowedUser{TelegramID: userID}
	users.err = errors.New("database is locked")

	b.HandleUpdate(context.Background(), makeUpdate(userID, "/start"))

	assert.Empty(t, tg.messages())
}

func TestHandleUpdate_ConfiguredUserAllowed(t *testing.T) {
	tg := newBotApiMock()
	idx := catalog.BuildIndex(catalog.DefaultCategories(), nil)
	b := NewBot(tg, &shopMock{}, catalog.NewStore(idx), nil, nil, Options{AdminID: adminID, AllowedIDs: []int64{userID}})

	b.HandleUpdate(context.Background(), makeUpdate(userID, "/start"))

	require.Len(t, tg.texts(), 1)
	assert.Contains(t, tg.texts()[0], "/tuote")
}

func TestProductCommand(t *testing.T) {
	b, tg, sh, _ := setupBot(t)

	product := &storage.Product{
		ID:          "p1",
		Name:        "Fox_Mug",
		Description: "A fox at sunset",
		MockupURL:   "https://files.cdn.printful.com/mockup/fox.png",
		PriceCents:  1599,
		Currency:    "USD",
		CategoryID:  19,
	}
	sh.On("GenerateProduct", mock.Anything, shop.GenerateRequest{
		Prompt: "mug with a fox",
		UserID: fmt.Sprintf("tg:%d", adminID),
	}).Return(product, nil)

	b.HandleUpdate(context.Background(), makeUpdate(adminID, "/tuote mug with a fox"))

	sh.AssertExpectations(t)
	msgs := tg.messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, MsgGeneratingProduct, msgs[0].(tgbotapi.MessageConfig).Text)

	photo, ok := msgs[1].(tgbotapi.PhotoConfig)
	require.True(t, ok)
	assert.Equal(t, tgbotapi.FileURL(product.MockupURL), photo.File)
	assert.Contains(t, photo.Caption, `*Fox\_Mug*`)
	assert.Contains(t, photo.Caption, "15.99 USD")
	assert.Contains(t, photo.Caption, "Home & living > Drinkware > Mugs")
}

func TestProductPlainText(t *testing.T) {
	b, tg, sh, _ := setupBot(t)

	sh.On("GenerateProduct", mock.Anything, mock.MatchedBy(func(req shop.GenerateRequest) bool {
		return req.Prompt == "a poster of mountains"
	})).Return(&storage.Product{
		Name:       "Mountains",
		ImageURL:   "http://localhost:8080/images/generated/art.png",
		PriceCents: 2000,
		Currency:   "USD",
		CategoryID: 21,
	}, nil)

	b.HandleUpdate(context.Background(), makeUpdate(adminID, "a poster of mountains"))

	msgs := tg.messages()
	require.Len(t, msgs, 2)
	photo, ok := msgs[1].(tgbotapi.PhotoConfig)
	require.True(t, ok)
	assert.Equal(t, tgbotapi.FileBytes{Name: "art.png", Bytes: []byte("png")}, photo.File)
}

func TestProductCommand_Errors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"no category", fmt.Errorf("%w for %q", shop.ErrNoCategory, "rocket"), MsgNoCategory},
		{"no products", shop.ErrNoProducts, MsgNoProducts},
		{"other", errors.New("gemini: quota exceeded"), "Odottamaton virhe: gemini: quota exceeded"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, tg, sh, _ := setupBot(t)
			sh.On("GenerateProduct", mock.Anything, mock.Anything).Return(nil, tt.err)

			b.HandleUpdate(context.Background(), makeUpdate(adminID, "/tuote rocket"))

			texts := tg.texts()
			require.Len(t, texts, 2)
			assert.Equal(t, tt.want, texts[1])
		})
	}
}

func TestProductCommand_Usage(t *testing.T) {
	b, tg, sh, _ := setupBot(t)

	b.HandleUpdate(context.Background(), makeUpdate(adminID, "/tuote"))

	sh.AssertNotCalled(t, "GenerateProduct", mock.Anything, mock.Anything)
	assert.Equal(t, []string{formatReplyText(MsgProductUsage)}, tg.texts())
}

func TestCategoryCommand(t *testing.T) {
	b, tg, _, _ := setupBot(t)

	b.HandleUpdate(context.Background(), makeUpdate(adminID, "/kategoria coffee mug"))

	texts := tg.texts()
	require.Len(t, texts, 1)
	assert.Contains(t, texts[0], "Home & living > Drinkware > Mugs")
	assert.Contains(t, texts[0], "(19)")
	assert.Contains(t, texts[0], "Lähde: score")
}

func TestCategoryCommand_NoMatch(t *testing.T) {
	b, tg, _, _ := setupBot(t)

	b.HandleUpdate(context.Background(), makeUpdate(adminID, "/kategoria xyzzy"))

	assert.Equal(t, []string{MsgCategoryNoMatch}, tg.texts())
}

func TestLatestCommand(t *testing.T) {
	b, tg, sh, _ := setupBot(t)
	sh.On("ListProducts", latestLimit, 0).Return([]storage.Product{
		{Name: "Fox Mug", PriceCents: 1500, Currency: "USD"},
		{Name: "Owl Tee", PriceCents: 2205, Currency: "USD"},
	}, nil)

	b.HandleUpdate(context.Background(), makeUpdate(adminID, "/uusimmat"))

	texts := tg.texts()
	require.Len(t, texts, 1)
	assert.Contains(t, texts[0], "• Fox Mug, 15.00 USD")
	assert.Contains(t, texts[0], "• Owl Tee, 22.05 USD")
}

func TestAdminUsers(t *testing.T) {
	b, tg, _, users := setupBot(t)
	ctx := context.Background()

	b.HandleUpdate(ctx, makeUpdate(adminID, "/admin users add 42"))
	allowed, _ := users.IsUserAllowed(42)
	assert.True(t, allowed)

	b.HandleUpdate(ctx, makeUpdate(adminID, "/admin users list"))
	b.HandleUpdate(ctx, makeUpdate(adminID, "/admin users remove 42"))
	allowed, _ = users.IsUserAllowed(42)
	assert.False(t, allowed)

	b.HandleUpdate(ctx, makeUpdate(adminID, "/admin users add abc"))

	texts := tg.texts()
	require.Len(t, texts, 4)
	assert.Equal(t, "✅ Käyttäjä `42` lisätty.", texts[0])
	assert.Contains(t, texts[1], "• `42` (lisätty 2026-01-02)")
	assert.Equal(t, "🗑 Käyttäjä `42` poistettu.", texts[2])
	assert.Equal(t, MsgAdminUserInvalidID, texts[3])
}

func TestAdminCommand_NonAdminIgnored(t *testing.T) {
	b, tg, _, users := setupBot(t)
	users.users[userID] = storage.AllowedUser{TelegramID: userID}

	b.HandleUpdate(context.Background(), makeUpdate(userID, "/admin users add 42"))

	assert.Empty(t, tg.messages())
	_, added := users.users[42]
	assert.False(t, added)
}

func TestRun_StopsOnCancel(t *testing.T) {
	b, tg, _, _ := setupBot(t)
	updates := make(chan tgbotapi.Update, 1)
	updates <- makeUpdate(adminID, "/start")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error)
	go func() { done <- b.Run(ctx, updates) }()

	require.Eventually(t, func() bool { return len(tg.messages()) == 1 }, time.Second, 10*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestParseCommand(t *testing.T) {
	tests := []struct {
		in, cmd, args string
	}{
		{"/tuote muki", "/tuote", "muki"},
		{"/Tuote@shopbot  iso muki ", "/tuote", "iso muki"},
		{"/uusimmat", "/uusimmat", ""},
	}
	for _, tt := range tests {
		cmd, args := parseCommand(tt.in)
		assert.Equal(t, tt.cmd, cmd, tt.in)
		assert.Equal(t, tt.args, args, tt.in)
	}
}

func TestRegisterCommands(t *testing.T) {
	tg := &botApiMock{}
	tg.On("Request", mock.MatchedBy(func(c tgbotapi.Chattable) bool {
		cfg, ok := c.(tgbotapi.SetMyCommandsConfig)
		return ok && len(cfg.Commands) == len(botCommands)
	})).Return(&tgbotapi.APIResponse{Ok: true}, nil).Once()

	RegisterCommands(tg)

	tg.AssertExpectations(t)
}
