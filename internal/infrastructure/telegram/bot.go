package telegram

import (
	"context"
	"html"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	accountuc "github.com/orris-inc/leasebot/internal/application/account/usecases"
	billinguc "github.com/orris-inc/leasebot/internal/application/billing/usecases"
	rentaluc "github.com/orris-inc/leasebot/internal/application/rental/usecases"
	"github.com/orris-inc/leasebot/internal/domain/notification"
	"github.com/orris-inc/leasebot/internal/shared/biztime"
	apperrors "github.com/orris-inc/leasebot/internal/shared/errors"
	"github.com/orris-inc/leasebot/internal/shared/goroutine"
	"github.com/orris-inc/leasebot/internal/shared/logger"
)

const pollTimeout = 60

// API is the part of *tgbotapi.BotAPI the bot needs.
type API interface {
	Sender
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

// OffsetStore persists the next update offset across restarts.
type OffsetStore interface {
	GetOffset(ctx context.Context) (int, error)
	SaveOffset(ctx context.Context, offset int) error
}

// UseCases are the application operations reachable from chat.
type UseCases struct {
	Link           *accountuc.TelegramLinkUseCase
	CreateUser     *accountuc.CreateUserUseCase
	DeleteUser     *accountuc.DeleteUserUseCase
	ChangePassword *accountuc.ChangePasswordUseCase
	ListUsers      *accountuc.ListUsersUseCase
	ModifyPlan     *rentaluc.ModifyPlanUseCase
	Balance        *billinguc.BalanceUseCase
	History        *billinguc.PaymentHistoryUseCase
	Earnings       *billinguc.EarningsUseCase
	Sessions       *accountuc.ListSessionsUseCase
}

// Profile is what the bot tells customers about itself and the host.
type Profile struct {
	// BotUsername builds t.me deep links. Without it links fall back to a
	// /start command to copy.
	BotUsername string
	SSHHost     string
	SSHPort     int
	Notes       string
}

// Request is one command or button press.
type Request struct {
	ChatID int64
	From   *tgbotapi.User
	Args   []string
}

// Reply is what a handler wants sent back. An empty Text sends nothing.
type Reply struct {
	Text    string
	Buttons []notification.Button
}

type HandlerFunc func(ctx context.Context, req Request) (Reply, error)

// Predicate decides whether the sender may run a handler.
type Predicate func(from *tgbotapi.User) bool

// Guard runs h only when allow accepts the sender.
func Guard(h HandlerFunc, allow Predicate) HandlerFunc {
	return func(ctx context.Context, req Request) (Reply, error) {
		if req.From == nil || !allow(req.From) {
			return Reply{Text: "⛔ You are not authorized to use this command."}, nil
		}
		return h(ctx, req)
	}
}

// Bot long-polls for updates and routes commands and button presses.
type Bot struct {
	api       API
	notifier  *Notifier
	uc        UseCases
	adminID   int64
	profile   Profile
	offsets   OffsetStore
	commands  map[string]HandlerFunc
	callbacks map[string]HandlerFunc
	logger    logger.Interface
	now       func() time.Time
}

func NewBot(api API, uc UseCases, adminID int64, logger logger.Interface) *Bot {
	b := &Bot{
		api:      api,
		notifier: NewNotifier(api, logger),
		uc:       uc,
		adminID:  adminID,
		logger:   logger,
		now:      biztime.NowUTC,
	}
	b.registerRoutes()
	return b
}

// SetOffsetStore enables offset persistence. Without it polling resumes from
// whatever Telegram still holds.
func (b *Bot) SetOffsetStore(s OffsetStore) {
	b.offsets = s
}

func (b *Bot) SetProfile(p Profile) {
	b.profile = p
}

// IsAdmin accepts only the configured admin account.
func (b *Bot) IsAdmin(from *tgbotapi.User) bool {
	return b.adminID != 0 && from.ID == b.adminID
}

func (b *Bot) registerRoutes() {
	admin := func(h HandlerFunc) HandlerFunc { return Guard(h, b.IsAdmin) }

	b.commands = map[string]HandlerFunc{
		"/start":           b.handleStart,
		"/help":            b.handleHelp,
		"/status":          b.handleStatus,
		"/create_user":     admin(b.handleCreateUser),
		"/delete_user":     admin(b.handleDeleteUser),
		"/change_password": admin(b.handleChangePassword),
		"/list_users":      admin(b.handleListUsers),
		"/extend_plan":     admin(b.handleExtendPlan),
		"/reduce_plan":     admin(b.handleReducePlan),
		"/credit":          admin(b.handleCredit),
		"/debit":           admin(b.handleDebit),
		"/payment_history": admin(b.handlePaymentHistory),
		"/earnings":        admin(b.handleEarnings),
		"/unlink_user":     admin(b.handleUnlinkUser),
		"/link_user":       admin(b.handleLinkUser),
		"/who":             admin(b.handleWho),
	}
	b.callbacks = map[string]HandlerFunc{
		notification.ActionExtend: admin(b.handleExtendPrompt),
		notification.ActionDelete: admin(b.handleDeletePrompt),
		actionDeleteConfirm:       admin(b.handleDeleteUser),
		actionCancel:              admin(b.handleCancel),
		actionRefreshSessions:     admin(b.handleWho),
	}
}

// Run polls until ctx is cancelled.
func (b *Bot) Run(ctx context.Context) error {
	offset := 0
	if b.offsets != nil {
		saved, err := b.offsets.GetOffset(ctx)
		if err != nil {
			b.logger.Warnw("failed to load polling offset, starting from 0", "error", err)
		}
		offset = saved
	}

	u := tgbotapi.NewUpdate(offset)
	u.Timeout = pollTimeout
	updates := b.api.GetUpdatesChan(u)
	defer b.api.StopReceivingUpdates()

	b.logger.Infow("telegram bot polling started", "timeout", pollTimeout, "offset", offset)
	for {
		select {
		case <-ctx.Done():
			b.logger.Infow("telegram bot polling stopped")
			return nil
		case upd, ok := <-updates:
			if !ok {
				return nil
			}
			b.safeHandle(ctx, upd)
			b.saveOffset(upd.UpdateID + 1)
		}
	}
}

// saveOffset uses its own context so the last update is recorded during shutdown.
func (b *Bot) saveOffset(offset int) {
	if b.offsets == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := b.offsets.SaveOffset(ctx, offset); err != nil {
		b.logger.Warnw("failed to save polling offset", "offset", offset, "error", err)
	}
}

func (b *Bot) safeHandle(ctx context.Context, upd tgbotapi.Update) {
	defer goroutine.Recover(b.logger, "telegram-update")
	b.HandleUpdate(ctx, upd)
}

// HandleUpdate routes one update. Unknown commands get a pointer to /help.
func (b *Bot) HandleUpdate(ctx context.Context, upd tgbotapi.Update) {
	if upd.CallbackQuery != nil {
		b.handleCallback(ctx, upd.CallbackQuery)
		return
	}

	msg := upd.Message
	if msg == nil || msg.From == nil || !msg.IsCommand() {
		return
	}

	name := "/" + msg.Command()
	h, ok := b.commands[name]
	if !ok {
		b.reply(ctx, msg.Chat.ID, Reply{Text: "Unknown command. Type /help for available commands."})
		return
	}

	req := Request{ChatID: msg.Chat.ID, From: msg.From, Args: strings.Fields(msg.CommandArguments())}
	b.respond(ctx, name, req, h)
}

func (b *Bot) handleCallback(ctx context.Context, q *tgbotapi.CallbackQuery) {
	if _, err := b.api.Request(tgbotapi.NewCallback(q.ID, "")); err != nil {
		b.logger.Warnw("failed to answer callback query", "error", err)
	}
	if q.Message == nil {
		return
	}

	action, arg, _ := strings.Cut(q.Data, ":")
	h, ok := b.callbacks[action]
	if !ok {
		b.logger.Warnw("unknown callback action", "data", q.Data)
		return
	}

	req := Request{ChatID: q.Message.Chat.ID, From: q.From}
	if arg != "" {
		req.Args = []string{arg}
	}
	b.respond(ctx, action, req, h)
}

func (b *Bot) respond(ctx context.Context, name string, req Request, h HandlerFunc) {
	out, err := h(ctx, req)
	if err != nil {
		out = Reply{Text: "❌ " + userMessage(err)}
		if appErr := apperrors.GetAppError(err); appErr == nil || appErr.Type == apperrors.ErrorTypeInternal {
			b.logger.Errorw("telegram command failed", "command", name, "chat_id", req.ChatID, "error", err)
		}
	}
	b.reply(ctx, req.ChatID, out)
}

func (b *Bot) reply(ctx context.Context, chatID int64, r Reply) {
	if r.Text == "" {
		return
	}
	msg := notification.Message{ChatID: chatID, Text: r.Text, Buttons: r.Buttons}
	if err := b.notifier.Send(ctx, msg); err != nil {
		b.logger.Warnw("failed to send telegram reply", "chat_id", chatID, "error", err)
	}
}

// userMessage hides internal failures behind a generic text.
func userMessage(err error) string {
	appErr := apperrors.GetAppError(err)
	if appErr == nil || appErr.Type == apperrors.ErrorTypeInternal {
		return "Something went wrong. Please try again later."
	}
	if appErr.Details != "" {
		return html.EscapeString(appErr.Message + ": " + appErr.Details)
	}
	return html.EscapeString(appErr.Message)
}
