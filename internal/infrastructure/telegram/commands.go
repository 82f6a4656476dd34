package telegram

import (
	"context"
	"fmt"
	"html"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	accountuc "github.com/orris-inc/leasebot/internal/application/account/usecases"
	billinguc "github.com/orris-inc/leasebot/internal/application/billing/usecases"
	rentaluc "github.com/orris-inc/leasebot/internal/application/rental/usecases"
	"github.com/orris-inc/leasebot/internal/domain/notification"
	"github.com/orris-inc/leasebot/internal/shared/biztime"
	apperrors "github.com/orris-inc/leasebot/internal/shared/errors"
	"github.com/orris-inc/leasebot/internal/shared/timefmt"
)

const (
	actionDeleteConfirm = "delete_confirm"
	actionCancel          = "cancel"
	actionRefreshSessions = "refresh_sessions"
)

const userHelp = `👋 <b>Welcome!</b>

Use the link you received from the admin to connect this chat to your server account.

/status - show your plan and balance
/help - show this message`

const adminHelp = `🔐 <b>Admin commands</b>

/create_user &lt;username&gt; &lt;duration&gt; &lt;price_rate&gt; [amount] [currency]
/delete_user &lt;username&gt;
/change_password &lt;username&gt;
/list_users
/extend_plan &lt;username|all&gt; &lt;duration&gt; [amount] [currency]
/reduce_plan &lt;username|all&gt; &lt;duration&gt;
/credit &lt;username&gt; &lt;amount&gt; [currency]
/debit &lt;username&gt; &lt;amount&gt; [currency]
/payment_history &lt;username&gt;
/earnings [from YYYY-MM-DD] [to YYYY-MM-DD]
/link_user &lt;username&gt;
/unlink_user &lt;username&gt;
/who - show who is logged in to the server

Durations combine d, h, m and s, e.g. <code>30d</code> or <code>1d12h</code>.`

func usage(text string) (Reply, error) {
	return Reply{Text: "❓ Usage: " + html.EscapeString(text)}, nil
}

func (b *Bot) handleStart(ctx context.Context, req Request) (Reply, error) {
	if len(req.Args) == 0 {
		return b.handleHelp(ctx, req)
	}
	_, err := b.uc.Link.Link(ctx, accountuc.LinkTelegramCommand{
		Token:          req.Args[0],
		TelegramUserID: req.From.ID,
		Username:       req.From.UserName,
		FirstName:      req.From.FirstName,
		LastName:       req.From.LastName,
	})
	if err != nil {
		return Reply{}, err
	}
	// The link use case greets the user itself.
	return Reply{}, nil
}

func (b *Bot) handleHelp(_ context.Context, req Request) (Reply, error) {
	if req.From != nil && b.IsAdmin(req.From) {
		return Reply{Text: adminHelp}, nil
	}
	return Reply{Text: userHelp}, nil
}

func (b *Bot) handleStatus(ctx context.Context, req Request) (Reply, error) {
	s, err := b.uc.ListUsers.ForTelegramUser(ctx, req.From.ID)
	if err != nil {
		return Reply{}, err
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "👤 Account: <code>%s</code>\n", html.EscapeString(s.Username))
	fmt.Fprintf(&sb, "💰 Balance: <code>%s INR</code>\n", s.Balance.StringFixed(2))
	if s.RentalID != 0 {
		fmt.Fprintf(&sb, "📦 Plan: %s\n", s.State)
		fmt.Fprintf(&sb, "📅 Expires: <code>%s</code>\n", timefmt.FormatTimestamp(s.EndTime, biztime.Location()))
		fmt.Fprintf(&sb, "⏳ Remaining: %s", s.Remaining)
	} else {
		sb.WriteString("📦 No active plan.")
	}
	return Reply{Text: sb.String()}, nil
}

func (b *Bot) handleCreateUser(ctx context.Context, req Request) (Reply, error) {
	if len(req.Args) < 3 {
		return usage("/create_user <username> <duration> <price_rate> [amount] [currency]")
	}
	rate, err := decimal.NewFromString(req.Args[2])
	if err != nil {
		return Reply{}, apperrors.NewValidationError("price rate must be a number", req.Args[2])
	}
	cmd := accountuc.CreateUserCommand{
		Username:  req.Args[0],
		Duration:  req.Args[1],
		PriceRate: rate,
	}
	if len(req.Args) > 3 {
		if cmd.Amount, err = decimal.NewFromString(req.Args[3]); err != nil {
			return Reply{}, apperrors.NewValidationError("amount must be a number", req.Args[3])
		}
	}
	if len(req.Args) > 4 {
		cmd.Currency = req.Args[4]
	}

	res, err := b.uc.CreateUser.Execute(ctx, cmd)
	if err != nil {
		return Reply{}, err
	}
	return b.welcomeReply(res), nil
}

// welcomeReply is the message the operator forwards to a new customer. The
// password itself is only revealed through the deep link.
func (b *Bot) welcomeReply(res *accountuc.CreateUserResult) Reply {
	username := html.EscapeString(res.User.LinuxUsername())
	var sb strings.Builder
	fmt.Fprintf(&sb, "✅ User <code>%s</code> created.\n\n", username)
	fmt.Fprintf(&sb, "🔐 <b>Username:</b> <code>%s</code>\n", username)
	fmt.Fprintf(&sb, "📅 <b>Expires:</b> %s\n\n", timefmt.FormatTimestamp(res.Rental.EndTime(), biztime.Location()))
	fmt.Fprintf(&sb, "🔗 <b>SSH command:</b>\n<code>%s</code>\n\n", html.EscapeString(b.sshCommand(res.User.LinuxUsername())))

	reply := Reply{}
	if link := b.deepLink(res.User.UUID()); link != "" {
		sb.WriteString("🔑 <b>Password:</b> press the button below to get your password.\n")
		reply.Buttons = []notification.Button{{Text: "Get Password", URL: link}}
	} else {
		fmt.Fprintf(&sb, "🔑 <b>Password:</b> send <code>/start %s</code> to this bot to get your password.\n", html.EscapeString(res.User.UUID()))
	}
	if b.profile.Notes != "" {
		fmt.Fprintf(&sb, "\n<b>ℹ️ Notes:</b>\n%s\n", html.EscapeString(b.profile.Notes))
	}
	reply.Text = sb.String()
	return reply
}

func (b *Bot) sshCommand(username string) string {
	host, port := b.profile.SSHHost, b.profile.SSHPort
	if host == "" {
		host = "localhost"
	}
	if port == 0 {
		port = 22
	}
	return fmt.Sprintf("ssh %s@%s -p %d", username, host, port)
}

// deepLink opens the bot with token as the /start argument.
func (b *Bot) deepLink(token string) string {
	if b.profile.BotUsername == "" {
		return ""
	}
	return fmt.Sprintf("https://t.me/%s?start=%s", b.profile.BotUsername, url.QueryEscape(token))
}

func (b *Bot) handleLinkUser(ctx context.Context, req Request) (Reply, error) {
	if len(req.Args) != 1 {
		return usage("/link_user <username>")
	}
	token, err := b.uc.Link.InviteToken(ctx, req.Args[0])
	if err != nil {
		return Reply{}, err
	}
	username := html.EscapeString(req.Args[0])
	if link := b.deepLink(token); link != "" {
		return Reply{
			Text:    fmt.Sprintf("🔗 Press the button below to link a Telegram account to <code>%s</code>.", username),
			Buttons: []notification.Button{{Text: "Link User", URL: link}},
		}, nil
	}
	return Reply{Text: fmt.Sprintf("🔗 Send <code>/start %s</code> to this bot to link a Telegram account to <code>%s</code>.",
		html.EscapeString(token), username)}, nil
}

func (b *Bot) handleWho(ctx context.Context, _ Request) (Reply, error) {
	refresh := []notification.Button{{Text: "Refresh", Data: actionRefreshSessions}}
	out, err := b.uc.Sessions.Execute(ctx)
	if err != nil {
		return Reply{Text: "❌ Could not list connected users.", Buttons: refresh}, nil
	}
	if strings.TrimSpace(out) == "" {
		return Reply{Text: "👥 No users connected.", Buttons: refresh}, nil
	}
	return Reply{
		Text:    fmt.Sprintf("👥 <b>Connected users</b>\n<pre>%s</pre>", html.EscapeString(out)),
		Buttons: refresh,
	}, nil
}

func (b *Bot) handleDeleteUser(ctx context.Context, req Request) (Reply, error) {
	if len(req.Args) != 1 {
		return usage("/delete_user <username>")
	}
	res, err := b.uc.DeleteUser.Execute(ctx, req.Args[0])
	if err != nil {
		return Reply{}, err
	}
	text := fmt.Sprintf("🗑 User <code>%s</code> deleted, %d rental(s) closed.", html.EscapeString(res.Username), len(res.ClosedRentals))
	if !res.AccountRemoved {
		text += "\n❗ No login existed on the host."
	}
	return Reply{Text: text}, nil
}

func (b *Bot) handleChangePassword(ctx context.Context, req Request) (Reply, error) {
	if len(req.Args) != 1 {
		return usage("/change_password <username>")
	}
	password, err := b.uc.ChangePassword.Execute(ctx, req.Args[0])
	if err != nil {
		if password != "" {
			return Reply{Text: fmt.Sprintf("⚠️ Password changed on the host to <code>%s</code> but could not be saved.", html.EscapeString(password))}, nil
		}
		return Reply{}, err
	}
	return Reply{Text: fmt.Sprintf("🔑 New password for <code>%s</code>: <code>%s</code>",
		html.EscapeString(req.Args[0]), html.EscapeString(password))}, nil
}

func (b *Bot) handleListUsers(ctx context.Context, _ Request) (Reply, error) {
	users, err := b.uc.ListUsers.Execute(ctx)
	if err != nil {
		return Reply{}, err
	}
	if len(users) == 0 {
		return Reply{Text: "🔍 No users found."}, nil
	}

	var sb strings.Builder
	sb.WriteString("👥 <b>Users</b>\n\n")
	for _, u := range users {
		fmt.Fprintf(&sb, "<code>%s</code> · %s · %s INR", html.EscapeString(u.Username), u.Remaining, u.Balance.StringFixed(2))
		if u.Telegram != "" {
			fmt.Fprintf(&sb, " · %s", html.EscapeString(u.Telegram))
		}
		sb.WriteString("\n")
	}
	return Reply{Text: sb.String()}, nil
}

func (b *Bot) handleExtendPlan(ctx context.Context, req Request) (Reply, error) {
	if len(req.Args) < 2 || len(req.Args) > 4 {
		return usage("/extend_plan <username|all> <duration> [amount] [currency]")
	}
	cmd := rentaluc.ModifyPlanCommand{Username: req.Args[0], Duration: req.Args[1]}
	if len(req.Args) > 2 {
		amount, err := decimal.NewFromString(req.Args[2])
		if err != nil {
			return Reply{}, apperrors.NewValidationError("amount must be a number", req.Args[2])
		}
		cmd.Amount = amount
	}
	if len(req.Args) > 3 {
		cmd.Currency = req.Args[3]
	}
	res, err := b.uc.ModifyPlan.Extend(ctx, cmd)
	if err != nil {
		return Reply{}, err
	}
	text := planReply("extended", res)
	if res.Payment != nil {
		text += fmt.Sprintf("💳 Recorded <code>%s %s</code>. Balance: <code>%s INR</code>",
			res.Payment.Amount().StringFixed(2), res.Payment.Currency(), res.Balance.StringFixed(2))
	}
	return Reply{Text: text}, nil
}

func (b *Bot) handleReducePlan(ctx context.Context, req Request) (Reply, error) {
	if len(req.Args) != 2 {
		return usage("/reduce_plan <username|all> <duration>")
	}
	res, err := b.uc.ModifyPlan.Reduce(ctx, rentaluc.ModifyPlanCommand{Username: req.Args[0], Duration: req.Args[1]})
	if err != nil {
		return Reply{}, err
	}
	return Reply{Text: planReply("reduced", res)}, nil
}

func planReply(verb string, res *rentaluc.ModifyPlanResult) string {
	var sb strings.Builder
	for _, c := range res.Changes {
		if c.Err != nil {
			fmt.Fprintf(&sb, "❌ <code>%s</code>: %s\n", html.EscapeString(c.Username), html.EscapeString(c.Err.Error()))
			continue
		}
		fmt.Fprintf(&sb, "✅ <code>%s</code> %s by %s, expires <code>%s</code>\n",
			html.EscapeString(c.Username), verb, timefmt.Humanize(res.Seconds),
			timefmt.FormatTimestamp(c.EndTime, biztime.Location()))
	}
	if sb.Len() == 0 {
		return "🔍 No active plans matched."
	}
	return sb.String()
}

func (b *Bot) handleCredit(ctx context.Context, req Request) (Reply, error) {
	return b.balanceCommand(ctx, req, "/credit", b.uc.Balance.Credit)
}

func (b *Bot) handleDebit(ctx context.Context, req Request) (Reply, error) {
	return b.balanceCommand(ctx, req, "/debit", b.uc.Balance.Debit)
}

func (b *Bot) balanceCommand(
	ctx context.Context,
	req Request,
	name string,
	run func(context.Context, billinguc.BalanceCommand) (*billinguc.BalanceResult, error),
) (Reply, error) {
	if len(req.Args) < 2 {
		return usage(name + " <username> <amount> [currency]")
	}
	amount, err := decimal.NewFromString(req.Args[1])
	if err != nil {
		return Reply{}, apperrors.NewValidationError("amount must be a number", req.Args[1])
	}
	cmd := billinguc.BalanceCommand{Username: req.Args[0], Amount: amount}
	if len(req.Args) > 2 {
		cmd.Currency = req.Args[2]
	}

	res, err := run(ctx, cmd)
	if err != nil {
		return Reply{}, err
	}
	return Reply{Text: fmt.Sprintf("💳 Recorded <code>%s %s</code> for <code>%s</code>. Balance: <code>%s INR</code>",
		res.Payment.Amount().StringFixed(2), res.Payment.Currency(),
		html.EscapeString(res.Username), res.Balance.StringFixed(2))}, nil
}

func (b *Bot) handlePaymentHistory(ctx context.Context, req Request) (Reply, error) {
	if len(req.Args) != 1 {
		return usage("/payment_history <username>")
	}
	payments, err := b.uc.History.Execute(ctx, req.Args[0])
	if err != nil {
		return Reply{}, err
	}
	name := html.EscapeString(req.Args[0])
	if len(payments) == 0 {
		return Reply{Text: fmt.Sprintf("🔍 No payment history found for <code>%s</code>.", name)}, nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "💳 Payment history for <code>%s</code>:\n\n", name)
	for _, p := range payments {
		fmt.Fprintf(&sb, "💰 <code>%s %s</code> · %s\n",
			p.Amount().StringFixed(2), p.Currency(),
			timefmt.FormatTimestamp(p.PaymentDate().Unix(), biztime.Location()))
	}
	return Reply{Text: sb.String()}, nil
}

// handleEarnings reports all time by default. Dates are business-timezone
// days and the upper date is inclusive.
func (b *Bot) handleEarnings(ctx context.Context, req Request) (Reply, error) {
	from := time.Unix(0, 0).UTC()
	to := b.now().Add(time.Second)
	if len(req.Args) > 0 {
		d, err := biztime.ParseDateInBizTimezone(req.Args[0])
		if err != nil {
			return Reply{}, apperrors.NewValidationError("from must be YYYY-MM-DD", req.Args[0])
		}
		from = d
	}
	if len(req.Args) > 1 {
		d, err := biztime.ParseDateInBizTimezone(req.Args[1])
		if err != nil {
			return Reply{}, apperrors.NewValidationError("to must be YYYY-MM-DD", req.Args[1])
		}
		to = d.AddDate(0, 0, 1)
	}

	report, err := b.uc.Earnings.Execute(ctx, from, to)
	if err != nil {
		return Reply{}, err
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "💰 <b>Earnings</b> (%d payments)\n", report.Count)
	if len(report.Totals) == 0 {
		sb.WriteString("\nNo payments in range.")
	}
	for cur, total := range report.Totals {
		fmt.Fprintf(&sb, "\n<code>%s %s</code>", total.StringFixed(2), cur)
	}
	return Reply{Text: sb.String()}, nil
}

func (b *Bot) handleUnlinkUser(ctx context.Context, req Request) (Reply, error) {
	if len(req.Args) != 1 {
		return usage("/unlink_user <username>")
	}
	if err := b.uc.Link.Unlink(ctx, req.Args[0]); err != nil {
		return Reply{}, err
	}
	return Reply{Text: fmt.Sprintf("🔗 Telegram unlinked from <code>%s</code>.", html.EscapeString(req.Args[0]))}, nil
}

func (b *Bot) handleExtendPrompt(_ context.Context, req Request) (Reply, error) {
	if len(req.Args) != 1 {
		return Reply{}, nil
	}
	return Reply{Text: fmt.Sprintf("⏩ Send <code>/extend_plan %s &lt;duration&gt;</code> to extend the plan.", html.EscapeString(req.Args[0]))}, nil
}

func (b *Bot) handleDeletePrompt(_ context.Context, req Request) (Reply, error) {
	if len(req.Args) != 1 {
		return Reply{}, nil
	}
	username := req.Args[0]
	return Reply{
		Text: fmt.Sprintf("🗑 Delete user <code>%s</code> and remove the login?", html.EscapeString(username)),
		Buttons: []notification.Button{
			{Text: "Confirm delete", Data: notification.ActionData(actionDeleteConfirm, username)},
			{Text: "Cancel", Data: actionCancel},
		},
	}, nil
}

func (b *Bot) handleCancel(context.Context, Request) (Reply, error) {
	return Reply{Text: "Cancelled."}, nil
}
