package usecases

import (
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/orris-inc/leasebot/internal/domain/notification"
	"github.com/orris-inc/leasebot/internal/shared/timefmt"
)

// Messages are HTML formatted.

func ExpiringSoonMessage(name string, remainingSeconds, endTime int64, loc *time.Location) string {
	return fmt.Sprintf("⏳ <b>Plan expiring soon</b>\n\n"+
		"Dear %s, your plan expires in <b>%s</b>.\n"+
		"📅 Expiry date: <code>%s</code>\n\n"+
		"Please contact the admin to extend it.",
		html.EscapeString(name),
		timefmt.Humanize(remainingSeconds),
		timefmt.FormatTimestamp(endTime, loc),
	)
}

func AdminExpiringSoonMessage(username string, remainingSeconds int64) string {
	return fmt.Sprintf("⏳ Plan for user <code>%s</code> expires in %s.",
		html.EscapeString(username), timefmt.Humanize(remainingSeconds))
}

func ExpiredMessage(name string) string {
	return fmt.Sprintf("⌛ <b>Plan expired</b>\n\n"+
		"Dear %s, your plan has expired and remote access was revoked.\n"+
		"Contact the admin to renew it.",
		html.EscapeString(name),
	)
}

func AdminExpiredMessage(username string, revoked bool, detail string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "⚠️ Plan for user <code>%s</code> has expired. Please take necessary action.", html.EscapeString(username))
	if revoked {
		b.WriteString("\n\n🔒 Remote access revoked.")
	} else {
		b.WriteString("\n\n❗ Failed to revoke remote access.")
	}
	if detail != "" {
		fmt.Fprintf(&b, "\n<pre>%s</pre>", html.EscapeString(detail))
	}
	return b.String()
}

func ExtendedMessage(name string, seconds, endTime int64, loc *time.Location) string {
	return fmt.Sprintf("🔥 Dear %s, your plan has been extended by <code>%s</code>.\n"+
		"📅 New expiry date: <code>%s</code>.\n\nEnjoy your server! 🚀",
		html.EscapeString(name),
		timefmt.Humanize(seconds),
		timefmt.FormatTimestamp(endTime, loc),
	)
}

func LapsedMessage(name string, balance, due decimal.Decimal) string {
	return fmt.Sprintf("💸 <b>Plan paused</b>\n\n"+
		"Dear %s, your balance of <code>%s INR</code> does not cover the <code>%s INR</code> due.\n"+
		"Please top up to resume your plan.",
		html.EscapeString(name), balance.StringFixed(2), due.StringFixed(2))
}

func AdminLapsedMessage(username string, balance, due decimal.Decimal) string {
	return fmt.Sprintf("💸 Rental of <code>%s</code> deactivated: balance %s INR, due %s INR.",
		html.EscapeString(username), balance.StringFixed(2), due.StringFixed(2))
}

// AdminActions are the buttons attached to admin notices about a user.
func AdminActions(username string) []notification.Button {
	return []notification.Button{
		{Text: "Extend", Data: notification.ActionData(notification.ActionExtend, username)},
		{Text: "Delete", Data: notification.ActionData(notification.ActionDelete, username)},
	}
}

// AdminAccountCreatedMessage carries the credentials and the link token for the admin to forward.
func AdminAccountCreatedMessage(username, password, token string, endTime int64, reactivated bool, loc *time.Location) string {
	title := "✅ <b>User created</b>"
	if reactivated {
		title = "♻️ <b>User reactivated</b>"
	}
	return fmt.Sprintf("%s\n\n"+
		"👤 Username: <code>%s</code>\n"+
		"🔑 Password: <code>%s</code>\n"+
		"📅 Expiry date: <code>%s</code>\n\n"+
		"🔗 Link token: <code>/start %s</code>",
		title,
		html.EscapeString(username),
		html.EscapeString(password),
		timefmt.FormatTimestamp(endTime, loc),
		html.EscapeString(token),
	)
}

func LinkedMessage(name, username, password string, endTime int64, loc *time.Location) string {
	return fmt.Sprintf("👋 Welcome %s!\n\n"+
		"This chat is now linked to server account <code>%s</code>.\n"+
		"🔑 Password: <code>%s</code>\n"+
		"📅 Plan expiry date: <code>%s</code>\n\n"+
		"You will be notified before your plan expires.",
		html.EscapeString(name),
		html.EscapeString(username),
		html.EscapeString(password),
		timefmt.FormatTimestamp(endTime, loc),
	)
}

func AdminLinkedMessage(username, display string) string {
	return fmt.Sprintf("🔗 User <code>%s</code> linked Telegram account %s.",
		html.EscapeString(username), html.EscapeString(display))
}
