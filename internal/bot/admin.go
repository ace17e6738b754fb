package bot

import (
	"fmt"
	"strconv"
	"strings"
)

// handleAdminCommand handles /admin command with subcommands.
// Only the admin user can use this command.
func (b *Bot) handleAdminCommand(c *chat, args string) {
	if c.userID != b.opts.AdminID || b.users == nil {
		return
	}

	parts := strings.Fields(args)
	if len(parts) < 2 || parts[0] != "users" {
		c.reply(MsgAdminUsage)
		return
	}
	b.handleAdminUsersCommand(c, parts[1], parts[2:])
}

func (b *Bot) handleAdminUsersCommand(c *chat, action string, args []string) {
	switch action {
	case "add":
		if len(args) < 1 {
			c.reply(MsgAdminUserAddUsage)
			return
		}
		userID, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			c.reply(MsgAdminUserInvalidID)
			return
		}
		if err := b.users.AddAllowedUser(userID, c.userID); err != nil {
			c.replyWithError(err)
			return
		}
		c.reply(MsgAdminUserAdded, userID)

	case "remove":
		if len(args) < 1 {
			c.reply(MsgAdminUserRemoveUsage)
			return
		}
		userID, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			c.reply(MsgAdminUserInvalidID)
			return
		}
		if err := b.users.RemoveAllowedUser(userID); err != nil {
			c.replyWithError(err)
			return
		}
		c.reply(MsgAdminUserRemoved, userID)

	case "list":
		users, err := b.users.GetAllowedUsers()
		if err != nil {
			c.replyWithError(err)
			return
		}
		if len(users) == 0 {
			c.reply(MsgAdminNoUsers)
			return
		}
		var sb strings.Builder
		sb.WriteString(MsgAdminAllowedUsers)
		for _, u := range users {
			sb.WriteString(fmt.Sprintf("• `%d` (lisätty %s)\n", u.TelegramID, u.AddedAt.Format("2006-01-02")))
		}
		c.reply("%s", sb.String())

	default:
		c.reply(MsgAdminUsage)
	}
}
