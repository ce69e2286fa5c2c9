package cli

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/spf13/cobra"

	"letstalk/internal/chats"
	"letstalk/internal/models"
	"letstalk/internal/ping"
	"letstalk/internal/status"
	"letstalk/internal/upload"
	"letstalk/internal/users"
)

var chatsCmd = &cobra.Command{
	Use:   "chats",
	Short: "Print the chat list",
	Args:  cobra.NoArgs,
	RunE: withConn(func(ctx context.Context, a *app, _ *cobra.Command, _ []string) error {
		list := chats.OpenChatList(a.conn)
		defer list.Close()

		settle(ctx)

		rows := list.Chats()
		if len(rows) == 0 {
			// Fall back to the last snapshot so a flaky backend still
			// paints something.
			if snap, err := a.store.LoadChatList(); err == nil {
				rows = snap
				fmt.Println("(cached)")
			}
		} else if err := a.store.SaveChatList(rows); err != nil {
			slog.Warn("chat list snapshot failed", "err", err)
		}

		for _, row := range rows {
			fmt.Printf("%-6s %-20s [%d unread, %s] %s\n",
				row.FriendID, row.FriendName, row.UnreadCount,
				presence(row.IsOnline), row.LastMessage)
		}
		return nil
	}),
}

var chatCmd = &cobra.Command{
	Use:   "chat <friendId>",
	Short: "Print one conversation",
	Args:  cobra.ExactArgs(1),
	RunE: withConn(func(ctx context.Context, a *app, _ *cobra.Command, args []string) error {
		friendID, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("friend id: %w", err)
		}

		conv := chats.OpenConversation(a.conn, friendID)
		defer conv.Close()

		settle(ctx)

		if f := conv.Friend(); f != nil {
			fmt.Printf("%s %s (%s)\n", f.FirstName, f.LastName, presence(f.Online()))
		}
		for _, m := range conv.Messages() {
			fmt.Printf("[%s] %d -> %d: %s (%s)\n",
				m.Timestamp, m.Sender.ID, m.Receiver.ID, m.Message, m.MessageStatus)
		}
		return nil
	}),
}

var sendCmd = &cobra.Command{
	Use:   "send <friendId> <message>",
	Short: "Send a message, optionally with an attachment",
	Args:  cobra.ExactArgs(2),
	RunE: withConn(func(ctx context.Context, a *app, cmd *cobra.Command, args []string) error {
		friendID, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("friend id: %w", err)
		}

		path, _ := cmd.Flags().GetString("file")
		att, cleanup, err := attachmentFromFlag(path)
		if err != nil {
			return err
		}
		defer cleanup()

		uploader := upload.New(a.cfg.APIBaseURL)
		sender := chats.NewSender(a.conn, uploader, a.cfg.ConfirmTimeout)

		return sender.Send(ctx, chats.SendOptions{
			ToUserID:   friendID,
			Message:    args[1],
			Attachment: att,
		})
	}),
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Print the status tab, or post with --post/--file",
	Args:  cobra.NoArgs,
	RunE: withConn(func(ctx context.Context, a *app, cmd *cobra.Command, _ []string) error {
		text, _ := cmd.Flags().GetString("post")
		path, _ := cmd.Flags().GetString("file")
		if text != "" || path != "" {
			att, cleanup, err := attachmentFromFlag(path)
			if err != nil {
				return err
			}
			defer cleanup()

			bgColor, _ := cmd.Flags().GetString("bg-color")
			uploader := upload.New(a.cfg.APIBaseURL)
			sender := status.NewSender(a.conn, uploader, a.cfg.ConfirmTimeout)
			return sender.Post(ctx, status.PostOptions{
				Message:    text,
				BgColor:    bgColor,
				Attachment: att,
			})
		}

		list := status.Open(a.conn)
		defer list.Close()

		settle(ctx)

		if msg := list.Err(); msg != "" {
			fmt.Printf("error: %s\n", msg)
		}
		fmt.Println("mine:")
		printItems(list.Mine())
		fmt.Println("contacts:")
		printItems(list.All())
		return nil
	}),
}

func printItems(items []models.StatusItem) {
	for _, item := range items {
		viewed := " "
		if item.IsViewed {
			viewed = "*"
		}
		fmt.Printf("  %s %s (%d stories)\n", viewed, item.UserName, len(item.Stories))
		for _, story := range item.Stories {
			fmt.Printf("      #%d %s likes=%d views=%d comments=%d\n",
				story.ID, story.Type, story.Likes, story.Views, len(story.Comments))
		}
	}
}

var contactsCmd = &cobra.Command{
	Use:   "contacts",
	Short: "Print all known users",
	Args:  cobra.NoArgs,
	RunE: withConn(func(ctx context.Context, a *app, _ *cobra.Command, _ []string) error {
		roster := users.OpenRoster(ctx, a.conn)
		defer roster.Close()

		settle(ctx)

		for _, u := range roster.Users() {
			fmt.Printf("%-6d %-20s %s\n", u.ID, u.DisplayName, presence(u.Online()))
		}
		return nil
	}),
}

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Print the signed-in user's profile",
	Args:  cobra.NoArgs,
	RunE: withConn(func(ctx context.Context, a *app, _ *cobra.Command, _ []string) error {
		p := users.OpenProfile(a.conn)
		defer p.Close()

		settle(ctx)

		me := p.Current()
		if me == nil {
			cached, err := a.store.LoadProfile()
			if err != nil {
				return fmt.Errorf("no profile response and no snapshot")
			}
			me = &cached
			fmt.Println("(cached)")
		} else if err := a.store.SaveProfile(*me); err != nil {
			slog.Warn("profile snapshot failed", "err", err)
		}

		fmt.Printf("%s %s (#%d)\n", me.FirstName, me.LastName, me.ID)
		fmt.Printf("  %s %s\n", me.CountryCode, me.ContactNo)
		fmt.Printf("  %s\n", me.AboutMe)
		return nil
	}),
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the saved session",
	Args:  cobra.NoArgs,
	RunE: func(*cobra.Command, []string) error {
		// No socket needed to sign out; only the snapshot store.
		st, sess, err := openSession()
		if err != nil {
			return err
		}
		defer func() { _ = st.Close() }()
		return sess.SignOut()
	},
}

var pingCmd = &cobra.Command{
	Use:   "ping",
	Short: "Probe the connection until interrupted",
	Args:  cobra.NoArgs,
	RunE: withConn(func(ctx context.Context, a *app, cmd *cobra.Command, _ []string) error {
		interval, _ := cmd.Flags().GetDuration("interval")
		prober := ping.Start(a.conn, interval)
		defer prober.Stop()

		<-ctx.Done()
		return nil
	}),
}

func init() {
	sendCmd.Flags().String("file", "", "attachment path")
	statusCmd.Flags().String("post", "", "post a text status instead of listing")
	statusCmd.Flags().String("file", "", "attachment path for a posted status")
	statusCmd.Flags().String("bg-color", "", "background color for a TEXT status")
	pingCmd.Flags().Duration("interval", ping.DefaultInterval, "ping interval")

	for _, cmd := range []*cobra.Command{chatsCmd, chatCmd, sendCmd, statusCmd, contactsCmd, profileCmd, logoutCmd, pingCmd} {
		rootCmd.AddCommand(cmd)
	}
}
