// Package cli wires the terminal client: one persistent socket, the
// feature correlators on top of it, and a handful of subcommands that
// stand in for the mobile screens.
package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"

	"letstalk/internal/chats"
	"letstalk/internal/config"
	"letstalk/internal/models"
	"letstalk/internal/ping"
	"letstalk/internal/session"
	"letstalk/internal/store"
	"letstalk/internal/ws"
)

// Execute runs the root command. Called once from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "letstalk",
	Short: "Terminal client for the LetsTalk chat backend",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		_ = cmd.Help()
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.String("user", "", "user id to connect as (falls back to the saved session)")
	pf.String("socket-url", "ws://localhost:8080/LetsTalk/chat", "chat socket base URL")
	pf.String("api-url", "http://localhost:8080/LetsTalk", "REST/upload base URL")
	pf.String("snapshot", "letstalk.db", "snapshot database path")
	pf.String("snapshot-secret", "", "device secret sealing the snapshot database")
	pf.Duration("wait", 3*time.Second, "how long to wait for responses before printing")
	pf.Bool("verbose", false, "debug logging")

	cobra.CheckErr(viper.BindPFlags(pf))
	viper.SetEnvPrefix("LETSTALK")
	viper.AutomaticEnv()
}

// app bundles what every subcommand needs: a running connection and the
// surrounding collaborators.
type app struct {
	cfg     *config.Config
	conn    *ws.Conn
	store   *store.Store
	session *session.Manager
	userID  string

	cancel context.CancelFunc
	group  *errgroup.Group
}

// loadConfig assembles the validated config from the bound flags.
func loadConfig() (*config.Config, error) {
	secret := viper.GetString("snapshot-secret")
	if secret == "" {
		secret = "letstalk-dev"
	}
	cfg := &config.Config{
		SocketBaseURL:  viper.GetString("socket-url"),
		APIBaseURL:     viper.GetString("api-url"),
		PingInterval:   ping.DefaultInterval,
		ConfirmTimeout: chats.DefaultConfirmTimeout,
		SnapshotPath:   viper.GetString("snapshot"),
		SnapshotSecret: secret,
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// openSession opens the snapshot store and session manager without
// touching the network.
func openSession() (*store.Store, *session.Manager, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	return openSessionWith(cfg)
}

func openSessionWith(cfg *config.Config) (*store.Store, *session.Manager, error) {
	st, err := store.Open(cfg.SnapshotPath, []byte(cfg.SnapshotSecret))
	if err != nil {
		return nil, nil, err
	}
	sess, err := session.New(st)
	if err != nil {
		_ = st.Close()
		return nil, nil, err
	}
	return st, sess, nil
}

// dial builds the app: open the snapshot store, resolve the identity,
// connect and start the frame pump.
func dial(ctx context.Context) (*app, error) {
	if viper.GetBool("verbose") {
		slog.SetLogLoggerLevel(slog.LevelDebug)
	}

	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	st, sess, err := openSessionWith(cfg)
	if err != nil {
		return nil, err
	}

	userID := viper.GetString("user")
	if userID == "" {
		userID = sess.UserID()
	}
	if userID == "" {
		_ = st.Close()
		return nil, errors.New("no user id: pass --user or sign in first")
	}
	if err := sess.SignIn(userID); err != nil {
		_ = st.Close()
		return nil, err
	}

	conn, err := ws.Dial(ctx, cfg.SocketBaseURL, userID)
	if err != nil {
		_ = st.Close()
		return nil, err
	}

	runCtx, cancel := context.WithCancel(ctx)
	g, runCtx := errgroup.WithContext(runCtx)
	g.Go(func() error {
		return conn.Run(runCtx)
	})

	return &app{
		cfg:     cfg,
		conn:    conn,
		store:   st,
		session: sess,
		userID:  userID,
		cancel:  cancel,
		group:   g,
	}, nil
}

func (a *app) close() {
	a.cancel()
	_ = a.conn.Close()
	if err := a.group.Wait(); err != nil {
		slog.Warn("connection closed with error", "err", err)
	}
	_ = a.store.Close()
}

// withConn wraps a subcommand body with connection setup/teardown and
// signal handling.
func withConn(body func(ctx context.Context, a *app, cmd *cobra.Command, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		a, err := dial(ctx)
		if err != nil {
			return err
		}
		defer a.close()

		return body(ctx, a, cmd, args)
	}
}

// settle gives the backend a moment to answer before state is printed.
func settle(ctx context.Context) {
	select {
	case <-time.After(viper.GetDuration("wait")):
	case <-ctx.Done():
	}
}

func presence(online bool) string {
	if online {
		return "online"
	}
	return "offline"
}

func attachmentFromFlag(path string) (*models.Attachment, func(), error) {
	if path == "" {
		return nil, func() {}, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	att := &models.Attachment{Name: f.Name(), Content: f}
	return att, func() { _ = f.Close() }, nil
}
