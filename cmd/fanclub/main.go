package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/hongminglow/fanclub/internal/app"
	"github.com/hongminglow/fanclub/internal/config"
	"github.com/hongminglow/fanclub/internal/fanclub"
	"github.com/hongminglow/fanclub/internal/gateway"
	"github.com/hongminglow/fanclub/internal/localstore"
	"github.com/hongminglow/fanclub/internal/render"
	"github.com/hongminglow/fanclub/internal/session"
	"github.com/hongminglow/fanclub/internal/storage/memory"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// client is everything a command needs once the root command has run.
type client struct {
	view *render.Text
	app  *app.App
}

// shown marks an error the app already reported to the user.
type shown struct{ err error }

func (s shown) Error() string { return s.err.Error() }
func (s shown) Unwrap() error { return s.err }

func reported(err error) error {
	if err == nil {
		return nil
	}
	return shown{err}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	c := &client{}
	root := newRootCmd(c)
	if err := root.ExecuteContext(ctx); err != nil {
		var s shown
		if !errors.As(err, &s) {
			fmt.Fprintln(os.Stderr, "error:", err)
		}
		os.Exit(1)
	}
}

func newRootCmd(c *client) *cobra.Command {
	var (
		configFile string
		verbose    bool
		assumeYes  bool
	)
	root := &cobra.Command{
		Use:           "fanclub",
		Short:         "Browse, join and run fan clubs from the terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return c.open(cmd.Context(), configFile, verbose, assumeYes)
		},
	}
	root.PersistentFlags().StringVarP(&configFile, "config", "c", "fanclub.yml", "client config file (optional)")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log root causes to stderr")
	root.PersistentFlags().BoolVarP(&assumeYes, "yes", "y", false, "answer yes to every confirmation")

	root.AddCommand(
		newOpenCmd(c),
		newLoginCmd(c),
		newSignupCmd(c),
		newLogoutCmd(c),
		newProfileCmd(c),
		newPasswordCmd(c),
		newClubsCmd(c),
		newShowCmd(c),
		newJoinCmd(c),
		newLeaveCmd(c),
		newMembershipCmd(c),
		newMembersCmd(c),
		newTabCmd(c),
		newPostCmd(c),
		newLikeCmd(c),
		newChatCmd(c),
		newUploadCmd(c),
		newAdminCmd(c),
	)
	return root
}

func (c *client) open(ctx context.Context, configFile string, verbose, assumeYes bool) error {
	logger := log.New(io.Discard, "", 0)
	if verbose {
		logger = log.New(os.Stderr, "fanclub: ", log.LstdFlags)
	}
	if err := godotenv.Load(); err != nil {
		logger.Println("no .env file found; relying on existing environment")
	}

	cfg, err := config.LoadClient(configFile)
	if err != nil {
		return err
	}
	kv, err := localstore.Open(cfg.StateFile)
	if err != nil {
		return err
	}
	sess := session.New(kv)
	onUnauthorized := func() {
		logger.Println("backend rejected the session token")
		if err := sess.Clear(); err != nil {
			logger.Printf("clear session: %v", err)
		}
	}

	var gw gateway.Gateway
	switch cfg.Gateway {
	case config.GatewayRemote:
		gw = gateway.NewRemote(cfg.APIBase, cfg.Timeout(), sess, gateway.WithUnauthorizedHook(onUnauthorized))
		logger.Printf("using backend %s", cfg.APIBase)
	default:
		store, err := memory.New(kv)
		if err != nil {
			return fmt.Errorf("init local data: %w", err)
		}
		gw = gateway.NewLocal(fanclub.NewService(store), kv, sess, onUnauthorized)
		logger.Printf("using local data in %s", cfg.StateFile)
	}

	view := render.NewText(os.Stdout, os.Stdin, render.WithAssumeYes(assumeYes))
	c.view = view
	c.app = app.New(app.Deps{
		Gateway:   gw,
		Session:   sess,
		Store:     kv,
		View:      view,
		Notifier:  view,
		Confirmer: view,
		Logger:    logger,
	})
	c.app.Start(ctx)
	return nil
}

// onClub makes id the current fan club when given. Without id the fan club
// opened last is used.
func (c *client) onClub(ctx context.Context, id string) error {
	if id == "" {
		return nil
	}
	return reported(c.app.ShowFanclub(ctx, id))
}
