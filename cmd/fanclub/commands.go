package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/hongminglow/fanclub/internal/app"
	"github.com/hongminglow/fanclub/internal/models"
	"github.com/spf13/cobra"
)

func newOpenCmd(c *client) *cobra.Command {
	return &cobra.Command{
		Use:   "open [#page/param]",
		Short: "Show the page a hash fragment names (top page by default)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hash := ""
			if len(args) == 1 {
				hash = args[0]
			}
			return reported(c.app.Dispatch(cmd.Context(), hash))
		},
	}
}

func newLoginCmd(c *client) *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in with email and password",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if password == "" {
				password = readLine(cmd.InOrStdin(), cmd.OutOrStdout(), "パスワード: ")
			}
			return reported(c.app.Login(cmd.Context(), email, password))
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password (prompted when empty)")
	return cmd
}

func newSignupCmd(c *client) *cobra.Command {
	var f app.SignupForm
	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Create an account and sign in",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if f.ConfirmPassword == "" {
				f.ConfirmPassword = f.Password
			}
			return reported(c.app.Signup(cmd.Context(), f))
		},
	}
	cmd.Flags().StringVar(&f.Nickname, "nickname", "", "display name")
	cmd.Flags().StringVar(&f.Email, "email", "", "account email")
	cmd.Flags().StringVar(&f.Phone, "phone", "", "phone number (optional)")
	cmd.Flags().StringVar(&f.Password, "password", "", "password, at least 6 characters")
	cmd.Flags().StringVar(&f.ConfirmPassword, "confirm", "", "password again (defaults to --password)")
	return cmd
}

func newLogoutCmd(c *client) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return reported(c.app.Logout(cmd.Context()))
		},
	}
}

func newProfileCmd(c *client) *cobra.Command {
	var tab string
	cmd := &cobra.Command{
		Use:     "profile",
		Aliases: []string{"whoami", "mypage"},
		Short:   "Show the signed-in user's page",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := c.app.ShowMyPage(cmd.Context()); err != nil {
				return reported(err)
			}
			if tab == "" || tab == app.Tabs[app.TabProfile][0] {
				return nil
			}
			return reported(c.app.SelectTab(cmd.Context(), app.TabProfile, tab))
		},
	}
	cmd.Flags().StringVar(&tab, "tab", "", "profile | joined | password")
	return cmd
}

func newPasswordCmd(c *client) *cobra.Command {
	var f app.PasswordForm
	cmd := &cobra.Command{
		Use:   "password",
		Short: "Change the password",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if f.Confirm == "" {
				f.Confirm = f.New
			}
			return reported(c.app.ChangePassword(cmd.Context(), f))
		},
	}
	cmd.Flags().StringVar(&f.Current, "current", "", "current password")
	cmd.Flags().StringVar(&f.New, "new", "", "new password")
	cmd.Flags().StringVar(&f.Confirm, "confirm", "", "new password again (defaults to --new)")
	return cmd
}

func newClubsCmd(c *client) *cobra.Command {
	clubs := &cobra.Command{
		Use:   "clubs",
		Short: "List, search and create fan clubs",
	}

	var query string
	list := &cobra.Command{
		Use:   "list",
		Short: "Search fan clubs by name or description",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return reported(c.app.Search(cmd.Context(), query))
		},
	}
	list.Flags().StringVarP(&query, "query", "q", "", "search words")

	joined := &cobra.Command{
		Use:   "joined",
		Short: "List the fan clubs you joined",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := c.app.ShowMyPage(cmd.Context()); err != nil {
				return reported(err)
			}
			return reported(c.app.SelectTab(cmd.Context(), app.TabProfile, "joined"))
		},
	}

	var f app.FanclubForm
	create := &cobra.Command{
		Use:   "create",
		Short: "Create a fan club you own",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := c.app.ShowCreateFanclub(); err != nil {
				return reported(err)
			}
			_, err := c.app.CreateFanclub(cmd.Context(), f)
			return reported(err)
		},
	}
	create.Flags().StringVar(&f.Name, "name", "", "fan club name")
	create.Flags().StringVar(&f.Description, "description", "", "short description")
	create.Flags().StringVar(&f.Purpose, "purpose", "", "what the club is about")
	create.Flags().IntVar(&f.MonthlyFee, "fee", 0, "monthly fee in yen")
	create.Flags().StringVar(&f.CoverImageURL, "cover", "", "cover image URL (see upload)")

	clubs.AddCommand(list, joined, create)
	return clubs
}

func newShowCmd(c *client) *cobra.Command {
	return &cobra.Command{
		Use:   "show <fanclub-id>",
		Short: "Open a fan club page",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.onClub(cmd.Context(), args[0])
		},
	}
}

func newJoinCmd(c *client) *cobra.Command {
	return &cobra.Command{
		Use:   "join [fanclub-id]",
		Short: "Join a fan club (the current one by default)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.onClub(cmd.Context(), firstArg(args)); err != nil {
				return err
			}
			return reported(c.app.Join(cmd.Context()))
		},
	}
}

func newLeaveCmd(c *client) *cobra.Command {
	return &cobra.Command{
		Use:   "leave [fanclub-id]",
		Short: "Leave a fan club (the current one by default)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.onClub(cmd.Context(), firstArg(args)); err != nil {
				return err
			}
			return reported(c.app.Leave(cmd.Context()))
		},
	}
}

func newMembershipCmd(c *client) *cobra.Command {
	return &cobra.Command{
		Use:   "membership <fanclub-id>",
		Short: "Tell whether you are a member of a fan club",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.onClub(cmd.Context(), args[0]); err != nil {
				return err
			}
			c.view.Membership(c.app.Membership())
			return nil
		},
	}
}

func newMembersCmd(c *client) *cobra.Command {
	return clubTabCmd(c, "members", "List the members of a fan club", app.TabDetail, "members")
}

func newAdminCmd(c *client) *cobra.Command {
	var tab string
	cmd := &cobra.Command{
		Use:   "admin [fanclub-id]",
		Short: "Open the admin panel of a fan club you own",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.onClub(cmd.Context(), firstArg(args)); err != nil {
				return err
			}
			if err := c.app.ShowAdmin(cmd.Context()); err != nil {
				return reported(err)
			}
			if tab == "" || tab == app.Tabs[app.TabAdmin][0] {
				return nil
			}
			return reported(c.app.SelectTab(cmd.Context(), app.TabAdmin, tab))
		},
	}
	cmd.Flags().StringVar(&tab, "tab", "", "posts | settings")
	return cmd
}

func newTabCmd(c *client) *cobra.Command {
	return &cobra.Command{
		Use:   "tab <fanclub-id> <posts|chat|members|about>",
		Short: "Open a tab of a fan club page",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.onClub(cmd.Context(), args[0]); err != nil {
				return err
			}
			if args[1] == app.Tabs[app.TabDetail][0] {
				return nil
			}
			return reported(c.app.SelectTab(cmd.Context(), app.TabDetail, args[1]))
		},
	}
}

// clubTabCmd opens a fan club, then one of its tabs.
func clubTabCmd(c *client, use, short string, group app.TabGroup, tab string) *cobra.Command {
	return &cobra.Command{
		Use:   use + " [fanclub-id]",
		Short: short,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.onClub(cmd.Context(), firstArg(args)); err != nil {
				return err
			}
			return reported(c.app.SelectTab(cmd.Context(), group, tab))
		},
	}
}

func newPostCmd(c *client) *cobra.Command {
	post := &cobra.Command{
		Use:   "post",
		Short: "Read and write fan club posts",
	}

	var (
		clubID string
		f      app.PostForm
		file   string
	)
	create := &cobra.Command{
		Use:   "create",
		Short: "Publish a post to a fan club you own",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if file != "" {
				body, err := readBody(cmd.InOrStdin(), file)
				if err != nil {
					return err
				}
				f.Body = body
			}
			if err := c.onClub(cmd.Context(), clubID); err != nil {
				return err
			}
			_, err := c.app.CreatePost(cmd.Context(), f)
			return reported(err)
		},
	}
	create.Flags().StringVar(&clubID, "club", "", "fan club id (the current one by default)")
	create.Flags().StringVar(&f.Title, "title", "", "post title")
	create.Flags().StringVar(&f.Body, "body", "", "post body in Markdown")
	create.Flags().StringVarP(&file, "file", "f", "", "read the Markdown body from a file ('-' for stdin)")
	create.Flags().StringVar(&f.Excerpt, "excerpt", "", "teaser shown to non-members")
	create.Flags().StringVar(&f.FeaturedImageURL, "image", "", "featured image URL")
	create.Flags().StringVar(&f.Visibility, "visibility", models.VisibilityPublic, "public | members")

	post.AddCommand(
		create,
		clubTabCmd(c, "list", "List the posts of a fan club", app.TabDetail, "posts"),
	)
	return post
}

func newLikeCmd(c *client) *cobra.Command {
	var (
		clubID string
		undo   bool
	)
	cmd := &cobra.Command{
		Use:   "like <post-id>",
		Short: "Like a post, or take the like back with --undo",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.onClub(cmd.Context(), clubID); err != nil {
				return err
			}
			_, err := c.app.Like(cmd.Context(), args[0], !undo)
			return reported(err)
		},
	}
	cmd.Flags().StringVar(&clubID, "club", "", "fan club of the post, to show the refreshed list")
	cmd.Flags().BoolVar(&undo, "undo", false, "remove the like")
	return cmd
}

func newChatCmd(c *client) *cobra.Command {
	var clubID string
	chat := &cobra.Command{
		Use:   "chat",
		Short: "Read and write the chat of a fan club",
	}
	chat.PersistentFlags().StringVar(&clubID, "club", "", "fan club id (the current one by default)")

	show := &cobra.Command{
		Use:   "show",
		Short: "Show the whole chat",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := c.onClub(cmd.Context(), clubID); err != nil {
				return err
			}
			return reported(c.app.SelectTab(cmd.Context(), app.TabDetail, "chat"))
		},
	}
	send := &cobra.Command{
		Use:   "send <message>",
		Short: "Send a message as a member",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.onClub(cmd.Context(), clubID); err != nil {
				return err
			}
			return reported(c.app.SendChat(cmd.Context(), strings.Join(args, " ")))
		},
	}
	del := &cobra.Command{
		Use:   "delete <message-id>",
		Short: "Delete your message, or any message of a club you own",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.onClub(cmd.Context(), clubID); err != nil {
				return err
			}
			return reported(c.app.DeleteChat(cmd.Context(), args[0]))
		},
	}
	chat.AddCommand(show, send, del)
	return chat
}

func newUploadCmd(c *client) *cobra.Command {
	return &cobra.Command{
		Use:   "upload <image-file>",
		Short: "Upload an image and print its URL",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()
			url, err := c.app.UploadImage(cmd.Context(), args[0], f)
			if err != nil {
				return reported(err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), url)
			return nil
		},
	}
}

func firstArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}

func readBody(stdin io.Reader, file string) (string, error) {
	if file == "-" {
		b, err := io.ReadAll(stdin)
		return string(b), err
	}
	b, err := os.ReadFile(file)
	if err != nil {
		return "", fmt.Errorf("read post body: %w", err)
	}
	return string(b), nil
}

func readLine(in io.Reader, out io.Writer, prompt string) string {
	fmt.Fprint(out, prompt)
	line, _ := bufio.NewReader(in).ReadString('\n')
	return strings.TrimSpace(line)
}
