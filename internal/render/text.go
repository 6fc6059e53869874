// Package render draws the client's pages as plain text for the terminal.
package render

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"sync"
	"text/tabwriter"
	"text/template"
	"time"

	"github.com/hongminglow/fanclub/internal/app"
	"github.com/hongminglow/fanclub/internal/models"
	"github.com/hongminglow/fanclub/internal/models/dto"
	"github.com/hongminglow/fanclub/internal/richtext"
)

var (
	_ app.View      = (*Text)(nil)
	_ app.Notifier  = (*Text)(nil)
	_ app.Confirmer = (*Text)(nil)
)

var pageTitles = map[app.Page]string{
	app.PageTop:           "トップ",
	app.PageSearch:        "ファンクラブを探す",
	app.PageFanclubDetail: "ファンクラブ",
	app.PageMyPage:        "マイページ",
	app.PageAuth:          "ログイン",
	app.PageCreateClub:    "ファンクラブ作成",
	app.PageAdmin:         "管理画面",
}

var funcs = template.FuncMap{
	"plain": richtext.PlainText,
	"date":  func(t time.Time) string { return t.Local().Format("2006-01-02") },
	"clock": func(t time.Time) string { return t.Local().Format("01/02 15:04") },
	"visibility": func(v string) string {
		if v == models.VisibilityMembers {
			return "ファン限定"
		}
		return "公開"
	},
	"indent": func(s string) string {
		return "    " + strings.ReplaceAll(strings.TrimSpace(s), "\n", "\n    ")
	},
}

var fanclubsTmpl = template.Must(template.New("fanclubs").Funcs(funcs).Parse(
	`{{if not .}}ファンクラブがありません。
{{else}}ID	NAME	MEMBERS	FEE	OWNER
{{range .}}{{.ID}}	{{.Name}}	{{.MemberCount}} 人	{{.MonthlyFee}} 円/月	{{.OwnerName}}
{{end}}{{end}}`))

var fanclubTmpl = template.Must(template.New("fanclub").Funcs(funcs).Parse(
	`{{with .Fanclub}}# {{.Name}}
{{if .Description}}{{.Description}}{{else}}{{.Purpose}}{{end}}
メンバー: {{.MemberCount}} 人  月額: {{.MonthlyFee}} 円  オーナー: {{.OwnerName}}
{{if .CoverImageURL}}カバー画像: {{.CoverImageURL}}
{{end}}{{end}}{{if .IsOwner}}あなたはこのファンクラブのオーナーです (fanclub admin)
{{else if .Membership.IsMember}}参加中 (fanclub leave で退会)
{{else if .LoggedIn}}未参加 (fanclub join で参加)
{{else}}参加するにはログインしてください
{{end}}`))

var postsTmpl = template.Must(template.New("posts").Funcs(funcs).Parse(
	`{{if not .}}まだ投稿がありません。
{{else}}{{range .}}■ {{.Title}}  [{{visibility .Visibility}}]  {{.AuthorName}}  {{date .CreatedAt}}  ({{.ID}})
{{if .Excerpt}}{{indent .Excerpt}}
{{end}}{{if .Locked}}    🔒 ファン限定の記事です。参加すると全文を読めます。
{{else if .Content}}{{indent (plain .Content)}}
{{end}}{{if .FeaturedImageURL}}    画像: {{.FeaturedImageURL}}
{{end}}    ♥ {{.LikeCount}}{{if .IsLiked}} (いいね済み){{end}}

{{end}}{{end}}`))

var chatTmpl = template.Must(template.New("chat").Funcs(funcs).Parse(
	`{{if .Offline}}(オフライン: 保存済みのメッセージ)
{{end}}{{$del := .Deletable}}{{range .Messages}}[{{clock .CreatedAt}}] {{.UserName}}: {{.Message}}{{if index $del .ID}}  (削除可: {{.ID}}){{end}}
{{end}}{{if .InputVisible}}> fanclub chat send <メッセージ>
{{else}}チャットに参加するにはメンバーになってください
{{end}}`))

var membersTmpl = template.Must(template.New("members").Funcs(funcs).Parse(
	`{{if not .}}メンバーがいません。
{{else}}NAME	ROLE	JOINED
{{range .}}{{.UserName}}	{{.Role}}	{{date .JoinedAt}}
{{end}}{{end}}`))

var profileTmpl = template.Must(template.New("profile").Funcs(funcs).Parse(
	`ニックネーム	{{.DisplayName}}
メールアドレス	{{.Email}}
電話番号	{{if .Phone}}{{.Phone}}{{else}}-{{end}}
登録日	{{date .CreatedAt}}
`))

// Text writes every page to out and reads confirmations from in.
type Text struct {
	mu        sync.Mutex
	out       io.Writer
	in        *bufio.Reader
	assumeYes bool
}

// Option customises a Text view.
type Option func(*Text)

// WithAssumeYes answers every confirmation with yes.
func WithAssumeYes(yes bool) Option {
	return func(t *Text) { t.assumeYes = yes }
}

// NewText returns a view writing to out. in may be nil when confirmations
// are always assumed.
func NewText(out io.Writer, in io.Reader, opts ...Option) *Text {
	t := &Text{out: out}
	if in != nil {
		t.in = bufio.NewReader(in)
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func (t *Text) printf(format string, args ...any) {
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprintf(t.out, format, args...)
}

func (t *Text) execute(tmpl *template.Template, data any, table bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	var w io.Writer = t.out
	var tw *tabwriter.Writer
	if table {
		tw = tabwriter.NewWriter(t.out, 0, 4, 2, ' ', 0)
		w = tw
	}
	if err := tmpl.Execute(w, data); err != nil {
		fmt.Fprintf(t.out, "render %s: %v\n", tmpl.Name(), err)
		return
	}
	if tw != nil {
		tw.Flush()
	}
}

func (t *Text) ShowPage(page app.Page) {
	title, ok := pageTitles[page]
	if !ok {
		title = string(page)
	}
	t.printf("\n== %s ==\n", title)
}

func (t *Text) ShowAuth(mode app.AuthMode) {
	if mode == app.AuthSignup {
		t.printf("アカウント作成: fanclub signup --nickname <名前> --email <メール> --password <パスワード>\n")
		return
	}
	t.printf("ログイン: fanclub login --email <メール> --password <パスワード>\n")
}

func (t *Text) ShowTab(group app.TabGroup, tab string) {
	var tabs []string
	for _, name := range app.Tabs[group] {
		if name == tab {
			name = "[" + name + "]"
		}
		tabs = append(tabs, name)
	}
	t.printf("%s\n", strings.Join(tabs, " | "))
}

func (t *Text) SetAuthState(user *models.User) {
	if user == nil {
		t.printf("(未ログイン)\n")
		return
	}
	t.printf("(ログイン中: %s)\n", user.DisplayName())
}

// SetLoading is a no-op: every command prints once its calls have finished.
func (t *Text) SetLoading(bool) {}

func (t *Text) RenderFanclubs(_ app.Container, clubs []models.Fanclub) {
	t.execute(fanclubsTmpl, clubs, true)
}

func (t *Text) RenderFanclub(v app.FanclubView) {
	t.execute(fanclubTmpl, v, false)
}

func (t *Text) RenderPosts(_ app.Container, posts []models.Post) {
	t.execute(postsTmpl, posts, false)
}

func (t *Text) RenderChat(_ app.Container, v app.ChatView) {
	t.execute(chatTmpl, v, false)
}

func (t *Text) RenderMembers(_ app.Container, members []models.Membership) {
	t.execute(membersTmpl, members, true)
}

func (t *Text) RenderProfile(user models.User) {
	t.execute(profileTmpl, user, true)
}

// Notify prints a one line notice.
func (t *Text) Notify(kind app.NoticeKind, message string) {
	marks := map[app.NoticeKind]string{
		app.NoticeSuccess: "✓",
		app.NoticeError:   "✗",
		app.NoticeWarning: "!",
		app.NoticeInfo:    "i",
	}
	mark, ok := marks[kind]
	if !ok {
		mark = "-"
	}
	t.printf("%s %s\n", mark, message)
}

// Confirm asks on out and reads y/yes from in. Without input it declines
// unless WithAssumeYes was given.
func (t *Text) Confirm(prompt string) bool {
	if t.assumeYes {
		return true
	}
	if t.in == nil {
		return false
	}
	t.printf("%s [y/N]: ", prompt)
	line, err := t.in.ReadString('\n')
	if err != nil && line == "" {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	}
	return false
}

// Membership prints the membership answer for scripts.
func (t *Text) Membership(m dto.MembershipResponse) {
	if !m.IsMember {
		t.printf("未参加\n")
		return
	}
	t.printf("参加中 (%s)\n", m.Role)
}
