package app

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/hongminglow/fanclub/internal/fanclub"
	"github.com/hongminglow/fanclub/internal/gateway"
	"github.com/hongminglow/fanclub/internal/localstore"
	"github.com/hongminglow/fanclub/internal/models"
	"github.com/hongminglow/fanclub/internal/models/dto"
	"github.com/hongminglow/fanclub/internal/session"
	"github.com/hongminglow/fanclub/internal/storage/memory"
)

type fakeView struct {
	mu        sync.Mutex
	pages     []Page
	authMode  AuthMode
	tabs      map[TabGroup]string
	user      *models.User
	loading   []bool
	fanclubs  map[Container][]models.Fanclub
	detail    FanclubView
	posts     map[Container][]models.Post
	chat      ChatView
	chatDraws int
	members   []models.Membership
	profile   models.User
}

func newFakeView() *fakeView {
	return &fakeView{
		tabs:     map[TabGroup]string{},
		fanclubs: map[Container][]models.Fanclub{},
		posts:    map[Container][]models.Post{},
	}
}

func (v *fakeView) ShowPage(p Page) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.pages = append(v.pages, p)
}

func (v *fakeView) ShowAuth(mode AuthMode) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.authMode = mode
}

func (v *fakeView) ShowTab(g TabGroup, tab string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.tabs[g] = tab
}

func (v *fakeView) SetAuthState(u *models.User) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.user = u
}

func (v *fakeView) SetLoading(active bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.loading = append(v.loading, active)
}

func (v *fakeView) RenderFanclubs(c Container, clubs []models.Fanclub) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.fanclubs[c] = clubs
}

func (v *fakeView) RenderFanclub(fv FanclubView) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.detail = fv
}

func (v *fakeView) RenderPosts(c Container, posts []models.Post) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.posts[c] = posts
}

func (v *fakeView) RenderChat(_ Container, cv ChatView) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.chat = cv
	v.chatDraws++
}

func (v *fakeView) RenderMembers(_ Container, members []models.Membership) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.members = members
}

func (v *fakeView) RenderProfile(u models.User) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.profile = u
}

func (v *fakeView) currentPage() Page {
	v.mu.Lock()
	defer v.mu.Unlock()
	if len(v.pages) == 0 {
		return ""
	}
	return v.pages[len(v.pages)-1]
}

type notice struct {
	kind NoticeKind
	msg  string
}

type fakeNotifier struct {
	mu      sync.Mutex
	notices []notice
}

func (n *fakeNotifier) Notify(kind NoticeKind, msg string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.notices = append(n.notices, notice{kind, msg})
}

func (n *fakeNotifier) last() notice {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.notices) == 0 {
		return notice{}
	}
	return n.notices[len(n.notices)-1]
}

func (n *fakeNotifier) has(kind NoticeKind, msg string) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	for _, x := range n.notices {
		if x.kind == kind && x.msg == msg {
			return true
		}
	}
	return false
}

type fakeConfirmer struct {
	answer bool
	asked  []string
}

func (c *fakeConfirmer) Confirm(prompt string) bool {
	c.asked = append(c.asked, prompt)
	return c.answer
}

// countingGateway counts calls that reach the backend.
type countingGateway struct {
	gateway.Gateway
	mu    sync.Mutex
	calls int
}

func (g *countingGateway) count() {
	g.mu.Lock()
	g.calls++
	g.mu.Unlock()
}

func (g *countingGateway) Login(ctx context.Context, email, password string) (gateway.Auth, error) {
	g.count()
	return g.Gateway.Login(ctx, email, password)
}

func (g *countingGateway) SendChatMessage(ctx context.Context, id, msg string) (models.ChatMessage, error) {
	g.count()
	return g.Gateway.SendChatMessage(ctx, id, msg)
}

func (g *countingGateway) DeleteChatMessage(ctx context.Context, id, msgID string) error {
	g.count()
	return g.Gateway.DeleteChatMessage(ctx, id, msgID)
}

func (g *countingGateway) CreateFanclub(ctx context.Context, req dto.CreateFanclubRequest) (models.Fanclub, error) {
	g.count()
	return g.Gateway.CreateFanclub(ctx, req)
}

func (g *countingGateway) Calls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls
}

type fixture struct {
	app     *App
	view    *fakeView
	notes   *fakeNotifier
	confirm *fakeConfirmer
	sess    *session.Session
	kv      *localstore.Store
	gw      *countingGateway
}

func newFixture(t *testing.T, wrap func(gateway.Gateway) gateway.Gateway) *fixture {
	t.Helper()
	kv := localstore.NewMemory()
	store, err := memory.New(kv)
	if err != nil {
		t.Fatalf("memory store: %v", err)
	}
	svc := fanclub.NewService(store, fanclub.WithHashCost(bcrypt.MinCost))
	sess := session.New(kv)
	var gw gateway.Gateway = gateway.NewLocal(svc, kv, sess, func() { _ = sess.Clear() })
	if wrap != nil {
		gw = wrap(gw)
	}
	counting := &countingGateway{Gateway: gw}
	f := &fixture{
		view:    newFakeView(),
		notes:   &fakeNotifier{},
		confirm: &fakeConfirmer{answer: true},
		sess:    sess,
		kv:      kv,
		gw:      counting,
	}
	f.app = New(Deps{
		Gateway:   counting,
		Session:   sess,
		Store:     kv,
		View:      f.view,
		Notifier:  f.notes,
		Confirmer: f.confirm,
	})
	f.app.Start(context.Background())
	return f
}

func (f *fixture) signup(t *testing.T, email string) models.User {
	t.Helper()
	err := f.app.Signup(context.Background(), SignupForm{
		Nickname: strings.Split(email, "@")[0],
		Email:    email,
		Password: "secret123",
	})
	if err != nil {
		t.Fatalf("signup %s: %v", email, err)
	}
	u, ok := f.sess.User()
	if !ok {
		t.Fatalf("signup %s left no session", email)
	}
	return u
}

func (f *fixture) login(t *testing.T, email, password string) {
	t.Helper()
	if err := f.app.Login(context.Background(), email, password); err != nil {
		t.Fatalf("login %s: %v", email, err)
	}
}

func TestParseRoute(t *testing.T) {
	tests := []struct {
		hash string
		want Route
	}{
		{"", Route{}},
		{"#", Route{}},
		{"#login", Route{Page: "login"}},
		{"signup", Route{Page: "signup"}},
		{"#fanclub/abc", Route{Page: "fanclub", Param: "abc"}},
		{"#fanclub/abc/extra", Route{Page: "fanclub", Param: "abc"}},
		{"#profile/", Route{Page: "profile"}},
	}
	for _, tt := range tests {
		if got := ParseRoute(tt.hash); got != tt.want {
			t.Errorf("ParseRoute(%q) = %+v, want %+v", tt.hash, got, tt.want)
		}
	}
}

func TestDispatch(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)

	if err := f.app.Dispatch(ctx, "#profile"); err != nil {
		t.Fatalf("dispatch profile: %v", err)
	}
	if f.app.Page() != PageAuth || f.view.authMode != AuthLogin || f.app.Hash() != "" {
		t.Fatalf("anonymous profile: page=%s mode=%s hash=%q", f.app.Page(), f.view.authMode, f.app.Hash())
	}

	if err := f.app.Dispatch(ctx, "#nowhere"); err != nil {
		t.Fatalf("dispatch unknown: %v", err)
	}
	if f.app.Page() != PageTop || f.app.Hash() != "" {
		t.Fatalf("unknown route: page=%s hash=%q", f.app.Page(), f.app.Hash())
	}
	if len(f.view.fanclubs[ContainerFeatured]) == 0 {
		t.Fatal("top page did not render featured fan clubs")
	}

	if err := f.app.Dispatch(ctx, "#fanclub/"+memory.DemoFanclubID); err != nil {
		t.Fatalf("dispatch fanclub: %v", err)
	}
	if f.app.Page() != PageFanclubDetail || f.view.detail.Fanclub.ID != memory.DemoFanclubID {
		t.Fatalf("fanclub route: page=%s detail=%+v", f.app.Page(), f.view.detail)
	}
	if f.app.Tab(TabDetail) != "posts" || len(f.view.posts[ContainerPosts]) == 0 {
		t.Fatalf("default tab = %q posts=%d", f.app.Tab(TabDetail), len(f.view.posts[ContainerPosts]))
	}

	if err := f.app.Dispatch(ctx, "#signup"); err != nil {
		t.Fatalf("dispatch signup: %v", err)
	}
	if f.view.currentPage() != PageAuth || f.view.authMode != AuthSignup || f.app.Hash() != "signup" {
		t.Fatalf("signup route: page=%s mode=%s hash=%q", f.view.currentPage(), f.view.authMode, f.app.Hash())
	}

	f.signup(t, "fan@example.com")
	if err := f.app.Dispatch(ctx, "#profile"); err != nil {
		t.Fatalf("dispatch profile: %v", err)
	}
	if f.app.Page() != PageMyPage || f.view.profile.Email != "fan@example.com" {
		t.Fatalf("profile route: page=%s profile=%+v", f.app.Page(), f.view.profile)
	}
}

func TestValidationMakesNoCall(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)

	var inputErr *InputError
	if err := f.app.Login(ctx, "", "x"); !errors.As(err, &inputErr) {
		t.Fatalf("login err = %v", err)
	}
	if n := f.notes.last(); n.kind != NoticeError || n.msg != msgLoginRequired {
		t.Fatalf("notice = %+v", n)
	}
	if err := f.app.Signup(ctx, SignupForm{Nickname: "a", Email: "a@b.c", Password: "123"}); !errors.As(err, &inputErr) {
		t.Fatalf("short password err = %v", err)
	}
	if err := f.app.Signup(ctx, SignupForm{Nickname: "a", Email: "a@b.c", Password: "secret1", ConfirmPassword: "secret2"}); !errors.As(err, &inputErr) {
		t.Fatalf("mismatch err = %v", err)
	}
	if _, err := f.app.CreateFanclub(ctx, FanclubForm{Name: "x"}); !errors.Is(err, ErrLoginRequired) {
		t.Fatalf("anonymous create err = %v", err)
	}
	if f.app.Page() != PageAuth || f.view.authMode != AuthSignup {
		t.Fatalf("anonymous create should prompt signup, page=%s mode=%s", f.app.Page(), f.view.authMode)
	}

	f.signup(t, "owner@example.com")
	if _, err := f.app.CreateFanclub(ctx, FanclubForm{Name: "  "}); !errors.As(err, &inputErr) {
		t.Fatalf("nameless create err = %v", err)
	}
	if _, err := f.app.CreateFanclub(ctx, FanclubForm{Name: "x", MonthlyFee: -1}); !errors.As(err, &inputErr) {
		t.Fatalf("negative fee err = %v", err)
	}
	if err := f.app.ChangePassword(ctx, PasswordForm{Current: "secret123", New: "abcdef", Confirm: "abcdeg"}); !errors.As(err, &inputErr) {
		t.Fatalf("password mismatch err = %v", err)
	}
	if f.gw.Calls() != 0 {
		t.Fatalf("validation failures reached the gateway %d times", f.gw.Calls())
	}
}

func TestLoginFailureKeepsMessage(t *testing.T) {
	f := newFixture(t, nil)
	err := f.app.Login(context.Background(), "creator@fanclub.com", "wrong")
	if err == nil {
		t.Fatal("expected login failure")
	}
	if n := f.notes.last(); n.kind != NoticeError || n.msg == msgSessionExpired {
		t.Fatalf("notice = %+v", n)
	}
	f.login(t, "creator@fanclub.com", "creator123")
	if f.view.user == nil || f.view.user.ID != "demo-user-1" {
		t.Fatalf("auth state = %+v", f.view.user)
	}
}

func TestCreateJoinLeave(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	owner := f.signup(t, "owner@example.com")

	club, err := f.app.CreateFanclub(ctx, FanclubForm{Name: "Test", MonthlyFee: 500})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if club.OwnerID != owner.ID || club.MemberCount != 1 {
		t.Fatalf("club = %+v", club)
	}
	if f.app.Page() != PageFanclubDetail || !f.view.detail.IsOwner || f.app.Hash() != "fanclub/"+club.ID {
		t.Fatalf("after create: page=%s detail=%+v", f.app.Page(), f.view.detail)
	}
	if err := f.app.ShowMyPage(ctx); err != nil {
		t.Fatalf("my page: %v", err)
	}
	if err := f.app.SelectTab(ctx, TabProfile, "joined"); err != nil {
		t.Fatalf("joined tab: %v", err)
	}
	if joined := f.view.fanclubs[ContainerJoined]; len(joined) != 1 || joined[0].ID != club.ID {
		t.Fatalf("joined = %+v", joined)
	}

	if err := f.app.Logout(ctx); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if f.view.user != nil || f.sess.LoggedIn() {
		t.Fatal("logout left a session")
	}
	if err := f.app.ShowFanclub(ctx, club.ID); err != nil {
		t.Fatalf("show: %v", err)
	}
	if err := f.app.Join(ctx); !errors.Is(err, ErrLoginRequired) {
		t.Fatalf("anonymous join err = %v", err)
	}

	f.signup(t, "fan@example.com")
	if err := f.app.ShowFanclub(ctx, club.ID); err != nil {
		t.Fatalf("show: %v", err)
	}
	if err := f.app.Join(ctx); err != nil {
		t.Fatalf("join: %v", err)
	}
	if f.view.detail.Fanclub.MemberCount != 2 || !f.view.detail.Membership.IsMember {
		t.Fatalf("after join detail = %+v", f.view.detail)
	}
	if err := f.app.Join(ctx); err == nil {
		t.Fatal("duplicate join succeeded")
	}

	f.confirm.answer = false
	if err := f.app.Leave(ctx); err != nil {
		t.Fatalf("cancelled leave: %v", err)
	}
	if f.view.detail.Fanclub.MemberCount != 2 {
		t.Fatal("cancelled leave changed the count")
	}
	f.confirm.answer = true
	if err := f.app.Leave(ctx); err != nil {
		t.Fatalf("leave: %v", err)
	}
	if f.view.detail.Fanclub.MemberCount != 1 || f.view.detail.Membership.IsMember {
		t.Fatalf("after leave detail = %+v", f.view.detail)
	}
}

func TestLeaveClampsDisplayedCount(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	f.signup(t, "fan@example.com")
	if err := f.app.ShowFanclub(ctx, memory.DemoFanclubID); err != nil {
		t.Fatalf("show: %v", err)
	}
	if err := f.app.Join(ctx); err != nil {
		t.Fatalf("join: %v", err)
	}
	club, _ := f.sess.Fanclub()
	club.MemberCount = 0
	if err := f.sess.SetFanclub(club); err != nil {
		t.Fatalf("set fanclub: %v", err)
	}
	if err := f.app.Leave(ctx); err != nil {
		t.Fatalf("leave: %v", err)
	}
	if f.view.detail.Fanclub.MemberCount != 0 {
		t.Fatalf("member count = %d, want 0", f.view.detail.Fanclub.MemberCount)
	}
}

func TestChatFlow(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	owner := f.signup(t, "owner@example.com")
	club, err := f.app.CreateFanclub(ctx, FanclubForm{Name: "Chat"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := f.app.SelectTab(ctx, TabDetail, "chat"); err != nil {
		t.Fatalf("chat tab: %v", err)
	}
	seeded := f.view.chat.Messages
	if len(seeded) != 2 || !seeded[0].IsSystem() || seeded[1].UserID != owner.ID {
		t.Fatalf("seeded chat = %+v", seeded)
	}
	if f.view.chat.Deletable[seeded[0].ID] || !f.view.chat.Deletable[seeded[1].ID] {
		t.Fatalf("owner deletable = %+v", f.view.chat.Deletable)
	}
	if err := f.app.SelectTab(ctx, TabDetail, "chat"); err != nil {
		t.Fatalf("chat tab again: %v", err)
	}
	if again := f.view.chat.Messages; len(again) != 2 || again[0].ID != seeded[0].ID {
		t.Fatalf("reloaded chat = %+v", again)
	}

	var cached []models.ChatMessage
	if ok, err := f.kv.Decode(localstore.ChatKey(club.ID), &cached); !ok || err != nil || len(cached) != 2 {
		t.Fatalf("chat cache = %v, %v, %d", ok, err, len(cached))
	}

	f.signup(t, "fan@example.com")
	if err := f.app.ShowFanclub(ctx, club.ID); err != nil {
		t.Fatalf("show: %v", err)
	}
	if err := f.app.SelectTab(ctx, TabDetail, "chat"); err != nil {
		t.Fatalf("chat tab: %v", err)
	}
	if f.view.chat.InputVisible {
		t.Fatal("chat input shown to a non-member")
	}
	if err := f.app.Join(ctx); err != nil {
		t.Fatalf("join: %v", err)
	}
	if err := f.app.SelectTab(ctx, TabDetail, "chat"); err != nil {
		t.Fatalf("chat tab: %v", err)
	}
	if !f.view.chat.InputVisible {
		t.Fatal("chat input hidden from a member")
	}

	calls := f.gw.Calls()
	var inputErr *InputError
	if err := f.app.SendChat(ctx, "   "); !errors.As(err, &inputErr) {
		t.Fatalf("blank send err = %v", err)
	}
	if err := f.app.SendChat(ctx, strings.Repeat("あ", fanclub.MaxChatMessageLength+1)); !errors.As(err, &inputErr) {
		t.Fatalf("long send err = %v", err)
	}
	if err := f.app.DeleteChat(ctx, seeded[0].ID); !errors.As(err, &inputErr) {
		t.Fatalf("delete system err = %v", err)
	}
	if err := f.app.DeleteChat(ctx, seeded[1].ID); !errors.As(err, &inputErr) {
		t.Fatalf("delete owner's message as fan err = %v", err)
	}
	if f.gw.Calls() != calls {
		t.Fatal("rejected chat actions reached the gateway")
	}

	draws := f.view.chatDraws
	if err := f.app.SendChat(ctx, "hello"); err != nil {
		t.Fatalf("send: %v", err)
	}
	msgs := f.view.chat.Messages
	if len(msgs) != 3 || msgs[2].Message != "hello" || f.view.chatDraws != draws+1 {
		t.Fatalf("after send chat = %+v draws=%d", msgs, f.view.chatDraws)
	}
	mine := msgs[2]
	if !f.view.chat.Deletable[mine.ID] {
		t.Fatal("own message not deletable")
	}

	f.confirm.answer = false
	if err := f.app.DeleteChat(ctx, mine.ID); err != nil {
		t.Fatalf("cancelled delete: %v", err)
	}
	if len(f.view.chat.Messages) != 3 {
		t.Fatal("cancelled delete removed the message")
	}
	f.confirm.answer = true
	if err := f.app.DeleteChat(ctx, mine.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if len(f.view.chat.Messages) != 2 {
		t.Fatalf("after delete chat = %+v", f.view.chat.Messages)
	}
}

type flakyChat struct {
	gateway.Gateway
	mu   sync.Mutex
	down bool
}

func (g *flakyChat) ChatMessages(ctx context.Context, id, lastID string) ([]models.ChatMessage, error) {
	g.mu.Lock()
	down := g.down
	g.mu.Unlock()
	if down {
		return nil, errors.New("dial tcp 127.0.0.1:3000: connect: connection refused")
	}
	return g.Gateway.ChatMessages(ctx, id, lastID)
}

func TestChatFallsBackToCache(t *testing.T) {
	ctx := context.Background()
	var flaky *flakyChat
	f := newFixture(t, func(g gateway.Gateway) gateway.Gateway {
		flaky = &flakyChat{Gateway: g}
		return flaky
	})
	f.login(t, "creator@fanclub.com", "creator123")
	if err := f.app.ShowFanclub(ctx, memory.DemoFanclubID); err != nil {
		t.Fatalf("show: %v", err)
	}
	if err := f.app.SelectTab(ctx, TabDetail, "chat"); err != nil {
		t.Fatalf("chat tab: %v", err)
	}
	online := f.view.chat.Messages

	flaky.mu.Lock()
	flaky.down = true
	flaky.mu.Unlock()
	if err := f.app.SelectTab(ctx, TabDetail, "chat"); err != nil {
		t.Fatalf("offline chat tab: %v", err)
	}
	if !f.view.chat.Offline || f.view.chat.InputVisible || len(f.view.chat.Messages) != len(online) {
		t.Fatalf("offline chat = %+v", f.view.chat)
	}
	if !f.notes.has(NoticeWarning, msgChatOffline) {
		t.Fatal("no offline notice")
	}
}

func TestUnauthorizedClearsSession(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	if err := f.sess.SignIn(dto.LoginResponse{Token: "mock_token_forged", User: models.User{ID: "demo-user-1"}}); err != nil {
		t.Fatalf("sign in: %v", err)
	}
	err := f.app.ShowMyPage(ctx)
	if !errors.Is(err, gateway.ErrUnauthorized) {
		t.Fatalf("err = %v", err)
	}
	if f.sess.LoggedIn() {
		t.Fatal("session survived a 401")
	}
	if _, ok := f.kv.Get(localstore.KeyAuthToken); ok {
		t.Fatal("token left in storage")
	}
	if f.view.user != nil {
		t.Fatal("view still logged in")
	}
	if n := f.notes.last(); n.msg != msgSessionExpired {
		t.Fatalf("notice = %+v", n)
	}
}

func TestStartReconcilesStoredSession(t *testing.T) {
	kv := localstore.NewMemory()
	store, err := memory.New(kv)
	if err != nil {
		t.Fatalf("memory store: %v", err)
	}
	svc := fanclub.NewService(store, fanclub.WithHashCost(bcrypt.MinCost))
	sess := session.New(kv)
	gw := gateway.NewLocal(svc, kv, sess, nil)
	if err := sess.SignIn(dto.LoginResponse{Token: "mock_token_stale", User: models.User{ID: "ghost"}}); err != nil {
		t.Fatalf("sign in: %v", err)
	}

	view := newFakeView()
	a := New(Deps{Gateway: gw, Session: session.New(kv), Store: kv, View: view, Notifier: &fakeNotifier{}, Confirmer: &fakeConfirmer{}})
	a.Start(context.Background())
	if view.user != nil {
		t.Fatalf("stale token left UI logged in as %+v", view.user)
	}
	if _, ok := kv.Get(localstore.KeyAuthToken); ok {
		t.Fatal("stale token not cleared")
	}

	auth, err := gw.Login(context.Background(), "creator@fanclub.com", "creator123")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if err := sess.SignIn(auth); err != nil {
		t.Fatalf("sign in: %v", err)
	}
	restored := session.New(kv)
	a = New(Deps{Gateway: gateway.NewLocal(svc, kv, restored, nil), Session: restored, Store: kv, View: view, Notifier: &fakeNotifier{}, Confirmer: &fakeConfirmer{}})
	a.Start(context.Background())
	if view.user == nil || view.user.ID != "demo-user-1" {
		t.Fatalf("restored UI user = %+v", view.user)
	}
}

func TestPostsAndLikes(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	f.signup(t, "owner@example.com")
	if _, err := f.app.CreateFanclub(ctx, FanclubForm{Name: "Posts"}); err != nil {
		t.Fatalf("create: %v", err)
	}
	var inputErr *InputError
	if _, err := f.app.CreatePost(ctx, PostForm{Body: "x"}); !errors.As(err, &inputErr) {
		t.Fatalf("untitled post err = %v", err)
	}
	post, err := f.app.CreatePost(ctx, PostForm{Title: "Hello", Body: "Some **bold** news"})
	if err != nil {
		t.Fatalf("create post: %v", err)
	}
	if !strings.Contains(post.Content, "<strong>bold</strong>") || post.Visibility != models.VisibilityPublic {
		t.Fatalf("post = %+v", post)
	}
	if posts := f.view.posts[ContainerPosts]; len(posts) != 1 || posts[0].ID != post.ID {
		t.Fatalf("rendered posts = %+v", posts)
	}

	liked, err := f.app.Like(ctx, post.ID, true)
	if err != nil || liked.LikeCount != 1 {
		t.Fatalf("like = %+v, %v", liked, err)
	}
	if posts := f.view.posts[ContainerPosts]; posts[0].LikeCount != 1 || !posts[0].IsLiked {
		t.Fatalf("rendered after like = %+v", posts[0])
	}
	if _, err := f.app.Like(ctx, post.ID, false); err != nil {
		t.Fatalf("unlike: %v", err)
	}
	if posts := f.view.posts[ContainerPosts]; posts[0].LikeCount != 0 {
		t.Fatalf("rendered after unlike = %+v", posts[0])
	}

	if err := f.app.ShowAdmin(ctx); err != nil {
		t.Fatalf("admin: %v", err)
	}
	if f.app.Page() != PageAdmin || len(f.view.posts[ContainerAdminPosts]) != 1 {
		t.Fatalf("admin page = %s posts=%d", f.app.Page(), len(f.view.posts[ContainerAdminPosts]))
	}
}

func TestAdminIsOwnerOnly(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	f.signup(t, "fan@example.com")
	if err := f.app.ShowFanclub(ctx, memory.DemoFanclubID); err != nil {
		t.Fatalf("show: %v", err)
	}
	var inputErr *InputError
	if err := f.app.ShowAdmin(ctx); !errors.As(err, &inputErr) {
		t.Fatalf("admin err = %v", err)
	}
	if f.app.Page() != PageFanclubDetail {
		t.Fatalf("page = %s", f.app.Page())
	}
}

func TestUploadImage(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	f.signup(t, "fan@example.com")
	var inputErr *InputError
	if _, err := f.app.UploadImage(ctx, "notes.txt", strings.NewReader("x")); !errors.As(err, &inputErr) {
		t.Fatalf("text upload err = %v", err)
	}
	url, err := f.app.UploadImage(ctx, "/tmp/cover.PNG", strings.NewReader("png"))
	if err != nil || !strings.Contains(url, "cover.PNG") {
		t.Fatalf("upload = %q, %v", url, err)
	}
}

// gatedGateway blocks loads of one fan club until released.
type gatedGateway struct {
	gateway.Gateway
	slowID  string
	once    sync.Once
	entered chan struct{}
	release chan struct{}
}

func (g *gatedGateway) Fanclub(ctx context.Context, id string) (models.Fanclub, error) {
	if id == g.slowID {
		g.once.Do(func() { close(g.entered) })
		<-g.release
	}
	return g.Gateway.Fanclub(ctx, id)
}

func TestStaleNavigationIsDiscarded(t *testing.T) {
	ctx := context.Background()
	gated := &gatedGateway{entered: make(chan struct{}), release: make(chan struct{})}
	f := newFixture(t, func(g gateway.Gateway) gateway.Gateway {
		gated.Gateway = g
		return gated
	})
	f.signup(t, "owner@example.com")
	fresh, err := f.app.CreateFanclub(ctx, FanclubForm{Name: "Fresh"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	gated.slowID = memory.DemoFanclubID

	errc := make(chan error, 1)
	go func() { errc <- f.app.ShowFanclub(ctx, memory.DemoFanclubID) }()
	<-gated.entered
	if !f.app.Loading() {
		t.Fatal("loading indicator off while a load is pending")
	}
	if err := f.app.ShowFanclub(ctx, fresh.ID); err != nil {
		t.Fatalf("show fresh: %v", err)
	}
	if !f.app.Loading() {
		t.Fatal("finishing one load hid the indicator while another is pending")
	}
	close(gated.release)
	if err := <-errc; err != nil {
		t.Fatalf("stale show: %v", err)
	}

	if f.view.detail.Fanclub.ID != fresh.ID {
		t.Fatalf("stale load overwrote the page with %s", f.view.detail.Fanclub.ID)
	}
	if club, _ := f.sess.Fanclub(); club.ID != fresh.ID {
		t.Fatalf("current fan club = %s", club.ID)
	}
	if f.app.Hash() != "fanclub/"+fresh.ID {
		t.Fatalf("hash = %q", f.app.Hash())
	}
	if f.app.Loading() {
		t.Fatal("loading indicator stuck on")
	}
}
