package app

import (
	"context"
	"slices"

	"github.com/hongminglow/fanclub/internal/models"
	"github.com/hongminglow/fanclub/internal/models/dto"
)

// featuredLimit caps the fan clubs shown on the top page.
const featuredLimit = 6

// TabGroup identifies a set of tabs within one page.
type TabGroup string

const (
	TabDetail  TabGroup = "fanclub"
	TabAdmin   TabGroup = "admin"
	TabProfile TabGroup = "profile"
)

// Tabs lists the tabs of each group; the first one is the default.
var Tabs = map[TabGroup][]string{
	TabDetail:  {"posts", "chat", "members", "about"},
	TabAdmin:   {"posts", "settings"},
	TabProfile: {"profile", "joined", "password"},
}

// ShowTop shows the top page with the featured fan clubs.
func (a *App) ShowTop(ctx context.Context) error {
	epoch := a.navigate(PageTop, "")
	done := a.loading.Begin()
	defer done()

	clubs, err := a.gw.Fanclubs(ctx, "")
	if !a.nav.Current(epoch) {
		return nil
	}
	if err != nil {
		return a.fail("load featured fan clubs", msgLoadFailed, err)
	}
	if len(clubs) > featuredLimit {
		clubs = clubs[:featuredLimit]
	}
	a.view.RenderFanclubs(ContainerFeatured, clubs)
	return nil
}

// Search shows the search page with the fan clubs matching query; an empty
// query lists them all.
func (a *App) Search(ctx context.Context, query string) error {
	epoch := a.navigate(PageSearch, "")
	done := a.loading.Begin()
	defer done()

	clubs, err := a.gw.Fanclubs(ctx, query)
	if !a.nav.Current(epoch) {
		return nil
	}
	if err != nil {
		return a.fail("search fan clubs", msgSearchFailed, err)
	}
	a.view.RenderFanclubs(ContainerSearch, clubs)
	return nil
}

// ShowAuth shows the login or signup form.
func (a *App) ShowAuth(mode AuthMode) {
	a.navigate(PageAuth, string(mode))
	a.view.ShowAuth(mode)
}

// ShowFanclub loads a fan club, shows its detail page and opens the posts tab.
func (a *App) ShowFanclub(ctx context.Context, id string) error {
	epoch := a.navigate(PageFanclubDetail, "fanclub/"+id)
	done := a.loading.Begin()
	defer done()

	club, err := a.gw.Fanclub(ctx, id)
	if !a.nav.Current(epoch) {
		return nil
	}
	if err != nil {
		return a.fail("load fan club "+id, msgLoadFanclubFailed, err)
	}
	var membership dto.MembershipResponse
	if a.sess.LoggedIn() {
		membership, err = a.gw.Membership(ctx, id)
		if !a.nav.Current(epoch) {
			return nil
		}
		if err != nil {
			return a.fail("load membership of "+id, msgLoadFanclubFailed, err)
		}
	}
	if err := a.sess.SetFanclub(club); err != nil {
		a.logger.Printf("store current fan club: %v", err)
	}
	a.mu.Lock()
	a.membership = membership
	a.mu.Unlock()
	a.renderFanclub(club)
	return a.selectTab(ctx, epoch, TabDetail, Tabs[TabDetail][0])
}

// ShowMyPage shows the profile page of the signed-in user.
func (a *App) ShowMyPage(ctx context.Context) error {
	if !a.sess.LoggedIn() {
		err := a.needLogin(msgProfileNeedsLogin, AuthLogin)
		a.setHash("")
		return err
	}
	epoch := a.navigate(PageMyPage, "profile")
	return a.selectTab(ctx, epoch, TabProfile, Tabs[TabProfile][0])
}

// ShowCreateFanclub shows the creation form.
func (a *App) ShowCreateFanclub() error {
	if !a.sess.LoggedIn() {
		return a.needLogin(msgCreateNeedsLogin, AuthSignup)
	}
	a.navigate(PageCreateClub, "")
	return nil
}

// ShowAdmin shows the admin panel of the current fan club to its owner.
func (a *App) ShowAdmin(ctx context.Context) error {
	club, err := a.currentFanclub()
	if err != nil {
		return err
	}
	if !a.isOwner(club) {
		return a.reject(msgAdminOnly)
	}
	epoch := a.navigate(PageAdmin, "")
	return a.selectTab(ctx, epoch, TabAdmin, Tabs[TabAdmin][0])
}

// SelectTab activates a tab of the visible page and loads its data.
func (a *App) SelectTab(ctx context.Context, group TabGroup, tab string) error {
	return a.selectTab(ctx, a.nav.Latest(), group, tab)
}

func (a *App) selectTab(ctx context.Context, navEpoch Epoch, group TabGroup, tab string) error {
	if !slices.Contains(Tabs[group], tab) {
		return a.reject(msgUnknownTab)
	}
	tabEpoch := a.tab.Next()
	a.mu.Lock()
	a.tabs[group] = tab
	a.mu.Unlock()
	a.view.ShowTab(group, tab)

	fresh := func() bool { return a.nav.Current(navEpoch) && a.tab.Current(tabEpoch) }
	switch group {
	case TabDetail:
		switch tab {
		case "posts":
			return a.loadPosts(ctx, ContainerPosts, fresh)
		case "chat":
			return a.loadChat(ctx, fresh)
		case "members":
			return a.loadMembers(ctx, fresh)
		case "about":
			club, err := a.currentFanclub()
			if err != nil {
				return err
			}
			a.renderFanclub(club)
		}
	case TabAdmin:
		switch tab {
		case "posts":
			return a.loadPosts(ctx, ContainerAdminPosts, fresh)
		case "settings":
			club, err := a.currentFanclub()
			if err != nil {
				return err
			}
			a.renderFanclub(club)
		}
	case TabProfile:
		switch tab {
		case "profile":
			return a.loadProfile(ctx, fresh)
		case "joined":
			return a.loadJoined(ctx, fresh)
		}
	}
	return nil
}

func (a *App) renderFanclub(club models.Fanclub) {
	a.mu.Lock()
	membership := a.membership
	a.mu.Unlock()
	a.view.RenderFanclub(FanclubView{
		Fanclub:    club,
		Membership: membership,
		IsOwner:    a.isOwner(club),
		LoggedIn:   a.sess.LoggedIn(),
	})
}

func (a *App) loadPosts(ctx context.Context, c Container, fresh func() bool) error {
	club, err := a.currentFanclub()
	if err != nil {
		return err
	}
	done := a.loading.Begin()
	defer done()

	posts, err := a.gw.Posts(ctx, club.ID)
	if !fresh() {
		return nil
	}
	if err != nil {
		return a.fail("load posts of "+club.ID, msgLoadFailed, err)
	}
	a.mu.Lock()
	a.posts = posts
	a.postsContainer = c
	a.mu.Unlock()
	a.view.RenderPosts(c, posts)
	return nil
}

func (a *App) loadMembers(ctx context.Context, fresh func() bool) error {
	club, err := a.currentFanclub()
	if err != nil {
		return err
	}
	done := a.loading.Begin()
	defer done()

	members, err := a.gw.Members(ctx, club.ID)
	if !fresh() {
		return nil
	}
	if err != nil {
		return a.fail("load members of "+club.ID, msgLoadFailed, err)
	}
	a.view.RenderMembers(ContainerMembers, members)
	return nil
}

func (a *App) loadProfile(ctx context.Context, fresh func() bool) error {
	done := a.loading.Begin()
	defer done()

	user, err := a.gw.CurrentUser(ctx)
	if !fresh() {
		return nil
	}
	if err != nil {
		return a.fail("load profile", msgLoadFailed, err)
	}
	if err := a.sess.SetUser(user); err != nil {
		a.logger.Printf("store current user: %v", err)
	}
	a.view.RenderProfile(user)
	return nil
}

func (a *App) loadJoined(ctx context.Context, fresh func() bool) error {
	done := a.loading.Begin()
	defer done()

	clubs, err := a.gw.JoinedFanclubs(ctx)
	if !fresh() {
		return nil
	}
	if err != nil {
		return a.fail("load joined fan clubs", msgLoadFailed, err)
	}
	a.view.RenderFanclubs(ContainerJoined, clubs)
	return nil
}

// reloadFresh is the freshness check for reloads triggered by an action on
// the current page: a later navigation or tab switch still wins.
func (a *App) reloadFresh() func() bool {
	navEpoch := a.nav.Latest()
	tabEpoch := a.tab.Next()
	return func() bool { return a.nav.Current(navEpoch) && a.tab.Current(tabEpoch) }
}
