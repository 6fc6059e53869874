package app

import (
	"github.com/hongminglow/fanclub/internal/models"
	"github.com/hongminglow/fanclub/internal/models/dto"
)

// Page is one of the mutually exclusive page sections.
type Page string

const (
	PageTop           Page = "top"
	PageSearch        Page = "search"
	PageFanclubDetail Page = "fanclubDetail"
	PageMyPage        Page = "myPage"
	PageAuth          Page = "auth"
	PageCreateClub    Page = "createClub"
	PageAdmin         Page = "admin"
)

// AuthMode selects the form shown on PageAuth.
type AuthMode string

const (
	AuthLogin  AuthMode = "login"
	AuthSignup AuthMode = "signup"
)

// Container names a region of a page that is rendered as a whole.
type Container string

const (
	ContainerFeatured   Container = "featuredFanclubs"
	ContainerSearch     Container = "searchResults"
	ContainerJoined     Container = "joinedFanclubs"
	ContainerPosts      Container = "fanclubPosts"
	ContainerAdminPosts Container = "adminPosts"
	ContainerChat       Container = "chatMessages"
	ContainerMembers    Container = "membersList"
)

// NoticeKind is the severity of a user notification.
type NoticeKind string

const (
	NoticeSuccess NoticeKind = "success"
	NoticeError   NoticeKind = "error"
	NoticeWarning NoticeKind = "warning"
	NoticeInfo    NoticeKind = "info"
)

// FanclubView is what the detail header needs to draw itself.
type FanclubView struct {
	Fanclub    models.Fanclub
	Membership dto.MembershipResponse
	IsOwner    bool
	LoggedIn   bool
}

// ChatView is the whole chat panel.
type ChatView struct {
	Messages []models.ChatMessage
	// Deletable holds the ids of messages the viewer may delete.
	Deletable    map[string]bool
	InputVisible bool
	// Offline is set when Messages come from the local cache.
	Offline bool
}

// View draws pages. Every Render call replaces the named container.
type View interface {
	ShowPage(page Page)
	ShowAuth(mode AuthMode)
	ShowTab(group TabGroup, tab string)
	SetAuthState(user *models.User)
	SetLoading(active bool)

	RenderFanclubs(c Container, clubs []models.Fanclub)
	RenderFanclub(v FanclubView)
	RenderPosts(c Container, posts []models.Post)
	RenderChat(c Container, v ChatView)
	RenderMembers(c Container, members []models.Membership)
	RenderProfile(user models.User)
}

// Notifier shows transient messages.
type Notifier interface {
	Notify(kind NoticeKind, message string)
}

// Confirmer asks a yes/no question before destructive actions.
type Confirmer interface {
	Confirm(prompt string) bool
}
