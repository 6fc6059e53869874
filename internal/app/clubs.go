package app

import (
	"context"
	"strings"

	"github.com/hongminglow/fanclub/internal/models"
	"github.com/hongminglow/fanclub/internal/models/dto"
)

// FanclubForm is the create fan club form.
type FanclubForm struct {
	Name          string
	Description   string
	Purpose       string
	MonthlyFee    int
	CoverImageURL string
}

// CreateFanclub creates a fan club and opens its page.
func (a *App) CreateFanclub(ctx context.Context, f FanclubForm) (models.Fanclub, error) {
	if !a.sess.LoggedIn() {
		return models.Fanclub{}, a.needLogin(msgCreateNeedsLogin, AuthSignup)
	}
	f.Name = strings.TrimSpace(f.Name)
	if f.Name == "" {
		return models.Fanclub{}, a.reject(msgRequiredFields)
	}
	if f.MonthlyFee < 0 {
		return models.Fanclub{}, a.reject(msgInvalidFee)
	}
	done := a.loading.Begin()
	defer done()

	club, err := a.gw.CreateFanclub(ctx, dto.CreateFanclubRequest{
		Name:          f.Name,
		Description:   strings.TrimSpace(f.Description),
		Purpose:       strings.TrimSpace(f.Purpose),
		MonthlyFee:    f.MonthlyFee,
		CoverImageURL: strings.TrimSpace(f.CoverImageURL),
	})
	if err != nil {
		return models.Fanclub{}, a.fail("create fan club", msgCreateFailed, err)
	}
	a.notifier.Notify(NoticeSuccess, msgCreateOK)
	return club, a.ShowFanclub(ctx, club.ID)
}

// Join joins the current fan club. The member count shown is bumped locally
// instead of being fetched again.
func (a *App) Join(ctx context.Context) error {
	if !a.sess.LoggedIn() {
		return a.needLogin(msgJoinNeedsLogin, AuthLogin)
	}
	club, err := a.currentFanclub()
	if err != nil {
		return err
	}
	done := a.loading.Begin()
	defer done()

	if _, err := a.gw.JoinFanclub(ctx, club.ID); err != nil {
		return a.fail("join fan club "+club.ID, msgJoinFailed, err)
	}
	club.MemberCount++
	a.afterMembershipChange(club, dto.MembershipResponse{IsMember: true, Role: models.RoleMember})
	a.notifier.Notify(NoticeSuccess, msgJoinOK)
	return nil
}

// Leave leaves the current fan club after confirmation. The member count
// shown is lowered locally and never drops below zero.
func (a *App) Leave(ctx context.Context) error {
	if !a.sess.LoggedIn() {
		return a.needLogin(msgJoinNeedsLogin, AuthLogin)
	}
	club, err := a.currentFanclub()
	if err != nil {
		return err
	}
	if !a.confirmer.Confirm(msgLeaveConfirm) {
		return nil
	}
	done := a.loading.Begin()
	defer done()

	if _, err := a.gw.LeaveFanclub(ctx, club.ID); err != nil {
		return a.fail("leave fan club "+club.ID, msgLeaveFailed, err)
	}
	club.MemberCount = max(0, club.MemberCount-1)
	a.afterMembershipChange(club, dto.MembershipResponse{})
	a.notifier.Notify(NoticeSuccess, msgLeaveOK)
	return nil
}

func (a *App) afterMembershipChange(club models.Fanclub, m dto.MembershipResponse) {
	if err := a.sess.SetFanclub(club); err != nil {
		a.logger.Printf("store current fan club: %v", err)
	}
	a.mu.Lock()
	a.membership = m
	a.mu.Unlock()
	a.renderFanclub(club)
}

// Membership returns the viewer's membership of the current fan club as
// last loaded or changed.
func (a *App) Membership() dto.MembershipResponse {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.membership
}
