package screens

import (
	"context"

	"go.uber.org/zap"

	"kidsvids/internal/live"
	"kidsvids/internal/models"
	"kidsvids/internal/service"
	"kidsvids/internal/session"
)

// Profiles is the profile selection screen of the logged in parent
type Profiles struct {
	*Live[int64, []models.Kid]
	sess     *session.Session
	profiles *service.ProfileService
}

// NewProfiles opens the profile selection screen for sess
func NewProfiles(sess *session.Session, profiles *service.ProfileService, log *zap.Logger) *Profiles {
	return &Profiles{
		Live: newLive[int64, []models.Kid](sess, loggedInParent, msgNoParent,
			func(ctx context.Context, parentID int64) *live.Subscription[[]models.Kid] {
				return profiles.WatchProfiles(ctx, parentID)
			}, log.With(zap.String("screen", "profiles"))),
		sess:     sess,
		profiles: profiles,
	}
}

// Select makes one of the parent's kids the active profile
func (p *Profiles) Select(ctx context.Context, kidID int64) (*models.Kid, error) {
	kid, err := p.profiles.SelectProfile(ctx, p.sess, kidID)
	if err != nil {
		p.fail(err)
		return nil, err
	}
	return kid, nil
}

// accountKey scopes the account screen to a parent and, optionally, a kid
type accountKey struct {
	parentID int64
	kidID    int64
	hasKid   bool
}

func accountKeyOf(s session.State) (accountKey, bool) {
	parentID, ok := loggedInParent(s)
	if !ok {
		return accountKey{}, false
	}
	kidID, hasKid := s.KidID()
	return accountKey{parentID: parentID, kidID: kidID, hasKid: hasKid}, true
}

func (k accountKey) state() session.State {
	st := session.State{ParentID: &k.parentID}
	if k.hasKid {
		st.SelectedKidID = &k.kidID
	}
	return st
}

// Account is the parent area summary screen
type Account struct {
	*Live[accountKey, *service.Account]
	sess     *session.Session
	profiles *service.ProfileService
}

// NewAccount opens the account screen for sess
func NewAccount(sess *session.Session, profiles *service.ProfileService, log *zap.Logger) *Account {
	return &Account{
		Live: newLive[accountKey, *service.Account](sess, accountKeyOf, msgNoParent,
			func(ctx context.Context, key accountKey) *live.Subscription[*service.Account] {
				return profiles.WatchAccount(ctx, key.state())
			}, log.With(zap.String("screen", "account"))),
		sess:     sess,
		profiles: profiles,
	}
}

// CheckPIN reports whether pin unlocks the parent area
func (a *Account) CheckPIN(ctx context.Context, pin string) (bool, error) {
	parentID, ok := a.sess.ParentID()
	if !ok {
		return false, service.ErrNotLoggedIn
	}
	return a.profiles.CheckPIN(ctx, parentID, pin)
}
