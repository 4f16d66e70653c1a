package service

import (
	"context"
	"crypto/subtle"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"kidsvids/internal/avatars"
	"kidsvids/internal/database"
	"kidsvids/internal/live"
	"kidsvids/internal/models"
	"kidsvids/internal/repository"
	"kidsvids/internal/session"
	"kidsvids/internal/validation"
)

// ProfileInput is the add/edit kid profile form
type ProfileInput struct {
	Name          string `json:"name"`
	AgeCategoryID int64  `json:"age_category_id"`
	Avatar        string `json:"avatar"`
}

// Account is the parent area summary
type Account struct {
	ParentEmail    string `json:"parent_email"`
	ParentName     string `json:"parent_name"`
	CurrentKidName string `json:"current_kid_name"`
}

// ProfileService manages a parent's kid profiles and the active selection
type ProfileService struct {
	db      *database.DB
	parents *repository.ParentRepository
	kids    *repository.KidRepository
	log     *zap.Logger
}

// NewProfileService creates a new profile service
func NewProfileService(db *database.DB, log *zap.Logger) *ProfileService {
	return &ProfileService{
		db:      db,
		parents: repository.NewParentRepository(db),
		kids:    repository.NewKidRepository(db),
		log:     log.With(zap.String("component", "profiles")),
	}
}

func validateProfile(in *ProfileInput) error {
	in.Name = strings.TrimSpace(in.Name)
	in.Avatar = strings.TrimSpace(in.Avatar)

	errs := validation.Errors{}
	errs.Field("name", validation.ValidateName(in.Name))
	errs.Field("age_category_id", validation.ValidateAgeCategory(in.AgeCategoryID))
	errs.Check(in.Avatar == "" || avatars.Valid(in.Avatar), "avatar", "Choose one of the avatars.")
	return errs.Err()
}

// AddProfile creates a kid profile under parentID
func (s *ProfileService) AddProfile(ctx context.Context, parentID int64, in ProfileInput) (*models.Kid, error) {
	if err := validateProfile(&in); err != nil {
		return nil, err
	}
	if err := s.requireParent(ctx, parentID); err != nil {
		return nil, err
	}
	if in.Avatar == "" {
		avatar, err := avatars.Random()
		if err != nil {
			return nil, fmt.Errorf("failed to pick avatar: %w", err)
		}
		in.Avatar = avatar
	}

	kid, err := s.kids.CreateKid(ctx, parentID, in.Name, in.AgeCategoryID, in.Avatar)
	if err != nil {
		return nil, err
	}
	s.log.Info("profile added", zap.Int64("parent_id", parentID), zap.Int64("kid_id", kid.ID))
	return kid, nil
}

// ListProfiles returns the parent's kids in creation order
func (s *ProfileService) ListProfiles(ctx context.Context, parentID int64) ([]models.Kid, error) {
	return s.kids.GetParentKids(ctx, parentID)
}

// WatchProfiles re-evaluates ListProfiles whenever kids change
func (s *ProfileService) WatchProfiles(ctx context.Context, parentID int64) *live.Subscription[[]models.Kid] {
	return live.Watch(ctx, s.db.Changes(), func(ctx context.Context) ([]models.Kid, error) {
		return s.ListProfiles(ctx, parentID)
	}, database.TableKids)
}

// OwnedKid returns kidID if it belongs to parentID, else ErrKidNotFound
func (s *ProfileService) OwnedKid(ctx context.Context, parentID, kidID int64) (*models.Kid, error) {
	kid, err := s.kids.GetKidByID(ctx, kidID)
	if err != nil {
		return nil, err
	}
	if kid == nil || kid.ParentID != parentID {
		return nil, ErrKidNotFound
	}
	return kid, nil
}

// UpdateProfile edits one of the parent's kid profiles
func (s *ProfileService) UpdateProfile(ctx context.Context, parentID, kidID int64, in ProfileInput) (*models.Kid, error) {
	if err := validateProfile(&in); err != nil {
		return nil, err
	}
	kid, err := s.OwnedKid(ctx, parentID, kidID)
	if err != nil {
		return nil, err
	}
	if in.Avatar == "" {
		in.Avatar = kid.Avatar
	}

	if err := s.kids.UpdateKid(ctx, kidID, in.Name, in.AgeCategoryID, in.Avatar); err != nil {
		return nil, err
	}
	kid.Name = in.Name
	kid.AgeCategoryID = in.AgeCategoryID
	kid.Avatar = in.Avatar
	return kid, nil
}

// DeleteProfile removes one of the parent's kid profiles with its favorites,
// blocks and history.
func (s *ProfileService) DeleteProfile(ctx context.Context, parentID, kidID int64) error {
	if _, err := s.OwnedKid(ctx, parentID, kidID); err != nil {
		return err
	}
	if err := s.kids.DeleteKid(ctx, kidID); err != nil {
		return err
	}
	s.log.Info("profile deleted", zap.Int64("parent_id", parentID), zap.Int64("kid_id", kidID))
	return nil
}

// SelectProfile makes kidID the session's active profile. The kid must belong
// to the logged in parent.
func (s *ProfileService) SelectProfile(ctx context.Context, sess *session.Session, kidID int64) (*models.Kid, error) {
	parentID, ok := sess.ParentID()
	if !ok {
		return nil, ErrNotLoggedIn
	}
	kid, err := s.OwnedKid(ctx, parentID, kidID)
	if err != nil {
		return nil, err
	}
	if err := sess.SelectProfile(ctx, kidID); err != nil {
		return nil, fmt.Errorf("failed to select profile: %w", err)
	}
	return kid, nil
}

// Account loads the parent's email and the selected kid's name
func (s *ProfileService) Account(ctx context.Context, state session.State) (*Account, error) {
	if state.ParentID == nil {
		return nil, ErrNotLoggedIn
	}
	parent, err := s.parents.GetParentByID(ctx, *state.ParentID)
	if err != nil {
		return nil, err
	}
	if parent == nil {
		return nil, ErrParentNotFound
	}

	account := &Account{ParentEmail: parent.Email, ParentName: parent.FullName}
	if kidID, ok := state.KidID(); ok {
		kid, err := s.kids.GetKidByID(ctx, kidID)
		if err != nil {
			return nil, err
		}
		if kid != nil {
			account.CurrentKidName = kid.Name
		} else {
			account.CurrentKidName = "No profile selected"
		}
	}
	return account, nil
}

// WatchAccount re-evaluates Account whenever parents or kids change
func (s *ProfileService) WatchAccount(ctx context.Context, state session.State) *live.Subscription[*Account] {
	return live.Watch(ctx, s.db.Changes(), func(ctx context.Context) (*Account, error) {
		return s.Account(ctx, state)
	}, database.TableParents, database.TableKids)
}

// CheckPIN reports whether pin matches the parent's PIN
func (s *ProfileService) CheckPIN(ctx context.Context, parentID int64, pin string) (bool, error) {
	parent, err := s.parents.GetParentByID(ctx, parentID)
	if err != nil {
		return false, err
	}
	if parent == nil {
		return false, ErrParentNotFound
	}
	return subtle.ConstantTimeCompare([]byte(parent.PIN), []byte(pin)) == 1, nil
}

func (s *ProfileService) requireParent(ctx context.Context, parentID int64) error {
	parent, err := s.parents.GetParentByID(ctx, parentID)
	if err != nil {
		return err
	}
	if parent == nil {
		return ErrParentNotFound
	}
	return nil
}
