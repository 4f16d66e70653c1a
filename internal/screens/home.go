package screens

import (
	"context"
	"sort"

	"go.uber.org/zap"

	"kidsvids/internal/live"
	"kidsvids/internal/models"
	"kidsvids/internal/repository"
	"kidsvids/internal/service"
	"kidsvids/internal/session"
)

// HomeState is the snapshot of the home screen
type HomeState struct {
	Status             Status            `json:"status"`
	KidID              *int64            `json:"kid_id,omitempty"`
	KidName            string            `json:"kid_name"`
	Categories         []models.Category `json:"categories"`
	SelectedCategoryID *int64            `json:"selected_category_id"`
	Videos             []models.Video    `json:"videos"`
	FavoriteIDs        []int64           `json:"favorite_ids"`
	Error              string            `json:"error,omitempty"`
	Message            string            `json:"message,omitempty"`
}

// IsFavorite reports whether videoID is in the kid's favorites
func (s HomeState) IsFavorite(videoID int64) bool {
	i := sort.Search(len(s.FavoriteIDs), func(i int) bool { return s.FavoriteIDs[i] >= videoID })
	return i < len(s.FavoriteIDs) && s.FavoriteIDs[i] == videoID
}

// Home is the kid's video browser: eligible videos, category filter and
// favorite markers. Profile and filter changes are applied by a single owner
// goroutine; each one cancels the running queries before starting new ones.
type Home struct {
	*Holder[HomeState]

	sess       *session.Session
	content    *service.ContentService
	kids       *repository.KidRepository
	categories *repository.CategoryRepository
	actions    KidActions
	log        *zap.Logger

	filter   chan *int64
	switcher live.Switcher
	cancel   context.CancelFunc
	done     chan struct{}
}

// NewHome opens the home screen for sess with an initial category filter
func NewHome(sess *session.Session, content *service.ContentService, kids *repository.KidRepository, categories *repository.CategoryRepository, categoryID *int64, log *zap.Logger) *Home {
	ctx, cancel := context.WithCancel(context.Background())
	h := &Home{
		Holder:     newHolder(HomeState{Status: StatusIdle, Categories: []models.Category{}, SelectedCategoryID: copyID(categoryID)}),
		sess:       sess,
		content:    content,
		kids:       kids,
		categories: categories,
		actions:    NewKidActions(sess, content),
		log:        log.With(zap.String("screen", "home")),
		filter:     make(chan *int64),
		cancel:     cancel,
		done:       make(chan struct{}),
	}
	go h.run(ctx, copyID(categoryID))
	return h
}

// Close stops the screen and its queries
func (h *Home) Close() {
	h.cancel()
	<-h.done
}

// SelectCategory narrows the videos to one category; nil shows every category
func (h *Home) SelectCategory(categoryID *int64) {
	select {
	case h.filter <- copyID(categoryID):
	case <-h.done:
	}
}

// ToggleFavorite flips the favorite marker of a video for the selected kid
func (h *Home) ToggleFavorite(ctx context.Context, videoID int64) error {
	if _, _, err := h.actions.ToggleFavorite(ctx, videoID); err != nil {
		h.fail(err)
		return err
	}
	return nil
}

// BlockVideo hides a video from the selected kid
func (h *Home) BlockVideo(ctx context.Context, videoID int64) error {
	if _, err := h.actions.Block(ctx, videoID); err != nil {
		h.fail(err)
		return err
	}
	return nil
}

// AcknowledgeMessage clears the one-shot message
func (h *Home) AcknowledgeMessage() {
	h.update(nil, func(s *HomeState) { s.Message = "" })
}

func (h *Home) fail(err error) {
	h.log.Warn("home action failed", zap.Error(err))
	h.update(nil, func(s *HomeState) { s.Message = errorText(err) })
}

func (h *Home) run(ctx context.Context, categoryID *int64) {
	defer close(h.done)
	defer h.switcher.Stop()

	h.loadCategories(ctx)

	var kidID *int64
	started := false
	states := h.sess.Watch(ctx)

	for {
		select {
		case state, ok := <-states:
			if !ok {
				return
			}
			if started && sameID(state.SelectedKidID, kidID) {
				continue
			}
			started = true
			kidID = copyID(state.SelectedKidID)
			h.restart(ctx, kidID, categoryID)

		case next := <-h.filter:
			categoryID = next
			h.update(nil, func(s *HomeState) { s.SelectedCategoryID = copyID(next) })
			if started {
				h.restart(ctx, kidID, categoryID)
			}

		case <-ctx.Done():
			return
		}
	}
}

func (h *Home) loadCategories(ctx context.Context) {
	categories, err := h.categories.ListCategories(ctx)
	if err != nil {
		h.log.Warn("failed to load categories", zap.Error(err))
		return
	}
	h.update(nil, func(s *HomeState) { s.Categories = categories })
}

func (h *Home) restart(ctx context.Context, kidID, categoryID *int64) {
	if kidID == nil {
		h.switcher.Stop()
		h.update(nil, func(s *HomeState) {
			s.Status, s.KidID, s.KidName = StatusError, nil, ""
			s.Videos, s.FavoriteIDs, s.Error = []models.Video{}, []int64{}, msgNoProfile
		})
		return
	}

	kid, category := *kidID, copyID(categoryID)
	h.switcher.Start(ctx, func(ctx context.Context, gen uint64) {
		h.follow(ctx, gen, kid, category)
	})
}

// follow keeps the eligible videos and favorites of one kid and filter
// current until ctx is cancelled.
func (h *Home) follow(ctx context.Context, gen uint64, kidID int64, categoryID *int64) {
	current := func() bool { return h.switcher.IsCurrent(gen) }

	h.update(current, func(s *HomeState) {
		s.Status, s.KidID, s.Error = StatusLoading, &kidID, ""
		s.Videos, s.FavoriteIDs = []models.Video{}, []int64{}
	})

	kid, err := h.kids.GetKidByID(ctx, kidID)
	if ctx.Err() != nil {
		return
	}
	if err != nil || kid == nil {
		if err == nil {
			err = service.ErrKidNotFound
		}
		h.update(current, func(s *HomeState) { s.Status, s.Error = StatusError, errorText(err) })
		return
	}
	h.update(current, func(s *HomeState) { s.KidName = kid.Name })

	videos := h.content.WatchEligible(ctx, kidID, categoryID)
	defer videos.Close()
	favorites := h.content.WatchFavoriteIDs(ctx, kidID)
	defer favorites.Close()

	// Last good value and last error of each source. An error snapshot
	// carries no lists; the other source's value is kept for recovery.
	var (
		eligible            []models.Video
		ids                 []int64
		videosErr, favsErr  error
		haveVideos, haveIDs bool
	)
	publish := func() {
		h.update(current, func(s *HomeState) {
			switch {
			case videosErr != nil || favsErr != nil:
				err := videosErr
				if err == nil {
					err = favsErr
				}
				s.Status, s.Error = StatusError, errorText(err)
				s.Videos, s.FavoriteIDs = []models.Video{}, []int64{}
			case haveVideos && haveIDs:
				s.Status, s.Error = StatusReady, ""
				s.Videos, s.FavoriteIDs = eligible, ids
			}
		})
	}

	for {
		select {
		case snap, ok := <-videos.C:
			if !ok {
				return
			}
			videosErr = snap.Err
			if snap.Err == nil {
				eligible, haveVideos = snap.Value, true
			}
			publish()

		case snap, ok := <-favorites.C:
			if !ok {
				return
			}
			favsErr = snap.Err
			if snap.Err == nil {
				ids, haveIDs = sortedIDs(snap.Value), true
			}
			publish()

		case <-ctx.Done():
			return
		}
	}
}

func sortedIDs(set map[int64]bool) []int64 {
	ids := make([]int64, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func copyID(id *int64) *int64 {
	if id == nil {
		return nil
	}
	v := *id
	return &v
}

func sameID(a, b *int64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
