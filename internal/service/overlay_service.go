package service

import (
	"context"
	"fmt"

	"kidsvids/internal/database"
	"kidsvids/internal/live"
	"kidsvids/internal/models"
	"kidsvids/internal/repository"
)

// YourStuff groups a kid's recently watched and favorite videos
type YourStuff struct {
	History   []models.Video `json:"history"`
	Favorites []models.Video `json:"favorites"`
}

// OverlayService resolves a kid's favorites, history and blocks to videos
type OverlayService struct {
	db        *database.DB
	kids      *repository.KidRepository
	videos    *repository.VideoRepository
	favorites *repository.FavoriteRepository
	blocked   *repository.BlockedVideoRepository
	history   *repository.HistoryRepository
}

// NewOverlayService creates a new overlay service
func NewOverlayService(db *database.DB) *OverlayService {
	return &OverlayService{
		db:        db,
		kids:      repository.NewKidRepository(db),
		videos:    repository.NewVideoRepository(db),
		favorites: repository.NewFavoriteRepository(db),
		blocked:   repository.NewBlockedVideoRepository(db),
		history:   repository.NewHistoryRepository(db),
	}
}

// YourStuff loads the history (most recent first) and favorites of a kid.
// Both id lists are resolved with a single lookup.
func (s *OverlayService) YourStuff(ctx context.Context, kidID int64) (*YourStuff, error) {
	if err := s.requireKid(ctx, kidID); err != nil {
		return nil, err
	}

	historyIDs, err := s.history.GetHistoryIDs(ctx, kidID)
	if err != nil {
		return nil, fmt.Errorf("failed to get history: %w", err)
	}
	favoriteIDs, err := s.favorites.GetFavoriteIDs(ctx, kidID)
	if err != nil {
		return nil, fmt.Errorf("failed to get favorites: %w", err)
	}

	lists, err := s.resolve(ctx, historyIDs, favoriteIDs)
	if err != nil {
		return nil, err
	}
	return &YourStuff{History: lists[0], Favorites: lists[1]}, nil
}

// WatchYourStuff re-evaluates YourStuff when history, favorites or videos change
func (s *OverlayService) WatchYourStuff(ctx context.Context, kidID int64) *live.Subscription[*YourStuff] {
	return live.Watch(ctx, s.db.Changes(), func(ctx context.Context) (*YourStuff, error) {
		return s.YourStuff(ctx, kidID)
	}, database.TableWatchHistory, database.TableFavorites, database.TableVideos, database.TableKids)
}

// BlockedVideos lists the videos hidden from a kid
func (s *OverlayService) BlockedVideos(ctx context.Context, kidID int64) ([]models.Video, error) {
	if err := s.requireKid(ctx, kidID); err != nil {
		return nil, err
	}

	ids, err := s.blocked.GetBlockedIDs(ctx, kidID)
	if err != nil {
		return nil, fmt.Errorf("failed to get blocked videos: %w", err)
	}
	lists, err := s.resolve(ctx, ids)
	if err != nil {
		return nil, err
	}
	return lists[0], nil
}

// WatchBlockedVideos re-evaluates BlockedVideos when blocks or videos change
func (s *OverlayService) WatchBlockedVideos(ctx context.Context, kidID int64) *live.Subscription[[]models.Video] {
	return live.Watch(ctx, s.db.Changes(), func(ctx context.Context) ([]models.Video, error) {
		return s.BlockedVideos(ctx, kidID)
	}, database.TableBlockedVideos, database.TableVideos, database.TableKids)
}

func (s *OverlayService) requireKid(ctx context.Context, kidID int64) error {
	kid, err := s.kids.GetKidByID(ctx, kidID)
	if err != nil {
		return err
	}
	if kid == nil {
		return ErrKidNotFound
	}
	return nil
}

// resolve fetches the union of the id lists once and maps each list back to videos
func (s *OverlayService) resolve(ctx context.Context, idLists ...[]int64) ([][]models.Video, error) {
	var all []int64
	seen := make(map[int64]bool)
	for _, ids := range idLists {
		for _, id := range ids {
			if !seen[id] {
				seen[id] = true
				all = append(all, id)
			}
		}
	}

	videos, err := s.videos.GetVideosByIDs(ctx, all)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve videos: %w", err)
	}
	return regroup(videos, idLists...), nil
}

// regroup re-associates videos with each id list, keeping the list's order and
// dropping duplicate and unknown ids.
func regroup(videos []models.Video, idLists ...[]int64) [][]models.Video {
	byID := make(map[int64]models.Video, len(videos))
	for _, v := range videos {
		byID[v.ID] = v
	}

	out := make([][]models.Video, len(idLists))
	for i, ids := range idLists {
		list := []models.Video{}
		seen := make(map[int64]bool, len(ids))
		for _, id := range ids {
			v, ok := byID[id]
			if !ok || seen[id] {
				continue
			}
			seen[id] = true
			list = append(list, v)
		}
		out[i] = list
	}
	return out
}
