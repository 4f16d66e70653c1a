package service

import (
	"context"
	"fmt"

	"kidsvids/internal/database"
	"kidsvids/internal/models"
	"kidsvids/internal/repository"
)

const topVideoLimit = 5

// ReportService builds the admin dashboard report
type ReportService struct {
	reports *repository.ReportRepository
	parents *repository.ParentRepository
}

// NewReportService creates a new report service
func NewReportService(reports *repository.ReportRepository, parents *repository.ParentRepository) *ReportService {
	return &ReportService{reports: reports, parents: parents}
}

// Build computes every report section
func (s *ReportService) Build(ctx context.Context) (*models.Report, error) {
	report := &models.Report{}

	sections := []struct {
		table string
		dest  *[]models.VideoStat
	}{
		{database.TableWatchHistory, &report.MostWatched},
		{database.TableFavorites, &report.MostSaved},
		{database.TableBlockedVideos, &report.MostBlocked},
	}
	for _, section := range sections {
		counts, err := s.reports.TopVideos(ctx, section.table, topVideoLimit)
		if err != nil {
			return nil, err
		}
		*section.dest = videoStats(counts)
	}

	byCategory, err := s.reports.CountByCategory(ctx)
	if err != nil {
		return nil, err
	}
	report.VideosByCategory = make([]models.NamedCount, len(byCategory))
	for i, c := range byCategory {
		name := "Unknown Category"
		if c.Name.Valid {
			name = c.Name.String
		}
		report.VideosByCategory[i] = models.NamedCount{Name: name, Count: c.Count}
	}

	bySource, err := s.reports.CountBySource(ctx)
	if err != nil {
		return nil, err
	}
	report.VideosBySource = make([]models.NamedCount, len(bySource))
	for i, c := range bySource {
		report.VideosBySource[i] = models.NamedCount{Name: models.SourceType(c.Key).DisplayName(), Count: c.Count}
	}

	report.TotalParents, err = s.parents.CountParents(ctx)
	if err != nil {
		return nil, err
	}
	return report, nil
}

func videoStats(counts []repository.VideoCount) []models.VideoStat {
	stats := make([]models.VideoStat, len(counts))
	for i, c := range counts {
		title := fmt.Sprintf("Video ID: %d", c.VideoID)
		if c.Title.Valid {
			title = c.Title.String
		}
		stats[i] = models.VideoStat{VideoID: c.VideoID, Title: title, Count: c.Count}
	}
	return stats
}
