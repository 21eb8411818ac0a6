package store

import (
	"context"
	"fmt"

	"meteoproxy/internal/registry"
)

// CreateReport inserts a weather report and returns its id.
func (s *Store) CreateReport(ctx context.Context, report *registry.WeatherReport) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO weather_reports (city_name, title, content, author_id, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		report.City, report.Title, report.Content, report.AuthorID, report.CreatedAt,
	)
	if err != nil {
		return 0, fmt.Errorf("insert report: %w", err)
	}
	return res.LastInsertId()
}

// UpdateReportContent replaces a report's content and returns the number of
// rows affected.
func (s *Store) UpdateReportContent(ctx context.Context, id int64, content string) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		"UPDATE weather_reports SET content = ? WHERE id = ?", content, id)
	if err != nil {
		return 0, fmt.Errorf("update report: %w", err)
	}
	return res.RowsAffected()
}

// DeleteReport deletes a report by id and returns the number of rows affected.
func (s *Store) DeleteReport(ctx context.Context, id int64) (int64, error) {
	res, err := s.db.ExecContext(ctx, "DELETE FROM weather_reports WHERE id = ?", id)
	if err != nil {
		return 0, fmt.Errorf("delete report: %w", err)
	}
	return res.RowsAffected()
}

// ReportsByCity returns reports whose city name matches case-insensitively,
// newest first.
func (s *Store) ReportsByCity(ctx context.Context, city string) ([]registry.WeatherReport, error) {
	reports := []registry.WeatherReport{}
	err := s.db.SelectContext(ctx, &reports, `
		SELECT id, city_name, title, content, author_id, created_at
		FROM weather_reports
		WHERE city_name = ? COLLATE NOCASE
		ORDER BY created_at DESC, id DESC`, city)
	if err != nil {
		return nil, fmt.Errorf("select reports by city: %w", err)
	}
	return reports, nil
}

// ReportsByAuthor returns reports by one author, newest first.
func (s *Store) ReportsByAuthor(ctx context.Context, authorID int64) ([]registry.WeatherReport, error) {
	reports := []registry.WeatherReport{}
	err := s.db.SelectContext(ctx, &reports, `
		SELECT id, city_name, title, content, author_id, created_at
		FROM weather_reports
		WHERE author_id = ?
		ORDER BY created_at DESC, id DESC`, authorID)
	if err != nil {
		return nil, fmt.Errorf("select reports by author: %w", err)
	}
	return reports, nil
}
