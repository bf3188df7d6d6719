package db

import (
	"context"
	"testing"

	trackerrors "github.com/trackline/trackline/internal/errors"
)

func intPtr(v int64) *int64 { return &v }

func TestReportUniquePerReporterAndDate(t *testing.T) {
	d := newTestDB(t)
	ctx := context.Background()

	r, err := d.CreateReport(ctx, ReportCreate{
		ReporterName: "frank", ReportDate: "2026-08-20", HoursWorked: 7.5,
		MoodRating: intPtr(4), ProductivityScore: intPtr(3),
	})
	if err != nil {
		t.Fatalf("create report: %v", err)
	}

	_, err = d.CreateReport(ctx, ReportCreate{
		ReporterName: "frank", ReportDate: "2026-08-20",
	})
	te := trackerrors.AsTrackError(err)
	if te == nil || te.Code != trackerrors.CodeConflict {
		t.Fatalf("expected conflict on duplicate report, got %v", err)
	}

	// Same reporter, different day is fine.
	second, err := d.CreateReport(ctx, ReportCreate{
		ReporterName: "frank", ReportDate: "2026-08-21",
	})
	if err != nil {
		t.Fatalf("create second report: %v", err)
	}

	// Patching it onto the taken date collides.
	_, err = d.UpdateReport(ctx, second.ID, map[string]any{"report_date": r.ReportDate})
	te = trackerrors.AsTrackError(err)
	if te == nil || te.Code != trackerrors.CodeConflict {
		t.Fatalf("expected conflict on update collision, got %v", err)
	}
}

func TestReportRatingRangeEnforced(t *testing.T) {
	d := newTestDB(t)

	_, err := d.CreateReport(context.Background(), ReportCreate{
		ReporterName: "frank", ReportDate: "2026-08-20", MoodRating: intPtr(6),
	})
	te := trackerrors.AsTrackError(err)
	if te == nil || te.Code != trackerrors.CodeConstraint {
		t.Fatalf("expected constraint error for rating, got %v", err)
	}
}

func TestListReportsFilters(t *testing.T) {
	d := newTestDB(t)
	ctx := context.Background()

	_, _ = d.CreateReport(ctx, ReportCreate{ReporterName: "frank", ReportDate: "2026-08-18"})
	_, _ = d.CreateReport(ctx, ReportCreate{ReporterName: "frank", ReportDate: "2026-08-20"})
	_, _ = d.CreateReport(ctx, ReportCreate{ReporterName: "grace", ReportDate: "2026-08-20"})

	byReporter, err := d.ListReports(ctx, ReportListOpts{Reporter: "frank"})
	if err != nil {
		t.Fatalf("list by reporter: %v", err)
	}
	if len(byReporter) != 2 {
		t.Errorf("reporter filter returned %d rows", len(byReporter))
	}
	// Newest report date first.
	if len(byReporter) == 2 && byReporter[0].ReportDate < byReporter[1].ReportDate {
		t.Error("reports not ordered newest first")
	}

	inRange, err := d.ListReports(ctx, ReportListOpts{From: "2026-08-19", To: "2026-08-21"})
	if err != nil {
		t.Fatalf("list by range: %v", err)
	}
	if len(inRange) != 2 {
		t.Errorf("range filter returned %d rows", len(inRange))
	}
}

func TestReportStats(t *testing.T) {
	d := newTestDB(t)
	ctx := context.Background()

	_, _ = d.CreateReport(ctx, ReportCreate{
		ReporterName: "frank", ReportDate: "2026-08-18", HoursWorked: 8,
		MoodRating: intPtr(4), ProductivityScore: intPtr(5),
	})
	_, _ = d.CreateReport(ctx, ReportCreate{
		ReporterName: "grace", ReportDate: "2026-08-18", HoursWorked: 6,
		MoodRating: intPtr(2), ProductivityScore: intPtr(3),
	})
	// Unrated report: counted in totals, excluded from averages.
	_, _ = d.CreateReport(ctx, ReportCreate{
		ReporterName: "heidi", ReportDate: "2026-08-18", HoursWorked: 4,
	})

	stats, err := d.GetReportStats(ctx, ReportListOpts{})
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.Total != 3 || stats.TotalHours != 18 {
		t.Errorf("totals = %+v", stats)
	}
	if stats.AvgMood != 3 || stats.AvgProductivity != 4 {
		t.Errorf("averages: mood=%v productivity=%v", stats.AvgMood, stats.AvgProductivity)
	}
	if stats.MoodCounts["4"] != 1 || stats.MoodCounts["2"] != 1 {
		t.Errorf("mood histogram = %v", stats.MoodCounts)
	}

	filtered, err := d.GetReportStats(ctx, ReportListOpts{Reporter: "frank"})
	if err != nil {
		t.Fatalf("filtered stats: %v", err)
	}
	if filtered.Total != 1 || filtered.AvgMood != 4 {
		t.Errorf("filtered = %+v", filtered)
	}
}

func TestDeleteReport(t *testing.T) {
	d := newTestDB(t)
	ctx := context.Background()

	r, err := d.CreateReport(ctx, ReportCreate{ReporterName: "frank", ReportDate: "2026-08-18"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := d.DeleteReport(ctx, r.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	err = d.DeleteReport(ctx, r.ID)
	te := trackerrors.AsTrackError(err)
	if te == nil || te.Code != trackerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}
