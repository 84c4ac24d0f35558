package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/Abhinav-Chauhan1/ERP-sub011/internal/models"
	appErrors "github.com/Abhinav-Chauhan1/ERP-sub011/pkg/errors"
	"github.com/Abhinav-Chauhan1/ERP-sub011/pkg/export"
	"github.com/Abhinav-Chauhan1/ERP-sub011/pkg/storage"
)

// ExportFormat enumerates supported export encodings.
type ExportFormat string

const (
	FormatCSV ExportFormat = "csv"
	FormatPDF ExportFormat = "pdf"
)

// ParseExportFormat normalises a format string.
func ParseExportFormat(raw string) (ExportFormat, error) {
	switch ExportFormat(strings.ToLower(strings.TrimSpace(raw))) {
	case FormatCSV:
		return FormatCSV, nil
	case FormatPDF:
		return FormatPDF, nil
	}
	return "", fmt.Errorf("unsupported export format %q", raw)
}

// ExportResult carries rendered bytes with their content type and filename.
type ExportResult struct {
	ContentType string
	Filename    string
	Data        []byte
}

type gridProvider interface {
	Grid(ctx context.Context, classID string) (*models.TimetableGrid, error)
}

type meritListProvider interface {
	GetMeritList(ctx context.Context, id string) (*models.MeritList, error)
}

// ExportService renders timetable grids and merit lists into CSV or PDF.
type ExportService struct {
	timetables gridProvider
	merits     meritListProvider
	csv        *export.CSVExporter
	pdf        *export.PDFExporter
	archive    *storage.ExportArchive
	logger     *zap.Logger
}

// NewExportService instantiates ExportService. archive may be nil when
// rendered exports are not kept on disk.
func NewExportService(timetables gridProvider, merits meritListProvider, archive *storage.ExportArchive, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{
		timetables: timetables,
		merits:     merits,
		csv:        export.NewCSVExporter(),
		pdf:        export.NewPDFExporter(),
		archive:    archive,
		logger:     logger,
	}
}

// TimetableGrid renders the weekly grid of a class's active timetable.
func (s *ExportService) TimetableGrid(ctx context.Context, classID string, format ExportFormat) (*ExportResult, error) {
	grid, err := s.timetables.Grid(ctx, classID)
	if err != nil {
		return nil, err
	}

	headers := []string{"Day", "Start", "End", "Class", "Section", "Subject Teacher", "Room"}
	rows := make([]map[string]string, 0)
	for _, day := range grid.Days {
		for _, slot := range day.Slots {
			rows = append(rows, map[string]string{
				"Day":             string(slot.Day),
				"Start":           slot.StartTime,
				"End":             slot.EndTime,
				"Class":           slot.ClassID,
				"Section":         derefOr(slot.SectionID, "-"),
				"Subject Teacher": slot.SubjectTeacherID,
				"Room":            derefOr(slot.RoomID, "-"),
			})
		}
	}

	dataset := export.Dataset{Headers: headers, Rows: rows}
	title := fmt.Sprintf("Timetable %s v%d", grid.Timetable.Name, grid.Timetable.Version)
	filename := fmt.Sprintf("timetable-%s", classID)
	return s.render(dataset, title, filename, format)
}

// MeritList renders a persisted merit list snapshot.
func (s *ExportService) MeritList(ctx context.Context, listID string, format ExportFormat) (*ExportResult, error) {
	list, err := s.merits.GetMeritList(ctx, listID)
	if err != nil {
		return nil, err
	}

	headers := []string{"Rank", "Applicant", "Composite Score"}
	rows := make([]map[string]string, 0, len(list.Entries))
	for _, entry := range list.Entries {
		rows = append(rows, map[string]string{
			"Rank":            fmt.Sprintf("%d", entry.Rank),
			"Applicant":       entry.ApplicantName,
			"Composite Score": fmt.Sprintf("%.2f", entry.CompositeScore),
		})
	}

	dataset := export.Dataset{Headers: headers, Rows: rows}
	filename := fmt.Sprintf("merit-list-%s", listID)
	return s.render(dataset, list.Name, filename, format)
}

func (s *ExportService) render(dataset export.Dataset, title, filename string, format ExportFormat) (*ExportResult, error) {
	var result *ExportResult
	switch format {
	case FormatCSV:
		data, err := s.csv.Render(dataset)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv")
		}
		result = &ExportResult{ContentType: "text/csv", Filename: filename + ".csv", Data: data}
	case FormatPDF:
		data, err := s.pdf.Render(dataset, title)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf")
		}
		result = &ExportResult{ContentType: "application/pdf", Filename: filename + ".pdf", Data: data}
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", format))
	}

	if s.archive != nil {
		if _, err := s.archive.Save(result.Filename, result.Data); err != nil {
			s.logger.Warn("failed to archive export", zap.String("filename", result.Filename), zap.Error(err))
		}
	}
	return result, nil
}

func derefOr(value *string, fallback string) string {
	if value == nil || *value == "" {
		return fallback
	}
	return *value
}
