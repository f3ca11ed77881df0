package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/educonnect-pk/educonnect-api/internal/models"
	appErrors "github.com/educonnect-pk/educonnect-api/pkg/errors"
	"github.com/educonnect-pk/educonnect-api/pkg/export"
)

// ExportFormat names a supported booking export format.
type ExportFormat string

const (
	ExportCSV ExportFormat = "csv"
	ExportPDF ExportFormat = "pdf"
)

type bookingLister interface {
	List(ctx context.Context, userID string, role models.UserRole) ([]models.BookingView, error)
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

// ExportResult is a rendered booking export ready to stream.
type ExportResult struct {
	Filename    string
	ContentType string
	Payload     []byte
}

// ExportService renders a user's bookings as CSV or PDF downloads.
type ExportService struct {
	bookings bookingLister
	csv      csvRenderer
	pdf      pdfRenderer
	logger   *zap.Logger
}

// NewExportService constructs an ExportService.
func NewExportService(bookings bookingLister, csv csvRenderer, pdf pdfRenderer, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &ExportService{bookings: bookings, csv: csv, pdf: pdf, logger: logger}
}

// Generate renders the caller's bookings in the requested format.
func (s *ExportService) Generate(ctx context.Context, userID string, role models.UserRole, format ExportFormat) (*ExportResult, error) {
	if format != ExportCSV && format != ExportPDF {
		return nil, appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf")
	}

	views, err := s.bookings.List(ctx, userID, role)
	if err != nil {
		return nil, err
	}
	dataset := buildBookingDataset(views)

	stamp := time.Now().UTC().Format("20060102")
	var result ExportResult
	switch format {
	case ExportCSV:
		payload, err := s.csv.Render(dataset)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv export")
		}
		result = ExportResult{
			Filename:    fmt.Sprintf("bookings-%s.csv", stamp),
			ContentType: "text/csv",
			Payload:     payload,
		}
	case ExportPDF:
		payload, err := s.pdf.Render(dataset, "My Sessions")
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf export")
		}
		result = ExportResult{
			Filename:    fmt.Sprintf("bookings-%s.pdf", stamp),
			ContentType: "application/pdf",
			Payload:     payload,
		}
	}

	s.logger.Sugar().Infow("bookings exported", "user_id", userID, "format", format, "rows", len(views))
	return &result, nil
}

func buildBookingDataset(views []models.BookingView) export.Dataset {
	dataset := export.Dataset{
		Headers: []string{"Date", "Time", "With", "Subject", "Duration (min)", "Type", "Price (Rs.)", "Status"},
	}
	for _, v := range views {
		party := ""
		if v.Tutor != nil {
			party = v.Tutor.Name
		} else if v.Student != nil {
			party = v.Student.Name
		}
		dataset.Rows = append(dataset.Rows, map[string]string{
			"Date":           v.Date.Format("2006-01-02"),
			"Time":           v.TimeSlot,
			"With":           party,
			"Subject":        v.Subject,
			"Duration (min)": strconv.Itoa(v.Duration),
			"Type":           string(v.SessionType),
			"Price (Rs.)":    strconv.Itoa(v.TotalPrice),
			"Status":         string(v.Status),
		})
	}
	return dataset
}
