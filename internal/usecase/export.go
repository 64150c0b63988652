package usecase

import (
	"bytes"
	"context"
	"fmt"
	"html"
	"time"

	"linire-backend/internal/domain"
	"linire-backend/pkg/apperror"

	"github.com/xuri/excelize/v2"
)

const (
	exportSheetName   = "Submissions"
	exportContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

var exportColumns = []string{"ID", "DATE", "FIRST NAME", "LAST NAME", "EMAIL", "PHONE", "SERVICE", "MESSAGE", "CONSENT", "STATUS"}

// ExportSubmissions renders every submission matching filter, newest
// first, as an XLSX workbook.
func (u *adminUsecase) ExportSubmissions(ctx context.Context, filter domain.StatusFilter) (*domain.SubmissionExport, error) {
	admin, err := u.requireAdmin(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := u.repo.ListAll(ctx, filter)
	if err != nil {
		return nil, apperror.Internal(fmt.Errorf("failed to list submissions for export: %w", err))
	}

	data, err := buildWorkbook(rows)
	if err != nil {
		return nil, apperror.Internal(err)
	}

	u.audit.LogDataExport(ctx, admin.Username, filter.String(), len(rows))

	return &domain.SubmissionExport{
		Filename:    fmt.Sprintf("contact_submissions_%s_%s.xlsx", filter.String(), time.Now().Format("20060102_150405")),
		ContentType: exportContentType,
		Data:        data,
	}, nil
}

func buildWorkbook(rows []domain.Submission) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", exportSheetName); err != nil {
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}

	if err := writeRow(f, 1, toAny(exportColumns)); err != nil {
		return nil, err
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#171A32"}},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}
	endCell, err := excelize.CoordinatesToCellName(len(exportColumns), 1)
	if err != nil {
		return nil, err
	}
	if err := f.SetCellStyle(exportSheetName, "A1", endCell, headerStyle); err != nil {
		return nil, fmt.Errorf("failed to style header: %w", err)
	}

	// Stored text is HTML-escaped; the sheet gets plain text.
	for i, s := range rows {
		consent := "No"
		if s.Consent {
			consent = "Yes"
		}
		values := []any{
			s.ID,
			s.CreatedAt.Format("2006-01-02 15:04"),
			html.UnescapeString(s.FirstName),
			html.UnescapeString(s.LastName),
			html.UnescapeString(s.Email),
			html.UnescapeString(s.Phone),
			html.UnescapeString(s.ServiceLabel()),
			html.UnescapeString(s.Message),
			consent,
			string(s.Status),
		}
		if err := writeRow(f, i+2, values); err != nil {
			return nil, err
		}
	}

	for i, name := range exportColumns {
		colName, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return nil, err
		}
		width := 20.0
		if name == "MESSAGE" {
			width = 60
		}
		if err := f.SetColWidth(exportSheetName, colName, colName, width); err != nil {
			return nil, fmt.Errorf("failed to size column %s: %w", colName, err)
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to write Excel file: %w", err)
	}
	return buf.Bytes(), nil
}

func writeRow(f *excelize.File, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(exportSheetName, cell, &values); err != nil {
		return fmt.Errorf("failed to write row %d: %w", row, err)
	}
	return nil
}

func toAny(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}
