package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/LadaVilada/kido-sub000/internal/dto"
	"github.com/LadaVilada/kido-sub000/internal/repository"
	"github.com/LadaVilada/kido-sub000/internal/schedule"
)

// ── Export business errors ──

var (
	ErrExportGenerateFail = errors.New("failed to generate excel file")
)

// ExportService renders a week of occurrences as an Excel workbook.
//
// The export returns a bytes.Buffer; the handler layer sets the HTTP
// headers and streams it. One sheet, one column per weekday, one row
// per concurrent slot, cells formatted "HH:MM-HH:MM Title (Child)".
type ExportService interface {
	// ExportWeek exports the 7-day window anchored like the week view.
	ExportWeek(ctx context.Context, req *dto.WeekViewRequest, callerID string) (*bytes.Buffer, string, error)
}

type exportService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewExportService creates an ExportService instance.
func NewExportService(repo *repository.Repository, logger *zap.Logger) ExportService {
	return &exportService{repo: repo, logger: logger}
}

// ═══════════════════════════════════════════════════════════
// ExportWeek — week calendar as .xlsx
// ═══════════════════════════════════════════════════════════

func (s *exportService) ExportWeek(ctx context.Context, req *dto.WeekViewRequest, callerID string) (*bytes.Buffer, string, error) {
	// 1. Resolve the week anchor, matching the week view's rules
	var anchor time.Time
	if req.Start != "" {
		var err error
		anchor, err = time.ParseInLocation("2006-01-02", req.Start, time.Local)
		if err != nil {
			return nil, "", ErrInvalidDate
		}
	} else {
		weekStartsOn := 0
		if settings, err := s.repo.Settings.GetByUser(ctx, callerID); err == nil {
			weekStartsOn = settings.WeekStartsOn
		}
		anchor = weekStart(time.Now(), weekStartsOn)
	}

	// 2. Generate the week's occurrences and bucket them per day
	rules, children, err := loadScheduleInputs(ctx, s.repo, callerID)
	if err != nil {
		s.logger.Error("load schedule inputs failed", zap.Error(err))
		return nil, "", err
	}
	occs := schedule.GenerateWeek(rules, children, anchor)

	byDay := make(map[string][]schedule.Occurrence, 7)
	for _, occ := range occs {
		key := occ.Date.Format("2006-01-02")
		byDay[key] = append(byDay[key], occ)
	}

	// 3. Build the workbook
	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Week"
	idx, _ := f.NewSheet(sheetName)
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")

	for i := 0; i < 7; i++ {
		col := colName(i)
		f.SetColWidth(sheetName, col, col, 28)
	}

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})

	// Title row
	startDate := anchor.Format("2006-01-02")
	endDate := anchor.AddDate(0, 0, 6).Format("2006-01-02")
	f.SetCellValue(sheetName, "A1", fmt.Sprintf("Week %s to %s", startDate, endDate))
	f.MergeCell(sheetName, "A1", cell(colName(6), 1))
	f.SetCellStyle(sheetName, "A1", "A1", headerStyle)

	// Day headers
	for i := 0; i < 7; i++ {
		day := anchor.AddDate(0, 0, i)
		c := cell(colName(i), 2)
		f.SetCellValue(sheetName, c, day.Format("Mon 2006-01-02"))
		f.SetCellStyle(sheetName, c, c, headerStyle)
	}

	// 4. Occurrence cells, one row per concurrent slot
	for i := 0; i < 7; i++ {
		day := anchor.AddDate(0, 0, i).Format("2006-01-02")
		for j, occ := range byDay[day] {
			text := fmt.Sprintf("%s-%s %s (%s)",
				schedule.MinutesToTime(occ.StartMinutes),
				schedule.MinutesToTime(occ.EndMinutes),
				occ.Title, occ.ChildName)
			if occ.Location != "" {
				text += " @ " + occ.Location
			}
			f.SetCellValue(sheetName, cell(colName(i), 3+j), text)
		}
	}

	// 5. Write out
	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("write excel failed", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	s.logger.Info("week exported",
		zap.String("user_id", callerID),
		zap.String("start", startDate),
		zap.Int("occurrences", len(occs)))

	filename := fmt.Sprintf("kido-week-%s.xlsx", startDate)
	return buf, filename, nil
}

// ── Helpers ──

func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}
