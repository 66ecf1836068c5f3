package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"classhub/backend/internal/model"
	"classhub/backend/internal/repository"
)

// ── 导出模块业务错误 ──

var (
	ErrExportNoMembers    = errors.New("班级暂无成员")
	ErrExportNoAttempts   = errors.New("该考试暂无作答记录")
	ErrExportGenerateFail = errors.New("生成 Excel 文件失败")
)

// ExportService 导出业务接口
//
// 导出以 bytes.Buffer 返回，由 Handler 层设置 HTTP 响应头后写入 Response
type ExportService interface {
	// ExportRoster 导出班级成员名册为 Excel
	ExportRoster(ctx context.Context, classID string, callerID, callerRole string) (*bytes.Buffer, string, error)
	// ExportExamResults 导出考试成绩单为 Excel
	ExportExamResults(ctx context.Context, examID string, callerID, callerRole string) (*bytes.Buffer, string, error)
}

type exportService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewExportService 创建 ExportService 实例
func NewExportService(repo *repository.Repository, logger *zap.Logger) ExportService {
	return &exportService{repo: repo, logger: logger}
}

// ────────────────────── ExportRoster ──────────────────────
//
// 输出格式：
//   - 表头: | 姓名 | 学号 | 邮箱 | 角色 | 加入时间 | 加入方式 |
//   - 文件名: 班级名_名册.xlsx

func (s *exportService) ExportRoster(ctx context.Context, classID string, callerID, callerRole string) (*bytes.Buffer, string, error) {
	class, err := s.repo.Class.GetByID(ctx, classID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", ErrClassNotFound
		}
		s.logger.Error("查询班级失败", zap.Error(err))
		return nil, "", err
	}
	if !canManageClass(class, callerID, callerRole) {
		return nil, "", ErrNoPermission
	}

	enrollments, err := s.repo.Enrollment.ListByClass(ctx, classID)
	if err != nil {
		s.logger.Error("查询班级成员失败", zap.Error(err))
		return nil, "", err
	}
	if len(enrollments) == 0 {
		return nil, "", ErrExportNoMembers
	}

	f := excelize.NewFile()
	defer f.Close()

	sheetName := "成员名册"
	idx, _ := f.NewSheet(sheetName)
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")

	f.SetColWidth(sheetName, "A", "A", 16)
	f.SetColWidth(sheetName, "B", "B", 16)
	f.SetColWidth(sheetName, "C", "C", 28)
	f.SetColWidth(sheetName, "D", "D", 10)
	f.SetColWidth(sheetName, "E", "E", 20)
	f.SetColWidth(sheetName, "F", "F", 14)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})

	// 标题行
	f.SetCellValue(sheetName, "A1", fmt.Sprintf("%s — 成员名册", class.Name))
	f.MergeCell(sheetName, "A1", "F1")
	f.SetCellStyle(sheetName, "A1", "A1", headerStyle)

	// 表头
	headers := []string{"姓名", "学号", "邮箱", "角色", "加入时间", "加入方式"}
	for i, h := range headers {
		f.SetCellValue(sheetName, cell(colName(i), 2), h)
	}

	// 数据行
	row := 3
	for i := range enrollments {
		e := &enrollments[i]
		name, regNo, email := "", "", ""
		if e.User != nil {
			name = e.User.Name
			regNo = e.User.RegistrationNo
			email = e.User.Email
		}
		via := "手动添加"
		if e.EnrolledViaCode != nil {
			via = "邀请码 " + *e.EnrolledViaCode
		}

		f.SetCellValue(sheetName, cell("A", row), name)
		f.SetCellValue(sheetName, cell("B", row), regNo)
		f.SetCellValue(sheetName, cell("C", row), email)
		f.SetCellValue(sheetName, cell("D", row), e.Role)
		f.SetCellValue(sheetName, cell("E", row), e.CreatedAt.Format("2006-01-02 15:04"))
		f.SetCellValue(sheetName, cell("F", row), via)
		row++
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("写入 Excel 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	filename := fmt.Sprintf("%s_名册_%s.xlsx", class.Name, time.Now().Format("20060102"))
	return buf, filename, nil
}

// ────────────────────── ExportExamResults ──────────────────────
//
// 输出格式：
//   - 表头: | 姓名 | 学号 | 状态 | 得分 | 满分 | 提交时间 | 批改完成时间 |
//   - 文件名: 考试名_成绩单.xlsx

func (s *exportService) ExportExamResults(ctx context.Context, examID string, callerID, callerRole string) (*bytes.Buffer, string, error) {
	exam, err := s.repo.Exam.GetByID(ctx, examID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", ErrExamNotFound
		}
		s.logger.Error("查询考试失败", zap.Error(err))
		return nil, "", err
	}

	class, err := s.repo.Class.GetByID(ctx, exam.ClassID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", ErrClassNotFound
		}
		return nil, "", err
	}
	if !canManageClass(class, callerID, callerRole) {
		return nil, "", ErrNoPermission
	}

	attempts, err := s.repo.Exam.ListAttempts(ctx, examID)
	if err != nil {
		s.logger.Error("查询作答列表失败", zap.Error(err))
		return nil, "", err
	}
	if len(attempts) == 0 {
		return nil, "", ErrExportNoAttempts
	}

	f := excelize.NewFile()
	defer f.Close()

	sheetName := "成绩单"
	idx, _ := f.NewSheet(sheetName)
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")

	f.SetColWidth(sheetName, "A", "A", 16)
	f.SetColWidth(sheetName, "B", "B", 16)
	f.SetColWidth(sheetName, "C", "C", 12)
	f.SetColWidth(sheetName, "D", "E", 10)
	f.SetColWidth(sheetName, "F", "G", 20)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})

	f.SetCellValue(sheetName, "A1", fmt.Sprintf("%s — 成绩单", exam.Title))
	f.MergeCell(sheetName, "A1", "G1")
	f.SetCellStyle(sheetName, "A1", "A1", headerStyle)

	statusNames := map[string]string{
		model.AttemptStatusSubmitted: "已提交",
		model.AttemptStatusGrading:   "批改中",
		model.AttemptStatusGraded:    "已批改",
	}

	headers := []string{"姓名", "学号", "状态", "得分", "满分", "提交时间", "批改完成时间"}
	for i, h := range headers {
		f.SetCellValue(sheetName, cell(colName(i), 2), h)
	}

	row := 3
	for i := range attempts {
		a := &attempts[i]
		name, regNo := "", ""
		if a.Student != nil {
			name = a.Student.Name
			regNo = a.Student.RegistrationNo
		}
		status := statusNames[a.Status]
		if status == "" {
			status = a.Status
		}
		gradedAt := "-"
		if a.GradedAt != nil {
			gradedAt = a.GradedAt.Format("2006-01-02 15:04")
		}
		score := "-"
		if a.Status == model.AttemptStatusGraded {
			score = fmt.Sprintf("%.1f", a.Score)
		}

		f.SetCellValue(sheetName, cell("A", row), name)
		f.SetCellValue(sheetName, cell("B", row), regNo)
		f.SetCellValue(sheetName, cell("C", row), status)
		f.SetCellValue(sheetName, cell("D", row), score)
		f.SetCellValue(sheetName, cell("E", row), fmt.Sprintf("%.1f", a.MaxScore))
		f.SetCellValue(sheetName, cell("F", row), a.SubmittedAt.Format("2006-01-02 15:04"))
		f.SetCellValue(sheetName, cell("G", row), gradedAt)
		row++
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("写入 Excel 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	filename := fmt.Sprintf("%s_成绩单_%s.xlsx", exam.Title, time.Now().Format("20060102"))
	return buf, filename, nil
}

// ── 辅助函数 ──

func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}
