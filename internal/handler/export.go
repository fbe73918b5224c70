package handler

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"time"

	"github.com/David-Jacks/faitherpa/internal/models"
	"github.com/David-Jacks/faitherpa/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

// ExportHandler 导出认捐台账（管理员用）
type ExportHandler struct {
	DB *gorm.DB
}

func NewExportHandler(db *gorm.DB) *ExportHandler {
	return &ExportHandler{DB: db}
}

func (h *ExportHandler) loadContributions(c *gin.Context) ([]models.Contribution, bool) {
	var contributions []models.Contribution
	if err := h.DB.WithContext(c.Request.Context()).
		Order("created_at DESC, id DESC").
		Find(&contributions).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, "export_failed", "")
		return nil, false
	}
	return contributions, true
}

func boolText(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

// ExportCSV 导出 CSV
func (h *ExportHandler) ExportCSV(c *gin.Context) {
	contributions, ok := h.loadContributions(c)
	if !ok {
		return
	}

	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"contributions_%s.csv\"",
		time.Now().Format("20060102")))

	writer := csv.NewWriter(c.Writer)
	defer writer.Flush()

	// UTF-8 BOM（让 Excel 正确识别编码）
	c.Writer.Write([]byte{0xEF, 0xBB, 0xBF})

	writer.Write([]string{"Date", "Name", "Amount", "Anonymous", "Repayable", "Confirmed", "Note"})

	for _, contrib := range contributions {
		writer.Write([]string{
			contrib.CreatedAt.Format("2006-01-02"),
			contrib.Name,
			contrib.Amount.StringFixed(2),
			boolText(contrib.IsAnonymous),
			boolText(contrib.IsRepayable),
			boolText(contrib.Confirmed),
			contrib.Note,
		})
	}
}

// ExportXLSX 导出 XLSX
func (h *ExportHandler) ExportXLSX(c *gin.Context) {
	contributions, ok := h.loadContributions(c)
	if !ok {
		return
	}

	f := excelize.NewFile()
	sheetName := "Contributions"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, "export_failed", "")
		return
	}
	f.SetActiveSheet(index)

	headers := []string{"Date", "Name", "Amount", "Anonymous", "Repayable", "Confirmed", "Note"}
	for i, head := range headers {
		cell := fmt.Sprintf("%c1", 'A'+i)
		f.SetCellValue(sheetName, cell, head)
	}

	for idx, contrib := range contributions {
		row := idx + 2
		f.SetCellValue(sheetName, fmt.Sprintf("A%d", row), contrib.CreatedAt.Format("2006-01-02"))
		f.SetCellValue(sheetName, fmt.Sprintf("B%d", row), contrib.Name)
		f.SetCellValue(sheetName, fmt.Sprintf("C%d", row), contrib.Amount.StringFixed(2))
		f.SetCellValue(sheetName, fmt.Sprintf("D%d", row), boolText(contrib.IsAnonymous))
		f.SetCellValue(sheetName, fmt.Sprintf("E%d", row), boolText(contrib.IsRepayable))
		f.SetCellValue(sheetName, fmt.Sprintf("F%d", row), boolText(contrib.Confirmed))
		f.SetCellValue(sheetName, fmt.Sprintf("G%d", row), contrib.Note)
	}

	f.SetColWidth(sheetName, "A", "A", 12)
	f.SetColWidth(sheetName, "B", "B", 20)
	f.SetColWidth(sheetName, "C", "C", 12)
	f.SetColWidth(sheetName, "G", "G", 30)

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"contributions_%s.xlsx\"",
		time.Now().Format("20060102")))

	if err := f.Write(c.Writer); err != nil {
		util.Error(c, http.StatusInternalServerError, "export_failed", "")
	}
}
