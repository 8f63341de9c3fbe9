package handler

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"thai-travel-portal/internal/apperr"
	"thai-travel-portal/internal/dump"
	"thai-travel-portal/internal/util"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// maxImportBytes bounds an uploaded JSON dump.
const maxImportBytes = 64 << 20

type ImportExportHandler struct {
	DB  *gorm.DB
	Log *zap.Logger
}

func NewImportExportHandler(db *gorm.DB, log *zap.Logger) *ImportExportHandler {
	return &ImportExportHandler{DB: db, Log: log}
}

func (h *ImportExportHandler) collect(c *gin.Context) (*dump.Dump, bool) {
	d, err := dump.Collect(c.Request.Context(), h.DB)
	if err != nil {
		h.Log.Error("collect dump failed", zap.Error(err))
		util.Fail(c, apperr.Upstream("export failed", err))
		return nil, false
	}
	return d, true
}

func attachment(c *gin.Context, contentType, name string) {
	c.Header("Content-Type", contentType)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", name))
}

// Export writes the whole content dump as json (default) or xlsx.
func (h *ImportExportHandler) Export(c *gin.Context) {
	format := c.DefaultQuery("format", "json")
	if format != "json" && format != "xlsx" {
		util.Error(c, http.StatusBadRequest, "format must be json or xlsx")
		return
	}
	d, ok := h.collect(c)
	if !ok {
		return
	}
	stamp := time.Now().Format("20060102-150405")

	if format == "xlsx" {
		var buf bytes.Buffer
		if err := d.WriteXLSX(&buf); err != nil {
			h.Log.Error("write xlsx failed", zap.Error(err))
			util.Fail(c, apperr.Upstream("export failed", err))
			return
		}
		attachment(c, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", "portal-"+stamp+".xlsx")
		c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"portal-%s.json\"", stamp))
	c.JSON(http.StatusOK, d)
}

// ExportTable serves /export/<table>.csv.
func (h *ImportExportHandler) ExportTable(c *gin.Context) {
	file := c.Param("file")
	table, ok := strings.CutSuffix(file, ".csv")
	if !ok || !dump.IsTable(table) {
		util.Error(c, http.StatusNotFound, "unknown table")
		return
	}
	d, ok := h.collect(c)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := d.WriteCSV(&buf, table); err != nil {
		h.Log.Error("write csv failed", zap.String("table", table), zap.Error(err))
		util.Fail(c, apperr.Upstream("export failed", err))
		return
	}
	attachment(c, "text/csv; charset=utf-8", table+".csv")
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

// Import replaces content tables from a JSON dump sent as the body or as a
// multipart "file".
func (h *ImportExportHandler) Import(c *gin.Context) {
	var reader io.Reader = c.Request.Body
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		fh, err := c.FormFile("file")
		if err != nil {
			util.Error(c, http.StatusBadRequest, "file is required")
			return
		}
		f, err := fh.Open()
		if err != nil {
			util.Error(c, http.StatusBadRequest, "cannot open uploaded file")
			return
		}
		defer f.Close()
		reader = f
	}

	raw, err := io.ReadAll(io.LimitReader(reader, maxImportBytes+1))
	if err != nil {
		util.Error(c, http.StatusBadRequest, "cannot read dump")
		return
	}
	if len(raw) > maxImportBytes {
		util.Fail(c, apperr.TooLarge("dump is too large"))
		return
	}

	d, err := dump.Parse(raw)
	if err != nil {
		util.Error(c, http.StatusBadRequest, err.Error())
		return
	}
	counts, err := dump.Restore(c.Request.Context(), h.DB, d)
	if err != nil {
		h.Log.Error("import failed", zap.Error(err))
		util.Fail(c, apperr.Upstream("import failed", err))
		return
	}
	h.Log.Info("content imported", zap.Any("counts", counts))
	util.Success(c, util.Response{"counts": counts})
}
