package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"thai-travel-portal/internal/apperr"
	"thai-travel-portal/internal/auth"
	"thai-travel-portal/internal/dump"
	"thai-travel-portal/internal/models"
	"thai-travel-portal/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// BackupHandler writes and restores encrypted content dumps.
type BackupHandler struct {
	DB         *gorm.DB
	EncryptKey string
	BackupDir  string
	Log        *zap.Logger
}

func NewBackupHandler(db *gorm.DB, encryptKey, backupDir string, log *zap.Logger) *BackupHandler {
	return &BackupHandler{
		DB:         db,
		EncryptKey: encryptKey,
		BackupDir:  backupDir,
		Log:        log,
	}
}

func (h *BackupHandler) find(c *gin.Context) (*models.Backup, bool) {
	id, ok := parseID(c)
	if !ok {
		return nil, false
	}
	var backup models.Backup
	if err := h.DB.WithContext(c.Request.Context()).First(&backup, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			util.Error(c, http.StatusNotFound, "backup not found")
		} else {
			util.Fail(c, apperr.Upstream("load backup", err))
		}
		return nil, false
	}
	return &backup, true
}

// CreateBackup encrypts the current content dump into the backup directory.
func (h *BackupHandler) CreateBackup(c *gin.Context) {
	user, ok := auth.CurrentUser(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, "not signed in")
		return
	}

	d, err := dump.Collect(c.Request.Context(), h.DB)
	if err != nil {
		h.Log.Error("collect backup failed", zap.Error(err))
		util.Fail(c, apperr.Upstream("backup failed", err))
		return
	}
	raw, err := json.Marshal(d)
	if err != nil {
		util.Fail(c, apperr.Upstream("backup failed", err))
		return
	}
	enc, err := util.EncryptAES(h.EncryptKey, raw)
	if err != nil {
		util.Fail(c, apperr.Upstream("encrypt backup", err))
		return
	}

	if err := os.MkdirAll(h.BackupDir, 0o755); err != nil {
		h.Log.Error("create backup dir failed", zap.String("dir", h.BackupDir), zap.Error(err))
		util.Fail(c, apperr.Upstream("create backup directory", err))
		return
	}

	fileName := fmt.Sprintf("backup-%s-%s.bin", time.Now().Format("20060102-150405"), uuid.New().String())
	filePath := filepath.Join(h.BackupDir, fileName)
	if err := os.WriteFile(filePath, enc, 0o600); err != nil {
		h.Log.Error("write backup failed", zap.String("path", filePath), zap.Error(err))
		util.Fail(c, apperr.Upstream("write backup", err))
		return
	}

	backup := models.Backup{
		UserID:   user.ID,
		FileName: fileName,
		FilePath: filePath,
		Size:     int64(len(enc)),
	}
	if err := h.DB.WithContext(c.Request.Context()).Create(&backup).Error; err != nil {
		_ = os.Remove(filePath)
		util.Fail(c, apperr.Upstream("save backup record", err))
		return
	}

	util.SuccessStatus(c, http.StatusCreated, util.Response{"backup": backup})
}

func (h *BackupHandler) ListBackups(c *gin.Context) {
	list := make([]models.Backup, 0)
	if err := h.DB.WithContext(c.Request.Context()).
		Order("created_at DESC, id DESC").
		Find(&list).Error; err != nil {
		util.Fail(c, apperr.Upstream("list backups", err))
		return
	}
	util.Success(c, util.Response{"items": list})
}

func (h *BackupHandler) DownloadBackup(c *gin.Context) {
	backup, ok := h.find(c)
	if !ok {
		return
	}
	c.Header("Content-Type", "application/octet-stream")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", backup.FileName))
	c.File(backup.FilePath)
}

// DeleteBackup removes the file first, then the record.
func (h *BackupHandler) DeleteBackup(c *gin.Context) {
	backup, ok := h.find(c)
	if !ok {
		return
	}
	if err := os.Remove(backup.FilePath); err != nil && !errors.Is(err, os.ErrNotExist) {
		h.Log.Warn("remove backup file failed", zap.String("path", backup.FilePath), zap.Error(err))
	}
	if err := h.DB.WithContext(c.Request.Context()).Delete(backup).Error; err != nil {
		util.Fail(c, apperr.Upstream("delete backup record", err))
		return
	}
	util.Success(c, util.Response{"message": "backup deleted"})
}

// RestoreBackup decrypts a backup and replaces the content tables with it.
func (h *BackupHandler) RestoreBackup(c *gin.Context) {
	backup, ok := h.find(c)
	if !ok {
		return
	}

	enc, err := os.ReadFile(backup.FilePath)
	if err != nil {
		h.Log.Error("read backup failed", zap.String("path", backup.FilePath), zap.Error(err))
		util.Fail(c, apperr.Upstream("read backup file", err))
		return
	}
	raw, err := util.DecryptAES(h.EncryptKey, enc)
	if err != nil {
		util.Error(c, http.StatusBadRequest, "backup cannot be decrypted with the configured key")
		return
	}
	d, err := dump.Parse(raw)
	if err != nil {
		util.Error(c, http.StatusBadRequest, err.Error())
		return
	}

	counts, err := dump.Restore(c.Request.Context(), h.DB, d)
	if err != nil {
		h.Log.Error("restore backup failed", zap.Uint("backup_id", backup.ID), zap.Error(err))
		util.Fail(c, apperr.Upstream("restore failed", err))
		return
	}
	util.Success(c, util.Response{"message": "backup restored", "counts": counts})
}
