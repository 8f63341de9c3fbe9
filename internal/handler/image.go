package handler

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"thai-travel-portal/internal/apperr"
	"thai-travel-portal/internal/imageopt"
	"thai-travel-portal/internal/metrics"
	"thai-travel-portal/internal/util"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// multipartSlack covers form boundaries and the other fields.
const multipartSlack = 1 << 20

type ImageHandler struct {
	MaxBytes  int64
	MaxPixels int
	Log       *zap.Logger
}

func NewImageHandler(maxMB, maxMegapixels int, log *zap.Logger) *ImageHandler {
	if maxMB <= 0 {
		maxMB = 10
	}
	maxPixels := imageopt.DefaultMaxPixels
	if maxMegapixels > 0 {
		maxPixels = maxMegapixels * 1_000_000
	}
	return &ImageHandler{MaxBytes: int64(maxMB) << 20, MaxPixels: maxPixels, Log: log}
}

func (h *ImageHandler) tooLarge(c *gin.Context) {
	util.Fail(c, apperr.TooLarge("image exceeds the "+strconv.FormatInt(h.MaxBytes>>20, 10)+" MB upload limit"))
}

// Optimize handles POST /api/optimize-image.
func (h *ImageHandler) Optimize(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.MaxBytes+multipartSlack)

	fh, err := c.FormFile("file")
	if err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			h.tooLarge(c)
			return
		}
		util.Error(c, http.StatusBadRequest, "file is required")
		return
	}
	if fh.Size > h.MaxBytes {
		h.tooLarge(c)
		return
	}

	f, err := fh.Open()
	if err != nil {
		util.Error(c, http.StatusBadRequest, "cannot open uploaded file")
		return
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		util.Error(c, http.StatusBadRequest, "cannot read uploaded file")
		return
	}

	opts := imageopt.Options{
		MaxWidth:  util.IntParam(c.PostForm("maxWidth"), imageopt.DefaultMaxWidth, 0),
		MaxHeight: util.IntParam(c.PostForm("maxHeight"), imageopt.DefaultMaxHeight, 0),
		Quality:   util.IntParam(c.PostForm("quality"), imageopt.DefaultQuality, 100),
		MaxPixels: h.MaxPixels,
	}
	res, err := imageopt.Optimize(data, opts)
	if err != nil {
		if apperr.KindOf(err) == apperr.KindUpstream {
			h.Log.Error("optimize image failed", zap.String("file", fh.Filename), zap.Error(err))
		}
		util.Fail(c, err)
		return
	}

	if saved := res.OriginalSize - len(res.Data); saved > 0 {
		metrics.ImageBytesSaved.Add(float64(saved))
	}
	for k, v := range res.Headers() {
		c.Header(k, v)
	}
	c.Data(http.StatusOK, res.ContentType, res.Data)
}
