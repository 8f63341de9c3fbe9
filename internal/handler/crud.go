package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"

	"thai-travel-portal/internal/apperr"
	"thai-travel-portal/internal/repository"
	"thai-travel-portal/internal/util"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Model is the pointer side of a content row.
type Model[T any] interface {
	*T
	Validate() error
}

type defaulter interface {
	SetDefaults()
}

// Paging carries the list page size limits.
type Paging struct {
	PageSize    int
	MaxPageSize int
}

// Resource serves list/get/create/update/delete for one content table.
type Resource[T any, PT Model[T]] struct {
	Name   string
	Repo   repository.Repository[T]
	Paging Paging
	Log    *zap.Logger
}

func NewResource[T any, PT Model[T]](name string, repo repository.Repository[T], paging Paging, log *zap.Logger) *Resource[T, PT] {
	if paging.PageSize <= 0 {
		paging.PageSize = 20
	}
	if paging.MaxPageSize < paging.PageSize {
		paging.MaxPageSize = paging.PageSize
	}
	return &Resource[T, PT]{Name: name, Repo: repo, Paging: paging, Log: log}
}

// readOnlyFields are never taken from a request body.
var readOnlyFields = []string{"id", "createdAt", "updatedAt", "views"}

// bindBody decodes a JSON object into dst, ignoring read-only keys. Keys not
// present in the body leave dst untouched, which makes PUT a merge.
func bindBody(c *gin.Context, dst interface{}) error {
	raw, err := io.ReadAll(c.Request.Body)
	if err != nil {
		return apperr.Validation("cannot read request body")
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil || fields == nil {
		return apperr.Validation("request body must be a JSON object")
	}
	// encoding/json matches keys case-insensitively, so "ID" would still land
	for k := range fields {
		if isReadOnly(k) {
			delete(fields, k)
		}
	}
	clean, err := json.Marshal(fields)
	if err != nil {
		return apperr.Validation("invalid request body")
	}
	dec := json.NewDecoder(bytes.NewReader(clean))
	if err := dec.Decode(dst); err != nil {
		return apperr.Validation("invalid field: " + err.Error())
	}
	return nil
}

func isReadOnly(key string) bool {
	for _, f := range readOnlyFields {
		if strings.EqualFold(key, f) {
			return true
		}
	}
	return false
}

func parseID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		util.Error(c, http.StatusBadRequest, "invalid id")
		return 0, false
	}
	return uint(id), true
}

func (r *Resource[T, PT]) fail(c *gin.Context, err error) {
	if apperr.KindOf(err) == apperr.KindUpstream {
		r.Log.Error(r.Name+" request failed", zap.String("path", c.Request.URL.Path), zap.Error(err))
	}
	util.Fail(c, err)
}

// listQuery reads active, category, search, page and limit.
func (r *Resource[T, PT]) listQuery(c *gin.Context) repository.ListQuery {
	q := repository.ListQuery{
		Category: c.Query("category"),
		Search:   c.Query("search"),
		Page:     util.IntParam(c.Query("page"), 1, util.MaxPage),
		Limit:    util.IntParam(c.Query("limit"), r.Paging.PageSize, r.Paging.MaxPageSize),
	}
	if v, ok := util.BoolParam(c.Query("active")); ok {
		q.Active = &v
	}
	return q
}

func (r *Resource[T, PT]) List(c *gin.Context) {
	q := r.listQuery(c)
	items, total, err := r.Repo.List(c.Request.Context(), q)
	if err != nil {
		r.fail(c, err)
		return
	}
	util.Success(c, util.Response{
		"items":      items,
		"pagination": util.NewPagination(q.Page, q.Limit, total),
	})
}

func (r *Resource[T, PT]) Get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	item, err := r.Repo.Get(c.Request.Context(), id)
	if err != nil {
		r.fail(c, err)
		return
	}
	util.Success(c, util.Response{"item": item})
}

func (r *Resource[T, PT]) Create(c *gin.Context) {
	item := PT(new(T))
	if d, ok := any(item).(defaulter); ok {
		d.SetDefaults()
	}
	if err := bindBody(c, item); err != nil {
		r.fail(c, err)
		return
	}
	if err := item.Validate(); err != nil {
		r.fail(c, err)
		return
	}
	if err := r.Repo.Create(c.Request.Context(), (*T)(item)); err != nil {
		r.fail(c, err)
		return
	}
	util.SuccessStatus(c, http.StatusCreated, util.Response{"item": item})
}

func (r *Resource[T, PT]) Update(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	existing, err := r.Repo.Get(ctx, id)
	if err != nil {
		r.fail(c, err)
		return
	}
	item := PT(existing)
	if err := bindBody(c, item); err != nil {
		r.fail(c, err)
		return
	}
	if err := item.Validate(); err != nil {
		r.fail(c, err)
		return
	}
	if err := r.Repo.Save(ctx, existing); err != nil {
		r.fail(c, err)
		return
	}
	util.Success(c, util.Response{"item": item})
}

func (r *Resource[T, PT]) Delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := r.Repo.Delete(c.Request.Context(), id); err != nil {
		r.fail(c, err)
		return
	}
	util.Success(c, util.Response{"message": r.Name + " deleted"})
}

// Register mounts the public reads on pub and the mutations on admin.
func (r *Resource[T, PT]) Register(pub, admin gin.IRoutes, path string) {
	pub.GET(path, r.List)
	pub.GET(path+"/:id", r.Get)
	admin.POST(path, r.Create)
	admin.PUT(path+"/:id", r.Update)
	admin.DELETE(path+"/:id", r.Delete)
}

// SlugRepository is implemented by repositories of tables with a slug column.
type SlugRepository[T any] interface {
	BySlug(ctx context.Context, slug string) (*T, error)
}

// BySlug serves one active item by slug and counts the read.
func BySlug[T any](repo SlugRepository[T], log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		item, err := repo.BySlug(c.Request.Context(), c.Param("slug"))
		if err != nil {
			if apperr.KindOf(err) == apperr.KindUpstream {
				log.Error("load by slug failed", zap.String("slug", c.Param("slug")), zap.Error(err))
			}
			util.Fail(c, err)
			return
		}
		util.Success(c, util.Response{"item": item})
	}
}
