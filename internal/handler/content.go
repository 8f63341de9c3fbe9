package handler

import (
	"thai-travel-portal/internal/models"
	"thai-travel-portal/internal/repository"
	"thai-travel-portal/internal/util"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ContentHandler groups the CRUD resources of the portal.
type ContentHandler struct {
	Destinations  *Resource[models.Destination, *models.Destination]
	Music         *Resource[models.MusicTrack, *models.MusicTrack]
	News          *Resource[models.News, *models.News]
	Widgets       *Resource[models.NewsWidget, *models.NewsWidget]
	BlogPosts     *Resource[models.BlogPost, *models.BlogPost]
	BlogCats      *Resource[models.BlogCategory, *models.BlogCategory]
	Notifications *Resource[models.PartnerNotification, *models.PartnerNotification]
	HeroSlides    *Resource[models.HeroSlide, *models.HeroSlide]

	newsRepo   *repository.GormRepository[models.News]
	blogRepo   *repository.GormRepository[models.BlogPost]
	widgetRepo repository.WidgetRepository
	log        *zap.Logger
}

func NewContentHandler(db *gorm.DB, paging Paging, log *zap.Logger) *ContentHandler {
	newsRepo := repository.NewGormRepository[models.News](db, repository.Options{
		SearchColumns:  []string{"title", "summary", "content"},
		CategoryColumn: "category",
	})
	blogRepo := repository.NewGormRepository[models.BlogPost](db, repository.Options{
		SearchColumns:  []string{"title", "excerpt", "content"},
		CategoryColumn: "category",
	})
	widgetRepo := repository.NewWidgetRepository(db)

	return &ContentHandler{
		Destinations: NewResource[models.Destination, *models.Destination]("destination",
			repository.NewGormRepository[models.Destination](db, repository.Options{
				SearchColumns:  []string{"name", "description", "region"},
				CategoryColumn: "category",
				Sorted:         true,
			}), paging, log),
		Music: NewResource[models.MusicTrack, *models.MusicTrack]("music track",
			repository.NewGormRepository[models.MusicTrack](db, repository.Options{
				SearchColumns:  []string{"title", "artist"},
				CategoryColumn: "category",
				Sorted:         true,
			}), paging, log),
		News:      NewResource[models.News, *models.News]("news", newsRepo, paging, log),
		Widgets:   NewResource[models.NewsWidget, *models.NewsWidget]("news widget", widgetRepo, paging, log),
		BlogPosts: NewResource[models.BlogPost, *models.BlogPost]("blog post", blogRepo, paging, log),
		BlogCats: NewResource[models.BlogCategory, *models.BlogCategory]("blog category",
			repository.NewGormRepository[models.BlogCategory](db, repository.Options{
				SearchColumns: []string{"name", "description"},
				Sorted:        true,
			}), paging, log),
		Notifications: NewResource[models.PartnerNotification, *models.PartnerNotification]("partner notification",
			repository.NewGormRepository[models.PartnerNotification](db, repository.Options{
				SearchColumns: []string{"title", "content"},
			}), paging, log),
		HeroSlides: NewResource[models.HeroSlide, *models.HeroSlide]("hero slide",
			repository.NewGormRepository[models.HeroSlide](db, repository.Options{
				SearchColumns: []string{"title", "subtitle"},
				Sorted:        true,
			}), paging, log),

		newsRepo:   newsRepo,
		blogRepo:   blogRepo,
		widgetRepo: widgetRepo,
		log:        log,
	}
}

// WidgetsByPosition lists the active widgets of one slot.
func (h *ContentHandler) WidgetsByPosition(c *gin.Context) {
	widgets, err := h.widgetRepo.ByPosition(c.Request.Context(), c.Param("position"))
	if err != nil {
		h.log.Error("list widgets failed", zap.Error(err))
		util.Fail(c, err)
		return
	}
	util.Success(c, util.Response{"items": widgets})
}

// Register mounts every content route. admin must already require the admin role.
func (h *ContentHandler) Register(pub, admin gin.IRoutes) {
	h.Destinations.Register(pub, admin, "/destinations")
	h.Music.Register(pub, admin, "/music-tracks")
	h.News.Register(pub, admin, "/news")
	h.Widgets.Register(pub, admin, "/news-widgets")
	h.BlogPosts.Register(pub, admin, "/blog-posts")
	h.BlogCats.Register(pub, admin, "/blog-categories")
	h.Notifications.Register(pub, admin, "/partner-notifications")
	h.HeroSlides.Register(pub, admin, "/hero-slides")

	pub.GET("/news/slug/:slug", BySlug[models.News](h.newsRepo, h.log))
	pub.GET("/blog-posts/slug/:slug", BySlug[models.BlogPost](h.blogRepo, h.log))
	pub.GET("/news-widgets/position/:position", h.WidgetsByPosition)
}
