package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/yawerky/houseOfGul-sub000/internal/domain"
	"github.com/yawerky/houseOfGul-sub000/internal/repository"
	"github.com/yawerky/houseOfGul-sub000/internal/service"
	"github.com/yawerky/houseOfGul-sub000/pkg/errors"
)

const (
	defaultProductLimit = 24
	maxProductLimit     = 100
)

// HandleListProducts handles GET /v1/products.
// Query: category, occasion (slugs), featured (true|false), q, limit (1-100).
// Out-of-stock products are never listed.
func HandleListProducts(repos *repository.Repositories, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		filter := repository.ProductFilter{
			CategorySlug: strings.TrimSpace(c.Query("category")),
			OccasionSlug: strings.TrimSpace(c.Query("occasion")),
			Search:       strings.TrimSpace(c.Query("q")),
			Limit:        queryInt(c, "limit", defaultProductLimit, 1, maxProductLimit),
		}
		if raw := c.Query("featured"); raw != "" {
			featured, err := strconv.ParseBool(raw)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "featured must be true or false"})
				return
			}
			filter.Featured = &featured
		}

		products, err := repos.Product.Search(c.Request.Context(), filter)
		if err != nil {
			respondError(c, logger, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"products": products, "count": len(products)})
	}
}

// HandleGetProduct handles GET /v1/products/:slug
func HandleGetProduct(repos *repository.Repositories, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		product, err := repos.Product.GetBySlug(c.Request.Context(), c.Param("slug"))
		if err != nil {
			respondError(c, logger, err)
			return
		}
		c.JSON(http.StatusOK, product)
	}
}

// HandleListCategories handles GET /v1/categories
func HandleListCategories(repos *repository.Repositories, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		categories, err := repos.Category.List(c.Request.Context())
		if err != nil {
			respondError(c, logger, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"categories": categories})
	}
}

// HandleListOccasions handles GET /v1/occasions
func HandleListOccasions(repos *repository.Repositories, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		occasions, err := repos.Occasion.List(c.Request.Context())
		if err != nil {
			respondError(c, logger, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"occasions": occasions})
	}
}

// HandleListBlogPosts handles GET /v1/blog
func HandleListBlogPosts(repos *repository.Repositories, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		posts, err := repos.BlogPost.ListPublished(c.Request.Context(), queryInt(c, "limit", 20, 1, 100))
		if err != nil {
			respondError(c, logger, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"posts": posts})
	}
}

// HandleGetBlogPost handles GET /v1/blog/:slug. Drafts are not visible.
func HandleGetBlogPost(repos *repository.Repositories, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		slug := c.Param("slug")
		post, err := repos.BlogPost.GetBySlug(c.Request.Context(), slug)
		if err == nil && !post.Published {
			err = &errors.ErrNotFound{Resource: "blog post", ID: slug}
		}
		if err != nil {
			respondError(c, logger, err)
			return
		}
		c.JSON(http.StatusOK, post)
	}
}

// HandleListBanners handles GET /v1/banners
func HandleListBanners(repos *repository.Repositories, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		banners, err := repos.Banner.ListActive(c.Request.Context())
		if err != nil {
			respondError(c, logger, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"banners": banners})
	}
}

// HandleListTestimonials handles GET /v1/testimonials
func HandleListTestimonials(repos *repository.Repositories, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		testimonials, err := repos.Testimonial.ListActive(c.Request.Context())
		if err != nil {
			respondError(c, logger, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"testimonials": testimonials})
	}
}

// InquiryRequest is the public contact form
type InquiryRequest struct {
	Name    string `json:"name" binding:"required"`
	Email   string `json:"email" binding:"required,email"`
	Phone   string `json:"phone"`
	Subject string `json:"subject"`
	Message string `json:"message" binding:"required"`
}

// HandleCreateInquiry handles POST /v1/inquiries
func HandleCreateInquiry(repos *repository.Repositories, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req InquiryRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "validation failed", err)
			return
		}
		inquiry := &domain.Inquiry{
			Name:    req.Name,
			Email:   req.Email,
			Phone:   req.Phone,
			Subject: req.Subject,
			Message: req.Message,
		}
		if err := service.PrepareInquiry(inquiry); err != nil {
			respondError(c, logger, err)
			return
		}
		if err := repos.Inquiry.Create(c.Request.Context(), inquiry); err != nil {
			respondError(c, logger, err)
			return
		}
		logger.Info("Inquiry received", zap.String("inquiry_id", inquiry.ID.String()))
		c.JSON(http.StatusCreated, gin.H{"id": inquiry.ID.String()})
	}
}
