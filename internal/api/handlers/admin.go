package handlers

import (
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/tealeg/xlsx"
	"go.uber.org/zap"

	"github.com/yawerky/houseOfGul-sub000/internal/pincode"
	"github.com/yawerky/houseOfGul-sub000/internal/repository"
	"github.com/yawerky/houseOfGul-sub000/internal/service"
	"github.com/yawerky/houseOfGul-sub000/internal/sheets"
)

const maxImportBytes = 5 << 20

// Resource describes one admin-managed entity for the generic CRUD handlers
type Resource[T any] struct {
	Name    string // singular, used in messages
	Plural  string // list key in the JSON response
	Repo    repository.CRUDRepository[T]
	Prepare func(*T) error
	// Preserve copies fields an admin write must not set from the stored
	// record; on create the stored record is the zero value
	Preserve func(stored, updated *T)
}

// entity is satisfied by pointers to types embedding domain.Model
type entity[T any] interface {
	*T
	GetID() uuid.UUID
	SetID(uuid.UUID)
}

// HandleAdminList handles GET /v1/admin/<plural>
func HandleAdminList[T any](res Resource[T], logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		items, err := res.Repo.List(c.Request.Context())
		if err != nil {
			respondError(c, logger, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{res.Plural: items, "count": len(items)})
	}
}

// HandleAdminGet handles GET /v1/admin/<plural>/:id
func HandleAdminGet[T any](res Resource[T], logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramID(c)
		if !ok {
			return
		}
		item, err := res.Repo.GetByID(c.Request.Context(), id)
		if err != nil {
			respondError(c, logger, err)
			return
		}
		c.JSON(http.StatusOK, item)
	}
}

// HandleAdminCreate handles POST /v1/admin/<plural>. A unique column that is
// already taken is answered with 409.
func HandleAdminCreate[T any, PT entity[T]](res Resource[T], logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		item := PT(new(T))
		if err := c.ShouldBindJSON(item); err != nil {
			badRequest(c, "validation failed", err)
			return
		}
		// ids are always assigned by storage
		item.SetID(uuid.Nil)
		if res.Preserve != nil {
			res.Preserve(new(T), item)
		}
		if res.Prepare != nil {
			if err := res.Prepare(item); err != nil {
				respondError(c, logger, err)
				return
			}
		}
		if err := res.Repo.Create(c.Request.Context(), item); err != nil {
			respondError(c, logger, err)
			return
		}
		logger.Info("Admin created "+res.Name, zap.String("id", item.GetID().String()))
		c.JSON(http.StatusCreated, item)
	}
}

// HandleAdminUpdate handles PUT /v1/admin/<plural>/:id. The body is applied
// over the stored record, so omitted fields keep their value.
func HandleAdminUpdate[T any, PT entity[T]](res Resource[T], logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramID(c)
		if !ok {
			return
		}
		stored, err := res.Repo.GetByID(c.Request.Context(), id)
		if err != nil {
			respondError(c, logger, err)
			return
		}

		updated := PT(new(T))
		*updated = *stored
		if err := c.ShouldBindJSON(updated); err != nil {
			badRequest(c, "validation failed", err)
			return
		}
		updated.SetID(id)
		if res.Preserve != nil {
			res.Preserve(stored, updated)
		}
		if res.Prepare != nil {
			if err := res.Prepare(updated); err != nil {
				respondError(c, logger, err)
				return
			}
		}
		if err := res.Repo.Update(c.Request.Context(), updated); err != nil {
			respondError(c, logger, err)
			return
		}
		// storage may keep columns the body carried, answer with what was saved
		if saved, err := res.Repo.GetByID(c.Request.Context(), id); err == nil {
			c.JSON(http.StatusOK, saved)
			return
		}
		c.JSON(http.StatusOK, updated)
	}
}

// HandleAdminDelete handles DELETE /v1/admin/<plural>/:id
func HandleAdminDelete[T any](res Resource[T], logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramID(c)
		if !ok {
			return
		}
		if err := res.Repo.Delete(c.Request.Context(), id); err != nil {
			respondError(c, logger, err)
			return
		}
		logger.Info("Admin deleted "+res.Name, zap.String("id", id.String()))
		c.Status(http.StatusNoContent)
	}
}

// RegisterResource mounts list/get/create/update/delete for res under group
func RegisterResource[T any, PT entity[T]](group *gin.RouterGroup, path string, res Resource[T], logger *zap.Logger) {
	group.GET(path, HandleAdminList(res, logger))
	group.GET(path+"/:id", HandleAdminGet(res, logger))
	group.POST(path, HandleAdminCreate[T, PT](res, logger))
	group.PUT(path+"/:id", HandleAdminUpdate[T, PT](res, logger))
	group.DELETE(path+"/:id", HandleAdminDelete(res, logger))
}

// HandleSearchPincodes handles GET /v1/admin/pincodes/search?q=&limit=&offset=
func HandleSearchPincodes(repos *repository.Repositories, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit := queryInt(c, "limit", 50, 1, 500)
		offset := queryInt(c, "offset", 0, 0, 1<<30)
		list, err := repos.Pincode.Search(c.Request.Context(), strings.TrimSpace(c.Query("q")), limit, offset)
		if err != nil {
			respondError(c, logger, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"pincodes": list, "count": len(list), "limit": limit, "offset": offset})
	}
}

// MarkReadRequest toggles the read flag of an inquiry
type MarkReadRequest struct {
	IsRead *bool `json:"is_read"`
}

// HandleMarkInquiryRead handles PATCH /v1/admin/inquiries/:id/read.
// An empty body marks the inquiry read.
func HandleMarkInquiryRead(repos *repository.Repositories, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramID(c)
		if !ok {
			return
		}
		var req MarkReadRequest
		if c.Request.ContentLength != 0 {
			if err := c.ShouldBindJSON(&req); err != nil {
				badRequest(c, "validation failed", err)
				return
			}
		}
		read := true
		if req.IsRead != nil {
			read = *req.IsRead
		}
		if err := repos.Inquiry.MarkRead(c.Request.Context(), id, read); err != nil {
			respondError(c, logger, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"id": id.String(), "is_read": read})
	}
}

// HandleImportPincodes handles POST /v1/admin/pincodes/import. The CSV comes
// either as multipart field "file" or as the raw request body.
func HandleImportPincodes(directory *pincode.Directory, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		text, err := readUpload(c)
		if err != nil {
			badRequest(c, "could not read CSV", err)
			return
		}
		if strings.TrimSpace(text) == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "CSV is empty"})
			return
		}

		result, err := directory.BulkImport(c.Request.Context(), text)
		if errors.Is(err, pincode.ErrNoDataRows) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "CSV has no data rows"})
			return
		}
		if err != nil {
			respondError(c, logger, err)
			return
		}
		c.JSON(http.StatusOK, result)
	}
}

func readUpload(c *gin.Context) (string, error) {
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		fh, err := c.FormFile("file")
		if err != nil {
			return "", err
		}
		f, err := fh.Open()
		if err != nil {
			return "", err
		}
		defer f.Close()
		b, err := io.ReadAll(io.LimitReader(f, maxImportBytes))
		return string(b), err
	}
	b, err := io.ReadAll(io.LimitReader(c.Request.Body, maxImportBytes))
	return string(b), err
}

// ImportSheetRequest points at a shared Google Sheet; empty uses the configured sheet
type ImportSheetRequest struct {
	URL string `json:"url"`
}

// HandleImportProducts handles POST /v1/admin/products/import-sheet
func HandleImportProducts(importer *service.ProductImporter, defaultURL string, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req ImportSheetRequest
		if c.Request.ContentLength != 0 {
			if err := c.ShouldBindJSON(&req); err != nil {
				badRequest(c, "validation failed", err)
				return
			}
		}
		url := strings.TrimSpace(req.URL)
		if url == "" {
			url = defaultURL
		}
		if url == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "url is required"})
			return
		}

		result, err := importer.ImportFromURL(c.Request.Context(), url)
		switch {
		case errors.Is(err, sheets.ErrInvalidSheetURL):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		case errors.Is(err, sheets.ErrSheetNotShared):
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"error": "sheet is not publicly shared",
				"code":  "sheet_not_shared",
			})
			return
		case errors.Is(err, sheets.ErrNoHeader):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		case err != nil:
			respondError(c, logger, err)
			return
		}
		c.JSON(http.StatusOK, result)
	}
}

// HandleExportProducts handles GET /v1/admin/products/export
func HandleExportProducts(repos *repository.Repositories, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		products, err := repos.Product.Search(c.Request.Context(), repository.ProductFilter{IncludeOutOfStock: true})
		if err != nil {
			respondError(c, logger, err)
			return
		}

		file := xlsx.NewFile()
		sheet, err := file.AddSheet("Products")
		if err != nil {
			logger.Error("Failed to create product sheet", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create export"})
			return
		}

		headers := []string{
			"ID", "Slug", "Name", "Price", "Compare At", "Stock", "In Stock",
			"Featured", "Image", "Category ID", "Occasion ID", "Updated At",
		}
		headerRow := sheet.AddRow()
		for _, h := range headers {
			headerRow.AddCell().SetValue(h)
		}

		for _, p := range products {
			row := sheet.AddRow()
			row.AddCell().SetValue(p.ID.String())
			row.AddCell().SetValue(p.Slug)
			row.AddCell().SetValue(p.Name)
			row.AddCell().SetValue(p.Price.StringFixed(2))
			compareAt := ""
			if p.CompareAtPrice.Valid {
				compareAt = p.CompareAtPrice.Decimal.StringFixed(2)
			}
			row.AddCell().SetValue(compareAt)
			row.AddCell().SetValue(p.Stock)
			row.AddCell().SetValue(p.InStock)
			row.AddCell().SetValue(p.Featured)
			row.AddCell().SetValue(p.ImageURL)
			row.AddCell().SetValue(optionalID(p.CategoryID))
			row.AddCell().SetValue(optionalID(p.OccasionID))
			row.AddCell().SetValue(p.UpdatedAt.Format("2006-01-02 15:04:05"))
		}

		writeWorkbook(c, file, "products-"+time.Now().Format("20060102")+".xlsx", logger)
	}
}

func optionalID(id *uuid.UUID) string {
	if id == nil {
		return ""
	}
	return id.String()
}
