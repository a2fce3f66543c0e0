package handlers

import (
	"encoding/json"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/ppfood/api/internal/application"
	"github.com/ppfood/api/internal/domain/entity"
	repo "github.com/ppfood/api/internal/domain/repository"
	"github.com/ppfood/api/pkg/apperr"
	"github.com/ppfood/api/pkg/response"
)

type ProductHandler struct {
	Svc    *application.ProductService
	Logger *logrus.Logger
}

func NewProductHandler(svc *application.ProductService, logger *logrus.Logger) *ProductHandler {
	return &ProductHandler{Svc: svc, Logger: logger}
}

func (h *ProductHandler) List(c *gin.Context) {
	f := repo.ProductFilter{Query: strings.TrimSpace(c.Query("q"))}

	if raw := c.Query("category_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			response.Error[any](c, http.StatusBadRequest, "invalid category_id", nil)
			return
		}
		f.CategoryID = &id
	}
	avail, err := parseFormBool(c.Query("is_available"))
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	f.IsAvailable = avail
	rec, err := parseFormBool(c.Query("is_recommended"))
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	f.IsRecommended = rec

	products, err := h.Svc.List(c.Request.Context(), f)
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, products, "products", gin.H{"count": len(products)})
}

func (h *ProductHandler) Get(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	p, err := h.Svc.Get(c.Request.Context(), id)
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, p, "product", nil)
}

// Create accepts multipart form data: product fields plus up to 5 image files
// under "images" and an optional "options" field carrying a JSON array.
func (h *ProductHandler) Create(c *gin.Context) {
	nameTH := strings.TrimSpace(c.PostForm("name_th"))
	if nameTH == "" {
		fail(c, h.Logger, apperr.Validation(gin.H{"name_th": "name_th is required"}))
		return
	}
	price, err := strconv.ParseFloat(c.PostForm("price"), 64)
	if err != nil || price < 0 {
		fail(c, h.Logger, apperr.Validation(gin.H{"price": "price must be a non-negative number"}))
		return
	}
	categoryID, err := strconv.ParseInt(c.PostForm("category_id"), 10, 64)
	if err != nil || categoryID <= 0 {
		fail(c, h.Logger, apperr.Validation(gin.H{"category_id": "category_id is required"}))
		return
	}

	p := &entity.Product{
		CategoryID:    categoryID,
		NameTH:        nameTH,
		NameEN:        strings.TrimSpace(c.PostForm("name_en")),
		DescriptionTH: c.PostForm("description_th"),
		DescriptionEN: c.PostForm("description_en"),
		Price:         price,
		IsAvailable:   true,
	}
	if v, err := parseFormBool(c.PostForm("is_available")); err != nil {
		fail(c, h.Logger, err)
		return
	} else if v != nil {
		p.IsAvailable = *v
	}
	if v, err := parseFormBool(c.PostForm("is_recommended")); err != nil {
		fail(c, h.Logger, err)
		return
	} else if v != nil {
		p.IsRecommended = *v
	}

	options, err := parseOptionsField(c.PostForm("options"))
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	if options != nil {
		p.Options = *options
	}

	images, closers, err := formImages(c)
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	defer closeAll(closers)

	created, err := h.Svc.Create(c.Request.Context(), p, images)
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusCreated, created, "product created", nil)
}

func (h *ProductHandler) Update(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	var upd repo.ProductUpdate
	setStr := func(field string, dst **string) {
		if v, exists := c.GetPostForm(field); exists {
			s := v
			*dst = &s
		}
	}
	setStr("name_th", &upd.NameTH)
	setStr("name_en", &upd.NameEN)
	setStr("description_th", &upd.DescriptionTH)
	setStr("description_en", &upd.DescriptionEN)

	if raw, exists := c.GetPostForm("price"); exists {
		price, err := strconv.ParseFloat(raw, 64)
		if err != nil || price < 0 {
			fail(c, h.Logger, apperr.Validation(gin.H{"price": "price must be a non-negative number"}))
			return
		}
		upd.Price = &price
	}
	if raw, exists := c.GetPostForm("category_id"); exists {
		cid, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || cid <= 0 {
			fail(c, h.Logger, apperr.Validation(gin.H{"category_id": "invalid category_id"}))
			return
		}
		upd.CategoryID = &cid
	}
	var err error
	if upd.IsAvailable, err = parseFormBool(c.PostForm("is_available")); err != nil {
		fail(c, h.Logger, err)
		return
	}
	if upd.IsRecommended, err = parseFormBool(c.PostForm("is_recommended")); err != nil {
		fail(c, h.Logger, err)
		return
	}
	if upd.DeleteImageIDs, err = parseIDList(c.PostForm("delete_image_ids")); err != nil {
		fail(c, h.Logger, err)
		return
	}

	options, err := parseOptionsField(c.PostForm("options"))
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	upd.Options = options

	images, closers, err := formImages(c)
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	defer closeAll(closers)

	updated, err := h.Svc.Update(c.Request.Context(), id, upd, images)
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, updated, "product updated", nil)
}

func (h *ProductHandler) Delete(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	if err := h.Svc.Delete(c.Request.Context(), id); err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success[any](c, http.StatusOK, gin.H{"deleted": true}, "product deleted", nil)
}

func (h *ProductHandler) DeleteImage(c *gin.Context) {
	id, ok := idParam(c, "imgId")
	if !ok {
		return
	}
	if err := h.Svc.DeleteImage(c.Request.Context(), id); err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success[any](c, http.StatusOK, gin.H{"deleted": true}, "image deleted", nil)
}

// parseOptionsField decodes the "options" form field, a JSON array of option
// groups. Returns nil when the field is absent (leave options untouched).
func parseOptionsField(raw string) (*[]entity.ProductOption, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	var options []entity.ProductOption
	if err := json.Unmarshal([]byte(raw), &options); err != nil {
		return nil, apperr.BadRequest("options must be a JSON array")
	}
	return &options, nil
}

func parseIDList(raw string) ([]int64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	var ids []int64
	for _, part := range strings.Split(raw, ",") {
		id, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64)
		if err != nil {
			return nil, apperr.BadRequest("invalid id list")
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func formImages(c *gin.Context) ([]application.ImageUpload, []multipart.File, error) {
	form, err := c.MultipartForm()
	if err != nil {
		// No multipart body at all is fine for requests without images.
		return nil, nil, nil
	}
	files := form.File["images"]
	uploads := make([]application.ImageUpload, 0, len(files))
	closers := make([]multipart.File, 0, len(files))
	for _, fh := range files {
		src, err := fh.Open()
		if err != nil {
			closeAll(closers)
			return nil, nil, err
		}
		closers = append(closers, src)
		uploads = append(uploads, application.ImageUpload{
			Reader:      src,
			Filename:    fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
		})
	}
	return uploads, closers, nil
}

func closeAll(files []multipart.File) {
	for _, f := range files {
		_ = f.Close()
	}
}
