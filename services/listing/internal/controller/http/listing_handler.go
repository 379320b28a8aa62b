package http

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"estate-market/pkg/logger"
	"estate-market/services/listing/internal/entity"
	"estate-market/services/listing/internal/search"
	"estate-market/services/listing/internal/usecase"

	"github.com/gin-gonic/gin"
)

type ListingHandler struct {
	listingUseCase usecase.ListingUseCase
	logger         *logger.Logger
}

func NewListingHandler(listingUseCase usecase.ListingUseCase, logger *logger.Logger) *ListingHandler {
	return &ListingHandler{
		listingUseCase: listingUseCase,
		logger:         logger,
	}
}

func viewerFrom(c *gin.Context) entity.Viewer {
	return entity.Viewer{UserID: c.GetString("user_id"), Role: c.GetString("user_role")}
}

// respondError maps domain errors to status codes; anything else is a 500
// with the given message.
func (h *ListingHandler) respondError(c *gin.Context, err error, message string) {
	switch {
	case errors.Is(err, entity.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Listing not found"})
	case errors.Is(err, entity.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, entity.ErrInvalidTransition):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, entity.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		h.logger.Error("[LISTING] %s: %v", message, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": message})
	}
}

type ListingRequest struct {
	Title        string     `form:"title" json:"title" binding:"required"`
	Description  string     `form:"description" json:"description"`
	PriceCents   int64      `form:"price_cents" json:"price_cents" binding:"required"`
	PropertyType string     `form:"property_type" json:"property_type" binding:"required"`
	ListingType  string     `form:"listing_type" json:"listing_type" binding:"required"`
	Street       string     `form:"street" json:"street"`
	City         string     `form:"city" json:"city"`
	State        string     `form:"state" json:"state"`
	PostalCode   string     `form:"postal_code" json:"postal_code"`
	Latitude     *float64   `form:"latitude" json:"latitude"`
	Longitude    *float64   `form:"longitude" json:"longitude"`
	Bedrooms     int        `form:"bedrooms" json:"bedrooms"`
	Bathrooms    float64    `form:"bathrooms" json:"bathrooms"`
	SquareFeet   int        `form:"square_feet" json:"square_feet"`
	LotSize      int        `form:"lot_size" json:"lot_size"`
	YearBuilt    int        `form:"year_built" json:"year_built"`
	ContactName  string     `form:"contact_name" json:"contact_name"`
	ContactPhone string     `form:"contact_phone" json:"contact_phone"`
	ContactEmail string     `form:"contact_email" json:"contact_email"`
	Status       string     `form:"status" json:"status"`
	ExpiresAt    *time.Time `form:"expires_at" json:"expires_at" time_format:"2006-01-02T15:04:05Z07:00"`
	AmenityIDs   []string   `form:"amenity_ids" json:"amenity_ids"`
}

func (r ListingRequest) toInput() entity.ListingInput {
	return entity.ListingInput{
		Title:        r.Title,
		Description:  r.Description,
		PriceCents:   r.PriceCents,
		PropertyType: entity.PropertyType(r.PropertyType),
		ListingType:  entity.ListingType(r.ListingType),
		Street:       r.Street,
		City:         r.City,
		State:        r.State,
		PostalCode:   r.PostalCode,
		Latitude:     r.Latitude,
		Longitude:    r.Longitude,
		Bedrooms:     r.Bedrooms,
		Bathrooms:    r.Bathrooms,
		SquareFeet:   r.SquareFeet,
		LotSize:      r.LotSize,
		YearBuilt:    r.YearBuilt,
		ContactName:  r.ContactName,
		ContactPhone: r.ContactPhone,
		ContactEmail: r.ContactEmail,
		Status:       entity.Status(r.Status),
		ExpiresAt:    r.ExpiresAt,
		AmenityIDs:   r.AmenityIDs,
	}
}

// UpdateListingRequest only carries the fields the client sent.
type UpdateListingRequest struct {
	Title        *string    `form:"title" json:"title"`
	Description  *string    `form:"description" json:"description"`
	PriceCents   *int64     `form:"price_cents" json:"price_cents"`
	PropertyType *string    `form:"property_type" json:"property_type"`
	ListingType  *string    `form:"listing_type" json:"listing_type"`
	Street       *string    `form:"street" json:"street"`
	City         *string    `form:"city" json:"city"`
	State        *string    `form:"state" json:"state"`
	PostalCode   *string    `form:"postal_code" json:"postal_code"`
	Latitude     *float64   `form:"latitude" json:"latitude"`
	Longitude    *float64   `form:"longitude" json:"longitude"`
	Bedrooms     *int       `form:"bedrooms" json:"bedrooms"`
	Bathrooms    *float64   `form:"bathrooms" json:"bathrooms"`
	SquareFeet   *int       `form:"square_feet" json:"square_feet"`
	LotSize      *int       `form:"lot_size" json:"lot_size"`
	YearBuilt    *int       `form:"year_built" json:"year_built"`
	ContactName  *string    `form:"contact_name" json:"contact_name"`
	ContactPhone *string    `form:"contact_phone" json:"contact_phone"`
	ContactEmail *string    `form:"contact_email" json:"contact_email"`
	ExpiresAt    *time.Time `form:"expires_at" json:"expires_at" time_format:"2006-01-02T15:04:05Z07:00"`
	AmenityIDs   *[]string  `form:"-" json:"amenity_ids"`
}

func (r UpdateListingRequest) toPatch() entity.ListingPatch {
	patch := entity.ListingPatch{
		Title:        r.Title,
		Description:  r.Description,
		PriceCents:   r.PriceCents,
		Street:       r.Street,
		City:         r.City,
		State:        r.State,
		PostalCode:   r.PostalCode,
		Latitude:     r.Latitude,
		Longitude:    r.Longitude,
		Bedrooms:     r.Bedrooms,
		Bathrooms:    r.Bathrooms,
		SquareFeet:   r.SquareFeet,
		LotSize:      r.LotSize,
		YearBuilt:    r.YearBuilt,
		ContactName:  r.ContactName,
		ContactPhone: r.ContactPhone,
		ContactEmail: r.ContactEmail,
		ExpiresAt:    r.ExpiresAt,
		AmenityIDs:   r.AmenityIDs,
	}
	if r.PropertyType != nil {
		pt := entity.PropertyType(*r.PropertyType)
		patch.PropertyType = &pt
	}
	if r.ListingType != nil {
		lt := entity.ListingType(*r.ListingType)
		patch.ListingType = &lt
	}
	return patch
}

func isMultipart(c *gin.Context) bool {
	return strings.HasPrefix(c.ContentType(), "multipart/form-data")
}

// imageUploads collects the "images" files of a multipart request.
func imageUploads(c *gin.Context) ([]entity.ImageUpload, error) {
	if !isMultipart(c) {
		return nil, nil
	}
	form, err := c.MultipartForm()
	if err != nil {
		return nil, err
	}

	files := form.File["images"]
	uploads := make([]entity.ImageUpload, 0, len(files))
	for _, fh := range files {
		header := fh
		uploads = append(uploads, entity.ImageUpload{
			Filename:    header.Filename,
			ContentType: header.Header.Get("Content-Type"),
			AltText:     c.PostForm("alt_text"),
			Open:        func() (io.ReadCloser, error) { return header.Open() },
		})
	}
	return uploads, nil
}

func optionalInt(c *gin.Context, name string) (*int, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %s must be an integer", entity.ErrInvalidInput, name)
	}
	return &v, nil
}

func optionalInt64(c *gin.Context, name string) (*int64, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: %s must be an integer", entity.ErrInvalidInput, name)
	}
	return &v, nil
}

// parseQuery reads listing filters from the query string. Prices are in cents.
func parseQuery(c *gin.Context) (search.Query, error) {
	q := search.Query{
		Filter: search.Filter{
			Search:       c.Query("search"),
			PropertyType: entity.PropertyType(c.Query("property_type")),
			ListingType:  entity.ListingType(c.Query("listing_type")),
			Location:     c.Query("location"),
		},
		City:     c.Query("city"),
		State:    c.Query("state"),
		Status:   entity.Status(c.Query("status")),
		SellerID: c.Query("seller_id"),
	}

	var err error
	if q.Bedrooms, err = optionalInt(c, "bedrooms"); err != nil {
		return q, err
	}
	if q.PriceMin, err = optionalInt64(c, "min_price"); err != nil {
		return q, err
	}
	if q.PriceMax, err = optionalInt64(c, "max_price"); err != nil {
		return q, err
	}
	if raw := c.Query("bathrooms"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return q, fmt.Errorf("%w: bathrooms must be a number", entity.ErrInvalidInput)
		}
		q.MinBathrooms = &v
	}
	if raw := c.Query("featured"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return q, fmt.Errorf("%w: featured must be true or false", entity.ErrInvalidInput)
		}
		q.Featured = &v
	}
	if q.Sort, err = search.ParseSortOrder(c.Query("sort")); err != nil {
		return q, err
	}

	if q.PropertyType != "" && !q.PropertyType.Valid() {
		return q, fmt.Errorf("%w: unknown property type %q", entity.ErrInvalidInput, q.PropertyType)
	}
	if q.ListingType != "" && !q.ListingType.Valid() {
		return q, fmt.Errorf("%w: unknown listing type %q", entity.ErrInvalidInput, q.ListingType)
	}

	if limitStr := c.Query("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 {
			q.Limit = l
		}
	}
	if offsetStr := c.Query("offset"); offsetStr != "" {
		if o, err := strconv.Atoi(offsetStr); err == nil && o >= 0 {
			q.Offset = o
		}
	}
	return q, nil
}

func listResponse(listings []*entity.Listing, total int64, q search.Query) gin.H {
	if listings == nil {
		listings = []*entity.Listing{}
	}
	return gin.H{"listings": listings, "count": len(listings), "total": total, "offset": q.Offset}
}

// ListListings godoc
// @Summary      List listings
// @Description  Search listings. Anonymous and non-admin callers see active listings unless they ask for sold or rented; admins see every status.
// @Tags         listings
// @Produce      json
// @Param        search query string false "Substring of title, city or state"
// @Param        property_type query string false "Property type" Enums(house, apartment, condo, studio, commercial, land)
// @Param        listing_type query string false "Listing type" Enums(rent, sale)
// @Param        min_price query int false "Minimum price in cents"
// @Param        max_price query int false "Maximum price in cents"
// @Param        bedrooms query int false "Minimum bedrooms"
// @Param        bathrooms query number false "Minimum bathrooms"
// @Param        city query string false "City substring"
// @Param        state query string false "State substring"
// @Param        location query string false "Substring of city, state or postal code"
// @Param        status query string false "Listing status"
// @Param        featured query bool false "Featured only"
// @Param        seller_id query string false "Seller ID"
// @Param        sort query string false "Sort order" Enums(newest, oldest, price-low, price-high)
// @Param        limit query int false "Page size (max 100)"
// @Param        offset query int false "Offset for pagination"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /listings [get]
func (h *ListingHandler) ListListings(c *gin.Context) {
	q, err := parseQuery(c)
	if err != nil {
		h.respondError(c, err, "Invalid query")
		return
	}

	listings, total, err := h.listingUseCase.ListListings(c.Request.Context(), viewerFrom(c), q)
	if err != nil {
		h.respondError(c, err, "Failed to fetch listings")
		return
	}

	c.JSON(http.StatusOK, listResponse(listings, total, q))
}

// ListMyListings godoc
// @Summary      List own listings
// @Description  Listings of the authenticated seller in every status
// @Tags         listings
// @Produce      json
// @Security     BearerAuth
// @Param        status query string false "Listing status"
// @Param        sort query string false "Sort order" Enums(newest, oldest, price-low, price-high)
// @Param        limit query int false "Page size (max 100)"
// @Param        offset query int false "Offset for pagination"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /me/listings [get]
func (h *ListingHandler) ListMyListings(c *gin.Context) {
	q, err := parseQuery(c)
	if err != nil {
		h.respondError(c, err, "Invalid query")
		return
	}

	listings, total, err := h.listingUseCase.ListSellerListings(c.Request.Context(), viewerFrom(c), q)
	if err != nil {
		h.respondError(c, err, "Failed to fetch listings")
		return
	}

	c.JSON(http.StatusOK, listResponse(listings, total, q))
}

// GetListing godoc
// @Summary      Get listing by ID
// @Description  Listing with images, amenities and seller. Listings that are not public are only visible to their seller and admins.
// @Tags         listings
// @Produce      json
// @Param        id path string true "Listing ID"
// @Success      200  {object}  entity.Listing
// @Failure      404  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /listings/{id} [get]
func (h *ListingHandler) GetListing(c *gin.Context) {
	listing, found, err := h.listingUseCase.GetListing(c.Request.Context(), viewerFrom(c), c.Param("id"))
	if err != nil {
		h.respondError(c, err, "Failed to fetch listing")
		return
	}
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "Listing not found"})
		return
	}

	c.JSON(http.StatusOK, listing)
}

// CreateListing godoc
// @Summary      Create a listing
// @Description  Create a listing as JSON or multipart form with images[] files. Images and amenities are attached after the listing is stored; failures there do not fail the request.
// @Tags         listings
// @Accept       json
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        title formData string true "Title"
// @Param        price_cents formData int true "Price in cents"
// @Param        property_type formData string true "Property type"
// @Param        listing_type formData string true "Listing type" Enums(rent, sale)
// @Param        status formData string false "Initial status (draft or pending for sellers)"
// @Param        amenity_ids formData []string false "Amenity IDs"
// @Param        images formData file false "Image files"
// @Success      201  {object}  entity.Listing
// @Failure      400  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /listings [post]
func (h *ListingHandler) CreateListing(c *gin.Context) {
	var req ListingRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	images, err := imageUploads(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to parse form"})
		return
	}

	listing, err := h.listingUseCase.CreateListing(c.Request.Context(), viewerFrom(c), req.toInput(), images)
	if err != nil {
		h.respondError(c, err, "Failed to create listing")
		return
	}

	c.JSON(http.StatusCreated, listing)
}

// UpdateListing godoc
// @Summary      Update listing
// @Description  Update the fields that are sent. amenity_ids replaces the amenity set; images[] files are appended. Only the seller or an admin can update.
// @Tags         listings
// @Accept       json
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Listing ID"
// @Param        request body object false "Fields to update" SchemaExample({"title":"Renovated loft","price_cents":42000000,"amenity_ids":[]})
// @Success      200  {object}  entity.Listing
// @Failure      400  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /listings/{id} [put]
func (h *ListingHandler) UpdateListing(c *gin.Context) {
	var req UpdateListingRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var images []entity.ImageUpload
	if isMultipart(c) {
		uploads, err := imageUploads(c)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to parse form"})
			return
		}
		images = uploads
		if ids, ok := c.GetPostFormArray("amenity_ids"); ok {
			req.AmenityIDs = &ids
		}
	}

	listing, err := h.listingUseCase.UpdateListing(c.Request.Context(), viewerFrom(c), c.Param("id"), req.toPatch(), images)
	if err != nil {
		h.respondError(c, err, "Failed to update listing")
		return
	}

	c.JSON(http.StatusOK, listing)
}

// DeleteListing godoc
// @Summary      Delete listing
// @Description  Delete a listing with its images and amenity links. Only the seller or an admin can delete.
// @Tags         listings
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Listing ID"
// @Success      200  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /listings/{id} [delete]
func (h *ListingHandler) DeleteListing(c *gin.Context) {
	if err := h.listingUseCase.DeleteListing(c.Request.Context(), viewerFrom(c), c.Param("id")); err != nil {
		h.respondError(c, err, "Failed to delete listing")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Listing deleted successfully"})
}

func (h *ListingHandler) transition(c *gin.Context, status entity.Status) {
	listing, err := h.listingUseCase.UpdateListingStatus(c.Request.Context(), viewerFrom(c), c.Param("id"), status)
	if err != nil {
		h.respondError(c, err, "Failed to update listing status")
		return
	}

	c.JSON(http.StatusOK, listing)
}

// SubmitListing godoc
// @Summary      Submit listing for review
// @Tags         listings
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Listing ID"
// @Success      200  {object}  entity.Listing
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Failure      409  {object}  map[string]string
// @Router       /listings/{id}/submit [post]
func (h *ListingHandler) SubmitListing(c *gin.Context) {
	h.transition(c, entity.StatusPending)
}

// ResubmitListing godoc
// @Summary      Resubmit a rejected listing
// @Tags         listings
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Listing ID"
// @Success      200  {object}  entity.Listing
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Failure      409  {object}  map[string]string
// @Router       /listings/{id}/resubmit [post]
func (h *ListingHandler) ResubmitListing(c *gin.Context) {
	h.transition(c, entity.StatusPending)
}

// ApproveListing godoc
// @Summary      Approve a pending listing
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Listing ID"
// @Success      200  {object}  entity.Listing
// @Failure      404  {object}  map[string]string
// @Failure      409  {object}  map[string]string
// @Router       /admin/listings/{id}/approve [post]
func (h *ListingHandler) ApproveListing(c *gin.Context) {
	h.transition(c, entity.StatusActive)
}

// RejectListing godoc
// @Summary      Reject a pending listing
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Listing ID"
// @Success      200  {object}  entity.Listing
// @Failure      404  {object}  map[string]string
// @Failure      409  {object}  map[string]string
// @Router       /admin/listings/{id}/reject [post]
func (h *ListingHandler) RejectListing(c *gin.Context) {
	h.transition(c, entity.StatusRejected)
}

// SuspendListing godoc
// @Summary      Take a listing down
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Listing ID"
// @Success      200  {object}  entity.Listing
// @Failure      404  {object}  map[string]string
// @Failure      409  {object}  map[string]string
// @Router       /admin/listings/{id}/suspend [post]
func (h *ListingHandler) SuspendListing(c *gin.Context) {
	h.transition(c, entity.StatusSuspended)
}

type StatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// UpdateListingStatus godoc
// @Summary      Change listing status
// @Description  Move a listing through its lifecycle, e.g. mark an active listing sold or rented
// @Tags         listings
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Listing ID"
// @Param        request body StatusRequest true "Target status"
// @Success      200  {object}  entity.Listing
// @Failure      400  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Failure      409  {object}  map[string]string
// @Router       /listings/{id}/status [post]
func (h *ListingHandler) UpdateListingStatus(c *gin.Context) {
	var req StatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.transition(c, entity.Status(req.Status))
}

type FeaturedRequest struct {
	Featured *bool `json:"featured" binding:"required"`
}

// SetFeatured godoc
// @Summary      Feature or unfeature a listing
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Listing ID"
// @Param        request body FeaturedRequest true "Featured flag"
// @Success      200  {object}  entity.Listing
// @Failure      400  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /admin/listings/{id}/featured [post]
func (h *ListingHandler) SetFeatured(c *gin.Context) {
	var req FeaturedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	listing, err := h.listingUseCase.SetFeatured(c.Request.Context(), viewerFrom(c), c.Param("id"), *req.Featured)
	if err != nil {
		h.respondError(c, err, "Failed to update listing")
		return
	}

	c.JSON(http.StatusOK, listing)
}

// SetFeaturedImage godoc
// @Summary      Make an image the featured one
// @Tags         listings
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Listing ID"
// @Param        image_id path string true "Image ID"
// @Success      200  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /listings/{id}/images/{image_id}/feature [post]
func (h *ListingHandler) SetFeaturedImage(c *gin.Context) {
	if err := h.listingUseCase.SetFeaturedImage(c.Request.Context(), viewerFrom(c), c.Param("id"), c.Param("image_id")); err != nil {
		h.respondError(c, err, "Failed to feature image")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Featured image updated"})
}

// DeleteImage godoc
// @Summary      Delete a listing image
// @Tags         listings
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Listing ID"
// @Param        image_id path string true "Image ID"
// @Success      200  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /listings/{id}/images/{image_id} [delete]
func (h *ListingHandler) DeleteImage(c *gin.Context) {
	if err := h.listingUseCase.DeleteImage(c.Request.Context(), viewerFrom(c), c.Param("id"), c.Param("image_id")); err != nil {
		h.respondError(c, err, "Failed to delete image")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Image deleted"})
}

// RecordView godoc
// @Summary      Count a listing view
// @Description  Counts a view once per viewer per day. Anonymous viewers are keyed by client IP. Listings the caller cannot see are not found.
// @Tags         listings
// @Produce      json
// @Param        id path string true "Listing ID"
// @Success      200  {object}  map[string]interface{}
// @Failure      404  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /listings/{id}/view [post]
func (h *ListingHandler) RecordView(c *gin.Context) {
	viewerKey := c.GetString("user_id")
	if viewerKey == "" {
		viewerKey = "anon:" + c.ClientIP()
	}

	counted, err := h.listingUseCase.RecordView(c.Request.Context(), viewerFrom(c), c.Param("id"), viewerKey)
	if err != nil {
		h.respondError(c, err, "Failed to track view")
		return
	}

	message := "View counted"
	if !counted {
		message = "View already counted"
	}
	c.JSON(http.StatusOK, gin.H{"message": message, "viewed": counted})
}

// GetStats godoc
// @Summary      Listing statistics
// @Description  Listing counts per status plus the featured count
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  entity.Stats
// @Failure      500  {object}  map[string]string
// @Router       /admin/stats [get]
func (h *ListingHandler) GetStats(c *gin.Context) {
	stats, err := h.listingUseCase.GetStats(c.Request.Context())
	if err != nil {
		h.respondError(c, err, "Failed to compute stats")
		return
	}

	c.JSON(http.StatusOK, stats)
}

// ListAmenities godoc
// @Summary      List amenities
// @Tags         amenities
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Failure      500  {object}  map[string]string
// @Router       /amenities [get]
func (h *ListingHandler) ListAmenities(c *gin.Context) {
	amenities, err := h.listingUseCase.ListAmenities(c.Request.Context())
	if err != nil {
		h.respondError(c, err, "Failed to fetch amenities")
		return
	}
	if amenities == nil {
		amenities = []entity.Amenity{}
	}

	c.JSON(http.StatusOK, gin.H{"amenities": amenities, "count": len(amenities)})
}

type AmenityRequest struct {
	Name     string `json:"name" binding:"required"`
	Category string `json:"category"`
}

// CreateAmenity godoc
// @Summary      Add an amenity to the catalog
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body AmenityRequest true "Amenity"
// @Success      201  {object}  entity.Amenity
// @Failure      400  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Router       /admin/amenities [post]
func (h *ListingHandler) CreateAmenity(c *gin.Context) {
	var req AmenityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	amenity, err := h.listingUseCase.CreateAmenity(c.Request.Context(), viewerFrom(c), req.Name, req.Category)
	if err != nil {
		h.respondError(c, err, "Failed to create amenity")
		return
	}

	c.JSON(http.StatusCreated, amenity)
}
