// README: Provider directory, Helpa registration, bookings and recipes.
package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"yourhelpa/internal/modules/booking"
	"yourhelpa/internal/modules/provider"
	"yourhelpa/internal/modules/recipe"
)

type ProviderHandler struct {
	providers *provider.Service
	bookings  *booking.Service
	recipes   *recipe.Catalog
}

func NewProviderHandler(providers *provider.Service, bookings *booking.Service, recipes *recipe.Catalog) *ProviderHandler {
	return &ProviderHandler{providers: providers, bookings: bookings, recipes: recipes}
}

// List handles GET /api/providers?category=.
func (h *ProviderHandler) List(c *gin.Context) {
	list, err := h.providers.Search(c.Request.Context(), c.Query("category"))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	if list == nil {
		list = []provider.Provider{}
	}
	writeJSON(c, http.StatusOK, map[string]any{"providers": list})
}

// Get handles GET /api/providers/:id.
func (h *ProviderHandler) Get(c *gin.Context) {
	id := c.Param("id")
	if !isValidRef(id) {
		writeError(c, http.StatusBadRequest, "invalid provider id")
		return
	}
	p, err := h.providers.Get(c.Request.Context(), id)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, p)
}

type registerReq struct {
	Name        string   `json:"name"`
	Phone       string   `json:"phone"`
	Email       string   `json:"email"`
	Category    string   `json:"category"`
	Location    string   `json:"location"`
	Price       string   `json:"price"`
	Specialties []string `json:"specialties"`
	Bio         string   `json:"bio"`
}

// Register handles POST /api/providers/register.
func (h *ProviderHandler) Register(c *gin.Context) {
	var req registerReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	id, err := h.providers.Register(c.Request.Context(), provider.RegisterCommand{
		Name:        req.Name,
		Phone:       req.Phone,
		Email:       req.Email,
		Category:    req.Category,
		Location:    req.Location,
		Price:       req.Price,
		Specialties: req.Specialties,
		Bio:         req.Bio,
	})
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusCreated, map[string]any{"provider_id": id, "status": "pending_review"})
}

type bookingReq struct {
	ProviderID    string     `json:"provider_id"`
	CustomerName  string     `json:"customer_name"`
	CustomerPhone string     `json:"customer_phone"`
	CustomerEmail string     `json:"customer_email"`
	Service       string     `json:"service"`
	ScheduledFor  *time.Time `json:"scheduled_for"`
	Notes         string     `json:"notes"`
}

// CreateBooking handles POST /api/bookings.
func (h *ProviderHandler) CreateBooking(c *gin.Context) {
	var req bookingReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	b, err := h.bookings.Create(c.Request.Context(), booking.CreateCommand{
		ProviderID:    req.ProviderID,
		CustomerName:  req.CustomerName,
		CustomerPhone: req.CustomerPhone,
		CustomerEmail: req.CustomerEmail,
		Service:       req.Service,
		ScheduledFor:  req.ScheduledFor,
		Notes:         req.Notes,
		Channel:       "web",
	})
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusCreated, map[string]any{"booking_id": b.ID})
}

// Recipes handles GET /api/recipes?q=.
func (h *ProviderHandler) Recipes(c *gin.Context) {
	var list []recipe.Recipe
	if q := c.Query("q"); q != "" {
		list = h.recipes.Search(q)
	} else {
		list = h.recipes.All()
	}
	writeJSON(c, http.StatusOK, map[string]any{"recipes": list})
}
