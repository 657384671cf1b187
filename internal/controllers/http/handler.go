package http

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"storefront-service/internal/domain"
	"storefront-service/internal/services"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// AuthSecrets holds the HMAC keys for bearer tokens. Routes guarded by an
// empty secret are not mounted.
type AuthSecrets struct {
	Admin    string
	Customer string
}

type Handler struct {
	orders         *services.OrderService
	stock          *services.StockService
	catalog        *services.CatalogService
	adminSecret    []byte
	customerSecret []byte
}

func NewHandler(o *services.OrderService, s *services.StockService, c *services.CatalogService, secrets AuthSecrets) *Handler {
	h := &Handler{orders: o, stock: s, catalog: c}
	if secrets.Admin != "" {
		h.adminSecret = []byte(secrets.Admin)
	}
	if secrets.Customer != "" {
		h.customerSecret = []byte(secrets.Customer)
	}
	return h
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/healthz", h.Health)
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	api := r.Group("/api")
	api.GET("/product-stock", h.GetProductStock)
	api.GET("/categories", h.ListCategories)
	api.GET("/products", h.ListProducts)
	api.GET("/products/latest", h.LatestProducts)
	api.GET("/products/:id", h.GetProduct)
	api.POST("/orders", h.PlaceOrder)

	if h.customerSecret != nil {
		customer := api.Group("/orders", CustomerAuth(h.customerSecret))
		customer.GET("", h.ListCustomerOrders)
		customer.GET("/:id", h.GetOrder)
	}

	if h.adminSecret != nil {
		admin := api.Group("/admin", AdminAuth(h.adminSecret))
		admin.GET("/orders", h.AdminListOrders)
		admin.PATCH("/orders/:id/status", h.AdminUpdateStatus)
	}
}

// Health godoc
// @Summary  Liveness probe
// @Tags     health
// @Produce  json
// @Success  200 {object} HealthResponse
// @Router   /healthz [get]
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{Status: "ok", Time: time.Now().UTC()})
}

// GetProductStock godoc
// @Summary      Advisory stock count for a product
// @Description  Fails open: unknown products, invalid queries and lookup failures report 0.
// @Tags         products
// @Produce      json
// @Param        name      query string false "product name"
// @Param        id        query string false "product id"
// @Param        category  query string false "category to search"
// @Success      200 {object} StockResponse
// @Router       /api/product-stock [get]
func (h *Handler) GetProductStock(c *gin.Context) {
	q := services.StockQuery{
		ProductID: c.Query("id"),
		Name:      c.Query("name"),
		Category:  domain.Category(c.Query("category")),
	}
	n, err := h.stock.Lookup(c.Request.Context(), q)
	if err == nil {
		c.JSON(http.StatusOK, StockResponse{Quantity: n})
		return
	}

	switch {
	case errors.Is(err, domain.ErrValidation), errors.Is(err, domain.ErrAmbiguousProduct):
		c.JSON(http.StatusOK, StockResponse{Quantity: 0, Message: err.Error()})
	case errors.Is(err, domain.ErrProductNotFound):
		c.JSON(http.StatusOK, StockResponse{Quantity: 0})
	default:
		slog.WarnContext(c.Request.Context(), "stock lookup failed", slog.String("name", q.Name), slog.Any("err", err))
		c.JSON(http.StatusOK, StockResponse{Quantity: 0})
	}
}

// PlaceOrder godoc
// @Summary  Place an order
// @Tags     orders
// @Accept   json
// @Produce  json
// @Param    order body PlaceOrderRequest true "customer and cart"
// @Success  201 {object} PlaceOrderResponse
// @Failure  400 {object} ErrorResponse
// @Failure  409 {object} ErrorResponse
// @Failure  500 {object} ErrorResponse
// @Router   /api/orders [post]
func (h *Handler) PlaceOrder(c *gin.Context) {
	var req PlaceOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindingError(c, err)
		return
	}

	order, err := h.orders.PlaceOrder(c.Request.Context(), req.toServiceRequest())
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, PlaceOrderResponse{
		Success: true,
		Message: "Order placed successfully",
		Order:   order,
	})
}

// ListCustomerOrders godoc
// @Summary   The signed-in customer's orders, newest first
// @Tags      orders
// @Produce   json
// @Security  Bearer
// @Param     status  query string false "order status"
// @Param     page    query int    false "page, from 1"
// @Success   200 {object} OrderPageResponse
// @Failure   401 {object} ErrorResponse
// @Router    /api/orders [get]
func (h *Handler) ListCustomerOrders(c *gin.Context) {
	h.listOrders(c, c.GetString(ctxCustomerEmail))
}

// GetOrder godoc
// @Summary   Get one of the signed-in customer's orders
// @Tags      orders
// @Produce   json
// @Security  Bearer
// @Param     id path string true "order id"
// @Success   200 {object} domain.Order
// @Failure   401 {object} ErrorResponse
// @Failure   404 {object} ErrorResponse
// @Router    /api/orders/{id} [get]
func (h *Handler) GetOrder(c *gin.Context) {
	id := c.Param("id")
	order, err := h.orders.GetOrderByID(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	// Other customers' orders look the same as missing ones.
	if !strings.EqualFold(order.Customer.Email, c.GetString(ctxCustomerEmail)) {
		writeError(c, domain.OrderNotFound(id))
		return
	}
	c.JSON(http.StatusOK, order)
}

// ListCategories godoc
// @Summary  Product categories in display order
// @Tags     products
// @Produce  json
// @Router   /api/categories [get]
func (h *Handler) ListCategories(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"categories": domain.Categories})
}

// ListProducts godoc
// @Summary  Browse products, newest first
// @Tags     products
// @Produce  json
// @Param    category query string false "category"
// @Param    q        query string false "name search"
// @Param    page     query int    false "page, from 1"
// @Param    pageSize query int    false "page size"
// @Success  200 {object} ProductPageResponse
// @Router   /api/products [get]
func (h *Handler) ListProducts(c *gin.Context) {
	page, err := h.catalog.ListProducts(c.Request.Context(), domain.ProductFilter{
		Category: domain.Category(c.Query("category")),
		Search:   c.Query("q"),
		Page:     queryInt(c, "page"),
		PageSize: queryInt(c, "pageSize"),
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toProductPage(page))
}

// LatestProducts godoc
// @Summary  Newest products of every category
// @Tags     products
// @Produce  json
// @Param    perCategory query int false "products per category" default(2)
// @Success  200 {array} CategoryProductsResponse
// @Router   /api/products/latest [get]
func (h *Handler) LatestProducts(c *gin.Context) {
	groups, err := h.catalog.Latest(c.Request.Context(), queryInt(c, "perCategory"))
	if err != nil {
		writeError(c, err)
		return
	}
	out := make([]CategoryProductsResponse, 0, len(groups))
	for _, g := range groups {
		out = append(out, CategoryProductsResponse{Category: g.Category, Products: g.Products})
	}
	c.JSON(http.StatusOK, out)
}

// GetProduct godoc
// @Summary  Get a product
// @Tags     products
// @Produce  json
// @Param    id path string true "product id"
// @Success  200 {object} domain.Product
// @Failure  404 {object} ErrorResponse
// @Router   /api/products/{id} [get]
func (h *Handler) GetProduct(c *gin.Context) {
	p, err := h.catalog.GetProduct(c.Request.Context(), c.Param("id"))
	if errors.Is(err, domain.ErrProductNotFound) {
		c.JSON(http.StatusNotFound, ErrorResponse{Message: err.Error(), Error: string(domain.KindProductNotFound)})
		return
	}
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// AdminListOrders godoc
// @Summary   All orders, newest first
// @Tags      admin
// @Produce   json
// @Security  Bearer
// @Param     status query string false "order status"
// @Param     email  query string false "customer email"
// @Param     page   query int    false "page, from 1"
// @Success   200 {object} OrderPageResponse
// @Router    /api/admin/orders [get]
func (h *Handler) AdminListOrders(c *gin.Context) {
	h.listOrders(c, c.Query("email"))
}

// AdminUpdateStatus godoc
// @Summary   Move an order to a new status
// @Tags      admin
// @Accept    json
// @Produce   json
// @Security  Bearer
// @Param     id   path string              true "order id"
// @Param     body body UpdateStatusRequest true "new status"
// @Success   200 {object} domain.Order
// @Failure   400 {object} ErrorResponse
// @Failure   404 {object} ErrorResponse
// @Failure   409 {object} ErrorResponse
// @Router    /api/admin/orders/{id}/status [patch]
func (h *Handler) AdminUpdateStatus(c *gin.Context) {
	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindingError(c, err)
		return
	}
	status, ok := domain.ParseOrderStatus(req.Status)
	if !ok {
		writeError(c, domain.Validation("status", "unknown status "+req.Status))
		return
	}

	order, err := h.orders.UpdateStatus(c.Request.Context(), c.Param("id"), status)
	if err != nil {
		writeError(c, err)
		return
	}
	slog.InfoContext(c.Request.Context(), "admin status change",
		slog.String("admin", c.GetString(ctxAdminSubject)),
		slog.String("order_id", order.ID),
		slog.String("status", string(order.Status)))
	c.JSON(http.StatusOK, order)
}

func (h *Handler) listOrders(c *gin.Context, email string) {
	filter := domain.OrderFilter{
		Email:    email,
		Page:     queryInt(c, "page"),
		PageSize: queryInt(c, "pageSize"),
	}
	if raw := c.Query("status"); raw != "" {
		status, ok := domain.ParseOrderStatus(raw)
		if !ok {
			writeError(c, domain.Validation("status", "unknown status "+raw))
			return
		}
		filter.Status = status
	}

	page, err := h.orders.ListOrders(c.Request.Context(), filter)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOrderPage(page))
}

func queryInt(c *gin.Context, key string) int {
	n, err := strconv.Atoi(c.Query(key))
	if err != nil {
		return 0
	}
	return n
}
