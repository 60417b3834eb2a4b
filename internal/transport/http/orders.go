package http

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"collectible-order/internal/domain"
	"collectible-order/internal/service"
)

const (
	sortDesc = "orderDate,desc"
	sortAsc  = "orderDate,asc"
)

type orderHandler struct {
	svc service.OrderService
}

type submitOrderRequest struct {
	MemberID  int64 `json:"memberId" binding:"required,gt=0"`
	ProductID int64 `json:"productId" binding:"required,gt=0"`
}

type updateMemoRequest struct {
	OrderID string `json:"orderId" binding:"required"`
	Memo    string `json:"memo" binding:"max=1000"`
}

func (h *orderHandler) submit(c *gin.Context) {
	var req submitOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, codeInvalidRequest, "memberId and productId must be positive integers")
		return
	}

	detail, err := h.svc.SubmitOrder(c.Request.Context(), req.MemberID, req.ProductID)
	if err != nil {
		writeOrderError(c, err)
		return
	}
	c.JSON(http.StatusCreated, detail)
}

func (h *orderHandler) updateMemo(c *gin.Context) {
	var req updateMemoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, codeInvalidRequest, "orderId is required")
		return
	}
	orderID, err := uuid.Parse(req.OrderID)
	if err != nil {
		writeError(c, http.StatusBadRequest, codeInvalidRequest, "orderId must be a UUID")
		return
	}

	detail, err := h.svc.UpdateMemo(c.Request.Context(), orderID, req.Memo)
	if err != nil {
		writeOrderError(c, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

func (h *orderHandler) list(c *gin.Context) {
	page, err := parsePage(c)
	if err != nil {
		writeError(c, http.StatusBadRequest, codeInvalidRequest, err.Error())
		return
	}

	orders, err := h.svc.GetAll(c.Request.Context(), c.Query("startDate"), c.Query("endDate"), page)
	if err != nil {
		writeOrderError(c, err)
		return
	}
	writeList(c, orders)
}

func (h *orderHandler) listByMember(c *gin.Context) {
	memberID, err := strconv.ParseInt(c.Param("memberId"), 10, 64)
	if err != nil || memberID <= 0 {
		writeError(c, http.StatusBadRequest, codeInvalidRequest, "memberId must be a positive integer")
		return
	}
	page, err := parsePage(c)
	if err != nil {
		writeError(c, http.StatusBadRequest, codeInvalidRequest, err.Error())
		return
	}

	orders, err := h.svc.GetAllByMember(c.Request.Context(), memberID, c.Query("startDate"), c.Query("endDate"), page)
	if err != nil {
		writeOrderError(c, err)
		return
	}
	writeList(c, orders)
}

func parsePage(c *gin.Context) (domain.Page, error) {
	var p domain.Page

	if v := c.Query("page"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 || n > domain.MaxPageNumber {
			return p, fmt.Errorf("page must be between 0 and %d", domain.MaxPageNumber)
		}
		p.Number = n
	}
	if v := c.Query("size"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 || n > domain.MaxPageSize {
			return p, fmt.Errorf("size must be between 1 and %d", domain.MaxPageSize)
		}
		p.Size = n
	}
	switch c.DefaultQuery("sort", sortDesc) {
	case sortDesc:
	case sortAsc:
		p.Ascending = true
	default:
		return p, fmt.Errorf("sort must be %q or %q", sortDesc, sortAsc)
	}
	return p.Normalize(), nil
}

func writeList(c *gin.Context, orders []domain.OrderDetail) {
	if orders == nil {
		orders = []domain.OrderDetail{}
	}
	c.JSON(http.StatusOK, orders)
}
