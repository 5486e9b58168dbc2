package message

import (
	"net/http"
	"strconv"

	midsec "SupportChat/middleware/security"
	"SupportChat/module/message/model"
	"SupportChat/module/message/service"
	"SupportChat/tools/errs"

	"github.com/gin-gonic/gin"
)

// Handler HTTP 边界。生命周期操作失败同步返回给调用方，
// 事件桥不会被触达（服务层只在落库成功后发事件）。
type Handler struct {
	svc *service.MessageService
}

func NewHandler(svc *service.MessageService) *Handler {
	return &Handler{svc: svc}
}

func fail(c *gin.Context, err error) {
	if codeErr := errs.Code(err); codeErr != nil {
		switch codeErr.Code {
		case errs.RecordNotFoundError:
			c.JSON(http.StatusNotFound, codeErr)
		case errs.ArgsError:
			c.JSON(http.StatusBadRequest, codeErr)
		default:
			c.JSON(http.StatusInternalServerError, codeErr)
		}
		return
	}
	c.JSON(http.StatusInternalServerError, errs.ErrOperationFailed.WithDetail(err.Error()))
}

// HandlerCreate POST /api/messages
func (h *Handler) HandlerCreate(c *gin.Context) {
	var in service.CreateParams
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, errs.ErrArgs.WithDetail(err.Error()))
		return
	}
	m, err := h.svc.Create(c.Request.Context(), in)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, m)
}

// HandlerClose POST /api/messages/:id/close
func (h *Handler) HandlerClose(c *gin.Context) {
	m, err := h.svc.Close(c.Request.Context(), c.Param("id"), midsec.UserID(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, m)
}

// HandlerMarkRead POST /api/messages/:id/read
func (h *Handler) HandlerMarkRead(c *gin.Context) {
	m, err := h.svc.MarkRead(c.Request.Context(), c.Param("id"), midsec.UserID(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, m)
}

// HandlerGet GET /api/messages/:id
func (h *Handler) HandlerGet(c *gin.Context) {
	m, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, m)
}

// HandlerList GET /api/messages
func (h *Handler) HandlerList(c *gin.Context) {
	f := model.ListFilters{
		CustomerID: c.Query("customerId"),
		StaffID:    c.Query("staffId"),
		Status:     c.Query("status"),
		Priority:   model.Priority(c.Query("priority")),
	}
	if v := c.Query("read"); v != "" {
		read := v == "true"
		f.Read = &read
	}
	f.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	f.Limit, _ = strconv.Atoi(c.DefaultQuery("limit", "20"))

	res, err := h.svc.List(c.Request.Context(), f)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// HandlerStats GET /api/stats
func (h *Handler) HandlerStats(c *gin.Context) {
	stats, err := h.svc.Statistics(c.Request.Context(), c.Query("customerId"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// HandlerCustomers GET /api/customers
func (h *Handler) HandlerCustomers(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	customers, err := h.svc.Customers(c.Request.Context(), limit)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, customers)
}
