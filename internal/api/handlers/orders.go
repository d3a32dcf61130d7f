package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/tealeg/xlsx"
	"go.uber.org/zap"

	"github.com/yawerky/houseOfGul-sub000/internal/api/middleware"
	"github.com/yawerky/houseOfGul-sub000/internal/domain"
	"github.com/yawerky/houseOfGul-sub000/internal/repository"
	"github.com/yawerky/houseOfGul-sub000/internal/service"
)

const (
	defaultOrderLimit = 50
	maxOrderLimit     = 200
	maxExportOrders   = 5000
)

// orderFilterFromQuery reads status, payment_status, q, limit and offset
func orderFilterFromQuery(c *gin.Context, defLimit, maxLimit int) (repository.OrderFilter, bool) {
	filter := repository.OrderFilter{
		Search: strings.TrimSpace(c.Query("q")),
		Limit:  queryInt(c, "limit", defLimit, 1, maxLimit),
		Offset: queryInt(c, "offset", 0, 0, 1<<30),
	}
	if s := c.Query("status"); s != "" {
		filter.Status = domain.OrderStatus(s)
		if !filter.Status.IsValid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status"})
			return filter, false
		}
	}
	if s := c.Query("payment_status"); s != "" {
		filter.PaymentStatus = domain.PaymentStatus(s)
		if !filter.PaymentStatus.IsValid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payment_status"})
			return filter, false
		}
	}
	return filter, true
}

// HandleListOrders handles GET /v1/admin/orders
// Query: status, payment_status, q (order number, name or email), limit, offset
func HandleListOrders(orders *service.OrderService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		filter, ok := orderFilterFromQuery(c, defaultOrderLimit, maxOrderLimit)
		if !ok {
			return
		}

		list, err := orders.List(c.Request.Context(), filter)
		if err != nil {
			respondError(c, logger, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"orders": list,
			"count":  len(list),
			"limit":  filter.Limit,
			"offset": filter.Offset,
		})
	}
}

// HandleGetOrder handles GET /v1/admin/orders/:id
func HandleGetOrder(orders *service.OrderService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramID(c)
		if !ok {
			return
		}
		order, err := orders.Get(c.Request.Context(), id)
		if err != nil {
			respondError(c, logger, err)
			return
		}
		c.JSON(http.StatusOK, order)
	}
}

// HandleGetOrderEvents handles GET /v1/admin/orders/:id/events
func HandleGetOrderEvents(orders *service.OrderService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramID(c)
		if !ok {
			return
		}
		events, err := orders.Events(c.Request.Context(), id)
		if err != nil {
			respondError(c, logger, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"events": events})
	}
}

// HandleUpdateOrderStatus handles PATCH /v1/admin/orders/:id/status
func HandleUpdateOrderStatus(orders *service.OrderService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramID(c)
		if !ok {
			return
		}
		var req service.StatusUpdateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "validation failed", err)
			return
		}

		order, err := orders.UpdateStatus(c.Request.Context(), id, req.Status, req.Note)
		if err != nil {
			respondError(c, logger, err)
			return
		}
		if admin, ok := middleware.GetAdminFromContext(c); ok {
			logger.Info("Order status updated",
				zap.String("order_number", order.OrderNumber),
				zap.String("status", string(order.Status)),
				zap.String("admin", admin.Email))
		}
		c.JSON(http.StatusOK, order)
	}
}

// HandleUpdatePaymentStatus handles PATCH /v1/admin/orders/:id/payment
func HandleUpdatePaymentStatus(orders *service.OrderService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramID(c)
		if !ok {
			return
		}
		var req service.PaymentUpdateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "validation failed", err)
			return
		}

		order, err := orders.UpdatePaymentStatus(c.Request.Context(), id, req.PaymentStatus, req.Reference)
		if err != nil {
			respondError(c, logger, err)
			return
		}
		c.JSON(http.StatusOK, order)
	}
}

// HandleUpdateOrderNotes handles PATCH /v1/admin/orders/:id/notes
func HandleUpdateOrderNotes(orders *service.OrderService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramID(c)
		if !ok {
			return
		}
		var req service.NotesUpdateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "validation failed", err)
			return
		}

		order, err := orders.UpdateNotes(c.Request.Context(), id, req.AdminNotes)
		if err != nil {
			respondError(c, logger, err)
			return
		}
		c.JSON(http.StatusOK, order)
	}
}

// HandleExportOrders handles GET /v1/admin/orders/export. It takes the same
// filters as the order list and streams an xlsx workbook.
func HandleExportOrders(orders *service.OrderService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		filter, ok := orderFilterFromQuery(c, maxExportOrders, maxExportOrders)
		if !ok {
			return
		}
		list, err := orders.List(c.Request.Context(), filter)
		if err != nil {
			respondError(c, logger, err)
			return
		}

		file := xlsx.NewFile()
		sheet, err := file.AddSheet("Orders")
		if err != nil {
			logger.Error("Failed to create order sheet", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create export"})
			return
		}

		headers := []string{
			"Order Number", "Created At", "Status", "Payment Status", "Customer", "Email", "Phone",
			"Pincode", "City", "Delivery Date", "Delivery Slot", "Gift", "Items",
			"Subtotal", "Delivery", "Gift Wrap", "Slot", "Discount", "Coupon", "Total",
		}
		headerRow := sheet.AddRow()
		for _, h := range headers {
			headerRow.AddCell().SetValue(h)
		}

		for _, o := range list {
			row := sheet.AddRow()
			row.AddCell().SetValue(o.OrderNumber)
			row.AddCell().SetValue(o.CreatedAt.Format("2006-01-02 15:04:05"))
			row.AddCell().SetValue(string(o.Status))
			row.AddCell().SetValue(string(o.PaymentStatus))
			row.AddCell().SetValue(o.CustomerName)
			row.AddCell().SetValue(o.CustomerEmail)
			row.AddCell().SetValue(o.CustomerPhone)
			row.AddCell().SetValue(o.ShippingAddress.Pincode)
			row.AddCell().SetValue(o.ShippingAddress.City)
			deliveryDate := ""
			if o.DeliveryDate != nil {
				deliveryDate = o.DeliveryDate.Format("2006-01-02")
			}
			row.AddCell().SetValue(deliveryDate)
			row.AddCell().SetValue(o.DeliverySlot)
			row.AddCell().SetValue(o.IsGift)
			row.AddCell().SetValue(itemSummary(o.Items))
			row.AddCell().SetValue(o.Subtotal.StringFixed(2))
			row.AddCell().SetValue(o.DeliveryCharge.StringFixed(2))
			row.AddCell().SetValue(o.GiftWrapCharge.StringFixed(2))
			row.AddCell().SetValue(o.DeliverySlotCharge.StringFixed(2))
			row.AddCell().SetValue(o.Discount.StringFixed(2))
			row.AddCell().SetValue(o.CouponCode)
			row.AddCell().SetValue(o.Total.StringFixed(2))
		}

		writeWorkbook(c, file, "orders-"+time.Now().Format("20060102")+".xlsx", logger)
	}
}

func itemSummary(items []domain.OrderItem) string {
	parts := make([]string, 0, len(items))
	for _, it := range items {
		parts = append(parts, it.ProductName+" x"+strconv.Itoa(it.Quantity))
	}
	return strings.Join(parts, "; ")
}

// writeWorkbook sends file as a download
func writeWorkbook(c *gin.Context, file *xlsx.File, filename string, logger *zap.Logger) {
	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Transfer-Encoding", "binary")
	c.Header("Expires", "0")

	if err := file.Write(c.Writer); err != nil {
		// headers are already out; nothing useful to send
		logger.Error("Failed to write workbook", zap.String("file", filename), zap.Error(err))
	}
}

const (
	liveWriteWait  = 10 * time.Second
	livePingPeriod = 30 * time.Second
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// HandleLiveOrders handles GET /v1/admin/orders/live. Each order change is
// pushed to the dashboard as a JSON text frame.
func HandleLiveOrders(feed *service.LiveFeed, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			logger.Debug("Live feed upgrade failed", zap.Error(err))
			return
		}
		defer conn.Close()

		updates, cancel := feed.Subscribe()
		defer cancel()

		stop := make(chan struct{})
		done := make(chan struct{})
		go func() {
			defer close(done)
			ticker := time.NewTicker(livePingPeriod)
			defer ticker.Stop()
			for {
				select {
				case <-stop:
					return
				case msg, ok := <-updates:
					if !ok {
						// dropped as a slow consumer
						_ = conn.WriteControl(websocket.CloseMessage,
							websocket.FormatCloseMessage(websocket.CloseTryAgainLater, "too slow"),
							time.Now().Add(liveWriteWait))
						_ = conn.Close()
						return
					}
					_ = conn.SetWriteDeadline(time.Now().Add(liveWriteWait))
					if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
						return
					}
				case <-ticker.C:
					if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(liveWriteWait)); err != nil {
						return
					}
				}
			}
		}()

		// Reads only detect the client going away
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				break
			}
		}
		close(stop)
		<-done
	}
}
