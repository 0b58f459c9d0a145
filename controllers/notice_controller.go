package controllers

import (
	"net/http"

	"Majanaaber/realtime"
	"Majanaaber/repositories"

	"github.com/gin-gonic/gin"
)

// NoticeController serves notice-board read receipts over REST.
type NoticeController struct {
	Notices repositories.NoticeRepository
	Hub     *realtime.Hub
}

func NewNoticeController(notices repositories.NoticeRepository, hub *realtime.Hub) *NoticeController {
	return &NoticeController{Notices: notices, Hub: hub}
}

// GetReceipts возвращает список прочитавших объявление, новые первыми.
func (ctl *NoticeController) GetReceipts(c *gin.Context) {
	noticeID := c.Param("notice_id")

	receipts, err := ctl.Notices.GetReceipts(noticeID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	count, err := ctl.Notices.CountReceipts(noticeID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": receipts, "read_count": count})
}

// MarkAsRead records that the caller opened the notice. Repeat calls are
// no-ops; the realtime event goes out only when a row was actually created.
func (ctl *NoticeController) MarkAsRead(c *gin.Context) {
	noticeID := c.Param("notice_id")
	userID := c.GetString("user_id")

	receipt, created, err := ctl.Notices.UpsertReceipt(noticeID, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if created {
		ctl.Hub.Publish(realtime.Event{
			Type:          realtime.EventNoticeReceiptAdded,
			Scope:         realtime.NoticeScope(noticeID),
			NoticeReceipt: receipt,
		})
	}

	c.JSON(http.StatusOK, gin.H{"data": receipt, "created": created})
}
