package mockapi

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/niksmo/storefront/internal/core/domain"
)

func (a *API) listNotifications(c *gin.Context) {
	a.store.mu.Lock()
	items := append([]domain.Notification(nil), a.store.notifs[currentUserID(c)]...)
	a.store.mu.Unlock()
	c.JSON(http.StatusOK, items)
}

func (a *API) readNotification(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		fail(c, http.StatusBadRequest, "invalid notification id")
		return
	}

	a.store.mu.Lock()
	defer a.store.mu.Unlock()

	items := a.store.notifs[currentUserID(c)]
	for i := range items {
		if items[i].ID == id {
			items[i].Read = true
			c.JSON(http.StatusOK, items[i])
			return
		}
	}
	fail(c, http.StatusNotFound, "notification not found")
}

func (a *API) readAllNotifications(c *gin.Context) {
	a.store.mu.Lock()
	items := a.store.notifs[currentUserID(c)]
	for i := range items {
		items[i].Read = true
	}
	a.store.mu.Unlock()

	c.JSON(http.StatusOK, gin.H{"message": "all read"})
}

func (a *API) deleteNotification(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		fail(c, http.StatusBadRequest, "invalid notification id")
		return
	}

	a.store.mu.Lock()
	defer a.store.mu.Unlock()

	userID := currentUserID(c)
	items := a.store.notifs[userID]
	for i := range items {
		if items[i].ID == id {
			a.store.notifs[userID] = append(items[:i], items[i+1:]...)
			c.JSON(http.StatusOK, gin.H{"message": "deleted"})
			return
		}
	}
	fail(c, http.StatusNotFound, "notification not found")
}
