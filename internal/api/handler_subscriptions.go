package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"seat-occupancy-backend/internal/apperr"
	"seat-occupancy-backend/internal/model"
)

type putSubscriptionRequest struct {
	Endpoint        string   `json:"endpoint" binding:"required"`
	P256DH          string   `json:"p256dh" binding:"required"`
	Auth            string   `json:"auth" binding:"required"`
	SubscribedSeats []string `json:"subscribed_seats"`
}

// PutSubscription creates or replaces a push subscription and the set of
// seats whose vacancy it is notified about.
func (h *Handler) PutSubscription(c *gin.Context) {
	var req putSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid request"})
		return
	}

	subscription := model.PushSubscription{
		Endpoint: req.Endpoint,
		P256DH:   req.P256DH,
		Auth:     req.Auth,
	}

	err := h.db.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "endpoint"}},
			DoUpdates: clause.AssignmentColumns([]string{"p256dh", "auth"}),
		}).Create(&subscription).Error; err != nil {
			return err
		}

		var seats []*model.Seat
		if len(req.SubscribedSeats) > 0 {
			if err := tx.Where("seat_id IN ?", req.SubscribedSeats).Find(&seats).Error; err != nil {
				return err
			}
			if len(seats) != len(dedupe(req.SubscribedSeats)) {
				return apperr.NotFound("one or more subscribed seats do not exist")
			}
		}

		return tx.Model(&subscription).Association("Seats").Replace(seats)
	})
	if err != nil {
		if !apperr.Is(err, apperr.KindNotFound) {
			err = apperr.IO(err, "failed to save subscription")
		}
		h.fail(c, err)
		return
	}

	c.Status(http.StatusCreated)
}

type deleteSubscriptionRequest struct {
	Endpoint string `json:"endpoint" binding:"required"`
}

// DeleteSubscription handles the deletion of a subscription.
func (h *Handler) DeleteSubscription(c *gin.Context) {
	var req deleteSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid request"})
		return
	}

	sub := model.PushSubscription{Endpoint: req.Endpoint}
	if err := h.db.WithContext(c.Request.Context()).Select("Seats").Delete(&sub).Error; err != nil {
		h.fail(c, apperr.IO(err, "failed to delete subscription"))
		return
	}

	c.Status(http.StatusNoContent)
}

// rawQueryParam reads a query value without URL decoding; push endpoints
// are stored exactly as the browser reported them.
func rawQueryParam(rawQuery, key string) (string, bool) {
	for _, kv := range strings.Split(rawQuery, "&") {
		if strings.HasPrefix(kv, key+"=") {
			return kv[len(key)+1:], true
		}
	}
	return "", false
}

// GetSubscription returns the seats a subscription watches.
func (h *Handler) GetSubscription(c *gin.Context) {
	raw, ok := rawQueryParam(c.Request.URL.RawQuery, "endpoint")
	if !ok || raw == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "endpoint is required"})
		return
	}

	var subscription model.PushSubscription
	err := h.db.WithContext(c.Request.Context()).Preload("Seats").First(&subscription, "endpoint = ?", raw).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			h.fail(c, apperr.NotFound("subscription not found"))
		} else {
			h.fail(c, apperr.IO(err, "failed to load subscription"))
		}
		return
	}

	seatIDs := make([]string, len(subscription.Seats))
	for i, seat := range subscription.Seats {
		seatIDs[i] = seat.SeatID
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "subscribed_seats": seatIDs})
}

func dedupe(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := values[:0:0]
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
