package ginserver

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	gin "github.com/gin-gonic/gin"

	"staybook/internal/app/bookingsvc"
	"staybook/internal/domain/booking"
)

type BookingHandler struct {
	Service *bookingsvc.Service
	Logger  *slog.Logger
}

type createBookingRequest struct {
	ListingID       string    `json:"listingId" binding:"required"`
	CheckIn         time.Time `json:"checkIn" binding:"required"`
	CheckOut        time.Time `json:"checkOut" binding:"required"`
	Guests          int       `json:"guests" binding:"required,min=1"`
	TotalPrice      float64   `json:"totalPrice" binding:"min=0"`
	GuestName       string    `json:"guestName" binding:"required"`
	GuestEmail      string    `json:"guestEmail" binding:"required,email"`
	GuestPhone      string    `json:"guestPhone"`
	SpecialRequests string    `json:"specialRequests"`
}

type checkAvailabilityRequest struct {
	ListingID string    `json:"listingId" binding:"required"`
	CheckIn   time.Time `json:"checkIn" binding:"required"`
	CheckOut  time.Time `json:"checkOut" binding:"required"`
}

type updateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

type bookingResponse struct {
	ID              string    `json:"id"`
	ListingID       string    `json:"listingId"`
	HostID          string    `json:"hostId"`
	GuestID         string    `json:"guestId,omitempty"`
	GuestName       string    `json:"guestName"`
	GuestEmail      string    `json:"guestEmail"`
	GuestPhone      string    `json:"guestPhone,omitempty"`
	CheckIn         time.Time `json:"checkIn"`
	CheckOut        time.Time `json:"checkOut"`
	Guests          int       `json:"guests"`
	TotalPrice      float64   `json:"totalPrice"`
	Status          string    `json:"status"`
	PaymentStatus   string    `json:"paymentStatus"`
	SpecialRequests string    `json:"specialRequests,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

func mapBooking(b *booking.Booking) bookingResponse {
	return bookingResponse{
		ID:              string(b.ID),
		ListingID:       string(b.ListingID),
		HostID:          string(b.HostID),
		GuestID:         string(b.GuestID),
		GuestName:       b.GuestName,
		GuestEmail:      b.GuestEmail,
		GuestPhone:      b.GuestPhone,
		CheckIn:         b.Range.CheckIn,
		CheckOut:        b.Range.CheckOut,
		Guests:          b.Guests,
		TotalPrice:      b.TotalPrice,
		Status:          string(b.Status),
		PaymentStatus:   string(b.PaymentStatus),
		SpecialRequests: b.SpecialRequests,
		CreatedAt:       b.CreatedAt,
		UpdatedAt:       b.UpdatedAt,
	}
}

func mapBookings(items []*booking.Booking) []bookingResponse {
	result := make([]bookingResponse, 0, len(items))
	for _, b := range items {
		result = append(result, mapBooking(b))
	}
	return result
}

// List returns the caller's bookings; admins see all.
func (h BookingHandler) List(c *gin.Context) {
	actor, ok := requireIdentity(c)
	if !ok {
		return
	}
	items, err := h.Service.ListForGuest(c.Request.Context(), actor)
	if err != nil {
		respondWithError(c, h.Logger, err)
		return
	}
	respondData(c, http.StatusOK, mapBookings(items))
}

// HostList returns bookings for listings the caller hosts; admins see all.
func (h BookingHandler) HostList(c *gin.Context) {
	actor, ok := requireIdentity(c)
	if !ok {
		return
	}
	items, err := h.Service.ListForHost(c.Request.Context(), actor)
	if err != nil {
		respondWithError(c, h.Logger, err)
		return
	}
	respondData(c, http.StatusOK, mapBookings(items))
}

func (h BookingHandler) Get(c *gin.Context) {
	b, err := h.Service.Get(c.Request.Context(), currentIdentity(c), strings.TrimSpace(c.Param("id")))
	if err != nil {
		respondWithError(c, h.Logger, err)
		return
	}
	respondData(c, http.StatusOK, mapBooking(b))
}

func (h BookingHandler) Create(c *gin.Context) {
	var req createBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}
	b, err := h.Service.Create(c.Request.Context(), currentIdentity(c), bookingsvc.CreateInput{
		ListingID:       req.ListingID,
		CheckIn:         req.CheckIn,
		CheckOut:        req.CheckOut,
		Guests:          req.Guests,
		TotalPrice:      req.TotalPrice,
		GuestName:       req.GuestName,
		GuestEmail:      req.GuestEmail,
		GuestPhone:      req.GuestPhone,
		SpecialRequests: req.SpecialRequests,
	})
	if err != nil {
		respondWithError(c, h.Logger, err)
		return
	}
	respondMessage(c, http.StatusCreated, "booking created", mapBooking(b))
}

func (h BookingHandler) CheckAvailability(c *gin.Context) {
	var req checkAvailabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}
	available, err := h.Service.CheckAvailability(c.Request.Context(), req.ListingID, req.CheckIn, req.CheckOut)
	if err != nil {
		respondWithError(c, h.Logger, err)
		return
	}
	respondData(c, http.StatusOK, gin.H{"available": available})
}

func (h BookingHandler) UpdateStatus(c *gin.Context) {
	actor, ok := requireIdentity(c)
	if !ok {
		return
	}
	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}
	b, err := h.Service.Transition(c.Request.Context(), actor, strings.TrimSpace(c.Param("id")), req.Status)
	if err != nil {
		respondWithError(c, h.Logger, err)
		return
	}
	respondData(c, http.StatusOK, mapBooking(b))
}

func (h BookingHandler) Cancel(c *gin.Context) {
	actor, ok := requireIdentity(c)
	if !ok {
		return
	}
	b, err := h.Service.Cancel(c.Request.Context(), actor, strings.TrimSpace(c.Param("id")))
	if err != nil {
		respondWithError(c, h.Logger, err)
		return
	}
	respondMessage(c, http.StatusOK, "booking cancelled", mapBooking(b))
}

func (h BookingHandler) RequestCancel(c *gin.Context) {
	actor, ok := requireIdentity(c)
	if !ok {
		return
	}
	count, err := h.Service.RequestCancellation(c.Request.Context(), actor, strings.TrimSpace(c.Param("id")))
	if err != nil {
		respondWithError(c, h.Logger, err)
		return
	}
	respondMessage(c, http.StatusOK, "cancellation requested", gin.H{"notified": count})
}

func (h BookingHandler) Delete(c *gin.Context) {
	actor, ok := requireIdentity(c)
	if !ok {
		return
	}
	result, err := h.Service.Delete(c.Request.Context(), actor, strings.TrimSpace(c.Param("id")))
	if err != nil {
		respondWithError(c, h.Logger, err)
		return
	}
	respondMessage(c, http.StatusOK, result.Message, gin.H{
		"deleted": result.Deleted,
		"booking": mapBooking(result.Booking),
	})
}
