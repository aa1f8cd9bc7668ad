package ginserver_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"staybook/internal/app/bookingsvc"
	"staybook/internal/app/notify"
	"staybook/internal/domain/listing"
	"staybook/internal/domain/user"
	"staybook/internal/infra/config"
	ginserver "staybook/internal/infra/http/gin"
	"staybook/internal/infra/obs"
	"staybook/internal/infra/storage/memory"
)

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func newTestServer(t *testing.T) http.Handler {
	t.Helper()
	ctx := context.Background()

	users := memory.NewUserRepository()
	resolver := memory.NewTokenResolver(users)
	for _, u := range []struct {
		id   string
		role user.Role
	}{
		{"admin-1", user.RoleAdmin},
		{"host-1", user.RoleHost},
		{"guest-1", user.RoleUser},
	} {
		created, err := user.New(user.CreateParams{
			ID:    user.ID(u.id),
			Name:  u.id,
			Email: u.id + "@example.com",
			Role:  u.role,
		})
		require.NoError(t, err)
		require.NoError(t, users.Save(ctx, created))
		resolver.Register(u.id+"-token", created.ID)
	}

	listings := memory.NewListingRepository()
	l, err := listing.New(listing.CreateParams{
		ID:           "l-1",
		Title:        "Sea View Flat",
		City:         "Lisbon",
		Country:      "Portugal",
		Price:        100,
		Bedrooms:     2,
		Bathrooms:    1,
		MaxGuests:    4,
		PropertyType: listing.TypeApartment,
		HostID:       "host-1",
	})
	require.NoError(t, err)
	l.Activate(time.Now())
	require.NoError(t, listings.Save(ctx, l))

	bookings := memory.NewBookingRepository()
	notifications := memory.NewNotificationRepository()
	fanout := notify.Fanout{Notifications: notifications, Users: users}
	svc := bookingsvc.New(bookings, listings, fanout, nil, nil)

	cfg := config.Config{Env: "test", HTTPAddr: ":0"}
	srv := ginserver.NewServer(cfg, obs.Middleware{}, obs.HealthHandlers{}, ginserver.Handlers{
		Booking:      ginserver.BookingHandler{Service: svc},
		Notification: ginserver.NotificationHandler{Notifications: notifications},
		AuthMiddleware: ginserver.AuthMiddleware{
			Resolver: resolver,
		}.Handle,
	})
	return srv.Handler
}

func doJSON(t *testing.T, h http.Handler, method, path, token string, body any) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var env envelope
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), "body: %s", rec.Body.String())
	}
	return rec, env
}

func createPayload() map[string]any {
	return map[string]any{
		"listingId":  "l-1",
		"checkIn":    "2024-03-01T00:00:00Z",
		"checkOut":   "2024-03-05T00:00:00Z",
		"guests":     2,
		"totalPrice": 400,
		"guestName":  "Ada",
		"guestEmail": "ada@example.com",
	}
}

func TestHealthEndpoints(t *testing.T) {
	h := newTestServer(t)
	rec, _ := doJSON(t, h, http.MethodGet, "/livez", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	rec, _ = doJSON(t, h, http.MethodGet, "/readyz", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestCreateBookingEndpoint(t *testing.T) {
	h := newTestServer(t)
	rec, env := doJSON(t, h, http.MethodPost, "/bookings", "guest-1-token", createPayload())
	require.Equal(t, http.StatusCreated, rec.Code)
	require.True(t, env.Success)
	require.Equal(t, "booking created", env.Message)

	var created map[string]any
	require.NoError(t, json.Unmarshal(env.Data, &created))
	require.Equal(t, "pending", created["status"])
	require.Equal(t, "guest-1", created["guestId"])
	require.Equal(t, "host-1", created["hostId"])
}

func TestCreateBookingAnonymousEndpoint(t *testing.T) {
	h := newTestServer(t)
	rec, env := doJSON(t, h, http.MethodPost, "/bookings", "", createPayload())
	require.Equal(t, http.StatusCreated, rec.Code)

	var created map[string]any
	require.NoError(t, json.Unmarshal(env.Data, &created))
	_, hasGuest := created["guestId"]
	require.False(t, hasGuest, "anonymous booking must omit guestId")
}

func TestCreateBookingConflictEndpoint(t *testing.T) {
	h := newTestServer(t)
	rec, _ := doJSON(t, h, http.MethodPost, "/bookings", "guest-1-token", createPayload())
	require.Equal(t, http.StatusCreated, rec.Code)

	rec, env := doJSON(t, h, http.MethodPost, "/bookings", "guest-1-token", createPayload())
	require.Equal(t, http.StatusConflict, rec.Code)
	require.False(t, env.Success)
	require.NotEmpty(t, env.Message)
}

func TestCreateBookingValidationEndpoint(t *testing.T) {
	h := newTestServer(t)
	payload := createPayload()
	payload["guestEmail"] = "nope"
	rec, env := doJSON(t, h, http.MethodPost, "/bookings", "", payload)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.False(t, env.Success)
}

func TestCheckAvailabilityEndpoint(t *testing.T) {
	h := newTestServer(t)
	body := map[string]any{
		"listingId": "l-1",
		"checkIn":   "2024-03-01T00:00:00Z",
		"checkOut":  "2024-03-05T00:00:00Z",
	}
	rec, env := doJSON(t, h, http.MethodPost, "/bookings/check-availability", "", body)
	require.Equal(t, http.StatusOK, rec.Code)

	var data map[string]bool
	require.NoError(t, json.Unmarshal(env.Data, &data))
	require.True(t, data["available"])

	_, _ = doJSON(t, h, http.MethodPost, "/bookings", "guest-1-token", createPayload())

	rec, env = doJSON(t, h, http.MethodPost, "/bookings/check-availability", "", body)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(env.Data, &data))
	require.False(t, data["available"])
}

func TestCheckAvailabilityUnknownListingEndpoint(t *testing.T) {
	h := newTestServer(t)
	body := map[string]any{
		"listingId": "nope",
		"checkIn":   "2024-03-01T00:00:00Z",
		"checkOut":  "2024-03-05T00:00:00Z",
	}
	rec, _ := doJSON(t, h, http.MethodPost, "/bookings/check-availability", "", body)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestStatusTransitionEndpoint(t *testing.T) {
	h := newTestServer(t)
	_, env := doJSON(t, h, http.MethodPost, "/bookings", "guest-1-token", createPayload())
	var created map[string]any
	require.NoError(t, json.Unmarshal(env.Data, &created))
	id := created["id"].(string)

	// guest may not confirm
	rec, _ := doJSON(t, h, http.MethodPut, "/bookings/"+id, "guest-1-token", map[string]string{"status": "confirmed"})
	require.Equal(t, http.StatusForbidden, rec.Code)

	rec, env = doJSON(t, h, http.MethodPut, "/bookings/"+id, "host-1-token", map[string]string{"status": "confirmed"})
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(env.Data, &created))
	require.Equal(t, "confirmed", created["status"])

	// confirmed cannot go back to pending
	rec, _ = doJSON(t, h, http.MethodPut, "/bookings/"+id, "host-1-token", map[string]string{"status": "pending"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCancelEndpointRequiresAuth(t *testing.T) {
	h := newTestServer(t)
	_, env := doJSON(t, h, http.MethodPost, "/bookings", "guest-1-token", createPayload())
	var created map[string]any
	require.NoError(t, json.Unmarshal(env.Data, &created))
	id := created["id"].(string)

	rec, _ := doJSON(t, h, http.MethodPut, "/bookings/"+id+"/cancel", "", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec, env = doJSON(t, h, http.MethodPut, "/bookings/"+id+"/cancel", "guest-1-token", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "booking cancelled", env.Message)
}

func TestRequestCancelEndpoint(t *testing.T) {
	h := newTestServer(t)
	_, env := doJSON(t, h, http.MethodPost, "/bookings", "guest-1-token", createPayload())
	var created map[string]any
	require.NoError(t, json.Unmarshal(env.Data, &created))
	id := created["id"].(string)

	rec, _ := doJSON(t, h, http.MethodPost, "/bookings/"+id+"/request-cancel", "guest-1-token", nil)
	require.Equal(t, http.StatusForbidden, rec.Code)

	rec, env = doJSON(t, h, http.MethodPost, "/bookings/"+id+"/request-cancel", "host-1-token", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var data map[string]int
	require.NoError(t, json.Unmarshal(env.Data, &data))
	require.Equal(t, 1, data["notified"])
}

func TestDeleteEndpointTwoStep(t *testing.T) {
	h := newTestServer(t)
	_, env := doJSON(t, h, http.MethodPost, "/bookings", "guest-1-token", createPayload())
	var created map[string]any
	require.NoError(t, json.Unmarshal(env.Data, &created))
	id := created["id"].(string)

	rec, _ := doJSON(t, h, http.MethodDelete, "/bookings/"+id+"/delete", "host-1-token", nil)
	require.Equal(t, http.StatusForbidden, rec.Code)

	rec, env = doJSON(t, h, http.MethodDelete, "/bookings/"+id+"/delete", "admin-1-token", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var step map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(env.Data, &step))
	require.JSONEq(t, "false", string(step["deleted"]))

	rec, env = doJSON(t, h, http.MethodDelete, "/bookings/"+id+"/delete", "admin-1-token", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(env.Data, &step))
	require.JSONEq(t, "true", string(step["deleted"]))

	rec, _ = doJSON(t, h, http.MethodGet, "/bookings/"+id, "admin-1-token", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListScopingEndpoint(t *testing.T) {
	h := newTestServer(t)
	_, _ = doJSON(t, h, http.MethodPost, "/bookings", "guest-1-token", createPayload())

	rec, _ := doJSON(t, h, http.MethodGet, "/bookings", "", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec, env := doJSON(t, h, http.MethodGet, "/bookings", "guest-1-token", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var items []json.RawMessage
	require.NoError(t, json.Unmarshal(env.Data, &items))
	require.Len(t, items, 1)

	rec, env = doJSON(t, h, http.MethodGet, "/host/bookings", "host-1-token", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(env.Data, &items))
	require.Len(t, items, 1)

	rec, _ = doJSON(t, h, http.MethodGet, "/host/bookings", "guest-1-token", nil)
	require.Equal(t, http.StatusForbidden, rec.Code)
}

func TestNotificationsEndpoint(t *testing.T) {
	h := newTestServer(t)
	_, _ = doJSON(t, h, http.MethodPost, "/bookings", "guest-1-token", createPayload())

	rec, env := doJSON(t, h, http.MethodGet, "/notifications", "host-1-token", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var data struct {
		Notifications []struct {
			ID     string `json:"id"`
			IsRead bool   `json:"isRead"`
		} `json:"notifications"`
		Unread int `json:"unread"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	require.Len(t, data.Notifications, 1)
	require.Equal(t, 1, data.Unread)
	require.False(t, data.Notifications[0].IsRead)

	noteID := data.Notifications[0].ID

	// only the recipient can mark it read
	rec, _ = doJSON(t, h, http.MethodPut, fmt.Sprintf("/notifications/%s/read", noteID), "guest-1-token", nil)
	require.Equal(t, http.StatusForbidden, rec.Code)

	rec, _ = doJSON(t, h, http.MethodPut, fmt.Sprintf("/notifications/%s/read", noteID), "host-1-token", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	_, env = doJSON(t, h, http.MethodGet, "/notifications", "host-1-token", nil)
	require.NoError(t, json.Unmarshal(env.Data, &data))
	require.Equal(t, 0, data.Unread)
}
