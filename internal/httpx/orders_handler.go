package httpx

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/pamlee/kitchen/internal/auth"
	"github.com/pamlee/kitchen/internal/catalog"
	"github.com/pamlee/kitchen/internal/orders"
	"github.com/pamlee/kitchen/internal/redisx"
	"github.com/pamlee/kitchen/internal/telemetry"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

type OrdersHandler struct {
	Orders  *orders.Service
	Catalog *catalog.Service
	Tokens  *auth.Tokens
	Redis   *redis.Client // optional tracking cache
	Log     zerolog.Logger
}

type updateStatusReq struct {
	Status string `json:"status"`
	Note   string `json:"note"`
}

func (h *OrdersHandler) Register(r *chi.Mux) {
	r.Post("/api/orders", h.create)
	r.Get("/api/orders/{trackerId}", h.get)
	r.With(h.Tokens.Authenticate).Get("/api/orders", h.list)
	r.With(h.Tokens.Authenticate, auth.RequireAdmin).Put("/api/orders/{trackerId}", h.updateStatus)
	r.With(h.Tokens.Authenticate, auth.RequireAdmin).Get("/api/stats", h.stats)
}

// create is unauthenticated: guests may order, the tracker id is the handle.
func (h *OrdersHandler) create(w http.ResponseWriter, r *http.Request) {
	var o orders.Order
	if err := json.NewDecoder(r.Body).Decode(&o); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	trackerID, err := h.Orders.Create(r.Context(), &o)
	if err != nil {
		mapError(w, err)
		return
	}
	telemetry.OrdersPlaced.Inc()
	writeJSON(w, http.StatusOK, map[string]any{
		"success":   true,
		"trackerId": trackerID,
		"message":   "Order placed successfully",
	})
}

func (h *OrdersHandler) list(w http.ResponseWriter, r *http.Request) {
	claims, _ := auth.FromContext(r.Context())
	list, err := h.Orders.List(r.Context(), claims.Role, claims.Email)
	if err != nil {
		mapError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "orders": list})
}

// get serves public tracking lookups, cache first.
func (h *OrdersHandler) get(w http.ResponseWriter, r *http.Request) {
	trackerID := chi.URLParam(r, "trackerId")

	if h.Redis != nil {
		key := fmt.Sprintf(redisx.KeyOrder, trackerID)
		if raw, err := h.Redis.Get(r.Context(), key).Result(); err == nil && raw != "" {
			writeJSON(w, http.StatusOK, map[string]any{"success": true, "order": json.RawMessage(raw)})
			return
		}
	}

	o, err := h.Orders.GetByTrackerID(r.Context(), trackerID)
	if err != nil {
		mapError(w, err)
		return
	}
	if h.Redis != nil {
		if b, err := json.Marshal(o); err == nil {
			_ = h.Redis.Set(r.Context(), fmt.Sprintf(redisx.KeyOrder, trackerID), b, redisx.TTLOrderCache).Err()
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "order": o})
}

func (h *OrdersHandler) updateStatus(w http.ResponseWriter, r *http.Request) {
	trackerID := chi.URLParam(r, "trackerId")
	var req updateStatusReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	o, err := h.Orders.UpdateStatus(r.Context(), trackerID, orders.Status(req.Status), req.Note)
	if err != nil {
		var tErr *orders.TransitionError
		if errors.As(err, &tErr) {
			telemetry.RejectedTransitions.Inc()
		}
		mapError(w, err)
		return
	}
	telemetry.StatusUpdates.WithLabelValues(string(o.Status)).Inc()

	if h.Redis != nil {
		_ = h.Redis.Del(r.Context(), fmt.Sprintf(redisx.KeyOrder, trackerID)).Err()
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "Order updated"})
}

func (h *OrdersHandler) stats(w http.ResponseWriter, r *http.Request) {
	st, err := h.Orders.Stats(r.Context())
	if err != nil {
		mapError(w, err)
		return
	}
	productCount, err := h.Catalog.Count(r.Context())
	if err != nil {
		mapError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"stats": map[string]any{
			"totalOrders":   st.TotalOrders,
			"totalRevenue":  st.TotalRevenue,
			"pendingOrders": st.PendingOrders,
			"totalProducts": productCount,
			"byStatus":      st.ByStatus,
		},
	})
}
