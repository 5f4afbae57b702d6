package controllers

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"meal_reservations/internal/middleware"
	"meal_reservations/internal/models"
	"meal_reservations/internal/services"
)

const writeWait = 5 * time.Second

// upgrader configures the WebSocket connection. Origins are already filtered
// by the CORS middleware and the token check.
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// ReservationSavedMessage is pushed to dashboards watching the saved week.
type ReservationSavedMessage struct {
	Event     string    `json:"event"`
	WeekStart string    `json:"week_start"`
	TimeSlot  string    `json:"time_slot"`
	UserID    uint      `json:"user_id"`
	At        time.Time `json:"at"`
}

// ReportHub keeps the admin report connections grouped by the week they watch
// and fans reservation events out to them.
type ReportHub struct {
	weekClients map[string]map[*websocket.Conn]bool
	broadcast   chan ReservationSavedMessage
	mu          sync.Mutex
}

// NewReportHub creates a hub and starts its broadcasting goroutine.
func NewReportHub() *ReportHub {
	hub := &ReportHub{
		weekClients: make(map[string]map[*websocket.Conn]bool),
		broadcast:   make(chan ReservationSavedMessage, 100),
	}
	go hub.run()
	return hub
}

func (h *ReportHub) run() {
	for msg := range h.broadcast {
		h.mu.Lock()
		for conn := range h.weekClients[msg.WeekStart] {
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(msg); err != nil {
				logrus.WithError(err).WithFields(logrus.Fields{
					"week_start": msg.WeekStart,
					"conn_ptr":   fmt.Sprintf("%p", conn),
				}).Info("Dropping report client after failed write")
				h.removeLocked(msg.WeekStart, conn)
				conn.Close()
			}
		}
		h.mu.Unlock()
	}
}

// RegisterClient subscribes conn to the events of week.
func (h *ReportHub) RegisterClient(week string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.weekClients[week]; !ok {
		h.weekClients[week] = make(map[*websocket.Conn]bool)
	}
	h.weekClients[week][conn] = true
	logrus.WithFields(logrus.Fields{
		"week_start": week,
		"conn_ptr":   fmt.Sprintf("%p", conn),
	}).Info("Report client registered")
}

// UnregisterClient removes conn from week.
func (h *ReportHub) UnregisterClient(week string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(week, conn)
}

func (h *ReportHub) removeLocked(week string, conn *websocket.Conn) {
	if clients, ok := h.weekClients[week]; ok {
		delete(clients, conn)
		if len(clients) == 0 {
			delete(h.weekClients, week)
		}
	}
}

// ClientCount returns the number of connections watching week.
func (h *ReportHub) ClientCount(week string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.weekClients[week])
}

// PublishReservation implements services.ReservationPublisher. It never blocks
// the request that saved the reservation.
func (h *ReportHub) PublishReservation(ev services.ReservationEvent) {
	msg := ReservationSavedMessage{
		Event:     "reservation_saved",
		WeekStart: ev.WeekStart,
		TimeSlot:  ev.TimeSlot,
		UserID:    ev.UserID,
		At:        ev.At,
	}
	select {
	case h.broadcast <- msg:
	default:
		logrus.Warn("Report broadcast channel full, dropping message")
	}
}

type ReportSocketController struct {
	hub   *ReportHub
	stats *services.StatsService
}

func NewReportSocketController(hub *ReportHub, stats *services.StatsService) *ReportSocketController {
	return &ReportSocketController{hub: hub, stats: stats}
}

// HandleReportsWebSocket streams reservation events of ?week= (default: the
// upcoming week) to an admin. The JWT travels in ?token= because browsers
// cannot set headers on websocket requests.
func (rc *ReportSocketController) HandleReportsWebSocket(c *gin.Context) {
	claims, err := middleware.ValidateToken(c.Query("token"))
	if err != nil {
		logrus.WithError(err).Warn("WebSocket connection attempt with invalid token")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Token invalido"})
		return
	}
	if claims.Role != models.RoleAdmin && claims.Role != models.RoleSuperAdmin {
		c.JSON(http.StatusForbidden, gin.H{"error": "Solo administradores"})
		return
	}
	week, err := rc.stats.ResolveWeek(c.Query("week"))
	if err != nil {
		respondError(c, err, "Semana invalida")
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logrus.WithError(err).Error("Failed to upgrade WebSocket connection")
		return
	}
	defer conn.Close()

	rc.hub.RegisterClient(week, conn)
	defer rc.hub.UnregisterClient(week, conn)

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logrus.WithError(err).WithField("user_id", claims.UserID).Debug("Report WebSocket read ended")
			}
			break
		}
		// Clients only listen; anything they send is ignored.
	}
	logrus.WithFields(logrus.Fields{"user_id": claims.UserID, "week_start": week}).Info("Report WebSocket closed")
}
