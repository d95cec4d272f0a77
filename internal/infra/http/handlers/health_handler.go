package handlers

import (
	"database/sql"
	"net/http"

	amqp "github.com/rabbitmq/amqp091-go"
)

type HealthHandler struct {
	DB   *sql.DB
	AMQP *amqp.Connection
}

func NewHealthHandler(db *sql.DB, conn *amqp.Connection) *HealthHandler {
	return &HealthHandler{DB: db, AMQP: conn}
}

func (h *HealthHandler) Handle(w http.ResponseWriter, r *http.Request) {
	checks := map[string]string{
		"database": "ok",
		"rabbitmq": "ok",
	}
	healthy := true

	if err := h.DB.PingContext(r.Context()); err != nil {
		checks["database"] = err.Error()
		healthy = false
	}
	if h.AMQP == nil || h.AMQP.IsClosed() {
		checks["rabbitmq"] = "connection closed"
		healthy = false
	}

	status := http.StatusOK
	if !healthy {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, map[string]any{"ok": healthy, "checks": checks})
}
