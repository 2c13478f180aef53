package ws

import (
	"context"
	"net/http"
	"sync"
	"time"

	"havens-pos-service/internal/auth"
	"havens-pos-service/internal/config"
	"havens-pos-service/internal/http/handlers"

	"github.com/gorilla/websocket"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

type Server struct {
	DB     *pgxpool.Pool
	Logger *zap.Logger
	Config config.Config

	kitchenRealtime *kitchenRealtime
}

func New(db *pgxpool.Pool, logger *zap.Logger, cfg config.Config) *Server {
	srv := &Server{DB: db, Logger: logger, Config: cfg}
	srv.kitchenRealtime = newKitchenRealtime(db, logger, cfg.WSKitchenPollInterval)
	return srv
}

type wsClient struct {
	conn    *websocket.Conn
	writeMu sync.Mutex
}

func (c *wsClient) writeJSON(value any) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.conn.WriteJSON(value)
}

// kitchenRealtime polls the kitchen queue and fans changes out to every
// connected display.
type kitchenRealtime struct {
	db           *pgxpool.Pool
	logger       *zap.Logger
	pollInterval time.Duration

	started sync.Once
	stop    sync.Once
	done    chan struct{}
	stopped chan struct{}

	mu   sync.RWMutex
	subs map[*wsClient]struct{}
}

func newKitchenRealtime(db *pgxpool.Pool, logger *zap.Logger, pollInterval time.Duration) *kitchenRealtime {
	if pollInterval <= 0 {
		pollInterval = 3 * time.Second
	}
	return &kitchenRealtime{
		db:           db,
		logger:       logger,
		pollInterval: pollInterval,
		done:         make(chan struct{}),
		stopped:      make(chan struct{}),
		subs:         make(map[*wsClient]struct{}),
	}
}

func (kr *kitchenRealtime) ensureStarted() {
	kr.started.Do(func() {
		go kr.pollLoop()
	})
}

func (kr *kitchenRealtime) close() {
	kr.stop.Do(func() { close(kr.done) })
}

// Close stops the poll loop. Safe to call more than once.
func (s *Server) Close() {
	s.kitchenRealtime.close()
}

func (kr *kitchenRealtime) subscribe(client *wsClient) (unsubscribe func()) {
	kr.mu.Lock()
	kr.subs[client] = struct{}{}
	kr.mu.Unlock()

	return func() {
		kr.mu.Lock()
		delete(kr.subs, client)
		kr.mu.Unlock()
	}
}

func (kr *kitchenRealtime) broadcast(message any) {
	kr.mu.RLock()
	clients := make([]*wsClient, 0, len(kr.subs))
	for c := range kr.subs {
		clients = append(clients, c)
	}
	kr.mu.RUnlock()

	for _, c := range clients {
		if err := c.writeJSON(message); err != nil {
			_ = c.conn.Close()
			kr.mu.Lock()
			delete(kr.subs, c)
			kr.mu.Unlock()
		}
	}
}

func (kr *kitchenRealtime) pollLoop() {
	defer close(kr.stopped)

	var lastChanged time.Time
	ticker := time.NewTicker(kr.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-kr.done:
			return
		case <-ticker.C:
		}

		kr.mu.RLock()
		idle := len(kr.subs) == 0
		kr.mu.RUnlock()
		if idle {
			continue
		}

		ctx, cancel := context.WithTimeout(context.Background(), kr.pollInterval)
		changed := kr.fetchQueueChangedAt(ctx)
		if !changed.After(lastChanged) {
			cancel()
			continue
		}
		lastChanged = changed

		displays, err := kr.fetchQueue(ctx)
		cancel()
		if err != nil {
			if kr.logger != nil {
				kr.logger.Warn("kitchen queue poll failed", zap.Error(err))
			}
			kr.broadcast(map[string]any{"type": "kitchen.refresh", "updatedAt": changed})
			continue
		}
		kr.broadcast(map[string]any{"type": "kitchen.state", "data": displays})
	}
}

func (kr *kitchenRealtime) fetchQueueChangedAt(ctx context.Context) time.Time {
	var changed time.Time
	err := kr.db.QueryRow(ctx, `
		select coalesce(max(oi.updated_at), to_timestamp(0))
		from order_items oi
		join orders o on o.id = oi.order_id
		where o.status not in ('completed', 'cancelled')
	`).Scan(&changed)
	if err != nil {
		return time.Time{}
	}
	return changed
}

func (kr *kitchenRealtime) fetchQueue(ctx context.Context) ([]handlers.KitchenDisplayView, error) {
	rows, err := kr.db.Query(ctx, `
		select
			kd.id, kd.order_item_id, o.order_number, mi.name,
			oi.quantity, oi.status, kd.station, kd.priority,
			kd.estimated_completion, kd.started_at, kd.completed_at,
			t.number
		from kitchen_displays kd
		join order_items oi on oi.id = kd.order_item_id
		join orders o on o.id = oi.order_id
		join menu_items mi on mi.id = oi.menu_item_id
		left join tables t on t.id = o.table_id
		where oi.status in ('pending', 'preparing') and o.status not in ('completed', 'cancelled')
		order by kd.priority desc, kd.estimated_completion asc
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	now := time.Now()
	displays := make([]handlers.KitchenDisplayView, 0)
	for rows.Next() {
		var (
			d           handlers.KitchenDisplayView
			startedAt   pgtype.Timestamptz
			completedAt pgtype.Timestamptz
			tableNumber pgtype.Text
		)
		if err := rows.Scan(
			&d.ID, &d.OrderItemID, &d.OrderNumber, &d.MenuItemName,
			&d.Quantity, &d.ItemStatus, &d.Station, &d.Priority,
			&d.EstimatedCompletion, &startedAt, &completedAt,
			&tableNumber,
		); err != nil {
			continue
		}
		if startedAt.Valid {
			d.StartedAt = &startedAt.Time
		}
		if completedAt.Valid {
			d.CompletedAt = &completedAt.Time
		}
		if tableNumber.Valid {
			d.TableNumber = &tableNumber.String
		}
		d.IsOverdue = d.ItemStatus != "ready" && now.After(d.EstimatedCompletion)
		displays = append(displays, d)
	}
	return displays, nil
}

// KitchenWS streams the live kitchen queue to a display. Auth is a bearer
// token in the token query parameter; the role must carry kitchen access.
func (s *Server) KitchenWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	token := auth.ParseBearerToken(r.URL.Query().Get("token"))
	if token == "" {
		token = r.URL.Query().Get("token")
	}
	claims, err := auth.VerifyAccessToken(token, s.Config.JWTSecret)
	if err != nil {
		_ = conn.WriteJSON(map[string]any{"type": "error", "message": "unauthorized"})
		return
	}
	if !auth.RoleHasCapability(claims.Role, auth.CapKitchenDisplay) {
		_ = conn.WriteJSON(map[string]any{"type": "error", "message": "forbidden"})
		return
	}

	s.kitchenRealtime.ensureStarted()
	ctx := r.Context()
	client := &wsClient{conn: conn}
	unsubscribe := s.kitchenRealtime.subscribe(client)
	defer unsubscribe()

	// initial snapshot
	if displays, fetchErr := s.kitchenRealtime.fetchQueue(ctx); fetchErr == nil {
		_ = client.writeJSON(map[string]any{"type": "kitchen.state", "data": displays})
	}

	clientClosed := make(chan struct{})
	go func() {
		defer close(clientClosed)
		for {
			if _, _, readErr := conn.ReadMessage(); readErr != nil {
				return
			}
		}
	}()

	heartbeat := time.NewTicker(s.Config.WSHeartbeatInterval)
	defer heartbeat.Stop()
	for {
		select {
		case <-clientClosed:
			return
		case <-ctx.Done():
			return
		case <-heartbeat.C:
			client.writeMu.Lock()
			err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(5*time.Second))
			client.writeMu.Unlock()
			if err != nil {
				return
			}
		}
	}
}
