package web

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/rs/cors"

	"arena-service/config"
	"arena-service/pkg/common"
	"arena-service/services"
)

type Server struct {
	config     *config.Config
	teams      services.TeamStore
	matches    services.MatchStore
	scoring    *services.ScoringService
	wsHub      *Hub
	httpServer *http.Server
	upgrader   websocket.Upgrader
}

func NewServer(cfg *config.Config, teams services.TeamStore, matches services.MatchStore, scoring *services.ScoringService, hub *Hub) *Server {
	return &Server{
		config:  cfg,
		teams:   teams,
		matches: matches,
		scoring: scoring,
		wsHub:   hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true // 允许所有来源(生产环境需要限制)
			},
		},
	}
}

func (s *Server) Start() error {
	router := mux.NewRouter()

	// API路由
	api := router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/health", s.handleHealth).Methods("GET")

	// 队伍
	api.HandleFunc("/teams", s.handleRegisterTeam).Methods("POST")
	api.HandleFunc("/register", s.handleRegisterTeam).Methods("POST")
	api.HandleFunc("/teams", s.handleListTeams).Methods("GET")
	api.HandleFunc("/teams/{team_id}", s.handleGetTeam).Methods("GET")

	// 比赛
	api.HandleFunc("/matches", s.handleCreateMatch).Methods("POST")
	api.HandleFunc("/matches", s.handleListMatches).Methods("GET")
	api.HandleFunc("/matches/{match_id}", s.handleGetMatch).Methods("GET")

	// 计分
	api.HandleFunc("/matches/{match_id}/start", s.handleStartMatch).Methods("POST")
	api.HandleFunc("/matches/{match_id}/toss", s.handleToss).Methods("POST", "PUT")
	api.HandleFunc("/matches/{match_id}/score", s.handleCricketScore).Methods("POST", "PUT")
	api.HandleFunc("/matches/{match_id}/end_innings", s.handleEndInnings).Methods("POST")
	api.HandleFunc("/matches/{match_id}/kabaddi/score", s.handleKabaddiScore).Methods("POST", "PUT")
	api.HandleFunc("/matches/{match_id}/kabaddi/half", s.handleSwitchHalf).Methods("POST")
	api.HandleFunc("/matches/{match_id}/volleyball/score", s.handleVolleyballScore).Methods("POST", "PUT")
	api.HandleFunc("/matches/{match_id}/complete", s.handleCompleteMatch).Methods("POST", "PUT")
	api.HandleFunc("/matches/{match_id}/end_match", s.handleCompleteMatch).Methods("POST", "PUT")

	// 成就榜
	api.HandleFunc("/achievements", s.handleAchievements).Methods("GET")

	// WebSocket路由
	router.HandleFunc("/ws/matches/{match_id}", s.handleWebSocket)

	// CORS配置
	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	})

	handler := c.Handler(router)

	s.httpServer = &http.Server{
		Addr:         ":" + s.config.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s.httpServer.ListenAndServe()
}

func (s *Server) Stop() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}
}

// handleHealth 健康检查
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status": "ok",
		"time":   time.Now().Unix(),
	})
}

// handleWebSocket WebSocket连接处理,按比赛入房间
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	matchID, err := pathID(r, "match_id")
	if err != nil {
		http.Error(w, "invalid match id", http.StatusBadRequest)
		return
	}

	// 比赛必须存在才建立连接
	if _, err := s.matches.Load(r.Context(), matchID); err != nil {
		writeError(w, err)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade error: %v", err)
		return
	}

	client := &Client{
		hub:     s.wsHub,
		conn:    conn,
		matchID: matchID,
		send:    make(chan []byte, s.wsHub.sendBuffer),
	}

	client.hub.register <- client

	go client.writePump()
	go client.readPump()
}

// pathID 从路径变量里解析数字ID
func pathID(r *http.Request, name string) (int64, error) {
	vars := mux.Vars(r)
	return strconv.ParseInt(vars[name], 10, 64)
}

// writeJSON 输出JSON响应
func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Printf("Failed to encode response: %v", err)
	}
}

// writeError 把领域错误映射为HTTP状态码
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, common.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, common.ErrInvalidTeam),
		errors.Is(err, common.ErrWrongSport),
		errors.Is(err, common.ErrNotLive),
		errors.Is(err, common.ErrInvalidState),
		errors.Is(err, common.ErrInvalidInput):
		status = http.StatusBadRequest
	case errors.Is(err, common.ErrStoreUnavailable):
		status = http.StatusServiceUnavailable
	}

	writeJSON(w, status, map[string]interface{}{
		"detail": err.Error(),
	})
}
