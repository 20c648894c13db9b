package http

import (
	"context"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/inklab/sketchroom/internal/adapters/signal"
	"github.com/inklab/sketchroom/internal/app/orch"
	"github.com/inklab/sketchroom/internal/config"
	"github.com/inklab/sketchroom/internal/store"
)

func genClientToken() string {
	return uuid.NewString()
}

// ClientTokenMiddleware pins a stable connection identity to the
// browser via a cookie; the WS adapter uses it as the session id.
func ClientTokenMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, _ := c.Cookie("ct")
		if token == "" {
			token = genClientToken()
			c.SetCookie("ct", token, 3600*24*7, "/", "", false, true)
		}
		c.Set("client_token", token)
		c.Next()
	}
}

func SetupRouter(ctx context.Context, cfg *config.Config, o *orch.Orchestrator, st store.Store, ctl *signal.Controller) *gin.Engine {
	if cfg.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if cfg.Mode == "debug" {
		r.Use(gin.Logger())
	}
	r.Use(gin.Recovery())

	cookieStore := cookie.NewStore([]byte(cfg.Secret))
	r.Use(sessions.Sessions("SketchroomSessions", cookieStore))
	r.Use(ClientTokenMiddleware())

	r.Static("/static", cfg.StaticPath)
	r.GET("/", func(c *gin.Context) {
		c.File(cfg.StaticPath + "/index.html")
	})
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	log.Info().Str("module", "adapters.http").Str("static", cfg.StaticPath).Msg("router setup")

	h := &roomHandlers{orch: o, store: st}

	api := r.Group("/api")

	api.GET("/ws", func(c *gin.Context) {
		log.Info().Str("module", "adapters.http").Str("sid", c.GetString("client_token")).Msg("ws endpoint hit")
		ctl.HandleWS(ctx, c)
	})

	api.GET("/rooms", h.listRooms)
	api.POST("/rooms", h.createRoom)
	api.GET("/rooms/:roomId", h.getRoom)
	api.PUT("/rooms/:roomId", h.updateRoom)
	api.DELETE("/rooms/:roomId", h.deleteRoom)

	api.GET("/drawings/:roomId", h.getDrawing)
	api.DELETE("/drawings/:roomId", h.clearDrawing)

	api.GET("/users/room/:roomId", h.getRoomUsers)
	api.GET("/sessions", h.activeSessions)

	return r
}
