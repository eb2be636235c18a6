package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/greenvvay/Parking/internal/api/handler"
	"github.com/greenvvay/Parking/internal/api/middleware"
	"github.com/greenvvay/Parking/internal/domain"
)

// Dependencies of the router. LPR, Barrier and Controllers are optional and
// their routes are only mounted when set.
type Dependencies struct {
	Parking     handler.ParkingService
	Auth        handler.AuthService
	AuthMw      *middleware.AuthMiddleware
	LPR         handler.LPRService
	Barrier     handler.BarrierCommander
	Controllers handler.GateControllerStore
	WebSocket   *handler.WebSocketManager
	Metrics     http.Handler
	Logger      *zap.Logger
}

func SetupRouter(d Dependencies) *gin.Engine {
	log := d.Logger
	if log == nil {
		log = zap.NewNop()
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.Tracing())
	r.Use(middleware.Logger(log.Named("http")))
	r.Use(middleware.CORS())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if d.Metrics != nil {
		r.GET("/metrics", gin.WrapH(d.Metrics))
	}
	if d.WebSocket != nil {
		wsHandler := handler.NewWebSocketHandler(d.WebSocket)
		r.GET("/ws", wsHandler.HandleWebSocket)
	}

	authHandler := handler.NewAuthHandler(d.Auth)
	authRoutes := r.Group("/auth")
	{
		authRoutes.POST("/register", authHandler.Register)
		authRoutes.POST("/login", authHandler.Login)
	}

	authMw := d.AuthMw
	v1 := r.Group("/api/v1")
	v1.Use(authMw.Authenticate())
	{
		parkingH := handler.NewParkingHandler(d.Parking)
		gateRoutes := v1.Group("/gates")
		gateRoutes.Use(authMw.AuthorizeRole(domain.RoleAdmin, domain.RoleOperator))
		{
			gateRoutes.POST("/entry/:gate", parkingH.Enter)
			gateRoutes.POST("/exit/:gate", parkingH.Exit)
			if d.LPR != nil {
				gateEventH := handler.NewGateEventHandler(d.LPR, d.Parking)
				gateRoutes.POST("/entry/:gate/lpr", gateEventH.EnterByPlate)
			}
		}

		v1.GET("/spaces", parkingH.Spaces)
		v1.GET("/vehicles", parkingH.Vehicles)
		v1.GET("/logs", parkingH.Logs)
		v1.GET("/tickets/:id/payment", parkingH.Quote)
		v1.POST("/tickets/:id/payment", parkingH.Pay)
		v1.GET("/tickets/:id/session", parkingH.Session)
		v1.GET("/sessions/active", parkingH.ActiveSessions)

		tariffH := handler.NewTariffHandler(d.Parking)
		v1.GET("/tariff", tariffH.Get)
		v1.PUT("/tariff", authMw.AuthorizeRole(domain.RoleAdmin), tariffH.Put)

		if d.Controllers != nil {
			ctlH := handler.NewGateControllerHandler(d.Controllers)
			ctlRoutes := v1.Group("/controllers")
			ctlRoutes.Use(authMw.AuthorizeRole(domain.RoleAdmin, domain.RoleOperator))
			{
				ctlRoutes.GET("", ctlH.List)
				ctlRoutes.GET("/:thing_name", ctlH.Get)
			}
		}

		if d.Barrier != nil {
			iotCmdH := handler.NewIoTCommandHandler(d.Barrier)
			iotRoutes := v1.Group("/iot/commands")
			iotRoutes.Use(authMw.AuthorizeRole(domain.RoleAdmin, domain.RoleOperator))
			{
				iotRoutes.POST("/barrier", iotCmdH.ControlBarrier)
			}
		}

		if d.LPR != nil {
			lprH := handler.NewLPRHandler(d.LPR)
			lprRoutes := v1.Group("/lpr")
			lprRoutes.Use(authMw.AuthorizeRole(domain.RoleAdmin, domain.RoleOperator))
			{
				lprRoutes.POST("/process-image", lprH.ProcessImage)
			}
		}
	}
	return r
}
