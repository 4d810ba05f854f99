package api

import (
	"github.com/gin-contrib/cors"
	"github.com/wb-go/wbf/ginext"

	"edevents/cmd/middleware"
	"edevents/internal/auth"
	"edevents/internal/service"
)

type Routers struct {
	Service service.Service
	Gate    *auth.Gate
}

func NewRouters(r *Routers) *ginext.Engine {
	app := ginext.New("release")

	app.Use(middleware.LoggingMiddleware())
	app.Use(cors.Default())
	apiGroup := app.Group("/api")

	requireUser := r.Gate.RequireUser()

	apiGroup.GET("/events", r.Service.GetAllEvents)
	apiGroup.GET("/events/:id", r.Service.GetEventDetails)
	apiGroup.POST("/events", requireUser, r.Service.CreateEvent)
	apiGroup.PUT("/events/:id", requireUser, r.Service.UpdateEvent)
	apiGroup.DELETE("/events/:id", requireUser, r.Service.DeleteEvent)

	apiGroup.GET("/events/:id/tickets", requireUser, r.Service.ListTickets)
	apiGroup.POST("/events/:id/ticket", r.Service.BuyTicket)
	apiGroup.DELETE("/tickets/:id", r.Service.RevokeTicket)
	apiGroup.PATCH("/tickets/:id", r.Service.AmendTicket)

	apiGroup.GET("/events/:id/invites", requireUser, r.Service.ListInvitations)
	apiGroup.POST("/events/:id/invite", requireUser, r.Service.SendInvitation)
	apiGroup.DELETE("/invitations/:id", requireUser, r.Service.RevokeInvitation)
	apiGroup.PATCH("/invitations/:id", requireUser, r.Service.AmendInvitation)

	apiGroup.GET("/me", requireUser, r.Gate.Me)
	apiGroup.GET("/login", r.Gate.Login)
	apiGroup.GET("/register", r.Gate.Register)
	apiGroup.GET("/callback", r.Gate.Callback)
	apiGroup.GET("/logout", r.Gate.Logout)

	return app
}
