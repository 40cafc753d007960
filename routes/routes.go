package routes

import (
	"github.com/gin-gonic/gin"

	"go-medalert/handlers"
	"go-medalert/hub"
	"go-medalert/locate"
	"go-medalert/mission"
	"go-medalert/store"
)

// Deps is everything the HTTP surface needs. Handlers receive their
// collaborators through route closures.
type Deps struct {
	Store        store.Store
	Resolver     *locate.Resolver
	IPLocator    *locate.IPLocator
	Orchestrator *mission.Orchestrator
	Runner       *mission.Runner
	Hub          *hub.Hub
}

func SetupRouter(deps Deps) *gin.Engine {
	r := gin.Default()

	r.GET("/", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "MedAlert dispatch engine",
		})
	})

	// api routes
	api := r.Group("/api/medalert")
	{
		api.POST("/alert", func(c *gin.Context) {
			handlers.CreateAlert(c, deps.Resolver, deps.IPLocator, deps.Orchestrator, deps.Runner)
		})
		api.GET("/alert/:id", func(c *gin.Context) {
			handlers.GetAlert(c, deps.Store)
		})
		api.POST("/geocode", func(c *gin.Context) {
			handlers.Geocode(c, deps.Resolver)
		})
		api.POST("/detect-ip", func(c *gin.Context) {
			handlers.DetectIP(c, deps.IPLocator)
		})
		api.GET("/facilities", func(c *gin.Context) {
			handlers.ListFacilities(c, deps.Store)
		})
		api.GET("/fleet", func(c *gin.Context) {
			handlers.ListFleet(c, deps.Store)
		})
		api.GET("/ws", func(c *gin.Context) {
			handlers.StreamMissions(c, deps.Hub)
		})
	}

	return r
}
