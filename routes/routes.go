package routes

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/actsofsharing/actsofsharing-api/config"
	"github.com/actsofsharing/actsofsharing-api/controllers"
	_ "github.com/actsofsharing/actsofsharing-api/docs"
	"github.com/actsofsharing/actsofsharing-api/middleware"
	"github.com/actsofsharing/actsofsharing-api/models"
)

func SetupRoutes(r *gin.Engine, cfg *config.Config) {
	auth := middleware.AuthMiddleware(cfg)
	adminOnly := middleware.RequireRoles(models.RoleAdmin)
	hostOrAdmin := middleware.RequireRoles(models.RoleHost, models.RoleAdmin)

	api := r.Group("/api")

	// public
	api.POST("/users/register", controllers.Register(cfg))
	api.GET("/users/verify", controllers.VerifyEmail(cfg))
	api.POST("/users/login", controllers.Login(cfg))
	api.POST("/users/password-reset", controllers.RequestPasswordReset(cfg))
	api.POST("/users/password-reset/confirm", controllers.ResetPassword(cfg))

	api.GET("/events/public", controllers.ListPublicEvents(cfg))
	api.GET("/events/share/:shareUrl", controllers.GetEventByShareURL(cfg))
	api.POST("/events/:id/votes", controllers.CastVote(cfg))

	api.POST("/contributions/donate", controllers.ProcessDonation(cfg))
	api.POST("/webhook/stripe", controllers.StripeWebhook(cfg))

	api.POST("/contact", controllers.CreateContact(cfg))
	api.POST("/request", controllers.CreateRequest(cfg))
	api.GET("/stories", controllers.ListStories(cfg))
	api.GET("/stories/:id", controllers.GetStory(cfg))

	// users
	users := api.Group("/users")
	users.Use(auth)
	{
		users.GET("", adminOnly, controllers.ListUsers(cfg))
		users.GET("/me", controllers.Me(cfg))
		users.GET("/:id", controllers.GetUser(cfg))
		users.PATCH("/:id", controllers.UpdateUser(cfg))
		users.DELETE("/:id", controllers.DeleteUser(cfg))
	}

	// events
	events := api.Group("/events")
	events.Use(auth)
	{
		events.POST("", hostOrAdmin, controllers.CreateEvent(cfg))
		events.POST("/from-template/:templateId", hostOrAdmin, controllers.CreateEventFromTemplate(cfg))
		events.GET("", hostOrAdmin, controllers.ListEvents(cfg))
		events.GET("/:id", controllers.GetEvent(cfg))
		events.PATCH("/:id", hostOrAdmin, controllers.UpdateEvent(cfg))
		events.PATCH("/:id/status", hostOrAdmin, controllers.UpdateEventStatus(cfg))
		events.POST("/:id/invite", hostOrAdmin, controllers.InviteGuests(cfg))
		events.DELETE("/:id", hostOrAdmin, controllers.DeleteEvent(cfg))

		events.POST("/:id/messages", controllers.CreateMessage(cfg))
		events.GET("/:id/messages", controllers.ListEventMessages(cfg))

		events.POST("/:id/stories", controllers.NominateStory(cfg))
		events.GET("/:id/stories", controllers.ListEventStories(cfg))
		events.GET("/:id/votes", hostOrAdmin, controllers.VoteResults(cfg))
	}

	// contributions
	contributions := api.Group("/contributions")
	contributions.Use(auth)
	{
		contributions.GET("", hostOrAdmin, controllers.ListContributions(cfg))
		contributions.GET("/total", hostOrAdmin, controllers.GetTotalFundsRaised(cfg))
		contributions.GET("/:id", hostOrAdmin, controllers.GetContribution(cfg))
		contributions.PATCH("/:id", adminOnly, controllers.UpdateContribution(cfg))
		contributions.DELETE("/:id", adminOnly, controllers.DeleteContribution(cfg))
	}

	// disbursements
	disbursements := api.Group("/disbursements")
	disbursements.Use(auth)
	{
		disbursements.POST("", hostOrAdmin, controllers.CreateDisbursement(cfg))
		disbursements.GET("", hostOrAdmin, controllers.ListDisbursements(cfg))
		disbursements.GET("/:id", hostOrAdmin, controllers.GetDisbursement(cfg))
		disbursements.PATCH("/:id/approve", adminOnly, controllers.ApproveDisbursement(cfg))
		disbursements.PATCH("/:id/flag", adminOnly, controllers.FlagDisbursement(cfg))
	}

	// messages (edit/delete by id)
	messages := api.Group("/messages")
	messages.Use(auth)
	{
		messages.PATCH("/:id", controllers.UpdateMessage(cfg))
		messages.DELETE("/:id", controllers.DeleteMessage(cfg))
	}

	// notifications
	notifications := api.Group("/notifications")
	notifications.Use(auth)
	{
		notifications.POST("", hostOrAdmin, controllers.CreateNotification(cfg))
		notifications.GET("", controllers.ListNotifications(cfg))
	}

	// templates
	templates := api.Group("/templates")
	templates.Use(auth)
	{
		templates.POST("", adminOnly, controllers.CreateTemplate(cfg))
		templates.GET("", controllers.ListTemplates(cfg))
		templates.GET("/:id", controllers.GetTemplate(cfg))
		templates.PATCH("/:id", adminOnly, controllers.UpdateTemplate(cfg))
		templates.DELETE("/:id", adminOnly, controllers.DeleteTemplate(cfg))
	}

	// requests / contacts / stories admin surface
	requests := api.Group("/request")
	requests.Use(auth, adminOnly)
	{
		requests.GET("", controllers.ListRequests(cfg))
		requests.PATCH("/:id", controllers.UpdateRequest(cfg))
		requests.DELETE("/:id", controllers.DeleteRequest(cfg))
	}

	contacts := api.Group("/contact")
	contacts.Use(auth, adminOnly)
	{
		contacts.GET("", controllers.ListContacts(cfg))
		contacts.DELETE("/:id", controllers.DeleteContact(cfg))
	}

	stories := api.Group("/stories")
	stories.Use(auth, adminOnly)
	{
		stories.POST("", controllers.CreateStory(cfg))
		stories.PATCH("/:id", controllers.UpdateStory(cfg))
		stories.DELETE("/:id", controllers.DeleteStory(cfg))
	}

	r.GET("/api-docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
}
