package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/budline/budline/internal/app/controllers"
	"github.com/budline/budline/internal/middleware"
	"github.com/budline/budline/internal/pkg/websocket"
)

// SetupRouter configures all application routes
func SetupRouter(
	router *gin.Engine,
	authController *controllers.AuthController,
	feedController *controllers.FeedController,
	conversationController *controllers.ConversationController,
	messageController *controllers.MessageController,
	reactionController *controllers.ReactionController,
	socialController *controllers.SocialController,
	moderationController *controllers.ModerationController,
	attachmentController *controllers.AttachmentController,
	wsHandler *websocket.Handler,
	authMiddleware *middleware.AuthMiddleware,
) {
	v1 := router.Group("/api/v1")

	// --- Public auth routes ---
	auth := v1.Group("/auth")
	{
		auth.POST("/register", authController.Register)
		auth.POST("/login", authController.Login)
	}

	// --- Authenticated routes ---
	authenticated := v1.Group("")
	authenticated.Use(authMiddleware.JWTAuth())
	{
		authenticated.GET("/me", authController.Me)

		feed := authenticated.Group("/feed")
		{
			feed.GET("", feedController.GetFeed)
			feed.POST("", feedController.PostToFeed)
		}

		conversations := authenticated.Group("/conversations")
		{
			conversations.GET("", conversationController.ListConversations)
			conversations.POST("/direct", conversationController.GetOrCreateDirect)
			conversations.POST("/group", conversationController.CreateGroup)
			conversations.GET("/:id", conversationController.GetConversation)
			conversations.GET("/:id/messages", messageController.GetHistory)
			conversations.POST("/:id/messages", messageController.PostMessage)
			conversations.POST("/:id/participants", conversationController.AddParticipant)
			conversations.DELETE("/:id/participants/:userId", conversationController.RemoveParticipant)
			conversations.POST("/:id/read", conversationController.MarkRead)
			conversations.GET("/:id/unread", conversationController.GetUnreadCount)

			// Live event stream per conversation
			conversations.GET("/:id/ws", wsHandler.HandleConnection)
		}

		messages := authenticated.Group("/messages")
		{
			messages.GET("/:id", messageController.GetMessage)
			messages.PATCH("/:id", messageController.EditMessage)
			messages.DELETE("/:id", messageController.DeleteMessage)
			messages.GET("/:id/thread", messageController.GetThread)
			messages.PUT("/:id/reactions", reactionController.React)
			messages.DELETE("/:id/reactions", reactionController.Unreact)
			messages.GET("/:id/reactions", reactionController.ListReactions)
			messages.POST("/:id/report", moderationController.ReportMessage)
		}

		users := authenticated.Group("/users")
		{
			users.PUT("/:id/follow", socialController.Follow)
			users.DELETE("/:id/follow", socialController.Unfollow)
			users.GET("/:id/following", socialController.ListFollowing)
			users.GET("/:id/followers", socialController.ListFollowers)
			users.PUT("/:id/block", socialController.Block)
			users.DELETE("/:id/block", socialController.Unblock)
		}

		authenticated.GET("/social/suggestions", socialController.SuggestedFollows)

		attachments := authenticated.Group("/attachments")
		{
			attachments.POST("", attachmentController.Upload)
			attachments.GET("/:id", attachmentController.Get)
		}

		// Moderator-only queue
		moderation := authenticated.Group("/moderation")
		moderation.Use(authMiddleware.ModeratorRequired())
		{
			moderation.GET("/reports", moderationController.ListPendingReports)
			moderation.POST("/reports/:id/resolve", moderationController.ResolveReport)
		}
	}
}
