package server

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/emilythestrangee/subreddits/backend/internal/auth"
	"github.com/emilythestrangee/subreddits/backend/internal/config"
	"github.com/emilythestrangee/subreddits/backend/internal/database"
	"github.com/emilythestrangee/subreddits/backend/internal/events"
	"github.com/emilythestrangee/subreddits/backend/internal/handlers"
	"github.com/emilythestrangee/subreddits/backend/internal/middleware"
	"github.com/emilythestrangee/subreddits/backend/internal/services"
	"github.com/emilythestrangee/subreddits/backend/internal/voting"
)

type Server struct {
	cfg     *config.Config
	log     *zap.Logger
	store   database.Store
	tokens  *auth.Tokens
	limiter middleware.Limiter
	handler *handlers.Handler
}

// Deps are the collaborators opened by the caller. Events and Limiter may be
// nil.
type Deps struct {
	Store   database.Store
	Events  *events.Publisher
	Limiter middleware.Limiter
}

func New(cfg *config.Config, log *zap.Logger, deps Deps) *Server {
	tokens := auth.NewTokens(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	access := services.NewAccess(deps.Store)
	engine := voting.NewEngine(deps.Store, log)

	handler := handlers.NewHandler(handlers.Services{
		Accounts:   services.NewAccountService(deps.Store, tokens, log),
		Subreddits: services.NewSubredditService(deps.Store, access, deps.Events, log),
		Posts:      services.NewPostService(deps.Store, access, engine, deps.Events, log),
		Comments:   services.NewCommentService(deps.Store, access, engine, deps.Events, log),
	})

	return &Server{
		cfg:     cfg,
		log:     log,
		store:   deps.Store,
		tokens:  tokens,
		limiter: deps.Limiter,
		handler: handler,
	}
}

// HTTPServer wraps the router in an http.Server listening on cfg.Port.
func (s *Server) HTTPServer() *http.Server {
	return &http.Server{
		Addr:         "0.0.0.0:" + s.cfg.Port,
		Handler:      s.RegisterRoutes(),
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
}

// RegisterRoutes sets up all application routes
func (s *Server) RegisterRoutes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(s.log))

	// CORS configuration
	r.Use(cors.New(cors.Config{
		AllowOrigins:     s.cfg.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:     []string{"Accept", "Authorization", "Content-Type", "X-Requested-With", middleware.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", middleware.RequestIDHeader},
		AllowCredentials: !allowsAny(s.cfg.AllowedOrigins),
		MaxAge:           12 * time.Hour,
	}))

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		stats := s.store.Health(c.Request.Context())
		status := http.StatusOK
		if stats["status"] != "up" {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, stats)
	})

	requireAuth := middleware.Auth(s.tokens)
	optionalAuth := middleware.OptionalAuth(s.tokens)
	rateLimit := middleware.RateLimit(s.limiter, s.log)

	api := r.Group("/api")
	{
		// Auth routes (public)
		api.POST("/register", s.handler.Auth.Register)
		api.POST("/login", s.handler.Auth.Login)

		// Public reads; the viewer is resolved when a token is sent
		public := api.Group("", optionalAuth)
		{
			public.GET("/subreddits", s.handler.Subreddit.GetSubreddits)
			public.GET("/subreddits/:id", s.handler.Subreddit.GetSubreddit)
			public.GET("/posts", s.handler.Post.GetPosts)
			public.GET("/posts/:id", s.handler.Post.GetPost)
			public.GET("/posts/:id/comments", s.handler.Post.GetComments)
			public.GET("/users/:id", s.handler.User.GetUserProfile)
		}

		// Protected routes (authentication required)
		protected := api.Group("", requireAuth)
		{
			protected.GET("/me", s.handler.Auth.GetMe)

			protected.POST("/subreddits", s.handler.Subreddit.CreateSubreddit)
			protected.PATCH("/subreddits/:id", s.handler.Subreddit.UpdateSubreddit)
			protected.PUT("/subreddits/:id", s.handler.Subreddit.UpdateSubreddit)
			protected.DELETE("/subreddits/:id", s.handler.Subreddit.DeleteSubreddit)
			protected.POST("/subreddits/:id/join", s.handler.Subreddit.JoinSubreddit)
			protected.DELETE("/subreddits/:id/join", s.handler.Subreddit.LeaveSubreddit)
			protected.POST("/subreddits/:id/moderators", s.handler.Subreddit.AddModerator)
			protected.DELETE("/subreddits/:id/moderators/:userId", s.handler.Subreddit.RemoveModerator)

			protected.POST("/posts", s.handler.Post.CreatePost)
			protected.PATCH("/posts/:id", s.handler.Post.UpdatePost)
			protected.PUT("/posts/:id", s.handler.Post.UpdatePost)
			protected.DELETE("/posts/:id", s.handler.Post.DeletePost)
			protected.POST("/posts/:id/vote", rateLimit, s.handler.Post.VotePost)

			protected.POST("/posts/:id/comments", s.handler.Post.CreateComment)
			protected.PATCH("/comments/:commentId", s.handler.Comment.UpdateComment)
			protected.PUT("/comments/:commentId", s.handler.Comment.UpdateComment)
			protected.DELETE("/comments/:commentId", s.handler.Comment.DeleteComment)
			protected.POST("/comments/:commentId/vote", rateLimit, s.handler.Comment.VoteComment)
			protected.POST("/comments/:commentId/upvote", rateLimit, s.handler.Comment.UpvoteComment)
			protected.POST("/comments/:commentId/downvote", rateLimit, s.handler.Comment.DownvoteComment)
		}
	}

	return r
}

func allowsAny(origins []string) bool {
	for _, o := range origins {
		if o == "*" {
			return true
		}
	}
	return false
}
