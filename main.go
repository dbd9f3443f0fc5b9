package main

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/zehrydogan/aydogan-arsa-sub001/routes"
	"github.com/zehrydogan/aydogan-arsa-sub001/services"
	"github.com/zehrydogan/aydogan-arsa-sub001/storage"
	"github.com/zehrydogan/aydogan-arsa-sub001/utils"
	"github.com/zehrydogan/aydogan-arsa-sub001/ws"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kataras/iris/v12"
	"github.com/kataras/iris/v12/middleware/jwt"
)

func main() {
	godotenv.Load()
	storage.InitializeDB()
	storage.InitializeRedis()

	app := iris.New()
	app.Validator = validator.New()

	// CORS for the web dashboard (http://localhost:3000)
	app.AllowMethods(iris.MethodOptions)
	app.UseRouter(func(ctx iris.Context) {
		ctx.Header("Access-Control-Allow-Origin", ctx.GetHeader("Origin"))
		ctx.Header("Vary", "Origin")
		ctx.Header("Access-Control-Allow-Credentials", "true")
		ctx.Header("Access-Control-Allow-Headers", "Authorization, Content-Type, X-Requested-With")
		ctx.Header("Access-Control-Allow-Methods", "GET,POST,PATCH,PUT,DELETE,OPTIONS")
		if ctx.Method() == iris.MethodOptions {
			ctx.StatusCode(iris.StatusNoContent)
			return
		}
		ctx.Next()
	})

	app.Use(iris.Compression)

	resetTokenVerifier := jwt.NewVerifier(jwt.HS256, []byte(os.Getenv("EMAIL_TOKEN_SECRET")))
	resetTokenVerifier.WithDefaultBlocklist()
	resetTokenVerifierMiddleware := resetTokenVerifier.Verify(func() interface{} {
		return new(utils.ForgotPasswordToken)
	})

	accessTokenVerifier := jwt.NewVerifier(jwt.HS256, []byte(os.Getenv("ACCESS_TOKEN_SECRET")))
	accessTokenVerifier.WithDefaultBlocklist()
	accessTokenVerifierMiddleware := accessTokenVerifier.Verify(func() interface{} {
		return new(utils.AccessToken)
	})

	refreshTokenVerifier := jwt.NewVerifier(jwt.HS256, []byte(os.Getenv("REFRESH_TOKEN_SECRET")))
	refreshTokenVerifier.WithDefaultBlocklist()
	refreshTokenVerifierMiddleware := refreshTokenVerifier.Verify(func() interface{} {
		return new(jwt.Claims)
	})

	refreshTokenVerifier.Extractors = append(refreshTokenVerifier.Extractors, func(ctx iris.Context) string {
		var tokenInput utils.RefreshTokenInput
		err := ctx.ReadJSON(&tokenInput)
		if err != nil {
			return ""
		}

		return tokenInput.RefreshToken
	})

	// Shared websocket hub, also used by the REST messaging routes so
	// open sockets learn about messages sent over HTTP
	hub := ws.NewHub()
	wsHandler := ws.NewHandler(hub)
	routes.Hub = hub

	app.Get("/ws", wsHandler.Serve)

	user := app.Party("/api/user")
	{
		user.Post("/register", routes.Register)
		user.Post("/login", routes.Login)
		user.Post("/google", routes.GoogleLoginOrSignUp)
		user.Post("/apple", routes.AppleLoginOrSignUp)
		user.Post("/forgotpassword", routes.ForgotPassword)
		user.Post("/resetpassword", resetTokenVerifierMiddleware, routes.ResetPassword)
		user.Patch("/{id}/pushtoken", accessTokenVerifierMiddleware, utils.UserIDMiddleware, routes.AlterPushToken)
		user.Patch("/{id}/settings/notifications", accessTokenVerifierMiddleware, utils.UserIDMiddleware, routes.AllowsNotifications)
		user.Patch("/profile", accessTokenVerifierMiddleware, routes.UpdateUserProfile)
		user.Get("/{id:uint}", accessTokenVerifierMiddleware, routes.GetUser)
	}

	property := app.Party("/api/property")
	{
		property.Post("/", accessTokenVerifierMiddleware, routes.CreateProperty)
		property.Get("/mine", accessTokenVerifierMiddleware, routes.GetMyProperties)
		property.Get("/{id:uint}", routes.GetProperty)
		property.Patch("/{id:uint}", accessTokenVerifierMiddleware, routes.UpdateProperty)
		property.Patch("/{id:uint}/status", accessTokenVerifierMiddleware, routes.UpdatePropertyStatus)
		property.Delete("/{id:uint}", accessTokenVerifierMiddleware, routes.DeleteProperty)
	}

	properties := app.Party("/api/properties")
	{
		properties.Get("/search", routes.SearchProperties)
	}

	location := app.Party("/api/location")
	{
		location.Get("/cities", routes.GetCities)
		location.Get("/{id:uint}/children", routes.GetLocationChildren)
		location.Get("/{id:uint}/tree", routes.GetLocationTree)
	}

	favorites := app.Party("/api/favorites", accessTokenVerifierMiddleware)
	{
		favorites.Get("/", routes.GetFavorites)
		favorites.Post("/{propertyID:uint}", routes.AddFavorite)
		favorites.Delete("/{propertyID:uint}", routes.RemoveFavorite)
	}

	savedSearches := app.Party("/api/saved-searches", accessTokenVerifierMiddleware)
	{
		savedSearches.Get("/", routes.GetSavedSearches)
		savedSearches.Post("/", routes.CreateSavedSearch)
		savedSearches.Patch("/{id:uint}", routes.UpdateSavedSearch)
		savedSearches.Delete("/{id:uint}", routes.DeleteSavedSearch)
		savedSearches.Post("/{id:uint}/run", routes.RunSavedSearch)
	}

	contact := app.Party("/api/contact")
	{
		// Guests may submit; the optional verifier links logged-in callers
		contact.Post("/", routes.CreateContactRequest)
		contact.Get("/", accessTokenVerifierMiddleware, routes.GetContactRequests)
		contact.Patch("/{id:uint}/read", accessTokenVerifierMiddleware, routes.MarkContactRequestRead)
		contact.Patch("/{id:uint}/status", accessTokenVerifierMiddleware, routes.UpdateContactRequestStatus)
	}

	messages := app.Party("/api/messages", accessTokenVerifierMiddleware)
	{
		messages.Post("/", routes.CreateMessage)
		messages.Get("/conversations", routes.GetConversations)
		messages.Post("/conversations", routes.CreateConversation)
		messages.Get("/conversations/{id:uint}/messages", routes.ListConversationMessages)
		messages.Put("/conversations/{id:uint}/read", routes.MarkConversationRead)
		messages.Delete("/conversations/{id:uint}", routes.DeleteConversation)
		messages.Get("/unread-count", routes.GetUnreadCount)
	}

	admin := app.Party("/api/admin", accessTokenVerifierMiddleware, utils.AdminOnlyMiddleware)
	{
		admin.Get("/users", routes.AdminListUsers)
		admin.Get("/users/{id:uint}", routes.AdminGetUser)
		admin.Post("/users/{id:uint}/suspend", routes.AdminSuspendUser)
		admin.Patch("/users/{id:uint}/role", utils.SuperAdminOnlyMiddleware, routes.AdminChangeUserRole)
		admin.Get("/properties", routes.AdminListProperties)
		admin.Get("/properties/{id:uint}", routes.AdminGetProperty)
		admin.Patch("/properties/{id:uint}/status", routes.AdminUpdatePropertyStatus)
		admin.Post("/properties/{id:uint}/flag", routes.AdminFlagProperty)
		admin.Post("/properties/{id:uint}/unflag", routes.AdminUnflagProperty)
		admin.Get("/contacts", routes.AdminListContactRequests)
		admin.Delete("/contacts/{id:uint}", routes.AdminDeleteContactRequest)
		admin.Get("/stats", routes.AdminStats)
		admin.Get("/activity", routes.AdminActivity)
		admin.Post("/export", routes.AdminCreateExport)
		admin.Get("/export/{id:string}", routes.AdminGetExport)
	}

	app.Post("/api/refresh", refreshTokenVerifierMiddleware, utils.RefreshToken)

	// Saved search alerts run on a fixed cadence
	go runSavedSearches()

	port := os.Getenv("PORT")
	if port == "" {
		port = "4000"
	}
	addr := "0.0.0.0:" + port

	fmt.Printf("🚀 Server starting on %s\n", addr)

	if err := app.Listen(addr); err != nil {
		log.Fatalf("❌ Server failed: %v", err)
	}
}

func runSavedSearches() {
	interval := 30 * time.Minute
	if raw := os.Getenv("SAVED_SEARCH_INTERVAL_MINUTES"); raw != "" {
		if minutes, err := time.ParseDuration(raw + "m"); err == nil && minutes > 0 {
			interval = minutes
		}
	}

	runner := services.NewSavedSearchService()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for range ticker.C {
		runner.RunAll()
	}
}
