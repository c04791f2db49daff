package httpserver

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"sidesa/internal/audit"
	"sidesa/internal/auth"
	"sidesa/internal/httpserver/handlers"
	"sidesa/internal/storage"
)

func NewRouter(db *gorm.DB, rec *audit.Recorder, store *storage.ObjectStore, lg *zap.SugaredLogger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Recoverer, middleware.Logger)

	// Public site + auth entry points.
	r.Post("/v1/auth/login", handlers.Login(db, rec, lg))
	// Logout stays public: it must clear the cookie even when the session
	// behind it is already gone.
	r.Post("/v1/auth/logout", handlers.Logout(db, rec, lg))
	r.Post("/v1/auth/register", handlers.Register(db, lg))
	r.Post("/v1/auth/forgot-password", handlers.ForgotPassword(db, lg))
	r.Get("/v1/auth/reset-password", handlers.ValidateResetToken(db, lg))
	r.Post("/v1/auth/reset-password", handlers.ResetPassword(db, rec, lg))

	r.Get("/v1/news", handlers.ListNews(db, lg))
	r.Get("/v1/news/{slug}", handlers.GetNewsBySlug(db, lg))
	r.Get("/v1/letters", handlers.ListLetterTemplates(db, lg))
	r.Post("/v1/letters/{id}/download", handlers.DownloadLetterTemplate(db, lg))
	r.Get("/v1/gallery", handlers.ListGallery(db, lg))
	r.Get("/v1/profile", handlers.GetVillageProfile(db, lg))
	r.Get("/v1/population", handlers.GetPopulationStats(db, lg))
	r.Get("/v1/region", handlers.GetRegionData(db, lg))

	r.Group(func(protected chi.Router) {
		protected.Use(auth.SessionAuth(db))
		protected.Get("/v1/me", handlers.Me(db, lg))

		protected.With(auth.RequireCapability(auth.CapLogRead)).
			Get("/v1/logs", handlers.ListActivityLogs(db, lg))
		protected.With(auth.RequireCapability(auth.CapLogWrite)).
			Post("/v1/logs", handlers.CreateActivityLog(rec))

		protected.Group(func(admin chi.Router) {
			admin.Use(auth.RequireCapability(auth.CapUsersManage))
			admin.Get("/v1/admin/users", handlers.ListUsers(db, lg))
			admin.Post("/v1/admin/users", handlers.CreateUser(db, rec, lg))
			admin.Patch("/v1/admin/users/{id}", handlers.UpdateUser(db, rec, lg))
			admin.Delete("/v1/admin/users/{id}", handlers.DeleteUser(db, rec, lg))
		})

		protected.Group(func(content chi.Router) {
			content.Use(auth.RequireCapability(auth.CapContentWrite))
			content.Get("/v1/admin/news", handlers.AdminListNews(db, lg))
			content.Post("/v1/admin/news", handlers.CreateNews(db, rec, lg))
			content.Patch("/v1/admin/news/{id}", handlers.UpdateNews(db, rec, lg))
			content.Delete("/v1/admin/news/{id}", handlers.DeleteNews(db, rec, lg))

			content.Post("/v1/admin/letters", handlers.CreateLetterTemplate(db, rec, lg))
			content.Patch("/v1/admin/letters/{id}", handlers.UpdateLetterTemplate(db, rec, lg))
			content.Delete("/v1/admin/letters/{id}", handlers.DeleteLetterTemplate(db, rec, lg))

			content.Post("/v1/admin/gallery", handlers.CreateGalleryItem(db, rec, lg))
			content.Patch("/v1/admin/gallery/{id}", handlers.UpdateGalleryItem(db, rec, lg))
			content.Delete("/v1/admin/gallery/{id}", handlers.DeleteGalleryItem(db, rec, lg))

			content.Put("/v1/admin/profile", handlers.PutVillageProfile(db, rec, lg))
			content.Put("/v1/admin/population", handlers.PutPopulationStats(db, rec, lg))
			content.Put("/v1/admin/region", handlers.PutRegionData(db, rec, lg))
		})

		protected.With(auth.RequireCapability(auth.CapUploadsWrite)).
			Post("/v1/admin/uploads", handlers.Upload(store, rec, lg))
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	return r
}
