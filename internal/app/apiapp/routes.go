package apiapp

import (
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	taskssvc "github.com/onetwonaz-bit/cointap/internal/services/tasks"
	userssvc "github.com/onetwonaz-bit/cointap/internal/services/users"
	walletsvc "github.com/onetwonaz-bit/cointap/internal/services/wallet"
	"github.com/onetwonaz-bit/cointap/internal/transport/http/handlers"
)

type Dependencies struct {
	UserService   *userssvc.Service
	TaskService   *taskssvc.Service
	WalletService *walletsvc.Service
	AdminID       int64
	Logger        *zap.Logger
}

func RegisterRoutes(r chi.Router, deps Dependencies) {
	healthHandler := handlers.NewHealthHandler()
	userHandler := handlers.NewUserHandler(deps.UserService)
	taskHandler := handlers.NewTaskHandler(deps.TaskService)
	walletHandler := handlers.NewWalletHandler(deps.WalletService)
	adminHandler := handlers.NewAdminHandler(deps.UserService, deps.TaskService, deps.WalletService)
	adminMW := AdminAuthMiddleware(deps.AdminID, deps.Logger)

	r.Get("/healthz", healthHandler.Get)

	r.Route("/api", func(r chi.Router) {
		r.Post("/user/init", userHandler.Init)
		r.Get("/tasks/{telegramId}", taskHandler.List)
		r.Post("/tasks/verify", taskHandler.Verify)
		r.Get("/history/{telegramId}", walletHandler.History)
		r.Post("/withdraw", walletHandler.Withdraw)

		r.Route("/admin", func(r chi.Router) {
			r.Use(adminMW)
			r.Get("/data", adminHandler.Data)
			r.Post("/task", adminHandler.CreateTask)
			r.Post("/task/{id}/delete", adminHandler.DeleteTask)
			r.Post("/withdraw/{id}/approve", adminHandler.ApproveWithdrawal)
			r.Post("/withdraw/{id}/reject", adminHandler.RejectWithdrawal)
			r.Post("/user/{id}/ban", adminHandler.BanUser)
			r.Post("/user/{id}/unban", adminHandler.UnbanUser)
		})
	})
}
