package todo_fx

import (
	"time"

	"go.uber.org/fx"
	"gorm.io/gorm"

	"travelmind/internal/repositories"
	"travelmind/internal/services"
)

var Module = fx.Provide(provideTodoRepo, provideTodoService)

func provideTodoRepo(db *gorm.DB) repositories.TodoRepository {
	return repositories.NewTodoRepository(db)
}

func provideTodoService(repo repositories.TodoRepository, loc *time.Location) services.TodoServiceInterface {
	return services.NewTodoService(repo, loc)
}
