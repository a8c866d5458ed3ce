package controllers

import (
	"github.com/gin-gonic/gin"

	"travelmind/internal/models/request_models"
	"travelmind/internal/services"
	"travelmind/pkg/middleware"
	"travelmind/pkg/utils"
)

type TodoController struct {
	todoService services.TodoServiceInterface
}

func NewTodoController(todoService services.TodoServiceInterface) *TodoController {
	return &TodoController{todoService: todoService}
}

// ListTodos godoc
// @Summary List the checklist of a trip
// @Tags Todos
// @Produce json
// @Param tripId path string true "Trip ID"
// @Success 200 {array} response_models.TodoResponse
// @Router /api/todos/{tripId} [get]
func (t *TodoController) ListTodos(c *gin.Context) {
	todos, err := t.todoService.ListByTrip(c.Request.Context(), c.Param("tripId"))
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.RespondSuccess(c, todos, "Todos fetched successfully")
}

// CreateTodo godoc
// @Summary Add a checklist item
// @Tags Todos
// @Accept json
// @Produce json
// @Param request body request_models.CreateTodoRequest true "Todo"
// @Success 200 {object} response_models.TodoResponse
// @Failure 400 {object} utils.APIResponse
// @Router /api/todos [post]
func (t *TodoController) CreateTodo(c *gin.Context) {
	var req request_models.CreateTodoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	req.UserID = middleware.UserID(c, req.UserID)

	todo, err := t.todoService.Create(c.Request.Context(), req)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.RespondSuccess(c, todo, "Todo created successfully")
}

// UpdateTodo godoc
// @Summary Update status, title or due date of a checklist item
// @Tags Todos
// @Accept json
// @Produce json
// @Param id path string true "Todo ID"
// @Param request body request_models.UpdateTodoRequest true "Fields to change"
// @Success 200 {object} response_models.TodoResponse
// @Failure 400 {object} utils.APIResponse
// @Failure 404 {object} utils.APIResponse
// @Router /api/todos/{id} [patch]
func (t *TodoController) UpdateTodo(c *gin.Context) {
	var req request_models.UpdateTodoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	todo, err := t.todoService.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.RespondSuccess(c, todo, "Todo updated successfully")
}
