package request_models

type CreateTodoRequest struct {
	UserID  string `json:"userId"`
	TripID  string `json:"tripId" binding:"omitempty,uuid"`
	Title   string `json:"title" binding:"required"`
	DueDate string `json:"dueDate"`
	Kind    string `json:"kind"`
}

// UpdateTodoRequest leaves nil fields untouched. An empty dueDate clears it.
type UpdateTodoRequest struct {
	Status  *string `json:"status"`
	Title   *string `json:"title"`
	DueDate *string `json:"dueDate"`
}
