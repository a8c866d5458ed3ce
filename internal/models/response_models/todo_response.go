package response_models

type TodoResponse struct {
	ID        string  `json:"id"`
	UserID    string  `json:"userId"`
	TripID    *string `json:"tripId"`
	Title     string  `json:"title"`
	Kind      string  `json:"kind,omitempty"`
	Status    string  `json:"status"`
	DueDate   *string `json:"dueDate"`
	CreatedAt int64   `json:"createdAt"`
	UpdatedAt int64   `json:"updatedAt"`
}
