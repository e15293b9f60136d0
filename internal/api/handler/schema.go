package handler

import "time"

// --- Request types ---

type credentials struct {
	Email    string `json:"email"    validate:"required"`
	Password string `json:"password" validate:"required"`
}

// credentialsRequest is the body of every /user endpoint: {"user":{...}}.
type credentialsRequest struct {
	User *credentials `json:"user" validate:"required"`
}

type createTaskRequest struct {
	Description string `json:"description" validate:"notblank,max=1000"`
}

// --- Response types ---

type accountResponse struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
}

type sessionResponse struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
	Token string `json:"token"`
}

type messageResponse struct {
	Message string `json:"message"`
}

type taskResponse struct {
	ID          int64     `json:"id"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

type deleteTaskResponse struct {
	ID int64 `json:"id"`
}
