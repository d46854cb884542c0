package dto

type RegisterRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type RenameRequest struct {
	NewFileName string `json:"newFileName" binding:"required"`
}

type DeleteMultipleRequest struct {
	FileIDs []uint64 `json:"fileIds"`
}
