package dto

type RegisterRequestDTO struct {
	Login    string `json:"login" example:"alice"`
	Password string `json:"password" example:"s3cret-pass"`
}

type RegisterResponseDTO struct {
	Message string `json:"message" example:"User successfully registered"`
}

type LoginRequestDTO struct {
	Login    string `json:"login" example:"alice"`
	Password string `json:"password" example:"s3cret-pass"`
}

type LoginResponseDTO struct {
	Message string `json:"message" example:"User successfully authenticated"`
	Role    string `json:"role" example:"user"`
}
