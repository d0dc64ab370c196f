package mapper

import (
	"flowcore/internal/api/handler/response"
	"flowcore/internal/api/models"
)

type UserMapper struct{}

func (UserMapper) EntityToUserResponse(user models.User) response.UserResponseDTO {
	return response.UserResponseDTO{
		ID:     user.ID,
		Email:  user.Email,
		Prenom: user.Prenom,
		Nom:    user.Nom,
		Role:   string(user.Role),
		Actif:  user.Actif,
	}
}
