package utils

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/haven-dev/haven/internal/middleware"
	"github.com/haven-dev/haven/internal/models"
	"github.com/haven-dev/haven/internal/types"
)

func GetCurrentUser(ctx *gin.Context) (middleware.AuthenticatedUser, error) {
	user, exists := ctx.Get(types.ContextUserKey)

	if !exists {
		return middleware.AuthenticatedUser{}, fmt.Errorf("User not authenticated")
	}

	authenticatedUser, ok := user.(middleware.AuthenticatedUser)

	if !ok {
		return middleware.AuthenticatedUser{}, fmt.Errorf("Invalid user type in context")
	}

	return authenticatedUser, nil
}

func GetCurrentUserID(ctx *gin.Context) (uint, error) {
	user, err := GetCurrentUser(ctx)

	if err != nil {
		return 0, err
	}

	return user.ID, nil
}

func GetCurrentHub(ctx *gin.Context) (models.Hub, error) {
	hub, exists := ctx.Get(types.ContextHubKey)

	if !exists {
		return models.Hub{}, fmt.Errorf("Hub not authenticated")
	}

	authenticatedHub, ok := hub.(models.Hub)

	if !ok {
		return models.Hub{}, fmt.Errorf("Invalid hub type in context")
	}

	return authenticatedHub, nil
}
