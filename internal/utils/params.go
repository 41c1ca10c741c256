package utils

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
)

func getIDParam(ctx *gin.Context, name string, label string) (uint, error) {
	idStr := ctx.Param(name)

	if idStr == "" {
		return 0, errors.New(label + " ID not found")
	}

	id, err := strconv.ParseUint(idStr, 10, 32)

	if err != nil {
		return 0, errors.New("Invalid " + label + " ID")
	}

	return uint(id), nil
}

func GetSpaceID(ctx *gin.Context) (uint, error) {
	return getIDParam(ctx, "space_id", "Space")
}

func GetHubID(ctx *gin.Context) (uint, error) {
	return getIDParam(ctx, "hub_id", "Hub")
}

func GetDeviceID(ctx *gin.Context) (uint, error) {
	return getIDParam(ctx, "device_id", "Device")
}

func GetIncidentID(ctx *gin.Context) (uint, error) {
	return getIDParam(ctx, "incident_id", "Incident")
}

// GetPagination reads skip/limit query parameters, clamping limit to 100.
func GetPagination(ctx *gin.Context) (int, int) {
	skip, err := strconv.Atoi(ctx.DefaultQuery("skip", "0"))
	if err != nil || skip < 0 {
		skip = 0
	}

	limit, err := strconv.Atoi(ctx.DefaultQuery("limit", "100"))
	if err != nil || limit <= 0 || limit > 100 {
		limit = 100
	}

	return skip, limit
}
