package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sangkips/tablepos/internal/domain/entity"
	"github.com/sangkips/tablepos/internal/presentation/http/dto/response"
	"github.com/sangkips/tablepos/internal/presentation/http/middleware"
)

// currentCashier returns the authenticated cashier or writes a 401.
func currentCashier(c *gin.Context) (entity.Cashier, bool) {
	cashier, ok := middleware.GetCashier(c)
	if !ok {
		response.Unauthorized(c, "Cashier not authenticated")
	}
	return cashier, ok
}

// uuidParam parses a path parameter or writes a 400.
func uuidParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		response.BadRequest(c, "Invalid "+name+" format")
		return uuid.Nil, false
	}
	return id, true
}

// uintParam parses a numeric path parameter or writes a 400.
func uintParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		response.BadRequest(c, "Invalid "+name+" format")
		return 0, false
	}
	return uint(id), true
}

func bind(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		response.BadRequest(c, "Invalid request: "+err.Error())
		return false
	}
	return true
}
