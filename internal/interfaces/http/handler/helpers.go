package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// pathID parses the :name path parameter as a UUID
func pathID(c *gin.Context, name string) (uuid.UUID, error) {
	return uuid.Parse(c.Param(name))
}

// reconcileFlag defaults a missing flag to true
func reconcileFlag(flag *bool) bool {
	return flag == nil || *flag
}
