package helper_util

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

func GetPaginationParams(c *gin.Context) (page int, pageSize int, err error) {
	page, err = strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil {
		return 0, 0, err
	}
	pageSize, err = strconv.Atoi(c.DefaultQuery("pageSize", "50"))
	if err != nil {
		return 0, 0, err
	}
	return page, pageSize, nil
}
