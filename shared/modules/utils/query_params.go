package utils

import (
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"
)

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// GetQueryParamAsInt reads a strictly positive integer query parameter,
// returning defaultValue when it is absent.
func GetQueryParamAsInt(c *gin.Context, paramName string, defaultValue int) (int, error) {
	paramValue := c.Query(paramName)
	if paramValue == "" {
		return defaultValue, nil
	}

	intValue, err := strconv.Atoi(paramValue)
	if err != nil || intValue <= 0 {
		return 0, ValidationError{Field: paramName, Message: "must be a positive integer"}
	}
	return intValue, nil
}

// GetQueryParamAsFloat reads a strictly positive decimal query parameter.
func GetQueryParamAsFloat(c *gin.Context, paramName string, defaultValue float64) (float64, error) {
	paramValue := c.Query(paramName)
	if paramValue == "" {
		return defaultValue, nil
	}

	value, err := strconv.ParseFloat(paramValue, 64)
	if err != nil || !(value > 0) {
		return 0, ValidationError{Field: paramName, Message: "must be a positive number"}
	}
	return value, nil
}
