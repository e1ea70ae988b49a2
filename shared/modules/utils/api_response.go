package utils

import "time"

type SuccessResponse struct {
	Success bool  `json:"success"`
	Data    any   `json:"data"`
	Meta    *Meta `json:"meta,omitempty"`
}

type ErrorResponse struct {
	Success bool     `json:"success"`
	Error   APIError `json:"error"`
}

type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// Meta carries the response timestamp and, for list endpoints, paging.
type Meta struct {
	Timestamp time.Time `json:"timestamp"`
	Page      int       `json:"page,omitempty"`
	Limit     int       `json:"limit,omitempty"`
	Total     int       `json:"total,omitempty"`
}

func CreateErrorResponse(code, message string) ErrorResponse {
	return ErrorResponse{
		Success: false,
		Error: APIError{
			Code:    code,
			Message: message,
		},
	}
}

// CreateDetailedErrorResponse attaches structured details (field errors,
// excluded samples) to an error.
func CreateDetailedErrorResponse(code, message string, details any) ErrorResponse {
	resp := CreateErrorResponse(code, message)
	resp.Error.Details = details
	return resp
}

func CreateSuccessResponse(data any) SuccessResponse {
	return SuccessResponse{
		Success: true,
		Data:    data,
		Meta: &Meta{
			Timestamp: time.Now(),
		},
	}
}

// CreatePagedSuccessResponse wraps one page of a list; total counts every
// item across all pages.
func CreatePagedSuccessResponse(data any, page, limit, total int) SuccessResponse {
	resp := CreateSuccessResponse(data)
	resp.Meta.Page = page
	resp.Meta.Limit = limit
	resp.Meta.Total = total
	return resp
}
