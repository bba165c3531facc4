// Copyright 2017 NDP Systèmes. All Rights Reserved.
// See LICENSE file for full licensing details.

package server

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/hexya-erp/crm/src/crm"
	"github.com/hexya-erp/crm/src/models"
	"github.com/hexya-erp/crm/src/models/types/dates"
	"github.com/hexya-erp/crm/src/tools/exceptions"
	"github.com/pkg/errors"
)

// UserHeader is the request header holding the name of the user
// performing the request.
const UserHeader = "X-CRM-User"

// Exception types of error responses
const (
	ExceptionUser       = "user_error"
	ExceptionNotFound   = "not_found"
	ExceptionBadRequest = "bad_request"
	ExceptionServer     = "server_error"
)

// The Context allows to pass data across controller layers
// and middlewares.
type Context struct {
	*gin.Context
}

// A ResponseError is the message format sent back to a
// client in case of failure
type ResponseError struct {
	Error ErrorData `json:"error"`
}

// ErrorData is the format of the Error field of a ResponseError
type ErrorData struct {
	Message       string `json:"message"`
	ExceptionType string `json:"exception_type"`
	Debug         string `json:"debug,omitempty"`
}

// abortWithError aborts the request with an error response
func (c *Context) abortWithError(code int, excType, msg, debug string) {
	c.AbortWithStatusJSON(code, ResponseError{
		Error: ErrorData{
			Message:       msg,
			ExceptionType: excType,
			Debug:         debug,
		},
	})
}

// RespondError writes the error response matching err.
//
// User errors are sent with status 422 and missing records with 404.
// Any other error is logged and sent as an internal server error.
func (c *Context) RespondError(err error) {
	if uErr, ok := exceptions.AsUserError(err); ok {
		c.abortWithError(http.StatusUnprocessableEntity, ExceptionUser, uErr.Message, uErr.Debug)
		return
	}
	if models.IsNotFound(err) {
		c.abortWithError(http.StatusNotFound, ExceptionNotFound, "Record not found", "")
		return
	}
	c.Error(err)
	c.abortWithError(http.StatusInternalServerError, ExceptionServer, "Internal server error", "")
}

// BadRequest aborts the request with status 400
func (c *Context) BadRequest(err error) {
	c.abortWithError(http.StatusBadRequest, ExceptionBadRequest, err.Error(), "")
}

// BindBody binds the JSON request body to obj. It returns false and
// aborts the request if the body cannot be read.
func (c *Context) BindBody(obj interface{}) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		c.BadRequest(errors.Wrap(err, "invalid request body"))
		return false
	}
	return true
}

// SaveOptions returns the save options given in the request
func (c *Context) SaveOptions() crm.SaveOptions {
	drag, _ := strconv.ParseBool(c.Query("drag"))
	return crm.SaveOptions{
		FromCalendarDrag: drag,
		ChangedBy:        c.GetHeader(UserHeader),
	}
}

// Range returns the start and end query parameters of a calendar feed
// request. It returns false and aborts the request if they are invalid.
func (c *Context) Range() (dates.DateTime, dates.DateTime, bool) {
	var bounds [2]dates.DateTime
	for i, param := range []string{"start", "end"} {
		value := c.Query(param)
		if value == "" {
			c.BadRequest(errors.Errorf("missing %s parameter", param))
			return dates.DateTime{}, dates.DateTime{}, false
		}
		dt, err := dates.ParseDateTimeAny(value)
		if err != nil {
			c.BadRequest(errors.Wrapf(err, "invalid %s parameter", param))
			return dates.DateTime{}, dates.DateTime{}, false
		}
		bounds[i] = dt
	}
	return bounds[0], bounds[1], true
}
