// Copyright 2017 NDP Systèmes. All Rights Reserved.
// See LICENSE file for full licensing details.

package server

import "github.com/gin-gonic/gin"

// A HandlerFunc is a function that can be used for handling a given request or as a middleware
type HandlerFunc func(*Context)

// RouterGroup is used internally to configure router, a RouterGroup is associated with a prefix
// and an array of handlers (middleware)
type RouterGroup struct {
	gin.RouterGroup
}

// wrapContextFuncs returns a slice of gin.HandlerFunc from a slice of HandlerFunc
func wrapContextFuncs(handlers ...HandlerFunc) []gin.HandlerFunc {
	wrappedHandlers := make([]gin.HandlerFunc, len(handlers))
	for i, hf := range handlers {
		// We use here a closure inside a closure to freeze hf
		wrappedHandlers[i] = func(f HandlerFunc) gin.HandlerFunc {
			return func(ctx *gin.Context) {
				f(&Context{Context: ctx})
			}
		}(hf)
	}
	return wrappedHandlers
}

// Group creates a new router group. You should add all the routes that have common middlwares or the same path prefix.
func (rg *RouterGroup) Group(relativePath string, handlers ...HandlerFunc) *RouterGroup {
	return &RouterGroup{
		RouterGroup: *rg.RouterGroup.Group(relativePath, wrapContextFuncs(handlers...)...),
	}
}

// POST is a shortcut for router.Handle("POST", path, handle)
func (rg *RouterGroup) POST(relativePath string, handlers ...HandlerFunc) gin.IRoutes {
	return rg.RouterGroup.POST(relativePath, wrapContextFuncs(handlers...)...)
}

// GET is a shortcut for router.Handle("GET", path, handle)
func (rg *RouterGroup) GET(relativePath string, handlers ...HandlerFunc) gin.IRoutes {
	return rg.RouterGroup.GET(relativePath, wrapContextFuncs(handlers...)...)
}

// registerRoutes declares all the routes of the API on the given group
func (s *Server) registerRoutes(api *RouterGroup) {
	api.POST("/calls", s.saveCall)
	api.GET("/calls/:id", s.getCall)
	api.POST("/meetings", s.saveMeeting)
	api.GET("/meetings/:id", s.getMeeting)
	api.POST("/todos", s.saveToDo)
	api.GET("/todos/:id", s.getToDo)
	api.POST("/events", s.saveEvent)
	api.GET("/events/:id", s.getEvent)
	api.POST("/leads", s.saveLead)
	api.GET("/leads/:id", s.getLead)

	reminders := api.Group("/reminders")
	reminders.GET("", s.listReminders)
	reminders.POST("/:id/force_send", s.forceSend)

	cal := api.Group("/calendar")
	cal.GET("/calls", s.callFeed)
	cal.GET("/meetings", s.meetingFeed)
	cal.GET("/events", s.eventFeed)
}
