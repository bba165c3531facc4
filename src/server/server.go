// Copyright 2016 NDP Systèmes. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

/*
Package server exposes the CRM save hooks, reminder operations and
calendar feeds over HTTP.
*/
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/pprof"
	"github.com/gin-gonic/gin"
	"github.com/hexya-erp/crm/src/crm"
	"github.com/hexya-erp/crm/src/tools/logging"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/viper"
)

var log logging.Logger

func init() {
	log = logging.GetLogger("server")
}

// shutdownTimeout is the time given to running requests when the server stops
const shutdownTimeout = 10 * time.Second

// A Server is the http server of the application
// It is internally a wrapper around a gin.Engine
type Server struct {
	*gin.Engine
	service *crm.Service
}

// New returns a Server serving the given service. Metrics are read from
// gatherer, or from the default prometheus registry if gatherer is nil.
func New(service *crm.Service, gatherer prometheus.Gatherer) *Server {
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	srv := &Server{
		Engine:  gin.New(),
		service: service,
	}
	srv.Use(gin.Recovery())
	srv.Use(logging.LogForGin(log))
	if viper.GetBool("Debug") {
		pprof.Register(srv.Engine)
	}
	srv.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	srv.registerRoutes(srv.Group("/api"))
	return srv
}

// Group creates a new router group. You should add all the routes that have common middlwares or the same path prefix.
func (s *Server) Group(relativePath string, handlers ...HandlerFunc) *RouterGroup {
	return &RouterGroup{
		RouterGroup: *s.Engine.Group(relativePath, wrapContextFuncs(handlers...)...),
	}
}

// Run listens on addr and serves HTTP requests until ctx is done.
// Running requests are then given some time to complete.
func (s *Server) Run(ctx context.Context, addr string) (err error) {
	httpServer := &http.Server{
		Addr:    addr,
		Handler: s,
	}
	errChan := make(chan error, 1)
	go func() {
		log.Info("CRM is up and running HTTP", "address", addr)
		errChan <- httpServer.ListenAndServe()
	}()
	select {
	case err = <-errChan:
		log.Error("HTTP server stopped", "error", err)
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err = httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown failed", "error", err)
		return err
	}
	log.Info("HTTP server stopped")
	return nil
}
