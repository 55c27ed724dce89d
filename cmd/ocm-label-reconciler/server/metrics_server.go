package server

import (
	"context"
	"net/http"

	"github.com/golang/glog"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsServer exposes the prometheus metrics endpoint
type MetricsServer struct {
	httpServer *http.Server
}

func NewMetricsServer(bindAddress string) *MetricsServer {
	router := mux.NewRouter()
	router.Handle("/metrics", promhttp.Handler())

	return &MetricsServer{
		httpServer: &http.Server{
			Addr:    bindAddress,
			Handler: router,
		},
	}
}

func (s *MetricsServer) Start() {
	glog.Infof("Serving Metrics at %s", s.httpServer.Addr)
	err := s.httpServer.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		glog.Fatalf("Metrics server terminated with errors: %s", err.Error())
	}
	glog.Infof("Metrics server terminated")
}

func (s *MetricsServer) Stop() error {
	return s.httpServer.Shutdown(context.Background())
}
