package gateway

import (
	"context"
	"io"
	"net/http"
	"net/http/httputil"
	"net/url"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// Resolver finds the base URL of a healthy service instance.
type Resolver interface {
	GetServiceURL(serviceName string) (string, error)
}

// Gateway reverse-proxies requests to services it discovers through a
// Resolver, falling back to fixed URLs when discovery fails.
type Gateway struct {
	resolver  Resolver
	fallbacks map[string]string
	proxies   map[string]*httputil.ReverseProxy
	services  map[string]string
	mutex     sync.RWMutex
	client    *http.Client
	logger    *logrus.Logger
}

// New builds a gateway for the services in fallbacks (service name to
// fallback URL). resolver may be nil.
func New(resolver Resolver, fallbacks map[string]string, logger *logrus.Logger) *Gateway {
	g := &Gateway{
		resolver:  resolver,
		fallbacks: fallbacks,
		proxies:   make(map[string]*httputil.ReverseProxy),
		services:  make(map[string]string),
		client:    &http.Client{Timeout: 2 * time.Second},
		logger:    logger,
	}

	g.Refresh()
	return g
}

// Refresh re-resolves every service and rebuilds proxies whose URL changed.
func (g *Gateway) Refresh() {
	for svc, fallback := range g.fallbacks {
		target := fallback
		if g.resolver != nil {
			resolved, err := g.resolver.GetServiceURL(svc)
			if err != nil {
				g.logger.WithError(err).WithField("service", svc).Warn("Service not found, using fallback")
			} else {
				target = resolved
			}
		}
		g.updateProxy(svc, target)
	}
}

// Watch refreshes routes every interval until ctx is done.
func (g *Gateway) Watch(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			g.Refresh()
		}
	}
}

func (g *Gateway) updateProxy(serviceName, serviceURL string) {
	g.mutex.Lock()
	defer g.mutex.Unlock()

	if g.services[serviceName] == serviceURL && g.proxies[serviceName] != nil {
		return
	}

	target, err := url.Parse(serviceURL)
	if err != nil || target.Host == "" {
		g.logger.WithField("service", serviceName).WithField("url", serviceURL).Error("Invalid service URL")
		return
	}

	proxy := httputil.NewSingleHostReverseProxy(target)
	proxy.ErrorHandler = func(w http.ResponseWriter, r *http.Request, err error) {
		g.logger.WithError(err).WithField("service", serviceName).Error("Proxy error")
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadGateway)
		io.WriteString(w, `{"message": "service unavailable"}`)
	}

	g.proxies[serviceName] = proxy
	g.services[serviceName] = serviceURL
	g.logger.WithFields(logrus.Fields{
		"service": serviceName,
		"url":     serviceURL,
	}).Info("Updated route")
}

func (g *Gateway) getProxy(serviceName string) *httputil.ReverseProxy {
	g.mutex.RLock()
	defer g.mutex.RUnlock()
	return g.proxies[serviceName]
}

// Proxy forwards the request unchanged to serviceName.
func (g *Gateway) Proxy(serviceName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		proxy := g.getProxy(serviceName)
		if proxy == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"message": serviceName + " unavailable"})
			return
		}
		proxy.ServeHTTP(c.Writer, c.Request)
	}
}

func (g *Gateway) HealthCheck(c *gin.Context) {
	g.mutex.RLock()
	services := make(map[string]string, len(g.services))
	for name, u := range g.services {
		services[name] = u
	}
	g.mutex.RUnlock()

	statuses := make(map[string]string)
	allHealthy := true

	for name, u := range services {
		req, err := http.NewRequestWithContext(c.Request.Context(), http.MethodGet, u+"/health", nil)
		if err != nil {
			statuses[name] = "unhealthy"
			allHealthy = false
			continue
		}
		resp, err := g.client.Do(req)
		if err != nil || resp.StatusCode != http.StatusOK {
			statuses[name] = "unhealthy"
			allHealthy = false
		} else {
			statuses[name] = "healthy"
		}
		if resp != nil {
			resp.Body.Close()
		}
	}

	status := "healthy"
	if !allHealthy {
		status = "degraded"
	}

	c.JSON(http.StatusOK, gin.H{
		"status":   status,
		"service":  "api-gateway",
		"services": statuses,
	})
}

func (g *Gateway) ListServices(c *gin.Context) {
	g.mutex.RLock()
	defer g.mutex.RUnlock()
	c.JSON(http.StatusOK, gin.H{"services": g.services})
}

// Router exposes /health, /services and proxies /api/* to apiService.
func (g *Gateway) Router(apiService string, middleware ...gin.HandlerFunc) *gin.Engine {
	router := gin.New()
	router.Use(middleware...)
	router.Use(gin.Recovery())

	router.GET("/health", g.HealthCheck)
	router.GET("/services", g.ListServices)
	router.Any("/api/*path", g.Proxy(apiService))

	return router
}
