// Package metrics exposes Prometheus metrics for HTTP traffic and blog activity.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome labels.
const (
	ResultSuccess = "success"
	ResultFailure = "failure"
	ResultInvalid = "invalid"
)

// Collector holds every metric the application records.
type Collector struct {
	requests        *prometheus.CounterVec
	duration        *prometheus.HistogramVec
	usersRegistered prometheus.Counter
	logins          *prometheus.CounterVec
	postsCreated    prometheus.Counter
	contactMessages *prometheus.CounterVec
}

// NewCollector creates the metrics and registers them with reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "myblog_http_requests_total",
			Help: "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "myblog_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		usersRegistered: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "myblog_users_registered_total",
			Help: "Accounts created.",
		}),
		logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "myblog_logins_total",
			Help: "Login attempts by result.",
		}, []string{"result"}),
		postsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "myblog_posts_created_total",
			Help: "Posts published.",
		}),
		contactMessages: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "myblog_contact_messages_total",
			Help: "Contact form submissions by result.",
		}, []string{"result"}),
	}

	reg.MustRegister(
		c.requests,
		c.duration,
		c.usersRegistered,
		c.logins,
		c.postsCreated,
		c.contactMessages,
	)
	return c
}

// Middleware records request count and latency. Requests that matched no route are
// labelled "unmatched" to keep cardinality bounded.
func (c *Collector) Middleware() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		start := time.Now()
		ctx.Next()

		route := ctx.FullPath()
		if route == "" {
			route = "unmatched"
		}
		method := ctx.Request.Method
		c.requests.WithLabelValues(method, route, strconv.Itoa(ctx.Writer.Status())).Inc()
		c.duration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
	}
}

// UserRegistered counts a new account.
func (c *Collector) UserRegistered() {
	c.usersRegistered.Inc()
}

// LoginAttempt counts a login by result.
func (c *Collector) LoginAttempt(result string) {
	c.logins.WithLabelValues(result).Inc()
}

// PostCreated counts a new post.
func (c *Collector) PostCreated() {
	c.postsCreated.Inc()
}

// ContactMessage counts a contact form submission by result.
func (c *Collector) ContactMessage(result string) {
	c.contactMessages.WithLabelValues(result).Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
