package metrics

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	CheckIns = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "academy_checkins_total",
		Help: "Attendance check-ins by outcome.",
	}, []string{"outcome"})

	Submissions = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "academy_homework_submissions_total",
		Help: "Accepted homework submissions.",
	})

	Gradings = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "academy_homework_gradings_total",
		Help: "Grading results applied, by outcome.",
	}, []string{"outcome"})
)

func init() {
	prometheus.MustRegister(CheckIns, Submissions, Gradings)
}

// Handler exposes the default prometheus registry.
func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}
