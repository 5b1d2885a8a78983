package attendance

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var recordsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "qrattend_attendance_records_total",
	Help: "Attendance submissions by result (recorded or replayed).",
}, []string{"result"})
