package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry 应用自有的 Prometheus 指标
	Registry = prometheus.NewRegistry()

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ad_reward",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "path", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "ad_reward",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10), // 5ms to ~5s
		},
		[]string{"method", "path"},
	)

	adWatches = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ad_reward",
			Subsystem: "reward",
			Name:      "ad_watches_total",
			Help:      "Ad watch attempts by result.",
		},
		[]string{"result"},
	)

	pointsAwarded = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ad_reward",
			Subsystem: "reward",
			Name:      "points_awarded_total",
			Help:      "Points credited to users by source.",
		},
		[]string{"source"},
	)

	tasksCompleted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ad_reward",
			Subsystem: "task",
			Name:      "completed_total",
			Help:      "Task completions by task kind.",
		},
		[]string{"kind"},
	)

	withdrawals = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ad_reward",
			Subsystem: "withdrawal",
			Name:      "transitions_total",
			Help:      "Withdrawal submissions and decisions by status.",
		},
		[]string{"status"},
	)

	settingUpdates = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ad_reward",
			Subsystem: "settings",
			Name:      "updates_total",
			Help:      "Setting update items by result.",
		},
		[]string{"result"},
	)
)

// 积分来源
const (
	SourceAd        = "ad"
	SourceTaskBonus = "task_bonus"
	SourceTask      = "task"
	SourceRefund    = "refund"
)

func init() {
	Registry.MustRegister(
		httpRequests,
		httpDuration,
		adWatches,
		pointsAwarded,
		tasksCompleted,
		withdrawals,
		settingUpdates,
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		prometheus.NewGoCollector(),
	)
}

// Handler 暴露已注册指标
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// ObserveHTTP 记录一次 HTTP 请求，path 使用路由模板避免高基数
func ObserveHTTP(method, path string, status int, duration time.Duration) {
	if path == "" {
		path = "unmatched"
	}
	httpRequests.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	httpDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordAdWatch 记录观看广告结果（ok / limit / error）
func RecordAdWatch(result string) {
	adWatches.WithLabelValues(result).Inc()
}

// AddPoints 记录发放的积分
func AddPoints(source string, points float64) {
	if points <= 0 {
		return
	}
	pointsAwarded.WithLabelValues(source).Add(points)
}

// RecordTaskCompleted 记录任务完成
func RecordTaskCompleted(kind string) {
	tasksCompleted.WithLabelValues(kind).Inc()
}

// RecordWithdrawal 记录提现状态变化
func RecordWithdrawal(status string) {
	withdrawals.WithLabelValues(status).Inc()
}

// RecordSettingUpdate 记录设置更新结果
func RecordSettingUpdate(result string) {
	settingUpdates.WithLabelValues(result).Inc()
}
