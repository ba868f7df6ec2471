package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMetricsManagerCreation(t *testing.T) {
	Convey("Given metrics manager creation", t, func() {
		Convey("When creating with default options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(WithPrometheusRegistry(registry))

			Convey("Then it should be created successfully", func() {
				So(manager, ShouldNotBeNil)
				So(manager.namespace, ShouldEqual, "nodo")
				So(manager.subsystem, ShouldEqual, "client")
			})
		})

		Convey("When creating with custom options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace("test"),
				WithSubsystem("sub"),
				WithHistogramBuckets([]float64{0.1, 0.5, 1.0}),
				WithConstLabels(map[string]string{"env": "test"}),
				WithPrometheusRegistry(registry),
			)

			Convey("Then options should be applied", func() {
				So(manager.namespace, ShouldEqual, "test")
				So(manager.subsystem, ShouldEqual, "sub")
				So(manager.histogramBuckets, ShouldResemble, []float64{0.1, 0.5, 1.0})
				So(manager.constLabels["env"], ShouldEqual, "test")
			})
		})

		Convey("When empty options are passed", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace(""),
				WithSubsystem(""),
				WithHistogramBuckets(nil),
				WithPrometheusRegistry(registry),
			)

			Convey("Then defaults should be kept", func() {
				So(manager.namespace, ShouldEqual, "nodo")
				So(manager.subsystem, ShouldEqual, "client")
				So(len(manager.histogramBuckets), ShouldBeGreaterThan, 0)
			})
		})
	})
}

func TestMetricsRecording(t *testing.T) {
	Convey("Given a manager on a private registry", t, func() {
		registry := prometheus.NewRegistry()
		m := NewManager(WithPrometheusRegistry(registry))

		Convey("When recording API requests", func() {
			m.RecordAPIRequest("login", "POST", "200", 12)
			m.RecordAPIRequest("login", "POST", "200", 30)
			m.RecordAPIRequest("me", "GET", "401", 3)

			Convey("Then counters should be labelled per operation and status", func() {
				So(testutil.ToFloat64(m.apiRequests.WithLabelValues("login", "POST", "200")), ShouldEqual, 2)
				So(testutil.ToFloat64(m.apiRequests.WithLabelValues("me", "GET", "401")), ShouldEqual, 1)
			})
		})

		Convey("When recording errors and uploads", func() {
			m.RecordAPIError("upload", "server_error")
			m.RecordUploadBytes(1024)
			m.RecordUploadBytes(-5)

			Convey("Then they should be counted", func() {
				So(testutil.ToFloat64(m.apiErrors.WithLabelValues("upload", "server_error")), ShouldEqual, 1)
				So(testutil.ToFloat64(m.apiUploadBytes), ShouldEqual, 1024)
			})
		})

		Convey("When recording session resolutions", func() {
			m.RecordSessionResolution(true)
			So(testutil.ToFloat64(m.authenticated), ShouldEqual, 1)

			m.RecordSessionResolution(false)

			Convey("Then the gauge should follow the latest outcome", func() {
				So(testutil.ToFloat64(m.authenticated), ShouldEqual, 0)
				So(testutil.ToFloat64(m.sessionResolutions.WithLabelValues("authenticated")), ShouldEqual, 1)
				So(testutil.ToFloat64(m.sessionResolutions.WithLabelValues("anonymous")), ShouldEqual, 1)
			})
		})

		Convey("When recording controller events", func() {
			m.RecordAuthTransition("register", "verify")
			m.RecordDashboardLoad("developer")
			m.RecordDashboardLoad("developer")
			m.RecordStaleResponse("contractor.opportunities")

			Convey("Then they should be counted", func() {
				So(testutil.ToFloat64(m.authTransitions.WithLabelValues("register", "verify")), ShouldEqual, 1)
				So(testutil.ToFloat64(m.dashboardLoads.WithLabelValues("developer")), ShouldEqual, 2)
				So(testutil.ToFloat64(m.staleResponses.WithLabelValues("contractor.opportunities")), ShouldEqual, 1)
			})
		})
	})
}

func TestGlobalMetrics(t *testing.T) {
	Convey("Given the global manager", t, func() {
		Convey("When recording through package functions", func() {
			So(func() {
				RecordAPIRequest("me", "GET", "200", 1)
				RecordAPIError("me", "client_error")
				RecordUploadBytes(10)
				RecordSessionResolution(true)
				RecordAuthTransition("login", "register")
				RecordDashboardLoad("contractor")
				RecordStaleResponse("developer.dashboard")
			}, ShouldNotPanic)

			Convey("Then the handler should expose them", func() {
				w := httptest.NewRecorder()
				Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
				So(w.Code, ShouldEqual, http.StatusOK)
				So(strings.Contains(w.Body.String(), "nodo_client_api_requests_total"), ShouldBeTrue)
				So(GetRegistry(), ShouldNotBeNil)
			})
		})
	})
}

func TestMetricsConcurrency(t *testing.T) {
	Convey("Given concurrent recorders", t, func() {
		registry := prometheus.NewRegistry()
		m := NewManager(WithPrometheusRegistry(registry))

		var wg sync.WaitGroup
		for i := 0; i < 20; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for j := 0; j < 50; j++ {
					m.RecordAPIRequest("dashboard_developer", "GET", "200", 1)
				}
			}()
		}
		wg.Wait()

		So(testutil.ToFloat64(m.apiRequests.WithLabelValues("dashboard_developer", "GET", "200")), ShouldEqual, 1000)
	})
}
