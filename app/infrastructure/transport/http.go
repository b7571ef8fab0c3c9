package transport

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"

	"github.com/okorolev/gh-activity-report/app/domain/entity"
	"github.com/okorolev/gh-activity-report/app/infrastructure/metrics"
	"github.com/okorolev/gh-activity-report/app/usecase"
)

// Server is the HTTP surface of the report service: one endpoint to read
// a rendered report, one to trigger an archive load.
type Server struct {
	reports *usecase.ReportService
	loader  *usecase.LoaderService
	log     *logrus.Logger

	echo *echo.Echo
}

func NewServer(reports *usecase.ReportService, loader *usecase.LoaderService, log *logrus.Logger) *Server {
	s := &Server{
		reports: reports,
		loader:  loader,
		log:     log,
	}

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	e.Use(requestLogger(log))

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
	e.GET("/api/v1/reports/:user/:period", s.getReport)
	e.POST("/api/v1/loads", s.postLoad)

	s.echo = e
	return s
}

func (s *Server) Start(addr string) error {
	return s.echo.Start(addr)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

func (s *Server) getReport(c echo.Context) error {
	user := c.Param("user")
	if user == "" {
		return c.JSON(http.StatusBadRequest, errorResponse("BAD_REQUEST", "user is required"))
	}
	period, err := entity.NormalizePeriod(c.Param("period"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse("BAD_PERIOD", err.Error()))
	}

	start := time.Now()
	text, err := s.reports.BuildReport(c.Request().Context(), user, period)
	if err != nil {
		if errors.Is(err, entity.ErrEmptyInput) {
			return c.JSON(http.StatusBadGateway, errorResponse("UPSTREAM_EMPTY", "event source returned no row set"))
		}
		s.log.WithError(err).WithField("user", user).Error("report build failed")
		metrics.ErrorsTotal.WithLabelValues("report").Inc()
		return c.JSON(http.StatusInternalServerError, errorResponse("INTERNAL_ERROR", "failed to build report"))
	}
	metrics.ReportBuildDuration.Observe(time.Since(start).Seconds())
	metrics.ReportsGenerated.Inc()

	return c.String(http.StatusOK, text)
}

func (s *Server) postLoad(c echo.Context) error {
	var req LoadRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse("BAD_REQUEST", "malformed body"))
	}
	period, err := entity.NormalizePeriod(req.Period)
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse("BAD_PERIOD", err.Error()))
	}

	res, err := s.loader.LoadPeriod(c.Request().Context(), period)
	if err != nil {
		s.log.WithError(err).WithField("period", period).Error("archive load failed")
		metrics.ErrorsTotal.WithLabelValues("load").Inc()
		return c.JSON(http.StatusInternalServerError, errorResponse("INTERNAL_ERROR", "archive load failed"))
	}
	return c.JSON(http.StatusOK, toLoadResponse(res))
}

func requestLogger(log *logrus.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			log.WithFields(logrus.Fields{
				"method":  c.Request().Method,
				"path":    c.Request().URL.Path,
				"status":  c.Response().Status,
				"elapsed": time.Since(start).String(),
			}).Info("request")
			return err
		}
	}
}
