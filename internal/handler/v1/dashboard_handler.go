package v1

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/dmehra2102/prod-golang-projects/claimtrack/internal/service"
	"github.com/dmehra2102/prod-golang-projects/claimtrack/pkg/metrics"
)

type DashboardHandler struct {
	dashSvc   *service.DashboardService
	collector *metrics.Collector
	log       *zap.Logger
}

func NewDashboardHandler(dashSvc *service.DashboardService, collector *metrics.Collector, log *zap.Logger) *DashboardHandler {
	return &DashboardHandler{dashSvc: dashSvc, collector: collector, log: log}
}

func (h *DashboardHandler) Summary(c *gin.Context) {
	stats, err := h.dashSvc.Summary(c.Request.Context(), identityFrom(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	h.collector.DashboardReads.WithLabelValues("summary").Inc()
	respondOK(c, stats)
}

func (h *DashboardHandler) MonthWise(c *gin.Context) {
	stats, err := h.dashSvc.MonthWise(c.Request.Context(), identityFrom(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	h.collector.DashboardReads.WithLabelValues("monthwise").Inc()
	respondOK(c, stats)
}

func (h *DashboardHandler) CompanyWise(c *gin.Context) {
	stats, err := h.dashSvc.CompanyWise(c.Request.Context(), identityFrom(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	h.collector.DashboardReads.WithLabelValues("companywise").Inc()
	respondOK(c, stats)
}
