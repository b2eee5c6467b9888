package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"providerdash/internal/domain"
	"providerdash/internal/domain/models"
)

// GET /api/dashboard
// Stale-while-revalidate: try the backend, fall back to the cache slots on
// transport failure so the page always has something to render.
func (a *API) GetDashboard(c *gin.Context) {
	session, ok := a.requireSession(c)
	if !ok {
		return
	}

	svc := a.dashboard(c)
	data, err := svc.Refresh(c.Request.Context(), session)
	if err != nil {
		if domain.IsUnavailable(err) {
			cached := svc.Cached(c.Request.Context())
			c.JSON(http.StatusOK, gin.H{
				"bookings":  cached.Bookings,
				"enquiries": cached.Enquiries,
				"stale":     true,
			})
			return
		}
		RespondDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"bookings":  data.Bookings,
		"enquiries": data.Enquiries,
		"stale":     false,
	})
}

// POST /api/dashboard/refresh
// Forced refresh; unlike GET it reports upstream failure instead of going
// stale, so the user sees that the manual retry did not land.
func (a *API) RefreshDashboard(c *gin.Context) {
	session, ok := a.requireSession(c)
	if !ok {
		return
	}

	data, err := a.dashboard(c).Refresh(c.Request.Context(), session)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"bookings":  data.Bookings,
		"enquiries": data.Enquiries,
		"stale":     false,
	})
}

func (a *API) findRecord(c *gin.Context) (models.RecordKind, models.DashboardRecord, bool) {
	kind := models.RecordKind(c.Param("kind"))
	if !kind.Valid() {
		RespondDomainError(c, domain.ValidationError{Field: "kind", Msg: "must be booking or enquiry"})
		return kind, models.DashboardRecord{}, false
	}
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		RespondDomainError(c, domain.ValidationError{Field: "id", Msg: "invalid id"})
		return kind, models.DashboardRecord{}, false
	}

	svc := a.dashboard(c)
	rec, err := svc.FindRecord(svc.Cached(c.Request.Context()), kind, id)
	if err != nil {
		RespondDomainError(c, err)
		return kind, models.DashboardRecord{}, false
	}
	return kind, rec, true
}

// GET /api/records/:kind/:id
func (a *API) GetRecordDetails(c *gin.Context) {
	if _, ok := a.requireSession(c); !ok {
		return
	}
	_, rec, ok := a.findRecord(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, a.dashboard(c).Details(rec))
}

// GET /api/records/:kind/:id/pdf
func (a *API) GetRecordPDF(c *gin.Context) {
	if _, ok := a.requireSession(c); !ok {
		return
	}
	kind, rec, ok := a.findRecord(c)
	if !ok {
		return
	}

	pdf, filename, err := a.docs(c).GenerateRecordPDF(kind, rec)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "application/pdf", pdf)
}
