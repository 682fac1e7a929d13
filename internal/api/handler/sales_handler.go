package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/moneykrishna/taskdesk/internal/core/domain"
	"github.com/moneykrishna/taskdesk/internal/core/ports"
)

// SalesHandler serves the /sales section.
type SalesHandler struct {
	api  ports.LeadAPI
	dash dashboards
}

func NewSalesHandler(api ports.LeadAPI, dash dashboards) *SalesHandler {
	return &SalesHandler{api: api, dash: dash}
}

// Dashboard handles GET /sales/dashboard.
//
// @Summary      Sales dashboard
// @Tags         sales
// @Produce      json
// @Success      200  {object}  service.SalesStats
// @Router       /sales/dashboard [get]
func (h *SalesHandler) Dashboard(c echo.Context) error {
	return c.JSON(http.StatusOK, h.dash.Sales(c.Request().Context()))
}

// ListLeads handles GET /sales/leads. ?status= narrows the list.
//
// @Summary      List leads
// @Tags         sales
// @Produce      json
// @Param        status  query     string  false  "Lead status"
// @Success      200     {object}  listResponse[domain.Lead]
// @Router       /sales/leads [get]
func (h *SalesHandler) ListLeads(c echo.Context) error {
	return h.leads(c, c.QueryParam("status"))
}

// NotInterested handles GET /sales/leads/not-interested.
//
// @Summary      Leads marked not interested
// @Tags         sales
// @Produce      json
// @Success      200  {object}  listResponse[domain.Lead]
// @Router       /sales/leads/not-interested [get]
func (h *SalesHandler) NotInterested(c echo.Context) error {
	return h.leads(c, domain.LeadNotInterested)
}

func (h *SalesHandler) leads(c echo.Context, status string) error {
	leads, err := h.api.ListLeads(c.Request().Context())
	if err != nil {
		return err
	}
	if status != "" {
		filtered := make([]domain.Lead, 0, len(leads))
		for _, l := range leads {
			if l.Status == status {
				filtered = append(filtered, l)
			}
		}
		leads = filtered
	}
	return c.JSON(http.StatusOK, newList(leads))
}

// SetStatus handles POST /sales/leads/:id/status.
//
// @Summary      Change a lead's status
// @Tags         sales
// @Accept       json
// @Produce      json
// @Param        id    path      int                true  "Lead id"
// @Param        body  body      leadStatusRequest  true  "Status"
// @Success      200   {object}  domain.Lead
// @Failure      422   {object}  map[string]string
// @Router       /sales/leads/{id}/status [post]
func (h *SalesHandler) SetStatus(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req leadStatusRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	lead, err := h.api.SetLeadStatus(c.Request().Context(), id, req.Status)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, lead)
}

// UploadProof handles POST /sales/leads/:id/proof.
//
// @Summary      Attach indicator proof to a lead
// @Tags         sales
// @Accept       multipart/form-data
// @Produce      json
// @Param        id     path      int     true   "Lead id"
// @Param        file   formData  file    true   "Proof file"
// @Param        notes  formData  string  false  "Notes"
// @Success      201    {object}  domain.IndicatorProof
// @Router       /sales/leads/{id}/proof [post]
func (h *SalesHandler) UploadProof(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	up, closer, err := formUpload(c)
	if err != nil {
		return err
	}
	defer closer.Close()

	proof, err := h.api.UploadIndicatorProof(c.Request().Context(), id, up, c.FormValue("notes"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, proof)
}

// ListFollowUps handles GET /sales/followups.
//
// @Summary      List follow-ups
// @Tags         sales
// @Produce      json
// @Success      200  {object}  listResponse[domain.FollowUp]
// @Router       /sales/followups [get]
func (h *SalesHandler) ListFollowUps(c echo.Context) error {
	items, err := h.api.ListFollowUps(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, newList(items))
}

// CreateFollowUp handles POST /sales/leads/:id/followups.
//
// @Summary      Schedule a follow-up
// @Tags         sales
// @Accept       json
// @Produce      json
// @Param        id    path      int              true  "Lead id"
// @Param        body  body      followUpRequest  true  "Follow-up"
// @Success      201   {object}  domain.FollowUp
// @Failure      422   {object}  map[string]string
// @Router       /sales/leads/{id}/followups [post]
func (h *SalesHandler) CreateFollowUp(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req followUpRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	fu, err := h.api.CreateFollowUp(c.Request().Context(), id, req.ScheduledDate, req.Notes)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, fu)
}

// CreateAccountOpening handles POST /sales/account-openings.
//
// @Summary      Record an account opening
// @Tags         sales
// @Accept       json
// @Produce      json
// @Param        body  body      accountOpeningRequest  true  "Opening"
// @Success      201   {object}  domain.AccountOpening
// @Failure      422   {object}  map[string]string
// @Router       /sales/account-openings [post]
func (h *SalesHandler) CreateAccountOpening(c echo.Context) error {
	var req accountOpeningRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	ao, err := h.api.CreateAccountOpening(c.Request().Context(), req.Lead, domain.Amount(req.DepositAmount), req.Notes)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, ao)
}
