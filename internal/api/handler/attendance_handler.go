package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/moneykrishna/taskdesk/internal/core/ports"
)

// AttendanceHandler serves check-in/check-out for the staff and sales sections.
type AttendanceHandler struct {
	api ports.AttendanceAPI
}

func NewAttendanceHandler(api ports.AttendanceAPI) *AttendanceHandler {
	return &AttendanceHandler{api: api}
}

// CheckIn handles POST <section>/attendance/check-in.
//
// @Summary      Check in for today
// @Tags         attendance
// @Produce      json
// @Success      200  {object}  attendanceResponse
// @Router       /staff/attendance/check-in [post]
// @Router       /sales/attendance/check-in [post]
func (h *AttendanceHandler) CheckIn(c echo.Context) error {
	a, err := h.api.MarkAttendance(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, newAttendanceResponse(a))
}

// CheckOut handles POST <section>/attendance/check-out.
//
// @Summary      Check out
// @Tags         attendance
// @Produce      json
// @Success      200  {object}  attendanceResponse
// @Router       /staff/attendance/check-out [post]
// @Router       /sales/attendance/check-out [post]
func (h *AttendanceHandler) CheckOut(c echo.Context) error {
	a, err := h.api.MarkCheckout(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, newAttendanceResponse(a))
}

// Today handles GET <section>/attendance/today. No record yields a null attendance.
//
// @Summary      Today's attendance
// @Tags         attendance
// @Produce      json
// @Success      200  {object}  attendanceResponse
// @Router       /staff/attendance/today [get]
// @Router       /sales/attendance/today [get]
func (h *AttendanceHandler) Today(c echo.Context) error {
	a, err := h.api.TodayAttendance(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, newAttendanceResponse(a))
}

// Records handles GET <section>/attendance/records.
//
// @Summary      Own attendance records
// @Tags         attendance
// @Produce      json
// @Success      200  {object}  listResponse[domain.Attendance]
// @Router       /staff/attendance/records [get]
// @Router       /sales/attendance/records [get]
func (h *AttendanceHandler) Records(c echo.Context) error {
	records, err := h.api.MyAttendanceRecords(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, newList(records))
}
