package handler

import (
	"time"

	"github.com/moneykrishna/taskdesk/internal/core/domain"
)

type teamRequest struct {
	Team string `json:"team" validate:"required,oneof=staff sales"`
}

type teamResponse struct {
	Team string `json:"team"`
}

type adminTaskRequest struct {
	Title       string     `json:"title"       validate:"required"`
	Description string     `json:"description"`
	Status      string     `json:"status"      validate:"omitempty,oneof=pending in_progress completed"`
	Priority    string     `json:"priority"    validate:"omitempty,oneof=low medium high"`
	AssignedTo  *int64     `json:"assigned_to"`
	Deadline    *time.Time `json:"deadline"`
}

type changeRoleRequest struct {
	Target string `json:"target" validate:"required,oneof=sales staff admin"`
}

type taskStatusRequest struct {
	Status          string `json:"status"           validate:"required,oneof=pending in_progress completed"`
	CompletionNotes string `json:"completion_notes"`
}

type taskDetailsRequest struct {
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	Priority    *string    `json:"priority"    validate:"omitempty,oneof=low medium high"`
	Deadline    *time.Time `json:"deadline"`
}

type leadStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=new contacted converted not_interested"`
}

type followUpRequest struct {
	ScheduledDate string `json:"scheduled_date" validate:"required,datetime=2006-01-02"`
	Notes         string `json:"notes"`
}

type accountOpeningRequest struct {
	Lead          int64  `json:"lead"           validate:"required,gt=0"`
	DepositAmount string `json:"deposit_amount" validate:"required,numeric"`
	Notes         string `json:"notes"`
}

type listResponse[T any] struct {
	Items []T `json:"items"`
	Count int `json:"count"`
}

func newList[T any](items []T) listResponse[T] {
	if items == nil {
		items = []T{}
	}
	return listResponse[T]{Items: items, Count: len(items)}
}

type attendanceResponse struct {
	Attendance *domain.Attendance `json:"attendance"`
	CheckIn    string             `json:"check_in,omitempty"`
	CheckOut   string             `json:"check_out,omitempty"`
}

func newAttendanceResponse(a *domain.Attendance) attendanceResponse {
	return attendanceResponse{Attendance: a, CheckIn: a.CheckIn(), CheckOut: a.CheckOut()}
}
