package domain

// AttendanceStatus mirrors the backend attendance choices.
type AttendanceStatus string

const (
	AttendancePresent    AttendanceStatus = "present"
	AttendanceAbsent     AttendanceStatus = "absent"
	AttendanceLate       AttendanceStatus = "late"
	AttendancePermission AttendanceStatus = "permission"
)

// Attendance is one day's check-in/check-out record. Date and times are kept
// as the backend formats them (YYYY-MM-DD, HH:MM:SS).
type Attendance struct {
	ID       int64            `json:"id"`
	User     int64            `json:"user"`
	Username string           `json:"username,omitempty"`
	Date     string           `json:"date"`
	TimeIn   *string          `json:"time_in"`
	TimeOut  *string          `json:"time_out"`
	Status   AttendanceStatus `json:"status"`
	Remarks  string           `json:"remarks,omitempty"`
}

// CheckIn formats "date time_in", or "" when not checked in.
func (a *Attendance) CheckIn() string {
	if a == nil || a.Date == "" || a.TimeIn == nil {
		return ""
	}
	return a.Date + " " + *a.TimeIn
}

// CheckOut formats "date time_out", or "" when not checked out.
func (a *Attendance) CheckOut() string {
	if a == nil || a.Date == "" || a.TimeOut == nil {
		return ""
	}
	return a.Date + " " + *a.TimeOut
}

// ActiveUsers lists who is currently checked in, split by team.
type ActiveUsers struct {
	Sales       []User `json:"sales"`
	IT          []User `json:"it"`
	TotalActive int    `json:"total_active"`
}
