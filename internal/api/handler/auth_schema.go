package handler

import "github.com/moneykrishna/taskdesk/internal/core/domain"

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type signupRequest struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	Password2 string `json:"password2"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	UserType  string `json:"user_type"`
}

type sessionResponse struct {
	User        domain.User `json:"user"`
	Role        domain.Role `json:"role"`
	DisplayName string      `json:"display_name"`
	Redirect    string      `json:"redirect"`
}

type redirectResponse struct {
	Redirect string `json:"redirect"`
}

func newSessionResponse(s *domain.Session) sessionResponse {
	return sessionResponse{
		User:        s.User(),
		Role:        s.Role(),
		DisplayName: s.User().DisplayName(),
		Redirect:    domain.HomePath(s.Role()),
	}
}
