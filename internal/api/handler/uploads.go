package handler

import (
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/moneykrishna/taskdesk/internal/core/ports"
)

// formUpload opens the "file" part of a multipart request. The caller closes it.
func formUpload(c echo.Context) (ports.Upload, io.Closer, error) {
	fh, err := c.FormFile("file")
	if err != nil {
		return ports.Upload{}, nil, echo.NewHTTPError(http.StatusBadRequest, "file is required")
	}
	f, err := fh.Open()
	if err != nil {
		return ports.Upload{}, nil, echo.NewHTTPError(http.StatusBadRequest, "unreadable file")
	}
	return ports.Upload{Filename: fh.Filename, Content: f}, f, nil
}
