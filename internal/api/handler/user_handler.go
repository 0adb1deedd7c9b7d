package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/userprops/profile-service/internal/core/ports"
)

// UserHandler serves the identity endpoints.
type UserHandler struct {
	service ports.UserService
}

func NewUserHandler(service ports.UserService) *UserHandler {
	return &UserHandler{service: service}
}

// List handles GET /users.
//
// @Summary      List identity provider users
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        maxResults  query     int     false  "Page size (1-1000)"
// @Param        pageToken   query     string  false  "Token returned by the previous page"
// @Success      200         {object}  listUsersResponse
// @Failure      400         {object}  map[string]string
// @Failure      403         {object}  map[string]string
// @Failure      500         {object}  map[string]string
// @Router       /users [get]
func (h *UserHandler) List(c echo.Context) error {
	ec, err := ctxEffective(c)
	if err != nil {
		return err
	}

	var req listUsersRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid query parameters")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	page, err := h.service.ListUsers(c.Request().Context(), ec, ports.ListUsersInput{
		MaxResults: req.MaxResults,
		PageToken:  req.PageToken,
	})
	if err != nil {
		return err
	}

	resp := listUsersResponse{
		Users:     make([]userRecordResponse, 0, len(page.Users)),
		PageToken: page.PageToken,
	}
	for _, u := range page.Users {
		resp.Users = append(resp.Users, toUserRecordResponse(u))
	}
	return c.JSON(http.StatusOK, resp)
}

// Current handles GET /current-user.
//
// @Summary      Describe the authenticated caller
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  currentUserResponse
// @Failure      403  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /current-user [get]
func (h *UserHandler) Current(c echo.Context) error {
	ec, err := ctxEffective(c)
	if err != nil {
		return err
	}

	u, err := h.service.CurrentUser(c.Request().Context(), ec)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, currentUserResponse{
		UserID:      u.UserID,
		UserEmail:   u.Email,
		DisplayName: u.DisplayName,
		OboAdmin:    u.IsAdmin,
	})
}
