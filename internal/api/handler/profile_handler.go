package handler

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/labstack/echo/v4"

	"github.com/userprops/profile-service/internal/api/metrics"
	"github.com/userprops/profile-service/internal/core/domain"
	"github.com/userprops/profile-service/internal/core/ports"
)

// maxBodyBytes caps a single property value.
const maxBodyBytes = 1 << 20

// ProfileHandler reads and writes single fields of the effective user's profile.
type ProfileHandler struct {
	service ports.ProfileService
}

func NewProfileHandler(service ports.ProfileService) *ProfileHandler {
	return &ProfileHandler{service: service}
}

// Get handles GET /current-user/:property.
//
// @Summary      Read a profile field
// @Tags         profile
// @Produce      json
// @Security     BearerAuth
// @Param        property   path      string  true   "Field name"
// @Param        oboUserId  query     string  false  "Act on this user id (admins only)"
// @Success      200        {object}  any
// @Failure      403        {object}  map[string]string
// @Failure      404        {object}  notFoundResponse
// @Failure      500        {object}  map[string]string
// @Router       /current-user/{property} [get]
func (h *ProfileHandler) Get(c echo.Context) error {
	ec, err := ctxEffective(c)
	if err != nil {
		return err
	}
	property, err := propertyParam(c)
	if err != nil {
		return err
	}

	v, err := h.service.GetProperty(c.Request().Context(), ec, property)
	if err != nil {
		if errors.Is(err, domain.ErrProfileNotFound) {
			metrics.ProfileOperationsTotal.WithLabelValues("get", "not_found").Inc()
			return c.JSON(http.StatusNotFound, notFoundResponse{
				Msg: fmt.Sprintf("No user found with id %s", ec.EffectiveUserID),
			})
		}
		metrics.ProfileOperationsTotal.WithLabelValues("get", "error").Inc()
		return err
	}

	metrics.ProfileOperationsTotal.WithLabelValues("get", "ok").Inc()
	return c.JSON(http.StatusOK, v.Value)
}

// Set handles POST /current-user/:property. The body is any JSON value.
//
// @Summary      Write a profile field
// @Tags         profile
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        property   path      string  true   "Field name"
// @Param        oboUserId  query     string  false  "Act on this user id (admins only)"
// @Param        body       body      any     true   "New value"
// @Success      200        {object}  successResponse
// @Failure      400        {object}  map[string]string
// @Failure      403        {object}  map[string]string
// @Failure      500        {object}  map[string]string
// @Router       /current-user/{property} [post]
func (h *ProfileHandler) Set(c echo.Context) error {
	ec, err := ctxEffective(c)
	if err != nil {
		return err
	}
	property, err := propertyParam(c)
	if err != nil {
		return err
	}

	body, err := io.ReadAll(io.LimitReader(c.Request().Body, maxBodyBytes+1))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "unable to read body")
	}
	if len(body) > maxBodyBytes {
		return echo.NewHTTPError(http.StatusRequestEntityTooLarge, "body too large")
	}
	value, err := decodeValue(body)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "body must be a single JSON value")
	}

	if err := h.service.SetProperty(c.Request().Context(), ec, property, value); err != nil {
		if errors.Is(err, domain.ErrReservedProperty) {
			metrics.ProfileOperationsTotal.WithLabelValues("set", "rejected").Inc()
			return echo.NewHTTPError(http.StatusBadRequest, property+" is a reserved field")
		}
		if errors.Is(err, domain.ErrInvalidProperty) {
			metrics.ProfileOperationsTotal.WithLabelValues("set", "rejected").Inc()
			return echo.NewHTTPError(http.StatusBadRequest, property+" is not a valid field name")
		}
		metrics.ProfileOperationsTotal.WithLabelValues("set", "error").Inc()
		return err
	}

	metrics.ProfileOperationsTotal.WithLabelValues("set", "ok").Inc()
	return c.JSON(http.StatusOK, successResponse{Msg: "success"})
}

// propertyParam returns the :property segment as the client named it. Echo
// routes on the raw path, and leaves the segment escaped, only when the path
// carried an encoding that does not survive decoding (such as %2F).
func propertyParam(c echo.Context) (string, error) {
	property := c.Param("property")
	if c.Request().URL.RawPath != "" {
		unescaped, err := url.PathUnescape(property)
		if err != nil {
			return "", echo.NewHTTPError(http.StatusBadRequest, "invalid property name")
		}
		property = unescaped
	}
	if property == "" {
		return "", echo.NewHTTPError(http.StatusBadRequest, "invalid property name")
	}
	return property, nil
}
