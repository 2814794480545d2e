package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/rentcar/rental-api/internal/api/metrics"
	"github.com/rentcar/rental-api/internal/api/middleware"
	"github.com/rentcar/rental-api/internal/core/domain"
	"github.com/rentcar/rental-api/internal/core/ports"
)

// availableAtLayouts are tried in order when parsing ?availableAt=.
var availableAtLayouts = []string{time.RFC3339, "2006-01-02"}

type CarHandler struct {
	carService ports.CarService
}

func NewCarHandler(carService ports.CarService) *CarHandler {
	return &CarHandler{carService: carService}
}

type createCarRequest struct {
	Name  string `json:"name" validate:"required"`
	Price int64  `json:"price" validate:"gte=0"`
	Size  string `json:"size" validate:"required"`
	Image string `json:"image" validate:"required"`
}

type rentCarRequest struct {
	RentStartedAt time.Time `json:"rentStartedAt"`
	RentEndedAt   time.Time `json:"rentEndedAt"`
}

type listMeta struct {
	Pagination ports.Pagination `json:"pagination"`
}

type listCarsResponse struct {
	Cars []*domain.Car `json:"cars"`
	Meta listMeta      `json:"meta"`
}

// List returns a page of cars.
//
// @Summary      List cars
// @Tags         cars
// @Produce      json
// @Param        size         query     string  false  "small, medium or large"
// @Param        availableAt  query     string  false  "RFC3339 instant or YYYY-MM-DD"
// @Param        page         query     int     false  "Page number (default 1)"
// @Param        pageSize     query     int     false  "Page size (default 10, max 100)"
// @Success      200          {object}  listCarsResponse
// @Failure      422          {object}  ErrorResponse
// @Router       /cars [get]
func (h *CarHandler) List(c echo.Context) error {
	var input ports.ListCarsInput
	var availableAt string

	err := echo.QueryParamsBinder(c).
		String("size", &input.Size).
		String("availableAt", &availableAt).
		Int("page", &input.Page).
		Int("pageSize", &input.PageSize).
		BindError()
	if err != nil {
		return respondDomainError(c, domain.ValidationError("page and pageSize must be integers"))
	}

	if availableAt != "" {
		at, ok := parseAvailableAt(availableAt)
		if !ok {
			return respondDomainError(c, domain.ValidationError("availableAt must be an RFC3339 timestamp or a YYYY-MM-DD date"))
		}
		input.AvailableAt = at
	}

	result, err := h.carService.ListCars(c.Request().Context(), input)
	if err != nil {
		if de, ok := domain.AsError(err); ok {
			return respondDomainError(c, de)
		}
		return err
	}

	return c.JSON(http.StatusOK, listCarsResponse{
		Cars: result.Cars,
		Meta: listMeta{Pagination: result.Pagination},
	})
}

// Get returns a single car.
//
// @Summary      Get a car
// @Tags         cars
// @Produce      json
// @Param        id   path      int  true  "Car ID"
// @Success      200  {object}  domain.Car
// @Failure      404  {object}  ErrorResponse
// @Router       /cars/{id} [get]
func (h *CarHandler) Get(c echo.Context) error {
	id, ok := carID(c)
	if !ok {
		return respondDomainError(c, domain.RecordNotFound("Car"))
	}

	car, err := h.carService.GetCar(c.Request().Context(), id)
	if err != nil {
		if de, ok := domain.AsError(err); ok {
			return respondDomainError(c, de)
		}
		return err
	}
	return c.JSON(http.StatusOK, car)
}

// Create adds a car to the fleet. Any failure is reported as 422.
//
// @Summary      Create a car
// @Tags         cars
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createCarRequest  true  "Car details"
// @Success      201   {object}  domain.Car
// @Failure      400   {object}  ErrorResponse
// @Failure      403   {object}  ErrorResponse
// @Failure      422   {object}  ErrorResponse
// @Router       /cars [post]
func (h *CarHandler) Create(c echo.Context) error {
	var req createCarRequest
	if err := c.Bind(&req); err != nil {
		return respondBadPayload(c)
	}
	if err := c.Validate(&req); err != nil {
		return respondDomainError(c, domain.ValidationError(err.Error()))
	}

	car, err := h.carService.CreateCar(c.Request().Context(), ports.CreateCarInput{
		Name:  req.Name,
		Price: req.Price,
		Size:  req.Size,
		Image: req.Image,
	})
	if err != nil {
		if de, ok := domain.AsError(err); ok {
			return respondDomainError(c, de)
		}
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: ErrorBody{Name: "Error", Message: err.Error()}})
	}

	metrics.CarsCreatedTotal.WithLabelValues(string(car.Size)).Inc()
	return c.JSON(http.StatusCreated, car)
}

// Rent books a car for the authenticated customer.
//
// @Summary      Rent a car
// @Tags         cars
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      int             true   "Car ID"
// @Param        body  body      rentCarRequest  false  "Rental period; defaults to now plus one day"
// @Success      201   {object}  domain.UserCar
// @Failure      403   {object}  ErrorResponse
// @Failure      404   {object}  ErrorResponse
// @Failure      422   {object}  ErrorResponse
// @Router       /cars/{id}/rent [post]
func (h *CarHandler) Rent(c echo.Context) error {
	identity, ok := middleware.IdentityFrom(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}

	id, ok := carID(c)
	if !ok {
		metrics.CarRentalsTotal.WithLabelValues("not_found").Inc()
		return respondDomainError(c, domain.RecordNotFound("Car"))
	}

	var req rentCarRequest
	if c.Request().ContentLength != 0 {
		if err := c.Bind(&req); err != nil {
			metrics.CarRentalsTotal.WithLabelValues("invalid").Inc()
			return respondBadPayload(c)
		}
	}

	rental, err := h.carService.RentCar(c.Request().Context(), ports.RentCarInput{
		UserID:        identity.ID,
		CarID:         id,
		RentStartedAt: req.RentStartedAt,
		RentEndedAt:   req.RentEndedAt,
	})
	if err != nil {
		de, ok := domain.AsError(err)
		if !ok {
			metrics.CarRentalsTotal.WithLabelValues("error").Inc()
			return err
		}
		metrics.CarRentalsTotal.WithLabelValues(rentalResult(de.Kind)).Inc()
		return respondDomainError(c, de)
	}

	metrics.CarRentalsTotal.WithLabelValues("success").Inc()
	return c.JSON(http.StatusCreated, rental)
}

// Delete removes a car.
//
// @Summary      Delete a car
// @Tags         cars
// @Security     BearerAuth
// @Param        id   path  int  true  "Car ID"
// @Success      204
// @Failure      403  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /cars/{id} [delete]
func (h *CarHandler) Delete(c echo.Context) error {
	id, ok := carID(c)
	if !ok {
		return respondDomainError(c, domain.RecordNotFound("Car"))
	}

	if err := h.carService.DeleteCar(c.Request().Context(), id); err != nil {
		if de, ok := domain.AsError(err); ok {
			return respondDomainError(c, de)
		}
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// carID parses the :id path parameter. Non-numeric ids can never match a car.
func carID(c echo.Context) (uint, bool) {
	var id uint
	if err := echo.PathParamsBinder(c).MustUint("id", &id).BindError(); err != nil {
		return 0, false
	}
	return id, id != 0
}

func parseAvailableAt(raw string) (time.Time, bool) {
	for _, layout := range availableAtLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

func rentalResult(kind domain.ErrorKind) string {
	switch kind {
	case domain.KindCarAlreadyRented:
		return "already_rented"
	case domain.KindRecordNotFound:
		return "not_found"
	case domain.KindValidation:
		return "invalid"
	default:
		return "error"
	}
}
