package httpapi

import (
	"errors"
	"net/url"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"meteoproxy/internal/registry"
	"meteoproxy/internal/weather"
)

var validate = validator.New()

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, svc *weather.Service, reg *registry.Registry) {
	app.Get("/weather/:city", func(c *fiber.Ctx) error {
		city, err := cityParam(c)
		if err != nil {
			return err
		}

		snap, origin, err := svc.CurrentWeather(c.UserContext(), city)
		if err != nil {
			return mapError(err)
		}
		return c.JSON(fiber.Map{"source": origin, "data": snap})
	})

	app.Get("/forecast/:city", func(c *fiber.Ctx) error {
		city, err := cityParam(c)
		if err != nil {
			return err
		}

		bundle, origin, err := svc.Forecast(c.UserContext(), city)
		if err != nil {
			return mapError(err)
		}
		return c.JSON(fiber.Map{"source": origin, "data": bundle})
	})

	app.Get("/location/:lat/:lon", func(c *fiber.Ctx) error {
		lat, latErr := strconv.ParseFloat(c.Params("lat"), 64)
		lon, lonErr := strconv.ParseFloat(c.Params("lon"), 64)
		if latErr != nil || lonErr != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid coordinates")
		}

		place, err := svc.Locate(c.UserContext(), lat, lon)
		if err != nil {
			if errors.Is(err, weather.ErrCityNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "location not found")
			}
			return mapError(err)
		}
		return c.JSON(place)
	})

	app.Get("/favorites", func(c *fiber.Ctx) error {
		favorites, err := reg.Favorites(c.UserContext())
		if err != nil {
			return mapError(err)
		}
		return c.JSON(fiber.Map{"favorites": favorites})
	})

	app.Post("/favorites", func(c *fiber.Ctx) error {
		var req addFavoriteRequest
		if err := parseBody(c, &req); err != nil {
			return err
		}

		fav, err := reg.AddFavorite(c.UserContext(), req.CityName)
		if err != nil {
			return mapError(err)
		}
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"message":  "city added to favorites",
			"favorite": fav,
		})
	})

	app.Delete("/favorites/:city", func(c *fiber.Ctx) error {
		city, err := cityParam(c)
		if err != nil {
			return err
		}

		if err := reg.RemoveFavorite(c.UserContext(), city); err != nil {
			return mapError(err)
		}
		return c.JSON(fiber.Map{"message": "city removed from favorites"})
	})

	app.Post("/login", func(c *fiber.Ctx) error {
		var req loginRequest
		if err := parseBody(c, &req); err != nil {
			return err
		}

		account, err := reg.Login(c.UserContext(), req.Username, req.Password)
		if err != nil {
			return mapError(err)
		}
		return c.JSON(fiber.Map{"user": account})
	})

	app.Post("/reports", func(c *fiber.Ctx) error {
		var req createReportRequest
		if err := parseBody(c, &req); err != nil {
			return err
		}

		id, err := reg.CreateReport(c.UserContext(), req.CityName, req.Title, req.Content, req.AuthorID)
		if err != nil {
			return mapError(err)
		}
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{"reportId": id})
	})

	app.Get("/reports/:city", func(c *fiber.Ctx) error {
		city, err := cityParam(c)
		if err != nil {
			return err
		}

		reports, err := reg.ReportsForCity(c.UserContext(), city)
		if err != nil {
			return mapError(err)
		}
		return c.JSON(fiber.Map{"reports": reports})
	})

	app.Get("/admin/reports/:adminId", func(c *fiber.Ctx) error {
		adminID, err := c.ParamsInt("adminId")
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid admin id")
		}

		reports, err := reg.ReportsByAuthor(c.UserContext(), int64(adminID))
		if err != nil {
			return mapError(err)
		}
		return c.JSON(reports)
	})

	app.Put("/reports/:id", func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid report id")
		}

		var req updateReportRequest
		if err := parseBody(c, &req); err != nil {
			return err
		}

		if err := reg.UpdateReport(c.UserContext(), int64(id), req.Content); err != nil {
			return mapError(err)
		}
		return c.JSON(fiber.Map{"message": "report updated"})
	})

	deleteReport := func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid report id")
		}

		if err := reg.DeleteReport(c.UserContext(), int64(id)); err != nil {
			return mapError(err)
		}
		return c.JSON(fiber.Map{"message": "report deleted"})
	}

	app.Delete("/reports/:id", deleteReport)
	// Kept for clients that cannot issue DELETE.
	app.Post("/reports/delete/:id", deleteReport)
}

type addFavoriteRequest struct {
	CityName string `json:"cityName" validate:"required"`
}

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type createReportRequest struct {
	CityName string  `json:"city_name" validate:"required"`
	Title    *string `json:"title"`
	Content  string  `json:"content" validate:"required"`
	AuthorID *int64  `json:"author_id"`
}

type updateReportRequest struct {
	Content string `json:"content" validate:"required"`
}

func parseBody(c *fiber.Ctx, req any) error {
	if err := c.BodyParser(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := validate.Struct(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	return nil
}

func cityParam(c *fiber.Ctx) (string, error) {
	city, err := url.PathUnescape(c.Params("city"))
	if err != nil {
		return "", fiber.NewError(fiber.StatusBadRequest, "invalid city name")
	}
	return city, nil
}

// mapError translates the domain error taxonomy into transport statuses.
// Anything unrecognized is an internal error.
func mapError(err error) error {
	switch {
	case errors.Is(err, weather.ErrEmptyCity),
		errors.Is(err, registry.ErrEmptyCity),
		errors.Is(err, registry.ErrEmptyContent):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	case errors.Is(err, weather.ErrCityNotFound),
		errors.Is(err, registry.ErrNotFound):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	case errors.Is(err, registry.ErrConflict):
		return fiber.NewError(fiber.StatusConflict, "city already in favorites")
	case errors.Is(err, registry.ErrBadCredentials):
		return fiber.NewError(fiber.StatusUnauthorized, err.Error())
	default:
		return fiber.NewError(fiber.StatusInternalServerError, "internal server error")
	}
}
