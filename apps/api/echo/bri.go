package echoapi

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/ustawi/core"
	"github.com/trezcool/ustawi/core/bri"
	"github.com/trezcool/ustawi/core/student"
)

var dateFormat = "2006-01-02"

type briApi struct {
	svc      *bri.Service
	logger   core.Logger
	validate *validator.Validate
}

func registerBRIAPI(g *echo.Group, svc *bri.Service, logger core.Logger, validate *validator.Validate) {
	api := briApi{
		svc:      svc,
		logger:   logger,
		validate: validate,
	}

	g.GET("/students", api.listStudents)

	sg := g.Group("/students/:id/bri")
	sg.POST("/recompute", api.recompute)
	sg.GET("/snapshots", api.querySnapshots)

	cg := g.Group("/bri")
	cg.GET("/config", api.retrieveConfig)
	cg.PUT("/config", api.updateConfig)
	cg.POST("/sweep", api.sweep)
}

// Handlers

func (api *briApi) recompute(ctx echo.Context) error {
	res, err := api.svc.Recompute(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == student.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "recomputing BRI")
	}
	return ctx.JSON(http.StatusOK, res)
}

func (api *briApi) querySnapshots(ctx echo.Context) error {
	from, to, err := parseDateRange(ctx.QueryParam("from"), ctx.QueryParam("to"))
	if err != nil {
		return err
	}

	if _, err = api.svc.Student(ctx.Request().Context(), ctx.Param("id")); err != nil {
		if errors.Cause(err) == student.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "getting student")
	}

	snaps, err := api.svc.QuerySnapshots(ctx.Request().Context(), ctx.Param("id"), from, to)
	if err != nil {
		return errors.Wrap(err, "querying snapshots")
	}
	return ctx.JSON(http.StatusOK, snaps)
}

func (api *briApi) listStudents(ctx echo.Context) error {
	level := bri.RiskLevel(ctx.QueryParam("risk"))
	switch level {
	case "", bri.RiskLow, bri.RiskAtRisk, bri.RiskHigh:
	default:
		return core.NewValidationError(nil, core.FieldError{Field: "risk", Error: "unknown risk level"})
	}

	filter := student.QueryFilter{
		Class:  core.CleanString(ctx.QueryParam("class")),
		Search: core.CleanString(ctx.QueryParam("search")),
	}
	listed, err := api.svc.ListStudentsByRisk(ctx.Request().Context(), level, filter)
	if err != nil {
		if errors.Cause(err) == bri.ErrConfigNotFound {
			return errors.Wrap(err, "no active config")
		}
		return errors.Wrap(err, "listing students")
	}
	return ctx.JSON(http.StatusOK, listed)
}

func (api *briApi) retrieveConfig(ctx echo.Context) error {
	cfg, err := api.svc.ActiveConfig(ctx.Request().Context())
	if err != nil {
		if errors.Cause(err) == bri.ErrConfigNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "getting active config")
	}
	return ctx.JSON(http.StatusOK, cfg)
}

func (api *briApi) updateConfig(ctx echo.Context) error {
	var data bri.NewWeightConfig
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewWeightConfig")
	}

	cfg, err := api.svc.UpdateConfig(ctx.Request().Context(), data, api.validate)
	if err != nil {
		return err
	}

	// refresh all scores under the new weights; the response does not wait
	go func() {
		report, err := api.svc.Sweep(context.Background())
		if err != nil {
			api.logger.Error(fmt.Sprintf("post-config sweep: %v", err), err)
			return
		}
		api.logger.Info(fmt.Sprintf("post-config sweep: %d/%d succeeded", report.Succeeded, report.Total))
	}()

	return ctx.JSON(http.StatusOK, cfg)
}

func (api *briApi) sweep(ctx echo.Context) error {
	report, err := api.svc.Sweep(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "sweeping")
	}
	return ctx.JSON(http.StatusOK, report)
}

func parseDateRange(fromStr, toStr string) (from, to time.Time, err error) {
	to = time.Now().UTC()
	if fromStr != "" {
		if from, err = time.Parse(dateFormat, fromStr); err != nil {
			return from, to, core.NewValidationError(nil, core.FieldError{Field: "from", Error: "invalid date, expected YYYY-MM-DD"})
		}
	}
	if toStr != "" {
		if to, err = time.Parse(dateFormat, toStr); err != nil {
			return from, to, core.NewValidationError(nil, core.FieldError{Field: "to", Error: "invalid date, expected YYYY-MM-DD"})
		}
	}
	return from, to, nil
}
