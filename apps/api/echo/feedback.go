package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/campusvoice/backend/core/feedback"
)

type feedbackApi struct {
	svc      *feedback.Service
	validate *validator.Validate
}

func registerFeedbackAPI(g *echo.Group, opts *Options) {
	api := feedbackApi{
		svc:      opts.FeedbackSvc,
		validate: opts.Validate,
	}

	// any authenticated identity
	fg := g.Group("/feedback", authRequiredMiddleware())
	fg.POST("/submit", api.submit)
	fg.GET("/my-feedback", api.myFeedback)
}

func registerAdminAPI(g *echo.Group, opts *Options) {
	api := feedbackApi{
		svc:      opts.FeedbackSvc,
		validate: opts.Validate,
	}

	// admin role only
	ag := g.Group("/admin", adminRequiredMiddleware())
	ag.GET("/feedback", api.adminList)
	ag.GET("/feedback/:id", api.adminRetrieve)
	ag.PUT("/feedback/:id/status", api.adminSetStatus)
	ag.POST("/feedback/:id/reply", api.adminReply)
	ag.GET("/analytics", api.adminAnalytics)
}

// Handlers

func (api *feedbackApi) submit(ctx echo.Context) error {
	var data feedback.NewFeedback
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewFeedback")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	usr, err := getContextUser(ctx)
	if err != nil {
		return err
	}
	fb, err := api.svc.Submit(ctx.Request().Context(), data, usr.ID)
	if err != nil {
		return errors.Wrap(err, "submitting feedback")
	}
	return ctx.JSON(http.StatusCreated, fb)
}

func (api *feedbackApi) myFeedback(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return err
	}
	all, err := api.svc.ListForStudent(ctx.Request().Context(), usr.ID)
	if err != nil {
		return errors.Wrap(err, "listing student feedback")
	}
	return ctx.JSON(http.StatusOK, all)
}

func (api *feedbackApi) adminList(ctx echo.Context) error {
	views, err := api.svc.ListForAdmin(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "listing feedback")
	}
	return ctx.JSON(http.StatusOK, views)
}

func (api *feedbackApi) adminRetrieve(ctx echo.Context) error {
	view, err := api.svc.GetForAdmin(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, view)
}

func (api *feedbackApi) adminSetStatus(ctx echo.Context) error {
	var data feedback.StatusUpdate
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to StatusUpdate")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	fb, err := api.svc.SetStatus(ctx.Request().Context(), ctx.Param("id"), data.Status)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, fb)
}

func (api *feedbackApi) adminReply(ctx echo.Context) error {
	var data feedback.Reply
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to Reply")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	usr, err := getContextUser(ctx)
	if err != nil {
		return err
	}
	fb, err := api.svc.AddReply(ctx.Request().Context(), ctx.Param("id"), data.Content, usr.ID)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, fb)
}

func (api *feedbackApi) adminAnalytics(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	statusData, err := api.svc.StatusCounts(reqCtx)
	if err != nil {
		return errors.Wrap(err, "counting by status")
	}
	categoryData, err := api.svc.CategoryCounts(reqCtx)
	if err != nil {
		return errors.Wrap(err, "counting by category")
	}

	return ctx.JSON(http.StatusOK, AnalyticsResponse{
		StatusData:   statusData,
		CategoryData: categoryData,
	})
}
