package v1

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yizeng/gab/gin/gorm/secret-santa/internal/api/handler/v1/request"
	"github.com/yizeng/gab/gin/gorm/secret-santa/internal/api/handler/v1/response"
	"github.com/yizeng/gab/gin/gorm/secret-santa/internal/api/middleware"
	"github.com/yizeng/gab/gin/gorm/secret-santa/internal/domain"
)

type AssignmentService interface {
	Lookup(ctx context.Context, eventName, giver string) (string, error)
	Assignment(ctx context.Context, eventName string) (domain.AssignmentSet, error)
	DeleteAssignment(ctx context.Context, eventName string) error
}

type DrawHandler struct {
	events   EventService
	svc      AssignmentService
	notifier Notifier
}

func NewDrawHandler(events EventService, svc AssignmentService, notifier Notifier) *DrawHandler {
	return &DrawHandler{
		events:   events,
		svc:      svc,
		notifier: notifier,
	}
}

// HandleDraw godoc
// @Summary      Draw an event
// @Description  Assigns every participant a receiver and closes registration. Pairs are not returned.
// @Tags         draws
// @Produce      json
// @Param        name  path      string  true  "Event name"
// @Success      201   {object}  response.DrawResponse
// @Failure      400   {object}  response.Err
// @Failure      401   {object}  response.Err
// @Failure      403   {object}  response.Err
// @Failure      404   {object}  response.Err
// @Failure      500   {object}  response.Err
// @Router       /events/{name}/draw [post]
// @Security     BearerAuth
func (h *DrawHandler) HandleDraw(ctx *gin.Context) {
	name := ctx.Param("name")

	set, err := h.events.DrawEvent(ctx.Request.Context(), name)
	if err != nil {
		response.RenderErr(ctx, serviceErr("HandleDraw -> h.events.DrawEvent", err, name))
		return
	}

	h.notifier.Publish(Notice{Type: NoticeDrawCompleted, Event: name, DrawID: set.DrawID})
	ctx.JSON(http.StatusCreated, response.NewDrawResponse(set))
}

// HandleRedraw godoc
// @Summary      Redraw an event
// @Description  Replaces the current draw. The previous draw is kept if the new one cannot be stored.
// @Tags         draws
// @Produce      json
// @Param        name  path      string  true  "Event name"
// @Success      201   {object}  response.DrawResponse
// @Failure      400   {object}  response.Err
// @Failure      401   {object}  response.Err
// @Failure      403   {object}  response.Err
// @Failure      404   {object}  response.Err
// @Failure      500   {object}  response.Err
// @Router       /events/{name}/redraw [post]
// @Security     BearerAuth
func (h *DrawHandler) HandleRedraw(ctx *gin.Context) {
	name := ctx.Param("name")

	set, err := h.events.RedrawEvent(ctx.Request.Context(), name)
	if err != nil {
		response.RenderErr(ctx, serviceErr("HandleRedraw -> h.events.RedrawEvent", err, name))
		return
	}

	h.notifier.Publish(Notice{Type: NoticeDrawCompleted, Event: name, DrawID: set.DrawID})
	ctx.JSON(http.StatusCreated, response.NewDrawResponse(set))
}

// HandleGetAssignments godoc
// @Summary      Get all pairs of a draw
// @Tags         draws
// @Produce      json
// @Param        name  path      string  true  "Event name"
// @Success      200   {object}  response.AssignmentsResponse
// @Failure      401   {object}  response.Err
// @Failure      403   {object}  response.Err
// @Failure      404   {object}  response.Err
// @Failure      500   {object}  response.Err
// @Router       /events/{name}/assignments [get]
// @Security     BearerAuth
func (h *DrawHandler) HandleGetAssignments(ctx *gin.Context) {
	name := ctx.Param("name")

	set, err := h.svc.Assignment(ctx.Request.Context(), name)
	if err != nil {
		response.RenderErr(ctx, serviceErr("HandleGetAssignments -> h.svc.Assignment", err, name))
		return
	}

	ctx.JSON(http.StatusOK, response.NewAssignmentsResponse(set))
}

// HandleGetMyAssignment godoc
// @Summary      Get the caller's receiver
// @Tags         draws
// @Produce      json
// @Param        name  path      string  true  "Event name"
// @Success      200   {object}  response.ReceiverResponse
// @Failure      401   {object}  response.Err
// @Failure      404   {object}  response.Err
// @Failure      500   {object}  response.Err
// @Router       /events/{name}/assignments/me [get]
// @Security     BearerAuth
func (h *DrawHandler) HandleGetMyAssignment(ctx *gin.Context) {
	name := ctx.Param("name")

	caller, ok := middleware.GetCaller(ctx)
	if !ok {
		response.RenderErr(ctx, response.ErrUnauthorized(errNoCaller))
		return
	}

	giver := request.NormalizeParticipantName(caller.Name)
	receiver, err := h.svc.Lookup(ctx.Request.Context(), name, giver)
	if err != nil {
		response.RenderErr(ctx, serviceErr("HandleGetMyAssignment -> h.svc.Lookup", err, name))
		return
	}

	ctx.JSON(http.StatusOK, response.ReceiverResponse{
		EventName: name,
		Giver:     giver,
		Receiver:  receiver,
	})
}

// HandleDeleteAssignments godoc
// @Summary      Delete the draw of an event
// @Description  Idempotent. Registration stays as it is.
// @Tags         draws
// @Param        name  path  string  true  "Event name"
// @Success      204
// @Failure      401  {object}  response.Err
// @Failure      403  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /events/{name}/assignments [delete]
// @Security     BearerAuth
func (h *DrawHandler) HandleDeleteAssignments(ctx *gin.Context) {
	name := ctx.Param("name")

	if err := h.svc.DeleteAssignment(ctx.Request.Context(), name); err != nil {
		response.RenderErr(ctx, serviceErr("HandleDeleteAssignments -> h.svc.DeleteAssignment", err, name))
		return
	}

	h.notifier.Publish(Notice{Type: NoticeDrawDeleted, Event: name})
	ctx.Status(http.StatusNoContent)
}
