package v1

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yizeng/gab/gin/gorm/secret-santa/internal/api/handler/v1/request"
	"github.com/yizeng/gab/gin/gorm/secret-santa/internal/api/handler/v1/response"
	"github.com/yizeng/gab/gin/gorm/secret-santa/internal/api/middleware"
	"github.com/yizeng/gab/gin/gorm/secret-santa/internal/domain"
)

var errNoCaller = errors.New("no caller in request context")

type EventService interface {
	ListEvents(ctx context.Context) ([]domain.Event, error)
	GetEvent(ctx context.Context, name string) (domain.Event, error)
	CreateEvent(ctx context.Context, name, description, price, theme string) (domain.Event, error)
	UpdateEvent(ctx context.Context, name, description, price, theme string, registrationOpen bool) (domain.Event, error)
	DeleteEvent(ctx context.Context, name string) (bool, error)
	Register(ctx context.Context, name, participant string) (domain.Event, error)
	Unregister(ctx context.Context, name, participant string) (domain.Event, error)
	DrawEvent(ctx context.Context, name string) (domain.AssignmentSet, error)
	RedrawEvent(ctx context.Context, name string) (domain.AssignmentSet, error)
}

type EventHandler struct {
	svc      EventService
	notifier Notifier
}

func NewEventHandler(svc EventService, notifier Notifier) *EventHandler {
	return &EventHandler{
		svc:      svc,
		notifier: notifier,
	}
}

// HandleListEvents godoc
// @Summary      List events
// @Description  Returns every event in creation order.
// @Tags         events
// @Produce      json
// @Success      200  {array}   domain.Event
// @Failure      401  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /events [get]
// @Security     BearerAuth
func (h *EventHandler) HandleListEvents(ctx *gin.Context) {
	events, err := h.svc.ListEvents(ctx.Request.Context())
	if err != nil {
		response.RenderErr(ctx, serviceErr("HandleListEvents -> h.svc.ListEvents", err, ""))
		return
	}

	ctx.JSON(http.StatusOK, events)
}

// HandleGetEvent godoc
// @Summary      Get an event
// @Tags         events
// @Produce      json
// @Param        name  path      string  true  "Event name"
// @Success      200   {object}  domain.Event
// @Failure      401   {object}  response.Err
// @Failure      404   {object}  response.Err
// @Failure      500   {object}  response.Err
// @Router       /events/{name} [get]
// @Security     BearerAuth
func (h *EventHandler) HandleGetEvent(ctx *gin.Context) {
	name := ctx.Param("name")

	event, err := h.svc.GetEvent(ctx.Request.Context(), name)
	if err != nil {
		response.RenderErr(ctx, serviceErr("HandleGetEvent -> h.svc.GetEvent", err, name))
		return
	}

	ctx.JSON(http.StatusOK, event)
}

// HandleCreateEvent godoc
// @Summary      Create an event
// @Description  Creates an event with an empty roster and open registration.
// @Tags         events
// @Accept       json
// @Produce      json
// @Param        input  body      request.CreateEventRequest  true  "Event details"
// @Success      201    {object}  domain.Event
// @Failure      400    {object}  response.Err
// @Failure      401    {object}  response.Err
// @Failure      403    {object}  response.Err
// @Failure      409    {object}  response.Err
// @Failure      500    {object}  response.Err
// @Router       /events [post]
// @Security     BearerAuth
func (h *EventHandler) HandleCreateEvent(ctx *gin.Context) {
	var input request.CreateEventRequest
	if err := ctx.ShouldBindJSON(&input); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := input.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	event, err := h.svc.CreateEvent(ctx.Request.Context(), input.Name, input.Description, input.Price, input.Theme)
	if err != nil {
		response.RenderErr(ctx, serviceErr("HandleCreateEvent -> h.svc.CreateEvent", err, input.Name))
		return
	}

	ctx.JSON(http.StatusCreated, event)
}

// HandleUpdateEvent godoc
// @Summary      Update an event
// @Description  Replaces the descriptive fields and the registration flag. The roster is kept.
// @Tags         events
// @Accept       json
// @Produce      json
// @Param        name   path      string                      true  "Event name"
// @Param        input  body      request.UpdateEventRequest  true  "Event details"
// @Success      200    {object}  domain.Event
// @Failure      400    {object}  response.Err
// @Failure      401    {object}  response.Err
// @Failure      403    {object}  response.Err
// @Failure      404    {object}  response.Err
// @Failure      500    {object}  response.Err
// @Router       /events/{name} [put]
// @Security     BearerAuth
func (h *EventHandler) HandleUpdateEvent(ctx *gin.Context) {
	name := ctx.Param("name")

	var input request.UpdateEventRequest
	if err := ctx.ShouldBindJSON(&input); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := input.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	event, err := h.svc.UpdateEvent(ctx.Request.Context(), name, input.Description, input.Price, input.Theme, *input.RegistrationOpen)
	if err != nil {
		response.RenderErr(ctx, serviceErr("HandleUpdateEvent -> h.svc.UpdateEvent", err, name))
		return
	}

	h.notifier.Publish(Notice{Type: NoticeEventUpdated, Event: name})
	ctx.JSON(http.StatusOK, event)
}

// HandleDeleteEvent godoc
// @Summary      Delete an event
// @Description  Removes the event and its draw. Deleting a missing event reports deleted=false.
// @Tags         events
// @Produce      json
// @Param        name  path      string  true  "Event name"
// @Success      200   {object}  response.DeleteResponse
// @Failure      401   {object}  response.Err
// @Failure      403   {object}  response.Err
// @Failure      500   {object}  response.Err
// @Router       /events/{name} [delete]
// @Security     BearerAuth
func (h *EventHandler) HandleDeleteEvent(ctx *gin.Context) {
	name := ctx.Param("name")

	deleted, err := h.svc.DeleteEvent(ctx.Request.Context(), name)
	if err != nil {
		response.RenderErr(ctx, serviceErr("HandleDeleteEvent -> h.svc.DeleteEvent", err, name))
		return
	}

	if deleted {
		h.notifier.Publish(Notice{Type: NoticeEventDeleted, Event: name})
	}
	ctx.JSON(http.StatusOK, response.DeleteResponse{Deleted: deleted})
}

// HandleRegister godoc
// @Summary      Join an event
// @Description  Adds the caller, named by the token subject, to the roster.
// @Tags         participants
// @Produce      json
// @Param        name  path      string  true  "Event name"
// @Success      201   {object}  domain.Event
// @Failure      400   {object}  response.Err
// @Failure      401   {object}  response.Err
// @Failure      404   {object}  response.Err
// @Failure      409   {object}  response.Err
// @Failure      500   {object}  response.Err
// @Router       /events/{name}/participants [post]
// @Security     BearerAuth
func (h *EventHandler) HandleRegister(ctx *gin.Context) {
	name := ctx.Param("name")

	caller, ok := middleware.GetCaller(ctx)
	if !ok {
		response.RenderErr(ctx, response.ErrUnauthorized(errNoCaller))
		return
	}

	participant := request.NormalizeParticipantName(caller.Name)
	if err := request.ValidateParticipantName(participant); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	event, err := h.svc.Register(ctx.Request.Context(), name, participant)
	if err != nil {
		response.RenderErr(ctx, serviceErr("HandleRegister -> h.svc.Register", err, name))
		return
	}

	h.notifier.Publish(Notice{Type: NoticeParticipantJoined, Event: name, Participant: participant})
	ctx.JSON(http.StatusCreated, event)
}

// HandleUnregister godoc
// @Summary      Remove a participant
// @Tags         participants
// @Produce      json
// @Param        name         path      string  true  "Event name"
// @Param        participant  path      string  true  "Participant name"
// @Success      200          {object}  domain.Event
// @Failure      401          {object}  response.Err
// @Failure      403          {object}  response.Err
// @Failure      404          {object}  response.Err
// @Failure      500          {object}  response.Err
// @Router       /events/{name}/participants/{participant} [delete]
// @Security     BearerAuth
func (h *EventHandler) HandleUnregister(ctx *gin.Context) {
	name := ctx.Param("name")
	participant := request.NormalizeParticipantName(ctx.Param("participant"))

	event, err := h.svc.Unregister(ctx.Request.Context(), name, participant)
	if err != nil {
		response.RenderErr(ctx, serviceErr("HandleUnregister -> h.svc.Unregister", err, name))
		return
	}

	h.notifier.Publish(Notice{Type: NoticeParticipantLeft, Event: name, Participant: participant})
	ctx.JSON(http.StatusOK, event)
}
