package rpc

import (
	"context"
	"net/http"

	"connectrpc.com/connect"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"llmanim/internal/gateway/service/editor"
	"llmanim/internal/version"
)

const ServiceName = "llmanim.v1.VersionService"

// ServicePath is the prefix every VersionService procedure is mounted under.
const ServicePath = "/" + ServiceName + "/"

// VersionHandler exposes the version collection and the editor workflows as
// connect unary procedures with JSON bodies.
type VersionHandler struct {
	editor   *editor.Service
	store    *version.Store
	validate *validator.Validate
	log      *zap.Logger
	opts     []connect.HandlerOption
}

func NewVersionHandler(svc *editor.Service, log *zap.Logger) *VersionHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &VersionHandler{
		editor:   svc,
		store:    svc.Store(),
		validate: validator.New(validator.WithRequiredStructEnabled()),
		log:      log.Named("rpc"),
		opts:     []connect.HandlerOption{connect.WithCodec(jsonCodec{})},
	}
}

// Handler returns the mount path and the handler for every procedure.
func (h *VersionHandler) Handler() (string, http.Handler) {
	mux := http.NewServeMux()
	mux.Handle(unary(h, "List", h.list))
	mux.Handle(unary(h, "Get", h.get))
	mux.Handle(unary(h, "Create", h.create))
	mux.Handle(unary(h, "Copy", h.copy))
	mux.Handle(unary(h, "Switch", h.switchTo))
	mux.Handle(unary(h, "Delete", h.delete))
	mux.Handle(unary(h, "Save", h.save))
	mux.Handle(unary(h, "Undo", h.undo))
	mux.Handle(unary(h, "Initialize", h.initialize))
	mux.Handle(unary(h, "Update", h.update))
	mux.Handle(unary(h, "Extend", h.extend))
	mux.Handle(unary(h, "Segment", h.segment))
	mux.Handle(unary(h, "ParseParams", h.parseParams))
	mux.Handle(unary(h, "SelectWord", h.selectWord))
	mux.Handle(unary(h, "SetHighlight", h.setHighlight))
	mux.Handle(unary(h, "ToggleDetails", h.toggleDetails))
	mux.Handle(unary(h, "Render", h.render))
	mux.Handle(unary(h, "Edit", h.edit))
	mux.Handle(unary(h, "Commit", h.commit))
	mux.Handle(unary(h, "SetCode", h.setCode))
	mux.Handle(unary(h, "ToggleParamCheck", h.toggleParamCheck))
	mux.Handle(unary(h, "RemoveParam", h.removeParam))
	mux.Handle(unary(h, "Lines", h.lines))
	return ServicePath, mux
}

func unary[Req, Res any](h *VersionHandler, name string, fn func(context.Context, *Req) (*Res, error)) (string, http.Handler) {
	procedure := ServicePath + name
	return procedure, connect.NewUnaryHandler(procedure,
		func(ctx context.Context, req *connect.Request[Req]) (*connect.Response[Res], error) {
			if err := h.validate.Struct(req.Msg); err != nil {
				return nil, connect.NewError(connect.CodeInvalidArgument, err)
			}
			res, err := fn(ctx, req.Msg)
			if err != nil {
				cerr := toConnectError(err)
				if connect.CodeOf(cerr) == connect.CodeInternal {
					h.log.Error("procedure failed", zap.String("procedure", name), zap.Error(err))
				}
				return nil, cerr
			}
			return connect.NewResponse(res), nil
		},
		h.opts...,
	)
}

func versionResponse(v version.Version, err error) (*VersionResponse, error) {
	if err != nil {
		return nil, err
	}
	return &VersionResponse{Version: v}, nil
}

func (h *VersionHandler) list(_ context.Context, _ *Empty) (*ListResponse, error) {
	cur, _ := h.store.Current()
	return &ListResponse{Versions: h.store.List(), CurrentID: cur}, nil
}

func (h *VersionHandler) get(_ context.Context, req *IDRequest) (*VersionResponse, error) {
	v, ok := h.store.Get(req.ID)
	if !ok {
		return nil, connect.NewError(connect.CodeNotFound, version.ErrNotFound)
	}
	return &VersionResponse{Version: v}, nil
}

func (h *VersionHandler) create(_ context.Context, req *CreateRequest) (*VersionResponse, error) {
	return versionResponse(h.store.Create(req.Name))
}

func (h *VersionHandler) copy(_ context.Context, req *IDRequest) (*VersionResponse, error) {
	return versionResponse(h.store.Copy(req.ID))
}

func (h *VersionHandler) switchTo(_ context.Context, req *IDRequest) (*Empty, error) {
	if err := h.store.Switch(req.ID); err != nil {
		return nil, err
	}
	return &Empty{}, nil
}

func (h *VersionHandler) delete(_ context.Context, req *IDRequest) (*Empty, error) {
	if err := h.store.Delete(req.ID); err != nil {
		return nil, err
	}
	return &Empty{}, nil
}

func (h *VersionHandler) save(_ context.Context, req *SaveRequest) (*VersionResponse, error) {
	return versionResponse(h.store.Save(req.ID, req.Name))
}

func (h *VersionHandler) undo(_ context.Context, req *IDRequest) (*UndoResponse, error) {
	v, restored, err := h.store.Undo(req.ID)
	if err != nil {
		return nil, err
	}
	return &UndoResponse{Version: v, Restored: restored}, nil
}

func (h *VersionHandler) initialize(ctx context.Context, req *IDRequest) (*VersionResponse, error) {
	return versionResponse(h.editor.Initialize(ctx, req.ID))
}

func (h *VersionHandler) update(ctx context.Context, req *IDRequest) (*VersionResponse, error) {
	return versionResponse(h.editor.Update(ctx, req.ID))
}

func (h *VersionHandler) extend(ctx context.Context, req *IDRequest) (*ExtendResponse, error) {
	vs, err := h.editor.Extend(ctx, req.ID)
	if err != nil {
		return nil, err
	}
	if vs == nil {
		vs = []version.Version{}
	}
	return &ExtendResponse{Versions: vs}, nil
}

func (h *VersionHandler) segment(ctx context.Context, req *IDRequest) (*VersionResponse, error) {
	return versionResponse(h.editor.Segment(ctx, req.ID))
}

func (h *VersionHandler) parseParams(ctx context.Context, req *IDRequest) (*VersionResponse, error) {
	return versionResponse(h.editor.ParseParams(ctx, req.ID))
}

func (h *VersionHandler) selectWord(_ context.Context, req *SelectWordRequest) (*VersionResponse, error) {
	return versionResponse(h.editor.SelectWord(req.ID, req.Word, req.Normalize))
}

func (h *VersionHandler) setHighlight(_ context.Context, req *SetHighlightRequest) (*VersionResponse, error) {
	return versionResponse(h.editor.SetHighlight(req.ID, req.Enabled))
}

func (h *VersionHandler) toggleDetails(_ context.Context, req *ToggleDetailsRequest) (*VersionResponse, error) {
	return versionResponse(h.editor.ToggleDetails(req.ID, req.Entity))
}

func (h *VersionHandler) render(_ context.Context, req *IDRequest) (*RenderResponse, error) {
	d, err := h.editor.Render(req.ID)
	if err != nil {
		return nil, err
	}
	return &RenderResponse{Display: d}, nil
}

func (h *VersionHandler) edit(_ context.Context, req *EditRequest) (*VersionResponse, error) {
	return versionResponse(h.editor.Edit(req.ID, req.Text, req.HTML))
}

func (h *VersionHandler) commit(_ context.Context, req *EditRequest) (*VersionResponse, error) {
	return versionResponse(h.editor.Commit(req.ID, req.Text, req.HTML))
}

func (h *VersionHandler) setCode(_ context.Context, req *SetCodeRequest) (*VersionResponse, error) {
	return versionResponse(h.editor.SetCode(req.ID, req.Code))
}

func (h *VersionHandler) toggleParamCheck(_ context.Context, req *IDRequest) (*VersionResponse, error) {
	return versionResponse(h.editor.ToggleParamCheck(req.ID))
}

func (h *VersionHandler) removeParam(_ context.Context, req *RemoveParamRequest) (*VersionResponse, error) {
	return versionResponse(h.editor.RemoveParam(req.ID, req.Param))
}

func (h *VersionHandler) lines(_ context.Context, req *IDRequest) (*LinesResponse, error) {
	ls, err := h.editor.Lines(req.ID)
	if err != nil {
		return nil, err
	}
	return &LinesResponse{Lines: ls}, nil
}
