package server

import (
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/biotree/pkg/buildinfo"
	"github.com/matzehuels/biotree/pkg/editor"
	"github.com/matzehuels/biotree/pkg/errors"
	"github.com/matzehuels/biotree/pkg/flow"
	"github.com/matzehuels/biotree/pkg/photo"
	"github.com/matzehuels/biotree/pkg/render/nodelink"
)

// Request body limits.
const (
	maxJSONBody      = 1 << 20
	maxImportBody    = 64 << 20
	maxMultipartBody = 64 << 20
	multipartMemory  = 8 << 20
)

type errorBody struct {
	Code    errors.Code `json:"code"`
	Message string      `json:"message"`
}

type idResponse struct {
	ID string `json:"id"`
}

type modeRequest struct {
	Mode editor.Mode `json:"mode"`
}

type selectionRequest struct {
	Nodes []string `json:"nodes"`
	Edges []string `json:"edges"`
}

type selectionResponse struct {
	Changed   bool             `json:"changed"`
	Selection editor.Selection `json:"selection"`
}

type healthResponse struct {
	Status string `json:"status"`
	buildinfo.Info
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, err error) {
	code := errors.GetCode(err)
	if code == "" {
		code = errors.ErrCodeInternal
	}
	writeJSON(w, errors.HTTPStatus(code), errorBody{Code: code, Message: errors.UserMessage(err)})
}

func notFound(msg string) error { return errors.New(errors.ErrCodeNotFound, "%s", msg) }

// decode reads a JSON request body into v.
func decode(w http.ResponseWriter, r *http.Request, v any) error {
	body := http.MaxBytesReader(w, r.Body, maxJSONBody)
	if err := json.NewDecoder(body).Decode(v); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidJSON, err, "invalid request body")
	}
	return nil
}

// pathID returns the {id} URL parameter after validation.
func pathID(r *http.Request) (string, error) {
	id := chi.URLParam(r, "id")
	if err := errors.ValidateNodeID(id); err != nil {
		return "", err
	}
	return id, nil
}

// writeState responds with the controller state after a successful change.
func (s *Server) writeState(w http.ResponseWriter, err error) {
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.ctrl.State())
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok", Info: buildinfo.Current()})
}

func (s *Server) handleFlow(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.ctrl.State())
}

func (s *Server) handleSetMode(w http.ResponseWriter, r *http.Request) {
	var req modeRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	s.writeState(w, s.ctrl.SetMode(r.Context(), req.Mode))
}

func (s *Server) handleAddTaxon(w http.ResponseWriter, r *http.Request) {
	s.writeID(w, r, s.ctrl.AddTaxon)
}

func (s *Server) handleAddBranchPoint(w http.ResponseWriter, r *http.Request) {
	s.writeID(w, r, s.ctrl.AddBranchPoint)
}

// writeID runs an add operation. View mode yields an empty id and 200;
// a created node yields 201.
func (s *Server) writeID(w http.ResponseWriter, r *http.Request, add func(context.Context) (string, error)) {
	id, err := add(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	status := http.StatusCreated
	if id == "" {
		status = http.StatusOK
	}
	writeJSON(w, status, idResponse{ID: id})
}

func (s *Server) handleUpdateTaxon(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var patch editor.TaxonPatch
	if err := decode(w, r, &patch); err != nil {
		writeError(w, err)
		return
	}
	s.writeState(w, s.ctrl.UpdateTaxon(r.Context(), id, patch))
}

func (s *Server) handleUpdateBranchPoint(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var patch editor.BranchPointPatch
	if err := decode(w, r, &patch); err != nil {
		writeError(w, err)
		return
	}
	s.writeState(w, s.ctrl.UpdateBranchPoint(r.Context(), id, patch))
}

// handleAttachPhotos reads every file in the "photos" form field.
func (s *Server) handleAttachPhotos(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxMultipartBody)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		writeError(w, errors.Wrap(errors.ErrCodeInvalidInput, err, "expected multipart form with photos"))
		return
	}
	defer r.MultipartForm.RemoveAll()

	files := r.MultipartForm.File["photos"]
	sources := make([]photo.Source, 0, len(files))
	for _, fh := range files {
		sources = append(sources, formFile(fh))
	}
	s.writeState(w, s.ctrl.AttachPhotos(r.Context(), id, sources...))
}

// formFile adapts an uploaded file. The generic octet-stream type that
// form encoders default to is dropped so the extension or content decides.
func formFile(fh *multipart.FileHeader) photo.Source {
	ct := fh.Header.Get("Content-Type")
	if ct == "application/octet-stream" {
		ct = ""
	}
	return photo.Opener{
		Filename:    fh.Filename,
		ContentType: ct,
		OpenFunc:    func() (io.ReadCloser, error) { return fh.Open() },
	}
}

func (s *Server) handleRemovePhoto(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		writeError(w, errors.Wrap(errors.ErrCodeInvalidInput, err, "photo index must be an integer"))
		return
	}
	s.writeState(w, s.ctrl.RemovePhoto(r.Context(), id, index))
}

func (s *Server) handleDeleteNode(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	s.writeState(w, s.ctrl.DeleteNode(r.Context(), id))
}

func (s *Server) handleMoveNode(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var pos flow.Position
	if err := decode(w, r, &pos); err != nil {
		writeError(w, err)
		return
	}
	s.writeState(w, s.ctrl.MoveNode(r.Context(), id, pos))
}

func (s *Server) handleNodeChanges(w http.ResponseWriter, r *http.Request) {
	var changes []editor.NodeChange
	if err := decode(w, r, &changes); err != nil {
		writeError(w, err)
		return
	}
	s.writeState(w, s.ctrl.ApplyNodeChanges(r.Context(), changes))
}

func (s *Server) handleSelectNode(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	s.ctrl.SelectNode(id)
	writeJSON(w, http.StatusOK, s.ctrl.Detail())
}

func (s *Server) handleConnect(w http.ResponseWriter, r *http.Request) {
	var conn editor.Connection
	if err := decode(w, r, &conn); err != nil {
		writeError(w, err)
		return
	}
	id, err := s.ctrl.Connect(r.Context(), conn)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, idResponse{ID: id})
}

func (s *Server) handleRemoveEdge(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	s.writeState(w, s.ctrl.RemoveEdges(r.Context(), id))
}

func (s *Server) handleSetSelection(w http.ResponseWriter, r *http.Request) {
	var req selectionRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	changed := s.ctrl.SetSelection(req.Nodes, req.Edges)
	writeJSON(w, http.StatusOK, selectionResponse{Changed: changed, Selection: s.ctrl.Selection()})
}

func (s *Server) handleClearSelection(w http.ResponseWriter, _ *http.Request) {
	s.ctrl.ClearSelection()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDetail(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.ctrl.Detail())
}

func (s *Server) handleDeleteSelected(w http.ResponseWriter, r *http.Request) {
	s.writeState(w, s.ctrl.DeleteSelected(r.Context()))
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	s.writeState(w, s.ctrl.Reset(r.Context()))
}

// handleExport offers the snapshot as a file download.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	sink := editor.SinkFunc(func(_ context.Context, name string, data []byte) error {
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
		w.Header().Set("Content-Length", strconv.Itoa(len(data)))
		w.WriteHeader(http.StatusOK)
		_, err := w.Write(data)
		return err
	})
	if err := s.ctrl.ExportTo(r.Context(), sink); err != nil {
		s.logger.Warn("export failed", "err", err)
		if errors.GetCode(err) != errors.ErrCodeStorage {
			writeError(w, err)
		}
	}
}

// handleImport takes the pasted snapshot as the raw request body.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxImportBody))
	if err != nil {
		writeError(w, errors.Wrap(errors.ErrCodeInvalidInput, err, "read import body"))
		return
	}
	s.writeState(w, s.ctrl.Import(r.Context(), string(body)))
}

type renderFormat string

const (
	formatDOT renderFormat = "dot"
	formatSVG renderFormat = "svg"
)

// handleRender draws the live diagram. ?detailed=true adds memos and
// branch-point traits; ports are drawn in edit mode.
func (s *Server) handleRender(format renderFormat) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		detailed, _ := strconv.ParseBool(r.URL.Query().Get("detailed"))
		dot := nodelink.ToDOT(s.ctrl.Snapshot(), nodelink.Options{
			Detailed: detailed,
			Editable: s.ctrl.Mode() == editor.ModeEdit,
		})

		if format == formatDOT {
			w.Header().Set("Content-Type", "text/vnd.graphviz; charset=utf-8")
			_, _ = io.WriteString(w, dot)
			return
		}

		svg, err := nodelink.RenderSVG(r.Context(), dot)
		if err != nil {
			writeError(w, errors.Wrap(errors.ErrCodeInternal, err, "render svg"))
			return
		}
		w.Header().Set("Content-Type", "image/svg+xml")
		_, _ = w.Write(svg)
	}
}
