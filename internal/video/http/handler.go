package http

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/clipstream/clipstream-backend/internal/auth/gate"
	"github.com/clipstream/clipstream-backend/internal/common/constants"
	commonhttp "github.com/clipstream/clipstream-backend/internal/common/http"
	"github.com/clipstream/clipstream-backend/internal/common/logger"
	"github.com/clipstream/clipstream-backend/internal/media"
	"github.com/clipstream/clipstream-backend/internal/video/service"
)

const routePrefix = "/api/v1/videos"

// VideoHandler serves the video routes. The collection endpoint handles
// listing and multipart publishing; the item endpoint handles fetch, update,
// delete, and the publish toggle.
type VideoHandler struct {
	videos *service.VideoService
	stager *media.Stager
	log    *logger.Logger
}

func NewVideoHandler(videos *service.VideoService, stager *media.Stager, log *logger.Logger) *VideoHandler {
	return &VideoHandler{videos: videos, stager: stager, log: log}
}

func (h *VideoHandler) Collection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.list(w, r)
	case http.MethodPost:
		h.publish(w, r)
	default:
		commonhttp.WriteError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (h *VideoHandler) Item(w http.ResponseWriter, r *http.Request) {
	rest := strings.Trim(strings.TrimPrefix(r.URL.Path, routePrefix), "/")
	parts := strings.SplitN(rest, "/", 2)
	id := parts[0]
	if id == "" {
		commonhttp.WriteError(w, http.StatusBadRequest, "video id is required")
		return
	}

	if len(parts) == 2 {
		if parts[1] == "toggle-publish" && r.Method == http.MethodPatch {
			h.togglePublish(w, r, id)
			return
		}
		commonhttp.WriteError(w, http.StatusNotFound, "not found")
		return
	}

	switch r.Method {
	case http.MethodGet:
		h.get(w, r, id)
	case http.MethodPatch:
		h.update(w, r, id)
	case http.MethodDelete:
		h.delete(w, r, id)
	default:
		commonhttp.WriteError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (h *VideoHandler) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	page, _ := strconv.Atoi(q.Get("page"))
	limit, _ := strconv.Atoi(q.Get("limit"))

	result, err := h.videos.List(r.Context(), viewerID(r), service.ListParams{
		OwnerID:       q.Get("userId"),
		Query:         q.Get("query"),
		Page:          page,
		Limit:         limit,
		SortBy:        q.Get("sortBy"),
		SortAscending: q.Get("sortType") == "asc",
	})
	if err != nil {
		commonhttp.HandleError(w, r, err, h.log)
		return
	}

	commonhttp.WriteSuccess(w, http.StatusOK, result, "videos fetched successfully")
}

func (h *VideoHandler) publish(w http.ResponseWriter, r *http.Request) {
	principal, ok := gate.PrincipalFromContext(r.Context())
	if !ok {
		commonhttp.WriteError(w, http.StatusUnauthorized, "unauthorized request")
		return
	}

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		commonhttp.WriteError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	videoFile, err := h.stager.StageForm(r, "videoFile", constants.MaxVideoUploadSize)
	if err != nil {
		commonhttp.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	defer videoFile.Discard()

	thumbnail, err := h.stager.StageForm(r, "thumbnail", constants.MaxImageUploadSize)
	if err != nil {
		commonhttp.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	defer thumbnail.Discard()

	duration, _ := strconv.ParseFloat(r.FormValue("duration"), 64)

	video, err := h.videos.Publish(r.Context(), string(principal.UserID), service.PublishParams{
		Title:       r.FormValue("title"),
		Description: r.FormValue("description"),
		Duration:    duration,
	}, videoFile, thumbnail)
	if err != nil {
		commonhttp.HandleError(w, r, err, h.log)
		return
	}

	commonhttp.WriteSuccess(w, http.StatusCreated, video, "video published successfully")
}

func (h *VideoHandler) get(w http.ResponseWriter, r *http.Request, id string) {
	video, err := h.videos.Get(r.Context(), id, viewerID(r))
	if err != nil {
		commonhttp.HandleError(w, r, err, h.log)
		return
	}

	commonhttp.WriteSuccess(w, http.StatusOK, video, "video fetched successfully")
}

func (h *VideoHandler) update(w http.ResponseWriter, r *http.Request, id string) {
	principal, ok := gate.PrincipalFromContext(r.Context())
	if !ok {
		commonhttp.WriteError(w, http.StatusUnauthorized, "unauthorized request")
		return
	}

	params := service.UpdateParams{}
	var thumbnail *media.StagedFile

	contentType := r.Header.Get("Content-Type")
	if strings.HasPrefix(contentType, "multipart/form-data") {
		if err := r.ParseMultipartForm(32 << 20); err != nil {
			commonhttp.WriteError(w, http.StatusBadRequest, "invalid multipart form")
			return
		}

		staged, err := h.stager.StageForm(r, "thumbnail", constants.MaxImageUploadSize)
		if err != nil {
			commonhttp.WriteError(w, http.StatusBadRequest, err.Error())
			return
		}
		defer staged.Discard()
		thumbnail = staged

		if v, ok := formValue(r, "title"); ok {
			params.Title = &v
		}
		if v, ok := formValue(r, "description"); ok {
			params.Description = &v
		}
	} else {
		var req struct {
			Title       *string `json:"title"`
			Description *string `json:"description"`
		}
		if err := commonhttp.DecodeJSON(r, &req); err != nil {
			commonhttp.WriteError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		params.Title = req.Title
		params.Description = req.Description
	}

	video, err := h.videos.Update(r.Context(), id, string(principal.UserID), params, thumbnail)
	if err != nil {
		commonhttp.HandleError(w, r, err, h.log)
		return
	}

	commonhttp.WriteSuccess(w, http.StatusOK, video, "video updated successfully")
}

func (h *VideoHandler) delete(w http.ResponseWriter, r *http.Request, id string) {
	principal, ok := gate.PrincipalFromContext(r.Context())
	if !ok {
		commonhttp.WriteError(w, http.StatusUnauthorized, "unauthorized request")
		return
	}

	if err := h.videos.Delete(r.Context(), id, string(principal.UserID)); err != nil {
		commonhttp.HandleError(w, r, err, h.log)
		return
	}

	commonhttp.WriteSuccess(w, http.StatusOK, nil, "video deleted successfully")
}

func (h *VideoHandler) togglePublish(w http.ResponseWriter, r *http.Request, id string) {
	principal, ok := gate.PrincipalFromContext(r.Context())
	if !ok {
		commonhttp.WriteError(w, http.StatusUnauthorized, "unauthorized request")
		return
	}

	published, err := h.videos.TogglePublish(r.Context(), id, string(principal.UserID))
	if err != nil {
		commonhttp.HandleError(w, r, err, h.log)
		return
	}

	commonhttp.WriteSuccess(w, http.StatusOK, map[string]bool{"isPublished": published}, "publish state toggled")
}

func viewerID(r *http.Request) string {
	if principal, ok := gate.PrincipalFromContext(r.Context()); ok {
		return string(principal.UserID)
	}
	return ""
}

func formValue(r *http.Request, key string) (string, bool) {
	if values, ok := r.MultipartForm.Value[key]; ok && len(values) > 0 {
		return values[0], true
	}
	return "", false
}
