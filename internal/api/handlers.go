package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/rcdinesh/kidcastdailyapp/internal/models"
	"github.com/rcdinesh/kidcastdailyapp/internal/orchestrator"
	"github.com/rcdinesh/kidcastdailyapp/internal/playback"
	"github.com/rcdinesh/kidcastdailyapp/internal/session"
)

type Handler struct {
	store *session.Store
}

func NewHandler(store *session.Store) *Handler {
	return &Handler{store: store}
}

// resolveSession parses the {id} URL parameter and looks up the session.
// Responds itself on failure and returns nil.
func (h *Handler) resolveSession(w http.ResponseWriter, r *http.Request) *session.Session {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid session ID")
		return nil
	}
	sess, ok := h.store.Get(id)
	if !ok {
		respondError(w, http.StatusNotFound, "Session not found")
		return nil
	}
	return sess
}

// resetPlaybackIfAudioChanged resets the playback position when an operation
// replaced or cleared the audio artifact. Failure paths that leave the
// artifact alone keep the listener's position. prevAt/prevOK come from
// AudioCreatedAt before the operation, snap from its result.
func resetPlaybackIfAudioChanged(sess *session.Session, prevAt time.Time, prevOK bool, snap orchestrator.Snapshot) {
	if snap.Audio == nil {
		if prevOK {
			sess.Playback.Handle(playback.EventReset)
		}
		return
	}
	if !prevOK || !snap.Audio.CreatedAt.Equal(prevAt) {
		sess.Playback.Handle(playback.EventReset)
	}
}

// CreateSession handles POST /v1/sessions
func (h *Handler) CreateSession(w http.ResponseWriter, r *http.Request) {
	sess := h.store.Create()
	respondJSON(w, http.StatusCreated, models.CreateSessionResponse{SessionID: sess.ID.String()})
}

// GetSession handles GET /v1/sessions/{id}
func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	sess := h.resolveSession(w, r)
	if sess == nil {
		return
	}
	respondJSON(w, http.StatusOK, sess.Orchestrator.Snapshot())
}

// DeleteSession handles DELETE /v1/sessions/{id}
func (h *Handler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid session ID")
		return
	}
	h.store.Delete(id)
	w.WriteHeader(http.StatusNoContent)
}

// SetParameters handles PUT /v1/sessions/{id}/parameters
//
// A parameter set equal to the current one changes nothing; any difference
// cascades, discarding the script and audio built under the old set.
func (h *Handler) SetParameters(w http.ResponseWriter, r *http.Request) {
	sess := h.resolveSession(w, r)
	if sess == nil {
		return
	}

	var params models.GenerationParameters
	if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	prevAt, prevOK := sess.Orchestrator.AudioCreatedAt()
	snap := sess.Orchestrator.SetParameters(params)
	resetPlaybackIfAudioChanged(sess, prevAt, prevOK, snap)
	respondJSON(w, http.StatusOK, snap)
}

// Invalidate handles POST /v1/sessions/{id}/invalidate
func (h *Handler) Invalidate(w http.ResponseWriter, r *http.Request) {
	sess := h.resolveSession(w, r)
	if sess == nil {
		return
	}
	prevAt, prevOK := sess.Orchestrator.AudioCreatedAt()
	snap := sess.Orchestrator.Invalidate()
	resetPlaybackIfAudioChanged(sess, prevAt, prevOK, snap)
	respondJSON(w, http.StatusOK, snap)
}

// GenerateScript handles POST /v1/sessions/{id}/script
//
// The call is synchronous: it returns once the script provider answers. The
// resulting snapshot carries the outcome, including any generation error.
func (h *Handler) GenerateScript(w http.ResponseWriter, r *http.Request) {
	sess := h.resolveSession(w, r)
	if sess == nil {
		return
	}

	var params models.GenerationParameters
	if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	prevAt, prevOK := sess.Orchestrator.AudioCreatedAt()
	snap := sess.Orchestrator.GenerateScript(r.Context(), params)
	resetPlaybackIfAudioChanged(sess, prevAt, prevOK, snap)
	respondJSON(w, http.StatusOK, snap)
}

// GenerateAudio handles POST /v1/sessions/{id}/audio
func (h *Handler) GenerateAudio(w http.ResponseWriter, r *http.Request) {
	sess := h.resolveSession(w, r)
	if sess == nil {
		return
	}

	var req models.GenerateAudioRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
	}

	prevAt, prevOK := sess.Orchestrator.AudioCreatedAt()
	snap := sess.Orchestrator.GenerateAudio(r.Context(), req.Provider)
	resetPlaybackIfAudioChanged(sess, prevAt, prevOK, snap)
	respondJSON(w, http.StatusOK, snap)
}

// EditScript handles POST /v1/sessions/{id}/script/edit
func (h *Handler) EditScript(w http.ResponseWriter, r *http.Request) {
	sess := h.resolveSession(w, r)
	if sess == nil {
		return
	}

	var req models.EditScriptRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	respondJSON(w, http.StatusOK, sess.Orchestrator.EditScript(req.Text))
}

// SaveEdit handles POST /v1/sessions/{id}/script/save
func (h *Handler) SaveEdit(w http.ResponseWriter, r *http.Request) {
	sess := h.resolveSession(w, r)
	if sess == nil {
		return
	}
	prevAt, prevOK := sess.Orchestrator.AudioCreatedAt()
	snap := sess.Orchestrator.SaveEdit()
	resetPlaybackIfAudioChanged(sess, prevAt, prevOK, snap)
	respondJSON(w, http.StatusOK, snap)
}

// CancelEdit handles POST /v1/sessions/{id}/script/cancel
func (h *Handler) CancelEdit(w http.ResponseWriter, r *http.Request) {
	sess := h.resolveSession(w, r)
	if sess == nil {
		return
	}
	respondJSON(w, http.StatusOK, sess.Orchestrator.CancelEdit())
}

// PlaybackEvent handles POST /v1/sessions/{id}/playback
func (h *Handler) PlaybackEvent(w http.ResponseWriter, r *http.Request) {
	sess := h.resolveSession(w, r)
	if sess == nil {
		return
	}

	var req models.PlaybackEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	state, err := sess.Playback.Handle(playback.Event(req.Event))
	if err != nil {
		respondError(w, http.StatusConflict, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, models.PlaybackStateResponse{State: string(state)})
}

// PlaybackState handles GET /v1/sessions/{id}/playback
func (h *Handler) PlaybackState(w http.ResponseWriter, r *http.Request) {
	sess := h.resolveSession(w, r)
	if sess == nil {
		return
	}
	respondJSON(w, http.StatusOK, models.PlaybackStateResponse{State: string(sess.Playback.State())})
}

// Health check
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
