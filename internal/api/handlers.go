package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"

	"github.com/aidanproy/minorminer/pkg/embed"
	apperrors "github.com/aidanproy/minorminer/pkg/errors"
	"github.com/aidanproy/minorminer/pkg/jobs"
)

// Handlers bundles the dependencies of the HTTP endpoints.
type Handlers struct {
	Runner *embed.Runner
	Jobs   jobs.Store
	Logger *log.Logger
}

// writeJSON encodes v with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps engine errors onto HTTP statuses: usage errors are the
// client's fault, everything else is a 500.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	code := string(apperrors.ErrCodeInternal)
	if apperrors.IsUsage(err) {
		status = http.StatusBadRequest
		code = string(apperrors.GetCode(err))
	}
	writeJSON(w, status, ErrorResponse{Code: code, Message: apperrors.UserMessage(err)})
}

// decodeRequest parses and sanity-checks an embedding request body.
func decodeRequest(r *http.Request) (*EmbedRequest, error) {
	var req EmbedRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeInvalidInput, err, "decode request body")
	}
	if len(req.Target) == 0 {
		return nil, apperrors.New(apperrors.ErrCodeInvalidInput, "target graph must be nonempty")
	}
	return &req, nil
}

// HandleEmbed runs an embedding synchronously. Small problems return within
// the request timeout; clients with large problems should use the job
// endpoints instead.
func (h *Handlers) HandleEmbed(w http.ResponseWriter, r *http.Request) {
	req, err := decodeRequest(r)
	if err != nil {
		writeError(w, err)
		return
	}
	res, err := h.Runner.Execute(r.Context(), edges(req.Source), edges(req.Target), req.Options)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, EmbedResponse{
		Mapping:  res.Mapping,
		Success:  res.Success,
		Quality:  res.Quality,
		CacheHit: res.CacheHit,
	})
}

// HandleCreateJob accepts an embedding request, stores a pending job, and
// runs the search in the background.
func (h *Handlers) HandleCreateJob(w http.ResponseWriter, r *http.Request) {
	req, err := decodeRequest(r)
	if err != nil {
		writeError(w, err)
		return
	}
	payload, _ := json.Marshal(req)
	job := jobs.New(payload, jobs.DefaultTTL)
	if err := h.Jobs.Set(r.Context(), job); err != nil {
		writeError(w, err)
		return
	}
	go h.runJob(job.ID, req)
	writeJSON(w, http.StatusAccepted, JobResponse{ID: job.ID, Status: string(job.Status)})
}

// runJob executes one job outside the request lifecycle. The job's own
// timeout option bounds the run; the background context never fires.
func (h *Handlers) runJob(id string, req *EmbedRequest) {
	ctx := context.Background()
	job, err := h.Jobs.Get(ctx, id)
	if err != nil || job == nil {
		return
	}
	job.Transition(jobs.StatusRunning)
	_ = h.Jobs.Set(ctx, job)

	res, err := h.Runner.Execute(ctx, edges(req.Source), edges(req.Target), req.Options)
	if err != nil {
		h.Logger.Error("job failed", "job", id, "err", err)
		job.Transition(jobs.StatusFailed)
		job.Error = apperrors.UserMessage(err)
	} else {
		job.Result, _ = json.Marshal(EmbedResponse{
			Mapping:  res.Mapping,
			Success:  res.Success,
			Quality:  res.Quality,
			CacheHit: res.CacheHit,
		})
		job.Transition(jobs.StatusDone)
	}
	_ = h.Jobs.Set(ctx, job)
}

// fetchJob loads the job in the URL, writing the appropriate error when it
// is missing or expired.
func (h *Handlers) fetchJob(w http.ResponseWriter, r *http.Request) *jobs.Job {
	id := chi.URLParam(r, "id")
	job, err := h.Jobs.Get(r.Context(), id)
	if err != nil {
		writeJSON(w, http.StatusGone, ErrorResponse{Code: string(apperrors.ErrCodeNotFound), Message: "job expired"})
		return nil
	}
	if job == nil {
		writeJSON(w, http.StatusNotFound, ErrorResponse{Code: string(apperrors.ErrCodeNotFound), Message: "no such job"})
		return nil
	}
	return job
}

// HandleJobStatus reports a job's lifecycle state.
func (h *Handlers) HandleJobStatus(w http.ResponseWriter, r *http.Request) {
	job := h.fetchJob(w, r)
	if job == nil {
		return
	}
	writeJSON(w, http.StatusOK, JobResponse{ID: job.ID, Status: string(job.Status), Error: job.Error})
}

// HandleJobResult returns a finished job's embedding, 409 while it is still
// running.
func (h *Handlers) HandleJobResult(w http.ResponseWriter, r *http.Request) {
	job := h.fetchJob(w, r)
	if job == nil {
		return
	}
	if !job.Done() {
		writeJSON(w, http.StatusConflict, JobResponse{ID: job.ID, Status: string(job.Status)})
		return
	}
	if job.Status == jobs.StatusFailed {
		writeJSON(w, http.StatusUnprocessableEntity, JobResponse{ID: job.ID, Status: string(job.Status), Error: job.Error})
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(job.Result)
}

// HandleHealth is the liveness probe.
func (h *Handlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
