package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"github.com/mgpai22/voxserve/internal/audio"
	"github.com/mgpai22/voxserve/internal/store"
	"github.com/mgpai22/voxserve/internal/subtitle"
	"github.com/mgpai22/voxserve/internal/summarize"
	"github.com/mgpai22/voxserve/internal/transcribe"
)

// in-memory part of a multipart form; the rest spills to disk
const multipartMemory = 32 << 20

type statusResponse struct {
	Status   string `json:"status"`
	Message  string `json:"message"`
	Provider string `json:"provider"`
	Model    string `json:"model,omitempty"`
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, statusResponse{
		Status:   "running",
		Message:  "voxserve transcription API is running",
		Provider: s.provider,
		Model:    s.model,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// transcriptionRequest holds the validated form fields of an upload.
type transcriptionRequest struct {
	filename  string
	extension string
	format    transcribe.ResponseFormat
	overrides transcribe.Overrides
	reflow    bool
}

func parseTranscriptionForm(form *multipart.Form, header *multipart.FileHeader) (transcriptionRequest, error) {
	req := transcriptionRequest{filename: filepath.Base(header.Filename)}

	if !audio.IsSupportedUpload(req.filename) {
		return req, fmt.Errorf(
			"unsupported file format; allowed: %s",
			strings.Join(audio.SupportedUploadExtensions(), ", "),
		)
	}
	req.extension = strings.ToLower(filepath.Ext(req.filename))

	format, err := transcribe.ParseResponseFormat(formValue(form, "response_format"))
	if err != nil {
		return req, err
	}
	req.format = format

	language, err := transcribe.NormalizeLanguage(formValue(form, "language"))
	if err != nil {
		return req, err
	}
	req.overrides = transcribe.Overrides{
		Language: language,
		Prompt:   formValue(form, "prompt"),
	}

	if raw := formValue(form, "reflow"); raw != "" {
		reflow, err := strconv.ParseBool(raw)
		if err != nil {
			return req, fmt.Errorf("invalid reflow value %q", raw)
		}
		req.reflow = reflow
	}

	return req, nil
}

func formValue(form *multipart.Form, key string) string {
	if form == nil || len(form.Value[key]) == 0 {
		return ""
	}
	return strings.TrimSpace(form.Value[key][0])
}

func (s *Server) handleTranscription(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := s.logger.With("request_id", requestIDFrom(ctx))

	if s.usageEnabled {
		usage, err := s.store.CheckUsage(ctx)
		if err != nil {
			logger.Errorw("usage check failed", "error", err)
			s.writeError(w, http.StatusInternalServerError, errTypeServer, "failed to read usage")
			return
		}
		if !usage.IsAvailable {
			s.writeError(w, http.StatusTooManyRequests, errTypeUsageLimit, fmt.Sprintf(
				"usage limit reached: %.2f of %.2f minutes used",
				usage.TotalMinutes,
				usage.LimitMinutes,
			))
			return
		}
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.writeError(w, http.StatusRequestEntityTooLarge, errTypeTooLarge,
				fmt.Sprintf("upload exceeds %d MB", s.maxUploadBytes>>20))
			return
		}
		s.writeError(w, http.StatusBadRequest, errTypeInvalidRequest, "expected a multipart/form-data body")
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	file, header, err := r.FormFile("file")
	if err != nil {
		s.writeError(w, http.StatusBadRequest, errTypeInvalidRequest, "no file provided")
		return
	}
	defer file.Close()

	req, err := parseTranscriptionForm(r.MultipartForm, header)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, errTypeInvalidRequest, err.Error())
		return
	}

	tempPath, err := s.saveUpload(file, req.extension)
	if err != nil {
		logger.Errorw("failed to store upload", "error", err)
		s.writeError(w, http.StatusInternalServerError, errTypeServer, "failed to store upload")
		return
	}
	defer func() {
		if err := os.Remove(tempPath); err != nil && !os.IsNotExist(err) {
			logger.Warnw("failed to remove temp upload", "path", tempPath, "error", err)
		}
	}()

	job, err := s.store.CreateJob(ctx, req.filename, req.format.String(), req.overrides.Language)
	if err != nil {
		logger.Errorw("failed to record job", "error", err)
		s.writeError(w, http.StatusInternalServerError, errTypeServer, "failed to record transcription job")
		return
	}
	logger = logger.With("job_id", job.ID)
	logger.Infow("transcription started", "filename", req.filename, "format", req.format.String())

	body, result, err := s.transcribe(ctx, tempPath, req)
	if err != nil {
		logger.Errorw("transcription failed", "error", err)
		// the job outcome is recorded even when the client went away
		if failErr := s.store.FailJob(context.WithoutCancel(ctx), job.ID, err.Error()); failErr != nil {
			logger.Warnw("failed to mark job failed", "error", failErr)
		}
		w.Header().Set(headerTranscriptionID, job.ID)
		s.writeError(w, http.StatusInternalServerError, errTypeTranscription,
			fmt.Sprintf("transcription failed: %v", err))
		return
	}

	if err := s.store.CompleteJob(context.WithoutCancel(ctx), job.ID, result.Language, result.Duration.Seconds()); err != nil {
		logger.Warnw("failed to mark job completed", "error", err)
	}

	w.Header().Set(headerTranscriptionID, job.ID)
	if s.usageEnabled {
		update, err := s.store.AddUsage(context.WithoutCancel(ctx), result.Duration.Minutes(), store.SourceFileUpload)
		if err != nil {
			logger.Warnw("failed to record usage", "error", err)
		} else {
			w.Header().Set(headerUsageRemaining, strconv.FormatFloat(update.RemainingMinutes, 'f', 2, 64))
			if update.IsLocked {
				logger.Warnw("usage limit reached", "total_minutes", update.NewTotal)
			}
		}
	}

	logger.Infow("transcription completed",
		"language", result.Language,
		"duration", result.Duration,
		"segments", len(result.Segments),
	)
	w.Header().Set("Content-Type", req.format.ContentType())
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		logger.Warnw("failed to write response", "error", err)
	}
}

func (s *Server) transcribe(ctx context.Context, audioPath string, req transcriptionRequest) ([]byte, *transcribe.Result, error) {
	result, err := transcribe.TranscribeWith(ctx, s.engine, audioPath, req.overrides)
	if err != nil {
		return nil, nil, err
	}
	if result == nil {
		return nil, nil, errors.New("engine returned no result")
	}
	if req.reflow {
		result.Segments = subtitle.Reflow(result.Segments, subtitle.DefaultReflowOptions())
	}
	body, err := transcribe.Render(result, req.format)
	if err != nil {
		return nil, nil, err
	}
	return body, result, nil
}

// saveUpload copies the upload into a temp file that keeps its extension so
// engines and ffprobe can sniff the container.
func (s *Server) saveUpload(src io.Reader, extension string) (string, error) {
	tmp, err := os.CreateTemp(s.tempDir, "voxserve-upload-*"+extension)
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	path := tmp.Name()
	if _, err := io.Copy(tmp, src); err != nil {
		_ = tmp.Close()
		_ = os.Remove(path)
		return "", fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(path)
		return "", fmt.Errorf("close temp file: %w", err)
	}
	return path, nil
}

func (s *Server) handleGetJob(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	job, err := s.store.GetJob(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		s.writeError(w, http.StatusNotFound, errTypeNotFound, fmt.Sprintf("transcription %s not found", id))
		return
	}
	if err != nil {
		s.logger.Errorw("job lookup failed", "id", id, "error", err)
		s.writeError(w, http.StatusInternalServerError, errTypeServer, "failed to read transcription status")
		return
	}
	s.writeJSON(w, http.StatusOK, job)
}

type summarizeRequest struct {
	Text string `json:"text"`
}

type summarizeResponse struct {
	Summary string `json:"summary"`
}

func (s *Server) handleSummarize(w http.ResponseWriter, r *http.Request) {
	var req summarizeRequest
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, errTypeInvalidRequest, "expected a JSON body with a text field")
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		s.writeError(w, http.StatusBadRequest, errTypeInvalidRequest, summarize.ErrEmptyText.Error())
		return
	}
	if s.summarizer == nil {
		s.writeError(w, http.StatusServiceUnavailable, errTypeUnavailable, "summarization is not configured")
		return
	}

	summary, err := s.summarizer.Summarize(r.Context(), req.Text)
	if errors.Is(err, summarize.ErrEmptyText) {
		s.writeError(w, http.StatusBadRequest, errTypeInvalidRequest, err.Error())
		return
	}
	if err != nil {
		s.logger.Errorw("summarization failed", "request_id", requestIDFrom(r.Context()), "error", err)
		s.writeError(w, http.StatusBadGateway, errTypeUpstream, "summarization failed")
		return
	}
	s.writeJSON(w, http.StatusOK, summarizeResponse{Summary: summary})
}

func (s *Server) handleUsage(w http.ResponseWriter, r *http.Request) {
	if !s.usageEnabled {
		s.writeJSON(w, http.StatusOK, store.UsageFromLimits(s.limits))
		return
	}
	usage, err := s.store.CheckUsage(r.Context())
	if err != nil {
		s.logger.Errorw("usage check failed", "error", err)
		s.writeError(w, http.StatusInternalServerError, errTypeServer, "failed to read usage")
		return
	}
	s.writeJSON(w, http.StatusOK, usage)
}
