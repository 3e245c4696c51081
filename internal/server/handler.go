package server

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"assignmate/internal/database"
	"assignmate/internal/files"
	"assignmate/internal/logger"
)

// multipartMemoryLimit is the in-memory threshold for multipart parsing;
// larger parts spill to disk.
const multipartMemoryLimit = 32 << 20

// AnswerResponse is the JSON body returned for a successfully answered
// question.
type AnswerResponse struct {
	Answer string `json:"answer"`
}

// ErrorResponse is the JSON body returned for failed requests.
type ErrorResponse struct {
	Error string `json:"error"`
}

// handleAnswer accepts a multipart form with a required question and an
// optional file attachment, and responds with the generated answer.
func (s *Server) handleAnswer(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.Uploads.MaxFileSize+multipartMemoryLimit)
	if err := r.ParseMultipartForm(multipartMemoryLimit); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid multipart form data"})
		return
	}

	question := strings.TrimSpace(r.FormValue("question"))
	if question == "" {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "missing 'question' field"})
		return
	}
	s.log.InfoContext(ctx, "Received question", "preview", logger.Truncate(question, 50))

	var fileInfo, fileDigest string
	cacheable := true

	file, header, err := r.FormFile("file")
	switch {
	case err == nil:
		defer file.Close()

		stagedPath, cleanup, status, stageErr := s.stageUpload(file, header)
		if stageErr != nil {
			writeJSON(w, status, ErrorResponse{Error: stageErr.Error()})
			return
		}
		defer cleanup()

		fileType := files.Detect(stagedPath)
		s.log.DebugContext(ctx, "Staged upload", "filename", header.Filename, "size", header.Size, "type", fileType)

		if answer, handled := s.resolver.Resolve(ctx, question, stagedPath, fileType); handled {
			s.log.InfoContext(ctx, "Question answered locally")
			writeJSON(w, http.StatusOK, AnswerResponse{Answer: answer})
			return
		}

		info, err := files.Collect(stagedPath, s.cfg.Uploads.PreviewRows)
		if err != nil {
			s.log.WarnContext(ctx, "Failed to summarize upload", "filename", header.Filename, "error", err)
			info = fmt.Sprintf("Error processing file: %v", err)
		}
		fileInfo = info

		if fileDigest, err = files.SHA256(stagedPath); err != nil {
			// Without a digest the key would collide with the question-only
			// key, so this request must bypass the cache entirely.
			s.log.WarnContext(ctx, "Failed to hash upload", "error", err)
			cacheable = false
		}

	case errors.Is(err, http.ErrMissingFile):
		// No attachment, question-only request.

	default:
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid file attachment"})
		return
	}

	key := cacheKey(question, fileDigest)
	if cacheable {
		if cached, err := s.store.GetAnswer(ctx, key); err != nil {
			s.log.WarnContext(ctx, "Cache lookup failed", "error", err)
		} else if cached != nil {
			s.log.InfoContext(ctx, "Answer served from cache", "key", key)
			writeJSON(w, http.StatusOK, AnswerResponse{Answer: cached.Answer})
			return
		}
	}

	aiCtx, cancel := context.WithTimeout(ctx, s.cfg.AI.RequestTimeout)
	defer cancel()

	answer, err := s.aiClient.Answer(aiCtx, question, fileInfo)
	if err != nil {
		s.log.ErrorContext(ctx, "Answer generation failed", "error", err)
		writeJSON(w, http.StatusBadGateway, ErrorResponse{Error: "failed to generate answer"})
		return
	}

	if cacheable {
		now := time.Now()
		if err := s.store.SaveAnswer(ctx, &database.CachedAnswer{
			Key:       key,
			Question:  question,
			Answer:    answer,
			CreatedAt: now,
			ExpiresAt: now.Add(s.cfg.Database.AnswerTTL),
		}); err != nil {
			s.log.WarnContext(ctx, "Failed to cache answer", "error", err)
		}
	}

	writeJSON(w, http.StatusOK, AnswerResponse{Answer: answer})
}

// stageUpload validates the attachment and writes it to a per-request temp
// directory. The returned cleanup removes the directory.
func (s *Server) stageUpload(file multipart.File, header *multipart.FileHeader) (string, func(), int, error) {
	if !files.IsAllowed(header.Filename, s.cfg.Uploads.AllowedExtensions) {
		return "", nil, http.StatusBadRequest, errors.New("invalid file type")
	}
	if header.Size > s.cfg.Uploads.MaxFileSize {
		return "", nil, http.StatusBadRequest, errors.New("file too large")
	}

	dir, err := os.MkdirTemp(s.cfg.Uploads.TempDir, "assignmate-")
	if err != nil {
		return "", nil, http.StatusInternalServerError, fmt.Errorf("failed to stage upload: %w", err)
	}
	cleanup := func() { _ = os.RemoveAll(dir) }

	path := filepath.Join(dir, files.SafeName(header.Filename))
	dst, err := os.Create(path)
	if err != nil {
		cleanup()
		return "", nil, http.StatusInternalServerError, fmt.Errorf("failed to stage upload: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, file); err != nil {
		cleanup()
		return "", nil, http.StatusInternalServerError, fmt.Errorf("failed to stage upload: %w", err)
	}

	return path, cleanup, http.StatusOK, nil
}

// cacheKey derives the cache key from the question and the digest of the
// attachment (empty when the request carries no file).
func cacheKey(question, fileDigest string) string {
	h := sha256.New()
	h.Write([]byte(question))
	h.Write([]byte{0})
	h.Write([]byte(fileDigest))
	return hex.EncodeToString(h.Sum(nil))
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
