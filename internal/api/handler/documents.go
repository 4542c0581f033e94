package handler

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/albapepper/scoracle-fans/internal/api/respond"
	"github.com/albapepper/scoracle-fans/internal/wizard"
)

// Multipart field names.
const (
	fieldIDDocument        = "id_document"
	fieldSecondaryDocument = "secondary_document"
)

var acceptedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
}

// uploadInfo describes a received file without its contents.
type uploadInfo struct {
	Filename    string `json:"filename"`
	Size        int64  `json:"size"`
	ContentType string `json:"content_type"`
}

type documentResponse struct {
	wizardView
	wizard.DocumentResult
	SecondaryDocument *uploadInfo `json:"secondary_document,omitempty"`
}

// errUnsupportedType is returned by readUpload for anything but JPEG or PNG.
var errUnsupportedType = errors.New("only JPEG and PNG images are accepted")

// readUpload reads a multipart file and sniffs its type from the content.
func readUpload(fh *multipart.FileHeader) ([]byte, uploadInfo, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, uploadInfo{}, fmt.Errorf("open %s: %w", fh.Filename, err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, uploadInfo{}, fmt.Errorf("read %s: %w", fh.Filename, err)
	}
	info := uploadInfo{
		Filename:    fh.Filename,
		Size:        int64(len(data)),
		ContentType: http.DetectContentType(data),
	}
	if !acceptedImageTypes[info.ContentType] {
		return nil, info, errUnsupportedType
	}
	return data, info, nil
}

func firstFile(form *multipart.Form, field string) *multipart.FileHeader {
	if form == nil || len(form.File[field]) == 0 {
		return nil
	}
	return form.File[field][0]
}

// UploadDocuments runs OCR on the identity document and records the verdict.
// @Summary Validate identity document
// @Description Reads the uploaded ID with OCR and matches it against the declared name and CPF. The optional secondary document is only echoed back. Does not advance; call /wizard/documents/continue or /wizard/documents/skip.
// @Tags wizard
// @Accept multipart/form-data
// @Produce json
// @Param id_document formData file true "Identity document (JPEG or PNG)"
// @Param secondary_document formData file false "Supporting document (JPEG or PNG)"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} respond.ErrorResponse
// @Failure 409 {object} respond.ErrorResponse
// @Failure 413 {object} respond.ErrorResponse
// @Failure 415 {object} respond.ErrorResponse
// @Router /wizard/documents [post]
func (h *Handler) UploadDocuments(w http.ResponseWriter, r *http.Request) {
	unlock := h.locks.lock(sessionID(r))
	defer unlock()

	s, ok := h.load(w, r)
	if !ok {
		return
	}
	if s.State.Step() != wizard.StepVerification {
		h.writeWizardError(w, s, &wizard.StepError{
			Op:       "validate document",
			Required: wizard.StepVerification,
			Current:  s.State.Step(),
		})
		return
	}

	maxBytes := h.Config.UploadMaxBytes
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
	if err := r.ParseMultipartForm(maxBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respond.WriteErrorDetail(w, http.StatusRequestEntityTooLarge, "UPLOAD_TOO_LARGE",
				"Upload exceeds the size limit", fmt.Sprintf("limit is %d bytes", maxBytes))
			return
		}
		respond.WriteErrorDetail(w, http.StatusBadRequest, "INVALID_UPLOAD", "Failed to parse form data", err.Error())
		return
	}
	defer r.MultipartForm.RemoveAll()

	primary := firstFile(r.MultipartForm, fieldIDDocument)
	if primary == nil {
		respond.WriteError(w, http.StatusBadRequest, "MISSING_DOCUMENT", "id_document file is required")
		return
	}
	image, _, err := readUpload(primary)
	if err != nil {
		h.writeUploadError(w, fieldIDDocument, err)
		return
	}

	var secondary *uploadInfo
	if fh := firstFile(r.MultipartForm, fieldSecondaryDocument); fh != nil {
		_, info, err := readUpload(fh)
		if err != nil {
			h.writeUploadError(w, fieldSecondaryDocument, err)
			return
		}
		secondary = &info
	}

	res, err := h.Machine.ValidateDocument(r.Context(), s, image)
	if err != nil {
		h.writeWizardError(w, s, err)
		return
	}
	if !h.save(w, r, s) {
		return
	}
	respond.WriteJSONObject(w, http.StatusOK, documentResponse{
		wizardView:        viewOf(s, false),
		DocumentResult:    res,
		SecondaryDocument: secondary,
	})
}

func (h *Handler) writeUploadError(w http.ResponseWriter, field string, err error) {
	if errors.Is(err, errUnsupportedType) {
		respond.WriteErrorDetail(w, http.StatusUnsupportedMediaType, "UNSUPPORTED_MEDIA_TYPE", err.Error(), field)
		return
	}
	h.Logger.Warn("Failed to read upload", "field", field, "error", err)
	respond.WriteErrorDetail(w, http.StatusBadRequest, "INVALID_UPLOAD", "Could not read uploaded file", field)
}

// ContinueFromVerification advances past a validated document.
// @Summary Continue after verification
// @Description Advances to step 4 only if the document was validated.
// @Tags wizard
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 409 {object} respond.ErrorResponse
// @Router /wizard/documents/continue [post]
func (h *Handler) ContinueFromVerification(w http.ResponseWriter, r *http.Request) {
	s, ok := h.apply(w, r, h.Machine.ContinueFromVerification)
	if ok {
		respond.WriteJSONObject(w, http.StatusOK, viewOf(s, false))
	}
}

// SkipVerification advances without a validated document.
// @Summary Skip verification
// @Description Advances to step 4 and marks verification as skipped. The documents category is left untouched.
// @Tags wizard
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 409 {object} respond.ErrorResponse
// @Router /wizard/documents/skip [post]
func (h *Handler) SkipVerification(w http.ResponseWriter, r *http.Request) {
	s, ok := h.apply(w, r, h.Machine.SkipVerification)
	if ok {
		respond.WriteJSONObject(w, http.StatusOK, viewOf(s, false))
	}
}
