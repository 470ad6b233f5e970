package http

import (
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"inkwell/internal/capture"
	"inkwell/internal/domain"
	"inkwell/internal/infra/cachemem"
	"inkwell/internal/usecase"
)

type errorResponse struct {
	Error   string         `json:"error"`
	Code    string         `json:"code"`
	Details map[string]any `json:"details,omitempty"`
}

func writeErrorCode(c *gin.Context, status int, code, message string) {
	c.JSON(status, errorResponse{Error: message, Code: code})
}

func writeError(c *gin.Context, err error) {
	var missing *domain.MissingFieldsError
	switch {
	case errors.As(err, &missing):
		c.JSON(http.StatusUnprocessableEntity, errorResponse{
			Error: err.Error(),
			Code:  "FIELDS_MISSING",
			Details: map[string]any{
				"missing_field_ids": missing.FieldIDs,
				"missing_count":     len(missing.FieldIDs),
			},
		})
	case errors.Is(err, domain.ErrNotFound):
		writeErrorCode(c, http.StatusNotFound, "NOT_FOUND", "not found")
	case errors.Is(err, domain.ErrUnauthorized):
		writeErrorCode(c, http.StatusUnauthorized, "UNAUTHORIZED", "unauthorized")
	case errors.Is(err, domain.ErrRequestLocked):
		writeErrorCode(c, http.StatusConflict, "REQUEST_LOCKED", "request is not open for changes")
	case errors.Is(err, domain.ErrInvalidStatus):
		writeErrorCode(c, http.StatusConflict, "INVALID_STATUS", err.Error())
	case errors.Is(err, domain.ErrNoFields):
		writeErrorCode(c, http.StatusBadRequest, "NO_FIELDS", "at least one field is required")
	case errors.Is(err, domain.ErrInvalidField):
		writeErrorCode(c, http.StatusBadRequest, "INVALID_FIELD", err.Error())
	case errors.Is(err, domain.ErrInvalidImage):
		writeErrorCode(c, http.StatusBadRequest, "INVALID_IMAGE", "capture payload is not usable")
	case errors.Is(err, domain.ErrInvalidDocument):
		writeErrorCode(c, http.StatusUnprocessableEntity, "INVALID_DOCUMENT", err.Error())
	default:
		writeErrorCode(c, http.StatusInternalServerError, "INTERNAL", "internal error")
	}
}

func (s *Server) requireAdmin(c *gin.Context) bool {
	if s.adminAPIKey == "" {
		writeErrorCode(c, http.StatusUnauthorized, "UNAUTHORIZED", "admin API disabled")
		return false
	}
	key := c.GetHeader("X-Admin-Key")
	if subtle.ConstantTimeCompare([]byte(key), []byte(s.adminAPIKey)) != 1 {
		writeErrorCode(c, http.StatusUnauthorized, "UNAUTHORIZED", "unauthorized")
		return false
	}
	return true
}

func (s *Server) handleNoRoute(c *gin.Context) {
	writeErrorCode(c, http.StatusNotFound, "NOT_FOUND", "not found")
}

type fieldPayload struct {
	ID         string  `json:"id,omitempty"`
	PageNumber int     `json:"page_number"`
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Width      float64 `json:"width"`
	Height     float64 `json:"height"`
	FieldType  string  `json:"field_type"`
	Label      string  `json:"label,omitempty"`
}

func (p fieldPayload) toDomain() domain.SignatureField {
	return domain.SignatureField{
		ID:         p.ID,
		PageNumber: p.PageNumber,
		X:          p.X,
		Y:          p.Y,
		Width:      p.Width,
		Height:     p.Height,
		Kind:       domain.FieldKind(p.FieldType),
		Label:      p.Label,
	}
}

func fieldToPayload(f domain.SignatureField) fieldPayload {
	return fieldPayload{
		ID:         f.ID,
		PageNumber: f.PageNumber,
		X:          f.X,
		Y:          f.Y,
		Width:      f.Width,
		Height:     f.Height,
		FieldType:  string(f.Kind),
		Label:      f.Label,
	}
}

type requestResponse struct {
	ID          string         `json:"id"`
	Title       string         `json:"title"`
	Status      string         `json:"status"`
	PublicToken string         `json:"public_token,omitempty"`
	Fields      []fieldPayload `json:"fields,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

func requestToResponse(req domain.SignatureRequest, fields []domain.SignatureField) requestResponse {
	out := requestResponse{
		ID:          req.ID,
		Title:       req.Title,
		Status:      string(req.Status),
		PublicToken: req.PublicToken,
		CreatedAt:   req.CreatedAt,
		UpdatedAt:   req.UpdatedAt,
	}
	for _, f := range fields {
		out.Fields = append(out.Fields, fieldToPayload(f))
	}
	return out
}

type createRequestBody struct {
	Title     string         `json:"title"`
	PDFBase64 string         `json:"pdf_base64"`
	Fields    []fieldPayload `json:"fields"`
}

func (s *Server) handleAdminCreateRequest(c *gin.Context) {
	if !s.requireAdmin(c) {
		return
	}
	if s.createUC == nil {
		writeError(c, domain.ErrNotFound)
		return
	}
	var body createRequestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		writeErrorCode(c, http.StatusBadRequest, "BAD_REQUEST", "invalid JSON body")
		return
	}
	pdf, err := base64.StdEncoding.DecodeString(body.PDFBase64)
	if err != nil || len(pdf) == 0 {
		writeError(c, domain.ErrInvalidDocument)
		return
	}
	fields := make([]domain.SignatureField, 0, len(body.Fields))
	for _, p := range body.Fields {
		fields = append(fields, p.toDomain())
	}
	result, err := s.createUC.Execute(c.Request.Context(), usecase.CreateRequestInput{
		Title:     body.Title,
		SourcePDF: pdf,
		Fields:    fields,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, requestToResponse(result.Request, result.Fields))
}

func (s *Server) handleAdminGetRequest(c *gin.Context) {
	if !s.requireAdmin(c) {
		return
	}
	if s.createUC == nil {
		writeError(c, domain.ErrNotFound)
		return
	}
	ctx := c.Request.Context()
	req, err := s.createUC.Requests.GetByID(ctx, c.Param("request_id"))
	if err != nil {
		writeError(c, err)
		return
	}
	fields, err := s.createUC.Fields.ListByRequest(ctx, req.ID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, requestToResponse(*req, fields))
}

type replaceFieldsBody struct {
	Fields []fieldPayload `json:"fields"`
}

func (s *Server) handleAdminReplaceFields(c *gin.Context) {
	if !s.requireAdmin(c) {
		return
	}
	if s.replaceUC == nil {
		writeError(c, domain.ErrNotFound)
		return
	}
	var body replaceFieldsBody
	if err := c.ShouldBindJSON(&body); err != nil {
		writeErrorCode(c, http.StatusBadRequest, "BAD_REQUEST", "invalid JSON body")
		return
	}
	fields := make([]domain.SignatureField, 0, len(body.Fields))
	for _, p := range body.Fields {
		fields = append(fields, p.toDomain())
	}
	saved, err := s.replaceUC.Execute(c.Request.Context(), c.Param("request_id"), fields)
	if err != nil {
		writeError(c, err)
		return
	}
	payload := make([]fieldPayload, 0, len(saved))
	for _, f := range saved {
		payload = append(payload, fieldToPayload(f))
	}
	c.JSON(http.StatusOK, gin.H{"fields": payload})
}

type sendRequestBody struct {
	SignerEmail string `json:"signer_email"`
}

func (s *Server) handleAdminSendRequest(c *gin.Context) {
	if !s.requireAdmin(c) {
		return
	}
	if s.sendUC == nil {
		writeError(c, domain.ErrNotFound)
		return
	}
	var body sendRequestBody
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&body); err != nil {
			writeErrorCode(c, http.StatusBadRequest, "BAD_REQUEST", "invalid JSON body")
			return
		}
	}
	result, err := s.sendUC.Execute(c.Request.Context(), c.Param("request_id"), body.SignerEmail)
	if err != nil {
		writeError(c, err)
		return
	}
	resp := gin.H{
		"id":           result.Request.ID,
		"status":       string(result.Request.Status),
		"public_token": result.Request.PublicToken,
	}
	if result.NotifyError != nil {
		resp["notify_error"] = result.NotifyError.Error()
	}
	c.JSON(http.StatusOK, resp)
}

type emailDocumentBody struct {
	To string `json:"to"`
}

func (s *Server) handleAdminEmailDocument(c *gin.Context) {
	if !s.requireAdmin(c) {
		return
	}
	if s.emailUC == nil {
		writeErrorCode(c, http.StatusServiceUnavailable, "MAIL_UNAVAILABLE", "no mail sink configured")
		return
	}
	var body emailDocumentBody
	if err := c.ShouldBindJSON(&body); err != nil || body.To == "" {
		writeErrorCode(c, http.StatusBadRequest, "BAD_REQUEST", "recipient is required")
		return
	}
	if err := s.emailUC.Execute(c.Request.Context(), c.Param("request_id"), body.To); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "sent"})
}

type signerFieldView struct {
	fieldPayload
	Filled bool `json:"filled"`
}

type pageView struct {
	PageNumber int     `json:"page_number"`
	Width      float64 `json:"width"`
	Height     float64 `json:"height"`
}

type signerViewResponse struct {
	Title           string            `json:"title"`
	Status          string            `json:"status"`
	Pages           []pageView        `json:"pages,omitempty"`
	Fields          []signerFieldView `json:"fields"`
	AllFilled       bool              `json:"all_filled"`
	MissingFieldIDs []string          `json:"missing_field_ids"`
}

func (s *Server) handleSignerView(c *gin.Context) {
	if s.hydrateUC == nil {
		writeError(c, domain.ErrNotFound)
		return
	}
	ctx := c.Request.Context()
	state, err := s.hydrateUC.Execute(ctx, c.Param("token"))
	if err != nil {
		writeError(c, err)
		return
	}

	resp := signerViewResponse{
		Title:           state.Request.Title,
		Status:          string(state.Request.Status),
		MissingFieldIDs: state.Fields.MissingFieldIDs(state.Images),
	}
	resp.AllFilled = len(resp.MissingFieldIDs) == 0
	for _, f := range state.Fields.All() {
		_, filled := state.Images[f.ID]
		resp.Fields = append(resp.Fields, signerFieldView{fieldPayload: fieldToPayload(f), Filled: filled})
	}
	resp.Pages = s.pageViews(c, state.Request.SourcePDFRef)
	c.JSON(http.StatusOK, resp)
}

// pageViews resolves page dimensions through the in-memory cache. Source
// refs are immutable, so a cached entry never goes stale.
func (s *Server) pageViews(c *gin.Context, sourceRef string) []pageView {
	ctx := c.Request.Context()
	dims, ok := s.pageDims.Get(ctx, sourceRef)
	if !ok {
		source, err := s.objects.Get(ctx, sourceRef)
		if err != nil {
			return nil
		}
		sizes, err := s.composer.PageSizes(source)
		if err != nil {
			return nil
		}
		dims = make([]cachemem.PageDim, len(sizes))
		for i, d := range sizes {
			dims[i] = cachemem.PageDim{Width: d.Width, Height: d.Height}
		}
		s.pageDims.Put(ctx, sourceRef, dims, s.cfg.PageDimCacheTTL())
	}
	out := make([]pageView, len(dims))
	for i, d := range dims {
		out[i] = pageView{PageNumber: i + 1, Width: d.Width, Height: d.Height}
	}
	return out
}

type fillFieldBody struct {
	Mode        string           `json:"mode"`
	Strokes     []capture.Stroke `json:"strokes,omitempty"`
	Text        string           `json:"text,omitempty"`
	Consent     bool             `json:"consent"`
	SignerName  string           `json:"signer_name,omitempty"`
	SignerEmail string           `json:"signer_email,omitempty"`
}

func (s *Server) handleSignerFillField(c *gin.Context) {
	if s.fillUC == nil {
		writeError(c, domain.ErrNotFound)
		return
	}
	var body fillFieldBody
	if err := c.ShouldBindJSON(&body); err != nil {
		writeErrorCode(c, http.StatusBadRequest, "BAD_REQUEST", "invalid JSON body")
		return
	}
	fieldID := c.Param("field_id")

	result, err := s.fillUC.Execute(c.Request.Context(), usecase.FillFieldInput{
		PublicToken: c.Param("token"),
		FieldID:     fieldID,
		Capture: capture.Input{
			Mode:    capture.Mode(body.Mode),
			Strokes: body.Strokes,
			Text:    body.Text,
			Consent: body.Consent,
		},
		SignerName:  body.SignerName,
		SignerEmail: body.SignerEmail,
		SignerIP:    c.ClientIP(),
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"field_id":          fieldID,
		"all_filled":        result.AllFilled,
		"missing_field_ids": result.MissingFieldIDs,
	})
}

func (s *Server) handleSignerSubmit(c *gin.Context) {
	if s.submitUC == nil {
		writeError(c, domain.ErrNotFound)
		return
	}
	req, err := s.submitUC.Execute(c.Request.Context(), c.Param("token"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"id":     req.ID,
		"status": string(req.Status),
	})
}

func (s *Server) handleSignerDocument(c *gin.Context) {
	if s.hydrateUC == nil {
		writeError(c, domain.ErrNotFound)
		return
	}
	ctx := c.Request.Context()
	state, err := s.hydrateUC.Execute(ctx, c.Param("token"))
	if err != nil {
		writeError(c, err)
		return
	}
	ref := state.Request.SignedPDFRef
	if ref == "" {
		ref = state.Request.SourcePDFRef
	}
	data, err := s.objects.Get(ctx, ref)
	if err != nil {
		writeError(c, err)
		return
	}
	c.Data(http.StatusOK, "application/pdf", data)
}
