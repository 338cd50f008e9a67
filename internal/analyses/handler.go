package analyses

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"resume-checker/internal/sessions"
	"resume-checker/internal/shared/server/middleware"
	"resume-checker/internal/shared/server/respond"
	"resume-checker/internal/shared/telemetry"
	"resume-checker/internal/shared/util"
	"resume-checker/internal/ui"
)

const (
	defaultMaxUploadBytes = 10 << 20
	maxFieldBytes         = 1 << 20
)

// Handler exposes the page and JSON endpoints.
type Handler struct {
	Service        *Service
	MaxUploadBytes int64
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service, maxUploadBytes int64) *Handler {
	if maxUploadBytes <= 0 {
		maxUploadBytes = defaultMaxUploadBytes
	}
	return &Handler{Service: svc, MaxUploadBytes: maxUploadBytes}
}

// RegisterPageRoutes wires the HTML form flow.
func (h *Handler) RegisterPageRoutes(r gin.IRoutes) {
	r.GET("/", h.page)
	r.POST("/analyze", h.submit)
}

// RegisterRoutes wires the JSON API under the given group.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/analyses", h.create)
	r.GET("/session", h.session)
	r.GET("/actions", h.actions)
}

func (h *Handler) page(c *gin.Context) {
	sess := middleware.SessionFromContext(c)
	if sess == nil {
		respond.Error(c, http.StatusInternalServerError, ErrorCodeInternal, "session unavailable", nil)
		return
	}

	page := ui.NewPage()
	page.JobDescription = sess.JobDescription()
	if up := sess.Upload(); up != nil {
		page.UploadName = up.FileName
	}
	for _, a := range Actions {
		page.Buttons = append(page.Buttons, ui.Button{Key: a.Key, Label: a.Label, RunningLabel: a.RunningLabel})
	}
	if st := sess.TakeStatus(); st != nil {
		page.Status = &ui.Status{
			Label:   st.Label,
			Steps:   st.Steps,
			Failed:  st.Failed,
			Message: st.Message,
			Notice:  st.Notice,
		}
	}
	if res := sess.Result(); !res.Empty() {
		page.Result = &ui.Result{Label: res.Label, Text: res.Text}
	}
	respond.HTML(c, http.StatusOK, ui.PageTemplate, page)
}

// submit handles the form post and redirects back to the page.
func (h *Handler) submit(c *gin.Context) {
	sess := middleware.SessionFromContext(c)
	if sess == nil {
		respond.Error(c, http.StatusInternalServerError, ErrorCodeInternal, "session unavailable", nil)
		return
	}
	defer c.Redirect(http.StatusSeeOther, "/")

	in, err := h.readForm(c)
	if in.jobDescription != nil {
		sess.SetJobDescription(*in.jobDescription)
	}
	raw := strings.TrimSpace(in.action)
	if err != nil {
		st := &sessions.Status{Failed: true, Message: uploadErrorMessage(err)}
		if raw != "" {
			sess.ClearResult()
			if action, perr := ParseAction(raw); perr == nil {
				st.Label = action.FailedLabel
			}
		}
		sess.SetStatus(st)
		return
	}
	switch {
	case in.remove:
		sess.SetUpload(nil)
	case in.upload != nil:
		sess.SetUpload(in.upload)
	}

	if raw == "" {
		return
	}
	action, err := ParseAction(raw)
	if err != nil {
		sess.SetStatus(&sessions.Status{Failed: true, Message: "Unknown action."})
		return
	}

	var resume []byte
	if up := sess.Upload(); up != nil {
		resume = up.Data
	}
	out := h.run(c, sess, action, sess.JobDescription(), resume)
	sess.SetStatus(&sessions.Status{
		Label:   out.StatusLabel,
		Steps:   out.Steps,
		Failed:  out.Failed(),
		Message: out.Message,
		Notice:  out.Notice,
	})
}

type analysisResponse struct {
	Action      string   `json:"action"`
	Label       string   `json:"label"`
	Status      State    `json:"status"`
	StatusLabel string   `json:"statusLabel"`
	Steps       []string `json:"steps"`
	Text        string   `json:"text"`
	PageCount   int      `json:"pageCount"`
	Notice      string   `json:"notice,omitempty"`
}

// create runs one action against the file in this request only; uploads
// held by the page flow are never reused.
func (h *Handler) create(c *gin.Context) {
	sess := middleware.SessionFromContext(c)
	if sess == nil {
		respond.Error(c, http.StatusInternalServerError, ErrorCodeInternal, "session unavailable", nil)
		return
	}

	in, err := h.readForm(c)
	if err != nil {
		if strings.TrimSpace(in.action) != "" {
			sess.ClearResult()
		}
		status := http.StatusBadRequest
		if isTooLarge(err) {
			status = http.StatusRequestEntityTooLarge
		}
		respond.Error(c, status, ErrorCodeValidation, uploadErrorMessage(err), nil)
		return
	}
	action, err := ParseAction(in.action)
	if err != nil {
		respond.Error(c, http.StatusBadRequest, ErrorCodeValidation, err.Error(), nil)
		return
	}
	jobDescription := ""
	if in.jobDescription != nil {
		jobDescription = *in.jobDescription
		sess.SetJobDescription(jobDescription)
	}
	var resume []byte
	if in.upload != nil {
		resume = in.upload.Data
	}

	out := h.run(c, sess, action, jobDescription, resume)
	if out.Failed() {
		respond.Error(c, httpStatusFor(out.ErrorCode()), out.ErrorCode(), out.Message, gin.H{
			"action":      action.Key,
			"status":      out.Status,
			"statusLabel": out.StatusLabel,
			"steps":       out.Steps,
		})
		return
	}
	respond.OK(c, analysisResponse{
		Action:      action.Key,
		Label:       action.Label,
		Status:      out.Status,
		StatusLabel: out.StatusLabel,
		Steps:       out.Steps,
		Text:        out.Text,
		PageCount:   out.PageCount,
		Notice:      out.Notice,
	})
}

type sessionResponse struct {
	JobDescription string `json:"jobDescription"`
	UploadName     string `json:"uploadName,omitempty"`
	Result         struct {
		Label string `json:"label"`
		Text  string `json:"text"`
	} `json:"result"`
}

func (h *Handler) session(c *gin.Context) {
	sess := middleware.SessionFromContext(c)
	if sess == nil {
		respond.Error(c, http.StatusInternalServerError, ErrorCodeInternal, "session unavailable", nil)
		return
	}
	var resp sessionResponse
	resp.JobDescription = sess.JobDescription()
	if up := sess.Upload(); up != nil {
		resp.UploadName = up.FileName
	}
	res := sess.Result()
	resp.Result.Label = res.Label
	resp.Result.Text = res.Text
	respond.OK(c, resp)
}

func (h *Handler) actions(c *gin.Context) {
	items := make([]gin.H, 0, len(Actions))
	for _, a := range Actions {
		items = append(items, gin.H{"key": a.Key, "label": a.Label})
	}
	respond.OK(c, gin.H{"actions": items})
}

// run executes one action under the session's action lock.
func (h *Handler) run(c *gin.Context, sess *sessions.Session, action Action, jobDescription string, resume []byte) Outcome {
	sess.LockAction()
	defer sess.UnlockAction()

	ctx := WithRequestID(c.Request.Context(), middleware.RequestIDFromContext(c))
	out := h.Service.Run(ctx, sess, Request{
		Action:         action,
		JobDescription: jobDescription,
		Resume:         resume,
	})

	c.Set("action", action.Key)
	if n := len(out.Transitions); n >= 2 {
		c.Set("statusTransition", string(out.Transitions[n-2])+"->"+string(out.Transitions[n-1]))
	}
	return out
}

// formInput is what one form or API post carries. jobDescription is nil when
// the field was not sent.
type formInput struct {
	jobDescription *string
	action         string
	remove         bool
	upload         *sessions.Upload
}

// readForm streams the body part by part so fields sent before a rejected
// file are still returned alongside the error. The action may also come from
// the query string, which survives a body that is cut short.
func (h *Handler) readForm(c *gin.Context) (formInput, error) {
	in := formInput{action: c.Query("action")}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.MaxUploadBytes+maxFieldBytes)

	mr, err := c.Request.MultipartReader()
	if errors.Is(err, http.ErrNotMultipart) {
		if err := c.Request.ParseForm(); err != nil {
			return in, err
		}
		for key, values := range c.Request.PostForm {
			if len(values) > 0 {
				in.setField(key, values[0])
			}
		}
		return in, nil
	}
	if err != nil {
		return in, err
	}

	var fileErr error
	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			if fileErr != nil {
				return in, fileErr
			}
			return in, err
		}
		switch part.FormName() {
		case "file":
			up, err := h.readFile(c, part)
			if err != nil && fileErr == nil {
				fileErr = err
			}
			if up != nil {
				in.upload = up
			}
		case "jobDescription", "action", "remove":
			value, err := io.ReadAll(io.LimitReader(part, maxFieldBytes))
			if err != nil {
				part.Close()
				return in, err
			}
			in.setField(part.FormName(), string(value))
		}
		part.Close()
	}
	return in, fileErr
}

func (in *formInput) setField(key, value string) {
	switch key {
	case "jobDescription":
		in.jobDescription = &value
	case "action":
		if strings.TrimSpace(value) != "" {
			in.action = value
		}
	case "remove":
		in.remove = strings.TrimSpace(value) != ""
	}
}

// readFile reads one file part. An empty picker sends a nameless, empty part,
// which yields no upload.
func (h *Handler) readFile(c *gin.Context, part *multipart.Part) (*sessions.Upload, error) {
	if part.FileName() == "" {
		_, err := io.Copy(io.Discard, part)
		return nil, err
	}
	data, err := io.ReadAll(io.LimitReader(part, h.MaxUploadBytes+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > h.MaxUploadBytes {
		_, _ = io.Copy(io.Discard, part)
		return nil, errUploadTooLarge
	}
	if len(data) == 0 {
		return nil, nil
	}
	name, err := util.SanitizeFileName(part.FileName())
	if err != nil {
		return nil, err
	}
	telemetry.Info("upload.received", map[string]any{
		"request_id":  middleware.RequestIDFromContext(c),
		"file_name":   name,
		"bytes":       len(data),
		"fingerprint": util.Fingerprint(data),
	})
	return &sessions.Upload{FileName: name, Data: data}, nil
}

var errUploadTooLarge = errors.New("uploaded file is too large")

func isTooLarge(err error) bool {
	var maxBytes *http.MaxBytesError
	return errors.Is(err, errUploadTooLarge) || errors.As(err, &maxBytes)
}

func uploadErrorMessage(err error) string {
	if isTooLarge(err) {
		return "The uploaded file is too large."
	}
	if errors.Is(err, util.ErrInvalidFileName) {
		return "The uploaded file name is invalid."
	}
	return "The upload could not be read."
}

func httpStatusFor(code string) int {
	switch code {
	case ErrorCodeMissingInput, ErrorCodeValidation:
		return http.StatusBadRequest
	case ErrorCodeDocumentProcessing:
		return http.StatusUnprocessableEntity
	case ErrorCodeAnalysis:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
